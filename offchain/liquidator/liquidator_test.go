package liquidator

import (
	"context"
	"testing"
	"time"

	"github.com/openalpha/lend-dex/x/lending/types"
)

func mustFixed(t *testing.T, s string) types.I80F48 {
	t.Helper()
	v, err := types.NewFixedFromString(s)
	if err != nil {
		t.Fatalf("bad fixed literal %q: %v", s, err)
	}
	return v
}

func watchedBank(t *testing.T, id string) *types.Bank {
	t.Helper()
	config := types.BankConfig{
		AssetWeightInit:          mustFixed(t, "0.5"),
		AssetWeightMaint:         mustFixed(t, "0.75"),
		LiabilityWeightInit:      mustFixed(t, "1.5"),
		LiabilityWeightMaint:     mustFixed(t, "1.25"),
		DepositLimit:             mustFixed(t, "18446744073709551615"),
		LiabilityLimit:           mustFixed(t, "18446744073709551615"),
		OperationalState:         types.BankOperational,
		RiskTier:                 types.RiskTierCollateral,
		AssetTag:                 types.AssetTagDefault,
		TotalAssetValueInitLimit: types.ZeroFixed(),
		OracleSetup:              types.OracleSetupPush,
		OracleFeedID:             id + "-usd",
		OracleMaxAge:             60,
	}
	mint := types.MintInfo{Denom: "u" + id, Decimals: 6}
	return types.NewBank(id, "group-1", mint, config, 100)
}

// watchedAccount holds 10 atom of collateral and the given usdc debt, in
// native units
func watchedAccount(t *testing.T, id string, usdcDebt string) *types.Account {
	t.Helper()
	acc := types.NewAccount(id, "group-1", "authority-1", 100)
	acc.Balances[0].Active = true
	acc.Balances[0].BankID = "atom"
	acc.Balances[0].AssetShares = mustFixed(t, "10000000")
	acc.Balances[1].Active = true
	acc.Balances[1].BankID = "usdc"
	acc.Balances[1].LiabilityShares = mustFixed(t, usdcDebt)
	return acc
}

// newTestLiquidator wires a liquidator with a mock submitter and both
// banks cached, atom at price 10 and usdc at price 1
func newTestLiquidator(t *testing.T) (*Liquidator, *MockSubmitter) {
	t.Helper()
	mock := NewMockSubmitter()
	config := DefaultConfig()
	config.Cooldown = time.Minute

	l, err := NewLiquidator(config, mock)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := l.handleBankUpdate(watchedBank(t, "atom"), mustFixed(t, "10")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := l.handleBankUpdate(watchedBank(t, "usdc"), mustFixed(t, "1")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return l, mock
}

// TestNewLiquidatorBadCloseFactor tests close factor validation
func TestNewLiquidatorBadCloseFactor(t *testing.T) {
	config := DefaultConfig()
	config.CloseFactor = "0"
	if _, err := NewLiquidator(config, nil); err == nil {
		t.Error("expected error for zero close factor")
	}
	config.CloseFactor = "garbage"
	if _, err := NewLiquidator(config, nil); err == nil {
		t.Error("expected error for malformed close factor")
	}
}

// TestCheckAccountFlagsUnhealthy tests candidate detection and sizing
func TestCheckAccountFlagsUnhealthy(t *testing.T) {
	l, _ := newTestLiquidator(t)

	// 10 atom at price 10 with maint weight 0.75 backs 75 of weighted
	// collateral. 70 usdc at weight 1.25 owes 87.5, so health is -12.5.
	acc := watchedAccount(t, "acc-1", "70000000")
	if err := l.handleAccountUpdate(acc); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	stats := l.GetStats()
	if stats.PendingCandidates != 1 {
		t.Fatalf("expected 1 pending candidate, got %d", stats.PendingCandidates)
	}

	candidates := l.candidates.Peek()
	c := candidates[0]
	if c.LiquidateeAccount != "acc-1" {
		t.Errorf("expected liquidatee acc-1, got %s", c.LiquidateeAccount)
	}
	if c.AssetBankID != "atom" || c.LiabilityBankID != "usdc" {
		t.Errorf("expected atom/usdc legs, got %s/%s", c.AssetBankID, c.LiabilityBankID)
	}
	// The close factor targets half the 70 usdc liability: 35 of value,
	// or 3.5 atom at price 10.
	if c.AssetAmount != 3_500_000 {
		t.Errorf("expected seize amount 3500000, got %d", c.AssetAmount)
	}
	if !c.Shortfall.IsNegative() {
		t.Errorf("expected negative shortfall, got %s", c.Shortfall.String())
	}
	if c.Bankrupt {
		t.Error("expected solvent candidate")
	}
}

// TestCheckAccountSkipsHealthy tests that healthy borrowers are not flagged
func TestCheckAccountSkipsHealthy(t *testing.T) {
	l, _ := newTestLiquidator(t)

	// 30 usdc of debt weighs 37.5 against 75 of collateral.
	acc := watchedAccount(t, "acc-2", "30000000")
	if err := l.handleAccountUpdate(acc); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if stats := l.GetStats(); stats.PendingCandidates != 0 {
		t.Errorf("expected no candidates, got %d", stats.PendingCandidates)
	}
}

// TestCooldownThrottlesReflagging tests the per-account cooldown
func TestCooldownThrottlesReflagging(t *testing.T) {
	l, _ := newTestLiquidator(t)

	acc := watchedAccount(t, "acc-3", "70000000")
	if err := l.handleAccountUpdate(acc); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := l.handleAccountUpdate(acc); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if stats := l.GetStats(); stats.PendingCandidates != 1 {
		t.Errorf("expected cooldown to suppress the second flag, got %d candidates", stats.PendingCandidates)
	}
}

// TestPriceDropFlagsAccount tests rescanning on a price update
func TestPriceDropFlagsAccount(t *testing.T) {
	l, _ := newTestLiquidator(t)

	// 60 usdc of debt weighs exactly 75: zero health, not yet flaggable.
	acc := watchedAccount(t, "acc-4", "60000000")
	if err := l.handleAccountUpdate(acc); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if stats := l.GetStats(); stats.PendingCandidates != 0 {
		t.Fatalf("expected no candidates at zero health, got %d", stats.PendingCandidates)
	}

	// Atom dropping to 8 cuts the collateral to 60 against 75 owed.
	if err := l.handlePriceUpdate("atom", mustFixed(t, "8")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	stats := l.GetStats()
	if stats.PendingCandidates != 1 {
		t.Errorf("expected 1 candidate after price drop, got %d", stats.PendingCandidates)
	}
	if stats.ScansCompleted == 0 {
		t.Error("expected the price update to trigger a scan")
	}

	if err := l.handlePriceUpdate("no-such-bank", mustFixed(t, "1")); err == nil {
		t.Error("expected error for unknown bank")
	}
}

// TestSubmitPendingCandidates tests batch submission and the retry buffer
func TestSubmitPendingCandidates(t *testing.T) {
	l, mock := newTestLiquidator(t)
	ctx := context.Background()

	acc := watchedAccount(t, "acc-5", "70000000")
	if err := l.handleAccountUpdate(acc); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	l.submitPendingCandidates(ctx)
	submitted := mock.GetSubmittedCandidates()
	if len(submitted) != 1 {
		t.Fatalf("expected 1 submitted candidate, got %d", len(submitted))
	}
	if stats := l.GetStats(); stats.PendingCandidates != 0 {
		t.Errorf("expected empty buffer after submission, got %d", stats.PendingCandidates)
	}

	// A failed submission puts the batch back for retry.
	mock.Clear()
	mock.SetSimulateFailure(true)
	l.candidates.Add(&Candidate{LiquidateeAccount: "acc-5"})
	l.submitPendingCandidates(ctx)
	if stats := l.GetStats(); stats.PendingCandidates != 1 {
		t.Errorf("expected candidate back in buffer after failure, got %d", stats.PendingCandidates)
	}
}

// TestCandidateBufferFlushBatch tests the size-capped flush
func TestCandidateBufferFlushBatch(t *testing.T) {
	buf := NewCandidateBuffer(2)
	for i := 0; i < 5; i++ {
		buf.Add(&Candidate{LiquidateeAccount: "acc"})
	}

	if !buf.IsFull() {
		t.Error("expected buffer over max size to report full")
	}
	if batch := buf.FlushBatch(); len(batch) != 2 {
		t.Errorf("expected batch of 2, got %d", len(batch))
	}
	if buf.Len() != 3 {
		t.Errorf("expected 3 left, got %d", buf.Len())
	}
	if batch := buf.Flush(); len(batch) != 3 {
		t.Errorf("expected flush of 3, got %d", len(batch))
	}
	if batch := buf.FlushBatch(); batch != nil {
		t.Errorf("expected nil batch from empty buffer, got %d", len(batch))
	}
}

// TestAccountCacheGetBorrowers tests the borrower filter
func TestAccountCacheGetBorrowers(t *testing.T) {
	cache := NewAccountCache()

	borrower := watchedAccount(t, "acc-b", "70000000")
	cache.Set(borrower)

	lender := types.NewAccount("acc-l", "group-1", "authority-1", 100)
	lender.Balances[0].Active = true
	lender.Balances[0].BankID = "atom"
	lender.Balances[0].AssetShares = mustFixed(t, "10000000")
	cache.Set(lender)

	borrowers := cache.GetBorrowers()
	if len(borrowers) != 1 {
		t.Fatalf("expected 1 borrower, got %d", len(borrowers))
	}
	if borrowers[0].ID != "acc-b" {
		t.Errorf("expected acc-b, got %s", borrowers[0].ID)
	}
}
