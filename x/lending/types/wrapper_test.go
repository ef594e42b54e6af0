package types

import (
	"errors"
	"fmt"
	"testing"
)

// fundedBank returns a bank seeded with a lender deposit so borrows pass
// the utilization bound.
func fundedBank(t *testing.T, id, deposit string) *Bank {
	t.Helper()
	bank := testBank(t, id)
	lender := NewAccount("lender", DefaultGroupID, "authority-lender", 0)
	w, err := FindOrCreateBankAccount(bank, lender, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := w.Deposit(mustFixedFromString(deposit), 0); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return bank
}

// TestFindOrCreateBankAccount tests slot activation and reuse
func TestFindOrCreateBankAccount(t *testing.T) {
	acc := NewAccount("acc-1", DefaultGroupID, "authority-1", 0)
	bank := testBank(t, "usdc")

	w1, err := FindOrCreateBankAccount(bank, acc, 100)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !w1.Balance.Active || w1.Balance.BankID != "usdc" {
		t.Error("expected activated balance bound to the bank")
	}

	// A second call finds the same slot.
	w2, err := FindOrCreateBankAccount(bank, acc, 200)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if w1.Balance != w2.Balance {
		t.Error("expected the same balance slot")
	}
	if acc.ActiveBalanceCount() != 1 {
		t.Errorf("expected 1 active balance, got %d", acc.ActiveBalanceCount())
	}
}

// TestFindOrCreateBankAccountSlotsFull tests the slot arena bound
func TestFindOrCreateBankAccountSlotsFull(t *testing.T) {
	acc := NewAccount("acc-1", DefaultGroupID, "authority-1", 0)
	for i := 0; i < MaxBalances; i++ {
		bank := testBank(t, fmt.Sprintf("bank-%d", i))
		if _, err := FindOrCreateBankAccount(bank, acc, 0); err != nil {
			t.Fatalf("unexpected error at slot %d: %v", i, err)
		}
	}

	extra := testBank(t, "one-too-many")
	if _, err := FindOrCreateBankAccount(extra, acc, 0); err != ErrBalanceSlotsFull {
		t.Errorf("expected ErrBalanceSlotsFull, got %v", err)
	}
}

// TestFindBankAccount tests lookup without activation
func TestFindBankAccount(t *testing.T) {
	acc := NewAccount("acc-1", DefaultGroupID, "authority-1", 0)
	bank := testBank(t, "usdc")

	if _, err := FindBankAccount(bank, acc); err != ErrBalanceNotFound {
		t.Errorf("expected ErrBalanceNotFound, got %v", err)
	}
	if acc.ActiveBalanceCount() != 0 {
		t.Error("expected lookup to not activate a slot")
	}
}

// TestDepositAndWithdraw tests the plain asset round trip
func TestDepositAndWithdraw(t *testing.T) {
	bank := testBank(t, "usdc")
	acc := NewAccount("acc-1", DefaultGroupID, "authority-1", 0)
	w, err := FindOrCreateBankAccount(bank, acc, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := w.Deposit(mustFixedFromString("100"), 0); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if w.Balance.AssetShares.String() != "100.0" {
		t.Errorf("expected 100 asset shares, got %s", w.Balance.AssetShares.String())
	}
	if bank.TotalAssetShares.String() != "100.0" {
		t.Errorf("expected bank total 100, got %s", bank.TotalAssetShares.String())
	}

	if err := w.Withdraw(mustFixedFromString("40"), 0); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if w.Balance.AssetShares.String() != "60.0" {
		t.Errorf("expected 60 asset shares, got %s", w.Balance.AssetShares.String())
	}

	// Withdrawing beyond the assets must not open a liability.
	if err := w.Withdraw(mustFixedFromString("100"), 0); err != ErrOperationWithdrawOnly {
		t.Errorf("expected ErrOperationWithdrawOnly, got %v", err)
	}
}

// TestBorrowDrainsAssetsFirst tests the hybrid decrease rule
func TestBorrowDrainsAssetsFirst(t *testing.T) {
	bank := fundedBank(t, "usdc", "1000")
	acc := NewAccount("borrower", DefaultGroupID, "authority-b", 0)
	w, err := FindOrCreateBankAccount(bank, acc, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := w.Deposit(mustFixedFromString("100"), 0); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := w.Borrow(mustFixedFromString("300"), 0); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// The 100 in assets drain before the liability opens; the balance
	// never holds both sides.
	if !w.Balance.AssetShares.IsZero() {
		t.Errorf("expected assets drained, got %s", w.Balance.AssetShares.String())
	}
	if w.Balance.LiabilityShares.String() != "200.0" {
		t.Errorf("expected 200 liability shares, got %s", w.Balance.LiabilityShares.String())
	}
	if bank.TotalLiabilityShares.String() != "200.0" {
		t.Errorf("expected bank liabilities 200, got %s", bank.TotalLiabilityShares.String())
	}
}

// TestDepositRepaysLiabilityFirst tests the hybrid increase rule
func TestDepositRepaysLiabilityFirst(t *testing.T) {
	bank := fundedBank(t, "usdc", "1000")
	acc := NewAccount("borrower", DefaultGroupID, "authority-b", 0)
	w, err := FindOrCreateBankAccount(bank, acc, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := w.Borrow(mustFixedFromString("200"), 0); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := w.Deposit(mustFixedFromString("50"), 0); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if w.Balance.LiabilityShares.String() != "150.0" {
		t.Errorf("expected liability 150, got %s", w.Balance.LiabilityShares.String())
	}
	if !w.Balance.AssetShares.IsZero() {
		t.Errorf("expected no assets, got %s", w.Balance.AssetShares.String())
	}

	// A deposit above the debt pays it off and credits the rest.
	if err := w.Deposit(mustFixedFromString("200"), 0); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !w.Balance.LiabilityShares.IsZero() {
		t.Errorf("expected liability cleared, got %s", w.Balance.LiabilityShares.String())
	}
	if w.Balance.AssetShares.String() != "50.0" {
		t.Errorf("expected 50 asset shares, got %s", w.Balance.AssetShares.String())
	}
}

// TestRepayStrict tests that Repay rejects amounts above the debt
func TestRepayStrict(t *testing.T) {
	bank := fundedBank(t, "usdc", "1000")
	acc := NewAccount("borrower", DefaultGroupID, "authority-b", 0)
	w, err := FindOrCreateBankAccount(bank, acc, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := w.Borrow(mustFixedFromString("100"), 0); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := w.Repay(mustFixedFromString("150"), 0); err != ErrOperationRepayOnly {
		t.Errorf("expected ErrOperationRepayOnly, got %v", err)
	}
	if err := w.Repay(mustFixedFromString("100"), 0); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !w.Balance.LiabilityShares.IsZero() {
		t.Errorf("expected liability cleared, got %s", w.Balance.LiabilityShares.String())
	}
}

// TestBorrowUtilizationBound tests that borrows cannot exceed the pool
func TestBorrowUtilizationBound(t *testing.T) {
	bank := fundedBank(t, "usdc", "100")
	acc := NewAccount("borrower", DefaultGroupID, "authority-b", 0)
	w, err := FindOrCreateBankAccount(bank, acc, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := w.Borrow(mustFixedFromString("200"), 0); err != ErrIllegalUtilizationRatio {
		t.Errorf("expected ErrIllegalUtilizationRatio, got %v", err)
	}
}

// TestWithdrawAll tests full withdrawal with sub-token dust handling
func TestWithdrawAll(t *testing.T) {
	bank := testBank(t, "usdc")
	acc := NewAccount("acc-1", DefaultGroupID, "authority-1", 0)
	w, err := FindOrCreateBankAccount(bank, acc, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := w.Deposit(mustFixedFromString("100.5"), 0); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	payout, err := w.WithdrawAll(0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// The payout floors to whole units; the dust goes to the insurance
	// accumulator.
	if payout.String() != "100.0" {
		t.Errorf("expected payout 100.0, got %s", payout.String())
	}
	if bank.CollectedInsuranceFeesOutstanding.String() != "0.5" {
		t.Errorf("expected 0.5 insurance dust, got %s", bank.CollectedInsuranceFeesOutstanding.String())
	}
	if !w.Balance.AssetShares.IsZero() {
		t.Errorf("expected shares cleared, got %s", w.Balance.AssetShares.String())
	}

	if _, err := w.WithdrawAll(0); err != ErrNoAssetFound {
		t.Errorf("expected ErrNoAssetFound, got %v", err)
	}
}

// TestRepayAll tests full repayment with the ceil in the bank's favor
func TestRepayAll(t *testing.T) {
	bank := fundedBank(t, "usdc", "1000")
	acc := NewAccount("borrower", DefaultGroupID, "authority-b", 0)
	w, err := FindOrCreateBankAccount(bank, acc, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := w.Borrow(mustFixedFromString("50.25"), 0); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	owed, err := w.RepayAll(0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if owed.String() != "51.0" {
		t.Errorf("expected owed 51.0, got %s", owed.String())
	}
	if bank.CollectedInsuranceFeesOutstanding.String() != "0.75" {
		t.Errorf("expected 0.75 insurance excess, got %s", bank.CollectedInsuranceFeesOutstanding.String())
	}
	if !w.Balance.LiabilityShares.IsZero() {
		t.Errorf("expected liability cleared, got %s", w.Balance.LiabilityShares.String())
	}

	if _, err := w.RepayAll(0); err != ErrNoLiabilityFound {
		t.Errorf("expected ErrNoLiabilityFound, got %v", err)
	}
}

// TestWithdrawAllRejectsMixedBalance tests the opposite-side guard
func TestWithdrawAllRejectsMixedBalance(t *testing.T) {
	bank := testBank(t, "usdc")
	acc := NewAccount("acc-1", DefaultGroupID, "authority-1", 0)
	w, err := FindOrCreateBankAccount(bank, acc, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// A balance carrying both sides cannot arise through the hybrid
	// operations; seed it directly.
	w.Balance.AssetShares = mustFixedFromString("1000000")
	w.Balance.LiabilityShares = mustFixedFromString("500000")

	if _, err := w.WithdrawAll(0); !errors.Is(err, ErrIllegalBalanceState) {
		t.Errorf("expected ErrIllegalBalanceState, got %v", err)
	}
	if w.Balance.AssetShares.String() != "1000000.0" {
		t.Errorf("expected assets untouched, got %s", w.Balance.AssetShares.String())
	}

	if _, err := w.RepayAll(0); !errors.Is(err, ErrIllegalBalanceState) {
		t.Errorf("expected ErrIllegalBalanceState, got %v", err)
	}
	if w.Balance.LiabilityShares.String() != "500000.0" {
		t.Errorf("expected liability untouched, got %s", w.Balance.LiabilityShares.String())
	}
}

// TestWithdrawAllClosesDust tests that sub-threshold dust closes with the
// balance
func TestWithdrawAllClosesDust(t *testing.T) {
	bank := testBank(t, "usdc")
	acc := NewAccount("acc-1", DefaultGroupID, "authority-1", 0)
	w, err := FindOrCreateBankAccount(bank, acc, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := w.Deposit(mustFixedFromString("100"), 0); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// Liability dust below the zero-amount threshold is tolerated and
	// swept when the balance closes.
	w.Balance.LiabilityShares = mustFixedFromString("0.00005")

	payout, err := w.WithdrawAll(0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if payout.String() != "100.0" {
		t.Errorf("expected payout 100.0, got %s", payout.String())
	}
	if !w.Balance.LiabilityShares.IsZero() {
		t.Errorf("expected liability dust swept, got %s", w.Balance.LiabilityShares.String())
	}
}

// TestLiquidationBypasses tests the cap and utilization bypasses used by
// liquidation settlement
func TestLiquidationBypasses(t *testing.T) {
	bank := testBank(t, "usdc")
	bank.Config.DepositLimit = mustFixedFromString("100")
	acc := NewAccount("acc-1", DefaultGroupID, "authority-1", 0)
	w, err := FindOrCreateBankAccount(bank, acc, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Past the deposit cap, allowed only in liquidation.
	if err := w.Deposit(mustFixedFromString("150"), 0); err != ErrBankAssetCapacityExceeded {
		t.Errorf("expected ErrBankAssetCapacityExceeded, got %v", err)
	}

	acc2 := NewAccount("acc-2", DefaultGroupID, "authority-2", 0)
	w2, err := FindOrCreateBankAccount(bank, acc2, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := w2.IncreaseBalanceInLiquidation(mustFixedFromString("150"), 0); err != nil {
		t.Errorf("unexpected error with deposit bypass: %v", err)
	}

	// Past the utilization bound, allowed only in liquidation.
	empty := testBank(t, "atom")
	acc3 := NewAccount("acc-3", DefaultGroupID, "authority-3", 0)
	w3, err := FindOrCreateBankAccount(empty, acc3, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := w3.DecreaseBalanceInLiquidation(mustFixedFromString("50"), 0); err != nil {
		t.Errorf("unexpected error with borrow bypass: %v", err)
	}
	if w3.Balance.LiabilityShares.String() != "50.0" {
		t.Errorf("expected 50 liability shares, got %s", w3.Balance.LiabilityShares.String())
	}
}

// TestClaimEmissions tests emissions accrual against the bank budget
func TestClaimEmissions(t *testing.T) {
	start := int64(MinEmissionsStartTime)

	bank := testBank(t, "usdc")
	bank.SetFlag(BankFlagEmissionsLendingActive)
	bank.EmissionsRate = 500
	bank.EmissionsRemaining = mustFixedFromString("1000")

	acc := NewAccount("acc-1", DefaultGroupID, "authority-1", start)
	w, err := FindOrCreateBankAccount(bank, acc, start)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// One whole token deposited at the emissions start.
	if err := w.Deposit(mustFixedFromString("1000000"), start); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := w.ClaimEmissions(start + SecondsPerYear); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if w.Balance.EmissionsOutstanding.String() != "500.0" {
		t.Errorf("expected 500 emissions outstanding, got %s", w.Balance.EmissionsOutstanding.String())
	}
	if bank.EmissionsRemaining.String() != "500.0" {
		t.Errorf("expected 500 budget remaining, got %s", bank.EmissionsRemaining.String())
	}

	// The next year exhausts the budget: capped at the remainder.
	if err := w.ClaimEmissions(start + 2*SecondsPerYear); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if w.Balance.EmissionsOutstanding.String() != "1000.0" {
		t.Errorf("expected 1000 emissions outstanding, got %s", w.Balance.EmissionsOutstanding.String())
	}
	if !bank.EmissionsRemaining.IsZero() {
		t.Errorf("expected budget exhausted, got %s", bank.EmissionsRemaining.String())
	}
}

// TestClaimEmissionsBeforeStart tests that pre-start balances never pay
// out retroactively
func TestClaimEmissionsBeforeStart(t *testing.T) {
	bank := testBank(t, "usdc")
	bank.SetFlag(BankFlagEmissionsLendingActive)
	bank.EmissionsRate = 500
	bank.EmissionsRemaining = mustFixedFromString("1000")

	acc := NewAccount("acc-1", DefaultGroupID, "authority-1", 0)
	w, err := FindOrCreateBankAccount(bank, acc, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := w.Deposit(mustFixedFromString("1000000"), 0); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// The first claim only starts the clock.
	if err := w.ClaimEmissions(MinEmissionsStartTime + SecondsPerYear); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !w.Balance.EmissionsOutstanding.IsZero() {
		t.Errorf("expected no retroactive emissions, got %s", w.Balance.EmissionsOutstanding.String())
	}
}

// TestSettleEmissions tests the floor-to-whole-units payout
func TestSettleEmissions(t *testing.T) {
	bank := testBank(t, "usdc")
	acc := NewAccount("acc-1", DefaultGroupID, "authority-1", 0)
	w, err := FindOrCreateBankAccount(bank, acc, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	w.Balance.EmissionsOutstanding = mustFixedFromString("12.75")

	payout, err := w.SettleEmissions(0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if payout.String() != "12.0" {
		t.Errorf("expected payout 12.0, got %s", payout.String())
	}
	// Sub-unit dust stays outstanding for the next settlement.
	if w.Balance.EmissionsOutstanding.String() != "0.75" {
		t.Errorf("expected 0.75 outstanding, got %s", w.Balance.EmissionsOutstanding.String())
	}
}
