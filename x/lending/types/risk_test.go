package types

import (
	"errors"
	"testing"
)

// staticPriceFeed returns one fixed price for every variant and bias.
type staticPriceFeed struct {
	price I80F48
}

func (f staticPriceFeed) PriceOfType(OraclePriceType, PriceBias) (I80F48, error) {
	return f.price, nil
}

func riskEntry(bank *Bank, balance *Balance, price string) *BankAccountWithPriceFeed {
	return &BankAccountWithPriceFeed{
		Bank:    bank,
		Balance: balance,
		Feed:    staticPriceFeed{price: mustFixedFromString(price)},
	}
}

// riskScenario builds a borrower with 10 atom of collateral at price 10
// and the given usdc debt at price 1. Weights come from testBankConfig:
// assets 0.5 init / 0.75 maint, liabilities 1.5 init / 1.25 maint.
func riskScenario(t *testing.T, borrowUsdc string) (atomBank, usdcBank *Bank, acc *Account, entries []*BankAccountWithPriceFeed) {
	t.Helper()
	atomBank = testBank(t, "atom")
	usdcBank = fundedBank(t, "usdc", "1000000000")

	acc = NewAccount("borrower", DefaultGroupID, "authority-b", 0)
	wa, err := FindOrCreateBankAccount(atomBank, acc, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := wa.Deposit(mustFixedFromString("10000000"), 0); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	wu, err := FindOrCreateBankAccount(usdcBank, acc, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := wu.Borrow(mustFixedFromString(borrowUsdc), 0); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	entries = []*BankAccountWithPriceFeed{
		riskEntry(atomBank, acc.FindBalance("atom"), "10"),
		riskEntry(usdcBank, acc.FindBalance("usdc"), "1"),
	}
	return atomBank, usdcBank, acc, entries
}

// TestNewRiskEngineFlashloan tests the flashloan rejection
func TestNewRiskEngineFlashloan(t *testing.T) {
	acc := NewAccount("acc-1", DefaultGroupID, "authority-1", 0)
	if err := acc.SetFlag(AccountFlagInFlashloan); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := NewRiskEngine(acc, nil); err != ErrAccountInFlashloan {
		t.Errorf("expected ErrAccountInFlashloan, got %v", err)
	}
}

// TestAccountHealth tests the weighted valuations per requirement type
func TestAccountHealth(t *testing.T) {
	// 10 atom at 10 = 100 of collateral, 30 usdc of debt.
	_, _, acc, entries := riskScenario(t, "30000000")
	engine, err := NewRiskEngine(acc, entries)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	testCases := []struct {
		name       string
		req        RequirementType
		wantHealth string
	}{
		// 100 * 0.5 - 30 * 1.5
		{name: "initial", req: RequirementInitial, wantHealth: "5.0"},
		// 100 * 0.75 - 30 * 1.25
		{name: "maintenance", req: RequirementMaintenance, wantHealth: "37.5"},
		// Unweighted.
		{name: "equity", req: RequirementEquity, wantHealth: "70.0"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			health, err := engine.AccountHealth(tc.req)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if health.String() != tc.wantHealth {
				t.Errorf("expected health %s, got %s", tc.wantHealth, health.String())
			}
		})
	}
}

// TestWeightedValuesIsolatedTier tests that isolated deposits never back
// loans outside equity valuations
func TestWeightedValuesIsolatedTier(t *testing.T) {
	bank := testBank(t, "iso")
	bank.Config.RiskTier = RiskTierIsolated
	bank.Config.AssetWeightInit = ZeroFixed()
	bank.Config.AssetWeightMaint = ZeroFixed()

	acc := NewAccount("acc-1", DefaultGroupID, "authority-1", 0)
	w, err := FindOrCreateBankAccount(bank, acc, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := w.Deposit(mustFixedFromString("10000000"), 0); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	entry := riskEntry(bank, acc.FindBalance("iso"), "10")

	for _, req := range []RequirementType{RequirementInitial, RequirementMaintenance} {
		assets, _, err := entry.WeightedValues(req)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !assets.IsZero() {
			t.Errorf("expected zero %s assets for isolated bank, got %s", req.String(), assets.String())
		}
	}

	assets, _, err := entry.WeightedValues(RequirementEquity)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if assets.String() != "100.0" {
		t.Errorf("expected equity assets 100.0, got %s", assets.String())
	}
}

// TestWeightedValuesStaleOracle tests the per-requirement staleness policy
func TestWeightedValuesStaleOracle(t *testing.T) {
	bank := testBank(t, "atom")
	acc := NewAccount("acc-1", DefaultGroupID, "authority-1", 0)
	w, err := FindOrCreateBankAccount(bank, acc, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := w.Deposit(mustFixedFromString("10000000"), 0); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	entry := &BankAccountWithPriceFeed{
		Bank:    bank,
		Balance: acc.FindBalance("atom"),
		FeedErr: ErrStaleOracle,
	}

	// Initial checks tolerate a stale asset oracle at zero value.
	assets, _, err := entry.WeightedValues(RequirementInitial)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !assets.IsZero() {
		t.Errorf("expected stale asset valued at zero, got %s", assets.String())
	}

	// Maintenance checks must not run blind.
	if _, _, err := entry.WeightedValues(RequirementMaintenance); !errors.Is(err, ErrStaleOracle) {
		t.Errorf("expected ErrStaleOracle, got %v", err)
	}

	// Liabilities are never tolerated without a price.
	entry.Balance.LiabilityShares = mustFixedFromString("1")
	entry.Balance.AssetShares = ZeroFixed()
	if _, _, err := entry.WeightedValues(RequirementInitial); !errors.Is(err, ErrStaleOracle) {
		t.Errorf("expected ErrStaleOracle for liability side, got %v", err)
	}
}

// TestCheckAccountInitHealth tests the initial health gate and its cache
func TestCheckAccountInitHealth(t *testing.T) {
	// Healthy: 50 weighted assets against 45 weighted liabilities.
	_, _, acc, entries := riskScenario(t, "30000000")
	if err := CheckAccountInitHealth(acc, entries, 123); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !acc.HealthCache.Healthy || !acc.HealthCache.EngineOk {
		t.Error("expected healthy cache verdict")
	}
	if acc.HealthCache.AssetValue.String() != "50.0" {
		t.Errorf("expected cached assets 50.0, got %s", acc.HealthCache.AssetValue.String())
	}
	if acc.HealthCache.LiabilityValue.String() != "45.0" {
		t.Errorf("expected cached liabilities 45.0, got %s", acc.HealthCache.LiabilityValue.String())
	}
	if acc.HealthCache.Timestamp != 123 {
		t.Errorf("expected timestamp 123, got %d", acc.HealthCache.Timestamp)
	}

	// Unhealthy: 70 usdc of debt needs 105 of init collateral.
	_, _, acc2, entries2 := riskScenario(t, "70000000")
	err := CheckAccountInitHealth(acc2, entries2, 123)
	if !errors.Is(err, ErrRiskEngineInitRejected) {
		t.Errorf("expected ErrRiskEngineInitRejected, got %v", err)
	}
	if acc2.HealthCache.Healthy {
		t.Error("expected unhealthy cache verdict")
	}

	// The check is suspended inside a flashloan bracket.
	if err := acc2.SetFlag(AccountFlagInFlashloan); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := CheckAccountInitHealth(acc2, entries2, 123); err != nil {
		t.Errorf("expected nil during flashloan, got %v", err)
	}
}

// TestIsolatedTierExclusivity tests that an isolated liability excludes
// all other liabilities
func TestIsolatedTierExclusivity(t *testing.T) {
	collateral := testBank(t, "atom")
	usdcBank := fundedBank(t, "usdc", "1000000000")
	isoBank := fundedBank(t, "iso", "1000000000")
	isoBank.Config.RiskTier = RiskTierIsolated
	isoBank.Config.AssetWeightInit = ZeroFixed()
	isoBank.Config.AssetWeightMaint = ZeroFixed()

	acc := NewAccount("acc-1", DefaultGroupID, "authority-1", 0)
	wc, err := FindOrCreateBankAccount(collateral, acc, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// Plenty of collateral so only the tier rule can fail.
	if err := wc.Deposit(mustFixedFromString("100000000"), 0); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	wu, err := FindOrCreateBankAccount(usdcBank, acc, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := wu.Borrow(mustFixedFromString("1000000"), 0); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	wi, err := FindOrCreateBankAccount(isoBank, acc, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := wi.Borrow(mustFixedFromString("1000000"), 0); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	entries := []*BankAccountWithPriceFeed{
		riskEntry(collateral, acc.FindBalance("atom"), "10"),
		riskEntry(usdcBank, acc.FindBalance("usdc"), "1"),
		riskEntry(isoBank, acc.FindBalance("iso"), "1"),
	}
	if err := CheckAccountInitHealth(acc, entries, 0); err != ErrIsolatedAccountIllegalState {
		t.Errorf("expected ErrIsolatedAccountIllegalState, got %v", err)
	}
}

// TestCheckPreLiquidationCondition tests the liquidation entry conditions
func TestCheckPreLiquidationCondition(t *testing.T) {
	// 70 usdc of debt: maintenance health 75 - 87.5 = -12.5.
	_, _, acc, entries := riskScenario(t, "70000000")
	engine, err := NewRiskEngine(acc, entries)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	health, err := engine.CheckPreLiquidationCondition("usdc")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if health.String() != "-12.5" {
		t.Errorf("expected health -12.5, got %s", health.String())
	}

	// No balance in the named bank.
	if _, err := engine.CheckPreLiquidationCondition("missing"); err != ErrBalanceNotFound {
		t.Errorf("expected ErrBalanceNotFound, got %v", err)
	}

	// The collateral bank holds no liability.
	if _, err := engine.CheckPreLiquidationCondition("atom"); err != ErrNoLiabilitiesInLiabilityBank {
		t.Errorf("expected ErrNoLiabilitiesInLiabilityBank, got %v", err)
	}

	// A healthy account is not liquidatable.
	_, _, acc2, entries2 := riskScenario(t, "30000000")
	engine2, err := NewRiskEngine(acc2, entries2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := engine2.CheckPreLiquidationCondition("usdc"); !errors.Is(err, ErrHealthyAccount) {
		t.Errorf("expected ErrHealthyAccount, got %v", err)
	}

	// Health exactly zero is already liquidatable: 60 usdc of debt weighs
	// exactly the 75 of weighted collateral.
	_, _, acc3, entries3 := riskScenario(t, "60000000")
	engine3, err := NewRiskEngine(acc3, entries3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	health, err = engine3.CheckPreLiquidationCondition("usdc")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if health.String() != "0.0" {
		t.Errorf("expected health 0.0, got %s", health.String())
	}
}

// TestCheckPostLiquidationCondition tests the liquidation exit conditions
func TestCheckPostLiquidationCondition(t *testing.T) {
	preHealth := mustFixedFromString("-12.5")

	// Legal outcome: debt reduced to 45 usdc, collateral down to 7 atom.
	// Maintenance health 52.5 - 56.25 = -3.75: improved but still at or
	// below zero.
	_, _, acc, entries := riskScenario(t, "70000000")
	acc.FindBalance("atom").AssetShares = mustFixedFromString("7000000")
	acc.FindBalance("usdc").LiabilityShares = mustFixedFromString("45000000")
	engine, err := NewRiskEngine(acc, entries)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	health, err := engine.CheckPostLiquidationCondition("usdc", preHealth)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if health.String() != "-3.75" {
		t.Errorf("expected health -3.75, got %s", health.String())
	}

	// Closing the liability entirely is not a liquidation.
	acc.FindBalance("usdc").LiabilityShares = ZeroFixed()
	if _, err := engine.CheckPostLiquidationCondition("usdc", preHealth); err != ErrExhaustedLiability {
		t.Errorf("expected ErrExhaustedLiability, got %v", err)
	}

	// Over-liquidating past maintenance health is too severe.
	acc.FindBalance("usdc").LiabilityShares = mustFixedFromString("10000000")
	if _, err := engine.CheckPostLiquidationCondition("usdc", preHealth); !errors.Is(err, ErrTooSevereLiquidation) {
		t.Errorf("expected ErrTooSevereLiquidation, got %v", err)
	}

	// Health must strictly improve.
	acc.FindBalance("atom").AssetShares = mustFixedFromString("10000000")
	acc.FindBalance("usdc").LiabilityShares = mustFixedFromString("70000000")
	if _, err := engine.CheckPostLiquidationCondition("usdc", preHealth); !errors.Is(err, ErrWorseHealthPostLiquidation) {
		t.Errorf("expected ErrWorseHealthPostLiquidation, got %v", err)
	}
}

// TestCheckAccountBankrupt tests the bankruptcy eligibility conditions
func TestCheckAccountBankrupt(t *testing.T) {
	// Negligible collateral against real debt.
	_, _, acc, entries := riskScenario(t, "70000000")
	acc.FindBalance("atom").AssetShares = mustFixedFromString("1")
	engine, err := NewRiskEngine(acc, entries)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := engine.CheckAccountBankrupt(); err != nil {
		t.Errorf("expected bankrupt account, got %v", err)
	}

	// A solvent account is not bankrupt.
	_, _, acc2, entries2 := riskScenario(t, "30000000")
	engine2, err := NewRiskEngine(acc2, entries2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := engine2.CheckAccountBankrupt(); !errors.Is(err, ErrAccountNotBankrupt) {
		t.Errorf("expected ErrAccountNotBankrupt, got %v", err)
	}

	// Insolvent but with assets above the settlement threshold.
	_, _, acc3, entries3 := riskScenario(t, "70000000")
	acc3.FindBalance("usdc").LiabilityShares = mustFixedFromString("200000000")
	engine3, err := NewRiskEngine(acc3, entries3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := engine3.CheckAccountBankrupt(); !errors.Is(err, ErrAccountNotBankrupt) {
		t.Errorf("expected ErrAccountNotBankrupt, got %v", err)
	}

	// A disabled account was already settled.
	if err := acc.SetFlag(AccountFlagDisabled); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := engine.CheckAccountBankrupt(); err != ErrAccountDisabled {
		t.Errorf("expected ErrAccountDisabled, got %v", err)
	}
}

// TestCheckAccountBankruptLiabilityFloor tests that debt sitting exactly on
// the negligible-amount floor does not qualify for bankruptcy settlement.
func TestCheckAccountBankruptLiabilityFloor(t *testing.T) {
	// 100 native units at price 1 with 6 decimals is worth exactly 0.0001.
	_, _, acc, entries := riskScenario(t, "100")
	acc.FindBalance("atom").AssetShares = ZeroFixed()
	engine, err := NewRiskEngine(acc, entries)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := engine.CheckAccountBankrupt(); !errors.Is(err, ErrAccountNotBankrupt) {
		t.Errorf("expected ErrAccountNotBankrupt at the floor, got %v", err)
	}

	// One more unit of debt crosses the floor.
	acc.FindBalance("usdc").LiabilityShares = mustFixedFromString("101")
	if err := engine.CheckAccountBankrupt(); err != nil {
		t.Errorf("expected bankrupt account above the floor, got %v", err)
	}
}

// TestRefreshHealthCache tests the permissionless cache refresh
func TestRefreshHealthCache(t *testing.T) {
	_, _, acc, entries := riskScenario(t, "30000000")
	engine, err := NewRiskEngine(acc, entries)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	engine.RefreshHealthCache(555)
	if !acc.HealthCache.Healthy || !acc.HealthCache.EngineOk {
		t.Error("expected healthy cache")
	}
	if acc.HealthCache.Timestamp != 555 {
		t.Errorf("expected timestamp 555, got %d", acc.HealthCache.Timestamp)
	}

	// A broken feed downgrades the verdict instead of failing.
	entries[1].Feed = nil
	entries[1].FeedErr = ErrStaleOracle
	engine.RefreshHealthCache(556)
	if acc.HealthCache.EngineOk {
		t.Error("expected engine not ok with failed liability feed")
	}
}
