package types

import (
	"errors"
	"math"
	"testing"
)

// testInterestCurve returns a curve built from dyadic values so the
// expected results are exactly representable.
func testInterestCurve() InterestRateConfig {
	return InterestRateConfig{
		OptimalUtilizationRate: mustFixedFromString("0.5"),
		PlateauInterestRate:    mustFixedFromString("0.125"),
		MaxInterestRate:        mustFixedFromString("1.0"),
		InsuranceFeeFixedApr:   mustFixedFromString("0.03125"),
		InsuranceIrFee:         mustFixedFromString("0.125"),
		ProtocolFixedFeeApr:    mustFixedFromString("0.03125"),
		ProtocolIrFee:          mustFixedFromString("0.125"),
	}
}

func testBankConfig() BankConfig {
	return BankConfig{
		AssetWeightInit:      mustFixedFromString("0.5"),
		AssetWeightMaint:     mustFixedFromString("0.75"),
		LiabilityWeightInit:  mustFixedFromString("1.5"),
		LiabilityWeightMaint: mustFixedFromString("1.25"),
		DepositLimit:         mustFixedFromString("18446744073709551615"),
		LiabilityLimit:       mustFixedFromString("18446744073709551615"),
		InterestRateConfig:   testInterestCurve(),
		OperationalState:     BankOperational,
		RiskTier:             RiskTierCollateral,
		AssetTag:             AssetTagDefault,
		OracleSetup:          OracleSetupPush,
		OracleFeedID:         "usdc-usd",
		OracleMaxAge:         60,
	}
}

func testBank(t *testing.T, id string) *Bank {
	t.Helper()
	mint := MintInfo{Denom: "u" + id, Decimals: 6}
	return NewBank(id, DefaultGroupID, mint, testBankConfig(), 0)
}

// TestInterestRateConfigValidate tests curve validation
func TestInterestRateConfigValidate(t *testing.T) {
	testCases := []struct {
		name    string
		mutate  func(*InterestRateConfig)
		wantErr bool
	}{
		{name: "valid", mutate: func(c *InterestRateConfig) {}},
		{name: "optimal zero", mutate: func(c *InterestRateConfig) {
			c.OptimalUtilizationRate = ZeroFixed()
		}, wantErr: true},
		{name: "optimal at one", mutate: func(c *InterestRateConfig) {
			c.OptimalUtilizationRate = OneFixed()
		}, wantErr: true},
		{name: "plateau zero", mutate: func(c *InterestRateConfig) {
			c.PlateauInterestRate = ZeroFixed()
		}, wantErr: true},
		{name: "plateau above max", mutate: func(c *InterestRateConfig) {
			c.PlateauInterestRate = mustFixedFromString("2.0")
		}, wantErr: true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			curve := testInterestCurve()
			tc.mutate(&curve)
			err := curve.Validate()
			if tc.wantErr && err == nil {
				t.Error("expected error")
			}
			if !tc.wantErr && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}

// TestCalcInterestRate tests the piecewise-linear utilization curve
func TestCalcInterestRate(t *testing.T) {
	curve := testInterestCurve()

	testCases := []struct {
		name          string
		utilization   string
		wantLending   string
		wantBorrowing string
	}{
		// Below the breakpoint: base = u * plateau / optimal.
		{name: "quarter utilization", utilization: "0.25", wantLending: "0.015625", wantBorrowing: "0.140625"},
		// At the breakpoint the base rate is the plateau rate.
		{name: "optimal utilization", utilization: "0.5", wantLending: "0.0625", wantBorrowing: "0.21875"},
		// Above the breakpoint: linear from plateau to max.
		{name: "three quarters", utilization: "0.75", wantLending: "0.421875", wantBorrowing: "0.765625"},
		{name: "zero utilization", utilization: "0", wantLending: "0.0", wantBorrowing: "0.0625"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			rates, err := curve.CalcInterestRate(mustFixedFromString(tc.utilization))
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if rates.LendingRate.String() != tc.wantLending {
				t.Errorf("expected lending rate %s, got %s", tc.wantLending, rates.LendingRate.String())
			}
			if rates.BorrowingRate.String() != tc.wantBorrowing {
				t.Errorf("expected borrowing rate %s, got %s", tc.wantBorrowing, rates.BorrowingRate.String())
			}
			if rates.BorrowingRate.LT(rates.LendingRate) {
				t.Error("borrowing rate below lending rate")
			}
		})
	}
}

// TestCalcInterestRateFeeAprs tests the fee carve-out rates
func TestCalcInterestRateFeeAprs(t *testing.T) {
	curve := testInterestCurve()

	// At optimal utilization base = 0.125, so each fee APR is
	// base * ir_fee + fixed = 0.125 * 0.125 + 0.03125.
	rates, err := curve.CalcInterestRate(mustFixedFromString("0.5"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rates.GroupFeesApr.String() != "0.046875" {
		t.Errorf("expected group fees apr 0.046875, got %s", rates.GroupFeesApr.String())
	}
	if rates.InsuranceFeesApr.String() != "0.046875" {
		t.Errorf("expected insurance fees apr 0.046875, got %s", rates.InsuranceFeesApr.String())
	}
}

// TestBankShareConversions tests the share/amount conversions at a
// non-unit share price
func TestBankShareConversions(t *testing.T) {
	bank := testBank(t, "usdc")
	bank.AssetShareValue = mustFixedFromString("1.25")
	bank.LiabilityShareValue = mustFixedFromString("1.5")

	amount, err := bank.GetAssetAmount(mustFixedFromString("100"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if amount.String() != "125.0" {
		t.Errorf("expected 125.0, got %s", amount.String())
	}

	shares, err := bank.GetAssetShares(mustFixedFromString("125"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if shares.String() != "100.0" {
		t.Errorf("expected 100.0, got %s", shares.String())
	}

	liabAmount, err := bank.GetLiabilityAmount(mustFixedFromString("10"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if liabAmount.String() != "15.0" {
		t.Errorf("expected 15.0, got %s", liabAmount.String())
	}
}

// TestChangeAssetSharesDepositCap tests the deposit cap enforcement
func TestChangeAssetSharesDepositCap(t *testing.T) {
	bank := testBank(t, "usdc")
	bank.Config.DepositLimit = mustFixedFromString("100")

	if err := bank.ChangeAssetShares(mustFixedFromString("80"), false); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := bank.ChangeAssetShares(mustFixedFromString("30"), false); err != ErrBankAssetCapacityExceeded {
		t.Errorf("expected ErrBankAssetCapacityExceeded, got %v", err)
	}

	// Liquidation settlement bypasses the cap.
	bank2 := testBank(t, "usdc")
	bank2.Config.DepositLimit = mustFixedFromString("100")
	if err := bank2.ChangeAssetShares(mustFixedFromString("150"), true); err != nil {
		t.Errorf("unexpected error with bypass: %v", err)
	}

	// Decreases never hit the cap.
	if err := bank2.ChangeAssetShares(mustFixedFromString("-100"), false); err != nil {
		t.Errorf("unexpected error on decrease: %v", err)
	}
}

// TestChangeLiabilitySharesBorrowCap tests the borrow cap enforcement
func TestChangeLiabilitySharesBorrowCap(t *testing.T) {
	bank := testBank(t, "usdc")
	bank.Config.LiabilityLimit = mustFixedFromString("100")

	if err := bank.ChangeLiabilityShares(mustFixedFromString("50"), false); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// The borrow cap is exclusive: reaching the limit exactly is rejected.
	if err := bank.ChangeLiabilityShares(mustFixedFromString("50"), false); err != ErrBankLiabilityCapacityExceeded {
		t.Errorf("expected ErrBankLiabilityCapacityExceeded, got %v", err)
	}
}

// TestCheckUtilizationRatio tests the liabilities-vs-assets bound
func TestCheckUtilizationRatio(t *testing.T) {
	bank := testBank(t, "usdc")
	bank.TotalAssetShares = mustFixedFromString("100")
	bank.TotalLiabilityShares = mustFixedFromString("100")

	if err := bank.CheckUtilizationRatio(); err != nil {
		t.Errorf("unexpected error at full utilization: %v", err)
	}

	bank.TotalLiabilityShares = mustFixedFromString("101")
	if err := bank.CheckUtilizationRatio(); err != ErrIllegalUtilizationRatio {
		t.Errorf("expected ErrIllegalUtilizationRatio, got %v", err)
	}
}

// TestAssertOperationalMode tests the operational state gate
func TestAssertOperationalMode(t *testing.T) {
	bank := testBank(t, "usdc")

	if err := bank.AssertOperationalMode(true); err != nil {
		t.Errorf("unexpected error for operational bank: %v", err)
	}

	bank.Config.OperationalState = BankPaused
	if err := bank.AssertOperationalMode(); err != ErrBankPaused {
		t.Errorf("expected ErrBankPaused, got %v", err)
	}

	bank.Config.OperationalState = BankReduceOnly
	if err := bank.AssertOperationalMode(true); err != ErrBankReduceOnly {
		t.Errorf("expected ErrBankReduceOnly for risk-increasing op, got %v", err)
	}
	if err := bank.AssertOperationalMode(false); err != nil {
		t.Errorf("unexpected error for reducing op: %v", err)
	}
}

// TestAccrueInterest tests a full year of accrual at half utilization
func TestAccrueInterest(t *testing.T) {
	bank := testBank(t, "usdc")
	bank.TotalAssetShares = mustFixedFromString("1000")
	bank.TotalLiabilityShares = mustFixedFromString("500")

	// At utilization 0.5 the base rate is the plateau 0.125, so over one
	// year: lending 0.0625, borrowing 0.21875, each fee APR 0.046875.
	if err := bank.AccrueInterest(SecondsPerYear, false, ZeroFixed()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if bank.AssetShareValue.String() != "1.0625" {
		t.Errorf("expected asset share value 1.0625, got %s", bank.AssetShareValue.String())
	}
	if bank.LiabilityShareValue.String() != "1.21875" {
		t.Errorf("expected liability share value 1.21875, got %s", bank.LiabilityShareValue.String())
	}
	// Fee payments are apr * liabilities: 0.046875 * 500.
	if bank.CollectedGroupFeesOutstanding.String() != "23.4375" {
		t.Errorf("expected group fees 23.4375, got %s", bank.CollectedGroupFeesOutstanding.String())
	}
	if bank.CollectedInsuranceFeesOutstanding.String() != "23.4375" {
		t.Errorf("expected insurance fees 23.4375, got %s", bank.CollectedInsuranceFeesOutstanding.String())
	}
	if !bank.CollectedProgramFeesOutstanding.IsZero() {
		t.Errorf("expected no program fees, got %s", bank.CollectedProgramFeesOutstanding.String())
	}
	if bank.LastUpdate != SecondsPerYear {
		t.Errorf("expected last update %d, got %d", SecondsPerYear, bank.LastUpdate)
	}
}

// TestAccrueInterestProgramFeeSplit tests the program fee carve-out from
// the group fees
func TestAccrueInterestProgramFeeSplit(t *testing.T) {
	bank := testBank(t, "usdc")
	bank.TotalAssetShares = mustFixedFromString("1000")
	bank.TotalLiabilityShares = mustFixedFromString("500")

	// Program rate 0.5 splits the 23.4375 group fee payment in half.
	if err := bank.AccrueInterest(SecondsPerYear, true, mustFixedFromString("0.5")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if bank.CollectedGroupFeesOutstanding.String() != "11.71875" {
		t.Errorf("expected group fees 11.71875, got %s", bank.CollectedGroupFeesOutstanding.String())
	}
	if bank.CollectedProgramFeesOutstanding.String() != "11.71875" {
		t.Errorf("expected program fees 11.71875, got %s", bank.CollectedProgramFeesOutstanding.String())
	}
	// Insurance fees are untouched by the split.
	if bank.CollectedInsuranceFeesOutstanding.String() != "23.4375" {
		t.Errorf("expected insurance fees 23.4375, got %s", bank.CollectedInsuranceFeesOutstanding.String())
	}
}

// TestAccrueInterestNoOps tests the early-return conditions
func TestAccrueInterestNoOps(t *testing.T) {
	testCases := []struct {
		name   string
		mutate func(*Bank)
		now    int64
	}{
		{name: "no time elapsed", mutate: func(b *Bank) {
			b.TotalAssetShares = mustFixedFromString("1000")
			b.TotalLiabilityShares = mustFixedFromString("500")
		}, now: 0},
		{name: "paused bank", mutate: func(b *Bank) {
			b.TotalAssetShares = mustFixedFromString("1000")
			b.TotalLiabilityShares = mustFixedFromString("500")
			b.Config.OperationalState = BankPaused
		}, now: 1000},
		{name: "no liabilities", mutate: func(b *Bank) {
			b.TotalAssetShares = mustFixedFromString("1000")
		}, now: 1000},
		{name: "empty bank", mutate: func(b *Bank) {}, now: 1000},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			bank := testBank(t, "usdc")
			tc.mutate(bank)
			if err := bank.AccrueInterest(tc.now, false, ZeroFixed()); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !bank.AssetShareValue.Equal(OneFixed()) {
				t.Errorf("expected asset share value unchanged, got %s", bank.AssetShareValue.String())
			}
			if !bank.LiabilityShareValue.Equal(OneFixed()) {
				t.Errorf("expected liability share value unchanged, got %s", bank.LiabilityShareValue.String())
			}
		})
	}
}

// TestSocializeLoss tests bad-debt socialization via the asset share price
func TestSocializeLoss(t *testing.T) {
	bank := testBank(t, "usdc")
	bank.TotalAssetShares = mustFixedFromString("100")

	if err := bank.SocializeLoss(mustFixedFromString("25")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if bank.AssetShareValue.String() != "0.75" {
		t.Errorf("expected share value 0.75, got %s", bank.AssetShareValue.String())
	}

	// A loss exceeding the pool leaves the share price alone.
	if err := bank.SocializeLoss(mustFixedFromString("1000")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if bank.AssetShareValue.String() != "0.75" {
		t.Errorf("expected share value unchanged, got %s", bank.AssetShareValue.String())
	}

	// No shares means nothing to socialize against.
	empty := testBank(t, "usdc")
	if err := empty.SocializeLoss(mustFixedFromString("10")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !empty.AssetShareValue.Equal(OneFixed()) {
		t.Errorf("expected share value unchanged, got %s", empty.AssetShareValue.String())
	}
}

// TestBankConfigValidate tests bank configuration validation
func TestBankConfigValidate(t *testing.T) {
	testCases := []struct {
		name    string
		mutate  func(*BankConfig)
		wantErr bool
	}{
		{name: "valid", mutate: func(c *BankConfig) {}},
		{name: "asset init above one", mutate: func(c *BankConfig) {
			c.AssetWeightInit = mustFixedFromString("1.5")
		}, wantErr: true},
		{name: "maint below init", mutate: func(c *BankConfig) {
			c.AssetWeightMaint = mustFixedFromString("0.25")
		}, wantErr: true},
		{name: "liability init below one", mutate: func(c *BankConfig) {
			c.LiabilityWeightInit = mustFixedFromString("0.5")
		}, wantErr: true},
		{name: "liability maint above init", mutate: func(c *BankConfig) {
			c.LiabilityWeightMaint = mustFixedFromString("2.0")
		}, wantErr: true},
		{name: "isolated with nonzero weights", mutate: func(c *BankConfig) {
			c.RiskTier = RiskTierIsolated
		}, wantErr: true},
		{name: "isolated with zero weights", mutate: func(c *BankConfig) {
			c.RiskTier = RiskTierIsolated
			c.AssetWeightInit = ZeroFixed()
			c.AssetWeightMaint = ZeroFixed()
		}},
		{name: "missing oracle feed", mutate: func(c *BankConfig) {
			c.OracleFeedID = ""
		}, wantErr: true},
		{name: "oracle not setup", mutate: func(c *BankConfig) {
			c.OracleSetup = OracleSetupNone
		}, wantErr: true},
		{name: "non-positive max age", mutate: func(c *BankConfig) {
			c.OracleMaxAge = 0
		}, wantErr: true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			config := testBankConfig()
			tc.mutate(&config)
			err := config.Validate()
			if tc.wantErr && err == nil {
				t.Error("expected error")
			}
			if !tc.wantErr && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}

// TestBankConfigGetWeight tests weight selection per requirement and side
func TestBankConfigGetWeight(t *testing.T) {
	config := testBankConfig()

	if got := config.GetWeight(RequirementInitial, BalanceSideAssets); !got.Equal(config.AssetWeightInit) {
		t.Errorf("expected asset init weight, got %s", got.String())
	}
	if got := config.GetWeight(RequirementMaintenance, BalanceSideLiabilities); !got.Equal(config.LiabilityWeightMaint) {
		t.Errorf("expected liability maint weight, got %s", got.String())
	}
	if got := config.GetWeight(RequirementEquity, BalanceSideAssets); !got.Equal(OneFixed()) {
		t.Errorf("expected unweighted equity, got %s", got.String())
	}
}

// TestBankFlags tests flag manipulation and the configurable mask
func TestBankFlags(t *testing.T) {
	bank := testBank(t, "usdc")

	bank.SetFlag(BankFlagPermissionlessBadDebt)
	if !bank.GetFlag(BankFlagPermissionlessBadDebt) {
		t.Error("expected flag set")
	}
	bank.UnsetFlag(BankFlagPermissionlessBadDebt)
	if bank.GetFlag(BankFlagPermissionlessBadDebt) {
		t.Error("expected flag unset")
	}

	if err := bank.UpdateConfigurableFlags(BankFlagConfigFrozen); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !bank.GetFlag(BankFlagConfigFrozen) {
		t.Error("expected frozen flag set")
	}

	// Emissions bits are not externally settable.
	if err := bank.UpdateConfigurableFlags(BankFlagEmissionsBorrowActive); err != ErrIllegalFlag {
		t.Errorf("expected ErrIllegalFlag, got %v", err)
	}
}

// TestMaybeGetAssetWeightInitDiscount tests the USD soft cap discount
func TestMaybeGetAssetWeightInitDiscount(t *testing.T) {
	bank := testBank(t, "usdc")
	bank.Mint.Decimals = 0
	bank.Config.TotalAssetValueInitLimit = mustFixedFromString("1000")
	bank.TotalAssetShares = mustFixedFromString("2000")
	price := OneFixed()

	discount, ok, err := bank.MaybeGetAssetWeightInitDiscount(price)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !ok {
		t.Fatal("expected discount to apply")
	}
	if discount.String() != "0.5" {
		t.Errorf("expected discount 0.5, got %s", discount.String())
	}

	// Below the cap no discount applies.
	bank.TotalAssetShares = mustFixedFromString("500")
	_, ok, err = bank.MaybeGetAssetWeightInitDiscount(price)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ok {
		t.Error("expected no discount below the cap")
	}

	// Zero limit disables the cap entirely.
	bank.Config.TotalAssetValueInitLimit = ZeroFixed()
	bank.TotalAssetShares = mustFixedFromString("2000")
	_, ok, err = bank.MaybeGetAssetWeightInitDiscount(price)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ok {
		t.Error("expected no discount when cap disabled")
	}
}

// TestMintTransferFees tests the fee-on-transfer mint helpers
func TestMintTransferFees(t *testing.T) {
	testCases := []struct {
		name     string
		mint     MintInfo
		amount   uint64
		wantPost uint64
	}{
		{name: "no fee", mint: MintInfo{}, amount: 10_000, wantPost: 10_000},
		{name: "one percent", mint: MintInfo{TransferFeeBps: 100}, amount: 10_000, wantPost: 9_900},
		{name: "capped fee", mint: MintInfo{TransferFeeBps: 100, MaxTransferFee: 50}, amount: 10_000, wantPost: 9_950},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got := tc.mint.CalculatePostFeeAmount(tc.amount)
			if got != tc.wantPost {
				t.Errorf("expected post-fee %d, got %d", tc.wantPost, got)
			}
			// The pre-fee amount must deliver at least the target.
			pre, err := tc.mint.CalculatePreFeeAmount(got)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if delivered := tc.mint.CalculatePostFeeAmount(pre); delivered < got {
				t.Errorf("pre-fee %d delivers %d, below target %d", pre, delivered, got)
			}
		})
	}
}

// TestMintTransferFeesWideAmounts tests fee math near the uint64 range
func TestMintTransferFeesWideAmounts(t *testing.T) {
	mint := MintInfo{TransferFeeBps: 10_000}

	// 2^54 * 10_000 overflows uint64; the widened intermediate must not.
	amount := uint64(1) << 54
	if got := mint.CalculatePostFeeAmount(amount); got != 0 {
		t.Errorf("expected full-fee mint to deliver 0, got %d", got)
	}

	mint = MintInfo{TransferFeeBps: 100}
	amount = math.MaxUint64
	wantFee := amount / 100
	if got := mint.CalculatePostFeeAmount(amount); got != amount-wantFee {
		t.Errorf("expected post-fee %d, got %d", amount-wantFee, got)
	}

	// Grossing up the max uint64 target cannot be represented.
	if _, err := mint.CalculatePreFeeAmount(math.MaxUint64); !errors.Is(err, ErrMathOverflow) {
		t.Errorf("expected ErrMathOverflow, got %v", err)
	}

	// A capped fee keeps the grossed-up amount in range.
	mint = MintInfo{TransferFeeBps: 100, MaxTransferFee: 1_000}
	pre, err := mint.CalculatePreFeeAmount(math.MaxUint64 - 1_000)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if pre != math.MaxUint64 {
		t.Errorf("expected pre-fee %d, got %d", uint64(math.MaxUint64), pre)
	}
}

// TestOracleAccountsPerTag tests the per-tag feed record counts
func TestOracleAccountsPerTag(t *testing.T) {
	if n, err := OracleAccountsPerTag(AssetTagDefault); err != nil || n != 2 {
		t.Errorf("expected 2 for default tag, got %d (%v)", n, err)
	}
	if n, err := OracleAccountsPerTag(AssetTagStaked); err != nil || n != 4 {
		t.Errorf("expected 4 for staked tag, got %d (%v)", n, err)
	}
	if _, err := OracleAccountsPerTag(AssetTag(99)); err != ErrAssetTagMismatch {
		t.Errorf("expected ErrAssetTagMismatch, got %v", err)
	}
}
