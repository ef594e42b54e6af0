package keeper

import (
	"testing"

	lendingtypes "github.com/openalpha/lend-dex/x/lending/types"
	"github.com/openalpha/lend-dex/x/liquidation/types"
)

func mustFixed(t *testing.T, s string) lendingtypes.I80F48 {
	t.Helper()
	v, err := lendingtypes.NewFixedFromString(s)
	if err != nil {
		t.Fatalf("bad fixed literal %q: %v", s, err)
	}
	return v
}

// assertNear fails unless got is within 0.01 native units of want. The
// fee factors are not exactly representable, so leg amounts carry a few
// bits of rounding.
func assertNear(t *testing.T, got lendingtypes.I80F48, want string) {
	t.Helper()
	diff, err := got.Sub(mustFixed(t, want))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !diff.IsZeroWithTolerance(mustFixed(t, "0.01")) {
		t.Errorf("expected value near %s, got %s", want, got.String())
	}
}

// TestCalcLiquidationAmounts tests the fee split on the two debt legs
func TestCalcLiquidationAmounts(t *testing.T) {
	// Seize 1 token at price 10 against a price-1 liability: collateral
	// value 10. The liquidator pays 97.5% and the liquidatee's debt drops
	// by 95%, both in liability native units.
	amounts, err := calcLiquidationAmounts(1_000_000, mustFixed(t, "10"), mustFixed(t, "1"), 6, 6)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if amounts.assetAmount.String() != "1000000.0" {
		t.Errorf("expected asset amount 1000000.0, got %s", amounts.assetAmount.String())
	}
	assertNear(t, amounts.liabilityAmountPaid, "9750000")
	assertNear(t, amounts.liabilityAmountRepaid, "9500000")
	assertNear(t, amounts.insuranceFee, "250000")

	// The fee is exactly the spread between the two legs.
	spread, err := amounts.liabilityAmountPaid.Sub(amounts.liabilityAmountRepaid)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !spread.Equal(amounts.insuranceFee) {
		t.Errorf("expected fee %s to equal spread %s",
			amounts.insuranceFee.String(), spread.String())
	}
	if !amounts.liabilityAmountRepaid.LT(amounts.liabilityAmountPaid) {
		t.Error("expected repaid leg below paid leg")
	}
}

// TestCalcLiquidationAmountsDecimals tests legs across differing decimals
func TestCalcLiquidationAmountsDecimals(t *testing.T) {
	// 1 token with 3 decimals at price 10, liability at price 2 with 6
	// decimals: paid = 10 * 0.975 / 2 = 4.875 liability tokens.
	amounts, err := calcLiquidationAmounts(1_000, mustFixed(t, "10"), mustFixed(t, "2"), 3, 6)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	assertNear(t, amounts.liabilityAmountPaid, "4875000")
	assertNear(t, amounts.liabilityAmountRepaid, "4750000")
	assertNear(t, amounts.insuranceFee, "125000")
}

// TestCalcLiquidationAmountsZero tests the degenerate zero seizure
func TestCalcLiquidationAmountsZero(t *testing.T) {
	amounts, err := calcLiquidationAmounts(0, mustFixed(t, "10"), mustFixed(t, "1"), 6, 6)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !amounts.assetAmount.IsZero() || !amounts.liabilityAmountPaid.IsZero() ||
		!amounts.liabilityAmountRepaid.IsZero() || !amounts.insuranceFee.IsZero() {
		t.Error("expected all legs zero for zero seizure")
	}
}

// TestFeeRates tests the protocol fee rate constants
func TestFeeRates(t *testing.T) {
	if !types.LiquidatorFeeRate.Equal(mustFixed(t, "0.025")) {
		t.Errorf("expected liquidator fee rate 0.025, got %s", types.LiquidatorFeeRate.String())
	}
	if !types.InsuranceFeeRate.Equal(mustFixed(t, "0.025")) {
		t.Errorf("expected insurance fee rate 0.025, got %s", types.InsuranceFeeRate.String())
	}

	// Together the fees stay well below the maintenance weight band, so a
	// legal liquidation cannot flip the account past zero health.
	total, err := types.LiquidatorFeeRate.Add(types.InsuranceFeeRate)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !total.LT(mustFixed(t, "0.1")) {
		t.Errorf("expected combined fees below 0.1, got %s", total.String())
	}
}

// TestLiquidationStatusString tests the status labels
func TestLiquidationStatusString(t *testing.T) {
	if types.LiquidationStatusExecuted.String() != "executed" {
		t.Errorf("expected executed, got %s", types.LiquidationStatusExecuted.String())
	}
	if types.LiquidationStatusFailed.String() != "failed" {
		t.Errorf("expected failed, got %s", types.LiquidationStatusFailed.String())
	}
}
