package types

import (
	"testing"
)

// TestBalanceIsEmpty tests the tolerance-based emptiness check
func TestBalanceIsEmpty(t *testing.T) {
	b := newInactiveBalance()
	if !b.IsEmpty(BalanceSideAssets) || !b.IsEmpty(BalanceSideLiabilities) {
		t.Error("expected fresh balance to be empty on both sides")
	}

	// Dust below the share threshold still counts as empty.
	b.AssetShares = mustFixedFromString("0.00005")
	if !b.IsEmpty(BalanceSideAssets) {
		t.Error("expected dust shares to count as empty")
	}

	b.AssetShares = mustFixedFromString("1")
	if b.IsEmpty(BalanceSideAssets) {
		t.Error("expected balance with shares to be non-empty")
	}
	if !b.IsEmpty(BalanceSideLiabilities) {
		t.Error("expected liability side to stay empty")
	}
}

// TestBalanceClose tests slot deactivation rules
func TestBalanceClose(t *testing.T) {
	b := Balance{
		Active:               true,
		BankID:               "usdc",
		AssetShares:          mustFixedFromString("10"),
		LiabilityShares:      ZeroFixed(),
		EmissionsOutstanding: ZeroFixed(),
	}

	if err := b.Close(); err == nil {
		t.Error("expected error closing non-empty balance")
	}

	b.AssetShares = ZeroFixed()
	b.EmissionsOutstanding = mustFixedFromString("5")
	if err := b.Close(); err != ErrCannotCloseOutstandingEmissions {
		t.Errorf("expected ErrCannotCloseOutstandingEmissions, got %v", err)
	}

	b.EmissionsOutstanding = ZeroFixed()
	if err := b.Close(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if b.Active || b.BankID != "" {
		t.Error("expected slot to be reset after close")
	}
}

// TestAccountFlags tests the flag mask and the deprecated bit
func TestAccountFlags(t *testing.T) {
	acc := NewAccount("acc-1", DefaultGroupID, "authority-1", 0)

	if err := acc.SetFlag(AccountFlagDisabled); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !acc.IsDisabled() {
		t.Error("expected account disabled")
	}
	if err := acc.UnsetFlag(AccountFlagDisabled); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if acc.IsDisabled() {
		t.Error("expected account enabled")
	}

	if err := acc.SetFlag(AccountFlagDeprecated); err != ErrIllegalFlag {
		t.Errorf("expected ErrIllegalFlag for deprecated bit, got %v", err)
	}
	if err := acc.SetFlag(1 << 10); err != ErrIllegalFlag {
		t.Errorf("expected ErrIllegalFlag for unknown bit, got %v", err)
	}
}

// TestAccountFindBalance tests active-slot lookup
func TestAccountFindBalance(t *testing.T) {
	acc := NewAccount("acc-1", DefaultGroupID, "authority-1", 0)
	bank := testBank(t, "usdc")

	if acc.FindBalance("usdc") != nil {
		t.Error("expected no balance before activation")
	}

	if _, err := FindOrCreateBankAccount(bank, acc, 0); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if acc.FindBalance("usdc") == nil {
		t.Error("expected balance after activation")
	}
	if acc.ActiveBalanceCount() != 1 {
		t.Errorf("expected 1 active balance, got %d", acc.ActiveBalanceCount())
	}
}

// TestAccountCanBeClosed tests the closeability conditions
func TestAccountCanBeClosed(t *testing.T) {
	acc := NewAccount("acc-1", DefaultGroupID, "authority-1", 0)

	if err := acc.CanBeClosed(); err != nil {
		t.Errorf("unexpected error for empty account: %v", err)
	}

	bank := testBank(t, "usdc")
	if _, err := FindOrCreateBankAccount(bank, acc, 0); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := acc.CanBeClosed(); err == nil {
		t.Error("expected error with active balance")
	}

	acc2 := NewAccount("acc-2", DefaultGroupID, "authority-2", 0)
	if err := acc2.SetFlag(AccountFlagDisabled); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := acc2.CanBeClosed(); err != ErrAccountDisabled {
		t.Errorf("expected ErrAccountDisabled, got %v", err)
	}
}

// TestTransferAuthority tests the armed-flag re-key flow
func TestTransferAuthority(t *testing.T) {
	acc := NewAccount("acc-1", DefaultGroupID, "authority-1", 0)

	// Transfer requires the admin to arm the flag first.
	if err := acc.TransferAuthority("authority-2"); err != ErrIllegalAccountAuthorityTransfer {
		t.Errorf("expected ErrIllegalAccountAuthorityTransfer, got %v", err)
	}

	if err := acc.SetFlag(AccountFlagTransferAuthorityAllowed); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Same authority and empty authority are rejected.
	if err := acc.TransferAuthority("authority-1"); err != ErrIllegalAccountAuthorityTransfer {
		t.Errorf("expected ErrIllegalAccountAuthorityTransfer, got %v", err)
	}
	if err := acc.TransferAuthority(""); err != ErrIllegalAccountAuthorityTransfer {
		t.Errorf("expected ErrIllegalAccountAuthorityTransfer, got %v", err)
	}

	if err := acc.TransferAuthority("authority-2"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if acc.Authority != "authority-2" {
		t.Errorf("expected authority-2, got %s", acc.Authority)
	}
	// The flag is consumed, a second transfer needs re-arming.
	if acc.GetFlag(AccountFlagTransferAuthorityAllowed) {
		t.Error("expected transfer flag consumed")
	}
}

// TestCalcValue tests the amount-to-USD conversion
func TestCalcValue(t *testing.T) {
	half := mustFixedFromString("0.5")

	testCases := []struct {
		name     string
		amount   string
		price    string
		decimals uint8
		weight   *I80F48
		want     string
	}{
		{name: "unweighted", amount: "1000000", price: "2", decimals: 6, want: "2.0"},
		{name: "weighted", amount: "1000000", price: "2", decimals: 6, weight: &half, want: "1.0"},
		{name: "zero amount", amount: "0", price: "2", decimals: 6, want: "0.0"},
		{name: "no decimals", amount: "5", price: "4", decimals: 0, want: "20.0"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			v, err := CalcValue(mustFixedFromString(tc.amount), mustFixedFromString(tc.price), tc.decimals, tc.weight)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if v.String() != tc.want {
				t.Errorf("expected %s, got %s", tc.want, v.String())
			}
		})
	}
}

// TestCalcAmount tests the USD-to-amount inverse
func TestCalcAmount(t *testing.T) {
	amount, err := CalcAmount(mustFixedFromString("2"), mustFixedFromString("2"), 6)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if amount.String() != "1000000.0" {
		t.Errorf("expected 1000000.0, got %s", amount.String())
	}

	if _, err := CalcAmount(OneFixed(), ZeroFixed(), 6); err != ErrDivideByZero {
		t.Errorf("expected ErrDivideByZero, got %v", err)
	}
}

// TestCalcEmissions tests the annualized emissions accrual formula
func TestCalcEmissions(t *testing.T) {
	// One whole token held for a full year at rate 500 emits 500 units.
	v, err := CalcEmissions(SecondsPerYear, mustFixedFromString("1000000"), 6, 500)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v.String() != "500.0" {
		t.Errorf("expected 500.0, got %s", v.String())
	}

	// Zero period, rate or amount all short-circuit to zero.
	if v, _ := CalcEmissions(0, OneFixed(), 6, 500); !v.IsZero() {
		t.Errorf("expected zero for zero period, got %s", v.String())
	}
	if v, _ := CalcEmissions(SecondsPerYear, OneFixed(), 6, 0); !v.IsZero() {
		t.Errorf("expected zero for zero rate, got %s", v.String())
	}
	if v, _ := CalcEmissions(SecondsPerYear, ZeroFixed(), 6, 500); !v.IsZero() {
		t.Errorf("expected zero for zero amount, got %s", v.String())
	}
}

// TestRequirementOraclePriceType tests the price variant per requirement
func TestRequirementOraclePriceType(t *testing.T) {
	if RequirementMaintenance.OraclePriceType() != OraclePriceTypeRealTime {
		t.Error("expected real-time prices for maintenance checks")
	}
	if RequirementInitial.OraclePriceType() != OraclePriceTypeTimeWeighted {
		t.Error("expected time-weighted prices for initial checks")
	}
	if RequirementEquity.OraclePriceType() != OraclePriceTypeTimeWeighted {
		t.Error("expected time-weighted prices for equity checks")
	}
}
