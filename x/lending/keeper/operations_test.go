package keeper

import (
	"errors"
	"testing"

	sdkmath "cosmossdk.io/math"

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

// TestSettleOutstanding tests the liquidity-bounded fee settlement
func TestSettleOutstanding(t *testing.T) {
	testCases := []struct {
		name        string
		outstanding string
		available   string
		wantSettled string
		wantLeft    string
	}{
		// Settlement floors to whole units on both sides.
		{name: "fully covered", outstanding: "10.5", available: "100", wantSettled: "10.0", wantLeft: "90.0"},
		{name: "liquidity bound", outstanding: "50", available: "10.5", wantSettled: "10.0", wantLeft: "0.5"},
		{name: "nothing outstanding", outstanding: "0", available: "100", wantSettled: "0.0", wantLeft: "100.0"},
		{name: "no liquidity", outstanding: "25", available: "0", wantSettled: "0.0", wantLeft: "0.0"},
		// A negative accumulator settles nothing rather than minting.
		{name: "negative outstanding", outstanding: "-5", available: "100", wantSettled: "0.0", wantLeft: "100.0"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			settled, left, err := settleOutstanding(mustFixed(t, tc.outstanding), mustFixed(t, tc.available))
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if settled.String() != tc.wantSettled {
				t.Errorf("expected settled %s, got %s", tc.wantSettled, settled.String())
			}
			if left.String() != tc.wantLeft {
				t.Errorf("expected left %s, got %s", tc.wantLeft, left.String())
			}
		})
	}
}

// TestVaultLedger tests the per-bank vault ledger credit and debit paths
func TestVaultLedger(t *testing.T) {
	k := &Keeper{}
	bank := &types.Bank{
		ID:             "usdc",
		LiquidityVault: types.ZeroFixed(),
		InsuranceVault: types.ZeroFixed(),
		FeeVault:       types.ZeroFixed(),
	}

	if err := k.creditVaultLedger(bank, types.LiquidityVaultName, sdkmath.NewInt(100)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if bank.LiquidityVault.String() != "100.0" {
		t.Errorf("expected liquidity vault 100.0, got %s", bank.LiquidityVault.String())
	}

	if err := k.debitVaultLedger(bank, types.LiquidityVaultName, sdkmath.NewInt(40)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if bank.LiquidityVault.String() != "60.0" {
		t.Errorf("expected liquidity vault 60.0, got %s", bank.LiquidityVault.String())
	}

	// The ledger never goes negative.
	if err := k.debitVaultLedger(bank, types.LiquidityVaultName, sdkmath.NewInt(100)); !errors.Is(err, types.ErrInternalLogic) {
		t.Errorf("expected ErrInternalLogic on underflow, got %v", err)
	}

	if err := k.creditVaultLedger(bank, "not-a-vault", sdkmath.NewInt(1)); !errors.Is(err, types.ErrInternalLogic) {
		t.Errorf("expected ErrInternalLogic for unknown vault, got %v", err)
	}

	// The three vault ledgers are independent.
	if err := k.creditVaultLedger(bank, types.InsuranceVaultName, sdkmath.NewInt(7)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := k.creditVaultLedger(bank, types.FeeVaultName, sdkmath.NewInt(3)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if bank.InsuranceVault.String() != "7.0" || bank.FeeVault.String() != "3.0" {
		t.Errorf("expected insurance 7.0 and fee 3.0, got %s and %s",
			bank.InsuranceVault.String(), bank.FeeVault.String())
	}
}

// TestVaultCoin tests the coin construction for vault transfers
func TestVaultCoin(t *testing.T) {
	coins := vaultCoin("uusdc", sdkmath.NewInt(1_000_000))
	if len(coins) != 1 {
		t.Fatalf("expected 1 coin, got %d", len(coins))
	}
	if coins[0].Denom != "uusdc" {
		t.Errorf("expected denom uusdc, got %s", coins[0].Denom)
	}
	if !coins[0].Amount.Equal(sdkmath.NewInt(1_000_000)) {
		t.Errorf("expected amount 1000000, got %s", coins[0].Amount.String())
	}
}
