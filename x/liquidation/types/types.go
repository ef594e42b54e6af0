package types

import (
	lendingtypes "github.com/openalpha/lend-dex/x/lending/types"
)

const ModuleName = "liquidation"

var (
	// LiquidatorFeeRate is the discount the liquidator earns on seized
	// collateral.
	LiquidatorFeeRate = mustFixed("0.025")

	// InsuranceFeeRate is the slice of the liquidatee's spread paid into
	// the liability bank's insurance vault.
	InsuranceFeeRate = mustFixed("0.025")
)

func mustFixed(s string) lendingtypes.I80F48 {
	v, err := lendingtypes.NewFixedFromString(s)
	if err != nil {
		panic(err)
	}
	return v
}

// LiquidationStatus tracks a liquidation record's lifecycle
type LiquidationStatus int

const (
	LiquidationStatusExecuted LiquidationStatus = iota
	LiquidationStatusFailed
)

func (s LiquidationStatus) String() string {
	switch s {
	case LiquidationStatusExecuted:
		return "executed"
	case LiquidationStatusFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// LiquidationRecord is the persisted outcome of a liquidation, kept for
// off-chain indexing.
type LiquidationRecord struct {
	ID string `json:"id"`

	Liquidator        string `json:"liquidator"`
	LiquidatorAccount string `json:"liquidator_account"`
	LiquidateeAccount string `json:"liquidatee_account"`

	AssetBankID     string `json:"asset_bank_id"`
	LiabilityBankID string `json:"liability_bank_id"`

	// AssetAmount is the seized collateral in asset bank native units;
	// LiabilityAmountPaid is what the liquidator took on,
	// LiabilityAmountRepaid what came off the liquidatee's debt. The
	// difference funds the insurance fee.
	AssetAmount          lendingtypes.I80F48 `json:"asset_amount"`
	LiabilityAmountPaid  lendingtypes.I80F48 `json:"liability_amount_paid"`
	LiabilityAmountRepaid lendingtypes.I80F48 `json:"liability_amount_repaid"`
	InsuranceFee         lendingtypes.I80F48 `json:"insurance_fee"`

	PreHealth  lendingtypes.I80F48 `json:"pre_health"`
	PostHealth lendingtypes.I80F48 `json:"post_health"`

	Status    LiquidationStatus `json:"status"`
	Timestamp int64             `json:"timestamp"`
}

// BankruptcyRecord is the persisted outcome of a bankruptcy settlement.
type BankruptcyRecord struct {
	ID string `json:"id"`

	AccountID string `json:"account_id"`
	BankID    string `json:"bank_id"`
	Caller    string `json:"caller"`

	BadDebt            lendingtypes.I80F48 `json:"bad_debt"`
	CoveredByInsurance lendingtypes.I80F48 `json:"covered_by_insurance"`
	Socialized         lendingtypes.I80F48 `json:"socialized"`

	Timestamp int64 `json:"timestamp"`
}
