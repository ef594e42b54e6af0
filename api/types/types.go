package types

import (
	"context"
	"time"
)

// Bank represents a bank in the API response
type Bank struct {
	BankID           string `json:"bank_id"`
	Denom            string `json:"denom"`
	Decimals         uint8  `json:"decimals"`
	State            string `json:"state"`
	RiskTier         string `json:"risk_tier"`
	TotalAssets      string `json:"total_assets"`
	TotalLiabilities string `json:"total_liabilities"`
	Utilization      string `json:"utilization"`
	LendingApr       string `json:"lending_apr"`
	BorrowingApr     string `json:"borrowing_apr"`
	UpdatedAt        int64  `json:"updated_at"`
}

// Balance represents one side of an account's position in a bank
type Balance struct {
	BankID      string `json:"bank_id"`
	Assets      string `json:"assets"`
	Liabilities string `json:"liabilities"`
	UpdatedAt   int64  `json:"updated_at"`
}

// Account represents a lending account in the API response
type Account struct {
	AccountID string     `json:"account_id"`
	Authority string     `json:"authority"`
	GroupID   string     `json:"group_id"`
	Balances  []*Balance `json:"balances"`
	UpdatedAt int64      `json:"updated_at"`
}

// Health represents an account's health valuation
type Health struct {
	AccountID      string `json:"account_id"`
	AssetValue     string `json:"asset_value"`
	LiabilityValue string `json:"liability_value"`
	Health         string `json:"health"`
	Healthy        bool   `json:"healthy"`
	Timestamp      int64  `json:"timestamp"`
}

// Liquidation represents a liquidation record in the API response
type Liquidation struct {
	LiquidationID     string `json:"liquidation_id"`
	LiquidatorAccount string `json:"liquidator_account"`
	LiquidateeAccount string `json:"liquidatee_account"`
	AssetBankID       string `json:"asset_bank_id"`
	LiabilityBankID   string `json:"liability_bank_id"`
	AssetAmount       string `json:"asset_amount"`
	Timestamp         int64  `json:"timestamp"`
}

// DepositRequest represents the request to deposit into a bank
type DepositRequest struct {
	Authority string `json:"authority"`
	AccountID string `json:"account_id"`
	BankID    string `json:"bank_id"`
	Amount    string `json:"amount"`
}

// WithdrawRequest represents the request to withdraw from a bank
type WithdrawRequest struct {
	Authority   string `json:"authority"`
	AccountID   string `json:"account_id"`
	BankID      string `json:"bank_id"`
	Amount      string `json:"amount"`
	WithdrawAll bool   `json:"withdraw_all,omitempty"`
}

// BorrowRequest represents the request to borrow from a bank
type BorrowRequest struct {
	Authority string `json:"authority"`
	AccountID string `json:"account_id"`
	BankID    string `json:"bank_id"`
	Amount    string `json:"amount"`
}

// RepayRequest represents the request to repay a borrow
type RepayRequest struct {
	Authority string `json:"authority"`
	AccountID string `json:"account_id"`
	BankID    string `json:"bank_id"`
	Amount    string `json:"amount"`
	RepayAll  bool   `json:"repay_all,omitempty"`
}

// AccountResponse represents the response for account operations
type AccountResponse struct {
	Account *Account `json:"account"`
}

// BankService defines the interface for bank queries
type BankService interface {
	ListBanks(ctx context.Context) ([]*Bank, error)
	GetBank(ctx context.Context, bankID string) (*Bank, error)
}

// AccountService defines the interface for account operations
type AccountService interface {
	GetAccount(ctx context.Context, accountID string) (*Account, error)
	Deposit(ctx context.Context, req *DepositRequest) (*AccountResponse, error)
	Withdraw(ctx context.Context, req *WithdrawRequest) (*AccountResponse, error)
	Borrow(ctx context.Context, req *BorrowRequest) (*AccountResponse, error)
	Repay(ctx context.Context, req *RepayRequest) (*AccountResponse, error)
}

// RiskService defines the interface for health and liquidation queries
type RiskService interface {
	GetHealth(ctx context.Context, accountID string) (*Health, error)
	ListLiquidations(ctx context.Context, limit int) ([]*Liquidation, error)
}

// Helper function to get current timestamp in milliseconds
func NowMillis() int64 {
	return time.Now().UnixMilli()
}
