package api

import (
	"github.com/openalpha/lend-dex/api/types"
)

// Re-export types for convenience
type (
	Bank            = types.Bank
	Balance         = types.Balance
	Account         = types.Account
	Health          = types.Health
	Liquidation     = types.Liquidation
	DepositRequest  = types.DepositRequest
	WithdrawRequest = types.WithdrawRequest
	BorrowRequest   = types.BorrowRequest
	RepayRequest    = types.RepayRequest
	AccountResponse = types.AccountResponse
	BankService     = types.BankService
	AccountService  = types.AccountService
	RiskService     = types.RiskService
)

// nowMillis returns current timestamp in milliseconds
func nowMillis() int64 {
	return types.NowMillis()
}
