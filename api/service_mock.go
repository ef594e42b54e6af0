package api

import (
	"context"
	"fmt"
	"strconv"
	"sync"

	"github.com/openalpha/lend-dex/api/types"
)

// MockService implements all service interfaces with string arithmetic
// only, for tests and local frontend work
type MockService struct {
	banks    map[string]*types.Bank
	accounts map[string]*types.Account
	mu       sync.RWMutex
}

// NewMockService creates a new mock service
func NewMockService() *MockService {
	ms := &MockService{
		banks:    make(map[string]*types.Bank),
		accounts: make(map[string]*types.Account),
	}
	ms.initMockData()
	return ms
}

// initMockData seeds the bank list. Accounts start empty and are created
// by deposits.
func (ms *MockService) initMockData() {
	now := types.NowMillis()
	ms.banks["usdc"] = &types.Bank{
		BankID:           "usdc",
		Denom:            "uusdc",
		Decimals:         6,
		State:            "operational",
		RiskTier:         "collateral",
		TotalAssets:      "0",
		TotalLiabilities: "0",
		Utilization:      "0",
		LendingApr:       "0.04",
		BorrowingApr:     "0.07",
		UpdatedAt:        now,
	}
	ms.banks["atom"] = &types.Bank{
		BankID:           "atom",
		Denom:            "uatom",
		Decimals:         6,
		State:            "operational",
		RiskTier:         "collateral",
		TotalAssets:      "0",
		TotalLiabilities: "0",
		Utilization:      "0",
		LendingApr:       "0.06",
		BorrowingApr:     "0.11",
		UpdatedAt:        now,
	}
}

// ============ BankService Implementation ============

func (ms *MockService) ListBanks(ctx context.Context) ([]*types.Bank, error) {
	ms.mu.RLock()
	defer ms.mu.RUnlock()

	banks := make([]*types.Bank, 0, len(ms.banks))
	for _, bank := range ms.banks {
		banks = append(banks, bank)
	}
	return banks, nil
}

func (ms *MockService) GetBank(ctx context.Context, bankID string) (*types.Bank, error) {
	ms.mu.RLock()
	defer ms.mu.RUnlock()

	bank, ok := ms.banks[bankID]
	if !ok {
		return nil, fmt.Errorf("bank not found: %s", bankID)
	}
	return bank, nil
}

// ============ AccountService Implementation ============

func (ms *MockService) GetAccount(ctx context.Context, accountID string) (*types.Account, error) {
	ms.mu.RLock()
	defer ms.mu.RUnlock()

	acc, ok := ms.accounts[accountID]
	if !ok {
		return nil, fmt.Errorf("account not found: %s", accountID)
	}
	return acc, nil
}

func (ms *MockService) Deposit(ctx context.Context, req *types.DepositRequest) (*types.AccountResponse, error) {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	if _, ok := ms.banks[req.BankID]; !ok {
		return nil, fmt.Errorf("bank not found: %s", req.BankID)
	}
	amount, err := parseAmount(req.Amount)
	if err != nil {
		return nil, err
	}

	acc, ok := ms.accounts[req.AccountID]
	if !ok {
		acc = &types.Account{
			AccountID: req.AccountID,
			Authority: req.Authority,
			GroupID:   "main",
			Balances:  []*types.Balance{},
		}
		ms.accounts[req.AccountID] = acc
	}

	balance := findOrCreateBalance(acc, req.BankID)
	balance.Assets = addAmount(balance.Assets, amount)
	balance.UpdatedAt = types.NowMillis()
	acc.UpdatedAt = balance.UpdatedAt

	return &types.AccountResponse{Account: acc}, nil
}

func (ms *MockService) Withdraw(ctx context.Context, req *types.WithdrawRequest) (*types.AccountResponse, error) {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	acc, ok := ms.accounts[req.AccountID]
	if !ok {
		return nil, fmt.Errorf("account not found: %s", req.AccountID)
	}
	balance := findBalance(acc, req.BankID)
	if balance == nil {
		return nil, fmt.Errorf("no balance in bank: %s", req.BankID)
	}

	if req.WithdrawAll {
		balance.Assets = "0"
	} else {
		amount, err := parseAmount(req.Amount)
		if err != nil {
			return nil, err
		}
		remaining, err := subAmount(balance.Assets, amount)
		if err != nil {
			return nil, fmt.Errorf("insufficient balance")
		}
		balance.Assets = remaining
	}
	balance.UpdatedAt = types.NowMillis()
	acc.UpdatedAt = balance.UpdatedAt

	return &types.AccountResponse{Account: acc}, nil
}

func (ms *MockService) Borrow(ctx context.Context, req *types.BorrowRequest) (*types.AccountResponse, error) {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	acc, ok := ms.accounts[req.AccountID]
	if !ok {
		return nil, fmt.Errorf("account not found: %s", req.AccountID)
	}
	amount, err := parseAmount(req.Amount)
	if err != nil {
		return nil, err
	}

	balance := findOrCreateBalance(acc, req.BankID)
	balance.Liabilities = addAmount(balance.Liabilities, amount)
	balance.UpdatedAt = types.NowMillis()
	acc.UpdatedAt = balance.UpdatedAt

	return &types.AccountResponse{Account: acc}, nil
}

func (ms *MockService) Repay(ctx context.Context, req *types.RepayRequest) (*types.AccountResponse, error) {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	acc, ok := ms.accounts[req.AccountID]
	if !ok {
		return nil, fmt.Errorf("account not found: %s", req.AccountID)
	}
	balance := findBalance(acc, req.BankID)
	if balance == nil {
		return nil, fmt.Errorf("no balance in bank: %s", req.BankID)
	}

	if req.RepayAll {
		balance.Liabilities = "0"
	} else {
		amount, err := parseAmount(req.Amount)
		if err != nil {
			return nil, err
		}
		remaining, err := subAmount(balance.Liabilities, amount)
		if err != nil {
			return nil, fmt.Errorf("repay exceeds liability")
		}
		balance.Liabilities = remaining
	}
	balance.UpdatedAt = types.NowMillis()
	acc.UpdatedAt = balance.UpdatedAt

	return &types.AccountResponse{Account: acc}, nil
}

// ============ RiskService Implementation ============

func (ms *MockService) GetHealth(ctx context.Context, accountID string) (*types.Health, error) {
	ms.mu.RLock()
	defer ms.mu.RUnlock()

	if _, ok := ms.accounts[accountID]; !ok {
		return nil, fmt.Errorf("account not found: %s", accountID)
	}
	return &types.Health{
		AccountID:      accountID,
		AssetValue:     "0",
		LiabilityValue: "0",
		Health:         "0",
		Healthy:        true,
		Timestamp:      types.NowMillis(),
	}, nil
}

func (ms *MockService) ListLiquidations(ctx context.Context, limit int) ([]*types.Liquidation, error) {
	return []*types.Liquidation{}, nil
}

// ============ Helpers ============

func findBalance(acc *types.Account, bankID string) *types.Balance {
	for _, b := range acc.Balances {
		if b.BankID == bankID {
			return b
		}
	}
	return nil
}

func findOrCreateBalance(acc *types.Account, bankID string) *types.Balance {
	if b := findBalance(acc, bankID); b != nil {
		return b
	}
	b := &types.Balance{BankID: bankID, Assets: "0", Liabilities: "0"}
	acc.Balances = append(acc.Balances, b)
	return b
}

func parseAmount(s string) (float64, error) {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || v <= 0 {
		return 0, fmt.Errorf("invalid amount: %s", s)
	}
	return v, nil
}

func addAmount(current string, delta float64) string {
	v, _ := strconv.ParseFloat(current, 64)
	return strconv.FormatFloat(v+delta, 'f', -1, 64)
}

func subAmount(current string, delta float64) (string, error) {
	v, _ := strconv.ParseFloat(current, 64)
	if delta > v {
		return "", fmt.Errorf("underflow")
	}
	return strconv.FormatFloat(v-delta, 'f', -1, 64), nil
}
