package api

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/openalpha/lend-dex/api/types"
	lendingtypes "github.com/openalpha/lend-dex/x/lending/types"
)

// KeeperService implements BankService, AccountService, RiskService over
// the real bank and risk engine types running in memory
type KeeperService struct {
	mu sync.RWMutex

	banks     map[string]*lendingtypes.Bank
	bankOrder []string
	prices    map[string]lendingtypes.I80F48

	accounts map[string]*lendingtypes.Account

	liquidations []*types.Liquidation
}

// staticFeed serves a fixed price for every variant and bias
type staticFeed struct {
	price lendingtypes.I80F48
}

func (f *staticFeed) PriceOfType(_ lendingtypes.OraclePriceType, _ lendingtypes.PriceBias) (lendingtypes.I80F48, error) {
	return f.price, nil
}

func fixed(s string) lendingtypes.I80F48 {
	v, err := lendingtypes.NewFixedFromString(s)
	if err != nil {
		panic(fmt.Sprintf("bad fixed literal %q: %v", s, err))
	}
	return v
}

// NewKeeperService creates a KeeperService seeded with default banks
func NewKeeperService() *KeeperService {
	s := &KeeperService{
		banks:        make(map[string]*lendingtypes.Bank),
		prices:       make(map[string]lendingtypes.I80F48),
		accounts:     make(map[string]*lendingtypes.Account),
		liquidations: make([]*types.Liquidation, 0),
	}

	now := time.Now().Unix()
	s.seedBank("usdc", "uusdc", 6, "1.0", bankSeed{
		assetWeightInit:  "0.90",
		assetWeightMaint: "0.95",
		liabWeightInit:   "1.10",
		liabWeightMaint:  "1.05",
	}, now)
	s.seedBank("atom", "uatom", 6, "10.0", bankSeed{
		assetWeightInit:  "0.80",
		assetWeightMaint: "0.90",
		liabWeightInit:   "1.25",
		liabWeightMaint:  "1.10",
	}, now)

	return s
}

type bankSeed struct {
	assetWeightInit  string
	assetWeightMaint string
	liabWeightInit   string
	liabWeightMaint  string
}

func (s *KeeperService) seedBank(id, denom string, decimals uint8, price string, seed bankSeed, now int64) {
	config := lendingtypes.BankConfig{
		AssetWeightInit:      fixed(seed.assetWeightInit),
		AssetWeightMaint:     fixed(seed.assetWeightMaint),
		LiabilityWeightInit:  fixed(seed.liabWeightInit),
		LiabilityWeightMaint: fixed(seed.liabWeightMaint),
		DepositLimit:         fixed("1000000000000"),
		LiabilityLimit:       fixed("1000000000000"),
		InterestRateConfig: lendingtypes.InterestRateConfig{
			OptimalUtilizationRate: fixed("0.80"),
			PlateauInterestRate:    fixed("0.10"),
			MaxInterestRate:        fixed("1.00"),
			InsuranceFeeFixedApr:   fixed("0.01"),
			InsuranceIrFee:         fixed("0.05"),
			ProtocolFixedFeeApr:    fixed("0.01"),
			ProtocolIrFee:          fixed("0.05"),
		},
		OperationalState: lendingtypes.BankOperational,
		RiskTier:         lendingtypes.RiskTierCollateral,
		AssetTag:         lendingtypes.AssetTagDefault,
		OracleSetup:      lendingtypes.OracleSetupPush,
		OracleFeedID:     denom + "-usd",
		OracleMaxAge:     60,
	}

	mint := lendingtypes.MintInfo{Denom: denom, Decimals: decimals}
	s.banks[id] = lendingtypes.NewBank(id, lendingtypes.DefaultGroupID, mint, config, now)
	s.bankOrder = append(s.bankOrder, id)
	s.prices[id] = fixed(price)
}

// SetPrice overrides the feed price for a bank. Used by the broadcaster
// and by tests to move accounts in and out of health.
func (s *KeeperService) SetPrice(bankID, price string) error {
	v, err := lendingtypes.NewFixedFromString(price)
	if err != nil {
		return fmt.Errorf("invalid price: %v", err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.banks[bankID]; !ok {
		return fmt.Errorf("bank not found: %s", bankID)
	}
	s.prices[bankID] = v
	return nil
}

// ============================================================================
// BankService Implementation
// ============================================================================

func (s *KeeperService) ListBanks(ctx context.Context) ([]*types.Bank, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	banks := make([]*types.Bank, 0, len(s.bankOrder))
	for _, id := range s.bankOrder {
		dto, err := bankToAPI(s.banks[id])
		if err != nil {
			return nil, err
		}
		banks = append(banks, dto)
	}
	return banks, nil
}

func (s *KeeperService) GetBank(ctx context.Context, bankID string) (*types.Bank, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	bank, ok := s.banks[bankID]
	if !ok {
		return nil, fmt.Errorf("bank not found: %s", bankID)
	}
	return bankToAPI(bank)
}

func bankToAPI(bank *lendingtypes.Bank) (*types.Bank, error) {
	assets, err := bank.GetAssetAmount(bank.TotalAssetShares)
	if err != nil {
		return nil, err
	}
	liabilities, err := bank.GetLiabilityAmount(bank.TotalLiabilityShares)
	if err != nil {
		return nil, err
	}

	utilization := lendingtypes.ZeroFixed()
	if assets.IsPositive() {
		utilization, err = liabilities.Div(assets)
		if err != nil {
			return nil, err
		}
	}

	lendingApr, borrowingApr := lendingtypes.ZeroFixed(), lendingtypes.ZeroFixed()
	rates, err := bank.Config.InterestRateConfig.CalcInterestRate(utilization)
	if err == nil {
		lendingApr = rates.LendingRate
		borrowingApr = rates.BorrowingRate
	}

	return &types.Bank{
		BankID:           bank.ID,
		Denom:            bank.Mint.Denom,
		Decimals:         bank.Mint.Decimals,
		State:            bank.Config.OperationalState.String(),
		RiskTier:         riskTierString(bank.Config.RiskTier),
		TotalAssets:      assets.String(),
		TotalLiabilities: liabilities.String(),
		Utilization:      utilization.String(),
		LendingApr:       lendingApr.String(),
		BorrowingApr:     borrowingApr.String(),
		UpdatedAt:        bank.LastUpdate * 1000,
	}, nil
}

func riskTierString(tier lendingtypes.RiskTier) string {
	if tier == lendingtypes.RiskTierIsolated {
		return "isolated"
	}
	return "collateral"
}

// ============================================================================
// AccountService Implementation
// ============================================================================

func (s *KeeperService) GetAccount(ctx context.Context, accountID string) (*types.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	acc, ok := s.accounts[accountID]
	if !ok {
		return nil, fmt.Errorf("account not found: %s", accountID)
	}
	return s.accountToAPI(acc)
}

func (s *KeeperService) Deposit(ctx context.Context, req *types.DepositRequest) (*types.AccountResponse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	bank, amount, now, err := s.prepareOperation(req.BankID, req.Amount)
	if err != nil {
		return nil, err
	}
	acc, err := s.findOrCreateAccount(req.AccountID, req.Authority, now)
	if err != nil {
		return nil, err
	}

	wrapper, err := lendingtypes.FindOrCreateBankAccount(bank, acc, now)
	if err != nil {
		return nil, err
	}
	if err := wrapper.Deposit(amount, now); err != nil {
		return nil, err
	}

	return s.accountResponse(acc)
}

func (s *KeeperService) Withdraw(ctx context.Context, req *types.WithdrawRequest) (*types.AccountResponse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var amount lendingtypes.I80F48
	bank, ok := s.banks[req.BankID]
	if !ok {
		return nil, fmt.Errorf("bank not found: %s", req.BankID)
	}
	now := time.Now().Unix()
	if err := bank.AccrueInterest(now, false, lendingtypes.ZeroFixed()); err != nil {
		return nil, err
	}
	if !req.WithdrawAll {
		var err error
		amount, err = lendingtypes.NewFixedFromString(req.Amount)
		if err != nil || !amount.IsPositive() {
			return nil, fmt.Errorf("invalid amount: %s", req.Amount)
		}
	}

	acc, err := s.authorizedAccount(req.AccountID, req.Authority)
	if err != nil {
		return nil, err
	}

	wrapper, err := lendingtypes.FindBankAccount(bank, acc)
	if err != nil {
		return nil, err
	}
	if req.WithdrawAll {
		if _, err := wrapper.WithdrawAll(now); err != nil {
			return nil, err
		}
	} else {
		if err := wrapper.Withdraw(amount, now); err != nil {
			return nil, err
		}
	}

	// Withdrawals reduce collateral, so the account must re-prove health
	if err := lendingtypes.CheckAccountInitHealth(acc, s.bankAccountsFor(acc), now); err != nil {
		return nil, err
	}

	return s.accountResponse(acc)
}

func (s *KeeperService) Borrow(ctx context.Context, req *types.BorrowRequest) (*types.AccountResponse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	bank, amount, now, err := s.prepareOperation(req.BankID, req.Amount)
	if err != nil {
		return nil, err
	}
	acc, err := s.authorizedAccount(req.AccountID, req.Authority)
	if err != nil {
		return nil, err
	}

	wrapper, err := lendingtypes.FindOrCreateBankAccount(bank, acc, now)
	if err != nil {
		return nil, err
	}
	if err := wrapper.Borrow(amount, now); err != nil {
		return nil, err
	}

	if err := lendingtypes.CheckAccountInitHealth(acc, s.bankAccountsFor(acc), now); err != nil {
		return nil, err
	}

	return s.accountResponse(acc)
}

func (s *KeeperService) Repay(ctx context.Context, req *types.RepayRequest) (*types.AccountResponse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var amount lendingtypes.I80F48
	bank, ok := s.banks[req.BankID]
	if !ok {
		return nil, fmt.Errorf("bank not found: %s", req.BankID)
	}
	now := time.Now().Unix()
	if err := bank.AccrueInterest(now, false, lendingtypes.ZeroFixed()); err != nil {
		return nil, err
	}
	if !req.RepayAll {
		var err error
		amount, err = lendingtypes.NewFixedFromString(req.Amount)
		if err != nil || !amount.IsPositive() {
			return nil, fmt.Errorf("invalid amount: %s", req.Amount)
		}
	}

	acc, err := s.authorizedAccount(req.AccountID, req.Authority)
	if err != nil {
		return nil, err
	}

	wrapper, err := lendingtypes.FindBankAccount(bank, acc)
	if err != nil {
		return nil, err
	}
	if req.RepayAll {
		if _, err := wrapper.RepayAll(now); err != nil {
			return nil, err
		}
	} else {
		if err := wrapper.Repay(amount, now); err != nil {
			return nil, err
		}
	}

	return s.accountResponse(acc)
}

// ============================================================================
// RiskService Implementation
// ============================================================================

func (s *KeeperService) GetHealth(ctx context.Context, accountID string) (*types.Health, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	acc, ok := s.accounts[accountID]
	if !ok {
		return nil, fmt.Errorf("account not found: %s", accountID)
	}

	engine, err := lendingtypes.NewRiskEngine(acc, s.bankAccountsFor(acc))
	if err != nil {
		return nil, err
	}
	assets, liabilities, err := engine.AccountValues(lendingtypes.RequirementMaintenance)
	if err != nil {
		return nil, err
	}
	health, err := assets.Sub(liabilities)
	if err != nil {
		return nil, err
	}

	return &types.Health{
		AccountID:      accountID,
		AssetValue:     assets.String(),
		LiabilityValue: liabilities.String(),
		Health:         health.String(),
		Healthy:        !health.IsNegative(),
		Timestamp:      types.NowMillis(),
	}, nil
}

func (s *KeeperService) ListLiquidations(ctx context.Context, limit int) ([]*types.Liquidation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if limit <= 0 || limit > len(s.liquidations) {
		limit = len(s.liquidations)
	}
	// Newest first
	out := make([]*types.Liquidation, 0, limit)
	for i := len(s.liquidations) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, s.liquidations[i])
	}
	return out, nil
}

// ============================================================================
// Helper Methods
// ============================================================================

// prepareOperation resolves the bank, accrues its interest and parses the
// request amount
func (s *KeeperService) prepareOperation(bankID, amountStr string) (*lendingtypes.Bank, lendingtypes.I80F48, int64, error) {
	bank, ok := s.banks[bankID]
	if !ok {
		return nil, lendingtypes.I80F48{}, 0, fmt.Errorf("bank not found: %s", bankID)
	}

	now := time.Now().Unix()
	if err := bank.AccrueInterest(now, false, lendingtypes.ZeroFixed()); err != nil {
		return nil, lendingtypes.I80F48{}, 0, err
	}

	amount, err := lendingtypes.NewFixedFromString(amountStr)
	if err != nil || !amount.IsPositive() {
		return nil, lendingtypes.I80F48{}, 0, fmt.Errorf("invalid amount: %s", amountStr)
	}
	return bank, amount, now, nil
}

func (s *KeeperService) findOrCreateAccount(accountID, authority string, now int64) (*lendingtypes.Account, error) {
	if acc, ok := s.accounts[accountID]; ok {
		if acc.Authority != authority {
			return nil, fmt.Errorf("unauthorized: account belongs to different authority")
		}
		return acc, nil
	}
	acc := lendingtypes.NewAccount(accountID, lendingtypes.DefaultGroupID, authority, now)
	s.accounts[accountID] = acc
	return acc, nil
}

func (s *KeeperService) authorizedAccount(accountID, authority string) (*lendingtypes.Account, error) {
	acc, ok := s.accounts[accountID]
	if !ok {
		return nil, fmt.Errorf("account not found: %s", accountID)
	}
	if acc.Authority != authority {
		return nil, fmt.Errorf("unauthorized: account belongs to different authority")
	}
	return acc, nil
}

// bankAccountsFor pairs each active balance with its bank and feed, in
// slot order
func (s *KeeperService) bankAccountsFor(acc *lendingtypes.Account) []*lendingtypes.BankAccountWithPriceFeed {
	bankAccounts := make([]*lendingtypes.BankAccountWithPriceFeed, 0, len(acc.Balances))
	for i := range acc.Balances {
		balance := &acc.Balances[i]
		if !balance.Active {
			continue
		}
		bank, ok := s.banks[balance.BankID]
		if !ok {
			continue
		}
		bankAccounts = append(bankAccounts, &lendingtypes.BankAccountWithPriceFeed{
			Bank:    bank,
			Balance: balance,
			Feed:    &staticFeed{price: s.prices[bank.ID]},
		})
	}
	return bankAccounts
}

func (s *KeeperService) accountResponse(acc *lendingtypes.Account) (*types.AccountResponse, error) {
	dto, err := s.accountToAPI(acc)
	if err != nil {
		return nil, err
	}
	return &types.AccountResponse{Account: dto}, nil
}

func (s *KeeperService) accountToAPI(acc *lendingtypes.Account) (*types.Account, error) {
	balances := make([]*types.Balance, 0)
	var updatedAt int64
	for i := range acc.Balances {
		balance := &acc.Balances[i]
		if !balance.Active {
			continue
		}
		bank, ok := s.banks[balance.BankID]
		if !ok {
			continue
		}
		assets, liabilities, err := balance.Amounts(bank)
		if err != nil {
			return nil, err
		}
		balances = append(balances, &types.Balance{
			BankID:      balance.BankID,
			Assets:      assets.String(),
			Liabilities: liabilities.String(),
			UpdatedAt:   balance.LastUpdate * 1000,
		})
		if balance.LastUpdate > updatedAt {
			updatedAt = balance.LastUpdate
		}
	}
	if updatedAt == 0 {
		updatedAt = acc.CreatedAt
	}

	return &types.Account{
		AccountID: acc.ID,
		Authority: acc.Authority,
		GroupID:   acc.GroupID,
		Balances:  balances,
		UpdatedAt: updatedAt * 1000,
	}, nil
}

// RecordLiquidation appends a liquidation record for the risk feed
func (s *KeeperService) RecordLiquidation(liq *types.Liquidation) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.liquidations = append(s.liquidations, liq)
}
