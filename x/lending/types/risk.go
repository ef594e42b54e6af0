package types

import (
	"errors"
)

// BankAccountWithPriceFeed pairs one active balance with its bank and the
// price feed loaded for it. FeedErr carries a feed that failed to load;
// whether that is fatal depends on the requirement type and side being
// valued.
type BankAccountWithPriceFeed struct {
	Bank    *Bank
	Balance *Balance

	Feed    PriceFeed
	FeedErr error
}

// WeightedValues returns the USD value of both sides of the balance under
// the given requirement type: assets low-biased and weighted (zero for
// isolated-tier banks), liabilities high-biased and weighted.
//
// A failed feed is tolerated, valuing the asset side at zero, only for
// initial requirements; everywhere else it aborts the valuation.
func (bap *BankAccountWithPriceFeed) WeightedValues(req RequirementType) (assets, liabilities I80F48, err error) {
	assets, err = bap.weightedAssets(req)
	if err != nil {
		return I80F48{}, I80F48{}, err
	}
	liabilities, err = bap.weightedLiabilities(req)
	if err != nil {
		return I80F48{}, I80F48{}, err
	}
	return assets, liabilities, nil
}

func (bap *BankAccountWithPriceFeed) weightedAssets(req RequirementType) (I80F48, error) {
	if bap.Balance.AssetShares.IsZeroWithTolerance(EmptyBalanceThreshold) {
		return ZeroFixed(), nil
	}
	// Isolated deposits never count as collateral.
	if req != RequirementEquity && bap.Bank.Config.RiskTier == RiskTierIsolated {
		return ZeroFixed(), nil
	}
	if bap.FeedErr != nil {
		if req == RequirementInitial && errors.Is(bap.FeedErr, ErrStaleOracle) {
			return ZeroFixed(), nil
		}
		return I80F48{}, bap.FeedErr
	}

	price, err := bap.Feed.PriceOfType(req.OraclePriceType(), PriceBiasLow)
	if err != nil {
		return I80F48{}, err
	}
	weight := bap.Bank.Config.GetWeight(req, BalanceSideAssets)
	if req == RequirementInitial {
		discount, ok, err := bap.Bank.MaybeGetAssetWeightInitDiscount(price)
		if err != nil {
			return I80F48{}, err
		}
		if ok {
			weight, err = weight.Mul(discount)
			if err != nil {
				return I80F48{}, err
			}
		}
	}
	amount, err := bap.Bank.GetAssetAmount(bap.Balance.AssetShares)
	if err != nil {
		return I80F48{}, err
	}
	return CalcValue(amount, price, bap.Bank.Mint.Decimals, &weight)
}

func (bap *BankAccountWithPriceFeed) weightedLiabilities(req RequirementType) (I80F48, error) {
	if bap.Balance.LiabilityShares.IsZeroWithTolerance(EmptyBalanceThreshold) {
		return ZeroFixed(), nil
	}
	if bap.FeedErr != nil {
		return I80F48{}, bap.FeedErr
	}
	price, err := bap.Feed.PriceOfType(req.OraclePriceType(), PriceBiasHigh)
	if err != nil {
		return I80F48{}, err
	}
	weight := bap.Bank.Config.GetWeight(req, BalanceSideLiabilities)
	amount, err := bap.Bank.GetLiabilityAmount(bap.Balance.LiabilityShares)
	if err != nil {
		return I80F48{}, err
	}
	return CalcValue(amount, price, bap.Bank.Mint.Decimals, &weight)
}

// lowBiasedPrice is the price recorded in the health cache for the slot, or
// zero when the feed is unavailable.
func (bap *BankAccountWithPriceFeed) lowBiasedPrice() I80F48 {
	if bap.FeedErr != nil {
		return ZeroFixed()
	}
	p, err := bap.Feed.PriceOfType(OraclePriceTypeTimeWeighted, PriceBiasLow)
	if err != nil {
		return ZeroFixed()
	}
	return p
}

// RiskEngine values a whole account against a requirement type. It holds
// one entry per active balance, in slot order.
type RiskEngine struct {
	account      *Account
	bankAccounts []*BankAccountWithPriceFeed
}

// NewRiskEngine builds a risk engine for an account outside a flashloan.
func NewRiskEngine(account *Account, bankAccounts []*BankAccountWithPriceFeed) (*RiskEngine, error) {
	if account.IsInFlashloan() {
		return nil, ErrAccountInFlashloan
	}
	return &RiskEngine{account: account, bankAccounts: bankAccounts}, nil
}

// newRiskEngineNoFlashloanCheck is the flashloan-tolerant constructor used
// by CheckAccountInitHealth, which decides itself whether to skip.
func newRiskEngineNoFlashloanCheck(account *Account, bankAccounts []*BankAccountWithPriceFeed) *RiskEngine {
	return &RiskEngine{account: account, bankAccounts: bankAccounts}
}

// AccountValues returns the total weighted asset and liability values under
// the requirement type.
func (re *RiskEngine) AccountValues(req RequirementType) (assets, liabilities I80F48, err error) {
	assets, liabilities = ZeroFixed(), ZeroFixed()
	for _, bap := range re.bankAccounts {
		a, l, err := bap.WeightedValues(req)
		if err != nil {
			return I80F48{}, I80F48{}, err
		}
		assets, err = assets.Add(a)
		if err != nil {
			return I80F48{}, I80F48{}, err
		}
		liabilities, err = liabilities.Add(l)
		if err != nil {
			return I80F48{}, I80F48{}, err
		}
	}
	return assets, liabilities, nil
}

// AccountHealth returns assets - liabilities under the requirement type.
func (re *RiskEngine) AccountHealth(req RequirementType) (I80F48, error) {
	assets, liabilities, err := re.AccountValues(req)
	if err != nil {
		return I80F48{}, err
	}
	return assets.Sub(liabilities)
}

// CheckAccountInitHealth enforces initial-requirement health and the
// isolated-tier exclusivity rule, refreshing the account's health cache.
// Skipped entirely while the account is inside a flashloan bracket.
func CheckAccountInitHealth(account *Account, bankAccounts []*BankAccountWithPriceFeed, now int64) error {
	if account.IsInFlashloan() {
		return nil
	}
	re := newRiskEngineNoFlashloanCheck(account, bankAccounts)

	assets, liabilities, err := re.AccountValues(RequirementInitial)
	if err != nil {
		re.writeHealthCache(account, ZeroFixed(), ZeroFixed(), false, false, now)
		return ErrRiskEngineInitRejected.Wrap(err.Error())
	}
	healthy := assets.GTE(liabilities)
	re.writeHealthCache(account, assets, liabilities, healthy, true, now)
	if !healthy {
		return ErrRiskEngineInitRejected.Wrapf(
			"assets %s < liabilities %s", assets.String(), liabilities.String())
	}
	return re.checkAccountRiskTiers()
}

// checkAccountRiskTiers enforces that an account with an isolated-tier
// liability holds no other liability.
func (re *RiskEngine) checkAccountRiskTiers() error {
	liabilityCount := 0
	hasIsolated := false
	for _, bap := range re.bankAccounts {
		if bap.Balance.IsEmpty(BalanceSideLiabilities) {
			continue
		}
		liabilityCount++
		if bap.Bank.Config.RiskTier == RiskTierIsolated {
			hasIsolated = true
		}
	}
	if hasIsolated && liabilityCount != 1 {
		return ErrIsolatedAccountIllegalState
	}
	return nil
}

func (re *RiskEngine) writeHealthCache(account *Account, assets, liabilities I80F48, healthy, engineOk bool, now int64) {
	cache := HealthCache{
		AssetValue:     assets,
		LiabilityValue: liabilities,
		Timestamp:      now,
		Healthy:        healthy,
		EngineOk:       engineOk,
	}
	for i := range cache.Prices {
		cache.Prices[i] = ZeroFixed()
	}
	for _, bap := range re.bankAccounts {
		for i := range account.Balances {
			if account.Balances[i].Active && account.Balances[i].BankID == bap.Bank.ID {
				cache.Prices[i] = bap.lowBiasedPrice()
			}
		}
	}
	account.HealthCache = cache
}

// RefreshHealthCache recomputes the cached health snapshot without
// enforcing anything. Backs the permissionless health pulse.
func (re *RiskEngine) RefreshHealthCache(now int64) {
	assets, liabilities, err := re.AccountValues(RequirementInitial)
	if err != nil {
		re.writeHealthCache(re.account, ZeroFixed(), ZeroFixed(), false, false, now)
		return
	}
	re.writeHealthCache(re.account, assets, liabilities, assets.GTE(liabilities), true, now)
}

// CheckPreLiquidationCondition verifies the account is liquidatable against
// the given liability bank and returns its maintenance health.
func (re *RiskEngine) CheckPreLiquidationCondition(liabilityBankID string) (I80F48, error) {
	balance := re.account.FindBalance(liabilityBankID)
	if balance == nil {
		return I80F48{}, ErrBalanceNotFound
	}
	if balance.IsEmpty(BalanceSideLiabilities) {
		return I80F48{}, ErrNoLiabilitiesInLiabilityBank
	}
	if !balance.IsEmpty(BalanceSideAssets) {
		return I80F48{}, ErrAssetsInLiabilityBank
	}
	health, err := re.AccountHealth(RequirementMaintenance)
	if err != nil {
		return I80F48{}, err
	}
	// Health exactly zero is already liquidatable.
	if health.IsPositive() {
		return I80F48{}, ErrHealthyAccount.Wrapf("maintenance health %s", health.String())
	}
	return health, nil
}

// CheckPostLiquidationCondition verifies the liquidation left the account
// in a legal state and returns its new maintenance health. The liability
// may be reduced but not closed, the liability bank must hold no assets,
// and health must have improved while staying at or below zero.
func (re *RiskEngine) CheckPostLiquidationCondition(liabilityBankID string, preHealth I80F48) (I80F48, error) {
	balance := re.account.FindBalance(liabilityBankID)
	if balance == nil {
		return I80F48{}, ErrBalanceNotFound
	}
	if balance.IsEmpty(BalanceSideLiabilities) {
		return I80F48{}, ErrExhaustedLiability
	}
	if !balance.IsEmpty(BalanceSideAssets) {
		return I80F48{}, ErrAssetsInLiabilityBank
	}
	remaining, err := re.liabilityAmount(liabilityBankID, balance)
	if err != nil {
		return I80F48{}, err
	}
	if !remaining.IsPositiveWithTolerance(ZeroAmountThreshold) {
		return I80F48{}, ErrTooSeverePayoff
	}

	health, err := re.AccountHealth(RequirementMaintenance)
	if err != nil {
		return I80F48{}, err
	}
	if health.IsPositive() {
		return I80F48{}, ErrTooSevereLiquidation.Wrapf("maintenance health %s", health.String())
	}
	if health.LTE(preHealth) {
		return I80F48{}, ErrWorseHealthPostLiquidation.Wrapf(
			"health %s, was %s", health.String(), preHealth.String())
	}
	return health, nil
}

func (re *RiskEngine) liabilityAmount(bankID string, balance *Balance) (I80F48, error) {
	for _, bap := range re.bankAccounts {
		if bap.Bank.ID == bankID {
			return bap.Bank.GetLiabilityAmount(balance.LiabilityShares)
		}
	}
	return I80F48{}, ErrBankNotFound
}

// CheckAccountBankrupt verifies the account qualifies for bankruptcy
// settlement: insolvent at equity valuation, with negligible assets and
// non-negligible liabilities.
func (re *RiskEngine) CheckAccountBankrupt() error {
	if re.account.IsDisabled() {
		return ErrAccountDisabled
	}
	assets, liabilities, err := re.AccountValues(RequirementEquity)
	if err != nil {
		return err
	}
	if assets.GTE(liabilities) {
		return ErrAccountNotBankrupt.Wrapf(
			"assets %s >= liabilities %s", assets.String(), liabilities.String())
	}
	if assets.GTE(BankruptThreshold) {
		return ErrAccountNotBankrupt.Wrapf("assets %s above bankruptcy threshold", assets.String())
	}
	if !liabilities.GT(ZeroAmountThreshold) {
		return ErrAccountNotBankrupt.Wrap("no meaningful liabilities")
	}
	return nil
}
