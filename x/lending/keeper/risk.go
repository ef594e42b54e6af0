package keeper

import (
	sdk "github.com/cosmos/cosmos-sdk/types"

	"github.com/openalpha/lend-dex/x/lending/types"
)

// loadPriceFeed builds the price feed for a bank from its stored raw
// payload (and stake pool record for staked banks). The error is returned
// alongside so callers can apply the requirement-specific tolerance.
func (k *Keeper) loadPriceFeed(ctx sdk.Context, bank *types.Bank) (types.PriceFeed, error) {
	feed := k.GetOracleFeed(ctx, bank.Config.OracleFeedID)
	var pool *types.StakePool
	if bank.Config.OracleSetup == types.OracleSetupStakedPull {
		pool = k.GetStakePool(ctx, bank.Mint.Denom)
	}
	return types.NewPriceFeed(&bank.Config, feed, pool, ctx.BlockTime().Unix())
}

// LoadPriceFeed exposes feed construction for other modules.
func (k *Keeper) LoadPriceFeed(ctx sdk.Context, bank *types.Bank) (types.PriceFeed, error) {
	return k.loadPriceFeed(ctx, bank)
}

// LoadBankAccountsWithPriceFeeds assembles the risk engine inputs for every
// active balance of an account. Feed load failures are carried per entry,
// not returned; the valuation decides whether they are fatal.
func (k *Keeper) LoadBankAccountsWithPriceFeeds(ctx sdk.Context, account *types.Account) ([]*types.BankAccountWithPriceFeed, error) {
	return k.LoadBankAccountsWithBanks(ctx, account, nil)
}

// LoadBankAccountsWithBanks is LoadBankAccountsWithPriceFeeds with caller
// overrides: balances whose bank appears in the map use that instance
// instead of a store read, so in-flight mutations are valued correctly.
func (k *Keeper) LoadBankAccountsWithBanks(ctx sdk.Context, account *types.Account, banks map[string]*types.Bank) ([]*types.BankAccountWithPriceFeed, error) {
	var bankAccounts []*types.BankAccountWithPriceFeed
	for i := range account.Balances {
		balance := &account.Balances[i]
		if !balance.Active {
			continue
		}
		bank := banks[balance.BankID]
		if bank == nil {
			bank = k.GetBank(ctx, balance.BankID)
		}
		if bank == nil {
			return nil, types.ErrBankNotFound.Wrapf("balance references bank %s", balance.BankID)
		}
		feed, feedErr := k.loadPriceFeed(ctx, bank)
		bankAccounts = append(bankAccounts, &types.BankAccountWithPriceFeed{
			Bank:    bank,
			Balance: balance,
			Feed:    feed,
			FeedErr: feedErr,
		})
	}
	return bankAccounts, nil
}

// CheckAccountInitHealth runs the initial-requirement health check on the
// account, refreshing its health cache. Skipped inside a flashloan bracket.
func (k *Keeper) CheckAccountInitHealth(ctx sdk.Context, account *types.Account) error {
	bankAccounts, err := k.LoadBankAccountsWithPriceFeeds(ctx, account)
	if err != nil {
		return err
	}
	return types.CheckAccountInitHealth(account, bankAccounts, ctx.BlockTime().Unix())
}

// NewRiskEngine builds a risk engine over the account's current balances.
func (k *Keeper) NewRiskEngine(ctx sdk.Context, account *types.Account) (*types.RiskEngine, error) {
	return k.NewRiskEngineWithBanks(ctx, account, nil)
}

// NewRiskEngineWithBanks builds a risk engine preferring the supplied bank
// instances over store reads.
func (k *Keeper) NewRiskEngineWithBanks(ctx sdk.Context, account *types.Account, banks map[string]*types.Bank) (*types.RiskEngine, error) {
	bankAccounts, err := k.LoadBankAccountsWithBanks(ctx, account, banks)
	if err != nil {
		return nil, err
	}
	return types.NewRiskEngine(account, bankAccounts)
}

// PulseHealth recomputes and persists the account's health cache. Backs
// the permissionless health pulse used by off-chain liquidators.
func (k *Keeper) PulseHealth(ctx sdk.Context, accountID string) (*types.HealthCache, error) {
	account := k.GetAccount(ctx, accountID)
	if account == nil {
		return nil, types.ErrAccountNotFound
	}
	engine, err := k.NewRiskEngine(ctx, account)
	if err != nil {
		return nil, err
	}
	engine.RefreshHealthCache(ctx.BlockTime().Unix())
	k.SetAccount(ctx, account)
	return &account.HealthCache, nil
}
