package keeper

import (
	"context"
	"encoding/json"

	"cosmossdk.io/log"
	sdkmath "cosmossdk.io/math"
	storetypes "cosmossdk.io/store/types"
	"github.com/cosmos/cosmos-sdk/codec"
	sdk "github.com/cosmos/cosmos-sdk/types"

	"github.com/openalpha/lend-dex/x/lending/types"
)

// Store key prefixes
var (
	GroupKeyPrefix      = []byte{0x01}
	BankKeyPrefix       = []byte{0x02}
	AccountKeyPrefix    = []byte{0x03}
	OracleFeedKeyPrefix = []byte{0x04}
	StakePoolKeyPrefix  = []byte{0x05}
)

// BankKeeper defines the expected interface for the SDK bank module, which
// holds the actual coins behind the lending vaults.
type BankKeeper interface {
	SendCoinsFromAccountToModule(ctx context.Context, senderAddr sdk.AccAddress, recipientModule string, amt sdk.Coins) error
	SendCoinsFromModuleToAccount(ctx context.Context, senderModule string, recipientAddr sdk.AccAddress, amt sdk.Coins) error
	SendCoinsFromModuleToModule(ctx context.Context, senderModule, recipientModule string, amt sdk.Coins) error
	GetBalance(ctx context.Context, addr sdk.AccAddress, denom string) sdk.Coin
}

// Keeper manages the lending module state
type Keeper struct {
	cdc        codec.BinaryCodec
	storeKey   storetypes.StoreKey
	bankKeeper BankKeeper
	logger     log.Logger
}

// NewKeeper creates a new lending keeper
func NewKeeper(
	cdc codec.BinaryCodec,
	storeKey storetypes.StoreKey,
	bankKeeper BankKeeper,
	logger log.Logger,
) *Keeper {
	return &Keeper{
		cdc:        cdc,
		storeKey:   storeKey,
		bankKeeper: bankKeeper,
		logger:     logger.With("module", "x/lending"),
	}
}

// Logger returns the module logger
func (k *Keeper) Logger() log.Logger {
	return k.logger
}

// GetStore returns the KVStore
func (k *Keeper) GetStore(ctx sdk.Context) storetypes.KVStore {
	return ctx.KVStore(k.storeKey)
}

// ============ Group Store Operations ============

// SetGroup saves a lending group to the store
func (k *Keeper) SetGroup(ctx sdk.Context, group *types.LendingGroup) {
	store := k.GetStore(ctx)
	key := append(GroupKeyPrefix, []byte(group.ID)...)
	bz, _ := json.Marshal(group)
	store.Set(key, bz)
}

// GetGroup retrieves a lending group from the store
func (k *Keeper) GetGroup(ctx sdk.Context, groupID string) *types.LendingGroup {
	store := k.GetStore(ctx)
	bz := store.Get(append(GroupKeyPrefix, []byte(groupID)...))
	if bz == nil {
		return nil
	}
	var group types.LendingGroup
	if err := json.Unmarshal(bz, &group); err != nil {
		return nil
	}
	return &group
}

// ============ Bank Store Operations ============

// SetBank saves a bank to the store
func (k *Keeper) SetBank(ctx sdk.Context, bank *types.Bank) {
	store := k.GetStore(ctx)
	key := append(BankKeyPrefix, []byte(bank.ID)...)
	bz, _ := json.Marshal(bank)
	store.Set(key, bz)
}

// GetBank retrieves a bank from the store
func (k *Keeper) GetBank(ctx sdk.Context, bankID string) *types.Bank {
	store := k.GetStore(ctx)
	bz := store.Get(append(BankKeyPrefix, []byte(bankID)...))
	if bz == nil {
		return nil
	}
	var bank types.Bank
	if err := json.Unmarshal(bz, &bank); err != nil {
		return nil
	}
	return &bank
}

// GetAllBanks returns all banks
func (k *Keeper) GetAllBanks(ctx sdk.Context) []*types.Bank {
	store := k.GetStore(ctx)
	iterator := storetypes.KVStorePrefixIterator(store, BankKeyPrefix)
	defer iterator.Close()

	var banks []*types.Bank
	for ; iterator.Valid(); iterator.Next() {
		var bank types.Bank
		if err := json.Unmarshal(iterator.Value(), &bank); err != nil {
			continue
		}
		banks = append(banks, &bank)
	}
	return banks
}

// ============ Account Store Operations ============

// SetAccount saves a lending account to the store
func (k *Keeper) SetAccount(ctx sdk.Context, account *types.Account) {
	store := k.GetStore(ctx)
	key := append(AccountKeyPrefix, []byte(account.ID)...)
	bz, _ := json.Marshal(account)
	store.Set(key, bz)
}

// GetAccount retrieves a lending account from the store
func (k *Keeper) GetAccount(ctx sdk.Context, accountID string) *types.Account {
	store := k.GetStore(ctx)
	bz := store.Get(append(AccountKeyPrefix, []byte(accountID)...))
	if bz == nil {
		return nil
	}
	var account types.Account
	if err := json.Unmarshal(bz, &account); err != nil {
		return nil
	}
	return &account
}

// DeleteAccount removes a lending account from the store
func (k *Keeper) DeleteAccount(ctx sdk.Context, accountID string) {
	store := k.GetStore(ctx)
	store.Delete(append(AccountKeyPrefix, []byte(accountID)...))
}

// GetAllAccounts returns all lending accounts
func (k *Keeper) GetAllAccounts(ctx sdk.Context) []*types.Account {
	store := k.GetStore(ctx)
	iterator := storetypes.KVStorePrefixIterator(store, AccountKeyPrefix)
	defer iterator.Close()

	var accounts []*types.Account
	for ; iterator.Valid(); iterator.Next() {
		var account types.Account
		if err := json.Unmarshal(iterator.Value(), &account); err != nil {
			continue
		}
		accounts = append(accounts, &account)
	}
	return accounts
}

// ============ Oracle Feed Store Operations ============

// SetOracleFeed saves a raw oracle feed payload to the store
func (k *Keeper) SetOracleFeed(ctx sdk.Context, feed *types.OracleFeed) {
	store := k.GetStore(ctx)
	key := append(OracleFeedKeyPrefix, []byte(feed.FeedID)...)
	bz, _ := json.Marshal(feed)
	store.Set(key, bz)
}

// GetOracleFeed retrieves a raw oracle feed payload from the store
func (k *Keeper) GetOracleFeed(ctx sdk.Context, feedID string) *types.OracleFeed {
	store := k.GetStore(ctx)
	bz := store.Get(append(OracleFeedKeyPrefix, []byte(feedID)...))
	if bz == nil {
		return nil
	}
	var feed types.OracleFeed
	if err := json.Unmarshal(bz, &feed); err != nil {
		return nil
	}
	return &feed
}

// ============ Stake Pool Store Operations ============

// SetStakePool saves a stake pool record to the store
func (k *Keeper) SetStakePool(ctx sdk.Context, pool *types.StakePool) {
	store := k.GetStore(ctx)
	key := append(StakePoolKeyPrefix, []byte(pool.LstMintDenom)...)
	bz, _ := json.Marshal(pool)
	store.Set(key, bz)
}

// GetStakePool retrieves the stake pool record for an LST mint
func (k *Keeper) GetStakePool(ctx sdk.Context, lstMintDenom string) *types.StakePool {
	store := k.GetStore(ctx)
	bz := store.Get(append(StakePoolKeyPrefix, []byte(lstMintDenom)...))
	if bz == nil {
		return nil
	}
	var pool types.StakePool
	if err := json.Unmarshal(bz, &pool); err != nil {
		return nil
	}
	return &pool
}

// ============ Vault transfers ============

// vaultCoin builds the sdk.Coins for a whole-unit token amount.
func vaultCoin(denom string, amount sdkmath.Int) sdk.Coins {
	return sdk.NewCoins(sdk.NewCoin(denom, amount))
}

// collectToVault moves tokens from a user wallet into a vault module
// account and credits the bank's per-vault ledger.
func (k *Keeper) collectToVault(ctx sdk.Context, bank *types.Bank, vault string, from sdk.AccAddress, amount sdkmath.Int) error {
	if !amount.IsPositive() {
		return nil
	}
	if err := k.bankKeeper.SendCoinsFromAccountToModule(ctx, from, vault, vaultCoin(bank.Mint.Denom, amount)); err != nil {
		return err
	}
	return k.creditVaultLedger(bank, vault, amount)
}

// payFromVault moves tokens from a vault module account to a user wallet
// and debits the bank's per-vault ledger.
func (k *Keeper) payFromVault(ctx sdk.Context, bank *types.Bank, vault string, to sdk.AccAddress, amount sdkmath.Int) error {
	if !amount.IsPositive() {
		return nil
	}
	if err := k.debitVaultLedger(bank, vault, amount); err != nil {
		return err
	}
	return k.bankKeeper.SendCoinsFromModuleToAccount(ctx, vault, to, vaultCoin(bank.Mint.Denom, amount))
}

// moveBetweenVaults moves tokens between two vault module accounts,
// updating both per-vault ledgers.
func (k *Keeper) moveBetweenVaults(ctx sdk.Context, bank *types.Bank, fromVault, toVault string, amount sdkmath.Int) error {
	if !amount.IsPositive() {
		return nil
	}
	if err := k.debitVaultLedger(bank, fromVault, amount); err != nil {
		return err
	}
	if err := k.bankKeeper.SendCoinsFromModuleToModule(ctx, fromVault, toVault, vaultCoin(bank.Mint.Denom, amount)); err != nil {
		return err
	}
	return k.creditVaultLedger(bank, toVault, amount)
}

func (k *Keeper) creditVaultLedger(bank *types.Bank, vault string, amount sdkmath.Int) error {
	fixed, err := types.NewFixedFromInt(amount)
	if err != nil {
		return err
	}
	switch vault {
	case types.LiquidityVaultName:
		v, err := bank.LiquidityVault.Add(fixed)
		if err != nil {
			return err
		}
		bank.LiquidityVault = v
	case types.InsuranceVaultName:
		v, err := bank.InsuranceVault.Add(fixed)
		if err != nil {
			return err
		}
		bank.InsuranceVault = v
	case types.FeeVaultName:
		v, err := bank.FeeVault.Add(fixed)
		if err != nil {
			return err
		}
		bank.FeeVault = v
	default:
		return types.ErrInternalLogic.Wrapf("unknown vault %s", vault)
	}
	return nil
}

func (k *Keeper) debitVaultLedger(bank *types.Bank, vault string, amount sdkmath.Int) error {
	fixed, err := types.NewFixedFromInt(amount)
	if err != nil {
		return err
	}
	switch vault {
	case types.LiquidityVaultName:
		v, err := bank.LiquidityVault.Sub(fixed)
		if err != nil {
			return err
		}
		if v.IsNegative() {
			return types.ErrInternalLogic.Wrapf("liquidity vault underflow for bank %s", bank.ID)
		}
		bank.LiquidityVault = v
	case types.InsuranceVaultName:
		v, err := bank.InsuranceVault.Sub(fixed)
		if err != nil {
			return err
		}
		if v.IsNegative() {
			return types.ErrInternalLogic.Wrapf("insurance vault underflow for bank %s", bank.ID)
		}
		bank.InsuranceVault = v
	case types.FeeVaultName:
		v, err := bank.FeeVault.Sub(fixed)
		if err != nil {
			return err
		}
		if v.IsNegative() {
			return types.ErrInternalLogic.Wrapf("fee vault underflow for bank %s", bank.ID)
		}
		bank.FeeVault = v
	default:
		return types.ErrInternalLogic.Wrapf("unknown vault %s", vault)
	}
	return nil
}

// PayInsuranceToLiquidity moves insurance vault funds into the liquidity
// vault. Used by bankruptcy settlement to cover bad debt.
func (k *Keeper) PayInsuranceToLiquidity(ctx sdk.Context, bank *types.Bank, amount sdkmath.Int) error {
	return k.moveBetweenVaults(ctx, bank, types.InsuranceVaultName, types.LiquidityVaultName, amount)
}

// PayLiquidityToInsurance moves liquidity vault funds into the insurance
// vault. Used by the liquidation insurance fee.
func (k *Keeper) PayLiquidityToInsurance(ctx sdk.Context, bank *types.Bank, amount sdkmath.Int) error {
	return k.moveBetweenVaults(ctx, bank, types.LiquidityVaultName, types.InsuranceVaultName, amount)
}

// ============ Accrual ============

// AccrueBankInterest brings one bank's accumulators current at block time.
func (k *Keeper) AccrueBankInterest(ctx sdk.Context, bank *types.Bank) error {
	group := k.GetGroup(ctx, bank.GroupID)
	if group == nil {
		return types.ErrInternalLogic.Wrapf("bank %s references unknown group %s", bank.ID, bank.GroupID)
	}
	return bank.AccrueInterest(ctx.BlockTime().Unix(), group.ProgramFeesEnabled, group.ProgramFeeRate)
}
