package keeper

import (
	"encoding/binary"
	"encoding/json"
	"fmt"

	"cosmossdk.io/log"
	sdkmath "cosmossdk.io/math"
	storetypes "cosmossdk.io/store/types"
	"github.com/cosmos/cosmos-sdk/codec"
	sdk "github.com/cosmos/cosmos-sdk/types"

	lendingtypes "github.com/openalpha/lend-dex/x/lending/types"
	"github.com/openalpha/lend-dex/x/liquidation/types"
)

// Store key prefixes
var (
	LiquidationKeyPrefix  = []byte{0x01}
	LiquidationCounterKey = []byte{0x02}
	BankruptcyKeyPrefix   = []byte{0x03}
	BankruptcyCounterKey  = []byte{0x04}
)

// LendingKeeper defines the expected interface for the lending module
type LendingKeeper interface {
	GetGroup(ctx sdk.Context, groupID string) *lendingtypes.LendingGroup
	GetBank(ctx sdk.Context, bankID string) *lendingtypes.Bank
	SetBank(ctx sdk.Context, bank *lendingtypes.Bank)
	GetAccount(ctx sdk.Context, accountID string) *lendingtypes.Account
	SetAccount(ctx sdk.Context, account *lendingtypes.Account)
	AccrueBankInterest(ctx sdk.Context, bank *lendingtypes.Bank) error
	LoadPriceFeed(ctx sdk.Context, bank *lendingtypes.Bank) (lendingtypes.PriceFeed, error)
	NewRiskEngineWithBanks(ctx sdk.Context, account *lendingtypes.Account, banks map[string]*lendingtypes.Bank) (*lendingtypes.RiskEngine, error)
	CheckAccountInitHealth(ctx sdk.Context, account *lendingtypes.Account) error
	PayInsuranceToLiquidity(ctx sdk.Context, bank *lendingtypes.Bank, amount sdkmath.Int) error
	PayLiquidityToInsurance(ctx sdk.Context, bank *lendingtypes.Bank, amount sdkmath.Int) error
}

// Keeper manages the liquidation module state
type Keeper struct {
	cdc           codec.BinaryCodec
	storeKey      storetypes.StoreKey
	lendingKeeper LendingKeeper
	logger        log.Logger
}

// NewKeeper creates a new liquidation keeper
func NewKeeper(
	cdc codec.BinaryCodec,
	storeKey storetypes.StoreKey,
	lendingKeeper LendingKeeper,
	logger log.Logger,
) *Keeper {
	return &Keeper{
		cdc:           cdc,
		storeKey:      storeKey,
		lendingKeeper: lendingKeeper,
		logger:        logger.With("module", "x/liquidation"),
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

// ============ Liquidation Record Store Operations ============

// SetLiquidationRecord saves a liquidation record to the store
func (k *Keeper) SetLiquidationRecord(ctx sdk.Context, record *types.LiquidationRecord) {
	store := k.GetStore(ctx)
	key := append(LiquidationKeyPrefix, []byte(record.ID)...)
	bz, _ := json.Marshal(record)
	store.Set(key, bz)
}

// GetLiquidationRecord retrieves a liquidation record from the store
func (k *Keeper) GetLiquidationRecord(ctx sdk.Context, id string) *types.LiquidationRecord {
	store := k.GetStore(ctx)
	bz := store.Get(append(LiquidationKeyPrefix, []byte(id)...))
	if bz == nil {
		return nil
	}
	var record types.LiquidationRecord
	if err := json.Unmarshal(bz, &record); err != nil {
		return nil
	}
	return &record
}

// GetAllLiquidationRecords returns liquidation records, newest first
func (k *Keeper) GetAllLiquidationRecords(ctx sdk.Context, limit int) []*types.LiquidationRecord {
	store := k.GetStore(ctx)
	iterator := storetypes.KVStoreReversePrefixIterator(store, LiquidationKeyPrefix)
	defer iterator.Close()

	var records []*types.LiquidationRecord
	count := 0
	for ; iterator.Valid() && count < limit; iterator.Next() {
		var record types.LiquidationRecord
		if err := json.Unmarshal(iterator.Value(), &record); err != nil {
			continue
		}
		records = append(records, &record)
		count++
	}
	return records
}

// SetBankruptcyRecord saves a bankruptcy record to the store
func (k *Keeper) SetBankruptcyRecord(ctx sdk.Context, record *types.BankruptcyRecord) {
	store := k.GetStore(ctx)
	key := append(BankruptcyKeyPrefix, []byte(record.ID)...)
	bz, _ := json.Marshal(record)
	store.Set(key, bz)
}

// GetBankruptcyRecord retrieves a bankruptcy record from the store
func (k *Keeper) GetBankruptcyRecord(ctx sdk.Context, id string) *types.BankruptcyRecord {
	store := k.GetStore(ctx)
	bz := store.Get(append(BankruptcyKeyPrefix, []byte(id)...))
	if bz == nil {
		return nil
	}
	var record types.BankruptcyRecord
	if err := json.Unmarshal(bz, &record); err != nil {
		return nil
	}
	return &record
}

// nextID bumps a counter key and renders the prefixed id
func (k *Keeper) nextID(ctx sdk.Context, counterKey []byte, prefix string) string {
	store := k.GetStore(ctx)
	bz := store.Get(counterKey)
	var counter uint64
	if bz != nil {
		counter = binary.BigEndian.Uint64(bz)
	}
	counter++

	newBz := make([]byte, 8)
	binary.BigEndian.PutUint64(newBz, counter)
	store.Set(counterKey, newBz)

	return fmt.Sprintf("%s-%d", prefix, counter)
}

func (k *Keeper) generateLiquidationID(ctx sdk.Context) string {
	return k.nextID(ctx, LiquidationCounterKey, "liq")
}

func (k *Keeper) generateBankruptcyID(ctx sdk.Context) string {
	return k.nextID(ctx, BankruptcyCounterKey, "bkr")
}
