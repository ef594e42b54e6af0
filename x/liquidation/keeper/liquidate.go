package keeper

import (
	sdkmath "cosmossdk.io/math"
	sdk "github.com/cosmos/cosmos-sdk/types"

	lendingtypes "github.com/openalpha/lend-dex/x/lending/types"
	"github.com/openalpha/lend-dex/x/liquidation/types"
)

// Liquidate seizes assetAmount of collateral from an unhealthy account. The
// liquidator takes the collateral at a 2.5% discount and assumes the
// matching slice of debt; the liquidatee pays a further 2.5% of the
// collateral value into the liability bank's insurance vault. All share
// moves bypass the deposit and borrow caps.
//
// The liquidatee must fail the maintenance health check before and still
// fail it after, with strictly improved health; the liquidator must pass
// the initial health check after.
func (k *Keeper) Liquidate(ctx sdk.Context, liquidator, liquidatorAccountID, liquidateeAccountID, assetBankID, liabilityBankID string, assetAmount uint64) (*types.LiquidationRecord, error) {
	liquidatorAccount := k.lendingKeeper.GetAccount(ctx, liquidatorAccountID)
	if liquidatorAccount == nil {
		return nil, lendingtypes.ErrAccountNotFound.Wrap("liquidator account")
	}
	if liquidatorAccount.Authority != liquidator {
		return nil, types.ErrUnauthorized
	}
	if liquidatorAccount.IsDisabled() {
		return nil, lendingtypes.ErrAccountDisabled
	}
	liquidateeAccount := k.lendingKeeper.GetAccount(ctx, liquidateeAccountID)
	if liquidateeAccount == nil {
		return nil, lendingtypes.ErrAccountNotFound.Wrap("liquidatee account")
	}
	if liquidatorAccount.GroupID != liquidateeAccount.GroupID {
		return nil, types.ErrUnauthorized.Wrap("accounts belong to different groups")
	}

	assetBank := k.lendingKeeper.GetBank(ctx, assetBankID)
	if assetBank == nil {
		return nil, lendingtypes.ErrBankNotFound.Wrap("asset bank")
	}
	liabilityBank := k.lendingKeeper.GetBank(ctx, liabilityBankID)
	if liabilityBank == nil {
		return nil, lendingtypes.ErrBankNotFound.Wrap("liability bank")
	}
	if err := k.lendingKeeper.AccrueBankInterest(ctx, assetBank); err != nil {
		return nil, err
	}
	if err := k.lendingKeeper.AccrueBankInterest(ctx, liabilityBank); err != nil {
		return nil, err
	}
	banks := map[string]*lendingtypes.Bank{
		assetBankID:     assetBank,
		liabilityBankID: liabilityBank,
	}

	preEngine, err := k.lendingKeeper.NewRiskEngineWithBanks(ctx, liquidateeAccount, banks)
	if err != nil {
		return nil, err
	}
	preHealth, err := preEngine.CheckPreLiquidationCondition(liabilityBankID)
	if err != nil {
		return nil, err
	}

	// Liquidation prices are real-time and adversarially biased, like any
	// maintenance valuation.
	assetFeed, err := k.lendingKeeper.LoadPriceFeed(ctx, assetBank)
	if err != nil {
		return nil, err
	}
	liabilityFeed, err := k.lendingKeeper.LoadPriceFeed(ctx, liabilityBank)
	if err != nil {
		return nil, err
	}
	assetPrice, err := assetFeed.PriceOfType(lendingtypes.OraclePriceTypeRealTime, lendingtypes.PriceBiasLow)
	if err != nil {
		return nil, err
	}
	liabilityPrice, err := liabilityFeed.PriceOfType(lendingtypes.OraclePriceTypeRealTime, lendingtypes.PriceBiasHigh)
	if err != nil {
		return nil, err
	}

	amounts, err := calcLiquidationAmounts(assetAmount, assetPrice, liabilityPrice, assetBank.Mint.Decimals, liabilityBank.Mint.Decimals)
	if err != nil {
		return nil, err
	}

	now := ctx.BlockTime().Unix()

	// Move the collateral: liquidatee loses it, liquidator gains it.
	liquidateeAssets, err := lendingtypes.FindBankAccount(assetBank, liquidateeAccount)
	if err != nil {
		return nil, err
	}
	if err := liquidateeAssets.DecreaseBalanceInLiquidation(amounts.assetAmount, now); err != nil {
		return nil, err
	}
	liquidatorAssets, err := lendingtypes.FindOrCreateBankAccount(assetBank, liquidatorAccount, now)
	if err != nil {
		return nil, err
	}
	if err := liquidatorAssets.IncreaseBalanceInLiquidation(amounts.assetAmount, now); err != nil {
		return nil, err
	}

	// Move the debt: liquidator borrows the discounted slice, the
	// liquidatee's liability shrinks by slightly less. The spread funds the
	// insurance fee.
	liquidatorLiabilities, err := lendingtypes.FindOrCreateBankAccount(liabilityBank, liquidatorAccount, now)
	if err != nil {
		return nil, err
	}
	if err := liquidatorLiabilities.DecreaseBalanceInLiquidation(amounts.liabilityAmountPaid, now); err != nil {
		return nil, err
	}
	liquidateeLiabilities, err := lendingtypes.FindBankAccount(liabilityBank, liquidateeAccount)
	if err != nil {
		return nil, err
	}
	if err := liquidateeLiabilities.IncreaseBalanceInLiquidation(amounts.liabilityAmountRepaid, now); err != nil {
		return nil, err
	}

	if err := k.lendingKeeper.PayLiquidityToInsurance(ctx, liabilityBank, amounts.insuranceFee.FloorInt()); err != nil {
		return nil, err
	}

	// Persist banks before the risk checks so valuations see the final
	// share state. A failed check reverts the whole tx.
	k.lendingKeeper.SetBank(ctx, assetBank)
	k.lendingKeeper.SetBank(ctx, liabilityBank)

	postEngine, err := k.lendingKeeper.NewRiskEngineWithBanks(ctx, liquidateeAccount, nil)
	if err != nil {
		return nil, err
	}
	postHealth, err := postEngine.CheckPostLiquidationCondition(liabilityBankID, preHealth)
	if err != nil {
		return nil, err
	}
	if err := k.lendingKeeper.CheckAccountInitHealth(ctx, liquidatorAccount); err != nil {
		return nil, err
	}

	k.lendingKeeper.SetAccount(ctx, liquidatorAccount)
	k.lendingKeeper.SetAccount(ctx, liquidateeAccount)

	record := &types.LiquidationRecord{
		ID:                    k.generateLiquidationID(ctx),
		Liquidator:            liquidator,
		LiquidatorAccount:     liquidatorAccountID,
		LiquidateeAccount:     liquidateeAccountID,
		AssetBankID:           assetBankID,
		LiabilityBankID:       liabilityBankID,
		AssetAmount:           amounts.assetAmount,
		LiabilityAmountPaid:   amounts.liabilityAmountPaid,
		LiabilityAmountRepaid: amounts.liabilityAmountRepaid,
		InsuranceFee:          amounts.insuranceFee,
		PreHealth:             preHealth,
		PostHealth:            postHealth,
		Status:                types.LiquidationStatusExecuted,
		Timestamp:             now,
	}
	k.SetLiquidationRecord(ctx, record)

	ctx.EventManager().EmitEvent(
		sdk.NewEvent(
			"liquidation",
			sdk.NewAttribute("liquidation_id", record.ID),
			sdk.NewAttribute("liquidator_account", liquidatorAccountID),
			sdk.NewAttribute("liquidatee_account", liquidateeAccountID),
			sdk.NewAttribute("asset_bank", assetBankID),
			sdk.NewAttribute("liability_bank", liabilityBankID),
			sdk.NewAttribute("asset_amount", amounts.assetAmount.String()),
			sdk.NewAttribute("liability_paid", amounts.liabilityAmountPaid.String()),
			sdk.NewAttribute("liability_repaid", amounts.liabilityAmountRepaid.String()),
			sdk.NewAttribute("insurance_fee", amounts.insuranceFee.String()),
			sdk.NewAttribute("pre_health", preHealth.String()),
			sdk.NewAttribute("post_health", postHealth.String()),
		),
	)
	k.logger.Info("Account liquidated",
		"liquidatee", liquidateeAccountID,
		"liquidator", liquidatorAccountID,
		"asset_bank", assetBankID,
		"liability_bank", liabilityBankID,
		"pre_health", preHealth.String(),
		"post_health", postHealth.String(),
	)
	return record, nil
}

type liquidationAmounts struct {
	assetAmount           lendingtypes.I80F48
	liabilityAmountPaid   lendingtypes.I80F48
	liabilityAmountRepaid lendingtypes.I80F48
	insuranceFee          lendingtypes.I80F48
}

// calcLiquidationAmounts converts the seized collateral into the two
// liability legs. The liquidator pays 97.5% of the collateral value, the
// liquidatee's debt drops by 95%; the 2.5% spread is the insurance fee, in
// liability tokens.
func calcLiquidationAmounts(assetAmount uint64, assetPrice, liabilityPrice lendingtypes.I80F48, assetDecimals, liabilityDecimals uint8) (liquidationAmounts, error) {
	amountFixed, err := lendingtypes.NewFixedFromInt(sdkmath.NewIntFromUint64(assetAmount))
	if err != nil {
		return liquidationAmounts{}, err
	}
	assetValue, err := lendingtypes.CalcValue(amountFixed, assetPrice, assetDecimals, nil)
	if err != nil {
		return liquidationAmounts{}, err
	}

	one := lendingtypes.OneFixed()
	liquidatorFactor, err := one.Sub(types.LiquidatorFeeRate)
	if err != nil {
		return liquidationAmounts{}, err
	}
	totalSpread, err := types.LiquidatorFeeRate.Add(types.InsuranceFeeRate)
	if err != nil {
		return liquidationAmounts{}, err
	}
	repaidFactor, err := one.Sub(totalSpread)
	if err != nil {
		return liquidationAmounts{}, err
	}

	paidValue, err := assetValue.Mul(liquidatorFactor)
	if err != nil {
		return liquidationAmounts{}, err
	}
	repaidValue, err := assetValue.Mul(repaidFactor)
	if err != nil {
		return liquidationAmounts{}, err
	}

	paid, err := lendingtypes.CalcAmount(paidValue, liabilityPrice, liabilityDecimals)
	if err != nil {
		return liquidationAmounts{}, err
	}
	repaid, err := lendingtypes.CalcAmount(repaidValue, liabilityPrice, liabilityDecimals)
	if err != nil {
		return liquidationAmounts{}, err
	}
	fee, err := paid.Sub(repaid)
	if err != nil {
		return liquidationAmounts{}, err
	}

	return liquidationAmounts{
		assetAmount:           amountFixed,
		liabilityAmountPaid:   paid,
		liabilityAmountRepaid: repaid,
		insuranceFee:          fee,
	}, nil
}
