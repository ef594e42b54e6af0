package keeper

import (
	sdk "github.com/cosmos/cosmos-sdk/types"

	lendingtypes "github.com/openalpha/lend-dex/x/lending/types"
	"github.com/openalpha/lend-dex/x/liquidation/types"
)

// HandleBankruptcy settles an insolvent account's bad debt in one bank.
// The insurance vault covers as much as it holds; the remainder is
// socialized across the bank's lenders by writing down the asset share
// value. The account is disabled afterwards.
//
// Permissionless only when the bank opts in with the bad-debt-settlement
// flag; otherwise the group admin must call it.
func (k *Keeper) HandleBankruptcy(ctx sdk.Context, caller, accountID, bankID string) (*types.BankruptcyRecord, error) {
	account := k.lendingKeeper.GetAccount(ctx, accountID)
	if account == nil {
		return nil, lendingtypes.ErrAccountNotFound
	}
	bank := k.lendingKeeper.GetBank(ctx, bankID)
	if bank == nil {
		return nil, lendingtypes.ErrBankNotFound
	}

	if !bank.GetFlag(lendingtypes.BankFlagPermissionlessBadDebt) {
		group := k.lendingKeeper.GetGroup(ctx, account.GroupID)
		if group == nil || group.Admin != caller {
			return nil, types.ErrPermissionlessForbidden
		}
	}

	if err := k.lendingKeeper.AccrueBankInterest(ctx, bank); err != nil {
		return nil, err
	}
	banks := map[string]*lendingtypes.Bank{bankID: bank}

	engine, err := k.lendingKeeper.NewRiskEngineWithBanks(ctx, account, banks)
	if err != nil {
		return nil, err
	}
	if err := engine.CheckAccountBankrupt(); err != nil {
		return nil, err
	}

	balance := account.FindBalance(bankID)
	if balance == nil {
		return nil, lendingtypes.ErrBalanceNotFound
	}
	badDebt, err := bank.GetLiabilityAmount(balance.LiabilityShares)
	if err != nil {
		return nil, err
	}
	if !badDebt.IsPositiveWithTolerance(lendingtypes.ZeroAmountThreshold) {
		return nil, lendingtypes.ErrBalanceNotBadDebt
	}

	// Insurance covers up to its whole-unit balance, ceiled in the
	// lenders' favor; whatever is left is socialized.
	covered := lendingtypes.MinFixed(badDebt, bank.InsuranceVault.Floor())
	transfer := covered.CeilInt()
	if err := k.lendingKeeper.PayInsuranceToLiquidity(ctx, bank, transfer); err != nil {
		return nil, err
	}
	coveredFixed, err := lendingtypes.NewFixedFromInt(transfer)
	if err != nil {
		return nil, err
	}
	socialized, err := badDebt.Sub(coveredFixed)
	if err != nil {
		return nil, err
	}
	socialized = lendingtypes.MaxFixed(socialized, lendingtypes.ZeroFixed())

	if socialized.IsPositive() {
		if err := bank.SocializeLoss(socialized); err != nil {
			return nil, err
		}
	}

	now := ctx.BlockTime().Unix()
	wrapper, err := lendingtypes.FindBankAccount(bank, account)
	if err != nil {
		return nil, err
	}
	if err := wrapper.Repay(badDebt, now); err != nil {
		return nil, err
	}
	if err := account.SetFlag(lendingtypes.AccountFlagDisabled); err != nil {
		return nil, err
	}

	k.lendingKeeper.SetBank(ctx, bank)
	k.lendingKeeper.SetAccount(ctx, account)

	record := &types.BankruptcyRecord{
		ID:                 k.generateBankruptcyID(ctx),
		AccountID:          accountID,
		BankID:             bankID,
		Caller:             caller,
		BadDebt:            badDebt,
		CoveredByInsurance: coveredFixed,
		Socialized:         socialized,
		Timestamp:          now,
	}
	k.SetBankruptcyRecord(ctx, record)

	ctx.EventManager().EmitEvent(
		sdk.NewEvent(
			"bankruptcy",
			sdk.NewAttribute("bankruptcy_id", record.ID),
			sdk.NewAttribute("account_id", accountID),
			sdk.NewAttribute("bank_id", bankID),
			sdk.NewAttribute("bad_debt", badDebt.String()),
			sdk.NewAttribute("covered_by_insurance", coveredFixed.String()),
			sdk.NewAttribute("socialized", socialized.String()),
		),
	)
	k.logger.Info("Bankruptcy settled",
		"account", accountID,
		"bank", bankID,
		"bad_debt", badDebt.String(),
		"covered", coveredFixed.String(),
		"socialized", socialized.String(),
	)
	return record, nil
}
