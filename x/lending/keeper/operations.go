package keeper

import (
	sdkmath "cosmossdk.io/math"
	sdk "github.com/cosmos/cosmos-sdk/types"

	"github.com/openalpha/lend-dex/x/lending/types"
)

// AddBank creates a new bank in a group. Group admin only.
func (k *Keeper) AddBank(ctx sdk.Context, admin, groupID, bankID string, mint types.MintInfo, config types.BankConfig) error {
	group := k.GetGroup(ctx, groupID)
	if group == nil {
		return types.ErrInvalidConfig.Wrapf("group %s not found", groupID)
	}
	if group.Admin != admin {
		return types.ErrUnauthorized
	}
	if k.GetBank(ctx, bankID) != nil {
		return types.ErrBankAlreadyExists
	}
	if err := config.Validate(); err != nil {
		return err
	}

	bank := types.NewBank(bankID, groupID, mint, config, ctx.BlockTime().Unix())
	k.SetBank(ctx, bank)

	ctx.EventManager().EmitEvent(
		sdk.NewEvent(
			"add_bank",
			sdk.NewAttribute("bank_id", bankID),
			sdk.NewAttribute("group_id", groupID),
			sdk.NewAttribute("denom", mint.Denom),
		),
	)
	k.logger.Info("Bank created", "bank", bankID, "group", groupID, "denom", mint.Denom)
	return nil
}

// ConfigureBank applies a partial configuration update. Group admin only; a
// frozen bank accepts deposit and borrow limit changes only.
func (k *Keeper) ConfigureBank(ctx sdk.Context, admin, bankID string, opt types.BankConfigOpt) error {
	bank := k.GetBank(ctx, bankID)
	if bank == nil {
		return types.ErrBankNotFound
	}
	group := k.GetGroup(ctx, bank.GroupID)
	if group == nil || group.Admin != admin {
		return types.ErrUnauthorized
	}
	if bank.GetFlag(types.BankFlagConfigFrozen) && !opt.LimitsOnly() {
		return types.ErrIllegalFlag.Wrap("bank config is frozen, only limits may change")
	}

	if err := k.AccrueBankInterest(ctx, bank); err != nil {
		return err
	}

	cfg := bank.Config
	if opt.AssetWeightInit != nil {
		cfg.AssetWeightInit = *opt.AssetWeightInit
	}
	if opt.AssetWeightMaint != nil {
		cfg.AssetWeightMaint = *opt.AssetWeightMaint
	}
	if opt.LiabilityWeightInit != nil {
		cfg.LiabilityWeightInit = *opt.LiabilityWeightInit
	}
	if opt.LiabilityWeightMaint != nil {
		cfg.LiabilityWeightMaint = *opt.LiabilityWeightMaint
	}
	if opt.DepositLimit != nil {
		cfg.DepositLimit = *opt.DepositLimit
	}
	if opt.LiabilityLimit != nil {
		cfg.LiabilityLimit = *opt.LiabilityLimit
	}
	if opt.InterestRateConfig != nil {
		cfg.InterestRateConfig = *opt.InterestRateConfig
	}
	if opt.OperationalState != nil {
		cfg.OperationalState = *opt.OperationalState
	}
	if opt.RiskTier != nil {
		cfg.RiskTier = *opt.RiskTier
	}
	if opt.TotalAssetValueInitLimit != nil {
		cfg.TotalAssetValueInitLimit = *opt.TotalAssetValueInitLimit
	}
	if opt.OracleMaxAge != nil {
		cfg.OracleMaxAge = *opt.OracleMaxAge
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	bank.Config = cfg

	if opt.Flags != nil {
		if err := bank.UpdateConfigurableFlags(*opt.Flags); err != nil {
			return err
		}
	}
	k.SetBank(ctx, bank)

	ctx.EventManager().EmitEvent(
		sdk.NewEvent(
			"configure_bank",
			sdk.NewAttribute("bank_id", bankID),
		),
	)
	return nil
}

// InitAccount opens a new lending account.
func (k *Keeper) InitAccount(ctx sdk.Context, authority, groupID, accountID string) error {
	if k.GetGroup(ctx, groupID) == nil {
		return types.ErrInvalidConfig.Wrapf("group %s not found", groupID)
	}
	if k.GetAccount(ctx, accountID) != nil {
		return types.ErrInvalidConfig.Wrapf("account %s already exists", accountID)
	}
	account := types.NewAccount(accountID, groupID, authority, ctx.BlockTime().Unix())
	k.SetAccount(ctx, account)

	ctx.EventManager().EmitEvent(
		sdk.NewEvent(
			"init_account",
			sdk.NewAttribute("account_id", accountID),
			sdk.NewAttribute("authority", authority),
		),
	)
	return nil
}

// loadOwnedAccount fetches an account and verifies the caller controls it.
func (k *Keeper) loadOwnedAccount(ctx sdk.Context, authority, accountID string) (*types.Account, error) {
	account := k.GetAccount(ctx, accountID)
	if account == nil {
		return nil, types.ErrAccountNotFound
	}
	if account.Authority != authority {
		return nil, types.ErrUnauthorized
	}
	if account.IsDisabled() {
		return nil, types.ErrAccountDisabled
	}
	return account, nil
}

// Deposit moves tokens from the signer's wallet into their balance,
// repaying any liability first. Mint transfer fees come off the top.
func (k *Keeper) Deposit(ctx sdk.Context, authority, accountID, bankID string, amount uint64) error {
	account, err := k.loadOwnedAccount(ctx, authority, accountID)
	if err != nil {
		return err
	}
	bank := k.GetBank(ctx, bankID)
	if bank == nil {
		return types.ErrBankNotFound
	}
	if err := k.AccrueBankInterest(ctx, bank); err != nil {
		return err
	}
	if err := bank.AssertOperationalMode(true); err != nil {
		return err
	}

	postFee := bank.Mint.CalculatePostFeeAmount(amount)
	credited, err := types.NewFixedFromInt(sdkmath.NewIntFromUint64(postFee))
	if err != nil {
		return err
	}

	wrapper, err := types.FindOrCreateBankAccount(bank, account, ctx.BlockTime().Unix())
	if err != nil {
		return err
	}
	if err := wrapper.Deposit(credited, ctx.BlockTime().Unix()); err != nil {
		return err
	}

	from, err := sdk.AccAddressFromBech32(authority)
	if err != nil {
		return err
	}
	if err := k.collectToVault(ctx, bank, types.LiquidityVaultName, from, sdkmath.NewIntFromUint64(postFee)); err != nil {
		return err
	}

	k.SetBank(ctx, bank)
	k.SetAccount(ctx, account)

	ctx.EventManager().EmitEvent(
		sdk.NewEvent(
			"lending_deposit",
			sdk.NewAttribute("account_id", accountID),
			sdk.NewAttribute("bank_id", bankID),
			sdk.NewAttribute("amount", sdkmath.NewIntFromUint64(amount).String()),
			sdk.NewAttribute("amount_post_fee", sdkmath.NewIntFromUint64(postFee).String()),
		),
	)
	return nil
}

// Withdraw moves tokens from the signer's asset balance back to their
// wallet, then re-checks initial health.
func (k *Keeper) Withdraw(ctx sdk.Context, authority, accountID, bankID string, amount uint64, withdrawAll bool) (uint64, error) {
	account, err := k.loadOwnedAccount(ctx, authority, accountID)
	if err != nil {
		return 0, err
	}
	bank := k.GetBank(ctx, bankID)
	if bank == nil {
		return 0, types.ErrBankNotFound
	}
	if err := k.AccrueBankInterest(ctx, bank); err != nil {
		return 0, err
	}
	if err := bank.AssertOperationalMode(); err != nil {
		return 0, err
	}

	wrapper, err := types.FindBankAccount(bank, account)
	if err != nil {
		return 0, err
	}

	now := ctx.BlockTime().Unix()
	var payoutFixed types.I80F48
	if withdrawAll {
		payoutFixed, err = wrapper.WithdrawAll(now)
		if err != nil {
			return 0, err
		}
	} else {
		payoutFixed, err = types.NewFixedFromInt(sdkmath.NewIntFromUint64(amount))
		if err != nil {
			return 0, err
		}
		if err := wrapper.Withdraw(payoutFixed, now); err != nil {
			return 0, err
		}
	}
	payout := payoutFixed.FloorInt()

	to, err := sdk.AccAddressFromBech32(authority)
	if err != nil {
		return 0, err
	}
	if err := k.payFromVault(ctx, bank, types.LiquidityVaultName, to, payout); err != nil {
		return 0, err
	}

	// Persist before the health check so the risk engine values against the
	// post-withdrawal bank state. A failed check reverts the whole tx.
	k.SetBank(ctx, bank)
	if err := k.CheckAccountInitHealth(ctx, account); err != nil {
		return 0, err
	}
	k.SetAccount(ctx, account)

	received := bank.Mint.CalculatePostFeeAmount(payout.Uint64())
	ctx.EventManager().EmitEvent(
		sdk.NewEvent(
			"lending_withdraw",
			sdk.NewAttribute("account_id", accountID),
			sdk.NewAttribute("bank_id", bankID),
			sdk.NewAttribute("amount", payout.String()),
			sdk.NewAttribute("withdraw_all", boolAttr(withdrawAll)),
		),
	)
	return received, nil
}

// Borrow lends tokens from the bank's liquidity to the signer's wallet,
// draining any asset balance first, then re-checks initial health.
func (k *Keeper) Borrow(ctx sdk.Context, authority, accountID, bankID string, amount uint64) error {
	account, err := k.loadOwnedAccount(ctx, authority, accountID)
	if err != nil {
		return err
	}
	bank := k.GetBank(ctx, bankID)
	if bank == nil {
		return types.ErrBankNotFound
	}
	if err := k.AccrueBankInterest(ctx, bank); err != nil {
		return err
	}
	if err := bank.AssertOperationalMode(true); err != nil {
		return err
	}

	wrapper, err := types.FindOrCreateBankAccount(bank, account, ctx.BlockTime().Unix())
	if err != nil {
		return err
	}
	borrowFixed, err := types.NewFixedFromInt(sdkmath.NewIntFromUint64(amount))
	if err != nil {
		return err
	}
	if err := wrapper.Borrow(borrowFixed, ctx.BlockTime().Unix()); err != nil {
		return err
	}

	to, err := sdk.AccAddressFromBech32(authority)
	if err != nil {
		return err
	}
	if err := k.payFromVault(ctx, bank, types.LiquidityVaultName, to, sdkmath.NewIntFromUint64(amount)); err != nil {
		return err
	}

	k.SetBank(ctx, bank)
	if err := k.CheckAccountInitHealth(ctx, account); err != nil {
		return err
	}
	k.SetAccount(ctx, account)

	ctx.EventManager().EmitEvent(
		sdk.NewEvent(
			"lending_borrow",
			sdk.NewAttribute("account_id", accountID),
			sdk.NewAttribute("bank_id", bankID),
			sdk.NewAttribute("amount", sdkmath.NewIntFromUint64(amount).String()),
		),
	)
	return nil
}

// Repay pays down the signer's liability from their wallet. Returns the
// amount actually collected.
func (k *Keeper) Repay(ctx sdk.Context, authority, accountID, bankID string, amount uint64, repayAll bool) (uint64, error) {
	account, err := k.loadOwnedAccount(ctx, authority, accountID)
	if err != nil {
		return 0, err
	}
	bank := k.GetBank(ctx, bankID)
	if bank == nil {
		return 0, types.ErrBankNotFound
	}
	if err := k.AccrueBankInterest(ctx, bank); err != nil {
		return 0, err
	}
	if err := bank.AssertOperationalMode(); err != nil {
		return 0, err
	}

	wrapper, err := types.FindBankAccount(bank, account)
	if err != nil {
		return 0, err
	}

	now := ctx.BlockTime().Unix()
	var owedFixed types.I80F48
	if repayAll {
		owedFixed, err = wrapper.RepayAll(now)
		if err != nil {
			return 0, err
		}
	} else {
		owedFixed, err = types.NewFixedFromInt(sdkmath.NewIntFromUint64(amount))
		if err != nil {
			return 0, err
		}
		if err := wrapper.Repay(owedFixed, now); err != nil {
			return 0, err
		}
	}
	owed := owedFixed.CeilInt()

	// The wallet must fund the owed amount plus the mint transfer fee so
	// the vault receives owed in full.
	collected, err := bank.Mint.CalculatePreFeeAmount(owed.Uint64())
	if err != nil {
		return 0, err
	}

	from, err := sdk.AccAddressFromBech32(authority)
	if err != nil {
		return 0, err
	}
	if err := k.collectToVault(ctx, bank, types.LiquidityVaultName, from, owed); err != nil {
		return 0, err
	}

	k.SetBank(ctx, bank)
	k.SetAccount(ctx, account)

	ctx.EventManager().EmitEvent(
		sdk.NewEvent(
			"lending_repay",
			sdk.NewAttribute("account_id", accountID),
			sdk.NewAttribute("bank_id", bankID),
			sdk.NewAttribute("amount", owed.String()),
			sdk.NewAttribute("repay_all", boolAttr(repayAll)),
		),
	)
	return collected, nil
}

// CloseBalance deactivates an empty balance slot.
func (k *Keeper) CloseBalance(ctx sdk.Context, authority, accountID, bankID string) error {
	account, err := k.loadOwnedAccount(ctx, authority, accountID)
	if err != nil {
		return err
	}
	bank := k.GetBank(ctx, bankID)
	if bank == nil {
		return types.ErrBankNotFound
	}
	if err := k.AccrueBankInterest(ctx, bank); err != nil {
		return err
	}

	wrapper, err := types.FindBankAccount(bank, account)
	if err != nil {
		return err
	}
	if err := wrapper.ClaimEmissions(ctx.BlockTime().Unix()); err != nil {
		return err
	}
	if err := wrapper.Balance.Close(); err != nil {
		return err
	}

	k.SetBank(ctx, bank)
	k.SetAccount(ctx, account)
	return nil
}

// CloseAccount removes an account with no active balances.
func (k *Keeper) CloseAccount(ctx sdk.Context, authority, accountID string) error {
	account, err := k.loadOwnedAccount(ctx, authority, accountID)
	if err != nil {
		return err
	}
	if err := account.CanBeClosed(); err != nil {
		return err
	}
	k.DeleteAccount(ctx, accountID)

	ctx.EventManager().EmitEvent(
		sdk.NewEvent(
			"close_account",
			sdk.NewAttribute("account_id", accountID),
		),
	)
	return nil
}

// UpdateOracleFeed stores a raw price feed payload. The payload is only
// validated at read time, so a malformed post degrades to a feed-load error
// on the banks that reference it.
func (k *Keeper) UpdateOracleFeed(ctx sdk.Context, feedID string, payload []byte) error {
	k.SetOracleFeed(ctx, &types.OracleFeed{
		FeedID:   feedID,
		Payload:  payload,
		PostedAt: ctx.BlockTime().Unix(),
	})
	return nil
}

// SetupEmissions funds and activates an emissions schedule on a bank.
func (k *Keeper) SetupEmissions(ctx sdk.Context, admin, bankID, emissionsDenom string, rate, totalAmount uint64, lendingActive, borrowActive bool) error {
	bank := k.GetBank(ctx, bankID)
	if bank == nil {
		return types.ErrBankNotFound
	}
	group := k.GetGroup(ctx, bank.GroupID)
	if group == nil || group.Admin != admin {
		return types.ErrUnauthorized
	}
	if bank.EmissionsMintDenom != "" && bank.EmissionsMintDenom != emissionsDenom {
		return types.ErrEmissionsAlreadySetup
	}

	from, err := sdk.AccAddressFromBech32(admin)
	if err != nil {
		return err
	}
	funding := sdk.NewCoins(sdk.NewCoin(emissionsDenom, sdkmath.NewIntFromUint64(totalAmount)))
	if err := k.bankKeeper.SendCoinsFromAccountToModule(ctx, from, types.FeeVaultName, funding); err != nil {
		return err
	}

	fundingFixed, err := types.NewFixedFromInt(sdkmath.NewIntFromUint64(totalAmount))
	if err != nil {
		return err
	}
	remaining, err := bank.EmissionsRemaining.Add(fundingFixed)
	if err != nil {
		return err
	}
	bank.EmissionsMintDenom = emissionsDenom
	bank.EmissionsRate = rate
	bank.EmissionsRemaining = remaining
	bank.UnsetFlag(types.BankFlagEmissionsLendingActive | types.BankFlagEmissionsBorrowActive)
	if lendingActive {
		bank.SetFlag(types.BankFlagEmissionsLendingActive)
	}
	if borrowActive {
		bank.SetFlag(types.BankFlagEmissionsBorrowActive)
	}
	k.SetBank(ctx, bank)

	ctx.EventManager().EmitEvent(
		sdk.NewEvent(
			"setup_emissions",
			sdk.NewAttribute("bank_id", bankID),
			sdk.NewAttribute("emissions_denom", emissionsDenom),
			sdk.NewAttribute("funding", funding.String()),
		),
	)
	return nil
}

// UpdateEmissionsDestination registers the payout address for
// permissionless emissions withdrawals.
func (k *Keeper) UpdateEmissionsDestination(ctx sdk.Context, authority, accountID, destination string) error {
	account, err := k.loadOwnedAccount(ctx, authority, accountID)
	if err != nil {
		return err
	}
	if _, err := sdk.AccAddressFromBech32(destination); err != nil {
		return types.ErrInvalidConfig.Wrap("invalid destination address")
	}
	account.EmissionsDestination = destination
	k.SetAccount(ctx, account)
	return nil
}

// WithdrawEmissions pays out a balance's claimable emissions. The owner may
// always call it; anyone else may only trigger a payout to the account's
// registered destination.
func (k *Keeper) WithdrawEmissions(ctx sdk.Context, caller, accountID, bankID string) (uint64, error) {
	account := k.GetAccount(ctx, accountID)
	if account == nil {
		return 0, types.ErrAccountNotFound
	}
	destination := account.Authority
	if caller != account.Authority {
		if account.EmissionsDestination == "" {
			return 0, types.ErrUnauthorized
		}
		destination = account.EmissionsDestination
	}

	bank := k.GetBank(ctx, bankID)
	if bank == nil {
		return 0, types.ErrBankNotFound
	}
	if bank.EmissionsMintDenom == "" {
		return 0, types.ErrEmissionsAlreadySetup.Wrap("bank has no emissions")
	}

	wrapper, err := types.FindBankAccount(bank, account)
	if err != nil {
		return 0, err
	}
	payoutFixed, err := wrapper.SettleEmissions(ctx.BlockTime().Unix())
	if err != nil {
		return 0, err
	}
	payout := payoutFixed.FloorInt()
	if payout.IsPositive() {
		to, err := sdk.AccAddressFromBech32(destination)
		if err != nil {
			return 0, err
		}
		coins := sdk.NewCoins(sdk.NewCoin(bank.EmissionsMintDenom, payout))
		if err := k.bankKeeper.SendCoinsFromModuleToAccount(ctx, types.FeeVaultName, to, coins); err != nil {
			return 0, err
		}
	}

	k.SetBank(ctx, bank)
	k.SetAccount(ctx, account)

	ctx.EventManager().EmitEvent(
		sdk.NewEvent(
			"withdraw_emissions",
			sdk.NewAttribute("account_id", accountID),
			sdk.NewAttribute("bank_id", bankID),
			sdk.NewAttribute("amount", payout.String()),
			sdk.NewAttribute("destination", destination),
		),
	)
	return payout.Uint64(), nil
}

// SetAccountTransferAuthority arms or disarms the authority transfer flag.
// Group admin only.
func (k *Keeper) SetAccountTransferAuthority(ctx sdk.Context, admin, accountID string, allowed bool) error {
	account := k.GetAccount(ctx, accountID)
	if account == nil {
		return types.ErrAccountNotFound
	}
	group := k.GetGroup(ctx, account.GroupID)
	if group == nil || group.Admin != admin {
		return types.ErrUnauthorized
	}
	if account.IsDisabled() {
		return types.ErrAccountDisabled
	}
	if allowed {
		if err := account.SetFlag(types.AccountFlagTransferAuthorityAllowed); err != nil {
			return err
		}
	} else {
		if err := account.UnsetFlag(types.AccountFlagTransferAuthorityAllowed); err != nil {
			return err
		}
	}
	k.SetAccount(ctx, account)
	return nil
}

// TransferAccountAuthority re-keys an account to a new authority.
func (k *Keeper) TransferAccountAuthority(ctx sdk.Context, authority, accountID, newAuthority string) error {
	account, err := k.loadOwnedAccount(ctx, authority, accountID)
	if err != nil {
		return err
	}
	if _, err := sdk.AccAddressFromBech32(newAuthority); err != nil {
		return types.ErrIllegalAccountAuthorityTransfer
	}
	if err := account.TransferAuthority(newAuthority); err != nil {
		return err
	}
	k.SetAccount(ctx, account)

	ctx.EventManager().EmitEvent(
		sdk.NewEvent(
			"transfer_account_authority",
			sdk.NewAttribute("account_id", accountID),
			sdk.NewAttribute("new_authority", newAuthority),
		),
	)
	return nil
}

// CollectBankFees settles the outstanding fee accumulators into the fee and
// insurance vaults, bounded by the liquidity actually available.
func (k *Keeper) CollectBankFees(ctx sdk.Context, bankID string) error {
	bank := k.GetBank(ctx, bankID)
	if bank == nil {
		return types.ErrBankNotFound
	}
	if err := k.AccrueBankInterest(ctx, bank); err != nil {
		return err
	}

	available := bank.LiquidityVault

	groupFees, remaining, err := settleOutstanding(bank.CollectedGroupFeesOutstanding, available)
	if err != nil {
		return err
	}
	available = remaining

	programFees, remaining, err := settleOutstanding(bank.CollectedProgramFeesOutstanding, available)
	if err != nil {
		return err
	}
	available = remaining

	insuranceFees, _, err := settleOutstanding(bank.CollectedInsuranceFeesOutstanding, available)
	if err != nil {
		return err
	}

	if err := k.moveBetweenVaults(ctx, bank, types.LiquidityVaultName, types.FeeVaultName, groupFees.FloorInt()); err != nil {
		return err
	}
	if err := k.moveBetweenVaults(ctx, bank, types.LiquidityVaultName, types.FeeVaultName, programFees.FloorInt()); err != nil {
		return err
	}
	if err := k.moveBetweenVaults(ctx, bank, types.LiquidityVaultName, types.InsuranceVaultName, insuranceFees.FloorInt()); err != nil {
		return err
	}

	if bank.CollectedGroupFeesOutstanding, err = bank.CollectedGroupFeesOutstanding.Sub(groupFees); err != nil {
		return err
	}
	if bank.CollectedProgramFeesOutstanding, err = bank.CollectedProgramFeesOutstanding.Sub(programFees); err != nil {
		return err
	}
	if bank.CollectedInsuranceFeesOutstanding, err = bank.CollectedInsuranceFeesOutstanding.Sub(insuranceFees); err != nil {
		return err
	}
	k.SetBank(ctx, bank)

	ctx.EventManager().EmitEvent(
		sdk.NewEvent(
			"collect_bank_fees",
			sdk.NewAttribute("bank_id", bankID),
			sdk.NewAttribute("group_fees", groupFees.String()),
			sdk.NewAttribute("program_fees", programFees.String()),
			sdk.NewAttribute("insurance_fees", insuranceFees.String()),
		),
	)
	return nil
}

// settleOutstanding caps an outstanding fee amount by available liquidity,
// returning the settled amount and the liquidity left over.
func settleOutstanding(outstanding, available types.I80F48) (settled, left types.I80F48, err error) {
	settled = types.MinFixed(outstanding.Floor(), available.Floor())
	if settled.IsNegative() {
		settled = types.ZeroFixed()
	}
	left, err = available.Sub(settled)
	if err != nil {
		return types.I80F48{}, types.I80F48{}, err
	}
	return settled, left, nil
}

func boolAttr(b bool) string {
	if b {
		return "true"
	}
	return "false"
}
