package types

// balanceIncreaseType restricts what an increase may do to the balance.
type balanceIncreaseType uint8

const (
	increaseAny balanceIncreaseType = iota
	increaseRepayOnly
	increaseDepositOnly
	increaseBypassDepositLimit
)

// balanceDecreaseType restricts what a decrease may do to the balance.
type balanceDecreaseType uint8

const (
	decreaseAny balanceDecreaseType = iota
	decreaseWithdrawOnly
	decreaseBorrowOnly
	decreaseBypassBorrowLimit
)

// BankAccountWrapper couples one account balance with its bank and applies
// the hybrid balance rules: an increase repays liabilities before crediting
// assets, a decrease drains assets before incurring liabilities, so a
// balance never holds both sides.
type BankAccountWrapper struct {
	Balance *Balance
	Bank    *Bank
}

// FindBankAccount returns a wrapper over the account's existing balance in
// the bank.
func FindBankAccount(bank *Bank, account *Account) (*BankAccountWrapper, error) {
	balance := account.FindBalance(bank.ID)
	if balance == nil {
		return nil, ErrBalanceNotFound
	}
	return &BankAccountWrapper{Balance: balance, Bank: bank}, nil
}

// FindOrCreateBankAccount returns a wrapper over the account's balance in
// the bank, activating the first free slot when none exists.
func FindOrCreateBankAccount(bank *Bank, account *Account, now int64) (*BankAccountWrapper, error) {
	if balance := account.FindBalance(bank.ID); balance != nil {
		return &BankAccountWrapper{Balance: balance, Bank: bank}, nil
	}
	idx := account.firstInactiveSlot()
	if idx < 0 {
		return nil, ErrBalanceSlotsFull
	}
	account.Balances[idx] = Balance{
		Active:               true,
		BankID:               bank.ID,
		BankAssetTag:         bank.Config.AssetTag,
		AssetShares:          ZeroFixed(),
		LiabilityShares:      ZeroFixed(),
		EmissionsOutstanding: ZeroFixed(),
		LastUpdate:           now,
	}
	return &BankAccountWrapper{Balance: &account.Balances[idx], Bank: bank}, nil
}

// Deposit credits amount, repaying any liability first.
func (w *BankAccountWrapper) Deposit(amount I80F48, now int64) error {
	return w.increaseBalance(amount, increaseAny, now)
}

// Repay pays down the liability. Errors if amount exceeds the debt.
func (w *BankAccountWrapper) Repay(amount I80F48, now int64) error {
	return w.increaseBalance(amount, increaseRepayOnly, now)
}

// Withdraw debits amount from assets. Errors if amount exceeds them.
func (w *BankAccountWrapper) Withdraw(amount I80F48, now int64) error {
	return w.decreaseBalance(amount, decreaseWithdrawOnly, now)
}

// Borrow debits amount, draining assets first and borrowing the rest.
func (w *BankAccountWrapper) Borrow(amount I80F48, now int64) error {
	return w.decreaseBalance(amount, decreaseAny, now)
}

// IncreaseBalanceInLiquidation credits amount bypassing the deposit cap.
// Used to settle the liquidatee's repaid liability and the liquidator's
// received collateral.
func (w *BankAccountWrapper) IncreaseBalanceInLiquidation(amount I80F48, now int64) error {
	return w.increaseBalance(amount, increaseBypassDepositLimit, now)
}

// DecreaseBalanceInLiquidation debits amount bypassing the borrow cap and
// the utilization bound.
func (w *BankAccountWrapper) DecreaseBalanceInLiquidation(amount I80F48, now int64) error {
	return w.decreaseBalance(amount, decreaseBypassBorrowLimit, now)
}

// WithdrawAll removes the entire asset side and returns the token amount to
// pay out, floored in the bank's favor. The sub-token remainder accrues to
// the insurance fee accumulator.
func (w *BankAccountWrapper) WithdrawAll(now int64) (I80F48, error) {
	if err := w.ClaimEmissions(now); err != nil {
		return I80F48{}, err
	}
	shares := w.Balance.AssetShares
	amount, err := w.Bank.GetAssetAmount(shares)
	if err != nil {
		return I80F48{}, err
	}
	if !amount.IsPositiveWithTolerance(ZeroAmountThreshold) {
		return I80F48{}, ErrNoAssetFound
	}
	liabilityAmount, err := w.Bank.GetLiabilityAmount(w.Balance.LiabilityShares)
	if err != nil {
		return I80F48{}, err
	}
	if !liabilityAmount.IsZeroWithTolerance(ZeroAmountThreshold) {
		return I80F48{}, ErrIllegalBalanceState.Wrap("liability side not empty")
	}

	negShares, err := shares.Neg()
	if err != nil {
		return I80F48{}, err
	}
	if err := w.Balance.ChangeAssetShares(negShares); err != nil {
		return I80F48{}, err
	}
	if err := w.Bank.ChangeAssetShares(negShares, false); err != nil {
		return I80F48{}, err
	}
	if err := w.Bank.CheckUtilizationRatio(); err != nil {
		return I80F48{}, err
	}
	// The balance closes out whole, dropping any sub-threshold liability
	// dust with it.
	w.Balance.LiabilityShares = ZeroFixed()

	payout := amount.Floor()
	dust, err := amount.Sub(payout)
	if err != nil {
		return I80F48{}, err
	}
	fees, err := w.Bank.CollectedInsuranceFeesOutstanding.Add(dust)
	if err != nil {
		return I80F48{}, err
	}
	w.Bank.CollectedInsuranceFeesOutstanding = fees
	return payout, nil
}

// RepayAll extinguishes the entire liability side and returns the token
// amount the account owes, ceiled in the bank's favor. The sub-token excess
// accrues to the insurance fee accumulator.
func (w *BankAccountWrapper) RepayAll(now int64) (I80F48, error) {
	if err := w.ClaimEmissions(now); err != nil {
		return I80F48{}, err
	}
	shares := w.Balance.LiabilityShares
	amount, err := w.Bank.GetLiabilityAmount(shares)
	if err != nil {
		return I80F48{}, err
	}
	if !amount.IsPositiveWithTolerance(ZeroAmountThreshold) {
		return I80F48{}, ErrNoLiabilityFound
	}
	assetAmount, err := w.Bank.GetAssetAmount(w.Balance.AssetShares)
	if err != nil {
		return I80F48{}, err
	}
	if !assetAmount.IsZeroWithTolerance(ZeroAmountThreshold) {
		return I80F48{}, ErrIllegalBalanceState.Wrap("asset side not empty")
	}

	negShares, err := shares.Neg()
	if err != nil {
		return I80F48{}, err
	}
	if err := w.Balance.ChangeLiabilityShares(negShares); err != nil {
		return I80F48{}, err
	}
	if err := w.Bank.ChangeLiabilityShares(negShares, false); err != nil {
		return I80F48{}, err
	}
	// The balance closes out whole, dropping any sub-threshold asset dust
	// with it.
	w.Balance.AssetShares = ZeroFixed()

	owed, err := amount.Ceil()
	if err != nil {
		return I80F48{}, err
	}
	excess, err := owed.Sub(amount)
	if err != nil {
		return I80F48{}, err
	}
	fees, err := w.Bank.CollectedInsuranceFeesOutstanding.Add(excess)
	if err != nil {
		return I80F48{}, err
	}
	w.Bank.CollectedInsuranceFeesOutstanding = fees
	return owed, nil
}

func (w *BankAccountWrapper) increaseBalance(delta I80F48, op balanceIncreaseType, now int64) error {
	if err := w.ClaimEmissions(now); err != nil {
		return err
	}

	currentLiability, err := w.Bank.GetLiabilityAmount(w.Balance.LiabilityShares)
	if err != nil {
		return err
	}
	liabilityDecrease := MinFixed(delta, currentLiability)
	assetIncrease, err := delta.Sub(liabilityDecrease)
	if err != nil {
		return err
	}

	switch op {
	case increaseRepayOnly:
		if !assetIncrease.IsZeroWithTolerance(ZeroAmountThreshold) {
			return ErrOperationRepayOnly
		}
		assetIncrease = ZeroFixed()
	case increaseDepositOnly:
		if !liabilityDecrease.IsZeroWithTolerance(ZeroAmountThreshold) {
			return ErrOperationDepositOnly
		}
		liabilityDecrease = ZeroFixed()
	}

	if liabilityDecrease.IsPositive() {
		sharesDecrease, err := w.Bank.GetLiabilityShares(liabilityDecrease)
		if err != nil {
			return err
		}
		neg, err := sharesDecrease.Neg()
		if err != nil {
			return err
		}
		if err := w.Balance.ChangeLiabilityShares(neg); err != nil {
			return err
		}
		if err := w.Bank.ChangeLiabilityShares(neg, false); err != nil {
			return err
		}
	}
	if assetIncrease.IsPositive() {
		sharesIncrease, err := w.Bank.GetAssetShares(assetIncrease)
		if err != nil {
			return err
		}
		if err := w.Balance.ChangeAssetShares(sharesIncrease); err != nil {
			return err
		}
		if err := w.Bank.ChangeAssetShares(sharesIncrease, op == increaseBypassDepositLimit); err != nil {
			return err
		}
	}
	return nil
}

func (w *BankAccountWrapper) decreaseBalance(delta I80F48, op balanceDecreaseType, now int64) error {
	if err := w.ClaimEmissions(now); err != nil {
		return err
	}

	currentAssets, err := w.Bank.GetAssetAmount(w.Balance.AssetShares)
	if err != nil {
		return err
	}
	assetDecrease := MinFixed(delta, currentAssets)
	liabilityIncrease, err := delta.Sub(assetDecrease)
	if err != nil {
		return err
	}

	switch op {
	case decreaseWithdrawOnly:
		if !liabilityIncrease.IsZeroWithTolerance(ZeroAmountThreshold) {
			return ErrOperationWithdrawOnly
		}
		liabilityIncrease = ZeroFixed()
	case decreaseBorrowOnly:
		if !assetDecrease.IsZeroWithTolerance(ZeroAmountThreshold) {
			return ErrOperationBorrowOnly
		}
		assetDecrease = ZeroFixed()
	}

	if assetDecrease.IsPositive() {
		sharesDecrease, err := w.Bank.GetAssetShares(assetDecrease)
		if err != nil {
			return err
		}
		neg, err := sharesDecrease.Neg()
		if err != nil {
			return err
		}
		if err := w.Balance.ChangeAssetShares(neg); err != nil {
			return err
		}
		if err := w.Bank.ChangeAssetShares(neg, false); err != nil {
			return err
		}
	}
	if liabilityIncrease.IsPositive() {
		sharesIncrease, err := w.Bank.GetLiabilityShares(liabilityIncrease)
		if err != nil {
			return err
		}
		if err := w.Balance.ChangeLiabilityShares(sharesIncrease); err != nil {
			return err
		}
		if err := w.Bank.ChangeLiabilityShares(sharesIncrease, op == decreaseBypassBorrowLimit); err != nil {
			return err
		}
	}

	if op != decreaseBypassBorrowLimit {
		if err := w.Bank.CheckUtilizationRatio(); err != nil {
			return err
		}
	}
	return nil
}

// ClaimEmissions accrues the balance's pending emissions for the elapsed
// period into its outstanding counter, bounded by the bank's remaining
// emissions budget.
func (w *BankAccountWrapper) ClaimEmissions(now int64) error {
	if w.Balance.LastUpdate < MinEmissionsStartTime || now <= w.Balance.LastUpdate {
		w.Balance.LastUpdate = now
		return nil
	}
	period := now - w.Balance.LastUpdate
	w.Balance.LastUpdate = now

	var amount I80F48
	switch {
	case w.Bank.GetFlag(BankFlagEmissionsLendingActive) && w.Balance.AssetShares.IsPositive():
		a, err := w.Bank.GetAssetAmount(w.Balance.AssetShares)
		if err != nil {
			return err
		}
		amount = a
	case w.Bank.GetFlag(BankFlagEmissionsBorrowActive) && w.Balance.LiabilityShares.IsPositive():
		l, err := w.Bank.GetLiabilityAmount(w.Balance.LiabilityShares)
		if err != nil {
			return err
		}
		amount = l
	default:
		return nil
	}

	emissions, err := CalcEmissions(period, amount, w.Bank.Mint.Decimals, w.Bank.EmissionsRate)
	if err != nil {
		return err
	}
	capped := MinFixed(emissions, w.Bank.EmissionsRemaining)
	if !capped.IsPositive() {
		return nil
	}

	outstanding, err := w.Balance.EmissionsOutstanding.Add(capped)
	if err != nil {
		return err
	}
	remaining, err := w.Bank.EmissionsRemaining.Sub(capped)
	if err != nil {
		return err
	}
	w.Balance.EmissionsOutstanding = outstanding
	w.Bank.EmissionsRemaining = remaining
	return nil
}

// SettleEmissions zeroes and returns the balance's claimable emissions,
// floored to whole native units. Dust below one unit stays outstanding.
func (w *BankAccountWrapper) SettleEmissions(now int64) (I80F48, error) {
	if err := w.ClaimEmissions(now); err != nil {
		return I80F48{}, err
	}
	payout := w.Balance.EmissionsOutstanding.Floor()
	if !payout.IsPositive() {
		return ZeroFixed(), nil
	}
	rest, err := w.Balance.EmissionsOutstanding.Sub(payout)
	if err != nil {
		return I80F48{}, err
	}
	w.Balance.EmissionsOutstanding = rest
	return payout, nil
}
