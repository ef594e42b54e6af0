package keeper

import (
	sdk "github.com/cosmos/cosmos-sdk/types"

	"github.com/openalpha/lend-dex/x/lending/types"
)

// StartFlashloan opens a flashloan bracket on the account: initial health
// checks are suspended until EndFlashloan. The ante handler guarantees a
// matching end message later in the same transaction, so transaction
// atomicity makes the bracket all-or-nothing.
func (k *Keeper) StartFlashloan(ctx sdk.Context, authority, accountID string) error {
	account, err := k.loadOwnedAccount(ctx, authority, accountID)
	if err != nil {
		return err
	}
	if account.IsInFlashloan() {
		return types.ErrIllegalFlashloan.Wrap("account is already in a flashloan")
	}
	if err := account.SetFlag(types.AccountFlagInFlashloan); err != nil {
		return err
	}
	k.SetAccount(ctx, account)

	ctx.EventManager().EmitEvent(
		sdk.NewEvent(
			"start_flashloan",
			sdk.NewAttribute("account_id", accountID),
		),
	)
	return nil
}

// EndFlashloan closes the bracket and re-enforces initial health.
func (k *Keeper) EndFlashloan(ctx sdk.Context, authority, accountID string) error {
	account, err := k.loadOwnedAccount(ctx, authority, accountID)
	if err != nil {
		return err
	}
	if !account.IsInFlashloan() {
		return types.ErrIllegalFlashloan.Wrap("account is not in a flashloan")
	}
	if err := account.UnsetFlag(types.AccountFlagInFlashloan); err != nil {
		return err
	}

	if err := k.CheckAccountInitHealth(ctx, account); err != nil {
		return err
	}
	k.SetAccount(ctx, account)

	ctx.EventManager().EmitEvent(
		sdk.NewEvent(
			"end_flashloan",
			sdk.NewAttribute("account_id", accountID),
		),
	)
	return nil
}

// FlashloanDecorator rejects transactions whose flashloan brackets are not
// properly paired: every MsgStartFlashloan must be followed by a
// MsgEndFlashloan for the same account at the declared message index.
// Running this before execution is what lets StartFlashloan persist the
// in-flashloan flag safely.
type FlashloanDecorator struct{}

func NewFlashloanDecorator() FlashloanDecorator {
	return FlashloanDecorator{}
}

func (d FlashloanDecorator) AnteHandle(ctx sdk.Context, tx sdk.Tx, simulate bool, next sdk.AnteHandler) (sdk.Context, error) {
	msgs := tx.GetMsgs()
	for i, msg := range msgs {
		start, ok := msg.(*types.MsgStartFlashloan)
		if !ok {
			continue
		}
		endIdx := int(start.EndIndex)
		if endIdx <= i || endIdx >= len(msgs) {
			return ctx, types.ErrIllegalFlashloan.Wrapf(
				"end index %d out of range for start at %d", endIdx, i)
		}
		end, ok := msgs[endIdx].(*types.MsgEndFlashloan)
		if !ok {
			return ctx, types.ErrIllegalFlashloan.Wrapf(
				"message at index %d is not an end flashloan", endIdx)
		}
		if end.AccountID != start.AccountID {
			return ctx, types.ErrIllegalFlashloan.Wrap("end flashloan targets a different account")
		}
	}
	return next(ctx, tx, simulate)
}
