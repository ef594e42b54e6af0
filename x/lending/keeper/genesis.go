package keeper

import (
	sdk "github.com/cosmos/cosmos-sdk/types"

	"github.com/openalpha/lend-dex/x/lending/types"
)

// InitDefaultGroup seeds the main lending group at chain initialization
func (k *Keeper) InitDefaultGroup(ctx sdk.Context, admin string) {
	if k.GetGroup(ctx, types.DefaultGroupID) != nil {
		return // Skip if already exists
	}

	group := &types.LendingGroup{
		ID:             types.DefaultGroupID,
		Admin:          admin,
		ProgramFeeRate: types.ZeroFixed(),
		CreatedAt:      ctx.BlockTime().Unix(),
	}
	k.SetGroup(ctx, group)

	k.logger.Info("default lending group initialized", "group_id", group.ID, "admin", admin)
}
