package keeper

import (
	"context"

	sdk "github.com/cosmos/cosmos-sdk/types"

	"github.com/openalpha/lend-dex/x/liquidation/types"
)

var _ types.MsgServer = (*msgServer)(nil)

type msgServer struct {
	Keeper *Keeper
}

// NewMsgServerImpl returns an implementation of the MsgServer interface
func NewMsgServerImpl(keeper *Keeper) types.MsgServer {
	return &msgServer{Keeper: keeper}
}

// Liquidate handles the MsgLiquidate message
func (m *msgServer) Liquidate(ctx context.Context, msg *types.MsgLiquidate) (*types.MsgLiquidateResponse, error) {
	sdkCtx := sdk.UnwrapSDKContext(ctx)
	if err := msg.ValidateBasic(); err != nil {
		return nil, err
	}
	record, err := m.Keeper.Liquidate(sdkCtx, msg.Liquidator, msg.LiquidatorAccount, msg.LiquidateeAccount, msg.AssetBankID, msg.LiabilityBankID, msg.AssetAmount)
	if err != nil {
		return nil, err
	}
	return &types.MsgLiquidateResponse{
		LiquidationID: record.ID,
		PostHealth:    record.PostHealth.String(),
	}, nil
}

// HandleBankruptcy handles the MsgHandleBankruptcy message
func (m *msgServer) HandleBankruptcy(ctx context.Context, msg *types.MsgHandleBankruptcy) (*types.MsgHandleBankruptcyResponse, error) {
	sdkCtx := sdk.UnwrapSDKContext(ctx)
	if err := msg.ValidateBasic(); err != nil {
		return nil, err
	}
	record, err := m.Keeper.HandleBankruptcy(sdkCtx, msg.Caller, msg.AccountID, msg.BankID)
	if err != nil {
		return nil, err
	}
	return &types.MsgHandleBankruptcyResponse{
		BankruptcyID: record.ID,
		Socialized:   record.Socialized.String(),
	}, nil
}
