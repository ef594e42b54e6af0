package keeper

import (
	"context"

	sdk "github.com/cosmos/cosmos-sdk/types"

	"github.com/openalpha/lend-dex/x/lending/types"
)

var _ types.MsgServer = (*msgServer)(nil)

type msgServer struct {
	Keeper *Keeper
}

// NewMsgServerImpl returns an implementation of the MsgServer interface
func NewMsgServerImpl(keeper *Keeper) types.MsgServer {
	return &msgServer{Keeper: keeper}
}

// AddBank handles the MsgAddBank message
func (m *msgServer) AddBank(ctx context.Context, msg *types.MsgAddBank) (*types.MsgAddBankResponse, error) {
	sdkCtx := sdk.UnwrapSDKContext(ctx)
	if err := msg.ValidateBasic(); err != nil {
		return nil, err
	}
	if err := m.Keeper.AddBank(sdkCtx, msg.Admin, msg.GroupID, msg.BankID, msg.Mint, msg.Config); err != nil {
		return nil, err
	}
	return &types.MsgAddBankResponse{BankID: msg.BankID}, nil
}

// ConfigureBank handles the MsgConfigureBank message
func (m *msgServer) ConfigureBank(ctx context.Context, msg *types.MsgConfigureBank) (*types.MsgConfigureBankResponse, error) {
	sdkCtx := sdk.UnwrapSDKContext(ctx)
	if err := msg.ValidateBasic(); err != nil {
		return nil, err
	}
	if err := m.Keeper.ConfigureBank(sdkCtx, msg.Admin, msg.BankID, msg.Opt); err != nil {
		return nil, err
	}
	return &types.MsgConfigureBankResponse{}, nil
}

// InitAccount handles the MsgInitAccount message
func (m *msgServer) InitAccount(ctx context.Context, msg *types.MsgInitAccount) (*types.MsgInitAccountResponse, error) {
	sdkCtx := sdk.UnwrapSDKContext(ctx)
	if err := msg.ValidateBasic(); err != nil {
		return nil, err
	}
	if err := m.Keeper.InitAccount(sdkCtx, msg.Authority, msg.GroupID, msg.AccountID); err != nil {
		return nil, err
	}
	return &types.MsgInitAccountResponse{AccountID: msg.AccountID}, nil
}

// Deposit handles the MsgDeposit message
func (m *msgServer) Deposit(ctx context.Context, msg *types.MsgDeposit) (*types.MsgDepositResponse, error) {
	sdkCtx := sdk.UnwrapSDKContext(ctx)
	if err := msg.ValidateBasic(); err != nil {
		return nil, err
	}
	if err := m.Keeper.Deposit(sdkCtx, msg.Authority, msg.AccountID, msg.BankID, msg.Amount); err != nil {
		return nil, err
	}
	return &types.MsgDepositResponse{}, nil
}

// Withdraw handles the MsgWithdraw message
func (m *msgServer) Withdraw(ctx context.Context, msg *types.MsgWithdraw) (*types.MsgWithdrawResponse, error) {
	sdkCtx := sdk.UnwrapSDKContext(ctx)
	if err := msg.ValidateBasic(); err != nil {
		return nil, err
	}
	amount, err := m.Keeper.Withdraw(sdkCtx, msg.Authority, msg.AccountID, msg.BankID, msg.Amount, msg.WithdrawAll)
	if err != nil {
		return nil, err
	}
	return &types.MsgWithdrawResponse{Amount: amount}, nil
}

// Borrow handles the MsgBorrow message
func (m *msgServer) Borrow(ctx context.Context, msg *types.MsgBorrow) (*types.MsgBorrowResponse, error) {
	sdkCtx := sdk.UnwrapSDKContext(ctx)
	if err := msg.ValidateBasic(); err != nil {
		return nil, err
	}
	if err := m.Keeper.Borrow(sdkCtx, msg.Authority, msg.AccountID, msg.BankID, msg.Amount); err != nil {
		return nil, err
	}
	return &types.MsgBorrowResponse{}, nil
}

// Repay handles the MsgRepay message
func (m *msgServer) Repay(ctx context.Context, msg *types.MsgRepay) (*types.MsgRepayResponse, error) {
	sdkCtx := sdk.UnwrapSDKContext(ctx)
	if err := msg.ValidateBasic(); err != nil {
		return nil, err
	}
	amount, err := m.Keeper.Repay(sdkCtx, msg.Authority, msg.AccountID, msg.BankID, msg.Amount, msg.RepayAll)
	if err != nil {
		return nil, err
	}
	return &types.MsgRepayResponse{Amount: amount}, nil
}

// CloseBalance handles the MsgCloseBalance message
func (m *msgServer) CloseBalance(ctx context.Context, msg *types.MsgCloseBalance) (*types.MsgCloseBalanceResponse, error) {
	sdkCtx := sdk.UnwrapSDKContext(ctx)
	if err := msg.ValidateBasic(); err != nil {
		return nil, err
	}
	if err := m.Keeper.CloseBalance(sdkCtx, msg.Authority, msg.AccountID, msg.BankID); err != nil {
		return nil, err
	}
	return &types.MsgCloseBalanceResponse{}, nil
}

// CloseAccount handles the MsgCloseAccount message
func (m *msgServer) CloseAccount(ctx context.Context, msg *types.MsgCloseAccount) (*types.MsgCloseAccountResponse, error) {
	sdkCtx := sdk.UnwrapSDKContext(ctx)
	if err := msg.ValidateBasic(); err != nil {
		return nil, err
	}
	if err := m.Keeper.CloseAccount(sdkCtx, msg.Authority, msg.AccountID); err != nil {
		return nil, err
	}
	return &types.MsgCloseAccountResponse{}, nil
}

// StartFlashloan handles the MsgStartFlashloan message
func (m *msgServer) StartFlashloan(ctx context.Context, msg *types.MsgStartFlashloan) (*types.MsgStartFlashloanResponse, error) {
	sdkCtx := sdk.UnwrapSDKContext(ctx)
	if err := msg.ValidateBasic(); err != nil {
		return nil, err
	}
	if err := m.Keeper.StartFlashloan(sdkCtx, msg.Authority, msg.AccountID); err != nil {
		return nil, err
	}
	return &types.MsgStartFlashloanResponse{}, nil
}

// EndFlashloan handles the MsgEndFlashloan message
func (m *msgServer) EndFlashloan(ctx context.Context, msg *types.MsgEndFlashloan) (*types.MsgEndFlashloanResponse, error) {
	sdkCtx := sdk.UnwrapSDKContext(ctx)
	if err := msg.ValidateBasic(); err != nil {
		return nil, err
	}
	if err := m.Keeper.EndFlashloan(sdkCtx, msg.Authority, msg.AccountID); err != nil {
		return nil, err
	}
	return &types.MsgEndFlashloanResponse{}, nil
}

// PulseHealth handles the MsgPulseHealth message
func (m *msgServer) PulseHealth(ctx context.Context, msg *types.MsgPulseHealth) (*types.MsgPulseHealthResponse, error) {
	sdkCtx := sdk.UnwrapSDKContext(ctx)
	if err := msg.ValidateBasic(); err != nil {
		return nil, err
	}
	cache, err := m.Keeper.PulseHealth(sdkCtx, msg.AccountID)
	if err != nil {
		return nil, err
	}
	return &types.MsgPulseHealthResponse{Healthy: cache.Healthy}, nil
}

// UpdateOracleFeed handles the MsgUpdateOracleFeed message
func (m *msgServer) UpdateOracleFeed(ctx context.Context, msg *types.MsgUpdateOracleFeed) (*types.MsgUpdateOracleFeedResponse, error) {
	sdkCtx := sdk.UnwrapSDKContext(ctx)
	if err := msg.ValidateBasic(); err != nil {
		return nil, err
	}
	if err := m.Keeper.UpdateOracleFeed(sdkCtx, msg.FeedID, msg.Payload); err != nil {
		return nil, err
	}
	return &types.MsgUpdateOracleFeedResponse{}, nil
}

// SetupEmissions handles the MsgSetupEmissions message
func (m *msgServer) SetupEmissions(ctx context.Context, msg *types.MsgSetupEmissions) (*types.MsgSetupEmissionsResponse, error) {
	sdkCtx := sdk.UnwrapSDKContext(ctx)
	if err := msg.ValidateBasic(); err != nil {
		return nil, err
	}
	if err := m.Keeper.SetupEmissions(sdkCtx, msg.Admin, msg.BankID, msg.EmissionsDenom, msg.Rate, msg.TotalAmount, msg.LendingActive, msg.BorrowActive); err != nil {
		return nil, err
	}
	return &types.MsgSetupEmissionsResponse{}, nil
}

// UpdateEmissionsDestination handles the MsgUpdateEmissionsDestination message
func (m *msgServer) UpdateEmissionsDestination(ctx context.Context, msg *types.MsgUpdateEmissionsDestination) (*types.MsgUpdateEmissionsDestinationResponse, error) {
	sdkCtx := sdk.UnwrapSDKContext(ctx)
	if err := msg.ValidateBasic(); err != nil {
		return nil, err
	}
	if err := m.Keeper.UpdateEmissionsDestination(sdkCtx, msg.Authority, msg.AccountID, msg.Destination); err != nil {
		return nil, err
	}
	return &types.MsgUpdateEmissionsDestinationResponse{}, nil
}

// WithdrawEmissions handles the MsgWithdrawEmissions message
func (m *msgServer) WithdrawEmissions(ctx context.Context, msg *types.MsgWithdrawEmissions) (*types.MsgWithdrawEmissionsResponse, error) {
	sdkCtx := sdk.UnwrapSDKContext(ctx)
	if err := msg.ValidateBasic(); err != nil {
		return nil, err
	}
	amount, err := m.Keeper.WithdrawEmissions(sdkCtx, msg.Caller, msg.AccountID, msg.BankID)
	if err != nil {
		return nil, err
	}
	return &types.MsgWithdrawEmissionsResponse{Amount: amount}, nil
}

// SetAccountTransferAuthority handles the MsgSetAccountTransferAuthority message
func (m *msgServer) SetAccountTransferAuthority(ctx context.Context, msg *types.MsgSetAccountTransferAuthority) (*types.MsgSetAccountTransferAuthorityResponse, error) {
	sdkCtx := sdk.UnwrapSDKContext(ctx)
	if err := msg.ValidateBasic(); err != nil {
		return nil, err
	}
	if err := m.Keeper.SetAccountTransferAuthority(sdkCtx, msg.Admin, msg.AccountID, msg.Allowed); err != nil {
		return nil, err
	}
	return &types.MsgSetAccountTransferAuthorityResponse{}, nil
}

// TransferAccountAuthority handles the MsgTransferAccountAuthority message
func (m *msgServer) TransferAccountAuthority(ctx context.Context, msg *types.MsgTransferAccountAuthority) (*types.MsgTransferAccountAuthorityResponse, error) {
	sdkCtx := sdk.UnwrapSDKContext(ctx)
	if err := msg.ValidateBasic(); err != nil {
		return nil, err
	}
	if err := m.Keeper.TransferAccountAuthority(sdkCtx, msg.Authority, msg.AccountID, msg.NewAuthority); err != nil {
		return nil, err
	}
	return &types.MsgTransferAccountAuthorityResponse{}, nil
}

// AccrueBankInterest handles the MsgAccrueBankInterest message
func (m *msgServer) AccrueBankInterest(ctx context.Context, msg *types.MsgAccrueBankInterest) (*types.MsgAccrueBankInterestResponse, error) {
	sdkCtx := sdk.UnwrapSDKContext(ctx)
	if err := msg.ValidateBasic(); err != nil {
		return nil, err
	}
	bank := m.Keeper.GetBank(sdkCtx, msg.BankID)
	if bank == nil {
		return nil, types.ErrBankNotFound
	}
	if err := m.Keeper.AccrueBankInterest(sdkCtx, bank); err != nil {
		return nil, err
	}
	m.Keeper.SetBank(sdkCtx, bank)
	return &types.MsgAccrueBankInterestResponse{}, nil
}

// CollectBankFees handles the MsgCollectBankFees message
func (m *msgServer) CollectBankFees(ctx context.Context, msg *types.MsgCollectBankFees) (*types.MsgCollectBankFeesResponse, error) {
	sdkCtx := sdk.UnwrapSDKContext(ctx)
	if err := msg.ValidateBasic(); err != nil {
		return nil, err
	}
	if err := m.Keeper.CollectBankFees(sdkCtx, msg.BankID); err != nil {
		return nil, err
	}
	return &types.MsgCollectBankFeesResponse{}, nil
}
