package types

import (
	"context"

	cdctypes "github.com/cosmos/cosmos-sdk/codec/types"
	sdk "github.com/cosmos/cosmos-sdk/types"
)

// RegisterInterfaces registers the module's interface types
func RegisterInterfaces(registry cdctypes.InterfaceRegistry) {
	registry.RegisterImplementations((*sdk.Msg)(nil),
		&MsgLiquidate{},
		&MsgHandleBankruptcy{},
	)
}

// Message types for liquidation module
const (
	TypeMsgLiquidate        = "liquidate"
	TypeMsgHandleBankruptcy = "handle_bankruptcy"
)

// MsgServer defines the liquidation module's message service
type MsgServer interface {
	Liquidate(context.Context, *MsgLiquidate) (*MsgLiquidateResponse, error)
	HandleBankruptcy(context.Context, *MsgHandleBankruptcy) (*MsgHandleBankruptcyResponse, error)
}

// RegisterMsgServer registers the MsgServer to the configurator's MsgServer
func RegisterMsgServer(s interface{}, srv MsgServer) {
	// This is a placeholder - in production, this would use gRPC registration
	// For now, the messages are handled through the module's handler
}

// MsgLiquidate seizes collateral from an unhealthy account in exchange for
// taking on a discounted slice of its debt.
type MsgLiquidate struct {
	Liquidator        string `json:"liquidator"`
	LiquidatorAccount string `json:"liquidator_account"`
	LiquidateeAccount string `json:"liquidatee_account"`
	AssetBankID       string `json:"asset_bank_id"`
	LiabilityBankID   string `json:"liability_bank_id"`
	// AssetAmount is the collateral to seize, in asset bank native units.
	AssetAmount uint64 `json:"asset_amount"`
}

func (msg *MsgLiquidate) Reset()         { *msg = MsgLiquidate{} }
func (msg *MsgLiquidate) String() string { return msg.LiquidateeAccount }
func (msg *MsgLiquidate) ProtoMessage()  {}

// XXX_MessageName returns the message type URL for MsgLiquidate
func (msg *MsgLiquidate) XXX_MessageName() string {
	return "lenddex.liquidation.v1.MsgLiquidate"
}

func (msg *MsgLiquidate) ValidateBasic() error {
	if msg.Liquidator == "" {
		return ErrUnauthorized
	}
	if msg.LiquidatorAccount == msg.LiquidateeAccount {
		return ErrSelfLiquidation
	}
	if msg.AssetBankID == msg.LiabilityBankID {
		return ErrSameBank
	}
	if msg.AssetAmount == 0 {
		return ErrZeroLiquidationAmount
	}
	return nil
}

// GetSigners returns the signer addresses for MsgLiquidate
func (msg *MsgLiquidate) GetSigners() []sdk.AccAddress {
	liquidator, _ := sdk.AccAddressFromBech32(msg.Liquidator)
	return []sdk.AccAddress{liquidator}
}

// MsgHandleBankruptcy settles an insolvent account's bad debt in one bank:
// insurance covers what it can, the rest is socialized across lenders.
type MsgHandleBankruptcy struct {
	Caller    string `json:"caller"`
	AccountID string `json:"account_id"`
	BankID    string `json:"bank_id"`
}

func (msg *MsgHandleBankruptcy) Reset()         { *msg = MsgHandleBankruptcy{} }
func (msg *MsgHandleBankruptcy) String() string { return msg.AccountID }
func (msg *MsgHandleBankruptcy) ProtoMessage()  {}

// XXX_MessageName returns the message type URL for MsgHandleBankruptcy
func (msg *MsgHandleBankruptcy) XXX_MessageName() string {
	return "lenddex.liquidation.v1.MsgHandleBankruptcy"
}

func (msg *MsgHandleBankruptcy) ValidateBasic() error {
	if msg.Caller == "" {
		return ErrUnauthorized
	}
	return nil
}

// GetSigners returns the signer addresses for MsgHandleBankruptcy
func (msg *MsgHandleBankruptcy) GetSigners() []sdk.AccAddress {
	caller, _ := sdk.AccAddressFromBech32(msg.Caller)
	return []sdk.AccAddress{caller}
}

// MsgLiquidateResponse is the response for MsgLiquidate
type MsgLiquidateResponse struct {
	LiquidationID string `json:"liquidation_id"`
	PostHealth    string `json:"post_health"`
}

func (msg *MsgLiquidateResponse) Reset()         { *msg = MsgLiquidateResponse{} }
func (msg *MsgLiquidateResponse) String() string { return msg.LiquidationID }
func (msg *MsgLiquidateResponse) ProtoMessage()  {}

// MsgHandleBankruptcyResponse is the response for MsgHandleBankruptcy
type MsgHandleBankruptcyResponse struct {
	BankruptcyID string `json:"bankruptcy_id"`
	Socialized   string `json:"socialized"`
}

func (msg *MsgHandleBankruptcyResponse) Reset()         { *msg = MsgHandleBankruptcyResponse{} }
func (msg *MsgHandleBankruptcyResponse) String() string { return msg.BankruptcyID }
func (msg *MsgHandleBankruptcyResponse) ProtoMessage()  {}
