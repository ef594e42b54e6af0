package types

import (
	"context"

	cdctypes "github.com/cosmos/cosmos-sdk/codec/types"
	sdk "github.com/cosmos/cosmos-sdk/types"
)

// RegisterInterfaces registers the module's interface types
func RegisterInterfaces(registry cdctypes.InterfaceRegistry) {
	registry.RegisterImplementations((*sdk.Msg)(nil),
		&MsgAddBank{},
		&MsgConfigureBank{},
		&MsgInitAccount{},
		&MsgDeposit{},
		&MsgWithdraw{},
		&MsgBorrow{},
		&MsgRepay{},
		&MsgCloseBalance{},
		&MsgCloseAccount{},
		&MsgStartFlashloan{},
		&MsgEndFlashloan{},
		&MsgPulseHealth{},
		&MsgUpdateOracleFeed{},
		&MsgSetupEmissions{},
		&MsgUpdateEmissionsDestination{},
		&MsgWithdrawEmissions{},
		&MsgSetAccountTransferAuthority{},
		&MsgTransferAccountAuthority{},
		&MsgAccrueBankInterest{},
		&MsgCollectBankFees{},
	)
}

// Message types for lending module
const (
	TypeMsgAddBank                      = "add_bank"
	TypeMsgConfigureBank                = "configure_bank"
	TypeMsgInitAccount                  = "init_account"
	TypeMsgDeposit                      = "deposit"
	TypeMsgWithdraw                     = "withdraw"
	TypeMsgBorrow                       = "borrow"
	TypeMsgRepay                        = "repay"
	TypeMsgCloseBalance                 = "close_balance"
	TypeMsgCloseAccount                 = "close_account"
	TypeMsgStartFlashloan               = "start_flashloan"
	TypeMsgEndFlashloan                 = "end_flashloan"
	TypeMsgPulseHealth                  = "pulse_health"
	TypeMsgUpdateOracleFeed             = "update_oracle_feed"
	TypeMsgSetupEmissions               = "setup_emissions"
	TypeMsgUpdateEmissionsDestination   = "update_emissions_destination"
	TypeMsgWithdrawEmissions            = "withdraw_emissions"
	TypeMsgSetAccountTransferAuthority  = "set_account_transfer_authority"
	TypeMsgTransferAccountAuthority     = "transfer_account_authority"
	TypeMsgAccrueBankInterest           = "accrue_bank_interest"
	TypeMsgCollectBankFees              = "collect_bank_fees"
)

// MsgServer defines the lending module's message service
type MsgServer interface {
	AddBank(context.Context, *MsgAddBank) (*MsgAddBankResponse, error)
	ConfigureBank(context.Context, *MsgConfigureBank) (*MsgConfigureBankResponse, error)
	InitAccount(context.Context, *MsgInitAccount) (*MsgInitAccountResponse, error)
	Deposit(context.Context, *MsgDeposit) (*MsgDepositResponse, error)
	Withdraw(context.Context, *MsgWithdraw) (*MsgWithdrawResponse, error)
	Borrow(context.Context, *MsgBorrow) (*MsgBorrowResponse, error)
	Repay(context.Context, *MsgRepay) (*MsgRepayResponse, error)
	CloseBalance(context.Context, *MsgCloseBalance) (*MsgCloseBalanceResponse, error)
	CloseAccount(context.Context, *MsgCloseAccount) (*MsgCloseAccountResponse, error)
	StartFlashloan(context.Context, *MsgStartFlashloan) (*MsgStartFlashloanResponse, error)
	EndFlashloan(context.Context, *MsgEndFlashloan) (*MsgEndFlashloanResponse, error)
	PulseHealth(context.Context, *MsgPulseHealth) (*MsgPulseHealthResponse, error)
	UpdateOracleFeed(context.Context, *MsgUpdateOracleFeed) (*MsgUpdateOracleFeedResponse, error)
	SetupEmissions(context.Context, *MsgSetupEmissions) (*MsgSetupEmissionsResponse, error)
	UpdateEmissionsDestination(context.Context, *MsgUpdateEmissionsDestination) (*MsgUpdateEmissionsDestinationResponse, error)
	WithdrawEmissions(context.Context, *MsgWithdrawEmissions) (*MsgWithdrawEmissionsResponse, error)
	SetAccountTransferAuthority(context.Context, *MsgSetAccountTransferAuthority) (*MsgSetAccountTransferAuthorityResponse, error)
	TransferAccountAuthority(context.Context, *MsgTransferAccountAuthority) (*MsgTransferAccountAuthorityResponse, error)
	AccrueBankInterest(context.Context, *MsgAccrueBankInterest) (*MsgAccrueBankInterestResponse, error)
	CollectBankFees(context.Context, *MsgCollectBankFees) (*MsgCollectBankFeesResponse, error)
}

// RegisterMsgServer registers the MsgServer to the configurator's MsgServer
func RegisterMsgServer(s interface{}, srv MsgServer) {
	// This is a placeholder - in production, this would use gRPC registration
	// For now, the messages are handled through the module's handler
}

func signerList(addr string) []sdk.AccAddress {
	a, _ := sdk.AccAddressFromBech32(addr)
	return []sdk.AccAddress{a}
}

// MsgAddBank creates a new bank in a group. Admin only.
type MsgAddBank struct {
	Admin   string     `json:"admin"`
	GroupID string     `json:"group_id"`
	BankID  string     `json:"bank_id"`
	Mint    MintInfo   `json:"mint"`
	Config  BankConfig `json:"config"`
}

func (msg *MsgAddBank) Reset()         { *msg = MsgAddBank{} }
func (msg *MsgAddBank) String() string { return msg.BankID }
func (msg *MsgAddBank) ProtoMessage()  {}

// XXX_MessageName returns the message type URL for MsgAddBank
func (msg *MsgAddBank) XXX_MessageName() string {
	return "lenddex.lending.v1.MsgAddBank"
}

func (msg *MsgAddBank) ValidateBasic() error {
	if msg.Admin == "" {
		return ErrUnauthorized
	}
	if msg.GroupID == "" || msg.BankID == "" {
		return ErrInvalidConfig.Wrap("group and bank ids must not be empty")
	}
	if msg.Mint.Denom == "" {
		return ErrInvalidConfig.Wrap("mint denom must not be empty")
	}
	if msg.Mint.Decimals > 18 {
		return ErrInvalidConfig.Wrap("mint decimals above 18")
	}
	return msg.Config.Validate()
}

func (msg *MsgAddBank) GetSigners() []sdk.AccAddress { return signerList(msg.Admin) }

// BankConfigOpt carries the optional fields of a bank reconfiguration. Nil
// fields are left untouched.
type BankConfigOpt struct {
	AssetWeightInit  *I80F48 `json:"asset_weight_init,omitempty"`
	AssetWeightMaint *I80F48 `json:"asset_weight_maint,omitempty"`

	LiabilityWeightInit  *I80F48 `json:"liability_weight_init,omitempty"`
	LiabilityWeightMaint *I80F48 `json:"liability_weight_maint,omitempty"`

	DepositLimit   *I80F48 `json:"deposit_limit,omitempty"`
	LiabilityLimit *I80F48 `json:"liability_limit,omitempty"`

	InterestRateConfig *InterestRateConfig `json:"interest_rate_config,omitempty"`

	OperationalState *BankOperationalState `json:"operational_state,omitempty"`

	RiskTier *RiskTier `json:"risk_tier,omitempty"`

	TotalAssetValueInitLimit *I80F48 `json:"total_asset_value_init_limit,omitempty"`

	OracleMaxAge *int64 `json:"oracle_max_age,omitempty"`

	Flags *uint64 `json:"flags,omitempty"`
}

// LimitsOnly reports whether the update touches nothing but the deposit and
// borrow limits, the only fields a frozen bank accepts.
func (o *BankConfigOpt) LimitsOnly() bool {
	return o.AssetWeightInit == nil && o.AssetWeightMaint == nil &&
		o.LiabilityWeightInit == nil && o.LiabilityWeightMaint == nil &&
		o.InterestRateConfig == nil && o.OperationalState == nil &&
		o.RiskTier == nil && o.TotalAssetValueInitLimit == nil &&
		o.OracleMaxAge == nil && o.Flags == nil
}

// MsgConfigureBank updates a bank's configuration. Admin only; a frozen
// bank accepts limit updates only.
type MsgConfigureBank struct {
	Admin  string        `json:"admin"`
	BankID string        `json:"bank_id"`
	Opt    BankConfigOpt `json:"opt"`
}

func (msg *MsgConfigureBank) Reset()         { *msg = MsgConfigureBank{} }
func (msg *MsgConfigureBank) String() string { return msg.BankID }
func (msg *MsgConfigureBank) ProtoMessage()  {}

// XXX_MessageName returns the message type URL for MsgConfigureBank
func (msg *MsgConfigureBank) XXX_MessageName() string {
	return "lenddex.lending.v1.MsgConfigureBank"
}

func (msg *MsgConfigureBank) ValidateBasic() error {
	if msg.Admin == "" {
		return ErrUnauthorized
	}
	if msg.BankID == "" {
		return ErrBankNotFound
	}
	return nil
}

func (msg *MsgConfigureBank) GetSigners() []sdk.AccAddress { return signerList(msg.Admin) }

// MsgInitAccount opens a new lending account in a group.
type MsgInitAccount struct {
	Authority string `json:"authority"`
	GroupID   string `json:"group_id"`
	AccountID string `json:"account_id"`
}

func (msg *MsgInitAccount) Reset()         { *msg = MsgInitAccount{} }
func (msg *MsgInitAccount) String() string { return msg.AccountID }
func (msg *MsgInitAccount) ProtoMessage()  {}

// XXX_MessageName returns the message type URL for MsgInitAccount
func (msg *MsgInitAccount) XXX_MessageName() string {
	return "lenddex.lending.v1.MsgInitAccount"
}

func (msg *MsgInitAccount) ValidateBasic() error {
	if msg.Authority == "" {
		return ErrUnauthorized
	}
	if msg.GroupID == "" || msg.AccountID == "" {
		return ErrInvalidConfig.Wrap("group and account ids must not be empty")
	}
	return nil
}

func (msg *MsgInitAccount) GetSigners() []sdk.AccAddress { return signerList(msg.Authority) }

// MsgDeposit moves tokens from the signer into their balance in a bank.
type MsgDeposit struct {
	Authority string `json:"authority"`
	AccountID string `json:"account_id"`
	BankID    string `json:"bank_id"`
	Amount    uint64 `json:"amount"`
}

func (msg *MsgDeposit) Reset()         { *msg = MsgDeposit{} }
func (msg *MsgDeposit) String() string { return msg.AccountID }
func (msg *MsgDeposit) ProtoMessage()  {}

// XXX_MessageName returns the message type URL for MsgDeposit
func (msg *MsgDeposit) XXX_MessageName() string {
	return "lenddex.lending.v1.MsgDeposit"
}

func (msg *MsgDeposit) ValidateBasic() error {
	if msg.Authority == "" {
		return ErrUnauthorized
	}
	if msg.Amount == 0 {
		return ErrInvalidConfig.Wrap("amount must be positive")
	}
	return nil
}

func (msg *MsgDeposit) GetSigners() []sdk.AccAddress { return signerList(msg.Authority) }

// MsgWithdraw moves tokens from the signer's balance back to their wallet.
// WithdrawAll drains the asset side regardless of Amount.
type MsgWithdraw struct {
	Authority   string `json:"authority"`
	AccountID   string `json:"account_id"`
	BankID      string `json:"bank_id"`
	Amount      uint64 `json:"amount"`
	WithdrawAll bool   `json:"withdraw_all,omitempty"`
}

func (msg *MsgWithdraw) Reset()         { *msg = MsgWithdraw{} }
func (msg *MsgWithdraw) String() string { return msg.AccountID }
func (msg *MsgWithdraw) ProtoMessage()  {}

// XXX_MessageName returns the message type URL for MsgWithdraw
func (msg *MsgWithdraw) XXX_MessageName() string {
	return "lenddex.lending.v1.MsgWithdraw"
}

func (msg *MsgWithdraw) ValidateBasic() error {
	if msg.Authority == "" {
		return ErrUnauthorized
	}
	if msg.Amount == 0 && !msg.WithdrawAll {
		return ErrInvalidConfig.Wrap("amount must be positive")
	}
	return nil
}

func (msg *MsgWithdraw) GetSigners() []sdk.AccAddress { return signerList(msg.Authority) }

// MsgBorrow borrows tokens from a bank against the account's collateral.
type MsgBorrow struct {
	Authority string `json:"authority"`
	AccountID string `json:"account_id"`
	BankID    string `json:"bank_id"`
	Amount    uint64 `json:"amount"`
}

func (msg *MsgBorrow) Reset()         { *msg = MsgBorrow{} }
func (msg *MsgBorrow) String() string { return msg.AccountID }
func (msg *MsgBorrow) ProtoMessage()  {}

// XXX_MessageName returns the message type URL for MsgBorrow
func (msg *MsgBorrow) XXX_MessageName() string {
	return "lenddex.lending.v1.MsgBorrow"
}

func (msg *MsgBorrow) ValidateBasic() error {
	if msg.Authority == "" {
		return ErrUnauthorized
	}
	if msg.Amount == 0 {
		return ErrInvalidConfig.Wrap("amount must be positive")
	}
	return nil
}

func (msg *MsgBorrow) GetSigners() []sdk.AccAddress { return signerList(msg.Authority) }

// MsgRepay pays down the signer's liability in a bank. RepayAll
// extinguishes the debt regardless of Amount.
type MsgRepay struct {
	Authority string `json:"authority"`
	AccountID string `json:"account_id"`
	BankID    string `json:"bank_id"`
	Amount    uint64 `json:"amount"`
	RepayAll  bool   `json:"repay_all,omitempty"`
}

func (msg *MsgRepay) Reset()         { *msg = MsgRepay{} }
func (msg *MsgRepay) String() string { return msg.AccountID }
func (msg *MsgRepay) ProtoMessage()  {}

// XXX_MessageName returns the message type URL for MsgRepay
func (msg *MsgRepay) XXX_MessageName() string {
	return "lenddex.lending.v1.MsgRepay"
}

func (msg *MsgRepay) ValidateBasic() error {
	if msg.Authority == "" {
		return ErrUnauthorized
	}
	if msg.Amount == 0 && !msg.RepayAll {
		return ErrInvalidConfig.Wrap("amount must be positive")
	}
	return nil
}

func (msg *MsgRepay) GetSigners() []sdk.AccAddress { return signerList(msg.Authority) }

// MsgCloseBalance deactivates an empty balance slot.
type MsgCloseBalance struct {
	Authority string `json:"authority"`
	AccountID string `json:"account_id"`
	BankID    string `json:"bank_id"`
}

func (msg *MsgCloseBalance) Reset()         { *msg = MsgCloseBalance{} }
func (msg *MsgCloseBalance) String() string { return msg.AccountID }
func (msg *MsgCloseBalance) ProtoMessage()  {}

// XXX_MessageName returns the message type URL for MsgCloseBalance
func (msg *MsgCloseBalance) XXX_MessageName() string {
	return "lenddex.lending.v1.MsgCloseBalance"
}

func (msg *MsgCloseBalance) ValidateBasic() error {
	if msg.Authority == "" {
		return ErrUnauthorized
	}
	return nil
}

func (msg *MsgCloseBalance) GetSigners() []sdk.AccAddress { return signerList(msg.Authority) }

// MsgCloseAccount removes an account with no active balances.
type MsgCloseAccount struct {
	Authority string `json:"authority"`
	AccountID string `json:"account_id"`
}

func (msg *MsgCloseAccount) Reset()         { *msg = MsgCloseAccount{} }
func (msg *MsgCloseAccount) String() string { return msg.AccountID }
func (msg *MsgCloseAccount) ProtoMessage()  {}

// XXX_MessageName returns the message type URL for MsgCloseAccount
func (msg *MsgCloseAccount) XXX_MessageName() string {
	return "lenddex.lending.v1.MsgCloseAccount"
}

func (msg *MsgCloseAccount) ValidateBasic() error {
	if msg.Authority == "" {
		return ErrUnauthorized
	}
	return nil
}

func (msg *MsgCloseAccount) GetSigners() []sdk.AccAddress { return signerList(msg.Authority) }

// MsgStartFlashloan opens a flashloan bracket: init health checks are
// suspended until the matching end message in the same transaction.
type MsgStartFlashloan struct {
	Authority string `json:"authority"`
	AccountID string `json:"account_id"`
	// EndIndex is the index of the MsgEndFlashloan within the transaction's
	// message list.
	EndIndex uint32 `json:"end_index"`
}

func (msg *MsgStartFlashloan) Reset()         { *msg = MsgStartFlashloan{} }
func (msg *MsgStartFlashloan) String() string { return msg.AccountID }
func (msg *MsgStartFlashloan) ProtoMessage()  {}

// XXX_MessageName returns the message type URL for MsgStartFlashloan
func (msg *MsgStartFlashloan) XXX_MessageName() string {
	return "lenddex.lending.v1.MsgStartFlashloan"
}

func (msg *MsgStartFlashloan) ValidateBasic() error {
	if msg.Authority == "" {
		return ErrUnauthorized
	}
	return nil
}

func (msg *MsgStartFlashloan) GetSigners() []sdk.AccAddress { return signerList(msg.Authority) }

// MsgEndFlashloan closes the flashloan bracket and re-enforces health.
type MsgEndFlashloan struct {
	Authority string `json:"authority"`
	AccountID string `json:"account_id"`
}

func (msg *MsgEndFlashloan) Reset()         { *msg = MsgEndFlashloan{} }
func (msg *MsgEndFlashloan) String() string { return msg.AccountID }
func (msg *MsgEndFlashloan) ProtoMessage()  {}

// XXX_MessageName returns the message type URL for MsgEndFlashloan
func (msg *MsgEndFlashloan) XXX_MessageName() string {
	return "lenddex.lending.v1.MsgEndFlashloan"
}

func (msg *MsgEndFlashloan) ValidateBasic() error {
	if msg.Authority == "" {
		return ErrUnauthorized
	}
	return nil
}

func (msg *MsgEndFlashloan) GetSigners() []sdk.AccAddress { return signerList(msg.Authority) }

// MsgPulseHealth refreshes an account's health cache. Permissionless.
type MsgPulseHealth struct {
	Caller    string `json:"caller"`
	AccountID string `json:"account_id"`
}

func (msg *MsgPulseHealth) Reset()         { *msg = MsgPulseHealth{} }
func (msg *MsgPulseHealth) String() string { return msg.AccountID }
func (msg *MsgPulseHealth) ProtoMessage()  {}

// XXX_MessageName returns the message type URL for MsgPulseHealth
func (msg *MsgPulseHealth) XXX_MessageName() string {
	return "lenddex.lending.v1.MsgPulseHealth"
}

func (msg *MsgPulseHealth) ValidateBasic() error {
	if msg.Caller == "" {
		return ErrUnauthorized
	}
	return nil
}

func (msg *MsgPulseHealth) GetSigners() []sdk.AccAddress { return signerList(msg.Caller) }

// MsgUpdateOracleFeed posts a raw price feed payload. Permissionless; the
// payload carries its own publish time and is validated at read time.
type MsgUpdateOracleFeed struct {
	Relayer string `json:"relayer"`
	FeedID  string `json:"feed_id"`
	Payload []byte `json:"payload"`
}

func (msg *MsgUpdateOracleFeed) Reset()         { *msg = MsgUpdateOracleFeed{} }
func (msg *MsgUpdateOracleFeed) String() string { return msg.FeedID }
func (msg *MsgUpdateOracleFeed) ProtoMessage()  {}

// XXX_MessageName returns the message type URL for MsgUpdateOracleFeed
func (msg *MsgUpdateOracleFeed) XXX_MessageName() string {
	return "lenddex.lending.v1.MsgUpdateOracleFeed"
}

func (msg *MsgUpdateOracleFeed) ValidateBasic() error {
	if msg.Relayer == "" {
		return ErrUnauthorized
	}
	if msg.FeedID == "" {
		return ErrOracleNotSetup
	}
	if len(msg.Payload) == 0 {
		return ErrMalformedOracleFeed.Wrap("empty payload")
	}
	return nil
}

func (msg *MsgUpdateOracleFeed) GetSigners() []sdk.AccAddress { return signerList(msg.Relayer) }

// MsgSetupEmissions funds and activates emissions on a bank. Admin only.
type MsgSetupEmissions struct {
	Admin          string `json:"admin"`
	BankID         string `json:"bank_id"`
	EmissionsDenom string `json:"emissions_denom"`
	Rate           uint64 `json:"rate"`
	TotalAmount    uint64 `json:"total_amount"`
	LendingActive  bool   `json:"lending_active"`
	BorrowActive   bool   `json:"borrow_active"`
}

func (msg *MsgSetupEmissions) Reset()         { *msg = MsgSetupEmissions{} }
func (msg *MsgSetupEmissions) String() string { return msg.BankID }
func (msg *MsgSetupEmissions) ProtoMessage()  {}

// XXX_MessageName returns the message type URL for MsgSetupEmissions
func (msg *MsgSetupEmissions) XXX_MessageName() string {
	return "lenddex.lending.v1.MsgSetupEmissions"
}

func (msg *MsgSetupEmissions) ValidateBasic() error {
	if msg.Admin == "" {
		return ErrUnauthorized
	}
	if msg.EmissionsDenom == "" {
		return ErrInvalidConfig.Wrap("emissions denom must not be empty")
	}
	if msg.Rate == 0 || msg.TotalAmount == 0 {
		return ErrInvalidConfig.Wrap("emissions rate and amount must be positive")
	}
	if !msg.LendingActive && !msg.BorrowActive {
		return ErrInvalidConfig.Wrap("emissions must target at least one side")
	}
	return nil
}

func (msg *MsgSetupEmissions) GetSigners() []sdk.AccAddress { return signerList(msg.Admin) }

// MsgUpdateEmissionsDestination registers where permissionless emissions
// withdrawals for the account pay out.
type MsgUpdateEmissionsDestination struct {
	Authority   string `json:"authority"`
	AccountID   string `json:"account_id"`
	Destination string `json:"destination"`
}

func (msg *MsgUpdateEmissionsDestination) Reset()         { *msg = MsgUpdateEmissionsDestination{} }
func (msg *MsgUpdateEmissionsDestination) String() string { return msg.AccountID }
func (msg *MsgUpdateEmissionsDestination) ProtoMessage()  {}

// XXX_MessageName returns the message type URL for MsgUpdateEmissionsDestination
func (msg *MsgUpdateEmissionsDestination) XXX_MessageName() string {
	return "lenddex.lending.v1.MsgUpdateEmissionsDestination"
}

func (msg *MsgUpdateEmissionsDestination) ValidateBasic() error {
	if msg.Authority == "" {
		return ErrUnauthorized
	}
	if msg.Destination == "" {
		return ErrInvalidConfig.Wrap("destination must not be empty")
	}
	return nil
}

func (msg *MsgUpdateEmissionsDestination) GetSigners() []sdk.AccAddress {
	return signerList(msg.Authority)
}

// MsgWithdrawEmissions pays out claimable emissions for one balance. Anyone
// may call it once the account has a registered destination; the owner may
// always call it, paying to themselves.
type MsgWithdrawEmissions struct {
	Caller    string `json:"caller"`
	AccountID string `json:"account_id"`
	BankID    string `json:"bank_id"`
}

func (msg *MsgWithdrawEmissions) Reset()         { *msg = MsgWithdrawEmissions{} }
func (msg *MsgWithdrawEmissions) String() string { return msg.AccountID }
func (msg *MsgWithdrawEmissions) ProtoMessage()  {}

// XXX_MessageName returns the message type URL for MsgWithdrawEmissions
func (msg *MsgWithdrawEmissions) XXX_MessageName() string {
	return "lenddex.lending.v1.MsgWithdrawEmissions"
}

func (msg *MsgWithdrawEmissions) ValidateBasic() error {
	if msg.Caller == "" {
		return ErrUnauthorized
	}
	return nil
}

func (msg *MsgWithdrawEmissions) GetSigners() []sdk.AccAddress { return signerList(msg.Caller) }

// MsgSetAccountTransferAuthority arms the authority transfer flag on an
// account. Group admin only.
type MsgSetAccountTransferAuthority struct {
	Admin     string `json:"admin"`
	AccountID string `json:"account_id"`
	Allowed   bool   `json:"allowed"`
}

func (msg *MsgSetAccountTransferAuthority) Reset()         { *msg = MsgSetAccountTransferAuthority{} }
func (msg *MsgSetAccountTransferAuthority) String() string { return msg.AccountID }
func (msg *MsgSetAccountTransferAuthority) ProtoMessage()  {}

// XXX_MessageName returns the message type URL for MsgSetAccountTransferAuthority
func (msg *MsgSetAccountTransferAuthority) XXX_MessageName() string {
	return "lenddex.lending.v1.MsgSetAccountTransferAuthority"
}

func (msg *MsgSetAccountTransferAuthority) ValidateBasic() error {
	if msg.Admin == "" {
		return ErrUnauthorized
	}
	return nil
}

func (msg *MsgSetAccountTransferAuthority) GetSigners() []sdk.AccAddress {
	return signerList(msg.Admin)
}

// MsgTransferAccountAuthority re-keys an account to a new authority.
// Requires the admin-armed transfer flag.
type MsgTransferAccountAuthority struct {
	Authority    string `json:"authority"`
	AccountID    string `json:"account_id"`
	NewAuthority string `json:"new_authority"`
}

func (msg *MsgTransferAccountAuthority) Reset()         { *msg = MsgTransferAccountAuthority{} }
func (msg *MsgTransferAccountAuthority) String() string { return msg.AccountID }
func (msg *MsgTransferAccountAuthority) ProtoMessage()  {}

// XXX_MessageName returns the message type URL for MsgTransferAccountAuthority
func (msg *MsgTransferAccountAuthority) XXX_MessageName() string {
	return "lenddex.lending.v1.MsgTransferAccountAuthority"
}

func (msg *MsgTransferAccountAuthority) ValidateBasic() error {
	if msg.Authority == "" {
		return ErrUnauthorized
	}
	if msg.NewAuthority == "" {
		return ErrIllegalAccountAuthorityTransfer
	}
	return nil
}

func (msg *MsgTransferAccountAuthority) GetSigners() []sdk.AccAddress {
	return signerList(msg.Authority)
}

// MsgAccrueBankInterest brings a bank's accumulators current.
// Permissionless crank.
type MsgAccrueBankInterest struct {
	Caller string `json:"caller"`
	BankID string `json:"bank_id"`
}

func (msg *MsgAccrueBankInterest) Reset()         { *msg = MsgAccrueBankInterest{} }
func (msg *MsgAccrueBankInterest) String() string { return msg.BankID }
func (msg *MsgAccrueBankInterest) ProtoMessage()  {}

// XXX_MessageName returns the message type URL for MsgAccrueBankInterest
func (msg *MsgAccrueBankInterest) XXX_MessageName() string {
	return "lenddex.lending.v1.MsgAccrueBankInterest"
}

func (msg *MsgAccrueBankInterest) ValidateBasic() error {
	if msg.Caller == "" {
		return ErrUnauthorized
	}
	return nil
}

func (msg *MsgAccrueBankInterest) GetSigners() []sdk.AccAddress { return signerList(msg.Caller) }

// MsgCollectBankFees settles the outstanding fee accumulators into the fee
// and insurance vaults. Permissionless crank.
type MsgCollectBankFees struct {
	Caller string `json:"caller"`
	BankID string `json:"bank_id"`
}

func (msg *MsgCollectBankFees) Reset()         { *msg = MsgCollectBankFees{} }
func (msg *MsgCollectBankFees) String() string { return msg.BankID }
func (msg *MsgCollectBankFees) ProtoMessage()  {}

// XXX_MessageName returns the message type URL for MsgCollectBankFees
func (msg *MsgCollectBankFees) XXX_MessageName() string {
	return "lenddex.lending.v1.MsgCollectBankFees"
}

func (msg *MsgCollectBankFees) ValidateBasic() error {
	if msg.Caller == "" {
		return ErrUnauthorized
	}
	return nil
}

func (msg *MsgCollectBankFees) GetSigners() []sdk.AccAddress { return signerList(msg.Caller) }

// ============ Responses ============

// MsgAddBankResponse is the response for MsgAddBank
type MsgAddBankResponse struct {
	BankID string `json:"bank_id"`
}

func (msg *MsgAddBankResponse) Reset()         { *msg = MsgAddBankResponse{} }
func (msg *MsgAddBankResponse) String() string { return msg.BankID }
func (msg *MsgAddBankResponse) ProtoMessage()  {}

// MsgConfigureBankResponse is the response for MsgConfigureBank
type MsgConfigureBankResponse struct{}

func (msg *MsgConfigureBankResponse) Reset()         { *msg = MsgConfigureBankResponse{} }
func (msg *MsgConfigureBankResponse) String() string { return "" }
func (msg *MsgConfigureBankResponse) ProtoMessage()  {}

// MsgInitAccountResponse is the response for MsgInitAccount
type MsgInitAccountResponse struct {
	AccountID string `json:"account_id"`
}

func (msg *MsgInitAccountResponse) Reset()         { *msg = MsgInitAccountResponse{} }
func (msg *MsgInitAccountResponse) String() string { return msg.AccountID }
func (msg *MsgInitAccountResponse) ProtoMessage()  {}

// MsgDepositResponse is the response for MsgDeposit
type MsgDepositResponse struct{}

func (msg *MsgDepositResponse) Reset()         { *msg = MsgDepositResponse{} }
func (msg *MsgDepositResponse) String() string { return "" }
func (msg *MsgDepositResponse) ProtoMessage()  {}

// MsgWithdrawResponse is the response for MsgWithdraw
type MsgWithdrawResponse struct {
	Amount uint64 `json:"amount"`
}

func (msg *MsgWithdrawResponse) Reset()         { *msg = MsgWithdrawResponse{} }
func (msg *MsgWithdrawResponse) String() string { return "" }
func (msg *MsgWithdrawResponse) ProtoMessage()  {}

// MsgBorrowResponse is the response for MsgBorrow
type MsgBorrowResponse struct{}

func (msg *MsgBorrowResponse) Reset()         { *msg = MsgBorrowResponse{} }
func (msg *MsgBorrowResponse) String() string { return "" }
func (msg *MsgBorrowResponse) ProtoMessage()  {}

// MsgRepayResponse is the response for MsgRepay
type MsgRepayResponse struct {
	Amount uint64 `json:"amount"`
}

func (msg *MsgRepayResponse) Reset()         { *msg = MsgRepayResponse{} }
func (msg *MsgRepayResponse) String() string { return "" }
func (msg *MsgRepayResponse) ProtoMessage()  {}

// MsgCloseBalanceResponse is the response for MsgCloseBalance
type MsgCloseBalanceResponse struct{}

func (msg *MsgCloseBalanceResponse) Reset()         { *msg = MsgCloseBalanceResponse{} }
func (msg *MsgCloseBalanceResponse) String() string { return "" }
func (msg *MsgCloseBalanceResponse) ProtoMessage()  {}

// MsgCloseAccountResponse is the response for MsgCloseAccount
type MsgCloseAccountResponse struct{}

func (msg *MsgCloseAccountResponse) Reset()         { *msg = MsgCloseAccountResponse{} }
func (msg *MsgCloseAccountResponse) String() string { return "" }
func (msg *MsgCloseAccountResponse) ProtoMessage()  {}

// MsgStartFlashloanResponse is the response for MsgStartFlashloan
type MsgStartFlashloanResponse struct{}

func (msg *MsgStartFlashloanResponse) Reset()         { *msg = MsgStartFlashloanResponse{} }
func (msg *MsgStartFlashloanResponse) String() string { return "" }
func (msg *MsgStartFlashloanResponse) ProtoMessage()  {}

// MsgEndFlashloanResponse is the response for MsgEndFlashloan
type MsgEndFlashloanResponse struct{}

func (msg *MsgEndFlashloanResponse) Reset()         { *msg = MsgEndFlashloanResponse{} }
func (msg *MsgEndFlashloanResponse) String() string { return "" }
func (msg *MsgEndFlashloanResponse) ProtoMessage()  {}

// MsgPulseHealthResponse is the response for MsgPulseHealth
type MsgPulseHealthResponse struct {
	Healthy bool `json:"healthy"`
}

func (msg *MsgPulseHealthResponse) Reset()         { *msg = MsgPulseHealthResponse{} }
func (msg *MsgPulseHealthResponse) String() string { return "" }
func (msg *MsgPulseHealthResponse) ProtoMessage()  {}

// MsgUpdateOracleFeedResponse is the response for MsgUpdateOracleFeed
type MsgUpdateOracleFeedResponse struct{}

func (msg *MsgUpdateOracleFeedResponse) Reset()         { *msg = MsgUpdateOracleFeedResponse{} }
func (msg *MsgUpdateOracleFeedResponse) String() string { return "" }
func (msg *MsgUpdateOracleFeedResponse) ProtoMessage()  {}

// MsgSetupEmissionsResponse is the response for MsgSetupEmissions
type MsgSetupEmissionsResponse struct{}

func (msg *MsgSetupEmissionsResponse) Reset()         { *msg = MsgSetupEmissionsResponse{} }
func (msg *MsgSetupEmissionsResponse) String() string { return "" }
func (msg *MsgSetupEmissionsResponse) ProtoMessage()  {}

// MsgUpdateEmissionsDestinationResponse is the response for MsgUpdateEmissionsDestination
type MsgUpdateEmissionsDestinationResponse struct{}

func (msg *MsgUpdateEmissionsDestinationResponse) Reset() {
	*msg = MsgUpdateEmissionsDestinationResponse{}
}
func (msg *MsgUpdateEmissionsDestinationResponse) String() string { return "" }
func (msg *MsgUpdateEmissionsDestinationResponse) ProtoMessage()  {}

// MsgWithdrawEmissionsResponse is the response for MsgWithdrawEmissions
type MsgWithdrawEmissionsResponse struct {
	Amount uint64 `json:"amount"`
}

func (msg *MsgWithdrawEmissionsResponse) Reset()         { *msg = MsgWithdrawEmissionsResponse{} }
func (msg *MsgWithdrawEmissionsResponse) String() string { return "" }
func (msg *MsgWithdrawEmissionsResponse) ProtoMessage()  {}

// MsgSetAccountTransferAuthorityResponse is the response for MsgSetAccountTransferAuthority
type MsgSetAccountTransferAuthorityResponse struct{}

func (msg *MsgSetAccountTransferAuthorityResponse) Reset() {
	*msg = MsgSetAccountTransferAuthorityResponse{}
}
func (msg *MsgSetAccountTransferAuthorityResponse) String() string { return "" }
func (msg *MsgSetAccountTransferAuthorityResponse) ProtoMessage()  {}

// MsgTransferAccountAuthorityResponse is the response for MsgTransferAccountAuthority
type MsgTransferAccountAuthorityResponse struct{}

func (msg *MsgTransferAccountAuthorityResponse) Reset() {
	*msg = MsgTransferAccountAuthorityResponse{}
}
func (msg *MsgTransferAccountAuthorityResponse) String() string { return "" }
func (msg *MsgTransferAccountAuthorityResponse) ProtoMessage()  {}

// MsgAccrueBankInterestResponse is the response for MsgAccrueBankInterest
type MsgAccrueBankInterestResponse struct{}

func (msg *MsgAccrueBankInterestResponse) Reset()         { *msg = MsgAccrueBankInterestResponse{} }
func (msg *MsgAccrueBankInterestResponse) String() string { return "" }
func (msg *MsgAccrueBankInterestResponse) ProtoMessage()  {}

// MsgCollectBankFeesResponse is the response for MsgCollectBankFees
type MsgCollectBankFeesResponse struct{}

func (msg *MsgCollectBankFeesResponse) Reset()         { *msg = MsgCollectBankFeesResponse{} }
func (msg *MsgCollectBankFeesResponse) String() string { return "" }
func (msg *MsgCollectBankFeesResponse) ProtoMessage()  {}
