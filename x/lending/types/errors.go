package types

import (
	"cosmossdk.io/errors"
)

// Module error codes.
//
// The groups matter to callers: math errors (1) and internal errors (40+)
// signal bugs or corrupted state, risk errors (20-29) are expected under
// adversarial conditions and are safe to retry with adjusted parameters,
// everything else is a policy violation surfaced verbatim.
var (
	// Math errors
	ErrMathOverflow = errors.Register(ModuleName, 1, "fixed-point math overflow")
	ErrDivideByZero = errors.Register(ModuleName, 2, "fixed-point division by zero")

	// State / policy violations
	ErrBankNotFound              = errors.Register(ModuleName, 3, "bank not found")
	ErrBalanceNotFound           = errors.Register(ModuleName, 4, "lending account balance not found")
	ErrBankAssetCapacityExceeded = errors.Register(ModuleName, 5, "bank deposit capacity exceeded")
	ErrBankLiabilityCapacityExceeded = errors.Register(ModuleName, 6, "bank borrow capacity exceeded")
	ErrBalanceSlotsFull          = errors.Register(ModuleName, 7, "lending account balance slots are full")
	ErrInvalidConfig             = errors.Register(ModuleName, 8, "invalid bank config")
	ErrBankPaused                = errors.Register(ModuleName, 9, "bank paused")
	ErrBankReduceOnly            = errors.Register(ModuleName, 10, "bank is in reduce-only mode")
	ErrOperationDepositOnly      = errors.Register(ModuleName, 11, "operation is deposit-only")
	ErrOperationWithdrawOnly     = errors.Register(ModuleName, 12, "operation is withdraw-only")
	ErrOperationBorrowOnly       = errors.Register(ModuleName, 13, "operation is borrow-only")
	ErrOperationRepayOnly        = errors.Register(ModuleName, 14, "operation is repay-only")
	ErrNoAssetFound              = errors.Register(ModuleName, 15, "no asset found")
	ErrNoLiabilityFound          = errors.Register(ModuleName, 16, "no liability found")
	ErrIllegalUtilizationRatio   = errors.Register(ModuleName, 17, "invalid bank utilization ratio")
	ErrAccountDisabled           = errors.Register(ModuleName, 18, "account disabled")
	ErrIllegalBalanceState       = errors.Register(ModuleName, 19, "illegal balance state")

	// Risk violations
	ErrRiskEngineInitRejected      = errors.Register(ModuleName, 20, "risk engine rejected: bad health or stale oracles")
	ErrHealthyAccount              = errors.Register(ModuleName, 21, "account is healthy, not liquidatable")
	ErrNoLiabilitiesInLiabilityBank = errors.Register(ModuleName, 22, "no liabilities in liability bank")
	ErrAssetsInLiabilityBank       = errors.Register(ModuleName, 23, "assets in liability bank")
	ErrExhaustedLiability          = errors.Register(ModuleName, 24, "liquidation exhausted the liability")
	ErrTooSeverePayoff             = errors.Register(ModuleName, 25, "liquidation payoff too severe")
	ErrTooSevereLiquidation        = errors.Register(ModuleName, 26, "liquidation too severe, account above maintenance")
	ErrWorseHealthPostLiquidation  = errors.Register(ModuleName, 27, "account health worse after liquidation")
	ErrAccountNotBankrupt          = errors.Register(ModuleName, 28, "account is not bankrupt")
	ErrBalanceNotBadDebt           = errors.Register(ModuleName, 29, "account balance is not bad debt")
	ErrIsolatedAccountIllegalState = errors.Register(ModuleName, 30, "isolated-tier account may hold only one liability")

	// Oracle errors
	ErrStaleOracle        = errors.Register(ModuleName, 31, "oracle price is stale")
	ErrInvalidPrice       = errors.Register(ModuleName, 32, "invalid oracle price")
	ErrInvalidOracleSetup = errors.Register(ModuleName, 33, "invalid oracle setup")
	ErrOracleNotSetup     = errors.Register(ModuleName, 34, "oracle is not set")
	ErrWrongOracleAccount = errors.Register(ModuleName, 35, "oracle feed does not match bank configuration")
	ErrMalformedOracleFeed = errors.Register(ModuleName, 36, "malformed oracle feed payload")
	ErrStakePoolValidation = errors.Register(ModuleName, 37, "stake pool validation failed")

	// Flashloan / flags / authority
	ErrAccountInFlashloan = errors.Register(ModuleName, 38, "illegal action during flashloan")
	ErrIllegalFlashloan   = errors.Register(ModuleName, 39, "illegal flashloan")
	ErrIllegalFlag        = errors.Register(ModuleName, 40, "illegal flag")
	ErrIllegalAccountAuthorityTransfer = errors.Register(ModuleName, 41, "illegal account authority transfer")
	ErrUnauthorized       = errors.Register(ModuleName, 42, "unauthorized")
	ErrAssetTagMismatch   = errors.Register(ModuleName, 43, "asset tag mismatch")

	// Emissions
	ErrEmissionsAlreadySetup            = errors.Register(ModuleName, 44, "emissions already setup")
	ErrCannotCloseOutstandingEmissions  = errors.Register(ModuleName, 45, "cannot close balance with outstanding emissions")

	// Internal / should-never-happen
	ErrInternalLogic = errors.Register(ModuleName, 46, "internal lending logic error")
	ErrBankAlreadyExists = errors.Register(ModuleName, 47, "bank already exists")
	ErrAccountNotFound   = errors.Register(ModuleName, 48, "lending account not found")
	ErrNegativeInterestRate = errors.Register(ModuleName, 49, "interest rate curve produced a negative rate")
)
