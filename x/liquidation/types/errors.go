package types

import (
	"cosmossdk.io/errors"
)

// Module error codes. Risk-engine violations surface from the lending
// codespace; these cover orchestration failures only.
var (
	ErrUnauthorized            = errors.Register(ModuleName, 1, "unauthorized")
	ErrSelfLiquidation         = errors.Register(ModuleName, 2, "cannot liquidate own account")
	ErrSameBank                = errors.Register(ModuleName, 3, "asset and liability bank must differ")
	ErrZeroLiquidationAmount   = errors.Register(ModuleName, 4, "liquidation amount must be positive")
	ErrPermissionlessForbidden = errors.Register(ModuleName, 5, "bank does not allow permissionless bad debt settlement")
)
