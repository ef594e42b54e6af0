package app

import (
	sdk "github.com/cosmos/cosmos-sdk/types"

	lendingkeeper "github.com/openalpha/lend-dex/x/lending/keeper"
)

// NewAnteHandler builds the transaction ante chain. The flashloan decorator
// rejects transactions with unpaired flashloan brackets before any message
// runs, so a start message can never leave an account with health checks
// suspended past its own transaction.
func NewAnteHandler() sdk.AnteHandler {
	return sdk.ChainAnteDecorators(
		lendingkeeper.NewFlashloanDecorator(),
	)
}
