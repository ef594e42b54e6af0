package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/cosmos/cosmos-sdk/client"
	"github.com/cosmos/cosmos-sdk/client/flags"
	"github.com/cosmos/cosmos-sdk/client/tx"

	"github.com/openalpha/lend-dex/x/liquidation/types"
)

// GetTxCmd returns the transaction commands for the liquidation module
func GetTxCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:                        "liquidation",
		Short:                      "Liquidation module transaction commands",
		DisableFlagParsing:         true,
		SuggestionsMinimumDistance: 2,
		RunE:                       client.ValidateCmd,
	}

	cmd.AddCommand(
		CmdLiquidate(),
		CmdHandleBankruptcy(),
	)

	return cmd
}

// CmdLiquidate returns the command to liquidate an unhealthy account
func CmdLiquidate() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "liquidate [liquidator-account] [liquidatee-account] [asset-bank] [liability-bank] [asset-amount]",
		Short: "Seize collateral from an unhealthy account",
		Args:  cobra.ExactArgs(5),
		RunE: func(cmd *cobra.Command, args []string) error {
			clientCtx, err := client.GetClientTxContext(cmd)
			if err != nil {
				return err
			}

			amount, err := strconv.ParseUint(args[4], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid asset amount: %v", err)
			}

			msg := &types.MsgLiquidate{
				Liquidator:        clientCtx.GetFromAddress().String(),
				LiquidatorAccount: args[0],
				LiquidateeAccount: args[1],
				AssetBankID:       args[2],
				LiabilityBankID:   args[3],
				AssetAmount:       amount,
			}

			return tx.GenerateOrBroadcastTxCLI(clientCtx, cmd.Flags(), msg)
		},
	}

	flags.AddTxFlagsToCmd(cmd)
	return cmd
}

// CmdHandleBankruptcy returns the command to settle an insolvent account
func CmdHandleBankruptcy() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "handle-bankruptcy [account-id] [bank-id]",
		Short: "Settle an insolvent account's bad debt in one bank",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			clientCtx, err := client.GetClientTxContext(cmd)
			if err != nil {
				return err
			}

			msg := &types.MsgHandleBankruptcy{
				Caller:    clientCtx.GetFromAddress().String(),
				AccountID: args[0],
				BankID:    args[1],
			}

			return tx.GenerateOrBroadcastTxCLI(clientCtx, cmd.Flags(), msg)
		},
	}

	flags.AddTxFlagsToCmd(cmd)
	return cmd
}
