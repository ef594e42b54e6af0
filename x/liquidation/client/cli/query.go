package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cosmos/cosmos-sdk/client"
	"github.com/cosmos/cosmos-sdk/client/flags"
)

// GetQueryCmd returns the cli query commands for the liquidation module
func GetQueryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:                        "liquidation",
		Short:                      "Querying commands for the liquidation module",
		DisableFlagParsing:         true,
		SuggestionsMinimumDistance: 2,
		RunE:                       client.ValidateCmd,
	}

	cmd.AddCommand(
		CmdQueryLiquidation(),
		CmdQueryLiquidations(),
		CmdQueryBankruptcy(),
	)

	return cmd
}

// CmdQueryLiquidation returns the command to query a liquidation record
func CmdQueryLiquidation() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "liquidation [liquidation-id]",
		Short: "Query a liquidation record",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Println("Liquidation query requires running node connection")
			fmt.Println("Use REST API: GET /lenddex/liquidation/v1/liquidation/{id}")
			return nil
		},
	}

	flags.AddQueryFlagsToCmd(cmd)
	return cmd
}

// CmdQueryLiquidations returns the command to query recent liquidations
func CmdQueryLiquidations() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "liquidations",
		Short: "Query recent liquidation records",
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Println("Liquidations query requires running node connection")
			fmt.Println("Use REST API: GET /lenddex/liquidation/v1/liquidations")
			return nil
		},
	}

	flags.AddQueryFlagsToCmd(cmd)
	return cmd
}

// CmdQueryBankruptcy returns the command to query a bankruptcy record
func CmdQueryBankruptcy() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "bankruptcy [bankruptcy-id]",
		Short: "Query a bankruptcy record",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Println("Bankruptcy query requires running node connection")
			fmt.Println("Use REST API: GET /lenddex/liquidation/v1/bankruptcy/{id}")
			return nil
		},
	}

	flags.AddQueryFlagsToCmd(cmd)
	return cmd
}
