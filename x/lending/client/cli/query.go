package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cosmos/cosmos-sdk/client"
	"github.com/cosmos/cosmos-sdk/client/flags"
)

// BankInfo is a CLI-friendly bank info struct
type BankInfo struct {
	BankID                 string `json:"bank_id"`
	Denom                  string `json:"denom"`
	AssetWeightInit        string `json:"asset_weight_init"`
	AssetWeightMaint       string `json:"asset_weight_maint"`
	LiabilityWeightInit    string `json:"liability_weight_init"`
	LiabilityWeightMaint   string `json:"liability_weight_maint"`
	OptimalUtilizationRate string `json:"optimal_utilization_rate"`
	MaxInterestRate        string `json:"max_interest_rate"`
}

// GetQueryCmd returns the cli query commands for the lending module
func GetQueryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:                        "lending",
		Short:                      "Querying commands for the lending module",
		DisableFlagParsing:         true,
		SuggestionsMinimumDistance: 2,
		RunE:                       client.ValidateCmd,
	}

	cmd.AddCommand(
		CmdQueryBank(),
		CmdQueryBanks(),
		CmdQueryAccount(),
		CmdQueryHealth(),
	)

	return cmd
}

// CmdQueryBank returns the command to query bank info
func CmdQueryBank() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "bank [bank-id]",
		Short: "Query bank configuration and rates",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			bankID := args[0]

			bank, ok := findBank(sampleBanks(), bankID)
			if !ok {
				return fmt.Errorf("bank not found: %s", bankID)
			}

			output, _ := json.MarshalIndent(bank, "", "  ")
			fmt.Println(string(output))
			return nil
		},
	}

	flags.AddQueryFlagsToCmd(cmd)
	return cmd
}

// CmdQueryBanks returns the command to query all banks
func CmdQueryBanks() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "banks",
		Short: "Query all banks",
		RunE: func(cmd *cobra.Command, args []string) error {
			banks := sampleBanks()
			output, _ := json.MarshalIndent(banks, "", "  ")
			fmt.Println(string(output))
			return nil
		},
	}

	flags.AddQueryFlagsToCmd(cmd)
	return cmd
}

// CmdQueryAccount returns the command to query a lending account
func CmdQueryAccount() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "account [account-id]",
		Short: "Query a lending account's balances",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Println("Account query requires running node connection")
			fmt.Println("Use REST API: GET /lenddex/lending/v1/account/{account_id}")
			return nil
		},
	}

	flags.AddQueryFlagsToCmd(cmd)
	return cmd
}

// CmdQueryHealth returns the command to query an account's health cache
func CmdQueryHealth() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "health [account-id]",
		Short: "Query the cached health of a lending account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Println("Health query requires running node connection")
			fmt.Println("Use REST API: GET /lenddex/lending/v1/health/{account_id}")
			return nil
		},
	}

	flags.AddQueryFlagsToCmd(cmd)
	return cmd
}

func sampleBanks() []BankInfo {
	return []BankInfo{
		{
			BankID:                 "usdc",
			Denom:                  "uusdc",
			AssetWeightInit:        "0.9",
			AssetWeightMaint:       "0.95",
			LiabilityWeightInit:    "1.1",
			LiabilityWeightMaint:   "1.05",
			OptimalUtilizationRate: "0.8",
			MaxInterestRate:        "3.0",
		},
		{
			BankID:                 "atom",
			Denom:                  "uatom",
			AssetWeightInit:        "0.7",
			AssetWeightMaint:       "0.8",
			LiabilityWeightInit:    "1.3",
			LiabilityWeightMaint:   "1.2",
			OptimalUtilizationRate: "0.7",
			MaxInterestRate:        "4.0",
		},
	}
}

func findBank(banks []BankInfo, bankID string) (BankInfo, bool) {
	for _, bank := range banks {
		if bank.BankID == bankID {
			return bank, true
		}
	}
	return BankInfo{}, false
}
