package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/cosmos/cosmos-sdk/client"
	"github.com/cosmos/cosmos-sdk/client/flags"
	"github.com/cosmos/cosmos-sdk/client/tx"

	"github.com/openalpha/lend-dex/x/lending/types"
)

// GetTxCmd returns the transaction commands for the lending module
func GetTxCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:                        "lending",
		Short:                      "Lending module transaction commands",
		DisableFlagParsing:         true,
		SuggestionsMinimumDistance: 2,
		RunE:                       client.ValidateCmd,
	}

	cmd.AddCommand(
		CmdInitAccount(),
		CmdDeposit(),
		CmdWithdraw(),
		CmdBorrow(),
		CmdRepay(),
		CmdPulseHealth(),
	)

	return cmd
}

// CmdInitAccount returns the command to open a lending account
func CmdInitAccount() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init-account [group-id] [account-id]",
		Short: "Open a lending account in a group",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			clientCtx, err := client.GetClientTxContext(cmd)
			if err != nil {
				return err
			}

			msg := &types.MsgInitAccount{
				Authority: clientCtx.GetFromAddress().String(),
				GroupID:   args[0],
				AccountID: args[1],
			}

			return tx.GenerateOrBroadcastTxCLI(clientCtx, cmd.Flags(), msg)
		},
	}

	flags.AddTxFlagsToCmd(cmd)
	return cmd
}

// CmdDeposit returns the command to deposit into a bank
func CmdDeposit() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "deposit [account-id] [bank-id] [amount]",
		Short: "Deposit tokens into a bank",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			clientCtx, err := client.GetClientTxContext(cmd)
			if err != nil {
				return err
			}

			amount, err := strconv.ParseUint(args[2], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid amount: %v", err)
			}

			msg := &types.MsgDeposit{
				Authority: clientCtx.GetFromAddress().String(),
				AccountID: args[0],
				BankID:    args[1],
				Amount:    amount,
			}

			return tx.GenerateOrBroadcastTxCLI(clientCtx, cmd.Flags(), msg)
		},
	}

	flags.AddTxFlagsToCmd(cmd)
	return cmd
}

// CmdWithdraw returns the command to withdraw from a bank
func CmdWithdraw() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "withdraw [account-id] [bank-id] [amount]",
		Short: "Withdraw tokens from a bank (amount \"all\" drains the balance)",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			clientCtx, err := client.GetClientTxContext(cmd)
			if err != nil {
				return err
			}

			msg := &types.MsgWithdraw{
				Authority: clientCtx.GetFromAddress().String(),
				AccountID: args[0],
				BankID:    args[1],
			}
			if args[2] == "all" {
				msg.WithdrawAll = true
			} else {
				amount, err := strconv.ParseUint(args[2], 10, 64)
				if err != nil {
					return fmt.Errorf("invalid amount: %v", err)
				}
				msg.Amount = amount
			}

			return tx.GenerateOrBroadcastTxCLI(clientCtx, cmd.Flags(), msg)
		},
	}

	flags.AddTxFlagsToCmd(cmd)
	return cmd
}

// CmdBorrow returns the command to borrow from a bank
func CmdBorrow() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "borrow [account-id] [bank-id] [amount]",
		Short: "Borrow tokens against deposited collateral",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			clientCtx, err := client.GetClientTxContext(cmd)
			if err != nil {
				return err
			}

			amount, err := strconv.ParseUint(args[2], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid amount: %v", err)
			}

			msg := &types.MsgBorrow{
				Authority: clientCtx.GetFromAddress().String(),
				AccountID: args[0],
				BankID:    args[1],
				Amount:    amount,
			}

			return tx.GenerateOrBroadcastTxCLI(clientCtx, cmd.Flags(), msg)
		},
	}

	flags.AddTxFlagsToCmd(cmd)
	return cmd
}

// CmdRepay returns the command to repay a borrow
func CmdRepay() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "repay [account-id] [bank-id] [amount]",
		Short: "Repay a borrow (amount \"all\" clears the liability)",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			clientCtx, err := client.GetClientTxContext(cmd)
			if err != nil {
				return err
			}

			msg := &types.MsgRepay{
				Authority: clientCtx.GetFromAddress().String(),
				AccountID: args[0],
				BankID:    args[1],
			}
			if args[2] == "all" {
				msg.RepayAll = true
			} else {
				amount, err := strconv.ParseUint(args[2], 10, 64)
				if err != nil {
					return fmt.Errorf("invalid amount: %v", err)
				}
				msg.Amount = amount
			}

			return tx.GenerateOrBroadcastTxCLI(clientCtx, cmd.Flags(), msg)
		},
	}

	flags.AddTxFlagsToCmd(cmd)
	return cmd
}

// CmdPulseHealth returns the command to refresh an account's health cache
func CmdPulseHealth() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "pulse-health [account-id]",
		Short: "Refresh the health cache of a lending account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			clientCtx, err := client.GetClientTxContext(cmd)
			if err != nil {
				return err
			}

			msg := &types.MsgPulseHealth{
				Caller:    clientCtx.GetFromAddress().String(),
				AccountID: args[0],
			}

			return tx.GenerateOrBroadcastTxCLI(clientCtx, cmd.Flags(), msg)
		},
	}

	flags.AddTxFlagsToCmd(cmd)
	return cmd
}
