package cmd

import (
	"fmt"

	sdk "github.com/cosmos/cosmos-sdk/types"
	"github.com/spf13/cobra"

	"github.com/paw-chain/pawdex/app"
)

// LedgerCmd manages balances on the node's asset ledger
func LedgerCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ledger",
		Short: "Mint and inspect ledger balances",
	}
	cmd.AddCommand(GetMintCmd(), GetBalanceCmd())
	return cmd
}

// GetMintCmd credits coins to an account
func GetMintCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "mint [address] [coins]",
		Short:   "Credit coins to an account",
		Example: "pawdexd ledger mint cosmos1... 1000uatom,500uusdc",
		Args:    cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			account, err := sdk.AccAddressFromBech32(args[0])
			if err != nil {
				return fmt.Errorf("invalid address %q: %w", args[0], err)
			}
			coins, err := sdk.ParseCoinsNormalized(args[1])
			if err != nil {
				return fmt.Errorf("invalid coins %q: %w", args[1], err)
			}
			return withApp(cmd, func(dexApp *app.App) error {
				if err := dexApp.Mint(cmd.Context(), account, coins); err != nil {
					return err
				}
				return printBalances(cmd, dexApp, account)
			})
		},
	}
}

// GetBalanceCmd shows every balance of an account
func GetBalanceCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "balance [address]",
		Short: "Show an account's balances",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			account, err := sdk.AccAddressFromBech32(args[0])
			if err != nil {
				return fmt.Errorf("invalid address %q: %w", args[0], err)
			}
			return withApp(cmd, func(dexApp *app.App) error {
				return printBalances(cmd, dexApp, account)
			})
		},
	}
}

func printBalances(cmd *cobra.Command, dexApp *app.App, account sdk.AccAddress) error {
	coins, err := dexApp.Balances(cmd.Context(), account)
	if err != nil {
		return err
	}
	return printJSON(cmd, map[string]any{
		"address":  account.String(),
		"balances": coins,
	})
}
