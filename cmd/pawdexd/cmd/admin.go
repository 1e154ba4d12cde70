package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/paw-chain/pawdex/app"
)

const flagOutput = "output"

// DistributeCmd runs one fee distribution pass as a block
func DistributeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "distribute",
		Short: "Pay collected taker fees to liquidity providers",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd, func(dexApp *app.App) error {
				report, distErr := dexApp.DistributeFees(cmd.Context())
				if err := printJSON(cmd, report); err != nil {
					return err
				}
				return distErr
			})
		},
	}
}

// ExportCmd writes committed state as a genesis document
func ExportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export state as a genesis document",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			output, _ := cmd.Flags().GetString(flagOutput)
			return withApp(cmd, func(dexApp *app.App) error {
				genesis, err := dexApp.ExportGenesis(cmd.Context())
				if err != nil {
					return err
				}
				if output == "" {
					return printJSON(cmd, genesis)
				}
				return genesis.SaveFile(output)
			})
		},
	}
	cmd.Flags().String(flagOutput, "", "write to this file instead of stdout")
	return cmd
}

// CheckInvariantsCmd checks custody and pool invariants against committed state
func CheckInvariantsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check-invariants",
		Short: "Verify custody, fee and pool-bound invariants",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd, func(dexApp *app.App) error {
				msg, broken := dexApp.CheckInvariants(cmd.Context())
				if broken {
					return errors.New(msg)
				}
				_, err := fmt.Fprintln(cmd.OutOrStdout(), "all invariants hold")
				return err
			})
		},
	}
}

// AccountsCmd shows the module accounts holding pool reserves and fees
func AccountsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "accounts",
		Short: "Show the pool and fee custody accounts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd, func(dexApp *app.App) error {
				return printJSON(cmd, map[string]string{
					"pool_account": dexApp.DexKeeper.PoolAccount().String(),
					"fee_account":  dexApp.DexKeeper.FeeAccount().String(),
				})
			})
		},
	}
}
