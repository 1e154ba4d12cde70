package cmd

import (
	sdk "github.com/cosmos/cosmos-sdk/types"
	"github.com/spf13/cobra"

	"github.com/paw-chain/pawdex/app"
	"github.com/paw-chain/pawdex/x/dex/keeper"
	"github.com/paw-chain/pawdex/x/dex/types"
)

// QueryCmd groups the read-only views of committed state
func QueryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "query",
		Aliases: []string{"q"},
		Short:   "Query committed exchange state",
	}

	cmd.AddCommand(
		queryCmd("markets", "List every market and its pool", cobra.NoArgs,
			func(ctx sdk.Context, q keeper.Querier, _ []string) (any, error) {
				return q.Pools(ctx)
			}),
		queryCmd("market [base] [quote]", "Show one market's pool", cobra.ExactArgs(2),
			func(ctx sdk.Context, q keeper.Querier, args []string) (any, error) {
				return q.Pool(ctx, types.NewMarket(args[0], args[1]))
			}),
		queryCmd("price [base] [quote]", "Show the price of one base unit in quote", cobra.ExactArgs(2),
			func(ctx sdk.Context, q keeper.Querier, args []string) (any, error) {
				return q.Price(ctx, types.NewMarket(args[0], args[1]))
			}),
		queryCmd("position [base] [quote] [address]", "Show a provider's liquidity position", cobra.ExactArgs(3),
			func(ctx sdk.Context, q keeper.Querier, args []string) (any, error) {
				return q.Position(ctx, types.NewMarket(args[0], args[1]), args[2])
			}),
		queryCmd("simulate [base] [quote] [buy|sell] [amount]", "Price a trade without executing it", cobra.ExactArgs(4),
			func(ctx sdk.Context, q keeper.Querier, args []string) (any, error) {
				side, err := types.ParseSide(args[2])
				if err != nil {
					return nil, err
				}
				amount, err := parseAmount(args[3])
				if err != nil {
					return nil, err
				}
				return q.Simulate(ctx, types.NewMarket(args[0], args[1]), side, amount)
			}),
		queryCmd("params", "Show the module parameters", cobra.NoArgs,
			func(ctx sdk.Context, q keeper.Querier, _ []string) (any, error) {
				return q.Params(ctx)
			}),
	)
	return cmd
}

func queryCmd(use, short string, args cobra.PositionalArgs, fn func(sdk.Context, keeper.Querier, []string) (any, error)) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  args,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(dexApp *app.App) error {
				var res any
				err := dexApp.Query(cmd.Context(), func(ctx sdk.Context) error {
					var err error
					res, err = fn(ctx, dexApp.Querier(), args)
					return err
				})
				if err != nil {
					return err
				}
				return printJSON(cmd, res)
			})
		},
	}
}
