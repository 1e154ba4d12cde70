package cmd

import (
	"fmt"

	"cosmossdk.io/math"
	sdk "github.com/cosmos/cosmos-sdk/types"
	"github.com/spf13/cobra"

	"github.com/paw-chain/pawdex/app"
	"github.com/paw-chain/pawdex/x/dex/types"
)

const flagFrom = "from"

// TxCmd groups the commands that change exchange state. Each one is executed
// and committed as its own block.
func TxCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tx",
		Short: "Submit exchange transactions",
	}

	cmd.PersistentFlags().String(flagFrom, "", "bech32 address of the sender")
	_ = cmd.MarkPersistentFlagRequired(flagFrom)

	cmd.AddCommand(
		txPairCmd("create-pool", "Create a market pool with its initial reserves",
			func(sender string, m types.Market, base, quote math.Int) types.Msg {
				return types.NewMsgCreateMarketPool(sender, m, base, quote)
			}),
		txPairCmd("deposit", "Add liquidity to an existing pool",
			func(sender string, m types.Market, base, quote math.Int) types.Msg {
				return types.NewMsgDepositLiquidity(sender, m, base, quote)
			}),
		txPairCmd("withdraw", "Remove liquidity from a pool",
			func(sender string, m types.Market, base, quote math.Int) types.Msg {
				return types.NewMsgWithdrawLiquidity(sender, m, base, quote)
			}),
		GetTxBuyCmd(),
		GetTxSellCmd(),
	)
	return cmd
}

// txPairCmd builds a command taking [base] [quote] [base-amount] [quote-amount]
func txPairCmd(use, short string, newMsg func(string, types.Market, math.Int, math.Int) types.Msg) *cobra.Command {
	return &cobra.Command{
		Use:   use + " [base] [quote] [base-amount] [quote-amount]",
		Short: short,
		Args:  cobra.ExactArgs(4),
		RunE: func(cmd *cobra.Command, args []string) error {
			sender, err := senderFlag(cmd)
			if err != nil {
				return err
			}
			baseAmount, err := parseAmount(args[2])
			if err != nil {
				return err
			}
			quoteAmount, err := parseAmount(args[3])
			if err != nil {
				return err
			}
			return deliver(cmd, newMsg(sender, types.NewMarket(args[0], args[1]), baseAmount, quoteAmount))
		},
	}
}

// GetTxBuyCmd pays quote to receive base
func GetTxBuyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "buy [base] [quote] [quote-amount]",
		Short: "Buy base with quote; the taker fee is withheld from quote-amount",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			sender, err := senderFlag(cmd)
			if err != nil {
				return err
			}
			amount, err := parseAmount(args[2])
			if err != nil {
				return err
			}
			return deliver(cmd, types.NewMsgBuy(sender, types.NewMarket(args[0], args[1]), amount))
		},
	}
}

// GetTxSellCmd pays base to receive quote
func GetTxSellCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sell [base] [quote] [base-amount]",
		Short: "Sell base for quote; the taker fee is withheld from base-amount",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			sender, err := senderFlag(cmd)
			if err != nil {
				return err
			}
			amount, err := parseAmount(args[2])
			if err != nil {
				return err
			}
			return deliver(cmd, types.NewMsgSell(sender, types.NewMarket(args[0], args[1]), amount))
		},
	}
}

func senderFlag(cmd *cobra.Command) (string, error) {
	from, err := cmd.Flags().GetString(flagFrom)
	if err != nil {
		return "", err
	}
	if _, err := sdk.AccAddressFromBech32(from); err != nil {
		return "", types.ErrInvalidAddress.Wrapf("--%s %q: %s", flagFrom, from, err)
	}
	return from, nil
}

func parseAmount(s string) (math.Int, error) {
	amount, ok := math.NewIntFromString(s)
	if !ok {
		return math.Int{}, types.ErrInvalidAmount.Wrapf("%q is not an integer", s)
	}
	return amount, nil
}

func deliver(cmd *cobra.Command, msg types.Msg) error {
	if err := msg.ValidateBasic(); err != nil {
		return err
	}
	return withApp(cmd, func(dexApp *app.App) error {
		res, err := dexApp.DeliverMsg(cmd.Context(), msg)
		if err != nil {
			return fmt.Errorf("%s: %w", cmd.Name(), err)
		}
		return printJSON(cmd, res)
	})
}
