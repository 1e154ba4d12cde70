// Package simulation drives the dex keeper with randomized message sequences.
// Operations draw their inputs from a rapid.T so failing sequences shrink to
// a minimal reproduction.
package simulation

import (
	"errors"

	"cosmossdk.io/math"
	sdk "github.com/cosmos/cosmos-sdk/types"
	"pgregory.net/rapid"

	"github.com/paw-chain/pawdex/x/dex/keeper"
	"github.com/paw-chain/pawdex/x/dex/types"
)

// Default operation weights
const (
	DefaultWeightMsgCreateMarketPool  = 15
	DefaultWeightMsgDepositLiquidity  = 30
	DefaultWeightMsgWithdrawLiquidity = 20
	DefaultWeightMsgTrade             = 50
	DefaultWeightDistributeFees       = 5
)

// Denoms are the assets simulated markets are drawn from
var Denoms = []string{"upaw", "uatom", "uosmo", "ujuno"}

// OperationMsg records the outcome of one simulated operation
type OperationMsg struct {
	Name    string
	OK      bool
	Comment string
}

// NoOpMsg is an operation skipped because its preconditions did not hold or
// the keeper rejected it for an expected reason
func NoOpMsg(name, comment string) OperationMsg {
	return OperationMsg{Name: name, Comment: comment}
}

// Operation executes one random action against ctx. A returned error means
// the keeper failed in a way no input should cause.
type Operation func(t *rapid.T, ctx sdk.Context, accs []sdk.AccAddress) (OperationMsg, error)

// WeightedOperation pairs an operation with its selection weight
type WeightedOperation struct {
	Weight int
	Op     Operation
}

// WeightedOperations returns every dex operation with its default weight
func WeightedOperations(k *keeper.Keeper) []WeightedOperation {
	return []WeightedOperation{
		{DefaultWeightMsgCreateMarketPool, SimulateMsgCreateMarketPool(k)},
		{DefaultWeightMsgDepositLiquidity, SimulateMsgDepositLiquidity(k)},
		{DefaultWeightMsgWithdrawLiquidity, SimulateMsgWithdrawLiquidity(k)},
		{DefaultWeightMsgTrade, SimulateMsgTrade(k)},
		{DefaultWeightDistributeFees, SimulateDistributeFees(k)},
	}
}

// RandomOperation picks an operation with probability proportional to its weight
func RandomOperation(t *rapid.T, ops []WeightedOperation) Operation {
	total := 0
	for _, op := range ops {
		total += op.Weight
	}
	n := rapid.IntRange(0, total-1).Draw(t, "op")
	for _, op := range ops {
		if n < op.Weight {
			return op.Op
		}
		n -= op.Weight
	}
	return ops[len(ops)-1].Op
}

// expected reports whether err is a rejection valid input can provoke, such
// as trading against a drained reserve
func expected(err error) bool {
	return errors.Is(err, types.ErrNotEnoughBalance) ||
		errors.Is(err, types.ErrEmptyReserve) ||
		errors.Is(err, types.ErrArithmetic) ||
		errors.Is(err, types.ErrInvalidAmount)
}

func deliver(ctx sdk.Context, k *keeper.Keeper, name string, msg types.Msg) (OperationMsg, error) {
	if _, err := keeper.HandleMsg(ctx, keeper.NewMsgServerImpl(k), msg); err != nil {
		if expected(err) {
			return NoOpMsg(name, err.Error()), nil
		}
		return OperationMsg{Name: name}, err
	}
	return OperationMsg{Name: name, OK: true}, nil
}

func randomAmount(t *rapid.T, label string) math.Int {
	return math.NewInt(rapid.Int64Range(1, 1_000_000).Draw(t, label))
}

// randomMarket picks an existing market, or false if there is none
func randomMarket(t *rapid.T, ctx sdk.Context, k *keeper.Keeper) (types.Market, bool, error) {
	var markets []types.Market
	err := k.IteratePools(ctx, func(m types.Market, _ types.PoolState) (bool, error) {
		markets = append(markets, m)
		return false, nil
	})
	if err != nil || len(markets) == 0 {
		return types.Market{}, false, err
	}
	return rapid.SampledFrom(markets).Draw(t, "market"), true, nil
}

// SimulateMsgCreateMarketPool creates a market over two random denoms
func SimulateMsgCreateMarketPool(k *keeper.Keeper) Operation {
	const name = "create_market_pool"
	return func(t *rapid.T, ctx sdk.Context, accs []sdk.AccAddress) (OperationMsg, error) {
		acc := rapid.SampledFrom(accs).Draw(t, "account")
		base := rapid.SampledFrom(Denoms).Draw(t, "base")
		quote := rapid.SampledFrom(Denoms).Draw(t, "quote")
		if base == quote {
			return NoOpMsg(name, "same asset"), nil
		}
		market := types.NewMarket(base, quote)
		if k.HasPool(ctx, market) {
			return NoOpMsg(name, "market exists"), nil
		}
		msg := types.NewMsgCreateMarketPool(acc.String(), market, randomAmount(t, "base_amount"), randomAmount(t, "quote_amount"))
		return deliver(ctx, k, name, msg)
	}
}

// SimulateMsgDepositLiquidity adds random amounts to an existing market
func SimulateMsgDepositLiquidity(k *keeper.Keeper) Operation {
	const name = "deposit_liquidity"
	return func(t *rapid.T, ctx sdk.Context, accs []sdk.AccAddress) (OperationMsg, error) {
		market, ok, err := randomMarket(t, ctx, k)
		if err != nil || !ok {
			return NoOpMsg(name, "no market"), err
		}
		acc := rapid.SampledFrom(accs).Draw(t, "account")
		msg := types.NewMsgDepositLiquidity(acc.String(), market, randomAmount(t, "base_amount"), randomAmount(t, "quote_amount"))
		return deliver(ctx, k, name, msg)
	}
}

// SimulateMsgWithdrawLiquidity removes part of a provider's position
func SimulateMsgWithdrawLiquidity(k *keeper.Keeper) Operation {
	const name = "withdraw_liquidity"
	return func(t *rapid.T, ctx sdk.Context, accs []sdk.AccAddress) (OperationMsg, error) {
		market, ok, err := randomMarket(t, ctx, k)
		if err != nil || !ok {
			return NoOpMsg(name, "no market"), err
		}
		acc := rapid.SampledFrom(accs).Draw(t, "account")
		pos, found, err := k.GetPosition(ctx, market, acc)
		if err != nil {
			return OperationMsg{Name: name}, err
		}
		if !found || pos.BaseContributed.IsZero() || pos.QuoteContributed.IsZero() {
			return NoOpMsg(name, "no position"), nil
		}
		base := math.NewInt(rapid.Int64Range(1, pos.BaseContributed.Int64()).Draw(t, "base_amount"))
		quote := math.NewInt(rapid.Int64Range(1, pos.QuoteContributed.Int64()).Draw(t, "quote_amount"))
		return deliver(ctx, k, name, types.NewMsgWithdrawLiquidity(acc.String(), market, base, quote))
	}
}

// SimulateMsgTrade buys or sells a random amount
func SimulateMsgTrade(k *keeper.Keeper) Operation {
	return func(t *rapid.T, ctx sdk.Context, accs []sdk.AccAddress) (OperationMsg, error) {
		market, ok, err := randomMarket(t, ctx, k)
		if err != nil || !ok {
			return NoOpMsg("trade", "no market"), err
		}
		acc := rapid.SampledFrom(accs).Draw(t, "account")
		amount := randomAmount(t, "amount")
		if rapid.Bool().Draw(t, "buy") {
			return deliver(ctx, k, "buy", types.NewMsgBuy(acc.String(), market, amount))
		}
		return deliver(ctx, k, "sell", types.NewMsgSell(acc.String(), market, amount))
	}
}

// SimulateDistributeFees runs one distribution pass
func SimulateDistributeFees(k *keeper.Keeper) Operation {
	const name = "distribute_fees"
	return func(_ *rapid.T, ctx sdk.Context, _ []sdk.AccAddress) (OperationMsg, error) {
		report, err := k.DistributeFees(ctx)
		if err != nil {
			return OperationMsg{Name: name}, err
		}
		if len(report.Settled) == 0 {
			return NoOpMsg(name, "nothing collected"), nil
		}
		return OperationMsg{Name: name, OK: true}, nil
	}
}
