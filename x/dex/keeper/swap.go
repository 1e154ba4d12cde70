package keeper

import (
	"context"

	"cosmossdk.io/math"
	sdk "github.com/cosmos/cosmos-sdk/types"

	"github.com/paw-chain/pawdex/x/dex/types"
)

// Buy spends quoteAmount of the market's quote asset and returns the base
// amount credited to the caller.
func (k Keeper) Buy(ctx context.Context, caller sdk.AccAddress, market types.Market, quoteAmount math.Int) (math.Int, error) {
	return k.trade(ctx, caller, market, types.SideBuy, quoteAmount)
}

// Sell spends baseAmount of the market's base asset and returns the quote
// amount credited to the caller.
func (k Keeper) Sell(ctx context.Context, caller sdk.AccAddress, market types.Market, baseAmount math.Int) (math.Int, error) {
	return k.trade(ctx, caller, market, types.SideSell, baseAmount)
}

// SimulateTrade prices a trade against the current pool without touching state.
func (k Keeper) SimulateTrade(ctx context.Context, market types.Market, side types.Side, amount math.Int) (types.TradeQuote, error) {
	pool, found, err := k.GetPool(ctx, market)
	if err != nil {
		return types.TradeQuote{}, err
	}
	if !found {
		return types.TradeQuote{}, types.ErrMarketDoesNotExist.Wrapf("market %s", market)
	}
	params, err := k.GetParams(ctx)
	if err != nil {
		return types.TradeQuote{}, err
	}
	return types.QuoteTrade(pool, side, amount, params.TakerFee)
}

func (k Keeper) trade(ctx context.Context, caller sdk.AccAddress, market types.Market, side types.Side, amount math.Int) (math.Int, error) {
	sdkCtx := sdk.UnwrapSDKContext(ctx)

	received, err := k.executeTrade(sdkCtx, caller, market, side, amount)
	status := "success"
	if err != nil {
		status = "failed"
	}
	k.metrics.TradesTotal.WithLabelValues(market.String(), side.String(), status).Inc()
	return received, err
}

func (k Keeper) executeTrade(sdkCtx sdk.Context, caller sdk.AccAddress, market types.Market, side types.Side, amount math.Int) (math.Int, error) {
	if err := requirePositive(amount, side.String()+" amount"); err != nil {
		return math.Int{}, err
	}

	pool, found, err := k.GetPool(sdkCtx, market)
	if err != nil {
		return math.Int{}, err
	}
	if !found {
		return math.Int{}, types.ErrMarketDoesNotExist.Wrapf("market %s", market)
	}

	spent, received := side.SpentAsset(market), side.ReceivedAsset(market)
	if err := k.requireBalance(sdkCtx, spent, caller, amount); err != nil {
		return math.Int{}, err
	}

	params, err := k.GetParams(sdkCtx)
	if err != nil {
		return math.Int{}, err
	}
	quote, err := types.QuoteTrade(pool, side, amount, params.TakerFee)
	if err != nil {
		return math.Int{}, err
	}
	updated, err := quote.Apply(pool)
	if err != nil {
		return math.Int{}, err
	}

	cacheCtx, writeFn := sdkCtx.CacheContext()

	if err := k.transfer(cacheCtx, spent, caller, k.poolAccount, quote.Net); err != nil {
		return math.Int{}, err
	}
	if err := k.transfer(cacheCtx, spent, caller, k.feeAccount, quote.Fee); err != nil {
		return math.Int{}, err
	}
	if err := k.transfer(cacheCtx, received, k.poolAccount, caller, quote.Receive); err != nil {
		return math.Int{}, err
	}
	if err := k.SetPool(cacheCtx, market, updated); err != nil {
		return math.Int{}, err
	}

	eventType := types.EventTypeBought
	if side == types.SideSell {
		eventType = types.EventTypeSold
	}
	cacheCtx.EventManager().EmitEvent(
		sdk.NewEvent(
			eventType,
			sdk.NewAttribute(types.AttributeKeySender, caller.String()),
			sdk.NewAttribute(types.AttributeKeyBase, market.Base),
			sdk.NewAttribute(types.AttributeKeyQuote, market.Quote),
			sdk.NewAttribute(types.AttributeKeyAmountIn, quote.Gross.String()),
			sdk.NewAttribute(types.AttributeKeyAmountOut, quote.Receive.String()),
			sdk.NewAttribute(types.AttributeKeyFee, quote.Fee.String()),
			sdk.NewAttribute(types.AttributeKeyBaseReserve, updated.BaseReserve.String()),
			sdk.NewAttribute(types.AttributeKeyQuoteReserve, updated.QuoteReserve.String()),
		),
	)

	writeFn()

	k.metrics.TradeVolume.WithLabelValues(market.String(), spent).Add(amountToFloat(quote.Gross))
	k.metrics.TakerFeesCollected.WithLabelValues(market.String(), spent).Add(amountToFloat(quote.Fee))
	k.Logger(sdkCtx).Debug("trade executed",
		"market", market.String(),
		"side", side.String(),
		"trader", caller.String(),
		"in", quote.Gross.String(),
		"out", quote.Receive.String(),
		"fee", quote.Fee.String(),
	)
	return quote.Receive, nil
}
