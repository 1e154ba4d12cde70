package keeper

import (
	"context"

	"cosmossdk.io/math"
	sdk "github.com/cosmos/cosmos-sdk/types"

	"github.com/paw-chain/pawdex/x/dex/types"
)

// DepositLiquidity adds to an existing market's reserves and to the caller's
// position. Amounts are taken as given; no ratio is enforced.
func (k Keeper) DepositLiquidity(ctx context.Context, caller sdk.AccAddress, market types.Market, baseAmount, quoteAmount math.Int) error {
	if err := validateLiquidityAmounts(baseAmount, quoteAmount); err != nil {
		return err
	}

	sdkCtx := sdk.UnwrapSDKContext(ctx)
	pool, found, err := k.GetPool(sdkCtx, market)
	if err != nil {
		return err
	}
	if !found {
		return types.ErrMarketDoesNotExist.Wrapf("market %s", market)
	}
	if err := k.requireBalance(sdkCtx, market.Base, caller, baseAmount); err != nil {
		return err
	}
	if err := k.requireBalance(sdkCtx, market.Quote, caller, quoteAmount); err != nil {
		return err
	}
	pos, _, err := k.GetPosition(sdkCtx, market, caller)
	if err != nil {
		return err
	}

	if pool.BaseReserve, err = types.CheckedAdd(pool.BaseReserve, baseAmount); err != nil {
		return err
	}
	if pool.QuoteReserve, err = types.CheckedAdd(pool.QuoteReserve, quoteAmount); err != nil {
		return err
	}
	if pos.BaseContributed, err = types.CheckedAdd(pos.BaseContributed, baseAmount); err != nil {
		return err
	}
	if pos.QuoteContributed, err = types.CheckedAdd(pos.QuoteContributed, quoteAmount); err != nil {
		return err
	}

	cacheCtx, writeFn := sdkCtx.CacheContext()

	if err := k.transfer(cacheCtx, market.Base, caller, k.poolAccount, baseAmount); err != nil {
		return err
	}
	if err := k.transfer(cacheCtx, market.Quote, caller, k.poolAccount, quoteAmount); err != nil {
		return err
	}
	if err := k.SetPool(cacheCtx, market, pool); err != nil {
		return err
	}
	if err := k.SetPosition(cacheCtx, market, caller, pos); err != nil {
		return err
	}

	cacheCtx.EventManager().EmitEvent(
		sdk.NewEvent(
			types.EventTypeLiquidityAdded,
			sdk.NewAttribute(types.AttributeKeySender, caller.String()),
			sdk.NewAttribute(types.AttributeKeyBase, market.Base),
			sdk.NewAttribute(types.AttributeKeyQuote, market.Quote),
			sdk.NewAttribute(types.AttributeKeyBaseAmount, baseAmount.String()),
			sdk.NewAttribute(types.AttributeKeyQuoteAmount, quoteAmount.String()),
		),
	)

	writeFn()

	k.metrics.LiquidityAdded.WithLabelValues(market.String(), market.Base).Add(amountToFloat(baseAmount))
	k.metrics.LiquidityAdded.WithLabelValues(market.String(), market.Quote).Add(amountToFloat(quoteAmount))
	return nil
}

// WithdrawLiquidity returns part of the caller's contribution. The pool's
// reserves shrink by the same amounts as the position.
func (k Keeper) WithdrawLiquidity(ctx context.Context, caller sdk.AccAddress, market types.Market, baseAmount, quoteAmount math.Int) error {
	if err := validateLiquidityAmounts(baseAmount, quoteAmount); err != nil {
		return err
	}

	sdkCtx := sdk.UnwrapSDKContext(ctx)
	pool, found, err := k.GetPool(sdkCtx, market)
	if err != nil {
		return err
	}
	if !found {
		return types.ErrMarketDoesNotExist.Wrapf("market %s", market)
	}
	pos, _, err := k.GetPosition(sdkCtx, market, caller)
	if err != nil {
		return err
	}
	if pos.BaseContributed.LT(baseAmount) || pos.QuoteContributed.LT(quoteAmount) {
		return types.ErrNotEnoughBalance.Wrapf(
			"position in %s holds %s/%s, requested %s/%s",
			market, pos.BaseContributed, pos.QuoteContributed, baseAmount, quoteAmount,
		)
	}

	if pos.BaseContributed, err = types.CheckedSub(pos.BaseContributed, baseAmount); err != nil {
		return err
	}
	if pos.QuoteContributed, err = types.CheckedSub(pos.QuoteContributed, quoteAmount); err != nil {
		return err
	}
	if pool.BaseReserve, err = types.CheckedSub(pool.BaseReserve, baseAmount); err != nil {
		return err
	}
	if pool.QuoteReserve, err = types.CheckedSub(pool.QuoteReserve, quoteAmount); err != nil {
		return err
	}

	cacheCtx, writeFn := sdkCtx.CacheContext()

	if err := k.transfer(cacheCtx, market.Base, k.poolAccount, caller, baseAmount); err != nil {
		return err
	}
	if err := k.transfer(cacheCtx, market.Quote, k.poolAccount, caller, quoteAmount); err != nil {
		return err
	}
	if err := k.SetPool(cacheCtx, market, pool); err != nil {
		return err
	}
	if err := k.SetPosition(cacheCtx, market, caller, pos); err != nil {
		return err
	}

	cacheCtx.EventManager().EmitEvent(
		sdk.NewEvent(
			types.EventTypeLiquidityWithdrawn,
			sdk.NewAttribute(types.AttributeKeySender, caller.String()),
			sdk.NewAttribute(types.AttributeKeyBase, market.Base),
			sdk.NewAttribute(types.AttributeKeyQuote, market.Quote),
			sdk.NewAttribute(types.AttributeKeyBaseAmount, baseAmount.String()),
			sdk.NewAttribute(types.AttributeKeyQuoteAmount, quoteAmount.String()),
		),
	)

	writeFn()

	k.metrics.LiquidityRemoved.WithLabelValues(market.String(), market.Base).Add(amountToFloat(baseAmount))
	k.metrics.LiquidityRemoved.WithLabelValues(market.String(), market.Quote).Add(amountToFloat(quoteAmount))
	return nil
}

func validateLiquidityAmounts(baseAmount, quoteAmount math.Int) error {
	if err := types.ValidateAmount(baseAmount); err != nil {
		return err
	}
	return types.ValidateAmount(quoteAmount)
}
