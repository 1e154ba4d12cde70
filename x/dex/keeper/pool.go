package keeper

import (
	"context"

	"cosmossdk.io/math"
	sdk "github.com/cosmos/cosmos-sdk/types"

	"github.com/paw-chain/pawdex/x/dex/types"
)

// CreateMarketPool bootstraps a market with the caller's initial liquidity.
// Both amounts move to the pool account and are recorded as the caller's
// position.
func (k Keeper) CreateMarketPool(ctx context.Context, caller sdk.AccAddress, market types.Market, baseAmount, quoteAmount math.Int) error {
	if err := market.Validate(); err != nil {
		return err
	}
	if err := requirePositive(baseAmount, "base amount"); err != nil {
		return err
	}
	if err := requirePositive(quoteAmount, "quote amount"); err != nil {
		return err
	}

	sdkCtx := sdk.UnwrapSDKContext(ctx)
	if k.HasPool(sdkCtx, market) {
		return types.ErrMarketExists.Wrapf("market %s", market)
	}
	if err := k.requireBalance(sdkCtx, market.Base, caller, baseAmount); err != nil {
		return err
	}
	if err := k.requireBalance(sdkCtx, market.Quote, caller, quoteAmount); err != nil {
		return err
	}

	cacheCtx, writeFn := sdkCtx.CacheContext()

	if err := k.transfer(cacheCtx, market.Base, caller, k.poolAccount, baseAmount); err != nil {
		return err
	}
	if err := k.transfer(cacheCtx, market.Quote, caller, k.poolAccount, quoteAmount); err != nil {
		return err
	}
	if err := k.SetPool(cacheCtx, market, types.NewPoolState(baseAmount, quoteAmount)); err != nil {
		return err
	}
	if err := k.SetPosition(cacheCtx, market, caller, types.NewLiquidityPosition(baseAmount, quoteAmount)); err != nil {
		return err
	}

	cacheCtx.EventManager().EmitEvent(
		sdk.NewEvent(
			types.EventTypePoolCreated,
			sdk.NewAttribute(types.AttributeKeySender, caller.String()),
			sdk.NewAttribute(types.AttributeKeyBase, market.Base),
			sdk.NewAttribute(types.AttributeKeyQuote, market.Quote),
			sdk.NewAttribute(types.AttributeKeyBaseAmount, baseAmount.String()),
			sdk.NewAttribute(types.AttributeKeyQuoteAmount, quoteAmount.String()),
		),
	)

	writeFn()

	k.metrics.PoolsCreated.Inc()
	k.Logger(sdkCtx).Info("market pool created",
		"market", market.String(),
		"creator", caller.String(),
		"base", baseAmount.String(),
		"quote", quoteAmount.String(),
	)
	return nil
}

// CurrentPrice returns the price of one base unit in quote as the rational
// quote_reserve / base_reserve.
func (k Keeper) CurrentPrice(ctx context.Context, market types.Market) (numerator, denominator math.Int, err error) {
	pool, found, err := k.GetPool(ctx, market)
	if err != nil {
		return math.Int{}, math.Int{}, err
	}
	if !found {
		return math.Int{}, math.Int{}, types.ErrMarketDoesNotExist.Wrapf("market %s", market)
	}
	return pool.QuoteReserve, pool.BaseReserve, nil
}

// requireBalance fails with ErrNotEnoughBalance if account holds less than amount of asset.
func (k Keeper) requireBalance(ctx context.Context, asset string, account sdk.AccAddress, amount math.Int) error {
	if bal := k.ledger.Balance(ctx, asset, account); bal.LT(amount) {
		return types.ErrNotEnoughBalance.Wrapf("%s holds %s%s, needs %s%s", account, bal, asset, amount, asset)
	}
	return nil
}

// transfer moves funds through the ledger, reporting failures as ErrTransfer.
func (k Keeper) transfer(ctx context.Context, asset string, from, to sdk.AccAddress, amount math.Int) error {
	if amount.IsZero() {
		return nil
	}
	if err := k.ledger.Transfer(ctx, asset, from, to, amount); err != nil {
		return types.ErrTransfer.Wrapf("%s%s from %s to %s: %s", amount, asset, from, to, err)
	}
	return nil
}

func requirePositive(x math.Int, name string) error {
	if err := types.ValidateAmount(x); err != nil {
		return err
	}
	if x.IsZero() {
		return types.ErrInvalidAmount.Wrapf("%s must be positive", name)
	}
	return nil
}
