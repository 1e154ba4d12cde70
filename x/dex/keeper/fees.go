package keeper

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"cosmossdk.io/math"
	storetypes "cosmossdk.io/store/types"
	sdk "github.com/cosmos/cosmos-sdk/types"

	"github.com/paw-chain/pawdex/x/dex/types"
)

// MarketPayout is what one market paid out in a distribution run.
type MarketPayout struct {
	Market           types.Market `json:"market"`
	BaseDistributed  math.Int     `json:"base_distributed"`
	QuoteDistributed math.Int     `json:"quote_distributed"`
	Payouts          int          `json:"payouts"`
}

// DistributionReport summarizes a distribution run.
type DistributionReport struct {
	Settled []MarketPayout `json:"settled"`
	Failed  []types.Market `json:"failed"`
}

// Payouts returns the number of provider transfers made in the run
func (r DistributionReport) Payouts() int {
	n := 0
	for _, s := range r.Settled {
		n += s.Payouts
	}
	return n
}

// DistributeFees pays every market's collected taker fees to its liquidity
// providers in proportion to their contribution, then resets the counters.
//
// Each market settles in its own cache context: a failed transfer or
// arithmetic error rolls back that market alone, leaving its counters for the
// next run, while the remaining markets still settle. Failures are joined
// into the returned error.
func (k Keeper) DistributeFees(ctx context.Context) (DistributionReport, error) {
	sdkCtx := sdk.UnwrapSDKContext(ctx)
	start := time.Now()
	defer func() {
		k.metrics.DistributionDuration.Observe(time.Since(start).Seconds())
	}()

	var report DistributionReport

	params, err := k.GetParams(sdkCtx)
	if err != nil {
		return report, err
	}
	markets, err := k.marketsToSettle(sdkCtx, params.MaxMarketsPerRun)
	if err != nil {
		return report, err
	}

	var errs []error
	for _, market := range markets {
		payout, err := k.distributeMarket(sdkCtx, market)
		if err != nil {
			reason := "transfer"
			switch {
			case errors.Is(err, types.ErrArithmetic):
				reason = "arithmetic"
			case errors.Is(err, types.ErrDistributionInProgress):
				reason = "busy"
			case !errors.Is(err, types.ErrTransfer):
				reason = "store"
			}
			k.metrics.DistributionFailures.WithLabelValues(market.String(), reason).Inc()
			k.Logger(sdkCtx).Error("fee distribution rolled back",
				"market", market.String(),
				"reason", reason,
				"error", err,
			)
			report.Failed = append(report.Failed, market)
			errs = append(errs, fmt.Errorf("market %s: %w", market, err))
			continue
		}
		report.Settled = append(report.Settled, payout)
	}

	if params.MaxMarketsPerRun > 0 && len(markets) > 0 {
		k.setDistributionCursor(sdkCtx, types.MarketKey(markets[len(markets)-1]))
	}

	if len(markets) > 0 {
		k.Logger(sdkCtx).Info("fee distribution finished",
			"settled", len(report.Settled),
			"failed", len(report.Failed),
			"payouts", report.Payouts(),
		)
	}
	return report, errors.Join(errs...)
}

// marketsToSettle lists the markets with collected fees for this run. A
// bounded run resumes after the persisted cursor and wraps around once.
func (k Keeper) marketsToSettle(ctx sdk.Context, limit uint32) ([]types.Market, error) {
	var markets []types.Market
	collect := func(market types.Market, pool types.PoolState) (bool, error) {
		if pool.HasFees() {
			markets = append(markets, market)
		}
		return limit > 0 && uint32(len(markets)) >= limit, nil
	}

	prefixEnd := storetypes.PrefixEndBytes(types.PoolKeyPrefix)
	cursor := k.getDistributionCursor(ctx)
	if limit == 0 || len(cursor) == 0 {
		err := k.iteratePoolRange(ctx, types.PoolKeyPrefix, prefixEnd, collect)
		return markets, err
	}

	// keys are prefix free, so cursor||0x00 is the first key after the cursor's market
	after := append(append(append([]byte{}, types.PoolKeyPrefix...), cursor...), 0x00)
	if err := k.iteratePoolRange(ctx, after, prefixEnd, collect); err != nil {
		return nil, err
	}
	if uint32(len(markets)) < limit {
		if err := k.iteratePoolRange(ctx, types.PoolKeyPrefix, after, collect); err != nil {
			return nil, err
		}
	}
	return markets, nil
}

// distributeMarket settles one market atomically.
func (k Keeper) distributeMarket(sdkCtx sdk.Context, market types.Market) (MarketPayout, error) {
	if !k.guard.tryAcquire(market) {
		return MarketPayout{}, types.ErrDistributionInProgress.Wrapf("market %s", market)
	}
	defer k.guard.release(market)

	result := MarketPayout{
		Market:           market,
		BaseDistributed:  math.ZeroInt(),
		QuoteDistributed: math.ZeroInt(),
	}

	cacheCtx, writeFn := sdkCtx.CacheContext()

	pool, found, err := k.GetPool(cacheCtx, market)
	if err != nil {
		return result, err
	}
	if !found {
		return result, types.ErrMarketDoesNotExist.Wrapf("market %s", market)
	}
	if !pool.HasFees() {
		return result, nil
	}

	// first pass: raw shares, so payouts can be scaled down when trades have
	// shrunk a reserve below the recorded contributions
	baseShares, quoteShares := math.ZeroInt(), math.ZeroInt()
	err = k.IteratePositions(cacheCtx, market, func(_ sdk.AccAddress, pos types.LiquidityPosition) (bool, error) {
		baseShare, err := rawShare(pool.CollectedBaseFees, pos.BaseContributed, pool.BaseReserve)
		if err != nil {
			return true, err
		}
		quoteShare, err := rawShare(pool.CollectedQuoteFees, pos.QuoteContributed, pool.QuoteReserve)
		if err != nil {
			return true, err
		}
		if baseShares, err = types.CheckedAdd(baseShares, baseShare); err != nil {
			return true, err
		}
		quoteShares, err = types.CheckedAdd(quoteShares, quoteShare)
		return err != nil, err
	})
	if err != nil {
		return MarketPayout{}, err
	}

	remainingBase, remainingQuote := pool.CollectedBaseFees, pool.CollectedQuoteFees

	err = k.IteratePositions(cacheCtx, market, func(provider sdk.AccAddress, pos types.LiquidityPosition) (bool, error) {
		basePayout, err := providerShare(pool.CollectedBaseFees, pos.BaseContributed, pool.BaseReserve, baseShares, remainingBase)
		if err != nil {
			return true, err
		}
		quotePayout, err := providerShare(pool.CollectedQuoteFees, pos.QuoteContributed, pool.QuoteReserve, quoteShares, remainingQuote)
		if err != nil {
			return true, err
		}
		if basePayout.IsZero() && quotePayout.IsZero() {
			return false, nil
		}

		if err := k.transfer(cacheCtx, market.Base, k.feeAccount, provider, basePayout); err != nil {
			return true, err
		}
		if err := k.transfer(cacheCtx, market.Quote, k.feeAccount, provider, quotePayout); err != nil {
			return true, err
		}
		if remainingBase, err = types.CheckedSub(remainingBase, basePayout); err != nil {
			return true, err
		}
		if remainingQuote, err = types.CheckedSub(remainingQuote, quotePayout); err != nil {
			return true, err
		}
		result.BaseDistributed = result.BaseDistributed.Add(basePayout)
		result.QuoteDistributed = result.QuoteDistributed.Add(quotePayout)
		result.Payouts++

		cacheCtx.EventManager().EmitEvent(
			sdk.NewEvent(
				types.EventTypeLiquidityProviderRewarded,
				sdk.NewAttribute(types.AttributeKeyProvider, provider.String()),
				sdk.NewAttribute(types.AttributeKeyBase, market.Base),
				sdk.NewAttribute(types.AttributeKeyQuote, market.Quote),
				sdk.NewAttribute(types.AttributeKeyBaseAmount, basePayout.String()),
				sdk.NewAttribute(types.AttributeKeyQuoteAmount, quotePayout.String()),
			),
		)
		return false, nil
	})
	if err != nil {
		return MarketPayout{}, err
	}

	pool.CollectedBaseFees = math.ZeroInt()
	pool.CollectedQuoteFees = math.ZeroInt()
	if err := k.SetPool(cacheCtx, market, pool); err != nil {
		return MarketPayout{}, err
	}

	cacheCtx.EventManager().EmitEvent(
		sdk.NewEvent(
			types.EventTypeFeesDistributed,
			sdk.NewAttribute(types.AttributeKeyBase, market.Base),
			sdk.NewAttribute(types.AttributeKeyQuote, market.Quote),
			sdk.NewAttribute(types.AttributeKeyBaseAmount, result.BaseDistributed.String()),
			sdk.NewAttribute(types.AttributeKeyQuoteAmount, result.QuoteDistributed.String()),
			sdk.NewAttribute(types.AttributeKeyPayoutCount, strconv.Itoa(result.Payouts)),
		),
	)

	writeFn()

	k.metrics.FeesDistributed.WithLabelValues(market.String(), market.Base).Add(amountToFloat(result.BaseDistributed))
	k.metrics.FeesDistributed.WithLabelValues(market.String(), market.Quote).Add(amountToFloat(result.QuoteDistributed))
	k.metrics.ProviderPayouts.Add(float64(result.Payouts))
	return result, nil
}

// rawShare is floor(collected * contributed / reserve)
func rawShare(collected, contributed, reserve math.Int) (math.Int, error) {
	if collected.IsZero() || contributed.IsZero() || reserve.IsZero() {
		return math.ZeroInt(), nil
	}
	return types.CheckedMulDiv(collected, contributed, reserve)
}

// providerShare is the provider's raw share of collected. When the raw shares
// of all providers add up to more than collected, every share is scaled by
// collected/totalShares instead, so providers with equal contributions are
// paid equally regardless of iteration order. The result never exceeds
// remaining.
func providerShare(collected, contributed, reserve, totalShares, remaining math.Int) (math.Int, error) {
	share, err := rawShare(collected, contributed, reserve)
	if err != nil || share.IsZero() {
		return share, err
	}
	if totalShares.GT(collected) {
		if share, err = types.CheckedMulDiv(collected, share, totalShares); err != nil {
			return math.Int{}, err
		}
	}
	return math.MinInt(share, remaining), nil
}
