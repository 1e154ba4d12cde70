package keeper

import (
	"context"
	"fmt"

	storetypes "cosmossdk.io/store/types"
	sdk "github.com/cosmos/cosmos-sdk/types"

	"github.com/paw-chain/pawdex/x/dex/types"
)

// GetPool returns the pool state of a market
func (k Keeper) GetPool(ctx context.Context, market types.Market) (types.PoolState, bool, error) {
	bz := k.getStore(ctx).Get(types.PoolKey(market))
	if bz == nil {
		return types.PoolState{}, false, nil
	}
	var pool types.PoolState
	if err := k.cdc.Unmarshal(bz, &pool); err != nil {
		return types.PoolState{}, false, fmt.Errorf("GetPool: unmarshal %s: %w", market, err)
	}
	return pool.Normalize(), true, nil
}

// HasPool reports whether a market exists
func (k Keeper) HasPool(ctx context.Context, market types.Market) bool {
	return k.getStore(ctx).Has(types.PoolKey(market))
}

// SetPool stores the pool state of a market
func (k Keeper) SetPool(ctx context.Context, market types.Market, pool types.PoolState) error {
	bz, err := k.cdc.Marshal(pool.Normalize())
	if err != nil {
		return fmt.Errorf("SetPool: marshal %s: %w", market, err)
	}
	k.getStore(ctx).Set(types.PoolKey(market), bz)
	return nil
}

// GetPosition returns a provider's position in a market. A provider that
// never deposited has a zero position.
func (k Keeper) GetPosition(ctx context.Context, market types.Market, provider sdk.AccAddress) (types.LiquidityPosition, bool, error) {
	bz := k.getStore(ctx).Get(types.PositionKey(market, provider))
	if bz == nil {
		return types.LiquidityPosition{}.Normalize(), false, nil
	}
	var pos types.LiquidityPosition
	if err := k.cdc.Unmarshal(bz, &pos); err != nil {
		return types.LiquidityPosition{}, false, fmt.Errorf("GetPosition: unmarshal %s/%s: %w", market, provider, err)
	}
	return pos.Normalize(), true, nil
}

// SetPosition stores a provider's position. Zero positions are kept.
func (k Keeper) SetPosition(ctx context.Context, market types.Market, provider sdk.AccAddress, pos types.LiquidityPosition) error {
	bz, err := k.cdc.Marshal(pos.Normalize())
	if err != nil {
		return fmt.Errorf("SetPosition: marshal %s/%s: %w", market, provider, err)
	}
	k.getStore(ctx).Set(types.PositionKey(market, provider), bz)
	return nil
}

// IteratePools visits every market in key order until cb returns true.
func (k Keeper) IteratePools(ctx context.Context, cb func(market types.Market, pool types.PoolState) (stop bool, err error)) error {
	return k.iteratePoolRange(ctx, types.PoolKeyPrefix, storetypes.PrefixEndBytes(types.PoolKeyPrefix), cb)
}

func (k Keeper) iteratePoolRange(ctx context.Context, start, end []byte, cb func(types.Market, types.PoolState) (bool, error)) error {
	iterator := k.getStore(ctx).Iterator(start, end)
	defer iterator.Close()

	for ; iterator.Valid(); iterator.Next() {
		market, rest, err := types.ParseMarketKey(iterator.Key()[len(types.PoolKeyPrefix):])
		if err != nil || len(rest) != 0 {
			return fmt.Errorf("IteratePools: bad key %X: %v", iterator.Key(), err)
		}
		var pool types.PoolState
		if err := k.cdc.Unmarshal(iterator.Value(), &pool); err != nil {
			return fmt.Errorf("IteratePools: unmarshal %s: %w", market, err)
		}
		stop, err := cb(market, pool.Normalize())
		if err != nil {
			return err
		}
		if stop {
			return nil
		}
	}
	return nil
}

// GetAllPools returns every market and its pool state
func (k Keeper) GetAllPools(ctx context.Context) ([]types.GenesisPool, error) {
	var pools []types.GenesisPool
	err := k.IteratePools(ctx, func(market types.Market, pool types.PoolState) (bool, error) {
		pools = append(pools, types.GenesisPool{Market: market, Pool: pool})
		return false, nil
	})
	return pools, err
}

// IteratePositions streams one market's positions in provider key order
// until cb returns true.
func (k Keeper) IteratePositions(ctx context.Context, market types.Market, cb func(provider sdk.AccAddress, pos types.LiquidityPosition) (stop bool, err error)) error {
	iterator := storetypes.KVStorePrefixIterator(k.getStore(ctx), types.PositionsPrefix(market))
	defer iterator.Close()

	for ; iterator.Valid(); iterator.Next() {
		_, provider, err := types.ParsePositionKey(iterator.Key()[len(types.PositionKeyPrefix):])
		if err != nil {
			return fmt.Errorf("IteratePositions: bad key %X: %w", iterator.Key(), err)
		}
		var pos types.LiquidityPosition
		if err := k.cdc.Unmarshal(iterator.Value(), &pos); err != nil {
			return fmt.Errorf("IteratePositions: unmarshal %s/%X: %w", market, provider, err)
		}
		stop, err := cb(sdk.AccAddress(provider), pos.Normalize())
		if err != nil {
			return err
		}
		if stop {
			return nil
		}
	}
	return nil
}

// GetAllPositions returns every position of every market
func (k Keeper) GetAllPositions(ctx context.Context) ([]types.GenesisPosition, error) {
	var positions []types.GenesisPosition
	err := k.IteratePools(ctx, func(market types.Market, _ types.PoolState) (bool, error) {
		return false, k.IteratePositions(ctx, market, func(provider sdk.AccAddress, pos types.LiquidityPosition) (bool, error) {
			positions = append(positions, types.GenesisPosition{
				Market:   market,
				Provider: provider.String(),
				Position: pos,
			})
			return false, nil
		})
	})
	return positions, err
}

// getDistributionCursor returns the market key after which the next bounded
// distribution run starts, or nil to start from the first market.
func (k Keeper) getDistributionCursor(ctx context.Context) []byte {
	return k.getStore(ctx).Get(types.DistributionCursorKey)
}

func (k Keeper) setDistributionCursor(ctx context.Context, marketKey []byte) {
	store := k.getStore(ctx)
	if len(marketKey) == 0 {
		store.Delete(types.DistributionCursorKey)
		return
	}
	store.Set(types.DistributionCursorKey, marketKey)
}
