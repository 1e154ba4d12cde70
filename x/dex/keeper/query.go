package keeper

import (
	"context"

	"cosmossdk.io/math"
	sdk "github.com/cosmos/cosmos-sdk/types"

	"github.com/paw-chain/pawdex/x/dex/types"
)

// Querier serves read-only views of the dex store
type Querier struct {
	*Keeper
}

// NewQuerier returns a Querier over keeper
func NewQuerier(keeper *Keeper) Querier {
	return Querier{Keeper: keeper}
}

// Pool returns a market's pool state
func (q Querier) Pool(ctx context.Context, market types.Market) (*types.QueryPoolResponse, error) {
	if err := market.Validate(); err != nil {
		return nil, err
	}
	pool, found, err := q.GetPool(ctx, market)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, types.ErrMarketDoesNotExist.Wrapf("market %s", market)
	}
	return &types.QueryPoolResponse{Market: market, Pool: pool}, nil
}

// Pools returns every market
func (q Querier) Pools(ctx context.Context) (*types.QueryPoolsResponse, error) {
	resp := &types.QueryPoolsResponse{Pools: []types.QueryPoolResponse{}}
	err := q.IteratePools(ctx, func(market types.Market, pool types.PoolState) (bool, error) {
		resp.Pools = append(resp.Pools, types.QueryPoolResponse{Market: market, Pool: pool})
		return false, nil
	})
	if err != nil {
		return nil, err
	}
	return resp, nil
}

// Position returns a provider's position, zero if it never deposited.
func (q Querier) Position(ctx context.Context, market types.Market, provider string) (*types.QueryPositionResponse, error) {
	if err := market.Validate(); err != nil {
		return nil, err
	}
	addr, err := sdk.AccAddressFromBech32(provider)
	if err != nil {
		return nil, types.ErrInvalidAddress.Wrapf("%s: %s", provider, err)
	}
	if !q.HasPool(ctx, market) {
		return nil, types.ErrMarketDoesNotExist.Wrapf("market %s", market)
	}
	pos, _, err := q.GetPosition(ctx, market, addr)
	if err != nil {
		return nil, err
	}
	return &types.QueryPositionResponse{Market: market, Provider: addr.String(), Position: pos}, nil
}

// Price returns the spot price of one base unit in quote
func (q Querier) Price(ctx context.Context, market types.Market) (*types.QueryPriceResponse, error) {
	if err := market.Validate(); err != nil {
		return nil, err
	}
	num, den, err := q.CurrentPrice(ctx, market)
	if err != nil {
		return nil, err
	}
	resp := types.NewQueryPriceResponse(market, num, den)
	return &resp, nil
}

// Simulate prices a trade without executing it
func (q Querier) Simulate(ctx context.Context, market types.Market, side types.Side, amount math.Int) (*types.TradeQuote, error) {
	if err := market.Validate(); err != nil {
		return nil, err
	}
	if err := types.ValidateAmount(amount); err != nil {
		return nil, err
	}
	quote, err := q.SimulateTrade(ctx, market, side, amount)
	if err != nil {
		return nil, err
	}
	return &quote, nil
}

// Params returns the module parameters
func (q Querier) Params(ctx context.Context) (*types.Params, error) {
	params, err := q.GetParams(ctx)
	if err != nil {
		return nil, err
	}
	return &params, nil
}
