package keeper_test

import (
	"encoding/json"
	"testing"

	"cosmossdk.io/math"
	sdk "github.com/cosmos/cosmos-sdk/types"
	"github.com/stretchr/testify/require"

	keepertest "github.com/paw-chain/pawdex/testutil/keeper"
	"github.com/paw-chain/pawdex/x/dex/keeper"
	"github.com/paw-chain/pawdex/x/dex/types"
)

func TestGenesis(t *testing.T) {
	k, lk, ctx := keepertest.DexKeeper(t)
	creator := keepertest.TestAddr("creator")
	keepertest.CreateTestPool(t, k, lk, ctx, creator, atomUsdc, math.NewInt(5_000), math.NewInt(7_000))
	keepertest.CreateTestPool(t, k, lk, ctx, creator, usdcAtom, math.NewInt(10), math.NewInt(20))

	trader := keepertest.TestAddr("trader")
	keepertest.Fund(t, lk, ctx, trader, sdkCoin("uusdc", 2_000))
	_, err := k.Buy(ctx, trader, atomUsdc, math.NewInt(2_000))
	require.NoError(t, err)

	exported, err := k.ExportGenesis(ctx)
	require.NoError(t, err)
	require.NoError(t, exported.Validate())
	require.Len(t, exported.Pools, 2)
	require.Len(t, exported.Positions, 2)

	k2, _, ctx2 := keepertest.DexKeeper(t)
	require.NoError(t, k2.InitGenesis(ctx2, *exported))
	reexported, err := k2.ExportGenesis(ctx2)
	require.NoError(t, err)

	want, err := json.Marshal(exported)
	require.NoError(t, err)
	got, err := json.Marshal(reexported)
	require.NoError(t, err)
	require.JSONEq(t, string(want), string(got))

	pool, found, err := k2.GetPool(ctx2, atomUsdc)
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, "2", pool.CollectedQuoteFees.String())
}

func TestInitGenesis_Invalid(t *testing.T) {
	k, _, ctx := keepertest.DexKeeper(t)

	gs := types.DefaultGenesis()
	gs.Positions = append(gs.Positions, types.GenesisPosition{
		Market:   atomUsdc,
		Provider: keepertest.TestAddr("orphan").String(),
		Position: types.NewLiquidityPosition(math.NewInt(1), math.NewInt(1)),
	})
	require.ErrorIs(t, k.InitGenesis(ctx, *gs), types.ErrInvalidGenesis)
	require.False(t, k.HasPool(ctx, atomUsdc))
}

// routeRegistry records registered invariants by route
type routeRegistry map[string]sdk.Invariant

func (r routeRegistry) RegisterRoute(moduleName, route string, invar sdk.Invariant) {
	r[moduleName+"/"+route] = invar
}

func registeredInvariants(k *keeper.Keeper) routeRegistry {
	r := routeRegistry{}
	keeper.RegisterInvariants(r, *k)
	return r
}

func TestRegisterInvariants(t *testing.T) {
	k, _, _ := keepertest.DexKeeper(t)
	r := registeredInvariants(k)
	require.Len(t, r, 3)
	for _, route := range []string{keeper.CustodySolvencyRoute, keeper.FeeSolvencyRoute, keeper.PoolBoundsRoute} {
		require.Contains(t, r, types.ModuleName+"/"+route)
	}
}

func TestInvariants(t *testing.T) {
	k, lk, ctx := keepertest.DexKeeper(t)
	keepertest.CreateTestPool(t, k, lk, ctx, keepertest.TestAddr("creator"), atomUsdc, math.NewInt(1_000), math.NewInt(1_000))
	trader := keepertest.TestAddr("trader")
	keepertest.Fund(t, lk, ctx, trader, sdkCoin("uusdc", 5_000))
	_, err := k.Buy(ctx, trader, atomUsdc, math.NewInt(5_000))
	require.NoError(t, err)

	msg, broken := keeper.AllInvariants(*k)(ctx)
	require.False(t, broken, msg)
	for route, invar := range registeredInvariants(k) {
		msg, broken := invar(ctx)
		require.False(t, broken, "%s: %s", route, msg)
	}
}

func TestInvariants_Broken(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(pool types.PoolState) types.PoolState
		route  string
	}{
		{
			name: "reserve above custody",
			mutate: func(pool types.PoolState) types.PoolState {
				pool.BaseReserve = pool.BaseReserve.AddRaw(1)
				return pool
			},
			route: keeper.CustodySolvencyRoute,
		},
		{
			name: "fees without fee balance",
			mutate: func(pool types.PoolState) types.PoolState {
				pool.CollectedQuoteFees = math.NewInt(3)
				return pool
			},
			route: keeper.FeeSolvencyRoute,
		},
		{
			name: "negative reserve",
			mutate: func(pool types.PoolState) types.PoolState {
				pool.QuoteReserve = math.NewInt(-1)
				return pool
			},
			route: keeper.PoolBoundsRoute,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			k, lk, ctx := keepertest.DexKeeper(t)
			keepertest.CreateTestPool(t, k, lk, ctx, keepertest.TestAddr("creator"), atomUsdc, math.NewInt(1_000), math.NewInt(1_000))

			pool, _, err := k.GetPool(ctx, atomUsdc)
			require.NoError(t, err)
			require.NoError(t, k.SetPool(ctx, atomUsdc, tc.mutate(pool)))

			invar, ok := registeredInvariants(k)[types.ModuleName+"/"+tc.route]
			require.True(t, ok)
			msg, broken := invar(ctx)
			require.True(t, broken, msg)
			require.Contains(t, msg, tc.route)
			_, broken = keeper.AllInvariants(*k)(ctx)
			require.True(t, broken)
		})
	}
}
