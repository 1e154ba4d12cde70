package keeper

import (
	"fmt"
	"sort"

	"cosmossdk.io/math"
	sdk "github.com/cosmos/cosmos-sdk/types"

	"github.com/paw-chain/pawdex/x/dex/types"
)

// Invariant routes registered under the dex module
const (
	CustodySolvencyRoute = "custody-solvency"
	FeeSolvencyRoute     = "fee-solvency"
	PoolBoundsRoute      = "pool-bounds"
)

// RegisterInvariants registers all DEX invariants
func RegisterInvariants(ir sdk.InvariantRegistry, k Keeper) {
	ir.RegisterRoute(types.ModuleName, CustodySolvencyRoute, CustodySolvencyInvariant(k))
	ir.RegisterRoute(types.ModuleName, FeeSolvencyRoute, FeeSolvencyInvariant(k))
	ir.RegisterRoute(types.ModuleName, PoolBoundsRoute, PoolBoundsInvariant(k))
}

// AllInvariants runs all invariants of the DEX module
func AllInvariants(k Keeper) sdk.Invariant {
	return func(ctx sdk.Context) (string, bool) {
		res, stop := CustodySolvencyInvariant(k)(ctx)
		if stop {
			return res, stop
		}

		res, stop = FeeSolvencyInvariant(k)(ctx)
		if stop {
			return res, stop
		}

		return PoolBoundsInvariant(k)(ctx)
	}
}

// CustodySolvencyInvariant checks the pool account holds at least the sum of
// every market's reserves, per asset.
func CustodySolvencyInvariant(k Keeper) sdk.Invariant {
	return func(ctx sdk.Context) (string, bool) {
		owed := make(map[string]math.Int)
		err := k.IteratePools(ctx, func(market types.Market, pool types.PoolState) (bool, error) {
			addOwed(owed, market.Base, pool.BaseReserve)
			addOwed(owed, market.Quote, pool.QuoteReserve)
			return false, nil
		})
		if err != nil {
			return sdk.FormatInvariant(types.ModuleName, CustodySolvencyRoute, err.Error()), true
		}
		return checkHoldings(k, ctx, CustodySolvencyRoute, k.poolAccount, owed)
	}
}

// FeeSolvencyInvariant checks the fee account holds at least every market's
// collected, undistributed fees, per asset.
func FeeSolvencyInvariant(k Keeper) sdk.Invariant {
	return func(ctx sdk.Context) (string, bool) {
		owed := make(map[string]math.Int)
		err := k.IteratePools(ctx, func(market types.Market, pool types.PoolState) (bool, error) {
			addOwed(owed, market.Base, pool.CollectedBaseFees)
			addOwed(owed, market.Quote, pool.CollectedQuoteFees)
			return false, nil
		})
		if err != nil {
			return sdk.FormatInvariant(types.ModuleName, FeeSolvencyRoute, err.Error()), true
		}
		return checkHoldings(k, ctx, FeeSolvencyRoute, k.feeAccount, owed)
	}
}

// PoolBoundsInvariant checks every stored pool and position amount is
// non-negative and within MaxAmount.
func PoolBoundsInvariant(k Keeper) sdk.Invariant {
	return func(ctx sdk.Context) (string, bool) {
		var msg string
		count := 0
		err := k.IteratePools(ctx, func(market types.Market, pool types.PoolState) (bool, error) {
			if err := pool.Validate(); err != nil {
				count++
				msg += fmt.Sprintf("pool %s: %s\n", market, err)
			}
			return false, k.IteratePositions(ctx, market, func(provider sdk.AccAddress, pos types.LiquidityPosition) (bool, error) {
				if err := pos.Validate(); err != nil {
					count++
					msg += fmt.Sprintf("position %s in %s: %s\n", provider, market, err)
				}
				return false, nil
			})
		})
		if err != nil {
			count++
			msg += err.Error() + "\n"
		}
		broken := count != 0
		return sdk.FormatInvariant(
			types.ModuleName, PoolBoundsRoute,
			fmt.Sprintf("found %d out-of-bounds amounts\n%s", count, msg),
		), broken
	}
}

func addOwed(owed map[string]math.Int, asset string, amount math.Int) {
	if cur, ok := owed[asset]; ok {
		owed[asset] = cur.Add(amount)
		return
	}
	owed[asset] = amount
}

func checkHoldings(k Keeper, ctx sdk.Context, route string, account sdk.AccAddress, owed map[string]math.Int) (string, bool) {
	assets := make([]string, 0, len(owed))
	for asset := range owed {
		assets = append(assets, asset)
	}
	sort.Strings(assets)

	var msg string
	count := 0
	for _, asset := range assets {
		held := k.ledger.Balance(ctx, asset, account)
		if held.LT(owed[asset]) {
			count++
			msg += fmt.Sprintf("%s: account %s holds %s, owes %s\n", asset, account, held, owed[asset])
		}
	}
	broken := count != 0
	return sdk.FormatInvariant(
		types.ModuleName, route,
		fmt.Sprintf("found %d under-collateralized assets\n%s", count, msg),
	), broken
}
