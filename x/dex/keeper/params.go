package keeper

import (
	"context"

	"cosmossdk.io/math"

	"github.com/paw-chain/pawdex/x/dex/types"
)

// GetParams returns the current parameters for the dex module
func (k Keeper) GetParams(ctx context.Context) (types.Params, error) {
	bz := k.getStore(ctx).Get(types.ParamsKey)
	if bz == nil {
		return types.DefaultParams(), nil
	}

	var params types.Params
	if err := k.cdc.Unmarshal(bz, &params); err != nil {
		return types.Params{}, err
	}
	return params, nil
}

// SetParams sets the parameters for the dex module
func (k Keeper) SetParams(ctx context.Context, params types.Params) error {
	if err := params.Validate(); err != nil {
		return err
	}
	bz, err := k.cdc.Marshal(params)
	if err != nil {
		return err
	}
	k.getStore(ctx).Set(types.ParamsKey, bz)
	return nil
}

// FeeFromAmount returns the taker fee withheld from amount at the current rate.
func (k Keeper) FeeFromAmount(ctx context.Context, amount math.Int) (math.Int, error) {
	params, err := k.GetParams(ctx)
	if err != nil {
		return math.Int{}, err
	}
	return types.FeeFromAmount(amount, params.TakerFee)
}
