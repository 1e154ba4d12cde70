package keeper

import (
	"context"
	"fmt"

	sdk "github.com/cosmos/cosmos-sdk/types"

	"github.com/paw-chain/pawdex/x/dex/types"
)

// InitGenesis initializes the dex module's state from a provided genesis state.
func (k Keeper) InitGenesis(ctx context.Context, genState types.GenesisState) error {
	if err := genState.Validate(); err != nil {
		return err
	}
	if err := k.SetParams(ctx, genState.Params); err != nil {
		return fmt.Errorf("InitGenesis: params: %w", err)
	}
	for _, gp := range genState.Pools {
		if err := k.SetPool(ctx, gp.Market, gp.Pool.Normalize()); err != nil {
			return err
		}
	}
	for _, gp := range genState.Positions {
		provider, err := sdk.AccAddressFromBech32(gp.Provider)
		if err != nil {
			return types.ErrInvalidAddress.Wrapf("%s: %s", gp.Provider, err)
		}
		if err := k.SetPosition(ctx, gp.Market, provider, gp.Position.Normalize()); err != nil {
			return err
		}
	}
	return nil
}

// ExportGenesis returns the dex module's exported genesis.
func (k Keeper) ExportGenesis(ctx context.Context) (*types.GenesisState, error) {
	params, err := k.GetParams(ctx)
	if err != nil {
		return nil, err
	}
	pools, err := k.GetAllPools(ctx)
	if err != nil {
		return nil, err
	}
	positions, err := k.GetAllPositions(ctx)
	if err != nil {
		return nil, err
	}

	genesis := types.DefaultGenesis()
	genesis.Params = params
	if pools != nil {
		genesis.Pools = pools
	}
	if positions != nil {
		genesis.Positions = positions
	}
	return genesis, nil
}
