package types

import (
	sdk "github.com/cosmos/cosmos-sdk/types"
)

// GenesisPool is a market's pool state as exported to genesis
type GenesisPool struct {
	Market Market    `json:"market"`
	Pool   PoolState `json:"pool"`
}

// GenesisPosition is one provider's position as exported to genesis
type GenesisPosition struct {
	Market   Market            `json:"market"`
	Provider string            `json:"provider"`
	Position LiquidityPosition `json:"position"`
}

// GenesisState defines the dex module's genesis state
type GenesisState struct {
	Params    Params            `json:"params"`
	Pools     []GenesisPool     `json:"pools"`
	Positions []GenesisPosition `json:"positions"`
}

// DefaultGenesis returns the default genesis state
func DefaultGenesis() *GenesisState {
	return &GenesisState{
		Params:    DefaultParams(),
		Pools:     []GenesisPool{},
		Positions: []GenesisPosition{},
	}
}

// Validate performs basic genesis state validation
func (gs GenesisState) Validate() error {
	if err := gs.Params.Validate(); err != nil {
		return err
	}

	markets := make(map[Market]struct{}, len(gs.Pools))
	for _, gp := range gs.Pools {
		if err := gp.Market.Validate(); err != nil {
			return ErrInvalidGenesis.Wrapf("pool %s: %s", gp.Market, err)
		}
		if _, dup := markets[gp.Market]; dup {
			return ErrInvalidGenesis.Wrapf("duplicate pool %s", gp.Market)
		}
		if err := gp.Pool.Normalize().Validate(); err != nil {
			return ErrInvalidGenesis.Wrapf("pool %s: %s", gp.Market, err)
		}
		markets[gp.Market] = struct{}{}
	}

	type positionID struct {
		market   Market
		provider string
	}
	seen := make(map[positionID]struct{}, len(gs.Positions))
	for _, pos := range gs.Positions {
		if _, ok := markets[pos.Market]; !ok {
			return ErrInvalidGenesis.Wrapf("position of %s references unknown market %s", pos.Provider, pos.Market)
		}
		if _, err := sdk.AccAddressFromBech32(pos.Provider); err != nil {
			return ErrInvalidGenesis.Wrapf("provider %q: %s", pos.Provider, err)
		}
		id := positionID{pos.Market, pos.Provider}
		if _, dup := seen[id]; dup {
			return ErrInvalidGenesis.Wrapf("duplicate position %s in %s", pos.Provider, pos.Market)
		}
		if err := pos.Position.Normalize().Validate(); err != nil {
			return ErrInvalidGenesis.Wrapf("position %s in %s: %s", pos.Provider, pos.Market, err)
		}
		seen[id] = struct{}{}
	}
	return nil
}
