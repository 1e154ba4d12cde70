package ledger

import (
	"context"
	"fmt"
	"sort"

	sdk "github.com/cosmos/cosmos-sdk/types"
)

// Balance is the holdings of one account at genesis
type Balance struct {
	Address string    `json:"address"`
	Coins   sdk.Coins `json:"coins"`
}

// GenesisState lists every account balance. Supply is rebuilt from it.
type GenesisState struct {
	Balances []Balance `json:"balances"`
}

// DefaultGenesis returns an empty ledger
func DefaultGenesis() *GenesisState {
	return &GenesisState{Balances: []Balance{}}
}

// Validate rejects bad addresses, invalid coins and repeated accounts
func (gs GenesisState) Validate() error {
	seen := make(map[string]bool, len(gs.Balances))
	for _, b := range gs.Balances {
		addr, err := sdk.AccAddressFromBech32(b.Address)
		if err != nil {
			return fmt.Errorf("invalid balance address %s: %w", b.Address, err)
		}
		if seen[addr.String()] {
			return fmt.Errorf("duplicate balance for %s", b.Address)
		}
		seen[addr.String()] = true
		if err := b.Coins.Validate(); err != nil {
			return ErrInvalidCoin.Wrapf("%s: %s", b.Address, err)
		}
	}
	return nil
}

// InitGenesis mints every genesis balance
func (k Keeper) InitGenesis(ctx context.Context, gs GenesisState) error {
	if err := gs.Validate(); err != nil {
		return err
	}
	for _, b := range gs.Balances {
		addr := sdk.MustAccAddressFromBech32(b.Address)
		for _, c := range b.Coins {
			if err := k.Mint(ctx, c.Denom, addr, c.Amount); err != nil {
				return err
			}
		}
	}
	return nil
}

// ExportGenesis returns every non-zero balance, grouped by account
func (k Keeper) ExportGenesis(ctx context.Context) (*GenesisState, error) {
	byAccount := make(map[string]sdk.Coins)
	err := k.IterateBalances(ctx, func(account sdk.AccAddress, coin sdk.Coin) bool {
		if coin.IsPositive() {
			byAccount[account.String()] = byAccount[account.String()].Add(coin)
		}
		return false
	})
	if err != nil {
		return nil, err
	}

	gs := DefaultGenesis()
	for addr, coins := range byAccount {
		gs.Balances = append(gs.Balances, Balance{Address: addr, Coins: coins})
	}
	sort.Slice(gs.Balances, func(i, j int) bool {
		return gs.Balances[i].Address < gs.Balances[j].Address
	})
	return gs, nil
}
