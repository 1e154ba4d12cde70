package ledger_test

import (
	"testing"

	"cosmossdk.io/math"
	sdk "github.com/cosmos/cosmos-sdk/types"
	"github.com/stretchr/testify/require"

	"github.com/paw-chain/pawdex/x/dex/ledger"
)

func TestGenesisRoundTrip(t *testing.T) {
	k, ctx := setup(t)
	alice, bob := addr(1), addr(2)

	gs := ledger.GenesisState{Balances: []ledger.Balance{
		{Address: alice.String(), Coins: sdk.NewCoins(sdk.NewInt64Coin("uatom", 10), sdk.NewInt64Coin("uusdc", 5))},
		{Address: bob.String(), Coins: sdk.NewCoins(sdk.NewInt64Coin("uatom", 1))},
	}}
	require.NoError(t, k.InitGenesis(ctx, gs))
	require.Equal(t, "11", k.Supply(ctx, "uatom").String())

	exported, err := k.ExportGenesis(ctx)
	require.NoError(t, err)
	require.Len(t, exported.Balances, 2)

	want := map[string]string{alice.String(): "10uatom,5uusdc", bob.String(): "1uatom"}
	for _, b := range exported.Balances {
		require.Equal(t, want[b.Address], b.Coins.String())
	}
}

func TestGenesisValidate(t *testing.T) {
	alice := addr(1).String()
	tests := []struct {
		name  string
		gs    ledger.GenesisState
		valid bool
	}{
		{"default", *ledger.DefaultGenesis(), true},
		{"bad address", ledger.GenesisState{Balances: []ledger.Balance{{Address: "x"}}}, false},
		{"duplicate", ledger.GenesisState{Balances: []ledger.Balance{{Address: alice}, {Address: alice}}}, false},
		{"negative", ledger.GenesisState{Balances: []ledger.Balance{{
			Address: alice,
			Coins:   sdk.Coins{sdk.Coin{Denom: "uatom", Amount: math.NewInt(-1)}},
		}}}, false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.gs.Validate()
			if tc.valid {
				require.NoError(t, err)
			} else {
				require.Error(t, err)
			}
		})
	}
}
