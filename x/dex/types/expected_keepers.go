package types

import (
	"context"

	"cosmossdk.io/math"
	sdk "github.com/cosmos/cosmos-sdk/types"
)

// Ledger is the asset ledger the module settles against. Transfer is
// synchronous and either moves the full amount or fails without effect.
type Ledger interface {
	Balance(ctx context.Context, asset string, account sdk.AccAddress) math.Int
	Transfer(ctx context.Context, asset string, from, to sdk.AccAddress, amount math.Int) error
}

// BankKeeper defines the subset of the SDK bank keeper a Ledger can be built on.
type BankKeeper interface {
	GetBalance(ctx context.Context, addr sdk.AccAddress, denom string) sdk.Coin
	SendCoins(ctx context.Context, fromAddr, toAddr sdk.AccAddress, amt sdk.Coins) error
}
