package keeper

import (
	"context"

	"cosmossdk.io/log"
	storetypes "cosmossdk.io/store/types"
	"github.com/cosmos/cosmos-sdk/codec"
	sdk "github.com/cosmos/cosmos-sdk/types"
	"github.com/cosmos/cosmos-sdk/types/address"
	authtypes "github.com/cosmos/cosmos-sdk/x/auth/types"

	"github.com/paw-chain/pawdex/x/dex/types"
)

// Keeper of the dex store
type Keeper struct {
	storeKey storetypes.StoreKey
	cdc      *codec.LegacyAmino
	ledger   types.Ledger
	guard    *marketGuard
	metrics  *DEXMetrics

	poolAccount sdk.AccAddress
	feeAccount  sdk.AccAddress
}

// NewKeeper creates a new dex Keeper instance
func NewKeeper(cdc *codec.LegacyAmino, key storetypes.StoreKey, ledger types.Ledger) *Keeper {
	if cdc == nil {
		cdc = types.ModuleCdc
	}
	return &Keeper{
		storeKey:    key,
		cdc:         cdc,
		ledger:      ledger,
		guard:       newMarketGuard(),
		metrics:     NewDEXMetrics(),
		poolAccount: authtypes.NewModuleAddress(types.ModuleName),
		feeAccount:  sdk.AccAddress(address.Module(types.ModuleName, []byte(types.FeeAccountName))),
	}
}

// getStore returns the KVStore for the dex module
func (k Keeper) getStore(ctx context.Context) storetypes.KVStore {
	sdkCtx := sdk.UnwrapSDKContext(ctx)
	return sdkCtx.KVStore(k.storeKey)
}

// Logger returns a module-specific logger
func (k Keeper) Logger(ctx context.Context) log.Logger {
	return sdk.UnwrapSDKContext(ctx).Logger().With("module", "x/"+types.ModuleName)
}

// PoolAccount holds every market's reserves
func (k Keeper) PoolAccount() sdk.AccAddress {
	return k.poolAccount
}

// FeeAccount holds collected taker fees until they are distributed
func (k Keeper) FeeAccount() sdk.AccAddress {
	return k.feeAccount
}

// Ledger returns the asset ledger the keeper settles against
func (k Keeper) Ledger() types.Ledger {
	return k.ledger
}
