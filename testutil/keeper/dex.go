package keeper

import (
	"testing"
	"time"

	"cosmossdk.io/log"
	"cosmossdk.io/math"
	"cosmossdk.io/store"
	"cosmossdk.io/store/metrics"
	storetypes "cosmossdk.io/store/types"
	"github.com/cometbft/cometbft/crypto/tmhash"
	cmtproto "github.com/cometbft/cometbft/proto/tendermint/types"
	dbm "github.com/cosmos/cosmos-db"
	sdk "github.com/cosmos/cosmos-sdk/types"
	"github.com/stretchr/testify/require"

	"github.com/paw-chain/pawdex/x/dex/keeper"
	"github.com/paw-chain/pawdex/x/dex/ledger"
	"github.com/paw-chain/pawdex/x/dex/types"
)

// DexKeeper creates a dex keeper settling against a store-backed ledger. Both
// stores live in one multistore, so cache contexts cover dex state and
// balances together.
func DexKeeper(t testing.TB) (*keeper.Keeper, ledger.Keeper, sdk.Context) {
	return DexKeeperWithLedger(t, nil)
}

// DexKeeperWithLedger is DexKeeper with the ledger wrapped by wrap, so tests
// can inject transfer failures. A nil wrap uses the ledger as is.
func DexKeeperWithLedger(t testing.TB, wrap func(ledger.Keeper) types.Ledger) (*keeper.Keeper, ledger.Keeper, sdk.Context) {
	storeKey := storetypes.NewKVStoreKey(types.StoreKey)
	ledgerKey := storetypes.NewKVStoreKey(ledger.StoreKey)

	db := dbm.NewMemDB()
	stateStore := store.NewCommitMultiStore(db, log.NewNopLogger(), metrics.NewNoOpMetrics())
	stateStore.MountStoreWithDB(storeKey, storetypes.StoreTypeIAVL, db)
	stateStore.MountStoreWithDB(ledgerKey, storetypes.StoreTypeIAVL, db)
	require.NoError(t, stateStore.LoadLatestVersion())

	lk := ledger.NewKeeper(ledgerKey)
	var l types.Ledger = lk
	if wrap != nil {
		l = wrap(lk)
	}
	k := keeper.NewKeeper(types.ModuleCdc, storeKey, l)

	ctx := sdk.NewContext(stateStore, cmtproto.Header{Height: 1, Time: time.Unix(1_700_000_000, 0).UTC()}, false, log.NewNopLogger())

	// Initialize module genesis
	require.NoError(t, k.InitGenesis(ctx, *types.DefaultGenesis()))

	return k, lk, ctx
}

// TestAddr derives a deterministic account address from a name
func TestAddr(name string) sdk.AccAddress {
	return sdk.AccAddress(tmhash.SumTruncated([]byte(name)))
}

// Fund mints coins to an account
func Fund(t testing.TB, lk ledger.Keeper, ctx sdk.Context, addr sdk.AccAddress, coins ...sdk.Coin) {
	for _, c := range coins {
		require.NoError(t, lk.Mint(ctx, c.Denom, addr, c.Amount))
	}
}

// CreateTestPool funds creator and bootstraps a market with the given reserves
func CreateTestPool(t testing.TB, k *keeper.Keeper, lk ledger.Keeper, ctx sdk.Context, creator sdk.AccAddress, market types.Market, base, quote math.Int) {
	Fund(t, lk, ctx, creator, sdk.NewCoin(market.Base, base), sdk.NewCoin(market.Quote, quote))
	require.NoError(t, k.CreateMarketPool(ctx, creator, market, base, quote))
}
