// Package app hosts the dex keeper outside a consensus engine. It owns the
// multistore, authenticates callers by address, and turns every operation
// into a committed block.
package app

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"cosmossdk.io/log"
	"cosmossdk.io/store"
	"cosmossdk.io/store/metrics"
	storetypes "cosmossdk.io/store/types"
	cmtproto "github.com/cometbft/cometbft/proto/tendermint/types"
	dbm "github.com/cosmos/cosmos-db"
	sdk "github.com/cosmos/cosmos-sdk/types"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/paw-chain/pawdex/app/telemetry"
	dexkeeper "github.com/paw-chain/pawdex/x/dex/keeper"
	"github.com/paw-chain/pawdex/x/dex/ledger"
	dextypes "github.com/paw-chain/pawdex/x/dex/types"
)

const appName = "pawdex"

// ErrAlreadyInitialized is returned by InitChain on a store with history
var ErrAlreadyInitialized = errors.New("chain already initialized")

// App owns the state of one dex instance. Writes are serialized; every
// successful Exec commits one block.
type App struct {
	mu     sync.RWMutex
	logger log.Logger
	db     dbm.DB
	cms    storetypes.CommitMultiStore
	tracer trace.Tracer
	now    func() time.Time

	DexKeeper    *dexkeeper.Keeper
	LedgerKeeper ledger.Keeper
	msgServer    dextypes.MsgServer
}

// Option configures an App
type Option func(*App)

// WithTracer sets the tracer used for block and module spans
func WithTracer(tracer trace.Tracer) Option {
	return func(a *App) { a.tracer = tracer }
}

// WithClock sets the block time source
func WithClock(now func() time.Time) Option {
	return func(a *App) { a.now = now }
}

// TxResult is the outcome of a delivered message
type TxResult struct {
	Height   int64      `json:"height"`
	Response any        `json:"response"`
	Events   sdk.Events `json:"events"`
}

// OpenDB opens the configured database backend
func OpenDB(cfg Config) (dbm.DB, error) {
	return dbm.NewDB("application", dbm.BackendType(cfg.DBBackend), cfg.DataDir())
}

// New loads the latest committed state from db
func New(logger log.Logger, db dbm.DB, opts ...Option) (*App, error) {
	keys := storetypes.NewKVStoreKeys(dextypes.StoreKey, ledger.StoreKey)

	cms := store.NewCommitMultiStore(db, logger, metrics.NewNoOpMetrics())
	for _, key := range keys {
		cms.MountStoreWithDB(key, storetypes.StoreTypeIAVL, nil)
	}
	if err := cms.LoadLatestVersion(); err != nil {
		return nil, fmt.Errorf("load latest version: %w", err)
	}

	a := &App{
		logger: logger.With("module", "app"),
		db:     db,
		cms:    cms,
		now:    func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(a)
	}
	if a.tracer == nil {
		a.tracer = (*telemetry.Provider)(nil).Tracer()
	}

	a.LedgerKeeper = ledger.NewKeeper(keys[ledger.StoreKey])
	a.DexKeeper = dexkeeper.NewKeeper(dextypes.ModuleCdc, keys[dextypes.StoreKey], a.LedgerKeeper)
	a.msgServer = dexkeeper.NewMsgServerImpl(a.DexKeeper)

	a.logger.Info("state loaded", "height", a.Height())
	return a, nil
}

// Close releases the database
func (a *App) Close() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.db.Close()
}

// Height returns the last committed height
func (a *App) Height() int64 {
	return a.cms.LastCommitID().Version
}

func (a *App) newContext(ctx context.Context, ms storetypes.MultiStore, height int64) sdk.Context {
	header := cmtproto.Header{ChainID: appName, Height: height, Time: a.now()}
	return sdk.NewContext(ms, header, false, a.logger).WithContext(ctx)
}

// Exec runs fn as the body of the next block on a cache branch, then the
// dex EndBlocker. The branch is committed only if both succeed.
func (a *App) Exec(ctx context.Context, fn func(sdk.Context) error) (sdk.Events, error) {
	return a.execBlock(ctx, fn, true)
}

// execBlock is Exec with the EndBlocker optional. A block whose body already
// ran the distributor skips it so markets are not settled twice.
func (a *App) execBlock(ctx context.Context, fn func(sdk.Context) error, endBlock bool) (sdk.Events, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	height := a.Height() + 1
	ctx, span := telemetry.StartBlockSpan(ctx, a.tracer, height)
	defer span.End()

	cache := a.cms.CacheMultiStore()
	sdkCtx := a.newContext(ctx, cache, height)

	if err := fn(sdkCtx); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	if endBlock {
		if err := a.DexKeeper.EndBlocker(sdkCtx); err != nil {
			telemetry.RecordError(span, err)
			return nil, err
		}
	}

	cache.Write()
	commitID := a.cms.Commit()
	a.logger.Debug("committed block", "height", commitID.Version, "hash", fmt.Sprintf("%X", commitID.Hash))
	return sdkCtx.EventManager().Events(), nil
}

// Query runs fn against the last committed state. Writes made by fn are
// discarded.
func (a *App) Query(ctx context.Context, fn func(sdk.Context) error) error {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return fn(a.newContext(ctx, a.cms.CacheMultiStore(), a.Height()))
}

// Querier returns the dex read views
func (a *App) Querier() dexkeeper.Querier {
	return dexkeeper.NewQuerier(a.DexKeeper)
}

// DeliverMsg executes one message as a block
func (a *App) DeliverMsg(ctx context.Context, msg dextypes.Msg) (*TxResult, error) {
	result := &TxResult{}
	events, err := a.Exec(ctx, func(sdkCtx sdk.Context) error {
		var err error
		result.Height = sdkCtx.BlockHeight()
		result.Response, err = dexkeeper.HandleMsg(sdkCtx, a.msgServer, msg)
		return err
	})
	if err != nil {
		return nil, err
	}
	result.Events = events
	return result, nil
}

// DistributeFees runs the fee distributor as a block in place of the
// EndBlocker. Markets that settled are committed even when others failed;
// the failures are returned.
func (a *App) DistributeFees(ctx context.Context) (dexkeeper.DistributionReport, error) {
	var (
		report  dexkeeper.DistributionReport
		distErr error
	)
	_, err := a.execBlock(ctx, func(sdkCtx sdk.Context) error {
		spanCtx, span := telemetry.StartModuleSpan(sdkCtx.Context(), a.tracer, dextypes.ModuleName, "distribute_fees")
		defer span.End()

		report, distErr = a.DexKeeper.DistributeFees(sdkCtx.WithContext(spanCtx))
		span.SetAttributes(
			attribute.Int("dex.markets_settled", len(report.Settled)),
			attribute.Int("dex.markets_failed", len(report.Failed)),
		)
		telemetry.RecordError(span, distErr)
		return nil
	}, false)
	if err != nil {
		return report, err
	}
	return report, distErr
}

// Mint credits coins to an account on the store ledger
func (a *App) Mint(ctx context.Context, account sdk.AccAddress, coins sdk.Coins) error {
	if err := coins.Validate(); err != nil {
		return ledger.ErrInvalidCoin.Wrap(err.Error())
	}
	_, err := a.Exec(ctx, func(sdkCtx sdk.Context) error {
		for _, c := range coins {
			if err := a.LedgerKeeper.Mint(sdkCtx, c.Denom, account, c.Amount); err != nil {
				return err
			}
		}
		return nil
	})
	return err
}

// Balances returns every balance held by account
func (a *App) Balances(ctx context.Context, account sdk.AccAddress) (sdk.Coins, error) {
	var coins sdk.Coins
	err := a.Query(ctx, func(sdkCtx sdk.Context) error {
		coins = a.LedgerKeeper.GetAllBalances(sdkCtx, account)
		return nil
	})
	return coins, err
}

// CheckInvariants runs every dex invariant against committed state
func (a *App) CheckInvariants(ctx context.Context) (string, bool) {
	var (
		msg    string
		broken bool
	)
	_ = a.Query(ctx, func(sdkCtx sdk.Context) error {
		msg, broken = a.checkInvariants(sdkCtx)
		return nil
	})
	return msg, broken
}

func (a *App) checkInvariants(sdkCtx sdk.Context) (string, bool) {
	return dexkeeper.AllInvariants(*a.DexKeeper)(sdkCtx)
}
