// Package ledger provides the asset ledgers the dex module settles against:
// a store-backed ledger for standalone hosts and tests, and an adapter over
// the SDK bank keeper for chains that already run x/bank.
package ledger

import (
	"context"
	"fmt"

	"cosmossdk.io/errors"
	"cosmossdk.io/math"
	storetypes "cosmossdk.io/store/types"
	sdk "github.com/cosmos/cosmos-sdk/types"
	"github.com/cosmos/cosmos-sdk/types/address"

	"github.com/paw-chain/pawdex/x/dex/types"
)

const (
	// StoreKey is the store used for balances
	StoreKey = "ledger"

	// ModuleName is the error codespace of the ledger
	ModuleName = "ledger"
)

var (
	BalancePrefix = []byte{0x01} // addr | denom -> amount
	SupplyPrefix  = []byte{0x02} // denom -> total minted
)

var (
	ErrInsufficientFunds = errors.Register(ModuleName, 1, "insufficient funds")
	ErrInvalidCoin       = errors.Register(ModuleName, 2, "invalid coin")
	ErrCorruptBalance    = errors.Register(ModuleName, 3, "corrupt balance entry")
)

var _ types.Ledger = Keeper{}

// Keeper keeps balances per (account, denom) in its own KV store. Writes go
// through the context's multistore, so they share the caller's cache branch.
type Keeper struct {
	storeKey storetypes.StoreKey
}

// NewKeeper creates a new ledger Keeper instance
func NewKeeper(key storetypes.StoreKey) Keeper {
	return Keeper{storeKey: key}
}

func (k Keeper) getStore(ctx context.Context) storetypes.KVStore {
	return sdk.UnwrapSDKContext(ctx).KVStore(k.storeKey)
}

func balanceKey(addr sdk.AccAddress, denom string) []byte {
	key := append(append([]byte{}, BalancePrefix...), address.MustLengthPrefix(addr)...)
	return append(key, []byte(denom)...)
}

func supplyKey(denom string) []byte {
	return append(append([]byte{}, SupplyPrefix...), []byte(denom)...)
}

func (k Keeper) get(store storetypes.KVStore, key []byte) (math.Int, error) {
	bz := store.Get(key)
	if bz == nil {
		return math.ZeroInt(), nil
	}
	var amt math.Int
	if err := amt.Unmarshal(bz); err != nil {
		return math.Int{}, ErrCorruptBalance.Wrapf("key %X: %s", key, err)
	}
	if amt.IsNil() {
		return math.ZeroInt(), nil
	}
	return amt, nil
}

func (k Keeper) set(store storetypes.KVStore, key []byte, amt math.Int) error {
	if amt.IsZero() {
		store.Delete(key)
		return nil
	}
	bz, err := amt.Marshal()
	if err != nil {
		return fmt.Errorf("marshal amount: %w", err)
	}
	store.Set(key, bz)
	return nil
}

// Balance returns the account's balance of asset, zero when absent or unreadable.
func (k Keeper) Balance(ctx context.Context, asset string, account sdk.AccAddress) math.Int {
	amt, err := k.get(k.getStore(ctx), balanceKey(account, asset))
	if err != nil {
		sdk.UnwrapSDKContext(ctx).Logger().Error("ledger: unreadable balance", "account", account.String(), "asset", asset, "error", err)
		return math.ZeroInt()
	}
	return amt
}

// Transfer moves amount of asset from one account to another. Either both
// balances change or neither does.
func (k Keeper) Transfer(ctx context.Context, asset string, from, to sdk.AccAddress, amount math.Int) error {
	if err := validateCoin(asset, amount); err != nil {
		return err
	}
	if amount.IsZero() || from.Equals(to) {
		return nil
	}

	store := k.getStore(ctx)
	fromKey, toKey := balanceKey(from, asset), balanceKey(to, asset)

	fromBal, err := k.get(store, fromKey)
	if err != nil {
		return err
	}
	if fromBal.LT(amount) {
		return ErrInsufficientFunds.Wrapf("%s has %s%s, needs %s%s", from, fromBal, asset, amount, asset)
	}
	toBal, err := k.get(store, toKey)
	if err != nil {
		return err
	}
	newTo, err := types.CheckedAdd(toBal, amount)
	if err != nil {
		return err
	}

	if err := k.set(store, fromKey, fromBal.Sub(amount)); err != nil {
		return err
	}
	return k.set(store, toKey, newTo)
}

// Mint credits new units of asset to account and grows the recorded supply.
func (k Keeper) Mint(ctx context.Context, asset string, account sdk.AccAddress, amount math.Int) error {
	if err := validateCoin(asset, amount); err != nil {
		return err
	}
	store := k.getStore(ctx)

	supply, err := k.get(store, supplyKey(asset))
	if err != nil {
		return err
	}
	newSupply, err := types.CheckedAdd(supply, amount)
	if err != nil {
		return err
	}
	bal, err := k.get(store, balanceKey(account, asset))
	if err != nil {
		return err
	}
	newBal, err := types.CheckedAdd(bal, amount)
	if err != nil {
		return err
	}

	if err := k.set(store, supplyKey(asset), newSupply); err != nil {
		return err
	}
	return k.set(store, balanceKey(account, asset), newBal)
}

// Supply returns the total amount of asset ever minted
func (k Keeper) Supply(ctx context.Context, asset string) math.Int {
	amt, err := k.get(k.getStore(ctx), supplyKey(asset))
	if err != nil {
		return math.ZeroInt()
	}
	return amt
}

// GetAllBalances returns every non-zero balance held by account
func (k Keeper) GetAllBalances(ctx context.Context, account sdk.AccAddress) sdk.Coins {
	prefix := append(append([]byte{}, BalancePrefix...), address.MustLengthPrefix(account)...)
	iterator := storetypes.KVStorePrefixIterator(k.getStore(ctx), prefix)
	defer iterator.Close()

	coins := sdk.NewCoins()
	for ; iterator.Valid(); iterator.Next() {
		denom := string(iterator.Key()[len(prefix):])
		var amt math.Int
		if err := amt.Unmarshal(iterator.Value()); err != nil || amt.IsNil() {
			continue
		}
		coins = coins.Add(sdk.NewCoin(denom, amt))
	}
	return coins
}

// IterateBalances visits every (account, coin) pair until cb returns true.
func (k Keeper) IterateBalances(ctx context.Context, cb func(account sdk.AccAddress, coin sdk.Coin) (stop bool)) error {
	iterator := storetypes.KVStorePrefixIterator(k.getStore(ctx), BalancePrefix)
	defer iterator.Close()

	for ; iterator.Valid(); iterator.Next() {
		key := iterator.Key()[len(BalancePrefix):]
		if len(key) == 0 || len(key) < 1+int(key[0]) {
			return ErrCorruptBalance.Wrapf("key %X", iterator.Key())
		}
		addr := sdk.AccAddress(key[1 : 1+int(key[0])])
		denom := string(key[1+int(key[0]):])

		var amt math.Int
		if err := amt.Unmarshal(iterator.Value()); err != nil {
			return ErrCorruptBalance.Wrapf("key %X: %s", iterator.Key(), err)
		}
		if cb(addr, sdk.NewCoin(denom, amt)) {
			return nil
		}
	}
	return nil
}

func validateCoin(asset string, amount math.Int) error {
	if err := sdk.ValidateDenom(asset); err != nil {
		return ErrInvalidCoin.Wrap(err.Error())
	}
	if err := types.ValidateAmount(amount); err != nil {
		return ErrInvalidCoin.Wrap(err.Error())
	}
	return nil
}
