package keeper

import "github.com/paw-chain/pawdex/x/dex/types"

// LockMarket holds the distribution guard of a market until the returned
// func is called.
func (k Keeper) LockMarket(m types.Market) (unlock func(), ok bool) {
	if !k.guard.tryAcquire(m) {
		return nil, false
	}
	return func() { k.guard.release(m) }, true
}

var IsDistributionHeight = isDistributionHeight
