package keeper

import (
	"sync"

	"github.com/paw-chain/pawdex/x/dex/types"
)

// marketGuard marks markets whose fee counters are being paid out.
type marketGuard struct {
	mu     sync.Mutex
	active map[types.Market]struct{}
}

func newMarketGuard() *marketGuard {
	return &marketGuard{active: make(map[types.Market]struct{})}
}

// tryAcquire claims the market. It returns false if a payout batch for the
// market is already running.
func (g *marketGuard) tryAcquire(m types.Market) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	if _, busy := g.active[m]; busy {
		return false
	}
	g.active[m] = struct{}{}
	return true
}

func (g *marketGuard) release(m types.Market) {
	g.mu.Lock()
	delete(g.active, m)
	g.mu.Unlock()
}
