package types

import (
	"fmt"

	"cosmossdk.io/math"
)

// PoolState holds a market's reserves and the taker fees collected since the
// last distribution.
type PoolState struct {
	BaseReserve        math.Int `json:"base_reserve"`
	QuoteReserve       math.Int `json:"quote_reserve"`
	CollectedBaseFees  math.Int `json:"collected_base_fees"`
	CollectedQuoteFees math.Int `json:"collected_quote_fees"`
}

// NewPoolState returns a freshly bootstrapped pool with no collected fees
func NewPoolState(baseReserve, quoteReserve math.Int) PoolState {
	return PoolState{
		BaseReserve:        baseReserve,
		QuoteReserve:       quoteReserve,
		CollectedBaseFees:  math.ZeroInt(),
		CollectedQuoteFees: math.ZeroInt(),
	}
}

// Normalize replaces unset amounts with zero. Decoded zero values come back
// nil from the codec.
func (p PoolState) Normalize() PoolState {
	p.BaseReserve = orZero(p.BaseReserve)
	p.QuoteReserve = orZero(p.QuoteReserve)
	p.CollectedBaseFees = orZero(p.CollectedBaseFees)
	p.CollectedQuoteFees = orZero(p.CollectedQuoteFees)
	return p
}

// Validate checks every amount is non-negative and within MaxAmount
func (p PoolState) Validate() error {
	fields := []struct {
		name string
		x    math.Int
	}{
		{"base reserve", p.BaseReserve},
		{"quote reserve", p.QuoteReserve},
		{"collected base fees", p.CollectedBaseFees},
		{"collected quote fees", p.CollectedQuoteFees},
	}
	for _, f := range fields {
		if err := ValidateAmount(f.x); err != nil {
			return fmt.Errorf("%s: %w", f.name, err)
		}
	}
	return nil
}

// HasFees reports whether the distributor has anything to pay out
func (p PoolState) HasFees() bool {
	return p.CollectedBaseFees.IsPositive() || p.CollectedQuoteFees.IsPositive()
}

// Reserves returns (spent, received) reserves for a trade side
func (p PoolState) Reserves(side Side) (in, out math.Int) {
	if side == SideBuy {
		return p.QuoteReserve, p.BaseReserve
	}
	return p.BaseReserve, p.QuoteReserve
}

// ProductK returns base_reserve * quote_reserve
func (p PoolState) ProductK() (math.Int, error) {
	return CheckedMul(p.BaseReserve, p.QuoteReserve)
}

// LiquidityPosition is one provider's cumulative contribution to a market.
type LiquidityPosition struct {
	BaseContributed  math.Int `json:"base_contributed"`
	QuoteContributed math.Int `json:"quote_contributed"`
}

// NewLiquidityPosition returns a position with the given contribution
func NewLiquidityPosition(base, quote math.Int) LiquidityPosition {
	return LiquidityPosition{BaseContributed: base, QuoteContributed: quote}
}

// Normalize replaces unset amounts with zero
func (lp LiquidityPosition) Normalize() LiquidityPosition {
	lp.BaseContributed = orZero(lp.BaseContributed)
	lp.QuoteContributed = orZero(lp.QuoteContributed)
	return lp
}

// Validate checks both contributions
func (lp LiquidityPosition) Validate() error {
	if err := ValidateAmount(lp.BaseContributed); err != nil {
		return fmt.Errorf("base contributed: %w", err)
	}
	if err := ValidateAmount(lp.QuoteContributed); err != nil {
		return fmt.Errorf("quote contributed: %w", err)
	}
	return nil
}

// IsZero reports whether the position has been fully withdrawn
func (lp LiquidityPosition) IsZero() bool {
	return lp.BaseContributed.IsZero() && lp.QuoteContributed.IsZero()
}

func orZero(x math.Int) math.Int {
	if x.IsNil() {
		return math.ZeroInt()
	}
	return x
}
