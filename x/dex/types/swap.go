package types

import (
	"cosmossdk.io/math"
)

// GetReceiveAmount prices a trade against the constant-product curve.
//
// amount is the fee-deducted input. For SideBuy the input is quote and the
// output base; for SideSell the reverse. The pool keeps
// floor(K / (reserveIn + amount)) of the output asset.
func GetReceiveAmount(baseReserve, quoteReserve math.Int, side Side, amount math.Int) (math.Int, error) {
	if baseReserve.IsNil() || quoteReserve.IsNil() || amount.IsNil() {
		return math.Int{}, ErrArithmetic.Wrap("nil operand")
	}
	if !baseReserve.IsPositive() || !quoteReserve.IsPositive() {
		return math.Int{}, ErrEmptyReserve.Wrapf("base %s, quote %s", baseReserve, quoteReserve)
	}

	if err := side.Validate(); err != nil {
		return math.Int{}, err
	}
	reserveIn, reserveOut := PoolState{BaseReserve: baseReserve, QuoteReserve: quoteReserve}.Reserves(side)

	if amount.IsZero() {
		return math.ZeroInt(), nil
	}

	k, err := CheckedMul(reserveIn, reserveOut)
	if err != nil {
		return math.Int{}, err
	}
	newIn, err := CheckedAdd(reserveIn, amount)
	if err != nil {
		return math.Int{}, err
	}
	newOut, err := CheckedQuo(k, newIn)
	if err != nil {
		return math.Int{}, err
	}
	if newOut.GT(reserveOut) {
		return math.Int{}, ErrArithmetic.Wrapf("post-trade reserve %s exceeds %s", newOut, reserveOut)
	}
	return CheckedSub(reserveOut, newOut)
}

// TradeQuote is the full outcome of a trade before any state is touched.
type TradeQuote struct {
	Side Side `json:"side"`
	// Gross is what the taker pays in
	Gross math.Int `json:"gross"`
	// Fee is withheld from Gross for liquidity providers
	Fee math.Int `json:"fee"`
	// Net is Gross minus Fee and enters the spent reserve
	Net math.Int `json:"net"`
	// Receive leaves the received reserve for the taker
	Receive math.Int `json:"receive"`
}

// QuoteTrade applies the taker fee once and prices the remainder.
func QuoteTrade(pool PoolState, side Side, gross math.Int, fee TakerFee) (TradeQuote, error) {
	if err := ValidateAmount(gross); err != nil {
		return TradeQuote{}, err
	}
	feeAmount, err := FeeFromAmount(gross, fee)
	if err != nil {
		return TradeQuote{}, err
	}
	net, err := CheckedSub(gross, feeAmount)
	if err != nil {
		return TradeQuote{}, err
	}
	receive, err := GetReceiveAmount(pool.BaseReserve, pool.QuoteReserve, side, net)
	if err != nil {
		return TradeQuote{}, err
	}
	return TradeQuote{
		Side:    side,
		Gross:   gross,
		Fee:     feeAmount,
		Net:     net,
		Receive: receive,
	}, nil
}

// Apply returns the pool after the quoted trade settles: the net input joins
// the spent reserve, the output leaves the received reserve and the fee is
// added to the spent asset's collected counter.
func (q TradeQuote) Apply(pool PoolState) (PoolState, error) {
	var err error
	switch q.Side {
	case SideBuy:
		if pool.QuoteReserve, err = CheckedAdd(pool.QuoteReserve, q.Net); err != nil {
			return PoolState{}, err
		}
		if pool.BaseReserve, err = CheckedSub(pool.BaseReserve, q.Receive); err != nil {
			return PoolState{}, err
		}
		if pool.CollectedQuoteFees, err = CheckedAdd(pool.CollectedQuoteFees, q.Fee); err != nil {
			return PoolState{}, err
		}
	case SideSell:
		if pool.BaseReserve, err = CheckedAdd(pool.BaseReserve, q.Net); err != nil {
			return PoolState{}, err
		}
		if pool.QuoteReserve, err = CheckedSub(pool.QuoteReserve, q.Receive); err != nil {
			return PoolState{}, err
		}
		if pool.CollectedBaseFees, err = CheckedAdd(pool.CollectedBaseFees, q.Fee); err != nil {
			return PoolState{}, err
		}
	default:
		return PoolState{}, ErrInvalidSide.Wrapf("%d", q.Side)
	}
	return pool, nil
}
