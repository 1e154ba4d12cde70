package types

import (
	"math/big"

	"cosmossdk.io/math"
)

// QueryPoolResponse is a market and its pool state
type QueryPoolResponse struct {
	Market Market    `json:"market"`
	Pool   PoolState `json:"pool"`
}

// QueryPoolsResponse lists every market
type QueryPoolsResponse struct {
	Pools []QueryPoolResponse `json:"pools"`
}

// QueryPositionResponse is one provider's position in a market
type QueryPositionResponse struct {
	Market   Market            `json:"market"`
	Provider string            `json:"provider"`
	Position LiquidityPosition `json:"position"`
}

// QueryPriceResponse is the spot price of one base unit in quote.
type QueryPriceResponse struct {
	Market      Market   `json:"market"`
	Numerator   math.Int `json:"numerator"`
	Denominator math.Int `json:"denominator"`
	Price       float64  `json:"price"`
}

// NewQueryPriceResponse fills Price from the rational. A zero denominator
// yields a zero price.
func NewQueryPriceResponse(market Market, numerator, denominator math.Int) QueryPriceResponse {
	return QueryPriceResponse{
		Market:      market,
		Numerator:   numerator,
		Denominator: denominator,
		Price:       RatioToFloat(numerator, denominator),
	}
}

// RatioToFloat approximates numerator/denominator as a float64
func RatioToFloat(numerator, denominator math.Int) float64 {
	if numerator.IsNil() || denominator.IsNil() || denominator.IsZero() {
		return 0
	}
	f, _ := new(big.Rat).SetFrac(numerator.BigInt(), denominator.BigInt()).Float64()
	return f
}
