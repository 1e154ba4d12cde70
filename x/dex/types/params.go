package types

import (
	"fmt"

	"cosmossdk.io/math"
)

const (
	DefaultTakerFeeNumerator    uint64 = 1
	DefaultTakerFeeDenominator  uint64 = 1000
	DefaultDistributionInterval int64  = 100
	DefaultMaxMarketsPerRun     uint32 = 0
)

// TakerFee is the fraction of every trade's input withheld for liquidity providers.
type TakerFee struct {
	Numerator   uint64 `json:"numerator"`
	Denominator uint64 `json:"denominator"`
}

// NewTakerFee returns numerator/denominator
func NewTakerFee(numerator, denominator uint64) TakerFee {
	return TakerFee{Numerator: numerator, Denominator: denominator}
}

// Validate requires a non-zero denominator and a fee below 100%
func (f TakerFee) Validate() error {
	if f.Denominator == 0 {
		return ErrInvalidParams.Wrap("taker fee denominator must be positive")
	}
	if f.Numerator >= f.Denominator {
		return ErrInvalidParams.Wrapf("taker fee %d/%d must be below one", f.Numerator, f.Denominator)
	}
	return nil
}

func (f TakerFee) String() string {
	return fmt.Sprintf("%d/%d", f.Numerator, f.Denominator)
}

// Params defines the parameters for the dex module
type Params struct {
	TakerFee TakerFee `json:"taker_fee"`
	// DistributionInterval is the number of blocks between automatic fee
	// distributions. Zero disables the EndBlocker trigger.
	DistributionInterval int64 `json:"distribution_interval"`
	// MaxMarketsPerRun bounds how many markets one distribution run settles.
	// Zero means every market with collected fees.
	MaxMarketsPerRun uint32 `json:"max_markets_per_run"`
}

// DefaultParams returns default parameters
func DefaultParams() Params {
	return Params{
		TakerFee:             NewTakerFee(DefaultTakerFeeNumerator, DefaultTakerFeeDenominator),
		DistributionInterval: DefaultDistributionInterval,
		MaxMarketsPerRun:     DefaultMaxMarketsPerRun,
	}
}

// Validate validates the params
func (p Params) Validate() error {
	if err := p.TakerFee.Validate(); err != nil {
		return err
	}
	if p.DistributionInterval < 0 {
		return ErrInvalidParams.Wrapf("distribution interval %d is negative", p.DistributionInterval)
	}
	return nil
}

// FeeFromAmount returns floor(amount * fee.Numerator / fee.Denominator).
func FeeFromAmount(amount math.Int, fee TakerFee) (math.Int, error) {
	if fee.Denominator == 0 {
		return math.Int{}, ErrArithmetic.Wrap("taker fee denominator is zero")
	}
	return CheckedMulDiv(amount, math.NewIntFromUint64(fee.Numerator), math.NewIntFromUint64(fee.Denominator))
}
