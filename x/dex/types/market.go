package types

import (
	"strings"

	sdk "github.com/cosmos/cosmos-sdk/types"
)

// Market is an ordered (base, quote) asset pair. (A, B) and (B, A) are
// different markets.
type Market struct {
	Base  string `json:"base"`
	Quote string `json:"quote"`
}

// NewMarket returns the market trading base against quote
func NewMarket(base, quote string) Market {
	return Market{Base: base, Quote: quote}
}

// Validate checks both denoms and that the pair is not degenerate
func (m Market) Validate() error {
	if err := sdk.ValidateDenom(m.Base); err != nil {
		return ErrInvalidMarket.Wrapf("base: %s", err)
	}
	if err := sdk.ValidateDenom(m.Quote); err != nil {
		return ErrInvalidMarket.Wrapf("quote: %s", err)
	}
	if m.Base == m.Quote {
		return ErrInvalidMarket.Wrapf("base and quote are both %s", m.Base)
	}
	return nil
}

func (m Market) String() string {
	return m.Base + "/" + m.Quote
}

// ParseMarket parses the "base/quote" form produced by String.
func ParseMarket(s string) (Market, error) {
	base, quote, ok := strings.Cut(s, "/")
	if !ok {
		return Market{}, ErrInvalidMarket.Wrapf("%q is not of the form base/quote", s)
	}
	m := NewMarket(base, quote)
	if err := m.Validate(); err != nil {
		return Market{}, err
	}
	return m, nil
}
