package types

import "strings"

// Side is the direction of a trade, seen from the taker.
type Side int

const (
	// SideBuy spends quote and receives base
	SideBuy Side = iota
	// SideSell spends base and receives quote
	SideSell
)

func (s Side) String() string {
	switch s {
	case SideBuy:
		return "buy"
	case SideSell:
		return "sell"
	default:
		return "unknown"
	}
}

// Validate rejects anything other than SideBuy and SideSell
func (s Side) Validate() error {
	if s != SideBuy && s != SideSell {
		return ErrInvalidSide.Wrapf("%d", s)
	}
	return nil
}

// SpentAsset is the denom the taker pays into the pool
func (s Side) SpentAsset(m Market) string {
	if s == SideBuy {
		return m.Quote
	}
	return m.Base
}

// ReceivedAsset is the denom the pool pays out to the taker
func (s Side) ReceivedAsset(m Market) string {
	if s == SideBuy {
		return m.Base
	}
	return m.Quote
}

// ParseSide accepts "buy" or "sell", case-insensitively.
func ParseSide(str string) (Side, error) {
	switch strings.ToLower(strings.TrimSpace(str)) {
	case "buy":
		return SideBuy, nil
	case "sell":
		return SideSell, nil
	default:
		return 0, ErrInvalidSide.Wrapf("%q", str)
	}
}

// MarshalText encodes the side as "buy" or "sell"
func (s Side) MarshalText() ([]byte, error) {
	if s != SideBuy && s != SideSell {
		return nil, ErrInvalidSide.Wrapf("%d", int(s))
	}
	return []byte(s.String()), nil
}

// UnmarshalText accepts what ParseSide accepts
func (s *Side) UnmarshalText(text []byte) error {
	side, err := ParseSide(string(text))
	if err != nil {
		return err
	}
	*s = side
	return nil
}
