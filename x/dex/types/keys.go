package types

import (
	"fmt"

	"github.com/cosmos/cosmos-sdk/types/address"
)

const (
	// ModuleName defines the module name
	ModuleName = "dex"

	// StoreKey defines the primary module store key
	StoreKey = ModuleName

	// FeeAccountName derives the fee sub-account from the module account
	FeeAccountName = "fees"
)

// Store key prefixes
var (
	PoolKeyPrefix         = []byte{0x01} // market -> PoolState
	PositionKeyPrefix     = []byte{0x02} // market | provider -> LiquidityPosition
	ParamsKey             = []byte{0x03}
	DistributionCursorKey = []byte{0x04} // market key of the last market settled by a bounded run
)

// MarketKey encodes a market as two length-prefixed denoms. The encoding is
// prefix free, so positions of one market never collide with another's.
func MarketKey(m Market) []byte {
	key := address.MustLengthPrefix([]byte(m.Base))
	return append(key, address.MustLengthPrefix([]byte(m.Quote))...)
}

// PoolKey returns the store key for a market's pool state
func PoolKey(m Market) []byte {
	return append(append([]byte{}, PoolKeyPrefix...), MarketKey(m)...)
}

// PositionsPrefix returns the prefix under which all positions of a market live
func PositionsPrefix(m Market) []byte {
	return append(append([]byte{}, PositionKeyPrefix...), MarketKey(m)...)
}

// PositionKey returns the store key of a provider's position in a market
func PositionKey(m Market, provider []byte) []byte {
	return append(PositionsPrefix(m), address.MustLengthPrefix(provider)...)
}

// ParseMarketKey decodes a market key and returns the bytes following it.
func ParseMarketKey(bz []byte) (Market, []byte, error) {
	base, rest, err := readLengthPrefixed(bz)
	if err != nil {
		return Market{}, nil, fmt.Errorf("base denom: %w", err)
	}
	quote, rest, err := readLengthPrefixed(rest)
	if err != nil {
		return Market{}, nil, fmt.Errorf("quote denom: %w", err)
	}
	return Market{Base: string(base), Quote: string(quote)}, rest, nil
}

// ParsePositionKey splits a position key (without the store prefix) into
// its market and provider address.
func ParsePositionKey(bz []byte) (Market, []byte, error) {
	m, rest, err := ParseMarketKey(bz)
	if err != nil {
		return Market{}, nil, err
	}
	provider, rest, err := readLengthPrefixed(rest)
	if err != nil {
		return Market{}, nil, fmt.Errorf("provider: %w", err)
	}
	if len(rest) != 0 {
		return Market{}, nil, fmt.Errorf("trailing %d bytes after provider", len(rest))
	}
	return m, provider, nil
}

func readLengthPrefixed(bz []byte) ([]byte, []byte, error) {
	if len(bz) == 0 {
		return nil, nil, fmt.Errorf("empty key")
	}
	n := int(bz[0])
	if len(bz) < 1+n {
		return nil, nil, fmt.Errorf("key too short: want %d bytes, have %d", n, len(bz)-1)
	}
	return bz[1 : 1+n], bz[1+n:], nil
}
