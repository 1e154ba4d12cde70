package types

import (
	"cosmossdk.io/errors"
)

// DEX module sentinel errors
var (
	ErrMarketExists           = errors.Register(ModuleName, 1, "market already exists")
	ErrMarketDoesNotExist     = errors.Register(ModuleName, 2, "market does not exist")
	ErrNotEnoughBalance       = errors.Register(ModuleName, 3, "not enough balance")
	ErrArithmetic             = errors.Register(ModuleName, 4, "arithmetic error")
	ErrTransfer               = errors.Register(ModuleName, 5, "asset transfer failed")
	ErrInvalidMarket          = errors.Register(ModuleName, 6, "invalid market")
	ErrInvalidAmount          = errors.Register(ModuleName, 7, "invalid amount")
	ErrEmptyReserve           = errors.Register(ModuleName, 8, "pool reserve is empty")
	ErrInvalidParams          = errors.Register(ModuleName, 9, "invalid params")
	ErrDistributionInProgress = errors.Register(ModuleName, 10, "fee distribution already running for market")
	ErrInvalidAddress         = errors.Register(ModuleName, 11, "invalid address")
	ErrInvalidGenesis         = errors.Register(ModuleName, 12, "invalid genesis state")
	ErrInvalidSide            = errors.Register(ModuleName, 13, "invalid trade side")
)
