package api

import (
	"errors"
	"fmt"
	"net/http"

	errorsmod "cosmossdk.io/errors"
	"cosmossdk.io/math"
	sdk "github.com/cosmos/cosmos-sdk/types"
	"github.com/gin-gonic/gin"

	"github.com/paw-chain/pawdex/x/dex/keeper"
	"github.com/paw-chain/pawdex/x/dex/types"
)

// query runs fn against committed state and writes its result as JSON
func (s *Server) query(c *gin.Context, fn func(ctx sdk.Context, q keeper.Querier) (any, error)) {
	var res any
	err := s.backend.Query(c.Request.Context(), func(ctx sdk.Context) error {
		var err error
		res, err = fn(ctx, s.backend.Querier())
		return err
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func writeError(c *gin.Context, err error) {
	codespace, code, _ := errorsmod.ABCIInfo(err, false)
	c.JSON(statusFor(err), ErrorResponse{
		Error: err.Error(),
		Code:  fmt.Sprintf("%s:%d", codespace, code),
	})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, types.ErrMarketDoesNotExist):
		return http.StatusNotFound
	case errors.Is(err, types.ErrInvalidMarket),
		errors.Is(err, types.ErrInvalidAddress),
		errors.Is(err, types.ErrInvalidAmount),
		errors.Is(err, types.ErrInvalidSide):
		return http.StatusBadRequest
	case errors.Is(err, types.ErrEmptyReserve),
		errors.Is(err, types.ErrArithmetic):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

func marketParam(c *gin.Context) types.Market {
	return types.NewMarket(c.Param("base"), c.Param("quote"))
}

// handleGetParams returns the module parameters
func (s *Server) handleGetParams(c *gin.Context) {
	s.query(c, func(ctx sdk.Context, q keeper.Querier) (any, error) {
		return q.Params(ctx)
	})
}

// handleGetMarkets lists every market and its pool
func (s *Server) handleGetMarkets(c *gin.Context) {
	s.query(c, func(ctx sdk.Context, q keeper.Querier) (any, error) {
		return q.Pools(ctx)
	})
}

// handleGetMarket returns one market's pool state
func (s *Server) handleGetMarket(c *gin.Context) {
	market := marketParam(c)
	s.query(c, func(ctx sdk.Context, q keeper.Querier) (any, error) {
		return q.Pool(ctx, market)
	})
}

// handleGetPrice returns the current price of a market
func (s *Server) handleGetPrice(c *gin.Context) {
	market := marketParam(c)
	s.query(c, func(ctx sdk.Context, q keeper.Querier) (any, error) {
		price, err := q.Price(ctx, market)
		if err != nil {
			return nil, err
		}
		return newPriceResponse(price, ctx.BlockHeight()), nil
	})
}

func newPriceResponse(price *types.QueryPriceResponse, height int64) PriceResponse {
	return PriceResponse{
		Base:        price.Market.Base,
		Quote:       price.Market.Quote,
		Numerator:   price.Numerator.String(),
		Denominator: price.Denominator.String(),
		Price:       price.Price,
		Height:      height,
	}
}

// handleGetPosition returns a provider's position in a market
func (s *Server) handleGetPosition(c *gin.Context) {
	market := marketParam(c)
	address := c.Param("address")
	s.query(c, func(ctx sdk.Context, q keeper.Querier) (any, error) {
		return q.Position(ctx, market, address)
	})
}

// handleSimulate prices a trade, e.g. ?side=buy&amount=1000
func (s *Server) handleSimulate(c *gin.Context) {
	market := marketParam(c)
	side, err := types.ParseSide(c.Query("side"))
	if err != nil {
		writeError(c, err)
		return
	}
	amount, ok := math.NewIntFromString(c.Query("amount"))
	if !ok {
		writeError(c, types.ErrInvalidAmount.Wrapf("amount %q is not an integer", c.Query("amount")))
		return
	}
	s.query(c, func(ctx sdk.Context, q keeper.Querier) (any, error) {
		return q.Simulate(ctx, market, side, amount)
	})
}
