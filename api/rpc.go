package api

import (
	"encoding/json"
	"fmt"
	"net/http"

	sdk "github.com/cosmos/cosmos-sdk/types"
	"github.com/gin-gonic/gin"

	"github.com/paw-chain/pawdex/x/dex/types"
)

const methodCurrentPrice = "dex_currentPrice"

// handleRPC serves JSON-RPC 2.0 calls. The only method is dex_currentPrice,
// which takes a market as [base, quote] and returns the price as a float.
func (s *Server) handleRPC(c *gin.Context) {
	var req RPCRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusOK, rpcError(nil, RPCCodeParseError, err.Error()))
		return
	}
	if req.JSONRPC != "2.0" {
		c.JSON(http.StatusOK, rpcError(req.ID, RPCCodeInvalidRequest, `jsonrpc must be "2.0"`))
		return
	}

	switch req.Method {
	case methodCurrentPrice:
		market, err := parseMarketParams(req.Params)
		if err != nil {
			c.JSON(http.StatusOK, rpcError(req.ID, RPCCodeInvalidParams, err.Error()))
			return
		}
		var price *types.QueryPriceResponse
		err = s.backend.Query(c.Request.Context(), func(ctx sdk.Context) error {
			var err error
			price, err = s.backend.Querier().Price(ctx, market)
			return err
		})
		if err != nil {
			c.JSON(http.StatusOK, rpcError(req.ID, RPCCodeQueryFailed, err.Error()))
			return
		}
		c.JSON(http.StatusOK, RPCResponse{JSONRPC: "2.0", Result: price.Price, ID: req.ID})
	default:
		c.JSON(http.StatusOK, rpcError(req.ID, RPCCodeMethodNotFound, fmt.Sprintf("method %q not found", req.Method)))
	}
}

func rpcError(id json.RawMessage, code int, msg string) RPCResponse {
	if id == nil {
		id = json.RawMessage("null")
	}
	return RPCResponse{JSONRPC: "2.0", Error: &RPCError{Code: code, Message: msg}, ID: id}
}

// parseMarketParams accepts [["base","quote"]], ["base","quote"] or
// {"market":["base","quote"]}.
func parseMarketParams(raw json.RawMessage) (types.Market, error) {
	var nested [][2]string
	if err := json.Unmarshal(raw, &nested); err == nil && len(nested) == 1 {
		return types.NewMarket(nested[0][0], nested[0][1]), nil
	}
	var flat []string
	if err := json.Unmarshal(raw, &flat); err == nil && len(flat) == 2 {
		return types.NewMarket(flat[0], flat[1]), nil
	}
	var named struct {
		Market [2]string `json:"market"`
	}
	if err := json.Unmarshal(raw, &named); err == nil && named.Market[0] != "" {
		return types.NewMarket(named.Market[0], named.Market[1]), nil
	}
	return types.Market{}, fmt.Errorf("expected market as [base, quote]")
}
