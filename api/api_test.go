package api_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"cosmossdk.io/log"
	"cosmossdk.io/math"
	dbm "github.com/cosmos/cosmos-db"
	sdk "github.com/cosmos/cosmos-sdk/types"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/paw-chain/pawdex/api"
	"github.com/paw-chain/pawdex/app"
	keepertest "github.com/paw-chain/pawdex/testutil/keeper"
	dextypes "github.com/paw-chain/pawdex/x/dex/types"
)

var atomUsdc = dextypes.NewMarket("uatom", "uusdc")

type APITestSuite struct {
	suite.Suite
	app     *app.App
	handler http.Handler
	alice   sdk.AccAddress
}

func TestAPITestSuite(t *testing.T) {
	suite.Run(t, new(APITestSuite))
}

func newApp(t *testing.T) *app.App {
	a, err := app.New(log.NewNopLogger(), dbm.NewMemDB())
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.Close() })
	return a
}

func (s *APITestSuite) SetupTest() {
	ctx := context.Background()
	s.app = newApp(s.T())
	s.alice = keepertest.TestAddr("alice")

	s.Require().NoError(s.app.InitChain(ctx, app.NewDefaultGenesisState(dextypes.DefaultParams())))
	s.Require().NoError(s.app.Mint(ctx, s.alice, sdk.NewCoins(sdk.NewInt64Coin("uatom", 100_000), sdk.NewInt64Coin("uusdc", 100_000))))
	_, err := s.app.DeliverMsg(ctx, dextypes.NewMsgCreateMarketPool(s.alice.String(), atomUsdc, math.NewInt(100_000), math.NewInt(100_000)))
	s.Require().NoError(err)

	cfg := api.DefaultConfig()
	cfg.RateLimitRPS = 0
	s.handler = api.NewServer(s.app, cfg, log.NewNopLogger()).Handler()
}

func (s *APITestSuite) get(path string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func (s *APITestSuite) rpc(body string) api.RPCResponse {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/rpc", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	s.handler.ServeHTTP(rec, req)
	s.Require().Equal(http.StatusOK, rec.Code)

	var resp api.RPCResponse
	s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &resp))
	s.Require().Equal("2.0", resp.JSONRPC)
	return resp
}

func (s *APITestSuite) TestMarkets() {
	rec := s.get("/api/v1/markets")
	s.Require().Equal(http.StatusOK, rec.Code)

	var resp dextypes.QueryPoolsResponse
	s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &resp))
	s.Require().Len(resp.Pools, 1)
	s.Require().Equal(atomUsdc, resp.Pools[0].Market)
	s.Require().Equal("100000", resp.Pools[0].Pool.BaseReserve.String())
}

func (s *APITestSuite) TestMarket() {
	rec := s.get("/api/v1/markets/uatom/uusdc")
	s.Require().Equal(http.StatusOK, rec.Code)
	s.Require().Contains(rec.Body.String(), `"quote_reserve":"100000"`)

	rec = s.get("/api/v1/markets/uusdc/uatom")
	s.Require().Equal(http.StatusNotFound, rec.Code)

	var resp api.ErrorResponse
	s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &resp))
	s.Require().Equal("dex:2", resp.Code)
}

func (s *APITestSuite) TestPrice() {
	rec := s.get("/api/v1/markets/uatom/uusdc/price")
	s.Require().Equal(http.StatusOK, rec.Code)

	var resp api.PriceResponse
	s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &resp))
	s.Require().Equal("uatom", resp.Base)
	s.Require().Equal("100000", resp.Numerator)
	s.Require().Equal("100000", resp.Denominator)
	s.Require().InDelta(1.0, resp.Price, 1e-9)
	s.Require().Equal(s.app.Height(), resp.Height)
}

func (s *APITestSuite) TestPosition() {
	rec := s.get("/api/v1/markets/uatom/uusdc/positions/" + s.alice.String())
	s.Require().Equal(http.StatusOK, rec.Code)

	var resp dextypes.QueryPositionResponse
	s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &resp))
	s.Require().Equal("100000", resp.Position.BaseContributed.String())
	s.Require().Equal("100000", resp.Position.QuoteContributed.String())

	rec = s.get("/api/v1/markets/uatom/uusdc/positions/not-an-address")
	s.Require().Equal(http.StatusBadRequest, rec.Code)
}

func (s *APITestSuite) TestSimulate() {
	rec := s.get("/api/v1/markets/uatom/uusdc/simulate?side=buy&amount=10000")
	s.Require().Equal(http.StatusOK, rec.Code)

	var quote dextypes.TradeQuote
	s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &quote))
	s.Require().Equal(dextypes.SideBuy, quote.Side)
	s.Require().Equal("10", quote.Fee.String())
	s.Require().Equal("9083", quote.Receive.String())

	for _, path := range []string{
		"/api/v1/markets/uatom/uusdc/simulate?side=hold&amount=1",
		"/api/v1/markets/uatom/uusdc/simulate?side=sell&amount=abc",
		"/api/v1/markets/uatom/uusdc/simulate?side=sell&amount=0",
	} {
		s.Require().Equal(http.StatusBadRequest, s.get(path).Code, path)
	}
}

func (s *APITestSuite) TestParams() {
	rec := s.get("/api/v1/params")
	s.Require().Equal(http.StatusOK, rec.Code)

	var params dextypes.Params
	s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &params))
	s.Require().Equal(dextypes.DefaultParams(), params)
}

func (s *APITestSuite) TestUnknownRoute() {
	s.Require().Equal(http.StatusNotFound, s.get("/api/v2/nothing").Code)
}

func (s *APITestSuite) TestRPCCurrentPrice() {
	for _, params := range []string{
		`[["uatom","uusdc"]]`,
		`["uatom","uusdc"]`,
		`{"market":["uatom","uusdc"]}`,
	} {
		resp := s.rpc(`{"jsonrpc":"2.0","id":7,"method":"dex_currentPrice","params":` + params + `}`)
		s.Require().Nil(resp.Error, params)
		s.Require().Equal("7", string(resp.ID))
		s.Require().InDelta(1.0, resp.Result, 1e-9)
	}
}

func (s *APITestSuite) TestRPCErrors() {
	testCases := []struct {
		name string
		body string
		code int
	}{
		{"malformed", `{"jsonrpc":`, api.RPCCodeParseError},
		{"wrong version", `{"jsonrpc":"1.0","id":1,"method":"dex_currentPrice"}`, api.RPCCodeInvalidRequest},
		{"unknown method", `{"jsonrpc":"2.0","id":1,"method":"dex_swap"}`, api.RPCCodeMethodNotFound},
		{"bad params", `{"jsonrpc":"2.0","id":1,"method":"dex_currentPrice","params":[1,2,3]}`, api.RPCCodeInvalidParams},
		{"missing market", `{"jsonrpc":"2.0","id":1,"method":"dex_currentPrice","params":[["uosmo","uusdc"]]}`, api.RPCCodeQueryFailed},
	}

	for _, tc := range testCases {
		s.Run(tc.name, func() {
			resp := s.rpc(tc.body)
			s.Require().NotNil(resp.Error)
			s.Require().Equal(tc.code, resp.Error.Code)
		})
	}
}

func (s *APITestSuite) TestRequestID() {
	rec := s.get("/api/v1/params")
	s.Require().NotEmpty(rec.Header().Get(api.RequestIDHeader))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/params", nil)
	req.Header.Set(api.RequestIDHeader, "abc-123")
	rec = httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	s.Require().Equal("abc-123", rec.Header().Get(api.RequestIDHeader))
	s.Require().Equal("nosniff", rec.Header().Get("X-Content-Type-Options"))
}

func (s *APITestSuite) TestCORSPreflight() {
	req := httptest.NewRequest(http.MethodOptions, "/api/v1/markets", nil)
	req.Header.Set("Origin", "https://example.com")
	req.Header.Set("Access-Control-Request-Method", http.MethodGet)
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	s.Require().Equal("*", rec.Header().Get("Access-Control-Allow-Origin"))
}

func (s *APITestSuite) TestMonitor() {
	handler := api.NewMonitor(s.app, s.app, log.NewNopLogger()).Handler()

	for _, path := range []string{"/health", "/health/ready", "/health/detailed"} {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		s.Require().Equal(http.StatusOK, rec.Code, path)
	}

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health/detailed", nil))
	var health api.HealthCheck
	s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &health))
	s.Require().Equal(api.StatusHealthy, health.Status)
	s.Require().Contains(health.Components, "invariants")
	s.Require().Equal(api.StatusHealthy, health.Components["invariants"].Status)

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	s.Require().Equal(http.StatusOK, rec.Code)
	s.Require().Contains(rec.Body.String(), "go_goroutines")
}

func TestMonitorNotReadyBeforeGenesis(t *testing.T) {
	a := newApp(t)
	handler := api.NewMonitor(a, nil, log.NewNopLogger()).Handler()

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health/ready", nil))
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestRateLimit(t *testing.T) {
	a := newApp(t)
	cfg := api.DefaultConfig()
	cfg.RateLimitRPS = 1
	cfg.RateLimitBurst = 1
	handler := api.NewServer(a, cfg, log.NewNopLogger()).Handler()

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/params", nil))
		codes = append(codes, rec.Code)
	}
	require.Equal(t, http.StatusOK, codes[0])
	require.Contains(t, codes[1:], http.StatusTooManyRequests)
}

func TestParseRPCParamsRejectsEmpty(t *testing.T) {
	a := newApp(t)
	handler := api.NewServer(a, nil, log.NewNopLogger()).Handler()

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/rpc", strings.NewReader(`{"jsonrpc":"2.0","id":"x","method":"dex_currentPrice"}`))
	handler.ServeHTTP(rec, req)

	var resp api.RPCResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotNil(t, resp.Error)
	require.Equal(t, api.RPCCodeInvalidParams, resp.Error.Code)
	require.Equal(t, `"x"`, string(resp.ID))
}
