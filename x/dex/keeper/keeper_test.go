package keeper_test

import (
	"fmt"
	"testing"

	"cosmossdk.io/math"
	sdk "github.com/cosmos/cosmos-sdk/types"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	keepertest "github.com/paw-chain/pawdex/testutil/keeper"
	"github.com/paw-chain/pawdex/x/dex/keeper"
	"github.com/paw-chain/pawdex/x/dex/ledger"
	"github.com/paw-chain/pawdex/x/dex/types"
)

var (
	atomUsdc = types.NewMarket("uatom", "uusdc")
	usdcAtom = types.NewMarket("uusdc", "uatom")
)

type KeeperTestSuite struct {
	suite.Suite
	keeper *keeper.Keeper
	ledger ledger.Keeper
	ctx    sdk.Context

	creator sdk.AccAddress
	trader  sdk.AccAddress
}

func (suite *KeeperTestSuite) SetupTest() {
	suite.keeper, suite.ledger, suite.ctx = keepertest.DexKeeper(suite.T())
	suite.creator = keepertest.TestAddr("creator")
	suite.trader = keepertest.TestAddr("trader")
}

func TestKeeperTestSuite(t *testing.T) {
	suite.Run(t, new(KeeperTestSuite))
}

func (suite *KeeperTestSuite) balance(asset string, addr sdk.AccAddress) string {
	return suite.ledger.Balance(suite.ctx, asset, addr).String()
}

func (suite *KeeperTestSuite) pool(m types.Market) types.PoolState {
	pool, found, err := suite.keeper.GetPool(suite.ctx, m)
	suite.Require().NoError(err)
	suite.Require().True(found)
	return pool
}

func poolString(p types.PoolState) string {
	return fmt.Sprintf("%s/%s fees %s/%s", p.BaseReserve, p.QuoteReserve, p.CollectedBaseFees, p.CollectedQuoteFees)
}

func (suite *KeeperTestSuite) TestCreateMarketPool() {
	keepertest.CreateTestPool(suite.T(), suite.keeper, suite.ledger, suite.ctx, suite.creator, atomUsdc, math.NewInt(1_000), math.NewInt(2_000))

	pool := suite.pool(atomUsdc)
	suite.Require().Equal("1000", pool.BaseReserve.String())
	suite.Require().Equal("2000", pool.QuoteReserve.String())
	suite.Require().True(pool.CollectedBaseFees.IsZero())
	suite.Require().True(pool.CollectedQuoteFees.IsZero())

	pos, found, err := suite.keeper.GetPosition(suite.ctx, atomUsdc, suite.creator)
	suite.Require().NoError(err)
	suite.Require().True(found)
	suite.Require().Equal("1000", pos.BaseContributed.String())
	suite.Require().Equal("2000", pos.QuoteContributed.String())

	suite.Require().Equal("0", suite.balance("uatom", suite.creator))
	suite.Require().Equal("1000", suite.balance("uatom", suite.keeper.PoolAccount()))
	suite.Require().Equal("2000", suite.balance("uusdc", suite.keeper.PoolAccount()))
}

func (suite *KeeperTestSuite) TestCreateMarketPool_Twice() {
	keepertest.CreateTestPool(suite.T(), suite.keeper, suite.ledger, suite.ctx, suite.creator, atomUsdc, math.NewInt(1_000), math.NewInt(1_000))
	keepertest.Fund(suite.T(), suite.ledger, suite.ctx, suite.creator, sdk.NewInt64Coin("uatom", 500), sdk.NewInt64Coin("uusdc", 500))

	before := suite.pool(atomUsdc)
	err := suite.keeper.CreateMarketPool(suite.ctx, suite.creator, atomUsdc, math.NewInt(500), math.NewInt(500))
	suite.Require().ErrorIs(err, types.ErrMarketExists)

	suite.Require().Equal(poolString(before), poolString(suite.pool(atomUsdc)))
	suite.Require().Equal("500", suite.balance("uatom", suite.creator))
	suite.Require().Equal("1000", suite.balance("uatom", suite.keeper.PoolAccount()))
}

func (suite *KeeperTestSuite) TestCreateMarketPool_ReversedPairIsDistinct() {
	keepertest.CreateTestPool(suite.T(), suite.keeper, suite.ledger, suite.ctx, suite.creator, atomUsdc, math.NewInt(1_000), math.NewInt(1_000))
	keepertest.CreateTestPool(suite.T(), suite.keeper, suite.ledger, suite.ctx, suite.creator, usdcAtom, math.NewInt(300), math.NewInt(400))

	suite.Require().Equal("1000", suite.pool(atomUsdc).BaseReserve.String())
	suite.Require().Equal("300", suite.pool(usdcAtom).BaseReserve.String())
}

func (suite *KeeperTestSuite) TestCreateMarketPool_Validation() {
	keepertest.Fund(suite.T(), suite.ledger, suite.ctx, suite.creator, sdk.NewInt64Coin("uatom", 100), sdk.NewInt64Coin("uusdc", 100))

	err := suite.keeper.CreateMarketPool(suite.ctx, suite.creator, types.NewMarket("uatom", "uatom"), math.NewInt(1), math.NewInt(1))
	suite.Require().ErrorIs(err, types.ErrInvalidMarket)

	err = suite.keeper.CreateMarketPool(suite.ctx, suite.creator, atomUsdc, math.ZeroInt(), math.NewInt(1))
	suite.Require().ErrorIs(err, types.ErrInvalidAmount)

	err = suite.keeper.CreateMarketPool(suite.ctx, suite.creator, atomUsdc, math.NewInt(101), math.NewInt(1))
	suite.Require().ErrorIs(err, types.ErrNotEnoughBalance)

	suite.Require().False(suite.keeper.HasPool(suite.ctx, atomUsdc))
	suite.Require().Equal("100", suite.balance("uatom", suite.creator))
}

func (suite *KeeperTestSuite) TestDepositWithdrawRoundTrip() {
	keepertest.CreateTestPool(suite.T(), suite.keeper, suite.ledger, suite.ctx, suite.creator, atomUsdc, math.NewInt(1_000), math.NewInt(1_000))
	provider := keepertest.TestAddr("provider")
	keepertest.Fund(suite.T(), suite.ledger, suite.ctx, provider, sdk.NewInt64Coin("uatom", 300), sdk.NewInt64Coin("uusdc", 700))

	posBefore, _, err := suite.keeper.GetPosition(suite.ctx, atomUsdc, provider)
	suite.Require().NoError(err)
	poolBefore := suite.pool(atomUsdc)

	suite.Require().NoError(suite.keeper.DepositLiquidity(suite.ctx, provider, atomUsdc, math.NewInt(300), math.NewInt(700)))
	afterDeposit := suite.pool(atomUsdc)
	suite.Require().Equal("1300", afterDeposit.BaseReserve.String())
	suite.Require().Equal("1700", afterDeposit.QuoteReserve.String())

	suite.Require().NoError(suite.keeper.WithdrawLiquidity(suite.ctx, provider, atomUsdc, math.NewInt(300), math.NewInt(700)))

	posAfter, found, err := suite.keeper.GetPosition(suite.ctx, atomUsdc, provider)
	suite.Require().NoError(err)
	suite.Require().True(found, "zero positions are kept")
	suite.Require().True(posAfter.BaseContributed.Equal(posBefore.BaseContributed))
	suite.Require().True(posAfter.QuoteContributed.Equal(posBefore.QuoteContributed))
	suite.Require().Equal(poolString(poolBefore), poolString(suite.pool(atomUsdc)))
	suite.Require().Equal("300", suite.balance("uatom", provider))
	suite.Require().Equal("700", suite.balance("uusdc", provider))
}

func (suite *KeeperTestSuite) TestDepositLiquidity_Errors() {
	provider := keepertest.TestAddr("provider")
	keepertest.Fund(suite.T(), suite.ledger, suite.ctx, provider, sdk.NewInt64Coin("uatom", 10), sdk.NewInt64Coin("uusdc", 10))

	err := suite.keeper.DepositLiquidity(suite.ctx, provider, atomUsdc, math.NewInt(1), math.NewInt(1))
	suite.Require().ErrorIs(err, types.ErrMarketDoesNotExist)

	keepertest.CreateTestPool(suite.T(), suite.keeper, suite.ledger, suite.ctx, suite.creator, atomUsdc, math.NewInt(1_000), math.NewInt(1_000))
	err = suite.keeper.DepositLiquidity(suite.ctx, provider, atomUsdc, math.NewInt(11), math.NewInt(1))
	suite.Require().ErrorIs(err, types.ErrNotEnoughBalance)
	suite.Require().Equal("1000", suite.pool(atomUsdc).BaseReserve.String())
}

func (suite *KeeperTestSuite) TestWithdrawLiquidity_MoreThanPosition() {
	keepertest.CreateTestPool(suite.T(), suite.keeper, suite.ledger, suite.ctx, suite.creator, atomUsdc, math.NewInt(1_000), math.NewInt(1_000))

	err := suite.keeper.WithdrawLiquidity(suite.ctx, suite.creator, atomUsdc, math.NewInt(1_001), math.ZeroInt())
	suite.Require().ErrorIs(err, types.ErrNotEnoughBalance)

	stranger := keepertest.TestAddr("stranger")
	err = suite.keeper.WithdrawLiquidity(suite.ctx, stranger, atomUsdc, math.NewInt(1), math.ZeroInt())
	suite.Require().ErrorIs(err, types.ErrNotEnoughBalance)

	err = suite.keeper.WithdrawLiquidity(suite.ctx, suite.creator, usdcAtom, math.NewInt(1), math.ZeroInt())
	suite.Require().ErrorIs(err, types.ErrMarketDoesNotExist)

	suite.Require().Equal("1000", suite.pool(atomUsdc).BaseReserve.String())
}

// Reference scenario: 100,000/100,000 pool, buy with 10,000 quote at 1/1000.
func (suite *KeeperTestSuite) TestBuy_ReferenceScenario() {
	keepertest.CreateTestPool(suite.T(), suite.keeper, suite.ledger, suite.ctx, suite.creator, atomUsdc, math.NewInt(100_000), math.NewInt(100_000))
	keepertest.Fund(suite.T(), suite.ledger, suite.ctx, suite.trader, sdk.NewInt64Coin("uusdc", 10_000))

	received, err := suite.keeper.Buy(suite.ctx, suite.trader, atomUsdc, math.NewInt(10_000))
	suite.Require().NoError(err)
	suite.Require().Equal("9083", received.String())

	pool := suite.pool(atomUsdc)
	suite.Require().Equal("90917", pool.BaseReserve.String())
	suite.Require().Equal("109990", pool.QuoteReserve.String())
	suite.Require().Equal("10", pool.CollectedQuoteFees.String())
	suite.Require().True(pool.CollectedBaseFees.IsZero())

	suite.Require().Equal("0", suite.balance("uusdc", suite.trader))
	suite.Require().Equal("9083", suite.balance("uatom", suite.trader))
	suite.Require().Equal("10", suite.balance("uusdc", suite.keeper.FeeAccount()))
	suite.Require().Equal("109990", suite.balance("uusdc", suite.keeper.PoolAccount()))
	suite.Require().Equal("90917", suite.balance("uatom", suite.keeper.PoolAccount()))
}

func (suite *KeeperTestSuite) TestSell() {
	keepertest.CreateTestPool(suite.T(), suite.keeper, suite.ledger, suite.ctx, suite.creator, atomUsdc, math.NewInt(100_000), math.NewInt(100_000))
	keepertest.Fund(suite.T(), suite.ledger, suite.ctx, suite.trader, sdk.NewInt64Coin("uatom", 10_000))

	received, err := suite.keeper.Sell(suite.ctx, suite.trader, atomUsdc, math.NewInt(10_000))
	suite.Require().NoError(err)
	suite.Require().Equal("9083", received.String())

	pool := suite.pool(atomUsdc)
	suite.Require().Equal("109990", pool.BaseReserve.String())
	suite.Require().Equal("90917", pool.QuoteReserve.String())
	suite.Require().Equal("10", pool.CollectedBaseFees.String())
	suite.Require().Equal("10", suite.balance("uatom", suite.keeper.FeeAccount()))
}

func (suite *KeeperTestSuite) TestBuy_NotEnoughBalance() {
	keepertest.CreateTestPool(suite.T(), suite.keeper, suite.ledger, suite.ctx, suite.creator, atomUsdc, math.NewInt(100_000), math.NewInt(100_000))
	keepertest.Fund(suite.T(), suite.ledger, suite.ctx, suite.trader, sdk.NewInt64Coin("uusdc", 999))

	before := suite.pool(atomUsdc)
	_, err := suite.keeper.Buy(suite.ctx, suite.trader, atomUsdc, math.NewInt(1_000))
	suite.Require().ErrorIs(err, types.ErrNotEnoughBalance)

	suite.Require().Equal(poolString(before), poolString(suite.pool(atomUsdc)))
	suite.Require().Equal("999", suite.balance("uusdc", suite.trader))
	suite.Require().Equal("0", suite.balance("uatom", suite.trader))
	suite.Require().Equal("0", suite.balance("uusdc", suite.keeper.FeeAccount()))
}

func (suite *KeeperTestSuite) TestTrade_Errors() {
	_, err := suite.keeper.Buy(suite.ctx, suite.trader, atomUsdc, math.NewInt(1))
	suite.Require().ErrorIs(err, types.ErrMarketDoesNotExist)

	keepertest.CreateTestPool(suite.T(), suite.keeper, suite.ledger, suite.ctx, suite.creator, atomUsdc, math.NewInt(100), math.NewInt(100))
	_, err = suite.keeper.Sell(suite.ctx, suite.trader, atomUsdc, math.ZeroInt())
	suite.Require().ErrorIs(err, types.ErrInvalidAmount)
	_, err = suite.keeper.Sell(suite.ctx, suite.trader, atomUsdc, math.NewInt(-5))
	suite.Require().ErrorIs(err, types.ErrInvalidAmount)
}

func (suite *KeeperTestSuite) TestCurrentPrice() {
	_, _, err := suite.keeper.CurrentPrice(suite.ctx, atomUsdc)
	suite.Require().ErrorIs(err, types.ErrMarketDoesNotExist)

	keepertest.CreateTestPool(suite.T(), suite.keeper, suite.ledger, suite.ctx, suite.creator, atomUsdc, math.NewInt(1_000), math.NewInt(4_000))
	num, den, err := suite.keeper.CurrentPrice(suite.ctx, atomUsdc)
	suite.Require().NoError(err)
	suite.Require().Equal("4000", num.String())
	suite.Require().Equal("1000", den.String())
}

func (suite *KeeperTestSuite) TestFeeFromAmount() {
	fee, err := suite.keeper.FeeFromAmount(suite.ctx, math.NewInt(1_000_000))
	suite.Require().NoError(err)
	suite.Require().Equal("1000", fee.String())

	params := types.DefaultParams()
	params.TakerFee = types.NewTakerFee(3, 1000)
	suite.Require().NoError(suite.keeper.SetParams(suite.ctx, params))
	fee, err = suite.keeper.FeeFromAmount(suite.ctx, math.NewInt(1_000_000))
	suite.Require().NoError(err)
	suite.Require().Equal("3000", fee.String())
}

func (suite *KeeperTestSuite) TestCustodyAccountsAreDistinct() {
	suite.Require().False(suite.keeper.PoolAccount().Equals(suite.keeper.FeeAccount()))
	suite.Require().Equal(suite.keeper.PoolAccount(), keeper.NewKeeper(nil, nil, nil).PoolAccount())
}

func TestParamsRoundTrip(t *testing.T) {
	k, _, ctx := keepertest.DexKeeper(t)

	params := types.Params{
		TakerFee:             types.NewTakerFee(25, 10_000),
		DistributionInterval: 10,
		MaxMarketsPerRun:     3,
	}
	require.NoError(t, k.SetParams(ctx, params))
	got, err := k.GetParams(ctx)
	require.NoError(t, err)
	require.Equal(t, params, got)

	require.ErrorIs(t, k.SetParams(ctx, types.Params{TakerFee: types.NewTakerFee(1, 0)}), types.ErrInvalidParams)
}

func TestIteratePools(t *testing.T) {
	k, lk, ctx := keepertest.DexKeeper(t)
	creator := keepertest.TestAddr("creator")

	markets := []types.Market{
		types.NewMarket("uatom", "uusdc"),
		types.NewMarket("uosmo", "uusdc"),
		types.NewMarket("uusdc", "uatom"),
	}
	for _, m := range markets {
		keepertest.CreateTestPool(t, k, lk, ctx, creator, m, math.NewInt(100), math.NewInt(100))
	}

	pools, err := k.GetAllPools(ctx)
	require.NoError(t, err)
	require.Len(t, pools, 3)

	seen := map[types.Market]bool{}
	for _, p := range pools {
		seen[p.Market] = true
	}
	for _, m := range markets {
		require.True(t, seen[m], m.String())
	}

	positions, err := k.GetAllPositions(ctx)
	require.NoError(t, err)
	require.Len(t, positions, 3)
	require.Equal(t, creator.String(), positions[0].Provider)
}

func TestTransferFailureLeavesStateUntouched(t *testing.T) {
	osmoUsdc := types.NewMarket("uosmo", "uusdc")
	creator := keepertest.TestAddr("creator")
	trader := keepertest.TestAddr("trader")
	amount := math.NewInt(100)

	tests := []struct {
		name  string
		asset string
		// fromPool fails transfers out of the pool account instead of the caller
		fromPool bool
		op       func(k *keeper.Keeper, ctx sdk.Context) error
	}{
		{"create quote leg", "uusdc", false, func(k *keeper.Keeper, ctx sdk.Context) error {
			return k.CreateMarketPool(ctx, trader, osmoUsdc, amount, amount)
		}},
		{"deposit quote leg", "uusdc", false, func(k *keeper.Keeper, ctx sdk.Context) error {
			return k.DepositLiquidity(ctx, trader, atomUsdc, amount, amount)
		}},
		{"withdraw quote leg", "uusdc", true, func(k *keeper.Keeper, ctx sdk.Context) error {
			return k.WithdrawLiquidity(ctx, creator, atomUsdc, amount, amount)
		}},
		{"buy receive leg", "uatom", true, func(k *keeper.Keeper, ctx sdk.Context) error {
			_, err := k.Buy(ctx, trader, atomUsdc, amount)
			return err
		}},
		{"sell receive leg", "uusdc", true, func(k *keeper.Keeper, ctx sdk.Context) error {
			_, err := k.Sell(ctx, trader, atomUsdc, amount)
			return err
		}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			fl := &failingLedger{}
			k, lk, ctx := keepertest.DexKeeperWithLedger(t, func(lk ledger.Keeper) types.Ledger {
				fl.Keeper = lk
				return fl
			})
			setTakerFee(t, k, ctx, 1, 10)
			keepertest.CreateTestPool(t, k, lk, ctx, creator, atomUsdc, math.NewInt(1_000), math.NewInt(1_000))
			keepertest.Fund(t, lk, ctx, trader, sdkCoin("uatom", 500), sdkCoin("uosmo", 500), sdkCoin("uusdc", 500))

			snapshot := func() string {
				out := ""
				for _, m := range []types.Market{atomUsdc, osmoUsdc} {
					pool, found, err := k.GetPool(ctx, m)
					require.NoError(t, err)
					if found {
						out += fmt.Sprintf("%s: %s\n", m, poolString(pool))
					}
					for _, addr := range []sdk.AccAddress{creator, trader} {
						pos, found, err := k.GetPosition(ctx, m, addr)
						require.NoError(t, err)
						if found {
							out += fmt.Sprintf("%s %s: %s/%s\n", m, addr, pos.BaseContributed, pos.QuoteContributed)
						}
					}
				}
				for _, addr := range []sdk.AccAddress{creator, trader, k.PoolAccount(), k.FeeAccount()} {
					out += fmt.Sprintf("%s: %s\n", addr, lk.GetAllBalances(ctx, addr))
				}
				return out
			}
			before := snapshot()

			fl.asset = tc.asset
			fl.from = trader
			if tc.fromPool {
				fl.from = k.PoolAccount()
			}

			err := tc.op(k, ctx)
			require.ErrorIs(t, err, types.ErrTransfer)
			require.Equal(t, before, snapshot())
		})
	}
}
