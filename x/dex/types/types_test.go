package types

import (
	"bytes"
	"testing"

	"cosmossdk.io/math"
	sdk "github.com/cosmos/cosmos-sdk/types"
	"github.com/stretchr/testify/require"
)

func testAddr(seed byte) sdk.AccAddress {
	return sdk.AccAddress(bytes.Repeat([]byte{seed}, 20))
}

func TestMarketValidate(t *testing.T) {
	tests := []struct {
		name   string
		market Market
		valid  bool
	}{
		{"valid", NewMarket("uatom", "uusdc"), true},
		{"same denom", NewMarket("uatom", "uatom"), false},
		{"empty base", NewMarket("", "uusdc"), false},
		{"bad quote", NewMarket("uatom", "1x"), false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.market.Validate()
			if tc.valid {
				require.NoError(t, err)
			} else {
				require.ErrorIs(t, err, ErrInvalidMarket)
			}
		})
	}
}

func TestParseMarket(t *testing.T) {
	m, err := ParseMarket("uatom/uusdc")
	require.NoError(t, err)
	require.Equal(t, NewMarket("uatom", "uusdc"), m)
	require.Equal(t, "uatom/uusdc", m.String())

	_, err = ParseMarket("uatom")
	require.ErrorIs(t, err, ErrInvalidMarket)
}

func TestMarketKeysAreDistinctPerOrder(t *testing.T) {
	ab := NewMarket("aaa", "bbb")
	ba := NewMarket("bbb", "aaa")
	require.NotEqual(t, PoolKey(ab), PoolKey(ba))

	// "ab"+"c" and "a"+"bc" must not share a prefix
	require.False(t, bytes.HasPrefix(PositionsPrefix(NewMarket("abc", "ddd")), PositionsPrefix(NewMarket("ab", "cddd"))))
}

func TestParsePositionKey(t *testing.T) {
	m := NewMarket("uatom", "uusdc")
	addr := testAddr(7)

	key := PositionKey(m, addr)
	require.True(t, bytes.HasPrefix(key, PositionsPrefix(m)))

	gotMarket, gotAddr, err := ParsePositionKey(key[len(PositionKeyPrefix):])
	require.NoError(t, err)
	require.Equal(t, m, gotMarket)
	require.Equal(t, []byte(addr), gotAddr)

	_, _, err = ParsePositionKey(key[len(PositionKeyPrefix) : len(key)-1])
	require.Error(t, err)
}

func TestParamsValidate(t *testing.T) {
	require.NoError(t, DefaultParams().Validate())

	p := DefaultParams()
	p.TakerFee = NewTakerFee(1, 0)
	require.ErrorIs(t, p.Validate(), ErrInvalidParams)

	p = DefaultParams()
	p.TakerFee = NewTakerFee(5, 5)
	require.ErrorIs(t, p.Validate(), ErrInvalidParams)

	p = DefaultParams()
	p.DistributionInterval = -1
	require.ErrorIs(t, p.Validate(), ErrInvalidParams)
}

func TestCheckedMath(t *testing.T) {
	_, err := CheckedAdd(MaxAmount, math.OneInt())
	require.ErrorIs(t, err, ErrArithmetic)

	_, err = CheckedSub(math.NewInt(1), math.NewInt(2))
	require.ErrorIs(t, err, ErrArithmetic)

	_, err = CheckedQuo(math.NewInt(1), math.ZeroInt())
	require.ErrorIs(t, err, ErrArithmetic)

	_, err = CheckedAdd(math.Int{}, math.OneInt())
	require.ErrorIs(t, err, ErrArithmetic)

	prod, err := CheckedMul(MaxAmount, MaxAmount)
	require.NoError(t, err)
	require.True(t, prod.GT(MaxAmount))

	_, err = CheckedMulDiv(MaxAmount, MaxAmount, math.OneInt())
	require.ErrorIs(t, err, ErrArithmetic)

	got, err := CheckedMulDiv(math.NewInt(7), math.NewInt(3), math.NewInt(2))
	require.NoError(t, err)
	require.Equal(t, "10", got.String())
}

func TestSideReserves(t *testing.T) {
	pool := NewPoolState(math.NewInt(10), math.NewInt(20))

	in, out := pool.Reserves(SideBuy)
	require.Equal(t, "20", in.String())
	require.Equal(t, "10", out.String())

	in, out = pool.Reserves(SideSell)
	require.Equal(t, "10", in.String())
	require.Equal(t, "20", out.String())

	require.NoError(t, SideBuy.Validate())
	require.NoError(t, SideSell.Validate())
	require.ErrorIs(t, Side(-1).Validate(), ErrInvalidSide)
	require.ErrorIs(t, Side(2).Validate(), ErrInvalidSide)
}

func TestPoolStateNormalize(t *testing.T) {
	p := PoolState{BaseReserve: math.NewInt(5)}.Normalize()
	require.NoError(t, p.Validate())
	require.True(t, p.QuoteReserve.IsZero())
	require.False(t, p.HasFees())

	p.CollectedQuoteFees = math.NewInt(1)
	require.True(t, p.HasFees())

	p.BaseReserve = math.NewInt(-1)
	require.ErrorIs(t, p.Validate(), ErrInvalidAmount)
}

func TestGenesisValidate(t *testing.T) {
	m := NewMarket("uatom", "uusdc")
	provider := testAddr(1).String()

	valid := GenesisState{
		Params: DefaultParams(),
		Pools:  []GenesisPool{{Market: m, Pool: NewPoolState(math.NewInt(10), math.NewInt(20))}},
		Positions: []GenesisPosition{
			{Market: m, Provider: provider, Position: NewLiquidityPosition(math.NewInt(10), math.NewInt(20))},
		},
	}
	require.NoError(t, valid.Validate())
	require.NoError(t, DefaultGenesis().Validate())

	dupPool := valid
	dupPool.Pools = append([]GenesisPool{}, valid.Pools[0], valid.Pools[0])
	require.ErrorIs(t, dupPool.Validate(), ErrInvalidGenesis)

	orphan := valid
	orphan.Positions = []GenesisPosition{{Market: NewMarket("uusdc", "uatom"), Provider: provider, Position: valid.Positions[0].Position}}
	require.ErrorIs(t, orphan.Validate(), ErrInvalidGenesis)

	badAddr := valid
	badAddr.Positions = []GenesisPosition{{Market: m, Provider: "nope", Position: valid.Positions[0].Position}}
	require.ErrorIs(t, badAddr.Validate(), ErrInvalidGenesis)

	dupPos := valid
	dupPos.Positions = append([]GenesisPosition{}, valid.Positions[0], valid.Positions[0])
	require.ErrorIs(t, dupPos.Validate(), ErrInvalidGenesis)
}

func TestMsgValidateBasic(t *testing.T) {
	sender := testAddr(3).String()
	m := NewMarket("uatom", "uusdc")

	require.NoError(t, NewMsgCreateMarketPool(sender, m, math.NewInt(1), math.NewInt(1)).ValidateBasic())
	require.ErrorIs(t, NewMsgCreateMarketPool(sender, m, math.ZeroInt(), math.NewInt(1)).ValidateBasic(), ErrInvalidAmount)
	require.ErrorIs(t, NewMsgCreateMarketPool("bad", m, math.NewInt(1), math.NewInt(1)).ValidateBasic(), ErrInvalidAddress)

	require.NoError(t, NewMsgDepositLiquidity(sender, m, math.ZeroInt(), math.NewInt(1)).ValidateBasic())
	require.ErrorIs(t, NewMsgDepositLiquidity(sender, m, math.ZeroInt(), math.ZeroInt()).ValidateBasic(), ErrInvalidAmount)
	require.ErrorIs(t, NewMsgWithdrawLiquidity(sender, m, math.NewInt(-1), math.NewInt(1)).ValidateBasic(), ErrInvalidAmount)

	require.NoError(t, NewMsgBuy(sender, m, math.NewInt(10)).ValidateBasic())
	require.ErrorIs(t, NewMsgBuy(sender, m, math.ZeroInt()).ValidateBasic(), ErrInvalidAmount)
	require.ErrorIs(t, NewMsgSell(sender, NewMarket("uatom", "uatom"), math.NewInt(10)).ValidateBasic(), ErrInvalidMarket)
}

func TestAminoRoundTrip(t *testing.T) {
	pool := NewPoolState(math.NewInt(100_000), MaxAmount)
	pool.CollectedQuoteFees = math.NewInt(10)

	bz, err := ModuleCdc.Marshal(pool)
	require.NoError(t, err)

	var got PoolState
	require.NoError(t, ModuleCdc.Unmarshal(bz, &got))
	got = got.Normalize()
	require.True(t, got.BaseReserve.Equal(pool.BaseReserve))
	require.True(t, got.QuoteReserve.Equal(pool.QuoteReserve))
	require.True(t, got.CollectedBaseFees.IsZero())
	require.True(t, got.CollectedQuoteFees.Equal(pool.CollectedQuoteFees))
}
