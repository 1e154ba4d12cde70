package types

import (
	"github.com/cosmos/cosmos-sdk/codec"
)

// ModuleCdc encodes store values and messages. The module has no generated
// protobuf types, so everything goes through amino.
var ModuleCdc = codec.NewLegacyAmino()

func init() {
	RegisterLegacyAminoCodec(ModuleCdc)
	ModuleCdc.Seal()
}

// RegisterLegacyAminoCodec registers the module's messages
func RegisterLegacyAminoCodec(cdc *codec.LegacyAmino) {
	cdc.RegisterConcrete(&MsgCreateMarketPool{}, "dex/MsgCreateMarketPool", nil)
	cdc.RegisterConcrete(&MsgDepositLiquidity{}, "dex/MsgDepositLiquidity", nil)
	cdc.RegisterConcrete(&MsgWithdrawLiquidity{}, "dex/MsgWithdrawLiquidity", nil)
	cdc.RegisterConcrete(&MsgBuy{}, "dex/MsgBuy", nil)
	cdc.RegisterConcrete(&MsgSell{}, "dex/MsgSell", nil)
}
