package keeper

import (
	"context"
	"fmt"

	sdk "github.com/cosmos/cosmos-sdk/types"

	"github.com/paw-chain/pawdex/x/dex/types"
)

type msgServer struct {
	*Keeper
}

// NewMsgServerImpl returns an implementation of the MsgServer interface
// for the provided Keeper.
func NewMsgServerImpl(keeper *Keeper) types.MsgServer {
	return &msgServer{Keeper: keeper}
}

var _ types.MsgServer = msgServer{}

// CreateMarketPool handles MsgCreateMarketPool
func (ms msgServer) CreateMarketPool(goCtx context.Context, msg *types.MsgCreateMarketPool) (*types.MsgCreateMarketPoolResponse, error) {
	sender, err := validateMsg(msg, msg.Sender)
	if err != nil {
		return nil, err
	}
	if err := ms.Keeper.CreateMarketPool(goCtx, sender, msg.Market, msg.BaseAmount, msg.QuoteAmount); err != nil {
		return nil, err
	}
	return &types.MsgCreateMarketPoolResponse{}, nil
}

// DepositLiquidity handles MsgDepositLiquidity
func (ms msgServer) DepositLiquidity(goCtx context.Context, msg *types.MsgDepositLiquidity) (*types.MsgDepositLiquidityResponse, error) {
	sender, err := validateMsg(msg, msg.Sender)
	if err != nil {
		return nil, err
	}
	if err := ms.Keeper.DepositLiquidity(goCtx, sender, msg.Market, msg.BaseAmount, msg.QuoteAmount); err != nil {
		return nil, err
	}
	pos, _, err := ms.GetPosition(goCtx, msg.Market, sender)
	if err != nil {
		return nil, err
	}
	return &types.MsgDepositLiquidityResponse{Position: pos}, nil
}

// WithdrawLiquidity handles MsgWithdrawLiquidity
func (ms msgServer) WithdrawLiquidity(goCtx context.Context, msg *types.MsgWithdrawLiquidity) (*types.MsgWithdrawLiquidityResponse, error) {
	sender, err := validateMsg(msg, msg.Sender)
	if err != nil {
		return nil, err
	}
	if err := ms.Keeper.WithdrawLiquidity(goCtx, sender, msg.Market, msg.BaseAmount, msg.QuoteAmount); err != nil {
		return nil, err
	}
	pos, _, err := ms.GetPosition(goCtx, msg.Market, sender)
	if err != nil {
		return nil, err
	}
	return &types.MsgWithdrawLiquidityResponse{Position: pos}, nil
}

// Buy handles MsgBuy
func (ms msgServer) Buy(goCtx context.Context, msg *types.MsgBuy) (*types.MsgBuyResponse, error) {
	sender, err := validateMsg(msg, msg.Sender)
	if err != nil {
		return nil, err
	}
	received, err := ms.Keeper.Buy(goCtx, sender, msg.Market, msg.QuoteAmount)
	if err != nil {
		return nil, err
	}
	return &types.MsgBuyResponse{BaseReceived: received}, nil
}

// Sell handles MsgSell
func (ms msgServer) Sell(goCtx context.Context, msg *types.MsgSell) (*types.MsgSellResponse, error) {
	sender, err := validateMsg(msg, msg.Sender)
	if err != nil {
		return nil, err
	}
	received, err := ms.Keeper.Sell(goCtx, sender, msg.Market, msg.BaseAmount)
	if err != nil {
		return nil, err
	}
	return &types.MsgSellResponse{QuoteReceived: received}, nil
}

// HandleMsg routes a message to the matching MsgServer method.
func HandleMsg(ctx context.Context, ms types.MsgServer, msg types.Msg) (any, error) {
	switch msg := msg.(type) {
	case *types.MsgCreateMarketPool:
		return ms.CreateMarketPool(ctx, msg)
	case *types.MsgDepositLiquidity:
		return ms.DepositLiquidity(ctx, msg)
	case *types.MsgWithdrawLiquidity:
		return ms.WithdrawLiquidity(ctx, msg)
	case *types.MsgBuy:
		return ms.Buy(ctx, msg)
	case *types.MsgSell:
		return ms.Sell(ctx, msg)
	default:
		return nil, fmt.Errorf("unrecognized %s message type: %T", types.ModuleName, msg)
	}
}

func validateMsg(msg types.Msg, sender string) (sdk.AccAddress, error) {
	if err := msg.ValidateBasic(); err != nil {
		return nil, err
	}
	addr, err := sdk.AccAddressFromBech32(sender)
	if err != nil {
		return nil, types.ErrInvalidAddress.Wrapf("invalid sender address (%s)", err)
	}
	return addr, nil
}
