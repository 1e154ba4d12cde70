package types

import (
	"context"

	"cosmossdk.io/math"
	sdk "github.com/cosmos/cosmos-sdk/types"
)

// MsgCreateMarketPool bootstraps a market with the sender's initial liquidity.
type MsgCreateMarketPool struct {
	Sender      string   `json:"sender"`
	Market      Market   `json:"market"`
	BaseAmount  math.Int `json:"base_amount"`
	QuoteAmount math.Int `json:"quote_amount"`
}

// MsgDepositLiquidity adds liquidity to an existing market.
type MsgDepositLiquidity struct {
	Sender      string   `json:"sender"`
	Market      Market   `json:"market"`
	BaseAmount  math.Int `json:"base_amount"`
	QuoteAmount math.Int `json:"quote_amount"`
}

// MsgWithdrawLiquidity removes part of the sender's position.
type MsgWithdrawLiquidity struct {
	Sender      string   `json:"sender"`
	Market      Market   `json:"market"`
	BaseAmount  math.Int `json:"base_amount"`
	QuoteAmount math.Int `json:"quote_amount"`
}

// MsgBuy spends QuoteAmount of the quote asset for base.
type MsgBuy struct {
	Sender      string   `json:"sender"`
	Market      Market   `json:"market"`
	QuoteAmount math.Int `json:"quote_amount"`
}

// MsgSell spends BaseAmount of the base asset for quote.
type MsgSell struct {
	Sender     string   `json:"sender"`
	Market     Market   `json:"market"`
	BaseAmount math.Int `json:"base_amount"`
}

// NewMsgCreateMarketPool creates a new MsgCreateMarketPool instance
func NewMsgCreateMarketPool(sender string, market Market, base, quote math.Int) *MsgCreateMarketPool {
	return &MsgCreateMarketPool{Sender: sender, Market: market, BaseAmount: base, QuoteAmount: quote}
}

// NewMsgDepositLiquidity creates a new MsgDepositLiquidity instance
func NewMsgDepositLiquidity(sender string, market Market, base, quote math.Int) *MsgDepositLiquidity {
	return &MsgDepositLiquidity{Sender: sender, Market: market, BaseAmount: base, QuoteAmount: quote}
}

// NewMsgWithdrawLiquidity creates a new MsgWithdrawLiquidity instance
func NewMsgWithdrawLiquidity(sender string, market Market, base, quote math.Int) *MsgWithdrawLiquidity {
	return &MsgWithdrawLiquidity{Sender: sender, Market: market, BaseAmount: base, QuoteAmount: quote}
}

// NewMsgBuy creates a new MsgBuy instance
func NewMsgBuy(sender string, market Market, quoteAmount math.Int) *MsgBuy {
	return &MsgBuy{Sender: sender, Market: market, QuoteAmount: quoteAmount}
}

// NewMsgSell creates a new MsgSell instance
func NewMsgSell(sender string, market Market, baseAmount math.Int) *MsgSell {
	return &MsgSell{Sender: sender, Market: market, BaseAmount: baseAmount}
}

// ValidateBasic performs stateless validation
func (msg *MsgCreateMarketPool) ValidateBasic() error {
	if err := validateSenderAndMarket(msg.Sender, msg.Market); err != nil {
		return err
	}
	if err := validatePositive(msg.BaseAmount, "base amount"); err != nil {
		return err
	}
	return validatePositive(msg.QuoteAmount, "quote amount")
}

// ValidateBasic performs stateless validation
func (msg *MsgDepositLiquidity) ValidateBasic() error {
	if err := validateSenderAndMarket(msg.Sender, msg.Market); err != nil {
		return err
	}
	return validatePair(msg.BaseAmount, msg.QuoteAmount)
}

// ValidateBasic performs stateless validation
func (msg *MsgWithdrawLiquidity) ValidateBasic() error {
	if err := validateSenderAndMarket(msg.Sender, msg.Market); err != nil {
		return err
	}
	return validatePair(msg.BaseAmount, msg.QuoteAmount)
}

// ValidateBasic performs stateless validation
func (msg *MsgBuy) ValidateBasic() error {
	if err := validateSenderAndMarket(msg.Sender, msg.Market); err != nil {
		return err
	}
	return validatePositive(msg.QuoteAmount, "quote amount")
}

// ValidateBasic performs stateless validation
func (msg *MsgSell) ValidateBasic() error {
	if err := validateSenderAndMarket(msg.Sender, msg.Market); err != nil {
		return err
	}
	return validatePositive(msg.BaseAmount, "base amount")
}

func validateSenderAndMarket(sender string, market Market) error {
	if _, err := sdk.AccAddressFromBech32(sender); err != nil {
		return ErrInvalidAddress.Wrapf("invalid sender address (%s)", err)
	}
	return market.Validate()
}

func validatePositive(x math.Int, name string) error {
	if err := ValidateAmount(x); err != nil {
		return err
	}
	if x.IsZero() {
		return ErrInvalidAmount.Wrapf("%s must be positive", name)
	}
	return nil
}

// validatePair accepts a zero on one side but not on both.
func validatePair(base, quote math.Int) error {
	if err := ValidateAmount(base); err != nil {
		return err
	}
	if err := ValidateAmount(quote); err != nil {
		return err
	}
	if base.IsZero() && quote.IsZero() {
		return ErrInvalidAmount.Wrap("base and quote amounts are both zero")
	}
	return nil
}

// Msg is any dex message the host can route
type Msg interface {
	ValidateBasic() error
}

var (
	_ Msg = &MsgCreateMarketPool{}
	_ Msg = &MsgDepositLiquidity{}
	_ Msg = &MsgWithdrawLiquidity{}
	_ Msg = &MsgBuy{}
	_ Msg = &MsgSell{}
)

// MsgCreateMarketPoolResponse is returned after a market is created
type MsgCreateMarketPoolResponse struct{}

// MsgDepositLiquidityResponse returns the provider's updated position
type MsgDepositLiquidityResponse struct {
	Position LiquidityPosition `json:"position"`
}

// MsgWithdrawLiquidityResponse returns the provider's updated position
type MsgWithdrawLiquidityResponse struct {
	Position LiquidityPosition `json:"position"`
}

// MsgBuyResponse carries the base amount received
type MsgBuyResponse struct {
	BaseReceived math.Int `json:"base_received"`
}

// MsgSellResponse carries the quote amount received
type MsgSellResponse struct {
	QuoteReceived math.Int `json:"quote_received"`
}

// MsgServer is the dex message service
type MsgServer interface {
	CreateMarketPool(context.Context, *MsgCreateMarketPool) (*MsgCreateMarketPoolResponse, error)
	DepositLiquidity(context.Context, *MsgDepositLiquidity) (*MsgDepositLiquidityResponse, error)
	WithdrawLiquidity(context.Context, *MsgWithdrawLiquidity) (*MsgWithdrawLiquidityResponse, error)
	Buy(context.Context, *MsgBuy) (*MsgBuyResponse, error)
	Sell(context.Context, *MsgSell) (*MsgSellResponse, error)
}
