package types

// Event types for the DEX module
const (
	EventTypePoolCreated               = "pool_created"
	EventTypeLiquidityAdded            = "liquidity_added"
	EventTypeLiquidityWithdrawn        = "liquidity_withdrawn"
	EventTypeBought                    = "bought"
	EventTypeSold                      = "sold"
	EventTypeLiquidityProviderRewarded = "liquidity_provider_rewarded"
	EventTypeFeesDistributed           = "fees_distributed"
)

// Event attribute keys
const (
	AttributeKeySender       = "sender"
	AttributeKeyProvider     = "provider"
	AttributeKeyBase         = "base"
	AttributeKeyQuote        = "quote"
	AttributeKeyBaseAmount   = "base_amount"
	AttributeKeyQuoteAmount  = "quote_amount"
	AttributeKeyAmountIn     = "amount_in"
	AttributeKeyAmountOut    = "amount_out"
	AttributeKeyFee          = "fee"
	AttributeKeyPayoutCount  = "payout_count"
	AttributeKeyBaseReserve  = "base_reserve"
	AttributeKeyQuoteReserve = "quote_reserve"
)
