package ledger

import (
	"context"

	"cosmossdk.io/math"
	sdk "github.com/cosmos/cosmos-sdk/types"

	"github.com/paw-chain/pawdex/x/dex/types"
)

var _ types.Ledger = BankLedger{}

// BankLedger settles through an SDK bank keeper, so the module can run inside
// a chain that already tracks balances in x/bank.
type BankLedger struct {
	bank types.BankKeeper
}

// NewBankLedger wraps bank
func NewBankLedger(bank types.BankKeeper) BankLedger {
	return BankLedger{bank: bank}
}

// Balance returns the bank balance of asset held by account
func (l BankLedger) Balance(ctx context.Context, asset string, account sdk.AccAddress) math.Int {
	return l.bank.GetBalance(ctx, account, asset).Amount
}

// Transfer sends a single coin between accounts
func (l BankLedger) Transfer(ctx context.Context, asset string, from, to sdk.AccAddress, amount math.Int) error {
	if err := validateCoin(asset, amount); err != nil {
		return err
	}
	if amount.IsZero() {
		return nil
	}
	return l.bank.SendCoins(ctx, from, to, sdk.NewCoins(sdk.NewCoin(asset, amount)))
}
