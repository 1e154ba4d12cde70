package types

import (
	"math/big"

	"cosmossdk.io/math"
)

var (
	maxAmountBig  = new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 128), big.NewInt(1))
	maxProductBig = new(big.Int).Lsh(big.NewInt(1), 256)

	// MaxAmount is the largest balance, reserve or fee counter the module stores (2^128-1).
	MaxAmount = math.NewIntFromBigInt(maxAmountBig)
)

// Checked arithmetic for every pool and ledger step. Stored amounts are
// bounded by MaxAmount; intermediate products (K, amount*numerator) may use
// up to 256 bits. Any violation is reported as ErrArithmetic.

// CheckedAdd adds two amounts, failing if the sum exceeds MaxAmount
func CheckedAdd(a, b math.Int) (math.Int, error) {
	if err := checkOperands(a, b); err != nil {
		return math.Int{}, err
	}
	result := new(big.Int).Add(a.BigInt(), b.BigInt())
	if result.Cmp(maxAmountBig) > 0 {
		return math.Int{}, ErrArithmetic.Wrapf("overflow: %s + %s", a, b)
	}
	return math.NewIntFromBigInt(result), nil
}

// CheckedSub subtracts b from a, failing on underflow
func CheckedSub(a, b math.Int) (math.Int, error) {
	if err := checkOperands(a, b); err != nil {
		return math.Int{}, err
	}
	if a.LT(b) {
		return math.Int{}, ErrArithmetic.Wrapf("underflow: %s - %s", a, b)
	}
	return math.NewIntFromBigInt(new(big.Int).Sub(a.BigInt(), b.BigInt())), nil
}

// CheckedMul multiplies two amounts into an intermediate product
func CheckedMul(a, b math.Int) (math.Int, error) {
	if err := checkOperands(a, b); err != nil {
		return math.Int{}, err
	}
	if a.IsZero() || b.IsZero() {
		return math.ZeroInt(), nil
	}
	result := new(big.Int).Mul(a.BigInt(), b.BigInt())
	if result.Cmp(maxProductBig) >= 0 {
		return math.Int{}, ErrArithmetic.Wrapf("overflow: %s * %s", a, b)
	}
	return math.NewIntFromBigInt(result), nil
}

// CheckedQuo is floor division, failing on a zero divisor
func CheckedQuo(a, b math.Int) (math.Int, error) {
	if err := checkOperands(a, b); err != nil {
		return math.Int{}, err
	}
	if b.IsZero() {
		return math.Int{}, ErrArithmetic.Wrap("division by zero")
	}
	return math.NewIntFromBigInt(new(big.Int).Quo(a.BigInt(), b.BigInt())), nil
}

// CheckedMulDiv computes floor(a * b / c). The result must fit in MaxAmount.
func CheckedMulDiv(a, b, c math.Int) (math.Int, error) {
	product, err := CheckedMul(a, b)
	if err != nil {
		return math.Int{}, err
	}
	result, err := CheckedQuo(product, c)
	if err != nil {
		return math.Int{}, err
	}
	if result.BigInt().Cmp(maxAmountBig) > 0 {
		return math.Int{}, ErrArithmetic.Wrapf("overflow: %s * %s / %s", a, b, c)
	}
	return result, nil
}

// ValidateAmount reports whether x is a usable non-negative stored amount
func ValidateAmount(x math.Int) error {
	if x.IsNil() {
		return ErrInvalidAmount.Wrap("nil amount")
	}
	if x.IsNegative() {
		return ErrInvalidAmount.Wrapf("negative amount %s", x)
	}
	if x.BigInt().Cmp(maxAmountBig) > 0 {
		return ErrInvalidAmount.Wrapf("%s exceeds maximum amount", x)
	}
	return nil
}

func checkOperands(a, b math.Int) error {
	if a.IsNil() || b.IsNil() {
		return ErrArithmetic.Wrap("nil operand")
	}
	if a.IsNegative() || b.IsNegative() {
		return ErrArithmetic.Wrapf("negative operand: %s, %s", a, b)
	}
	return nil
}
