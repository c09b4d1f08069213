package common

import (
	"errors"
	"fmt"
	"math/big"

	"github.com/nspcc-dev/neo-go/pkg/encoding/bigint"
	"github.com/nspcc-dev/neo-go/pkg/encoding/fixedn"
)

// AmountDecimals is the number of decimals in the text form of Amount.
const AmountDecimals = 18

var (
	// ErrAmountOverflow is returned when the result exceeds MaxAmount.
	ErrAmountOverflow = errors.New("amount overflow")
	// ErrAmountUnderflow is returned when the result would be negative.
	ErrAmountUnderflow = errors.New("amount underflow")
	// ErrInvalidAmount is returned on attempt to construct a negative or
	// too big Amount.
	ErrInvalidAmount = errors.New("invalid amount")

	maxAttos = new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 128), big.NewInt(1))
	oneToken = new(big.Int).Exp(big.NewInt(10), big.NewInt(AmountDecimals), nil)

	// MaxAmount is the biggest representable Amount.
	MaxAmount = Amount{v: maxAttos}
)

// Amount is a non-negative quantity of the asset counted in attos
// (10^-18 of a token). Zero value is a valid zero amount. Amount is
// immutable; arithmetic never wraps.
type Amount struct {
	v *big.Int
}

// AmountFromTokens returns Amount of n whole tokens.
func AmountFromTokens(n uint64) Amount {
	v := new(big.Int).SetUint64(n)
	return Amount{v: v.Mul(v, oneToken)}
}

// AmountFromAttos returns Amount of n attos.
func AmountFromAttos(n *big.Int) (Amount, error) {
	if n == nil || n.Sign() < 0 || n.Cmp(maxAttos) > 0 {
		return Amount{}, fmt.Errorf("%w: %v", ErrInvalidAmount, n)
	}
	return Amount{v: new(big.Int).Set(n)}, nil
}

// ParseAmount decodes Amount from the decimal token form, e.g. "1.5".
func ParseAmount(s string) (Amount, error) {
	n, err := fixedn.FromString(s, AmountDecimals)
	if err != nil {
		return Amount{}, fmt.Errorf("%w: %w", ErrInvalidAmount, err)
	}
	return AmountFromAttos(n)
}

// AmountFromBytes decodes Amount from the little-endian two's complement
// form produced by Bytes.
func AmountFromBytes(b []byte) (Amount, error) {
	return AmountFromAttos(bigint.FromBytes(b))
}

func (x Amount) attos() *big.Int {
	if x.v == nil {
		return new(big.Int)
	}
	return x.v
}

// Attos returns a copy of the attos value.
func (x Amount) Attos() *big.Int {
	return new(big.Int).Set(x.attos())
}

// Bytes encodes Amount into the little-endian two's complement form.
func (x Amount) Bytes() []byte {
	return bigint.ToBytes(x.attos())
}

// IsZero checks whether x is zero.
func (x Amount) IsZero() bool {
	return x.attos().Sign() == 0
}

// Cmp compares x and y like big.Int.Cmp.
func (x Amount) Cmp(y Amount) int {
	return x.attos().Cmp(y.attos())
}

// Equals checks whether x and y are the same quantity.
func (x Amount) Equals(y Amount) bool {
	return x.Cmp(y) == 0
}

// CheckedAdd returns x+y or ErrAmountOverflow.
func (x Amount) CheckedAdd(y Amount) (Amount, error) {
	sum := new(big.Int).Add(x.attos(), y.attos())
	if sum.Cmp(maxAttos) > 0 {
		return Amount{}, fmt.Errorf("%w: %s + %s", ErrAmountOverflow, x, y)
	}
	return Amount{v: sum}, nil
}

// CheckedSub returns x-y or ErrAmountUnderflow.
func (x Amount) CheckedSub(y Amount) (Amount, error) {
	if x.Cmp(y) < 0 {
		return Amount{}, fmt.Errorf("%w: %s - %s", ErrAmountUnderflow, x, y)
	}
	return Amount{v: new(big.Int).Sub(x.attos(), y.attos())}, nil
}

// SaturatingAdd returns x+y capped at MaxAmount.
func (x Amount) SaturatingAdd(y Amount) Amount {
	sum, err := x.CheckedAdd(y)
	if err != nil {
		return MaxAmount
	}
	return sum
}

// SaturatingSub returns x-y or zero if y exceeds x.
func (x Amount) SaturatingSub(y Amount) Amount {
	diff, err := x.CheckedSub(y)
	if err != nil {
		return Amount{}
	}
	return diff
}

// String returns decimal token form of x.
func (x Amount) String() string {
	return fixedn.ToString(x.attos(), AmountDecimals)
}

// MarshalText implements encoding.TextMarshaler.
func (x Amount) MarshalText() ([]byte, error) {
	return []byte(x.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (x *Amount) UnmarshalText(text []byte) error {
	a, err := ParseAmount(string(text))
	if err != nil {
		return err
	}
	*x = a
	return nil
}
