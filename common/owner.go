package common

import (
	"bytes"
	"fmt"

	"github.com/nspcc-dev/neo-go/pkg/crypto/keys"
	"github.com/nspcc-dev/neo-go/pkg/encoding/address"
	"github.com/nspcc-dev/neo-go/pkg/util"
)

// Owner is an identity capable of holding a balance. It is the script hash of
// the owner's verification script, so text form is a regular Neo address.
type Owner util.Uint160

// ChainOwner is the treasury identity of a chain. It funds initial
// balances and never shows up among the owners of the ledger.
var ChainOwner Owner

// OwnerFromPublicKey derives Owner from the public key.
func OwnerFromPublicKey(pub *keys.PublicKey) Owner {
	return Owner(pub.GetScriptHash())
}

// OwnerFromString decodes Owner from the Neo address.
func OwnerFromString(s string) (Owner, error) {
	u, err := address.StringToUint160(s)
	if err != nil {
		return Owner{}, fmt.Errorf("decode owner address: %w", err)
	}
	return Owner(u), nil
}

// OwnerFromBytes decodes Owner from big-endian script hash bytes.
func OwnerFromBytes(b []byte) (Owner, error) {
	u, err := util.Uint160DecodeBytesBE(b)
	if err != nil {
		return Owner{}, err
	}
	return Owner(u), nil
}

// Bytes returns big-endian script hash bytes.
func (x Owner) Bytes() []byte {
	return util.Uint160(x).BytesBE()
}

// IsChain checks whether x is the treasury identity.
func (x Owner) IsChain() bool {
	return x == ChainOwner
}

// Compare orders owners by their script hash bytes.
func (x Owner) Compare(other Owner) int {
	return bytes.Compare(x[:], other[:])
}

// String implements fmt.Stringer.
func (x Owner) String() string {
	if x.IsChain() {
		return "chain"
	}
	return address.Uint160ToString(util.Uint160(x))
}

// MarshalText implements encoding.TextMarshaler.
func (x Owner) MarshalText() ([]byte, error) {
	return []byte(x.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (x *Owner) UnmarshalText(text []byte) error {
	if string(text) == "chain" {
		*x = ChainOwner
		return nil
	}

	o, err := OwnerFromString(string(text))
	if err != nil {
		return err
	}
	*x = o
	return nil
}
