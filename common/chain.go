package common

import (
	"bytes"
	"crypto/sha256"
	"fmt"

	"github.com/mr-tron/base58"
	"github.com/nspcc-dev/neo-go/pkg/util"
)

// ChainIDSize is the size of ChainID in bytes.
const ChainIDSize = util.Uint256Size

// ChainID identifies a chain participating in the bridge. Text form is base58
// of the raw bytes.
type ChainID util.Uint256

// ChainIDFromBytes decodes ChainID from its raw binary form.
func ChainIDFromBytes(b []byte) (ChainID, error) {
	if len(b) != ChainIDSize {
		return ChainID{}, fmt.Errorf("invalid chain ID length %d, expected %d", len(b), ChainIDSize)
	}

	var id ChainID
	copy(id[:], b)
	return id, nil
}

// ChainIDFromString decodes ChainID from its base58 text form.
func ChainIDFromString(s string) (ChainID, error) {
	b, err := base58.Decode(s)
	if err != nil {
		return ChainID{}, fmt.Errorf("decode base58 chain ID: %w", err)
	}
	return ChainIDFromBytes(b)
}

// ChainIDFromLabel derives ChainID from a human-readable label.
func ChainIDFromLabel(label string) ChainID {
	return ChainID(sha256.Sum256([]byte(label)))
}

// Bytes returns a copy of raw ChainID bytes.
func (x ChainID) Bytes() []byte {
	return bytes.Clone(x[:])
}

// Equals checks whether both IDs refer to the same chain.
func (x ChainID) Equals(other ChainID) bool {
	return x == other
}

// Compare orders chain IDs by their raw bytes.
func (x ChainID) Compare(other ChainID) int {
	return bytes.Compare(x[:], other[:])
}

// String implements fmt.Stringer.
func (x ChainID) String() string {
	return base58.Encode(x[:])
}

// MarshalText implements encoding.TextMarshaler.
func (x ChainID) MarshalText() ([]byte, error) {
	return []byte(x.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (x *ChainID) UnmarshalText(text []byte) error {
	id, err := ChainIDFromString(string(text))
	if err != nil {
		return err
	}
	*x = id
	return nil
}
