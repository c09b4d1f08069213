package ledger

import (
	"github.com/tlinera/wallet-bridge/common"
)

// Account addresses a balance slot on any chain in the shape accepted by the
// ledger primitive.
type Account struct {
	ChainID common.ChainID
	Owner   common.Owner
}

// String implements fmt.Stringer.
func (a Account) String() string {
	return a.Owner.String() + "@" + a.ChainID.String()
}

// Entry is a single record of the ledger.
type Entry struct {
	Owner  common.Owner
	Amount common.Amount
}
