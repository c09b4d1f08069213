package bridge

import (
	"github.com/tlinera/wallet-bridge/common"
	"github.com/tlinera/wallet-bridge/ledger"
)

// Account is a qualified account as seen by operations and queries: a balance
// slot of the owner on the particular chain.
type Account struct {
	ChainID common.ChainID `json:"chainId"`
	Owner   common.Owner   `json:"owner"`
}

// Normalize converts Account to the shape accepted by the ledger primitive.
func (a Account) Normalize() ledger.Account {
	return ledger.Account{ChainID: a.ChainID, Owner: a.Owner}
}

// String implements fmt.Stringer.
func (a Account) String() string {
	return a.Normalize().String()
}
