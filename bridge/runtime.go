package bridge

import (
	"github.com/tlinera/wallet-bridge/common"
	"github.com/tlinera/wallet-bridge/ledger"
)

// Reader provides read access to the balances of the current chain. Every
// call reflects the ledger state at call time.
type Reader interface {
	// OwnerBalance returns balance of the owner, zero if the owner is absent.
	OwnerBalance(common.Owner) (common.Amount, error)

	// OwnerBalances returns all owners with their balances.
	OwnerBalances() ([]ledger.Entry, error)

	// BalanceOwners returns all owners recorded in the ledger.
	BalanceOwners() ([]common.Owner, error)
}

// Ledger is the ledger primitive of the chain the contract executes on. It
// owns the balances and performs value movement atomically: a failed call
// leaves no effect.
type Ledger interface {
	Reader

	// ChainID returns identifier of the current chain.
	ChainID() common.ChainID

	// Transfer moves amount from the owner on the current chain to the
	// destination account.
	Transfer(source common.Owner, dest ledger.Account, amount common.Amount) error

	// Claim moves amount from the source account to the destination account.
	// Both accounts may live on remote chains.
	Claim(source, dest ledger.Account, amount common.Amount) error
}

// Messenger sends cross-chain messages. Sending never blocks and reports no
// delivery status.
type Messenger interface {
	// SendMessage sends msg to the destination chain. If authenticated is
	// set, the message carries the signer of the current execution.
	SendMessage(dest common.ChainID, msg Message, authenticated bool)
}

// Runtime groups collaborators of the Contract provided by the hosting
// chain.
type Runtime interface {
	Ledger
	Messenger
	common.Witness
}
