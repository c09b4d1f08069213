package bridge

import (
	"github.com/tlinera/wallet-bridge/common"
)

// Operation is one of the operations accepted by Contract.ExecuteOperation:
// BalanceOp, TickerSymbolOp, ApproveOp, TransferOp, TransferFromOp or ClaimOp.
type Operation interface {
	// Kind returns short name of the operation.
	Kind() string

	operation()
}

type (
	// BalanceOp requests balance of the owner on the current chain.
	BalanceOp struct {
		Owner common.Owner
	}

	// TickerSymbolOp requests display symbol of the asset.
	TickerSymbolOp struct{}

	// ApproveOp is a delegated allowance request. Not supported.
	ApproveOp struct {
		Owner     common.Owner
		Spender   common.Owner
		Allowance common.Amount
	}

	// TransferOp moves funds of the owner on the current chain to the target
	// account on any chain.
	TransferOp struct {
		Owner         common.Owner
		Amount        common.Amount
		TargetAccount Account
	}

	// TransferFromOp is a third-party transfer within an allowance. Not
	// supported.
	TransferFromOp struct {
		Owner         common.Owner
		Spender       common.Owner
		Amount        common.Amount
		TargetAccount Account
	}

	// ClaimOp moves funds from the source account on any chain to the target
	// account on any chain.
	ClaimOp struct {
		SourceAccount Account
		Amount        common.Amount
		TargetAccount Account
	}
)

func (BalanceOp) Kind() string      { return "balance" }
func (TickerSymbolOp) Kind() string { return "tickerSymbol" }
func (ApproveOp) Kind() string      { return "approve" }
func (TransferOp) Kind() string     { return "transfer" }
func (TransferFromOp) Kind() string { return "transferFrom" }
func (ClaimOp) Kind() string        { return "claim" }

func (BalanceOp) operation()      {}
func (TickerSymbolOp) operation() {}
func (ApproveOp) operation()      {}
func (TransferOp) operation()     {}
func (TransferFromOp) operation() {}
func (ClaimOp) operation()        {}

// ResponseKind distinguishes Response variants.
type ResponseKind byte

const (
	// ResponseOk is returned by value-moving operations.
	ResponseOk ResponseKind = iota
	// ResponseBalance carries Response.Balance.
	ResponseBalance
	// ResponseTickerSymbol carries Response.TickerSymbol.
	ResponseTickerSymbol
)

// Response is a result of the successfully executed operation.
type Response struct {
	Kind         ResponseKind
	Balance      common.Amount
	TickerSymbol string
}

// String implements fmt.Stringer.
func (r Response) String() string {
	switch r.Kind {
	case ResponseBalance:
		return "Balance(" + r.Balance.String() + ")"
	case ResponseTickerSymbol:
		return "TickerSymbol(" + r.TickerSymbol + ")"
	default:
		return "Ok"
	}
}

// InitialState is a distribution of balances applied once at chain creation.
type InitialState struct {
	Accounts map[common.Owner]common.Amount
}
