package bridge

import (
	"errors"
	"fmt"
	"slices"

	"github.com/tlinera/wallet-bridge/bridge/bridgeconst"
	"github.com/tlinera/wallet-bridge/common"
	"github.com/tlinera/wallet-bridge/ledger"
	"go.uber.org/zap"
)

// ErrUnsupported is returned for operations requiring delegated allowances
// which the bridge does not implement.
var ErrUnsupported = errors.New("operation is not supported by wallet bridge")

// Contract executes bridge operations and messages on a single chain.
// Contract holds no state of its own: balances are owned by the Runtime
// and re-read on every call.
//
// Contract is not safe for concurrent use, the hosting chain executes
// operations one at a time.
type Contract struct {
	rt  Runtime
	log *zap.Logger
}

// Option configures Contract.
type Option func(*Contract)

// WithLogger sets logger of the Contract. Defaults to zap.NewNop().
func WithLogger(l *zap.Logger) Option {
	return func(c *Contract) {
		c.log = l
	}
}

// New returns Contract bound to the given Runtime.
func New(rt Runtime, opts ...Option) *Contract {
	c := &Contract{
		rt:  rt,
		log: zap.NewNop(),
	}

	for _, o := range opts {
		o(c)
	}

	return c
}

// Instantiate distributes initial balances crediting every listed owner of
// the current chain from the chain treasury. Owners are credited in the
// ascending order.
func (c *Contract) Instantiate(state InitialState) error {
	owners := make([]common.Owner, 0, len(state.Accounts))
	for owner := range state.Accounts {
		owners = append(owners, owner)
	}
	slices.SortFunc(owners, common.Owner.Compare)

	chainID := c.rt.ChainID()

	for _, owner := range owners {
		amount := state.Accounts[owner]

		err := c.rt.Transfer(common.ChainOwner, ledger.Account{ChainID: chainID, Owner: owner}, amount)
		if err != nil {
			return fmt.Errorf("credit initial balance of %s: %w", owner, err)
		}
	}

	c.log.Info("wallet bridge instantiated",
		zap.Stringer("chain", chainID), zap.Int("accounts", len(owners)))

	return nil
}

// ExecuteOperation dispatches op to the corresponding method.
func (c *Contract) ExecuteOperation(op Operation) (Response, error) {
	switch o := op.(type) {
	case BalanceOp:
		b, err := c.Balance(o.Owner)
		if err != nil {
			return Response{}, err
		}
		return Response{Kind: ResponseBalance, Balance: b}, nil
	case TickerSymbolOp:
		return Response{Kind: ResponseTickerSymbol, TickerSymbol: c.TickerSymbol()}, nil
	case ApproveOp:
		return Response{}, c.Approve(o)
	case TransferOp:
		if err := c.Transfer(o.Owner, o.Amount, o.TargetAccount); err != nil {
			return Response{}, err
		}
		return Response{Kind: ResponseOk}, nil
	case TransferFromOp:
		return Response{}, c.TransferFrom(o)
	case ClaimOp:
		if err := c.Claim(o.SourceAccount, o.Amount, o.TargetAccount); err != nil {
			return Response{}, err
		}
		return Response{Kind: ResponseOk}, nil
	default:
		return Response{}, fmt.Errorf("%w: %T", ErrUnsupported, op)
	}
}

// Balance returns balance of the owner on the current chain. Balances are
// public, so no witness is checked.
func (c *Contract) Balance(owner common.Owner) (common.Amount, error) {
	return c.rt.OwnerBalance(owner)
}

// TickerSymbol returns display symbol of the asset.
func (c *Contract) TickerSymbol() string {
	return bridgeconst.TickerSymbol
}

// Approve always fails with ErrUnsupported.
func (c *Contract) Approve(ApproveOp) error {
	return fmt.Errorf("approve: %w", ErrUnsupported)
}

// TransferFrom always fails with ErrUnsupported.
func (c *Contract) TransferFrom(TransferFromOp) error {
	return fmt.Errorf("transferFrom: %w", ErrUnsupported)
}

// Transfer moves amount from the owner on the current chain to the target
// account. It can be invoked only by the owner. If the target account lives
// on another chain, that chain receives a Notify message.
func (c *Contract) Transfer(owner common.Owner, amount common.Amount, target Account) error {
	err := common.CheckOwnerWitness(c.rt, owner)
	if err != nil {
		return fmt.Errorf("transfer: %w", err)
	}

	err = c.rt.Transfer(owner, target.Normalize(), amount)
	if err != nil {
		return fmt.Errorf("transfer: %w", err)
	}

	c.notifyTransfer(target.ChainID)

	return nil
}

// Claim moves amount from the source account to the target account. It can
// be invoked only by the owner of the source account.
//
// If the source account lives on the current chain, Claim notifies the
// target chain like Transfer does. Otherwise only the source chain is
// notified whatever the target chain is.
func (c *Contract) Claim(source Account, amount common.Amount, target Account) error {
	err := common.CheckOwnerWitness(c.rt, source.Owner)
	if err != nil {
		return fmt.Errorf("claim: %w", err)
	}

	err = c.rt.Claim(source.Normalize(), target.Normalize(), amount)
	if err != nil {
		return fmt.Errorf("claim: %w", err)
	}

	c.notifyClaim(source.ChainID, target.ChainID)

	return nil
}

// ExecuteMessage handles the incoming cross-chain message. Notify does
// nothing: its delivery alone refreshes observers of the chain.
func (c *Contract) ExecuteMessage(msg Message) error {
	switch msg {
	case Notify:
		return nil
	default:
		return fmt.Errorf("%w: %s", ErrUnknownMessage, msg)
	}
}

func (c *Contract) notifyTransfer(target common.ChainID) {
	if target.Equals(c.rt.ChainID()) {
		return
	}

	c.notify(target)
}

func (c *Contract) notifyClaim(source, target common.ChainID) {
	if source.Equals(c.rt.ChainID()) {
		c.notifyTransfer(target)
		return
	}

	// target chain is never notified directly here
	c.notify(source)
}

func (c *Contract) notify(dest common.ChainID) {
	c.log.Debug("sending notification", zap.Stringer("destination", dest))
	c.rt.SendMessage(dest, Notify, true)
}
