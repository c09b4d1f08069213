package network

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/nspcc-dev/neo-go/pkg/core/storage"
	"github.com/tlinera/wallet-bridge/bridge"
	"github.com/tlinera/wallet-bridge/common"
	"github.com/tlinera/wallet-bridge/ledger"
	"go.uber.org/zap"
)

// Chain is a single chain hosted by the Network.
type Chain struct {
	id    common.ChainID
	store storage.Store

	inbox     []Envelope
	delivered []Envelope
}

// ID returns identifier of the chain.
func (c *Chain) ID() common.ChainID {
	return c.id
}

// execution is the runtime of a single operation or message execution on the
// chain. Ledger writes go to per-chain cache layers and outgoing messages to
// the outbox, both are published by commit only.
type execution struct {
	n      *Network
	chain  *Chain
	signer common.Owner

	layers map[common.ChainID]*storage.MemCachedStore
	outbox []Envelope
}

func (n *Network) newExecution(ch *Chain, signer common.Owner) *execution {
	return &execution{
		n:      n,
		chain:  ch,
		signer: signer,
		layers: make(map[common.ChainID]*storage.MemCachedStore),
	}
}

func (e *execution) ledgerOf(id common.ChainID) (*ledger.Ledger, error) {
	layer, ok := e.layers[id]
	if !ok {
		ch, ok := e.n.chains[id]
		if !ok {
			return nil, fmt.Errorf("%w: %s", ledger.ErrUnknownChain, id)
		}

		layer = storage.NewMemCachedStore(ch.store)
		e.layers[id] = layer
	}

	return ledger.New(layer), nil
}

func (e *execution) ChainID() common.ChainID {
	return e.chain.id
}

func (e *execution) CheckWitness(owner common.Owner) bool {
	return !owner.IsChain() && owner == e.signer
}

func (e *execution) OwnerBalance(owner common.Owner) (common.Amount, error) {
	l, err := e.ledgerOf(e.chain.id)
	if err != nil {
		return common.Amount{}, err
	}
	return l.Balance(owner)
}

func (e *execution) OwnerBalances() ([]ledger.Entry, error) {
	l, err := e.ledgerOf(e.chain.id)
	if err != nil {
		return nil, err
	}
	return l.Entries()
}

func (e *execution) BalanceOwners() ([]common.Owner, error) {
	l, err := e.ledgerOf(e.chain.id)
	if err != nil {
		return nil, err
	}
	return l.Owners()
}

func (e *execution) Transfer(source common.Owner, dest ledger.Account, amount common.Amount) error {
	return e.move(ledger.Account{ChainID: e.chain.id, Owner: source}, dest, amount)
}

func (e *execution) Claim(source, dest ledger.Account, amount common.Amount) error {
	return e.move(source, dest, amount)
}

func (e *execution) move(source, dest ledger.Account, amount common.Amount) error {
	src, err := e.ledgerOf(source.ChainID)
	if err != nil {
		return err
	}

	dst, err := e.ledgerOf(dest.ChainID)
	if err != nil {
		return err
	}

	err = src.Debit(source.Owner, amount)
	if err != nil {
		return err
	}

	return dst.Credit(dest.Owner, amount)
}

func (e *execution) SendMessage(dest common.ChainID, msg bridge.Message, authenticated bool) {
	payload, err := msg.Bytes()
	if err != nil {
		e.n.log.Error("failed to encode message, dropping",
			zap.Stringer("message", msg), zap.Error(err))
		return
	}

	env := Envelope{
		ID:            uuid.New(),
		Source:        e.chain.id,
		Destination:   dest,
		Authenticated: authenticated,
		Payload:       payload,
	}
	if authenticated {
		env.Signer = e.signer
	}

	e.outbox = append(e.outbox, env)
}

// commit publishes ledger changes and outgoing messages of the execution.
func (e *execution) commit() error {
	for id, layer := range e.layers {
		if _, err := layer.PersistSync(); err != nil {
			return fmt.Errorf("persist ledger of chain %s: %w", id, err)
		}
	}

	for _, env := range e.outbox {
		ch, ok := e.n.chains[env.Destination]
		if !ok {
			e.n.log.Warn("message to unknown chain dropped",
				zap.Stringer("id", env.ID), zap.Stringer("destination", env.Destination))
			continue
		}

		ch.inbox = append(ch.inbox, env)
		e.n.sent = append(e.n.sent, env)
		e.n.metrics.observeSent()

		e.n.log.Debug("message sent",
			zap.Stringer("id", env.ID),
			zap.Stringer("source", env.Source),
			zap.Stringer("destination", env.Destination))
	}

	return nil
}

// chainReader reads committed balances of the chain.
type chainReader struct {
	n  *Network
	ch *Chain
}

func (r *chainReader) ledger() *ledger.Ledger {
	return ledger.New(storage.NewMemCachedStore(r.ch.store))
}

func (r *chainReader) OwnerBalance(owner common.Owner) (common.Amount, error) {
	r.n.mu.Lock()
	defer r.n.mu.Unlock()

	return r.ledger().Balance(owner)
}

func (r *chainReader) OwnerBalances() ([]ledger.Entry, error) {
	r.n.mu.Lock()
	defer r.n.mu.Unlock()

	return r.ledger().Entries()
}

func (r *chainReader) BalanceOwners() ([]common.Owner, error) {
	r.n.mu.Lock()
	defer r.n.mu.Unlock()

	return r.ledger().Owners()
}
