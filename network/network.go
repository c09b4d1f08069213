package network

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/nspcc-dev/neo-go/pkg/core/storage"
	"github.com/tlinera/wallet-bridge/bridge"
	"github.com/tlinera/wallet-bridge/common"
	"github.com/tlinera/wallet-bridge/ledger"
	"go.uber.org/zap"
)

// ErrChainExists is returned on attempt to create a chain twice.
var ErrChainExists = errors.New("chain already exists")

// StoreFactory opens the backing store of the chain ledger.
type StoreFactory func(common.ChainID) (storage.Store, error)

// Network hosts a set of chains running the wallet bridge contract. It
// provides the ledger primitive, cross-chain message delivery and witness
// checks to the contract.
//
// Network executes operations and messages one at a time, so every chain sees
// its ledger mutated by a single execution only.
type Network struct {
	mu sync.Mutex

	log      *zap.Logger
	metrics  *Metrics
	newStore StoreFactory

	chains map[common.ChainID]*Chain
	sent   []Envelope
	height uint32
}

// Option configures Network.
type Option func(*Network)

// WithLogger sets logger of the Network and hosted contracts. Defaults to
// zap.NewNop().
func WithLogger(l *zap.Logger) Option {
	return func(n *Network) {
		n.log = l
	}
}

// WithMetrics sets metrics collected by the Network. No metrics are collected
// by default.
func WithMetrics(m *Metrics) Option {
	return func(n *Network) {
		n.metrics = m
	}
}

// WithStoreFactory sets the function opening chain stores. Chains are kept in
// memory by default.
func WithStoreFactory(f StoreFactory) Option {
	return func(n *Network) {
		n.newStore = f
	}
}

// New returns empty Network.
func New(opts ...Option) *Network {
	n := &Network{
		log: zap.NewNop(),
		newStore: func(common.ChainID) (storage.Store, error) {
			return storage.NewMemoryStore(), nil
		},
		chains: make(map[common.ChainID]*Chain),
	}

	for _, o := range opts {
		o(n)
	}

	return n
}

// AddChain creates the chain with the given ID and instantiates the contract
// with the initial balances. The chain treasury is funded with the exact sum
// of the initial balances.
//
// If the store of the chain already holds an instantiated ledger, the chain is
// reopened as is and the initial balances are ignored: genesis distribution is
// applied once per ledger.
func (n *Network) AddChain(id common.ChainID, state bridge.InitialState) (*Chain, error) {
	n.mu.Lock()
	defer n.mu.Unlock()

	if _, ok := n.chains[id]; ok {
		return nil, fmt.Errorf("%w: %s", ErrChainExists, id)
	}

	var funding common.Amount
	for _, amount := range state.Accounts {
		var err error
		if funding, err = funding.CheckedAdd(amount); err != nil {
			return nil, fmt.Errorf("sum initial balances: %w", err)
		}
	}

	st, err := n.newStore(id)
	if err != nil {
		return nil, fmt.Errorf("open store of chain %s: %w", id, err)
	}

	ch := &Chain{id: id, store: st}
	n.chains[id] = ch

	ex := n.newExecution(ch, common.ChainOwner)

	reopened, err := n.instantiate(ex, funding, state)
	if err == nil && !reopened {
		err = ex.commit()
	}
	if err != nil {
		delete(n.chains, id)
		_ = st.Close()
		return nil, fmt.Errorf("instantiate chain %s: %w", ch.ID(), err)
	}

	total, err := ledger.New(storage.NewMemCachedStore(st)).Total()
	if err != nil {
		n.log.Warn("failed to sum balances", zap.Stringer("chain", ch.ID()), zap.Error(err))
	}

	if reopened {
		n.log.Info("chain reopened", zap.Stringer("chain", ch.ID()), zap.Stringer("total", total))
	} else {
		n.log.Info("chain created", zap.Stringer("chain", ch.ID()), zap.Stringer("total", total))
	}

	return ch, nil
}

func (n *Network) instantiate(ex *execution, funding common.Amount, state bridge.InitialState) (bool, error) {
	l, err := ex.ledgerOf(ex.chain.id)
	if err != nil {
		return false, err
	}

	ver, ok, err := l.Version()
	if err != nil {
		return false, err
	}
	if ok {
		return true, common.CheckVersion(ver)
	}

	err = l.Credit(common.ChainOwner, funding)
	if err != nil {
		return false, fmt.Errorf("fund treasury: %w", err)
	}

	err = bridge.New(ex, bridge.WithLogger(n.log)).Instantiate(state)
	if err != nil {
		return false, err
	}

	l.SetVersion(common.Version)

	return false, nil
}

// Chain returns the hosted chain by its ID.
func (n *Network) Chain(id common.ChainID) (*Chain, bool) {
	n.mu.Lock()
	defer n.mu.Unlock()

	ch, ok := n.chains[id]
	return ch, ok
}

// Chains returns IDs of all hosted chains in ascending order.
func (n *Network) Chains() []common.ChainID {
	n.mu.Lock()
	defer n.mu.Unlock()

	res := make([]common.ChainID, 0, len(n.chains))
	for id := range n.chains {
		res = append(res, id)
	}
	slices.SortFunc(res, common.ChainID.Compare)
	return res
}

// Height returns the number of operations committed by the Network.
func (n *Network) Height() uint32 {
	n.mu.Lock()
	defer n.mu.Unlock()

	return n.height
}

// Execute runs the operation on the chain on behalf of the signer. Failed
// operations leave neither ledger changes nor outgoing messages.
func (n *Network) Execute(ctx context.Context, chain common.ChainID, signer common.Owner, op bridge.Operation) (bridge.Response, error) {
	if err := ctx.Err(); err != nil {
		return bridge.Response{}, err
	}

	if op == nil {
		return bridge.Response{}, fmt.Errorf("%w: nil operation", bridge.ErrUnsupported)
	}

	n.mu.Lock()
	defer n.mu.Unlock()

	ch, ok := n.chains[chain]
	if !ok {
		return bridge.Response{}, fmt.Errorf("%w: %s", ledger.ErrUnknownChain, chain)
	}

	ex := n.newExecution(ch, signer)

	resp, err := bridge.New(ex, bridge.WithLogger(n.log)).ExecuteOperation(op)
	if err == nil {
		err = ex.commit()
	}

	n.metrics.observeOperation(op.Kind(), err)

	if err != nil {
		n.log.Debug("operation failed",
			zap.Stringer("chain", chain), zap.String("operation", op.Kind()), zap.Error(err))
		return bridge.Response{}, err
	}

	n.height++

	return resp, nil
}

// Service returns query service over the committed ledger of the chain.
func (n *Network) Service(chain common.ChainID) (*bridge.Service, error) {
	ch, ok := n.Chain(chain)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ledger.ErrUnknownChain, chain)
	}
	return bridge.NewService(&chainReader{n: n, ch: ch}), nil
}

// Sent returns all messages committed by successful executions in the order
// they were sent.
func (n *Network) Sent() []Envelope {
	n.mu.Lock()
	defer n.mu.Unlock()

	return slices.Clone(n.sent)
}

// Close closes stores of all chains.
func (n *Network) Close() error {
	n.mu.Lock()
	defer n.mu.Unlock()

	var errs []error
	for id, ch := range n.chains {
		if err := ch.store.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close store of chain %s: %w", id, err))
		}
	}
	return errors.Join(errs...)
}
