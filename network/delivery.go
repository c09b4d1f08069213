package network

import (
	"context"
	"fmt"
	"slices"

	"github.com/google/uuid"
	"github.com/tlinera/wallet-bridge/bridge"
	"github.com/tlinera/wallet-bridge/common"
	"github.com/tlinera/wallet-bridge/ledger"
	"go.uber.org/zap"
)

// Envelope is a cross-chain message in transit.
type Envelope struct {
	ID          uuid.UUID
	Source      common.ChainID
	Destination common.ChainID

	// Authenticated messages carry the signer of the sending execution.
	Authenticated bool
	Signer        common.Owner

	Payload []byte

	// Number of times the message has been delivered.
	Attempt int
}

// Pending returns messages waiting for delivery to the chain in the order
// they will be delivered.
func (n *Network) Pending(chain common.ChainID) []Envelope {
	n.mu.Lock()
	defer n.mu.Unlock()

	ch, ok := n.chains[chain]
	if !ok {
		return nil
	}
	return slices.Clone(ch.inbox)
}

// Delivered returns messages delivered to the chain in the order they were
// handled.
func (n *Network) Delivered(chain common.ChainID) []Envelope {
	n.mu.Lock()
	defer n.mu.Unlock()

	ch, ok := n.chains[chain]
	if !ok {
		return nil
	}
	return slices.Clone(ch.delivered)
}

// DeliverNext hands the oldest pending message of the chain to its contract.
// It returns false if there is nothing to deliver. Messages that fail to
// decode or execute are consumed and the error is returned.
func (n *Network) DeliverNext(ctx context.Context, chain common.ChainID) (Envelope, bool, error) {
	if err := ctx.Err(); err != nil {
		return Envelope{}, false, err
	}

	n.mu.Lock()
	defer n.mu.Unlock()

	ch, ok := n.chains[chain]
	if !ok {
		return Envelope{}, false, fmt.Errorf("%w: %s", ledger.ErrUnknownChain, chain)
	}

	if len(ch.inbox) == 0 {
		return Envelope{}, false, nil
	}

	env := ch.inbox[0]
	ch.inbox = ch.inbox[1:]
	env.Attempt++

	err := n.handle(ch, env)
	if err != nil {
		n.log.Warn("message handling failed",
			zap.Stringer("id", env.ID), zap.Stringer("chain", chain), zap.Error(err))
		return env, true, fmt.Errorf("handle message %s: %w", env.ID, err)
	}

	ch.delivered = append(ch.delivered, env)
	n.metrics.observeDelivered()

	return env, true, nil
}

func (n *Network) handle(ch *Chain, env Envelope) error {
	msg, err := bridge.DecodeMessage(env.Payload)
	if err != nil {
		return err
	}

	var signer common.Owner
	if env.Authenticated {
		signer = env.Signer
	}

	ex := n.newExecution(ch, signer)

	err = bridge.New(ex, bridge.WithLogger(n.log)).ExecuteMessage(msg)
	if err != nil {
		return err
	}

	return ex.commit()
}

// DeliverAll delivers pending messages of all chains until every inbox is
// empty. It returns the number of delivered messages.
func (n *Network) DeliverAll(ctx context.Context) (int, error) {
	var count int

	for {
		var progress bool

		for _, id := range n.Chains() {
			_, ok, err := n.DeliverNext(ctx, id)
			if err != nil {
				return count, err
			}
			if ok {
				count++
				progress = true
			}
		}

		if !progress {
			return count, nil
		}
	}
}

// Redeliver puts a copy of the delivered message at the head of the
// destination inbox, so it is handled again before any other pending
// message.
func (n *Network) Redeliver(env Envelope) error {
	n.mu.Lock()
	defer n.mu.Unlock()

	ch, ok := n.chains[env.Destination]
	if !ok {
		return fmt.Errorf("%w: %s", ledger.ErrUnknownChain, env.Destination)
	}

	ch.inbox = slices.Insert(ch.inbox, 0, env)

	return nil
}
