package network

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/tlinera/wallet-bridge/bridge"
	"github.com/tlinera/wallet-bridge/common"
	"github.com/tlinera/wallet-bridge/ledger"
)

const metricsNamespace = "walletbridge"

// Operation results used as metric labels.
const (
	resultOK            = "ok"
	resultUnsupported   = "unsupported"
	resultUnauthorized  = "unauthorized"
	resultLedgerFailure = "ledger_failure"
	resultError         = "error"
)

// Metrics groups Prometheus metrics of the Network.
type Metrics struct {
	operations *prometheus.CounterVec
	sent       prometheus.Counter
	delivered  prometheus.Counter
}

// NewMetrics creates Network metrics and registers them in reg.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		operations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "operations_total",
			Help:      "Number of executed operations by kind and result",
		}, []string{"kind", "result"}),
		sent: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "messages_sent_total",
			Help:      "Number of cross-chain messages sent by committed executions",
		}),
		delivered: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "messages_delivered_total",
			Help:      "Number of cross-chain messages delivered, redeliveries included",
		}),
	}

	for _, c := range []prometheus.Collector{m.operations, m.sent, m.delivered} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}

	return m, nil
}

func operationResult(err error) string {
	switch {
	case err == nil:
		return resultOK
	case errors.Is(err, bridge.ErrUnsupported):
		return resultUnsupported
	case errors.Is(err, common.ErrUnauthorized):
		return resultUnauthorized
	case errors.Is(err, ledger.ErrInsufficientFunds),
		errors.Is(err, ledger.ErrUnknownChain),
		errors.Is(err, common.ErrAmountOverflow):
		return resultLedgerFailure
	default:
		return resultError
	}
}

func (m *Metrics) observeOperation(kind string, err error) {
	if m == nil {
		return
	}
	m.operations.WithLabelValues(kind, operationResult(err)).Inc()
}

func (m *Metrics) observeSent() {
	if m == nil {
		return
	}
	m.sent.Inc()
}

func (m *Metrics) observeDelivered() {
	if m == nil {
		return
	}
	m.delivered.Inc()
}
