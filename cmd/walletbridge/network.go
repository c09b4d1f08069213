package main

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/nspcc-dev/neo-go/pkg/core/storage"
	"github.com/nspcc-dev/neo-go/pkg/core/storage/dbconfig"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
	"github.com/tlinera/wallet-bridge/common"
	"github.com/tlinera/wallet-bridge/config"
	"github.com/tlinera/wallet-bridge/network"
	"go.uber.org/zap"
)

// env is the network built from the configuration.
type env struct {
	cfg      *config.Config
	log      *zap.Logger
	registry *prometheus.Registry
	net      *network.Network
}

func newLogger(cfg *config.Config) (*zap.Logger, error) {
	lvl, err := cfg.LogLevel()
	if err != nil {
		return nil, err
	}

	c := zap.NewProductionConfig()
	c.Level = zap.NewAtomicLevelAt(lvl)
	c.Encoding = "console"
	c.Sampling = nil

	return c.Build()
}

// loadEnv reads configuration from the file and creates all configured chains.
func loadEnv(path string) (*env, error) {
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}

	log, err := newLogger(cfg)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	e := &env{
		cfg:      cfg,
		log:      log,
		registry: prometheus.NewRegistry(),
	}

	m, err := network.NewMetrics(e.registry)
	if err != nil {
		return nil, fmt.Errorf("init metrics: %w", err)
	}

	dbs := make(map[common.ChainID]dbconfig.DBConfiguration, len(cfg.Chains))
	for i := range cfg.Chains {
		id, _ := cfg.Chains[i].ChainID() // checked by config.Load
		dbs[id] = cfg.Chains[i].DB
	}

	e.net = network.New(
		network.WithLogger(log),
		network.WithMetrics(m),
		network.WithStoreFactory(func(id common.ChainID) (storage.Store, error) {
			return storage.NewStore(dbs[id])
		}),
	)

	for i := range cfg.Chains {
		ch := cfg.Chains[i]
		id, _ := ch.ChainID()
		st, _ := ch.InitialState()

		c, err := e.net.AddChain(id, st)
		if err != nil {
			return nil, errors.Join(fmt.Errorf("create chain %q: %w", ch.Label, err), e.close())
		}

		log.Debug("chain ready", zap.String("label", ch.Label), zap.Stringer("id", c.ID()))
	}

	return e, nil
}

func (e *env) close() error {
	err := e.net.Close()
	_ = e.log.Sync()
	return err
}

// execute runs scenario steps one by one. Failed steps are reported and do not
// stop the scenario.
func (e *env) execute(ctx context.Context, w io.Writer) error {
	for i, step := range e.cfg.Scenario {
		chain, signer, op, _ := e.cfg.Operation(step) // checked by config.Load

		resp, err := e.net.Execute(ctx, chain, signer, op)
		switch {
		case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
			return err
		case err != nil:
			fmt.Fprintf(w, "#%d %s on %s: error: %v\n", i, op.Kind(), step.Chain, err)
		default:
			fmt.Fprintf(w, "#%d %s on %s: %s\n", i, op.Kind(), step.Chain, resp)
		}
	}

	return nil
}

func (e *env) deliver(ctx context.Context, w io.Writer) error {
	n, err := e.net.DeliverAll(ctx)
	fmt.Fprintf(w, "delivered %d message(s)\n", n)
	return err
}

func (e *env) label(id common.ChainID) string {
	for i := range e.cfg.Chains {
		if cid, _ := e.cfg.Chains[i].ChainID(); cid == id {
			return e.cfg.Chains[i].Label
		}
	}
	return id.String()
}

func (e *env) printSent(w io.Writer) {
	sent := e.net.Sent()

	fmt.Fprintf(w, "sent %d message(s)\n", len(sent))
	for _, m := range sent {
		fmt.Fprintf(w, "  %s -> %s authenticated=%t\n", e.label(m.Source), e.label(m.Destination), m.Authenticated)
	}
}

func (e *env) printBalances(w io.Writer) error {
	for i := range e.cfg.Chains {
		ch := e.cfg.Chains[i]
		id, _ := ch.ChainID()

		s, err := e.net.Service(id)
		if err != nil {
			return err
		}

		entries, err := s.Accounts().Entries()
		if err != nil {
			return fmt.Errorf("read balances of chain %q: %w", ch.Label, err)
		}

		fmt.Fprintf(w, "%s (%s):\n", ch.Label, id)
		for _, entry := range entries {
			fmt.Fprintf(w, "  %s %s %s\n", entry.Key, entry.Value, s.TickerSymbol())
		}
	}
	return nil
}

func (e *env) printMetrics(w io.Writer) error {
	mfs, err := e.registry.Gather()
	if err != nil {
		return fmt.Errorf("gather metrics: %w", err)
	}

	for _, mf := range mfs {
		if _, err = expfmt.MetricFamilyToText(w, mf); err != nil {
			return err
		}
	}
	return nil
}
