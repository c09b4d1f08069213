// Package config describes YAML configuration of the wallet bridge network:
// hosted chains with their genesis balances and storage, and an optional
// scenario of operations executed against them.
package config

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/nspcc-dev/neo-go/pkg/core/storage/dbconfig"
	"github.com/tlinera/wallet-bridge/bridge"
	"github.com/tlinera/wallet-bridge/common"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"
)

// ErrInvalid is returned by Validate for malformed configuration.
var ErrInvalid = errors.New("invalid configuration")

// Config is the root configuration section.
type Config struct {
	Logger   Logger        `yaml:"Logger"`
	Chains   []ChainConfig `yaml:"Chains"`
	Scenario []Step        `yaml:"Scenario"`
}

// Logger configures application logger.
type Logger struct {
	Level string `yaml:"Level"`
}

// ChainConfig describes a single hosted chain.
type ChainConfig struct {
	// Label names the chain inside the configuration. It also derives the chain
	// ID when ID is empty.
	Label string `yaml:"Label"`
	// ID is an optional base58-encoded chain ID.
	ID string `yaml:"ID"`
	// DB configures the ledger store of the chain, in-memory if Type is empty.
	DB dbconfig.DBConfiguration `yaml:"DB"`
	// Genesis maps owner addresses to their initial balances in tokens.
	Genesis map[string]string `yaml:"Genesis"`
}

// AccountRef references an account by chain label and owner address.
type AccountRef struct {
	Chain string `yaml:"Chain"`
	Owner string `yaml:"Owner"`
}

// Step is a single scenario operation.
type Step struct {
	Chain   string     `yaml:"Chain"`
	Signer  string     `yaml:"Signer"`
	Op      string     `yaml:"Op"`
	Owner   string     `yaml:"Owner"`
	Spender string     `yaml:"Spender"`
	Amount  string     `yaml:"Amount"`
	Source  AccountRef `yaml:"Source"`
	Target  AccountRef `yaml:"Target"`
}

// Load reads and validates configuration from the YAML file.
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open config file: %w", err)
	}
	defer f.Close()

	cfg, err := Decode(f)
	if err != nil {
		return nil, fmt.Errorf("config file %s: %w", path, err)
	}

	return cfg, nil
}

// Decode reads and validates configuration from r. Unknown fields are
// rejected.
func Decode(r io.Reader) (*Config, error) {
	var cfg Config

	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	err := dec.Decode(&cfg)
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("decode YAML: %w", err)
	}

	for i := range cfg.Chains {
		if cfg.Chains[i].DB.Type == "" {
			cfg.Chains[i].DB.Type = dbconfig.InMemoryDB
		}
	}

	if err = cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks that chain labels are unique, addresses and amounts are
// parseable and every scenario step resolves to an operation.
func (c *Config) Validate() error {
	if _, err := c.LogLevel(); err != nil {
		return err
	}

	labels := make(map[string]struct{}, len(c.Chains))
	ids := make(map[common.ChainID]string, len(c.Chains))

	for i := range c.Chains {
		ch := &c.Chains[i]

		if ch.Label == "" {
			return fmt.Errorf("%w: chain #%d: empty label", ErrInvalid, i)
		}
		if _, ok := labels[ch.Label]; ok {
			return fmt.Errorf("%w: duplicate chain label %q", ErrInvalid, ch.Label)
		}
		labels[ch.Label] = struct{}{}

		id, err := ch.ChainID()
		if err != nil {
			return err
		}
		if prev, ok := ids[id]; ok {
			return fmt.Errorf("%w: chains %q and %q share ID %s", ErrInvalid, prev, ch.Label, id)
		}
		ids[id] = ch.Label

		if _, err = ch.InitialState(); err != nil {
			return err
		}
	}

	for i := range c.Scenario {
		if _, _, _, err := c.Operation(c.Scenario[i]); err != nil {
			return fmt.Errorf("scenario step #%d: %w", i, err)
		}
	}

	return nil
}

// LogLevel returns zap level configured for the logger, info by default.
func (c *Config) LogLevel() (zapcore.Level, error) {
	if c.Logger.Level == "" {
		return zapcore.InfoLevel, nil
	}

	lvl, err := zapcore.ParseLevel(c.Logger.Level)
	if err != nil {
		return lvl, fmt.Errorf("%w: logger level: %w", ErrInvalid, err)
	}

	return lvl, nil
}

// ChainID returns ID of the chain: decoded from ID if set, derived from
// Label otherwise.
func (c ChainConfig) ChainID() (common.ChainID, error) {
	if c.ID == "" {
		return common.ChainIDFromLabel(c.Label), nil
	}

	id, err := common.ChainIDFromString(c.ID)
	if err != nil {
		return id, fmt.Errorf("%w: chain %q: %w", ErrInvalid, c.Label, err)
	}

	return id, nil
}

// InitialState returns genesis balances of the chain.
func (c ChainConfig) InitialState() (bridge.InitialState, error) {
	res := bridge.InitialState{Accounts: make(map[common.Owner]common.Amount, len(c.Genesis))}

	for addr, s := range c.Genesis {
		owner, err := parseOwner(addr)
		if err != nil {
			return res, fmt.Errorf("%w: chain %q genesis: %w", ErrInvalid, c.Label, err)
		}
		if owner.IsChain() {
			return res, fmt.Errorf("%w: chain %q genesis: chain owner can't hold initial balance", ErrInvalid, c.Label)
		}

		amount, err := common.ParseAmount(s)
		if err != nil {
			return res, fmt.Errorf("%w: chain %q genesis of %s: %w", ErrInvalid, c.Label, addr, err)
		}

		res.Accounts[owner] = amount
	}

	return res, nil
}

// Chain returns configuration of the chain by its label.
func (c *Config) Chain(label string) (ChainConfig, bool) {
	for i := range c.Chains {
		if c.Chains[i].Label == label {
			return c.Chains[i], true
		}
	}
	return ChainConfig{}, false
}

func (c *Config) chainID(label string) (common.ChainID, error) {
	ch, ok := c.Chain(label)
	if !ok {
		return common.ChainID{}, fmt.Errorf("%w: unknown chain %q", ErrInvalid, label)
	}
	return ch.ChainID()
}

func (c *Config) account(ref AccountRef) (bridge.Account, error) {
	id, err := c.chainID(ref.Chain)
	if err != nil {
		return bridge.Account{}, err
	}

	owner, err := parseOwner(ref.Owner)
	if err != nil {
		return bridge.Account{}, err
	}

	return bridge.Account{ChainID: id, Owner: owner}, nil
}

// Operation resolves the scenario step into the chain to execute on, the
// signer and the operation itself.
func (c *Config) Operation(s Step) (common.ChainID, common.Owner, bridge.Operation, error) {
	var (
		signer common.Owner
		op     bridge.Operation
	)

	chain, err := c.chainID(s.Chain)
	if err != nil {
		return chain, signer, nil, err
	}

	if s.Signer != "" {
		if signer, err = parseOwner(s.Signer); err != nil {
			return chain, signer, nil, fmt.Errorf("signer: %w", err)
		}
	}

	switch s.Op {
	case bridge.BalanceOp{}.Kind():
		var o bridge.BalanceOp
		o.Owner, err = parseOwner(s.Owner)
		op = o
	case bridge.TickerSymbolOp{}.Kind():
		op = bridge.TickerSymbolOp{}
	case bridge.ApproveOp{}.Kind():
		var o bridge.ApproveOp
		if o.Owner, err = parseOwner(s.Owner); err == nil {
			if o.Spender, err = parseOwner(s.Spender); err == nil {
				o.Allowance, err = parseAmount(s.Amount)
			}
		}
		op = o
	case bridge.TransferOp{}.Kind():
		var o bridge.TransferOp
		if o.Owner, err = parseOwner(s.Owner); err == nil {
			if o.Amount, err = parseAmount(s.Amount); err == nil {
				o.TargetAccount, err = c.account(s.Target)
			}
		}
		op = o
	case bridge.TransferFromOp{}.Kind():
		var o bridge.TransferFromOp
		if o.Owner, err = parseOwner(s.Owner); err == nil {
			if o.Spender, err = parseOwner(s.Spender); err == nil {
				if o.Amount, err = parseAmount(s.Amount); err == nil {
					o.TargetAccount, err = c.account(s.Target)
				}
			}
		}
		op = o
	case bridge.ClaimOp{}.Kind():
		var o bridge.ClaimOp
		if o.SourceAccount, err = c.account(s.Source); err == nil {
			if o.Amount, err = parseAmount(s.Amount); err == nil {
				o.TargetAccount, err = c.account(s.Target)
			}
		}
		op = o
	default:
		return chain, signer, nil, fmt.Errorf("%w: unknown operation %q", ErrInvalid, s.Op)
	}

	if err != nil {
		return chain, signer, nil, fmt.Errorf("%s operation: %w", s.Op, err)
	}

	return chain, signer, op, nil
}

func parseOwner(s string) (common.Owner, error) {
	var o common.Owner
	if err := o.UnmarshalText([]byte(s)); err != nil {
		return o, fmt.Errorf("%w: owner %q: %w", ErrInvalid, s, err)
	}
	return o, nil
}

func parseAmount(s string) (common.Amount, error) {
	a, err := common.ParseAmount(s)
	if err != nil {
		return a, fmt.Errorf("%w: amount %q: %w", ErrInvalid, s, err)
	}
	return a, nil
}
