package dump

import (
	"encoding/csv"
	"encoding/json"
	"fmt"

	"github.com/tlinera/wallet-bridge/common"
)

// Creator dumps ledgers of the wallet bridge chains. Output file format:
//
//	'<label>-<height>-chains.json': JSON array of chains' metadata
//	'<label>-<height>-balances.csv': CSV of chains' balances
//
// Balances CSV are 'chain,owner,amount' where chain is base58-encoded chain
// ID, owner is an address and amount is a decimal token amount.
//
// Use IterateDumps to access existing dumps.
type Creator struct {
	dumpStreams

	chains []dumpChainState

	balancesCSV *csv.Writer
}

// NewCreator returns Creator which dumps chains into given directory. The
// dump is identified by specified ID. Resulting Creator should be closed when
// finished working with it.
//
// NewCreator fails if dump with provided ID already exists.
func NewCreator(dir string, id ID) (*Creator, error) {
	var res Creator

	err := initDumpStreams(&res.dumpStreams, dir, id, false)
	if err != nil {
		return nil, err
	}

	res.balancesCSV = csv.NewWriter(res.dumpStreams.balances)

	return &res, nil
}

// AddChain adds the labeled chain to the resulting dump and returns
// BalanceWriter for its ledger. After all needed chains are added, they should
// be flushed via Flush method.
func (x *Creator) AddChain(label string, id common.ChainID) *BalanceWriter {
	x.chains = append(x.chains, dumpChainState{
		Version: common.Version,
		Label:   label,
		ID:      id,
	})

	return &BalanceWriter{
		csv:     x.balancesCSV,
		creator: x,
		index:   len(x.chains) - 1,
	}
}

// Flush flushes accumulated dump to the file system.
func (x *Creator) Flush() error {
	jEnc := json.NewEncoder(x.dumpStreams.chains)
	jEnc.SetIndent("", " ")

	err := jEnc.Encode(x.chains)
	if err != nil {
		return fmt.Errorf("encode chain states to JSON: %w", err)
	}

	x.balancesCSV.Flush()

	err = x.balancesCSV.Error()
	if err != nil {
		return fmt.Errorf("flush CSV data: %w", err)
	}

	return nil
}

// Close releases underlying resources of the Creator and makes it unusable.
func (x *Creator) Close() {
	x.close()
}

// BalanceWriter writes balances into the superior chain's dump.
type BalanceWriter struct {
	csv     *csv.Writer
	creator *Creator
	index   int
}

// Write saves the owner balance into the chain dump.
func (x *BalanceWriter) Write(owner common.Owner, amount common.Amount) error {
	st := &x.creator.chains[x.index]

	total, err := st.Total.CheckedAdd(amount)
	if err != nil {
		return fmt.Errorf("sum balances of chain %s: %w", st.ID, err)
	}

	err = x.csv.Write([]string{
		st.ID.String(),
		owner.String(),
		amount.String(),
	})
	if err != nil {
		return fmt.Errorf("write balance as CSV data: %w", err)
	}

	st.Total = total

	return nil
}
