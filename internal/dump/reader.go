package dump

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/tlinera/wallet-bridge/common"
)

// IterateDumps iterates over all dumps collected by the Creator model in the
// specified directory, and passes ID and Reader of each dump into f.
func IterateDumps(dir string, f func(ID, *Reader)) error {
	var id ID
	var r Reader
	var streams dumpStreams

	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, e error) error {
		if errors.Is(e, fs.ErrNotExist) {
			return nil
		}
		if e != nil {
			return e
		}

		if d.IsDir() {
			if path != dir {
				return filepath.SkipDir
			}
			return nil
		}

		name := d.Name()

		if !strings.HasSuffix(name, chainsFileSuffix) {
			return nil
		}

		err := id.decodeString(name)
		if err != nil {
			return fmt.Errorf("decode dump ID from file name '%s': %w", name, err)
		}

		err = initDumpStreams(&streams, dir, id, true)
		if err != nil {
			return fmt.Errorf("init dump streams ('%s'): %w", name, err)
		}

		err = r.fromDumpStreams(streams.chains, streams.balances)
		streams.close()
		if err != nil {
			return fmt.Errorf("init dump reader ('%s'): %w", name, err)
		}

		f(id, &r)

		return nil
	})
}

type balance struct {
	owner  common.Owner
	amount common.Amount
}

// Reader reads chains collected in the superior dump.
type Reader struct {
	chains    []dumpChainState
	mBalances map[common.ChainID][]balance
}

func (x *Reader) fromDumpStreams(rChains, rBalances io.Reader) error {
	x.chains = x.chains[:0]

	err := json.NewDecoder(rChains).Decode(&x.chains)
	if err != nil {
		return fmt.Errorf("decode chain states from JSON: %w", err)
	}

	for i := range x.chains {
		if err = common.CheckVersion(x.chains[i].Version); err != nil {
			return fmt.Errorf("chain %q: %w", x.chains[i].Label, err)
		}
	}

	var rec []string
	var b balance
	var chain common.ChainID

	_csv := csv.NewReader(rBalances)
	_csv.FieldsPerRecord = 3
	_csv.ReuseRecord = true

	if x.mBalances != nil {
		clear(x.mBalances)
	} else {
		x.mBalances = make(map[common.ChainID][]balance)
	}

	for {
		rec, err = _csv.Read()
		if err != nil {
			if err == io.EOF {
				return nil
			}
			return fmt.Errorf("read next CSV record: %w", err)
		}

		// out-of-range safety guaranteed by csv settings
		chain, err = common.ChainIDFromString(rec[0])
		if err != nil {
			return fmt.Errorf("decode chain ID: %w", err)
		}

		err = b.owner.UnmarshalText([]byte(rec[1]))
		if err != nil {
			return fmt.Errorf("decode owner: %w", err)
		}

		b.amount, err = common.ParseAmount(rec[2])
		if err != nil {
			return fmt.Errorf("decode amount: %w", err)
		}

		x.mBalances[chain] = append(x.mBalances[chain], b)
	}
}

// IterateChains iterates over all chains from the superior dump in the order
// they were added and passes their label, ID and sum of balances into f.
func (x *Reader) IterateChains(f func(label string, id common.ChainID, total common.Amount)) {
	for i := range x.chains {
		f(x.chains[i].Label, x.chains[i].ID, x.chains[i].Total)
	}
}

// IterateBalances iterates over balances of the chain in the order they were
// written and passes them into f.
func (x *Reader) IterateBalances(chain common.ChainID, f func(owner common.Owner, amount common.Amount)) {
	for _, b := range x.mBalances[chain] {
		f(b.owner, b.amount)
	}
}
