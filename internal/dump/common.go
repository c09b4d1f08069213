package dump

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/tlinera/wallet-bridge/common"
)

// ID is a unique identifier of the dump prepared according to the model
// described in the current package.
type ID struct {
	// Label of the dump source (e.g. scenario name).
	Label string
	// Network height at which the state was pulled.
	Height uint32
}

// String returns hyphen-separated ID fields.
func (x ID) String() string {
	return x.Label + sep + strconv.FormatUint(uint64(x.Height), 10)
}

// decodes ID fields from the hyphen-separated string.
func (x *ID) decodeString(s string) error {
	ss := strings.Split(s, sep)
	if len(ss) < 2 {
		return fmt.Errorf("expected '%s'-separated string with at least 2 items", sep)
	}

	n, err := strconv.ParseUint(ss[1], 10, 32)
	if err != nil {
		return fmt.Errorf("decode height from '%s': %w", ss[1], err)
	}

	x.Label = ss[0]
	x.Height = uint32(n)

	return nil
}

// dumpChainState is a JSON-encoded information about the dumped chain.
type dumpChainState struct {
	// Version of the ledger layout, see common.Version.
	Version int            `json:"version"`
	Label   string         `json:"label"`
	ID      common.ChainID `json:"id"`
	Total   common.Amount  `json:"total"`
}

// dumpStreams groups data streams for chains' metadata and balances.
type dumpStreams struct {
	chains, balances io.ReadWriteCloser
}

// close closes all streams.
func (x *dumpStreams) close() {
	if x.balances != nil {
		_ = x.balances.Close()
	}
	if x.chains != nil {
		_ = x.chains.Close()
	}
}

const (
	// word separator used in dump file naming
	sep = "-"
	// suffix of file with chains' metadata
	chainsFileSuffix = "chains.json"
	// suffix of file with balances
	balancesFileSuffix = "balances.csv"
)

// initDumpStreams opens data streams for the dump files located in the
// specified directory. If read flag is set, streams are read-only. Otherwise,
// files must not exist, and streams are write only.
func initDumpStreams(d *dumpStreams, dir string, id ID, read bool) error {
	var err error

	pathBalances := filepath.Join(dir, strings.Join([]string{id.String(), balancesFileSuffix}, sep))
	pathChains := filepath.Join(dir, strings.Join([]string{id.String(), chainsFileSuffix}, sep))

	var flag int
	var perm os.FileMode

	if read {
		flag = os.O_RDONLY
	} else {
		// O_EXCL fails if dump with the same ID already exists
		flag = os.O_CREATE | os.O_EXCL | os.O_WRONLY
		perm = 0600
	}

	d.balances, err = os.OpenFile(pathBalances, flag, perm)
	if err != nil {
		return fmt.Errorf("open file with balances: %w", err)
	}

	d.chains, err = os.OpenFile(pathChains, flag, perm)
	if err != nil {
		_ = d.balances.Close()
		d.balances = nil
		return fmt.Errorf("open file with chain states: %w", err)
	}

	return nil
}
