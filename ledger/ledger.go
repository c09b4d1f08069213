package ledger

import (
	"errors"
	"fmt"
	"math/big"
	"slices"

	"github.com/nspcc-dev/neo-go/pkg/core/storage"
	"github.com/nspcc-dev/neo-go/pkg/encoding/bigint"
	"github.com/nspcc-dev/neo-go/pkg/util"
	"github.com/tlinera/wallet-bridge/common"
)

const (
	accPrefix       = 'a'
	chainBalanceKey = 'c'
	versionKey      = 'v'
)

var (
	// ErrInsufficientFunds is returned when the debited balance is lower
	// than the requested amount.
	ErrInsufficientFunds = errors.New("insufficient funds")
	// ErrUnknownChain is returned when an account refers to a chain the
	// ledger primitive does not know.
	ErrUnknownChain = errors.New("unknown chain")
	// ErrCorruptedEntry is returned when a stored balance can not be decoded.
	ErrCorruptedEntry = errors.New("corrupted ledger entry")
)

// Store is a key-value storage the Ledger works over. *storage.MemCachedStore
// satisfies it.
type Store interface {
	Get(key []byte) ([]byte, error)
	Put(key, value []byte)
	Delete(key []byte)
	Seek(rng storage.SeekRange, f func(k, v []byte) bool)
}

// Ledger is a balance table of a single chain.
type Ledger struct {
	st Store
}

// New returns Ledger working over the given Store.
func New(st Store) *Ledger {
	return &Ledger{st: st}
}

func balanceKey(owner common.Owner) []byte {
	if owner.IsChain() {
		return []byte{chainBalanceKey}
	}
	return append([]byte{accPrefix}, owner.Bytes()...)
}

func (l *Ledger) get(owner common.Owner) (common.Amount, error) {
	data, err := l.st.Get(balanceKey(owner))
	if err != nil {
		if errors.Is(err, storage.ErrKeyNotFound) {
			return common.Amount{}, nil
		}
		return common.Amount{}, fmt.Errorf("read balance of %s: %w", owner, err)
	}

	a, err := common.AmountFromBytes(data)
	if err != nil {
		return common.Amount{}, fmt.Errorf("%w: owner %s: %w", ErrCorruptedEntry, owner, err)
	}
	return a, nil
}

func (l *Ledger) put(owner common.Owner, a common.Amount) {
	k := balanceKey(owner)
	if a.IsZero() {
		l.st.Delete(k)
		return
	}
	l.st.Put(k, a.Bytes())
}

// Version returns layout version recorded by SetVersion. It returns false if
// the ledger has never been initialized.
func (l *Ledger) Version() (int, bool, error) {
	data, err := l.st.Get([]byte{versionKey})
	if err != nil {
		if errors.Is(err, storage.ErrKeyNotFound) {
			return 0, false, nil
		}
		return 0, false, fmt.Errorf("read ledger version: %w", err)
	}

	v := bigint.FromBytes(data)
	if !v.IsInt64() {
		return 0, false, fmt.Errorf("%w: version %s", ErrCorruptedEntry, v)
	}
	return int(v.Int64()), true, nil
}

// SetVersion marks the ledger initialized with the given layout version.
func (l *Ledger) SetVersion(v int) {
	l.st.Put([]byte{versionKey}, bigint.ToBytes(big.NewInt(int64(v))))
}

// Balance returns balance of the owner. Missing owners have zero balance.
// Balance of common.ChainOwner is the chain treasury balance.
func (l *Ledger) Balance(owner common.Owner) (common.Amount, error) {
	return l.get(owner)
}

// Credit increases balance of the owner.
func (l *Ledger) Credit(owner common.Owner, amount common.Amount) error {
	cur, err := l.get(owner)
	if err != nil {
		return err
	}

	res, err := cur.CheckedAdd(amount)
	if err != nil {
		return fmt.Errorf("credit %s: %w", owner, err)
	}

	l.put(owner, res)
	return nil
}

// Debit decreases balance of the owner. It returns ErrInsufficientFunds if
// the balance is lower than amount.
func (l *Ledger) Debit(owner common.Owner, amount common.Amount) error {
	cur, err := l.get(owner)
	if err != nil {
		return err
	}

	res, err := cur.CheckedSub(amount)
	if err != nil {
		return fmt.Errorf("%w: %s has %s, requested %s", ErrInsufficientFunds, owner, cur, amount)
	}

	l.put(owner, res)
	return nil
}

// Entries returns all owners with their balances ordered by owner. Treasury
// balance is not included.
func (l *Ledger) Entries() ([]Entry, error) {
	var (
		res  []Entry
		iErr error
	)

	l.st.Seek(storage.SeekRange{Prefix: []byte{accPrefix}}, func(k, v []byte) bool {
		if len(k) < util.Uint160Size {
			return true
		}

		owner, err := common.OwnerFromBytes(k[len(k)-util.Uint160Size:])
		if err != nil {
			iErr = err
			return false
		}

		a, err := common.AmountFromBytes(v)
		if err != nil {
			iErr = fmt.Errorf("%w: owner %s: %w", ErrCorruptedEntry, owner, err)
			return false
		}

		res = append(res, Entry{Owner: owner, Amount: a})
		return true
	})
	if iErr != nil {
		return nil, iErr
	}

	slices.SortFunc(res, func(a, b Entry) int { return a.Owner.Compare(b.Owner) })

	return res, nil
}

// Owners returns all owners holding funds ordered by owner.
func (l *Ledger) Owners() ([]common.Owner, error) {
	entries, err := l.Entries()
	if err != nil {
		return nil, err
	}

	res := make([]common.Owner, len(entries))
	for i := range entries {
		res[i] = entries[i].Owner
	}
	return res, nil
}

// Total returns the sum of all owners' balances. Treasury balance is not
// included.
func (l *Ledger) Total() (common.Amount, error) {
	entries, err := l.Entries()
	if err != nil {
		return common.Amount{}, err
	}

	var sum common.Amount
	for i := range entries {
		sum = sum.SaturatingAdd(entries[i].Amount)
	}
	return sum, nil
}
