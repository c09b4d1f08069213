package ledger

import (
	"testing"

	"github.com/nspcc-dev/neo-go/pkg/core/storage"
	"github.com/nspcc-dev/neo-go/pkg/crypto/keys"
	"github.com/stretchr/testify/require"
	"github.com/tlinera/wallet-bridge/common"
)

func newOwner(t *testing.T) common.Owner {
	k, err := keys.NewPrivateKey()
	require.NoError(t, err)
	return common.OwnerFromPublicKey(k.PublicKey())
}

func newLedger() (*Ledger, *storage.MemCachedStore) {
	st := storage.NewMemCachedStore(storage.NewMemoryStore())
	return New(st), st
}

func TestLedgerCreditDebit(t *testing.T) {
	l, _ := newLedger()
	a, b := newOwner(t), newOwner(t)

	bal, err := l.Balance(a)
	require.NoError(t, err)
	require.True(t, bal.IsZero())

	require.NoError(t, l.Credit(a, common.AmountFromTokens(10)))
	require.NoError(t, l.Credit(b, common.AmountFromTokens(5)))
	require.NoError(t, l.Debit(a, common.AmountFromTokens(3)))

	bal, err = l.Balance(a)
	require.NoError(t, err)
	require.Equal(t, "7", bal.String())

	err = l.Debit(b, common.AmountFromTokens(6))
	require.ErrorIs(t, err, ErrInsufficientFunds)

	bal, err = l.Balance(b)
	require.NoError(t, err)
	require.Equal(t, "5", bal.String(), "failed debit must not change balance")

	total, err := l.Total()
	require.NoError(t, err)
	require.Equal(t, "12", total.String())
}

func TestLedgerOverflow(t *testing.T) {
	l, _ := newLedger()
	a := newOwner(t)

	require.NoError(t, l.Credit(a, common.MaxAmount))
	require.ErrorIs(t, l.Credit(a, common.AmountFromTokens(1)), common.ErrAmountOverflow)

	bal, err := l.Balance(a)
	require.NoError(t, err)
	require.True(t, bal.Equals(common.MaxAmount))
}

func TestLedgerEntries(t *testing.T) {
	l, st := newLedger()
	owners := []common.Owner{newOwner(t), newOwner(t), newOwner(t)}

	for i := range owners {
		require.NoError(t, l.Credit(owners[i], common.AmountFromTokens(uint64(i+1))))
	}
	require.NoError(t, l.Credit(common.ChainOwner, common.AmountFromTokens(100)))

	// drained owners disappear from the table
	require.NoError(t, l.Debit(owners[0], common.AmountFromTokens(1)))

	_, err := st.Get(balanceKey(owners[0]))
	require.ErrorIs(t, err, storage.ErrKeyNotFound)

	entries, err := l.Entries()
	require.NoError(t, err)
	require.Len(t, entries, 2)
	require.Negative(t, entries[0].Owner.Compare(entries[1].Owner))

	res, err := l.Owners()
	require.NoError(t, err)
	require.ElementsMatch(t, owners[1:], res)

	treasury, err := l.Balance(common.ChainOwner)
	require.NoError(t, err)
	require.Equal(t, "100", treasury.String())
}

func TestLedgerCorruptedEntry(t *testing.T) {
	l, st := newLedger()
	a := newOwner(t)

	st.Put(balanceKey(a), []byte{0xff}) // -1

	_, err := l.Balance(a)
	require.ErrorIs(t, err, ErrCorruptedEntry)

	_, err = l.Entries()
	require.ErrorIs(t, err, ErrCorruptedEntry)
}

func TestAccountString(t *testing.T) {
	a := Account{ChainID: common.ChainIDFromLabel("alpha"), Owner: newOwner(t)}
	require.Equal(t, a.Owner.String()+"@"+a.ChainID.String(), a.String())
}

func TestLedgerVersion(t *testing.T) {
	l, st := newLedger()
	a := newOwner(t)

	_, ok, err := l.Version()
	require.NoError(t, err)
	require.False(t, ok)

	require.NoError(t, l.Credit(a, common.AmountFromTokens(1)))
	l.SetVersion(common.Version)

	v, ok, err := l.Version()
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, common.Version, v)

	owners, err := l.Owners()
	require.NoError(t, err)
	require.Equal(t, []common.Owner{a}, owners)

	st.Put([]byte{versionKey}, []byte{0, 0, 0, 0, 0, 0, 0, 0, 1}) // 2^64
	_, _, err = l.Version()
	require.ErrorIs(t, err, ErrCorruptedEntry)
}
