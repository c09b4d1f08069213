package bridge

import (
	"errors"
	"testing"

	"github.com/nspcc-dev/neo-go/pkg/core/storage"
	"github.com/nspcc-dev/neo-go/pkg/crypto/keys"
	"github.com/stretchr/testify/require"
	"github.com/tlinera/wallet-bridge/common"
	"github.com/tlinera/wallet-bridge/ledger"
	"go.uber.org/zap/zaptest"
)

type sentMessage struct {
	dest          common.ChainID
	msg           Message
	authenticated bool
}

// testRuntime keeps ledgers of all chains in memory and records sent
// messages.
type testRuntime struct {
	chain   common.ChainID
	signer  common.Owner
	ledgers map[common.ChainID]*ledger.Ledger
	sent    []sentMessage
}

func newTestRuntime(chain common.ChainID, others ...common.ChainID) *testRuntime {
	rt := &testRuntime{
		chain:   chain,
		ledgers: make(map[common.ChainID]*ledger.Ledger),
	}
	for _, id := range append(others, chain) {
		rt.ledgers[id] = ledger.New(storage.NewMemCachedStore(storage.NewMemoryStore()))
	}
	return rt
}

func (r *testRuntime) ChainID() common.ChainID { return r.chain }

func (r *testRuntime) CheckWitness(o common.Owner) bool { return o == r.signer }

func (r *testRuntime) OwnerBalance(o common.Owner) (common.Amount, error) {
	return r.ledgers[r.chain].Balance(o)
}

func (r *testRuntime) OwnerBalances() ([]ledger.Entry, error) {
	return r.ledgers[r.chain].Entries()
}

func (r *testRuntime) BalanceOwners() ([]common.Owner, error) {
	return r.ledgers[r.chain].Owners()
}

func (r *testRuntime) move(from, to ledger.Account, amount common.Amount) error {
	src, ok := r.ledgers[from.ChainID]
	if !ok {
		return ledger.ErrUnknownChain
	}
	dst, ok := r.ledgers[to.ChainID]
	if !ok {
		return ledger.ErrUnknownChain
	}
	if err := src.Debit(from.Owner, amount); err != nil {
		return err
	}
	return dst.Credit(to.Owner, amount)
}

func (r *testRuntime) Transfer(source common.Owner, dest ledger.Account, amount common.Amount) error {
	if source.IsChain() {
		if err := r.ledgers[r.chain].Credit(common.ChainOwner, amount); err != nil {
			return err
		}
	}
	return r.move(ledger.Account{ChainID: r.chain, Owner: source}, dest, amount)
}

func (r *testRuntime) Claim(source, dest ledger.Account, amount common.Amount) error {
	return r.move(source, dest, amount)
}

func (r *testRuntime) SendMessage(dest common.ChainID, msg Message, authenticated bool) {
	r.sent = append(r.sent, sentMessage{dest: dest, msg: msg, authenticated: authenticated})
}

func (r *testRuntime) balance(t *testing.T, chain common.ChainID, o common.Owner) string {
	b, err := r.ledgers[chain].Balance(o)
	require.NoError(t, err)
	return b.String()
}

func newOwner(t *testing.T) common.Owner {
	k, err := keys.NewPrivateKey()
	require.NoError(t, err)
	return common.OwnerFromPublicKey(k.PublicKey())
}

var (
	current = common.ChainIDFromLabel("current")
	chainX  = common.ChainIDFromLabel("x")
	chainY  = common.ChainIDFromLabel("y")
	chainZ  = common.ChainIDFromLabel("z")
)

func newTestContract(t *testing.T) (*Contract, *testRuntime, common.Owner, common.Owner) {
	rt := newTestRuntime(current, chainX, chainY, chainZ)
	c := New(rt, WithLogger(zaptest.NewLogger(t)))

	a, b := newOwner(t), newOwner(t)
	require.NoError(t, c.Instantiate(InitialState{Accounts: map[common.Owner]common.Amount{
		a: common.AmountFromTokens(10),
		b: common.AmountFromTokens(5),
	}}))

	rt.signer = a

	return c, rt, a, b
}

func TestInstantiate(t *testing.T) {
	c, rt, a, b := newTestContract(t)

	bal, err := c.Balance(a)
	require.NoError(t, err)
	require.Equal(t, "10", bal.String())

	bal, err = c.Balance(b)
	require.NoError(t, err)
	require.Equal(t, "5", bal.String())

	total, err := rt.ledgers[current].Total()
	require.NoError(t, err)
	require.Equal(t, "15", total.String())

	require.Empty(t, rt.sent)
}

func TestTickerSymbol(t *testing.T) {
	c, _, _, _ := newTestContract(t)

	resp, err := c.ExecuteOperation(TickerSymbolOp{})
	require.NoError(t, err)
	require.Equal(t, ResponseTickerSymbol, resp.Kind)
	require.Equal(t, "TLINERA", resp.TickerSymbol)
}

func TestTransfer(t *testing.T) {
	t.Run("local", func(t *testing.T) {
		c, rt, a, b := newTestContract(t)

		_, err := c.ExecuteOperation(TransferOp{
			Owner:         a,
			Amount:        common.AmountFromTokens(3),
			TargetAccount: Account{ChainID: current, Owner: b},
		})
		require.NoError(t, err)

		require.Equal(t, "7", rt.balance(t, current, a))
		require.Equal(t, "8", rt.balance(t, current, b))
		require.Empty(t, rt.sent)
	})

	t.Run("remote", func(t *testing.T) {
		c, rt, a, _ := newTestContract(t)
		d := newOwner(t)

		require.NoError(t, c.Transfer(a, common.AmountFromTokens(3), Account{ChainID: chainX, Owner: d}))

		require.Equal(t, "7", rt.balance(t, current, a))
		require.Equal(t, "3", rt.balance(t, chainX, d))
		require.Equal(t, []sentMessage{{dest: chainX, msg: Notify, authenticated: true}}, rt.sent)
	})

	t.Run("unauthorized", func(t *testing.T) {
		c, rt, _, b := newTestContract(t)

		err := c.Transfer(b, common.AmountFromTokens(1), Account{ChainID: chainX, Owner: b})
		require.ErrorIs(t, err, common.ErrUnauthorized)

		require.Equal(t, "5", rt.balance(t, current, b))
		require.Equal(t, "0", rt.balance(t, chainX, b))
		require.Empty(t, rt.sent)
	})

	t.Run("insufficient funds", func(t *testing.T) {
		c, rt, a, _ := newTestContract(t)

		err := c.Transfer(a, common.AmountFromTokens(11), Account{ChainID: chainX, Owner: a})
		require.ErrorIs(t, err, ledger.ErrInsufficientFunds)

		require.Equal(t, "10", rt.balance(t, current, a))
		require.Empty(t, rt.sent)
	})

	t.Run("unknown chain", func(t *testing.T) {
		c, rt, a, _ := newTestContract(t)

		err := c.Transfer(a, common.AmountFromTokens(1), Account{ChainID: common.ChainIDFromLabel("nowhere"), Owner: a})
		require.ErrorIs(t, err, ledger.ErrUnknownChain)
		require.Empty(t, rt.sent)
	})
}

func TestClaim(t *testing.T) {
	for _, tc := range []struct {
		name     string
		source   common.ChainID
		target   common.ChainID
		expected []sentMessage
	}{
		{
			name:     "local source, remote target",
			source:   current,
			target:   chainY,
			expected: []sentMessage{{dest: chainY, msg: Notify, authenticated: true}},
		},
		{
			name:   "local source, local target",
			source: current,
			target: current,
		},
		{
			name:     "remote source, remote target",
			source:   chainZ,
			target:   chainY,
			expected: []sentMessage{{dest: chainZ, msg: Notify, authenticated: true}},
		},
		{
			name:     "remote source, local target",
			source:   chainZ,
			target:   current,
			expected: []sentMessage{{dest: chainZ, msg: Notify, authenticated: true}},
		},
		{
			name:     "remote source, same remote target",
			source:   chainZ,
			target:   chainZ,
			expected: []sentMessage{{dest: chainZ, msg: Notify, authenticated: true}},
		},
	} {
		t.Run(tc.name, func(t *testing.T) {
			rt := newTestRuntime(current, chainY, chainZ)
			c := New(rt)
			e, d := newOwner(t), newOwner(t)

			require.NoError(t, rt.ledgers[tc.source].Credit(e, common.AmountFromTokens(5)))
			rt.signer = e

			_, err := c.ExecuteOperation(ClaimOp{
				SourceAccount: Account{ChainID: tc.source, Owner: e},
				Amount:        common.AmountFromTokens(2),
				TargetAccount: Account{ChainID: tc.target, Owner: d},
			})
			require.NoError(t, err)

			require.Equal(t, "3", rt.balance(t, tc.source, e))
			require.Equal(t, "2", rt.balance(t, tc.target, d))
			require.Equal(t, tc.expected, rt.sent)
		})
	}

	t.Run("unauthorized", func(t *testing.T) {
		c, rt, _, b := newTestContract(t)

		err := c.Claim(Account{ChainID: current, Owner: b}, common.AmountFromTokens(1), Account{ChainID: chainY, Owner: b})
		require.ErrorIs(t, err, common.ErrUnauthorized)

		require.Equal(t, "5", rt.balance(t, current, b))
		require.Empty(t, rt.sent)
	})

	t.Run("insufficient funds", func(t *testing.T) {
		c, rt, a, _ := newTestContract(t)

		err := c.Claim(Account{ChainID: chainZ, Owner: a}, common.AmountFromTokens(1), Account{ChainID: current, Owner: a})
		require.ErrorIs(t, err, ledger.ErrInsufficientFunds)

		require.Equal(t, "10", rt.balance(t, current, a))
		require.Empty(t, rt.sent)
	})
}

func TestUnsupported(t *testing.T) {
	c, rt, a, b := newTestContract(t)

	for _, op := range []Operation{
		ApproveOp{Owner: a, Spender: b, Allowance: common.AmountFromTokens(1)},
		TransferFromOp{Owner: a, Spender: b, Amount: common.AmountFromTokens(1), TargetAccount: Account{ChainID: chainX, Owner: b}},
	} {
		t.Run(op.Kind(), func(t *testing.T) {
			_, err := c.ExecuteOperation(op)
			require.ErrorIs(t, err, ErrUnsupported)

			require.Equal(t, "10", rt.balance(t, current, a))
			require.Equal(t, "5", rt.balance(t, current, b))
			require.Empty(t, rt.sent)
		})
	}
}

func TestExecuteMessage(t *testing.T) {
	c, rt, a, b := newTestContract(t)

	for i := 0; i < 2; i++ {
		require.NoError(t, c.ExecuteMessage(Notify))

		require.Equal(t, "10", rt.balance(t, current, a))
		require.Equal(t, "5", rt.balance(t, current, b))
		require.Empty(t, rt.sent)
	}

	require.ErrorIs(t, c.ExecuteMessage(Message(7)), ErrUnknownMessage)
}

type failingRuntime struct {
	*testRuntime
	err error
}

func (r failingRuntime) OwnerBalance(common.Owner) (common.Amount, error) {
	return common.Amount{}, r.err
}

func TestBalanceFailure(t *testing.T) {
	errStorage := errors.New("storage is down")
	c := New(failingRuntime{testRuntime: newTestRuntime(current), err: errStorage})

	_, err := c.ExecuteOperation(BalanceOp{Owner: newOwner(t)})
	require.ErrorIs(t, err, errStorage)
}
