package dump

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/nspcc-dev/neo-go/pkg/crypto/keys"
	"github.com/stretchr/testify/require"
	"github.com/tlinera/wallet-bridge/common"
)

func newOwner(t *testing.T) common.Owner {
	k, err := keys.NewPrivateKey()
	require.NoError(t, err)
	return common.OwnerFromPublicKey(k.PublicKey())
}

func TestID(t *testing.T) {
	id := ID{Label: "testnet", Height: 42}
	require.Equal(t, "testnet-42", id.String())

	var res ID
	require.NoError(t, res.decodeString("testnet-42-chains.json"))
	require.Equal(t, id, res)

	require.Error(t, res.decodeString("testnet"))
	require.Error(t, res.decodeString("testnet-x-chains.json"))
}

type dumpedBalance struct {
	owner  common.Owner
	amount string
}

func TestRoundTrip(t *testing.T) {
	dir := t.TempDir()
	id := ID{Label: "scenario", Height: 7}

	alpha, beta := common.ChainIDFromLabel("alpha"), common.ChainIDFromLabel("beta")
	a, b := newOwner(t), newOwner(t)

	amount, err := common.ParseAmount("2.5")
	require.NoError(t, err)

	c, err := NewCreator(dir, id)
	require.NoError(t, err)

	w := c.AddChain("alpha", alpha)
	require.NoError(t, w.Write(a, common.AmountFromTokens(10)))
	require.NoError(t, w.Write(b, amount))

	c.AddChain("beta", beta)

	require.NoError(t, c.Flush())
	c.Close()

	_, err = NewCreator(dir, id)
	require.ErrorIs(t, err, os.ErrExist)

	var calls int
	err = IterateDumps(dir, func(res ID, r *Reader) {
		calls++
		require.Equal(t, id, res)

		type chain struct {
			label string
			id    common.ChainID
			total string
		}
		var chains []chain
		r.IterateChains(func(label string, id common.ChainID, total common.Amount) {
			chains = append(chains, chain{label, id, total.String()})
		})
		require.Equal(t, []chain{
			{"alpha", alpha, "12.5"},
			{"beta", beta, "0"},
		}, chains)

		var balances []dumpedBalance
		r.IterateBalances(alpha, func(owner common.Owner, amount common.Amount) {
			balances = append(balances, dumpedBalance{owner, amount.String()})
		})
		require.Equal(t, []dumpedBalance{{a, "10"}, {b, "2.5"}}, balances)

		r.IterateBalances(beta, func(common.Owner, common.Amount) {
			t.Fatal("no balances expected")
		})
	})
	require.NoError(t, err)
	require.Equal(t, 1, calls)
}

func TestIterateDumps(t *testing.T) {
	t.Run("missing dir", func(t *testing.T) {
		err := IterateDumps(filepath.Join(t.TempDir(), "missing"), func(ID, *Reader) {
			t.Fatal("no dumps expected")
		})
		require.NoError(t, err)
	})

	t.Run("corrupted balances", func(t *testing.T) {
		dir := t.TempDir()
		id := ID{Label: "broken", Height: 1}

		c, err := NewCreator(dir, id)
		require.NoError(t, err)
		c.AddChain("alpha", common.ChainIDFromLabel("alpha"))
		require.NoError(t, c.Flush())
		c.Close()

		err = os.WriteFile(filepath.Join(dir, "broken-1-balances.csv"), []byte("x,y,z\n"), 0600)
		require.NoError(t, err)

		err = IterateDumps(dir, func(ID, *Reader) {})
		require.Error(t, err)
	})

	t.Run("unsupported version", func(t *testing.T) {
		dir := t.TempDir()

		err := os.WriteFile(filepath.Join(dir, "old-1-chains.json"), []byte(`[{"version":1,"label":"alpha"}]`), 0600)
		require.NoError(t, err)
		err = os.WriteFile(filepath.Join(dir, "old-1-balances.csv"), nil, 0600)
		require.NoError(t, err)

		err = IterateDumps(dir, func(ID, *Reader) {
			t.Fatal("no dumps expected")
		})
		require.ErrorContains(t, err, "unsupported version")
	})
}
