package bridge

import (
	"fmt"

	"github.com/tlinera/wallet-bridge/bridge/bridgeconst"
	"github.com/tlinera/wallet-bridge/common"
)

// AccountEntry is a balance of the single owner.
type AccountEntry struct {
	Key   common.Owner  `json:"key"`
	Value common.Amount `json:"value"`
}

// Service serves read-only queries over the balances of the chain.
type Service struct {
	r Reader
}

// NewService returns Service reading balances from r.
func NewService(r Reader) *Service {
	return &Service{r: r}
}

// TickerSymbol returns display symbol of the asset.
func (s *Service) TickerSymbol() string {
	return bridgeconst.TickerSymbol
}

// Accounts returns view over the ledger accounts.
func (s *Service) Accounts() Accounts {
	return Accounts{r: s.r}
}

// Accounts is a read-only view over the ledger accounts.
type Accounts struct {
	r Reader
}

// Entry returns balance of the owner. Unknown owners have zero balance.
func (a Accounts) Entry(owner common.Owner) (AccountEntry, error) {
	v, err := a.r.OwnerBalance(owner)
	if err != nil {
		return AccountEntry{}, fmt.Errorf("read balance of %s: %w", owner, err)
	}
	return AccountEntry{Key: owner, Value: v}, nil
}

// Entries returns balances of all owners.
func (a Accounts) Entries() ([]AccountEntry, error) {
	entries, err := a.r.OwnerBalances()
	if err != nil {
		return nil, fmt.Errorf("read balances: %w", err)
	}

	res := make([]AccountEntry, len(entries))
	for i := range entries {
		res[i] = AccountEntry{Key: entries[i].Owner, Value: entries[i].Amount}
	}
	return res, nil
}

// Keys returns all owners recorded in the ledger.
func (a Accounts) Keys() ([]common.Owner, error) {
	owners, err := a.r.BalanceOwners()
	if err != nil {
		return nil, fmt.Errorf("read owners: %w", err)
	}
	return owners, nil
}
