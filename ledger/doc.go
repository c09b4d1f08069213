/*
Package ledger provides the account shape used by the ledger primitive and a
reference per-chain balance table.

Ledger keeps balances of a single chain in a key-value store. Zero balances
are never stored, so the list of owners contains only owners holding funds.

# Storage model

Key-value storage format:
  - 'c' -> bigint
    balance of the chain treasury
  - a<common.Owner> -> bigint
    balance sheet of all owners on the chain
  - 'v' -> bigint
    layout version, set once the genesis distribution is applied
*/
package ledger
