/*
Package bridge implements the wallet bridge contract executed on every chain
participating in the bridge.

Each chain keeps a local ledger of owner balances of a single asset (see
bridgeconst.TickerSymbol). Owners move value to accounts living on other
chains with Transfer and Claim. Balance movement itself is performed by the
ledger primitive of the hosting chain, Contract only checks the witness of the
owner, converts accounts to the ledger shape and decides which chains must be
informed about the movement.

Approve and TransferFrom require delegated allowances and are rejected with
ErrUnsupported.

# Notification routing

After a successful Transfer, the target chain receives a Notify message if it
differs from the current chain.

After a successful Claim:
  - if the source account lives on the current chain, the target chain is
    notified as after Transfer;
  - otherwise the source chain receives exactly one Notify, the target chain
    is not notified.

# Messages

Notify message has no payload and its handling changes nothing. Duplicated,
reordered or lost notifications never affect the ledger.

	Notify:
	  - tag: 0x00

# Queries

Service provides ticker symbol and read-only access to the accounts of the
chain: single entry, all entries and all keys. Queries are not cached.
*/
package bridge
