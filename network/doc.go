/*
Package network provides a reference host for the wallet bridge contract.

Network keeps several chains in one process and supplies everything the
contract expects from the hosting chain: the ledger primitive, witness checks
and cross-chain message delivery.

Every operation runs to completion under the Network lock. Ledger writes and
outgoing messages of an operation become visible only if the operation
succeeds, so a failed operation has no effect at all.

Messages are delivered at least once and in order per source chain. Inbox of
a chain is a FIFO queue, Redeliver re-queues a message at the inbox head
simulating a retry of the message substrate.
*/
package network
