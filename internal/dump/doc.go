/*
Package dump provides I/O operations for collected ledger states of the wallet
bridge chains.

Dumps make network state reproducible: balances of every hosted chain are
persisted along with chain metadata and can be read back later, e.g. to
inspect the result of a scenario or to seed another network.

The package works with dumps stored in the file system using human-readable
encoding.
*/
package dump
