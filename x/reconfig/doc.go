/*
Package reconfig implements the publication side of the validator set
registry: a single published snapshot held in the store, replaced only
through a capability gated write operation, with a change notification
emitted to all subscribers on every replacement.

The capability is minted exactly once per process, when the initial
snapshot is published or when an already persisted snapshot is resumed
after a restart. Whoever holds it is the only writer for the lifetime
of the process; there is no way to mint a second one or to forge it
from outside this package.
*/
package reconfig
