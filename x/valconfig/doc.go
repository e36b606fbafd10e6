/*
Package valconfig stores the raw operational configuration of each
validator account: the consensus public key and the network addresses
the validator and its full nodes listen on, together with the operator
account that is allowed to rotate them.

The registry in x/registry never trusts these records directly. It
copies a snapshot of the configuration into the published roster when
a validator is added or explicitly reconfigured.
*/
package valconfig
