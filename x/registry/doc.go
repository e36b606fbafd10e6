/*
Package registry maintains the authoritative roster of consensus
validators: who takes part, with which configuration, and when that
configuration last changed.

The roster is published as a single snapshot through x/reconfig. All
mutations go through the Controller, which holds the only publishing
capability, checks every invariant before writing and never leaves a
partially applied change visible: either the complete new snapshot is
published together with a change notification, or nothing changes.

Invariants kept across every operation: validator addresses are
unique, the roster never exceeds MaxValidators entries and every entry
has voting power of exactly FixedVotingPower.

Removal swaps the removed entry with the last one, so positions
reported by ValidatorAt are not stable across mutations. Callers must
never store an index across calls that may mutate the roster.
*/
package registry
