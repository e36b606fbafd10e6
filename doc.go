/*
Package valset defines the common interfaces that tie the validator set
registry together: addresses and conditions for identifying callers,
the microsecond time type used for rate limiting, key-value store
access, and the message/handler plumbing that extensions register
themselves with.

The actual registry logic lives in x/registry. Supporting state
(per-validator configuration records, the published roster snapshot)
lives in x/valconfig and x/reconfig.
*/
package valset
