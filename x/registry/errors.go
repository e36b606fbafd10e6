package registry

import (
	"github.com/iov-one/valset/errors"
)

// Error codes
// x/registry reserves 120 ~ 129.

var (
	// ErrNotInitialized is returned by any operation running before the
	// initial snapshot was published.
	ErrNotInitialized = errors.Register(120, "validator set not initialized")

	// ErrInitialized is returned by a repeated initialization attempt.
	ErrInitialized = errors.Register(121, "validator set already initialized")

	// ErrInvalidConfig means the target address has no complete
	// configuration record.
	ErrInvalidConfig = errors.Register(122, "no valid validator config")

	// ErrCapacity means adding would grow the roster beyond MaxValidators.
	ErrCapacity = errors.Register(123, "validator set at capacity")

	// ErrAlreadyMember / ErrNotMember signal a membership precondition
	// violation.
	ErrAlreadyMember = errors.Register(124, "already a validator set member")
	ErrNotMember     = errors.Register(125, "not a validator set member")

	// ErrRateLimited means a config change was attempted before the
	// cooldown window elapsed.
	ErrRateLimited = errors.Register(126, "config updated too recently")

	// ErrTimeOverflow means the cooldown arithmetic would overflow the
	// time representation.
	ErrTimeOverflow = errors.Register(127, "config update time overflow")

	// ErrIndexOutOfRange is returned by positional queries beyond the
	// current roster size.
	ErrIndexOutOfRange = errors.Register(128, "validator index out of range")
)
