package valset

import (
	"encoding/json"
	"math"
	"time"

	"github.com/iov-one/valset/errors"
)

// UnixMicro represents a point in time as microseconds since the UNIX
// epoch. Instead of using Go's time.Time that includes nanoseconds use
// a primitive int64 type and microsecond precision. This is the
// resolution the registry rate limiting is defined in and it survives
// serialization in any language.
type UnixMicro int64

// MaxUnixMicro is the greatest time value that can be represented.
const MaxUnixMicro UnixMicro = math.MaxInt64

// Time returns a time.Time structure that represents the same moment in time.
func (t UnixMicro) Time() time.Time {
	return time.Unix(0, int64(t)*int64(time.Microsecond))
}

// IsZero returns true if this time represents a zero value.
func (t UnixMicro) IsZero() bool {
	return t == 0
}

// Add modifies this time by given duration. This is compatible with
// time.Time.Add method. The result saturates at MaxUnixMicro instead
// of wrapping around.
func (t UnixMicro) Add(d time.Duration) UnixMicro {
	delta := UnixMicro(d / time.Microsecond)
	if delta > 0 && t > MaxUnixMicro-delta {
		return MaxUnixMicro
	}
	return t + delta
}

// AsUnixMicro converts given Time structure into its microsecond
// precision representation.
func AsUnixMicro(t time.Time) UnixMicro {
	return UnixMicro(t.UnixNano() / int64(time.Microsecond))
}

// Validate returns an error if this time value is invalid.
func (t UnixMicro) Validate() error {
	if t < 0 {
		return errors.Wrap(errors.ErrState, "negative time value")
	}
	return nil
}

// String returns the usual string representation of this time as the
// time.Time structure would.
func (t UnixMicro) String() string {
	return t.Time().UTC().String()
}

// UnmarshalJSON supports unmarshaling both as time.Time and from a
// number. Usually a number is used as a representation of this time in
// JSON but it is convenient to use a string format in configurations
// (ie genesis file).
func (t *UnixMicro) UnmarshalJSON(raw []byte) error {
	var micro int64
	if err := json.Unmarshal(raw, &micro); err == nil {
		if micro < 0 {
			return errors.Wrap(errors.ErrInput, "time before epoch")
		}
		*t = UnixMicro(micro)
		return nil
	}

	var stdtime time.Time
	if err := json.Unmarshal(raw, &stdtime); err == nil {
		micro := AsUnixMicro(stdtime)
		if micro < 0 {
			return errors.Wrap(errors.ErrInput, "time before epoch")
		}
		*t = micro
		return nil
	}

	return errors.Wrap(errors.ErrInput, "invalid time format")
}

// Clock is a source of the current time. Implementations must be
// monotonically non-decreasing between calls.
type Clock interface {
	Now() UnixMicro
}

// WallClock returns a Clock following the system time.
func WallClock() Clock {
	return wallClock{}
}

type wallClock struct{}

func (wallClock) Now() UnixMicro {
	return AsUnixMicro(time.Now())
}
