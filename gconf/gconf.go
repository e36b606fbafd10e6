// Package gconf provides a set of helpers for accessing singleton
// configuration records. Each package persists at most one
// configuration object under a well-known key derived from the package
// name.
package gconf

import (
	"github.com/iov-one/valset/errors"
)

// ReadStore is a subset of valset.ReadOnlyKVStore.
type ReadStore interface {
	Get([]byte) ([]byte, error)
}

// Store is a subset of valset.KVStore.
type Store interface {
	ReadStore
	Set([]byte, []byte) error
}

// Save will Validate the object, before writing it to a special
// "configuration" singleton for that package name.
func Save(db Store, pkg string, src ValidMarshaler) error {
	key := []byte("_c:" + pkg)
	if err := src.Validate(); err != nil {
		return errors.Wrapf(err, "validation: key %q", key)
	}
	raw, err := src.Marshal()
	if err != nil {
		return errors.Wrapf(err, "marshal: key %q", key)
	}
	return db.Set(key, raw)
}

// Load reads the configuration singleton for that package name into dst.
// Returns ErrNotFound if no configuration was ever saved.
func Load(db ReadStore, pkg string, dst Unmarshaler) error {
	key := []byte("_c:" + pkg)
	raw, err := db.Get(key)
	if err != nil {
		return err
	}
	if raw == nil {
		return errors.Wrapf(errors.ErrNotFound, "key %q", key)
	}
	if err := dst.Unmarshal(raw); err != nil {
		return errors.Wrapf(err, "unmarshal: key %q", key)
	}
	return nil
}

// Exists returns whether a configuration singleton was ever saved for
// that package name.
func Exists(db ReadStore, pkg string) (bool, error) {
	raw, err := db.Get([]byte("_c:" + pkg))
	if err != nil {
		return false, err
	}
	return raw != nil, nil
}

// ValidMarshaler is implemented by objects that can serialize
// themselves to a binary representation after a successful validation.
type ValidMarshaler interface {
	Marshal() ([]byte, error)
	Validate() error
}

// Unmarshaler is implemented by objects that can load their state from
// a given binary representation.
type Unmarshaler interface {
	Unmarshal([]byte) error
}
