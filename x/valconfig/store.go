package valconfig

import (
	"github.com/iov-one/valset"
	"github.com/iov-one/valset/errors"
)

// bucketPrefix namespaces all validator account records in the store.
const bucketPrefix = "valconfig:"

// Bucket provides access to validator account records, keyed by the
// validator owner address.
type Bucket struct{}

// NewBucket returns a bucket for the validator account records.
func NewBucket() Bucket {
	return Bucket{}
}

func dbKey(addr valset.Address) []byte {
	return append([]byte(bucketPrefix), addr...)
}

// Save validates and persists the account record.
func (b Bucket) Save(db valset.KVStore, va *ValidatorAccount) error {
	if err := va.Validate(); err != nil {
		return err
	}
	raw, err := cdc.MarshalBinaryBare(va)
	if err != nil {
		return errors.Wrap(errors.ErrState, err.Error())
	}
	return db.Set(dbKey(va.Address), raw)
}

// Get returns the account record for given validator owner address or
// ErrNotFound if the address was never registered.
func (b Bucket) Get(db valset.ReadOnlyKVStore, addr valset.Address) (*ValidatorAccount, error) {
	raw, err := db.Get(dbKey(addr))
	if err != nil {
		return nil, err
	}
	if raw == nil {
		return nil, errors.Wrapf(errors.ErrNotFound, "validator account %s", addr)
	}
	var va ValidatorAccount
	if err := cdc.UnmarshalBinaryBare(raw, &va); err != nil {
		return nil, errors.Wrap(errors.ErrState, err.Error())
	}
	return &va, nil
}

// SetConfig replaces the raw configuration of an already registered
// account.
func (b Bucket) SetConfig(db valset.KVStore, addr valset.Address, c *Config) error {
	va, err := b.Get(db, addr)
	if err != nil {
		return err
	}
	va.Config = c
	return b.Save(db, va)
}

// SetOperator hands the rotation right of an already registered
// account over to another operator account.
func (b Bucket) SetOperator(db valset.KVStore, addr, operator valset.Address) error {
	va, err := b.Get(db, addr)
	if err != nil {
		return err
	}
	va.Operator = operator
	return b.Save(db, va)
}

// GetConfig returns the raw configuration of given address, or
// ErrNotFound if there is no account record.
//
// A registered account without configuration returns a nil config and
// no error. Callers that need a usable configuration must check
// IsValid first.
func (b Bucket) GetConfig(db valset.ReadOnlyKVStore, addr valset.Address) (*Config, error) {
	va, err := b.Get(db, addr)
	if err != nil {
		return nil, err
	}
	return va.Config, nil
}

// GetOperator returns the operator account registered for given
// validator owner address.
func (b Bucket) GetOperator(db valset.ReadOnlyKVStore, addr valset.Address) (valset.Address, error) {
	va, err := b.Get(db, addr)
	if err != nil {
		return nil, err
	}
	return va.Operator, nil
}

// IsValid returns true if the address has an account record with a
// complete configuration. Storage errors are returned, a missing or
// incomplete record is not an error.
func (b Bucket) IsValid(db valset.ReadOnlyKVStore, addr valset.Address) (bool, error) {
	va, err := b.Get(db, addr)
	switch {
	case errors.ErrNotFound.Is(err):
		return false, nil
	case err != nil:
		return false, err
	}
	return va.Config.Validate() == nil, nil
}
