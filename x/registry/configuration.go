package registry

import (
	"github.com/iov-one/valset"
	"github.com/iov-one/valset/errors"
	"github.com/iov-one/valset/gconf"
)

// pkgName keys the registry configuration singleton in the store.
const pkgName = "registry"

// Configuration holds the registry settings that are decided at
// genesis time.
type Configuration struct {
	// Admin is the root authority: the only account allowed to
	// initialize the registry and to add or remove validators.
	Admin valset.Address
}

func (c *Configuration) Validate() error {
	if err := c.Admin.Validate(); err != nil {
		return errors.Wrap(err, "admin")
	}
	return nil
}

func (c *Configuration) Marshal() ([]byte, error) {
	return cdc.MarshalBinaryBare(c)
}

func (c *Configuration) Unmarshal(raw []byte) error {
	return cdc.UnmarshalBinaryBare(raw, c)
}

func loadConf(db valset.ReadOnlyKVStore) (*Configuration, error) {
	var c Configuration
	if err := gconf.Load(db, pkgName, &c); err != nil {
		return nil, errors.Wrap(err, "configuration")
	}
	return &c, nil
}

func saveConf(db valset.KVStore, c *Configuration) error {
	return gconf.Save(db, pkgName, c)
}
