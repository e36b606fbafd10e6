package valconfig

import (
	"bytes"
	"regexp"

	"golang.org/x/crypto/ed25519"

	"github.com/iov-one/valset"
	"github.com/iov-one/valset/errors"
)

var isName = regexp.MustCompile(`^[a-zA-Z0-9_.-]{1,64}$`).MatchString

// Config is the operational configuration of one validator: the key it
// signs consensus messages with and where to reach it on the network.
type Config struct {
	// ConsensusPubKey is the ed25519 public key used in consensus.
	ConsensusPubKey []byte
	// ValidatorNetAddresses are the addresses other validators dial.
	ValidatorNetAddresses []string
	// FullnodeNetAddresses are the addresses full nodes dial.
	FullnodeNetAddresses []string
}

// Validate ensures the config is complete enough to take part in
// consensus.
func (c *Config) Validate() error {
	if c == nil {
		return errors.Wrap(errors.ErrEmpty, "no config")
	}
	if len(c.ConsensusPubKey) != ed25519.PublicKeySize {
		return errors.Wrapf(errors.ErrInput, "consensus pubkey must be %d bytes", ed25519.PublicKeySize)
	}
	if len(c.ValidatorNetAddresses) == 0 {
		return errors.Wrap(errors.ErrEmpty, "validator network addresses")
	}
	return nil
}

// Equals returns true if both configs hold exactly the same content.
func (c *Config) Equals(o *Config) bool {
	if c == nil || o == nil {
		return c == o
	}
	if !bytes.Equal(c.ConsensusPubKey, o.ConsensusPubKey) {
		return false
	}
	return equalStrings(c.ValidatorNetAddresses, o.ValidatorNetAddresses) &&
		equalStrings(c.FullnodeNetAddresses, o.FullnodeNetAddresses)
}

// Copy returns a deep copy that shares no memory with the original, so
// a snapshot taken by the registry cannot be mutated through the
// stored record.
func (c *Config) Copy() *Config {
	if c == nil {
		return nil
	}
	cpy := Config{
		ConsensusPubKey:       append([]byte(nil), c.ConsensusPubKey...),
		ValidatorNetAddresses: append([]string(nil), c.ValidatorNetAddresses...),
		FullnodeNetAddresses:  append([]string(nil), c.FullnodeNetAddresses...),
	}
	return &cpy
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// ValidatorAccount ties a validator owner account to its operator and
// the current raw configuration.
type ValidatorAccount struct {
	// Address is the validator owner account.
	Address valset.Address
	// Operator is the account allowed to rotate the configuration.
	Operator valset.Address
	// Name is a human readable identifier, for operators and explorers.
	Name string
	// Config is the current raw configuration, nil until first set.
	Config *Config
}

// Validate ensures the account record is well formed. A nil Config is
// allowed: an account may be registered before its first configuration
// is known.
func (va *ValidatorAccount) Validate() error {
	if err := va.Address.Validate(); err != nil {
		return errors.Wrap(err, "address")
	}
	if err := va.Operator.Validate(); err != nil {
		return errors.Wrap(err, "operator")
	}
	if !isName(va.Name) {
		return errors.Wrapf(errors.ErrInput, "name: %q", va.Name)
	}
	if va.Config != nil {
		if err := va.Config.Validate(); err != nil {
			return errors.Wrap(err, "config")
		}
	}
	return nil
}
