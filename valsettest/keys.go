package valsettest

import (
	"crypto/rand"

	"golang.org/x/crypto/ed25519"

	"github.com/iov-one/valset"
)

// NewPubKey returns a fresh ed25519 public key, usable as a consensus
// public key in a validator configuration.
func NewPubKey() []byte {
	pub, _, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		panic(err)
	}
	return pub
}

// NewCondition returns a signature condition for a fresh key. Use its
// Address method to get a unique account address.
func NewCondition() valset.Condition {
	return valset.NewCondition("sig", "ed25519", NewPubKey())
}
