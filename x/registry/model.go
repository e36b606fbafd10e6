package registry

import (
	abci "github.com/tendermint/tendermint/abci/types"

	"github.com/iov-one/valset"
	"github.com/iov-one/valset/errors"
	"github.com/iov-one/valset/x/valconfig"
)

const (
	// MaxValidators bounds the roster size.
	MaxValidators = 256

	// FixedVotingPower is the voting power of every roster entry. The
	// field exists for future extension, any other value is a consensus
	// safety violation.
	FixedVotingPower = 1
)

// ValidatorInfo is one roster entry.
type ValidatorInfo struct {
	// Address is the validator owner account.
	Address valset.Address
	// Power is always FixedVotingPower.
	Power int64
	// Config is a snapshot of the validator configuration as last read
	// from x/valconfig, not a live reference.
	Config valconfig.Config
	// LastConfigUpdate is the time of the last accepted config change,
	// zero until the first one.
	LastConfigUpdate valset.UnixMicro
}

// Validate ensures a single entry is well formed.
func (vi *ValidatorInfo) Validate() error {
	if err := vi.Address.Validate(); err != nil {
		return errors.Wrap(err, "address")
	}
	if vi.Power != FixedVotingPower {
		return errors.Wrapf(errors.ErrState, "voting power: %d", vi.Power)
	}
	if err := vi.Config.Validate(); err != nil {
		return errors.Wrap(err, "config")
	}
	if err := vi.LastConfigUpdate.Validate(); err != nil {
		return errors.Wrap(err, "last config update")
	}
	return nil
}

// ValidatorSet is the published roster snapshot. Entry order carries
// no meaning beyond positional queries and may change on removal.
type ValidatorSet struct {
	// Scheme identifies the consensus crypto scheme in effect. It is
	// carried through publication untouched.
	Scheme uint32
	// Validators are the roster entries.
	Validators []ValidatorInfo
}

// Validate checks all roster invariants: well formed entries, unique
// addresses and bounded size.
func (vs *ValidatorSet) Validate() error {
	if len(vs.Validators) > MaxValidators {
		return errors.Wrapf(errors.ErrState, "%d validators", len(vs.Validators))
	}
	for i := range vs.Validators {
		if err := vs.Validators[i].Validate(); err != nil {
			return errors.Wrapf(err, "validator %d", i)
		}
		for j := range vs.Validators[:i] {
			if vs.Validators[i].Address.Equals(vs.Validators[j].Address) {
				return errors.Wrapf(errors.ErrDuplicate, "address %s", vs.Validators[i].Address)
			}
		}
	}
	return nil
}

// snapshotFormat versions the persisted roster encoding. Because the
// field always encodes, even the empty initial roster serializes to a
// non-empty record and stays distinguishable from an absent one.
const snapshotFormat = 1

// storedValidatorSet is the wire shape of a persisted roster.
type storedValidatorSet struct {
	Format     uint32
	Scheme     uint32
	Validators []ValidatorInfo
}

func (vs *ValidatorSet) Marshal() ([]byte, error) {
	rec := storedValidatorSet{
		Format:     snapshotFormat,
		Scheme:     vs.Scheme,
		Validators: vs.Validators,
	}
	return cdc.MarshalBinaryBare(rec)
}

func (vs *ValidatorSet) Unmarshal(raw []byte) error {
	var rec storedValidatorSet
	if err := cdc.UnmarshalBinaryBare(raw, &rec); err != nil {
		return errors.Wrap(errors.ErrState, err.Error())
	}
	if rec.Format != snapshotFormat {
		return errors.Wrapf(errors.ErrState, "unknown snapshot format %d", rec.Format)
	}
	vs.Scheme = rec.Scheme
	vs.Validators = rec.Validators
	return nil
}

// index returns the position of the entry with given address, or -1.
// Address uniqueness guarantees any match is the only match.
func (vs *ValidatorSet) index(addr valset.Address) int {
	for i := range vs.Validators {
		if vs.Validators[i].Address.Equals(addr) {
			return i
		}
	}
	return -1
}

// remove drops the entry at position i by swapping in the last entry.
// O(1), but positions of remaining entries change.
func (vs *ValidatorSet) remove(i int) {
	last := len(vs.Validators) - 1
	vs.Validators[i] = vs.Validators[last]
	vs.Validators = vs.Validators[:last]
}

// AsABCI expresses the full roster as validator updates for the
// consensus engine.
func (vs *ValidatorSet) AsABCI() []abci.ValidatorUpdate {
	updates := make([]abci.ValidatorUpdate, len(vs.Validators))
	for i := range vs.Validators {
		updates[i] = abciUpdate(&vs.Validators[i], vs.Validators[i].Power)
	}
	return updates
}

// Diff computes the validator updates that bring a consensus engine
// from the prev roster to the next one. Removed consensus keys get
// power zero, added or rotated keys get the entry power.
func Diff(prev, next *ValidatorSet) []abci.ValidatorUpdate {
	var updates []abci.ValidatorUpdate

	for i := range next.Validators {
		vi := &next.Validators[i]
		j := prev.index(vi.Address)
		if j == -1 || !prev.Validators[j].Config.Equals(&vi.Config) {
			updates = append(updates, abciUpdate(vi, vi.Power))
		}
	}
	for i := range prev.Validators {
		vi := &prev.Validators[i]
		j := next.index(vi.Address)
		if j == -1 {
			updates = append(updates, abciUpdate(vi, 0))
			continue
		}
		// a rotated consensus key must be retired explicitly
		if !equalKeys(vi, &next.Validators[j]) {
			updates = append(updates, abciUpdate(vi, 0))
		}
	}
	return updates
}

func equalKeys(a, b *ValidatorInfo) bool {
	if len(a.Config.ConsensusPubKey) != len(b.Config.ConsensusPubKey) {
		return false
	}
	for i := range a.Config.ConsensusPubKey {
		if a.Config.ConsensusPubKey[i] != b.Config.ConsensusPubKey[i] {
			return false
		}
	}
	return true
}

func abciUpdate(vi *ValidatorInfo, power int64) abci.ValidatorUpdate {
	return abci.ValidatorUpdate{
		PubKey: abci.PubKey{
			Type: "ed25519",
			Data: vi.Config.ConsensusPubKey,
		},
		Power: power,
	}
}
