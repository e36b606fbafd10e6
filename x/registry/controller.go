package registry

import (
	"time"

	abci "github.com/tendermint/tendermint/abci/types"
	"github.com/tendermint/tendermint/libs/log"

	"github.com/iov-one/valset"
	"github.com/iov-one/valset/errors"
	"github.com/iov-one/valset/x/reconfig"
	"github.com/iov-one/valset/x/valconfig"
)

// ConfigUpdateCooldown is how long a validator must wait between two
// accepted configuration changes. Opportunistic update calls with an
// unchanged configuration are free, only genuine changes are limited.
const ConfigUpdateCooldown = 5 * time.Minute

// Controller owns all mutation and query logic of the validator
// roster. It is the only holder of the publishing capability, so no
// other code path can replace the published snapshot.
type Controller struct {
	auth      valset.Authenticator
	accounts  valconfig.Bucket
	publisher *reconfig.Publisher
	clock     valset.Clock
	logger    log.Logger

	// token is minted during Initialize and never leaves this struct.
	token *reconfig.Capability
}

// NewController wires the registry logic with its collaborators. A nil
// logger defaults to a noop logger.
func NewController(auth valset.Authenticator, publisher *reconfig.Publisher, clock valset.Clock, logger log.Logger) *Controller {
	if logger == nil {
		logger = log.NewNopLogger()
	}
	return &Controller{
		auth:      auth,
		accounts:  valconfig.NewBucket(),
		publisher: publisher,
		clock:     clock,
		logger:    logger,
	}
}

// Initialize publishes the empty initial snapshot and mints the
// publishing capability. Callable exactly once, only by the root
// authority. A second call is an error, not a no-op.
func (c *Controller) Initialize(ctx valset.Context, db valset.KVStore) error {
	if err := c.assertAdmin(ctx, db); err != nil {
		return err
	}
	if c.token != nil {
		return errors.Wrap(ErrInitialized, "capability already minted")
	}
	published, err := c.publisher.Published(db)
	if err != nil {
		return err
	}
	if published {
		return errors.Wrap(ErrInitialized, "snapshot already published")
	}

	snap := ValidatorSet{Scheme: 0, Validators: []ValidatorInfo{}}
	token, err := c.publisher.PublishInitial(db, &snap)
	if err != nil {
		return err
	}
	c.token = token
	c.logger.Info("validator registry initialized")
	return nil
}

// Resume reacquires the publishing capability for a registry that was
// initialized before a restart. Only the root authority may call it,
// and only when this controller holds no capability yet.
func (c *Controller) Resume(ctx valset.Context, db valset.KVStore) error {
	if err := c.assertAdmin(ctx, db); err != nil {
		return err
	}
	if c.token != nil {
		return errors.Wrap(ErrInitialized, "capability already minted")
	}
	published, err := c.publisher.Published(db)
	if err != nil {
		return err
	}
	if !published {
		return errors.Wrap(ErrNotInitialized, "no published snapshot")
	}
	token, err := c.publisher.Resume(db)
	if err != nil {
		return err
	}
	c.token = token
	c.logger.Info("validator registry resumed")
	return nil
}

// AddValidator appends a new roster entry for given owner address,
// with the configuration copied from x/valconfig and voting power of
// FixedVotingPower. Only the root authority may call it. Returns the
// validator updates for the consensus engine.
func (c *Controller) AddValidator(ctx valset.Context, db valset.KVStore, addr valset.Address) ([]abci.ValidatorUpdate, error) {
	snap, err := c.loadSnapshot(db)
	if err != nil {
		return nil, err
	}
	if err := c.assertAdmin(ctx, db); err != nil {
		return nil, err
	}
	ok, err := c.accounts.IsValid(db, addr)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, errors.Wrapf(ErrInvalidConfig, "address %s", addr)
	}
	if len(snap.Validators) >= MaxValidators {
		return nil, errors.Wrapf(ErrCapacity, "%d validators", len(snap.Validators))
	}
	if snap.index(addr) != -1 {
		return nil, errors.Wrapf(ErrAlreadyMember, "address %s", addr)
	}

	cfg, err := c.accounts.GetConfig(db, addr)
	if err != nil {
		return nil, err
	}
	prev := *snap
	snap.Validators = append([]ValidatorInfo(nil), snap.Validators...)
	snap.Validators = append(snap.Validators, ValidatorInfo{
		Address:          addr,
		Power:            FixedVotingPower,
		Config:           *cfg.Copy(),
		LastConfigUpdate: c.clock.Now(),
	})
	return c.publish(db, &prev, snap)
}

// RemoveValidator removes the roster entry of given owner address.
// Only the root authority may call it. The removed position is filled
// by the last entry, so positional queries are not stable across this
// call.
func (c *Controller) RemoveValidator(ctx valset.Context, db valset.KVStore, addr valset.Address) ([]abci.ValidatorUpdate, error) {
	snap, err := c.loadSnapshot(db)
	if err != nil {
		return nil, err
	}
	if err := c.assertAdmin(ctx, db); err != nil {
		return nil, err
	}
	i := snap.index(addr)
	if i == -1 {
		return nil, errors.Wrapf(ErrNotMember, "address %s", addr)
	}

	prev := *snap
	snap.Validators = append([]ValidatorInfo(nil), snap.Validators...)
	snap.remove(i)
	return c.publish(db, &prev, snap)
}

// UpdateConfig copies the latest raw configuration of given validator
// from x/valconfig into the roster and publishes the change. Only the
// operator registered for that validator may call it.
//
// When the raw configuration is missing, incomplete or identical to
// the one already in the roster the call is a no-op: no error, no
// publication, no notification. A genuine change is accepted at most
// once per ConfigUpdateCooldown; a change attempted within the window
// fails with ErrRateLimited instead of being skipped.
func (c *Controller) UpdateConfig(ctx valset.Context, db valset.KVStore, addr valset.Address) ([]abci.ValidatorUpdate, error) {
	snap, err := c.loadSnapshot(db)
	if err != nil {
		return nil, err
	}
	operator, err := c.accounts.GetOperator(db, addr)
	if errors.ErrNotFound.Is(err) {
		// never registered, so it cannot be a member either
		return nil, errors.Wrapf(ErrNotMember, "address %s", addr)
	}
	if err != nil {
		return nil, err
	}
	if !c.auth.HasAddress(ctx, operator) {
		return nil, errors.Wrapf(errors.ErrUnauthorized, "not the operator of %s", addr)
	}
	i := snap.index(addr)
	if i == -1 {
		return nil, errors.Wrapf(ErrNotMember, "address %s", addr)
	}

	cfg, err := c.accounts.GetConfig(db, addr)
	if err != nil {
		return nil, err
	}
	entry := &snap.Validators[i]
	if cfg.Validate() != nil || cfg.Equals(&entry.Config) {
		// nothing usable to apply, silently keep the current entry
		return nil, nil
	}

	overflowLimit := valset.MaxUnixMicro - valset.UnixMicro(ConfigUpdateCooldown/time.Microsecond)
	if entry.LastConfigUpdate > overflowLimit {
		return nil, errors.Wrapf(ErrTimeOverflow, "last update %d", entry.LastConfigUpdate)
	}
	if c.clock.Now() <= entry.LastConfigUpdate.Add(ConfigUpdateCooldown) {
		return nil, errors.Wrapf(ErrRateLimited, "last update %s", entry.LastConfigUpdate)
	}

	prev := *snap
	snap.Validators = append([]ValidatorInfo(nil), snap.Validators...)
	snap.Validators[i].Config = *cfg.Copy()
	snap.Validators[i].LastConfigUpdate = c.clock.Now()
	return c.publish(db, &prev, snap)
}

// IsValidator returns whether given owner address is a roster member.
func (c *Controller) IsValidator(db valset.ReadOnlyKVStore, addr valset.Address) (bool, error) {
	snap, err := c.loadSnapshot(db)
	if err != nil {
		return false, err
	}
	return snap.index(addr) != -1, nil
}

// ValidatorConfig returns the configuration snapshot stored in the
// roster for given member address.
func (c *Controller) ValidatorConfig(db valset.ReadOnlyKVStore, addr valset.Address) (*valconfig.Config, error) {
	snap, err := c.loadSnapshot(db)
	if err != nil {
		return nil, err
	}
	i := snap.index(addr)
	if i == -1 {
		return nil, errors.Wrapf(ErrNotMember, "address %s", addr)
	}
	return snap.Validators[i].Config.Copy(), nil
}

// SetSize returns the current roster size.
func (c *Controller) SetSize(db valset.ReadOnlyKVStore) (int, error) {
	snap, err := c.loadSnapshot(db)
	if err != nil {
		return 0, err
	}
	return len(snap.Validators), nil
}

// ValidatorAt returns the owner address of the i-th roster entry.
// Positions are not stable across mutating calls.
func (c *Controller) ValidatorAt(db valset.ReadOnlyKVStore, i int) (valset.Address, error) {
	snap, err := c.loadSnapshot(db)
	if err != nil {
		return nil, err
	}
	if i < 0 || i >= len(snap.Validators) {
		return nil, errors.Wrapf(ErrIndexOutOfRange, "index %d of %d", i, len(snap.Validators))
	}
	return snap.Validators[i].Address, nil
}

func (c *Controller) loadSnapshot(db valset.ReadOnlyKVStore) (*ValidatorSet, error) {
	var snap ValidatorSet
	if err := c.publisher.Current(db, &snap); err != nil {
		if errors.ErrNotFound.Is(err) {
			return nil, errors.Wrap(ErrNotInitialized, "no published snapshot")
		}
		return nil, err
	}
	return &snap, nil
}

func (c *Controller) assertAdmin(ctx valset.Context, db valset.ReadOnlyKVStore) error {
	conf, err := loadConf(db)
	if err != nil {
		return err
	}
	if !c.auth.HasAddress(ctx, conf.Admin) {
		return errors.Wrap(errors.ErrUnauthorized, "root authority required")
	}
	return nil
}

func (c *Controller) publish(db valset.KVStore, prev, next *ValidatorSet) ([]abci.ValidatorUpdate, error) {
	if c.token == nil {
		return nil, errors.Wrap(ErrNotInitialized, "capability not held")
	}
	if err := c.publisher.Publish(c.token, db, next); err != nil {
		return nil, err
	}
	c.logger.Info("published validator set", "size", len(next.Validators))
	return Diff(prev, next), nil
}
