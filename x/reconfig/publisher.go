package reconfig

import (
	"sync"

	"github.com/tendermint/tendermint/libs/log"

	"github.com/iov-one/valset"
	"github.com/iov-one/valset/errors"
	"github.com/iov-one/valset/gconf"
)

// pkgName keys the snapshot singleton in the store.
const pkgName = "reconfig"

// subscriberBuffer is the size of every subscription channel. A
// subscriber that stops draining its channel loses events once the
// buffer is full; publishing never blocks on a slow subscriber.
const subscriberBuffer = 16

// Snapshot is the payload a Publisher distributes. Implemented by the
// registry roster; the publisher itself never inspects the content
// beyond validation and serialization.
type Snapshot interface {
	gconf.ValidMarshaler
}

// Event is sent to every subscriber each time the published snapshot
// is replaced.
type Event struct {
	// Seq increases by one with every publication, starting at 1 for
	// the initial snapshot.
	Seq uint64
	// Snapshot is the newly published payload.
	Snapshot Snapshot
}

// Publisher holds the single published snapshot and notifies
// subscribers on every replacement. All writes are gated by the
// Capability minted in PublishInitial.
type Publisher struct {
	logger log.Logger

	mu   sync.RWMutex
	cap  *Capability
	seq  uint64
	subs []chan Event
}

// NewPublisher returns a publisher with no published snapshot yet.
// A nil logger defaults to a noop logger.
func NewPublisher(logger log.Logger) *Publisher {
	if logger == nil {
		logger = log.NewNopLogger()
	}
	return &Publisher{logger: logger}
}

// PublishInitial persists the first snapshot, notifies subscribers and
// mints the one and only write capability. Calling it a second time is
// an error, never a no-op.
func (p *Publisher) PublishInitial(db valset.KVStore, snap Snapshot) (*Capability, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.cap != nil {
		return nil, errors.Wrap(errors.ErrState, "already published")
	}
	exists, err := gconf.Exists(db, pkgName)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, errors.Wrap(errors.ErrState, "snapshot record already in store")
	}
	if err := gconf.Save(db, pkgName, snap); err != nil {
		return nil, err
	}
	p.cap = &Capability{owner: p}
	p.emit(snap)
	p.logger.Info("published initial snapshot")
	return p.cap, nil
}

// Resume mints a capability for a snapshot that is already in the
// store, without republishing it. This is the restart path: a fresh
// process finds the record persisted but holds no capability yet.
// Fails if nothing was published, or if this publisher already holds
// a capability.
func (p *Publisher) Resume(db valset.ReadOnlyKVStore) (*Capability, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.cap != nil {
		return nil, errors.Wrap(errors.ErrState, "capability already minted")
	}
	exists, err := gconf.Exists(db, pkgName)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, errors.Wrap(errors.ErrState, "no snapshot to resume from")
	}
	p.cap = &Capability{owner: p}
	p.logger.Info("resumed publishing for an existing snapshot")
	return p.cap, nil
}

// Publish atomically replaces the published snapshot and notifies all
// subscribers. The capability must be the one minted by this publisher
// in PublishInitial.
func (p *Publisher) Publish(c *Capability, db valset.KVStore, snap Snapshot) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.cap == nil {
		return errors.Wrap(errors.ErrState, "initial snapshot not published")
	}
	if c == nil || c != p.cap || c.owner != p {
		return errors.Wrap(errors.ErrUnauthorized, "capability mismatch")
	}
	if err := gconf.Save(db, pkgName, snap); err != nil {
		return err
	}
	p.emit(snap)
	return nil
}

// Current loads the published snapshot into dst. Returns ErrNotFound
// if nothing was ever published into this store.
func (p *Publisher) Current(db valset.ReadOnlyKVStore, dst gconf.Unmarshaler) error {
	return gconf.Load(db, pkgName, dst)
}

// Published returns whether this store holds a published snapshot.
func (p *Publisher) Published(db valset.ReadOnlyKVStore) (bool, error) {
	return gconf.Exists(db, pkgName)
}

// Subscribe returns a channel receiving one Event per publication.
// Call Unsubscribe when done to release the channel.
func (p *Publisher) Subscribe() <-chan Event {
	p.mu.Lock()
	defer p.mu.Unlock()

	ch := make(chan Event, subscriberBuffer)
	p.subs = append(p.subs, ch)
	return ch
}

// Unsubscribe removes and closes a channel obtained from Subscribe.
func (p *Publisher) Unsubscribe(sub <-chan Event) {
	p.mu.Lock()
	defer p.mu.Unlock()

	for i, ch := range p.subs {
		if ch == sub {
			p.subs = append(p.subs[:i], p.subs[i+1:]...)
			close(ch)
			return
		}
	}
}

// NumSubscribers returns the number of active subscriptions.
func (p *Publisher) NumSubscribers() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return len(p.subs)
}

// emit must be called with the write lock held. The send never
// blocks: a subscriber with a full buffer has the event dropped and
// logged instead of stalling publication for everyone.
func (p *Publisher) emit(snap Snapshot) {
	p.seq++
	ev := Event{Seq: p.seq, Snapshot: snap}
	for _, ch := range p.subs {
		select {
		case ch <- ev:
		default:
			p.logger.Error("dropping event for slow subscriber", "seq", p.seq)
		}
	}
}
