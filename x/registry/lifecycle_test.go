package registry

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/iov-one/valset"
	"github.com/iov-one/valset/errors"
	"github.com/iov-one/valset/store"
	"github.com/iov-one/valset/valsettest"
	"github.com/iov-one/valset/x/reconfig"
	"github.com/iov-one/valset/x/valconfig"
)

// fixture wires a controller with all collaborators mocked or backed
// by a memory store, initialized and ready for mutations.
type fixture struct {
	db        valset.CacheableKVStore
	ctrl      *Controller
	clock     *valsettest.Clock
	publisher *reconfig.Publisher
	auth      *valsettest.CtxAuth
	bucket    valconfig.Bucket
	admin     valset.Condition
	adminCtx  valset.Context
}

func newFixture(t testing.TB) *fixture {
	t.Helper()

	f := &fixture{
		db:        store.MemStore(),
		clock:     valsettest.NewClock(1000000),
		publisher: reconfig.NewPublisher(nil),
		auth:      &valsettest.CtxAuth{Key: "auth"},
		bucket:    valconfig.NewBucket(),
		admin:     valsettest.NewCondition(),
	}
	f.ctrl = NewController(f.auth, f.publisher, f.clock, nil)
	f.adminCtx = f.auth.SetConditions(context.Background(), f.admin)

	if err := saveConf(f.db, &Configuration{Admin: f.admin.Address()}); err != nil {
		t.Fatalf("cannot save configuration: %+v", err)
	}
	if err := f.ctrl.Initialize(f.adminCtx, f.db); err != nil {
		t.Fatalf("cannot initialize: %+v", err)
	}
	return f
}

func (f *fixture) ctxFor(conds ...valset.Condition) valset.Context {
	return f.auth.SetConditions(context.Background(), conds...)
}

// registerAccount persists a validator account with a fresh config and
// returns the owner address and the operator condition.
func (f *fixture) registerAccount(t testing.TB, name string) (valset.Address, valset.Condition) {
	t.Helper()

	owner := valsettest.NewCondition()
	operator := valsettest.NewCondition()
	va := &valconfig.ValidatorAccount{
		Address:  owner.Address(),
		Operator: operator.Address(),
		Name:     name,
		Config: &valconfig.Config{
			ConsensusPubKey:       valsettest.NewPubKey(),
			ValidatorNetAddresses: []string{"/dns4/" + name + ".example.net/tcp/6180"},
		},
	}
	if err := f.bucket.Save(f.db, va); err != nil {
		t.Fatalf("cannot save account: %+v", err)
	}
	return owner.Address(), operator
}

func (f *fixture) mustAdd(t testing.TB, addr valset.Address) {
	t.Helper()
	if _, err := f.ctrl.AddValidator(f.adminCtx, f.db, addr); err != nil {
		t.Fatalf("cannot add validator: %+v", err)
	}
}

func TestAddRemoveRoundTrip(t *testing.T) {
	f := newFixture(t)
	addr, _ := f.registerAccount(t, "val-0")

	before, err := f.ctrl.SetSize(f.db)
	if err != nil {
		t.Fatalf("cannot read size: %+v", err)
	}

	f.mustAdd(t, addr)
	if _, err := f.ctrl.RemoveValidator(f.adminCtx, f.db, addr); err != nil {
		t.Fatalf("cannot remove: %+v", err)
	}

	after, err := f.ctrl.SetSize(f.db)
	if err != nil {
		t.Fatalf("cannot read size: %+v", err)
	}
	if before != after {
		t.Fatalf("add then remove must restore the size: %d != %d", before, after)
	}
	ok, err := f.ctrl.IsValidator(f.db, addr)
	if err != nil {
		t.Fatalf("cannot query membership: %+v", err)
	}
	if ok {
		t.Fatal("removed validator must not be a member")
	}
}

func TestMembershipSequence(t *testing.T) {
	f := newFixture(t)
	addr, _ := f.registerAccount(t, "val-0")

	f.mustAdd(t, addr)
	if size, _ := f.ctrl.SetSize(f.db); size != 1 {
		t.Fatalf("want size 1, got %d", size)
	}

	if _, err := f.ctrl.AddValidator(f.adminCtx, f.db, addr); !ErrAlreadyMember.Is(err) {
		t.Fatalf("want already a member, got %+v", err)
	}
	if size, _ := f.ctrl.SetSize(f.db); size != 1 {
		t.Fatalf("failed add must not change the size, got %d", size)
	}

	if _, err := f.ctrl.RemoveValidator(f.adminCtx, f.db, addr); err != nil {
		t.Fatalf("cannot remove: %+v", err)
	}
	if size, _ := f.ctrl.SetSize(f.db); size != 0 {
		t.Fatalf("want size 0, got %d", size)
	}
	if ok, _ := f.ctrl.IsValidator(f.db, addr); ok {
		t.Fatal("removed validator must not be a member")
	}

	if _, err := f.ctrl.RemoveValidator(f.adminCtx, f.db, addr); !ErrNotMember.Is(err) {
		t.Fatalf("want not a member, got %+v", err)
	}
}

func TestUpdateConfigNoopOnUnchanged(t *testing.T) {
	f := newFixture(t)
	addr, operator := f.registerAccount(t, "val-0")
	f.mustAdd(t, addr)

	sub := f.publisher.Subscribe()
	opCtx := f.ctxFor(operator)

	// no configuration change happened, so even within the cooldown
	// window this must be a silent no-op, any number of times
	for i := 0; i < 3; i++ {
		diff, err := f.ctrl.UpdateConfig(opCtx, f.db, addr)
		if err != nil {
			t.Fatalf("unchanged config must be a no-op, got %+v", err)
		}
		if diff != nil {
			t.Fatalf("no-op must not produce updates: %+v", diff)
		}
	}
	select {
	case ev := <-sub:
		t.Fatalf("no-op must not notify, got %+v", ev)
	default:
	}
}

func TestUpdateConfigRateLimit(t *testing.T) {
	f := newFixture(t)
	addr, operator := f.registerAccount(t, "val-0")
	f.mustAdd(t, addr)
	opCtx := f.ctxFor(operator)

	rotate := func() {
		t.Helper()
		cfg := &valconfig.Config{
			ConsensusPubKey:       valsettest.NewPubKey(),
			ValidatorNetAddresses: []string{"/dns4/val-0.example.net/tcp/6180"},
		}
		if err := f.bucket.SetConfig(f.db, addr, cfg); err != nil {
			t.Fatalf("cannot rotate raw config: %+v", err)
		}
	}

	// the entry was created at the current clock time, so the first
	// genuine change within the window is already limited
	rotate()
	if _, err := f.ctrl.UpdateConfig(opCtx, f.db, addr); !ErrRateLimited.Is(err) {
		t.Fatalf("want rate limited, got %+v", err)
	}

	// a microsecond past the window is still too early: the rule is
	// now > last + cooldown
	f.clock.Advance(ConfigUpdateCooldown)
	if _, err := f.ctrl.UpdateConfig(opCtx, f.db, addr); !ErrRateLimited.Is(err) {
		t.Fatalf("want rate limited at the boundary, got %+v", err)
	}

	f.clock.Advance(time.Microsecond)
	diff, err := f.ctrl.UpdateConfig(opCtx, f.db, addr)
	if err != nil {
		t.Fatalf("update past the window must succeed, got %+v", err)
	}
	if len(diff) != 2 {
		t.Fatalf("rotated key must produce 2 updates, got %+v", diff)
	}

	// the accepted change restarts the window
	rotate()
	if _, err := f.ctrl.UpdateConfig(opCtx, f.db, addr); !ErrRateLimited.Is(err) {
		t.Fatalf("want rate limited again, got %+v", err)
	}
}

func TestUpdateConfigTimeOverflow(t *testing.T) {
	f := newFixture(t)
	addr, operator := f.registerAccount(t, "val-0")

	// plant an entry with an update time too close to the end of time
	f.clock.Set(valset.MaxUnixMicro - 1)
	f.mustAdd(t, addr)

	cfg := &valconfig.Config{
		ConsensusPubKey:       valsettest.NewPubKey(),
		ValidatorNetAddresses: []string{"/dns4/val-0.example.net/tcp/6180"},
	}
	if err := f.bucket.SetConfig(f.db, addr, cfg); err != nil {
		t.Fatalf("cannot rotate raw config: %+v", err)
	}

	_, err := f.ctrl.UpdateConfig(f.ctxFor(operator), f.db, addr)
	if !ErrTimeOverflow.Is(err) {
		t.Fatalf("want time overflow, got %+v", err)
	}
}

func TestUpdateConfigAuthorization(t *testing.T) {
	f := newFixture(t)
	addr, _ := f.registerAccount(t, "val-0")
	f.mustAdd(t, addr)

	// neither a stranger nor the admin is the registered operator
	stranger := valsettest.NewCondition()
	for _, cond := range []valset.Condition{stranger, f.admin} {
		if _, err := f.ctrl.UpdateConfig(f.ctxFor(cond), f.db, addr); !errors.ErrUnauthorized.Is(err) {
			t.Fatalf("want unauthorized, got %+v", err)
		}
	}
}

func TestUpdateConfigNotMember(t *testing.T) {
	f := newFixture(t)
	addr, operator := f.registerAccount(t, "val-0")

	// registered but never added to the roster
	if _, err := f.ctrl.UpdateConfig(f.ctxFor(operator), f.db, addr); !ErrNotMember.Is(err) {
		t.Fatalf("want not a member, got %+v", err)
	}

	// never registered at all
	unknown := valsettest.NewCondition().Address()
	if _, err := f.ctrl.UpdateConfig(f.ctxFor(operator), f.db, unknown); !ErrNotMember.Is(err) {
		t.Fatalf("want not a member, got %+v", err)
	}
}

func TestCapacity(t *testing.T) {
	if testing.Short() {
		t.Skip("filling the roster is slow")
	}

	f := newFixture(t)
	for i := 0; i < MaxValidators; i++ {
		addr, _ := f.registerAccount(t, fmt.Sprintf("val-%d", i))
		f.mustAdd(t, addr)
	}

	size, err := f.ctrl.SetSize(f.db)
	if err != nil {
		t.Fatalf("cannot read size: %+v", err)
	}
	if size != MaxValidators {
		t.Fatalf("want a full roster, got %d", size)
	}

	addr, _ := f.registerAccount(t, "val-overflow")
	if _, err := f.ctrl.AddValidator(f.adminCtx, f.db, addr); !ErrCapacity.Is(err) {
		t.Fatalf("want capacity exceeded, got %+v", err)
	}
}

func TestResumeAfterRestart(t *testing.T) {
	f := newFixture(t)
	addr, _ := f.registerAccount(t, "val-0")
	f.mustAdd(t, addr)

	// a fresh controller and publisher over the same store model a
	// process restart
	ctrl := NewController(f.auth, reconfig.NewPublisher(nil), f.clock, nil)

	if err := ctrl.Initialize(f.adminCtx, f.db); !ErrInitialized.Is(err) {
		t.Fatalf("want already initialized, got %+v", err)
	}
	if _, err := ctrl.RemoveValidator(f.adminCtx, f.db, addr); !ErrNotInitialized.Is(err) {
		t.Fatalf("mutations must fail before resume, got %+v", err)
	}

	stranger := valsettest.NewCondition()
	if err := ctrl.Resume(f.ctxFor(stranger), f.db); !errors.ErrUnauthorized.Is(err) {
		t.Fatalf("want unauthorized, got %+v", err)
	}
	if err := ctrl.Resume(f.adminCtx, f.db); err != nil {
		t.Fatalf("cannot resume: %+v", err)
	}
	if err := ctrl.Resume(f.adminCtx, f.db); !ErrInitialized.Is(err) {
		t.Fatalf("second resume must fail, got %+v", err)
	}

	// the resumed controller can mutate the roster again
	if _, err := ctrl.RemoveValidator(f.adminCtx, f.db, addr); err != nil {
		t.Fatalf("cannot remove after resume: %+v", err)
	}
}

func TestResumeBeforeInitialize(t *testing.T) {
	db := store.MemStore()
	auth := &valsettest.CtxAuth{Key: "auth"}
	ctrl := NewController(auth, reconfig.NewPublisher(nil), valsettest.NewClock(1000000), nil)

	admin := valsettest.NewCondition()
	if err := saveConf(db, &Configuration{Admin: admin.Address()}); err != nil {
		t.Fatalf("cannot save configuration: %+v", err)
	}
	ctx := auth.SetConditions(context.Background(), admin)
	if err := ctrl.Resume(ctx, db); !ErrNotInitialized.Is(err) {
		t.Fatalf("want not initialized, got %+v", err)
	}
}

func TestRemovalReordersPositions(t *testing.T) {
	f := newFixture(t)

	var addrs []valset.Address
	for i := 0; i < 3; i++ {
		addr, _ := f.registerAccount(t, fmt.Sprintf("val-%d", i))
		f.mustAdd(t, addr)
		addrs = append(addrs, addr)
	}

	if _, err := f.ctrl.RemoveValidator(f.adminCtx, f.db, addrs[0]); err != nil {
		t.Fatalf("cannot remove: %+v", err)
	}

	// the last entry fills the freed position
	got, err := f.ctrl.ValidatorAt(f.db, 0)
	if err != nil {
		t.Fatalf("cannot query position: %+v", err)
	}
	if !got.Equals(addrs[2]) {
		t.Fatalf("want %s at position 0, got %s", addrs[2], got)
	}
}
