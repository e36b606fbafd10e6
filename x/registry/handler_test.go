package registry

import (
	"context"
	"testing"

	"github.com/iov-one/valset"
	"github.com/iov-one/valset/app"
	"github.com/iov-one/valset/errors"
	"github.com/iov-one/valset/store"
	"github.com/iov-one/valset/valsettest"
	"github.com/iov-one/valset/x/reconfig"
	"github.com/iov-one/valset/x/valconfig"
)

func TestHandlerRouting(t *testing.T) {
	db := store.MemStore()
	auth := &valsettest.CtxAuth{Key: "auth"}
	clock := valsettest.NewClock(1000000)
	ctrl := NewController(auth, reconfig.NewPublisher(nil), clock, nil)

	r := app.NewRouter()
	RegisterRoutes(r, ctrl)

	admin := valsettest.NewCondition()
	adminCtx := auth.SetConditions(context.Background(), admin)
	if err := saveConf(db, &Configuration{Admin: admin.Address()}); err != nil {
		t.Fatalf("cannot save configuration: %+v", err)
	}

	owner := valsettest.NewCondition()
	operator := valsettest.NewCondition()
	va := &valconfig.ValidatorAccount{
		Address:  owner.Address(),
		Operator: operator.Address(),
		Name:     "val-0",
		Config: &valconfig.Config{
			ConsensusPubKey:       valsettest.NewPubKey(),
			ValidatorNetAddresses: []string{"/dns4/val-0.example.net/tcp/6180"},
		},
	}
	if err := valconfig.NewBucket().Save(db, va); err != nil {
		t.Fatalf("cannot save account: %+v", err)
	}

	deliver := func(ctx valset.Context, msg valset.Msg) (*valset.DeliverResult, error) {
		t.Helper()
		if err := r.Check(ctx, db, msg); err != nil {
			return nil, err
		}
		return r.Deliver(ctx, db, msg)
	}

	if _, err := deliver(adminCtx, &InitializeMsg{}); err != nil {
		t.Fatalf("cannot initialize: %+v", err)
	}

	res, err := deliver(adminCtx, &AddValidatorMsg{Validator: owner.Address()})
	if err != nil {
		t.Fatalf("cannot add: %+v", err)
	}
	if len(res.Diff) != 1 || res.Diff[0].Power != FixedVotingPower {
		t.Fatalf("unexpected validator updates: %+v", res.Diff)
	}

	// unchanged configuration delivers fine but produces no updates
	opCtx := auth.SetConditions(context.Background(), operator)
	res, err = deliver(opCtx, &UpdateConfigMsg{Validator: owner.Address()})
	if err != nil {
		t.Fatalf("cannot update: %+v", err)
	}
	if len(res.Diff) != 0 {
		t.Fatalf("no-op update must not produce updates: %+v", res.Diff)
	}

	res, err = deliver(adminCtx, &RemoveValidatorMsg{Validator: owner.Address()})
	if err != nil {
		t.Fatalf("cannot remove: %+v", err)
	}
	if len(res.Diff) != 1 || res.Diff[0].Power != 0 {
		t.Fatalf("unexpected validator updates: %+v", res.Diff)
	}
}

func TestHandlerRejectsWrongMsgType(t *testing.T) {
	db := store.MemStore()
	auth := &valsettest.CtxAuth{Key: "auth"}
	ctrl := NewController(auth, reconfig.NewPublisher(nil), valsettest.NewClock(1000000), nil)
	ctx := context.Background()

	handlers := []valset.Handler{
		InitializeHandler{ctrl: ctrl},
		AddValidatorHandler{ctrl: ctrl},
		RemoveValidatorHandler{ctrl: ctrl},
		UpdateConfigHandler{ctrl: ctrl},
	}
	for _, h := range handlers {
		if err := h.Check(ctx, db, &brokenMsg{}); !errors.ErrType.Is(err) {
			t.Errorf("%T: want a type error, got %+v", h, err)
		}
		if _, err := h.Deliver(ctx, db, &brokenMsg{}); !errors.ErrType.Is(err) {
			t.Errorf("%T: want a type error, got %+v", h, err)
		}
	}
}

func TestHandlerRejectsInvalidMsg(t *testing.T) {
	db := store.MemStore()
	auth := &valsettest.CtxAuth{Key: "auth"}
	ctrl := NewController(auth, reconfig.NewPublisher(nil), valsettest.NewClock(1000000), nil)
	ctx := context.Background()

	// an empty address fails message validation before any state is
	// touched
	msg := &AddValidatorMsg{}
	h := AddValidatorHandler{ctrl: ctrl}
	if err := h.Check(ctx, db, msg); !errors.ErrInput.Is(err) {
		t.Fatalf("want an invalid address error, got %+v", err)
	}
}

type brokenMsg struct{}

func (brokenMsg) Path() string    { return "registry/broken" }
func (brokenMsg) Validate() error { return nil }

var _ valset.Msg = brokenMsg{}
