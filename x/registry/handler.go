package registry

import (
	"github.com/iov-one/valset"
	"github.com/iov-one/valset/errors"
)

// RegisterRoutes will instantiate and register all handlers in this
// package.
func RegisterRoutes(r valset.Registry, ctrl *Controller) {
	r.Handle(pathInitialize, InitializeHandler{ctrl: ctrl})
	r.Handle(pathAddValidator, AddValidatorHandler{ctrl: ctrl})
	r.Handle(pathRemoveValidator, RemoveValidatorHandler{ctrl: ctrl})
	r.Handle(pathUpdateConfig, UpdateConfigHandler{ctrl: ctrl})
}

// InitializeHandler publishes the empty initial snapshot.
type InitializeHandler struct {
	ctrl *Controller
}

var _ valset.Handler = InitializeHandler{}

func (h InitializeHandler) Check(ctx valset.Context, db valset.KVStore, msg valset.Msg) error {
	_, err := h.validate(msg)
	return err
}

func (h InitializeHandler) Deliver(ctx valset.Context, db valset.KVStore, msg valset.Msg) (*valset.DeliverResult, error) {
	if _, err := h.validate(msg); err != nil {
		return nil, err
	}
	if err := h.ctrl.Initialize(ctx, db); err != nil {
		return nil, err
	}
	return &valset.DeliverResult{}, nil
}

func (h InitializeHandler) validate(msg valset.Msg) (*InitializeMsg, error) {
	m, ok := msg.(*InitializeMsg)
	if !ok {
		return nil, errors.WithType(errors.ErrType, msg)
	}
	return m, m.Validate()
}

// AddValidatorHandler adds a roster entry.
type AddValidatorHandler struct {
	ctrl *Controller
}

var _ valset.Handler = AddValidatorHandler{}

func (h AddValidatorHandler) Check(ctx valset.Context, db valset.KVStore, msg valset.Msg) error {
	_, err := h.validate(msg)
	return err
}

func (h AddValidatorHandler) Deliver(ctx valset.Context, db valset.KVStore, msg valset.Msg) (*valset.DeliverResult, error) {
	m, err := h.validate(msg)
	if err != nil {
		return nil, err
	}
	diff, err := h.ctrl.AddValidator(ctx, db, m.Validator)
	if err != nil {
		return nil, err
	}
	return &valset.DeliverResult{Diff: diff}, nil
}

func (h AddValidatorHandler) validate(msg valset.Msg) (*AddValidatorMsg, error) {
	m, ok := msg.(*AddValidatorMsg)
	if !ok {
		return nil, errors.WithType(errors.ErrType, msg)
	}
	return m, m.Validate()
}

// RemoveValidatorHandler removes a roster entry.
type RemoveValidatorHandler struct {
	ctrl *Controller
}

var _ valset.Handler = RemoveValidatorHandler{}

func (h RemoveValidatorHandler) Check(ctx valset.Context, db valset.KVStore, msg valset.Msg) error {
	_, err := h.validate(msg)
	return err
}

func (h RemoveValidatorHandler) Deliver(ctx valset.Context, db valset.KVStore, msg valset.Msg) (*valset.DeliverResult, error) {
	m, err := h.validate(msg)
	if err != nil {
		return nil, err
	}
	diff, err := h.ctrl.RemoveValidator(ctx, db, m.Validator)
	if err != nil {
		return nil, err
	}
	return &valset.DeliverResult{Diff: diff}, nil
}

func (h RemoveValidatorHandler) validate(msg valset.Msg) (*RemoveValidatorMsg, error) {
	m, ok := msg.(*RemoveValidatorMsg)
	if !ok {
		return nil, errors.WithType(errors.ErrType, msg)
	}
	return m, m.Validate()
}

// UpdateConfigHandler copies the latest raw configuration into the
// roster.
type UpdateConfigHandler struct {
	ctrl *Controller
}

var _ valset.Handler = UpdateConfigHandler{}

func (h UpdateConfigHandler) Check(ctx valset.Context, db valset.KVStore, msg valset.Msg) error {
	_, err := h.validate(msg)
	return err
}

func (h UpdateConfigHandler) Deliver(ctx valset.Context, db valset.KVStore, msg valset.Msg) (*valset.DeliverResult, error) {
	m, err := h.validate(msg)
	if err != nil {
		return nil, err
	}
	diff, err := h.ctrl.UpdateConfig(ctx, db, m.Validator)
	if err != nil {
		return nil, err
	}
	return &valset.DeliverResult{Diff: diff}, nil
}

func (h UpdateConfigHandler) validate(msg valset.Msg) (*UpdateConfigMsg, error) {
	m, ok := msg.(*UpdateConfigMsg)
	if !ok {
		return nil, errors.WithType(errors.ErrType, msg)
	}
	return m, m.Validate()
}
