// Package app provides the message router that connects registered
// extension handlers with incoming messages.
package app

import (
	"regexp"

	"github.com/iov-one/valset"
	"github.com/iov-one/valset/errors"
)

var isPath = regexp.MustCompile(`^[a-z0-9_/]+$`).MatchString

// Router allows us to register many handlers with different paths and
// then direct each message to the proper handler.
type Router struct {
	routes map[string]valset.Handler
}

var _ valset.Registry = (*Router)(nil)

// NewRouter initializes a router with no routes.
func NewRouter() *Router {
	return &Router{
		routes: make(map[string]valset.Handler),
	}
}

// Handle adds a new Handler for the given path. Panics on duplicate
// path or invalid path name, as this is a setup time error.
func (r *Router) Handle(path string, h valset.Handler) {
	if !isPath(path) {
		panic("paths can only contain lowercase alphanumeric characters, underscore or slash")
	}
	if _, ok := r.routes[path]; ok {
		panic("re-registering a handler for path " + path)
	}
	r.routes[path] = h
}

// handler returns the registered Handler, or nil if none there.
func (r *Router) handler(path string) valset.Handler {
	return r.routes[path]
}

// Check validates the message with the handler registered for its path.
func (r *Router) Check(ctx valset.Context, db valset.KVStore, msg valset.Msg) error {
	h := r.handler(msg.Path())
	if h == nil {
		return errors.Wrapf(errors.ErrNotFound, "no handler for path %q", msg.Path())
	}
	return h.Check(ctx, db, msg)
}

// Deliver executes the message with the handler registered for its path.
func (r *Router) Deliver(ctx valset.Context, db valset.KVStore, msg valset.Msg) (*valset.DeliverResult, error) {
	h := r.handler(msg.Path())
	if h == nil {
		return nil, errors.Wrapf(errors.ErrNotFound, "no handler for path %q", msg.Path())
	}
	return h.Deliver(ctx, db, msg)
}
