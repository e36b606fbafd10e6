package valset

import (
	"context"
	"encoding/json"

	abci "github.com/tendermint/tendermint/abci/types"

	"github.com/iov-one/valset/errors"
)

// Context is just an alias for the standard implementation. Handlers
// receive caller identity and similar request-scoped data through it.
type Context = context.Context

// Msg is a request to change the state of the system. It is routed to
// a Handler by its path.
type Msg interface {
	// Path returns the routing path for this message
	Path() string

	// Validate performs a stateless sanity check of the message content
	Validate() error
}

// Handler processes one kind of message against the shared state.
// This could represent "add a validator", or "rotate a validator
// config".
type Handler interface {
	Checker
	Deliverer
}

// Checker is a subset of Handler to verify the validity of a message.
// It is its own interface to allow better type controls in decorators.
type Checker interface {
	Check(ctx Context, store KVStore, msg Msg) error
}

// Deliverer is a subset of Handler to execute a message.
type Deliverer interface {
	Deliver(ctx Context, store KVStore, msg Msg) (*DeliverResult, error)
}

// DeliverResult captures any external effect of processing a message.
type DeliverResult struct {
	// Diff, if present, lists the validator updates the consensus engine
	// must apply.
	Diff []abci.ValidatorUpdate
}

// Registry is an interface to register your handler,
// the setup side of a router.
type Registry interface {
	Handle(path string, h Handler)
}

// Options are the application genesis options. Each extension can look
// up its key and parse the json as desired.
type Options map[string]json.RawMessage

// ReadOptions reads the values stored under a given key,
// and parses the json into the given obj.
// Returns an error if it cannot parse.
// Noop and no error if key is missing.
func (o Options) ReadOptions(key string, obj interface{}) error {
	msg := o[key]
	if len(msg) == 0 {
		return nil
	}
	if err := json.Unmarshal(msg, obj); err != nil {
		return errors.Wrap(errors.ErrInput, err.Error())
	}
	return nil
}

// Initializer implementations are used to initialize
// the database apps from genesis data.
type Initializer interface {
	FromGenesis(opts Options, kv KVStore) error
}
