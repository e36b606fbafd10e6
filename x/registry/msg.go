package registry

import (
	"github.com/iov-one/valset"
	"github.com/iov-one/valset/errors"
)

const (
	pathInitialize      = "registry/initialize"
	pathAddValidator    = "registry/add_validator"
	pathRemoveValidator = "registry/remove_validator"
	pathUpdateConfig    = "registry/update_config"
)

// Ensure we implement the Msg interface
var (
	_ valset.Msg = (*InitializeMsg)(nil)
	_ valset.Msg = (*AddValidatorMsg)(nil)
	_ valset.Msg = (*RemoveValidatorMsg)(nil)
	_ valset.Msg = (*UpdateConfigMsg)(nil)
)

// InitializeMsg publishes the empty initial snapshot. Root authority
// only, valid exactly once.
type InitializeMsg struct{}

func (*InitializeMsg) Path() string {
	return pathInitialize
}

func (*InitializeMsg) Validate() error {
	return nil
}

// AddValidatorMsg adds the validator owned by Validator to the roster.
type AddValidatorMsg struct {
	Validator valset.Address
}

func (*AddValidatorMsg) Path() string {
	return pathAddValidator
}

func (m *AddValidatorMsg) Validate() error {
	return errors.Wrap(m.Validator.Validate(), "validator")
}

// RemoveValidatorMsg removes the validator owned by Validator from the
// roster.
type RemoveValidatorMsg struct {
	Validator valset.Address
}

func (*RemoveValidatorMsg) Path() string {
	return pathRemoveValidator
}

func (m *RemoveValidatorMsg) Validate() error {
	return errors.Wrap(m.Validator.Validate(), "validator")
}

// UpdateConfigMsg copies the latest raw configuration of Validator
// into the roster. Registered operator only.
type UpdateConfigMsg struct {
	Validator valset.Address
}

func (*UpdateConfigMsg) Path() string {
	return pathUpdateConfig
}

func (m *UpdateConfigMsg) Validate() error {
	return errors.Wrap(m.Validator.Validate(), "validator")
}
