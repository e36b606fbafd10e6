package valsettest

import (
	"context"
	"fmt"

	"github.com/iov-one/valset"
)

// Auth is a mock implementing the valset.Authenticator interface.
//
// This structure authenticates any of the referenced conditions. You
// can use either Signer or Signers (or both) attributes to reference
// conditions. This is for convenience and each time all signers
// (regardless which attribute) are considered.
type Auth struct {
	// Signer represents an authentication of a single signer. This is a
	// convenience attribute when creating an authentication method for
	// a single signer.
	Signer valset.Condition

	// Signers represents an authentication of multiple signers.
	Signers []valset.Condition
}

var _ valset.Authenticator = (*Auth)(nil)

func (a *Auth) GetConditions(valset.Context) []valset.Condition {
	if a.Signer != nil {
		return append(a.Signers, a.Signer)
	}
	return a.Signers
}

func (a *Auth) HasAddress(ctx valset.Context, addr valset.Address) bool {
	for _, s := range a.Signers {
		if addr.Equals(s.Address()) {
			return true
		}
	}
	if a.Signer == nil {
		return false
	}
	return addr.Equals(a.Signer.Address())
}

// CtxAuth is a mock implementing the valset.Authenticator interface.
//
// This implementation is using context to store and retrieve
// conditions, so a single authenticator instance can act for a
// different caller on every request.
type CtxAuth struct {
	// Key used to set and retrieve conditions from the context. For
	// convenience only string type keys are allowed.
	Key string
}

type ctxAuthKey string

var _ valset.Authenticator = (*CtxAuth)(nil)

func (a *CtxAuth) SetConditions(ctx valset.Context, conds ...valset.Condition) valset.Context {
	return context.WithValue(ctx, ctxAuthKey(a.Key), conds)
}

func (a *CtxAuth) GetConditions(ctx valset.Context) []valset.Condition {
	val := ctx.Value(ctxAuthKey(a.Key))
	if val == nil {
		return nil
	}
	conds, ok := val.([]valset.Condition)
	if !ok {
		panic(fmt.Sprintf("instead of []valset.Condition got %T", val))
	}
	return conds
}

func (a *CtxAuth) HasAddress(ctx valset.Context, addr valset.Address) bool {
	for _, s := range a.GetConditions(ctx) {
		if addr.Equals(s.Address()) {
			return true
		}
	}
	return false
}
