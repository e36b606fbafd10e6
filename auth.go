package valset

// Authenticator tells us who is authorized to perform the current
// request. The concrete implementation decides how identity is proven
// (signatures, multisig contracts, ...); handlers only ever check
// addresses against it.
type Authenticator interface {
	// GetConditions reveals all conditions fulfilled by the request,
	// may be nil
	GetConditions(ctx Context) []Condition

	// HasAddress checks if any condition matches this address
	HasAddress(ctx Context, addr Address) bool
}

// MultiAuth chains together many authenticators into one. Conditions
// are gathered from all of them, an address is authenticated when any
// of them confirms it.
type MultiAuth struct {
	impls []Authenticator
}

var _ Authenticator = MultiAuth{}

// ChainAuth groups together many Authenticators.
func ChainAuth(impls ...Authenticator) MultiAuth {
	return MultiAuth{impls: impls}
}

func (m MultiAuth) GetConditions(ctx Context) []Condition {
	var res []Condition
	for _, impl := range m.impls {
		add := impl.GetConditions(ctx)
		if len(add) > 0 {
			res = append(res, add...)
		}
	}
	return res
}

func (m MultiAuth) HasAddress(ctx Context, addr Address) bool {
	for _, impl := range m.impls {
		if impl.HasAddress(ctx, addr) {
			return true
		}
	}
	return false
}
