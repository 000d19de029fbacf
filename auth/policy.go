package auth

import (
	"errors"
	"fmt"
)

// PolicyDeleteSupplier gates supplier deletion. The claim type doubles as
// the policy name, matching how the route declares it.
const PolicyDeleteSupplier = "ExcluirFornecedor"

var (
	// ErrPolicyNotFound signals the named policy is not registered. Unknown
	// policies deny access rather than falling back to authenticated-only.
	ErrPolicyNotFound = errors.New("auth: policy not found")
	// ErrNotAuthorized signals the claim set does not satisfy the policy.
	ErrNotAuthorized = errors.New("auth: not authorized")
)

// Policy is a deterministic predicate over a claim set. Policies must be
// pure: no I/O, no mutation.
type Policy func(ClaimSet) bool

// RequireClaim allows any caller whose claim set contains a claim of the
// given type. Values are not inspected.
func RequireClaim(claimType string) Policy {
	return func(cs ClaimSet) bool {
		return cs.Has(claimType)
	}
}

// Authorizer evaluates named policies. The table is populated at startup and
// read-only afterwards, so concurrent evaluation needs no synchronization.
type Authorizer struct {
	policies map[string]Policy
}

// NewAuthorizer creates an empty policy table.
func NewAuthorizer() *Authorizer {
	return &Authorizer{policies: make(map[string]Policy)}
}

// Register adds a named policy. Call during startup only.
func (a *Authorizer) Register(name string, policy Policy) {
	a.policies[name] = policy
}

// Evaluate checks the claim set against the named policy. A name missing
// from the table is a deny, surfaced as ErrPolicyNotFound so it can be
// logged as a configuration problem rather than a caller mistake.
func (a *Authorizer) Evaluate(name string, claims ClaimSet) error {
	policy, ok := a.policies[name]
	if !ok {
		return fmt.Errorf("%w: %s", ErrPolicyNotFound, name)
	}
	if !policy(claims) {
		return ErrNotAuthorized
	}
	return nil
}
