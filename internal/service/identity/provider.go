// Package identity consumes the external auth provider. Only the
// initial persona choice depends on it; failures here never disturb
// session invariants.
package identity

import "context"

// Identity is the subset of the authenticated user the orchestrator
// cares about.
type Identity struct {
	UserID           string `json:"userId"`
	DefaultPersonaID string `json:"defaultPersonaId"`
	NSFWAllowed      bool   `json:"nsfwAllowed"`
}

// Provider resolves the current identity.
type Provider interface {
	Resolve(ctx context.Context) (Identity, error)
}

// StaticProvider serves a fixed identity, typically assembled from
// configuration. Stands in for the real auth backend, which is an
// external collaborator.
type StaticProvider struct {
	identity Identity
}

// NewStaticProvider wraps the given identity.
func NewStaticProvider(id Identity) *StaticProvider {
	return &StaticProvider{identity: id}
}

// Resolve returns the configured identity.
func (p *StaticProvider) Resolve(_ context.Context) (Identity, error) {
	return p.identity, nil
}
