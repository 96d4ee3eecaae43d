package providers

import "context"

// IdentityVerifier checks a token issued by the identity provider and
// returns the identity it vouches for.
type IdentityVerifier interface {
	Verify(ctx context.Context, token string) (*Identity, error)
}

// Identity is a user the identity provider has authenticated
type Identity struct {
	UserID string
	Phone  string
}
