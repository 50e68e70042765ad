package ports

// Package ports defines interfaces (hexagonal ports) for identity and credential behavior.
// Implementations live in internal/adapters and internal/data; orchestration in internal/service.

import (
	"context"

	domainauth "github.com/vanvan/vanvan-auth/internal/domain/auth"
)

// IdentityStore persists identity records together with their role extension.
type IdentityStore interface {
	// FindByEmail returns the identity registered under email or domainauth.ErrIdentityNotFound.
	FindByEmail(ctx context.Context, email string) (domainauth.Identity, error)

	// ExistsByNationalIDOrEmail reports whether either value is already taken.
	ExistsByNationalIDOrEmail(ctx context.Context, nationalID, email string) (bool, error)

	// Insert atomically stores the identity and its DriverProfile, if any.
	// It returns an error matching domainauth.ErrDuplicateField when a unique field is taken;
	// on any error nothing is stored.
	Insert(ctx context.Context, identity domainauth.Identity) error
}

// SecretHasher hashes and compares credential secrets.
type SecretHasher interface {
	Hash(ctx context.Context, secret string) (string, error)

	// Compare reports whether secret matches hash. A mismatch is (false, nil);
	// an error means the comparison could not be performed.
	Compare(ctx context.Context, secret, hash string) (bool, error)
}

// TokenIssuer signs session tokens.
type TokenIssuer interface {
	Issue(ctx context.Context, claims domainauth.Claims) (string, error)
}

// TokenVerifier validates signed session tokens and returns their claims.
type TokenVerifier interface {
	Parse(ctx context.Context, token string) (domainauth.Claims, error)
}

// AuthorityResolver maps a role to the authorities it grants.
type AuthorityResolver interface {
	Resolve(role domainauth.Role) []domainauth.Authority
}
