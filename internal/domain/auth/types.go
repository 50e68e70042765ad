package auth

// Package auth contains domain-level types for identities, roles and authorities.
// It is pure and free of framework/adapter concerns.

import (
	"fmt"
	"slices"
	"strings"
	"time"
)

// Role is the actor kind an identity was registered as.
// Keep string form for easy persistence and token claims.
// Valid values are defined as constants below.
type Role string

const (
	RoleAdmin     Role = "admin"
	RoleDriver    Role = "driver"
	RolePassenger Role = "passenger"
)

// Valid reports whether r is one of the known role tags.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleDriver, RolePassenger:
		return true
	default:
		return false
	}
}

// RequiresDriverProfile reports whether identities of this role carry a DriverProfile.
func (r Role) RequiresDriverProfile() bool { return r == RoleDriver }

// ParseRole normalises a role tag supplied by a caller.
func ParseRole(s string) (Role, error) {
	r := Role(strings.ToLower(strings.TrimSpace(s)))
	if !r.Valid() {
		return "", fmt.Errorf("%w: unknown role %q", ErrInvalidRole, s)
	}
	return r, nil
}

// Authority is a permission string granted to an authenticated identity.
type Authority string

const (
	AuthorityAdmin     Authority = "ROLE_ADMIN"
	AuthorityDriver    Authority = "ROLE_DRIVER"
	AuthorityPassenger Authority = "ROLE_PASSENGER"
)

// DriverProfile is the role extension attached to driver identities.
// It has no lifecycle of its own: it is created and stored with its identity.
type DriverProfile struct {
	LicenseNumber string `json:"license_number"`
	PayoutKey     string `json:"payout_key"`
}

// Identity is the account record shared by every actor kind.
// SecretHash is the hashed credential; the raw secret is never held here.
type Identity struct {
	ID         string         `json:"id"`
	FullName   string         `json:"full_name"`
	NationalID string         `json:"national_id"`
	Phone      string         `json:"phone"`
	Email      string         `json:"email"`
	SecretHash string         `json:"-"`
	Role       Role           `json:"role"`
	Driver     *DriverProfile `json:"driver,omitempty"`
	CreatedAt  time.Time      `json:"created_at"`
}

// CheckExtension enforces that drivers carry exactly one DriverProfile and other roles none.
func (i Identity) CheckExtension() error {
	return checkExtension(i.Role, i.Driver)
}

func checkExtension(role Role, driver *DriverProfile) error {
	if !role.Valid() {
		return fmt.Errorf("%w: unknown role %q", ErrInvalidRole, role)
	}
	if role.RequiresDriverProfile() && driver == nil {
		return fmt.Errorf("%w: role %s requires driver profile", ErrInvalidRole, role)
	}
	if !role.RequiresDriverProfile() && driver != nil {
		return fmt.Errorf("%w: role %s takes no role extension", ErrInvalidRole, role)
	}
	return nil
}

// Claims are the identity and authority facts carried by a session token.
type Claims struct {
	TokenID     string
	SubjectID   string
	Role        Role
	Authorities []Authority
	IssuedAt    time.Time
	ExpiresAt   time.Time
}

// Principal is the authenticated view handed to transport layers.
// Transports build whatever principal object their own stack needs from it.
type Principal struct {
	SubjectID   string      `json:"subject_id"`
	Role        Role        `json:"role"`
	Authorities []Authority `json:"authorities"`
	ExpiresAt   time.Time   `json:"expires_at"`
}

// PrincipalFromClaims builds a Principal from verified token claims.
func PrincipalFromClaims(c Claims) Principal {
	return Principal{
		SubjectID:   c.SubjectID,
		Role:        c.Role,
		Authorities: slices.Clone(c.Authorities),
		ExpiresAt:   c.ExpiresAt,
	}
}

// HasAuthority reports whether the principal was granted a.
func (p Principal) HasAuthority(a Authority) bool {
	return slices.Contains(p.Authorities, a)
}
