package authroles

import (
	domainauth "github.com/vanvan/vanvan-auth/internal/domain/auth"
)

// StaticAuthorityMapper grants authorities from the fixed role policy table.
type StaticAuthorityMapper struct{}

// Resolve implements ports.AuthorityResolver using the package-level Resolve.
func (StaticAuthorityMapper) Resolve(role domainauth.Role) []domainauth.Authority {
	return Resolve(role)
}

// Resolve returns the authorities granted to role. It always returns a fresh,
// non-empty slice.
//
// Only drivers and passengers have dedicated authorities. Every other tag,
// admin and any unknown value alike, falls back to ROLE_ADMIN. The fallback is
// kept as-is: it grants admin to unknown roles and must not be widened into a
// default-deny or default-admin rule without an explicit policy decision.
func Resolve(role domainauth.Role) []domainauth.Authority {
	switch role {
	case domainauth.RoleDriver:
		return []domainauth.Authority{domainauth.AuthorityDriver}
	case domainauth.RolePassenger:
		return []domainauth.Authority{domainauth.AuthorityPassenger}
	default:
		return []domainauth.Authority{domainauth.AuthorityAdmin}
	}
}
