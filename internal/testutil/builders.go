// Package testutil provides testing utilities and helpers for the identity service.
package testutil

import (
	domainauth "github.com/vanvan/vanvan-auth/internal/domain/auth"
)

// RegistrationBuilder provides a fluent interface for building Registration values for testing.
type RegistrationBuilder struct {
	reg domainauth.Registration
}

// NewRegistration creates a RegistrationBuilder for a valid passenger.
func NewRegistration() *RegistrationBuilder {
	return &RegistrationBuilder{
		reg: domainauth.Registration{
			FullName:   "Test Passenger",
			NationalID: "00000000000",
			Phone:      "555-0100",
			Email:      "passenger@example.com",
			Secret:     "s3cret-pass",
			Role:       domainauth.RolePassenger,
		},
	}
}

// NewDriverRegistration creates a RegistrationBuilder for a valid driver.
func NewDriverRegistration() *RegistrationBuilder {
	return NewRegistration().
		WithFullName("Test Driver").
		WithEmail("driver@example.com").
		WithNationalID("11111111111").
		AsDriver("LIC-0001", "")
}

// WithFullName sets the full name.
func (b *RegistrationBuilder) WithFullName(name string) *RegistrationBuilder {
	b.reg.FullName = name
	return b
}

// WithNationalID sets the national ID.
func (b *RegistrationBuilder) WithNationalID(id string) *RegistrationBuilder {
	b.reg.NationalID = id
	return b
}

// WithEmail sets the email.
func (b *RegistrationBuilder) WithEmail(email string) *RegistrationBuilder {
	b.reg.Email = email
	return b
}

// WithSecret sets the raw secret.
func (b *RegistrationBuilder) WithSecret(secret string) *RegistrationBuilder {
	b.reg.Secret = secret
	return b
}

// WithRole sets the role without touching the driver profile.
func (b *RegistrationBuilder) WithRole(role domainauth.Role) *RegistrationBuilder {
	b.reg.Role = role
	return b
}

// AsDriver switches the registration to a driver with the given profile.
func (b *RegistrationBuilder) AsDriver(license, payoutKey string) *RegistrationBuilder {
	b.reg.Role = domainauth.RoleDriver
	b.reg.Driver = &domainauth.DriverProfile{LicenseNumber: license, PayoutKey: payoutKey}
	return b
}

// Build returns the registration. Each call returns an independent copy.
func (b *RegistrationBuilder) Build() domainauth.Registration {
	out := b.reg
	if b.reg.Driver != nil {
		d := *b.reg.Driver
		out.Driver = &d
	}
	return out
}
