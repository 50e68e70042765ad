package auth

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
)

const (
	MinFullNameLen = 1
	MaxFullNameLen = 100

	MinEmailLen = 5
	MaxEmailLen = 100

	// MaxSecretBytes is bcrypt's input limit; longer secrets would be silently truncated.
	MaxSecretBytes = 72

	MaxNationalIDLen = 32
	MaxPhoneLen      = 32

	MinLicenseNumberLen = 1
	MaxLicenseNumberLen = 20
	MaxPayoutKeyLen     = 140
)

var licenseNumberRe = regexp.MustCompile(`^[A-Z0-9-]+$`)

// ErrInvalidInput reports malformed registration or login input.
var ErrInvalidInput = errors.New("invalid input")

// InputError names the offending input field. It matches ErrInvalidInput with errors.Is.
type InputError struct {
	Field  string
	Reason string
}

func (e *InputError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

func (e *InputError) Is(target error) bool { return target == ErrInvalidInput }

func invalid(field, reason string) error {
	return &InputError{Field: field, Reason: reason}
}

// Registration carries everything needed to create an identity.
// Secret is the raw credential and must never be persisted or logged.
type Registration struct {
	FullName   string
	NationalID string
	Phone      string
	Email      string
	Secret     string
	Role       Role
	Driver     *DriverProfile
}

// Normalize trims whitespace and canonicalises the login handle and license number.
func (r *Registration) Normalize() {
	r.FullName = strings.TrimSpace(r.FullName)
	r.NationalID = strings.TrimSpace(r.NationalID)
	r.Phone = strings.TrimSpace(r.Phone)
	r.Email = NormalizeEmail(r.Email)
	r.Role = Role(strings.ToLower(strings.TrimSpace(string(r.Role))))
	if r.Driver != nil {
		r.Driver.LicenseNumber = strings.ToUpper(strings.TrimSpace(r.Driver.LicenseNumber))
		r.Driver.PayoutKey = strings.TrimSpace(r.Driver.PayoutKey)
	}
}

// Validate checks the role/extension pairing first, then field shapes.
func (r Registration) Validate() error {
	if err := checkExtension(r.Role, r.Driver); err != nil {
		return err
	}
	if err := validateFullName(r.FullName); err != nil {
		return err
	}
	if r.NationalID == "" {
		return invalid(FieldNationalID, "is required")
	}
	if utf8.RuneCountInString(r.NationalID) > MaxNationalIDLen {
		return invalid(FieldNationalID, fmt.Sprintf("cannot exceed %d characters", MaxNationalIDLen))
	}
	if utf8.RuneCountInString(r.Phone) > MaxPhoneLen {
		return invalid("phone", fmt.Sprintf("cannot exceed %d characters", MaxPhoneLen))
	}
	if err := ValidateEmail(r.Email); err != nil {
		return err
	}
	if err := ValidateSecret(r.Secret); err != nil {
		return err
	}
	if r.Driver != nil {
		return validateDriverProfile(*r.Driver)
	}
	return nil
}

// NewIdentity builds an identity from a validated registration and the hashed secret.
func NewIdentity(r Registration, secretHash string, now time.Time) (Identity, error) {
	if secretHash == "" {
		return Identity{}, errors.New("secret hash is required")
	}
	if err := checkExtension(r.Role, r.Driver); err != nil {
		return Identity{}, err
	}

	var driver *DriverProfile
	if r.Driver != nil {
		d := *r.Driver
		driver = &d
	}

	return Identity{
		ID:         uuid.NewString(),
		FullName:   r.FullName,
		NationalID: r.NationalID,
		Phone:      r.Phone,
		Email:      r.Email,
		SecretHash: secretHash,
		Role:       r.Role,
		Driver:     driver,
		CreatedAt:  now.UTC(),
	}, nil
}

// NormalizeEmail lowercases and trims an e-mail so lookups and uniqueness are case-insensitive.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// ValidateEmail checks the shape of a login handle.
func ValidateEmail(email string) error {
	if email == "" {
		return invalid(FieldEmail, "is required")
	}
	n := utf8.RuneCountInString(email)
	if n < MinEmailLen || n > MaxEmailLen {
		return invalid(FieldEmail, fmt.Sprintf("must be in range [%d, %d]", MinEmailLen, MaxEmailLen))
	}
	if strings.Count(email, "@") != 1 {
		return invalid(FieldEmail, "must contain exactly one @")
	}
	return nil
}

// ValidateSecret checks that a raw secret is present and hashable without truncation.
func ValidateSecret(secret string) error {
	if secret == "" {
		return invalid("secret", "is required")
	}
	if len(secret) > MaxSecretBytes {
		return invalid("secret", fmt.Sprintf("cannot exceed %d bytes", MaxSecretBytes))
	}
	return nil
}

func validateFullName(name string) error {
	if name == "" {
		return invalid("full_name", "is required")
	}
	n := utf8.RuneCountInString(name)
	if n < MinFullNameLen || n > MaxFullNameLen {
		return invalid("full_name", fmt.Sprintf("must be in range [%d, %d]", MinFullNameLen, MaxFullNameLen))
	}
	return nil
}

func validateDriverProfile(d DriverProfile) error {
	if d.LicenseNumber == "" {
		return invalid(FieldLicenseNumber, "is required")
	}
	n := len(d.LicenseNumber)
	if n < MinLicenseNumberLen || n > MaxLicenseNumberLen {
		return invalid(FieldLicenseNumber,
			fmt.Sprintf("must be in range [%d, %d]", MinLicenseNumberLen, MaxLicenseNumberLen))
	}
	if !licenseNumberRe.MatchString(d.LicenseNumber) {
		return invalid(FieldLicenseNumber, "may contain only A-Z, 0-9 and -")
	}
	if utf8.RuneCountInString(d.PayoutKey) > MaxPayoutKeyLen {
		return invalid("payout_key", fmt.Sprintf("cannot exceed %d characters", MaxPayoutKeyLen))
	}
	return nil
}
