package auth

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidRole reports a role tag that is unknown or does not match the supplied role extension.
	ErrInvalidRole = errors.New("invalid role")
	// ErrDuplicateField reports a violated uniqueness constraint on an identity field.
	ErrDuplicateField = errors.New("duplicate field")
	// ErrIdentityNotFound is returned by stores when no identity matches a lookup.
	ErrIdentityNotFound = errors.New("identity not found")
)

// Unique identity fields reported by DuplicateFieldError.
const (
	FieldEmail         = "email"
	FieldNationalID    = "national_id"
	FieldLicenseNumber = "license_number"
)

// DuplicateFieldError names the field whose uniqueness was violated.
// It matches ErrDuplicateField with errors.Is.
type DuplicateFieldError struct {
	Field string
}

func (e *DuplicateFieldError) Error() string {
	if e.Field == "" {
		return ErrDuplicateField.Error()
	}
	return fmt.Sprintf("%s: %s already registered", ErrDuplicateField, e.Field)
}

func (e *DuplicateFieldError) Is(target error) bool { return target == ErrDuplicateField }

// DuplicateField returns a DuplicateFieldError for field.
func DuplicateField(field string) error {
	return &DuplicateFieldError{Field: field}
}

// DuplicateFieldName extracts the offending field from err, or "" if err carries none.
func DuplicateFieldName(err error) string {
	var dup *DuplicateFieldError
	if errors.As(err, &dup) {
		return dup.Field
	}
	return ""
}
