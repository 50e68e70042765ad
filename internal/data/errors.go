package data

import (
	"errors"
	"fmt"

	domainauth "github.com/vanvan/vanvan-auth/internal/domain/auth"
	apperrors "github.com/vanvan/vanvan-auth/internal/errors"
)

// ErrDBRequired is returned by repositories constructed without a database handle.
var ErrDBRequired = errors.New("database handle is required")

// uniqueFields lists the identity columns guarded by unique constraints.
var uniqueFields = map[string]bool{
	domainauth.FieldEmail:         true,
	domainauth.FieldNationalID:    true,
	domainauth.FieldLicenseNumber: true,
}

// mapWriteErr turns unique violations into domainauth.DuplicateFieldError and wraps
// everything else with op. Other classifications are kept as AppError causes.
func mapWriteErr(op string, err error) error {
	if err == nil {
		return nil
	}
	mapped := apperrors.MapDBError(err)
	if apperrors.IsConflict(mapped) {
		field := apperrors.GetField(mapped)
		if !uniqueFields[field] {
			field = ""
		}
		return domainauth.DuplicateField(field)
	}
	return fmt.Errorf("%s: %w", op, mapped)
}
