package data

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"

	domainauth "github.com/vanvan/vanvan-auth/internal/domain/auth"
	apperrors "github.com/vanvan/vanvan-auth/internal/errors"
)

func TestMapWriteErr(t *testing.T) {
	assert.NoError(t, mapWriteErr("op", nil))

	tests := []struct {
		name       string
		err        error
		wantDup    bool
		wantField  string
		wantIsCode apperrors.ErrorCode
	}{
		{
			name:      "email unique violation",
			err:       &pgconn.PgError{Code: pgerrcode.UniqueViolation, ConstraintName: "identities_email_key"},
			wantDup:   true,
			wantField: domainauth.FieldEmail,
		},
		{
			name:      "national id unique violation",
			err:       &pgconn.PgError{Code: pgerrcode.UniqueViolation, ConstraintName: "identities_national_id_key"},
			wantDup:   true,
			wantField: domainauth.FieldNationalID,
		},
		{
			name:      "license unique violation",
			err:       &pgconn.PgError{Code: pgerrcode.UniqueViolation, ConstraintName: "driver_profiles_license_number_key"},
			wantDup:   true,
			wantField: domainauth.FieldLicenseNumber,
		},
		{
			name:    "primary key violation names no field",
			err:     &pgconn.PgError{Code: pgerrcode.UniqueViolation, ConstraintName: "identities_pkey"},
			wantDup: true,
		},
		{
			name:       "check violation",
			err:        &pgconn.PgError{Code: pgerrcode.CheckViolation, ConstraintName: "identities_role_check"},
			wantIsCode: apperrors.ErrCodeValidation,
		},
		{
			name:       "canceled",
			err:        context.Canceled,
			wantIsCode: apperrors.ErrCodeCanceled,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := mapWriteErr("insert identity", tt.err)
			if tt.wantDup {
				assert.ErrorIs(t, got, domainauth.ErrDuplicateField)
				assert.Equal(t, tt.wantField, domainauth.DuplicateFieldName(got))
				return
			}
			assert.NotErrorIs(t, got, domainauth.ErrDuplicateField)
			assert.Equal(t, tt.wantIsCode, apperrors.GetCode(got))
		})
	}
}

func TestMapWriteErr_PlainError(t *testing.T) {
	orig := errors.New("conn refused")
	got := mapWriteErr("insert identity", orig)
	assert.ErrorIs(t, got, orig)
	assert.Contains(t, got.Error(), "insert identity")
}

func TestIdentityRepo_NilDB(t *testing.T) {
	repo := NewIdentityRepo(nil)
	ctx := context.Background()

	_, err := repo.FindByEmail(ctx, "a@x.com")
	assert.ErrorIs(t, err, ErrDBRequired)
	_, err = repo.ExistsByNationalIDOrEmail(ctx, "1", "a@x.com")
	assert.ErrorIs(t, err, ErrDBRequired)
	assert.ErrorIs(t, repo.Insert(ctx, domainauth.Identity{}), ErrDBRequired)
	assert.ErrorIs(t, RunMigrations(ctx, nil), ErrDBRequired)
}
