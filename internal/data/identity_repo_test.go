package data

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainauth "github.com/vanvan/vanvan-auth/internal/domain/auth"
	"github.com/vanvan/vanvan-auth/internal/testutil"
)

func newDriver(email, nationalID, license string) domainauth.Identity {
	return domainauth.Identity{
		ID:         uuid.NewString(),
		FullName:   "Ana",
		NationalID: nationalID,
		Phone:      "555",
		Email:      email,
		SecretHash: "$2a$04$placeholderplaceholderplaceholderplaceholderplaceho",
		Role:       domainauth.RoleDriver,
		Driver:     &domainauth.DriverProfile{LicenseNumber: license},
		CreatedAt:  time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC),
	}
}

func newPassenger(email, nationalID string) domainauth.Identity {
	return domainauth.Identity{
		ID:         uuid.NewString(),
		FullName:   "Bruno",
		NationalID: nationalID,
		Email:      email,
		SecretHash: "hash",
		Role:       domainauth.RolePassenger,
		CreatedAt:  time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC),
	}
}

func TestIdentityRepo_InsertAndFind_Driver(t *testing.T) {
	testutil.SkipIfNoTestDB(t)
	testutil.WithAutoDB(t, func(db *sql.DB) {
		repo := NewIdentityRepo(db)
		ctx := context.Background()

		in := newDriver("ana@x.com", "111", "CNH1")
		require.NoError(t, repo.Insert(ctx, in))

		got, err := repo.FindByEmail(ctx, "ANA@x.com")
		require.NoError(t, err)
		assert.Equal(t, in.ID, got.ID)
		assert.Equal(t, domainauth.RoleDriver, got.Role)
		require.NotNil(t, got.Driver)
		assert.Equal(t, "CNH1", got.Driver.LicenseNumber)
		assert.Empty(t, got.Driver.PayoutKey)
		assert.True(t, in.CreatedAt.Equal(got.CreatedAt))

		exists, err := repo.ExistsByNationalIDOrEmail(ctx, "111", "nobody@x.com")
		require.NoError(t, err)
		assert.True(t, exists)

		exists, err = repo.ExistsByNationalIDOrEmail(ctx, "999", "nobody@x.com")
		require.NoError(t, err)
		assert.False(t, exists)
	})
}

func TestIdentityRepo_FindByEmail_NotFound(t *testing.T) {
	testutil.SkipIfNoTestDB(t)
	testutil.WithAutoDB(t, func(db *sql.DB) {
		repo := NewIdentityRepo(db)

		_, err := repo.FindByEmail(context.Background(), "missing@x.com")
		assert.ErrorIs(t, err, domainauth.ErrIdentityNotFound)
	})
}

func TestIdentityRepo_Insert_Duplicates(t *testing.T) {
	testutil.SkipIfNoTestDB(t)
	testutil.WithAutoDB(t, func(db *sql.DB) {
		repo := NewIdentityRepo(db)
		ctx := context.Background()
		require.NoError(t, repo.Insert(ctx, newDriver("ana@x.com", "111", "CNH1")))

		err := repo.Insert(ctx, newPassenger("ana@x.com", "222"))
		assert.Equal(t, domainauth.FieldEmail, domainauth.DuplicateFieldName(err))

		err = repo.Insert(ctx, newPassenger("b@x.com", "111"))
		assert.Equal(t, domainauth.FieldNationalID, domainauth.DuplicateFieldName(err))

		// The identity row would be valid on its own; the driver profile insert fails
		// and the whole transaction must roll back.
		err = repo.Insert(ctx, newDriver("c@x.com", "333", "CNH1"))
		assert.ErrorIs(t, err, domainauth.ErrDuplicateField)
		assert.Equal(t, domainauth.FieldLicenseNumber, domainauth.DuplicateFieldName(err))

		exists, err := repo.ExistsByNationalIDOrEmail(ctx, "333", "c@x.com")
		require.NoError(t, err)
		assert.False(t, exists, "identity row must not survive a failed profile insert")
		assert.Equal(t, 1, testutil.CountRows(t, db, "identities"))
		assert.Equal(t, 1, testutil.CountRows(t, db, "driver_profiles"))
	})
}

func TestIdentityRepo_Insert_ConcurrentSameEmail(t *testing.T) {
	testutil.SkipIfNoTestDB(t)
	testutil.WithAutoDB(t, func(db *sql.DB) {
		repo := NewIdentityRepo(db)
		ctx := context.Background()

		funcs := make([]func() error, 8)
		for i := range funcs {
			funcs[i] = func() error {
				return repo.Insert(ctx, newPassenger("race@x.com", uuid.NewString()))
			}
		}
		errs := testutil.NewConcurrentTestRunner(t).RunConcurrent(funcs...)

		for _, err := range errs {
			if err != nil {
				assert.ErrorIs(t, err, domainauth.ErrDuplicateField)
			}
		}
		assert.Equal(t, 1, testutil.CountSuccesses(errs))
		assert.Equal(t, 1, testutil.CountRows(t, db, "identities"))
	})
}

func TestIdentityRepo_Insert_RejectsExtensionMismatch(t *testing.T) {
	testutil.SkipIfNoTestDB(t)
	testutil.WithAutoDB(t, func(db *sql.DB) {
		repo := NewIdentityRepo(db)
		in := newPassenger("p@x.com", "1")
		in.Driver = &domainauth.DriverProfile{LicenseNumber: "X1"}

		err := repo.Insert(context.Background(), in)
		assert.ErrorIs(t, err, domainauth.ErrInvalidRole)
		assert.Equal(t, 0, testutil.CountRows(t, db, "identities"))
	})
}
