package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	domainauth "github.com/vanvan/vanvan-auth/internal/domain/auth"
)

func sampleIdentity(id, email, nationalID string) domainauth.Identity {
	return domainauth.Identity{
		ID:         id,
		FullName:   "Sample",
		NationalID: nationalID,
		Email:      email,
		SecretHash: "plain:pw",
		Role:       domainauth.RolePassenger,
	}
}

func TestMemoryIdentityStore_InsertAndFind(t *testing.T) {
	store := NewMemoryIdentityStore()
	ctx := context.Background()

	require.NoError(t, store.Insert(ctx, sampleIdentity("id-1", "a@x.com", "111")))

	got, err := store.FindByEmail(ctx, "A@X.com")
	require.NoError(t, err)
	assert.Equal(t, "id-1", got.ID)

	exists, err := store.ExistsByNationalIDOrEmail(ctx, "111", "other@x.com")
	require.NoError(t, err)
	assert.True(t, exists)

	_, err = store.FindByEmail(ctx, "missing@x.com")
	assert.ErrorIs(t, err, domainauth.ErrIdentityNotFound)
}

func TestMemoryIdentityStore_Duplicates(t *testing.T) {
	store := NewMemoryIdentityStore()
	ctx := context.Background()

	driver := sampleIdentity("id-1", "d@x.com", "111")
	driver.Role = domainauth.RoleDriver
	driver.Driver = &domainauth.DriverProfile{LicenseNumber: "CNH1"}
	require.NoError(t, store.Insert(ctx, driver))

	err := store.Insert(ctx, sampleIdentity("id-2", "d@x.com", "222"))
	assert.ErrorIs(t, err, domainauth.ErrDuplicateField)
	assert.Equal(t, domainauth.FieldEmail, domainauth.DuplicateFieldName(err))

	err = store.Insert(ctx, sampleIdentity("id-3", "e@x.com", "111"))
	assert.Equal(t, domainauth.FieldNationalID, domainauth.DuplicateFieldName(err))

	other := sampleIdentity("id-4", "f@x.com", "444")
	other.Role = domainauth.RoleDriver
	other.Driver = &domainauth.DriverProfile{LicenseNumber: "CNH1"}
	err = store.Insert(ctx, other)
	assert.Equal(t, domainauth.FieldLicenseNumber, domainauth.DuplicateFieldName(err))

	assert.Equal(t, 1, store.Len())
}

func TestMemoryIdentityStore_ReturnsCopies(t *testing.T) {
	store := NewMemoryIdentityStore()
	ctx := context.Background()

	driver := sampleIdentity("id-1", "d@x.com", "111")
	driver.Role = domainauth.RoleDriver
	driver.Driver = &domainauth.DriverProfile{LicenseNumber: "CNH1"}
	require.NoError(t, store.Insert(ctx, driver))

	driver.Driver.LicenseNumber = "MUTATED"
	got, ok := store.Get("id-1")
	require.True(t, ok)
	assert.Equal(t, "CNH1", got.Driver.LicenseNumber)
}

func TestPlainHasher(t *testing.T) {
	h := &PlainHasher{}
	ctx := context.Background()

	hash, err := h.Hash(ctx, "pw1")
	require.NoError(t, err)

	ok, err := h.Compare(ctx, "pw1", hash)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = h.Compare(ctx, "pw2", hash)
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = h.Compare(ctx, "pw1", "garbage")
	assert.Error(t, err)
	assert.Equal(t, 3, h.Compares())
}

func TestRecordingTokenIssuer(t *testing.T) {
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	r := &RecordingTokenIssuer{Now: func() time.Time { return now }}
	ctx := context.Background()

	claims := domainauth.Claims{SubjectID: "id-1", IssuedAt: now, ExpiresAt: now.Add(time.Hour)}
	token, err := r.Issue(ctx, claims)
	require.NoError(t, err)

	got, err := r.Parse(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, claims, got)

	_, err = r.Parse(ctx, "nope")
	assert.ErrorIs(t, err, ErrUnknownToken)

	now = now.Add(2 * time.Hour)
	_, err = r.Parse(ctx, token)
	assert.ErrorIs(t, err, ErrExpiredToken)
	assert.Len(t, r.Issued(), 1)

	r.IssueErr = errors.New("boom")
	_, err = r.Issue(ctx, claims)
	assert.Error(t, err)
}
