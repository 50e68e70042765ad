package tokens

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	domainauth "github.com/vanvan/vanvan-auth/internal/domain/auth"
)

const testSecret = "test-signing-key-0123456789"

type fakeClock struct{ t time.Time }

func (c *fakeClock) Now() time.Time { return c.t }

func newTestIssuer(t *testing.T, clock *fakeClock) *Issuer {
	t.Helper()
	iss, err := NewIssuer(Config{Secret: testSecret, Issuer: "vanvan-test", Now: clock.Now})
	require.NoError(t, err)
	return iss
}

func driverClaims(now time.Time) domainauth.Claims {
	return domainauth.Claims{
		TokenID:     "jti-1",
		SubjectID:   "identity-1",
		Role:        domainauth.RoleDriver,
		Authorities: []domainauth.Authority{domainauth.AuthorityDriver},
		IssuedAt:    now,
		ExpiresAt:   now.Add(time.Hour),
	}
}

func TestNewIssuer_Validation(t *testing.T) {
	_, err := NewIssuer(Config{Secret: "short", Issuer: "vanvan"})
	require.Error(t, err)

	_, err = NewIssuer(Config{Secret: testSecret, Issuer: " "})
	require.Error(t, err)

	_, err = NewIssuer(Config{Secret: testSecret, Issuer: "vanvan"})
	require.NoError(t, err)
}

func TestIssuer_RoundTrip(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	clock := &fakeClock{t: now}
	iss := newTestIssuer(t, clock)
	ctx := context.Background()

	in := driverClaims(now)
	token, err := iss.Issue(ctx, in)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	clock.t = now.Add(59 * time.Minute)
	out, err := iss.Parse(ctx, token)
	require.NoError(t, err)

	assert.Equal(t, in.TokenID, out.TokenID)
	assert.Equal(t, in.SubjectID, out.SubjectID)
	assert.Equal(t, in.Role, out.Role)
	assert.Equal(t, in.Authorities, out.Authorities)
	assert.True(t, in.IssuedAt.Equal(out.IssuedAt))
	assert.True(t, in.ExpiresAt.Equal(out.ExpiresAt))
}

func TestIssuer_RejectsAfterExpiry(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	clock := &fakeClock{t: now}
	iss := newTestIssuer(t, clock)
	ctx := context.Background()

	token, err := iss.Issue(ctx, driverClaims(now))
	require.NoError(t, err)

	clock.t = now.Add(time.Hour + time.Second)
	_, err = iss.Parse(ctx, token)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrTokenExpired)
}

func TestIssuer_IssueDefaults(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	iss := newTestIssuer(t, &fakeClock{t: now})
	ctx := context.Background()

	claims := driverClaims(now)
	claims.TokenID = ""
	claims.IssuedAt = time.Time{}

	token, err := iss.Issue(ctx, claims)
	require.NoError(t, err)

	out, err := iss.Parse(ctx, token)
	require.NoError(t, err)
	assert.NotEmpty(t, out.TokenID)
	assert.True(t, now.Equal(out.IssuedAt))
}

func TestIssuer_IssueRejectsBadClaims(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	iss := newTestIssuer(t, &fakeClock{t: now})
	ctx := context.Background()

	c := driverClaims(now)
	c.ExpiresAt = now
	_, err := iss.Issue(ctx, c)
	require.Error(t, err, "expiry equal to issuance must be rejected")

	c = driverClaims(now)
	c.SubjectID = ""
	_, err = iss.Issue(ctx, c)
	require.Error(t, err)

	c = driverClaims(now)
	c.Authorities = nil
	_, err = iss.Issue(ctx, c)
	require.Error(t, err)
}

func TestIssuer_RejectsForeignTokens(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	clock := &fakeClock{t: now}
	iss := newTestIssuer(t, clock)
	ctx := context.Background()

	otherKey, err := NewIssuer(Config{Secret: "another-signing-key-987654", Issuer: "vanvan-test", Now: clock.Now})
	require.NoError(t, err)
	otherIssuer, err := NewIssuer(Config{Secret: testSecret, Issuer: "someone-else", Now: clock.Now})
	require.NoError(t, err)

	wrongKey, err := otherKey.Issue(ctx, driverClaims(now))
	require.NoError(t, err)
	wrongIss, err := otherIssuer.Issue(ctx, driverClaims(now))
	require.NoError(t, err)

	unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{
		"sub": "identity-1",
		"iss": "vanvan-test",
		"exp": now.Add(time.Hour).Unix(),
		"iat": now.Unix(),
	}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	for name, token := range map[string]string{
		"wrong key":    wrongKey,
		"wrong issuer": wrongIss,
		"alg none":     unsigned,
		"garbage":      "not.a.token",
		"empty":        "",
	} {
		t.Run(name, func(t *testing.T) {
			_, err := iss.Parse(ctx, token)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrTokenInvalid)
		})
	}
}
