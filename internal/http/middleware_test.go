package httpx

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	domainauth "github.com/vanvan/vanvan-auth/internal/domain/auth"
)

// stubAuthenticator maps tokens to principals.
type stubAuthenticator map[string]*domainauth.Principal

func (s stubAuthenticator) Authenticate(_ context.Context, token string) (*domainauth.Principal, error) {
	if p, ok := s[token]; ok {
		return p, nil
	}
	return nil, errors.New("invalid token")
}

func okHandler(w http.ResponseWriter, r *http.Request) {
	p, _ := GetPrincipalFromContext(r.Context())
	WriteJSON(w, http.StatusOK, p)
}

func TestRequireAuthority(t *testing.T) {
	authn := stubAuthenticator{
		"admin":     {SubjectID: "a1", Role: domainauth.RoleAdmin, Authorities: []domainauth.Authority{domainauth.AuthorityAdmin}},
		"passenger": {SubjectID: "p1", Role: domainauth.RolePassenger, Authorities: []domainauth.Authority{domainauth.AuthorityPassenger}},
	}

	tests := []struct {
		name   string
		header string
		want   int
	}{
		{name: "no header", header: "", want: http.StatusUnauthorized},
		{name: "wrong scheme", header: "Basic admin", want: http.StatusUnauthorized},
		{name: "empty bearer", header: "Bearer   ", want: http.StatusUnauthorized},
		{name: "unknown token", header: "Bearer nope", want: http.StatusUnauthorized},
		{name: "missing authority", header: "Bearer passenger", want: http.StatusForbidden},
		{name: "granted", header: "Bearer admin", want: http.StatusOK},
		{name: "scheme case-insensitive", header: "bearer admin", want: http.StatusOK},
	}

	h := RequireAuthority(authn, domainauth.AuthorityAdmin)(http.HandlerFunc(okHandler))
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/admin/ping", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)
			assert.Equal(t, tt.want, rec.Code)
			if tt.want == http.StatusUnauthorized {
				assert.NotEmpty(t, rec.Header().Get("WWW-Authenticate"))
			}
		})
	}
}

func TestRequireAuth_AnyValidToken(t *testing.T) {
	authn := stubAuthenticator{
		"passenger": {SubjectID: "p1", Authorities: []domainauth.Authority{domainauth.AuthorityPassenger}},
	}
	h := RequireAuth(authn)(http.HandlerFunc(okHandler))

	req := httptest.NewRequest(http.MethodGet, "/auth/me", nil)
	req.Header.Set("Authorization", "Bearer passenger")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"subject_id":"p1"`)
}

func TestRequireAuth_NilAuthenticator(t *testing.T) {
	h := RequireAuth(nil)(http.HandlerFunc(okHandler))
	req := httptest.NewRequest(http.MethodGet, "/auth/me", nil)
	req.Header.Set("Authorization", "Bearer x")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestLogging_NeverLogsAuthorization(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))
	h := Logging(logger)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))

	req := httptest.NewRequest(http.MethodPost, "/auth/login", bytes.NewBufferString(`{"password":"pw1"}`))
	req.Header.Set("Authorization", "Bearer secret-token")
	h.ServeHTTP(httptest.NewRecorder(), req)

	out := buf.String()
	assert.Contains(t, out, `"status":418`)
	assert.Contains(t, out, `"path":"/auth/login"`)
	assert.NotContains(t, out, "secret-token")
	assert.NotContains(t, out, "pw1")
}

func TestRecover(t *testing.T) {
	h := Recover(discardLogger())(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestPrincipalContext(t *testing.T) {
	_, ok := GetPrincipalFromContext(context.Background())
	assert.False(t, ok)

	ctx := SetPrincipalInContext(context.Background(), nil)
	_, ok = GetPrincipalFromContext(ctx)
	assert.False(t, ok)

	p := &domainauth.Principal{SubjectID: "s"}
	got, ok := GetPrincipalFromContext(SetPrincipalInContext(context.Background(), p))
	require.True(t, ok)
	assert.Same(t, p, got)
}
