package httpx

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/vanvan/vanvan-auth/internal/adapters/authroles"
	mockauth "github.com/vanvan/vanvan-auth/internal/mocks/auth"
	"github.com/vanvan/vanvan-auth/internal/service"
)

var testNow = time.Date(2025, 3, 14, 9, 26, 53, 0, time.UTC)

type testEnv struct {
	store   *mockauth.MemoryIdentityStore
	hasher  *mockauth.PlainHasher
	tokens  *mockauth.RecordingTokenIssuer
	svc     *service.IdentityService
	handler http.Handler
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// newTestEnv wires a real IdentityService over in-memory doubles behind NewRouter.
func newTestEnv(t *testing.T, mutate func(*RouterServices)) *testEnv {
	t.Helper()
	env := &testEnv{
		store:  mockauth.NewMemoryIdentityStore(),
		hasher: &mockauth.PlainHasher{},
		tokens: &mockauth.RecordingTokenIssuer{Now: func() time.Time { return testNow }},
	}
	env.svc = service.NewIdentityService(service.IdentityServiceOptions{
		Store:       env.store,
		Hasher:      env.hasher,
		Tokens:      env.tokens,
		Authorities: authroles.StaticAuthorityMapper{},
		TokenTTL:    time.Hour,
		Now:         func() time.Time { return testNow },
	})
	services := RouterServices{Identity: env.svc, Logger: discardLogger()}
	if mutate != nil {
		mutate(&services)
	}
	env.handler = NewRouter(services)
	return env
}

func (e *testEnv) do(t *testing.T, method, path string, body any, token string) *httptest.ResponseRecorder {
	t.Helper()
	var rdr io.Reader
	if body != nil {
		switch b := body.(type) {
		case string:
			rdr = bytes.NewBufferString(b)
		default:
			raw, err := json.Marshal(b)
			require.NoError(t, err)
			rdr = bytes.NewReader(raw)
		}
	}
	req := httptest.NewRequest(method, path, rdr)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	e.handler.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), "body: %s", rec.Body.String())
	return out
}

func anaDriverRequest() map[string]any {
	return map[string]any{
		"full_name":   "Ana",
		"national_id": "123",
		"phone":       "+7 700 000 0000",
		"email":       "a@x.io",
		"password":    "pw1",
		"role":        "driver",
		"driver": map[string]any{
			"license_number": "L-9",
			"payout_key":     "",
		},
	}
}

func passengerRequest(email, nationalID string) map[string]any {
	return map[string]any{
		"full_name":   "Bo Passenger",
		"national_id": nationalID,
		"email":       email,
		"password":    "correct horse",
		"role":        "passenger",
	}
}
