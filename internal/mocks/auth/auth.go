package auth

// Package auth contains simple hand-written test doubles for auth ports.
// These are lightweight and suitable for unit tests without codegen.

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	domainauth "github.com/vanvan/vanvan-auth/internal/domain/auth"
	"github.com/vanvan/vanvan-auth/internal/ports"
)

// Ensure compile-time conformance to ports.
var (
	_ ports.IdentityStore = (*MemoryIdentityStore)(nil)
	_ ports.SecretHasher  = (*PlainHasher)(nil)
	_ ports.TokenIssuer   = (*RecordingTokenIssuer)(nil)
	_ ports.TokenVerifier = (*RecordingTokenIssuer)(nil)
)

// MemoryIdentityStore is an in-memory identity store for unit tests.
// Uniqueness of email, national ID and license number is checked under one lock.
type MemoryIdentityStore struct {
	mu         sync.Mutex
	byID       map[string]domainauth.Identity
	byEmail    map[string]string
	byNational map[string]string
	byLicense  map[string]string

	// Optional failure injection.
	FindErr   error
	ExistsErr error
	InsertErr error
}

// NewMemoryIdentityStore creates an empty in-memory identity store.
func NewMemoryIdentityStore() *MemoryIdentityStore {
	return &MemoryIdentityStore{
		byID:       make(map[string]domainauth.Identity),
		byEmail:    make(map[string]string),
		byNational: make(map[string]string),
		byLicense:  make(map[string]string),
	}
}

func (m *MemoryIdentityStore) FindByEmail(ctx context.Context, email string) (domainauth.Identity, error) {
	if err := ctx.Err(); err != nil {
		return domainauth.Identity{}, err
	}
	if m.FindErr != nil {
		return domainauth.Identity{}, m.FindErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	id, ok := m.byEmail[strings.ToLower(email)]
	if !ok {
		return domainauth.Identity{}, domainauth.ErrIdentityNotFound
	}
	return cloneIdentity(m.byID[id]), nil
}

func (m *MemoryIdentityStore) ExistsByNationalIDOrEmail(ctx context.Context, nationalID, email string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	if m.ExistsErr != nil {
		return false, m.ExistsErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	_, emailTaken := m.byEmail[strings.ToLower(email)]
	_, nationalTaken := m.byNational[nationalID]
	return emailTaken || nationalTaken, nil
}

func (m *MemoryIdentityStore) Insert(ctx context.Context, identity domainauth.Identity) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if m.InsertErr != nil {
		return m.InsertErr
	}
	if identity.ID == "" {
		return errors.New("identity ID cannot be empty")
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	email := strings.ToLower(identity.Email)
	if _, ok := m.byEmail[email]; ok {
		return domainauth.DuplicateField(domainauth.FieldEmail)
	}
	if _, ok := m.byNational[identity.NationalID]; ok {
		return domainauth.DuplicateField(domainauth.FieldNationalID)
	}
	if identity.Driver != nil {
		if _, ok := m.byLicense[identity.Driver.LicenseNumber]; ok {
			return domainauth.DuplicateField(domainauth.FieldLicenseNumber)
		}
		m.byLicense[identity.Driver.LicenseNumber] = identity.ID
	}

	m.byID[identity.ID] = cloneIdentity(identity)
	m.byEmail[email] = identity.ID
	m.byNational[identity.NationalID] = identity.ID
	return nil
}

// Len returns the number of stored identities.
func (m *MemoryIdentityStore) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.byID)
}

// Get returns a stored identity by ID.
func (m *MemoryIdentityStore) Get(id string) (domainauth.Identity, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	ident, ok := m.byID[id]
	return cloneIdentity(ident), ok
}

func cloneIdentity(in domainauth.Identity) domainauth.Identity {
	out := in
	if in.Driver != nil {
		d := *in.Driver
		out.Driver = &d
	}
	return out
}

const plainPrefix = "plain:"

// PlainHasher "hashes" by prefixing the secret. Never use outside tests.
type PlainHasher struct {
	HashErr    error
	CompareErr error

	mu       sync.Mutex
	compares int
	hashes   int
}

func (h *PlainHasher) Hash(_ context.Context, secret string) (string, error) {
	h.mu.Lock()
	h.hashes++
	h.mu.Unlock()
	if h.HashErr != nil {
		return "", h.HashErr
	}
	return plainPrefix + secret, nil
}

func (h *PlainHasher) Compare(_ context.Context, secret, hash string) (bool, error) {
	h.mu.Lock()
	h.compares++
	h.mu.Unlock()
	if h.CompareErr != nil {
		return false, h.CompareErr
	}
	if !strings.HasPrefix(hash, plainPrefix) {
		return false, fmt.Errorf("malformed hash %q", hash)
	}
	return hash == plainPrefix+secret, nil
}

// Hashes returns how many times Hash was called.
func (h *PlainHasher) Hashes() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.hashes
}

// Compares returns how many times Compare was called.
func (h *PlainHasher) Compares() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.compares
}

// RecordingTokenIssuer issues opaque tokens and keeps the claims it signed,
// so Parse can hand them back.
type RecordingTokenIssuer struct {
	IssueErr error
	// Now is used to reject expired tokens in Parse; defaults to time.Now.
	Now func() time.Time

	mu     sync.Mutex
	issued map[string]domainauth.Claims
	seq    int
}

// ErrUnknownToken is returned by RecordingTokenIssuer.Parse for tokens it did not issue.
var ErrUnknownToken = errors.New("unknown token")

// ErrExpiredToken is returned by RecordingTokenIssuer.Parse for tokens past ExpiresAt.
var ErrExpiredToken = errors.New("expired token")

func (r *RecordingTokenIssuer) Issue(_ context.Context, claims domainauth.Claims) (string, error) {
	if r.IssueErr != nil {
		return "", r.IssueErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.issued == nil {
		r.issued = make(map[string]domainauth.Claims)
	}
	r.seq++
	token := fmt.Sprintf("token-%d-%s", r.seq, claims.SubjectID)
	r.issued[token] = claims
	return token, nil
}

func (r *RecordingTokenIssuer) Parse(_ context.Context, token string) (domainauth.Claims, error) {
	r.mu.Lock()
	claims, ok := r.issued[token]
	r.mu.Unlock()
	if !ok {
		return domainauth.Claims{}, ErrUnknownToken
	}
	now := time.Now
	if r.Now != nil {
		now = r.Now
	}
	if !now().Before(claims.ExpiresAt) {
		return domainauth.Claims{}, ErrExpiredToken
	}
	return claims, nil
}

// Issued returns a copy of every claims value signed so far.
func (r *RecordingTokenIssuer) Issued() []domainauth.Claims {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]domainauth.Claims, 0, len(r.issued))
	for _, c := range r.issued {
		out = append(out, c)
	}
	return out
}
