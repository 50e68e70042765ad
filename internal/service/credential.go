package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/vanvan/vanvan-auth/internal/ports"
)

// ErrVerificationUnavailable reports that secrets could not be hashed or compared at all.
// It is never returned for a plain mismatch.
var ErrVerificationUnavailable = errors.New("credential verification unavailable")

// CredentialVerifier checks raw secrets against stored hashes.
type CredentialVerifier struct {
	hasher ports.SecretHasher
}

// NewCredentialVerifier constructs a CredentialVerifier over hasher.
func NewCredentialVerifier(hasher ports.SecretHasher) *CredentialVerifier {
	return &CredentialVerifier{hasher: hasher}
}

// Verify reports whether raw matches storedHash. A mismatch is (false, nil).
// The comparison itself is delegated to the hasher, which must be constant-time.
func (v *CredentialVerifier) Verify(ctx context.Context, raw, storedHash string) (bool, error) {
	if v == nil || v.hasher == nil {
		return false, fmt.Errorf("%w: no hasher configured", ErrVerificationUnavailable)
	}
	ok, err := v.hasher.Compare(ctx, raw, storedHash)
	if err != nil {
		return false, fmt.Errorf("%w: %w", ErrVerificationUnavailable, err)
	}
	return ok, nil
}

// Hash hashes raw for storage.
func (v *CredentialVerifier) Hash(ctx context.Context, raw string) (string, error) {
	if v == nil || v.hasher == nil {
		return "", fmt.Errorf("%w: no hasher configured", ErrVerificationUnavailable)
	}
	hash, err := v.hasher.Hash(ctx, raw)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrVerificationUnavailable, err)
	}
	return hash, nil
}
