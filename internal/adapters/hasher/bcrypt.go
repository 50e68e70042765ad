// Package hasher provides the bcrypt-backed SecretHasher.
package hasher

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// ErrMalformedHash is returned when a stored hash cannot be compared at all.
var ErrMalformedHash = errors.New("stored secret hash is malformed")

// Bcrypt implements ports.SecretHasher with golang.org/x/crypto/bcrypt.
// Comparison is constant time with respect to the secret.
type Bcrypt struct {
	cost int
}

// NewBcrypt returns a hasher using cost, which must be within bcrypt's bounds.
func NewBcrypt(cost int) (*Bcrypt, error) {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		return nil, fmt.Errorf("bcrypt cost %d outside [%d, %d]", cost, bcrypt.MinCost, bcrypt.MaxCost)
	}
	return &Bcrypt{cost: cost}, nil
}

// Hash returns the bcrypt encoding of secret.
func (b *Bcrypt) Hash(ctx context.Context, secret string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	out, err := bcrypt.GenerateFromPassword([]byte(secret), b.cost)
	if err != nil {
		return "", fmt.Errorf("bcrypt hash: %w", err)
	}
	return string(out), nil
}

// Compare reports whether secret matches hash. A mismatch is not an error.
func (b *Bcrypt) Compare(ctx context.Context, secret, hash string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(secret))
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, bcrypt.ErrMismatchedHashAndPassword):
		return false, nil
	default:
		return false, errors.Join(ErrMalformedHash, err)
	}
}

// Cost returns the configured work factor.
func (b *Bcrypt) Cost() int { return b.cost }
