package tokens

// Package tokens signs and verifies HS256 session tokens with github.com/golang-jwt/jwt/v5.

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	domainauth "github.com/vanvan/vanvan-auth/internal/domain/auth"
)

const minSecretLen = 16

var (
	// ErrTokenExpired is returned by Parse for a well-signed token past its exp claim.
	ErrTokenExpired = errors.New("token expired")
	// ErrTokenInvalid is returned by Parse for any token that fails verification.
	ErrTokenInvalid = errors.New("token invalid")
)

// Config controls signing and verification.
type Config struct {
	Secret string
	Issuer string
	// Now overrides the verification clock; defaults to time.Now.
	Now func() time.Time
}

// Issuer implements ports.TokenIssuer and ports.TokenVerifier.
type Issuer struct {
	key    []byte
	issuer string
	now    func() time.Time
}

// sessionClaims is the wire shape of a session token.
type sessionClaims struct {
	jwt.RegisteredClaims
	Role        string   `json:"role"`
	Authorities []string `json:"authorities"`
}

// NewIssuer validates cfg and returns an Issuer.
func NewIssuer(cfg Config) (*Issuer, error) {
	secret := strings.TrimSpace(cfg.Secret)
	if len(secret) < minSecretLen {
		return nil, fmt.Errorf("jwt secret must be at least %d characters", minSecretLen)
	}
	if strings.TrimSpace(cfg.Issuer) == "" {
		return nil, errors.New("jwt issuer is required")
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	return &Issuer{
		key:    []byte(secret),
		issuer: strings.TrimSpace(cfg.Issuer),
		now:    now,
	}, nil
}

// Issue signs claims. IssuedAt defaults to now; ExpiresAt must be strictly after IssuedAt.
// A TokenID is generated when empty.
func (i *Issuer) Issue(_ context.Context, claims domainauth.Claims) (string, error) {
	if claims.SubjectID == "" {
		return "", errors.New("token subject is required")
	}
	if len(claims.Authorities) == 0 {
		return "", errors.New("token authorities are required")
	}
	iat := claims.IssuedAt
	if iat.IsZero() {
		iat = i.now()
	}
	if !claims.ExpiresAt.After(iat) {
		return "", errors.New("token expiry must be after issuance")
	}
	jti := claims.TokenID
	if jti == "" {
		jti = uuid.NewString()
	}

	authorities := make([]string, len(claims.Authorities))
	for idx, a := range claims.Authorities {
		authorities[idx] = string(a)
	}

	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, sessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        jti,
			Subject:   claims.SubjectID,
			Issuer:    i.issuer,
			IssuedAt:  jwt.NewNumericDate(iat),
			ExpiresAt: jwt.NewNumericDate(claims.ExpiresAt),
		},
		Role:        string(claims.Role),
		Authorities: authorities,
	})
	signed, err := tok.SignedString(i.key)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Parse verifies signature, issuer and expiry, and returns the decoded claims.
func (i *Issuer) Parse(_ context.Context, token string) (domainauth.Claims, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return domainauth.Claims{}, ErrTokenInvalid
	}

	var parsed sessionClaims
	_, err := jwt.ParseWithClaims(token, &parsed, func(*jwt.Token) (any, error) {
		return i.key, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(i.issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(i.now),
	)
	if err != nil {
		return domainauth.Claims{}, mapJWTError(err)
	}
	if parsed.Subject == "" || parsed.IssuedAt == nil {
		return domainauth.Claims{}, ErrTokenInvalid
	}

	authorities := make([]domainauth.Authority, len(parsed.Authorities))
	for idx, a := range parsed.Authorities {
		authorities[idx] = domainauth.Authority(a)
	}

	return domainauth.Claims{
		TokenID:     parsed.ID,
		SubjectID:   parsed.Subject,
		Role:        domainauth.Role(parsed.Role),
		Authorities: authorities,
		IssuedAt:    parsed.IssuedAt.Time.UTC(),
		ExpiresAt:   parsed.ExpiresAt.Time.UTC(),
	}, nil
}

// mapJWTError translates jwt library errors to package sentinels.
func mapJWTError(err error) error {
	if errors.Is(err, jwt.ErrTokenExpired) {
		return fmt.Errorf("%w: %w", ErrTokenExpired, err)
	}
	return fmt.Errorf("%w: %w", ErrTokenInvalid, err)
}
