package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	domainauth "github.com/vanvan/vanvan-auth/internal/domain/auth"
	"github.com/vanvan/vanvan-auth/internal/observability/metrics"
	"github.com/vanvan/vanvan-auth/internal/ports"
)

var (
	// ErrInvalidCredentials is the single outcome of a failed login, whatever the cause.
	ErrInvalidCredentials = errors.New("invalid email or secret")
	// ErrPersistence reports an infrastructural store failure.
	ErrPersistence = errors.New("identity store failure")
	// ErrInvalidToken reports a session token that failed verification or has expired.
	ErrInvalidToken = errors.New("invalid session token")
)

const defaultTokenTTL = 24 * time.Hour

// dummySecret is compared against on lookup misses so a miss costs one hash comparison too.
const dummySecret = "vanvan-dummy-secret"

// IdentityServiceOptions groups dependencies for IdentityService.
type IdentityServiceOptions struct {
	Store       ports.IdentityStore     // Required: identity persistence
	Hasher      ports.SecretHasher      // Required: secret hashing
	Tokens      ports.TokenIssuer       // Required: session token signing
	Verifier    ports.TokenVerifier     // Optional: needed for Authenticate
	Authorities ports.AuthorityResolver // Required: role to authority mapping
	TokenTTL    time.Duration           // Optional: defaults to 24h
	Now         func() time.Time        // Optional: clock override for tests
	Logger      *slog.Logger            // Optional: structured logger
	Metrics     metrics.Sink            // Optional: auth outcome metrics
}

// IdentityService orchestrates registration, login and token authentication.
type IdentityService struct {
	store       ports.IdentityStore
	credentials *CredentialVerifier
	tokens      ports.TokenIssuer
	verifier    ports.TokenVerifier
	authorities ports.AuthorityResolver
	ttl         time.Duration
	now         func() time.Time
	logger      *slog.Logger
	metrics     metrics.Sink

	dummyOnce sync.Once
	dummyHash string
}

// NewIdentityService constructs a new IdentityService.
func NewIdentityService(opts IdentityServiceOptions) *IdentityService {
	var logger *slog.Logger
	if opts.Logger != nil {
		logger = opts.Logger.With("component", "identity_service")
	}
	ttl := opts.TokenTTL
	if ttl <= 0 {
		ttl = defaultTokenTTL
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	verifier := opts.Verifier
	if verifier == nil {
		if v, ok := opts.Tokens.(ports.TokenVerifier); ok {
			verifier = v
		}
	}

	return &IdentityService{
		store:       opts.Store,
		credentials: NewCredentialVerifier(opts.Hasher),
		tokens:      opts.Tokens,
		verifier:    verifier,
		authorities: opts.Authorities,
		ttl:         ttl,
		now:         now,
		logger:      logger,
		metrics:     opts.Metrics,
	}
}

// Register validates r, hashes its secret and persists the new identity with its role extension.
// It returns an error matching domainauth.ErrDuplicateField, domainauth.ErrInvalidRole,
// domainauth.ErrInvalidInput, ErrVerificationUnavailable or ErrPersistence.
func (s *IdentityService) Register(ctx context.Context, r domainauth.Registration) (*domainauth.Identity, error) {
	start := s.now()
	identity, err := s.register(ctx, r)
	s.emit(metrics.OperationRegister, start, err)
	if err != nil {
		return nil, err
	}

	s.log().InfoContext(ctx, "identity registered",
		"identity_id", identity.ID,
		"role", identity.Role)
	return identity, nil
}

func (s *IdentityService) register(ctx context.Context, r domainauth.Registration) (*domainauth.Identity, error) {
	r.Normalize()
	if err := r.Validate(); err != nil {
		return nil, err
	}

	if err := s.precheckUnique(ctx, r.NationalID, r.Email); err != nil {
		return nil, err
	}

	hash, err := s.credentials.Hash(ctx, r.Secret)
	if err != nil {
		return nil, err
	}

	identity, err := domainauth.NewIdentity(r, hash, s.now())
	if err != nil {
		return nil, err
	}

	if err := s.store.Insert(ctx, identity); err != nil {
		if errors.Is(err, domainauth.ErrDuplicateField) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: insert identity: %w", ErrPersistence, err)
	}
	return &identity, nil
}

// precheckUnique rejects obviously taken values before paying for a hash.
// The store's Insert remains the authority on uniqueness.
func (s *IdentityService) precheckUnique(ctx context.Context, nationalID, email string) error {
	exists, err := s.store.ExistsByNationalIDOrEmail(ctx, nationalID, email)
	if err != nil {
		return fmt.Errorf("%w: check uniqueness: %w", ErrPersistence, err)
	}
	if !exists {
		return nil
	}

	_, err = s.store.FindByEmail(ctx, email)
	switch {
	case err == nil:
		return domainauth.DuplicateField(domainauth.FieldEmail)
	case errors.Is(err, domainauth.ErrIdentityNotFound):
		return domainauth.DuplicateField(domainauth.FieldNationalID)
	default:
		return fmt.Errorf("%w: check uniqueness: %w", ErrPersistence, err)
	}
}

// LoginResult is the outcome of a successful login.
type LoginResult struct {
	Token     string
	ExpiresAt time.Time
	Principal domainauth.Principal
}

// Login verifies email and secret and issues a session token.
// Unknown email and wrong secret both return ErrInvalidCredentials.
func (s *IdentityService) Login(ctx context.Context, email, secret string) (*LoginResult, error) {
	start := s.now()
	res, err := s.login(ctx, email, secret)
	s.emit(metrics.OperationLogin, start, err)
	if err != nil {
		if errors.Is(err, ErrInvalidCredentials) {
			s.log().DebugContext(ctx, "login rejected")
		} else {
			s.log().WarnContext(ctx, "login failed", "error", err)
		}
		return nil, err
	}
	return res, nil
}

func (s *IdentityService) login(ctx context.Context, email, secret string) (*LoginResult, error) {
	identity, err := s.store.FindByEmail(ctx, domainauth.NormalizeEmail(email))
	if err != nil {
		if errors.Is(err, domainauth.ErrIdentityNotFound) {
			s.burnComparison(ctx, secret)
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("%w: lookup identity: %w", ErrPersistence, err)
	}

	ok, err := s.credentials.Verify(ctx, secret, identity.SecretHash)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrInvalidCredentials
	}

	authorities := s.authorities.Resolve(identity.Role)
	issuedAt := s.now().UTC().Truncate(time.Second)
	claims := domainauth.Claims{
		SubjectID:   identity.ID,
		Role:        identity.Role,
		Authorities: authorities,
		IssuedAt:    issuedAt,
		ExpiresAt:   issuedAt.Add(s.ttl),
	}

	token, err := s.tokens.Issue(ctx, claims)
	if err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}

	return &LoginResult{
		Token:     token,
		ExpiresAt: claims.ExpiresAt,
		Principal: domainauth.PrincipalFromClaims(claims),
	}, nil
}

// PrepareDummyHash computes the hash compared against on lookup misses.
// Call it once at startup so the first miss costs the same as later ones.
func (s *IdentityService) PrepareDummyHash(ctx context.Context) error {
	var err error
	s.dummyOnce.Do(func() {
		var hash string
		hash, err = s.credentials.Hash(context.WithoutCancel(ctx), dummySecret)
		if err != nil {
			return
		}
		s.dummyHash = hash
	})
	if err != nil {
		return fmt.Errorf("prepare dummy hash: %w", err)
	}
	return nil
}

// burnComparison runs one comparison against a fixed hash; the result is discarded.
func (s *IdentityService) burnComparison(ctx context.Context, secret string) {
	if err := s.PrepareDummyHash(ctx); err != nil {
		s.log().WarnContext(ctx, "failed to prepare dummy hash", "error", err)
		return
	}
	if s.dummyHash == "" {
		return
	}
	_, _ = s.credentials.Verify(ctx, secret, s.dummyHash)
}

// Authenticate verifies a session token and returns the principal it carries.
func (s *IdentityService) Authenticate(ctx context.Context, token string) (*domainauth.Principal, error) {
	start := s.now()
	p, err := s.authenticate(ctx, token)
	s.emit(metrics.OperationAuthenticate, start, err)
	return p, err
}

func (s *IdentityService) authenticate(ctx context.Context, token string) (*domainauth.Principal, error) {
	if token == "" {
		return nil, ErrInvalidToken
	}
	if s.verifier == nil {
		return nil, fmt.Errorf("%w: no verifier configured", ErrInvalidToken)
	}
	claims, err := s.verifier.Parse(ctx, token)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}
	if claims.SubjectID == "" || len(claims.Authorities) == 0 {
		return nil, fmt.Errorf("%w: missing subject or authorities", ErrInvalidToken)
	}
	p := domainauth.PrincipalFromClaims(claims)
	return &p, nil
}

func (s *IdentityService) emit(op string, start time.Time, err error) {
	metrics.EmitAuthOutcome(s.metrics, metrics.AuthMetric{
		Operation: op,
		Result:    outcomeResult(err),
		Duration:  s.now().Sub(start),
		Err:       err,
	})
}

// outcomeResult separates caller-caused rejections from infrastructure errors.
func outcomeResult(err error) string {
	switch {
	case err == nil:
		return metrics.ResultSuccess
	case errors.Is(err, ErrPersistence),
		errors.Is(err, ErrVerificationUnavailable),
		errors.Is(err, context.Canceled),
		errors.Is(err, context.DeadlineExceeded):
		return metrics.ResultError
	case errors.Is(err, ErrInvalidCredentials),
		errors.Is(err, ErrInvalidToken),
		errors.Is(err, domainauth.ErrDuplicateField),
		errors.Is(err, domainauth.ErrInvalidRole),
		errors.Is(err, domainauth.ErrInvalidInput):
		return metrics.ResultRejected
	default:
		return metrics.ResultError
	}
}

func (s *IdentityService) log() *slog.Logger {
	if s.logger != nil {
		return s.logger
	}
	return slog.Default()
}
