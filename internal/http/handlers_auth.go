package httpx

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	domainauth "github.com/vanvan/vanvan-auth/internal/domain/auth"
	"github.com/vanvan/vanvan-auth/internal/service"
)

// IdentityServiceInterface defines the identity operations the HTTP layer needs.
type IdentityServiceInterface interface {
	Register(ctx context.Context, r domainauth.Registration) (*domainauth.Identity, error)
	Login(ctx context.Context, email, secret string) (*service.LoginResult, error)
	Authenticate(ctx context.Context, token string) (*domainauth.Principal, error)
}

// AuthHandlers provides HTTP handlers for registration, login and token introspection.
type AuthHandlers struct {
	Svc    IdentityServiceInterface
	Logger *slog.Logger
}

func (h *AuthHandlers) logger() *slog.Logger {
	if h != nil && h.Logger != nil {
		return h.Logger
	}
	return slog.Default()
}

type driverProfileRequest struct {
	LicenseNumber string `json:"license_number"`
	PayoutKey     string `json:"payout_key"`
}

type registerRequest struct {
	FullName   string                `json:"full_name"`
	NationalID string                `json:"national_id"`
	Phone      string                `json:"phone"`
	Email      string                `json:"email"`
	Password   string                `json:"password"`
	Role       string                `json:"role"`
	Driver     *driverProfileRequest `json:"driver,omitempty"`
}

func (req registerRequest) toRegistration() domainauth.Registration {
	reg := domainauth.Registration{
		FullName:   req.FullName,
		NationalID: req.NationalID,
		Phone:      req.Phone,
		Email:      req.Email,
		Secret:     req.Password,
		Role:       domainauth.Role(req.Role),
	}
	if req.Driver != nil {
		reg.Driver = &domainauth.DriverProfile{
			LicenseNumber: req.Driver.LicenseNumber,
			PayoutKey:     req.Driver.PayoutKey,
		}
	}
	return reg
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token     string               `json:"token"`
	TokenType string               `json:"token_type"`
	ExpiresAt time.Time            `json:"expires_at"`
	Principal domainauth.Principal `json:"principal"`
}

// Register handles identity registration.
// POST /auth/register.
func (h *AuthHandlers) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if !DecodeJSON(w, r, &req) {
		return
	}

	identity, err := h.Svc.Register(r.Context(), req.toRegistration())
	if err != nil {
		h.logServiceError(r.Context(), "register", err)
		writeServiceError(w, err)
		return
	}

	WriteJSON(w, http.StatusCreated, identity)
}

// Login exchanges email and password for a bearer token.
// POST /auth/login.
func (h *AuthHandlers) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !DecodeJSON(w, r, &req) {
		return
	}
	if req.Email == "" || req.Password == "" {
		WriteError(w, ErrorParams{
			Code:    http.StatusBadRequest,
			ErrCode: "invalid_input",
			Err:     errors.New("email and password are required"),
		})
		return
	}

	res, err := h.Svc.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		h.logServiceError(r.Context(), "login", err)
		writeServiceError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, loginResponse{
		Token:     res.Token,
		TokenType: "Bearer",
		ExpiresAt: res.ExpiresAt,
		Principal: res.Principal,
	})
}

// Me returns the principal of the authenticated caller.
// GET /auth/me (behind RequireAuth).
func (h *AuthHandlers) Me(w http.ResponseWriter, r *http.Request) {
	principal, ok := GetPrincipalFromContext(r.Context())
	if !ok {
		WriteError(w, ErrorParams{
			Code:    http.StatusUnauthorized,
			ErrCode: "authentication_required",
			Err:     errors.New("authentication required"),
		})
		return
	}
	WriteJSON(w, http.StatusOK, principal)
}

// logServiceError logs infrastructure failures; expected rejections stay quiet.
func (h *AuthHandlers) logServiceError(ctx context.Context, op string, err error) {
	if statusForCode(classifyServiceError(err).Code) < http.StatusInternalServerError {
		return
	}
	h.logger().ErrorContext(ctx, "identity operation failed", "operation", op, "error", err)
}
