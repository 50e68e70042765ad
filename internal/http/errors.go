package httpx

import (
	"context"
	"errors"
	"net/http"

	domainauth "github.com/vanvan/vanvan-auth/internal/domain/auth"
	apperrors "github.com/vanvan/vanvan-auth/internal/errors"
	"github.com/vanvan/vanvan-auth/internal/service"
)

// Fixed messages; service error text is never echoed for these classes.
const (
	msgInvalidCredentials = "invalid email or password"
	msgInvalidToken       = "invalid or expired token"
	msgUnavailable        = "service temporarily unavailable"
	msgInternal           = "internal server error"
)

// errorCodes are the machine-readable error values written to clients.
var errorCodes = map[apperrors.ErrorCode]string{
	apperrors.ErrCodeValidation:   "invalid_input",
	apperrors.ErrCodeConflict:     "duplicate_field",
	apperrors.ErrCodeUnauthorized: "unauthorized",
	apperrors.ErrCodeForbidden:    "insufficient_permissions",
	apperrors.ErrCodeUnavailable:  "service_unavailable",
	apperrors.ErrCodeTimeout:      "timeout",
	apperrors.ErrCodeCanceled:     "canceled",
	apperrors.ErrCodeInternal:     "internal_error",
}

// classifyServiceError maps identity service errors onto application error codes.
func classifyServiceError(err error) *apperrors.AppError {
	switch {
	case errors.Is(err, service.ErrInvalidCredentials):
		return apperrors.Unauthorized(msgInvalidCredentials)
	case errors.Is(err, service.ErrInvalidToken):
		return apperrors.Unauthorized(msgInvalidToken)
	case errors.Is(err, domainauth.ErrDuplicateField):
		field := domainauth.DuplicateFieldName(err)
		msg := "value already registered"
		if field != "" {
			msg = field + " already registered"
		}
		return apperrors.ConflictField(field, msg)
	case errors.Is(err, domainauth.ErrInvalidRole):
		return apperrors.ValidationField("role", err.Error())
	case errors.Is(err, domainauth.ErrInvalidInput):
		var in *domainauth.InputError
		if errors.As(err, &in) {
			return apperrors.ValidationField(requestField(in.Field), in.Error())
		}
		return apperrors.Validation(err.Error())
	case errors.Is(err, service.ErrVerificationUnavailable):
		return apperrors.Unavailable(msgUnavailable)
	case errors.Is(err, context.DeadlineExceeded):
		return apperrors.Wrap(err, apperrors.ErrCodeTimeout, "request timed out")
	case errors.Is(err, context.Canceled):
		return apperrors.Wrap(err, apperrors.ErrCodeCanceled, "request canceled")
	default:
		return apperrors.Internal(msgInternal)
	}
}

// requestField maps domain field names onto the JSON names clients send.
func requestField(field string) string {
	if field == "secret" {
		return "password"
	}
	return field
}

func statusForCode(code apperrors.ErrorCode) int {
	switch code {
	case apperrors.ErrCodeValidation:
		return http.StatusBadRequest
	case apperrors.ErrCodeUnauthorized:
		return http.StatusUnauthorized
	case apperrors.ErrCodeForbidden:
		return http.StatusForbidden
	case apperrors.ErrCodeNotFound:
		return http.StatusNotFound
	case apperrors.ErrCodeConflict:
		return http.StatusConflict
	case apperrors.ErrCodeUnavailable:
		return http.StatusServiceUnavailable
	case apperrors.ErrCodeTimeout:
		return http.StatusGatewayTimeout
	case apperrors.ErrCodeCanceled:
		// nginx's "client closed request"; the client is gone either way.
		return 499
	default:
		return http.StatusInternalServerError
	}
}

// writeServiceError writes the JSON error response for an identity service error.
func writeServiceError(w http.ResponseWriter, err error) {
	appErr := classifyServiceError(err)
	errCode, ok := errorCodes[appErr.Code]
	if !ok {
		errCode = "error"
	}
	WriteError(w, ErrorParams{
		Code:    statusForCode(appErr.Code),
		ErrCode: errCode,
		Err:     errors.New(appErr.Message),
		Field:   appErr.Field,
	})
}
