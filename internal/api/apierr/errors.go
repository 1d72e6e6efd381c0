package apierr

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/talentboard/profiledir/internal/model"
	"github.com/talentboard/profiledir/internal/services/auth"
)

// APIError represents an API error response
type APIError struct {
	Code       string            `json:"code"`
	Message    string            `json:"message"`
	Violations []model.Violation `json:"violations,omitempty"`
}

// ErrorResponse wraps an APIError
type ErrorResponse struct {
	Error APIError `json:"error"`
}

// Common error codes
const (
	CodeInvalidRequest       = "INVALID_REQUEST"
	CodeUnauthorized         = "UNAUTHORIZED"
	CodeAccountNotFound      = "ACCOUNT_NOT_FOUND"
	CodeProfileNotFound      = "PROFILE_NOT_FOUND"
	CodeClubNotFound         = "CLUB_NOT_FOUND"
	CodeValidationFailed     = "VALIDATION_FAILED"
	CodeInvalidRole          = "INVALID_ROLE"
	CodeAlreadyDual          = "ALREADY_DUAL"
	CodeEmailExists          = "EMAIL_EXISTS"
	CodeInvalidEmail         = "INVALID_EMAIL"
	CodeWeakPassword         = "WEAK_PASSWORD"
	CodeInvalidCredentials   = "INVALID_CREDENTIALS"
	CodeDirectoryUnavailable = "DIRECTORY_UNAVAILABLE"
	CodeUnavailable          = "UNAVAILABLE"
	CodeInternalError        = "INTERNAL_ERROR"
)

// httpError combines an HTTP status code with an APIError
type httpError struct {
	status   int
	apiError APIError
}

// Error implements error interface
func (e *httpError) Error() string {
	return e.apiError.Message
}

// WriteError writes an error response to the response writer
func WriteError(w http.ResponseWriter, err error) {
	he := toHTTPError(err)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(he.status)
	_ = json.NewEncoder(w).Encode(ErrorResponse{Error: he.apiError})
}

// toHTTPError converts an error to an httpError
func toHTTPError(err error) *httpError {
	// Check for specific error types
	var he *httpError
	if errors.As(err, &he) {
		return he
	}

	var ve *model.ValidationError
	if errors.As(err, &ve) {
		return &httpError{http.StatusUnprocessableEntity, APIError{
			Code:       CodeValidationFailed,
			Message:    "The submission has invalid fields",
			Violations: ve.Violations,
		}}
	}

	// Map model errors
	switch {
	case errors.Is(err, model.ErrAccountNotFound):
		return &httpError{http.StatusNotFound, APIError{Code: CodeAccountNotFound, Message: "Account not found"}}
	case errors.Is(err, model.ErrProfileNotFound):
		return &httpError{http.StatusNotFound, APIError{Code: CodeProfileNotFound, Message: "Profile not found"}}
	case errors.Is(err, model.ErrClubNotFound):
		return &httpError{http.StatusNotFound, APIError{Code: CodeClubNotFound, Message: "Club not found"}}
	case errors.Is(err, model.ErrInvalidRole):
		return &httpError{http.StatusConflict, APIError{Code: CodeInvalidRole, Message: "Role change not allowed"}}
	case errors.Is(err, model.ErrAlreadyDual):
		return &httpError{http.StatusConflict, APIError{Code: CodeAlreadyDual, Message: "Account already holds both roles"}}
	case errors.Is(err, model.ErrDirectoryUnavailable):
		return &httpError{http.StatusServiceUnavailable, APIError{Code: CodeDirectoryUnavailable, Message: "Club directory unavailable"}}

	// Map auth errors
	case errors.Is(err, auth.ErrInvalidCredentials):
		return &httpError{http.StatusUnauthorized, APIError{Code: CodeInvalidCredentials, Message: "Invalid email or password"}}
	case errors.Is(err, auth.ErrInvalidSession):
		return &httpError{http.StatusUnauthorized, APIError{Code: CodeUnauthorized, Message: "Invalid or expired session"}}
	case errors.Is(err, auth.ErrEmailExists):
		return &httpError{http.StatusConflict, APIError{Code: CodeEmailExists, Message: "Email already registered"}}
	case errors.Is(err, auth.ErrInvalidEmail):
		return &httpError{http.StatusBadRequest, APIError{Code: CodeInvalidEmail, Message: "Invalid email address"}}
	case errors.Is(err, auth.ErrWeakPassword):
		return &httpError{http.StatusBadRequest, APIError{Code: CodeWeakPassword, Message: "Password must be at least 8 characters"}}

	default:
		return &httpError{http.StatusInternalServerError, APIError{Code: CodeInternalError, Message: "Internal server error"}}
	}
}

// NewInvalidRequestError creates an invalid request error
func NewInvalidRequestError(message string) error {
	return &httpError{http.StatusBadRequest, APIError{Code: CodeInvalidRequest, Message: message}}
}

// NewUnauthorizedError creates an unauthorized error
func NewUnauthorizedError() error {
	return &httpError{http.StatusUnauthorized, APIError{Code: CodeUnauthorized, Message: "Authentication required"}}
}

// NewUnavailableError creates a service unavailable error
func NewUnavailableError(message string) error {
	return &httpError{http.StatusServiceUnavailable, APIError{Code: CodeUnavailable, Message: message}}
}

// NewInternalError creates an internal server error
func NewInternalError() error {
	return &httpError{http.StatusInternalServerError, APIError{Code: CodeInternalError, Message: "Internal server error"}}
}
