package errors

import (
	"errors"
	"net/http"
)

var (
	// ErrDuplicateEmail is returned when a signup reuses a registered email.
	ErrDuplicateEmail = errors.New("User already exists")
	// ErrNotFound is returned when no user record matches the email.
	ErrNotFound = errors.New("User not found")
	// ErrInvalidCredentials is returned for both unknown email and wrong
	// password so callers cannot tell which one failed.
	ErrInvalidCredentials = errors.New("Invalid email or password")
	// ErrInvalidOTP is returned when the submitted code does not match the
	// outstanding one, or when no code is outstanding at all.
	ErrInvalidOTP = errors.New("Invalid OTP")
	// ErrOTPExpired is returned when the code matches but its window has passed.
	ErrOTPExpired = errors.New("OTP has expired")
	// ErrDeliveryFailure is returned when the OTP email could not be sent.
	ErrDeliveryFailure = errors.New("Error sending email")
	// ErrInvalidRefreshToken is returned when a refresh token is invalid or expired.
	ErrInvalidRefreshToken = errors.New("invalid or expired refresh token")
)

// ErrorResponse represents a standardized error response.
type ErrorResponse struct {
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

// HTTPError represents an HTTP error with status code.
type HTTPError struct {
	StatusCode int
	Message    string
	Code       string
}

func (e *HTTPError) Error() string {
	return e.Message
}

// NewHTTPError creates a new HTTP error.
func NewHTTPError(statusCode int, message, code string) *HTTPError {
	return &HTTPError{
		StatusCode: statusCode,
		Message:    message,
		Code:       code,
	}
}

// ToErrorResponse converts an HTTPError to ErrorResponse.
func (e *HTTPError) ToErrorResponse() ErrorResponse {
	return ErrorResponse{
		Message: e.Message,
		Code:    e.Code,
	}
}

// MapErrorToHTTP maps domain errors to HTTP errors.
func MapErrorToHTTP(err error) *HTTPError {
	switch {
	case errors.Is(err, ErrDuplicateEmail):
		return NewHTTPError(http.StatusBadRequest, err.Error(), "DUPLICATE_EMAIL")
	case errors.Is(err, ErrNotFound):
		return NewHTTPError(http.StatusNotFound, err.Error(), "NOT_FOUND")
	case errors.Is(err, ErrInvalidCredentials):
		return NewHTTPError(http.StatusUnauthorized, err.Error(), "INVALID_CREDENTIALS")
	case errors.Is(err, ErrInvalidOTP):
		return NewHTTPError(http.StatusBadRequest, err.Error(), "INVALID_OTP")
	case errors.Is(err, ErrOTPExpired):
		return NewHTTPError(http.StatusBadRequest, err.Error(), "OTP_EXPIRED")
	case errors.Is(err, ErrDeliveryFailure):
		return NewHTTPError(http.StatusInternalServerError, err.Error(), "DELIVERY_FAILURE")
	case errors.Is(err, ErrInvalidRefreshToken):
		return NewHTTPError(http.StatusUnauthorized, err.Error(), "INVALID_REFRESH_TOKEN")
	default:
		return NewHTTPError(http.StatusInternalServerError, "internal server error", "INTERNAL_ERROR")
	}
}
