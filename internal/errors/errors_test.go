package errors

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMapErrorToHTTP(t *testing.T) {
	tests := []struct {
		err        error
		statusCode int
	}{
		{ErrDuplicateEmail, http.StatusBadRequest},
		{ErrNotFound, http.StatusNotFound},
		{ErrInvalidCredentials, http.StatusUnauthorized},
		{ErrInvalidOTP, http.StatusBadRequest},
		{ErrOTPExpired, http.StatusBadRequest},
		{ErrDeliveryFailure, http.StatusInternalServerError},
		{ErrInvalidRefreshToken, http.StatusUnauthorized},
		{assert.AnError, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			he := MapErrorToHTTP(tt.err)
			assert.Equal(t, tt.statusCode, he.StatusCode)
		})
	}
}

func TestMapErrorToHTTP_Wrapped(t *testing.T) {
	// Services wrap store failures; the mapper unwraps supported kinds.
	he := MapErrorToHTTP(fmt.Errorf("find user: %w", ErrNotFound))
	assert.Equal(t, http.StatusNotFound, he.StatusCode)
	assert.Equal(t, "NOT_FOUND", he.Code)
}
