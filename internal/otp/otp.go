// Package otp generates the short-lived numeric codes used to prove
// control of an email address.
package otp

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"time"
)

const (
	// SignupWindow is how long a code issued at signup (or resend) stays valid.
	SignupWindow = 15 * time.Minute
	// ResetWindow is how long a password-reset code stays valid.
	ResetWindow = 5 * time.Minute

	codeSpan = 900000 // codes are drawn from [100000, 999999]
	codeBase = 100000
)

// GenerateCode returns a uniformly random 6-digit code. The first digit is
// never zero, matching the range users see in the email template.
func GenerateCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(codeSpan))
	if err != nil {
		return "", fmt.Errorf("generate otp: %w", err)
	}
	return fmt.Sprintf("%06d", n.Int64()+codeBase), nil
}
