package security

import (
	"errors"
	"strings"
	"unicode/utf8"
)

// MinPasswordLength matches the backend's reset rule.
const MinPasswordLength = 8

var (
	ErrPasswordRequired = errors.New("password is required")
	ErrPasswordTooShort = errors.New("password must be at least 8 characters")
	ErrPasswordMismatch = errors.New("passwords do not match")
)

// ValidateNewPassword checks a new password against its confirmation before
// it is sent to the backend.
func ValidateNewPassword(password, confirmation string) error {
	if strings.TrimSpace(password) == "" {
		return ErrPasswordRequired
	}
	if utf8.RuneCountInString(password) < MinPasswordLength {
		return ErrPasswordTooShort
	}
	if password != confirmation {
		return ErrPasswordMismatch
	}
	return nil
}

// ValidateOTP accepts the six digit codes the backend mails out.
func ValidateOTP(code string) error {
	code = strings.TrimSpace(code)
	if len(code) != 6 {
		return errors.New("otp must be 6 digits")
	}
	for _, r := range code {
		if r < '0' || r > '9' {
			return errors.New("otp must be 6 digits")
		}
	}
	return nil
}
