package security

import (
	"errors"
	"testing"
)

func TestValidateNewPassword(t *testing.T) {
	cases := []struct {
		password, confirmation string
		want                   error
	}{
		{"", "", ErrPasswordRequired},
		{"   ", "   ", ErrPasswordRequired},
		{"short", "short", ErrPasswordTooShort},
		{"long-enough", "long-enougH", ErrPasswordMismatch},
		{"long-enough", "long-enough", nil},
	}
	for _, tc := range cases {
		err := ValidateNewPassword(tc.password, tc.confirmation)
		if !errors.Is(err, tc.want) {
			t.Fatalf("ValidateNewPassword(%q, %q) = %v, want %v", tc.password, tc.confirmation, err, tc.want)
		}
	}
}

func TestValidateOTP(t *testing.T) {
	if err := ValidateOTP("123456"); err != nil {
		t.Fatalf("expected valid otp, got %v", err)
	}
	for _, bad := range []string{"", "12345", "1234567", "12a456"} {
		if err := ValidateOTP(bad); err == nil {
			t.Fatalf("expected error for %q", bad)
		}
	}
}

func TestCSRFTokenBoundToBrowser(t *testing.T) {
	token := CSRFToken("secret", "browser-1")
	if !VerifyCSRF("secret", "browser-1", token) {
		t.Fatalf("expected token to verify for its browser")
	}
	if VerifyCSRF("secret", "browser-2", token) {
		t.Fatalf("expected token to fail for another browser")
	}
	if VerifyCSRF("other", "browser-1", token) {
		t.Fatalf("expected token to fail under another secret")
	}
	if VerifyCSRF("secret", "", token) {
		t.Fatalf("expected empty browser id to fail")
	}
}

func TestRandomTokenIsUnique(t *testing.T) {
	a, err := RandomToken(24)
	if err != nil {
		t.Fatalf("random token: %v", err)
	}
	b, err := RandomToken(24)
	if err != nil {
		t.Fatalf("random token: %v", err)
	}
	if a == b || len(a) != 32 {
		t.Fatalf("unexpected tokens %q %q", a, b)
	}
	if !SameToken(a, a) || SameToken(a, b) || SameToken("", "") {
		t.Fatalf("SameToken mismatch")
	}
}
