package authkit

import (
	"encoding/base32"
	"strings"
	"testing"
	"time"
)

func testTOTPManager() *totpManager {
	return newTOTPManager(TOTPConfig{
		Issuer:    "EduMentor",
		Digits:    6,
		Period:    30,
		Algorithm: "SHA1",
		Skew:      1,
	})
}

func TestTOTPVerifyCurrentStep(t *testing.T) {
	m := testTOTPManager()
	secret, err := m.GenerateSecret()
	if err != nil {
		t.Fatalf("GenerateSecret: %v", err)
	}

	now := time.Unix(1700000000, 0)
	code := mustCode(t, secret, now.Unix()/30)

	ok, err := m.VerifyCode(secret, code, now)
	if err != nil {
		t.Fatalf("VerifyCode: %v", err)
	}
	if !ok {
		t.Fatal("current-step code rejected")
	}
}

func TestTOTPVerifyWithinSkew(t *testing.T) {
	m := testTOTPManager()
	secret, err := m.GenerateSecret()
	if err != nil {
		t.Fatalf("GenerateSecret: %v", err)
	}

	now := time.Unix(1700000000, 0)
	for _, step := range []int64{-1, 1} {
		code := mustCode(t, secret, now.Unix()/30+step)
		ok, err := m.VerifyCode(secret, code, now)
		if err != nil {
			t.Fatalf("VerifyCode: %v", err)
		}
		if !ok {
			t.Fatalf("code at step offset %d rejected", step)
		}
	}
}

func TestTOTPRejectsOutsideSkew(t *testing.T) {
	m := testTOTPManager()
	secret, err := m.GenerateSecret()
	if err != nil {
		t.Fatalf("GenerateSecret: %v", err)
	}

	now := time.Unix(1700000000, 0)
	for _, step := range []int64{-2, 2} {
		code := mustCode(t, secret, now.Unix()/30+step)
		ok, err := m.VerifyCode(secret, code, now)
		if err != nil {
			t.Fatalf("VerifyCode: %v", err)
		}
		if ok {
			t.Fatalf("code at step offset %d accepted", step)
		}
	}
}

func TestTOTPRejectsMalformedCodes(t *testing.T) {
	m := testTOTPManager()
	secret, err := m.GenerateSecret()
	if err != nil {
		t.Fatalf("GenerateSecret: %v", err)
	}

	for _, code := range []string{"", "12345", "1234567", "12345a", "......"} {
		ok, err := m.VerifyCode(secret, code, time.Now())
		if err != nil {
			t.Fatalf("VerifyCode(%q): %v", code, err)
		}
		if ok {
			t.Fatalf("malformed code %q accepted", code)
		}
	}
}

func TestTOTPRejectsBadSecret(t *testing.T) {
	m := testTOTPManager()
	if _, err := m.VerifyCode("not base32!!", "123456", time.Now()); err == nil {
		t.Fatal("expected error for undecodable secret")
	}
}

func TestTOTPProvisionURI(t *testing.T) {
	m := testTOTPManager()
	uri := m.ProvisionURI("JBSWY3DPEHPK3PXP", "alice@example.com")

	if !strings.HasPrefix(uri, "otpauth://totp/EduMentor:alice@example.com?") {
		t.Fatalf("uri = %q", uri)
	}
	for _, want := range []string{"secret=JBSWY3DPEHPK3PXP", "issuer=EduMentor", "period=30", "digits=6", "algorithm=SHA1"} {
		if !strings.Contains(uri, want) {
			t.Fatalf("uri %q missing %q", uri, want)
		}
	}
}

func mustCode(t *testing.T, secretBase32 string, counter int64) string {
	t.Helper()
	secret, err := base32.StdEncoding.WithPadding(base32.NoPadding).DecodeString(secretBase32)
	if err != nil {
		t.Fatalf("decode secret: %v", err)
	}
	code, err := hotpCode(secret, counter, 6, "SHA1")
	if err != nil {
		t.Fatalf("hotp: %v", err)
	}
	return code
}
