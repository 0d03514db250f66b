package utils

import (
	"strings"
	"testing"

	"github.com/luckywheel-vn/luckywheel-backend/internal/config"
)

func TestGenerateCouponCode(t *testing.T) {
	seen := map[string]bool{}
	for i := 0; i < 50; i++ {
		code, err := GenerateCouponCode(6)
		if err != nil {
			t.Fatalf("GenerateCouponCode returned error: %v", err)
		}
		if len(code) != 6 {
			t.Fatalf("expected 6 characters, got %q", code)
		}
		for _, ch := range code {
			if !strings.ContainsRune(couponAlphabet, ch) {
				t.Fatalf("code %q contains character outside alphabet", code)
			}
		}
		seen[code] = true
	}
	if len(seen) < 2 {
		t.Fatal("expected codes to vary across calls")
	}
}

func TestNormalizePhone(t *testing.T) {
	if got := NormalizePhone("  091 234 5678 "); got != "0912345678" {
		t.Fatalf("NormalizePhone = %q, want 0912345678", got)
	}
}

func TestValidatePhone(t *testing.T) {
	cases := []struct {
		phone string
		want  bool
	}{
		{"0912345678", true},
		{"0312345678", true},
		{"0512345678", true},
		{"0712345678", true},
		{"0812345678", true},
		{"0112345678", false}, // invalid carrier digit
		{"0412345678", false},
		{"091234567", false},   // too short
		{"09123456789", false}, // too long
		{"1912345678", false},  // missing leading zero
		{"091234567a", false},
		{"", false},
	}
	for _, tc := range cases {
		if got := ValidatePhone(tc.phone); got != tc.want {
			t.Errorf("ValidatePhone(%q) = %v, want %v", tc.phone, got, tc.want)
		}
	}
}

func TestHashPhone(t *testing.T) {
	a := HashPhone("0912345678", "pepper-a")
	b := HashPhone("0912345678", "pepper-a")
	if a != b {
		t.Fatal("hash should be deterministic for the same pepper")
	}
	if len(a) != 64 {
		t.Fatalf("expected 64 hex characters, got %d", len(a))
	}
	if c := HashPhone("0912345678", "pepper-b"); c == a {
		t.Fatal("different peppers should produce different hashes")
	}
	if d := HashPhone("0912345679", "pepper-a"); d == a {
		t.Fatal("different phones should produce different hashes")
	}
}

func TestMaskPhone(t *testing.T) {
	if got := MaskPhone("0912345678"); got != "091***5678" {
		t.Fatalf("MaskPhone = %q, want 091***5678", got)
	}
	// Too short to mask meaningfully, returned unchanged
	if got := MaskPhone("12345"); got != "12345" {
		t.Fatalf("MaskPhone short = %q, want 12345", got)
	}
}

func TestJWTRoundTrip(t *testing.T) {
	cfg := &config.Config{}
	cfg.JWT.Secret = "test-secret"
	cfg.JWT.ExpiresIn = 3600

	token, err := GenerateJWT("user-1", "admin@example.com", "admin", cfg)
	if err != nil {
		t.Fatalf("GenerateJWT returned error: %v", err)
	}

	claims, err := ValidateJWT(token, cfg)
	if err != nil {
		t.Fatalf("ValidateJWT returned error: %v", err)
	}
	if claims["email"] != "admin@example.com" {
		t.Errorf("email claim = %v, want admin@example.com", claims["email"])
	}
	if claims["role"] != "admin" {
		t.Errorf("role claim = %v, want admin", claims["role"])
	}

	wrong := &config.Config{}
	wrong.JWT.Secret = "other-secret"
	wrong.JWT.ExpiresIn = 3600
	if _, err := ValidateJWT(token, wrong); err == nil {
		t.Fatal("expected validation to fail with the wrong secret")
	}
}
