package jwt

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func signToken(t *testing.T, claims jwt.Claims) string {
	t.Helper()
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return signed
}

func TestDecodeUnverifiedReadsClaims(t *testing.T) {
	exp := time.Now().Add(10 * time.Minute).Truncate(time.Second)
	token := signToken(t, Claims{
		UID:  "user-7",
		Role: "teacher",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	})

	claims, err := DecodeUnverified(token)
	if err != nil {
		t.Fatalf("DecodeUnverified: %v", err)
	}
	if claims.UID != "user-7" {
		t.Errorf("uid = %q, want user-7", claims.UID)
	}
	if claims.Role != "teacher" {
		t.Errorf("role = %q, want teacher", claims.Role)
	}
	if claims.ExpiresAt == nil || !claims.ExpiresAt.Time.Equal(exp) {
		t.Errorf("exp = %v, want %v", claims.ExpiresAt, exp)
	}
}

func TestDecodeUnverifiedIgnoresSignature(t *testing.T) {
	token := signToken(t, Claims{
		UID: "user-7",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	})

	parts := strings.Split(token, ".")
	if len(parts) != 3 {
		t.Fatalf("unexpected token shape: %d segments", len(parts))
	}
	tampered := parts[0] + "." + parts[1] + ".AAAAtampered"

	claims, err := DecodeUnverified(tampered)
	if err != nil {
		t.Fatalf("DecodeUnverified with replaced signature: %v", err)
	}
	if claims.UID != "user-7" {
		t.Errorf("uid = %q, want user-7", claims.UID)
	}
}

func TestDecodeUnverifiedRejectsMalformed(t *testing.T) {
	cases := []struct {
		name  string
		token string
	}{
		{"empty", ""},
		{"one segment", "not-a-jwt"},
		{"two segments", "abc.def"},
		{"bad header base64", "!!!.###.$$$"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := DecodeUnverified(tc.token); err == nil {
				t.Fatalf("DecodeUnverified(%q) succeeded, want error", tc.token)
			}
		})
	}
}

func TestExpiresAtMissingClaim(t *testing.T) {
	token := signToken(t, Claims{UID: "user-7"})

	_, err := ExpiresAt(token)
	if !errors.Is(err, ErrNoExpiry) {
		t.Fatalf("ExpiresAt error = %v, want ErrNoExpiry", err)
	}
}

func TestTimeToExpiry(t *testing.T) {
	exp := time.Now().Add(90 * time.Second).Truncate(time.Second)
	token := signToken(t, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	})

	now := exp.Add(-90 * time.Second)
	d, err := TimeToExpiry(token, now)
	if err != nil {
		t.Fatalf("TimeToExpiry: %v", err)
	}
	if d != 90*time.Second {
		t.Errorf("TimeToExpiry = %v, want 90s", d)
	}
}

func TestTimeToExpiryPastExpiry(t *testing.T) {
	exp := time.Now().Add(-time.Minute).Truncate(time.Second)
	token := signToken(t, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	})

	d, err := TimeToExpiry(token, time.Now())
	if err != nil {
		t.Fatalf("TimeToExpiry: %v", err)
	}
	if d >= 0 {
		t.Errorf("TimeToExpiry = %v, want negative for expired token", d)
	}
}
