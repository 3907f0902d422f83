package transport

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func TestCheckToken(t *testing.T) {
	claims, err := CheckToken(signToken(t, time.Now().Add(time.Hour)))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if claims.PlayerID != 42 || claims.Username != "pilot" {
		t.Errorf("unexpected claims %+v", claims)
	}

	if _, err := CheckToken("not-a-token"); err == nil {
		t.Error("expected malformed token to be rejected")
	}
}

func TestCheckTokenWithoutExpiry(t *testing.T) {
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"pid": 1, "usr": "guest"})
	s, err := tok.SignedString([]byte("x"))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := CheckToken(s); err != nil {
		t.Errorf("token without exp should pass: %v", err)
	}
}
