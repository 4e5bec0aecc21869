package auth

import (
	"errors"
	"testing"
	"time"
)

func TestLoginAndValidate(t *testing.T) {
	a := New("console-secret", time.Hour)

	token, expiresAt, err := a.Login("alex", "console-secret")
	if err != nil {
		t.Fatalf("Login failed: %v", err)
	}
	if token == "" {
		t.Fatal("expected a signed token")
	}
	if time.Until(expiresAt) <= 0 {
		t.Error("expected a future expiry")
	}

	claims, err := a.Validate(token)
	if err != nil {
		t.Fatalf("Validate failed: %v", err)
	}
	if claims.Operator != "alex" {
		t.Errorf("expected operator alex, got %q", claims.Operator)
	}
	if claims.Role != operatorRole {
		t.Errorf("expected operator role, got %q", claims.Role)
	}
}

func TestLoginRejectsWrongSecret(t *testing.T) {
	a := New("console-secret", time.Hour)

	if _, _, err := a.Login("alex", "wrong"); !errors.Is(err, ErrInvalidSecret) {
		t.Fatalf("expected ErrInvalidSecret, got %v", err)
	}
}

func TestValidateRejectsForeignToken(t *testing.T) {
	issuer := New("secret-a", time.Hour)
	verifier := New("secret-b", time.Hour)

	token, _, err := issuer.Login("alex", "secret-a")
	if err != nil {
		t.Fatalf("Login failed: %v", err)
	}

	if _, err := verifier.Validate(token); err == nil {
		t.Fatal("expected validation to fail across secrets")
	}
}

func TestValidateRejectsExpiredToken(t *testing.T) {
	a := New("console-secret", -time.Minute)

	token, _, err := a.Login("alex", "console-secret")
	if err != nil {
		t.Fatalf("Login failed: %v", err)
	}

	if _, err := a.Validate(token); err == nil {
		t.Fatal("expected validation to fail for an expired token")
	}
}
