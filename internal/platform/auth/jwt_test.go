package auth

import (
	"testing"
	"time"
)

func TestSignAndVerify(t *testing.T) {
	ts, err := NewHS256Service("test-secret", "shortlink", time.Hour)
	if err != nil {
		t.Fatalf("NewHS256Service: %v", err)
	}

	token, err := ts.Sign("42", "user")
	if err != nil {
		t.Fatalf("Sign: %v", err)
	}

	claims, err := ts.Verify(token)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if claims.UserID != "42" || claims.Role != "user" {
		t.Fatalf("claims = %+v", claims)
	}
}

func TestVerifyRejectsWrongIssuer(t *testing.T) {
	signer, _ := NewHS256Service("test-secret", "other-service", time.Hour)
	verifier, _ := NewHS256Service("test-secret", "shortlink", time.Hour)

	token, err := signer.Sign("42", "user")
	if err != nil {
		t.Fatalf("Sign: %v", err)
	}
	if _, err := verifier.Verify(token); err == nil {
		t.Fatal("expected issuer mismatch error")
	}
}

func TestVerifyRejectsWrongSecret(t *testing.T) {
	signer, _ := NewHS256Service("secret-a", "shortlink", time.Hour)
	verifier, _ := NewHS256Service("secret-b", "shortlink", time.Hour)

	token, _ := signer.Sign("42", "user")
	if _, err := verifier.Verify(token); err == nil {
		t.Fatal("expected signature error")
	}
}

func TestVerifyRejectsExpiredToken(t *testing.T) {
	// 构造器拒绝非正 TTL，这里直接用内部类型造一个“已过期”的签发者
	ts := &hs256Service{secret: []byte("test-secret"), issuer: "shortlink", ttl: -time.Minute}
	token, err := ts.Sign("42", "user")
	if err != nil {
		t.Fatalf("Sign: %v", err)
	}
	if _, err := ts.Verify(token); err == nil {
		t.Fatal("expected expiration error")
	}
}

func TestSignRejectsEmptyUserID(t *testing.T) {
	ts, _ := NewHS256Service("test-secret", "shortlink", time.Hour)
	if _, err := ts.Sign("", "user"); err == nil {
		t.Fatal("expected error for empty user id")
	}
}

func TestNewHS256ServiceValidation(t *testing.T) {
	if _, err := NewHS256Service("", "shortlink", time.Hour); err == nil {
		t.Fatal("expected error for empty secret")
	}
	if _, err := NewHS256Service("s", "", time.Hour); err == nil {
		t.Fatal("expected error for empty issuer")
	}
	if _, err := NewHS256Service("s", "shortlink", 0); err == nil {
		t.Fatal("expected error for zero ttl")
	}
}
