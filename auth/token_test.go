package auth

import (
	"bytes"
	"encoding/base64"
	"errors"
	"reflect"
	"strings"
	"testing"
	"time"
)

func TestTokenService_IssueVerifyRoundTrip(t *testing.T) {
	tokens, err := NewTokenService(TokenSettings{
		Secret:   []byte("round-trip-secret"),
		Issuer:   "supplierapi-test",
		Lifetime: time.Hour,
	})
	if err != nil {
		t.Fatalf("new token service: %v", err)
	}

	claims := ClaimSet{
		"ExcluirFornecedor": {"true"},
		"Auditor":           {"read-only", "extended"},
	}
	roles := []string{"admin", "operator"}

	signed, expiresAt, err := tokens.Issue("alice@example.com", claims, roles)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if until := time.Until(expiresAt); until < 59*time.Minute || until > time.Hour {
		t.Fatalf("unexpected expiry horizon: %v", until)
	}

	principal, err := tokens.Verify(signed)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if principal.Subject != "alice@example.com" {
		t.Fatalf("expected subject alice@example.com got %q", principal.Subject)
	}
	if !reflect.DeepEqual(principal.Claims, claims) {
		t.Fatalf("expected claims %v got %v", claims, principal.Claims)
	}
	if !reflect.DeepEqual(principal.Roles, roles) {
		t.Fatalf("expected roles %v got %v", roles, principal.Roles)
	}
}

func TestTokenService_Expired(t *testing.T) {
	tokens, err := NewTokenService(TokenSettings{
		Secret:   []byte("expiry-secret"),
		Lifetime: -time.Minute,
	})
	if err != nil {
		t.Fatalf("new token service: %v", err)
	}

	signed, _, err := tokens.Issue("alice@example.com", ClaimSet{}, nil)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	if _, err := tokens.Verify(signed); !errors.Is(err, ErrTokenExpired) {
		t.Fatalf("expected ErrTokenExpired, got %v", err)
	}
}

func TestTokenService_TamperedPayload(t *testing.T) {
	tokens, err := NewTokenService(TokenSettings{Secret: []byte("tamper-secret"), Lifetime: time.Hour})
	if err != nil {
		t.Fatalf("new token service: %v", err)
	}

	signed, _, err := tokens.Issue("alice@example.com", ClaimSet{}, nil)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	parts := strings.Split(signed, ".")
	if len(parts) != 3 {
		t.Fatalf("expected 3 token segments, got %d", len(parts))
	}

	payload, err := base64.RawURLEncoding.DecodeString(parts[1])
	if err != nil {
		t.Fatalf("decode payload: %v", err)
	}
	// Swap the subject inside the signed payload; the JSON stays valid but
	// no longer matches the signature.
	payload = bytes.Replace(payload, []byte("alice@example.com"), []byte("mal@example.comce"), 1)
	parts[1] = base64.RawURLEncoding.EncodeToString(payload)

	if _, err := tokens.Verify(strings.Join(parts, ".")); !errors.Is(err, ErrTokenSignature) {
		t.Fatalf("expected ErrTokenSignature, got %v", err)
	}
}

func TestTokenService_WrongKey(t *testing.T) {
	issuer, err := NewTokenService(TokenSettings{Secret: []byte("key-one"), Lifetime: time.Hour})
	if err != nil {
		t.Fatalf("new token service: %v", err)
	}
	verifier, err := NewTokenService(TokenSettings{Secret: []byte("key-two"), Lifetime: time.Hour})
	if err != nil {
		t.Fatalf("new token service: %v", err)
	}

	signed, _, err := issuer.Issue("alice@example.com", ClaimSet{}, nil)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	if _, err := verifier.Verify(signed); !errors.Is(err, ErrTokenSignature) {
		t.Fatalf("expected ErrTokenSignature, got %v", err)
	}
}

func TestTokenService_Malformed(t *testing.T) {
	tokens, err := NewTokenService(TokenSettings{Secret: []byte("malformed-secret"), Lifetime: time.Hour})
	if err != nil {
		t.Fatalf("new token service: %v", err)
	}

	for _, tokenText := range []string{"", "garbage", "a.b", "a.b.c.d"} {
		if _, err := tokens.Verify(tokenText); !errors.Is(err, ErrTokenMalformed) {
			t.Fatalf("token %q: expected ErrTokenMalformed, got %v", tokenText, err)
		}
	}
}

func TestNewTokenService_RequiresSecret(t *testing.T) {
	if _, err := NewTokenService(TokenSettings{Lifetime: time.Hour}); err == nil {
		t.Fatal("expected error for missing signing secret")
	}
}
