package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var (
	// ErrTokenExpired signals the token is past its expiry instant.
	ErrTokenExpired = errors.New("auth: token expired")
	// ErrTokenSignature signals the token signature does not verify.
	ErrTokenSignature = errors.New("auth: token signature invalid")
	// ErrTokenMalformed signals the token could not be parsed.
	ErrTokenMalformed = errors.New("auth: token malformed")
)

// TokenSettings holds the process-wide signing configuration. It is loaded
// once at startup and never mutated afterwards.
type TokenSettings struct {
	Secret   []byte
	Issuer   string
	Audience string
	Lifetime time.Duration
}

// Principal is the verified content of a token: the subject plus the claim
// and role snapshot embedded at issuance.
type Principal struct {
	Subject   string
	Claims    ClaimSet
	Roles     []string
	ExpiresAt time.Time
}

type tokenClaims struct {
	jwt.RegisteredClaims
	Claims ClaimSet `json:"claims,omitempty"`
	Roles  []string `json:"roles,omitempty"`
}

// TokenService signs and verifies identity tokens. Both operations are pure
// once the settings are loaded.
type TokenService struct {
	settings TokenSettings
}

// NewTokenService validates the signing configuration. A missing secret is a
// startup failure, not a per-request condition.
func NewTokenService(settings TokenSettings) (*TokenService, error) {
	if len(settings.Secret) == 0 {
		return nil, fmt.Errorf("auth: signing secret not configured")
	}
	if settings.Lifetime == 0 {
		settings.Lifetime = time.Hour
	}
	return &TokenService{settings: settings}, nil
}

// Issue signs a token embedding the subject and a snapshot of its claims and
// roles. The snapshot does not track later changes to the identity.
func (t *TokenService) Issue(subject string, claims ClaimSet, roles []string) (string, time.Time, error) {
	now := time.Now()
	expiresAt := now.Add(t.settings.Lifetime)

	tc := tokenClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			ID:        uuid.NewString(),
			Issuer:    t.settings.Issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
		Claims: claims,
		Roles:  roles,
	}
	if t.settings.Audience != "" {
		tc.Audience = jwt.ClaimStrings{t.settings.Audience}
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, tc).SignedString(t.settings.Secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("auth: sign token: %w", err)
	}

	return signed, expiresAt, nil
}

// Verify parses the token and checks signature integrity and expiry. On
// success it returns the embedded principal.
func (t *TokenService) Verify(tokenText string) (*Principal, error) {
	var tc tokenClaims
	parsed, err := jwt.ParseWithClaims(tokenText, &tc, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return t.settings.Secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenExpired):
			return nil, ErrTokenExpired
		case errors.Is(err, jwt.ErrTokenSignatureInvalid):
			return nil, ErrTokenSignature
		default:
			return nil, ErrTokenMalformed
		}
	}
	if !parsed.Valid {
		return nil, ErrTokenMalformed
	}

	claims := tc.Claims
	if claims == nil {
		claims = ClaimSet{}
	}

	principal := &Principal{
		Subject: tc.Subject,
		Claims:  claims,
		Roles:   tc.Roles,
	}
	if tc.ExpiresAt != nil {
		principal.ExpiresAt = tc.ExpiresAt.Time
	}
	return principal, nil
}

// Lifetime exposes the configured token lifetime.
func (t *TokenService) Lifetime() time.Duration {
	return t.settings.Lifetime
}
