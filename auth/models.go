package auth

import (
	"errors"
	"time"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
)

// ClaimSet maps a claim type to the values asserted for it. Ordering is
// irrelevant; authorization only ever inspects presence and values.
type ClaimSet map[string][]string

// Has reports whether any claim of the given type is present, regardless of
// value.
func (cs ClaimSet) Has(claimType string) bool {
	_, ok := cs[claimType]
	return ok
}

// Add appends a value to the claim type.
func (cs ClaimSet) Add(claimType, value string) {
	cs[claimType] = append(cs[claimType], value)
}

// Identity is the domain representation of a registered user. It mirrors the
// identities table and carries no JSON annotations so it can be reused by
// different presentation layers.
type Identity struct {
	ID           string
	Email        string
	PasswordHash string
	FailedLogins int
	LockoutUntil *time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// LockedOut reports whether the identity is inside an active lockout window.
func (i Identity) LockedOut(now time.Time) bool {
	return i.LockoutUntil != nil && now.Before(*i.LockoutUntil)
}

// RegisterRequest contains registration data supplied by callers.
type RegisterRequest struct {
	Email           string `json:"email"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirmPassword"`
}

// Validate checks the request shape and returns structured field errors.
func (r RegisterRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Email, validation.Required, is.Email),
		validation.Field(&r.Password, validation.Required, validation.Length(8, 100)),
		validation.Field(&r.ConfirmPassword, validation.Required, validation.By(func(v interface{}) error {
			if s, _ := v.(string); s != r.Password {
				return errors.New("must match password")
			}
			return nil
		})),
	)
}

// LoginRequest contains login credentials.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Validate checks the request shape.
func (r LoginRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Email, validation.Required, is.Email),
		validation.Field(&r.Password, validation.Required),
	)
}

// UserToken describes the authenticated identity as returned to API callers.
type UserToken struct {
	ID     string   `json:"id"`
	Email  string   `json:"email"`
	Claims ClaimSet `json:"claims"`
	Roles  []string `json:"roles"`
}

// TokenResponse is the payload returned after registration or login.
type TokenResponse struct {
	AccessToken string    `json:"accessToken"`
	ExpiresIn   int64     `json:"expiresIn"`
	UserToken   UserToken `json:"userToken"`
}
