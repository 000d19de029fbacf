package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

var (
	// ErrInvalidCredentials signals wrong email or password. Callers are
	// never told which; the message must not reveal whether the email exists.
	ErrInvalidCredentials = errors.New("auth: invalid credentials")
	// ErrLockedOut signals the identity is inside an active lockout window.
	ErrLockedOut = errors.New("auth: account temporarily locked")
)

// dummyHash is compared against when the email is unknown so response timing
// does not reveal whether an identity exists.
const dummyHash = "$2a$10$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy"

// Service orchestrates registration and login against the credential store
// and issues tokens through the token service.
type Service struct {
	repo             Repository
	tokens           *TokenService
	logger           *zap.Logger
	lockoutThreshold int
	lockoutDuration  time.Duration
}

// NewService creates the authenticator. Threshold and duration control the
// failed-login lockout policy; non-positive values fall back to 5 failures
// and 15 minutes.
func NewService(repo Repository, tokens *TokenService, logger *zap.Logger, lockoutThreshold int, lockoutDuration time.Duration) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	if lockoutThreshold <= 0 {
		lockoutThreshold = 5
	}
	if lockoutDuration <= 0 {
		lockoutDuration = 15 * time.Minute
	}
	return &Service{
		repo:             repo,
		tokens:           tokens,
		logger:           logger,
		lockoutThreshold: lockoutThreshold,
		lockoutDuration:  lockoutDuration,
	}
}

// Register creates a new identity with no claims or roles and returns a
// token for it. Duplicate emails fail with ErrDuplicateEmail regardless of
// password validity.
func (s *Service) Register(ctx context.Context, req RegisterRequest) (TokenResponse, error) {
	if err := req.Validate(); err != nil {
		return TokenResponse{}, err
	}

	passwordHash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return TokenResponse{}, fmt.Errorf("auth: hash password: %w", err)
	}

	identity, err := s.repo.CreateIdentity(ctx, CreateIdentityParams{
		ID:           newIdentityID(),
		Email:        req.Email,
		PasswordHash: string(passwordHash),
	})
	if err != nil {
		return TokenResponse{}, err
	}

	s.logger.Info("identity registered", zap.String("identity_id", identity.ID))

	return s.issueFor(identity, ClaimSet{}, []string{})
}

// Login authenticates credentials and returns a token embedding the
// identity's current claims and roles. Lockout wins over password
// correctness while active.
func (s *Service) Login(ctx context.Context, req LoginRequest) (TokenResponse, error) {
	if err := req.Validate(); err != nil {
		return TokenResponse{}, err
	}

	identity, err := s.repo.FindByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, ErrIdentityNotFound) {
			// Equalize timing with the password-mismatch path.
			_ = bcrypt.CompareHashAndPassword([]byte(dummyHash), []byte(req.Password))
			return TokenResponse{}, ErrInvalidCredentials
		}
		return TokenResponse{}, err
	}

	if identity.LockedOut(time.Now()) {
		return TokenResponse{}, ErrLockedOut
	}

	if bcrypt.CompareHashAndPassword([]byte(identity.PasswordHash), []byte(req.Password)) != nil {
		updated, ferr := s.repo.RecordFailure(ctx, identity.ID, s.lockoutThreshold, s.lockoutDuration)
		if ferr != nil {
			s.logger.Warn("record login failure", zap.String("identity_id", identity.ID), zap.Error(ferr))
		} else if updated.LockedOut(time.Now()) {
			s.logger.Warn("identity locked out",
				zap.String("identity_id", identity.ID),
				zap.Int("failed_logins", updated.FailedLogins))
		}
		return TokenResponse{}, ErrInvalidCredentials
	}

	if identity.FailedLogins > 0 || identity.LockoutUntil != nil {
		if err := s.repo.UpdateFailureState(ctx, identity.ID, 0, nil); err != nil {
			return TokenResponse{}, fmt.Errorf("auth: reset failure state: %w", err)
		}
	}

	claims, err := s.repo.GetClaims(ctx, identity.ID)
	if err != nil {
		return TokenResponse{}, err
	}
	roles, err := s.repo.GetRoles(ctx, identity.ID)
	if err != nil {
		return TokenResponse{}, err
	}

	return s.issueFor(identity, claims, roles)
}

func (s *Service) issueFor(identity Identity, claims ClaimSet, roles []string) (TokenResponse, error) {
	signed, _, err := s.tokens.Issue(identity.Email, claims, roles)
	if err != nil {
		return TokenResponse{}, fmt.Errorf("auth: issue token: %w", err)
	}

	return TokenResponse{
		AccessToken: signed,
		ExpiresIn:   int64(s.tokens.Lifetime().Seconds()),
		UserToken: UserToken{
			ID:     identity.ID,
			Email:  identity.Email,
			Claims: claims,
			Roles:  roles,
		},
	}, nil
}

func newIdentityID() string {
	return uuid.NewString()
}
