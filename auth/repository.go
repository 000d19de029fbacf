package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	// ErrIdentityNotFound signals that no identity exists for the lookup.
	ErrIdentityNotFound = errors.New("auth: identity not found")
	// ErrDuplicateEmail signals that the email is already registered.
	ErrDuplicateEmail = errors.New("auth: email already registered")
)

// Repository handles data access for the credential store.
type Repository interface {
	CreateIdentity(ctx context.Context, params CreateIdentityParams) (Identity, error)
	FindByEmail(ctx context.Context, email string) (Identity, error)
	// RecordFailure increments the failure counter and, at the threshold,
	// sets the lockout window. The increment must be atomic so concurrent
	// failed logins never lose a count.
	RecordFailure(ctx context.Context, id string, threshold int, lockout time.Duration) (Identity, error)
	UpdateFailureState(ctx context.Context, id string, failedLogins int, lockoutUntil *time.Time) error
	GetClaims(ctx context.Context, id string) (ClaimSet, error)
	GetRoles(ctx context.Context, id string) ([]string, error)
}

// CreateIdentityParams contains write parameters for creating identities.
type CreateIdentityParams struct {
	ID           string
	Email        string
	PasswordHash string
}

const identityColumns = `id, email, password_hash, failed_logins, lockout_until, created_at, updated_at`

// PGRepository implements Repository backed by PostgreSQL.
type PGRepository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a PostgreSQL-backed credential store.
func NewRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

// CreateIdentity inserts a new identity with a hashed password. Email
// uniqueness is case-insensitive, enforced by a unique index on LOWER(email).
func (r *PGRepository) CreateIdentity(ctx context.Context, params CreateIdentityParams) (Identity, error) {
	insertSQL := `
		INSERT INTO identities (id, email, password_hash)
		VALUES ($1, $2, $3)
		RETURNING ` + identityColumns

	identity, err := scanIdentity(r.pool.QueryRow(ctx, insertSQL, params.ID, params.Email, params.PasswordHash))
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return Identity{}, ErrDuplicateEmail
		}
		return Identity{}, fmt.Errorf("auth: create identity: %w", err)
	}

	return identity, nil
}

// FindByEmail retrieves an identity by email, case-insensitively.
func (r *PGRepository) FindByEmail(ctx context.Context, email string) (Identity, error) {
	selectSQL := `
		SELECT ` + identityColumns + `
		FROM identities
		WHERE LOWER(email) = LOWER($1)`

	identity, err := scanIdentity(r.pool.QueryRow(ctx, selectSQL, email))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Identity{}, ErrIdentityNotFound
		}
		return Identity{}, fmt.Errorf("auth: find identity by email: %w", err)
	}

	return identity, nil
}

// RecordFailure bumps the failure counter in a single UPDATE so two
// concurrent failed logins cannot observe the same count.
func (r *PGRepository) RecordFailure(ctx context.Context, id string, threshold int, lockout time.Duration) (Identity, error) {
	updateSQL := `
		UPDATE identities
		SET failed_logins = failed_logins + 1,
		    lockout_until = CASE
		        WHEN failed_logins + 1 >= $2 THEN now() + make_interval(secs => $3)
		        ELSE lockout_until
		    END,
		    updated_at = now()
		WHERE id = $1
		RETURNING ` + identityColumns

	identity, err := scanIdentity(r.pool.QueryRow(ctx, updateSQL, id, threshold, lockout.Seconds()))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Identity{}, ErrIdentityNotFound
		}
		return Identity{}, fmt.Errorf("auth: record login failure: %w", err)
	}

	return identity, nil
}

// UpdateFailureState overwrites the failure counter and lockout timestamp,
// typically to reset them after a successful login.
func (r *PGRepository) UpdateFailureState(ctx context.Context, id string, failedLogins int, lockoutUntil *time.Time) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE identities
		SET failed_logins = $2, lockout_until = $3, updated_at = now()
		WHERE id = $1`, id, failedLogins, lockoutUntil)
	if err != nil {
		return fmt.Errorf("auth: update failure state: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrIdentityNotFound
	}
	return nil
}

// GetClaims loads the identity's current claim assignments.
func (r *PGRepository) GetClaims(ctx context.Context, id string) (ClaimSet, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT claim_type, claim_value
		FROM identity_claims
		WHERE identity_id = $1`, id)
	if err != nil {
		return nil, fmt.Errorf("auth: get claims: %w", err)
	}
	defer rows.Close()

	claims := ClaimSet{}
	for rows.Next() {
		var claimType, claimValue string
		if err := rows.Scan(&claimType, &claimValue); err != nil {
			return nil, fmt.Errorf("auth: scan claim: %w", err)
		}
		claims.Add(claimType, claimValue)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("auth: get claims: %w", err)
	}

	return claims, nil
}

// GetRoles loads the identity's current role assignments.
func (r *PGRepository) GetRoles(ctx context.Context, id string) ([]string, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT role
		FROM identity_roles
		WHERE identity_id = $1`, id)
	if err != nil {
		return nil, fmt.Errorf("auth: get roles: %w", err)
	}
	defer rows.Close()

	roles := []string{}
	for rows.Next() {
		var role string
		if err := rows.Scan(&role); err != nil {
			return nil, fmt.Errorf("auth: scan role: %w", err)
		}
		roles = append(roles, role)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("auth: get roles: %w", err)
	}

	return roles, nil
}

func scanIdentity(row pgx.Row) (Identity, error) {
	var (
		identity     Identity
		lockoutUntil *time.Time
	)
	err := row.Scan(
		&identity.ID,
		&identity.Email,
		&identity.PasswordHash,
		&identity.FailedLogins,
		&lockoutUntil,
		&identity.CreatedAt,
		&identity.UpdatedAt,
	)
	if err != nil {
		return Identity{}, err
	}

	identity.LockoutUntil = lockoutUntil
	return identity, nil
}
