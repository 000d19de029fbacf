package supplier

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrNotFound signals that the supplier does not exist.
var ErrNotFound = errors.New("supplier: not found")

// Repository handles data access for suppliers.
type Repository interface {
	Create(ctx context.Context, s Supplier) (Supplier, error)
	GetByID(ctx context.Context, id string) (Supplier, error)
	List(ctx context.Context, limit, offset int) ([]Supplier, int, error)
	Update(ctx context.Context, s Supplier) (Supplier, error)
	Delete(ctx context.Context, id string) error
}

const supplierColumns = `id, name, document, active, created_at, updated_at`

// PGRepository implements Repository backed by PostgreSQL.
type PGRepository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a PostgreSQL-backed supplier repository.
func NewRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

// Create inserts a new supplier.
func (r *PGRepository) Create(ctx context.Context, s Supplier) (Supplier, error) {
	insertSQL := `
		INSERT INTO suppliers (id, name, document, active)
		VALUES ($1, $2, $3, $4)
		RETURNING ` + supplierColumns

	created, err := scanSupplier(r.pool.QueryRow(ctx, insertSQL, s.ID, s.Name, s.Document, s.Active))
	if err != nil {
		return Supplier{}, fmt.Errorf("supplier: create: %w", err)
	}

	return created, nil
}

// GetByID retrieves a supplier by id.
func (r *PGRepository) GetByID(ctx context.Context, id string) (Supplier, error) {
	selectSQL := `
		SELECT ` + supplierColumns + `
		FROM suppliers
		WHERE id = $1`

	s, err := scanSupplier(r.pool.QueryRow(ctx, selectSQL, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Supplier{}, ErrNotFound
		}
		return Supplier{}, fmt.Errorf("supplier: get by id: %w", err)
	}

	return s, nil
}

// List returns a page of suppliers ordered by creation time, plus the total
// count.
func (r *PGRepository) List(ctx context.Context, limit, offset int) ([]Supplier, int, error) {
	listSQL := `
		SELECT ` + supplierColumns + `
		FROM suppliers
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2`

	rows, err := r.pool.Query(ctx, listSQL, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("supplier: list: %w", err)
	}
	defer rows.Close()

	suppliers := []Supplier{}
	for rows.Next() {
		var s Supplier
		if err := rows.Scan(&s.ID, &s.Name, &s.Document, &s.Active, &s.CreatedAt, &s.UpdatedAt); err != nil {
			return nil, 0, fmt.Errorf("supplier: scan: %w", err)
		}
		suppliers = append(suppliers, s)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("supplier: list: %w", err)
	}

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM suppliers`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("supplier: count: %w", err)
	}

	return suppliers, total, nil
}

// Update overwrites the mutable supplier fields.
func (r *PGRepository) Update(ctx context.Context, s Supplier) (Supplier, error) {
	updateSQL := `
		UPDATE suppliers
		SET name = $2, document = $3, active = $4, updated_at = now()
		WHERE id = $1
		RETURNING ` + supplierColumns

	updated, err := scanSupplier(r.pool.QueryRow(ctx, updateSQL, s.ID, s.Name, s.Document, s.Active))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Supplier{}, ErrNotFound
		}
		return Supplier{}, fmt.Errorf("supplier: update: %w", err)
	}

	return updated, nil
}

// Delete removes a supplier.
func (r *PGRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM suppliers WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("supplier: delete: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func scanSupplier(row pgx.Row) (Supplier, error) {
	var s Supplier
	err := row.Scan(&s.ID, &s.Name, &s.Document, &s.Active, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		return Supplier{}, err
	}
	return s, nil
}
