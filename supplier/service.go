package supplier

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Service handles supplier business logic.
type Service struct {
	repo   Repository
	logger *zap.Logger
}

// NewService creates a new supplier service.
func NewService(repo Repository, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{repo: repo, logger: logger}
}

// Create validates the params and inserts a new supplier.
func (s *Service) Create(ctx context.Context, params Params) (Supplier, error) {
	if err := params.Validate(); err != nil {
		return Supplier{}, err
	}

	created, err := s.repo.Create(ctx, Supplier{
		ID:       uuid.NewString(),
		Name:     params.Name,
		Document: params.Document,
		Active:   params.Active,
	})
	if err != nil {
		return Supplier{}, err
	}

	s.logger.Info("supplier created", zap.String("supplier_id", created.ID))
	return created, nil
}

// Get retrieves a supplier by id. Ill-formed ids behave as missing records.
func (s *Service) Get(ctx context.Context, id string) (Supplier, error) {
	if _, err := uuid.Parse(id); err != nil {
		return Supplier{}, ErrNotFound
	}
	return s.repo.GetByID(ctx, id)
}

// List returns a page of suppliers. Page defaults to 1, page size to 20
// capped at 100.
func (s *Service) List(ctx context.Context, filters ListFilters) ([]Supplier, int, error) {
	if filters.Page <= 0 {
		filters.Page = 1
	}
	if filters.PageSize <= 0 || filters.PageSize > 100 {
		filters.PageSize = 20
	}
	return s.repo.List(ctx, filters.PageSize, (filters.Page-1)*filters.PageSize)
}

// Update validates the params and overwrites the supplier.
func (s *Service) Update(ctx context.Context, id string, params Params) (Supplier, error) {
	if _, err := uuid.Parse(id); err != nil {
		return Supplier{}, ErrNotFound
	}
	if err := params.Validate(); err != nil {
		return Supplier{}, err
	}

	return s.repo.Update(ctx, Supplier{
		ID:       id,
		Name:     params.Name,
		Document: params.Document,
		Active:   params.Active,
	})
}

// Delete removes a supplier.
func (s *Service) Delete(ctx context.Context, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return ErrNotFound
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info("supplier deleted", zap.String("supplier_id", id))
	return nil
}
