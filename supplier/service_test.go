package supplier

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/google/uuid"
)

func TestService_CreateAndGet(t *testing.T) {
	repo := newFakeRepository()
	svc := NewService(repo, nil)
	ctx := context.Background()

	created, err := svc.Create(ctx, Params{Name: "Fornecedor Alfa", Document: "12345678000190", Active: true})
	if err != nil {
		t.Fatalf("create: unexpected error: %v", err)
	}
	if created.ID == "" {
		t.Fatal("create: expected generated id")
	}
	if _, err := uuid.Parse(created.ID); err != nil {
		t.Fatalf("create: id is not a uuid: %v", err)
	}

	got, err := svc.Get(ctx, created.ID)
	if err != nil {
		t.Fatalf("get: unexpected error: %v", err)
	}
	if got.Name != "Fornecedor Alfa" || got.Document != "12345678000190" || !got.Active {
		t.Fatalf("get: unexpected record %+v", got)
	}
}

func TestService_CreateValidation(t *testing.T) {
	repo := newFakeRepository()
	svc := NewService(repo, nil)
	ctx := context.Background()

	cases := []struct {
		name   string
		params Params
		field  string
	}{
		{"missing name", Params{Document: "123"}, "name"},
		{"short name", Params{Name: "ab", Document: "123"}, "name"},
		{"missing document", Params{Name: "Fornecedor Alfa"}, "document"},
		{"long document", Params{Name: "Fornecedor Alfa", Document: "123456789012345"}, "document"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Create(ctx, tc.params)
			var fieldErrs validation.Errors
			if !errors.As(err, &fieldErrs) {
				t.Fatalf("expected validation errors, got %v", err)
			}
			if _, ok := fieldErrs[tc.field]; !ok {
				t.Fatalf("expected error on field %q, got %v", tc.field, fieldErrs)
			}
		})
	}
}

func TestService_ListPagination(t *testing.T) {
	repo := newFakeRepository()
	svc := NewService(repo, nil)
	ctx := context.Background()

	for i := 0; i < 25; i++ {
		if _, err := svc.Create(ctx, Params{Name: "Fornecedor Teste", Document: "123"}); err != nil {
			t.Fatalf("seed %d: %v", i, err)
		}
	}

	records, total, err := svc.List(ctx, ListFilters{})
	if err != nil {
		t.Fatalf("list defaults: %v", err)
	}
	if total != 25 {
		t.Fatalf("expected total 25, got %d", total)
	}
	if len(records) != 20 {
		t.Fatalf("expected default page size 20, got %d", len(records))
	}

	records, _, err = svc.List(ctx, ListFilters{Page: 2, PageSize: 20})
	if err != nil {
		t.Fatalf("list page 2: %v", err)
	}
	if len(records) != 5 {
		t.Fatalf("expected 5 records on page 2, got %d", len(records))
	}

	// Oversized page sizes fall back to the default.
	records, _, err = svc.List(ctx, ListFilters{PageSize: 1000})
	if err != nil {
		t.Fatalf("list oversized: %v", err)
	}
	if len(records) != 20 {
		t.Fatalf("expected capped page size 20, got %d", len(records))
	}
}

func TestService_UpdateAndDelete(t *testing.T) {
	repo := newFakeRepository()
	svc := NewService(repo, nil)
	ctx := context.Background()

	created, err := svc.Create(ctx, Params{Name: "Fornecedor Alfa", Document: "123"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	updated, err := svc.Update(ctx, created.ID, Params{Name: "Fornecedor Beta", Document: "456", Active: true})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Name != "Fornecedor Beta" || !updated.Active {
		t.Fatalf("update: unexpected record %+v", updated)
	}

	if err := svc.Delete(ctx, created.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := svc.Get(ctx, created.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
}

func TestService_UnknownAndMalformedIDs(t *testing.T) {
	repo := newFakeRepository()
	svc := NewService(repo, nil)
	ctx := context.Background()

	missing := uuid.NewString()
	if _, err := svc.Get(ctx, missing); !errors.Is(err, ErrNotFound) {
		t.Fatalf("get missing: expected ErrNotFound, got %v", err)
	}
	if err := svc.Delete(ctx, missing); !errors.Is(err, ErrNotFound) {
		t.Fatalf("delete missing: expected ErrNotFound, got %v", err)
	}
	if _, err := svc.Update(ctx, missing, Params{Name: "Fornecedor", Document: "123"}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("update missing: expected ErrNotFound, got %v", err)
	}

	// Ill-formed ids behave exactly like missing records.
	if _, err := svc.Get(ctx, "not-a-uuid"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("get malformed: expected ErrNotFound, got %v", err)
	}
}

type fakeRepository struct {
	mu      sync.Mutex
	records map[string]Supplier
	order   []string
}

func newFakeRepository() *fakeRepository {
	return &fakeRepository{records: make(map[string]Supplier)}
}

func (f *fakeRepository) Create(_ context.Context, s Supplier) (Supplier, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	now := time.Now().UTC()
	s.CreatedAt = now
	s.UpdatedAt = now
	f.records[s.ID] = s
	f.order = append(f.order, s.ID)
	return s, nil
}

func (f *fakeRepository) GetByID(_ context.Context, id string) (Supplier, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	s, ok := f.records[id]
	if !ok {
		return Supplier{}, ErrNotFound
	}
	return s, nil
}

func (f *fakeRepository) List(_ context.Context, limit, offset int) ([]Supplier, int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	out := []Supplier{}
	for i := offset; i < len(f.order) && len(out) < limit; i++ {
		out = append(out, f.records[f.order[i]])
	}
	return out, len(f.order), nil
}

func (f *fakeRepository) Update(_ context.Context, s Supplier) (Supplier, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	existing, ok := f.records[s.ID]
	if !ok {
		return Supplier{}, ErrNotFound
	}
	s.CreatedAt = existing.CreatedAt
	s.UpdatedAt = time.Now().UTC()
	f.records[s.ID] = s
	return s, nil
}

func (f *fakeRepository) Delete(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if _, ok := f.records[id]; !ok {
		return ErrNotFound
	}
	delete(f.records, id)
	for i, existing := range f.order {
		if existing == id {
			f.order = append(f.order[:i], f.order[i+1:]...)
			break
		}
	}
	return nil
}
