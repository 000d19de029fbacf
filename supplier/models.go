package supplier

import (
	"time"

	validation "github.com/go-ozzo/ozzo-validation"
)

// Supplier mirrors the suppliers table.
type Supplier struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Document  string    `json:"document"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Params carries caller-supplied supplier fields for create and update.
type Params struct {
	Name     string `json:"name"`
	Document string `json:"document"`
	Active   bool   `json:"active"`
}

// Validate checks the field constraints: name 3-200 chars, document at most
// 14 chars, both required.
func (p Params) Validate() error {
	return validation.ValidateStruct(&p,
		validation.Field(&p.Name, validation.Required, validation.Length(3, 200)),
		validation.Field(&p.Document, validation.Required, validation.Length(1, 14)),
	)
}

// ListFilters controls pagination for supplier listings.
type ListFilters struct {
	Page     int
	PageSize int
}
