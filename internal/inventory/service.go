// internal/inventory/service.go
package inventory

import (
	"context"

	"github.com/shopspring/decimal"
)

// Update carries a partial edit; nil fields are left untouched.
type Update struct {
	Name           *string          `json:"name,omitempty"`
	Category       *string          `json:"category,omitempty"`
	Stock          *int             `json:"stock,omitempty"`
	Condition      *Condition       `json:"condition,omitempty"`
	EstimatedValue *decimal.Decimal `json:"estimated_value,omitempty"`
}

// Service defines the interface for the inventory ledger.
type Service interface {
	Register(ctx context.Context, im Implement) error
	Get(ctx context.Context, id string) (*Implement, error)
	List(ctx context.Context) []Implement
	Edit(ctx context.Context, id string, upd Update) error
	Remove(ctx context.Context, id string) error
	MarkCondition(ctx context.Context, id string, condition Condition) error
	ByCategory(ctx context.Context, category string) []Implement
	LowStock(ctx context.Context, threshold int) []Implement
	Categories(ctx context.Context) []string

	// Stock contract consumed by the assignment engine.
	AdjustStock(ctx context.Context, id string, delta int) error
	HasAvailability(ctx context.Context, id string, qty int) bool

	Persist(ctx context.Context) map[string]bool
}
