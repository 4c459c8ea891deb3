// internal/assignments/service.go
package assignments

import (
	"context"

	"toolshed/internal/inventory"
	"toolshed/internal/members"
)

// CreateRequest carries everything needed to open a loan. The id is assigned
// by the caller.
type CreateRequest struct {
	ID          string `json:"id"`
	MemberID    string `json:"member_id"`
	ImplementID string `json:"implement_id"`
	Quantity    int    `json:"quantity"`
	DateOut     string `json:"date_out"`
	DateDue     string `json:"date_due"`
}

// Ledger is the slice of the inventory service the engine needs: the stock
// contract plus lookup. Satisfied by inventory.Service.
type Ledger interface {
	Get(ctx context.Context, id string) (*inventory.Implement, error)
	HasAvailability(ctx context.Context, id string, qty int) bool
	AdjustStock(ctx context.Context, id string, delta int) error
}

// Directory is the member lookup the engine needs. Satisfied by
// members.Service.
type Directory interface {
	Get(ctx context.Context, id string) (*members.Member, error)
}

// Service defines the interface for the assignment engine.
type Service interface {
	Create(ctx context.Context, req CreateRequest) (*Assignment, error)
	Return(ctx context.Context, id string) error
	Cancel(ctx context.Context, id string) error
	Extend(ctx context.Context, id, newDueDate string) error

	Get(ctx context.Context, id string) (*Assignment, error)
	List(ctx context.Context) []Assignment
	ListActive(ctx context.Context) []Assignment
	ListOverdue(ctx context.Context) []Assignment
	ListByMember(ctx context.Context, memberID string) []Assignment

	Persist(ctx context.Context) map[string]bool
}
