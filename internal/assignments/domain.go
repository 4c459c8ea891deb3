// internal/assignments/domain.go
package assignments

import (
	"errors"
	"fmt"
	"strconv"

	"toolshed/internal/dates"
	"toolshed/internal/storage"
)

// Failure taxonomy for live operations. Every refusal maps to exactly one of
// these; malformed historical records never surface as errors (they are
// skipped at load time).
var (
	ErrDuplicateID       = errors.New("assignment id already in use")
	ErrUnknownMember     = errors.New("member does not exist")
	ErrUnknownImplement  = errors.New("implement does not exist")
	ErrInvalidQuantity   = errors.New("quantity must be positive")
	ErrInsufficientStock = errors.New("insufficient stock for requested quantity")
	ErrInvalidDate       = errors.New("date must be YYYY-MM-DD")
	ErrDateNotLater      = errors.New("new due date must be after the current due date")
	ErrNotFound          = errors.New("assignment not found")
	ErrInvalidState      = errors.New("assignment is not active")
)

// Status is the stored lifecycle state. Overdue is never stored: it is a view
// computed from an active assignment and a reference date.
type Status string

const (
	StatusActive    Status = "active"
	StatusReturned  Status = "returned"
	StatusCancelled Status = "cancelled"
)

// parseStatus maps stored status values onto the state machine. Historical
// files may carry "overdue" from the days it was a declared enum value; those
// records were always still active, so they normalize to active.
func parseStatus(s string) (Status, error) {
	switch st := Status(s); st {
	case StatusActive, StatusReturned, StatusCancelled:
		return st, nil
	case "overdue":
		return StatusActive, nil
	}
	return "", fmt.Errorf("unknown status %q", s)
}

// Assignment is one loan record linking a member to an implement. The member
// and implement references are unvalidated foreign keys; lookups may fail and
// consumers degrade to an "Unknown" placeholder.
type Assignment struct {
	ID          string `json:"id"`
	MemberID    string `json:"member_id"`
	ImplementID string `json:"implement_id"`
	Quantity    int    `json:"quantity"`
	DateOut     string `json:"date_out"`
	DateDue     string `json:"date_due"`
	Status      Status `json:"status"`
}

// IsOverdue reports whether the assignment is past due as of the reference
// date, at calendar-day granularity. Terminal assignments are never overdue.
func (a *Assignment) IsOverdue(today string) bool {
	return a.Status == StatusActive && dates.Compare(today, a.DateDue) > 0
}

// Fields is the persisted record shape, in on-disk order.
var Fields = []string{"id", "member_id", "implement_id", "quantity", "date_out", "date_due", "status"}

func (a *Assignment) toRecord() storage.Record {
	return storage.Record{
		"id":           a.ID,
		"member_id":    a.MemberID,
		"implement_id": a.ImplementID,
		"quantity":     strconv.Itoa(a.Quantity),
		"date_out":     a.DateOut,
		"date_due":     a.DateDue,
		"status":       string(a.Status),
	}
}

func fromRecord(rec storage.Record) (*Assignment, error) {
	qty, err := strconv.Atoi(rec["quantity"])
	if err != nil {
		return nil, fmt.Errorf("parse quantity: %w", err)
	}
	status, err := parseStatus(rec["status"])
	if err != nil {
		return nil, err
	}
	if !dates.Valid(rec["date_out"]) || !dates.Valid(rec["date_due"]) {
		return nil, ErrInvalidDate
	}
	return &Assignment{
		ID:          rec["id"],
		MemberID:    rec["member_id"],
		ImplementID: rec["implement_id"],
		Quantity:    qty,
		DateOut:     rec["date_out"],
		DateDue:     rec["date_due"],
		Status:      status,
	}, nil
}
