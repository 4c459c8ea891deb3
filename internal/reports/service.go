// internal/reports/service.go
package reports

import (
	"context"
	"io"

	"toolshed/internal/assignments"
	"toolshed/internal/inventory"
)

// RankEntry is one row of a frequency ranking. Name degrades to "Unknown"
// when the referenced entity no longer exists.
type RankEntry struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// OverdueRow is one overdue loan enriched for display.
type OverdueRow struct {
	AssignmentID  string `json:"assignment_id"`
	MemberName    string `json:"member_name"`
	ImplementName string `json:"implement_name"`
	Quantity      int    `json:"quantity"`
	DateOut       string `json:"date_out"`
	DateDue       string `json:"date_due"`
	DaysLate      int    `json:"days_late"`
}

// Service is the read-only reporting façade over the three registries.
type Service interface {
	TopImplements(ctx context.Context) []RankEntry
	TopMembers(ctx context.Context) []RankEntry
	LowStock(ctx context.Context, threshold int) []inventory.Implement
	Overdue(ctx context.Context) []OverdueRow
	MemberHistory(ctx context.Context, memberID string) []assignments.Assignment
	WriteOverdueMarkdown(ctx context.Context, w io.Writer) error
}
