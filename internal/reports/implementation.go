// internal/reports/implementation.go
package reports

import (
	"context"
	"fmt"
	"io"
	"sort"

	"toolshed/internal/assignments"
	"toolshed/internal/dates"
	"toolshed/internal/inventory"
	"toolshed/internal/members"
)

const rankingSize = 10

// unknownName is the placeholder for dangling member or implement references.
const unknownName = "Unknown"

// service implements the Service interface. It only reads; it never mutates
// any of the registries it aggregates over.
type service struct {
	engine    assignments.Service
	ledger    inventory.Service
	directory members.Service
}

func NewService(engine assignments.Service, ledger inventory.Service, directory members.Service) Service {
	return &service{engine: engine, ledger: ledger, directory: directory}
}

func (s *service) TopImplements(ctx context.Context) []RankEntry {
	ranking := rank(s.engine.List(ctx), func(a assignments.Assignment) string { return a.ImplementID })
	for i := range ranking {
		ranking[i].Name = unknownName
		if im, err := s.ledger.Get(ctx, ranking[i].ID); err == nil {
			ranking[i].Name = im.Name
		}
	}
	return ranking
}

func (s *service) TopMembers(ctx context.Context) []RankEntry {
	ranking := rank(s.engine.List(ctx), func(a assignments.Assignment) string { return a.MemberID })
	for i := range ranking {
		ranking[i].Name = unknownName
		if m, err := s.directory.Get(ctx, ranking[i].ID); err == nil {
			ranking[i].Name = m.FullName()
		}
	}
	return ranking
}

// rank counts assignments per key and orders by descending count, ties broken
// by ascending id, truncated to the top ten.
func rank(loans []assignments.Assignment, key func(assignments.Assignment) string) []RankEntry {
	counts := make(map[string]int)
	for _, a := range loans {
		counts[key(a)]++
	}

	entries := make([]RankEntry, 0, len(counts))
	for id, count := range counts {
		entries = append(entries, RankEntry{ID: id, Count: count})
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Count != entries[j].Count {
			return entries[i].Count > entries[j].Count
		}
		return entries[i].ID < entries[j].ID
	})

	if len(entries) > rankingSize {
		entries = entries[:rankingSize]
	}
	return entries
}

func (s *service) LowStock(ctx context.Context, threshold int) []inventory.Implement {
	return s.ledger.LowStock(ctx, threshold)
}

func (s *service) Overdue(ctx context.Context) []OverdueRow {
	today := dates.Today()

	var rows []OverdueRow
	for _, a := range s.engine.ListOverdue(ctx) {
		row := OverdueRow{
			AssignmentID:  a.ID,
			MemberName:    unknownName,
			ImplementName: unknownName,
			Quantity:      a.Quantity,
			DateOut:       a.DateOut,
			DateDue:       a.DateDue,
			DaysLate:      dates.DaysBetween(a.DateDue, today),
		}
		if m, err := s.directory.Get(ctx, a.MemberID); err == nil {
			row.MemberName = m.FullName()
		}
		if im, err := s.ledger.Get(ctx, a.ImplementID); err == nil {
			row.ImplementName = im.Name
		}
		rows = append(rows, row)
	}
	return rows
}

func (s *service) MemberHistory(ctx context.Context, memberID string) []assignments.Assignment {
	return s.engine.ListByMember(ctx, memberID)
}

// WriteOverdueMarkdown renders the overdue listing as a markdown report with
// a totals footer.
func (s *service) WriteOverdueMarkdown(ctx context.Context, w io.Writer) error {
	rows := s.Overdue(ctx)

	if _, err := fmt.Fprint(w, "# Overdue Loans - Community Tool Shed\n\n"); err != nil {
		return err
	}
	if len(rows) == 0 {
		_, err := fmt.Fprint(w, "No overdue loans.\n")
		return err
	}

	fmt.Fprint(w, "| loan_id | member | implement | quantity | date_out | date_due | days_late |\n")
	fmt.Fprint(w, "|---------|--------|-----------|----------|----------|----------|-----------|\n")

	totalUnits := 0
	for _, r := range rows {
		totalUnits += r.Quantity
		if _, err := fmt.Fprintf(w, "| %s | %s | %s | %d | %s | %s | %d |\n",
			r.AssignmentID, r.MemberName, r.ImplementName, r.Quantity, r.DateOut, r.DateDue, r.DaysLate); err != nil {
			return err
		}
	}

	_, err := fmt.Fprintf(w, "\n**Total overdue loans:** %d\n\n**Total units out:** %d\n", len(rows), totalUnits)
	return err
}
