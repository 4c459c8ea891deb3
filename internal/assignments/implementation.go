// internal/assignments/implementation.go
package assignments

import (
	"context"
	"fmt"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"toolshed/internal/audit"
	"toolshed/internal/dates"
	"toolshed/internal/storage"
)

const collection = "assignments"

// service implements the Service interface. It owns the loan collection
// exclusively; it mutates the inventory ledger through the stock contract and
// never mutates the member registry.
type service struct {
	mu      sync.RWMutex
	loans   []*Assignment
	usedIDs map[string]*Assignment

	ledger    Ledger
	directory Directory
	store     storage.Store
	log       audit.Logger

	tracer  trace.Tracer
	created metric.Int64Counter
}

// NewService loads the loan collection from the store. Malformed stored
// records are skipped silently; only live operations are strictly validated.
func NewService(ctx context.Context, store storage.Store, ledger Ledger, directory Directory, log audit.Logger) (Service, error) {
	records, err := store.Load(ctx, collection, Fields)
	if err != nil {
		return nil, fmt.Errorf("load assignments: %w", err)
	}

	created, err := otel.Meter("toolshed/assignments").Int64Counter("assignments.created")
	if err != nil {
		return nil, fmt.Errorf("create counter: %w", err)
	}

	s := &service{
		usedIDs:   make(map[string]*Assignment),
		ledger:    ledger,
		directory: directory,
		store:     store,
		log:       log,
		tracer:    otel.Tracer("toolshed/assignments"),
		created:   created,
	}
	for _, rec := range records {
		a, err := fromRecord(rec)
		if err != nil {
			continue
		}
		if _, dup := s.usedIDs[a.ID]; dup {
			continue
		}
		s.loans = append(s.loans, a)
		s.usedIDs[a.ID] = a
	}
	return s, nil
}

// Create opens a loan. Preconditions are checked in a fixed, observable
// order; on success the implement's stock is decremented by the quantity in
// the same call, so exactly one stock adjustment corresponds to the creation.
func (s *service) Create(ctx context.Context, req CreateRequest) (*Assignment, error) {
	ctx, span := s.tracer.Start(ctx, "assignment.create",
		trace.WithAttributes(
			attribute.String("assignment.id", req.ID),
			attribute.String("member.id", req.MemberID),
			attribute.String("implement.id", req.ImplementID),
			attribute.Int("quantity", req.Quantity),
		),
	)
	defer span.End()

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, used := s.usedIDs[req.ID]; used {
		s.log.Failure(fmt.Sprintf("assignment rejected: id %s already exists", req.ID))
		return nil, ErrDuplicateID
	}

	member, err := s.directory.Get(ctx, req.MemberID)
	if err != nil {
		s.log.Failure(fmt.Sprintf("assignment rejected: member %s does not exist", req.MemberID))
		return nil, ErrUnknownMember
	}

	implement, err := s.ledger.Get(ctx, req.ImplementID)
	if err != nil {
		s.log.Failure(fmt.Sprintf("assignment rejected: implement %s does not exist", req.ImplementID))
		return nil, ErrUnknownImplement
	}

	if req.Quantity <= 0 {
		return nil, ErrInvalidQuantity
	}

	if !s.ledger.HasAvailability(ctx, req.ImplementID, req.Quantity) {
		s.log.Failure(fmt.Sprintf(
			"insufficient stock: %s - requested %d, available %d",
			implement.Name, req.Quantity, implement.Stock,
		))
		return nil, ErrInsufficientStock
	}

	if !dates.Valid(req.DateOut) || !dates.Valid(req.DateDue) {
		return nil, ErrInvalidDate
	}

	// Guaranteed to succeed by the availability check above; a failure here
	// means the stock invariant has been broken elsewhere.
	if err := s.ledger.AdjustStock(ctx, req.ImplementID, -req.Quantity); err != nil {
		return nil, fmt.Errorf("stock decrement after availability check: %w", err)
	}

	a := &Assignment{
		ID:          req.ID,
		MemberID:    req.MemberID,
		ImplementID: req.ImplementID,
		Quantity:    req.Quantity,
		DateOut:     req.DateOut,
		DateDue:     req.DateDue,
		Status:      StatusActive,
	}
	s.loans = append(s.loans, a)
	s.usedIDs[a.ID] = a

	s.created.Add(ctx, 1)
	s.log.Action(fmt.Sprintf("assignment created: %s - %s - %s", a.ID, member.FullName(), implement.Name))

	copied := *a
	return &copied, nil
}

// Return closes an active loan and restores its stock.
func (s *service) Return(ctx context.Context, id string) error {
	return s.close(ctx, id, StatusReturned)
}

// Cancel closes an active loan with the same stock effect as Return; only the
// recorded status differs.
func (s *service) Cancel(ctx context.Context, id string) error {
	return s.close(ctx, id, StatusCancelled)
}

func (s *service) close(ctx context.Context, id string, terminal Status) error {
	ctx, span := s.tracer.Start(ctx, "assignment.close",
		trace.WithAttributes(
			attribute.String("assignment.id", id),
			attribute.String("terminal.status", string(terminal)),
		),
	)
	defer span.End()

	s.mu.Lock()
	defer s.mu.Unlock()

	a, ok := s.usedIDs[id]
	if !ok {
		return ErrNotFound
	}
	if a.Status != StatusActive {
		return ErrInvalidState
	}

	// A dangling implement reference fails the whole operation: closing the
	// loan without restoring stock would break the one-adjustment-per-
	// transition invariant.
	implement, err := s.ledger.Get(ctx, a.ImplementID)
	if err != nil {
		s.log.Failure(fmt.Sprintf("close rejected: implement %s does not exist for assignment %s", a.ImplementID, id))
		return ErrUnknownImplement
	}

	if err := s.ledger.AdjustStock(ctx, a.ImplementID, a.Quantity); err != nil {
		return fmt.Errorf("stock restore for assignment %s: %w", id, err)
	}
	a.Status = terminal

	if terminal == StatusReturned {
		s.log.Action(fmt.Sprintf("return processed: %s - %s", id, implement.Name))
	} else {
		s.log.Action(fmt.Sprintf("assignment cancelled: %s", id))
	}
	return nil
}

// Extend replaces the due date of an active loan with a strictly later one.
func (s *service) Extend(ctx context.Context, id, newDueDate string) error {
	_, span := s.tracer.Start(ctx, "assignment.extend",
		trace.WithAttributes(
			attribute.String("assignment.id", id),
			attribute.String("due.date", newDueDate),
		),
	)
	defer span.End()

	s.mu.Lock()
	defer s.mu.Unlock()

	a, ok := s.usedIDs[id]
	if !ok {
		return ErrNotFound
	}
	if a.Status != StatusActive {
		return ErrInvalidState
	}
	if !dates.Valid(newDueDate) {
		return ErrInvalidDate
	}
	if dates.Compare(newDueDate, a.DateDue) <= 0 {
		return ErrDateNotLater
	}

	a.DateDue = newDueDate
	s.log.Action(fmt.Sprintf("due date extended: %s - new date %s", id, newDueDate))
	return nil
}

func (s *service) Get(ctx context.Context, id string) (*Assignment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	a, ok := s.usedIDs[id]
	if !ok {
		return nil, ErrNotFound
	}
	copied := *a
	return &copied, nil
}

func (s *service) List(ctx context.Context) []Assignment {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshot(func(*Assignment) bool { return true })
}

func (s *service) ListActive(ctx context.Context) []Assignment {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshot(func(a *Assignment) bool { return a.Status == StatusActive })
}

// ListOverdue evaluates the overdue view against the current date; nothing is
// promoted or persisted when a loan crosses its due date.
func (s *service) ListOverdue(ctx context.Context) []Assignment {
	today := dates.Today()

	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshot(func(a *Assignment) bool { return a.IsOverdue(today) })
}

func (s *service) ListByMember(ctx context.Context, memberID string) []Assignment {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshot(func(a *Assignment) bool { return a.MemberID == memberID })
}

func (s *service) Persist(ctx context.Context) map[string]bool {
	s.mu.RLock()
	records := make([]storage.Record, 0, len(s.loans))
	for _, a := range s.loans {
		records = append(records, a.toRecord())
	}
	s.mu.RUnlock()

	return s.store.Save(ctx, collection, Fields, records)
}

// snapshot copies matching loans in insertion order. Caller must hold at
// least the read lock.
func (s *service) snapshot(match func(*Assignment) bool) []Assignment {
	var out []Assignment
	for _, a := range s.loans {
		if match(a) {
			out = append(out, *a)
		}
	}
	return out
}
