package assignments

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"toolshed/internal/audit"
	"toolshed/internal/inventory"
	"toolshed/internal/members"
	"toolshed/internal/storage"
)

type fixture struct {
	dir       string
	store     *storage.FileStore
	ledger    inventory.Service
	directory members.Service
	engine    Service
	log       *audit.Capture
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()
	dir := t.TempDir()

	store, err := storage.NewFileStore(dir)
	require.NoError(t, err)
	log := audit.NewCapture()

	ledger, err := inventory.NewService(ctx, store, log)
	require.NoError(t, err)
	directory, err := members.NewService(ctx, store, log)
	require.NoError(t, err)
	engine, err := NewService(ctx, store, ledger, directory, log)
	require.NoError(t, err)

	return &fixture{dir: dir, store: store, ledger: ledger, directory: directory, engine: engine, log: log}
}

func (f *fixture) seed(t *testing.T, stock int) {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, f.ledger.Register(ctx, inventory.Implement{
		ID:             "T1",
		Name:           "Hammer",
		Category:       "hand",
		Stock:          stock,
		Condition:      inventory.ConditionAvailable,
		EstimatedValue: decimal.NewFromFloat(12.50),
	}))
	require.NoError(t, f.directory.Register(ctx, members.Member{
		ID:        "M1",
		FirstName: "Ana",
		LastName:  "Ruiz",
		Phone:     "555-0101",
		Address:   "12 Cedar Lane",
		Role:      members.RoleResident,
	}))
}

func (f *fixture) stock(t *testing.T, id string) int {
	t.Helper()
	im, err := f.ledger.Get(context.Background(), id)
	require.NoError(t, err)
	return im.Stock
}

func createReq(id string, qty int) CreateRequest {
	return CreateRequest{
		ID:          id,
		MemberID:    "M1",
		ImplementID: "T1",
		Quantity:    qty,
		DateOut:     "2025-01-01",
		DateDue:     "2025-01-10",
	}
}

func TestCheckoutReturnScenario(t *testing.T) {
	f := newFixture(t)
	f.seed(t, 5)
	ctx := context.Background()

	a, err := f.engine.Create(ctx, createReq("A1", 3))
	require.NoError(t, err)
	assert.Equal(t, StatusActive, a.Status)
	assert.Equal(t, 2, f.stock(t, "T1"))

	_, err = f.engine.Create(ctx, createReq("A2", 3))
	assert.ErrorIs(t, err, ErrInsufficientStock)
	assert.Equal(t, 2, f.stock(t, "T1"), "failed create must not touch stock")

	require.NoError(t, f.engine.Return(ctx, "A1"))
	assert.Equal(t, 5, f.stock(t, "T1"))

	got, err := f.engine.Get(ctx, "A1")
	require.NoError(t, err)
	assert.Equal(t, StatusReturned, got.Status)

	assert.ErrorIs(t, f.engine.Return(ctx, "A1"), ErrInvalidState)
	assert.Equal(t, 5, f.stock(t, "T1"), "double return must not restore twice")
}

func TestCreatePreconditionOrder(t *testing.T) {
	f := newFixture(t)
	f.seed(t, 5)
	ctx := context.Background()

	_, err := f.engine.Create(ctx, createReq("A1", 3))
	require.NoError(t, err)

	// Duplicate id wins over everything else.
	dup := createReq("A1", 0)
	dup.MemberID = "ghost"
	_, err = f.engine.Create(ctx, dup)
	assert.ErrorIs(t, err, ErrDuplicateID)

	// Unknown member is reported before any quantity or stock check.
	req := createReq("A2", 0)
	req.MemberID = "ghost"
	_, err = f.engine.Create(ctx, req)
	assert.ErrorIs(t, err, ErrUnknownMember)

	req = createReq("A2", 999)
	req.ImplementID = "ghost"
	_, err = f.engine.Create(ctx, req)
	assert.ErrorIs(t, err, ErrUnknownImplement)

	_, err = f.engine.Create(ctx, createReq("A2", 0))
	assert.ErrorIs(t, err, ErrInvalidQuantity)

	_, err = f.engine.Create(ctx, createReq("A2", -4))
	assert.ErrorIs(t, err, ErrInvalidQuantity)

	// Availability is checked before the dates are even looked at.
	req = createReq("A2", 999)
	req.DateOut = "not-a-date"
	_, err = f.engine.Create(ctx, req)
	assert.ErrorIs(t, err, ErrInsufficientStock)

	req = createReq("A2", 1)
	req.DateDue = "2025-13-40"
	_, err = f.engine.Create(ctx, req)
	assert.ErrorIs(t, err, ErrInvalidDate)
	assert.Equal(t, 2, f.stock(t, "T1"), "date failure after availability check must not leak stock")
}

func TestCancelRestoresStockLikeReturn(t *testing.T) {
	f := newFixture(t)
	f.seed(t, 5)
	ctx := context.Background()

	_, err := f.engine.Create(ctx, createReq("A1", 2))
	require.NoError(t, err)
	assert.Equal(t, 3, f.stock(t, "T1"))

	require.NoError(t, f.engine.Cancel(ctx, "A1"))
	assert.Equal(t, 5, f.stock(t, "T1"))

	got, err := f.engine.Get(ctx, "A1")
	require.NoError(t, err)
	assert.Equal(t, StatusCancelled, got.Status)

	assert.ErrorIs(t, f.engine.Cancel(ctx, "A1"), ErrInvalidState)
	assert.ErrorIs(t, f.engine.Return(ctx, "A1"), ErrInvalidState)
}

func TestCreateReturnRoundTripRestoresStock(t *testing.T) {
	f := newFixture(t)
	f.seed(t, 100)
	ctx := context.Background()
	seq := 0

	rapid.Check(t, func(rt *rapid.T) {
		before := f.stock(t, "T1")
		qty := rapid.IntRange(1, before).Draw(rt, "qty")
		seq++

		id := fmt.Sprintf("R%d", seq)
		_, err := f.engine.Create(ctx, createReq(id, qty))
		if err != nil {
			rt.Fatalf("create: %v", err)
		}
		if got := f.stock(t, "T1"); got != before-qty {
			rt.Fatalf("stock after create: got %d, want %d", got, before-qty)
		}

		if rapid.Bool().Draw(rt, "cancel") {
			err = f.engine.Cancel(ctx, id)
		} else {
			err = f.engine.Return(ctx, id)
		}
		if err != nil {
			rt.Fatalf("close: %v", err)
		}
		if got := f.stock(t, "T1"); got != before {
			rt.Fatalf("stock after close: got %d, want %d", got, before)
		}
	})
}

func TestCloseRejectsDanglingImplement(t *testing.T) {
	f := newFixture(t)
	f.seed(t, 5)
	ctx := context.Background()

	_, err := f.engine.Create(ctx, createReq("A1", 2))
	require.NoError(t, err)

	require.NoError(t, f.ledger.Remove(ctx, "T1"))

	assert.ErrorIs(t, f.engine.Return(ctx, "A1"), ErrUnknownImplement)
	got, err := f.engine.Get(ctx, "A1")
	require.NoError(t, err)
	assert.Equal(t, StatusActive, got.Status, "a failed close must leave the loan untouched")

	assert.ErrorIs(t, f.engine.Cancel(ctx, "A1"), ErrUnknownImplement)
}

func TestExtend(t *testing.T) {
	f := newFixture(t)
	f.seed(t, 5)
	ctx := context.Background()

	_, err := f.engine.Create(ctx, createReq("A1", 1))
	require.NoError(t, err)

	assert.ErrorIs(t, f.engine.Extend(ctx, "ghost", "2025-02-01"), ErrNotFound)
	assert.ErrorIs(t, f.engine.Extend(ctx, "A1", "2025/02/01"), ErrInvalidDate)
	assert.ErrorIs(t, f.engine.Extend(ctx, "A1", "2025-01-10"), ErrDateNotLater)
	assert.ErrorIs(t, f.engine.Extend(ctx, "A1", "2025-01-09"), ErrDateNotLater)

	require.NoError(t, f.engine.Extend(ctx, "A1", "2025-01-20"))
	got, err := f.engine.Get(ctx, "A1")
	require.NoError(t, err)
	assert.Equal(t, "2025-01-20", got.DateDue)
	assert.Equal(t, StatusActive, got.Status)

	require.NoError(t, f.engine.Return(ctx, "A1"))
	assert.ErrorIs(t, f.engine.Extend(ctx, "A1", "2025-03-01"), ErrInvalidState)
}

func TestIsOverdue(t *testing.T) {
	a := Assignment{
		ID:       "A3",
		Quantity: 1,
		DateOut:  "2025-01-01",
		DateDue:  "2025-01-15",
		Status:   StatusActive,
	}

	assert.True(t, a.IsOverdue("2025-02-01"))
	assert.False(t, a.IsOverdue("2025-01-15"), "due date itself is not overdue")
	assert.False(t, a.IsOverdue("2025-01-10"))

	// Terminal loans are never overdue, regardless of dates.
	a.Status = StatusReturned
	assert.False(t, a.IsOverdue("2025-02-01"))
	a.Status = StatusCancelled
	assert.False(t, a.IsOverdue("2025-02-01"))
}

func TestCancelledAssignmentLeavesOverdueView(t *testing.T) {
	f := newFixture(t)
	f.seed(t, 5)
	ctx := context.Background()

	req := createReq("A3", 1)
	req.DateDue = "2025-01-15"
	_, err := f.engine.Create(ctx, req)
	require.NoError(t, err)

	got, err := f.engine.Get(ctx, "A3")
	require.NoError(t, err)
	assert.True(t, got.IsOverdue("2025-02-01"))

	require.NoError(t, f.engine.Cancel(ctx, "A3"))
	got, err = f.engine.Get(ctx, "A3")
	require.NoError(t, err)
	assert.False(t, got.IsOverdue("2025-02-01"))
}

func TestQueriesKeepInsertionOrder(t *testing.T) {
	f := newFixture(t)
	f.seed(t, 10)
	ctx := context.Background()

	require.NoError(t, f.directory.Register(ctx, members.Member{
		ID: "M2", FirstName: "Luis", LastName: "Vega", Role: members.RoleAdministrator,
	}))

	for i, memberID := range []string{"M1", "M2", "M1"} {
		req := createReq(fmt.Sprintf("A%d", i+1), 1)
		req.MemberID = memberID
		_, err := f.engine.Create(ctx, req)
		require.NoError(t, err)
	}
	require.NoError(t, f.engine.Return(ctx, "A2"))

	all := f.engine.List(ctx)
	require.Len(t, all, 3)
	assert.Equal(t, []string{"A1", "A2", "A3"}, []string{all[0].ID, all[1].ID, all[2].ID})

	active := f.engine.ListActive(ctx)
	require.Len(t, active, 2)
	assert.Equal(t, "A1", active[0].ID)
	assert.Equal(t, "A3", active[1].ID)

	byMember := f.engine.ListByMember(ctx, "M1")
	require.Len(t, byMember, 2)
	byMember = f.engine.ListByMember(ctx, "M2")
	require.Len(t, byMember, 1)
	assert.Equal(t, StatusReturned, byMember[0].Status)
}

func TestLoadSkipsMalformedAndNormalizesOverdue(t *testing.T) {
	dir := t.TempDir()
	content := "A1,M1,T1,2,2025-01-01,2025-01-10,active\n" +
		"A2,M1,T1,not-a-number,2025-01-01,2025-01-10,active\n" +
		"A3,M1,T1,1,2025-01-01,2025-01-05,overdue\n" +
		"A4,M1,T1,1,2025-01-01,2025-01-10,misplaced\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "assignments.txt"), []byte(content), 0o644))

	ctx := context.Background()
	store, err := storage.NewFileStore(dir)
	require.NoError(t, err)
	log := audit.NewCapture()
	ledger, err := inventory.NewService(ctx, store, log)
	require.NoError(t, err)
	directory, err := members.NewService(ctx, store, log)
	require.NoError(t, err)

	engine, err := NewService(ctx, store, ledger, directory, log)
	require.NoError(t, err)

	all := engine.List(ctx)
	require.Len(t, all, 2)
	assert.Equal(t, "A1", all[0].ID)

	// Historical "overdue" rows come back as active; overdue stays derived.
	assert.Equal(t, "A3", all[1].ID)
	assert.Equal(t, StatusActive, all[1].Status)
}

func TestPersistWritesAllFormats(t *testing.T) {
	f := newFixture(t)
	f.seed(t, 5)
	ctx := context.Background()

	_, err := f.engine.Create(ctx, createReq("A1", 1))
	require.NoError(t, err)

	result := f.engine.Persist(ctx)
	assert.Equal(t, map[string]bool{"txt": true, "json": true, "csv": true}, result)

	raw, err := os.ReadFile(filepath.Join(f.dir, "assignments.txt"))
	require.NoError(t, err)
	assert.Equal(t, "A1,M1,T1,1,2025-01-01,2025-01-10,active\n", string(raw))
}

func TestAuditTrail(t *testing.T) {
	f := newFixture(t)
	f.seed(t, 5)
	ctx := context.Background()

	_, err := f.engine.Create(ctx, createReq("A1", 1))
	require.NoError(t, err)
	_, err = f.engine.Create(ctx, createReq("A1", 1))
	assert.ErrorIs(t, err, ErrDuplicateID)
	require.NoError(t, f.engine.Return(ctx, "A1"))

	actions := f.log.ByCategory("ACTION")
	assert.Contains(t, actions, "assignment created: A1 - Ana Ruiz - Hammer")
	assert.Contains(t, actions, "return processed: A1 - Hammer")

	failures := f.log.ByCategory("ERROR")
	assert.Contains(t, failures, "assignment rejected: id A1 already exists")
}
