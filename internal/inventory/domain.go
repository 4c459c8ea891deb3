// internal/inventory/domain.go
package inventory

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/shopspring/decimal"

	"toolshed/internal/storage"
)

var (
	ErrDuplicateID      = errors.New("implement id already in use")
	ErrNotFound         = errors.New("implement not found")
	ErrStockNegative    = errors.New("stock adjustment would go negative")
	ErrInvalidCondition = errors.New("invalid implement condition")
)

// Condition describes the physical state of an implement.
type Condition string

const (
	ConditionAvailable   Condition = "available"
	ConditionLoaned      Condition = "loaned"
	ConditionDamaged     Condition = "damaged"
	ConditionMaintenance Condition = "maintenance"
)

// ParseCondition validates a stored condition value.
func ParseCondition(s string) (Condition, error) {
	switch c := Condition(s); c {
	case ConditionAvailable, ConditionLoaned, ConditionDamaged, ConditionMaintenance:
		return c, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidCondition, s)
}

// Implement is a shared tool tracked by the ledger.
type Implement struct {
	ID             string          `json:"id"`
	Name           string          `json:"name"`
	Category       string          `json:"category"`
	Stock          int             `json:"stock"`
	Condition      Condition       `json:"condition"`
	EstimatedValue decimal.Decimal `json:"estimated_value"`
}

// AdjustStock applies a delta atomically. A delta that would drive stock
// negative is rejected without mutation; this is the only path by which loan
// activity changes stock.
func (im *Implement) AdjustStock(delta int) bool {
	next := im.Stock + delta
	if next < 0 {
		return false
	}
	im.Stock = next
	return true
}

// HasAvailability reports whether a loan for qty units can be served: enough
// stock and the implement in available condition.
func (im *Implement) HasAvailability(qty int) bool {
	return im.Stock >= qty && im.Condition == ConditionAvailable
}

// Fields is the persisted record shape, in on-disk order.
var Fields = []string{"id", "title", "category", "stock", "condition", "estimated_value"}

func (im *Implement) toRecord() storage.Record {
	return storage.Record{
		"id":              im.ID,
		"title":           im.Name,
		"category":        im.Category,
		"stock":           strconv.Itoa(im.Stock),
		"condition":       string(im.Condition),
		"estimated_value": im.EstimatedValue.String(),
	}
}

// fromRecord parses a stored record. Records with unparsable numeric or enum
// fields are rejected so the caller can skip them.
func fromRecord(rec storage.Record) (*Implement, error) {
	stock, err := strconv.Atoi(rec["stock"])
	if err != nil {
		return nil, fmt.Errorf("parse stock: %w", err)
	}
	value, err := decimal.NewFromString(rec["estimated_value"])
	if err != nil {
		return nil, fmt.Errorf("parse estimated value: %w", err)
	}
	condition, err := ParseCondition(rec["condition"])
	if err != nil {
		return nil, err
	}
	return &Implement{
		ID:             rec["id"],
		Name:           rec["title"],
		Category:       rec["category"],
		Stock:          stock,
		Condition:      condition,
		EstimatedValue: value,
	}, nil
}
