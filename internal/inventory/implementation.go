// internal/inventory/implementation.go
package inventory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"toolshed/internal/audit"
	"toolshed/internal/storage"
)

const collection = "implements"

// service implements the Service interface over an in-memory collection
// loaded from the record store at construction time.
type service struct {
	mu    sync.RWMutex
	items []*Implement
	index map[string]*Implement

	store storage.Store
	log   audit.Logger
}

// NewService loads the implement collection from the store. Malformed stored
// records are skipped.
func NewService(ctx context.Context, store storage.Store, log audit.Logger) (Service, error) {
	records, err := store.Load(ctx, collection, Fields)
	if err != nil {
		return nil, fmt.Errorf("load implements: %w", err)
	}

	s := &service{
		index: make(map[string]*Implement),
		store: store,
		log:   log,
	}
	for _, rec := range records {
		im, err := fromRecord(rec)
		if err != nil {
			continue
		}
		if _, dup := s.index[im.ID]; dup {
			continue
		}
		s.items = append(s.items, im)
		s.index[im.ID] = im
	}
	return s, nil
}

func (s *service) Register(ctx context.Context, im Implement) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.index[im.ID]; exists {
		s.log.Failure(fmt.Sprintf("duplicate id registering implement: %s", im.ID))
		return ErrDuplicateID
	}
	if _, err := ParseCondition(string(im.Condition)); err != nil {
		return err
	}
	if im.Stock < 0 {
		return ErrStockNegative
	}

	stored := im
	s.items = append(s.items, &stored)
	s.index[stored.ID] = &stored
	s.log.Action(fmt.Sprintf("implement registered: %s (id %s)", stored.Name, stored.ID))
	return nil
}

func (s *service) Get(ctx context.Context, id string) (*Implement, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	im, ok := s.index[id]
	if !ok {
		return nil, ErrNotFound
	}
	copied := *im
	return &copied, nil
}

func (s *service) List(ctx context.Context) []Implement {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshot(func(*Implement) bool { return true })
}

func (s *service) Edit(ctx context.Context, id string, upd Update) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	im, ok := s.index[id]
	if !ok {
		return ErrNotFound
	}
	if upd.Stock != nil && *upd.Stock < 0 {
		return ErrStockNegative
	}
	if upd.Condition != nil {
		if _, err := ParseCondition(string(*upd.Condition)); err != nil {
			return err
		}
	}

	if upd.Name != nil {
		im.Name = *upd.Name
	}
	if upd.Category != nil {
		im.Category = *upd.Category
	}
	if upd.Stock != nil {
		im.Stock = *upd.Stock
	}
	if upd.Condition != nil {
		im.Condition = *upd.Condition
	}
	if upd.EstimatedValue != nil {
		im.EstimatedValue = *upd.EstimatedValue
	}

	s.log.Action(fmt.Sprintf("implement updated: %s (id %s)", im.Name, id))
	return nil
}

func (s *service) Remove(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	im, ok := s.index[id]
	if !ok {
		return ErrNotFound
	}
	for i, candidate := range s.items {
		if candidate.ID == id {
			s.items = append(s.items[:i], s.items[i+1:]...)
			break
		}
	}
	delete(s.index, id)
	s.log.Action(fmt.Sprintf("implement removed: %s (id %s)", im.Name, id))
	return nil
}

func (s *service) MarkCondition(ctx context.Context, id string, condition Condition) error {
	if _, err := ParseCondition(string(condition)); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	im, ok := s.index[id]
	if !ok {
		return ErrNotFound
	}
	im.Condition = condition
	s.log.Action(fmt.Sprintf("implement condition set to %s: %s", condition, id))
	return nil
}

func (s *service) ByCategory(ctx context.Context, category string) []Implement {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshot(func(im *Implement) bool {
		return strings.EqualFold(im.Category, category)
	})
}

func (s *service) LowStock(ctx context.Context, threshold int) []Implement {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshot(func(im *Implement) bool {
		return im.Stock < threshold
	})
}

func (s *service) Categories(ctx context.Context) []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	seen := make(map[string]struct{})
	var categories []string
	for _, im := range s.items {
		if _, ok := seen[im.Category]; ok {
			continue
		}
		seen[im.Category] = struct{}{}
		categories = append(categories, im.Category)
	}
	sort.Strings(categories)
	return categories
}

func (s *service) AdjustStock(ctx context.Context, id string, delta int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	im, ok := s.index[id]
	if !ok {
		return ErrNotFound
	}
	if !im.AdjustStock(delta) {
		return ErrStockNegative
	}
	return nil
}

func (s *service) HasAvailability(ctx context.Context, id string, qty int) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	im, ok := s.index[id]
	if !ok {
		return false
	}
	return im.HasAvailability(qty)
}

func (s *service) Persist(ctx context.Context) map[string]bool {
	s.mu.RLock()
	records := make([]storage.Record, 0, len(s.items))
	for _, im := range s.items {
		records = append(records, im.toRecord())
	}
	s.mu.RUnlock()

	return s.store.Save(ctx, collection, Fields, records)
}

// snapshot copies matching implements in insertion order. Caller must hold
// at least the read lock.
func (s *service) snapshot(match func(*Implement) bool) []Implement {
	var out []Implement
	for _, im := range s.items {
		if match(im) {
			out = append(out, *im)
		}
	}
	return out
}
