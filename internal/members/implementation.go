// internal/members/implementation.go
package members

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"toolshed/internal/audit"
	"toolshed/internal/storage"
)

const collection = "members"

// service implements the Service interface.
type service struct {
	mu      sync.RWMutex
	roster  []*Member
	index   map[string]*Member
	limiter *rate.Limiter

	store storage.Store
	log   audit.Logger
}

// NewService loads the member roster from the store. Records with an
// unrecognized role are skipped.
func NewService(ctx context.Context, store storage.Store, log audit.Logger) (Service, error) {
	records, err := store.Load(ctx, collection, Fields)
	if err != nil {
		return nil, fmt.Errorf("load members: %w", err)
	}

	s := &service{
		index:   make(map[string]*Member),
		limiter: rate.NewLimiter(rate.Every(time.Second), 20),
		store:   store,
		log:     log,
	}
	for _, rec := range records {
		m, err := fromRecord(rec)
		if err != nil {
			continue
		}
		if _, dup := s.index[m.ID]; dup {
			continue
		}
		s.roster = append(s.roster, m)
		s.index[m.ID] = m
	}
	return s, nil
}

func (s *service) Register(ctx context.Context, m Member) error {
	if !s.limiter.Allow() {
		return ErrRateLimited
	}
	if _, err := ParseRole(string(m.Role)); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.index[m.ID]; exists {
		s.log.Failure(fmt.Sprintf("duplicate id registering member: %s", m.ID))
		return ErrDuplicateID
	}

	stored := m
	s.roster = append(s.roster, &stored)
	s.index[stored.ID] = &stored
	s.log.Action(fmt.Sprintf("member registered: %s (id %s)", stored.FullName(), stored.ID))
	return nil
}

func (s *service) Get(ctx context.Context, id string) (*Member, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	m, ok := s.index[id]
	if !ok {
		return nil, ErrNotFound
	}
	copied := *m
	return &copied, nil
}

func (s *service) List(ctx context.Context) []Member {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Member, 0, len(s.roster))
	for _, m := range s.roster {
		out = append(out, *m)
	}
	return out
}

func (s *service) Edit(ctx context.Context, id string, upd Update) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	m, ok := s.index[id]
	if !ok {
		return ErrNotFound
	}
	if upd.Role != nil {
		if _, err := ParseRole(string(*upd.Role)); err != nil {
			return err
		}
	}
	if upd.FirstName != nil {
		m.FirstName = *upd.FirstName
	}
	if upd.LastName != nil {
		m.LastName = *upd.LastName
	}
	if upd.Phone != nil {
		m.Phone = *upd.Phone
	}
	if upd.Address != nil {
		m.Address = *upd.Address
	}
	if upd.Role != nil {
		m.Role = *upd.Role
	}

	s.log.Action(fmt.Sprintf("member updated: %s (id %s)", m.FullName(), id))
	return nil
}

// Remove deletes a member even when active assignments still reference them;
// the resulting dangling references are tolerated by design and rendered as
// "Unknown" by consumers.
func (s *service) Remove(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	m, ok := s.index[id]
	if !ok {
		return ErrNotFound
	}
	for i, candidate := range s.roster {
		if candidate.ID == id {
			s.roster = append(s.roster[:i], s.roster[i+1:]...)
			break
		}
	}
	delete(s.index, id)
	s.log.Action(fmt.Sprintf("member removed: %s (id %s)", m.FullName(), id))
	return nil
}

func (s *service) Persist(ctx context.Context) map[string]bool {
	s.mu.RLock()
	records := make([]storage.Record, 0, len(s.roster))
	for _, m := range s.roster {
		records = append(records, m.toRecord())
	}
	s.mu.RUnlock()

	return s.store.Save(ctx, collection, Fields, records)
}
