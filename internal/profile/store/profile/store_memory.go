package profile

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"shareregistry/internal/profile/models"
	id "shareregistry/pkg/domain"
	"shareregistry/pkg/platform/sentinel"
)

// InMemory is a map-backed profile store for tests and single-process runs.
// Profiles are deep-copied on the way in and out.
type InMemory struct {
	mu         sync.RWMutex
	byID       map[id.ProfileID]*models.ClientProfile
	byClientID map[string]id.ProfileID
}

func NewInMemory() *InMemory {
	return &InMemory{
		byID:       make(map[id.ProfileID]*models.ClientProfile),
		byClientID: make(map[string]id.ProfileID),
	}
}

func (s *InMemory) Insert(_ context.Context, p *models.ClientProfile) error {
	if err := p.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.byID[p.ID]; ok {
		return fmt.Errorf("profile %s: %w", p.ID, sentinel.ErrConflict)
	}
	if _, ok := s.byClientID[p.ClientID]; ok {
		return fmt.Errorf("client id %q: %w", p.ClientID, sentinel.ErrConflict)
	}
	s.byID[p.ID] = p.Clone()
	s.byClientID[p.ClientID] = p.ID
	return nil
}

func (s *InMemory) FindByID(_ context.Context, profileID id.ProfileID) (*models.ClientProfile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.byID[profileID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return p.Clone(), nil
}

func (s *InMemory) FindMany(_ context.Context, filter Filter, page Page) (*PageResult, error) {
	page = page.Normalized()

	s.mu.RLock()
	matched := make([]*models.ClientProfile, 0, len(s.byID))
	for _, p := range s.byID {
		if filter.matches(p) {
			matched = append(matched, p)
		}
	}
	s.mu.RUnlock()

	sort.Slice(matched, func(i, j int) bool {
		if !matched[i].CreatedAt.Equal(matched[j].CreatedAt) {
			return matched[i].CreatedAt.After(matched[j].CreatedAt)
		}
		return matched[i].ID.String() > matched[j].ID.String()
	})

	result := &PageResult{Page: page, Total: len(matched), Items: []*models.ClientProfile{}}
	start := page.Offset()
	if start >= len(matched) {
		return result, nil
	}
	end := min(start+page.Size, len(matched))
	for _, p := range matched[start:end] {
		result.Items = append(result.Items, p.Clone())
	}
	return result, nil
}

func (s *InMemory) Replace(_ context.Context, p *models.ClientProfile) error {
	if err := p.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.byID[p.ID]
	if !ok {
		return sentinel.ErrNotFound
	}
	if owner, taken := s.byClientID[p.ClientID]; taken && owner != p.ID {
		return fmt.Errorf("client id %q: %w", p.ClientID, sentinel.ErrConflict)
	}
	delete(s.byClientID, current.ClientID)
	s.byID[p.ID] = p.Clone()
	s.byClientID[p.ClientID] = p.ID
	return nil
}

func (s *InMemory) DeleteByID(_ context.Context, profileID id.ProfileID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.byID[profileID]
	if !ok {
		return sentinel.ErrNotFound
	}
	delete(s.byID, profileID)
	delete(s.byClientID, p.ClientID)
	return nil
}

// Ping always succeeds; it lets readiness checks treat every store alike.
func (s *InMemory) Ping(context.Context) error { return nil }
