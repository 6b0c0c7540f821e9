package user

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"shareregistry/internal/auth/models"
	id "shareregistry/pkg/domain"
	"shareregistry/pkg/platform/sentinel"
)

// ErrNotFound is returned when a requested user is not in the store.
var ErrNotFound = sentinel.ErrNotFound

// InMemoryUserStore keeps accounts in maps guarded by a RWMutex.
// Suitable for tests and single-process deployments without Postgres.
type InMemoryUserStore struct {
	mu         sync.RWMutex
	users      map[id.UserID]*models.User
	byUsername map[string]id.UserID
}

func New() *InMemoryUserStore {
	return &InMemoryUserStore{
		users:      make(map[id.UserID]*models.User),
		byUsername: make(map[string]id.UserID),
	}
}

func (s *InMemoryUserStore) Insert(_ context.Context, user *models.User) error {
	if user == nil {
		return fmt.Errorf("user is required")
	}
	if err := user.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, taken := s.byUsername[user.Username]; taken {
		return fmt.Errorf("username %q: %w", user.Username, sentinel.ErrConflict)
	}
	if _, exists := s.users[user.ID]; exists {
		return fmt.Errorf("user %s: %w", user.ID, sentinel.ErrConflict)
	}
	s.users[user.ID] = user.Clone()
	s.byUsername[user.Username] = user.ID
	return nil
}

func (s *InMemoryUserStore) Update(_ context.Context, user *models.User) error {
	if err := user.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	current, ok := s.users[user.ID]
	if !ok {
		return fmt.Errorf("user %s: %w", user.ID, ErrNotFound)
	}
	if current.Username != user.Username {
		if _, taken := s.byUsername[user.Username]; taken {
			return fmt.Errorf("username %q: %w", user.Username, sentinel.ErrConflict)
		}
		delete(s.byUsername, current.Username)
		s.byUsername[user.Username] = user.ID
	}
	s.users[user.ID] = user.Clone()
	return nil
}

func (s *InMemoryUserStore) FindByID(_ context.Context, userID id.UserID) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if u, ok := s.users[userID]; ok {
		return u.Clone(), nil
	}
	return nil, fmt.Errorf("user %s: %w", userID, ErrNotFound)
}

func (s *InMemoryUserStore) FindByUsername(_ context.Context, username string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if userID, ok := s.byUsername[strings.ToLower(username)]; ok {
		return s.users[userID].Clone(), nil
	}
	return nil, fmt.Errorf("user %q: %w", username, ErrNotFound)
}

// FindByEmail matches case-insensitively. When several accounts share an
// address the oldest wins, matching the Postgres store.
func (s *InMemoryUserStore) FindByEmail(_ context.Context, email string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var found *models.User
	for _, u := range s.users {
		if u.Email == "" || !strings.EqualFold(u.Email, email) {
			continue
		}
		if found == nil || u.CreatedAt.Before(found.CreatedAt) {
			found = u
		}
	}
	if found == nil {
		return nil, fmt.Errorf("user with email %q: %w", email, ErrNotFound)
	}
	return found.Clone(), nil
}

func (s *InMemoryUserStore) ListByProfile(_ context.Context, profileID id.ProfileID) ([]*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*models.User
	for _, u := range s.users {
		if u.ProfileID != nil && *u.ProfileID == profileID {
			out = append(out, u.Clone())
		}
	}
	sortByCreated(out)
	return out, nil
}

// List returns every account, oldest first.
func (s *InMemoryUserStore) List(_ context.Context) ([]*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*models.User, 0, len(s.users))
	for _, u := range s.users {
		out = append(out, u.Clone())
	}
	sortByCreated(out)
	return out, nil
}

func sortByCreated(users []*models.User) {
	sort.Slice(users, func(i, j int) bool {
		if users[i].CreatedAt.Equal(users[j].CreatedAt) {
			return users[i].Username < users[j].Username
		}
		return users[i].CreatedAt.Before(users[j].CreatedAt)
	})
}
