package revocation

import (
	"context"
	"sync"
	"time"
)

// InMemoryTRL is the single-process revocation list used when Redis is not configured.
type InMemoryTRL struct {
	mu      sync.Mutex
	revoked map[string]time.Time
	now     func() time.Time
}

type Option func(*InMemoryTRL)

// WithClock overrides time.Now for expiry checks.
func WithClock(now func() time.Time) Option {
	return func(t *InMemoryTRL) {
		if now != nil {
			t.now = now
		}
	}
}

func NewInMemoryTRL(opts ...Option) *InMemoryTRL {
	t := &InMemoryTRL{revoked: make(map[string]time.Time), now: time.Now}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

func (t *InMemoryTRL) RevokeToken(_ context.Context, jti string, ttl time.Duration) error {
	if jti == "" {
		return nil
	}
	if err := validateTTL(ttl); err != nil {
		return err
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	now := t.now()
	t.sweep(now)
	t.revoked[jti] = now.Add(ttl)
	return nil
}

func (t *InMemoryTRL) IsTokenRevoked(_ context.Context, jti string) (bool, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	expiresAt, ok := t.revoked[jti]
	if !ok {
		return false, nil
	}
	if !t.now().Before(expiresAt) {
		delete(t.revoked, jti)
		return false, nil
	}
	return true, nil
}

// sweep drops expired entries. Callers hold mu.
func (t *InMemoryTRL) sweep(now time.Time) {
	for jti, expiresAt := range t.revoked {
		if !now.Before(expiresAt) {
			delete(t.revoked, jti)
		}
	}
}
