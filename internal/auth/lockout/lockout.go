// Package lockout throttles password guessing. Failed logins are counted per
// identifier and client IP; once a key reaches the attempt limit inside the
// window it is locked for a fixed period.
package lockout

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"shareregistry/pkg/requestcontext"
)

// Record is the failure state of one identifier+IP key.
type Record struct {
	Key           string
	FailureCount  int
	LastFailureAt time.Time
	LockedUntil   *time.Time
}

func (r *Record) IsLockedAt(now time.Time) bool {
	return r.LockedUntil != nil && now.Before(*r.LockedUntil)
}

// Decision is the outcome of Check. RetryAfter is zero when Allowed.
type Decision struct {
	Allowed    bool
	RetryAfter time.Duration
}

type Config struct {
	Attempts     int
	Window       time.Duration
	LockDuration time.Duration
}

// DefaultConfig allows five failures per 15 minutes, then locks for 15 minutes.
func DefaultConfig() Config {
	return Config{Attempts: 5, Window: 15 * time.Minute, LockDuration: 15 * time.Minute}
}

// Store persists records. RecordFailure starts a fresh count when the last
// failure is older than window. Get returns nil, nil for unknown keys.
type Store interface {
	Get(ctx context.Context, key string) (*Record, error)
	RecordFailure(ctx context.Context, key string, now time.Time, window time.Duration) (*Record, error)
	Lock(ctx context.Context, key string, until time.Time) error
	Clear(ctx context.Context, key string) error
}

type Service struct {
	store  Store
	cfg    Config
	logger *slog.Logger
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithConfig(cfg Config) Option {
	return func(s *Service) {
		if cfg.Attempts > 0 {
			s.cfg.Attempts = cfg.Attempts
		}
		if cfg.Window > 0 {
			s.cfg.Window = cfg.Window
		}
		if cfg.LockDuration > 0 {
			s.cfg.LockDuration = cfg.LockDuration
		}
	}
}

func New(store Store, opts ...Option) (*Service, error) {
	if store == nil {
		return nil, errors.New("lockout store is required")
	}
	s := &Service{store: store, cfg: DefaultConfig(), logger: slog.Default()}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Key builds the store key. ':' in either segment is escaped so an identifier
// cannot spill into the IP segment.
func Key(identifier, ip string) string {
	clean := func(v string) string { return strings.ReplaceAll(v, ":", "_") }
	return clean(strings.ToLower(strings.TrimSpace(identifier))) + ":" + clean(ip)
}

// Check reports whether another attempt is allowed for identifier from ip.
func (s *Service) Check(ctx context.Context, identifier, ip string) (Decision, error) {
	rec, err := s.store.Get(ctx, Key(identifier, ip))
	if err != nil {
		return Decision{}, err
	}
	now := requestcontext.Now(ctx)
	if rec != nil && rec.IsLockedAt(now) {
		return Decision{Allowed: false, RetryAfter: rec.LockedUntil.Sub(now)}, nil
	}
	return Decision{Allowed: true}, nil
}

// RecordFailure counts a failed attempt and locks the key when the limit is
// reached. The returned record reflects any lock just applied.
func (s *Service) RecordFailure(ctx context.Context, identifier, ip string) (Record, error) {
	key := Key(identifier, ip)
	now := requestcontext.Now(ctx)
	rec, err := s.store.RecordFailure(ctx, key, now, s.cfg.Window)
	if err != nil {
		return Record{}, err
	}
	if rec.FailureCount >= s.cfg.Attempts && !rec.IsLockedAt(now) {
		until := now.Add(s.cfg.LockDuration)
		if err := s.store.Lock(ctx, key, until); err != nil {
			return *rec, err
		}
		rec.LockedUntil = &until
		s.logger.WarnContext(ctx, "login locked after repeated failures",
			"identifier", identifier,
			"failures", rec.FailureCount,
			"locked_until", until,
		)
	}
	return *rec, nil
}

// Clear forgets the failures of a key, typically after a successful login.
func (s *Service) Clear(ctx context.Context, identifier, ip string) error {
	return s.store.Clear(ctx, Key(identifier, ip))
}
