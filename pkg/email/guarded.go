package email

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"shareregistry/pkg/platform/circuit"
)

// ErrCircuitOpen is returned when a message was skipped because the relay
// has been failing.
var ErrCircuitOpen = errors.New("email: circuit open, message not sent")

// GuardedSender wraps a Sender with a circuit breaker. While the breaker is
// open, messages are skipped except for one probe per probe interval; a
// successful probe closes the breaker again.
type GuardedSender struct {
	primary       Sender
	breaker       *circuit.Breaker
	logger        *slog.Logger
	probeInterval time.Duration
	onStateChange func(open bool)
	now           func() time.Time

	mu        sync.Mutex
	lastProbe time.Time
}

type GuardOption func(*GuardedSender)

func WithProbeInterval(d time.Duration) GuardOption {
	return func(g *GuardedSender) {
		if d > 0 {
			g.probeInterval = d
		}
	}
}

// WithStateChange registers a callback run when the breaker opens or closes.
func WithStateChange(fn func(open bool)) GuardOption {
	return func(g *GuardedSender) {
		g.onStateChange = fn
	}
}

func WithGuardLogger(logger *slog.Logger) GuardOption {
	return func(g *GuardedSender) {
		g.logger = logger
	}
}

func withClock(now func() time.Time) GuardOption {
	return func(g *GuardedSender) {
		g.now = now
	}
}

func NewGuardedSender(primary Sender, breaker *circuit.Breaker, opts ...GuardOption) *GuardedSender {
	g := &GuardedSender{
		primary:       primary,
		breaker:       breaker,
		logger:        slog.Default(),
		probeInterval: 30 * time.Second,
		now:           time.Now,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

func (g *GuardedSender) Send(ctx context.Context, msg Message) error {
	if g.breaker.IsOpen() && !g.takeProbe() {
		return ErrCircuitOpen
	}

	err := g.primary.Send(ctx, msg)
	if err != nil {
		if _, change := g.breaker.RecordFailure(); change.Opened {
			g.logger.WarnContext(ctx, "mail circuit opened", "breaker", g.breaker.Name(), "error", err)
			g.notify(true)
		}
		return err
	}
	if _, change := g.breaker.RecordSuccess(); change.Closed {
		g.logger.InfoContext(ctx, "mail circuit closed", "breaker", g.breaker.Name())
		g.notify(false)
	}
	return nil
}

func (g *GuardedSender) takeProbe() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	now := g.now()
	if now.Sub(g.lastProbe) < g.probeInterval {
		return false
	}
	g.lastProbe = now
	return true
}

func (g *GuardedSender) notify(open bool) {
	if g.onStateChange != nil {
		g.onStateChange(open)
	}
}
