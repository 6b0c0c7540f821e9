package email

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shareregistry/pkg/platform/circuit"
)

type fakeSender struct {
	mu    sync.Mutex
	err   error
	calls int
}

func (f *fakeSender) Send(context.Context, Message) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	return f.err
}

func TestGuardedSenderOpensAndProbes(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	primary := &fakeSender{err: errors.New("relay down")}
	var states []bool
	g := NewGuardedSender(primary, circuit.New("smtp", circuit.WithFailureThreshold(2)),
		WithProbeInterval(time.Minute),
		WithStateChange(func(open bool) { states = append(states, open) }),
		withClock(func() time.Time { return now }),
	)

	require.Error(t, g.Send(ctx, Message{To: "a@example.com"}))
	require.Error(t, g.Send(ctx, Message{To: "a@example.com"}))
	assert.Equal(t, []bool{true}, states)

	// first call after opening is a probe, the next one is skipped
	require.Error(t, g.Send(ctx, Message{To: "a@example.com"}))
	require.ErrorIs(t, g.Send(ctx, Message{To: "a@example.com"}), ErrCircuitOpen)
	assert.Equal(t, 3, primary.calls)

	primary.err = nil
	now = now.Add(2 * time.Minute)
	require.NoError(t, g.Send(ctx, Message{To: "a@example.com"}))
	assert.Equal(t, []bool{true, false}, states)

	require.NoError(t, g.Send(ctx, Message{To: "a@example.com"}))
	assert.Equal(t, 5, primary.calls)
}
