package worker

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	audit "shareregistry/pkg/platform/audit"
	"shareregistry/pkg/platform/audit/store/memory"
)

type failingSink struct {
	mu    sync.Mutex
	calls int
}

func (f *failingSink) Append(context.Context, audit.Event) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	return errors.New("broker down")
}

func TestWorker_DrainsUntilInboxClosed(t *testing.T) {
	store := memory.NewInMemoryStore()
	broken := &failingSink{}
	inbox := make(chan audit.Event, 3)

	inbox <- audit.Event{Subject: "p-1", Action: string(audit.EventProfileCreated)}
	inbox <- audit.Event{Subject: "p-1", Action: string(audit.EventProfileUpdated)}
	close(inbox)

	err := NewWorker(inbox, nil, broken, store).Run(context.Background())
	require.NoError(t, err)

	events, err := store.ListBySubject(context.Background(), "p-1", 10)
	require.NoError(t, err)
	assert.Len(t, events, 2, "a failing sink must not block the others")
	assert.Equal(t, 2, broken.calls)
}

func TestWorker_StopsOnCancel(t *testing.T) {
	inbox := make(chan audit.Event)
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() { done <- NewWorker(inbox, nil).Run(ctx) }()
	cancel()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("worker did not stop")
	}
}
