package publisher

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	audit "shareregistry/pkg/platform/audit"
	"shareregistry/pkg/platform/audit/store/memory"
	"shareregistry/pkg/requestcontext"
)

func TestPublisher_SyncMode(t *testing.T) {
	store := memory.NewInMemoryStore()
	pub := NewPublisher(store)
	defer pub.Close()

	err := pub.Emit(context.Background(), audit.Event{
		Subject: "profile-1",
		Action:  string(audit.EventProfileCreated),
	})
	require.NoError(t, err)

	events, err := pub.List(context.Background(), "profile-1")
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, audit.CategoryCompliance, events[0].Category)
	assert.NotEmpty(t, events[0].ID)
}

func TestPublisher_EnrichesFromContext(t *testing.T) {
	store := memory.NewInMemoryStore()
	pub := NewPublisher(store)

	ctx := requestcontext.WithRequestID(context.Background(), "req-9")
	ctx = requestcontext.WithClientMetadata(ctx, "203.0.113.7", "curl/8")
	ctx = requestcontext.WithPrincipal(ctx, requestcontext.Principal{Username: "ops1", Role: "employee"})

	require.NoError(t, pub.Emit(ctx, audit.Event{Subject: "p", Action: string(audit.EventHoldingReviewed)}))

	got := store.All()
	require.Len(t, got, 1)
	assert.Equal(t, "req-9", got[0].RequestID)
	assert.Equal(t, "ops1", got[0].Actor)
	assert.Equal(t, "203.0.113.7", got[0].IP)
}

func TestPublisher_AsyncDrainsOnClose(t *testing.T) {
	store := memory.NewInMemoryStore()
	extra := memory.NewInMemoryStore()
	pub := NewPublisher(store, WithAsyncBuffer(100), WithSink(extra))

	for range 10 {
		require.NoError(t, pub.Emit(context.Background(), audit.Event{
			Subject: "profile-2",
			Action:  string(audit.EventProfileUpdated),
		}))
	}
	require.NoError(t, pub.Close())

	events, err := store.ListBySubject(context.Background(), "profile-2", 0)
	require.NoError(t, err)
	assert.Len(t, events, 10, "all events should be drained on close")
	assert.Len(t, extra.All(), 10, "extra sinks receive the same events")
}

func TestPublisher_BufferFullNeverBlocks(t *testing.T) {
	store := memory.NewInMemoryStore()
	pub := NewPublisher(store, WithAsyncBuffer(1))
	defer pub.Close()

	var wg sync.WaitGroup
	for range 50 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := pub.Emit(context.Background(), audit.Event{Action: string(audit.EventUserLoggedIn)})
			if err != nil {
				assert.ErrorIs(t, err, ErrBufferFull)
			}
		}()
	}

	finished := make(chan struct{})
	go func() { wg.Wait(); close(finished) }()
	select {
	case <-finished:
	case <-time.After(2 * time.Second):
		t.Fatal("Emit blocked on a full buffer")
	}
}

func TestPublisher_PreservesExistingTimestamp(t *testing.T) {
	store := memory.NewInMemoryStore()
	pub := NewPublisher(store)

	at := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, pub.Emit(context.Background(), audit.Event{
		Subject:   "u",
		Action:    string(audit.EventPasswordChanged),
		Timestamp: at,
	}))

	events, err := pub.List(context.Background(), "u")
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, at, events[0].Timestamp)
	assert.Equal(t, audit.CategorySecurity, events[0].Category)
}

func TestPublisher_EmitAfterCloseIsDropped(t *testing.T) {
	pub := NewPublisher(memory.NewInMemoryStore(), WithAsyncBuffer(4))
	require.NoError(t, pub.Close())
	assert.ErrorIs(t, pub.Emit(context.Background(), audit.Event{Action: "x"}), ErrBufferFull)
}
