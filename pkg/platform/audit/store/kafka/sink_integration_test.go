//go:build integration

package kafka

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/twmb/franz-go/pkg/kgo"

	audit "shareregistry/pkg/platform/audit"
	"shareregistry/pkg/testutil/containers"
)

func TestSink_ProducesToTopic(t *testing.T) {
	broker := containers.GetManager().GetRedpanda(t)
	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	topic := "audit-" + uuid.NewString()[:8]
	sink, err := New([]string{broker.Broker}, topic)
	require.NoError(t, err)
	defer sink.Close()

	require.NoError(t, sink.EnsureTopic(ctx, 1, 1))
	// second call tolerates an existing topic
	require.NoError(t, sink.EnsureTopic(ctx, 1, 1))

	event := audit.Event{
		ID:        uuid.New(),
		Category:  audit.CategoryCompliance,
		Timestamp: time.Now(),
		Subject:   "profile-42",
		Action:    string(audit.EventProfileCreated),
		Actor:     "ops1",
	}
	require.NoError(t, sink.Append(ctx, event))

	consumer, err := kgo.NewClient(
		kgo.SeedBrokers(broker.Broker),
		kgo.ConsumeTopics(topic),
		kgo.ConsumeResetOffset(kgo.NewOffset().AtStart()),
	)
	require.NoError(t, err)
	defer consumer.Close()

	fetches := consumer.PollFetches(ctx)
	require.Empty(t, fetches.Errors())

	var got []payload
	fetches.EachRecord(func(r *kgo.Record) {
		var p payload
		require.NoError(t, json.Unmarshal(r.Value, &p))
		assert.Equal(t, "profile-42", string(r.Key))
		got = append(got, p)
	})
	require.Len(t, got, 1)
	assert.Equal(t, "profile_created", got[0].Action)
	assert.Equal(t, "compliance", got[0].Category)
}
