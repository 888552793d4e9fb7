package tests

import (
	"context"
	"errors"
	"sync"
	"testing"

	businessflow "github.com/amirphl/Tsuchinoko/business_flow"
	"github.com/amirphl/Tsuchinoko/models"
	"github.com/amirphl/Tsuchinoko/repository"
	testingutil "github.com/amirphl/Tsuchinoko/testing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recordingPublisher captures published events in order for assertions
type recordingPublisher struct {
	mu     sync.Mutex
	events []models.DomainEvent
	err    error
}

func (p *recordingPublisher) Publish(ctx context.Context, event models.DomainEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.events = append(p.events, event)
	return nil
}

func (p *recordingPublisher) published() []models.DomainEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]models.DomainEvent, len(p.events))
	copy(out, p.events)
	return out
}

func TestPingCounterFlow(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		repo := repository.NewPingCounterRepository(testDB.DB)
		publisher := &recordingPublisher{}
		flow := businessflow.NewPingCounterFlow(repo, publisher)
		ctx := testingutil.CreateTestContext()

		t.Run("GetCreatesOnFirstRead", func(t *testing.T) {
			counter, err := flow.Get(ctx)
			require.NoError(t, err)
			require.NotNil(t, counter)
			assert.NotEmpty(t, counter.ID)
			assert.Equal(t, int64(0), counter.Count)

			// A pure read emits nothing.
			assert.Empty(t, publisher.published())
		})

		t.Run("GetIsStable", func(t *testing.T) {
			first, err := flow.Get(ctx)
			require.NoError(t, err)
			second, err := flow.Get(ctx)
			require.NoError(t, err)
			assert.Equal(t, first.ID, second.ID)
			assert.Equal(t, first.Count, second.Count)
		})

		t.Run("PingIncrementsAndPublishes", func(t *testing.T) {
			before, err := flow.Get(ctx)
			require.NoError(t, err)

			after, err := flow.Ping(ctx)
			require.NoError(t, err)
			assert.Equal(t, before.ID, after.ID)
			assert.Equal(t, before.Count+1, after.Count)

			events := publisher.published()
			require.Len(t, events, 1)
			event, ok := events[0].(models.PingCounterIncremented)
			require.True(t, ok)
			assert.Equal(t, before.ID, event.ID)
			assert.Equal(t, before.Count, event.BeforeCount)
			assert.Equal(t, after.Count, event.AfterCount)
		})

		t.Run("RepeatedPingsChainContiguously", func(t *testing.T) {
			start, err := flow.Get(ctx)
			require.NoError(t, err)
			already := len(publisher.published())

			const pings = 5
			for i := 0; i < pings; i++ {
				_, err := flow.Ping(ctx)
				require.NoError(t, err)
			}

			final, err := flow.Get(ctx)
			require.NoError(t, err)
			assert.Equal(t, start.Count+pings, final.Count)

			events := publisher.published()[already:]
			require.Len(t, events, pings)
			for i, raw := range events {
				event := raw.(models.PingCounterIncremented)
				assert.Equal(t, start.Count+int64(i), event.BeforeCount)
				assert.Equal(t, start.Count+int64(i)+1, event.AfterCount)
			}
		})

		t.Run("PublishFailureDoesNotFailPing", func(t *testing.T) {
			before, err := flow.Get(ctx)
			require.NoError(t, err)

			publisher.err = errors.New("broker unavailable")
			defer func() { publisher.err = nil }()

			after, err := flow.Ping(ctx)
			require.NoError(t, err)
			assert.Equal(t, before.Count+1, after.Count)

			// The increment is durable even though the event never left.
			persisted, err := flow.Get(ctx)
			require.NoError(t, err)
			assert.Equal(t, after.Count, persisted.Count)
		})

		return nil
	})
	require.NoError(t, err)
}
