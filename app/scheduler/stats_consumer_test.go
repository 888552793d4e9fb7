package scheduler

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log"
	"testing"
	"time"

	"github.com/amirphl/Tsuchinoko/app/dto"
	"github.com/amirphl/Tsuchinoko/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeStatsFlow records Save calls and satisfies the flow contract for the
// methods the consumer never touches.
type fakeStatsFlow struct {
	saved   []savedBucket
	saveErr error
}

type savedBucket struct {
	seconds int64
	value   int64
}

func (f *fakeStatsFlow) Save(ctx context.Context, seconds models.TimeInSecond, value int64) (*dto.PingStatsDTO, error) {
	if f.saveErr != nil {
		return nil, f.saveErr
	}
	f.saved = append(f.saved, savedBucket{seconds: seconds.Value(), value: value})
	return &dto.PingStatsDTO{Seconds: seconds.Value(), Value: value}, nil
}

func (f *fakeStatsFlow) Query(ctx context.Context, frame models.TimeFrame) ([]dto.PingStatsDTO, error) {
	return nil, nil
}

func (f *fakeStatsFlow) QueryRange(ctx context.Context, rng models.RangeInSecond) ([]dto.PingStatsDTO, error) {
	return nil, nil
}

func (f *fakeStatsFlow) Export(ctx context.Context, frame models.TimeFrame) (string, []byte, error) {
	return "", nil, nil
}

func newTestConsumer(flow *fakeStatsFlow) *StatsConsumer {
	return &StatsConsumer{
		flow:        flow,
		logger:      log.New(io.Discard, "", 0),
		saveTimeout: time.Second,
	}
}

func TestStatsConsumerHandle(t *testing.T) {
	t.Run("ProjectsEventIntoSecondBucket", func(t *testing.T) {
		flow := &fakeStatsFlow{}
		consumer := newTestConsumer(flow)

		event := models.PingCounterIncremented{
			ID:          "c0ffee00-0000-0000-0000-000000000000",
			BeforeCount: 6,
			AfterCount:  7,
			Timestamp:   1_700_000_000_456, // epoch milliseconds
		}
		payload, err := json.Marshal(event)
		require.NoError(t, err)

		consumer.handle(context.Background(), string(payload))

		require.Len(t, flow.saved, 1)
		assert.Equal(t, int64(1_700_000_000), flow.saved[0].seconds)
		assert.Equal(t, int64(7), flow.saved[0].value)
	})

	t.Run("DropsMalformedPayload", func(t *testing.T) {
		flow := &fakeStatsFlow{}
		consumer := newTestConsumer(flow)

		consumer.handle(context.Background(), "{not json")

		assert.Empty(t, flow.saved)
	})

	t.Run("DropsUnusableTimestamp", func(t *testing.T) {
		flow := &fakeStatsFlow{}
		consumer := newTestConsumer(flow)

		payload, err := json.Marshal(models.PingCounterIncremented{
			ID:         "c0ffee00-0000-0000-0000-000000000000",
			AfterCount: 1,
			Timestamp:  -5_000,
		})
		require.NoError(t, err)

		consumer.handle(context.Background(), string(payload))

		assert.Empty(t, flow.saved)
	})

	t.Run("SaveFailureDoesNotPanic", func(t *testing.T) {
		flow := &fakeStatsFlow{saveErr: errors.New("db down")}
		consumer := newTestConsumer(flow)

		payload, err := json.Marshal(models.PingCounterIncremented{
			ID:         "c0ffee00-0000-0000-0000-000000000000",
			AfterCount: 1,
			Timestamp:  1_700_000_000_000,
		})
		require.NoError(t, err)

		consumer.handle(context.Background(), string(payload))

		assert.Empty(t, flow.saved)
	})
}
