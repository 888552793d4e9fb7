package services

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/amirphl/Tsuchinoko/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type unknownEvent struct{}

func (unknownEvent) EventName() string { return "unknown.event" }

func TestRedisEventPublisherRejectsUnknownKinds(t *testing.T) {
	// The dispatch happens before any network call, so no client is needed.
	publisher := &RedisEventPublisher{}

	err := publisher.Publish(context.Background(), unknownEvent{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown domain event type")
}

func TestEncodeEventWireShape(t *testing.T) {
	event := models.PingCounterIncremented{
		ID:          "c0ffee00-0000-0000-0000-000000000000",
		BeforeCount: 4,
		AfterCount:  5,
		Timestamp:   1_700_000_000_123,
	}

	payload, err := EncodeEvent(event)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(payload, &decoded))
	assert.Equal(t, "c0ffee00-0000-0000-0000-000000000000", decoded["id"])
	assert.Equal(t, float64(4), decoded["before_count"])
	assert.Equal(t, float64(5), decoded["after_count"])
	assert.Equal(t, float64(1_700_000_000_123), decoded["timestamp"])

	// The consumer must be able to round-trip the producer encoding.
	var back models.PingCounterIncremented
	require.NoError(t, json.Unmarshal(payload, &back))
	assert.Equal(t, event, back)
}

func TestNoopEventPublisher(t *testing.T) {
	publisher := NewNoopEventPublisher()

	err := publisher.Publish(context.Background(), models.PingCounterIncremented{
		ID:          "c0ffee00-0000-0000-0000-000000000000",
		BeforeCount: 0,
		AfterCount:  1,
		Timestamp:   1,
	})
	assert.NoError(t, err)
}
