// Package services contains clients for external systems used by the business flows
package services

import (
	"context"
	"encoding/json"
	"fmt"

	businessflow "github.com/amirphl/Tsuchinoko/business_flow"
	"github.com/amirphl/Tsuchinoko/models"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/redis/go-redis/v9"
)

var (
	eventsPublishedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "domain_events_published_total",
			Help: "Total number of domain events published to the event channel",
		},
		[]string{"event"},
	)

	eventPublishFailuresTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "domain_event_publish_failures_total",
			Help: "Total number of failed domain event publish attempts",
		},
		[]string{"event"},
	)
)

// RedisEventPublisher publishes domain events to Redis pub/sub. Delivery is best
// effort and at-least-once from the consumer's point of view; the counter state is
// already persisted before Publish runs, so a failure here never affects it.
type RedisEventPublisher struct {
	client *redis.Client
}

func NewRedisEventPublisher(client *redis.Client) businessflow.EventPublisher {
	return &RedisEventPublisher{client: client}
}

// Publish dispatches on the concrete event kind. The switch is exhaustive over the
// known kinds on purpose: an unrecognized variant is an error, not a silent no-op.
func (p *RedisEventPublisher) Publish(ctx context.Context, event models.DomainEvent) error {
	switch ev := event.(type) {
	case models.PingCounterIncremented:
		return p.publish(ctx, ev.EventName(), ev)
	default:
		return fmt.Errorf("unknown domain event type %T", event)
	}
}

func (p *RedisEventPublisher) publish(ctx context.Context, channel string, event any) error {
	payload, err := json.Marshal(event)
	if err != nil {
		eventPublishFailuresTotal.WithLabelValues(channel).Inc()
		return fmt.Errorf("failed to encode event for %s: %w", channel, err)
	}
	if err := p.client.Publish(ctx, channel, payload).Err(); err != nil {
		eventPublishFailuresTotal.WithLabelValues(channel).Inc()
		return fmt.Errorf("failed to publish event to %s: %w", channel, err)
	}
	eventsPublishedTotal.WithLabelValues(channel).Inc()
	return nil
}

// EncodeEvent exposes the wire encoding used by Publish. The stats consumer and
// tests rely on it to stay in sync with the producer side.
func EncodeEvent(event models.DomainEvent) ([]byte, error) {
	return json.Marshal(event)
}

// NoopEventPublisher discards events. Used when the redis event channel is
// disabled; the counter still works, only the stats projection goes dark.
type NoopEventPublisher struct{}

func NewNoopEventPublisher() businessflow.EventPublisher {
	return &NoopEventPublisher{}
}

func (p *NoopEventPublisher) Publish(ctx context.Context, event models.DomainEvent) error {
	return nil
}
