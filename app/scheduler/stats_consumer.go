// Package scheduler contains long-running background workers
package scheduler

import (
	"context"
	"encoding/json"
	"log"
	"time"

	businessflow "github.com/amirphl/Tsuchinoko/business_flow"
	"github.com/amirphl/Tsuchinoko/config"
	"github.com/amirphl/Tsuchinoko/models"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/redis/go-redis/v9"
	"gopkg.in/natefinch/lumberjack.v2"
)

var (
	eventsConsumedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "ping_counter_events_consumed_total",
			Help: "Total number of increment events consumed from the event channel",
		},
	)

	eventsDroppedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ping_counter_events_dropped_total",
			Help: "Total number of increment events dropped by the consumer",
		},
		[]string{"reason"},
	)
)

// StatsConsumer subscribes to the ping counter event channel and projects every
// increment into the per-second stats series. Delivery is at-least-once; the stats
// upsert is idempotent per bucket, so redelivered events are harmless.
type StatsConsumer struct {
	client      *redis.Client
	flow        businessflow.PingStatsFlow
	logger      *log.Logger
	saveTimeout time.Duration
}

func NewStatsConsumer(client *redis.Client, flow businessflow.PingStatsFlow, logCfg config.LoggingConfig, evCfg config.EventsConfig) *StatsConsumer {
	logger := log.New(&lumberjack.Logger{
		Filename:   logCfg.ConsumerLogFile,
		MaxSize:    logCfg.MaxSizeMB,
		MaxBackups: logCfg.MaxBackups,
		MaxAge:     logCfg.MaxAgeDays,
		Compress:   logCfg.Compress,
	}, "stats-consumer ", log.LstdFlags|log.LUTC)

	saveTimeout := evCfg.SaveTimeout
	if saveTimeout <= 0 {
		saveTimeout = 10 * time.Second
	}

	return &StatsConsumer{
		client:      client,
		flow:        flow,
		logger:      logger,
		saveTimeout: saveTimeout,
	}
}

// Start subscribes to the event channel and consumes until the returned stop
// function is called.
func (c *StatsConsumer) Start(parent context.Context) func() {
	ctx, cancel := context.WithCancel(parent)
	sub := c.client.Subscribe(ctx, models.PingCounterIncrementedEventName)

	go c.run(ctx, sub)

	c.logger.Printf("Subscribed to %s", models.PingCounterIncrementedEventName)
	return func() {
		cancel()
		_ = sub.Close()
	}
}

func (c *StatsConsumer) run(ctx context.Context, sub *redis.PubSub) {
	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			c.handle(ctx, msg.Payload)
		}
	}
}

func (c *StatsConsumer) handle(ctx context.Context, payload string) {
	var event models.PingCounterIncremented
	if err := json.Unmarshal([]byte(payload), &event); err != nil {
		eventsDroppedTotal.WithLabelValues("malformed").Inc()
		c.logger.Printf("Dropping malformed event payload: %v", err)
		return
	}

	// Event timestamps are epoch milliseconds; the bucket key is floored seconds.
	seconds, err := models.NewTimeInSecond(event.Timestamp / 1000)
	if err != nil {
		eventsDroppedTotal.WithLabelValues("invalid_timestamp").Inc()
		c.logger.Printf("Dropping event with unusable timestamp %d: %v", event.Timestamp, err)
		return
	}

	saveCtx, cancel := context.WithTimeout(ctx, c.saveTimeout)
	defer cancel()

	if _, err := c.flow.Save(saveCtx, seconds, event.AfterCount); err != nil {
		eventsDroppedTotal.WithLabelValues("save_failed").Inc()
		c.logger.Printf("Failed to save ping stats for bucket %d: %v", seconds.Value(), err)
		return
	}
	eventsConsumedTotal.Inc()
}
