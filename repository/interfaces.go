// Package repository provides data access layer implementations and interfaces for database operations
package repository

import (
	"context"
	"errors"

	"github.com/amirphl/Tsuchinoko/models"
)

// RepositoryContext key for transaction in context
type contextKey string

const TxContextKey contextKey = "tx"

// ErrUpsertNoRow is returned when an upsert unexpectedly yields no persisted row.
// Callers treat it as fatal; the repository never retries.
var ErrUpsertNoRow = errors.New("upsert returned no row")

// PingCounterRepository is the storage port for the counter aggregate. The store
// holds a single row per scope; implementations are pinned to the fixed global
// scope internally.
type PingCounterRepository interface {
	// GetNewID supplies a fresh unique identifier for first-time creation.
	GetNewID(ctx context.Context) (string, error)
	// FindOne returns the single counter row, or nil when none exists yet.
	FindOne(ctx context.Context) (*models.PingCounter, error)
	// Save upserts the counter keyed by scope and returns the persisted state.
	Save(ctx context.Context, counter *models.PingCounter) (*models.PingCounter, error)
}

// PingStatsRepository is the storage port for the per-second time series.
type PingStatsRepository interface {
	GetNewID(ctx context.Context) (string, error)
	FindOneBySeconds(ctx context.Context, seconds models.TimeInSecond) (*models.PingStats, error)
	// Save upserts the row keyed by its seconds bucket and returns the persisted state.
	Save(ctx context.Context, stats *models.PingStats) (*models.PingStats, error)
	// FindInRange returns all buckets with seconds in [from, to] inclusive, ordered
	// by seconds ascending.
	FindInRange(ctx context.Context, rng models.RangeInSecond) ([]*models.PingStats, error)
}
