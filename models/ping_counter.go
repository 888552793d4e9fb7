package models

import (
	"time"
)

// PingCounterScopeGlobal is the well-known scope of the single deployment-wide
// counter. The repository accepts a scope internally so a future multi-counter
// extension does not require a schema change, but the public API exposes none today.
const PingCounterScopeGlobal = "global"

// PingCounter is the counter aggregate root. Exactly one logical row exists per
// scope; it is created lazily on the first read or increment and never deleted.
type PingCounter struct {
	ID           string    `gorm:"type:uuid;primaryKey" json:"id"`
	Scope        string    `gorm:"size:64;uniqueIndex;not null;default:'global'" json:"scope"`
	Count        int64     `gorm:"not null;default:0;check:count >= 0" json:"count"`
	LastPingedAt time.Time `gorm:"not null" json:"last_pinged_at"`
	CreatedAt    time.Time `gorm:"not null" json:"created_at"`
}

// TableName specifies the table name for GORM
func (PingCounter) TableName() string {
	return "ping_counters"
}

// NewPingCounter creates a fresh counter with a zero count and both timestamps set
// to the current UTC time.
func NewPingCounter(id string) (*PingCounter, error) {
	now := time.Now().UTC()
	return NewPingCounterWithState(id, 0, now, now)
}

// NewPingCounterWithState rebuilds a counter from persisted state.
func NewPingCounterWithState(id string, count int64, lastPingedAt, createdAt time.Time) (*PingCounter, error) {
	if id == "" {
		return nil, ErrPingCounterIDRequired
	}
	if count < 0 {
		return nil, ErrPingCounterNegative
	}
	return &PingCounter{
		ID:           id,
		Scope:        PingCounterScopeGlobal,
		Count:        count,
		LastPingedAt: lastPingedAt,
		CreatedAt:    createdAt,
	}, nil
}

// Increment bumps the count by one, refreshes LastPingedAt, and returns the emitted
// domain events in order. The aggregate mutates in place; emitted events are an
// explicit return value rather than hidden aggregate state, so the caller decides
// when and how to publish them. There is no decrement and no reset.
func (c *PingCounter) Increment() []DomainEvent {
	now := time.Now().UTC()
	before := c.Count
	c.Count++
	c.LastPingedAt = now

	return []DomainEvent{
		PingCounterIncremented{
			ID:          c.ID,
			BeforeCount: before,
			AfterCount:  c.Count,
			Timestamp:   now.UnixMilli(),
		},
	}
}
