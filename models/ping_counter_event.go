package models

// DomainEvent is the closed set of facts the aggregates emit. Publisher adapters
// must type-switch over the concrete kinds and reject anything they do not know,
// so adding a new event kind fails loudly instead of silently dropping messages.
type DomainEvent interface {
	EventName() string
}

// PingCounterIncrementedEventName doubles as the channel / topic name on the wire.
const PingCounterIncrementedEventName = "ping_counter.incremented"

// PingCounterIncremented records the fact that the counter moved from BeforeCount to
// AfterCount. It is immutable, delivered at-least-once, and timestamps are epoch
// milliseconds.
type PingCounterIncremented struct {
	ID          string `json:"id"`
	BeforeCount int64  `json:"before_count"`
	AfterCount  int64  `json:"after_count"`
	Timestamp   int64  `json:"timestamp"`
}

// EventName returns the stable wire name of the event
func (PingCounterIncremented) EventName() string {
	return PingCounterIncrementedEventName
}
