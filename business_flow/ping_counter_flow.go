package businessflow

import (
	"context"
	"log"

	"github.com/amirphl/Tsuchinoko/app/dto"
	"github.com/amirphl/Tsuchinoko/models"
	"github.com/amirphl/Tsuchinoko/repository"
)

// EventPublisher delivers domain events to an external channel. Delivery is best
// effort: the counter state is already durable before Publish is attempted, and a
// publish failure never rolls the counter back.
type EventPublisher interface {
	Publish(ctx context.Context, event models.DomainEvent) error
}

// PingCounterFlow orchestrates get-or-create and increment over the counter
// repository and the event publisher. It holds no state of its own; every call
// re-reads from the repository, which is the sole source of truth.
type PingCounterFlow interface {
	Get(ctx context.Context) (*dto.PingCounterDTO, error)
	Ping(ctx context.Context) (*dto.PingCounterDTO, error)
}

type PingCounterFlowImpl struct {
	repo      repository.PingCounterRepository
	publisher EventPublisher
}

func NewPingCounterFlow(repo repository.PingCounterRepository, publisher EventPublisher) PingCounterFlow {
	return &PingCounterFlowImpl{repo: repo, publisher: publisher}
}

// Get returns the counter, creating it with a zero count if the store is empty.
// A pure Get emits no events.
func (f *PingCounterFlowImpl) Get(ctx context.Context) (*dto.PingCounterDTO, error) {
	counter, err := f.repo.FindOne(ctx)
	if err != nil {
		return nil, NewBusinessError("PING_COUNTER_LOOKUP_FAILED", "Failed to lookup ping counter", err)
	}
	if counter == nil {
		counter, err = f.createFresh(ctx)
		if err != nil {
			return nil, err
		}
		counter, err = f.save(ctx, counter)
		if err != nil {
			return nil, err
		}
	}
	result := ToPingCounterDTO(*counter)
	return &result, nil
}

// Ping increments the counter, persists it, then publishes the emitted events in
// order. It returns the persisted snapshot, not the in-memory mutated instance.
//
// The read-then-save sequence is not atomic: two concurrent pings may read the
// same prior count and the second save wins, silently dropping one increment. That
// is accepted for a low-contention counter; an optimistic concurrency token on the
// save would be the documented upgrade path.
func (f *PingCounterFlowImpl) Ping(ctx context.Context) (*dto.PingCounterDTO, error) {
	counter, err := f.repo.FindOne(ctx)
	if err != nil {
		return nil, NewBusinessError("PING_COUNTER_LOOKUP_FAILED", "Failed to lookup ping counter", err)
	}
	if counter == nil {
		counter, err = f.createFresh(ctx)
		if err != nil {
			return nil, err
		}
	}

	events := counter.Increment()

	persisted, err := f.save(ctx, counter)
	if err != nil {
		return nil, err
	}

	// Publish strictly after the save succeeded. Failures are logged and swallowed:
	// the increment already happened and is reported as successful regardless.
	for _, event := range events {
		if pubErr := f.publisher.Publish(ctx, event); pubErr != nil {
			log.Println("Failed to publish ping counter event", pubErr)
		}
	}

	result := ToPingCounterDTO(*persisted)
	return &result, nil
}

func (f *PingCounterFlowImpl) createFresh(ctx context.Context) (*models.PingCounter, error) {
	newID, err := f.repo.GetNewID(ctx)
	if err != nil {
		return nil, NewBusinessError("PING_COUNTER_ID_ALLOCATION_FAILED", "Failed to allocate ping counter id", err)
	}
	counter, err := models.NewPingCounter(newID)
	if err != nil {
		return nil, NewBusinessError("VALIDATION_ERROR", "Invalid ping counter state", err)
	}
	return counter, nil
}

func (f *PingCounterFlowImpl) save(ctx context.Context, counter *models.PingCounter) (*models.PingCounter, error) {
	persisted, err := f.repo.Save(ctx, counter)
	if err != nil {
		if IsStorageFailure(err) {
			return nil, NewBusinessError("PING_COUNTER_STORAGE_FAILURE", "Ping counter upsert returned no row", err)
		}
		return nil, NewBusinessError("PING_COUNTER_SAVE_FAILED", "Failed to save ping counter", err)
	}
	return persisted, nil
}
