// Package businessflow contains the core business logic and use cases for the ping counter workflows
package businessflow

import (
	"errors"
	"fmt"

	"github.com/amirphl/Tsuchinoko/models"
	"github.com/amirphl/Tsuchinoko/repository"
)

// Business flow error constants
var (
	// Counter-related errors
	ErrPingCounterNotPersisted = errors.New("ping counter was not persisted")

	// Stats-related errors
	ErrInvalidTimeFrame = errors.New("invalid time frame")
	ErrEmptyStatsRange  = errors.New("stats range produced no rows")
)

type BusinessError struct {
	Code    string
	Message string
	Err     error
}

func (e *BusinessError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *BusinessError) Unwrap() error {
	return e.Err
}

func NewBusinessError(code, message string, err error) *BusinessError {
	return &BusinessError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// IsInvalidArgument reports whether err is an invariant violation raised by a
// value object or aggregate constructor/mutator.
func IsInvalidArgument(err error) bool {
	return errors.Is(err, models.ErrPingCounterIDRequired) ||
		errors.Is(err, models.ErrPingCounterNegative) ||
		errors.Is(err, models.ErrPingStatsValueNegative) ||
		errors.Is(err, models.ErrSecondsNotWhole) ||
		errors.Is(err, models.ErrSecondsNegative) ||
		errors.Is(err, models.ErrSecondsTooLarge) ||
		errors.Is(err, models.ErrTimeNotUsable) ||
		errors.Is(err, models.ErrRangeInverted)
}

func IsInvalidTimeFrame(err error) bool {
	return errors.Is(err, ErrInvalidTimeFrame) || errors.Is(err, models.ErrUnknownTimeFrame)
}

// IsStorageFailure reports whether err came from an upsert that yielded no row.
func IsStorageFailure(err error) bool {
	return errors.Is(err, repository.ErrUpsertNoRow)
}
