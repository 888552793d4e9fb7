package models

import "errors"

// Invariant violations raised by aggregate and value object constructors. They are
// always synchronous and fatal to the call that triggered them; nothing retries them.
var (
	ErrPingCounterIDRequired = errors.New("ping counter id is required")
	ErrPingCounterNegative   = errors.New("ping counter count can not be negative")

	ErrPingStatsValueNegative = errors.New("ping stats value can not be negative")

	ErrSecondsNotWhole = errors.New("provided value is not whole seconds")
	ErrSecondsNegative = errors.New("provided seconds value is negative")
	ErrSecondsTooLarge = errors.New("provided seconds value too large, milliseconds passed instead?")
	ErrTimeNotUsable   = errors.New("provided time is not usable")

	ErrRangeInverted = errors.New("provided \"to\" is smaller than \"from\"")

	ErrUnknownTimeFrame = errors.New("unknown time frame")
)
