package models

import (
	"math"
	"time"
)

// maxTimeInSecond guards against callers passing epoch milliseconds where whole
// seconds are expected. 10^12 seconds is roughly the year 33658.
const maxTimeInSecond int64 = 1_000_000_000_000

// TimeInSecond wraps a non-negative whole number of seconds since the epoch. It is
// the bucket key of the stats time series.
type TimeInSecond struct {
	value int64
}

// NewTimeInSecond validates and wraps a seconds value.
func NewTimeInSecond(value int64) (TimeInSecond, error) {
	if value < 0 {
		return TimeInSecond{}, ErrSecondsNegative
	}
	if value >= maxTimeInSecond {
		return TimeInSecond{}, ErrSecondsTooLarge
	}
	return TimeInSecond{value: value}, nil
}

// NewTimeInSecondFromFloat accepts untrusted numeric input (JSON numbers decode as
// floats) and rejects anything that is not a whole number of seconds.
func NewTimeInSecondFromFloat(value float64) (TimeInSecond, error) {
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return TimeInSecond{}, ErrTimeNotUsable
	}
	if value != math.Trunc(value) {
		return TimeInSecond{}, ErrSecondsNotWhole
	}
	return NewTimeInSecond(int64(value))
}

// NewTimeInSecondFromTime converts a wall-clock timestamp to whole-second
// resolution by flooring.
func NewTimeInSecondFromTime(t time.Time) (TimeInSecond, error) {
	if t.IsZero() {
		return TimeInSecond{}, ErrTimeNotUsable
	}
	return NewTimeInSecond(t.UnixMilli() / 1000)
}

// Value returns the wrapped seconds.
func (t TimeInSecond) Value() int64 {
	return t.value
}

// EqualOrGreater reports whether t >= other.
func (t TimeInSecond) EqualOrGreater(other TimeInSecond) bool {
	return t.value >= other.value
}

// RangeInSecond is an inclusive [From, To] pair of second buckets. Construction
// fails when the pair is inverted.
type RangeInSecond struct {
	from TimeInSecond
	to   TimeInSecond
}

// NewRangeInSecond validates and builds a range.
func NewRangeInSecond(from, to TimeInSecond) (RangeInSecond, error) {
	if !to.EqualOrGreater(from) {
		return RangeInSecond{}, ErrRangeInverted
	}
	return RangeInSecond{from: from, to: to}, nil
}

// From returns the inclusive lower bound.
func (r RangeInSecond) From() TimeInSecond {
	return r.from
}

// To returns the inclusive upper bound.
func (r RangeInSecond) To() TimeInSecond {
	return r.to
}
