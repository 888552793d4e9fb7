package models

import "time"

// TimeFrame is a symbolic lookback selector for stats queries.
type TimeFrame string

const (
	TimeFrameLast5Minutes TimeFrame = "last_5_minutes"
	TimeFrameLastHour     TimeFrame = "last_hour"
)

// LookbackSeconds maps the selector to its window size.
func (f TimeFrame) LookbackSeconds() (int64, error) {
	switch f {
	case TimeFrameLast5Minutes:
		return 5 * 60, nil
	case TimeFrameLastHour:
		return 60 * 60, nil
	default:
		return 0, ErrUnknownTimeFrame
	}
}

// RangeEndingAt derives the inclusive query window [floor(at) - lookback, floor(at)].
func (f TimeFrame) RangeEndingAt(at time.Time) (RangeInSecond, error) {
	lookback, err := f.LookbackSeconds()
	if err != nil {
		return RangeInSecond{}, err
	}
	to, err := NewTimeInSecondFromTime(at)
	if err != nil {
		return RangeInSecond{}, err
	}
	from, err := NewTimeInSecond(to.Value() - lookback)
	if err != nil {
		return RangeInSecond{}, err
	}
	return NewRangeInSecond(from, to)
}

// RangeEndingNow derives the query window ending at the current second.
func (f TimeFrame) RangeEndingNow() (RangeInSecond, error) {
	return f.RangeEndingAt(time.Now().UTC())
}
