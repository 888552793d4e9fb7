package models

// PingStats is one observation of the counter value for a single whole-second
// bucket. Buckets are unique per seconds value; saving into an existing bucket
// overwrites the value (last write wins, not an accumulation), which is what makes
// duplicate event delivery safe.
type PingStats struct {
	ID      string `gorm:"type:uuid;primaryKey" json:"id"`
	Seconds int64  `gorm:"uniqueIndex;not null" json:"seconds"`
	Value   int64  `gorm:"not null;check:value >= 0" json:"value"`
}

// TableName specifies the table name for GORM
func (PingStats) TableName() string {
	return "ping_stats"
}

// NewPingStats builds a stats row for a bucket. The constructor does not reject the
// value; validation is enforced on mutation via SetValue.
func NewPingStats(id string, seconds TimeInSecond, value int64) *PingStats {
	return &PingStats{
		ID:      id,
		Seconds: seconds.Value(),
		Value:   value,
	}
}

// SetValue overwrites the bucket value. Negative values are rejected and the
// previous value is left unchanged.
func (s *PingStats) SetValue(next int64) error {
	if next < 0 {
		return ErrPingStatsValueNegative
	}
	s.Value = next
	return nil
}

// SecondsBucket returns the bucket key as a value object.
func (s *PingStats) SecondsBucket() (TimeInSecond, error) {
	return NewTimeInSecond(s.Seconds)
}
