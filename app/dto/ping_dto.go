package dto

// PingCounterDTO is the transport shape of the counter aggregate. Timestamps are
// epoch milliseconds.
type PingCounterDTO struct {
	ID           string `json:"id"`
	Count        int64  `json:"count"`
	LastPingedAt int64  `json:"last_pinged_at"`
	CreatedAt    int64  `json:"created_at"`
}

// PingStatsDTO is the transport shape of one stats bucket
type PingStatsDTO struct {
	ID      string `json:"id"`
	Seconds int64  `json:"seconds"`
	Value   int64  `json:"value"`
}

// PingStatsQueryRequest carries the symbolic time frame selector
type PingStatsQueryRequest struct {
	TimeFrame string `query:"time_frame" json:"time_frame" validate:"required,oneof=last_5_minutes last_hour"`
}

// PingStatsListResponse wraps the query result
type PingStatsListResponse struct {
	Items []PingStatsDTO `json:"items"`
}
