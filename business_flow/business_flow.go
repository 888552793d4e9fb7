// Package businessflow contains the business logic for the application.
package businessflow

import (
	"github.com/amirphl/Tsuchinoko/app/dto"
	"github.com/amirphl/Tsuchinoko/models"
)

// ToPingCounterDTO converts the counter aggregate to its transport shape.
// Timestamps are epoch milliseconds.
func ToPingCounterDTO(counter models.PingCounter) dto.PingCounterDTO {
	return dto.PingCounterDTO{
		ID:           counter.ID,
		Count:        counter.Count,
		LastPingedAt: counter.LastPingedAt.UnixMilli(),
		CreatedAt:    counter.CreatedAt.UnixMilli(),
	}
}

// ToPingStatsDTO converts one stats bucket to its transport shape.
func ToPingStatsDTO(stats models.PingStats) dto.PingStatsDTO {
	return dto.PingStatsDTO{
		ID:      stats.ID,
		Seconds: stats.Seconds,
		Value:   stats.Value,
	}
}

// ToPingStatsDTOs converts a query result preserving order.
func ToPingStatsDTOs(rows []*models.PingStats) []dto.PingStatsDTO {
	out := make([]dto.PingStatsDTO, 0, len(rows))
	for _, row := range rows {
		out = append(out, ToPingStatsDTO(*row))
	}
	return out
}
