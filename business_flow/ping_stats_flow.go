package businessflow

import (
	"context"
	"fmt"

	"github.com/amirphl/Tsuchinoko/app/dto"
	"github.com/amirphl/Tsuchinoko/models"
	"github.com/amirphl/Tsuchinoko/repository"
	"github.com/xuri/excelize/v2"
)

// PingStatsFlow orchestrates the per-second usage series: upsert-by-bucket writes
// fed by the increment event, and sliding-window reads.
type PingStatsFlow interface {
	// Save upserts the observation for one second bucket. Last write per bucket
	// wins; duplicates from at-least-once delivery are therefore harmless.
	Save(ctx context.Context, seconds models.TimeInSecond, value int64) (*dto.PingStatsDTO, error)
	// Query resolves a symbolic time frame to a range ending now and returns the
	// buckets inside it.
	Query(ctx context.Context, frame models.TimeFrame) ([]dto.PingStatsDTO, error)
	// QueryRange returns the buckets inside an explicit range.
	QueryRange(ctx context.Context, rng models.RangeInSecond) ([]dto.PingStatsDTO, error)
	// Export renders the buckets of a time frame as an xlsx workbook.
	Export(ctx context.Context, frame models.TimeFrame) (string, []byte, error)
}

type PingStatsFlowImpl struct {
	repo repository.PingStatsRepository
}

func NewPingStatsFlow(repo repository.PingStatsRepository) PingStatsFlow {
	return &PingStatsFlowImpl{repo: repo}
}

func (f *PingStatsFlowImpl) Save(ctx context.Context, seconds models.TimeInSecond, value int64) (*dto.PingStatsDTO, error) {
	stats, err := f.repo.FindOneBySeconds(ctx, seconds)
	if err != nil {
		return nil, NewBusinessError("PING_STATS_LOOKUP_FAILED", "Failed to lookup ping stats bucket", err)
	}

	if stats == nil {
		newID, idErr := f.repo.GetNewID(ctx)
		if idErr != nil {
			return nil, NewBusinessError("PING_STATS_ID_ALLOCATION_FAILED", "Failed to allocate ping stats id", idErr)
		}
		stats = models.NewPingStats(newID, seconds, 0)
	}
	if err := stats.SetValue(value); err != nil {
		return nil, NewBusinessError("VALIDATION_ERROR", "Invalid ping stats value", err)
	}

	persisted, err := f.repo.Save(ctx, stats)
	if err != nil {
		if IsStorageFailure(err) {
			return nil, NewBusinessError("PING_STATS_STORAGE_FAILURE", "Ping stats upsert returned no row", err)
		}
		return nil, NewBusinessError("PING_STATS_SAVE_FAILED", "Failed to save ping stats", err)
	}

	result := ToPingStatsDTO(*persisted)
	return &result, nil
}

func (f *PingStatsFlowImpl) Query(ctx context.Context, frame models.TimeFrame) ([]dto.PingStatsDTO, error) {
	rng, err := frame.RangeEndingNow()
	if err != nil {
		return nil, NewBusinessError("VALIDATION_ERROR", "Invalid time frame", err)
	}
	return f.QueryRange(ctx, rng)
}

func (f *PingStatsFlowImpl) QueryRange(ctx context.Context, rng models.RangeInSecond) ([]dto.PingStatsDTO, error) {
	rows, err := f.repo.FindInRange(ctx, rng)
	if err != nil {
		return nil, NewBusinessError("PING_STATS_QUERY_FAILED", "Failed to query ping stats", err)
	}
	return ToPingStatsDTOs(rows), nil
}

// Export builds an xlsx workbook with one row per bucket. Returns the suggested
// file name along with the serialized workbook.
func (f *PingStatsFlowImpl) Export(ctx context.Context, frame models.TimeFrame) (string, []byte, error) {
	rng, err := frame.RangeEndingNow()
	if err != nil {
		return "", nil, NewBusinessError("VALIDATION_ERROR", "Invalid time frame", err)
	}

	rows, err := f.repo.FindInRange(ctx, rng)
	if err != nil {
		return "", nil, NewBusinessError("PING_STATS_QUERY_FAILED", "Failed to query ping stats", err)
	}

	xl := excelize.NewFile()
	defer func() { _ = xl.Close() }()

	sheet := "PingStats"
	index, err := xl.NewSheet(sheet)
	if err != nil {
		return "", nil, NewBusinessError("PING_STATS_EXPORT_FAILED", "Failed to create export sheet", err)
	}
	xl.SetActiveSheet(index)
	_ = xl.DeleteSheet("Sheet1")

	headers := []string{"ID", "Seconds", "Value"}
	for ci, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(ci+1, 1)
		_ = xl.SetCellValue(sheet, cell, h)
	}
	for ri, row := range rows {
		values := []any{row.ID, row.Seconds, row.Value}
		for ci, v := range values {
			cell, _ := excelize.CoordinatesToCellName(ci+1, ri+2)
			_ = xl.SetCellValue(sheet, cell, v)
		}
	}

	buf, err := xl.WriteToBuffer()
	if err != nil {
		return "", nil, NewBusinessError("PING_STATS_EXPORT_FAILED", "Failed to serialize export workbook", err)
	}

	name := fmt.Sprintf("ping_stats_%s_%d_%d.xlsx", frame, rng.From().Value(), rng.To().Value())
	return name, buf.Bytes(), nil
}
