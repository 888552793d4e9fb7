package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/amirphl/Tsuchinoko/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// PingStatsRepositoryImpl implements PingStatsRepository on PostgreSQL
type PingStatsRepositoryImpl struct {
	*BaseRepository[models.PingStats]
}

func NewPingStatsRepository(db *gorm.DB) PingStatsRepository {
	return &PingStatsRepositoryImpl{BaseRepository: NewBaseRepository[models.PingStats](db)}
}

func (r *PingStatsRepositoryImpl) GetNewID(ctx context.Context) (string, error) {
	return uuid.NewString(), nil
}

func (r *PingStatsRepositoryImpl) FindOneBySeconds(ctx context.Context, seconds models.TimeInSecond) (*models.PingStats, error) {
	db := r.getDB(ctx)

	var row models.PingStats
	err := db.Where("seconds = ?", seconds.Value()).First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find ping stats by seconds: %w", err)
	}
	return &row, nil
}

// Save upserts one bucket. The conflict target is the unique seconds column and the
// value is overwritten, which keeps duplicate event deliveries idempotent.
func (r *PingStatsRepositoryImpl) Save(ctx context.Context, stats *models.PingStats) (*models.PingStats, error) {
	db, shouldCommit, err := r.getDBForWrite(ctx)
	if err != nil {
		return nil, err
	}

	if shouldCommit {
		defer func() {
			if err != nil {
				db.Rollback()
			} else {
				db.Commit()
			}
		}()
	}

	err = db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "seconds"}},
		DoUpdates: clause.AssignmentColumns([]string{"value"}),
	}).Create(stats).Error
	if err != nil {
		return nil, fmt.Errorf("failed to save ping stats: %w", err)
	}

	var persisted models.PingStats
	err = db.Where("seconds = ?", stats.Seconds).First(&persisted).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			err = ErrUpsertNoRow
			return nil, err
		}
		return nil, fmt.Errorf("failed to read back ping stats: %w", err)
	}
	return &persisted, nil
}

func (r *PingStatsRepositoryImpl) FindInRange(ctx context.Context, rng models.RangeInSecond) ([]*models.PingStats, error) {
	db := r.getDB(ctx)

	var rows []*models.PingStats
	err := db.Where("seconds >= ? AND seconds <= ?", rng.From().Value(), rng.To().Value()).
		Order("seconds ASC").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to find ping stats in range: %w", err)
	}
	return rows, nil
}
