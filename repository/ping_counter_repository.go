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

// PingCounterRepositoryImpl implements PingCounterRepository on PostgreSQL. All
// operations are pinned to a fixed scope so the table holds exactly one row.
type PingCounterRepositoryImpl struct {
	*BaseRepository[models.PingCounter]
	scope string
}

func NewPingCounterRepository(db *gorm.DB) PingCounterRepository {
	return &PingCounterRepositoryImpl{
		BaseRepository: NewBaseRepository[models.PingCounter](db),
		scope:          models.PingCounterScopeGlobal,
	}
}

func (r *PingCounterRepositoryImpl) GetNewID(ctx context.Context) (string, error) {
	return uuid.NewString(), nil
}

func (r *PingCounterRepositoryImpl) FindOne(ctx context.Context) (*models.PingCounter, error) {
	db := r.getDB(ctx)

	var row models.PingCounter
	err := db.Where("scope = ?", r.scope).First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find ping counter: %w", err)
	}
	return &row, nil
}

// Save upserts the counter row. The conflict target is the unique scope column, so
// a concurrent first-time creation degrades to an update instead of a duplicate row.
func (r *PingCounterRepositoryImpl) Save(ctx context.Context, counter *models.PingCounter) (*models.PingCounter, error) {
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

	counter.Scope = r.scope
	err = db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "scope"}},
		DoUpdates: clause.AssignmentColumns([]string{"count", "last_pinged_at"}),
	}).Create(counter).Error
	if err != nil {
		return nil, fmt.Errorf("failed to save ping counter: %w", err)
	}

	var persisted models.PingCounter
	err = db.Where("scope = ?", r.scope).First(&persisted).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			err = ErrUpsertNoRow
			return nil, err
		}
		return nil, fmt.Errorf("failed to read back ping counter: %w", err)
	}
	return &persisted, nil
}
