// Package tests contains test cases for models and repository packages to avoid circular imports
package tests

import (
	"testing"
	"time"

	"github.com/amirphl/Tsuchinoko/models"
	"github.com/amirphl/Tsuchinoko/repository"
	testingutil "github.com/amirphl/Tsuchinoko/testing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPingCounterRepository(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		repo := repository.NewPingCounterRepository(testDB.DB)
		ctx := testingutil.CreateTestContext()

		t.Run("GetNewID", func(t *testing.T) {
			id, err := repo.GetNewID(ctx)
			require.NoError(t, err)
			assert.NotEmpty(t, id)

			other, err := repo.GetNewID(ctx)
			require.NoError(t, err)
			assert.NotEqual(t, id, other)
		})

		t.Run("FindOneEmpty", func(t *testing.T) {
			counter, err := repo.FindOne(ctx)
			require.NoError(t, err)
			assert.Nil(t, counter)
		})

		t.Run("SaveAndFindOne", func(t *testing.T) {
			id, err := repo.GetNewID(ctx)
			require.NoError(t, err)
			counter, err := models.NewPingCounter(id)
			require.NoError(t, err)

			persisted, err := repo.Save(ctx, counter)
			require.NoError(t, err)
			assert.Equal(t, id, persisted.ID)
			assert.Equal(t, int64(0), persisted.Count)

			found, err := repo.FindOne(ctx)
			require.NoError(t, err)
			require.NotNil(t, found)
			assert.Equal(t, id, found.ID)
		})

		t.Run("SaveIsSingletonUpsert", func(t *testing.T) {
			// The row from the previous subtest already exists; saving again must
			// update it in place, not add a second row.
			existing, err := repo.FindOne(ctx)
			require.NoError(t, err)
			require.NotNil(t, existing)

			existing.Increment()
			persisted, err := repo.Save(ctx, existing)
			require.NoError(t, err)
			assert.Equal(t, existing.ID, persisted.ID)
			assert.Equal(t, int64(1), persisted.Count)

			var total int64
			require.NoError(t, testDB.DB.Model(&models.PingCounter{}).Count(&total).Error)
			assert.Equal(t, int64(1), total)
		})

		t.Run("SavePersistsLastPingedAt", func(t *testing.T) {
			existing, err := repo.FindOne(ctx)
			require.NoError(t, err)
			require.NotNil(t, existing)

			before := existing.LastPingedAt
			time.Sleep(10 * time.Millisecond)
			existing.Increment()

			persisted, err := repo.Save(ctx, existing)
			require.NoError(t, err)
			assert.True(t, persisted.LastPingedAt.After(before))
		})

		return nil
	})
	require.NoError(t, err)
}

func TestPingStatsRepository(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		repo := repository.NewPingStatsRepository(testDB.DB)
		ctx := testingutil.CreateTestContext()

		mustSeconds := func(v int64) models.TimeInSecond {
			ts, err := models.NewTimeInSecond(v)
			require.NoError(t, err)
			return ts
		}

		save := func(seconds int64, value int64) *models.PingStats {
			id, err := repo.GetNewID(ctx)
			require.NoError(t, err)
			stats := models.NewPingStats(id, mustSeconds(seconds), value)
			persisted, err := repo.Save(ctx, stats)
			require.NoError(t, err)
			return persisted
		}

		t.Run("FindOneBySecondsEmpty", func(t *testing.T) {
			stats, err := repo.FindOneBySeconds(ctx, mustSeconds(100))
			require.NoError(t, err)
			assert.Nil(t, stats)
		})

		t.Run("SaveAndFindOneBySeconds", func(t *testing.T) {
			persisted := save(100, 5)
			assert.Equal(t, int64(100), persisted.Seconds)
			assert.Equal(t, int64(5), persisted.Value)

			found, err := repo.FindOneBySeconds(ctx, mustSeconds(100))
			require.NoError(t, err)
			require.NotNil(t, found)
			assert.Equal(t, persisted.ID, found.ID)
		})

		t.Run("SaveSameBucketOverwrites", func(t *testing.T) {
			first := save(200, 3)
			second := save(200, 9)

			// One row per bucket, value overwritten rather than accumulated.
			assert.Equal(t, first.ID, second.ID)
			assert.Equal(t, int64(9), second.Value)

			var total int64
			require.NoError(t, testDB.DB.Model(&models.PingStats{}).
				Where("seconds = ?", 200).Count(&total).Error)
			assert.Equal(t, int64(1), total)
		})

		t.Run("FindInRangeInclusiveAndOrdered", func(t *testing.T) {
			save(80, 1)
			save(90, 2)
			save(105, 3)
			save(110, 4)
			save(120, 5)

			rng, err := models.NewRangeInSecond(mustSeconds(90), mustSeconds(110))
			require.NoError(t, err)

			rows, err := repo.FindInRange(ctx, rng)
			require.NoError(t, err)
			require.Len(t, rows, 4) // 90, 100, 105, 110; both endpoints included

			var seconds []int64
			for _, row := range rows {
				seconds = append(seconds, row.Seconds)
			}
			assert.Equal(t, []int64{90, 100, 105, 110}, seconds)
		})

		t.Run("FindInRangeEmpty", func(t *testing.T) {
			rng, err := models.NewRangeInSecond(mustSeconds(5000), mustSeconds(6000))
			require.NoError(t, err)

			rows, err := repo.FindInRange(ctx, rng)
			require.NoError(t, err)
			assert.Empty(t, rows)
		})

		return nil
	})
	require.NoError(t, err)
}
