package tests

import (
	"testing"
	"time"

	businessflow "github.com/amirphl/Tsuchinoko/business_flow"
	"github.com/amirphl/Tsuchinoko/models"
	"github.com/amirphl/Tsuchinoko/repository"
	testingutil "github.com/amirphl/Tsuchinoko/testing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPingStatsFlow(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		repo := repository.NewPingStatsRepository(testDB.DB)
		flow := businessflow.NewPingStatsFlow(repo)
		ctx := testingutil.CreateTestContext()

		mustSeconds := func(v int64) models.TimeInSecond {
			ts, err := models.NewTimeInSecond(v)
			require.NoError(t, err)
			return ts
		}

		t.Run("SaveCreatesBucket", func(t *testing.T) {
			saved, err := flow.Save(ctx, mustSeconds(100), 5)
			require.NoError(t, err)
			assert.NotEmpty(t, saved.ID)
			assert.Equal(t, int64(100), saved.Seconds)
			assert.Equal(t, int64(5), saved.Value)
		})

		t.Run("SaveOverwritesNotSums", func(t *testing.T) {
			first, err := flow.Save(ctx, mustSeconds(100), 5)
			require.NoError(t, err)

			second, err := flow.Save(ctx, mustSeconds(100), 9)
			require.NoError(t, err)

			assert.Equal(t, first.ID, second.ID)
			assert.Equal(t, int64(9), second.Value)
		})

		t.Run("SaveNegativeRejected", func(t *testing.T) {
			_, err := flow.Save(ctx, mustSeconds(300), -1)
			require.Error(t, err)
			assert.True(t, businessflow.IsInvalidArgument(err))
		})

		t.Run("QueryRange", func(t *testing.T) {
			_, err := flow.Save(ctx, mustSeconds(1000), 1)
			require.NoError(t, err)
			_, err = flow.Save(ctx, mustSeconds(1010), 2)
			require.NoError(t, err)
			_, err = flow.Save(ctx, mustSeconds(1020), 3)
			require.NoError(t, err)

			rng, err := models.NewRangeInSecond(mustSeconds(1000), mustSeconds(1010))
			require.NoError(t, err)

			items, err := flow.QueryRange(ctx, rng)
			require.NoError(t, err)
			require.Len(t, items, 2)
			assert.Equal(t, int64(1000), items[0].Seconds)
			assert.Equal(t, int64(1010), items[1].Seconds)
		})

		t.Run("QueryResolvesTimeFrame", func(t *testing.T) {
			now := time.Now().UTC().Unix()
			_, err := flow.Save(ctx, mustSeconds(now-10), 7)
			require.NoError(t, err)
			_, err = flow.Save(ctx, mustSeconds(now-400), 8) // outside last_5_minutes
			require.NoError(t, err)

			items, err := flow.Query(ctx, models.TimeFrameLast5Minutes)
			require.NoError(t, err)

			var values []int64
			for _, item := range items {
				values = append(values, item.Value)
			}
			assert.Contains(t, values, int64(7))
			assert.NotContains(t, values, int64(8))

			// The hour window still covers the older bucket.
			items, err = flow.Query(ctx, models.TimeFrameLastHour)
			require.NoError(t, err)
			values = values[:0]
			for _, item := range items {
				values = append(values, item.Value)
			}
			assert.Contains(t, values, int64(8))
		})

		t.Run("QueryUnknownFrameRejected", func(t *testing.T) {
			_, err := flow.Query(ctx, models.TimeFrame("last_day"))
			require.Error(t, err)
			assert.True(t, businessflow.IsInvalidTimeFrame(err))
		})

		t.Run("ExportProducesWorkbook", func(t *testing.T) {
			name, content, err := flow.Export(ctx, models.TimeFrameLastHour)
			require.NoError(t, err)
			assert.Contains(t, name, "ping_stats_last_hour_")
			assert.Contains(t, name, ".xlsx")
			// xlsx files are zip archives; check the magic bytes.
			require.Greater(t, len(content), 4)
			assert.Equal(t, []byte{'P', 'K'}, content[:2])
		})

		t.Run("ExportUnknownFrameRejected", func(t *testing.T) {
			_, _, err := flow.Export(ctx, models.TimeFrame("everything"))
			require.Error(t, err)
			assert.True(t, businessflow.IsInvalidTimeFrame(err))
		})

		return nil
	})
	require.NoError(t, err)
}
