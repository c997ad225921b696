package testutil

import (
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"keibacli/pkg/contracts/domain"
)

func TestBufferedSlogHandler(t *testing.T) {
	t.Run("captures log records", func(t *testing.T) {
		logger, handler := NewTestLogger(t)

		logger.Info("rows dropped", slog.String("reason", "outlier"))
		logger.Error("export failed", slog.Int("code", 2))

		require.Len(t, handler.GetRecords(), 2)
		assert.True(t, handler.ContainsMessage("rows dropped"))
		assert.True(t, handler.ContainsAttr("reason", "outlier"))
		assert.True(t, handler.ContainsAttr("code", int64(2)))
	})

	t.Run("filters by level", func(t *testing.T) {
		logger, handler := NewTestLogger(t)

		logger.Debug("debug msg")
		logger.Info("info msg")
		logger.Warn("warn msg")

		assert.Len(t, handler.GetRecordsByLevel(slog.LevelInfo), 1)
		assert.Len(t, handler.GetRecordsByLevel(slog.LevelDebug), 1)
		AssertLogContains(t, handler, slog.LevelWarn, "warn msg")
		AssertNoErrors(t, handler)
	})

	t.Run("derived handlers share the buffer", func(t *testing.T) {
		logger, handler := NewTestLogger(t)

		logger.With(slog.String("run_id", "r-1")).WithGroup("batch").Info("batch done", slog.Int("rows", 7))

		rec, ok := handler.FindMessage("batch done")
		require.True(t, ok)
		v, ok := rec.Attr("run_id")
		require.True(t, ok)
		assert.Equal(t, "r-1", v)
		AssertLogAttr(t, handler, "batch.rows", int64(7))
	})

	t.Run("clear", func(t *testing.T) {
		logger, handler := NewTestLogger(t)
		logger.Info("one")
		handler.Clear()
		assert.Equal(t, 0, handler.Count())
	})
}

func TestRaceCard(t *testing.T) {
	card := RaceCard()
	require.NoError(t, card.Validate())
	assert.Equal(t, 7, card.Len())
	assert.Equal(t, RaceCardColumns, card.Columns())

	card.Set(0, "horse_name", domain.Missing())
	assert.False(t, RaceCard().Get(0, "horse_name").IsMissing())
}
