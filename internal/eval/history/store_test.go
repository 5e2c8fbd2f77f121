package history

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/lehigh-university-libraries/htrbench/internal/eval/metrics"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tempDB(t *testing.T) *Store {
	t.Helper()
	s, err := NewStore(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func sampleRun(reportID, model string, date time.Time) *metrics.AggregateResults {
	pages := []metrics.PageResult{
		{ID: "p1", Label: "Hand A", Result: metrics.Compute("Chat", "Chien", metrics.Options{})},
		{ID: "p2", Label: "Hand A", Result: metrics.Compute("Le chat dort", "Le chat dort", metrics.Options{})},
		{ID: "p3", Label: "Hand B", Result: metrics.Compute("", "abc", metrics.Options{})},
		{ID: "p4", Label: "Hand B", Error: "timeout"},
	}
	agg := metrics.AggregatePageResults(pages, metrics.AggregateOptions{
		ReportID: reportID,
		Provider: "ollama",
		Model:    model,
		Language: "fr",
	})
	agg.EvaluationDate = date
	return agg
}

func TestNewStoreCreatesSchema(t *testing.T) {
	s := tempDB(t)

	var count int
	err := s.db.QueryRow(`SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name IN ('runs','page_scores')`).Scan(&count)
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestRecordAndGet(t *testing.T) {
	s := tempDB(t)
	date := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)

	run, err := s.Record(sampleRun("a1b2c3d4", "mistral", date), "runs/a1b2c3d4")
	require.NoError(t, err)
	assert.NotEmpty(t, run.ID)

	got, err := s.Get("a1b2c3d4")
	require.NoError(t, err)
	assert.Equal(t, run.ID, got.ID)
	assert.Equal(t, "mistral", got.Model)
	assert.Equal(t, "fr", got.Language)
	assert.Equal(t, "runs/a1b2c3d4", got.ResultsPath)
	assert.True(t, got.CreatedAt.Equal(date))
	assert.Equal(t, 4, got.TotalPages)
	assert.Equal(t, 3, got.SuccessCount)
	assert.Equal(t, 1, got.FailureCount)
	assert.Equal(t, 1, got.NotComputable)

	require.True(t, got.WERMean.OK)
	assert.InDelta(t, 0.5, got.WERMean.V, 1e-9)
	require.True(t, got.CorpusWER.OK)
	assert.InDelta(t, 0.5, got.CorpusWER.V, 1e-9)

	byRunID, err := s.Get(run.ID)
	require.NoError(t, err)
	assert.Equal(t, "a1b2c3d4", byRunID.ReportID)
}

func TestGetNotFound(t *testing.T) {
	s := tempDB(t)

	_, err := s.Get("missing")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestListNewestFirst(t *testing.T) {
	s := tempDB(t)
	base := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)

	for i, model := range []string{"first", "second", "third"} {
		_, err := s.Record(sampleRun("r"+model, model, base.Add(time.Duration(i)*time.Hour)), "")
		require.NoError(t, err)
	}

	runs, err := s.List(0)
	require.NoError(t, err)
	require.Len(t, runs, 3)
	assert.Equal(t, "third", runs[0].Model)
	assert.Equal(t, "first", runs[2].Model)

	limited, err := s.List(2)
	require.NoError(t, err)
	require.Len(t, limited, 2)
	assert.Equal(t, "second", limited[1].Model)
}

func TestPageScores(t *testing.T) {
	s := tempDB(t)
	run, err := s.Record(sampleRun("a1b2c3d4", "mistral", time.Now()), "")
	require.NoError(t, err)

	scores, err := s.PageScores(run.ID)
	require.NoError(t, err)
	require.Len(t, scores, 4)

	assert.Equal(t, "p1", scores[0].ID)
	assert.InDelta(t, 1.0, scores[0].WER.V, 1e-9)
	assert.InDelta(t, 0.75, scores[0].CER.V, 1e-9)
	assert.False(t, scores[2].WER.OK, "empty reference stores a null WER")
	assert.Equal(t, "timeout", scores[3].Error)
	assert.False(t, scores[3].WER.OK)
}

func TestLabelStats(t *testing.T) {
	s := tempDB(t)
	run, err := s.Record(sampleRun("a1b2c3d4", "mistral", time.Now()), "")
	require.NoError(t, err)

	stats, err := s.LabelStats(run.ID)
	require.NoError(t, err)
	require.Len(t, stats, 2)

	assert.Equal(t, "Hand A", stats[0].Label)
	assert.Equal(t, 2, stats[0].Pages)
	assert.InDelta(t, 0.5, stats[0].WERMean.V, 1e-9)

	// Hand B only has a page without reference and a failed page
	assert.Equal(t, "Hand B", stats[1].Label)
	assert.Equal(t, 1, stats[1].Pages)
	assert.False(t, stats[1].WERMean.OK)
}
