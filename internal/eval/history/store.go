// Package history keeps a SQLite log of benchmark runs so that models and
// settings can be compared over time.
package history

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lehigh-university-libraries/htrbench/internal/eval/metrics"
	_ "modernc.org/sqlite"
)

// DefaultPath is the history database used when none is given
const DefaultPath = "htrbench.db"

// ErrNotFound is returned when a run does not exist
var ErrNotFound = errors.New("run not found")

const schema = `
CREATE TABLE IF NOT EXISTS runs (
	run_id           TEXT PRIMARY KEY,
	report_id        TEXT NOT NULL,
	created_at       TEXT NOT NULL,
	provider         TEXT,
	model            TEXT,
	dataset_path     TEXT,
	user_name        TEXT,
	clean            INTEGER NOT NULL,
	language         TEXT,
	total_pages      INTEGER NOT NULL,
	success_count    INTEGER NOT NULL,
	failure_count    INTEGER NOT NULL,
	not_computable   INTEGER NOT NULL,
	wer_mean         REAL,
	cer_mean         REAL,
	accuracy_mean    REAL,
	corpus_wer       REAL,
	corpus_cer       REAL,
	results_path     TEXT
);

CREATE TABLE IF NOT EXISTS page_scores (
	run_id      TEXT NOT NULL,
	page_index  INTEGER NOT NULL,
	page_id     TEXT NOT NULL,
	label       TEXT,
	wer         REAL,
	cer         REAL,
	error       TEXT,
	PRIMARY KEY (run_id, page_index),
	FOREIGN KEY (run_id) REFERENCES runs(run_id)
);

CREATE INDEX IF NOT EXISTS idx_runs_report ON runs(report_id);
`

// Run is one recorded benchmark run. Rates are fractions; corpus rates are
// not computable when the run had no reference text.
type Run struct {
	ID            string        `json:"id"`
	ReportID      string        `json:"report_id"`
	CreatedAt     time.Time     `json:"created_at"`
	Provider      string        `json:"provider"`
	Model         string        `json:"model"`
	DatasetPath   string        `json:"dataset_path"`
	User          string        `json:"user,omitempty"`
	Clean         bool          `json:"clean"`
	Language      string        `json:"language"`
	TotalPages    int           `json:"total_pages"`
	SuccessCount  int           `json:"success_count"`
	FailureCount  int           `json:"failure_count"`
	NotComputable int           `json:"not_computable"`
	WERMean       metrics.Value `json:"wer_mean"`
	CERMean       metrics.Value `json:"cer_mean"`
	AccuracyMean  metrics.Value `json:"accuracy_mean"`
	CorpusWER     metrics.Value `json:"corpus_wer"`
	CorpusCER     metrics.Value `json:"corpus_cer"`
	ResultsPath   string        `json:"results_path,omitempty"`
}

// PageScore is the stored outcome of one page of a run
type PageScore struct {
	Index int           `json:"index"`
	ID    string        `json:"id"`
	Label string        `json:"label"`
	WER   metrics.Value `json:"wer"`
	CER   metrics.Value `json:"cer"`
	Error string        `json:"error,omitempty"`
}

// LabelStat is the mean error rate of the pages sharing a label
type LabelStat struct {
	Label   string        `json:"label"`
	Pages   int           `json:"pages"`
	WERMean metrics.Value `json:"wer_mean"`
	CERMean metrics.Value `json:"cer_mean"`
}

// Store manages the run history in SQLite.
type Store struct {
	db *sql.DB
}

// NewStore opens a SQLite database and runs migrations.
func NewStore(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open history database: %w", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to set journal mode: %w", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate history database: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Record stores an aggregated run and its page scores
func (s *Store) Record(agg *metrics.AggregateResults, resultsPath string) (Run, error) {
	run := Run{
		ID:            uuid.New().String(),
		ReportID:      agg.ReportID,
		CreatedAt:     agg.EvaluationDate.UTC(),
		Provider:      agg.Provider,
		Model:         agg.Model,
		DatasetPath:   agg.DatasetPath,
		User:          agg.User,
		Clean:         agg.Clean,
		Language:      agg.Language,
		TotalPages:    agg.TotalPages,
		SuccessCount:  agg.SuccessCount,
		FailureCount:  agg.FailureCount,
		NotComputable: agg.NotComputable,
		WERMean:       statsMean(agg.WER),
		CERMean:       statsMean(agg.CER),
		AccuracyMean:  statsMean(agg.WordAccuracy),
		CorpusWER:     agg.CorpusWER,
		CorpusCER:     agg.CorpusCER,
		ResultsPath:   resultsPath,
	}
	if run.CreatedAt.IsZero() {
		run.CreatedAt = time.Now().UTC()
	}

	tx, err := s.db.Begin()
	if err != nil {
		return Run{}, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.Exec(
		`INSERT INTO runs (run_id, report_id, created_at, provider, model, dataset_path, user_name,
			clean, language, total_pages, success_count, failure_count, not_computable,
			wer_mean, cer_mean, accuracy_mean, corpus_wer, corpus_cer, results_path)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID, run.ReportID, run.CreatedAt.Format(time.RFC3339Nano), run.Provider, run.Model,
		run.DatasetPath, run.User, run.Clean, run.Language, run.TotalPages, run.SuccessCount,
		run.FailureCount, run.NotComputable, nullable(run.WERMean), nullable(run.CERMean),
		nullable(run.AccuracyMean), nullable(run.CorpusWER), nullable(run.CorpusCER), run.ResultsPath,
	)
	if err != nil {
		return Run{}, fmt.Errorf("failed to insert run: %w", err)
	}

	for i, page := range agg.Results {
		wer, cer := metrics.NotComputable, metrics.NotComputable
		if page.Result != nil {
			wer, cer = page.Result.WER, page.Result.CER
		}
		_, err := tx.Exec(
			`INSERT INTO page_scores (run_id, page_index, page_id, label, wer, cer, error)
			 VALUES (?, ?, ?, ?, ?, ?, ?)`,
			run.ID, i, page.ID, page.Label, nullable(wer), nullable(cer), page.Error,
		)
		if err != nil {
			return Run{}, fmt.Errorf("failed to insert page %s: %w", page.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return Run{}, fmt.Errorf("failed to commit run: %w", err)
	}
	return run, nil
}

const runColumns = `run_id, report_id, created_at, provider, model, dataset_path, user_name,
	clean, language, total_pages, success_count, failure_count, not_computable,
	wer_mean, cer_mean, accuracy_mean, corpus_wer, corpus_cer, results_path`

// List returns the most recent runs first. A non-positive limit returns all runs.
func (s *Store) List(limit int) ([]Run, error) {
	query := `SELECT ` + runColumns + ` FROM runs ORDER BY created_at DESC, rowid DESC`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	runs := []Run{}
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// Get returns a run by its run ID or report ID
func (s *Store) Get(id string) (Run, error) {
	row := s.db.QueryRow(`SELECT `+runColumns+` FROM runs WHERE run_id = ? OR report_id = ?
		ORDER BY created_at DESC LIMIT 1`, id, id)
	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Run{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return run, err
}

// PageScores returns the pages of a run in their original order
func (s *Store) PageScores(runID string) ([]PageScore, error) {
	rows, err := s.db.Query(
		`SELECT page_index, page_id, label, wer, cer, error FROM page_scores
		 WHERE run_id = ? ORDER BY page_index`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to query page scores: %w", err)
	}
	defer rows.Close()

	scores := []PageScore{}
	for rows.Next() {
		var p PageScore
		var label, errMsg sql.NullString
		var wer, cer sql.NullFloat64
		if err := rows.Scan(&p.Index, &p.ID, &label, &wer, &cer, &errMsg); err != nil {
			return nil, fmt.Errorf("failed to scan page score: %w", err)
		}
		p.Label = label.String
		p.Error = errMsg.String
		p.WER = fromNull(wer)
		p.CER = fromNull(cer)
		scores = append(scores, p)
	}
	return scores, rows.Err()
}

// LabelStats groups the successful pages of a run by label
func (s *Store) LabelStats(runID string) ([]LabelStat, error) {
	rows, err := s.db.Query(
		`SELECT COALESCE(label, ''), COUNT(*), AVG(wer), AVG(cer) FROM page_scores
		 WHERE run_id = ? AND (error IS NULL OR error = '')
		 GROUP BY label ORDER BY label`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to query label stats: %w", err)
	}
	defer rows.Close()

	stats := []LabelStat{}
	for rows.Next() {
		var st LabelStat
		var wer, cer sql.NullFloat64
		if err := rows.Scan(&st.Label, &st.Pages, &wer, &cer); err != nil {
			return nil, fmt.Errorf("failed to scan label stats: %w", err)
		}
		st.WERMean = fromNull(wer)
		st.CERMean = fromNull(cer)
		stats = append(stats, st)
	}
	return stats, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(row scanner) (Run, error) {
	var run Run
	var createdAt string
	var provider, model, datasetPath, user, language, resultsPath sql.NullString
	var werMean, cerMean, accMean, corpusWER, corpusCER sql.NullFloat64

	err := row.Scan(&run.ID, &run.ReportID, &createdAt, &provider, &model, &datasetPath, &user,
		&run.Clean, &language, &run.TotalPages, &run.SuccessCount, &run.FailureCount, &run.NotComputable,
		&werMean, &cerMean, &accMean, &corpusWER, &corpusCER, &resultsPath)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Run{}, err
		}
		return Run{}, fmt.Errorf("failed to scan run: %w", err)
	}

	run.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt)
	if err != nil {
		return Run{}, fmt.Errorf("failed to parse run date: %w", err)
	}
	run.Provider = provider.String
	run.Model = model.String
	run.DatasetPath = datasetPath.String
	run.User = user.String
	run.Language = language.String
	run.ResultsPath = resultsPath.String
	run.WERMean = fromNull(werMean)
	run.CERMean = fromNull(cerMean)
	run.AccuracyMean = fromNull(accMean)
	run.CorpusWER = fromNull(corpusWER)
	run.CorpusCER = fromNull(corpusCER)

	return run, nil
}

func statsMean(stats metrics.MetricStats) metrics.Value {
	if stats.Count == 0 {
		return metrics.NotComputable
	}
	return metrics.Computed(stats.Mean)
}

func nullable(v metrics.Value) sql.NullFloat64 {
	return sql.NullFloat64{Float64: v.V, Valid: v.OK}
}

func fromNull(f sql.NullFloat64) metrics.Value {
	if !f.Valid {
		return metrics.NotComputable
	}
	return metrics.Computed(f.Float64)
}
