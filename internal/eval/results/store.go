package results

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/lehigh-university-libraries/htrbench/internal/eval/metrics"
)

// Output files of a run directory
const (
	ResultsFile = "report.json"
	DetailsFile = "report.txt"
)

// SaveResults writes the JSON results and the detailed text report of a run
// into outputDir
func SaveResults(agg *metrics.AggregateResults, outputDir string) error {
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	if err := agg.SaveToJSON(filepath.Join(outputDir, ResultsFile)); err != nil {
		return err
	}
	if err := agg.SaveDetailedReport(filepath.Join(outputDir, DetailsFile)); err != nil {
		return err
	}

	return nil
}

// LoadResults loads the results of a run from a directory written by
// SaveResults, or directly from a JSON file
func LoadResults(path string) (*metrics.AggregateResults, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open results: %w", err)
	}
	if info.IsDir() {
		path = filepath.Join(path, ResultsFile)
	}
	return metrics.LoadFromJSON(path)
}
