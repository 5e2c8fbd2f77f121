package dataset

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/parquet-go/parquet-go"
)

// PredictionSuffix marks prediction files in a directory dataset
const PredictionSuffix = ".pred.txt"

var imageExtensions = map[string]bool{
	".jpeg": true,
	".jpg":  true,
	".png":  true,
	".tif":  true,
	".tiff": true,
}

// Loader handles loading of benchmark datasets: a directory of ground-truth,
// image and prediction files, a JSONL file or a Parquet file
type Loader struct {
	datasetPath string
	labels      Labels
}

// NewLoader creates a new dataset loader
func NewLoader(datasetPath string) *Loader {
	return &Loader{
		datasetPath: datasetPath,
	}
}

// WithLabels attaches labels to the records that do not carry one
func (l *Loader) WithLabels(labels Labels) *Loader {
	l.labels = labels
	return l
}

// Load loads every record of the dataset
func (l *Loader) Load() ([]PageRecord, error) {
	return l.load(-1, true)
}

// LoadSample loads a limited number of records (useful for testing).
// Malformed JSONL lines are skipped instead of failing the load.
func (l *Loader) LoadSample(limit int) ([]PageRecord, error) {
	return l.load(limit, false)
}

// LoadWithFilter loads records matching a filter function
func (l *Loader) LoadWithFilter(filterFn func(*PageRecord) bool) ([]PageRecord, error) {
	records, err := l.Load()
	if err != nil {
		return nil, err
	}

	var filtered []PageRecord
	for i := range records {
		if filterFn(&records[i]) {
			filtered = append(filtered, records[i])
		}
	}
	return filtered, nil
}

func (l *Loader) load(limit int, strict bool) ([]PageRecord, error) {
	info, err := os.Stat(l.datasetPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open dataset: %w", err)
	}

	var records []PageRecord
	if info.IsDir() {
		records, err = l.loadDirectory(limit)
	} else {
		// Detect file format
		ext := strings.ToLower(filepath.Ext(l.datasetPath))

		switch ext {
		case ".parquet":
			records, err = l.loadParquet(limit)
		case ".jsonl", ".json":
			records, err = l.loadJSONL(limit, strict)
		default:
			return nil, fmt.Errorf("unsupported file format: %s (supported: directory, .parquet, .jsonl)", ext)
		}
	}
	if err != nil {
		return nil, err
	}

	for i := range records {
		r := &records[i]
		if r.Label == "" {
			r.Label = l.labels.lookup(r)
		}
		r.normalize()
	}

	return records, nil
}

// loadDirectory pairs ground-truth files (*.txt or ALTO *.xml) with page images
// and *.pred.txt predictions by sorted file name. Lists of different lengths are
// truncated to the shortest one.
func (l *Loader) loadDirectory(limit int) ([]PageRecord, error) {
	slog.Debug("Reading dataset directory", "path", l.datasetPath)

	entries, err := os.ReadDir(l.datasetPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read dataset directory: %w", err)
	}

	// os.ReadDir returns entries sorted by file name
	var truths, images, predictions []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		lower := strings.ToLower(name)

		switch {
		case strings.HasSuffix(lower, PredictionSuffix):
			predictions = append(predictions, name)
		case strings.HasSuffix(lower, ".txt"), strings.HasSuffix(lower, ".xml"):
			truths = append(truths, name)
		case imageExtensions[filepath.Ext(lower)]:
			images = append(images, name)
		}
	}

	slog.Debug("Dataset directory contents",
		"ground_truth", len(truths),
		"images", len(images),
		"predictions", len(predictions))

	if len(truths) == 0 {
		return nil, fmt.Errorf("no ground-truth files found in %s", l.datasetPath)
	}
	if len(images) == 0 && len(predictions) == 0 {
		return nil, fmt.Errorf("no images or predictions found in %s", l.datasetPath)
	}

	n := len(truths)
	if len(images) > 0 {
		n = min(n, len(images))
	}
	if len(predictions) > 0 {
		n = min(n, len(predictions))
	}
	if n < max(len(truths), len(images), len(predictions)) {
		slog.Warn("Unpaired files in dataset directory are ignored", "pairs", n)
	}
	if limit >= 0 {
		n = min(n, limit)
	}

	records := make([]PageRecord, 0, n)
	for i := 0; i < n; i++ {
		truthPath := filepath.Join(l.datasetPath, truths[i])

		reference, err := readGroundTruth(truthPath)
		if err != nil {
			return nil, err
		}

		record := PageRecord{
			ID:        strings.TrimSuffix(truths[i], filepath.Ext(truths[i])),
			Reference: reference,
		}
		if i < len(images) {
			record.ImagePath = filepath.Join(l.datasetPath, images[i])
		}
		if i < len(predictions) {
			data, err := os.ReadFile(filepath.Join(l.datasetPath, predictions[i]))
			if err != nil {
				return nil, fmt.Errorf("failed to read prediction: %w", err)
			}
			record.Prediction = string(data)
		}

		records = append(records, record)
	}

	return records, nil
}

func readGroundTruth(path string) (string, error) {
	if strings.EqualFold(filepath.Ext(path), ".xml") {
		return readAltoFile(path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read ground truth: %w", err)
	}
	return string(data), nil
}

// loadJSONL loads records from a JSONL file, one PageRecord per line
func (l *Loader) loadJSONL(limit int, strict bool) ([]PageRecord, error) {
	slog.Debug("Opening JSONL file", "path", l.datasetPath)

	file, err := os.Open(l.datasetPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open dataset file: %w", err)
	}
	defer file.Close()

	var records []PageRecord
	scanner := bufio.NewScanner(file)

	// Increase buffer size for large JSON lines
	const maxCapacity = 10 * 1024 * 1024 // 10MB per line
	buf := make([]byte, maxCapacity)
	scanner.Buffer(buf, maxCapacity)

	lineNum := 0
	for scanner.Scan() {
		if limit >= 0 && len(records) >= limit {
			break
		}

		lineNum++
		line := scanner.Bytes()

		if len(line) == 0 {
			continue
		}

		var record PageRecord
		if err := json.Unmarshal(line, &record); err != nil {
			if strict {
				return nil, fmt.Errorf("failed to parse JSON at line %d: %w", lineNum, err)
			}
			slog.Warn("Skipping malformed line", "line", lineNum, "error", err)
			continue
		}

		if record.ID == "" {
			record.ID = fmt.Sprintf("page-%d", lineNum)
		}
		record.ImagePath = l.resolveImage(record.ImagePath)
		records = append(records, record)

		// Log progress every 1000 records
		if lineNum%1000 == 0 {
			slog.Debug("Reading JSONL", "lines_read", lineNum)
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading dataset: %w", err)
	}

	slog.Debug("Finished reading JSONL file", "total_records", len(records), "total_lines", lineNum)

	return records, nil
}

// loadParquet loads records from a Parquet file
func (l *Loader) loadParquet(limit int) ([]PageRecord, error) {
	slog.Debug("Opening Parquet file", "path", l.datasetPath)

	file, err := os.Open(l.datasetPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open parquet file: %w", err)
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return nil, fmt.Errorf("failed to stat file: %w", err)
	}

	pf, err := parquet.OpenFile(file, info.Size())
	if err != nil {
		return nil, fmt.Errorf("failed to open parquet: %w", err)
	}

	slog.Debug("Parquet file opened successfully", "num_rows", pf.NumRows(), "num_row_groups", len(pf.RowGroups()))

	reader := parquet.NewGenericReader[PageRecord](pf)
	defer reader.Close()

	var records []PageRecord
	rows := make([]PageRecord, 128) // Read in batches

	batchNum := 0
	for limit < 0 || len(records) < limit {
		n, err := reader.Read(rows)
		if n > 0 {
			batchNum++
			if limit >= 0 {
				n = min(n, limit-len(records))
			}
			records = append(records, rows[:n]...)
			slog.Debug("Read batch from Parquet", "batch", batchNum, "rows_in_batch", n, "total_rows_read", len(records))
		}
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read parquet rows: %w", err)
		}
	}

	for i := range records {
		if records[i].ID == "" {
			records[i].ID = fmt.Sprintf("page-%d", i+1)
		}
		records[i].ImagePath = l.resolveImage(records[i].ImagePath)
	}

	slog.Debug("Finished reading Parquet file", "total_records", len(records), "total_batches", batchNum)

	return records, nil
}

// resolveImage makes a relative image path relative to the dataset file
func (l *Loader) resolveImage(path string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(filepath.Dir(l.datasetPath), path)
}
