package evalcmd

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/lehigh-university-libraries/htrbench/internal/eval/dataset"
	"github.com/lehigh-university-libraries/htrbench/internal/eval/history"
	"github.com/lehigh-university-libraries/htrbench/internal/eval/metrics"
	"github.com/lehigh-university-libraries/htrbench/internal/eval/results"
	"github.com/lehigh-university-libraries/htrbench/internal/models"
	"github.com/lehigh-university-libraries/htrbench/internal/ocr"
	"github.com/lehigh-university-libraries/htrbench/internal/telemetry"
)

// Transcriber produces a prediction for a page image
type Transcriber interface {
	Transcribe(ctx context.Context, imagePath, provider, model string) (string, error)
}

// RunOptions configures a benchmark run
type RunOptions struct {
	DatasetPath string
	LabelsPath  string
	Provider    string
	Model       string
	OutputDir   string
	EvalsDir    string
	HistoryPath string
	User        string
	Language    string
	Clean       bool
	Concurrency int
	SampleSize  int
	TopN        int
	CacheDir    string
	HubToken    string
}

func executeRun(ctx context.Context, opts RunOptions, transcriber Transcriber) (*metrics.AggregateResults, error) {
	if opts.Concurrency < 1 {
		opts.Concurrency = 1
	}
	reportID := models.NewReportID()
	slog.Info("Starting evaluation run", "report_id", reportID, "dataset", opts.DatasetPath, "provider", opts.Provider, "model", opts.Model)

	datasetPath, err := dataset.NewDownloader(dataset.DownloadConfig{
		CacheDir: opts.CacheDir,
		Token:    opts.HubToken,
	}).Resolve(ctx, opts.DatasetPath)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve dataset: %w", err)
	}

	records, err := loadRecords(datasetPath, opts)
	if err != nil {
		return nil, err
	}
	slog.Info("Dataset loaded", "pages", len(records))

	needsTranscription := false
	for _, r := range records {
		if !r.HasPrediction() {
			needsTranscription = true
			break
		}
	}
	if needsTranscription {
		opts.Provider = ocr.ResolveProvider(opts.Provider)
		if opts.Model == "" {
			opts.Model = ocr.DefaultModel(opts.Provider)
		}
	} else if opts.Model == "" {
		opts.Model = "precomputed"
	}

	slog.Info("Processing pages", "concurrency", opts.Concurrency, "transcribe", needsTranscription)

	pages := make([]metrics.PageResult, len(records))
	var wg sync.WaitGroup
	semaphore := make(chan struct{}, opts.Concurrency)

	for i, record := range records {
		wg.Add(1)
		go func(idx int, record dataset.PageRecord) {
			defer wg.Done()
			semaphore <- struct{}{}        // Acquire
			defer func() { <-semaphore }() // Release

			slog.Debug("Processing page", "id", record.ID, "progress", fmt.Sprintf("%d/%d", idx+1, len(records)))
			pages[idx] = processPage(ctx, record, transcriber, opts)
		}(i, record)
	}
	wg.Wait()

	agg := metrics.AggregatePageResults(pages, metrics.AggregateOptions{
		ReportID:    reportID,
		Provider:    opts.Provider,
		Model:       opts.Model,
		DatasetPath: opts.DatasetPath,
		User:        opts.User,
		Clean:       opts.Clean,
		Language:    opts.Language,
	})
	recordRunTelemetry(agg)

	if err := saveRun(agg, opts); err != nil {
		return nil, err
	}

	return agg, nil
}

func loadRecords(datasetPath string, opts RunOptions) ([]dataset.PageRecord, error) {
	loader := dataset.NewLoader(datasetPath)
	if opts.LabelsPath != "" {
		labels, err := dataset.LoadLabels(opts.LabelsPath)
		if err != nil {
			return nil, err
		}
		loader = loader.WithLabels(labels)
	}

	var records []dataset.PageRecord
	var err error
	if opts.SampleSize > 0 {
		records, err = loader.LoadSample(opts.SampleSize)
	} else {
		records, err = loader.Load()
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load dataset: %w", err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("dataset %s has no pages", datasetPath)
	}
	return records, nil
}

func processPage(ctx context.Context, record dataset.PageRecord, transcriber Transcriber, opts RunOptions) metrics.PageResult {
	start := time.Now()
	result := metrics.PageResult{
		ID:        record.ID,
		ImagePath: record.ImagePath,
		Label:     record.Label,
	}
	defer func() {
		result.ProcessingTime = time.Since(start)
	}()

	if err := ctx.Err(); err != nil {
		result.Error = fmt.Sprintf("run canceled: %v", err)
		telemetry.PagesTotal.WithLabelValues("failed").Inc()
		return result
	}

	prediction := record.Prediction
	if !record.HasPrediction() {
		if !record.CanTranscribe() {
			result.Error = "no prediction or image available"
			telemetry.PagesTotal.WithLabelValues("failed").Inc()
			return result
		}
		if transcriber == nil {
			result.Error = "no transcriber configured"
			telemetry.PagesTotal.WithLabelValues("failed").Inc()
			return result
		}

		transcribeStart := time.Now()
		text, err := transcriber.Transcribe(ctx, record.ImagePath, opts.Provider, opts.Model)
		telemetry.TranscriptionDuration.WithLabelValues(opts.Provider).Observe(time.Since(transcribeStart).Seconds())
		if err != nil {
			slog.Error("Failed to transcribe page", "id", record.ID, "err", err)
			result.Error = fmt.Sprintf("failed to transcribe: %v", err)
			telemetry.PagesTotal.WithLabelValues("failed").Inc()
			return result
		}
		prediction = text
	}

	scoringStart := time.Now()
	result.Result = metrics.Compute(record.Reference, prediction, metrics.Options{
		Clean:    opts.Clean,
		Language: opts.Language,
		TopN:     opts.TopN,
	})
	telemetry.ScoringDuration.Observe(time.Since(scoringStart).Seconds())

	if result.Result.WER.OK {
		telemetry.PageWER.Observe(result.Result.WER.V)
		telemetry.PagesTotal.WithLabelValues("scored").Inc()
	} else {
		telemetry.PagesTotal.WithLabelValues("not_computable").Inc()
	}

	return result
}

func recordRunTelemetry(agg *metrics.AggregateResults) {
	if agg.CorpusWER.OK {
		telemetry.RunWER.WithLabelValues(agg.Model).Set(agg.CorpusWER.V)
	}
	if agg.CorpusCER.OK {
		telemetry.RunCER.WithLabelValues(agg.Model).Set(agg.CorpusCER.V)
	}
}

// saveRun writes the JSON report, the YAML spec and the history row of a run
func saveRun(agg *metrics.AggregateResults, opts RunOptions) error {
	outputDir := opts.OutputDir
	if outputDir == "" {
		outputDir = filepath.Join("eval_results", agg.ReportID)
	}

	slog.Info("Saving results", "output", outputDir)
	if err := results.SaveResults(agg, outputDir); err != nil {
		return fmt.Errorf("failed to save results: %w", err)
	}

	yamlPath, err := results.SaveToYAML(opts.EvalsDir, results.EvalConfig{
		ReportID:    agg.ReportID,
		Provider:    agg.Provider,
		Model:       agg.Model,
		Prompt:      promptFor(agg.Provider),
		DatasetPath: agg.DatasetPath,
		SampleSize:  opts.SampleSize,
		Clean:       agg.Clean,
		Language:    agg.Language,
		User:        agg.User,
		Timestamp:   agg.EvaluationDate.Format("2006-01-02_15-04-05"),
	}, agg.Results)
	if err != nil {
		return fmt.Errorf("failed to save YAML results: %w", err)
	}
	slog.Info("YAML results saved", "path", yamlPath)

	if opts.HistoryPath != "" {
		store, err := history.NewStore(opts.HistoryPath)
		if err != nil {
			return err
		}
		defer store.Close()

		if _, err := store.Record(agg, outputDir); err != nil {
			return fmt.Errorf("failed to record run history: %w", err)
		}
		slog.Info("Run recorded in history", "db", opts.HistoryPath)
	}

	return nil
}

func promptFor(provider string) string {
	switch provider {
	case "", "tesseract":
		return ""
	default:
		return ocr.BuildPrompt()
	}
}

func printRunFooter(agg *metrics.AggregateResults, outputDir string) {
	if outputDir == "" {
		outputDir = filepath.Join("eval_results", agg.ReportID)
	}
	agg.PrintSummary()
	fmt.Printf("\nResults saved to: %s\n", outputDir)
	fmt.Printf("\nGenerate detailed report with:\n")
	fmt.Printf("  htrbench eval report --results %s\n", outputDir)
	fmt.Printf("\nBrowse the report with:\n")
	fmt.Printf("  htrbench serve --results %s\n", outputDir)
}
