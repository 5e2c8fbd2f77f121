package metrics

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"time"
)

// PageResult is the evaluation of a single page
type PageResult struct {
	ID             string        `json:"id"`
	ImagePath      string        `json:"image_path,omitempty"`
	Label          string        `json:"label,omitempty"`
	Result         *Result       `json:"result,omitempty"`
	ProcessingTime time.Duration `json:"processing_time"`
	Error          string        `json:"error,omitempty"` // If transcription failed
}

// AggregateResults represents aggregated benchmark metrics
type AggregateResults struct {
	ReportID     string `json:"report_id"`
	TotalPages   int    `json:"total_pages"`
	SuccessCount int    `json:"success_count"`
	FailureCount int    `json:"failure_count"`

	// Pages whose reference was empty, so WER/CER could not be computed
	NotComputable int `json:"not_computable"`

	WER          MetricStats `json:"wer"`
	CER          MetricStats `json:"cer"`
	WordAccuracy MetricStats `json:"word_accuracy"`
	Jaccard      MetricStats `json:"jaccard"`
	Cosine       MetricStats `json:"cosine"`

	// Corpus-level rates: total edits over total reference length
	TotalWordErrors int   `json:"total_word_errors"`
	TotalRefWords   int   `json:"total_ref_words"`
	TotalCharErrors int   `json:"total_char_errors"`
	TotalRefChars   int   `json:"total_ref_chars"`
	CorpusWER       Value `json:"corpus_wer"`
	CorpusCER       Value `json:"corpus_cer"`

	AverageProcessingTime time.Duration `json:"average_processing_time"`
	TotalProcessingTime   time.Duration `json:"total_processing_time"`

	Results []PageResult `json:"results"`

	EvaluationDate time.Time `json:"evaluation_date"`
	Provider       string    `json:"provider"`
	Model          string    `json:"model"`
	DatasetPath    string    `json:"dataset_path"`
	User           string    `json:"user,omitempty"`
	Clean          bool      `json:"clean"`
	Language       string    `json:"language"`
}

// MetricStats summarises one metric across pages
type MetricStats struct {
	Count  int       `json:"count"`
	Mean   float64   `json:"mean"`
	Median float64   `json:"median"`
	Min    float64   `json:"min"`
	Max    float64   `json:"max"`
	Scores []float64 `json:"-"`
}

// AggregateOptions describes the run that produced the page results
type AggregateOptions struct {
	ReportID    string
	Provider    string
	Model       string
	DatasetPath string
	User        string
	Clean       bool
	Language    string
}

// AggregatePageResults aggregates per-page results into run statistics
func AggregatePageResults(results []PageResult, opts AggregateOptions) *AggregateResults {
	agg := &AggregateResults{
		ReportID:       opts.ReportID,
		TotalPages:     len(results),
		Results:        results,
		EvaluationDate: time.Now(),
		Provider:       opts.Provider,
		Model:          opts.Model,
		DatasetPath:    opts.DatasetPath,
		User:           opts.User,
		Clean:          opts.Clean,
		Language:       opts.Language,
	}

	var totalDuration time.Duration
	var successDuration time.Duration

	for _, result := range results {
		totalDuration += result.ProcessingTime

		if result.Error != "" || result.Result == nil {
			agg.FailureCount++
			continue
		}

		agg.SuccessCount++
		successDuration += result.ProcessingTime

		r := result.Result
		agg.TotalWordErrors += r.WordDistance
		agg.TotalRefWords += r.ReferenceWords
		agg.TotalCharErrors += r.CharDistance
		agg.TotalRefChars += r.ReferenceChars

		if !r.WER.OK || !r.CER.OK {
			agg.NotComputable++
		}
		addScore(&agg.WER, r.WER)
		addScore(&agg.CER, r.CER)
		addScore(&agg.WordAccuracy, r.WordAccuracy)
		addScore(&agg.Jaccard, Computed(r.Jaccard))
		addScore(&agg.Cosine, Computed(r.Cosine))
	}

	for _, stats := range []*MetricStats{&agg.WER, &agg.CER, &agg.WordAccuracy, &agg.Jaccard, &agg.Cosine} {
		finalizeStats(stats)
	}

	agg.CorpusWER = ratio(agg.TotalWordErrors, agg.TotalRefWords)
	agg.CorpusCER = ratio(agg.TotalCharErrors, agg.TotalRefChars)

	if agg.SuccessCount > 0 {
		agg.AverageProcessingTime = successDuration / time.Duration(agg.SuccessCount)
	}
	agg.TotalProcessingTime = totalDuration

	return agg
}

// addScore records a computable value, skipping NotComputable
func addScore(stats *MetricStats, v Value) {
	if !v.OK {
		return
	}
	stats.Scores = append(stats.Scores, v.V)
}

// finalizeStats computes mean, median, min and max from the collected scores
func finalizeStats(stats *MetricStats) {
	stats.Count = len(stats.Scores)
	if stats.Count == 0 {
		return
	}

	stats.Mean = calculateAverage(stats.Scores)

	sorted := append([]float64(nil), stats.Scores...)
	sort.Float64s(sorted)
	mid := len(sorted) / 2
	if len(sorted)%2 == 0 {
		stats.Median = (sorted[mid-1] + sorted[mid]) / 2
	} else {
		stats.Median = sorted[mid]
	}
	stats.Min = sorted[0]
	stats.Max = sorted[len(sorted)-1]
}

// calculateAverage calculates the average of a slice of scores
func calculateAverage(scores []float64) float64 {
	if len(scores) == 0 {
		return 0.0
	}

	sum := 0.0
	for _, score := range scores {
		sum += score
	}

	return sum / float64(len(scores))
}

func ratio(num, den int) Value {
	if den == 0 {
		return NotComputable
	}
	return Computed(float64(num) / float64(den))
}

// PrintSummary prints a human-readable summary of the benchmark
func (a *AggregateResults) PrintSummary() {
	a.WriteSummary(os.Stdout)
}

// WriteSummary writes the summary printed by PrintSummary to w
func (a *AggregateResults) WriteSummary(w io.Writer) {
	fmt.Fprintln(w, "\n"+strings.Repeat("=", 70))
	fmt.Fprintln(w, "HTR BENCHMARK SUMMARY")
	fmt.Fprintln(w, strings.Repeat("=", 70))
	fmt.Fprintf(w, "Report ID: %s\n", a.ReportID)
	fmt.Fprintf(w, "Evaluation Date: %s\n", a.EvaluationDate.Format("2006-01-02 15:04:05"))
	fmt.Fprintf(w, "Provider: %s\n", a.Provider)
	fmt.Fprintf(w, "Model: %s\n", a.Model)
	if a.User != "" {
		fmt.Fprintf(w, "User: %s\n", a.User)
	}
	fmt.Fprintf(w, "Clean Text: %t\n", a.Clean)
	fmt.Fprintln(w)

	fmt.Fprintln(w, "PROCESSING STATISTICS")
	fmt.Fprintln(w, strings.Repeat("-", 70))
	fmt.Fprintf(w, "Total Pages: %d\n", a.TotalPages)
	if a.TotalPages > 0 {
		fmt.Fprintf(w, "Successful: %d (%.1f%%)\n", a.SuccessCount, float64(a.SuccessCount)/float64(a.TotalPages)*100)
		fmt.Fprintf(w, "Failed: %d (%.1f%%)\n", a.FailureCount, float64(a.FailureCount)/float64(a.TotalPages)*100)
	}
	fmt.Fprintf(w, "Not Computable: %d\n", a.NotComputable)
	fmt.Fprintf(w, "Average Processing Time: %s\n", a.AverageProcessingTime)
	fmt.Fprintf(w, "Total Processing Time: %s\n", a.TotalProcessingTime)
	fmt.Fprintln(w)

	fmt.Fprintln(w, "PAGE-LEVEL METRICS")
	fmt.Fprintln(w, strings.Repeat("-", 70))
	writeMetricStats(w, "WER", a.WER, true)
	writeMetricStats(w, "CER", a.CER, true)
	writeMetricStats(w, "Word Accuracy", a.WordAccuracy, true)
	writeMetricStats(w, "Jaccard", a.Jaccard, false)
	writeMetricStats(w, "Cosine", a.Cosine, false)
	fmt.Fprintln(w)

	fmt.Fprintln(w, "CORPUS")
	fmt.Fprintln(w, strings.Repeat("-", 70))
	fmt.Fprintf(w, "Word Errors: %d / %d words\n", a.TotalWordErrors, a.TotalRefWords)
	fmt.Fprintf(w, "Char Errors: %d / %d characters\n", a.TotalCharErrors, a.TotalRefChars)
	fmt.Fprintf(w, "Corpus WER: %s%%\n", Percent(a.CorpusWER))
	fmt.Fprintf(w, "Corpus CER: %s%%\n", Percent(a.CorpusCER))
	fmt.Fprintln(w, strings.Repeat("=", 70))
}

// writeMetricStats prints statistics for a single metric
func writeMetricStats(w io.Writer, name string, stats MetricStats, percent bool) {
	scale := 1.0
	unit := ""
	if percent {
		scale = 100
		unit = "%"
	}
	fmt.Fprintf(w, "\n%s (%d pages):\n", name, stats.Count)
	fmt.Fprintf(w, "  Mean:   %.2f%s\n", Truncate2(stats.Mean*scale), unit)
	fmt.Fprintf(w, "  Median: %.2f%s\n", Truncate2(stats.Median*scale), unit)
	fmt.Fprintf(w, "  Min:    %.2f%s\n", Truncate2(stats.Min*scale), unit)
	fmt.Fprintf(w, "  Max:    %.2f%s\n", Truncate2(stats.Max*scale), unit)
}

// SaveToJSON saves the aggregate results to a JSON file
func (a *AggregateResults) SaveToJSON(filepath string) error {
	file, err := os.Create(filepath)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer file.Close()

	encoder := json.NewEncoder(file)
	encoder.SetIndent("", "  ")

	if err := encoder.Encode(a); err != nil {
		return fmt.Errorf("failed to encode results to JSON: %w", err)
	}

	return nil
}

// LoadFromJSON reads results written by SaveToJSON
func LoadFromJSON(filepath string) (*AggregateResults, error) {
	file, err := os.Open(filepath)
	if err != nil {
		return nil, fmt.Errorf("failed to open results file: %w", err)
	}
	defer file.Close()

	var agg AggregateResults
	if err := json.NewDecoder(file).Decode(&agg); err != nil {
		return nil, fmt.Errorf("failed to decode results: %w", err)
	}

	return &agg, nil
}

// SaveDetailedReport saves a detailed report with individual results
func (a *AggregateResults) SaveDetailedReport(filepath string) error {
	file, err := os.Create(filepath)
	if err != nil {
		return fmt.Errorf("failed to create report file: %w", err)
	}
	defer file.Close()

	fmt.Fprintf(file, "HTR BENCHMARK DETAILED REPORT\n")
	fmt.Fprintf(file, "Generated: %s\n", a.EvaluationDate.Format("2006-01-02 15:04:05"))
	fmt.Fprintf(file, "Provider: %s, Model: %s\n", a.Provider, a.Model)
	separator := strings.Repeat("=", 80)
	fmt.Fprintf(file, "%s\n\n", separator)

	dash := strings.Repeat("-", 80)
	for i, result := range a.Results {
		fmt.Fprintf(file, "PAGE %d: %s\n", i+1, result.ID)
		fmt.Fprintf(file, "%s\n", dash)
		if result.ImagePath != "" {
			fmt.Fprintf(file, "Image: %s\n", result.ImagePath)
		}
		if result.Label != "" {
			fmt.Fprintf(file, "Label: %s\n", result.Label)
		}
		fmt.Fprintf(file, "Processing Time: %s\n", result.ProcessingTime)

		if result.Error != "" {
			fmt.Fprintf(file, "ERROR: %s\n", result.Error)
		} else if r := result.Result; r != nil {
			fmt.Fprintf(file, "\nReference:  %s\n", r.Reference)
			fmt.Fprintf(file, "Prediction: %s\n", r.Prediction)
			fmt.Fprintf(file, "\nWER: %s%%  CER: %s%%  Word Accuracy: %s%%\n", r.WERPercent, r.CERPercent, r.WordAccuracyPercent)
			fmt.Fprintf(file, "Jaccard: %.2f  Cosine: %.2f\n", r.Jaccard, r.Cosine)
			fmt.Fprintf(file, "Levenshtein: %d  Hamming: %s\n", r.Levenshtein, r.Hamming)
			if len(r.TopConfusions) > 0 {
				fmt.Fprintf(file, "\nMost frequent confusions:\n")
				for _, line := range RankingLines(r.TopConfusions) {
					fmt.Fprintf(file, "  %s\n", line)
				}
			}
		}

		fmt.Fprintf(file, "\n%s\n\n", separator)
	}

	return nil
}
