package models

import (
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/lehigh-university-libraries/htrbench/internal/eval/metrics"
)

// ReportIDLength is the number of characters kept from the uuid
const ReportIDLength = 8

// Report is a benchmark run loaded into the viewer
type Report struct {
	ID        string                    `json:"id"`
	CreatedAt time.Time                 `json:"created_at"`
	Provider  string                    `json:"provider"`
	Model     string                    `json:"model"`
	Dataset   string                    `json:"dataset"`
	User      string                    `json:"user,omitempty"`
	Labels    []string                  `json:"labels"`
	Pages     []PageSummary             `json:"pages"`
	Results   *metrics.AggregateResults `json:"-"`
}

// PageSummary is one row of the dashboard
type PageSummary struct {
	Index        int           `json:"index"`
	ID           string        `json:"id"`
	Label        string        `json:"label"`
	WER          metrics.Value `json:"wer"`
	CER          metrics.Value `json:"cer"`
	WordAccuracy metrics.Value `json:"word_accuracy"`
	Jaccard      float64       `json:"jaccard"`
	Cosine       float64       `json:"cosine"`
	Levenshtein  int           `json:"levenshtein"`
	Error        string        `json:"error,omitempty"`
}

// NewReportID returns a short random report identifier
func NewReportID() string {
	return uuid.New().String()[:ReportIDLength]
}

// NewReport builds the viewer model of an aggregated run. A run without a
// report id is given one.
func NewReport(agg *metrics.AggregateResults) *Report {
	id := agg.ReportID
	if id == "" {
		id = NewReportID()
		agg.ReportID = id
	}

	report := &Report{
		ID:        id,
		CreatedAt: agg.EvaluationDate,
		Provider:  agg.Provider,
		Model:     agg.Model,
		Dataset:   agg.DatasetPath,
		User:      agg.User,
		Pages:     make([]PageSummary, 0, len(agg.Results)),
		Results:   agg,
	}

	labels := make(map[string]bool)
	for i, page := range agg.Results {
		summary := PageSummary{
			Index:        i,
			ID:           page.ID,
			Label:        page.Label,
			Error:        page.Error,
			WER:          metrics.NotComputable,
			CER:          metrics.NotComputable,
			WordAccuracy: metrics.NotComputable,
		}
		if r := page.Result; r != nil {
			summary.WER = r.WERPercent
			summary.CER = r.CERPercent
			summary.WordAccuracy = r.WordAccuracyPercent
			summary.Jaccard = r.Jaccard
			summary.Cosine = r.Cosine
			summary.Levenshtein = r.Levenshtein
		}
		if page.Label != "" {
			labels[page.Label] = true
		}
		report.Pages = append(report.Pages, summary)
	}

	for label := range labels {
		report.Labels = append(report.Labels, label)
	}
	sort.Strings(report.Labels)

	return report
}

// Page returns the result of page n, or false when n is out of range
func (r *Report) Page(n int) (metrics.PageResult, bool) {
	if r.Results == nil || n < 0 || n >= len(r.Results.Results) {
		return metrics.PageResult{}, false
	}
	return r.Results.Results[n], true
}
