package evalcmd

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/lehigh-university-libraries/htrbench/internal/eval/metrics"
	"github.com/lehigh-university-libraries/htrbench/internal/eval/results"
	"gopkg.in/yaml.v3"
)

// ReportFormats lists the formats accepted by eval report
var ReportFormats = []string{"text", "json", "csv", "yaml", "pdf"}

func executeReport(resultsPath, format, output string, w io.Writer) error {
	agg, err := results.LoadResults(resultsPath)
	if err != nil {
		return fmt.Errorf("failed to load results: %w", err)
	}

	switch format {
	case "text":
		return printTextReport(agg, w)
	case "json":
		return printJSONReport(agg, w)
	case "csv":
		return printCSVReport(agg, w)
	case "yaml":
		return printYAMLReport(agg, w)
	case "pdf":
		if output == "" {
			output = fmt.Sprintf("htrbench-%s.pdf", agg.ReportID)
		}
		if err := savePDFReport(agg, output); err != nil {
			return err
		}
		fmt.Fprintf(w, "PDF report written to %s\n", output)
		return nil
	default:
		return fmt.Errorf("unsupported format: %s (expected one of %s)", format, strings.Join(ReportFormats, ", "))
	}
}

func printTextReport(agg *metrics.AggregateResults, w io.Writer) error {
	agg.WriteSummary(w)

	fmt.Fprintln(w, "\nDetailed Results:")
	fmt.Fprintln(w, strings.Repeat("=", 70))

	for i, page := range agg.Results {
		fmt.Fprintf(w, "\n[%d] Page: %s", i+1, page.ID)
		if page.Label != "" {
			fmt.Fprintf(w, " (%s)", page.Label)
		}
		fmt.Fprintln(w)

		if page.Error != "" {
			fmt.Fprintf(w, "  Error: %s\n", page.Error)
			continue
		}
		r := page.Result
		if r == nil {
			continue
		}

		fmt.Fprintf(w, "  WER: %s%%  CER: %s%%  Word Accuracy: %s%%\n", r.WERPercent, r.CERPercent, r.WordAccuracyPercent)
		fmt.Fprintf(w, "  Jaccard: %.2f  Cosine: %.2f  Levenshtein: %d\n", r.Jaccard, r.Cosine, r.Levenshtein)
		fmt.Fprintf(w, "  Reference:  %s\n", truncate(r.Reference, 80))
		fmt.Fprintf(w, "  Prediction: %s\n", truncate(r.Prediction, 80))

		if len(r.TopConfusions) > 0 {
			fmt.Fprintln(w, "  Top confusions:")
			for _, line := range metrics.RankingLines(r.TopConfusions) {
				fmt.Fprintf(w, "    %s\n", line)
			}
		}
	}

	return nil
}

func printJSONReport(agg *metrics.AggregateResults, w io.Writer) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(agg)
}

func printCSVReport(agg *metrics.AggregateResults, w io.Writer) error {
	writer := csv.NewWriter(w)
	defer writer.Flush()

	header := []string{"ID", "Label", "WER", "CER", "Word Accuracy", "Jaccard", "Cosine", "Levenshtein", "Hamming", "Processing Time", "Error"}
	if err := writer.Write(header); err != nil {
		return err
	}

	for _, page := range agg.Results {
		row := []string{page.ID, page.Label}

		if r := page.Result; page.Error == "" && r != nil {
			row = append(row,
				csvValue(r.WERPercent),
				csvValue(r.CERPercent),
				csvValue(r.WordAccuracyPercent),
				fmt.Sprintf("%.2f", r.Jaccard),
				fmt.Sprintf("%.2f", r.Cosine),
				fmt.Sprintf("%d", r.Levenshtein),
				csvValue(r.Hamming),
			)
		} else {
			row = append(row, "", "", "", "", "", "", "")
		}
		row = append(row, page.ProcessingTime.String(), page.Error)

		if err := writer.Write(row); err != nil {
			return err
		}
	}

	return writer.Error()
}

func csvValue(v metrics.Value) string {
	if !v.OK {
		return ""
	}
	return fmt.Sprintf("%.2f", v.V)
}

func printYAMLReport(agg *metrics.AggregateResults, w io.Writer) error {
	spec := results.NewEvalSpec(results.EvalConfig{
		ReportID:    agg.ReportID,
		Provider:    agg.Provider,
		Model:       agg.Model,
		DatasetPath: agg.DatasetPath,
		Clean:       agg.Clean,
		Language:    agg.Language,
		User:        agg.User,
		Timestamp:   agg.EvaluationDate.Format("2006-01-02_15-04-05"),
	}, agg.Results)

	encoder := yaml.NewEncoder(w)
	encoder.SetIndent(2)
	if err := encoder.Encode(&spec); err != nil {
		return fmt.Errorf("failed to encode YAML: %w", err)
	}
	return encoder.Close()
}

func truncate(s string, maxLen int) string {
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	return string(runes[:maxLen-3]) + "..."
}
