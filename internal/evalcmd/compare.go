package evalcmd

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/lehigh-university-libraries/htrbench/internal/eval/metrics"
	"github.com/lehigh-university-libraries/htrbench/internal/eval/signal"
	"golang.org/x/text/unicode/norm"
)

// CompareOptions configures a single reference/prediction comparison
type CompareOptions struct {
	Clean       bool
	Language    string
	TopN        int
	ShowSignal  bool
	SampleStart int
	SampleEnd   int
}

// readTextArg returns the content of arg when it names a file, and arg itself otherwise
func readTextArg(arg string) (string, error) {
	info, err := os.Stat(arg)
	if err != nil || info.IsDir() {
		return norm.NFC.String(arg), nil
	}
	data, err := os.ReadFile(arg)
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", arg, err)
	}
	return norm.NFC.String(strings.TrimRight(string(data), "\r\n")), nil
}

func executeCompare(referenceArg, predictionArg string, opts CompareOptions, w io.Writer) error {
	reference, err := readTextArg(referenceArg)
	if err != nil {
		return err
	}
	prediction, err := readTextArg(predictionArg)
	if err != nil {
		return err
	}

	r := metrics.Compute(reference, prediction, metrics.Options{
		Clean:    opts.Clean,
		Language: opts.Language,
		TopN:     opts.TopN,
	})

	fmt.Fprintf(w, "Reference:  %s\n", r.Reference)
	fmt.Fprintf(w, "Prediction: %s\n", r.Prediction)
	fmt.Fprintln(w, strings.Repeat("-", 70))
	fmt.Fprintf(w, "WER: %s%%\n", r.WERPercent)
	fmt.Fprintf(w, "CER: %s%%\n", r.CERPercent)
	fmt.Fprintf(w, "Word Accuracy: %s%%\n", r.WordAccuracyPercent)
	fmt.Fprintf(w, "Jaccard: %.2f\n", r.Jaccard)
	fmt.Fprintf(w, "Cosine: %.2f\n", r.Cosine)
	fmt.Fprintf(w, "Levenshtein: %d\n", r.Levenshtein)
	fmt.Fprintf(w, "Hamming: %s\n", r.Hamming)
	fmt.Fprintf(w, "Ratcliff/Obershelp ratio: %.2f\n", metrics.Truncate2(r.RatOb.Ratio))

	fmt.Fprintln(w, "\nDiff ({+inserted} [-deleted]):")
	fmt.Fprintln(w, renderDiff(r.Diff()))

	fmt.Fprintf(w, "\nConfusions (%d pairs):\n", len(r.Confusions))
	for _, line := range metrics.RankingLines(r.TopConfusions) {
		fmt.Fprintf(w, "  %s\n", line)
	}

	if opts.ShowSignal {
		writeSignal(w, signal.Analyze(reference, prediction), opts)
	}

	return nil
}

// renderDiff groups consecutive segments of the same class into plain-text markup
func renderDiff(segments []metrics.Segment) string {
	var b strings.Builder
	for i := 0; i < len(segments); {
		class := segments[i].Class
		var run strings.Builder
		for i < len(segments) && segments[i].Class == class {
			run.WriteString(segments[i].Text)
			i++
		}
		switch class {
		case "insert":
			fmt.Fprintf(&b, "{+%s}", run.String())
		case "delete":
			fmt.Fprintf(&b, "[-%s]", run.String())
		default:
			b.WriteString(run.String())
		}
	}
	return b.String()
}

func writeSignal(w io.Writer, report signal.Report, opts CompareOptions) {
	start, end := opts.SampleStart, opts.SampleEnd
	if end <= start {
		start, end = signal.DefaultSampleStart, signal.DefaultSampleEnd
	}

	fmt.Fprintln(w, "\nSignal:")
	fmt.Fprintf(w, "  Reference weights:  %v\n", signal.Sample(report.Reference, start, end))
	fmt.Fprintf(w, "  Prediction weights: %v\n", signal.Sample(report.Prediction, start, end))
	fmt.Fprintf(w, "  Deltas:             %v\n", signal.Sample(report.Deltas, start, end))
	fmt.Fprintf(w, "  Error positions:    %v\n", report.ErrorPositions)
	fmt.Fprintf(w, "  Mean: %s  Variance: %s  Std Dev: %s\n", report.Stats.Mean, report.Stats.Variance, report.Stats.StdDev)
	fmt.Fprintf(w, "  |delta| within 1 sd: %g, 1-1.5 sd: %g, 1.5-2 sd: %g, beyond 2 sd: %g\n",
		report.Bands.Within1, report.Bands.Within15, report.Bands.Within2, report.Bands.Beyond2)
}
