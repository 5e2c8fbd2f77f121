package evalcmd

import (
	"fmt"
	"os"

	"github.com/lehigh-university-libraries/htrbench/internal/eval/history"
	"github.com/lehigh-university-libraries/htrbench/internal/eval/metrics"
	"github.com/lehigh-university-libraries/htrbench/internal/eval/results"
	"github.com/lehigh-university-libraries/htrbench/internal/eval/signal"
	"github.com/lehigh-university-libraries/htrbench/internal/ocr"
	"github.com/spf13/cobra"
)

// NewRunCmd creates the run command
func NewRunCmd() *cobra.Command {
	var opts RunOptions
	var record bool

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Benchmark a transcription model against reference transcriptions",
		Long: `Run a benchmark over a dataset of handwritten pages.

Pages that already carry a prediction are scored as-is. Pages with only an
image are transcribed first with the selected provider (ollama, openai,
gemini or tesseract). Every page is scored with WER, CER, word accuracy,
Jaccard, cosine, Levenshtein and Hamming metrics plus a confusion ranking.

Datasets can be a directory of .txt/.xml ground truth with images or
.pred.txt predictions, a JSONL file, a parquet file, or a hub path such as
hf://owner/repo/data/test.parquet.`,
		Example: `  # Score predictions already stored next to the ground truth
  htrbench eval run --dataset ./pages

  # Transcribe 20 pages with Ollama and clean the text before scoring
  htrbench eval run --dataset ./pages --sample 20 --provider ollama --model llava --clean

  # Transcribe with OpenAI, 4 pages at a time, and keep the run in the history
  htrbench eval run --dataset pages.jsonl --provider openai --concurrency 4 --history`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.DatasetPath == "" {
				return fmt.Errorf("--dataset is required")
			}
			if !record {
				opts.HistoryPath = ""
			}
			if opts.HubToken == "" {
				opts.HubToken = os.Getenv("HF_TOKEN")
			}

			agg, err := executeRun(cmd.Context(), opts, ocr.NewService())
			if err != nil {
				return err
			}
			printRunFooter(agg, opts.OutputDir)
			return nil
		},
	}

	cmd.Flags().StringVar(&opts.DatasetPath, "dataset", "", "Dataset directory, jsonl/parquet file or hf:// path (required)")
	cmd.Flags().StringVar(&opts.LabelsPath, "labels", "", "YAML file mapping image names to labels")
	cmd.Flags().StringVar(&opts.Provider, "provider", "", "Transcription provider (ollama, openai, gemini, tesseract); defaults to $HTRBENCH_PROVIDER or ollama")
	cmd.Flags().StringVar(&opts.Model, "model", "", "Model name (defaults to provider's default)")
	cmd.Flags().StringVar(&opts.OutputDir, "output", "", "Output directory for results (default eval_results/<report id>)")
	cmd.Flags().StringVar(&opts.EvalsDir, "evals-dir", results.DefaultEvalsDir, "Directory for YAML result specs")
	cmd.Flags().BoolVar(&record, "history", false, "Record the run in the history database")
	cmd.Flags().StringVar(&opts.HistoryPath, "db", history.DefaultPath, "History database path")
	cmd.Flags().StringVar(&opts.User, "user", os.Getenv("USER"), "User recorded with the run")
	cmd.Flags().StringVar(&opts.Language, "language", metrics.DefaultLanguage, "Language used for stop-words in Jaccard and cosine similarity")
	cmd.Flags().BoolVar(&opts.Clean, "clean", false, "Strip punctuation, digits and line breaks before WER/CER")
	cmd.Flags().IntVar(&opts.Concurrency, "concurrency", 1, "Number of pages processed concurrently")
	cmd.Flags().IntVar(&opts.SampleSize, "sample", 0, "Number of pages to evaluate (0 for all)")
	cmd.Flags().IntVar(&opts.TopN, "top", metrics.DefaultTopConfusions, "Number of confusion pairs kept per page")
	cmd.Flags().StringVar(&opts.CacheDir, "cache-dir", "", "Cache directory for hub datasets")

	_ = cmd.MarkFlagRequired("dataset")

	return cmd
}

// NewReportCmd creates the report command
func NewReportCmd() *cobra.Command {
	var resultsPath string
	var format string
	var output string

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Generate a report from saved benchmark results",
		Example: `  # Print the detailed text report
  htrbench eval report --results eval_results/a1b2c3d4

  # Export per-page scores as CSV
  htrbench eval report --results eval_results/a1b2c3d4 --format csv > scores.csv

  # Write a PDF report
  htrbench eval report --results eval_results/a1b2c3d4 --format pdf --output report.pdf`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return executeReport(resultsPath, format, output, cmd.OutOrStdout())
		},
	}

	cmd.Flags().StringVar(&resultsPath, "results", "", "Results directory or report.json file (required)")
	cmd.Flags().StringVar(&format, "format", "text", "Output format (text, json, csv, yaml, pdf)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output file for the pdf format")

	_ = cmd.MarkFlagRequired("results")

	return cmd
}

// NewCompareCmd creates the compare command
func NewCompareCmd() *cobra.Command {
	var reference, prediction string
	opts := CompareOptions{}

	cmd := &cobra.Command{
		Use:   "compare",
		Short: "Score a single prediction against a reference",
		Long: `Compare one prediction with one reference and print every metric, the
character diff and the confusion ranking. Each argument is read from a file
when it names one, and used as literal text otherwise.`,
		Example: `  htrbench eval compare --reference "Le chat dort" --prediction "Le chien dort"
  htrbench eval compare --reference page.txt --prediction page.pred.txt --signal`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return executeCompare(reference, prediction, opts, cmd.OutOrStdout())
		},
	}

	cmd.Flags().StringVar(&reference, "reference", "", "Reference text or file (required)")
	cmd.Flags().StringVar(&prediction, "prediction", "", "Predicted text or file (required)")
	cmd.Flags().BoolVar(&opts.Clean, "clean", false, "Strip punctuation, digits and line breaks before WER/CER")
	cmd.Flags().StringVar(&opts.Language, "language", metrics.DefaultLanguage, "Language used for stop-words")
	cmd.Flags().IntVar(&opts.TopN, "top", metrics.DefaultTopConfusions, "Number of confusion pairs to rank")
	cmd.Flags().BoolVar(&opts.ShowSignal, "signal", false, "Print the weight signal analysis")
	cmd.Flags().IntVar(&opts.SampleStart, "min-interval", signal.DefaultSampleStart, "First signal position shown")
	cmd.Flags().IntVar(&opts.SampleEnd, "max-interval", signal.DefaultSampleEnd, "Signal position after the last one shown")

	_ = cmd.MarkFlagRequired("reference")
	_ = cmd.MarkFlagRequired("prediction")

	return cmd
}

// NewHistoryCmd creates the history command
func NewHistoryCmd() *cobra.Command {
	var dbPath string
	var limit int
	var runID string

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List benchmark runs recorded with --history",
		Example: `  # Last 20 runs
  htrbench eval history

  # Per-label breakdown of one run
  htrbench eval history --run a1b2c3d4`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return executeHistory(dbPath, limit, runID, cmd.OutOrStdout())
		},
	}

	cmd.Flags().StringVar(&dbPath, "db", history.DefaultPath, "History database path")
	cmd.Flags().IntVar(&limit, "limit", 20, "Number of runs to list (0 for all)")
	cmd.Flags().StringVar(&runID, "run", "", "Show one run by report or run id")

	return cmd
}
