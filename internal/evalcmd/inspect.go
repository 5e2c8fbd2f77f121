package evalcmd

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"unicode/utf8"

	"github.com/lehigh-university-libraries/htrbench/internal/eval/dataset"
	"github.com/spf13/cobra"
)

// NewInspectCmd creates the inspect command
func NewInspectCmd() *cobra.Command {
	var datasetPath string
	var limit int
	var interactive bool
	var showText bool
	var showMetadata bool

	cmd := &cobra.Command{
		Use:   "inspect",
		Short: "Inspect dataset pages before a run",
		Long: `Inspect pages from a dataset directory, JSONL or parquet file.

This command is useful for checking how reference transcriptions, images
and predictions were paired before spending a run on them.`,
		Example: `  # Inspect first 5 pages interactively
  htrbench eval inspect --dataset ./pages --limit 5 --interactive

  # Show only metadata
  htrbench eval inspect --dataset ./data.parquet --text=false

  # Inspect all pages (no limit)
  htrbench eval inspect --dataset ./data.jsonl --limit 0`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if datasetPath == "" {
				return fmt.Errorf("--dataset is required")
			}

			// Create a context that gets canceled on an interrupt signal (Ctrl+C)
			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop() // Ensure the signal handler is cleaned up

			return executeInspect(ctx, datasetPath, limit, interactive, showText, showMetadata)
		},
	}

	cmd.Flags().StringVar(&datasetPath, "dataset", "", "Path to a dataset directory, parquet or jsonl file (required)")
	cmd.Flags().IntVar(&limit, "limit", 10, "Number of pages to inspect (0 for all)")
	cmd.Flags().BoolVar(&interactive, "interactive", false, "Pause after each page (press Enter to continue)")
	cmd.Flags().BoolVar(&showText, "text", true, "Show reference and prediction previews")
	cmd.Flags().BoolVar(&showMetadata, "metadata", true, "Show page metadata (id, label, image)")

	_ = cmd.MarkFlagRequired("dataset")

	return cmd
}

func executeInspect(ctx context.Context, datasetPath string, limit int, interactive, showText, showMetadata bool) error {
	loader := dataset.NewLoader(datasetPath)

	var records []dataset.PageRecord
	var err error

	if limit > 0 {
		records, err = loader.LoadSample(limit)
	} else {
		records, err = loader.Load()
	}

	if err != nil {
		return fmt.Errorf("failed to load dataset: %w", err)
	}

	fmt.Printf("Loaded %d records from %s\n", len(records), datasetPath)
	fmt.Println(strings.Repeat("=", 80))
	fmt.Println()

	reader := bufio.NewReader(os.Stdin)

	for i, record := range records {
		// Check for context cancellation (e.g., Ctrl+C) at the start of each iteration
		select {
		case <-ctx.Done():
			fmt.Println("\nInspection interrupted.")
			return nil
		default:
		}

		fmt.Printf("RECORD %d/%d\n", i+1, len(records))
		fmt.Println(strings.Repeat("-", 80))
		printRecord(os.Stdout, record, showText, showMetadata)
		fmt.Println()

		if interactive {
			fmt.Print("Press Enter to continue to next record (or Ctrl+C to quit)...")

			inputCh := make(chan struct{})
			go func() {
				_, _ = reader.ReadString('\n')
				close(inputCh)
			}()

			// Wait for either user input (Enter) or context cancellation (Ctrl+C)
			select {
			case <-ctx.Done():
				fmt.Println("\nInspection interrupted.")
				return nil
			case <-inputCh:
				fmt.Println()
			}
		} else {
			fmt.Println()
		}
	}

	return nil
}

const previewChars = 500

func printRecord(w io.Writer, record dataset.PageRecord, showText, showMetadata bool) {
	if showMetadata {
		fmt.Fprintf(w, "ID:             %s\n", record.ID)
		fmt.Fprintf(w, "Label:          %s\n", record.Label)
		image := record.ImagePath
		if image == "" {
			image = "(none)"
		}
		fmt.Fprintf(w, "Image:          %s\n", image)
		fmt.Fprintf(w, "Has Prediction: %t\n", record.HasPrediction())
		fmt.Fprintf(w, "Reference:      %d characters, %d words\n",
			utf8.RuneCountInString(record.Reference), len(strings.Fields(record.Reference)))
		fmt.Fprintln(w)
	}

	if showText {
		printPreview(w, "REFERENCE", record.Reference)
		if record.HasPrediction() {
			printPreview(w, "PREDICTION", record.Prediction)
		}
	}
}

func printPreview(w io.Writer, title, text string) {
	runes := []rune(text)
	truncated := len(runes) > previewChars
	if truncated {
		runes = runes[:previewChars]
	}

	fmt.Fprintf(w, "%s PREVIEW:\n", title)
	fmt.Fprintln(w, strings.Repeat("-", 80))
	fmt.Fprintln(w, string(runes))
	if truncated {
		fmt.Fprintf(w, "\n[... truncated, showing first %d of %d characters ...]\n", previewChars, utf8.RuneCountInString(text))
	}
	fmt.Fprintln(w, strings.Repeat("-", 80))
}
