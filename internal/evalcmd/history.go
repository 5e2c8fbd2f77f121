package evalcmd

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/lehigh-university-libraries/htrbench/internal/eval/history"
	"github.com/lehigh-university-libraries/htrbench/internal/eval/metrics"
)

func executeHistory(dbPath string, limit int, runID string, w io.Writer) error {
	store, err := history.NewStore(dbPath)
	if err != nil {
		return err
	}
	defer store.Close()

	if runID != "" {
		return printRunDetails(store, runID, w)
	}

	runs, err := store.List(limit)
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Fprintf(w, "No runs recorded in %s\n", dbPath)
		return nil
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "REPORT\tDATE\tPROVIDER\tMODEL\tPAGES\tFAILED\tWER %\tCER %\tCORPUS WER %")
	for _, run := range runs {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%d\t%d\t%s\t%s\t%s\n",
			run.ReportID,
			run.CreatedAt.Local().Format("2006-01-02 15:04"),
			run.Provider,
			run.Model,
			run.TotalPages,
			run.FailureCount,
			metrics.Percent(run.WERMean),
			metrics.Percent(run.CERMean),
			metrics.Percent(run.CorpusWER),
		)
	}
	return tw.Flush()
}

func printRunDetails(store *history.Store, id string, w io.Writer) error {
	run, err := store.Get(id)
	if err != nil {
		return err
	}

	fmt.Fprintf(w, "Report ID: %s\n", run.ReportID)
	fmt.Fprintf(w, "Date: %s\n", run.CreatedAt.Local().Format("2006-01-02 15:04:05"))
	fmt.Fprintf(w, "Provider: %s  Model: %s\n", run.Provider, run.Model)
	fmt.Fprintf(w, "Dataset: %s\n", run.DatasetPath)
	if run.ResultsPath != "" {
		fmt.Fprintf(w, "Results: %s\n", run.ResultsPath)
	}
	fmt.Fprintf(w, "Corpus WER: %s%%  Corpus CER: %s%%\n", metrics.Percent(run.CorpusWER), metrics.Percent(run.CorpusCER))

	stats, err := store.LabelStats(run.ID)
	if err != nil {
		return err
	}
	if len(stats) == 0 {
		return nil
	}

	fmt.Fprintln(w, "\nBy label:")
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "LABEL\tPAGES\tWER %\tCER %")
	for _, st := range stats {
		fmt.Fprintf(tw, "%s\t%d\t%s\t%s\n", st.Label, st.Pages, metrics.Percent(st.WERMean), metrics.Percent(st.CERMean))
	}
	return tw.Flush()
}
