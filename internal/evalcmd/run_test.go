package evalcmd

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/lehigh-university-libraries/htrbench/internal/eval/history"
	"github.com/lehigh-university-libraries/htrbench/internal/eval/results"
)

type fakeTranscriber struct {
	mu    sync.Mutex
	calls []string
	text  string
	err   error
}

func (f *fakeTranscriber) Transcribe(ctx context.Context, imagePath, provider, model string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, provider+"/"+model+":"+filepath.Base(imagePath))
	return f.text, f.err
}

func writeDataset(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	if err := os.MkdirAll(filepath.Join(dir, "images"), 0755); err != nil {
		t.Fatalf("Failed to create images dir: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "images", "p2.png"), []byte("fake"), 0644); err != nil {
		t.Fatalf("Failed to create image: %v", err)
	}

	data := `{"id":"p1","reference":"Le chat dort","prediction":"Le chien dort","label":"Hand A"}
{"id":"p2","reference":"Le chat dort","image_path":"images/p2.png","label":"Hand B"}
{"id":"p3","reference":"sur le tapis"}
`
	path := filepath.Join(dir, "pages.jsonl")
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatalf("Failed to create dataset: %v", err)
	}
	return path
}

func TestExecuteRun(t *testing.T) {
	datasetPath := writeDataset(t)
	work := t.TempDir()
	transcriber := &fakeTranscriber{text: "Le chat dort"}

	opts := RunOptions{
		DatasetPath: datasetPath,
		Provider:    "fake",
		Model:       "m1",
		OutputDir:   filepath.Join(work, "out"),
		EvalsDir:    filepath.Join(work, "evals"),
		HistoryPath: filepath.Join(work, "history.db"),
		Language:    "fr",
		Concurrency: 2,
	}

	agg, err := executeRun(context.Background(), opts, transcriber)
	if err != nil {
		t.Fatalf("executeRun failed: %v", err)
	}

	if agg.TotalPages != 3 || agg.SuccessCount != 2 || agg.FailureCount != 1 {
		t.Errorf("Expected 3 pages (2 ok, 1 failed), got %d (%d ok, %d failed)", agg.TotalPages, agg.SuccessCount, agg.FailureCount)
	}
	for i, id := range []string{"p1", "p2", "p3"} {
		if agg.Results[i].ID != id {
			t.Errorf("Expected page %d to be %s, got %s", i, id, agg.Results[i].ID)
		}
	}
	if len(agg.ReportID) != 8 {
		t.Errorf("Expected an 8-character report id, got %q", agg.ReportID)
	}

	if len(transcriber.calls) != 1 || transcriber.calls[0] != "fake/m1:p2.png" {
		t.Errorf("Expected one transcription of p2.png, got %v", transcriber.calls)
	}
	if p2 := agg.Results[1].Result; p2 == nil || !p2.WER.OK || p2.WER.V != 0 {
		t.Errorf("Expected transcribed page to score WER 0, got %+v", p2)
	}
	if agg.Results[2].Error == "" {
		t.Error("Expected an error for a page without prediction or image")
	}

	if _, err := results.LoadResults(opts.OutputDir); err != nil {
		t.Errorf("Expected saved results: %v", err)
	}
	yamls, _ := filepath.Glob(filepath.Join(opts.EvalsDir, "*.yaml"))
	if len(yamls) != 1 {
		t.Errorf("Expected one YAML spec, got %v", yamls)
	}

	store, err := history.NewStore(opts.HistoryPath)
	if err != nil {
		t.Fatalf("Failed to open history: %v", err)
	}
	defer store.Close()
	runs, err := store.List(0)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(runs) != 1 || runs[0].ReportID != agg.ReportID {
		t.Errorf("Expected the run in history, got %+v", runs)
	}
}

func TestExecuteRunTranscriptionFailure(t *testing.T) {
	work := t.TempDir()
	opts := RunOptions{
		DatasetPath: writeDataset(t),
		Provider:    "fake",
		Model:       "m1",
		OutputDir:   filepath.Join(work, "out"),
		EvalsDir:    filepath.Join(work, "evals"),
	}

	agg, err := executeRun(context.Background(), opts, &fakeTranscriber{err: errors.New("provider down")})
	if err != nil {
		t.Fatalf("Expected page failures not to fail the run, got %v", err)
	}
	if agg.FailureCount != 2 {
		t.Errorf("Expected 2 failed pages, got %d", agg.FailureCount)
	}
	if _, err := os.Stat(filepath.Join(work, "history.db")); err == nil {
		t.Error("Expected no history database without a history path")
	}
}

func TestExecuteRunCanceled(t *testing.T) {
	work := t.TempDir()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	agg, err := executeRun(ctx, RunOptions{
		DatasetPath: writeDataset(t),
		Model:       "m1",
		OutputDir:   filepath.Join(work, "out"),
		EvalsDir:    filepath.Join(work, "evals"),
	}, &fakeTranscriber{})
	if err != nil {
		t.Fatalf("executeRun failed: %v", err)
	}
	if agg.SuccessCount != 0 {
		t.Errorf("Expected no page scored after cancellation, got %d", agg.SuccessCount)
	}
}

func TestExecuteRunMissingDataset(t *testing.T) {
	if _, err := executeRun(context.Background(), RunOptions{DatasetPath: "/nonexistent/pages.jsonl"}, nil); err == nil {
		t.Error("Expected error for missing dataset, got nil")
	}
}

func TestExecuteRunPrecomputed(t *testing.T) {
	dir := t.TempDir()
	writePair := func(name, ref, pred string) {
		os.WriteFile(filepath.Join(dir, name+".txt"), []byte(ref), 0644)
		os.WriteFile(filepath.Join(dir, name+".pred.txt"), []byte(pred), 0644)
	}
	writePair("a", "Chat", "Chien")
	writePair("b", "Le chat dort", "Le chat dort")

	work := t.TempDir()
	agg, err := executeRun(context.Background(), RunOptions{
		DatasetPath: dir,
		OutputDir:   filepath.Join(work, "out"),
		EvalsDir:    filepath.Join(work, "evals"),
	}, nil)
	if err != nil {
		t.Fatalf("executeRun failed: %v", err)
	}
	if agg.Model != "precomputed" {
		t.Errorf("Expected model 'precomputed', got %q", agg.Model)
	}
	if agg.SuccessCount != 2 {
		t.Errorf("Expected 2 scored pages, got %d", agg.SuccessCount)
	}
	if !agg.CorpusWER.OK || agg.CorpusWER.V != 0.25 {
		t.Errorf("Expected corpus WER 0.25, got %s", agg.CorpusWER)
	}
}
