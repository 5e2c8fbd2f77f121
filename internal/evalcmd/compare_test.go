package evalcmd

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/lehigh-university-libraries/htrbench/internal/eval/metrics"
)

func TestExecuteCompare(t *testing.T) {
	var buf bytes.Buffer
	if err := executeCompare("Chat", "Chien", CompareOptions{}, &buf); err != nil {
		t.Fatalf("executeCompare failed: %v", err)
	}

	out := buf.String()
	for _, want := range []string{
		"WER: 100%",
		"CER: 75%",
		"Levenshtein: 3",
		"Ch{+ie}[-a]{+n}[-t]",
		"Confusions (3 pairs):",
		"1) TYPE: insert",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("Expected output to contain %q, got:\n%s", want, out)
		}
	}
	if strings.Contains(out, "Signal:") {
		t.Error("Expected no signal section without --signal")
	}
}

func TestExecuteCompareSignal(t *testing.T) {
	var buf bytes.Buffer
	if err := executeCompare("Chat", "Chien", CompareOptions{ShowSignal: true}, &buf); err != nil {
		t.Fatalf("executeCompare failed: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "Deltas:             [0 0 8 -15]") {
		t.Errorf("Expected deltas, got:\n%s", out)
	}
	if !strings.Contains(out, "Error positions:    [2 3]") {
		t.Errorf("Expected error positions, got:\n%s", out)
	}
}

func TestReadTextArg(t *testing.T) {
	path := filepath.Join(t.TempDir(), "page.txt")
	if err := os.WriteFile(path, []byte("été\n"), 0644); err != nil {
		t.Fatalf("Failed to create test file: %v", err)
	}

	got, err := readTextArg(path)
	if err != nil {
		t.Fatalf("readTextArg failed: %v", err)
	}
	if got != "été" {
		t.Errorf("Expected NFC file content without trailing newline, got %q", got)
	}

	literal, err := readTextArg("Le chat dort")
	if err != nil {
		t.Fatalf("readTextArg failed: %v", err)
	}
	if literal != "Le chat dort" {
		t.Errorf("Expected literal text, got %q", literal)
	}
}

func TestRenderDiff(t *testing.T) {
	tests := []struct {
		ref, pred, expected string
	}{
		{"abc", "abc", "abc"},
		{"ab", "xab", "{+x}ab"},
		{"abc", "ab", "ab[-c]"},
		{"", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.ref+"/"+tt.pred, func(t *testing.T) {
			got := renderDiff(metrics.DiffSegments(metrics.Align(tt.ref, tt.pred)))
			if got != tt.expected {
				t.Errorf("Expected %q, got %q", tt.expected, got)
			}
		})
	}
}
