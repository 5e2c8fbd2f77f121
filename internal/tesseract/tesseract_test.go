package tesseract

import (
	"context"
	"testing"

	"github.com/lehigh-university-libraries/htrbench/internal/providers"
)

func TestLanguage(t *testing.T) {
	if got := Language(""); got != DefaultLanguage {
		t.Errorf("Expected %s, got %s", DefaultLanguage, got)
	}
	if got := Language("fra"); got != "fra" {
		t.Errorf("Expected fra, got %s", got)
	}
}

func TestExtractTextWithoutImage(t *testing.T) {
	if _, err := New().ExtractText(context.Background(), providers.Config{}); err == nil {
		t.Error("Expected error without an image, got nil")
	}
}
