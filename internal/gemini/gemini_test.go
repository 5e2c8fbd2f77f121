package gemini

import (
	"context"
	"testing"

	"github.com/google/generative-ai-go/genai"
	"github.com/lehigh-university-libraries/htrbench/internal/providers"
)

func TestImageFormat(t *testing.T) {
	tests := map[string]string{
		"image/png":  "png",
		"image/jpeg": "jpeg",
		"":           "jpeg",
		"text/plain": "jpeg",
	}
	for mimeType, expected := range tests {
		if got := imageFormat(mimeType); got != expected {
			t.Errorf("Expected %s for %q, got %s", expected, mimeType, got)
		}
	}
}

func TestParts(t *testing.T) {
	got := parts(providers.Config{Prompt: "Transcribe", Image: []byte("img"), ImageType: "image/png"})
	if len(got) != 2 {
		t.Fatalf("Expected 2 parts, got %d", len(got))
	}
	blob, ok := got[0].(genai.Blob)
	if !ok {
		t.Fatalf("Expected image blob first, got %T", got[0])
	}
	if blob.MIMEType != "image/png" {
		t.Errorf("Expected image/png, got %s", blob.MIMEType)
	}
	if got[1] != genai.Text("Transcribe") {
		t.Errorf("Expected prompt text last, got %v", got[1])
	}

	if textOnly := parts(providers.Config{Prompt: "x"}); len(textOnly) != 1 {
		t.Errorf("Expected 1 part without image, got %d", len(textOnly))
	}
}

func TestExtractTextRequiresKey(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "")

	if _, err := New().ExtractText(context.Background(), providers.Config{}); err == nil {
		t.Error("Expected error without API key, got nil")
	}
}
