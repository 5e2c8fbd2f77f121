package openai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/lehigh-university-libraries/htrbench/internal/providers"
)

func TestExtractTextRequiresKey(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "")

	if _, err := New().ExtractText(context.Background(), providers.Config{}); err == nil {
		t.Error("Expected error without API key, got nil")
	}
}

func TestExtractText(t *testing.T) {
	var received struct {
		Model    string `json:"model"`
		Messages []struct {
			Content []contentPart `json:"content"`
		} `json:"messages"`
	}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("Expected /chat/completions, got %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
			t.Errorf("Expected bearer token, got %q", got)
		}
		if err := json.NewDecoder(r.Body).Decode(&received); err != nil {
			t.Errorf("Failed to decode request: %v", err)
		}
		w.Write([]byte(`{"choices":[{"message":{"content":"Le chien dort"}}]}`))
	}))
	defer server.Close()
	t.Setenv("OPENAI_API_KEY", "test-key")
	t.Setenv("OPENAI_BASE_URL", server.URL)

	text, err := New().ExtractText(context.Background(), providers.Config{
		Model:     "gpt-4o",
		Prompt:    "Transcribe",
		Image:     []byte("png"),
		ImageType: "image/png",
	})
	if err != nil {
		t.Fatalf("ExtractText failed: %v", err)
	}
	if text != "Le chien dort" {
		t.Errorf("Expected 'Le chien dort', got %q", text)
	}

	if len(received.Messages) != 1 || len(received.Messages[0].Content) != 2 {
		t.Fatalf("Expected one message with text and image parts, got %+v", received.Messages)
	}
	image := received.Messages[0].Content[1]
	if image.Type != "image_url" || image.ImageURL == nil {
		t.Fatalf("Expected image_url part, got %+v", image)
	}
	if !strings.HasPrefix(image.ImageURL.URL, "data:image/png;base64,") {
		t.Errorf("Expected PNG data URL, got %s", image.ImageURL.URL)
	}
}

func TestExtractTextNoChoices(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"choices":[]}`))
	}))
	defer server.Close()
	t.Setenv("OPENAI_API_KEY", "test-key")
	t.Setenv("OPENAI_BASE_URL", server.URL)

	if _, err := New().ExtractText(context.Background(), providers.Config{Model: "gpt-4o"}); err == nil {
		t.Error("Expected error for empty choices, got nil")
	}
}
