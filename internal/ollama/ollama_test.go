package ollama

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/lehigh-university-libraries/htrbench/internal/providers"
)

func TestExtractText(t *testing.T) {
	var received map[string]interface{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/generate" {
			t.Errorf("Expected /api/generate, got %s", r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&received); err != nil {
			t.Errorf("Failed to decode request: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"response":"Le chat dort"}`))
	}))
	defer server.Close()
	t.Setenv("OLLAMA_URL", server.URL)

	text, err := New().ExtractText(context.Background(), providers.Config{
		Model:  "llava",
		Prompt: "Transcribe",
		Image:  []byte("fake image"),
	})
	if err != nil {
		t.Fatalf("ExtractText failed: %v", err)
	}
	if text != "Le chat dort" {
		t.Errorf("Expected 'Le chat dort', got %q", text)
	}

	if received["model"] != "llava" {
		t.Errorf("Expected model llava, got %v", received["model"])
	}
	images, ok := received["images"].([]interface{})
	if !ok || len(images) != 1 {
		t.Fatalf("Expected one image, got %v", received["images"])
	}
	if images[0] != base64.StdEncoding.EncodeToString([]byte("fake image")) {
		t.Errorf("Unexpected image payload %v", images[0])
	}
}

func TestExtractTextError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model not found", http.StatusNotFound)
	}))
	defer server.Close()
	t.Setenv("OLLAMA_URL", server.URL)

	if _, err := New().ExtractText(context.Background(), providers.Config{Model: "missing"}); err == nil {
		t.Error("Expected error for non-200 status, got nil")
	}
}
