package ocr

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"sort"
	"strings"

	"github.com/lehigh-university-libraries/htrbench/internal/gemini"
	"github.com/lehigh-university-libraries/htrbench/internal/ollama"
	"github.com/lehigh-university-libraries/htrbench/internal/openai"
	"github.com/lehigh-university-libraries/htrbench/internal/providers"
	"github.com/lehigh-university-libraries/htrbench/internal/tesseract"
	"golang.org/x/text/unicode/norm"
)

// DefaultProvider is used when neither a flag nor HTRBENCH_PROVIDER names one
const DefaultProvider = "ollama"

// Service transcribes page images with a named provider
type Service struct {
	providers map[string]providers.Provider
}

// NewService creates a service with every built-in provider registered
func NewService() *Service {
	return NewServiceWithProviders(map[string]providers.Provider{
		"ollama":    ollama.New(),
		"openai":    openai.New(),
		"gemini":    gemini.New(),
		"tesseract": tesseract.New(),
	})
}

// NewServiceWithProviders creates a service backed by the given providers
func NewServiceWithProviders(p map[string]providers.Provider) *Service {
	return &Service{providers: p}
}

// Providers lists the registered provider names
func (s *Service) Providers() []string {
	names := make([]string, 0, len(s.providers))
	for name := range s.providers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ResolveProvider returns the provider name to use, falling back to
// HTRBENCH_PROVIDER and then to ollama
func ResolveProvider(provider string) string {
	if provider != "" {
		return provider
	}
	if env := os.Getenv("HTRBENCH_PROVIDER"); env != "" {
		return env
	}
	return DefaultProvider
}

// DefaultModel returns the model used for a provider when none is given
func DefaultModel(provider string) string {
	switch provider {
	case "openai":
		return envOr("OPENAI_MODEL", "gpt-4o")
	case "ollama":
		return envOr("OLLAMA_MODEL", "mistral-small3.2:24b")
	case "gemini":
		return envOr("GEMINI_MODEL", "gemini-1.5-flash")
	case "tesseract":
		return tesseract.Language(os.Getenv("TESSERACT_LANG"))
	default:
		return ""
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// Transcribe reads a page image and returns its NFC-normalised transcription
func (s *Service) Transcribe(ctx context.Context, imagePath, provider, model string) (string, error) {
	provider = ResolveProvider(provider)
	if model == "" {
		model = DefaultModel(provider)
	}

	p, ok := s.providers[provider]
	if !ok {
		return "", fmt.Errorf("unsupported OCR provider: %s", provider)
	}

	imageData, err := os.ReadFile(imagePath)
	if err != nil {
		return "", fmt.Errorf("failed to read image for OCR: %w", err)
	}

	text, err := p.ExtractText(ctx, providers.Config{
		Model:       model,
		Temperature: 0.0,
		Prompt:      BuildPrompt(),
		Image:       imageData,
		ImageType:   providers.ImageType(imagePath, imageData),
	})
	if err != nil {
		return "", fmt.Errorf("failed to transcribe %s with %s: %w", imagePath, provider, err)
	}

	text = norm.NFC.String(strings.TrimSpace(text))
	slog.Debug("Extracted OCR text", "provider", provider, "model", model, "length", len(text))
	return text, nil
}

// BuildPrompt returns the transcription prompt sent to vision models
func BuildPrompt() string {
	return `You are transcribing a handwritten manuscript page image.

Your task is to extract ALL visible text from the image exactly as it appears, preserving:
- Line breaks
- Original spelling, including archaic or incorrect forms
- Capitalization
- Punctuation and diacritics
- Abbreviations as written

INSTRUCTIONS:
1. Read the page from top to bottom, line by line
2. Transcribe every piece of handwritten or printed text
3. Do not modernize, correct or expand anything
4. Do not add any interpretation, commentary, or explanations
5. If a word is illegible, transcribe what you can see and use [?] for the rest

OUTPUT FORMAT:
Provide ONLY the transcribed text. Do not include phrases like "Here is the text:".
Start immediately with the first line of the page.`
}
