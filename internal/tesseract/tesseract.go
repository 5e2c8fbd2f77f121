//go:build tesseract

// Package tesseract transcribes pages with a local Tesseract engine. The
// model name selects the trained data, for example "fra" or "eng+fra".
package tesseract

import (
	"context"
	"fmt"
	"strings"

	"github.com/lehigh-university-libraries/htrbench/internal/providers"
	"github.com/otiai10/gosseract/v2"
)

// Tesseract is a provider backed by libtesseract
type Tesseract struct{}

// New returns a new Tesseract provider
func New() *Tesseract {
	return &Tesseract{}
}

// Available reports whether the binary was built with Tesseract support
func Available() bool { return true }

// ExtractText runs OCR on the page image. The prompt and temperature are ignored.
func (t *Tesseract) ExtractText(ctx context.Context, config providers.Config) (string, error) {
	if len(config.Image) == 0 {
		return "", fmt.Errorf("tesseract requires an image")
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	client := gosseract.NewClient()
	defer client.Close()

	if err := client.SetLanguage(languages(config.Model)...); err != nil {
		return "", fmt.Errorf("failed to set tesseract language: %w", err)
	}
	if err := client.SetImageFromBytes(config.Image); err != nil {
		return "", fmt.Errorf("failed to load image: %w", err)
	}

	text, err := client.Text()
	if err != nil {
		return "", fmt.Errorf("failed to recognize text: %w", err)
	}
	return text, nil
}

func languages(model string) []string {
	return strings.Split(Language(model), "+")
}
