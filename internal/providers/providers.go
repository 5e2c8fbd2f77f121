package providers

import (
	"context"
	"net/http"
	"path/filepath"
	"strings"
)

// Config represents a transcription request to a provider
type Config struct {
	Model       string
	Temperature float64
	Prompt      string

	// Image is the page to transcribe; ImageType its MIME type
	Image     []byte
	ImageType string
}

// Provider defines the interface for a transcription provider
type Provider interface {
	ExtractText(ctx context.Context, config Config) (string, error)
}

// ImageType returns the MIME type of an image from its extension, falling
// back to content sniffing
func ImageType(path string, data []byte) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".png":
		return "image/png"
	case ".tif", ".tiff":
		return "image/tiff"
	case ".webp":
		return "image/webp"
	}
	return http.DetectContentType(data)
}
