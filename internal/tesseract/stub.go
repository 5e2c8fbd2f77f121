//go:build !tesseract

package tesseract

import (
	"context"
	"errors"

	"github.com/lehigh-university-libraries/htrbench/internal/providers"
)

// ErrUnavailable is returned when the binary was built without Tesseract
var ErrUnavailable = errors.New("tesseract support not compiled in; rebuild with -tags tesseract")

// Tesseract is a placeholder used when libtesseract is not linked
type Tesseract struct{}

// New returns a new Tesseract provider
func New() *Tesseract {
	return &Tesseract{}
}

// Available reports whether the binary was built with Tesseract support
func Available() bool { return false }

// ExtractText always fails without the tesseract build tag
func (t *Tesseract) ExtractText(ctx context.Context, config providers.Config) (string, error) {
	return "", ErrUnavailable
}
