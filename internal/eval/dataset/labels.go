package dataset

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Labels maps an image file name (or page ID) to a label
type Labels map[string]string

// LoadLabels reads a YAML mapping of image name to label, e.g.
//
//	page_001.jpeg: "Hand A, 17th c."
//	page_002.jpeg: "Hand B"
func LoadLabels(path string) (Labels, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read labels file: %w", err)
	}

	labels := Labels{}
	if err := yaml.Unmarshal(data, &labels); err != nil {
		return nil, fmt.Errorf("failed to parse labels file: %w", err)
	}

	return labels, nil
}

// lookup finds the label of a record by image name, image stem, then ID
func (l Labels) lookup(r *PageRecord) string {
	if len(l) == 0 {
		return ""
	}
	if r.ImagePath != "" {
		base := filepath.Base(r.ImagePath)
		if label, ok := l[base]; ok {
			return label
		}
		if label, ok := l[strings.TrimSuffix(base, filepath.Ext(base))]; ok {
			return label
		}
	}
	return l[r.ID]
}
