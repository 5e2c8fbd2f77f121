package results

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/lehigh-university-libraries/htrbench/internal/eval/metrics"
	"gopkg.in/yaml.v3"
)

// DefaultEvalsDir is where YAML result specs are written
const DefaultEvalsDir = "evals"

// EvalConfig represents the configuration section of the eval YAML
type EvalConfig struct {
	ReportID    string  `yaml:"reportid"`
	Provider    string  `yaml:"provider"`
	Model       string  `yaml:"model"`
	Prompt      string  `yaml:"prompt,omitempty"`
	Temperature float64 `yaml:"temperature"`
	DatasetPath string  `yaml:"datasetpath"`
	SampleSize  int     `yaml:"samplesize"`
	Clean       bool    `yaml:"clean"`
	Language    string  `yaml:"language"`
	User        string  `yaml:"user,omitempty"`
	Timestamp   string  `yaml:"timestamp"`
}

// EvalResult is the YAML view of one scored page. Rates are truncated
// percentages and null when not computable.
type EvalResult struct {
	Identifier     string        `yaml:"identifier"`
	Label          string        `yaml:"label,omitempty"`
	Image          string        `yaml:"image,omitempty"`
	Reference      string        `yaml:"reference"`
	Prediction     string        `yaml:"prediction"`
	WER            metrics.Value `yaml:"wer"`
	CER            metrics.Value `yaml:"cer"`
	WordAccuracy   metrics.Value `yaml:"wordaccuracy"`
	Jaccard        float64       `yaml:"jaccard"`
	Cosine         float64       `yaml:"cosine"`
	Levenshtein    int           `yaml:"levenshtein"`
	Hamming        metrics.Value `yaml:"hamming"`
	TopConfusions  []string      `yaml:"topconfusions,omitempty"`
	ProcessingTime string        `yaml:"processingtime"`
}

// EvalSpec represents the complete evaluation specification
type EvalSpec struct {
	Config  EvalConfig   `yaml:"config"`
	Results []EvalResult `yaml:"results"`
}

// NewEvalSpec converts scored pages into a YAML spec. Failed pages are skipped.
func NewEvalSpec(config EvalConfig, pages []metrics.PageResult) EvalSpec {
	spec := EvalSpec{
		Config:  config,
		Results: make([]EvalResult, 0, len(pages)),
	}

	for _, p := range pages {
		if p.Error != "" || p.Result == nil {
			continue // Skip failed evaluations
		}

		r := p.Result
		spec.Results = append(spec.Results, EvalResult{
			Identifier:     p.ID,
			Label:          p.Label,
			Image:          p.ImagePath,
			Reference:      r.Reference,
			Prediction:     r.Prediction,
			WER:            r.WERPercent,
			CER:            r.CERPercent,
			WordAccuracy:   r.WordAccuracyPercent,
			Jaccard:        r.Jaccard,
			Cosine:         r.Cosine,
			Levenshtein:    r.Levenshtein,
			Hamming:        r.Hamming,
			TopConfusions:  metrics.RankingLines(r.TopConfusions),
			ProcessingTime: p.ProcessingTime.String(),
		})
	}

	return spec
}

// SaveToYAML writes the spec of a run to <dir>/<model>-<timestamp>.yaml and
// returns the absolute path of the file
func SaveToYAML(dir string, config EvalConfig, pages []metrics.PageResult) (string, error) {
	if dir == "" {
		dir = DefaultEvalsDir
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create evals directory: %w", err)
	}

	if config.Timestamp == "" {
		config.Timestamp = time.Now().Format("2006-01-02_15-04-05")
	}
	spec := NewEvalSpec(config, pages)

	// Model names such as "library/model:tag" are not valid file names
	model := strings.NewReplacer("/", "_", ":", "_").Replace(config.Model)
	filename := filepath.Join(dir, fmt.Sprintf("%s-%s.yaml", model, config.Timestamp))

	data, err := yaml.Marshal(&spec)
	if err != nil {
		return "", fmt.Errorf("failed to marshal YAML: %w", err)
	}

	if err := os.WriteFile(filename, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write YAML file: %w", err)
	}

	absPath, err := filepath.Abs(filename)
	if err != nil {
		return filename, nil
	}
	return absPath, nil
}

// LoadFromYAML reads a spec written by SaveToYAML
func LoadFromYAML(path string) (*EvalSpec, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read YAML file: %w", err)
	}

	var spec EvalSpec
	if err := yaml.Unmarshal(data, &spec); err != nil {
		return nil, fmt.Errorf("failed to parse YAML file: %w", err)
	}
	return &spec, nil
}
