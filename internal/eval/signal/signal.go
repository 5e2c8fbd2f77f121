// Package signal turns character sequences into weight signals so that a
// reference and a prediction can be compared as two curves.
package signal

import (
	"math"

	"github.com/lehigh-university-libraries/htrbench/internal/eval/metrics"
)

// Default display window
const (
	DefaultSampleStart = 0
	DefaultSampleEnd   = 70
)

// Encode maps every code point of s to its weight
func Encode(s string) []float64 {
	out := make([]float64, 0, len(s))
	for _, r := range s {
		out = append(out, Weight(r))
	}
	return out
}

// Deltas returns pred[i] - ref[i] over the shorter of the two encodings
func Deltas(ref, pred []float64) []float64 {
	n := min(len(ref), len(pred))
	out := make([]float64, n)
	for i := 0; i < n; i++ {
		out[i] = pred[i] - ref[i]
	}
	return out
}

// Stats describes the distribution of the deltas (population moments)
type Stats struct {
	Mean     metrics.Value `json:"mean"`
	Variance metrics.Value `json:"variance"`
	StdDev   metrics.Value `json:"std_dev"`
}

// Bands sums |delta| by distance from the mean in standard deviations
type Bands struct {
	// |d-μ| <= σ
	Within1 float64 `json:"within_1sd"`
	// σ < |d-μ| < 1.5σ
	Within15 float64 `json:"within_1_5sd"`
	// 1.5σ <= |d-μ| < 2σ
	Within2 float64 `json:"within_2sd"`
	// |d-μ| >= 2σ
	Beyond2 float64 `json:"beyond_2sd"`
}

// Report is the signal comparison of a reference and a prediction
type Report struct {
	Reference      []float64 `json:"reference"`
	Prediction     []float64 `json:"prediction"`
	Deltas         []float64 `json:"deltas"`
	ErrorPositions []int     `json:"error_positions"`
	Stats          Stats     `json:"stats"`
	Bands          Bands     `json:"bands"`
}

// Analyze encodes both strings and summarises their deltas. Statistics are
// not computable when there are no deltas, e.g. for an empty prediction.
func Analyze(reference, prediction string) Report {
	ref := Encode(reference)
	pred := Encode(prediction)
	deltas := Deltas(ref, pred)

	report := Report{
		Reference:      ref,
		Prediction:     pred,
		Deltas:         deltas,
		ErrorPositions: errorPositions(deltas),
		Stats: Stats{
			Mean:     metrics.NotComputable,
			Variance: metrics.NotComputable,
			StdDev:   metrics.NotComputable,
		},
	}

	if len(deltas) == 0 {
		return report
	}

	n := float64(len(deltas))
	var sum, sumSquares float64
	for _, d := range deltas {
		sum += d
		sumSquares += d * d
	}
	mean := sum / n
	variance := math.Max(sumSquares/n-mean*mean, 0)
	sd := math.Sqrt(variance)

	report.Stats = Stats{
		Mean:     metrics.Computed(mean),
		Variance: metrics.Computed(variance),
		StdDev:   metrics.Computed(sd),
	}
	report.Bands = band(deltas, mean, sd)

	return report
}

func band(deltas []float64, mean, sd float64) Bands {
	var b Bands
	for _, d := range deltas {
		dist := math.Abs(d - mean)
		switch {
		case dist <= sd:
			b.Within1 += math.Abs(d)
		case dist < 1.5*sd:
			b.Within15 += math.Abs(d)
		case dist < 2*sd:
			b.Within2 += math.Abs(d)
		default:
			b.Beyond2 += math.Abs(d)
		}
	}
	return b
}

func errorPositions(deltas []float64) []int {
	positions := []int{}
	for i, d := range deltas {
		if d != 0 {
			positions = append(positions, i)
		}
	}
	return positions
}

// Sample returns xs[from:to] clamped to the bounds of xs
func Sample[T any](xs []T, from, to int) []T {
	from = max(from, 0)
	to = min(to, len(xs))
	if from >= to {
		return []T{}
	}
	return xs[from:to]
}
