package metrics

import (
	"encoding/json"
	"math"
	"math/big"
	"strconv"
	"strings"

	"github.com/texttheater/golang-levenshtein/levenshtein"
	"gopkg.in/yaml.v3"
)

// NotComputableSymbol is how a missing metric is displayed in reports
const NotComputableSymbol = "Ø"

// Value is a metric that may not be computable for the given input,
// such as an error rate over an empty reference
type Value struct {
	V  float64
	OK bool
}

// NotComputable is the marker returned for degenerate input
var NotComputable = Value{}

// Computed wraps a numeric result
func Computed(v float64) Value {
	return Value{V: v, OK: true}
}

func (v Value) String() string {
	if !v.OK {
		return NotComputableSymbol
	}
	return strconv.FormatFloat(v.V, 'f', -1, 64)
}

// Map applies fn to a computable value and passes NotComputable through
func (v Value) Map(fn func(float64) float64) Value {
	if !v.OK {
		return NotComputable
	}
	return Computed(fn(v.V))
}

func (v Value) MarshalJSON() ([]byte, error) {
	if !v.OK {
		return []byte("null"), nil
	}
	return json.Marshal(v.V)
}

func (v *Value) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*v = NotComputable
		return nil
	}
	var f float64
	if err := json.Unmarshal(data, &f); err != nil {
		return err
	}
	*v = Computed(f)
	return nil
}

// MarshalYAML writes a missing value as null
func (v Value) MarshalYAML() (interface{}, error) {
	if !v.OK {
		return nil, nil
	}
	return v.V, nil
}

func (v *Value) UnmarshalYAML(node *yaml.Node) error {
	if node.ShortTag() == "!!null" {
		*v = NotComputable
		return nil
	}
	var f float64
	if err := node.Decode(&f); err != nil {
		return err
	}
	*v = Computed(f)
	return nil
}

// Truncate2 truncates x toward zero at two decimal places. The exact binary
// value of x is used, so Truncate2(0.29) is 0.28.
func Truncate2(x float64) float64 {
	if math.IsNaN(x) || math.IsInf(x, 0) {
		return x
	}
	f := new(big.Float).SetPrec(256).SetFloat64(x)
	f.Mul(f, big.NewFloat(100))
	i, _ := f.Int(nil)
	r, _ := new(big.Float).SetInt(i).Float64()
	return r / 100
}

// Percent scales a fraction to a percentage and truncates it
func Percent(v Value) Value {
	return v.Map(func(x float64) float64 { return Truncate2(x * 100) })
}

// WER is the word edit distance divided by the number of reference words
func WER(ref, pred []string) Value {
	if len(ref) == 0 {
		return NotComputable
	}
	return Computed(float64(EditDistance(ref, pred)) / float64(len(ref)))
}

var unitCost = levenshtein.Options{
	InsCost: 1,
	DelCost: 1,
	SubCost: 1,
	Matches: levenshtein.IdenticalRunes,
}

// CER is the character edit distance divided by the number of reference
// characters. Tokens are expected to be single code points as produced by CharMode.
func CER(ref, pred []string) Value {
	if len(ref) == 0 {
		return NotComputable
	}
	source := []rune(strings.Join(ref, ""))
	target := []rune(strings.Join(pred, ""))
	dist := levenshtein.DistanceForStrings(source, target, unitCost)
	return Computed(float64(dist) / float64(len(source)))
}

// WordAccuracy is 1 - WER
func WordAccuracy(ref, pred []string) Value {
	return WER(ref, pred).Map(func(wer float64) float64 { return 1 - wer })
}

// Jaccard is |A ∩ B| / |A ∪ B| over the token sets. Two empty sets are identical.
func Jaccard(a, b []string) float64 {
	setA := toSet(a)
	setB := toSet(b)
	if len(setA) == 0 && len(setB) == 0 {
		return 1
	}

	intersection := 0
	for tok := range setA {
		if setB[tok] {
			intersection++
		}
	}
	union := len(setA) + len(setB) - intersection
	return float64(intersection) / float64(union)
}

// Cosine is the cosine similarity of the word-frequency vectors of a and b.
// Only the word runs of each token are counted, so punctuation tokens such as
// « or — do not take part. It is 0 when either side has no words.
func Cosine(a, b []string) float64 {
	va := wordFrequencies(a)
	vb := wordFrequencies(b)

	var dot, sumA, sumB float64
	for tok, ca := range va {
		sumA += float64(ca * ca)
		if cb, ok := vb[tok]; ok {
			dot += float64(ca * cb)
		}
	}
	for _, cb := range vb {
		sumB += float64(cb * cb)
	}

	// sqrt of the integer product stays exact for identical vectors
	denominator := math.Sqrt(sumA * sumB)
	if denominator == 0 {
		return 0
	}
	return math.Min(dot/denominator, 1)
}

// Hamming counts differing code points between two strings of equal length
func Hamming(a, b string) Value {
	ra := []rune(a)
	rb := []rune(b)
	if len(ra) != len(rb) {
		return NotComputable
	}
	dist := 0
	for i := range ra {
		if ra[i] != rb[i] {
			dist++
		}
	}
	return Computed(float64(dist))
}

func toSet(tokens []string) map[string]bool {
	set := make(map[string]bool, len(tokens))
	for _, t := range tokens {
		set[t] = true
	}
	return set
}

func wordFrequencies(tokens []string) map[string]int {
	freq := make(map[string]int, len(tokens))
	for _, t := range tokens {
		for _, word := range nonWord.Split(t, -1) {
			if word != "" {
				freq[word]++
			}
		}
	}
	return freq
}
