package metrics

import (
	"fmt"
	"sort"
)

// DefaultTopConfusions is the number of pairs kept for the confusion matrix
const DefaultTopConfusions = 10

// ConfusionPair is an aggregated (operation, reference char, predicted char) triple
type ConfusionPair struct {
	Kind  OpKind `json:"kind"`
	Ref   string `json:"ref"`
	Pred  string `json:"pred"`
	Count int    `json:"count"`
}

type confusionKey struct {
	kind      OpKind
	ref, pred string
}

// ConfusionPairs counts the non-match operations of a trace. Pairs are sorted
// by descending count; ties keep the order in which they first occurred.
func ConfusionPairs(ops []Op) []ConfusionPair {
	index := make(map[confusionKey]int)
	pairs := []ConfusionPair{}

	for _, op := range ops {
		if op.Kind == Match {
			continue
		}
		key := confusionKey{kind: op.Kind, ref: op.Ref, pred: op.Pred}
		if i, ok := index[key]; ok {
			pairs[i].Count++
			continue
		}
		index[key] = len(pairs)
		pairs = append(pairs, ConfusionPair{Kind: op.Kind, Ref: op.Ref, Pred: op.Pred, Count: 1})
	}

	sort.SliceStable(pairs, func(i, j int) bool {
		return pairs[i].Count > pairs[j].Count
	})

	return pairs
}

// TopConfusions returns at most n pairs from an already sorted list
func TopConfusions(pairs []ConfusionPair, n int) []ConfusionPair {
	if n < 0 || len(pairs) <= n {
		return pairs
	}
	return pairs[:n]
}

// ConfusionMatrix is a square reference x prediction count table over the
// characters involved in a set of confusion pairs
type ConfusionMatrix struct {
	Labels []string `json:"labels"`
	Counts [][]int  `json:"counts"`
}

// NewConfusionMatrix builds the matrix for the given pairs. Rows are reference
// characters, columns predicted characters, and labels are sorted by character.
func NewConfusionMatrix(pairs []ConfusionPair) ConfusionMatrix {
	seen := make(map[string]bool)
	for _, p := range pairs {
		seen[p.Ref] = true
		seen[p.Pred] = true
	}

	chars := make([]string, 0, len(seen))
	for c := range seen {
		chars = append(chars, c)
	}
	sort.Strings(chars)

	pos := make(map[string]int, len(chars))
	for i, c := range chars {
		pos[c] = i
	}

	counts := make([][]int, len(chars))
	for i := range counts {
		counts[i] = make([]int, len(chars))
	}
	for _, p := range pairs {
		counts[pos[p.Ref]][pos[p.Pred]] += p.Count
	}

	labels := make([]string, len(chars))
	for i, c := range chars {
		labels[i] = CharLabel(c)
	}

	return ConfusionMatrix{Labels: labels, Counts: counts}
}

// CharLabel names a character for display: "space", "none" when absent, quoted otherwise
func CharLabel(c string) string {
	switch c {
	case " ":
		return "space"
	case "":
		return "none"
	default:
		return fmt.Sprintf("%q", c)
	}
}

func rankingChar(c string) string {
	switch c {
	case " ":
		return "space"
	case "":
		return "none"
	default:
		return c
	}
}

// RankingLines describes each pair on one line, most frequent first
func RankingLines(pairs []ConfusionPair) []string {
	lines := make([]string, 0, len(pairs))
	for i, p := range pairs {
		lines = append(lines, fmt.Sprintf("%d) TYPE: %s - FREQUENCY: %d times - DETAILS: %s (reference char) <-> %s (predicted char)",
			i+1, p.Kind, p.Count, rankingChar(p.Ref), rankingChar(p.Pred)))
	}
	return lines
}
