package metrics

import (
	"sort"

	"github.com/pmezard/go-difflib/difflib"
)

// CharCount is a character and how many times it was seen
type CharCount struct {
	Char  string `json:"char"`
	Count int    `json:"count"`
}

// Block is one Ratcliff/Obershelp opcode over the reference and prediction runes
type Block struct {
	Tag       string `json:"tag"`
	RefStart  int    `json:"ref_start"`
	RefEnd    int    `json:"ref_end"`
	PredStart int    `json:"pred_start"`
	PredEnd   int    `json:"pred_end"`
}

// RatOb holds the Ratcliff/Obershelp steps between two strings: the characters
// recognised exactly, and the characters deleted from the reference or inserted
// by the prediction, most frequent first
type RatOb struct {
	Ratio      float64     `json:"ratio"`
	Exact      []string    `json:"exact"`
	Deletions  []CharCount `json:"deletions"`
	Insertions []CharCount `json:"insertions"`
	Blocks     []Block     `json:"blocks"`
}

var opcodeTags = map[byte]string{
	'e': "equal",
	'r': "replace",
	'd': "delete",
	'i': "insert",
}

// RatcliffObershelp matches the two strings character by character with
// longest matching blocks
func RatcliffObershelp(reference, prediction string) RatOb {
	ref := Tokenize(reference, CharMode)
	pred := Tokenize(prediction, CharMode)

	matcher := difflib.NewMatcher(ref, pred)
	result := RatOb{
		Ratio: matcher.Ratio(),
		Exact: []string{},
	}

	var deleted, inserted []string
	for _, op := range matcher.GetOpCodes() {
		result.Blocks = append(result.Blocks, Block{
			Tag:       opcodeTags[op.Tag],
			RefStart:  op.I1,
			RefEnd:    op.I2,
			PredStart: op.J1,
			PredEnd:   op.J2,
		})

		switch op.Tag {
		case 'e':
			result.Exact = append(result.Exact, ref[op.I1:op.I2]...)
		case 'd':
			deleted = append(deleted, ref[op.I1:op.I2]...)
		case 'i':
			inserted = append(inserted, pred[op.J1:op.J2]...)
		case 'r':
			deleted = append(deleted, ref[op.I1:op.I2]...)
			inserted = append(inserted, pred[op.J1:op.J2]...)
		}
	}

	result.Deletions = countChars(deleted)
	result.Insertions = countChars(inserted)
	return result
}

// countChars counts characters, most frequent first and ties in first-seen order
func countChars(chars []string) []CharCount {
	index := make(map[string]int)
	counts := []CharCount{}
	for _, c := range chars {
		if i, ok := index[c]; ok {
			counts[i].Count++
			continue
		}
		index[c] = len(counts)
		counts = append(counts, CharCount{Char: c, Count: 1})
	}
	sort.SliceStable(counts, func(i, j int) bool {
		return counts[i].Count > counts[j].Count
	})
	return counts
}
