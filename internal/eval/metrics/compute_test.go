package metrics

import (
	"strings"
	"testing"
)

func TestComputeIdentical(t *testing.T) {
	text := "Le chat dort sur le tapis."
	r := Compute(text, text, Options{})

	if r.WER != Computed(0) || r.CER != Computed(0) {
		t.Errorf("Expected WER and CER of 0, got %s and %s", r.WER, r.CER)
	}
	if r.WordAccuracyPercent != Computed(100) {
		t.Errorf("Expected word accuracy 100%%, got %s", r.WordAccuracyPercent)
	}
	if r.Jaccard != 1 || r.Cosine != 1 {
		t.Errorf("Expected Jaccard and cosine of 1, got %f and %f", r.Jaccard, r.Cosine)
	}
	if r.Levenshtein != 0 || r.Hamming != Computed(0) {
		t.Errorf("Expected zero distances, got %d and %s", r.Levenshtein, r.Hamming)
	}
	if len(r.TopConfusions) != 0 {
		t.Errorf("Expected no confusions, got %+v", r.TopConfusions)
	}
	if r.RatOb.Ratio != 1 {
		t.Errorf("Expected Ratcliff/Obershelp ratio 1, got %f", r.RatOb.Ratio)
	}
	if r.Language != DefaultLanguage {
		t.Errorf("Expected default language %s, got %s", DefaultLanguage, r.Language)
	}
}

func TestComputeEmptyReference(t *testing.T) {
	r := Compute("", "abc", Options{})

	for name, v := range map[string]Value{
		"WER":          r.WER,
		"CER":          r.CER,
		"WordAccuracy": r.WordAccuracy,
		"WERPercent":   r.WERPercent,
		"CERPercent":   r.CERPercent,
		"Hamming":      r.Hamming,
	} {
		if v.OK {
			t.Errorf("Expected %s to be not computable, got %s", name, v)
		}
	}

	if r.Jaccard != 0 || r.Cosine != 0 {
		t.Errorf("Expected similarities of 0, got %f and %f", r.Jaccard, r.Cosine)
	}
	if r.Levenshtein != 3 {
		t.Errorf("Expected Levenshtein 3, got %d", r.Levenshtein)
	}
}

func TestComputeSingleWord(t *testing.T) {
	r := Compute("En l'an 1920 par la procuration", "En l'an 1920 par la procureur", Options{})

	if r.ReferenceWords != 7 {
		t.Errorf("Expected 7 reference words, got %d", r.ReferenceWords)
	}
	if r.WordDistance != 1 {
		t.Errorf("Expected 1 word edit, got %d", r.WordDistance)
	}
	if r.WERPercent != Computed(14.28) {
		t.Errorf("Expected WER 14.28%%, got %s", r.WERPercent)
	}
	if r.WordAccuracyPercent != Computed(85.71) {
		t.Errorf("Expected word accuracy 85.71%%, got %s", r.WordAccuracyPercent)
	}
	if r.CharDistance != r.Levenshtein {
		t.Errorf("Expected char distance %d to match Levenshtein %d", r.CharDistance, r.Levenshtein)
	}
	if AlignmentCost(r.Alignment) != r.Levenshtein {
		t.Errorf("Expected alignment cost %d, got %d", r.Levenshtein, AlignmentCost(r.Alignment))
	}
}

func TestComputeChatChien(t *testing.T) {
	r := Compute("Chat", "Chien", Options{})

	if r.CER != Computed(0.75) {
		t.Errorf("Expected CER 0.75, got %s", r.CER)
	}
	if r.CERPercent != Computed(75) {
		t.Errorf("Expected CER 75%%, got %s", r.CERPercent)
	}
	if r.Hamming.OK {
		t.Errorf("Expected Hamming to be not computable, got %s", r.Hamming)
	}
	if len(r.TopConfusions) != 3 {
		t.Errorf("Expected 3 confusion pairs, got %d", len(r.TopConfusions))
	}

	var diff strings.Builder
	for _, seg := range r.Diff() {
		diff.WriteString(seg.Text)
	}
	if diff.String() != "Chieant" {
		t.Errorf("Expected rendered diff Chieant, got %s", diff.String())
	}

	m := r.Matrix()
	if len(m.Labels) != len(m.Counts) {
		t.Errorf("Expected square matrix, got %d labels and %d rows", len(m.Labels), len(m.Counts))
	}
}

func TestComputeTopN(t *testing.T) {
	ref := "abcdefghijkl"
	pred := "mnopqrstuvwx"

	r := Compute(ref, pred, Options{})
	if len(r.Confusions) != 12 {
		t.Errorf("Expected 12 confusion pairs, got %d", len(r.Confusions))
	}
	if len(r.TopConfusions) != DefaultTopConfusions {
		t.Errorf("Expected %d top pairs, got %d", DefaultTopConfusions, len(r.TopConfusions))
	}

	r = Compute(ref, pred, Options{TopN: 3})
	if len(r.TopConfusions) != 3 {
		t.Errorf("Expected 3 top pairs, got %d", len(r.TopConfusions))
	}
}

func TestComputeClean(t *testing.T) {
	r := Compute("En 1920, la ville.", "En la ville", Options{Clean: true})

	if !r.Clean {
		t.Error("Expected Clean to be recorded")
	}
	if r.WER != Computed(0) {
		t.Errorf("Expected WER 0 once digits and punctuation are removed, got %s", r.WER)
	}

	r = Compute("En 1920, la ville.", "En la ville", Options{})
	if r.WER == Computed(0) {
		t.Error("Expected a non-zero WER without cleaning")
	}
}
