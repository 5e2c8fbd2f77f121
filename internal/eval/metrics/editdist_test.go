package metrics

import (
	"reflect"
	"testing"
)

func TestEditDistance(t *testing.T) {
	tests := []struct {
		name     string
		a, b     string
		expected int
	}{
		{name: "identical", a: "Chat", b: "Chat", expected: 0},
		{name: "chat chien", a: "Chat", b: "Chien", expected: 3},
		{name: "kitten sitting", a: "kitten", b: "sitting", expected: 3},
		{name: "empty left", a: "", b: "abc", expected: 3},
		{name: "empty right", a: "abcd", b: "", expected: 4},
		{name: "both empty", a: "", b: "", expected: 0},
		{name: "accented code points", a: "été", b: "ete", expected: 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a, b := []rune(tt.a), []rune(tt.b)
			if got := EditDistance(a, b); got != tt.expected {
				t.Errorf("Expected distance %d, got %d", tt.expected, got)
			}
			if got := EditDistance(b, a); got != tt.expected {
				t.Errorf("Expected symmetric distance %d, got %d", tt.expected, got)
			}
			if got := Levenshtein(tt.a, tt.b); got != tt.expected {
				t.Errorf("Expected string distance %d, got %d", tt.expected, got)
			}
		})
	}
}

func TestEditDistanceWords(t *testing.T) {
	ref := []string{"En", "l", "an", "1920", "par", "la", "procuration"}
	pred := []string{"En", "l", "an", "1920", "par", "le", "procureur"}
	if got := EditDistance(ref, pred); got != 2 {
		t.Errorf("Expected 2 word edits, got %d", got)
	}
}

func TestEditDistanceMatrix(t *testing.T) {
	got := EditDistanceMatrix([]rune("Chien"), []rune("Chat"))
	expected := [][]int{
		{0, 1, 2, 3, 4},
		{1, 0, 1, 2, 3},
		{2, 1, 0, 1, 2},
		{3, 2, 1, 1, 2},
		{4, 3, 2, 2, 2},
		{5, 4, 3, 3, 3},
	}
	if !reflect.DeepEqual(got, expected) {
		t.Errorf("Expected matrix %v, got %v", expected, got)
	}
}

func TestEditDistanceProperties(t *testing.T) {
	samples := []string{"", "a", "Chat", "Chien", "chien", "procuration", "procureur", "En l'an 1920"}

	for _, a := range samples {
		ra := []rune(a)
		if d := EditDistance(ra, ra); d != 0 {
			t.Errorf("Expected d(%q,%q)=0, got %d", a, a, d)
		}
		if d := EditDistance([]rune(""), ra); d != len(ra) {
			t.Errorf("Expected d(\"\",%q)=%d, got %d", a, len(ra), d)
		}

		for _, b := range samples {
			rb := []rune(b)
			ab := EditDistance(ra, rb)
			if ba := EditDistance(rb, ra); ab != ba {
				t.Errorf("Expected symmetry for %q/%q, got %d and %d", a, b, ab, ba)
			}

			m := EditDistanceMatrix(ra, rb)
			if m[len(ra)][len(rb)] != ab {
				t.Errorf("Expected matrix corner %d for %q/%q, got %d", ab, a, b, m[len(ra)][len(rb)])
			}

			for _, c := range samples {
				rc := []rune(c)
				if EditDistance(ra, rc) > ab+EditDistance(rb, rc) {
					t.Errorf("Triangle inequality violated for %q, %q, %q", a, b, c)
				}
			}
		}
	}
}
