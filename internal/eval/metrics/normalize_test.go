package metrics

import (
	"reflect"
	"testing"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		lang     string
		expected []string
	}{
		{
			name:     "french stop-words",
			input:    "Le Chat, dort sur le tapis.",
			lang:     "fr",
			expected: []string{"chat", "dort", "tapis"},
		},
		{
			name:     "default language is french",
			input:    "Le chat",
			lang:     "",
			expected: []string{"chat"},
		},
		{
			name:     "accented uppercase is lowered before lookup",
			input:    "ÉTÉ chaud",
			lang:     "french",
			expected: []string{"chaud"},
		},
		{
			name:     "english stop-words",
			input:    "The cat is on the mat!",
			lang:     "en",
			expected: []string{"cat", "mat"},
		},
		{
			name:     "unknown language keeps every word",
			input:    "Der Hund",
			lang:     "de",
			expected: []string{"der", "hund"},
		},
		{
			name:     "apostrophes are removed not split",
			input:    "l'homme",
			lang:     "fr",
			expected: []string{"lhomme"},
		},
		{
			name:     "empty",
			input:    "",
			lang:     "fr",
			expected: []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Normalize(tt.input, tt.lang)
			if !reflect.DeepEqual(got, tt.expected) {
				t.Errorf("Expected %q, got %q", tt.expected, got)
			}
		})
	}
}

func TestStopWords(t *testing.T) {
	if !StopWords("fr")["les"] {
		t.Error("Expected les to be a french stop-word")
	}
	if !StopWords("en")["the"] {
		t.Error("Expected the to be an english stop-word")
	}
	if StopWords("not a language") != nil {
		t.Error("Expected no stop-words for an invalid language")
	}
	if StopWords("und") != nil {
		t.Error("Expected no stop-words for an undetermined language")
	}
}

func TestNormalizeInvalidLanguageKeepsStopWords(t *testing.T) {
	got := Normalize("the cat and the dog", "not a language")
	expected := []string{"the", "cat", "and", "the", "dog"}
	if !reflect.DeepEqual(got, expected) {
		t.Errorf("Expected %q, got %q", expected, got)
	}
}
