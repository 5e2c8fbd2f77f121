package metrics

import (
	"reflect"
	"testing"
)

func TestConfusionPairs(t *testing.T) {
	tests := []struct {
		name       string
		reference  string
		prediction string
		expected   []ConfusionPair
	}{
		{
			name:       "repeated substitution",
			reference:  "aaa",
			prediction: "bbb",
			expected: []ConfusionPair{
				{Kind: Substitute, Ref: "a", Pred: "b", Count: 3},
			},
		},
		{
			name:       "ties keep first occurrence",
			reference:  "xy",
			prediction: "zw",
			expected: []ConfusionPair{
				{Kind: Substitute, Ref: "x", Pred: "z", Count: 1},
				{Kind: Substitute, Ref: "y", Pred: "w", Count: 1},
			},
		},
		{
			name:       "chat chien",
			reference:  "Chat",
			prediction: "Chien",
			expected: []ConfusionPair{
				{Kind: Insert, Ref: "", Pred: "i", Count: 1},
				{Kind: Substitute, Ref: "a", Pred: "e", Count: 1},
				{Kind: Substitute, Ref: "t", Pred: "n", Count: 1},
			},
		},
		{
			name:       "identical",
			reference:  "Chat",
			prediction: "Chat",
			expected:   []ConfusionPair{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ConfusionPairs(Align(tt.reference, tt.prediction))
			if !reflect.DeepEqual(got, tt.expected) {
				t.Errorf("Expected %+v, got %+v", tt.expected, got)
			}
		})
	}
}

func TestConfusionPairsSortedByCount(t *testing.T) {
	ops := []Op{
		{Kind: Substitute, Ref: "a", Pred: "o"},
		{Kind: Delete, Ref: "e"},
		{Kind: Delete, Ref: "e"},
		{Kind: Match, Ref: "x", Pred: "x"},
		{Kind: Delete, Ref: "e"},
		{Kind: Substitute, Ref: "a", Pred: "o"},
	}

	got := ConfusionPairs(ops)
	expected := []ConfusionPair{
		{Kind: Delete, Ref: "e", Count: 3},
		{Kind: Substitute, Ref: "a", Pred: "o", Count: 2},
	}
	if !reflect.DeepEqual(got, expected) {
		t.Errorf("Expected %+v, got %+v", expected, got)
	}
}

func TestTopConfusions(t *testing.T) {
	pairs := make([]ConfusionPair, 15)
	if got := len(TopConfusions(pairs, DefaultTopConfusions)); got != 10 {
		t.Errorf("Expected 10 pairs, got %d", got)
	}
	if got := len(TopConfusions(pairs[:4], DefaultTopConfusions)); got != 4 {
		t.Errorf("Expected 4 pairs, got %d", got)
	}
	if got := len(TopConfusions(pairs, -1)); got != 15 {
		t.Errorf("Expected all 15 pairs for a negative limit, got %d", got)
	}
}

func TestNewConfusionMatrix(t *testing.T) {
	pairs := []ConfusionPair{
		{Kind: Substitute, Ref: "a", Pred: "l", Count: 1},
		{Kind: Substitute, Ref: "u", Pred: "l", Count: 1},
		{Kind: Substitute, Ref: " ", Pred: "e", Count: 1},
		{Kind: Substitute, Ref: "b", Pred: " ", Count: 1},
	}

	m := NewConfusionMatrix(pairs)

	expectedLabels := []string{"space", `"a"`, `"b"`, `"e"`, `"l"`, `"u"`}
	if !reflect.DeepEqual(m.Labels, expectedLabels) {
		t.Errorf("Expected labels %v, got %v", expectedLabels, m.Labels)
	}

	expectedCounts := [][]int{
		{0, 0, 0, 1, 0, 0},
		{0, 0, 0, 0, 1, 0},
		{1, 0, 0, 0, 0, 0},
		{0, 0, 0, 0, 0, 0},
		{0, 0, 0, 0, 0, 0},
		{0, 0, 0, 0, 1, 0},
	}
	if !reflect.DeepEqual(m.Counts, expectedCounts) {
		t.Errorf("Expected counts %v, got %v", expectedCounts, m.Counts)
	}
}

func TestNewConfusionMatrixInsertions(t *testing.T) {
	m := NewConfusionMatrix([]ConfusionPair{{Kind: Insert, Ref: "", Pred: "i", Count: 2}})

	if !reflect.DeepEqual(m.Labels, []string{"none", `"i"`}) {
		t.Errorf("Expected none and \"i\" labels, got %v", m.Labels)
	}
	if m.Counts[0][1] != 2 {
		t.Errorf("Expected count 2 at none/i, got %d", m.Counts[0][1])
	}
}

func TestRankingLines(t *testing.T) {
	lines := RankingLines([]ConfusionPair{
		{Kind: Substitute, Ref: " ", Pred: "e", Count: 2},
		{Kind: Insert, Ref: "", Pred: "i", Count: 1},
	})

	expected := []string{
		"1) TYPE: substitute - FREQUENCY: 2 times - DETAILS: space (reference char) <-> e (predicted char)",
		"2) TYPE: insert - FREQUENCY: 1 times - DETAILS: none (reference char) <-> i (predicted char)",
	}
	if !reflect.DeepEqual(lines, expected) {
		t.Errorf("Expected:\n%v\nGot:\n%v", expected, lines)
	}
}
