package signal

import (
	"unicode"
)

// Fixed weights of the non-letter classes
const (
	PunctuationWeight = 0.5
	SpaceWeight       = 0.0
	UnknownWeight     = -1.0
)

// Display ranges of the character classes
const (
	MinAlphabetic = 1.0
	MaxAlphabetic = 26.0
	MinLigature   = 27.0
	MaxLigature   = 28.5
	MinDigit      = 29.0
	MaxDigit      = 38.0
)

// Entry is one row of the weight table
type Entry struct {
	Char   string  `json:"char"`
	Weight float64 `json:"weight"`
}

const punctuation = "][!\"#$%&'()*+,./:;<=>?@\\^_`{|}~-—’"

var accents = map[rune]string{
	'a': "áàâäãå",
	'c': "ç",
	'e': "éèêë",
	'i': "íìîï",
	'n': "ñ",
	'o': "óòôöõ",
	'u': "úùûü",
	'y': "ýÿ",
}

var (
	weights map[rune]float64
	table   []Entry
)

func init() {
	weights = make(map[rune]float64)

	add := func(r rune, w float64) {
		if _, ok := weights[r]; ok {
			return
		}
		weights[r] = w
		table = append(table, Entry{Char: string(r), Weight: w})
	}

	for r := 'a'; r <= 'z'; r++ {
		base := float64(r-'a') + 1
		add(r, base)
		add(unicode.ToUpper(r), base+0.5)

		for _, acc := range accents[r] {
			add(acc, base+0.5)
			add(unicode.ToUpper(acc), base+1.0)
		}
	}

	add('æ', 27)
	add('Æ', 27.5)
	add('œ', 28)
	add('Œ', 28.5)

	for r := '0'; r <= '9'; r++ {
		add(r, float64(r-'0')+29)
	}

	for _, r := range punctuation {
		add(r, PunctuationWeight)
	}
	add(' ', SpaceWeight)
}

// Weight returns the weight of r, UnknownWeight when r is not in the table
func Weight(r rune) float64 {
	if w, ok := weights[r]; ok {
		return w
	}
	return UnknownWeight
}

// Table lists the weight table in display order: letters with their accented
// variants, ligatures, digits, punctuation, then space
func Table() []Entry {
	out := make([]Entry, len(table))
	copy(out, table)
	return out
}
