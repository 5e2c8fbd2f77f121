package metrics

import (
	"regexp"
	"strings"
)

// Mode selects how a sequence is split into tokens
type Mode int

const (
	// WordMode splits on non-word characters
	WordMode Mode = iota
	// CharMode returns one token per code point
	CharMode
)

func (m Mode) String() string {
	if m == CharMode {
		return "character"
	}
	return "word"
}

// Go's \W is ASCII-only, so accented letters would become separators
var nonWord = regexp.MustCompile(`[^\p{L}\p{M}\p{N}_]+`)

// cleanChars is the fixed set removed by CleanText
const cleanChars = "!\"#$%&()*+,-—./:;<=>«»?@[\\]^_{|}~'`’0123456789"

var cleanReplacer = func() *strings.Replacer {
	pairs := []string{"\n", "", "\r", " "}
	for _, r := range cleanChars {
		pairs = append(pairs, string(r), "")
	}
	return strings.NewReplacer(pairs...)
}()

// CleanText strips newlines, carriage returns, punctuation and digits
func CleanText(s string) string {
	return cleanReplacer.Replace(s)
}

// Tokenize splits s into word or character tokens. Empty input gives an empty slice.
func Tokenize(s string, mode Mode) []string {
	if mode == CharMode {
		tokens := make([]string, 0, len(s))
		for _, r := range s {
			tokens = append(tokens, string(r))
		}
		return tokens
	}

	tokens := []string{}
	for _, tok := range nonWord.Split(s, -1) {
		if tok != "" {
			tokens = append(tokens, tok)
		}
	}
	return tokens
}

// TokenizeClean runs CleanText first when clean is set
func TokenizeClean(s string, mode Mode, clean bool) []string {
	if clean {
		s = CleanText(s)
	}
	return Tokenize(s, mode)
}
