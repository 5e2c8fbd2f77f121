package metrics

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// DefaultLanguage is used for stop-word selection when none is given
const DefaultLanguage = "fr"

// asciiPunctuation matches Python's string.punctuation
const asciiPunctuation = "!\"#$%&'()*+,-./:;<=>?@[\\]^_`{|}~"

var punctuationStripper = func() *strings.Replacer {
	pairs := make([]string, 0, 2*len(asciiPunctuation))
	for _, r := range asciiPunctuation {
		pairs = append(pairs, string(r), "")
	}
	return strings.NewReplacer(pairs...)
}()

// languageTag maps the accepted language names to a BCP 47 tag
func languageTag(lang string) language.Tag {
	switch strings.ToLower(lang) {
	case "", "fr", "fra", "french", "français":
		return language.French
	case "en", "eng", "english":
		return language.English
	default:
		tag, err := language.Parse(lang)
		if err != nil {
			return language.Und
		}
		return tag
	}
}

// Normalize lowercases s, strips ASCII punctuation, splits on whitespace and
// drops the stop-words of lang
func Normalize(s, lang string) []string {
	tag := languageTag(lang)
	lowered := cases.Lower(tag).String(s)
	stripped := punctuationStripper.Replace(lowered)

	stop := StopWords(lang)
	tokens := []string{}
	for _, tok := range strings.Fields(stripped) {
		if stop[tok] {
			continue
		}
		tokens = append(tokens, tok)
	}
	return tokens
}

// StopWords returns the stop-word set for lang. Unknown languages have none.
// The returned map is shared and must not be modified.
func StopWords(lang string) map[string]bool {
	tag := languageTag(lang)
	if tag == language.Und {
		return nil
	}
	base, confidence := tag.Base()
	if confidence < language.Exact {
		return nil
	}
	switch base.String() {
	case "fr":
		return frenchStopWords
	case "en":
		return englishStopWords
	default:
		return nil
	}
}
