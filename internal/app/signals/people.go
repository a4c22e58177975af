package signals

import (
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"
)

// commonCapitalized are capitalised words that are almost never names.
var commonCapitalized = wordSet(
	"i", "i'm", "i've", "i'll", "i'd", "the", "a", "an", "my", "me", "we", "our",
	"you", "your", "he", "she", "they", "it", "this", "that", "these", "those",
	"today", "tomorrow", "yesterday", "monday", "tuesday", "wednesday",
	"thursday", "friday", "saturday", "sunday", "january", "february", "march",
	"april", "may", "june", "july", "august", "september", "october",
	"november", "december", "and", "but", "so", "then", "when", "after",
	"before", "also", "still", "just", "maybe", "god", "ok", "okay",
)

// NameExtractor finds people mentions: any configured known name (matched
// case-insensitively) plus capitalised name-like tokens that do not start a
// sentence.
type NameExtractor struct {
	known map[string]string
}

// NewNameExtractor builds an extractor with an optional list of known names.
func NewNameExtractor(knownNames ...string) *NameExtractor {
	known := make(map[string]string, len(knownNames))
	for _, n := range knownNames {
		n = strings.TrimSpace(n)
		if n == "" {
			continue
		}
		known[strings.ToLower(n)] = n
	}
	return &NameExtractor{known: known}
}

// ExtractPeopleMentions returns the sorted distinct people in text.
// It never fails; no mentions yields an empty slice.
func (x *NameExtractor) ExtractPeopleMentions(text string) []string {
	seen := make(map[string]struct{})
	sentenceStart := true

	for _, raw := range strings.Fields(text) {
		word := trimPossessive(trimPunct(raw))
		startsSentence := sentenceStart
		sentenceStart = endsSentence(raw)

		if word == "" {
			continue
		}
		lower := strings.ToLower(word)
		if canonical, ok := x.known[lower]; ok {
			seen[canonical] = struct{}{}
			continue
		}
		if startsSentence || !isNameLike(word) {
			continue
		}
		if _, ok := commonCapitalized[lower]; ok {
			continue
		}
		seen[word] = struct{}{}
	}

	out := make([]string, 0, len(seen))
	for p := range seen {
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}

func isNameLike(word string) bool {
	first, size := utf8.DecodeRuneInString(word)
	if !unicode.IsUpper(first) || len(word) < 2 {
		return false
	}
	for _, r := range word[size:] {
		if !unicode.IsLower(r) && r != '\'' && r != '-' {
			return false
		}
	}
	return true
}

func trimPossessive(word string) string {
	for _, suffix := range []string{"'s", "’s"} {
		if strings.HasSuffix(word, suffix) {
			return strings.TrimSuffix(word, suffix)
		}
	}
	return word
}

func endsSentence(raw string) bool {
	raw = strings.TrimRight(raw, `"')]`)
	return strings.HasSuffix(raw, ".") || strings.HasSuffix(raw, "!") || strings.HasSuffix(raw, "?")
}
