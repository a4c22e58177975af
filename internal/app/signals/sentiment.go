// Package signals holds the pure per-entry signal extractors.
package signals

import (
	"strings"
	"unicode"
)

const (
	MaxSentiment = 10
	MinSentiment = -10
)

var positiveWords = wordSet(
	"good", "great", "happy", "love", "loved", "grateful", "thankful", "joy",
	"excited", "calm", "peaceful", "proud", "hopeful", "amazing", "wonderful",
	"better", "relaxed", "content", "glad", "confident", "inspired", "fun",
	"energized", "supported", "accomplished",
)

var negativeWords = wordSet(
	"bad", "sad", "angry", "hate", "anxious", "stressed", "worried", "tired",
	"frustrated", "upset", "awful", "terrible", "lonely", "hurt", "afraid",
	"scared", "overwhelmed", "depressed", "worse", "hopeless", "exhausted",
	"annoyed", "disappointed", "guilty", "ashamed",
)

// SentimentScore counts positive minus negative words in text,
// clamped to [MinSentiment, MaxSentiment]. Empty text scores 0.
func SentimentScore(text string) int {
	score := 0
	for _, tok := range Tokenize(text) {
		if _, ok := positiveWords[tok]; ok {
			score++
		}
		if _, ok := negativeWords[tok]; ok {
			score--
		}
	}
	return clamp(score, MinSentiment, MaxSentiment)
}

// Tokenize splits on whitespace, case-folds and trims surrounding punctuation.
func Tokenize(text string) []string {
	fields := strings.Fields(text)
	out := make([]string, 0, len(fields))
	for _, f := range fields {
		tok := strings.ToLower(trimPunct(f))
		if tok != "" {
			out = append(out, tok)
		}
	}
	return out
}

// ContainsAny reports whether text contains any keyword, case-insensitively.
func ContainsAny(text string, keywords []string) bool {
	lower := strings.ToLower(text)
	for _, k := range keywords {
		if k != "" && strings.Contains(lower, strings.ToLower(k)) {
			return true
		}
	}
	return false
}

func trimPunct(s string) string {
	return strings.TrimFunc(s, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func wordSet(words ...string) map[string]struct{} {
	m := make(map[string]struct{}, len(words))
	for _, w := range words {
		m[w] = struct{}{}
	}
	return m
}
