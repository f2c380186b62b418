// Package analyzer extracts simple keyword statistics from text.
package analyzer

import (
	"strings"
	"unicode/utf8"
)

const (
	maxKeywords   = 10
	minKeywordLen = 6
)

// Analysis is the result of Analyze.
type Analysis struct {
	Keywords  []string `json:"keywords"`
	WordCount int      `json:"word_count"`
}

// Analyze splits text on whitespace and keeps, in order, the first ten words
// longer than five characters. Duplicates are kept.
func Analyze(text string) Analysis {
	words := strings.Fields(text)
	keywords := make([]string, 0, maxKeywords)
	for _, w := range words {
		if len(keywords) == maxKeywords {
			break
		}
		if utf8.RuneCountInString(w) >= minKeywordLen {
			keywords = append(keywords, w)
		}
	}
	return Analysis{Keywords: keywords, WordCount: len(words)}
}
