package summarizer

import (
	"context"
	"strings"
)

const (
	sentenceSeparator = ". "
	maxSentences      = 5
)

type naiveSummarizer struct{}

// NewNaive returns a Summarizer that keeps the leading sentences of the text.
func NewNaive() Summarizer {
	return naiveSummarizer{}
}

// Summarize keeps the first five ". "-separated sentences and marks the
// cut with "...". Shorter text is returned unchanged.
func (naiveSummarizer) Summarize(ctx context.Context, text string) (string, error) {
	if strings.TrimSpace(text) == "" {
		return "", ErrEmptyContent
	}
	sentences := strings.Split(text, sentenceSeparator)
	if len(sentences) <= maxSentences {
		return text, nil
	}
	return strings.Join(sentences[:maxSentences], sentenceSeparator) + "...", nil
}
