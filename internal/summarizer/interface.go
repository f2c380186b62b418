package summarizer

import (
	"context"
	"errors"
)

// ErrEmptyContent is returned when there is nothing to summarize.
var ErrEmptyContent = errors.New("no content to summarize")

// Summarizer condenses free text.
type Summarizer interface {
	Summarize(ctx context.Context, text string) (string, error)
}

// BatchSummarizer reads SRT files and produces summary documents.
type BatchSummarizer interface {
	SummarizeAll(ctx context.Context, srtDir, destDir string) error
}

// LLM summarizes single texts and whole caption directories.
type LLM interface {
	Summarizer
	BatchSummarizer
}
