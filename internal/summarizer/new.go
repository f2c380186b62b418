package summarizer

import (
	"sync"

	"github.com/nguyentantai21042004/caption-studio/internal/logger"
)

const defaultModel = "gemini-2.5-flash"

type implSummarizer struct {
	apiKeys []string

	mu         sync.Mutex
	currentKey int

	logger     logger.Logger
	model      string
	generate   generateFunc
}

// New creates a Summarizer that rotates through the supplied Gemini API keys.
// An empty model selects the default.
func New(apiKeys []string, model string, log logger.Logger) LLM {
	if model == "" {
		model = defaultModel
	}
	return &implSummarizer{
		apiKeys:  apiKeys,
		logger:   log.Named("summarizer"),
		model:    model,
		generate: geminiGenerate,
	}
}
