package generator

import (
	"github.com/nguyentantai21042004/caption-studio/internal/config"
	"github.com/nguyentantai21042004/caption-studio/internal/logger"
	"github.com/nguyentantai21042004/caption-studio/internal/speech"
	"github.com/nguyentantai21042004/caption-studio/pkg/executor"
)

type implGenerator struct {
	cfg      *config.Config
	executor executor.Executor
	tts      speech.Synthesizer
	logger   logger.Logger
}

// New creates a Generator writing under cfg.GeneratedDir. The synthesizer
// and executor are only used for video output.
func New(cfg *config.Config, exec executor.Executor, tts speech.Synthesizer, log logger.Logger) Generator {
	return &implGenerator{
		cfg:      cfg,
		executor: exec,
		tts:      tts,
		logger:   log.Named("generator"),
	}
}
