// Package speech turns text into narration audio.
package speech

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/nguyentantai21042004/caption-studio/internal/config"
	"github.com/nguyentantai21042004/caption-studio/internal/logger"
	"github.com/nguyentantai21042004/caption-studio/pkg/executor"
)

// ErrEmptyText is returned when there is nothing to speak.
var ErrEmptyText = errors.New("no text to synthesize")

// Synthesizer writes a WAV rendering of text to outPath.
type Synthesizer interface {
	Synthesize(ctx context.Context, text, outPath string) error
}

type implEspeak struct {
	cfg      config.SpeechConfig
	executor executor.Executor
	logger   logger.Logger
}

// NewEspeak creates a Synthesizer driving the espeak-ng CLI.
func NewEspeak(cfg config.SpeechConfig, exec executor.Executor, log logger.Logger) Synthesizer {
	if cfg.BinaryPath == "" {
		cfg.BinaryPath = "espeak-ng"
	}
	return &implEspeak{
		cfg:      cfg,
		executor: exec,
		logger:   log.Named("speech"),
	}
}

func (e *implEspeak) Synthesize(ctx context.Context, text, outPath string) error {
	text = strings.TrimSpace(text)
	if text == "" {
		return ErrEmptyText
	}

	args := []string{"-w", outPath}
	if e.cfg.Voice != "" {
		args = append(args, "-v", e.cfg.Voice)
	}
	if e.cfg.Rate > 0 {
		args = append(args, "-s", strconv.Itoa(e.cfg.Rate))
	}
	// "--" keeps text starting with '-' from being read as a flag
	args = append(args, "--", text)

	if _, err := e.executor.Execute(ctx, e.cfg.BinaryPath, args...); err != nil {
		return fmt.Errorf("synthesize speech: %w", err)
	}
	e.logger.Debug(ctx, "Synthesized %d chars to %s", len(text), outPath)
	return nil
}
