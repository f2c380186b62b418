package transcriber

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/nguyentantai21042004/caption-studio/internal/config"
	"github.com/nguyentantai21042004/caption-studio/internal/logger"
	"github.com/nguyentantai21042004/caption-studio/internal/subtitle"
	"github.com/nguyentantai21042004/caption-studio/pkg/executor"
)

type implWhisper struct {
	cfg      config.WhisperConfig
	executor executor.Executor
	logger   logger.Logger
}

// NewWhisper creates a Transcriber backed by the whisper.cpp CLI.
func NewWhisper(cfg config.WhisperConfig, exec executor.Executor, log logger.Logger) Transcriber {
	return &implWhisper{
		cfg:      cfg,
		executor: exec,
		logger:   log.Named("whisper"),
	}
}

// whisperOutput mirrors the file written by whisper.cpp with -oj.
type whisperOutput struct {
	Transcription []struct {
		Offsets struct {
			From int64 `json:"from"`
			To   int64 `json:"to"`
		} `json:"offsets"`
		Text string `json:"text"`
	} `json:"transcription"`
}

// Transcribe runs whisper.cpp and returns the segments in emitted order.
func (w *implWhisper) Transcribe(ctx context.Context, audioPath string, task Task) ([]subtitle.Segment, error) {
	outputPrefix := strings.TrimSuffix(audioPath, filepath.Ext(audioPath))
	jsonPath := outputPrefix + ".json"
	defer os.Remove(jsonPath)

	w.logger.Info(ctx, "Starting %s with %d threads: %s", task, w.cfg.Threads, audioPath)

	// -oj: JSON output with per-segment millisecond offsets
	// -of: output file prefix (whisper appends .json)
	// -tr: translate to English
	args := []string{
		"-m", w.cfg.ModelPath,
		"-f", audioPath,
		"-oj",
		"-of", outputPrefix,
		"-l", w.cfg.Language,
		"-t", strconv.Itoa(w.cfg.Threads),
	}
	if task == TaskTranslate {
		args = append(args, "-tr")
	}
	if w.cfg.Prompt != "" {
		args = append(args, "--prompt", w.cfg.Prompt)
	}

	if _, err := w.executor.Execute(ctx, w.cfg.BinaryPath, args...); err != nil {
		return nil, fmt.Errorf("whisper %s: %w", task, err)
	}

	data, err := os.ReadFile(jsonPath)
	if err != nil {
		return nil, fmt.Errorf("read whisper output: %w", err)
	}
	segments, err := decodeSegments(data)
	if err != nil {
		return nil, err
	}

	w.logger.Info(ctx, "Transcription completed: %d segments", len(segments))
	return segments, nil
}

func decodeSegments(data []byte) ([]subtitle.Segment, error) {
	var out whisperOutput
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("decode whisper output: %w", err)
	}

	segments := make([]subtitle.Segment, 0, len(out.Transcription))
	for _, item := range out.Transcription {
		segments = append(segments, subtitle.Segment{
			Start: float64(item.Offsets.From) / 1000,
			End:   float64(item.Offsets.To) / 1000,
			Text:  item.Text,
		})
	}
	return segments, nil
}
