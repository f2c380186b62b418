package processor

import (
	"context"
	"time"

	"github.com/nguyentantai21042004/caption-studio/internal/subtitle"
	"github.com/nguyentantai21042004/caption-studio/internal/transcriber"
)

// Stage names a step of the caption pipeline.
type Stage string

const (
	StageExtractAudio   Stage = "extract_audio"
	StageTranscribe     Stage = "transcribe"
	StageWriteSubtitles Stage = "write_subtitles"
	StageBurn           Stage = "burn"
	StageDone           Stage = "done"
)

// Event is reported to a Request's Progress callback when a stage starts
// and when the pipeline finishes.
type Event struct {
	Stage   Stage
	Message string
}

// Request describes one caption run. ID tags the output file names; an
// empty ID gets a random one.
type Request struct {
	ID        string
	VideoPath string
	Task      transcriber.Task
	Progress  func(Event)
}

// Result reports what a run produced. When burning fails SubtitlePath is
// still set and OutputPath is empty.
type Result struct {
	SubtitlePath string
	OutputPath   string
	Document     *subtitle.Document
	Duration     time.Duration
}

// Processor defines the interface for video processing operations
type Processor interface {
	// Process runs the pipeline and archives the source video on success.
	// An empty Task selects the configured default.
	Process(ctx context.Context, req Request) (Result, error)
	Run(ctx context.Context, req Request) (Result, error)
	// Archive moves a processed source video into the archived directory.
	Archive(ctx context.Context, videoPath string) error
}
