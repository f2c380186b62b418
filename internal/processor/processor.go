package processor

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/nguyentantai21042004/caption-studio/internal/caption"
	"github.com/nguyentantai21042004/caption-studio/internal/transcriber"
)

// Run executes the caption pipeline: extract audio, transcribe, write the
// subtitle document, burn it into the video. Each stage starts only after
// the previous one succeeded; the first failure ends the run.
func (p *implProcessor) Run(ctx context.Context, req Request) (Result, error) {
	var result Result
	startTime := time.Now()

	if n := p.sem.inFlight(); n >= p.sem.capacity() {
		p.logger.Info(ctx, "Waiting for a processing slot (%d running): %s", n, req.VideoPath)
	}
	release, err := p.sem.acquire(ctx)
	if err != nil {
		return result, err
	}
	defer release()

	task := req.Task
	if task == "" {
		task = transcriber.TaskTranscribe
	}
	report := func(stage Stage, format string, args ...interface{}) {
		if req.Progress != nil {
			req.Progress(Event{Stage: stage, Message: fmt.Sprintf(format, args...)})
		}
	}

	p.logger.Info(ctx, "Starting video processing: %s (%s)", req.VideoPath, task)

	workDir, err := os.MkdirTemp(p.cfg.Paths.Temp, "caption-*")
	if err != nil {
		return result, fmt.Errorf("create temp dir: %w", err)
	}
	defer p.cleanupTempDir(ctx, workDir)

	// Step 1: Extract audio
	report(StageExtractAudio, "Extracting audio from %s", req.VideoPath)
	audioPath, err := p.extractAudio(ctx, workDir, req.VideoPath)
	if err != nil {
		return result, fmt.Errorf("extract audio: %w", err)
	}

	// Step 2: Transcribe
	report(StageTranscribe, "Running %s", task)
	segments, err := p.transcriber.Transcribe(ctx, audioPath, task)
	if err != nil {
		return result, fmt.Errorf("%w: %w", ErrTranscription, err)
	}

	// Step 3: Build and write the subtitle document
	runID := req.ID
	if runID == "" {
		runID = uuid.NewString()
	}
	srtPath, videoOut := p.outputPaths(req.VideoPath, task, runID)
	report(StageWriteSubtitles, "Writing %d cues to %s", len(segments), srtPath)
	doc, err := p.writeSubtitles(ctx, segments, srtPath)
	if err != nil {
		return result, fmt.Errorf("write subtitles: %w", err)
	}
	result.SubtitlePath = srtPath
	result.Document = doc

	// Step 4: Burn subtitles into the video
	report(StageBurn, "Burning captions into %s", videoOut)
	outputPath, err := p.burner.Burn(ctx, caption.BurnRequest{
		VideoPath:    req.VideoPath,
		SubtitlePath: srtPath,
		OutputPath:   videoOut,
	})
	if err != nil {
		return result, fmt.Errorf("burn subtitles: %w", err)
	}
	result.OutputPath = outputPath
	result.Duration = time.Since(startTime)

	report(StageDone, "Video with captions created: %s", outputPath)
	p.logger.Info(ctx, "Processing completed in %s: %s, %s", result.Duration, srtPath, outputPath)
	return result, nil
}

// Process runs the pipeline for a watched file and archives the source.
func (p *implProcessor) Process(ctx context.Context, req Request) (Result, error) {
	if req.Task == "" {
		task, err := transcriber.ParseTask(p.cfg.Whisper.DefaultTask)
		if err != nil {
			return Result{}, err
		}
		req.Task = task
	}

	result, err := p.Run(ctx, req)
	if err != nil {
		return result, err
	}

	if err := p.Archive(ctx, req.VideoPath); err != nil {
		p.logger.Warn(ctx, "Failed to move original to archived folder: %v", err)
	}
	return result, nil
}
