package processor

import (
	"context"
	"fmt"
	"path/filepath"
)

// extractAudio extracts audio from video file and converts to 16kHz mono WAV
// inside workDir. This format is what Whisper expects.
func (p *implProcessor) extractAudio(ctx context.Context, workDir, videoPath string) (string, error) {
	audioPath := filepath.Join(workDir, "audio.wav")

	p.logger.Info(ctx, "Extracting audio: %s", videoPath)

	// -vn: No video (audio only)
	// -ar 16000: Sample rate 16kHz
	// -ac 1: Mono channel
	// -c:a pcm_s16le: PCM 16-bit little-endian
	args := []string{
		"-y",
		"-i", videoPath,
		"-vn",
		"-ar", "16000",
		"-ac", "1",
		"-c:a", "pcm_s16le",
		audioPath,
	}

	if _, err := p.executor.Execute(ctx, p.cfg.FFmpeg.BinaryPath, args...); err != nil {
		return "", fmt.Errorf("%w: %w", ErrAudioExtraction, err)
	}

	p.logger.Info(ctx, "Audio extracted successfully: %s", audioPath)
	return audioPath, nil
}
