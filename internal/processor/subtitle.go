package processor

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/nguyentantai21042004/caption-studio/internal/subtitle"
	"github.com/nguyentantai21042004/caption-studio/internal/transcriber"
)

// outputPaths derives the subtitle and burned video paths for a source video.
// The run ID keeps runs of same-named videos from sharing outputs.
func (p *implProcessor) outputPaths(videoPath string, task transcriber.Task, runID string) (string, string) {
	filename := filepath.Base(videoPath)
	base := strings.TrimSuffix(filename, filepath.Ext(filename)) + task.Suffix() + "_" + runID
	srtPath := filepath.Join(p.cfg.CaptionsDir(), base+".srt")
	videoOut := filepath.Join(p.cfg.VideosDir(), base+"_subtitled.mp4")
	return srtPath, videoOut
}

// writeSubtitles builds the cue document and writes it to srtPath.
// The destination directory must already exist.
func (p *implProcessor) writeSubtitles(ctx context.Context, segments []subtitle.Segment, srtPath string) (*subtitle.Document, error) {
	doc, err := subtitle.Build(segments)
	if err != nil {
		return nil, fmt.Errorf("build subtitles: %w", err)
	}
	if err := subtitle.WriteFile(srtPath, doc); err != nil {
		return nil, err
	}

	p.logger.Info(ctx, "Subtitles written: %s (%d cues)", srtPath, doc.Len())
	return doc, nil
}

// Preview renders the first n cues for display.
func Preview(doc *subtitle.Document, n int) []string {
	if doc == nil {
		return nil
	}
	if n > doc.Len() || n < 0 {
		n = doc.Len()
	}
	lines := make([]string, 0, n)
	for _, cue := range doc.Cues[:n] {
		lines = append(lines, fmt.Sprintf("%s → %s  %s", cue.Start, cue.End, cue.Text))
	}
	return lines
}
