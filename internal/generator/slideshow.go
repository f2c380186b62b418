package generator

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

const slideMaxChars = 200

// writeVideo renders a narrated slideshow: one slide per non-blank line,
// each shown for the longer of the configured line duration and its
// narration.
func (g *implGenerator) writeVideo(ctx context.Context, content, path string) error {
	absOut, err := filepath.Abs(path)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(g.cfg.Paths.Temp, 0755); err != nil {
		return fmt.Errorf("create temp dir: %w", err)
	}
	workDir, err := os.MkdirTemp(g.cfg.Paths.Temp, "slideshow-*")
	if err != nil {
		return fmt.Errorf("create work dir: %w", err)
	}
	defer os.RemoveAll(workDir)

	lines := slideLines(content)
	var list strings.Builder
	for i, line := range lines {
		if err := ctx.Err(); err != nil {
			return err
		}
		clip, err := g.renderClip(ctx, workDir, i, line)
		if err != nil {
			return fmt.Errorf("slide %d: %w", i+1, err)
		}
		fmt.Fprintf(&list, "file '%s'\n", clip)
	}

	listPath := filepath.Join(workDir, "clips.txt")
	if err := os.WriteFile(listPath, []byte(list.String()), 0644); err != nil {
		return err
	}

	g.logger.Info(ctx, "Concatenating %d clips", len(lines))
	if _, err := g.executor.ExecuteInDir(ctx, workDir, g.cfg.FFmpeg.BinaryPath,
		"-y", "-f", "concat", "-safe", "0", "-i", "clips.txt", "-c", "copy", absOut,
	); err != nil {
		return fmt.Errorf("concatenate clips: %w", err)
	}
	if _, err := os.Stat(absOut); err != nil {
		return fmt.Errorf("slideshow output missing: %w", err)
	}
	return nil
}

// renderClip writes narration and a still for one line and encodes them.
// The clip name is relative to workDir.
func (g *implGenerator) renderClip(ctx context.Context, workDir string, i int, line string) (string, error) {
	show := g.cfg.Slideshow
	audio := fmt.Sprintf("line_%03d.wav", i)
	slide := fmt.Sprintf("slide_%03d.png", i)
	clip := fmt.Sprintf("clip_%03d.mp4", i)

	if err := g.tts.Synthesize(ctx, line, filepath.Join(workDir, audio)); err != nil {
		return "", err
	}
	if err := savePNG(renderSlide(show.Width, show.Height, truncate(line, slideMaxChars)), filepath.Join(workDir, slide)); err != nil {
		return "", fmt.Errorf("render slide: %w", err)
	}

	fps := strconv.Itoa(show.FPS)
	// apad stretches short narration to the line duration; -shortest then
	// ends the looped still with the (padded) audio.
	args := []string{
		"-y",
		"-loop", "1", "-framerate", fps, "-i", slide,
		"-i", audio,
		"-af", "apad=whole_dur=" + strconv.Itoa(show.LineDuration),
		"-c:v", "libx264", "-tune", "stillimage", "-pix_fmt", "yuv420p", "-r", fps,
		"-c:a", "aac",
		"-shortest",
		clip,
	}
	if _, err := g.executor.ExecuteInDir(ctx, workDir, g.cfg.FFmpeg.BinaryPath, args...); err != nil {
		return "", fmt.Errorf("encode clip: %w", err)
	}
	return clip, nil
}

// slideLines returns the trimmed non-blank lines of content. Content
// without any line breaks worth splitting becomes a single slide.
func slideLines(content string) []string {
	var lines []string
	for _, l := range strings.Split(content, "\n") {
		if l = strings.TrimSpace(l); l != "" {
			lines = append(lines, l)
		}
	}
	if len(lines) == 0 {
		lines = []string{truncate(content, slideMaxChars)}
	}
	return lines
}
