package caption

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/nguyentantai21042004/caption-studio/internal/logger"
	"github.com/nguyentantai21042004/caption-studio/internal/subtitle"
	"github.com/nguyentantai21042004/caption-studio/pkg/executor"
)

// BurnOptions configures the muxer invocation. BinaryPath must already be
// resolved; the process environment is never consulted or changed.
type BurnOptions struct {
	BinaryPath   string
	Encoder      string
	Preset       string
	VideoBitrate string
	AudioCodec   string
	TempDir      string
}

// BurnRequest names the files of a single burn.
type BurnRequest struct {
	VideoPath    string
	SubtitlePath string
	OutputPath   string
}

// Burner renders a subtitle document into every frame of a video.
type Burner struct {
	exec   executor.Executor
	opts   BurnOptions
	logger logger.Logger
}

// NewBurner creates a Burner.
func NewBurner(exec executor.Executor, opts BurnOptions, log logger.Logger) *Burner {
	if opts.BinaryPath == "" {
		opts.BinaryPath = "ffmpeg"
	}
	if opts.AudioCodec == "" {
		opts.AudioCodec = "copy"
	}
	return &Burner{
		exec:   exec,
		opts:   opts,
		logger: log.Named("burner"),
	}
}

// Burn re-encodes req.VideoPath with the subtitles hard-burned and returns
// the output path. The call blocks until the muxer exits. On any failure
// no file is left at req.OutputPath.
func (b *Burner) Burn(ctx context.Context, req BurnRequest) (string, error) {
	if _, err := os.Stat(req.SubtitlePath); err != nil {
		return "", &subtitle.IOError{Path: req.SubtitlePath, Err: err}
	}

	absVideoPath, err := filepath.Abs(req.VideoPath)
	if err != nil {
		return "", fmt.Errorf("resolve video path: %w", err)
	}

	// The muxer runs inside an isolated scratch dir so the subtitle can be
	// passed to the filter by bare file name, avoiding filtergraph escaping.
	workDir, err := os.MkdirTemp(b.opts.TempDir, "burn-*")
	if err != nil {
		return "", fmt.Errorf("create temp dir: %w", err)
	}
	defer os.RemoveAll(workDir)

	subName := "subtitle" + filepath.Ext(req.SubtitlePath)
	if err := copyFile(req.SubtitlePath, filepath.Join(workDir, subName)); err != nil {
		return "", fmt.Errorf("copy subtitle to temp: %w", err)
	}
	tempOutput := filepath.Join(workDir, "output"+filepath.Ext(req.OutputPath))

	args := b.buildArgs(absVideoPath, subName, tempOutput)
	b.logger.Info(ctx, "Burning subtitles into video: %s", req.VideoPath)
	b.logger.Debug(ctx, "%s in dir %s: %v", b.opts.BinaryPath, workDir, args)

	if _, err := b.exec.ExecuteInDir(ctx, workDir, b.opts.BinaryPath, args...); err != nil {
		return "", b.classify(ctx, err)
	}

	if _, err := os.Stat(tempOutput); err != nil {
		return "", fmt.Errorf("%w: %s", ErrNoOutput, req.OutputPath)
	}

	if err := os.MkdirAll(filepath.Dir(req.OutputPath), 0755); err != nil {
		return "", fmt.Errorf("create output dir: %w", err)
	}
	if err := moveFile(tempOutput, req.OutputPath); err != nil {
		_ = os.Remove(req.OutputPath)
		return "", fmt.Errorf("move output to final location: %w", err)
	}

	b.logger.Info(ctx, "Subtitles burned successfully: %s", req.OutputPath)
	return req.OutputPath, nil
}

func (b *Burner) buildArgs(videoPath, subFilename, outputPath string) []string {
	args := []string{
		"-y",
		"-i", videoPath,
		"-vf", "subtitles=" + subFilename,
	}
	if b.opts.Encoder != "" {
		args = append(args, "-c:v", b.opts.Encoder)
	}
	if b.opts.Preset != "" {
		args = append(args, "-preset", b.opts.Preset)
	}
	if b.opts.VideoBitrate != "" {
		args = append(args, "-b:v", b.opts.VideoBitrate)
	}
	args = append(args, "-c:a", b.opts.AudioCodec, outputPath)
	return args
}

func (b *Burner) classify(ctx context.Context, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return fmt.Errorf("burn interrupted: %w", ctxErr)
	}
	var exitErr *executor.ExitError
	if errors.As(err, &exitErr) {
		return &MuxError{Code: exitErr.Code, Diagnostics: exitErr.Stderr}
	}
	return fmt.Errorf("run muxer: %w", err)
}

// copyFile copies a file from src to dst
func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("open source: %w", err)
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("create destination: %w", err)
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return fmt.Errorf("write destination: %w", err)
	}
	return out.Close()
}

func moveFile(src, dst string) error {
	if err := os.Rename(src, dst); err == nil {
		return nil
	}
	// Rename fails across filesystems.
	return copyFile(src, dst)
}
