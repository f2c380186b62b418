package processor

import (
	"github.com/nguyentantai21042004/caption-studio/internal/caption"
	"github.com/nguyentantai21042004/caption-studio/internal/config"
	"github.com/nguyentantai21042004/caption-studio/internal/logger"
	"github.com/nguyentantai21042004/caption-studio/internal/transcriber"
	"github.com/nguyentantai21042004/caption-studio/pkg/executor"
)

type implProcessor struct {
	cfg         *config.Config
	executor    executor.Executor
	transcriber transcriber.Transcriber
	burner      *caption.Burner
	logger      logger.Logger
	sem         *semaphore
}

// New creates a new Processor instance. At most
// cfg.Performance.MaxConcurrent runs execute at once.
func New(cfg *config.Config, exec executor.Executor, tr transcriber.Transcriber, log logger.Logger) Processor {
	burner := caption.NewBurner(exec, caption.BurnOptions{
		BinaryPath:   cfg.FFmpeg.BinaryPath,
		Encoder:      cfg.FFmpeg.Encoder,
		Preset:       cfg.FFmpeg.Preset,
		VideoBitrate: cfg.FFmpeg.VideoBitrate,
		AudioCodec:   cfg.FFmpeg.AudioCodec,
		TempDir:      cfg.Paths.Temp,
	}, log)

	capacity := cfg.Performance.MaxConcurrent
	if capacity <= 0 {
		capacity = 1
	}

	return &implProcessor{
		cfg:         cfg,
		executor:    exec,
		transcriber: tr,
		burner:      burner,
		logger:      log.Named("processor"),
		sem:         newSemaphore(capacity),
	}
}
