package main

import (
	"context"
	"errors"
	"runtime"
	"time"

	"github.com/spf13/cobra"

	"github.com/nguyentantai21042004/caption-studio/internal/runner"
	"github.com/nguyentantai21042004/caption-studio/internal/storage"
	"github.com/nguyentantai21042004/caption-studio/internal/transcriber"
	"github.com/nguyentantai21042004/caption-studio/internal/watcher"
)

func newWatchCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Caption every video dropped into the input directory",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.withTools()
			if err != nil {
				return err
			}
			log := ctx.log()
			runCtx := cmd.Context()

			lock, err := acquireLock(cfg)
			if err != nil {
				return err
			}
			defer lock.Unlock()

			task, err := transcriber.ParseTask(cfg.Whisper.DefaultTask)
			if err != nil {
				return err
			}

			store, err := ctx.openJobs()
			if err != nil {
				return err
			}
			defer store.Close()

			publisher, err := storage.New(runCtx, cfg.Storage, log)
			if err != nil {
				return err
			}

			run := runner.New(newProcessor(cfg, log), store, publisher, log, func(ev runner.Event) {
				if ev.Stage != "" {
					log.Debug(runCtx, "Job %s: %s %s", ev.JobID, ev.Stage, ev.Message)
				}
			})

			settle := time.Duration(cfg.Performance.SettleDelayMS) * time.Millisecond
			w, err := watcher.New(cfg.Paths.Input, run.Watch(task), log, settle)
			if err != nil {
				return err
			}
			defer w.Stop()

			log.Info(runCtx, "========================================")
			log.Info(runCtx, "Caption Studio watcher")
			log.Info(runCtx, "System: %s/%s, %d CPU cores", runtime.GOOS, runtime.GOARCH, runtime.NumCPU())
			log.Info(runCtx, "Monitoring: %s", cfg.Paths.Input)
			log.Info(runCtx, "Output: %s", cfg.Paths.Output)
			log.Info(runCtx, "Whisper: %d threads, task %s", cfg.Whisper.Threads, task)
			log.Info(runCtx, "FFmpeg: %s encoder, audio %s", cfg.FFmpeg.Encoder, cfg.FFmpeg.AudioCodec)
			log.Info(runCtx, "Concurrent: %d videos at once", cfg.Performance.MaxConcurrent)
			log.Info(runCtx, "Press Ctrl+C to stop")
			log.Info(runCtx, "========================================")

			err = w.Start(runCtx)
			if errors.Is(err, context.Canceled) {
				log.Info(context.Background(), "Watcher stopped")
				return nil
			}
			return err
		},
	}
}
