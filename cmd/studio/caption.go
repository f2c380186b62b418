package main

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/nguyentantai21042004/caption-studio/internal/processor"
	"github.com/nguyentantai21042004/caption-studio/internal/runner"
	"github.com/nguyentantai21042004/caption-studio/internal/storage"
	"github.com/nguyentantai21042004/caption-studio/internal/transcriber"
)

const previewCues = 5

func newCaptionCommand(ctx *commandContext) *cobra.Command {
	var translate bool

	cmd := &cobra.Command{
		Use:   "caption <video>",
		Short: "Transcribe a video and burn the captions into a copy",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.withTools()
			if err != nil {
				return err
			}
			log := ctx.log()
			runCtx := cmd.Context()
			out := cmd.OutOrStdout()

			videoPath, err := filepath.Abs(args[0])
			if err != nil {
				return err
			}

			task := transcriber.TaskTranscribe
			if translate {
				task = transcriber.TaskTranslate
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
				if ev.Stage != "" && ev.Message != "" {
					fmt.Fprintf(out, "[%s] %s\n", ev.Stage, ev.Message)
				}
			})
			job, err := run.Submit(runCtx, videoPath)
			if err != nil {
				return err
			}

			result, err := run.Caption(runCtx, job, videoPath, task)
			if result.Document != nil {
				for _, line := range processor.Preview(result.Document, previewCues) {
					fmt.Fprintln(out, "  "+line)
				}
			}
			if result.SubtitlePath != "" {
				fmt.Fprintf(out, "Captions: %s\n", result.SubtitlePath)
			}
			if err != nil {
				if result.SubtitlePath != "" {
					return fmt.Errorf("captions were generated but burning failed (%s): %w", processor.ErrorKind(err), err)
				}
				return fmt.Errorf("%s: %w", processor.ErrorKind(err), err)
			}
			if result.OutputPath == "" {
				return errors.New("no output video produced")
			}
			fmt.Fprintf(out, "Video: %s\n", result.OutputPath)
			fmt.Fprintf(out, "Job: %s\n", job.ID)
			return nil
		},
	}

	cmd.Flags().BoolVar(&translate, "translate", false, "Translate speech to English instead of transcribing")
	return cmd
}
