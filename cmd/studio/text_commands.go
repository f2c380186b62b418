package main

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/nguyentantai21042004/caption-studio/internal/analyzer"
	"github.com/nguyentantai21042004/caption-studio/internal/generator"
	"github.com/nguyentantai21042004/caption-studio/internal/jobs"
	"github.com/nguyentantai21042004/caption-studio/internal/reader"
	"github.com/nguyentantai21042004/caption-studio/internal/speech"
	"github.com/nguyentantai21042004/caption-studio/internal/summarizer"
	"github.com/nguyentantai21042004/caption-studio/pkg/executor"
)

// inputText returns --text when set, otherwise the contents of the file
// argument, otherwise stdin.
func inputText(cmd *cobra.Command, args []string, text string) (string, error) {
	switch {
	case text != "":
		return text, nil
	case len(args) == 1:
		return reader.ReadFile(args[0])
	default:
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return "", fmt.Errorf("read stdin: %w", err)
		}
		return string(data), nil
	}
}

func newSummarizeCommand(ctx *commandContext) *cobra.Command {
	var text string
	var useLLM bool

	cmd := &cobra.Command{
		Use:   "summarize [file]",
		Short: "Summarize a .txt, .pdf or .docx file or inline text",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			content, err := inputText(cmd, args, text)
			if err != nil {
				return err
			}

			sum := summarizer.NewNaive()
			if useLLM {
				if len(cfg.Gemini.APIKeys) == 0 {
					return summarizer.ErrNoAPIKeys
				}
				sum = summarizer.New(cfg.Gemini.APIKeys, cfg.Gemini.Model, ctx.log())
			}

			summary, err := sum.Summarize(cmd.Context(), content)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), summary)
			return nil
		},
	}

	cmd.Flags().StringVar(&text, "text", "", "Text to summarize instead of a file")
	cmd.Flags().BoolVar(&useLLM, "llm", false, "Summarize with Gemini (needs GEMINI_API_KEYS)")
	return cmd
}

func newSummarizeDirCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "summarize-dir <srt-dir> <dest-dir>",
		Short: "Summarize every caption file in a directory with Gemini",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if len(cfg.Gemini.APIKeys) == 0 {
				return summarizer.ErrNoAPIKeys
			}
			llm := summarizer.New(cfg.Gemini.APIKeys, cfg.Gemini.Model, ctx.log())
			return llm.SummarizeAll(cmd.Context(), args[0], args[1])
		},
	}
}

func newAnalyzeCommand(ctx *commandContext) *cobra.Command {
	var text string

	cmd := &cobra.Command{
		Use:   "analyze [file]",
		Short: "Count words and list keywords",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			content, err := inputText(cmd, args, text)
			if err != nil {
				return err
			}
			a := analyzer.Analyze(content)
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Words: %d\n", a.WordCount)
			fmt.Fprintf(out, "Keywords: %s\n", strings.Join(a.Keywords, ", "))
			return nil
		},
	}

	cmd.Flags().StringVar(&text, "text", "", "Text to analyze instead of a file")
	return cmd
}

func newGenerateCommand(ctx *commandContext) *cobra.Command {
	var text string
	var formatName string

	cmd := &cobra.Command{
		Use:   "generate [file]",
		Short: "Render text as txt, docx, pdf, png or a narrated mp4",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := generator.ParseFormat(formatName)
			if err != nil {
				return err
			}
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if format == generator.FormatVideo {
				if cfg, err = ctx.withTools(); err != nil {
					return err
				}
			}
			content, err := inputText(cmd, args, text)
			if err != nil {
				return err
			}
			if strings.TrimSpace(content) == "" {
				return generator.ErrEmptyContent
			}

			store, err := ctx.openJobs()
			if err != nil {
				return err
			}
			defer store.Close()

			log := ctx.log()
			exec := executor.New()
			gen := generator.New(cfg, exec, speech.NewEspeak(cfg.Speech, exec, log), log)

			runCtx := cmd.Context()
			job, err := store.Create(runCtx, jobs.KindGenerate, string(format))
			if err != nil {
				return err
			}
			art, err := gen.Generate(runCtx, format, content)
			if err != nil {
				if ferr := store.Fail(runCtx, job.ID, "", "generate_failure", err); ferr != nil {
					return errors.Join(err, ferr)
				}
				return err
			}
			if err := store.Complete(runCtx, job.ID, "", art.Path); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), art.Path)
			return nil
		},
	}

	cmd.Flags().StringVar(&text, "text", "", "Text to render instead of a file")
	cmd.Flags().StringVarP(&formatName, "format", "f", "txt", "Output format: txt, docx, pdf, png, mp4")
	return cmd
}
