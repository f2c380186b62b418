package main

import (
	"github.com/spf13/cobra"

	"github.com/nguyentantai21042004/caption-studio/internal/generator"
	"github.com/nguyentantai21042004/caption-studio/internal/server"
	"github.com/nguyentantai21042004/caption-studio/internal/speech"
	"github.com/nguyentantai21042004/caption-studio/internal/storage"
	"github.com/nguyentantai21042004/caption-studio/internal/summarizer"
	"github.com/nguyentantai21042004/caption-studio/pkg/executor"
)

func newServeCommand(ctx *commandContext) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.withTools()
			if err != nil {
				return err
			}
			if addr != "" {
				cfg.Server.Addr = addr
			}
			log := ctx.log()

			lock, err := acquireLock(cfg)
			if err != nil {
				return err
			}
			defer lock.Unlock()

			store, err := ctx.openJobs()
			if err != nil {
				return err
			}
			defer store.Close()

			publisher, err := storage.New(cmd.Context(), cfg.Storage, log)
			if err != nil {
				return err
			}

			var llm summarizer.Summarizer
			if len(cfg.Gemini.APIKeys) > 0 {
				llm = summarizer.New(cfg.Gemini.APIKeys, cfg.Gemini.Model, log)
			}

			exec := executor.New()
			srv := server.New(server.Deps{
				Config:    cfg,
				Processor: newProcessor(cfg, log),
				Jobs:      store,
				LLM:       llm,
				Generator: generator.New(cfg, exec, speech.NewEspeak(cfg.Speech, exec, log), log),
				Publisher: publisher,
				Logger:    log,
			})
			return srv.Run(cmd.Context())
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (overrides server.addr)")
	return cmd
}
