// Package server exposes the caption pipeline, summarizer, analyzer and
// file generator over HTTP.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/mux"

	"github.com/nguyentantai21042004/caption-studio/internal/config"
	"github.com/nguyentantai21042004/caption-studio/internal/generator"
	"github.com/nguyentantai21042004/caption-studio/internal/jobs"
	"github.com/nguyentantai21042004/caption-studio/internal/logger"
	"github.com/nguyentantai21042004/caption-studio/internal/processor"
	"github.com/nguyentantai21042004/caption-studio/internal/runner"
	"github.com/nguyentantai21042004/caption-studio/internal/storage"
	"github.com/nguyentantai21042004/caption-studio/internal/summarizer"
)

const shutdownTimeout = 10 * time.Second

// Deps are the collaborators a Server routes requests to.
type Deps struct {
	Config    *config.Config
	Processor processor.Processor
	Jobs      *jobs.Store
	// LLM serves mode=llm summaries. Nil disables that mode.
	LLM       summarizer.Summarizer
	Generator generator.Generator
	Publisher storage.Publisher
	Logger    logger.Logger
}

// Server is the HTTP front end.
type Server struct {
	cfg       *config.Config
	jobs      *jobs.Store
	runner    *runner.Runner
	naive     summarizer.Summarizer
	llm       summarizer.Summarizer
	generator generator.Generator
	publisher storage.Publisher
	hub       *Hub
	logger    logger.Logger
	router    *mux.Router

	// background caption runs
	baseCtx context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
}

// New builds a Server and its routes.
func New(d Deps) *Server {
	log := d.Logger.Named("server")
	publisher := d.Publisher
	if publisher == nil {
		publisher = storage.Noop()
	}
	hub := NewHub(d.Config.Server.AllowedOrigin, log)
	baseCtx, cancel := context.WithCancel(context.Background())

	s := &Server{
		cfg:       d.Config,
		jobs:      d.Jobs,
		runner:    runner.New(d.Processor, d.Jobs, publisher, log, hub.Broadcast),
		naive:     summarizer.NewNaive(),
		llm:       d.LLM,
		generator: d.Generator,
		publisher: publisher,
		hub:       hub,
		logger:    log,
		baseCtx:   baseCtx,
		cancel:    cancel,
	}
	s.router = s.routes()
	return s
}

func (s *Server) routes() *mux.Router {
	r := mux.NewRouter()
	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/summarize", s.handleSummarize).Methods(http.MethodPost)
	api.HandleFunc("/analyze", s.handleAnalyze).Methods(http.MethodPost)
	api.HandleFunc("/generate/{format}", s.handleGenerate).Methods(http.MethodPost)
	api.HandleFunc("/captions", s.handleCaptions).Methods(http.MethodPost)
	api.HandleFunc("/jobs", s.handleListJobs).Methods(http.MethodGet)
	api.HandleFunc("/jobs/{id}", s.handleGetJob).Methods(http.MethodGet)
	r.HandleFunc("/files/{path:.+}", s.handleFile).Methods(http.MethodGet)
	r.Handle("/ws", s.hub)
	r.Use(s.logRequests)
	return r
}

// Handler returns the routed handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run serves until ctx is canceled, then shuts down gracefully and waits
// for background caption runs to stop.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Server.Addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info(ctx, "Listening on http://%s", s.cfg.Server.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			s.Close()
			return fmt.Errorf("listen: %w", err)
		}
	case <-ctx.Done():
	}

	s.logger.Info(ctx, "Shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	err := srv.Shutdown(shutdownCtx)
	s.Close()
	return err
}

// Close cancels background runs, waits for them and disconnects clients.
func (s *Server) Close() {
	s.cancel()
	s.wg.Wait()
	s.hub.Close()
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		s.logger.Debug(r.Context(), "%s %s (%s)", r.Method, r.URL.Path, time.Since(start).Round(time.Millisecond))
	})
}
