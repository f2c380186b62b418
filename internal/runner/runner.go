// Package runner executes caption runs as recorded jobs: every stage change
// is persisted, announced to listeners and, on success, the produced files
// are published.
package runner

import (
	"context"
	"fmt"
	"time"

	"github.com/nguyentantai21042004/caption-studio/internal/jobs"
	"github.com/nguyentantai21042004/caption-studio/internal/logger"
	"github.com/nguyentantai21042004/caption-studio/internal/processor"
	"github.com/nguyentantai21042004/caption-studio/internal/storage"
	"github.com/nguyentantai21042004/caption-studio/internal/transcriber"
)

// Event is broadcast on every job transition.
type Event struct {
	JobID   string `json:"job_id"`
	Stage   string `json:"stage,omitempty"`
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
	Kind    string `json:"error_kind,omitempty"`
}

// Runner wires a Processor to the job store.
type Runner struct {
	proc      processor.Processor
	store     *jobs.Store
	publisher storage.Publisher
	logger    logger.Logger
	notify    func(Event)
}

// New creates a Runner. notify may be nil.
func New(proc processor.Processor, store *jobs.Store, publisher storage.Publisher, log logger.Logger, notify func(Event)) *Runner {
	if publisher == nil {
		publisher = storage.Noop()
	}
	if notify == nil {
		notify = func(Event) {}
	}
	return &Runner{
		proc:      proc,
		store:     store,
		publisher: publisher,
		logger:    log.Named("runner"),
		notify:    notify,
	}
}

// Submit records a pending caption job for videoPath.
func (r *Runner) Submit(ctx context.Context, videoPath string) (*jobs.Job, error) {
	job, err := r.store.Create(ctx, jobs.KindCaption, videoPath)
	if err != nil {
		return nil, err
	}
	r.notify(Event{JobID: job.ID, Status: string(job.Status)})
	return job, nil
}

// Caption runs the pipeline for a submitted job and records the outcome.
// The returned error is the pipeline error; bookkeeping failures are logged.
func (r *Runner) Caption(ctx context.Context, job *jobs.Job, videoPath string, task transcriber.Task) (processor.Result, error) {
	return r.execute(ctx, job, processor.Request{VideoPath: videoPath, Task: task}, r.proc.Run)
}

// Watch is a watcher handler: it records a job and hands the file to
// Processor.Process, which archives the source on success. An empty task
// selects the configured default.
func (r *Runner) Watch(task transcriber.Task) func(ctx context.Context, videoPath string) error {
	return func(ctx context.Context, videoPath string) error {
		job, err := r.Submit(ctx, videoPath)
		if err != nil {
			return err
		}
		_, err = r.execute(ctx, job, processor.Request{VideoPath: videoPath, Task: task}, r.proc.Process)
		return err
	}
}

type runFunc func(ctx context.Context, req processor.Request) (processor.Result, error)

func (r *Runner) execute(ctx context.Context, job *jobs.Job, req processor.Request, run runFunc) (processor.Result, error) {
	// Job records must be written even after ctx is canceled.
	bookCtx := context.WithoutCancel(ctx)

	req.ID = job.ID
	req.Progress = func(ev processor.Event) {
		if serr := r.store.SetStage(bookCtx, job.ID, string(ev.Stage)); serr != nil {
			r.logger.Warn(ctx, "Failed to record stage for job %s: %v", job.ID, serr)
		}
		r.notify(Event{JobID: job.ID, Stage: string(ev.Stage), Status: string(jobs.StatusRunning), Message: ev.Message})
	}

	result, err := run(ctx, req)
	if err != nil {
		kind := processor.ErrorKind(err)
		if ferr := r.store.Fail(bookCtx, job.ID, result.SubtitlePath, kind, err); ferr != nil {
			r.logger.Warn(ctx, "Failed to record failure for job %s: %v", job.ID, ferr)
		}
		r.notify(Event{JobID: job.ID, Status: string(jobs.StatusFailed), Message: err.Error(), Kind: kind})
		return result, err
	}

	if cerr := r.store.Complete(bookCtx, job.ID, result.SubtitlePath, result.OutputPath); cerr != nil {
		r.logger.Warn(ctx, "Failed to record completion for job %s: %v", job.ID, cerr)
	}
	r.publish(bookCtx, result.SubtitlePath, result.OutputPath)
	r.notify(Event{
		JobID:   job.ID,
		Stage:   string(processor.StageDone),
		Status:  string(jobs.StatusCompleted),
		Message: fmt.Sprintf("%d cues, %s", result.Document.Len(), result.Duration.Round(time.Millisecond)),
	})
	return result, nil
}

func (r *Runner) publish(ctx context.Context, paths ...string) {
	for _, p := range paths {
		if p == "" {
			continue
		}
		obj, err := r.publisher.Publish(ctx, p)
		if err != nil {
			r.logger.Warn(ctx, "Failed to publish %s: %v", p, err)
			continue
		}
		if obj.URL != "" {
			r.logger.Info(ctx, "Published %s: %s", p, obj.URL)
		}
	}
}
