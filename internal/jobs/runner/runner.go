// Package runner is the worker's poll-and-execute loop over the job queue.
package runner

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"brokerdesk/internal/audit"
	"brokerdesk/internal/jobs/models"
	"brokerdesk/internal/jobs/store"
	"brokerdesk/pkg/platform/sentinel"
)

// HandlerFunc executes one job kind. The payload is the job's raw JSON.
type HandlerFunc func(ctx context.Context, payload json.RawMessage) error

// Runner polls the queue and executes claimed jobs. A panicking handler
// fails the job and the loop keeps going.
type Runner struct {
	jobs     store.Store
	handlers map[string]HandlerFunc
	interval time.Duration
	auditor  audit.Publisher
	logger   *slog.Logger
	now      func() time.Time
}

func New(jobs store.Store, interval time.Duration, auditor audit.Publisher, logger *slog.Logger) *Runner {
	return &Runner{
		jobs:     jobs,
		handlers: make(map[string]HandlerFunc),
		interval: interval,
		auditor:  auditor,
		logger:   logger,
		now:      time.Now,
	}
}

// Register binds a handler to a job kind. Not safe to call once Run started.
func (r *Runner) Register(kind string, handler HandlerFunc) {
	r.handlers[kind] = handler
}

// Run drains pending jobs, then sleeps for the poll interval, until the
// context ends.
func (r *Runner) Run(ctx context.Context) error {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	r.logger.Info("job runner started", "interval", r.interval.String())
	for {
		r.drain(ctx)
		select {
		case <-ctx.Done():
			r.logger.Info("job runner stopping")
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

func (r *Runner) drain(ctx context.Context) {
	for {
		if ctx.Err() != nil {
			return
		}
		job, err := r.jobs.ClaimNext(ctx)
		if err != nil {
			if !errors.Is(err, sentinel.ErrNotFound) {
				r.logger.ErrorContext(ctx, "failed to claim job", slog.String("error", err.Error()))
			}
			return
		}
		r.execute(ctx, job)
	}
}

func (r *Runner) execute(ctx context.Context, job *models.Job) {
	r.logger.InfoContext(ctx, "job started",
		slog.String("job_id", job.ID.String()),
		slog.String("kind", job.Kind))

	err := r.runHandler(ctx, job)

	finished := r.now()
	job.FinishedAt = &finished
	if err != nil {
		job.Status = models.StatusFailed
		job.Error = err.Error()
		r.logger.ErrorContext(ctx, "job failed",
			slog.String("job_id", job.ID.String()),
			slog.String("kind", job.Kind),
			slog.String("error", err.Error()))
	} else {
		job.Status = models.StatusDone
		r.logger.InfoContext(ctx, "job completed",
			slog.String("job_id", job.ID.String()),
			slog.String("kind", job.Kind))
	}

	if ferr := r.jobs.Finish(ctx, job); ferr != nil {
		r.logger.ErrorContext(ctx, "failed to record job result",
			slog.String("job_id", job.ID.String()),
			slog.String("error", ferr.Error()))
		return
	}

	action := audit.ActionJobCompleted
	if job.Status == models.StatusFailed {
		action = audit.ActionJobFailed
	}
	audit.Emit(ctx, r.auditor, r.logger, audit.Event{
		Category: audit.CategoryOperations,
		Action:   action,
		Subject:  job.Kind,
		At:       finished,
	})
}

// runHandler isolates handler panics so one bad job cannot take the worker
// down.
func (r *Runner) runHandler(ctx context.Context, job *models.Job) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("handler panic: %v", rec)
		}
	}()

	handler, ok := r.handlers[job.Kind]
	if !ok {
		return fmt.Errorf("no handler for kind %q", job.Kind)
	}
	return handler(ctx, job.Payload)
}
