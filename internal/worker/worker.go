// Package worker implements the background report generation loop.
//
// The worker polls the report_jobs table, claims a batch of pending jobs
// with FOR UPDATE SKIP LOCKED so multiple instances can run side by side,
// and renders each claimed job's unsigned PDF concurrently.
package worker

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/inspekta-io/inspekta/internal/metrics"
	"github.com/inspekta-io/inspekta/internal/repository"
	"github.com/inspekta-io/inspekta/internal/service"
)

// Worker polls for and processes report generation jobs.
type Worker struct {
	queries *repository.Queries
	reports service.ReportService
	config  Config
	logger  *slog.Logger

	// Synchronization
	wg     sync.WaitGroup
	stopCh chan struct{}
}

// New creates a new Worker. The worker must be started with Start() and
// stopped with Stop().
func New(queries *repository.Queries, reports service.ReportService, config Config, logger *slog.Logger) (*Worker, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &Worker{
		queries: queries,
		reports: reports,
		config:  config,
		logger:  logger,
		stopCh:  make(chan struct{}),
	}, nil
}

// Start recovers stale jobs from previous crashes and begins the poll loop.
func (w *Worker) Start(ctx context.Context) {
	if err := w.recoverStaleJobs(ctx); err != nil {
		w.logger.Error("failed to recover stale jobs", "error", err)
	}

	w.wg.Add(1)
	go w.run(ctx)

	w.logger.Info("report worker started",
		"batch_size", w.config.BatchSize,
		"poll_interval", w.config.PollInterval,
	)
}

// Stop signals the worker to stop and waits for in-flight jobs to finish.
// It respects the configured ShutdownTimeout.
func (w *Worker) Stop() {
	w.logger.Info("stopping report worker...")
	close(w.stopCh)

	done := make(chan struct{})
	go func() {
		w.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		w.logger.Info("report worker stopped gracefully")
	case <-time.After(w.config.ShutdownTimeout):
		w.logger.Warn("worker shutdown timeout exceeded, some jobs may still be running")
	}
}

// recoverStaleJobs requeues processing jobs whose worker died mid-render.
func (w *Worker) recoverStaleJobs(ctx context.Context) error {
	cutoff := time.Now().Add(-w.config.StaleJobThreshold)
	count, err := w.queries.RecoverStaleJobs(ctx, cutoff)
	if err != nil {
		return fmt.Errorf("recover stale jobs: %w", err)
	}

	if count > 0 {
		metrics.RecordJobsRecovered(count)
		w.logger.Warn("recovered stale jobs", "count", count, "threshold", w.config.StaleJobThreshold)
	}
	return nil
}

// run is the main poll loop. One iteration claims a batch, processes it
// concurrently, and sleeps when the queue is empty or the claim fails.
func (w *Worker) run(ctx context.Context) {
	defer w.wg.Done()

	for {
		select {
		case <-w.stopCh:
			return
		case <-ctx.Done():
			return
		default:
		}

		claimed, err := w.queries.ClaimPendingJobs(ctx, int32(w.config.BatchSize))
		if err != nil {
			w.logger.Error("failed to claim jobs", "error", err)
			w.sleep()
			continue
		}
		if len(claimed) == 0 {
			w.sleep()
			continue
		}

		// The claim is already committed; a crash from here on is what
		// the stale-job recovery pass handles.
		var jobs sync.WaitGroup
		for _, job := range claimed {
			jobs.Add(1)
			go func(job repository.ReportJob) {
				defer jobs.Done()
				w.process(ctx, job)
			}(job)
		}
		jobs.Wait()
	}
}

func (w *Worker) sleep() {
	select {
	case <-w.stopCh:
	case <-time.After(w.config.PollInterval):
	}
}

// process renders one claimed job and records the terminal state.
func (w *Worker) process(ctx context.Context, job repository.ReportJob) {
	logger := w.logger.With(
		"job_id", job.ID,
		"report_id", job.ReportID,
		"attempt", job.Attempts,
	)
	logger.Info("processing report job")

	jobCtx, cancel := context.WithTimeout(ctx, w.config.JobTimeout)
	defer cancel()

	start := time.Now()
	err := w.reports.GenerateForJob(jobCtx, job.ReportID)
	duration := time.Since(start)

	if err != nil {
		metrics.RecordJobResult("failed", duration)
		logger.Error("report job failed", "error", err, "duration", duration)
		if markErr := w.queries.FailReportJob(ctx, repository.FailReportJobParams{
			ID:        job.ID,
			LastError: err.Error(),
		}); markErr != nil {
			logger.Error("failed to mark job as failed", "error", markErr)
		}
		return
	}

	metrics.RecordJobResult("completed", duration)
	logger.Info("report job completed", "duration", duration)
	if err := w.queries.CompleteReportJob(ctx, job.ID); err != nil {
		logger.Error("failed to mark job as completed", "error", err)
	}
}
