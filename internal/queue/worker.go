// Package queue runs pipeline jobs in the background and tracks their
// status for the API layer.
package queue

import (
	"context"
	"fmt"
	"os"
	"runtime/debug"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/maritimetraining/speech-pipeline/internal/audio"
	"github.com/maritimetraining/speech-pipeline/internal/pipeline"
	"github.com/maritimetraining/speech-pipeline/internal/store"
	"github.com/maritimetraining/speech-pipeline/internal/types"
)

// WorkerPool manages the workers processing pipeline jobs.
type WorkerPool struct {
	jobQueue    chan *Job
	workerCount int
	orch        *pipeline.Orchestrator
	db          *store.DB
	registry    *Registry
	tempDir     string
	jobTimeout  time.Duration
	log         *logrus.Logger
}

// NewWorkerPool creates a worker pool. jobTimeout is the wall-clock
// budget for one full multi-window run.
func NewWorkerPool(workerCount int, orch *pipeline.Orchestrator, db *store.DB, registry *Registry, tempDir string, jobTimeout time.Duration, log *logrus.Logger) *WorkerPool {
	return &WorkerPool{
		jobQueue:    make(chan *Job, 100),
		workerCount: workerCount,
		orch:        orch,
		db:          db,
		registry:    registry,
		tempDir:     tempDir,
		jobTimeout:  jobTimeout,
		log:         log,
	}
}

// Start launches all workers.
func (wp *WorkerPool) Start() {
	wp.log.Infof("Starting worker pool with %d workers", wp.workerCount)
	for i := 0; i < wp.workerCount; i++ {
		go wp.worker(i)
	}
}

// Enqueue registers and queues a job.
func (wp *WorkerPool) Enqueue(job *Job) {
	job.Status = types.StatusQueued
	wp.registry.Put(job)
	wp.jobQueue <- job
	wp.log.WithFields(logrus.Fields{
		"job":     job.ID,
		"session": job.SessionID,
	}).Info("Job enqueued")
}

func (wp *WorkerPool) worker(id int) {
	wp.log.Debugf("Worker %d started", id)

	for job := range wp.jobQueue {
		func() {
			defer func() {
				if r := recover(); r != nil {
					wp.log.Errorf("Worker %d: panic processing job %s: %v\n%s",
						id, job.ID, r, string(debug.Stack()))
					wp.fail(job, fmt.Errorf("worker panic: %v", r))
				}
			}()
			wp.processJob(id, job)
		}()
	}
}

// processJob runs the full pipeline for one session recording.
func (wp *WorkerPool) processJob(workerID int, job *Job) {
	log := wp.log.WithFields(logrus.Fields{"worker": workerID, "job": job.ID})
	log.Info("Processing job")

	job.Status = types.StatusRunning
	job.Message = "Processing audio"
	wp.registry.Put(job)

	// Whole-run wall-clock budget; there is no per-window timeout.
	ctx, cancel := context.WithTimeout(context.Background(), wp.jobTimeout)
	defer cancel()

	wavPath, err := audio.ExtractAudio(job.RecordingPath, wp.tempDir)
	if err != nil {
		wp.fail(job, fmt.Errorf("audio extraction failed: %v", err))
		return
	}
	defer wp.cleanupTempFile(wavPath)

	rec, err := audio.ReadWAV(wavPath)
	if err != nil {
		wp.fail(job, fmt.Errorf("audio decode failed: %v", err))
		return
	}

	windows, err := wp.db.WindowsForSession(job.SessionID)
	if err != nil {
		wp.fail(job, fmt.Errorf("failed to load demanding event windows: %v", err))
		return
	}
	if len(windows) == 0 {
		wp.fail(job, fmt.Errorf("no demanding event windows mapped for session %d", job.SessionID))
		return
	}

	table, err := wp.orch.ProcessSession(ctx, rec, windows, types.SessionContext{
		SessionID: job.SessionID,
		SubjectID: job.SubjectID,
	})
	if err != nil {
		wp.fail(job, err)
		return
	}

	now := time.Now()
	job.Status = types.StatusCompleted
	job.Message = "Audio processing completed successfully"
	job.CompletedAt = &now
	job.Result = &types.JobResult{
		Rows:        len(table),
		Windows:     len(windows),
		CompletedAt: now,
	}
	wp.registry.Put(job)
	log.WithField("rows", len(table)).Info("Job completed")
}

func (wp *WorkerPool) fail(job *Job, err error) {
	wp.log.WithField("job", job.ID).Errorf("Job failed: %v", err)
	now := time.Now()
	job.Status = types.StatusFailed
	job.Message = "Job failed"
	job.Error = err.Error()
	job.CompletedAt = &now
	wp.registry.Put(job)
}

func (wp *WorkerPool) cleanupTempFile(path string) {
	if path == "" {
		return
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		wp.log.Warnf("Failed to cleanup temp file %s: %v", path, err)
	}
}
