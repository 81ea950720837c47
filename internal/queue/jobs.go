package queue

import (
	"sync"
	"time"

	"github.com/maritimetraining/speech-pipeline/internal/types"
)

// Job is one background processing request: run the full pipeline over
// a session recording.
type Job struct {
	ID            string           `json:"job_id"`
	SessionID     int64            `json:"session_id"`
	SubjectID     string           `json:"subject_id"`
	RecordingPath string           `json:"recording_path"`
	Status        string           `json:"status"`
	Message       string           `json:"message"`
	Error         string           `json:"error,omitempty"`
	StartedAt     time.Time        `json:"started_at"`
	CompletedAt   *time.Time       `json:"completed_at,omitempty"`
	Result        *types.JobResult `json:"result,omitempty"`
}

// NewJob creates a queued job.
func NewJob(id string, sessionID int64, subjectID, recordingPath string) *Job {
	return &Job{
		ID:            id,
		SessionID:     sessionID,
		SubjectID:     subjectID,
		RecordingPath: recordingPath,
		Status:        types.StatusQueued,
		Message:       "Job queued",
		StartedAt:     time.Now(),
	}
}

// Registry tracks job status for the API layer. All accessors copy, so
// callers never observe a job mid-update.
type Registry struct {
	mu   sync.RWMutex
	jobs map[string]*Job
}

// NewRegistry creates an empty job registry.
func NewRegistry() *Registry {
	return &Registry{jobs: make(map[string]*Job)}
}

// Put registers or replaces a job snapshot.
func (r *Registry) Put(job *Job) {
	r.mu.Lock()
	defer r.mu.Unlock()
	copied := *job
	r.jobs[job.ID] = &copied
}

// Get returns a snapshot of one job.
func (r *Registry) Get(id string) (*Job, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	job, ok := r.jobs[id]
	if !ok {
		return nil, false
	}
	copied := *job
	return &copied, true
}

// List returns snapshots of all known jobs.
func (r *Registry) List() []*Job {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*Job, 0, len(r.jobs))
	for _, job := range r.jobs {
		copied := *job
		out = append(out, &copied)
	}
	return out
}
