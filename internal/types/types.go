package types

import "time"

// Job status constants
const (
	StatusQueued    = "QUEUED"
	StatusRunning   = "RUNNING"
	StatusCompleted = "COMPLETED"
	StatusFailed    = "FAILED"
)

// Speaker role labels, in priority order. The speaker with the highest
// total talk time in a window is labeled RoleTrainee, the second
// RoleTrainer, the third RoleHelmsman. Any further speakers are dropped.
const (
	RoleTrainee  = "trainee"
	RoleTrainer  = "trainer"
	RoleHelmsman = "helmsman"
)

// RolePriority returns the fixed role labels in assignment order.
func RolePriority() []string {
	return []string{RoleTrainee, RoleTrainer, RoleHelmsman}
}

// Span is a half-open time interval [StartMs, EndMs) in milliseconds,
// relative to the start of its containing window.
type Span struct {
	StartMs float64
	EndMs   float64
}

// Duration returns the span length in milliseconds.
func (s Span) Duration() float64 {
	return s.EndMs - s.StartMs
}

// TimeWindow identifies one demanding event inside the full recording.
// Bounds are milliseconds from the start of the recording.
type TimeWindow struct {
	Label   string
	EventID int64
	StartMs float64
	EndMs   float64
}

// VADSegment is one bounded speech segment produced by voice-activity
// chunking. IDs are 0-based and ascending within a window.
type VADSegment struct {
	ID int
	Span
}

// ResolvedSubSegment is the intersection of one VADSegment with one
// speaker's span, the atomic unit sent to transcription.
type ResolvedSubSegment struct {
	StartMs float64
	EndMs   float64
	Speaker string
}

// TranscriptRow is one line of the per-window transcript table.
type TranscriptRow struct {
	SegmentID int64   `json:"segment_id"`
	StartMs   float64 `json:"start"`
	EndMs     float64 `json:"end"`
	Speaker   string  `json:"speaker"`
	Text      string  `json:"text"`
}

// AggregatedTranscript is the session-level transcript table, windows
// concatenated in processing order.
type AggregatedTranscript []TranscriptRow

// SessionContext carries the persistent identifiers a pipeline run
// attributes its records to.
type SessionContext struct {
	SessionID int64
	SubjectID string
}

// JobResult summarizes a completed processing job.
type JobResult struct {
	Rows        int       `json:"rows"`
	Windows     int       `json:"windows"`
	CompletedAt time.Time `json:"completed_at"`
}
