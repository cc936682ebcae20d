package domain

import "time"

// JobStatus enumerates the generation job lifecycle states.
type JobStatus string

const (
	JobStatusSubmitted  JobStatus = "submitted"
	JobStatusInProgress JobStatus = "in_progress"
	JobStatusDone       JobStatus = "done"
	JobStatusFailed     JobStatus = "failed"
	JobStatusTimedOut   JobStatus = "timed_out"
)

// Terminal reports whether the status admits no further transitions.
func (s JobStatus) Terminal() bool {
	switch s {
	case JobStatusDone, JobStatusFailed, JobStatusTimedOut:
		return true
	}
	return false
}

// GenerationJob tracks one external video-synthesis request from submission
// to a terminal state. Transitions are driven exclusively by polling the
// provider; the job is never persisted locally.
type GenerationJob struct {
	ID          string
	InputText   string
	Status      JobStatus
	ResultURL   string
	SubmittedAt time.Time
	UpdatedAt   time.Time
}

// JobResult is the terminal outcome surfaced to callers.
type JobResult struct {
	ResultURL string
	Polls     int
	Elapsed   time.Duration
}
