package domain

import "time"

// JobStatus enumerates job lifecycle states.
type JobStatus string

const (
	JobStatusPending    JobStatus = "pending"
	JobStatusProcessing JobStatus = "processing"
	JobStatusCompleted  JobStatus = "completed"
	JobStatusFailed     JobStatus = "failed"
	JobStatusCancelled  JobStatus = "cancelled"
)

// jobTransitions lists the allowed target states for each source state.
// Terminal states have no entry.
var jobTransitions = map[JobStatus][]JobStatus{
	JobStatusPending:    {JobStatusProcessing, JobStatusCancelled, JobStatusFailed},
	JobStatusProcessing: {JobStatusCompleted, JobStatusFailed, JobStatusCancelled},
}

// Job encapsulates the lifecycle of a chat-originated video request.
type Job struct {
	ID             string
	UserHandle     string
	UserPrompt     string
	EnhancedPrompt string
	Status         JobStatus
	VideoURL       string
	Provider       string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// Valid reports whether s is a known status.
func (s JobStatus) Valid() bool {
	switch s {
	case JobStatusPending, JobStatusProcessing, JobStatusCompleted, JobStatusFailed, JobStatusCancelled:
		return true
	}
	return false
}

// Terminal reports whether no transition may leave s.
func (s JobStatus) Terminal() bool {
	return s == JobStatusCompleted || s == JobStatusFailed || s == JobStatusCancelled
}

// CanTransition reports whether a job may move from one status to another.
func CanTransition(from, to JobStatus) bool {
	for _, next := range jobTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// TransitionSources returns every status from which to is reachable.
func TransitionSources(to JobStatus) []JobStatus {
	var sources []JobStatus
	for _, from := range []JobStatus{JobStatusPending, JobStatusProcessing} {
		if CanTransition(from, to) {
			sources = append(sources, from)
		}
	}
	return sources
}

// OwnedBy reports whether handle created the job.
func (j *Job) OwnedBy(handle string) bool {
	return j != nil && j.UserHandle != "" && j.UserHandle == handle
}

// JobUpdate carries the mutable fields of a status transition.
type JobUpdate struct {
	Status   JobStatus
	VideoURL string
	Provider string
}
