package domain

import "context"

// JobRepository defines persistence for chat jobs.
type JobRepository interface {
	Create(ctx context.Context, job *Job) error
	GetByID(ctx context.Context, jobID string) (*Job, error)
	// ListByUser returns at most limit jobs of handle, newest first.
	ListByUser(ctx context.Context, handle string, limit int) ([]Job, error)
	// Transition applies update only while the stored status may still move
	// to update.Status. It returns ErrInvalidTransition otherwise.
	Transition(ctx context.Context, jobID string, update JobUpdate) error
	Delete(ctx context.Context, jobID string) error
	DeleteByUser(ctx context.Context, handle string) (int64, error)
}

// VideoRepository handles persistence for generated videos.
type VideoRepository interface {
	Create(ctx context.Context, video *Video) error
	List(ctx context.Context) ([]Video, error)
}
