package repo

import (
	"context"
	"fmt"
	"strings"

	"github.com/Shubhraj-Shubh/MakeVideo-AI-Pro/internal/domain"
	"github.com/Shubhraj-Shubh/MakeVideo-AI-Pro/internal/infra"
	"github.com/Shubhraj-Shubh/MakeVideo-AI-Pro/internal/sqlinline"
)

// JobRepositoryPG implements domain.JobRepository.
type JobRepositoryPG struct {
	sql infra.SQLExecutor
}

// NewJobRepository creates a new job repository backed by PostgreSQL.
func NewJobRepository(sql infra.SQLExecutor) *JobRepositoryPG {
	return &JobRepositoryPG{sql: sql}
}

// Create inserts a new job record and fills its timestamps.
func (r *JobRepositoryPG) Create(ctx context.Context, job *domain.Job) error {
	if job == nil || strings.TrimSpace(job.ID) == "" {
		return fmt.Errorf("%w: job id is required", domain.ErrValidation)
	}
	if !job.Status.Valid() {
		return fmt.Errorf("%w: unknown status %q", domain.ErrValidation, job.Status)
	}
	row := r.sql.QueryRow(ctx, sqlinline.QInsertJob,
		job.ID,
		job.UserHandle,
		job.UserPrompt,
		job.EnhancedPrompt,
		string(job.Status),
		job.VideoURL,
		job.Provider,
	)
	if err := row.Scan(&job.CreatedAt, &job.UpdatedAt); err != nil {
		return fmt.Errorf("insert job: %w", err)
	}
	return nil
}

// GetByID fetches a job by its identifier.
func (r *JobRepositoryPG) GetByID(ctx context.Context, jobID string) (*domain.Job, error) {
	job, err := scanJob(r.sql.QueryRow(ctx, sqlinline.QSelectJobByID, jobID))
	if err != nil {
		if infra.IsNoRows(err) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("select job: %w", err)
	}
	return job, nil
}

// ListByUser returns the newest jobs of handle.
func (r *JobRepositoryPG) ListByUser(ctx context.Context, handle string, limit int) ([]domain.Job, error) {
	if limit <= 0 {
		limit = 10
	}
	rows, err := r.sql.Query(ctx, sqlinline.QListJobsByUser, handle, limit)
	if err != nil {
		return nil, fmt.Errorf("list jobs: %w", err)
	}
	defer rows.Close()

	var jobs []domain.Job
	for rows.Next() {
		job, err := scanJob(rows)
		if err != nil {
			return nil, fmt.Errorf("scan job: %w", err)
		}
		jobs = append(jobs, *job)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return jobs, nil
}

// Transition moves a job to update.Status when the stored status allows it.
// A rejected transition is reported as domain.ErrInvalidTransition, a missing
// row as domain.ErrNotFound.
func (r *JobRepositoryPG) Transition(ctx context.Context, jobID string, update domain.JobUpdate) error {
	sources := domain.TransitionSources(update.Status)
	if len(sources) == 0 {
		return fmt.Errorf("%w: nothing transitions to %q", domain.ErrInvalidTransition, update.Status)
	}
	from := make([]string, 0, len(sources))
	for _, s := range sources {
		from = append(from, string(s))
	}
	tag, err := r.sql.Exec(ctx, sqlinline.QTransitionJob, jobID, string(update.Status), update.VideoURL, update.Provider, from)
	if err != nil {
		return fmt.Errorf("update job status: %w", err)
	}
	if tag.RowsAffected() > 0 {
		return nil
	}
	current, err := r.GetByID(ctx, jobID)
	if err != nil {
		return err
	}
	return fmt.Errorf("%w: %s -> %s", domain.ErrInvalidTransition, current.Status, update.Status)
}

// Delete removes a job regardless of its status.
func (r *JobRepositoryPG) Delete(ctx context.Context, jobID string) error {
	tag, err := r.sql.Exec(ctx, sqlinline.QDeleteJob, jobID)
	if err != nil {
		return fmt.Errorf("delete job: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// DeleteByUser removes every job of handle and reports how many were dropped.
func (r *JobRepositoryPG) DeleteByUser(ctx context.Context, handle string) (int64, error) {
	tag, err := r.sql.Exec(ctx, sqlinline.QDeleteJobsByUser, handle)
	if err != nil {
		return 0, fmt.Errorf("delete jobs: %w", err)
	}
	return tag.RowsAffected(), nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanJob(row scanner) (*domain.Job, error) {
	var job domain.Job
	var status string
	if err := row.Scan(
		&job.ID,
		&job.UserHandle,
		&job.UserPrompt,
		&job.EnhancedPrompt,
		&status,
		&job.VideoURL,
		&job.Provider,
		&job.CreatedAt,
		&job.UpdatedAt,
	); err != nil {
		return nil, err
	}
	job.Status = domain.JobStatus(status)
	return &job, nil
}

var _ domain.JobRepository = (*JobRepositoryPG)(nil)
