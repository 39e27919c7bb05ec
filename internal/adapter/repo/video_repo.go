package repo

import (
	"context"
	"fmt"

	"github.com/Shubhraj-Shubh/MakeVideo-AI-Pro/internal/domain"
	"github.com/Shubhraj-Shubh/MakeVideo-AI-Pro/internal/infra"
	"github.com/Shubhraj-Shubh/MakeVideo-AI-Pro/internal/sqlinline"
)

// VideoRepositoryPG implements domain.VideoRepository using PostgreSQL.
type VideoRepositoryPG struct {
	sql infra.SQLExecutor
}

// NewVideoRepository constructs a new video repository instance.
func NewVideoRepository(sql infra.SQLExecutor) *VideoRepositoryPG {
	return &VideoRepositoryPG{sql: sql}
}

// Create persists a video and assigns its identity.
func (r *VideoRepositoryPG) Create(ctx context.Context, video *domain.Video) error {
	if video == nil || video.VideoURL == "" {
		return fmt.Errorf("%w: video url is required", domain.ErrValidation)
	}
	row := r.sql.QueryRow(ctx, sqlinline.QInsertVideo, video.JobID, video.Prompt, video.VideoURL, video.Provider)
	if err := row.Scan(&video.ID, &video.CreatedAt); err != nil {
		return fmt.Errorf("insert video: %w", err)
	}
	return nil
}

// List returns every persisted video, newest first.
func (r *VideoRepositoryPG) List(ctx context.Context) ([]domain.Video, error) {
	rows, err := r.sql.Query(ctx, sqlinline.QListVideos)
	if err != nil {
		return nil, fmt.Errorf("list videos: %w", err)
	}
	defer rows.Close()

	videos := []domain.Video{}
	for rows.Next() {
		var v domain.Video
		if err := rows.Scan(&v.ID, &v.JobID, &v.Prompt, &v.VideoURL, &v.Provider, &v.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan video: %w", err)
		}
		videos = append(videos, v)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return videos, nil
}

var _ domain.VideoRepository = (*VideoRepositoryPG)(nil)
