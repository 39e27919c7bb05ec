// Package generation runs the provider chain and records every produced
// video.
package generation

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/Shubhraj-Shubh/MakeVideo-AI-Pro/internal/domain"
	"github.com/Shubhraj-Shubh/MakeVideo-AI-Pro/internal/providers/video"
)

// VideoGenerator is satisfied by *video.Chain.
type VideoGenerator interface {
	Generate(ctx context.Context, prompt string) (*video.Outcome, error)
}

// Request describes one generation. JobID is empty for web requests.
type Request struct {
	Prompt string
	JobID  string
}

// Result carries the persisted video and the chain outcome that produced it.
type Result struct {
	Video   domain.Video
	Outcome video.Outcome
}

type Service struct {
	generator VideoGenerator
	videos    domain.VideoRepository
	logger    zerolog.Logger
}

func NewService(generator VideoGenerator, videos domain.VideoRepository, logger zerolog.Logger) *Service {
	return &Service{generator: generator, videos: videos, logger: logger}
}

// Generate persists exactly one Video per successful chain run, including
// runs served by the static fallback.
func (s *Service) Generate(ctx context.Context, req Request) (*Result, error) {
	prompt := strings.TrimSpace(req.Prompt)
	if prompt == "" {
		return nil, fmt.Errorf("%w: prompt is required", domain.ErrValidation)
	}
	outcome, err := s.generator.Generate(ctx, prompt)
	if err != nil {
		return nil, err
	}
	v := domain.Video{
		JobID:    req.JobID,
		Prompt:   prompt,
		VideoURL: outcome.URL,
		Provider: outcome.Provider,
	}
	if err := s.videos.Create(ctx, &v); err != nil {
		return nil, fmt.Errorf("persist video: %w", err)
	}
	s.logger.Info().
		Int64("video_id", v.ID).
		Str("job_id", req.JobID).
		Str("provider", outcome.Provider).
		Bool("fallback", outcome.Fallback).
		Msg("video recorded")
	return &Result{Video: v, Outcome: *outcome}, nil
}

// List returns all recorded videos.
func (s *Service) List(ctx context.Context) ([]domain.Video, error) {
	return s.videos.List(ctx)
}
