package chat

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/Shubhraj-Shubh/MakeVideo-AI-Pro/internal/dispatch"
	"github.com/Shubhraj-Shubh/MakeVideo-AI-Pro/internal/domain"
	"github.com/Shubhraj-Shubh/MakeVideo-AI-Pro/internal/generation"
	"github.com/Shubhraj-Shubh/MakeVideo-AI-Pro/internal/notify"
)

// Generator is satisfied by *generation.Service.
type Generator interface {
	Generate(ctx context.Context, req generation.Request) (*generation.Result, error)
}

// Runner executes dispatched generation tasks and reports the result to
// the job owner.
type Runner struct {
	jobs      domain.JobRepository
	generator Generator
	notifier  notify.Notifier
	logger    zerolog.Logger
}

func NewRunner(jobs domain.JobRepository, generator Generator, notifier notify.Notifier, logger zerolog.Logger) *Runner {
	return &Runner{jobs: jobs, generator: generator, notifier: notifier, logger: logger}
}

// Run is a dispatch.Handler. Completion only lands while the job is still
// processing; a job cancelled meanwhile keeps its status and the owner is
// not notified. When ctx ends first the job is left processing.
func (r *Runner) Run(ctx context.Context, task dispatch.Task) error {
	log := r.logger.With().Str("job_id", task.JobID).Logger()
	log.Info().Msg("runner: generation started")

	res, err := r.generator.Generate(ctx, generation.Request{Prompt: task.Prompt, JobID: task.JobID})
	if err != nil {
		if ctx.Err() != nil {
			log.Warn().Err(err).Msg("runner: stopped before completion")
			return err
		}
		log.Error().Err(err).Msg("runner: generation failed")
		r.fail(ctx, task, log)
		return fmt.Errorf("generate video: %w", err)
	}

	err = r.jobs.Transition(ctx, task.JobID, domain.JobUpdate{
		Status:   domain.JobStatusCompleted,
		VideoURL: res.Outcome.URL,
		Provider: res.Outcome.Provider,
	})
	switch {
	case errors.Is(err, domain.ErrInvalidTransition), errors.Is(err, domain.ErrNotFound):
		log.Info().Err(err).Msg("runner: job no longer processing, result discarded")
		return nil
	case err != nil:
		log.Error().Err(err).Msg("runner: record completion")
		r.fail(ctx, task, log)
		return fmt.Errorf("complete job: %w", err)
	}

	log.Info().
		Str("provider", res.Outcome.Provider).
		Bool("fallback", res.Outcome.Fallback).
		Msg("runner: job completed")
	r.send(ctx, task.Handle, msgVideoReady, res.Outcome.URL)
	r.send(ctx, task.Handle, allDone(task.JobID))
	return nil
}

// fail marks the job failed and tells the owner, unless the job already
// left processing.
func (r *Runner) fail(ctx context.Context, task dispatch.Task, log zerolog.Logger) {
	err := r.jobs.Transition(ctx, task.JobID, domain.JobUpdate{Status: domain.JobStatusFailed})
	switch {
	case errors.Is(err, domain.ErrInvalidTransition), errors.Is(err, domain.ErrNotFound):
		log.Info().Err(err).Msg("runner: failure not recorded, job no longer processing")
		return
	case err != nil:
		log.Error().Err(err).Msg("runner: mark job failed")
	}
	r.send(ctx, task.Handle, msgGenerationFailed)
}

func (r *Runner) send(ctx context.Context, to, body string, mediaURLs ...string) {
	if err := r.notifier.Send(ctx, to, body, mediaURLs...); err != nil {
		r.logger.Error().Err(err).Str("to", to).Msg("runner: send message")
	}
}
