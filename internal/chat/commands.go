package chat

import (
	"context"
	"errors"

	"github.com/Shubhraj-Shubh/MakeVideo-AI-Pro/internal/domain"
)

func (b *Bot) handleCommand(ctx context.Context, handle string, cmd Command) {
	b.logger.Debug().Str("from", handle).Str("command", cmd.Name).Msg("chat: command")
	switch cmd.Name {
	case CmdStatus:
		b.cmdStatus(ctx, handle, cmd.FirstArg())
	case CmdHelp:
		b.reply(ctx, handle, helpMessage(b.supportContact))
	case CmdHistory:
		b.cmdHistory(ctx, handle)
	case CmdCancel:
		b.cmdCancel(ctx, handle, cmd.FirstArg())
	case CmdDeleteHistoryAll:
		b.cmdDeleteAll(ctx, handle)
	case CmdForgetMe:
		b.cmdForgetMe(ctx, handle)
	case CmdDeleteHistoryVideo:
		b.cmdDeleteOne(ctx, handle, cmd.FirstArg())
	case CmdClearChat:
		b.reply(ctx, handle, msgChatCleared)
		b.clearHistory(ctx, handle)
	case CmdPrivacy:
		b.reply(ctx, handle, msgPrivacy)
	default:
		b.reply(ctx, handle, msgUnknownCommand)
	}
}

func (b *Bot) cmdStatus(ctx context.Context, handle, id string) {
	var job *domain.Job
	if id == "" {
		jobs, err := b.jobs.ListByUser(ctx, handle, 1)
		if err != nil {
			b.logger.Error().Err(err).Str("from", handle).Msg("chat: latest job")
			b.reply(ctx, handle, msgStatusError)
			return
		}
		if len(jobs) == 0 {
			b.reply(ctx, handle, msgNoJobs)
			return
		}
		job = &jobs[0]
	} else if job = b.ownedJob(ctx, handle, id, "view", msgStatusError); job == nil {
		return
	}

	now := b.now()
	switch {
	case job.Status == domain.JobStatusFailed:
		b.reply(ctx, handle, failedStatusMessage(job, b.classifier.Apologize(ctx, job)))
	case job.Status == domain.JobStatusCompleted && job.VideoURL != "":
		b.reply(ctx, handle, statusMessage(job, now, b.loc))
		b.reply(ctx, handle, msgHereIsVideo, job.VideoURL)
	default:
		b.reply(ctx, handle, statusMessage(job, now, b.loc))
	}
}

func (b *Bot) cmdHistory(ctx context.Context, handle string) {
	jobs, err := b.jobs.ListByUser(ctx, handle, b.historyLimit)
	if err != nil {
		b.logger.Error().Err(err).Str("from", handle).Msg("chat: list history")
		b.reply(ctx, handle, msgHistoryError)
		return
	}
	if len(jobs) == 0 {
		b.reply(ctx, handle, msgNoHistory)
		return
	}
	if len(jobs) > b.historyLimit {
		jobs = jobs[:b.historyLimit]
	}
	b.reply(ctx, handle, formatHistory(jobs, b.now(), b.loc))
}

func (b *Bot) cmdCancel(ctx context.Context, handle, id string) {
	if id == "" {
		b.reply(ctx, handle, msgCancelNeedsID)
		return
	}
	job := b.ownedJob(ctx, handle, id, "cancel", msgCancelError)
	if job == nil {
		return
	}
	if job.Status != domain.JobStatusProcessing {
		b.reply(ctx, handle, cannotCancel(job.Status))
		return
	}
	err := b.jobs.Transition(ctx, id, domain.JobUpdate{Status: domain.JobStatusCancelled})
	switch {
	case err == nil:
		b.logger.Info().Str("job_id", id).Msg("chat: job cancelled")
		b.reply(ctx, handle, jobCancelled(id))
	case errors.Is(err, domain.ErrInvalidTransition):
		// The job finished between the read and the update.
		status := domain.JobStatusCompleted
		if current, gerr := b.jobs.GetByID(ctx, id); gerr == nil {
			status = current.Status
		}
		b.reply(ctx, handle, cannotCancel(status))
	default:
		b.logger.Error().Err(err).Str("job_id", id).Msg("chat: cancel job")
		b.reply(ctx, handle, msgCancelError)
	}
}

func (b *Bot) cmdDeleteAll(ctx context.Context, handle string) {
	n, err := b.jobs.DeleteByUser(ctx, handle)
	if err != nil {
		b.logger.Error().Err(err).Str("from", handle).Msg("chat: delete history")
		b.reply(ctx, handle, msgDeleteError)
		return
	}
	b.logger.Info().Str("from", handle).Int64("jobs", n).Msg("chat: history deleted")
	b.reply(ctx, handle, msgHistoryDeleted)
}

func (b *Bot) cmdForgetMe(ctx context.Context, handle string) {
	n, err := b.jobs.DeleteByUser(ctx, handle)
	if err != nil {
		b.logger.Error().Err(err).Str("from", handle).Msg("chat: forget user")
		b.reply(ctx, handle, msgDeleteError)
		return
	}
	b.logger.Info().Str("from", handle).Int64("jobs", n).Msg("chat: user forgotten")
	b.reply(ctx, handle, msgForgotten)
	// Cleared after the reply so the recorded confirmation goes too.
	b.clearHistory(ctx, handle)
}

func (b *Bot) cmdDeleteOne(ctx context.Context, handle, id string) {
	if id == "" {
		b.reply(ctx, handle, msgDeleteNeedsID)
		return
	}
	if job := b.ownedJob(ctx, handle, id, "delete", msgDeleteError); job == nil {
		return
	}
	if err := b.jobs.Delete(ctx, id); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			b.reply(ctx, handle, jobNotFound(id))
			return
		}
		b.logger.Error().Err(err).Str("job_id", id).Msg("chat: delete job")
		b.reply(ctx, handle, msgDeleteError)
		return
	}
	b.reply(ctx, handle, jobDeleted(id))
}

func (b *Bot) clearHistory(ctx context.Context, handle string) {
	if b.history == nil {
		return
	}
	if err := b.history.Clear(ctx, handle); err != nil {
		b.logger.Error().Err(err).Str("from", handle).Msg("chat: clear conversation")
	}
}
