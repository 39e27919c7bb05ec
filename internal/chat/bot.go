// Package chat routes inbound WhatsApp messages to commands or to the
// intent classifier, and runs dispatched generation tasks.
package chat

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/Shubhraj-Shubh/MakeVideo-AI-Pro/internal/conversation"
	"github.com/Shubhraj-Shubh/MakeVideo-AI-Pro/internal/dispatch"
	"github.com/Shubhraj-Shubh/MakeVideo-AI-Pro/internal/domain"
	"github.com/Shubhraj-Shubh/MakeVideo-AI-Pro/internal/notify"
	"github.com/Shubhraj-Shubh/MakeVideo-AI-Pro/internal/providers/prompt"
)

// IntentClassifier is satisfied by *prompt.Classifier.
type IntentClassifier interface {
	Classify(ctx context.Context, message string, history []conversation.Turn) (*prompt.Classification, error)
	Apologize(ctx context.Context, job *domain.Job) string
}

// Options wires the bot's collaborators.
type Options struct {
	Jobs       domain.JobRepository
	Classifier IntentClassifier
	Notifier   notify.Notifier
	History    conversation.Store
	Dispatcher dispatch.Dispatcher
	Logger     zerolog.Logger

	// HistoryLimit caps /history entries. Defaults to 10.
	HistoryLimit int
	// Window is the number of exchanges shown to the classifier. Defaults to 3.
	Window         int
	SupportContact string
	Location       *time.Location

	Now   func() time.Time
	NewID func() string
}

// Bot handles one inbound chat message at a time. It is safe for
// concurrent use when its collaborators are.
type Bot struct {
	jobs       domain.JobRepository
	classifier IntentClassifier
	notifier   notify.Notifier
	history    conversation.Store
	dispatcher dispatch.Dispatcher
	logger     zerolog.Logger

	historyLimit   int
	window         int
	supportContact string
	loc            *time.Location
	now            func() time.Time
	newID          func() string
}

func NewBot(opts Options) *Bot {
	b := &Bot{
		jobs:           opts.Jobs,
		classifier:     opts.Classifier,
		notifier:       opts.Notifier,
		history:        opts.History,
		dispatcher:     opts.Dispatcher,
		logger:         opts.Logger,
		historyLimit:   opts.HistoryLimit,
		window:         opts.Window,
		supportContact: strings.TrimSpace(opts.SupportContact),
		loc:            opts.Location,
		now:            opts.Now,
		newID:          opts.NewID,
	}
	if b.historyLimit <= 0 {
		b.historyLimit = 10
	}
	if b.window <= 0 {
		b.window = 3
	}
	if b.loc == nil {
		b.loc = time.UTC
	}
	if b.now == nil {
		b.now = time.Now
	}
	if b.newID == nil {
		b.newID = func() string { return uuid.NewString() }
	}
	return b
}

// HandleMessage processes one inbound message from handle. Classification
// failures are returned without any reply being sent.
func (b *Bot) HandleMessage(ctx context.Context, handle, body string) error {
	handle = strings.TrimSpace(handle)
	if handle == "" {
		return fmt.Errorf("%w: sender is required", domain.ErrValidation)
	}
	body = strings.TrimSpace(body)
	log := b.logger.With().Str("from", handle).Logger()

	if body != "" {
		b.remember(ctx, handle, body)
	}
	if IsCommand(body) {
		b.handleCommand(ctx, handle, ParseCommand(body))
		return nil
	}
	if body == "" {
		b.reply(ctx, handle, msgEmptyMessage)
		return nil
	}

	var recent []conversation.Turn
	if b.history != nil {
		turns, err := b.history.Recent(ctx, handle, b.window*2)
		if err != nil {
			log.Warn().Err(err).Msg("chat: conversation history unavailable")
		} else {
			recent = turns
		}
	}

	result, err := b.classifier.Classify(ctx, body, recent)
	if err != nil {
		return err
	}
	log.Debug().Str("intent", string(result.Intent)).Msg("chat: message classified")

	switch result.Intent {
	case prompt.IntentGenerateVideo:
		return b.startJob(ctx, handle, body, result.ResponseText)
	case prompt.IntentClarifyPrompt:
		b.reply(ctx, handle, clarifyPrompt(result.ResponseText))
	case prompt.IntentGreeting:
		b.reply(ctx, handle, msgGreeting)
	case prompt.IntentRequestWithoutPrompt:
		b.reply(ctx, handle, msgAskForPrompt)
	case prompt.IntentSmallTalk:
		b.reply(ctx, handle, result.ResponseText)
	default:
		log.Info().Str("raw_intent", result.RawIntent).Msg("chat: unrecognised intent")
		b.reply(ctx, handle, msgDidNotUnderstand)
	}
	return nil
}

// startJob records a processing job and hands it to the dispatcher. A job
// that cannot be dispatched is marked failed.
func (b *Bot) startJob(ctx context.Context, handle, userPrompt, enhanced string) error {
	if strings.TrimSpace(enhanced) == "" {
		enhanced = userPrompt
	}
	b.reply(ctx, handle, startingVideo(enhanced))
	job := &domain.Job{
		ID:             b.newID(),
		UserHandle:     handle,
		UserPrompt:     userPrompt,
		EnhancedPrompt: enhanced,
		Status:         domain.JobStatusProcessing,
	}
	if err := b.jobs.Create(ctx, job); err != nil {
		b.reply(ctx, handle, msgRequestError)
		return fmt.Errorf("create job: %w", err)
	}
	log := b.logger.With().Str("job_id", job.ID).Logger()
	log.Info().Str("from", handle).Msg("chat: job created")
	b.reply(ctx, handle, jobConfirmation(job.ID))

	err := b.dispatcher.Dispatch(ctx, dispatch.Task{JobID: job.ID, Handle: handle, Prompt: enhanced})
	if err == nil {
		return nil
	}
	log.Error().Err(err).Msg("chat: dispatch failed")
	if terr := b.jobs.Transition(ctx, job.ID, domain.JobUpdate{Status: domain.JobStatusFailed}); terr != nil {
		log.Error().Err(terr).Msg("chat: mark undispatched job failed")
	}
	b.reply(ctx, handle, msgGenerationFailed)
	return fmt.Errorf("dispatch job: %w", err)
}

func (b *Bot) remember(ctx context.Context, handle, text string) {
	if b.history == nil {
		return
	}
	turn := conversation.Turn{Role: conversation.RoleUser, Message: text, At: b.now()}
	if err := b.history.Append(ctx, handle, turn); err != nil {
		b.logger.Warn().Err(err).Str("from", handle).Msg("chat: append user turn")
	}
}

// reply sends body and logs delivery failures. Sends are never retried.
func (b *Bot) reply(ctx context.Context, to, body string, mediaURLs ...string) {
	if err := b.notifier.Send(ctx, to, body, mediaURLs...); err != nil {
		b.logger.Error().Err(err).Str("to", to).Msg("chat: send reply")
	}
}

// ownedJob loads id for handle. It replies and returns nil when the job is
// missing, unreadable or owned by someone else.
func (b *Bot) ownedJob(ctx context.Context, handle, id, action, failure string) *domain.Job {
	job, err := b.jobs.GetByID(ctx, id)
	switch {
	case errors.Is(err, domain.ErrNotFound):
		b.reply(ctx, handle, jobNotFound(id))
		return nil
	case err != nil:
		b.logger.Error().Err(err).Str("job_id", id).Msg("chat: load job")
		b.reply(ctx, handle, failure)
		return nil
	}
	if !job.OwnedBy(handle) {
		b.logger.Warn().Err(domain.ErrForbidden).Str("job_id", id).Str("from", handle).Str("action", action).Msg("chat: job access denied")
		b.reply(ctx, handle, permissionDenied(action))
		return nil
	}
	return job
}
