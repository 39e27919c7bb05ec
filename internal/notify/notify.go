// Package notify delivers outbound chat messages.
package notify

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	twilio "github.com/twilio/twilio-go"
	openapi "github.com/twilio/twilio-go/rest/api/v2010"

	"github.com/Shubhraj-Shubh/MakeVideo-AI-Pro/internal/conversation"
)

// MaxMessageLength is the WhatsApp body limit enforced by Twilio.
const MaxMessageLength = 1600

// Notifier sends a text message, optionally with media, to a chat handle.
type Notifier interface {
	Send(ctx context.Context, to, body string, mediaURLs ...string) error
}

type messageCreator interface {
	CreateMessage(params *openapi.CreateMessageParams) (*openapi.ApiV2010Message, error)
}

// TwilioOptions configures the Twilio WhatsApp sender.
type TwilioOptions struct {
	AccountSID string
	AuthToken  string
	From       string
	Logger     zerolog.Logger
}

// Twilio sends WhatsApp messages through the Twilio Messages API.
type Twilio struct {
	api    messageCreator
	from   string
	logger zerolog.Logger
}

func NewTwilio(opts TwilioOptions) (*Twilio, error) {
	if strings.TrimSpace(opts.AccountSID) == "" || strings.TrimSpace(opts.AuthToken) == "" {
		return nil, errors.New("twilio account sid and auth token are required")
	}
	from := strings.TrimSpace(opts.From)
	if from == "" {
		return nil, errors.New("twilio sender is required")
	}
	client := twilio.NewRestClientWithParams(twilio.ClientParams{
		Username: opts.AccountSID,
		Password: opts.AuthToken,
	})
	return &Twilio{api: client.Api, from: from, logger: opts.Logger}, nil
}

func (t *Twilio) Send(ctx context.Context, to, body string, mediaURLs ...string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	params := &openapi.CreateMessageParams{}
	params.SetTo(to)
	params.SetFrom(t.from)
	params.SetBody(clip(body, MaxMessageLength))
	if media := nonEmpty(mediaURLs); len(media) > 0 {
		params.SetMediaUrl(media)
	}
	msg, err := t.api.CreateMessage(params)
	if err != nil {
		return fmt.Errorf("twilio send to %s: %w", to, err)
	}
	sid := ""
	if msg != nil && msg.Sid != nil {
		sid = *msg.Sid
	}
	t.logger.Info().Str("handle", to).Str("sid", sid).Int("media", len(mediaURLs)).Msg("message sent")
	return nil
}

// LogNotifier only logs outbound messages. It stands in for Twilio when no
// credentials are configured.
type LogNotifier struct {
	logger zerolog.Logger
}

func NewLogNotifier(logger zerolog.Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

func (l *LogNotifier) Send(ctx context.Context, to, body string, mediaURLs ...string) error {
	l.logger.Info().
		Str("handle", to).
		Str("body", clip(body, 200)).
		Strs("media", mediaURLs).
		Msg("message not delivered (log notifier)")
	return nil
}

// Recording appends every outbound text to the recipient's conversation
// history before delegating. Media URLs are not recorded.
type Recording struct {
	next    Notifier
	history conversation.Store
	logger  zerolog.Logger
}

func NewRecording(next Notifier, history conversation.Store, logger zerolog.Logger) *Recording {
	return &Recording{next: next, history: history, logger: logger}
}

func (r *Recording) Send(ctx context.Context, to, body string, mediaURLs ...string) error {
	if err := r.history.Append(ctx, to, conversation.Turn{Role: conversation.RoleAssistant, Message: body}); err != nil {
		r.logger.Warn().Err(err).Str("handle", to).Msg("record outbound message failed")
	}
	return r.next.Send(ctx, to, body, mediaURLs...)
}

func clip(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

func nonEmpty(values []string) []string {
	var out []string
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

var (
	_ Notifier = (*Twilio)(nil)
	_ Notifier = (*LogNotifier)(nil)
	_ Notifier = (*Recording)(nil)
)
