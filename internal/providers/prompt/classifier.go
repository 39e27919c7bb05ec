package prompt

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/Shubhraj-Shubh/MakeVideo-AI-Pro/internal/conversation"
	"github.com/Shubhraj-Shubh/MakeVideo-AI-Pro/internal/domain"
)

// Intent is the classifier's reading of an inbound chat message.
type Intent string

const (
	IntentGenerateVideo        Intent = "generate_video"
	IntentClarifyPrompt        Intent = "clarify_prompt"
	IntentRequestWithoutPrompt Intent = "request_without_prompt"
	IntentGreeting             Intent = "greeting"
	IntentSmallTalk            Intent = "small_talk"
	// IntentUnknown stands in for any value outside the catalogue above.
	IntentUnknown Intent = "unknown"
)

func parseIntent(raw string) Intent {
	switch Intent(strings.ToLower(strings.TrimSpace(raw))) {
	case IntentGenerateVideo:
		return IntentGenerateVideo
	case IntentClarifyPrompt:
		return IntentClarifyPrompt
	case IntentRequestWithoutPrompt:
		return IntentRequestWithoutPrompt
	case IntentGreeting:
		return IntentGreeting
	case IntentSmallTalk:
		return IntentSmallTalk
	}
	return IntentUnknown
}

// Classification is the decoded classifier answer. For IntentGenerateVideo
// and IntentClarifyPrompt, ResponseText carries the enhanced prompt.
type Classification struct {
	Intent       Intent
	ResponseText string
	RawIntent    string
}

type classificationPayload struct {
	Intent       *string `json:"intent"`
	ResponseText *string `json:"response_text"`
}

// FallbackApology is sent when an apology cannot be generated.
const FallbackApology = "Sorry, we couldn't generate your video. Please try again with a slightly different description."

// Classifier maps chat messages to intents with a text completer.
type Classifier struct {
	completer Completer
	logger    zerolog.Logger
}

func NewClassifier(completer Completer, logger zerolog.Logger) *Classifier {
	return &Classifier{completer: completer, logger: logger}
}

// Classify asks the completer for an intent and decodes its JSON answer.
// Any decode failure is reported as domain.ErrClassification.
func (c *Classifier) Classify(ctx context.Context, message string, history []conversation.Turn) (*Classification, error) {
	raw, err := c.completer.Complete(ctx, buildClassificationPrompt(message, history))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrClassification, err)
	}
	result, err := decodeClassification(raw)
	if err != nil {
		c.logger.Warn().Err(err).Int("chars", len(raw)).Msg("classifier: undecodable completion")
		return nil, err
	}
	return result, nil
}

func decodeClassification(raw string) (*Classification, error) {
	fragment := jsonObject(raw)
	if fragment == "" {
		return nil, fmt.Errorf("%w: no json object in completion", domain.ErrClassification)
	}
	var payload classificationPayload
	if err := json.Unmarshal([]byte(fragment), &payload); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrClassification, err)
	}
	if payload.Intent == nil || strings.TrimSpace(*payload.Intent) == "" {
		return nil, fmt.Errorf("%w: missing intent", domain.ErrClassification)
	}
	if payload.ResponseText == nil || strings.TrimSpace(*payload.ResponseText) == "" {
		return nil, fmt.Errorf("%w: missing response_text", domain.ErrClassification)
	}
	return &Classification{
		Intent:       parseIntent(*payload.Intent),
		ResponseText: strings.TrimSpace(*payload.ResponseText),
		RawIntent:    strings.TrimSpace(*payload.Intent),
	}, nil
}

func buildClassificationPrompt(message string, history []conversation.Turn) string {
	quoted, _ := json.Marshal(message)
	sb := &strings.Builder{}
	sb.WriteString("You are an intelligent AI assistant for a WhatsApp bot named 'MakeVideo AI'. Your job is to understand the user's message and decide the correct next action.\n\n")
	sb.WriteString("Analyze the user's message and return a JSON object with two keys: \"intent\" and \"response_text\".\n\n")
	sb.WriteString("Classify the user's \"intent\" into one of these EXACT categories:\n")
	sb.WriteString("- \"generate_video\": The user provides a clear, descriptive prompt for a video.\n")
	sb.WriteString("- \"clarify_prompt\": The user's prompt is too short or vague (e.g., \"a cat\", \"a car\").\n")
	sb.WriteString("- \"request_without_prompt\": The user asks to make a video but gives NO description (e.g., \"make a video\").\n")
	sb.WriteString("- \"greeting\": The user says a simple greeting like \"hi\", \"hello\".\n")
	sb.WriteString("- \"small_talk\": The user is just chatting or asking a general question about you.\n\n")
	sb.WriteString("Based on the intent, create the \"response_text\":\n")
	sb.WriteString("- For \"generate_video\", make it an enhanced, descriptive version of the user's prompt.\n")
	sb.WriteString("- For \"clarify_prompt\", make it an enhanced, descriptive prompt suggestion.\n")
	sb.WriteString("- For all other intents, make it a friendly, conversational reply.\n\n")
	sb.WriteString("Here is the recent conversation context (if any):\n")
	sb.WriteString(conversation.Format(history))
	sb.WriteString("\n\nDo NOT include any text outside of the single JSON object.\n\n")
	sb.WriteString("Here is the user's message: ")
	sb.Write(quoted)
	return sb.String()
}

// Apologize writes a short apology for a failed job. It never fails; on any
// completer error FallbackApology is returned.
func (c *Classifier) Apologize(ctx context.Context, job *domain.Job) string {
	if job == nil {
		return FallbackApology
	}
	sb := &strings.Builder{}
	sb.WriteString("You are MakeVideo AI's customer service representative. A user's video generation has failed.\n\n")
	fmt.Fprintf(sb, "Their prompt was: %q\nJob ID: %s\n\n", job.UserPrompt, job.ID)
	sb.WriteString("Write a short, apologetic message (max 3 sentences) explaining that their video couldn't be generated. ")
	sb.WriteString("Be empathetic but professional. Suggest they try again with a slightly different description. ")
	sb.WriteString("Do NOT mention any technical details or errors.")

	text, err := c.completer.Complete(ctx, sb.String())
	if err != nil || strings.TrimSpace(text) == "" {
		c.logger.Warn().Err(err).Str("job_id", job.ID).Msg("classifier: apology generation failed")
		return FallbackApology
	}
	return strings.TrimSpace(text)
}
