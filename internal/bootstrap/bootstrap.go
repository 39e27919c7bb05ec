// Package bootstrap builds the provider stack shared by the API and the
// worker from configuration and stored integration tokens.
package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/Shubhraj-Shubh/MakeVideo-AI-Pro/internal/conversation"
	"github.com/Shubhraj-Shubh/MakeVideo-AI-Pro/internal/infra"
	"github.com/Shubhraj-Shubh/MakeVideo-AI-Pro/internal/infra/credentials"
	"github.com/Shubhraj-Shubh/MakeVideo-AI-Pro/internal/notify"
	"github.com/Shubhraj-Shubh/MakeVideo-AI-Pro/internal/providers/genai"
	"github.com/Shubhraj-Shubh/MakeVideo-AI-Pro/internal/providers/prompt"
	"github.com/Shubhraj-Shubh/MakeVideo-AI-Pro/internal/providers/video"
)

// TokenResolver is satisfied by *credentials.Store.
type TokenResolver interface {
	Resolve(ctx context.Context, provider, fallback string) (string, error)
}

// Deps carries what every builder needs.
type Deps struct {
	Config     *infra.Config
	Tokens     TokenResolver
	Logger     zerolog.Logger
	HTTPClient *http.Client
}

func (d Deps) httpClient() *http.Client {
	if d.HTTPClient != nil {
		return d.HTTPClient
	}
	return &http.Client{Timeout: 60 * time.Second}
}

func (d Deps) token(ctx context.Context, provider, fallback string) string {
	if d.Tokens == nil {
		return fallback
	}
	v, err := d.Tokens.Resolve(ctx, provider, fallback)
	if err != nil {
		d.Logger.Warn().Err(err).Str("provider", provider).Msg("bootstrap: token lookup failed")
		return fallback
	}
	return v
}

// Completer chains Gemini and OpenAI, skipping providers without a key.
func Completer(ctx context.Context, d Deps) (*prompt.ChainCompleter, error) {
	cfg := d.Config
	var completers []prompt.NamedCompleter

	if key := d.token(ctx, credentials.ProviderGemini, cfg.GeminiAPIKey); key != "" {
		logger := d.Logger.With().Str("provider", "gemini").Logger()
		client, err := genai.NewClient(ctx, genai.Options{
			APIKey: key,
			Model:  cfg.GeminiModel,
			Logger: &logger,
		})
		if err != nil {
			return nil, err
		}
		completers = append(completers, client)
	}

	if key := d.token(ctx, credentials.ProviderOpenAI, cfg.OpenAIAPIKey); key != "" {
		client, err := prompt.NewOpenAICompleter(prompt.OpenAIOptions{
			APIKey:       key,
			Model:        cfg.OpenAIModel,
			BaseURL:      cfg.OpenAIBaseURL,
			Organization: cfg.OpenAIOrg,
			MaxTokens:    512,
			HTTPClient:   d.httpClient(),
		})
		if err != nil {
			return nil, err
		}
		completers = append(completers, client)
	}

	chain := prompt.NewChainCompleter(func(name string, err error) {
		d.Logger.Warn().Err(err).Str("provider", name).Msg("completion failed, trying next")
	}, completers...)
	if chain.Len() == 0 {
		return nil, errors.New("no text completion provider configured: set GEMINI_API_KEY or OPENAI_API_KEY")
	}
	return chain, nil
}

// VideoChain orders MiniMax, Replicate and ModelsLab ahead of the static
// fallback. Providers without credentials are left out.
func VideoChain(ctx context.Context, d Deps) *video.Chain {
	cfg := d.Config
	var generators []video.Generator

	if key := d.token(ctx, credentials.ProviderMiniMax, cfg.MiniMaxAPIKey); key != "" {
		g, err := video.NewMiniMax(video.MiniMaxOptions{
			APIKey:       key,
			BaseURL:      cfg.MiniMaxBaseURL,
			Model:        cfg.MiniMaxModel,
			PollInterval: cfg.MiniMaxPollInterval,
			PollAttempts: cfg.MiniMaxPollAttempts,
			HTTPClient:   d.httpClient(),
			Logger:       d.Logger,
		})
		d.add(&generators, "minimax", g, err)
	}
	if key := d.token(ctx, credentials.ProviderReplicate, cfg.ReplicateAPIToken); key != "" {
		g, err := video.NewReplicate(video.ReplicateOptions{APIToken: key, Model: cfg.ReplicateModel})
		d.add(&generators, "replicate", g, err)
	}
	if key := d.token(ctx, credentials.ProviderModelsLab, cfg.ModelsLabAPIKey); key != "" {
		g, err := video.NewModelsLab(video.ModelsLabOptions{
			APIKey:     key,
			BaseURL:    cfg.ModelsLabBaseURL,
			HTTPClient: d.httpClient(),
		})
		d.add(&generators, "modelslab", g, err)
	}

	chain := video.NewChain(d.Logger, cfg.StaticFallbackURL, generators...)
	d.Logger.Info().Strs("providers", chain.Providers()).Str("fallback", cfg.StaticFallbackURL).Msg("video chain ready")
	return chain
}

func (d Deps) add(list *[]video.Generator, name string, g video.Generator, err error) {
	if err != nil {
		d.Logger.Warn().Err(err).Str("provider", name).Msg("bootstrap: video provider disabled")
		return
	}
	*list = append(*list, g)
}

// ConversationStore uses Redis when REDIS_URL is set and an in-process store
// otherwise. The returned close func is never nil.
func ConversationStore(ctx context.Context, d Deps) (conversation.Store, func() error, error) {
	cfg := d.Config
	turns := cfg.ConversationWindow * 2
	if cfg.RedisURL == "" {
		d.Logger.Info().Msg("conversation history kept in memory")
		return conversation.NewMemoryStore(turns), func() error { return nil }, nil
	}
	rdb, err := infra.NewRedisClient(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}
	return conversation.NewRedisStore(rdb, turns, cfg.ConversationTTL), rdb.Close, nil
}

// Notifier sends through Twilio when credentials exist and only logs
// otherwise. Every outbound text is recorded into history.
func Notifier(ctx context.Context, d Deps, history conversation.Store) (notify.Notifier, error) {
	cfg := d.Config
	var base notify.Notifier
	authToken := d.token(ctx, credentials.ProviderTwilio, cfg.TwilioAuthToken)
	if cfg.TwilioAccountSID != "" && authToken != "" {
		t, err := notify.NewTwilio(notify.TwilioOptions{
			AccountSID: cfg.TwilioAccountSID,
			AuthToken:  authToken,
			From:       cfg.TwilioWhatsAppFrom,
			Logger:     d.Logger,
		})
		if err != nil {
			return nil, fmt.Errorf("twilio notifier: %w", err)
		}
		base = t
	} else {
		d.Logger.Warn().Msg("twilio credentials missing, outbound messages are only logged")
		base = notify.NewLogNotifier(d.Logger)
	}
	if history == nil {
		return base, nil
	}
	return notify.NewRecording(base, history, d.Logger), nil
}

// Location loads CHAT_TIMEZONE, defaulting to UTC.
func Location(cfg *infra.Config) *time.Location {
	loc, err := time.LoadLocation(cfg.ChatTimezone)
	if err != nil {
		return time.UTC
	}
	return loc
}
