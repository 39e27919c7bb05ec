// Package video drives the third-party text-to-video providers and the
// ordered fallback chain across them.
package video

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/rs/zerolog"

	"github.com/Shubhraj-Shubh/MakeVideo-AI-Pro/internal/domain"
)

const (
	MessageGenerated = "Video Created, Check in Explore Videos Section"
	MessageFallback  = "All video providers are unavailable right now, returned a fallback video"
)

// Generator produces a playable video URL for a prompt.
type Generator interface {
	Name() string
	Generate(ctx context.Context, prompt string) (string, error)
}

// Outcome is the normalized result of a chain run.
type Outcome struct {
	URL      string
	Provider string
	Fallback bool
	Message  string
}

// Chain tries each generator in order and falls back to a static URL when
// every generator fails.
type Chain struct {
	generators  []Generator
	fallbackURL string
	logger      zerolog.Logger
}

// NewChain drops nil generators; an empty fallbackURL disables the static
// fallback.
func NewChain(logger zerolog.Logger, fallbackURL string, generators ...Generator) *Chain {
	var usable []Generator
	for _, g := range generators {
		if g != nil {
			usable = append(usable, g)
		}
	}
	return &Chain{generators: usable, fallbackURL: strings.TrimSpace(fallbackURL), logger: logger}
}

// Providers lists the configured generator names in order.
func (c *Chain) Providers() []string {
	names := make([]string, 0, len(c.generators))
	for _, g := range c.generators {
		names = append(names, g.Name())
	}
	return names
}

// Generate never surfaces provider errors. It returns the context error when
// ctx ends mid-chain and domain.ErrGenerationExhausted when nothing, not even
// the static fallback, can serve the prompt.
func (c *Chain) Generate(ctx context.Context, prompt string) (*Outcome, error) {
	for _, g := range c.generators {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		url, err := g.Generate(ctx, prompt)
		if err == nil && strings.TrimSpace(url) != "" {
			c.logger.Info().Str("provider", g.Name()).Msg("video generated")
			return &Outcome{URL: url, Provider: g.Name(), Message: MessageGenerated}, nil
		}
		if err == nil {
			err = fmt.Errorf("%w: empty url", domain.ErrProviderFailure)
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		c.logger.Warn().Err(err).Str("provider", g.Name()).Msg("video provider failed, trying next")
	}
	if c.fallbackURL == "" {
		return nil, domain.ErrGenerationExhausted
	}
	c.logger.Warn().Str("provider", StaticProviderName).Msg("all video providers failed, using static fallback")
	return &Outcome{URL: c.fallbackURL, Provider: StaticProviderName, Fallback: true, Message: MessageFallback}, nil
}

// StaticProviderName labels outcomes served from the static fallback URL.
const StaticProviderName = "static"

func providerError(provider string, err error) error {
	return fmt.Errorf("%w: %s: %v", domain.ErrProviderFailure, provider, err)
}

func providerErrorf(provider, format string, args ...any) error {
	return providerError(provider, fmt.Errorf(format, args...))
}

func readErrorBody(resp *http.Response) string {
	data, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
	return strings.TrimSpace(string(data))
}

var errNoKey = errors.New("api key is required")
