// Package genai adapts the Gemini SDK to the plain text completion contract
// used by the classifier.
package genai

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"google.golang.org/genai"
)

const (
	defaultModel   = "gemini-2.0-flash"
	defaultTimeout = 30 * time.Second
)

// Options controls how the Gemini client is configured.
type Options struct {
	APIKey string
	Model  string
	// BaseURL overrides the Gemini endpoint; empty uses the SDK default.
	BaseURL         string
	Temperature     float32
	MaxOutputTokens int32
	HTTPClient      *http.Client
	Logger          *zerolog.Logger
}

// Client wraps a genai.Client bound to a single model.
type Client struct {
	sdk         *genai.Client
	model       string
	temperature float32
	maxTokens   int32
	logger      zerolog.Logger
}

// NewClient constructs a Gemini client. Callers may provide a nil HTTP client;
// one with a sane timeout is created.
func NewClient(ctx context.Context, opts Options) (*Client, error) {
	apiKey := strings.TrimSpace(opts.APIKey)
	if apiKey == "" {
		return nil, errors.New("gemini api key is required")
	}
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultTimeout}
	}
	cfg := &genai.ClientConfig{
		APIKey:     apiKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: httpClient,
	}
	if base := strings.TrimSpace(opts.BaseURL); base != "" {
		cfg.HTTPOptions = genai.HTTPOptions{BaseURL: base}
	}
	sdk, err := genai.NewClient(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}

	model := strings.TrimSpace(opts.Model)
	if model == "" {
		model = defaultModel
	}
	logger := zerolog.New(io.Discard)
	if opts.Logger != nil {
		logger = *opts.Logger
	}
	return &Client{
		sdk:         sdk,
		model:       model,
		temperature: opts.Temperature,
		maxTokens:   opts.MaxOutputTokens,
		logger:      logger,
	}, nil
}

// Model returns the configured Gemini model identifier.
func (c *Client) Model() string {
	return c.model
}

// Name labels the completer in logs.
func (c *Client) Name() string {
	return "gemini"
}

// Complete sends prompt as a single user turn and returns the concatenated
// text of the first candidate.
func (c *Client) Complete(ctx context.Context, prompt string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	cfg := &genai.GenerateContentConfig{}
	if c.temperature > 0 {
		t := c.temperature
		cfg.Temperature = &t
	}
	if c.maxTokens > 0 {
		cfg.MaxOutputTokens = c.maxTokens
	}

	start := time.Now()
	resp, err := c.sdk.Models.GenerateContent(ctx, c.model, genai.Text(prompt), cfg)
	if err != nil {
		c.logger.Warn().Err(err).Str("model", c.model).Msg("genai: generate content failed")
		return "", fmt.Errorf("gemini generate: %w", err)
	}
	text := firstCandidateText(resp)
	if text == "" {
		return "", errors.New("gemini returned no text")
	}
	c.logger.Debug().
		Str("model", c.model).
		Dur("took", time.Since(start)).
		Int("chars", len(text)).
		Msg("genai: completion received")
	return text, nil
}

func firstCandidateText(resp *genai.GenerateContentResponse) string {
	if resp == nil {
		return ""
	}
	for _, candidate := range resp.Candidates {
		if candidate == nil || candidate.Content == nil {
			continue
		}
		var b strings.Builder
		for _, part := range candidate.Content.Parts {
			if part != nil && part.Text != "" {
				b.WriteString(part.Text)
			}
		}
		if text := strings.TrimSpace(b.String()); text != "" {
			return text
		}
	}
	return ""
}
