package prompt

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const (
	openAIProviderName = "openai"
	defaultOpenAIModel = "gpt-4o-mini"
	defaultOpenAIBase  = "https://api.openai.com/v1"
	openAITimeout      = 15 * time.Second
	openAITemperature  = 0.3
	maxOpenAIResponse  = 1 << 20
)

// OpenAIOptions configures the chat completions client.
type OpenAIOptions struct {
	APIKey       string
	Model        string
	BaseURL      string
	Organization string
	// System, when set, is sent as a system turn ahead of every prompt.
	System     string
	MaxTokens  int
	HTTPClient *http.Client
}

// APIError is a non-2xx answer from the completions endpoint.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("openai: status %d: %s", e.Status, e.Message)
}

// OpenAICompleter calls the chat completions endpoint.
type OpenAICompleter struct {
	apiKey       string
	model        string
	endpoint     string
	organization string
	system       string
	maxTokens    int
	client       *http.Client
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

func NewOpenAICompleter(opts OpenAIOptions) (*OpenAICompleter, error) {
	key := strings.TrimSpace(opts.APIKey)
	if key == "" {
		return nil, errors.New("openai api key is required")
	}
	base := strings.TrimRight(strings.TrimSpace(opts.BaseURL), "/")
	if base == "" {
		base = defaultOpenAIBase
	}
	model := strings.ToLower(strings.TrimSpace(opts.Model))
	if model == "" {
		model = defaultOpenAIModel
	}
	client := opts.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: openAITimeout}
	}
	return &OpenAICompleter{
		apiKey:       key,
		model:        model,
		endpoint:     base + "/chat/completions",
		organization: strings.TrimSpace(opts.Organization),
		system:       strings.TrimSpace(opts.System),
		maxTokens:    opts.MaxTokens,
		client:       client,
	}, nil
}

func (o *OpenAICompleter) Name() string {
	return openAIProviderName
}

func (o *OpenAICompleter) Model() string {
	return o.model
}

// Complete sends prompt as the user turn and returns the first non-empty choice.
func (o *OpenAICompleter) Complete(ctx context.Context, prompt string) (string, error) {
	messages := make([]chatMessage, 0, 2)
	if o.system != "" {
		messages = append(messages, chatMessage{Role: "system", Content: o.system})
	}
	messages = append(messages, chatMessage{Role: "user", Content: prompt})

	body, err := json.Marshal(chatRequest{
		Model:       o.model,
		Messages:    messages,
		Temperature: openAITemperature,
		MaxTokens:   o.maxTokens,
	})
	if err != nil {
		return "", fmt.Errorf("openai: encode request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, o.endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("openai: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+o.apiKey)
	if o.organization != "" {
		req.Header.Set("OpenAI-Organization", o.organization)
	}

	resp, err := o.client.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		return "", fmt.Errorf("openai: request: %w", err)
	}
	defer resp.Body.Close()

	var out chatResponse
	decodeErr := json.NewDecoder(io.LimitReader(resp.Body, maxOpenAIResponse)).Decode(&out)
	if resp.StatusCode/100 != 2 {
		msg := http.StatusText(resp.StatusCode)
		if decodeErr == nil && out.Error != nil && out.Error.Message != "" {
			msg = out.Error.Message
		}
		return "", &APIError{Status: resp.StatusCode, Message: msg}
	}
	if decodeErr != nil {
		return "", fmt.Errorf("openai: decode response: %w", decodeErr)
	}
	for _, choice := range out.Choices {
		if text := strings.TrimSpace(choice.Message.Content); text != "" {
			return text, nil
		}
	}
	return "", errors.New("openai: no content in response")
}

var _ NamedCompleter = (*OpenAICompleter)(nil)
