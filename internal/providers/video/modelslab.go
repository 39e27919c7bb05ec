package video

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"
)

const modelsLabProviderName = "modelslab"

// ModelsLabOptions configures the ModelsLab text-to-video client.
type ModelsLabOptions struct {
	APIKey     string
	BaseURL    string
	ModelID    string
	HTTPClient *http.Client
}

// ModelsLab calls the synchronous text2video endpoint. A queued render is
// accepted through its future link.
type ModelsLab struct {
	apiKey  string
	baseURL string
	modelID string
	client  *http.Client
}

type modelsLabRequest struct {
	Key        string `json:"key"`
	ModelID    string `json:"model_id,omitempty"`
	Prompt     string `json:"prompt"`
	Width      int    `json:"width"`
	Height     int    `json:"height"`
	NumFrames  int    `json:"num_frames"`
	OutputType string `json:"output_type"`
}

type modelsLabResponse struct {
	Status      string   `json:"status"`
	Output      []string `json:"output"`
	FutureLinks []string `json:"future_links"`
	Message     string   `json:"message"`
	ETA         float64  `json:"eta"`
}

func NewModelsLab(opts ModelsLabOptions) (*ModelsLab, error) {
	if strings.TrimSpace(opts.APIKey) == "" {
		return nil, providerError(modelsLabProviderName, errNoKey)
	}
	baseURL := strings.TrimRight(opts.BaseURL, "/")
	if baseURL == "" {
		baseURL = "https://modelslab.com/api/v6"
	}
	client := opts.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: 90 * time.Second}
	}
	return &ModelsLab{
		apiKey:  strings.TrimSpace(opts.APIKey),
		baseURL: baseURL,
		modelID: strings.TrimSpace(opts.ModelID),
		client:  client,
	}, nil
}

func (m *ModelsLab) Name() string {
	return modelsLabProviderName
}

func (m *ModelsLab) Generate(ctx context.Context, prompt string) (string, error) {
	payload := modelsLabRequest{
		Key:        m.apiKey,
		ModelID:    m.modelID,
		Prompt:     prompt,
		Width:      512,
		Height:     512,
		NumFrames:  25,
		OutputType: "mp4",
	}
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(payload); err != nil {
		return "", providerError(modelsLabProviderName, err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.baseURL+"/video/text2video", &buf)
	if err != nil {
		return "", providerError(modelsLabProviderName, err)
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := m.client.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		return "", providerError(modelsLabProviderName, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	if resp.StatusCode >= http.StatusBadRequest {
		return "", providerErrorf(modelsLabProviderName, "status %d: %s", resp.StatusCode, readErrorBody(resp))
	}
	var out modelsLabResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", providerError(modelsLabProviderName, err)
	}
	switch strings.ToLower(out.Status) {
	case "success":
		if url := firstOutputURL(out.Output); url != "" {
			return url, nil
		}
		return "", providerErrorf(modelsLabProviderName, "success without output")
	case "processing":
		if url := firstOutputURL(out.FutureLinks); url != "" {
			return url, nil
		}
		return "", providerErrorf(modelsLabProviderName, "processing without future link")
	case "error", "failed":
		return "", providerErrorf(modelsLabProviderName, "render failed: %s", out.Message)
	}
	return "", providerErrorf(modelsLabProviderName, "unexpected status %q", out.Status)
}

var _ Generator = (*ModelsLab)(nil)
