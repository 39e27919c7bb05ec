package video

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

const miniMaxProviderName = "minimax"

// MiniMaxOptions configures the MiniMax submit-and-poll client.
type MiniMaxOptions struct {
	APIKey       string
	BaseURL      string
	Model        string
	PollInterval time.Duration
	PollAttempts int
	HTTPClient   *http.Client
	Logger       zerolog.Logger
}

// MiniMax submits a generation task, polls it until it settles and resolves
// the produced file to a download URL.
type MiniMax struct {
	apiKey       string
	baseURL      string
	model        string
	pollInterval time.Duration
	pollAttempts int
	client       *http.Client
	logger       zerolog.Logger
}

type miniMaxBaseResp struct {
	StatusCode int    `json:"status_code"`
	StatusMsg  string `json:"status_msg"`
}

type miniMaxSubmitRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
}

type miniMaxSubmitResponse struct {
	TaskID   string          `json:"task_id"`
	BaseResp miniMaxBaseResp `json:"base_resp"`
}

type miniMaxQueryResponse struct {
	TaskID   string          `json:"task_id"`
	Status   string          `json:"status"`
	FileID   string          `json:"file_id"`
	BaseResp miniMaxBaseResp `json:"base_resp"`
}

type miniMaxFileResponse struct {
	File struct {
		DownloadURL string `json:"download_url"`
	} `json:"file"`
	BaseResp miniMaxBaseResp `json:"base_resp"`
}

func NewMiniMax(opts MiniMaxOptions) (*MiniMax, error) {
	if strings.TrimSpace(opts.APIKey) == "" {
		return nil, providerError(miniMaxProviderName, errNoKey)
	}
	baseURL := strings.TrimRight(opts.BaseURL, "/")
	if baseURL == "" {
		baseURL = "https://api.minimax.io"
	}
	model := strings.TrimSpace(opts.Model)
	if model == "" {
		model = "MiniMax-Hailuo-02"
	}
	interval := opts.PollInterval
	if interval <= 0 {
		interval = 10 * time.Second
	}
	attempts := opts.PollAttempts
	if attempts <= 0 {
		attempts = 30
	}
	client := opts.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	return &MiniMax{
		apiKey:       strings.TrimSpace(opts.APIKey),
		baseURL:      baseURL,
		model:        model,
		pollInterval: interval,
		pollAttempts: attempts,
		client:       client,
		logger:       opts.Logger,
	}, nil
}

func (m *MiniMax) Name() string {
	return miniMaxProviderName
}

func (m *MiniMax) Generate(ctx context.Context, prompt string) (string, error) {
	taskID, err := m.submit(ctx, prompt)
	if err != nil {
		return "", err
	}
	m.logger.Debug().Str("task_id", taskID).Msg("minimax: task submitted")

	fileID, err := m.poll(ctx, taskID)
	if err != nil {
		return "", err
	}
	return m.downloadURL(ctx, fileID)
}

func (m *MiniMax) submit(ctx context.Context, prompt string) (string, error) {
	body, err := json.Marshal(miniMaxSubmitRequest{Model: m.model, Prompt: prompt})
	if err != nil {
		return "", providerError(miniMaxProviderName, err)
	}
	var out miniMaxSubmitResponse
	if err := m.do(ctx, http.MethodPost, "/v1/video_generation", nil, body, &out); err != nil {
		return "", err
	}
	if out.BaseResp.StatusCode != 0 {
		return "", providerErrorf(miniMaxProviderName, "submit rejected: %d %s", out.BaseResp.StatusCode, out.BaseResp.StatusMsg)
	}
	if strings.TrimSpace(out.TaskID) == "" {
		return "", providerErrorf(miniMaxProviderName, "no task id returned")
	}
	return out.TaskID, nil
}

// poll waits one interval before each query, so a run costs at most
// pollAttempts*pollInterval.
func (m *MiniMax) poll(ctx context.Context, taskID string) (string, error) {
	timer := time.NewTimer(m.pollInterval)
	defer timer.Stop()
	for attempt := 1; attempt <= m.pollAttempts; attempt++ {
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-timer.C:
		}

		var out miniMaxQueryResponse
		query := url.Values{"task_id": {taskID}}
		if err := m.do(ctx, http.MethodGet, "/v1/query/video_generation", query, nil, &out); err != nil {
			return "", err
		}
		status := strings.ToLower(strings.TrimSpace(out.Status))
		m.logger.Debug().Str("task_id", taskID).Str("status", status).Int("attempt", attempt).Msg("minimax: poll")
		switch status {
		case "success":
			if strings.TrimSpace(out.FileID) == "" {
				return "", providerErrorf(miniMaxProviderName, "task %s succeeded without file id", taskID)
			}
			return out.FileID, nil
		case "fail", "failed":
			return "", providerErrorf(miniMaxProviderName, "task %s failed: %s", taskID, out.BaseResp.StatusMsg)
		case "preparing", "queueing", "queued", "processing":
		default:
			m.logger.Warn().Str("task_id", taskID).Str("status", out.Status).Msg("minimax: unexpected poll status")
		}
		timer.Reset(m.pollInterval)
	}
	return "", providerErrorf(miniMaxProviderName, "task %s timed out after %d polls", taskID, m.pollAttempts)
}

func (m *MiniMax) downloadURL(ctx context.Context, fileID string) (string, error) {
	var out miniMaxFileResponse
	if err := m.do(ctx, http.MethodGet, "/v1/files/retrieve", url.Values{"file_id": {fileID}}, nil, &out); err != nil {
		return "", err
	}
	if strings.TrimSpace(out.File.DownloadURL) == "" {
		return "", providerErrorf(miniMaxProviderName, "file %s has no download url", fileID)
	}
	return out.File.DownloadURL, nil
}

func (m *MiniMax) do(ctx context.Context, method, path string, query url.Values, body []byte, out any) error {
	endpoint := m.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return providerError(miniMaxProviderName, err)
	}
	req.Header.Set("Authorization", "Bearer "+m.apiKey)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := m.client.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return providerError(miniMaxProviderName, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	if resp.StatusCode >= http.StatusBadRequest {
		return providerErrorf(miniMaxProviderName, "%s %s status %d: %s", method, path, resp.StatusCode, readErrorBody(resp))
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return providerError(miniMaxProviderName, fmt.Errorf("decode %s: %w", path, err))
	}
	return nil
}

var _ Generator = (*MiniMax)(nil)
