package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/Shubhraj-Shubh/MakeVideo-AI-Pro/internal/domain"
	"github.com/Shubhraj-Shubh/MakeVideo-AI-Pro/internal/generation"
	"github.com/Shubhraj-Shubh/MakeVideo-AI-Pro/internal/providers/video"
)

type fakeBot struct {
	from, body string
	calls      int
	err        error
}

func (f *fakeBot) HandleMessage(ctx context.Context, handle, body string) error {
	f.calls++
	f.from, f.body = handle, body
	return f.err
}

type fakeVideos struct {
	prompt string
	result *generation.Result
	err    error
	videos []domain.Video
}

func (f *fakeVideos) Generate(ctx context.Context, req generation.Request) (*generation.Result, error) {
	f.prompt = req.Prompt
	return f.result, f.err
}

func (f *fakeVideos) List(ctx context.Context) ([]domain.Video, error) {
	return f.videos, f.err
}

func newTestApp(bot *fakeBot, videos *fakeVideos) *App {
	return NewApp(bot, videos, zerolog.New(io.Discard))
}

func TestWhatsAppWebhookAcknowledges(t *testing.T) {
	for _, botErr := range []error{nil, fmt.Errorf("%w: bad json", domain.ErrClassification), errors.New("db down")} {
		bot := &fakeBot{err: botErr}
		app := newTestApp(bot, &fakeVideos{})

		form := url.Values{"Body": {"make a dragon flying over mountains"}, "From": {"whatsapp:+15551234567"}}
		req := httptest.NewRequest(http.MethodPost, "/api/whatsapp", strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		rr := httptest.NewRecorder()
		app.WhatsAppWebhook(rr, req)

		if rr.Code != http.StatusOK {
			t.Fatalf("status = %d", rr.Code)
		}
		if ct := rr.Header().Get("Content-Type"); ct != "text/xml" {
			t.Fatalf("content type = %q", ct)
		}
		if rr.Body.String() != "<Response></Response>" {
			t.Fatalf("body = %q", rr.Body.String())
		}
		if bot.from != "whatsapp:+15551234567" || bot.body != "make a dragon flying over mountains" {
			t.Fatalf("bot saw %q / %q", bot.from, bot.body)
		}
	}
}

func TestWhatsAppWebhookWithoutSender(t *testing.T) {
	bot := &fakeBot{}
	app := newTestApp(bot, &fakeVideos{})
	req := httptest.NewRequest(http.MethodPost, "/api/whatsapp", strings.NewReader("Body=hi"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rr := httptest.NewRecorder()
	app.WhatsAppWebhook(rr, req)
	if rr.Code != http.StatusOK || bot.calls != 0 {
		t.Fatalf("status = %d, calls = %d", rr.Code, bot.calls)
	}
}

func TestGenerateVideo(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		videos   *fakeVideos
		wantCode int
		wantBody string
	}{
		{
			name: "success",
			body: `{"formPrompt":"  a cat surfing  "}`,
			videos: &fakeVideos{result: &generation.Result{
				Outcome: video.Outcome{URL: "https://cdn/cat.mp4", Provider: "replicate", Message: video.MessageGenerated},
			}},
			wantCode: http.StatusOK,
			wantBody: `"` + video.MessageGenerated + `"`,
		},
		{
			name: "fallback",
			body: `{"formPrompt":"a cat"}`,
			videos: &fakeVideos{result: &generation.Result{
				Outcome: video.Outcome{URL: "https://static/mov.mp4", Provider: video.StaticProviderName, Fallback: true, Message: video.MessageFallback},
			}},
			wantCode: http.StatusOK,
			wantBody: `"` + video.MessageFallback + `"`,
		},
		{name: "empty prompt", body: `{"formPrompt":"   "}`, videos: &fakeVideos{}, wantCode: http.StatusBadRequest, wantBody: `{"error":"formPrompt is required"}`},
		{name: "bad json", body: `{`, videos: &fakeVideos{}, wantCode: http.StatusBadRequest, wantBody: `{"error":"invalid payload"}`},
		{name: "chain exhausted", body: `{"formPrompt":"a cat"}`, videos: &fakeVideos{err: domain.ErrGenerationExhausted}, wantCode: http.StatusInternalServerError, wantBody: `{"error":"failed to generate video"}`},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			app := newTestApp(&fakeBot{}, tc.videos)
			rr := httptest.NewRecorder()
			app.GenerateVideo(rr, httptest.NewRequest(http.MethodPost, "/api/generate-video", strings.NewReader(tc.body)))
			if rr.Code != tc.wantCode {
				t.Fatalf("status = %d, want %d", rr.Code, tc.wantCode)
			}
			if got := strings.TrimSpace(rr.Body.String()); got != tc.wantBody {
				t.Fatalf("body = %s, want %s", got, tc.wantBody)
			}
		})
	}
}

func TestGenerateVideoTrimsPrompt(t *testing.T) {
	videos := &fakeVideos{result: &generation.Result{Outcome: video.Outcome{Message: video.MessageGenerated}}}
	app := newTestApp(&fakeBot{}, videos)
	rr := httptest.NewRecorder()
	app.GenerateVideo(rr, httptest.NewRequest(http.MethodPost, "/api/generate-video", strings.NewReader(`{"formPrompt":"  a cat surfing  "}`)))
	if videos.prompt != "a cat surfing" {
		t.Fatalf("prompt = %q", videos.prompt)
	}
}

// slowVideos finishes after delay unless its context ends first.
type slowVideos struct {
	delay time.Duration
}

func (s slowVideos) Generate(ctx context.Context, req generation.Request) (*generation.Result, error) {
	select {
	case <-time.After(s.delay):
		return &generation.Result{Outcome: video.Outcome{URL: "https://cdn/cat.mp4", Provider: "minimax", Message: video.MessageGenerated}}, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (slowVideos) List(ctx context.Context) ([]domain.Video, error) { return nil, nil }

func postGenerate(t *testing.T, app *App, writeTimeout time.Duration) (int, string) {
	t.Helper()
	srv := httptest.NewUnstartedServer(http.HandlerFunc(app.GenerateVideo))
	srv.Config.WriteTimeout = writeTimeout
	srv.Start()
	defer srv.Close()

	resp, err := srv.Client().Post(srv.URL+"/api/generate-video", "application/json", strings.NewReader(`{"formPrompt":"a cat"}`))
	if err != nil {
		t.Fatalf("POST: %v", err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	return resp.StatusCode, strings.TrimSpace(string(body))
}

func TestGenerateVideoOutlivesServerWriteTimeout(t *testing.T) {
	app := NewApp(&fakeBot{}, slowVideos{delay: 600 * time.Millisecond}, zerolog.New(io.Discard))
	app.GenerateTimeout = 5 * time.Second

	code, body := postGenerate(t, app, 200*time.Millisecond)
	if code != http.StatusOK || body != `"`+video.MessageGenerated+`"` {
		t.Fatalf("response = %d %s", code, body)
	}
}

func TestGenerateVideoTimeoutAnswersError(t *testing.T) {
	app := NewApp(&fakeBot{}, slowVideos{delay: time.Minute}, zerolog.New(io.Discard))
	app.GenerateTimeout = 300 * time.Millisecond

	start := time.Now()
	code, body := postGenerate(t, app, 100*time.Millisecond)
	if code != http.StatusGatewayTimeout || body != `{"error":"video generation timed out"}` {
		t.Fatalf("response = %d %s", code, body)
	}
	if took := time.Since(start); took > 5*time.Second {
		t.Fatalf("request took %s", took)
	}
}

func TestListVideos(t *testing.T) {
	app := newTestApp(&fakeBot{}, &fakeVideos{videos: []domain.Video{
		{ID: 2, JobID: "job-2", Prompt: "a dragon", VideoURL: "https://cdn/dragon.mp4", Provider: "minimax"},
		{ID: 1, Prompt: "a cat", VideoURL: "https://cdn/cat.mp4"},
	}})
	rr := httptest.NewRecorder()
	app.ListVideos(rr, httptest.NewRequest(http.MethodGet, "/api/get-videos", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}
	var got []map[string]any
	if err := json.NewDecoder(rr.Body).Decode(&got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(got) != 2 || got[0]["videoUrl"] != "https://cdn/dragon.mp4" || got[0]["prompt"] != "a dragon" || got[0]["id"] != float64(2) {
		t.Fatalf("videos = %+v", got)
	}
	if _, ok := got[0]["provider"]; ok {
		t.Fatal("internal fields exposed")
	}
}

func TestListVideosEmptyIsArray(t *testing.T) {
	app := newTestApp(&fakeBot{}, &fakeVideos{})
	rr := httptest.NewRecorder()
	app.ListVideos(rr, httptest.NewRequest(http.MethodGet, "/api/get-videos", nil))
	if got := strings.TrimSpace(rr.Body.String()); got != "[]" {
		t.Fatalf("body = %s", got)
	}
}

func TestHealth(t *testing.T) {
	app := newTestApp(&fakeBot{}, &fakeVideos{})
	rr := httptest.NewRecorder()
	app.Health(rr, httptest.NewRequest(http.MethodGet, "/v1/healthz", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}

	app.Ping = func(context.Context) error { return errors.New("connection refused") }
	rr = httptest.NewRecorder()
	app.Health(rr, httptest.NewRequest(http.MethodGet, "/v1/healthz", nil))
	if rr.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d", rr.Code)
	}
}
