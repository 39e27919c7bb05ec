package video

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/Shubhraj-Shubh/MakeVideo-AI-Pro/internal/domain"
)

type miniMaxServer struct {
	taskID      string
	statuses    []string
	polls       atomic.Int32
	retrieveHit atomic.Int32
}

func (s *miniMaxServer) handler(t *testing.T) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/v1/video_generation", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("submit method = %s", r.Method)
		}
		if r.Header.Get("Authorization") != "Bearer mm-key" {
			t.Errorf("authorization = %q", r.Header.Get("Authorization"))
		}
		var req miniMaxSubmitRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		if req.Prompt != "a dragon" {
			t.Errorf("prompt = %q", req.Prompt)
		}
		_, _ = io.WriteString(w, `{"task_id":"`+s.taskID+`","base_resp":{"status_code":0,"status_msg":"success"}}`)
	})
	mux.HandleFunc("/v1/query/video_generation", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("task_id") != s.taskID {
			t.Errorf("task_id = %q", r.URL.Query().Get("task_id"))
		}
		n := int(s.polls.Add(1)) - 1
		status := s.statuses[len(s.statuses)-1]
		if n < len(s.statuses) {
			status = s.statuses[n]
		}
		_, _ = io.WriteString(w, `{"task_id":"`+s.taskID+`","status":"`+status+`","file_id":"file-9","base_resp":{"status_code":0}}`)
	})
	mux.HandleFunc("/v1/files/retrieve", func(w http.ResponseWriter, r *http.Request) {
		s.retrieveHit.Add(1)
		if r.URL.Query().Get("file_id") != "file-9" {
			t.Errorf("file_id = %q", r.URL.Query().Get("file_id"))
		}
		_, _ = io.WriteString(w, `{"file":{"file_id":9,"download_url":"https://cdn.minimax.io/v.mp4"},"base_resp":{"status_code":0}}`)
	})
	return mux
}

func newTestMiniMax(t *testing.T, srv *httptest.Server, attempts int) *MiniMax {
	t.Helper()
	m, err := NewMiniMax(MiniMaxOptions{
		APIKey:       "mm-key",
		BaseURL:      srv.URL,
		PollInterval: time.Millisecond,
		PollAttempts: attempts,
		HTTPClient:   srv.Client(),
		Logger:       zerolog.New(io.Discard),
	})
	if err != nil {
		t.Fatalf("NewMiniMax: %v", err)
	}
	return m
}

func TestMiniMaxPollsUntilSuccess(t *testing.T) {
	state := &miniMaxServer{taskID: "task-1", statuses: []string{"Preparing", "Queueing", "Processing", "Success"}}
	srv := httptest.NewServer(state.handler(t))
	defer srv.Close()

	url, err := newTestMiniMax(t, srv, 30).Generate(context.Background(), "a dragon")
	if err != nil {
		t.Fatalf("Generate returned error: %v", err)
	}
	if url != "https://cdn.minimax.io/v.mp4" {
		t.Fatalf("url = %q", url)
	}
	if got := state.polls.Load(); got != 4 {
		t.Fatalf("polls = %d, want 4", got)
	}
	if state.retrieveHit.Load() != 1 {
		t.Fatal("expected one file lookup")
	}
}

func TestMiniMaxTaskFailure(t *testing.T) {
	state := &miniMaxServer{taskID: "task-1", statuses: []string{"Processing", "Fail"}}
	srv := httptest.NewServer(state.handler(t))
	defer srv.Close()

	_, err := newTestMiniMax(t, srv, 30).Generate(context.Background(), "a dragon")
	if !errors.Is(err, domain.ErrProviderFailure) {
		t.Fatalf("err = %v, want ErrProviderFailure", err)
	}
	if state.retrieveHit.Load() != 0 {
		t.Fatal("failed task must not be resolved")
	}
}

func TestMiniMaxPollBudget(t *testing.T) {
	state := &miniMaxServer{taskID: "task-1", statuses: []string{"Processing"}}
	srv := httptest.NewServer(state.handler(t))
	defer srv.Close()

	_, err := newTestMiniMax(t, srv, 3).Generate(context.Background(), "a dragon")
	if !errors.Is(err, domain.ErrProviderFailure) {
		t.Fatalf("err = %v, want ErrProviderFailure", err)
	}
	if got := state.polls.Load(); got != 3 {
		t.Fatalf("polls = %d, want 3", got)
	}
}

func TestMiniMaxFailsFastWithoutTaskID(t *testing.T) {
	var polled atomic.Bool
	mux := http.NewServeMux()
	mux.HandleFunc("/v1/video_generation", func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"task_id":"","base_resp":{"status_code":0}}`)
	})
	mux.HandleFunc("/v1/query/video_generation", func(w http.ResponseWriter, r *http.Request) {
		polled.Store(true)
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	if _, err := newTestMiniMax(t, srv, 30).Generate(context.Background(), "a dragon"); !errors.Is(err, domain.ErrProviderFailure) {
		t.Fatalf("err = %v, want ErrProviderFailure", err)
	}
	if polled.Load() {
		t.Fatal("should not poll without a task id")
	}
}

func TestMiniMaxRespectsCancellation(t *testing.T) {
	state := &miniMaxServer{taskID: "task-1", statuses: []string{"Processing"}}
	srv := httptest.NewServer(state.handler(t))
	defer srv.Close()

	m, err := NewMiniMax(MiniMaxOptions{
		APIKey:       "mm-key",
		BaseURL:      srv.URL,
		PollInterval: time.Hour,
		HTTPClient:   srv.Client(),
		Logger:       zerolog.New(io.Discard),
	})
	if err != nil {
		t.Fatalf("NewMiniMax: %v", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	if _, err := m.Generate(ctx, "a dragon"); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("err = %v, want DeadlineExceeded", err)
	}
}

func TestNewMiniMaxRequiresKey(t *testing.T) {
	if _, err := NewMiniMax(MiniMaxOptions{}); err == nil {
		t.Fatal("expected error without api key")
	}
}
