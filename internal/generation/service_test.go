package generation

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/rs/zerolog"

	"github.com/Shubhraj-Shubh/MakeVideo-AI-Pro/internal/domain"
	"github.com/Shubhraj-Shubh/MakeVideo-AI-Pro/internal/providers/video"
)

type stubGenerator struct {
	name string
	url  string
	err  error
}

func (s stubGenerator) Name() string { return s.name }

func (s stubGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	return s.url, s.err
}

type memVideos struct {
	videos []domain.Video
	err    error
}

func (m *memVideos) Create(ctx context.Context, v *domain.Video) error {
	if m.err != nil {
		return m.err
	}
	v.ID = int64(len(m.videos) + 1)
	m.videos = append(m.videos, *v)
	return nil
}

func (m *memVideos) List(ctx context.Context) ([]domain.Video, error) {
	return m.videos, nil
}

const staticURL = "https://www.w3schools.com/html/mov_bbb.mp4"

func newChain(gens ...video.Generator) *video.Chain {
	return video.NewChain(zerolog.New(io.Discard), staticURL, gens...)
}

func TestGeneratePersistsThirdProviderResult(t *testing.T) {
	videos := &memVideos{}
	svc := NewService(newChain(
		stubGenerator{name: "minimax", err: errors.New("poll timeout")},
		stubGenerator{name: "replicate", err: errors.New("payment required")},
		stubGenerator{name: "modelslab", url: "https://cdn.example.com/U.mp4"},
	), videos, zerolog.New(io.Discard))

	res, err := svc.Generate(context.Background(), Request{Prompt: "a dragon", JobID: "job-1"})
	if err != nil {
		t.Fatalf("Generate returned error: %v", err)
	}
	if res.Outcome.URL != "https://cdn.example.com/U.mp4" || res.Outcome.Fallback {
		t.Fatalf("unexpected outcome %+v", res.Outcome)
	}
	if len(videos.videos) != 1 {
		t.Fatalf("persisted %d videos, want 1", len(videos.videos))
	}
	got := videos.videos[0]
	if got.VideoURL != "https://cdn.example.com/U.mp4" || got.Prompt != "a dragon" || got.JobID != "job-1" || got.Provider != "modelslab" {
		t.Fatalf("unexpected video %+v", got)
	}
}

func TestGenerateAllProvidersFailUsesFallback(t *testing.T) {
	videos := &memVideos{}
	svc := NewService(newChain(
		stubGenerator{name: "minimax", err: errors.New("a")},
		stubGenerator{name: "replicate", err: errors.New("b")},
		stubGenerator{name: "modelslab", err: errors.New("c")},
	), videos, zerolog.New(io.Discard))

	res, err := svc.Generate(context.Background(), Request{Prompt: "a cat"})
	if err != nil {
		t.Fatalf("Generate returned error: %v", err)
	}
	if res.Outcome.URL != staticURL || !res.Outcome.Fallback || res.Outcome.Message != video.MessageFallback {
		t.Fatalf("unexpected outcome %+v", res.Outcome)
	}
	if len(videos.videos) != 1 || videos.videos[0].VideoURL != staticURL {
		t.Fatalf("fallback video not persisted: %+v", videos.videos)
	}
}

func TestGenerateRejectsEmptyPrompt(t *testing.T) {
	videos := &memVideos{}
	svc := NewService(newChain(stubGenerator{name: "x", url: "u"}), videos, zerolog.New(io.Discard))
	if _, err := svc.Generate(context.Background(), Request{Prompt: "   "}); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("err = %v, want ErrValidation", err)
	}
	if len(videos.videos) != 0 {
		t.Fatal("nothing should be persisted")
	}
}

func TestGenerateSurfacesPersistenceError(t *testing.T) {
	svc := NewService(newChain(stubGenerator{name: "x", url: "u"}), &memVideos{err: errors.New("db down")}, zerolog.New(io.Discard))
	if _, err := svc.Generate(context.Background(), Request{Prompt: "p"}); err == nil {
		t.Fatal("expected persistence error")
	}
}

func TestGenerateExhaustedPersistsNothing(t *testing.T) {
	videos := &memVideos{}
	chain := video.NewChain(zerolog.New(io.Discard), "", stubGenerator{name: "x", err: errors.New("down")})
	svc := NewService(chain, videos, zerolog.New(io.Discard))
	if _, err := svc.Generate(context.Background(), Request{Prompt: "p"}); !errors.Is(err, domain.ErrGenerationExhausted) {
		t.Fatalf("err = %v, want ErrGenerationExhausted", err)
	}
	if len(videos.videos) != 0 {
		t.Fatal("nothing should be persisted")
	}
}
