package video

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/rs/zerolog"

	"github.com/Shubhraj-Shubh/MakeVideo-AI-Pro/internal/domain"
)

type fakeGenerator struct {
	name  string
	url   string
	err   error
	calls int
	hook  func()
}

func (f *fakeGenerator) Name() string { return f.name }

func (f *fakeGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	f.calls++
	if f.hook != nil {
		f.hook()
	}
	return f.url, f.err
}

const fallbackURL = "https://www.w3schools.com/html/mov_bbb.mp4"

func TestChainReturnsFirstSuccess(t *testing.T) {
	first := &fakeGenerator{name: "minimax", err: errors.New("timeout")}
	second := &fakeGenerator{name: "replicate", err: errors.New("credits expired")}
	third := &fakeGenerator{name: "modelslab", url: "https://cdn.example.com/u.mp4"}
	chain := NewChain(zerolog.New(io.Discard), fallbackURL, first, second, third)

	out, err := chain.Generate(context.Background(), "a dragon")
	if err != nil {
		t.Fatalf("Generate returned error: %v", err)
	}
	if out.URL != "https://cdn.example.com/u.mp4" || out.Provider != "modelslab" || out.Fallback {
		t.Fatalf("unexpected outcome %+v", out)
	}
	if out.Message != MessageGenerated {
		t.Fatalf("message = %q", out.Message)
	}
	if first.calls != 1 || second.calls != 1 || third.calls != 1 {
		t.Fatalf("calls = %d/%d/%d", first.calls, second.calls, third.calls)
	}
}

func TestChainStopsAtFirstSuccess(t *testing.T) {
	first := &fakeGenerator{name: "minimax", url: "https://cdn.example.com/a.mp4"}
	second := &fakeGenerator{name: "replicate", url: "https://cdn.example.com/b.mp4"}
	out, err := NewChain(zerolog.New(io.Discard), fallbackURL, first, second).Generate(context.Background(), "p")
	if err != nil || out.Provider != "minimax" {
		t.Fatalf("Generate = %+v, %v", out, err)
	}
	if second.calls != 0 {
		t.Fatal("second provider should not be called")
	}
}

func TestChainFallsBackToStaticURL(t *testing.T) {
	chain := NewChain(zerolog.New(io.Discard), fallbackURL,
		&fakeGenerator{name: "minimax", err: errors.New("a")},
		&fakeGenerator{name: "replicate", err: errors.New("b")},
		&fakeGenerator{name: "modelslab", url: "  "},
	)
	out, err := chain.Generate(context.Background(), "p")
	if err != nil {
		t.Fatalf("Generate returned error: %v", err)
	}
	if out.URL != fallbackURL || !out.Fallback || out.Provider != StaticProviderName {
		t.Fatalf("unexpected outcome %+v", out)
	}
	if out.Message != MessageFallback {
		t.Fatalf("message = %q", out.Message)
	}
}

func TestChainExhaustedWithoutFallback(t *testing.T) {
	chain := NewChain(zerolog.New(io.Discard), "", &fakeGenerator{name: "minimax", err: errors.New("a")})
	if _, err := chain.Generate(context.Background(), "p"); !errors.Is(err, domain.ErrGenerationExhausted) {
		t.Fatalf("err = %v, want ErrGenerationExhausted", err)
	}
}

func TestChainStopsOnCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	first := &fakeGenerator{name: "minimax", err: context.Canceled, hook: cancel}
	second := &fakeGenerator{name: "replicate", url: "https://cdn.example.com/b.mp4"}
	out, err := NewChain(zerolog.New(io.Discard), fallbackURL, first, nil, second).Generate(ctx, "p")
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
	if out != nil || second.calls != 0 {
		t.Fatalf("chain continued after cancellation: %+v", out)
	}
}

func TestChainProviders(t *testing.T) {
	chain := NewChain(zerolog.New(io.Discard), fallbackURL, &fakeGenerator{name: "a"}, nil, &fakeGenerator{name: "b"})
	got := chain.Providers()
	if len(got) != 2 || got[0] != "a" || got[1] != "b" {
		t.Fatalf("Providers = %v", got)
	}
}
