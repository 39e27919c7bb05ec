package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/Shubhraj-Shubh/MakeVideo-AI-Pro/internal/domain"
	"github.com/Shubhraj-Shubh/MakeVideo-AI-Pro/internal/generation"
)

// MessageHandler is satisfied by *chat.Bot.
type MessageHandler interface {
	HandleMessage(ctx context.Context, handle, body string) error
}

// VideoService is satisfied by *generation.Service.
type VideoService interface {
	Generate(ctx context.Context, req generation.Request) (*generation.Result, error)
	List(ctx context.Context) ([]domain.Video, error)
}

// App holds the collaborators shared by every HTTP handler.
type App struct {
	Bot    MessageHandler
	Videos VideoService
	Logger zerolog.Logger
	// Ping reports backing store health; nil skips the check.
	Ping func(ctx context.Context) error
	// GenerateTimeout bounds a web generation request. The response write
	// deadline is pushed past it so the caller always gets an answer.
	GenerateTimeout time.Duration
}

func NewApp(bot MessageHandler, videos VideoService, logger zerolog.Logger) *App {
	return &App{Bot: bot, Videos: videos, Logger: logger}
}

func (a *App) json(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func (a *App) error(w http.ResponseWriter, code int, msg string) {
	a.json(w, code, map[string]string{"error": msg})
}

// log prefers the request-scoped logger.
func (a *App) log(r *http.Request) *zerolog.Logger {
	if l := zerolog.Ctx(r.Context()); l.GetLevel() != zerolog.Disabled {
		return l
	}
	return &a.Logger
}
