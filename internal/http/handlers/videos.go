package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/Shubhraj-Shubh/MakeVideo-AI-Pro/internal/domain"
	"github.com/Shubhraj-Shubh/MakeVideo-AI-Pro/internal/generation"
)

// writeGrace is the time left to encode a response once generation ends.
const writeGrace = 5 * time.Second

type videoGenerateRequest struct {
	FormPrompt string `json:"formPrompt"`
}

type videoResponse struct {
	ID       int64  `json:"id"`
	Prompt   string `json:"prompt"`
	VideoURL string `json:"videoUrl"`
}

// GenerateVideo runs the provider chain synchronously, within GenerateTimeout,
// and answers with the outcome message as a JSON string.
func (a *App) GenerateVideo(w http.ResponseWriter, r *http.Request) {
	var req videoGenerateRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, 64<<10)).Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, "invalid payload")
		return
	}
	prompt := strings.TrimSpace(req.FormPrompt)
	if prompt == "" {
		a.error(w, http.StatusBadRequest, "formPrompt is required")
		return
	}
	ctx := r.Context()
	if a.GenerateTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.GenerateTimeout)
		defer cancel()
		deadline := time.Now().Add(a.GenerateTimeout + writeGrace)
		if err := http.NewResponseController(w).SetWriteDeadline(deadline); err != nil {
			a.log(r).Debug().Err(err).Msg("videos: write deadline not extended")
		}
	}
	res, err := a.Videos.Generate(ctx, generation.Request{Prompt: prompt})
	if err != nil {
		if errors.Is(err, domain.ErrValidation) {
			a.error(w, http.StatusBadRequest, err.Error())
			return
		}
		if errors.Is(err, context.DeadlineExceeded) && r.Context().Err() == nil {
			a.log(r).Warn().Dur("timeout", a.GenerateTimeout).Msg("videos: generation timed out")
			a.error(w, http.StatusGatewayTimeout, "video generation timed out")
			return
		}
		a.log(r).Error().Err(err).Msg("videos: generation failed")
		a.error(w, http.StatusInternalServerError, "failed to generate video")
		return
	}
	a.json(w, http.StatusOK, res.Outcome.Message)
}

func (a *App) ListVideos(w http.ResponseWriter, r *http.Request) {
	videos, err := a.Videos.List(r.Context())
	if err != nil {
		a.log(r).Error().Err(err).Msg("videos: list failed")
		a.error(w, http.StatusInternalServerError, "failed to load videos")
		return
	}
	items := make([]videoResponse, 0, len(videos))
	for _, v := range videos {
		items = append(items, videoResponse{ID: v.ID, Prompt: v.Prompt, VideoURL: v.VideoURL})
	}
	a.json(w, http.StatusOK, items)
}
