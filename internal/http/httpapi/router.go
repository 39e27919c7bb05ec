package httpapi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/Shubhraj-Shubh/MakeVideo-AI-Pro/internal/http/handlers"
	"github.com/Shubhraj-Shubh/MakeVideo-AI-Pro/internal/middleware"
)

// Options configures the cross-cutting middleware.
type Options struct {
	Logger          zerolog.Logger
	CORSOrigins     []string
	RateLimitPerMin int

	// ValidateSignature enables X-Twilio-Signature checks on the webhook.
	ValidateSignature bool
	TwilioAuthToken   string
	PublicBaseURL     string
}

func NewRouter(app *handlers.App, opts Options) http.Handler {
	r := chi.NewRouter()
	r.Use(
		chimw.RealIP,
		middleware.RequestID(opts.Logger),
		middleware.Logger(opts.Logger),
		chimw.Recoverer,
	)

	r.Get("/v1/healthz", app.Health)
	r.Get("/v1/openapi.json", app.OpenAPIJSON)
	r.Get("/v1/docs", app.OpenAPIDocs)

	r.Route("/api", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			if opts.ValidateSignature {
				r.Use(middleware.TwilioSignature(opts.TwilioAuthToken, opts.PublicBaseURL, opts.Logger))
			}
			r.Use(middleware.RateLimitWith(opts.RateLimitPerMin, time.Minute, middleware.Sender, http.HandlerFunc(app.WebhookThrottled)))
			r.Post("/whatsapp", app.WhatsAppWebhook)
		})

		r.Group(func(r chi.Router) {
			r.Use(middleware.CORS(opts.CORSOrigins))
			r.Use(middleware.RateLimit(opts.RateLimitPerMin, time.Minute, middleware.ClientIP))
			r.Post("/generate-video", app.GenerateVideo)
			r.Options("/generate-video", func(http.ResponseWriter, *http.Request) {})
			r.Get("/get-videos", app.ListVideos)
			r.Options("/get-videos", func(http.ResponseWriter, *http.Request) {})
		})
	})

	return r
}
