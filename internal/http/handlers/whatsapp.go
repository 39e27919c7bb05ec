package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/Shubhraj-Shubh/MakeVideo-AI-Pro/internal/domain"
)

const emptyTwiML = "<Response></Response>"

// WhatsAppWebhook handles Twilio's inbound message callback. Replies go out
// through the notifier, so the TwiML answer is always empty.
func (a *App) WhatsAppWebhook(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}
	from := strings.TrimSpace(r.PostForm.Get("From"))
	body := r.PostForm.Get("Body")
	log := a.log(r)

	if from == "" {
		log.Warn().Msg("whatsapp: webhook without sender")
	} else if err := a.Bot.HandleMessage(r.Context(), from, body); err != nil {
		event := log.Error()
		if errors.Is(err, domain.ErrClassification) {
			event = log.Warn()
		}
		event.Err(err).Str("from", from).Msg("whatsapp: message not handled")
	}

	ackTwiML(w)
}

// WebhookThrottled acknowledges a rate-limited webhook without handling the
// message, so Twilio does not retry it.
func (a *App) WebhookThrottled(w http.ResponseWriter, r *http.Request) {
	a.log(r).Warn().Str("from", strings.TrimSpace(r.PostFormValue("From"))).Msg("whatsapp: sender throttled, message dropped")
	ackTwiML(w)
}

func ackTwiML(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "text/xml")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(emptyTwiML))
}
