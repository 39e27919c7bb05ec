package middleware

import (
	"net/http"
	"strings"

	"github.com/rs/zerolog"
	"github.com/twilio/twilio-go/client"
)

// HeaderTwilioSignature is set by Twilio on every webhook request.
const HeaderTwilioSignature = "X-Twilio-Signature"

// TwilioSignature rejects webhook requests whose X-Twilio-Signature does
// not match the form parameters signed with authToken. publicBaseURL is the
// externally visible scheme and host Twilio posts to.
func TwilioSignature(authToken, publicBaseURL string, logger zerolog.Logger) func(http.Handler) http.Handler {
	validator := client.NewRequestValidator(authToken)
	base := strings.TrimRight(publicBaseURL, "/")
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if err := r.ParseForm(); err != nil {
				http.Error(w, "invalid form", http.StatusBadRequest)
				return
			}
			params := make(map[string]string, len(r.PostForm))
			for k, v := range r.PostForm {
				if len(v) > 0 {
					params[k] = v[0]
				}
			}
			signature := r.Header.Get(HeaderTwilioSignature)
			if signature == "" || !validator.Validate(base+r.URL.RequestURI(), params, signature) {
				logger.Warn().
					Str("path", r.URL.Path).
					Str("request_id", RequestIDFromContext(r.Context())).
					Msg("twilio signature rejected")
				http.Error(w, "invalid signature", http.StatusForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
