package middleware

import (
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"
)

// KeyFunc picks the bucket a request is counted against.
type KeyFunc func(r *http.Request) string

type bucket struct {
	count int
	until time.Time
}

// RateLimit allows limit requests per key within each per window and
// answers 429 beyond that. Expired buckets are dropped as new windows open.
func RateLimit(limit int, per time.Duration, key KeyFunc) func(http.Handler) http.Handler {
	return RateLimitWith(limit, per, key, http.HandlerFunc(tooManyRequests))
}

// RateLimitWith is RateLimit with a custom answer for throttled requests.
// Retry-After is set before rejected is called.
func RateLimitWith(limit int, per time.Duration, key KeyFunc, rejected http.Handler) func(http.Handler) http.Handler {
	if rejected == nil {
		rejected = http.HandlerFunc(tooManyRequests)
	}
	if key == nil {
		key = ClientIP
	}
	var mu sync.Mutex
	buckets := make(map[string]*bucket)
	var sweepAt time.Time
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if limit <= 0 {
				next.ServeHTTP(w, r)
				return
			}
			k := key(r)
			now := time.Now()
			mu.Lock()
			if now.After(sweepAt) {
				for id, b := range buckets {
					if now.After(b.until) {
						delete(buckets, id)
					}
				}
				sweepAt = now.Add(per)
			}
			b, ok := buckets[k]
			if !ok || now.After(b.until) {
				b = &bucket{until: now.Add(per)}
				buckets[k] = b
			}
			if b.count >= limit {
				mu.Unlock()
				w.Header().Set("Retry-After", retryAfter(b.until.Sub(now)))
				rejected.ServeHTTP(w, r)
				return
			}
			b.count++
			mu.Unlock()
			next.ServeHTTP(w, r)
		})
	}
}

func tooManyRequests(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusTooManyRequests)
}

func retryAfter(d time.Duration) string {
	secs := int(d.Round(time.Second) / time.Second)
	if secs < 1 {
		secs = 1
	}
	return strconv.Itoa(secs)
}

// ClientIP keys requests by the first valid forwarded address, else the
// remote host.
func ClientIP(r *http.Request) string {
	return clientIPForRateLimit(r)
}

// Sender keys webhook requests by the chat handle in the From form field,
// falling back to the client address.
func Sender(r *http.Request) string {
	if from := strings.TrimSpace(r.PostFormValue("From")); from != "" {
		return "from:" + from
	}
	return clientIPForRateLimit(r)
}

func clientIPForRateLimit(r *http.Request) string {
	if xf := r.Header.Get("X-Forwarded-For"); xf != "" {
		for _, part := range strings.Split(xf, ",") {
			ip := strings.TrimSpace(part)
			if ip == "" {
				continue
			}
			if net.ParseIP(ip) != nil {
				return ip
			}
		}
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err == nil {
		if net.ParseIP(host) != nil {
			return host
		}
	} else if net.ParseIP(r.RemoteAddr) != nil {
		return r.RemoteAddr
	}

	return r.RemoteAddr
}
