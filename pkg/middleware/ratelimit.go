package middleware

import (
	"net/http"

	"golang.org/x/time/rate"
)

// NewRateLimiter returns a middleware enforcing a process-wide token bucket.
// Requests beyond the burst are rejected with 429 rather than queued, so a
// traffic spike degrades loudly instead of stacking up latency.
func NewRateLimiter(limiter *rate.Limiter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !limiter.Allow() {
				http.Error(w, "rate limit exceeded", http.StatusTooManyRequests)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
