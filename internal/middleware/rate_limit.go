package middleware

import (
	"log/slog"
	"math"
	"net"
	"net/http"
	"strconv"

	"github.com/baharkarakas/asso-backend/internal/api/httpx"
	"github.com/baharkarakas/asso-backend/internal/metrics"
	"github.com/baharkarakas/asso-backend/internal/ratelimit"
)

// RateLimit rejects clients over their budget with 429. A limiter error lets the request through.
func RateLimit(l ratelimit.Limiter) func(http.Handler) http.Handler {
	if l == nil {
		return func(next http.Handler) http.Handler { return next }
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			res, err := l.Allow(r.Context(), clientKey(r))
			if err != nil {
				slog.WarnContext(r.Context(), "rate limiter unavailable", "err", err)
				next.ServeHTTP(w, r)
				return
			}
			if !res.Allowed {
				metrics.RateLimited.Inc()
				w.Header().Set("Retry-After", strconv.Itoa(int(math.Ceil(res.RetryAfter.Seconds()))))
				httpx.WriteError(w, http.StatusTooManyRequests, "rate_limited", "too many requests")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func clientKey(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
