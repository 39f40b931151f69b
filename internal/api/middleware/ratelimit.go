package middleware

import (
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/llegomark/tasks-api/internal/api/shared"
	"github.com/llegomark/tasks-api/internal/store"
)

// rateLimitKeyPrefix namespaces limiter counters in the KV store.
const rateLimitKeyPrefix = "rate_limit:"

// unknownClientBucket is the sentinel bucket for requests whose client IP
// cannot be resolved. An unresolvable RemoteAddr must not fail the request;
// such traffic shares one bucket instead.
const unknownClientBucket = "unknown"

// RateLimiter enforces a per-client-IP request cap over a rolling window,
// backed by counters in the KV store. The window TTL is refreshed on every
// increment, so this is a fixed window with sliding expiry rather than a
// true sliding window. Tolerable imprecision for abuse prevention.
type RateLimiter struct {
	kv     store.KV
	limit  int64
	window time.Duration
}

// NewRateLimiter creates a RateLimiter allowing limit requests per window
// per client IP.
func NewRateLimiter(kv store.KV, limit int, window time.Duration) *RateLimiter {
	return &RateLimiter{
		kv:     kv,
		limit:  int64(limit),
		window: window,
	}
}

// Limit is the middleware stage. Requests over the cap short-circuit with a
// 429; a failing store surfaces as a 500 rather than silently waving
// traffic through.
func (l *RateLimiter) Limit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := rateLimitKeyPrefix + clientIP(r)

		count, err := l.bump(r, key)
		if err != nil {
			shared.RespondWithErrorAndLog(w, r,
				http.StatusInternalServerError, "An unexpected error occurred", err)
			return
		}

		if count > l.limit {
			shared.RespondWithErrorAndLog(w, r,
				http.StatusTooManyRequests, "Rate limit exceeded", nil)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// bump increments the counter for key and returns the new count. When the
// store offers an atomic increment it is used; otherwise the counter is
// read-then-written, which can under-count under concurrent requests from
// the same IP. Accepted: the limiter is abuse prevention, not billing.
func (l *RateLimiter) bump(r *http.Request, key string) (int64, error) {
	if inc, ok := l.kv.(store.Incrementer); ok {
		return inc.Increment(r.Context(), key, l.window)
	}

	var count int64
	data, err := l.kv.Get(r.Context(), key)
	if err != nil && !store.IsNotFoundError(err) {
		return 0, err
	}
	if err == nil {
		count, _ = strconv.ParseInt(string(data), 10, 64)
	}

	count++
	if count > l.limit {
		// Over the cap: leave the stored counter alone so rejected
		// requests do not extend the window.
		return count, nil
	}

	value := []byte(strconv.FormatInt(count, 10))
	if err := l.kv.Put(r.Context(), key, value, store.PutOptions{TTL: l.window}); err != nil {
		return 0, err
	}

	return count, nil
}

// clientIP resolves the client address for bucketing. chi's RealIP
// middleware has already folded X-Forwarded-For/X-Real-IP into RemoteAddr.
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		host = r.RemoteAddr
	}
	if host == "" {
		return unknownClientBucket
	}
	return host
}
