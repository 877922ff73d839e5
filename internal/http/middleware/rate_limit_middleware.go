package middleware

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/poofware/cinema-api/internal/http/response"
)

type Decision struct {
	Allowed    bool
	RetryAfter time.Duration
}

type Limiter interface {
	Allow(ctx context.Context, key string, limit int, window time.Duration) (Decision, error)
}

type FailureMode string

const (
	FailOpen   FailureMode = "fail_open"
	FailClosed FailureMode = "fail_closed"
)

type RateLimiter struct {
	limiter Limiter
	limit   int
	window  time.Duration
	mode    FailureMode
	scope   string
}

func NewRateLimiter(limit int, window time.Duration) *RateLimiter {
	return &RateLimiter{
		limiter: newLocalFixedWindowLimiter(),
		limit:   limit,
		window:  window,
		mode:    FailClosed,
		scope:   "local",
	}
}

// NewDistributedRateLimiter enforces the limit across every process sharing
// the Redis backend.
func NewDistributedRateLimiter(client redis.UniversalClient, limit int, window time.Duration, mode FailureMode, scope string) *RateLimiter {
	return &RateLimiter{
		limiter: &redisFixedWindowLimiter{client: client, prefix: "rate_limit"},
		limit:   limit,
		window:  window,
		mode:    mode,
		scope:   scope,
	}
}

func (rl *RateLimiter) Middleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if rl.limit <= 0 {
				next.ServeHTTP(w, r)
				return
			}
			key := fmt.Sprintf("%s:%s:%s", rl.scope, r.URL.Path, clientIP(r))
			decision, err := rl.limiter.Allow(r.Context(), key, rl.limit, rl.window)
			if err != nil {
				slog.WarnContext(r.Context(), "rate limiter unavailable", "scope", rl.scope, "mode", rl.mode, "error", err)
				if rl.mode == FailOpen {
					next.ServeHTTP(w, r)
					return
				}
				response.Error(w, r, http.StatusServiceUnavailable, "RATE_LIMITER_UNAVAILABLE", "rate limiter unavailable", nil)
				return
			}
			if !decision.Allowed {
				if decision.RetryAfter > 0 {
					w.Header().Set("Retry-After", strconv.Itoa(int(decision.RetryAfter.Seconds()+1)))
				}
				response.Error(w, r, http.StatusTooManyRequests, "RATE_LIMITED", "too many requests", nil)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

type localWindow struct {
	start time.Time
	count int
}

type localFixedWindowLimiter struct {
	mu    sync.Mutex
	store map[string]*localWindow
}

func newLocalFixedWindowLimiter() *localFixedWindowLimiter {
	return &localFixedWindowLimiter{store: make(map[string]*localWindow)}
}

func (l *localFixedWindowLimiter) Allow(_ context.Context, key string, limit int, window time.Duration) (Decision, error) {
	now := time.Now()
	l.mu.Lock()
	defer l.mu.Unlock()
	state, ok := l.store[key]
	if !ok || now.Sub(state.start) >= window {
		state = &localWindow{start: now}
		l.store[key] = state
	}
	if state.count >= limit {
		return Decision{Allowed: false, RetryAfter: window - now.Sub(state.start)}, nil
	}
	state.count++
	return Decision{Allowed: true}, nil
}

type redisFixedWindowLimiter struct {
	client redis.UniversalClient
	prefix string
}

func (l *redisFixedWindowLimiter) Allow(ctx context.Context, key string, limit int, window time.Duration) (Decision, error) {
	bucket := time.Now().Unix() / int64(window.Seconds())
	dataKey := fmt.Sprintf("%s:%s:%d", l.prefix, key, bucket)

	pipe := l.client.TxPipeline()
	countCmd := pipe.Incr(ctx, dataKey)
	pipe.Expire(ctx, dataKey, window)
	if _, err := pipe.Exec(ctx); err != nil {
		return Decision{}, err
	}
	if countCmd.Val() > int64(limit) {
		return Decision{Allowed: false, RetryAfter: window}, nil
	}
	return Decision{Allowed: true}, nil
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
