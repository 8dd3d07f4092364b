package middleware

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

type visitor struct {
	count    int
	lastSeen time.Time
}

// RateLimiter is a fixed-window, per-IP limiter held in process memory.
type RateLimiter struct {
	mu       sync.Mutex
	visitors map[string]*visitor
	limit    int
	window   time.Duration
	now      func() time.Time
}

func NewRateLimiter(ctx context.Context, limit int, window time.Duration) *RateLimiter {
	rl := &RateLimiter{
		visitors: make(map[string]*visitor),
		limit:    limit,
		window:   window,
		now:      time.Now,
	}

	go func() {
		ticker := time.NewTicker(window)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				rl.sweep()
			}
		}
	}()

	return rl
}

func (rl *RateLimiter) sweep() {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	for ip, v := range rl.visitors {
		if rl.now().Sub(v.lastSeen) > rl.window {
			delete(rl.visitors, ip)
		}
	}
}

// allow counts one request from key and reports whether it is within limit.
func (rl *RateLimiter) allow(key string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	v, exists := rl.visitors[key]
	if !exists || now.Sub(v.lastSeen) > rl.window {
		rl.visitors[key] = &visitor{count: 1, lastSeen: now}
		return true
	}

	v.count++
	v.lastSeen = now
	return v.count <= rl.limit
}

func (rl *RateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !rl.allow(r.RemoteAddr) {
			writeError(w, http.StatusTooManyRequests, "RATE_LIMITED", "Too many requests. Please try again later.", r)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RedisRateLimiter counts requests per authenticated user in Redis so the
// limit holds across restarts. Redis errors let the request through.
type RedisRateLimiter struct {
	client *redis.Client
	scope  string
	limit  int64
	window time.Duration
}

func NewRedisRateLimiter(client *redis.Client, scope string, limit int, window time.Duration) *RedisRateLimiter {
	return &RedisRateLimiter{client: client, scope: scope, limit: int64(limit), window: window}
}

func (rl *RedisRateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		subject := r.RemoteAddr
		if id := GetUserID(r.Context()); id != uuid.Nil {
			subject = id.String()
		}
		key := fmt.Sprintf("ratelimit:%s:%s", rl.scope, subject)

		ctx := r.Context()
		pipe := rl.client.TxPipeline()
		incr := pipe.Incr(ctx, key)
		pipe.ExpireNX(ctx, key, rl.window)
		if _, err := pipe.Exec(ctx); err != nil {
			log.Warn().Err(err).Str("scope", rl.scope).Msg("rate limiter unavailable")
			next.ServeHTTP(w, r)
			return
		}

		if incr.Val() > rl.limit {
			writeError(w, http.StatusTooManyRequests, "RATE_LIMITED", "Too many requests. Please try again later.", r)
			return
		}
		next.ServeHTTP(w, r)
	})
}
