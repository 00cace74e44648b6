package api

import (
	"context"
	"net"
	"net/http"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/wonny/muhtasib/backend/pkg/config"
	"github.com/wonny/muhtasib/backend/pkg/logger"
	"github.com/wonny/muhtasib/backend/pkg/redis"
)

// RateLimiter decides whether a client may issue another request
type RateLimiter interface {
	Allow(ctx context.Context, client string) bool
}

// NewRateLimiter picks the shared redis limiter when redis is enabled,
// otherwise an in-process token bucket per client. Returns nil when limiting is off.
func NewRateLimiter(cfg config.APIConfig, client *redis.Client, log *logger.Logger) RateLimiter {
	if cfg.RateLimitRPS <= 0 {
		return nil
	}

	burst := cfg.RateLimitBurst
	if burst < 1 {
		burst = 1
	}

	if client != nil && client.Enabled() {
		window := time.Duration(float64(burst) / cfg.RateLimitRPS * float64(time.Second))
		return &sharedLimiter{
			limiter: redis.NewRateLimiter(client, "muhtasib"),
			limit:   burst,
			window:  window,
			logger:  log,
		}
	}

	return newLocalLimiter(rate.Limit(cfg.RateLimitRPS), burst)
}

// localLimiter keeps one token bucket per client in memory
type localLimiter struct {
	mu        sync.Mutex
	limit     rate.Limit
	burst     int
	clients   map[string]*clientBucket
	lastSweep time.Time
}

type clientBucket struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

const idleClientTTL = 3 * time.Minute

func newLocalLimiter(limit rate.Limit, burst int) *localLimiter {
	return &localLimiter{
		limit:     limit,
		burst:     burst,
		clients:   make(map[string]*clientBucket),
		lastSweep: time.Now(),
	}
}

func (l *localLimiter) Allow(_ context.Context, client string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := time.Now()
	if now.Sub(l.lastSweep) > idleClientTTL {
		for key, b := range l.clients {
			if now.Sub(b.lastSeen) > idleClientTTL {
				delete(l.clients, key)
			}
		}
		l.lastSweep = now
	}

	b, ok := l.clients[client]
	if !ok {
		b = &clientBucket{limiter: rate.NewLimiter(l.limit, l.burst)}
		l.clients[client] = b
	}
	b.lastSeen = now

	return b.limiter.AllowN(now, 1)
}

// sharedLimiter counts requests in redis so every API replica sees the same window
type sharedLimiter struct {
	limiter *redis.RateLimiter
	limit   int
	window  time.Duration
	logger  *logger.Logger
}

func (s *sharedLimiter) Allow(ctx context.Context, client string) bool {
	allowed, _, err := s.limiter.Allow(ctx, redis.RateLimitConfig{
		Key:    client,
		Limit:  s.limit,
		Window: s.window,
	})
	if err != nil {
		// fail open
		s.logger.WithError(err).Warn("Rate limiter unavailable")
		return true
	}
	return allowed
}

// clientKey identifies the caller by remote IP
func clientKey(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
