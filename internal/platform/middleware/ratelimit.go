package middleware

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/labstack/echo/v4"
)

// RateLimitConfig tunes the per-client request budget.
type RateLimitConfig struct {
	RequestsPerSecond float64
	BurstSize         int
}

// DefaultRateLimitConfig is generous enough for a browsing session with
// live cart updates while still stopping a runaway client.
func DefaultRateLimitConfig() RateLimitConfig {
	return RateLimitConfig{
		RequestsPerSecond: 100,
		BurstSize:         200,
	}
}

// visitor is one client's token bucket. Tokens refill continuously at the
// configured rate up to the burst cap; each request spends one.
type visitor struct {
	mu       sync.Mutex
	tokens   float64
	lastSeen time.Time
}

func (v *visitor) take(cfg RateLimitConfig, now time.Time) (ok bool, retryAfter int) {
	v.mu.Lock()
	defer v.mu.Unlock()

	v.tokens += now.Sub(v.lastSeen).Seconds() * cfg.RequestsPerSecond
	if burst := float64(cfg.BurstSize); v.tokens > burst {
		v.tokens = burst
	}
	v.lastSeen = now

	if v.tokens >= 1 {
		v.tokens--
		return true, 0
	}
	if cfg.RequestsPerSecond <= 0 {
		return false, 1
	}
	return false, int((1-v.tokens)/cfg.RequestsPerSecond) + 1
}

// visitorIdleEviction is how long a client may be silent before its bucket
// is dropped. Anything at least as long as a full refill is safe.
const visitorIdleEviction = 10 * time.Minute

type visitorTable struct {
	mu       sync.Mutex
	visitors map[string]*visitor
	cfg      RateLimitConfig
	lastScan time.Time
}

func newVisitorTable(cfg RateLimitConfig) *visitorTable {
	return &visitorTable{
		visitors: make(map[string]*visitor),
		cfg:      cfg,
	}
}

func (t *visitorTable) get(key string, now time.Time) *visitor {
	t.mu.Lock()
	defer t.mu.Unlock()

	// Opportunistic eviction keeps the table bounded without a sweeper
	// goroutine.
	if now.Sub(t.lastScan) > visitorIdleEviction {
		for k, v := range t.visitors {
			if now.Sub(v.lastSeen) > visitorIdleEviction {
				delete(t.visitors, k)
			}
		}
		t.lastScan = now
	}

	v, ok := t.visitors[key]
	if !ok {
		v = &visitor{tokens: float64(t.cfg.BurstSize), lastSeen: now}
		t.visitors[key] = v
	}
	return v
}

// RateLimit throttles by client IP. Identities share a budget when they sit
// behind one NAT address, which is acceptable for a storefront API; auth
// happens before any expensive work regardless.
func RateLimit(cfg RateLimitConfig) echo.MiddlewareFunc {
	table := newVisitorTable(cfg)
	limitHeader := strconv.FormatFloat(cfg.RequestsPerSecond, 'f', 0, 64)

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			now := time.Now()
			v := table.get(c.RealIP(), now)

			ok, retryAfter := v.take(cfg, now)
			c.Response().Header().Set("X-RateLimit-Limit", limitHeader)
			if !ok {
				c.Response().Header().Set("Retry-After", strconv.Itoa(retryAfter))
				c.Response().Header().Set("X-RateLimit-Remaining", "0")
				return echo.NewHTTPError(http.StatusTooManyRequests, "rate limit exceeded")
			}
			return next(c)
		}
	}
}
