package middleware

import (
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/JonnyWalker81/innerlog/backend/internal/apierror"
	"github.com/JonnyWalker81/innerlog/backend/internal/logger"
)

// RateLimiter counts requests per client key in fixed windows
type RateLimiter struct {
	mu      sync.Mutex
	windows map[string]*clientWindow
	rate    int
	window  time.Duration
	name    string
	now     func() time.Time

	stop     chan struct{}
	stopOnce sync.Once
}

type clientWindow struct {
	start time.Time
	count int
}

// decision is the outcome of one take
type decision struct {
	allowed    bool
	count      int
	remaining  int
	retryAfter int
}

// NewRateLimiter allows rate requests per window for each key and starts a
// sweeper that drops idle keys. Call Stop when done.
func NewRateLimiter(rate int, window time.Duration, name string) *RateLimiter {
	rl := &RateLimiter{
		windows: make(map[string]*clientWindow),
		rate:    rate,
		window:  window,
		name:    name,
		now:     time.Now,
		stop:    make(chan struct{}),
	}
	go rl.sweep()

	logger.Default().Debug("rate limiter initialized",
		logger.String("name", name),
		logger.Int("rate", rate),
		logger.Duration("window", window),
	)
	return rl
}

// Stop ends the sweeper
func (rl *RateLimiter) Stop() {
	rl.stopOnce.Do(func() { close(rl.stop) })
}

func (rl *RateLimiter) sweep() {
	ticker := time.NewTicker(rl.window * 2)
	defer ticker.Stop()

	for {
		select {
		case <-rl.stop:
			return
		case <-ticker.C:
			if n := rl.evictIdle(); n > 0 {
				logger.Default().Debug("rate limiter evicted idle clients",
					logger.String("name", rl.name),
					logger.Int("evicted", n),
				)
			}
		}
	}
}

// evictIdle drops keys whose window ended more than one window ago
func (rl *RateLimiter) evictIdle() int {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	cutoff := rl.now().Add(-2 * rl.window)
	evicted := 0
	for key, w := range rl.windows {
		if w.start.Before(cutoff) {
			delete(rl.windows, key)
			evicted++
		}
	}
	return evicted
}

// take counts one request for key
func (rl *RateLimiter) take(key string) decision {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	w, ok := rl.windows[key]
	if !ok || now.Sub(w.start) >= rl.window {
		w = &clientWindow{start: now}
		rl.windows[key] = w
	}
	w.count++

	d := decision{allowed: w.count <= rl.rate, count: w.count}
	if d.allowed {
		d.remaining = rl.rate - w.count
		return d
	}
	left := w.start.Add(rl.window).Sub(now)
	d.retryAfter = int((left + time.Second - 1) / time.Second)
	if d.retryAfter < 1 {
		d.retryAfter = 1
	}
	return d
}

// RateLimit applies limiter per authenticated user, or per client IP when
// no user is known.
func RateLimit(limiter *RateLimiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := c.GetString("user_id")
		if key == "" {
			key = "ip:" + c.ClientIP()
		}

		d := limiter.take(key)
		c.Header("X-RateLimit-Limit", strconv.Itoa(limiter.rate))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(d.remaining))
		if !d.allowed {
			logger.Ctx(c.Request.Context()).Warn("rate limit exceeded",
				logger.String("limiter", limiter.name),
				logger.String("client", key),
				logger.Int("request_count", d.count),
				logger.Int("limit", limiter.rate),
			)
			apierror.WriteProblem(c, apierror.NewRateLimitError(apierror.GetRequestID(c), d.retryAfter))
			c.Abort()
			return
		}
		c.Next()
	}
}
