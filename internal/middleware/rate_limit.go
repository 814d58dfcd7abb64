package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"github.com/noctiluca/rendermanager/internal/logging"
)

// IPRateLimiter hands out a token-bucket limiter per client IP, so one noisy
// or misbehaving worker can't starve heartbeats from the rest of the fleet.
// There is no auth on this surface (spec.md's no-goal) — this is the only
// defense against a single source hammering the Manager.
type IPRateLimiter struct {
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
	rps      rate.Limit
	burst    int
}

// NewIPRateLimiter builds a limiter allowing rps heartbeats per second per
// IP, with the given burst allowance, and starts a background sweep that
// drops idle entries so the map doesn't grow unbounded across worker churn.
func NewIPRateLimiter(rps float64, burst int) *IPRateLimiter {
	l := &IPRateLimiter{
		limiters: make(map[string]*rate.Limiter),
		rps:      rate.Limit(rps),
		burst:    burst,
	}
	go l.sweep()
	return l
}

func (l *IPRateLimiter) allow(ip string) bool {
	l.mu.Lock()
	lim, ok := l.limiters[ip]
	if !ok {
		lim = rate.NewLimiter(l.rps, l.burst)
		l.limiters[ip] = lim
	}
	l.mu.Unlock()
	return lim.Allow()
}

func (l *IPRateLimiter) sweep() {
	ticker := time.NewTicker(10 * time.Minute)
	defer ticker.Stop()
	for range ticker.C {
		l.mu.Lock()
		for ip, lim := range l.limiters {
			if lim.TokensAt(time.Now()) >= float64(l.burst) {
				delete(l.limiters, ip)
			}
		}
		l.mu.Unlock()
	}
}

// Limit rejects requests with 429 once an IP exceeds its token bucket. Every
// rejection is logged as a warning through internal/logging; repeated
// rejections are not deduplicated and are not written to the activity ring.
func (l *IPRateLimiter) Limit() gin.HandlerFunc {
	return func(c *gin.Context) {
		ip := c.ClientIP()
		if !l.allow(ip) {
			logging.WarnWithComponent(logging.ComponentDispatch, "rate limit exceeded", "ip", ip, "path", c.Request.URL.Path)
			c.JSON(http.StatusTooManyRequests, gin.H{"error": "rate limit exceeded"})
			c.Abort()
			return
		}
		c.Next()
	}
}
