// internal/middleware/rate_limit.go
package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"github.com/sobrazero/sobrazero-backend/internal/config"
	"github.com/sobrazero/sobrazero-backend/internal/utils"
)

// visitorTTL is how long an idle client keeps its token bucket before the
// janitor drops it.
const visitorTTL = 3 * time.Minute

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// IPRateLimiter keeps one token bucket per client IP.
type IPRateLimiter struct {
	visitors map[string]*visitor
	mtx      sync.Mutex
	rate     rate.Limit
	burst    int
}

func NewIPRateLimiter(r rate.Limit, burst int) *IPRateLimiter {
	rl := &IPRateLimiter{
		visitors: make(map[string]*visitor),
		rate:     r,
		burst:    burst,
	}
	go rl.evictIdle()
	return rl
}

func (rl *IPRateLimiter) evictIdle() {
	for range time.Tick(time.Minute) {
		rl.mtx.Lock()
		for ip, v := range rl.visitors {
			if time.Since(v.lastSeen) > visitorTTL {
				delete(rl.visitors, ip)
			}
		}
		rl.mtx.Unlock()
	}
}

func (rl *IPRateLimiter) bucket(ip string) *rate.Limiter {
	rl.mtx.Lock()
	defer rl.mtx.Unlock()

	v, exists := rl.visitors[ip]
	if !exists {
		limiter := rate.NewLimiter(rl.rate, rl.burst)
		rl.visitors[ip] = &visitor{limiter, time.Now()}
		return limiter
	}

	v.lastSeen = time.Now()
	return v.limiter
}

func (rl *IPRateLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !rl.bucket(c.ClientIP()).Allow() {
			utils.ErrorResponse(c, http.StatusTooManyRequests, "RATE_LIMITED",
				"Rate limit exceeded. Please try again later.", nil)
			c.Abort()
			return
		}
		c.Next()
	}
}

// GeneralRateLimit smooths overall API traffic per client.
func GeneralRateLimit(cfg config.RateLimitConfig) gin.HandlerFunc {
	return NewIPRateLimiter(rate.Limit(cfg.GeneralPerSecond), cfg.GeneralPerSecond).Middleware()
}

// AuthRateLimit slows down credential guessing on the auth routes.
func AuthRateLimit(cfg config.RateLimitConfig) gin.HandlerFunc {
	return NewIPRateLimiter(perMinute(cfg.AuthPerMinute), cfg.AuthPerMinute).Middleware()
}

// UploadRateLimit caps image uploads, the most expensive requests we serve.
func UploadRateLimit(cfg config.RateLimitConfig) gin.HandlerFunc {
	return NewIPRateLimiter(perMinute(cfg.UploadPerMinute), cfg.UploadPerMinute).Middleware()
}

func perMinute(n int) rate.Limit {
	return rate.Limit(float64(n) / 60.0)
}
