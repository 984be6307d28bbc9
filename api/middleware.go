package api

import (
	"math"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/meghashyamc/vidcat/logger"
	"golang.org/x/time/rate"
)

const (
	headerRetryAfter   = "Retry-After"
	clientLimiterTTL   = 10 * time.Minute
	clientLimiterSweep = 1000
)

func loggingMiddleware(logger logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.Info("request", "method", c.Request.Method, "path", c.Request.URL.Path, "status", c.Writer.Status(), "duration", time.Since(start).String())
	}
}

// _CORSMiddleware starts with _ so that it is not imported outside of the server package.
func _CORSMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, accept, origin, Cache-Control, X-Requested-With") // nolint:lll
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE")
		c.Writer.Header().Set("Access-Control-Expose-Headers", headerRetryAfter)

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)

			return
		}

		c.Next()
	}
}

// clientLimiters hands out one token bucket per client address.
type clientLimiters struct {
	mu       sync.Mutex
	limit    rate.Limit
	burst    int
	limiters map[string]*clientLimiter
}

type clientLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

func newClientLimiters(limit float64, burst int) *clientLimiters {
	return &clientLimiters{
		limit:    rate.Limit(limit),
		burst:    burst,
		limiters: map[string]*clientLimiter{},
	}
}

func (l *clientLimiters) get(client string, now time.Time) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()

	if len(l.limiters) >= clientLimiterSweep {
		for key, entry := range l.limiters {
			if now.Sub(entry.lastSeen) > clientLimiterTTL {
				delete(l.limiters, key)
			}
		}
	}

	entry, ok := l.limiters[client]
	if !ok {
		entry = &clientLimiter{limiter: rate.NewLimiter(l.limit, l.burst)}
		l.limiters[client] = entry
	}
	entry.lastSeen = now
	return entry.limiter
}

func rateLimitMiddleware(limiters *clientLimiters, logger logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		now := time.Now()
		reservation := limiters.get(c.ClientIP(), now).ReserveN(now, 1)
		if !reservation.OK() {
			c.AbortWithStatus(http.StatusTooManyRequests)
			return
		}

		if delay := reservation.DelayFrom(now); delay > 0 {
			reservation.CancelAt(now)
			logger.Warn("rate limit exceeded", "client", c.ClientIP(), "path", c.Request.URL.Path)
			c.Header(headerRetryAfter, strconv.Itoa(int(math.Ceil(delay.Seconds()))))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"success": false,
				"message": "too many requests",
				"error":   "rate limit exceeded",
			})
			return
		}

		c.Next()
	}
}
