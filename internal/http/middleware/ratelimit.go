package middleware

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// IPRateLimiter throttles mutating requests per client IP.
type IPRateLimiter struct {
	limiters sync.Map
	limit    rate.Limit
	burst    int
}

// NewIPRateLimiter allows perMinute requests per IP with a burst of the same
// size. perMinute <= 0 disables limiting.
func NewIPRateLimiter(perMinute int) *IPRateLimiter {
	if perMinute <= 0 {
		return &IPRateLimiter{limit: rate.Inf}
	}
	return &IPRateLimiter{limit: rate.Limit(float64(perMinute) / 60.0), burst: perMinute}
}

func (l *IPRateLimiter) limiter(ip string) *rate.Limiter {
	if v, ok := l.limiters.Load(ip); ok {
		return v.(*rate.Limiter)
	}
	v, _ := l.limiters.LoadOrStore(ip, rate.NewLimiter(l.limit, l.burst))
	return v.(*rate.Limiter)
}

func (l *IPRateLimiter) RateLimit() gin.HandlerFunc {
	return func(c *gin.Context) {
		if l.limit == rate.Inf {
			c.Next()
			return
		}
		if !l.limiter(c.ClientIP()).Allow() {
			retry := time.Duration(float64(time.Second) / float64(l.limit))
			c.Header("Retry-After", strconv.Itoa(int(retry.Seconds())+1))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error": gin.H{
					"code":    "RATE_LIMITED",
					"message": "Too many requests",
				},
			})
			return
		}
		c.Next()
	}
}
