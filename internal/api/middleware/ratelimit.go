package middleware

import (
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"github.com/jstittsworth/hockey-gm/pkg/utils"
)

// RateLimit throttles mutating endpoints per client IP. Read traffic
// is expected to route around this.
func RateLimit(rps float64, burst int) gin.HandlerFunc {
	var (
		mu       sync.Mutex
		limiters = make(map[string]*rate.Limiter)
	)

	limiterFor := func(ip string) *rate.Limiter {
		mu.Lock()
		defer mu.Unlock()
		l, ok := limiters[ip]
		if !ok {
			l = rate.NewLimiter(rate.Limit(rps), burst)
			limiters[ip] = l
		}
		return l
	}

	return func(c *gin.Context) {
		if !limiterFor(c.ClientIP()).Allow() {
			utils.SendError(c, http.StatusTooManyRequests, utils.NewAppError(
				utils.ErrCodeValidation, "Too many requests, slow down"))
			c.Abort()
			return
		}
		c.Next()
	}
}
