package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/civicwatch/civicwatch/internal/infrastructure/ratelimit"
	"github.com/civicwatch/civicwatch/internal/shared/errors"
	"github.com/civicwatch/civicwatch/internal/shared/logger"
	"github.com/civicwatch/civicwatch/internal/shared/utils"
)

// RateLimit throttles a route per client IP. When the limiter backend is
// unavailable the request is let through.
func RateLimit(limiter ratelimit.RateLimiter, scope string, cfg ratelimit.RateLimitConfig, log logger.Interface) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := scope + ":ip:" + c.ClientIP()

		allowed, err := limiter.Allow(c.Request.Context(), key, cfg)
		if err != nil {
			log.Warnw("rate limiter unavailable, allowing request", "scope", scope, "error", err)
			c.Next()
			return
		}

		if !allowed {
			log.Warnw("rate limit exceeded", "scope", scope, "client_ip", c.ClientIP())
			utils.ErrorResponseWithError(c, errors.NewTooManyRequestsError("Too many submissions. Please try again later."))
			c.Abort()
			return
		}

		c.Next()
	}
}
