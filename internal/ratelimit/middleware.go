package ratelimit

import (
	"fmt"
	"net/http"

	"referral-graph/internal/apierrors"
	"referral-graph/internal/observability"

	"github.com/gin-gonic/gin"
)

// Middleware creates a Gin middleware limiting requests per client IP
func (s *Service) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !s.Enabled() {
			c.Next()
			return
		}

		ctx := c.Request.Context()
		clientIP := observability.GetRealClientIP(c)

		result, err := s.CheckRateLimit(ctx, clientIP)
		if err != nil {
			apierrors.RespondWithError(c, err)
			c.Abort()
			return
		}

		// Add rate limit headers
		c.Header("X-RateLimit-Limit", fmt.Sprintf("%d", result.Limit))
		c.Header("X-RateLimit-Remaining", fmt.Sprintf("%d", result.Remaining))
		c.Header("X-RateLimit-Reset", fmt.Sprintf("%d", result.ResetAt.Unix()))

		// Check if rate limit exceeded
		if !result.Allowed {
			retryAfter := (result.RetryAfterMs + 999) / 1000
			c.Header("Retry-After", fmt.Sprintf("%d", retryAfter))
			s.logger.Warn(observability.WithFields(ctx,
				observability.Field{Key: "client_ip", Value: clientIP},
				observability.Field{Key: "retry_after_ms", Value: result.RetryAfterMs},
			), "rate limit exceeded")

			c.JSON(http.StatusTooManyRequests, gin.H{
				"error":       "Rate limit exceeded",
				"code":        apierrors.CodeRateLimitExceeded,
				"limit":       result.Limit,
				"retry_after": retryAfter,
				"reset_at":    result.ResetAt.Unix(),
			})
			c.Abort()
			return
		}

		// Rate limit check passed, continue
		c.Next()
	}
}
