package middleware

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/storefront/checkout/internal/domain/payment"
	"github.com/storefront/checkout/internal/interfaces/http/dto"
)

// RateLimit returns a fixed-window rate limiting middleware keyed by
// client IP. Payment callback routes share a limiter with the payment
// initiation flow so a client cannot shift load between the two.
func RateLimit(limiter *payment.RateLimiter, limit int) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := c.ClientIP()

		if !limiter.Allow(key) {
			c.Header("X-RateLimit-Limit", strconv.Itoa(limit))
			c.Header("X-RateLimit-Remaining", "0")
			c.AbortWithStatusJSON(http.StatusTooManyRequests, dto.NewErrorResponse(
				dto.ErrCodeRateLimited,
				"Too many requests. Please try again later.",
			))
			return
		}

		c.Header("X-RateLimit-Limit", strconv.Itoa(limit))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(limiter.Remaining(key)))
		c.Next()
	}
}
