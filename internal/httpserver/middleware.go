package httpserver

import (
	"errors"
	"math"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"shopcart/internal/ratelimit"
)

// rateLimited counts the attempt before the handler runs and, on a 2xx
// response, reports success so non-add counters get a fresh window.
func rateLimited(limiter Limiter, class ratelimit.Class) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.Param("userID")
		if userID == "" {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "user id required"})
			return
		}

		if err := limiter.Allow(c.Request.Context(), userID, class); err != nil {
			var limitErr *ratelimit.LimitError
			if errors.As(err, &limitErr) {
				retryAfter := int(math.Ceil(limitErr.RetryAfter.Seconds()))
				if retryAfter < 1 {
					retryAfter = 1
				}
				c.Header("Retry-After", strconv.Itoa(retryAfter))
				c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
					"error":             "rate limit exceeded",
					"retryAfterSeconds": retryAfter,
				})
				return
			}
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
			return
		}

		c.Next()

		if c.Writer.Status() < http.StatusBadRequest {
			limiter.OnSuccess(c.Request.Context(), userID, class)
		}
	}
}
