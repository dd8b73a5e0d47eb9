package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/civeni/civeni-api/internal/api/handler/v1/response"
	"github.com/civeni/civeni-api/internal/cache"
)

// RateLimit rejects a client IP once it exceeds the limiter's budget for the
// route.
func RateLimit(limiter *cache.RateLimiter) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		if !limiter.Allow(ctx.FullPath() + "|" + ctx.ClientIP()) {
			response.RenderErr(ctx, response.ErrTooManyRequests())
			return
		}
		ctx.Next()
	}
}
