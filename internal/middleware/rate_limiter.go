package middleware

import (
	"context"
	_ "embed"
	"fmt"
	"net/http"
	"time"
	"user_auth_service/internal/auth"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/sirupsen/logrus"
)

//go:embed rate_limiter.lua
var luaScript string

// RateLimiterConfig holds rate limiter configuration
type RateLimiterConfig struct {
	Capacity   int     // Maximum number of tokens (max requests)
	RefillRate float64 // Tokens refilled per second
}

// KeyFunc derives the rate limiting bucket key from the request.
type KeyFunc func(c *gin.Context) string

// ClientIPKey buckets by client address, for routes with no caller identity yet.
func ClientIPKey(c *gin.Context) string {
	return fmt.Sprintf("rate_limiter:ip:%s", c.ClientIP())
}

// ClaimsUsernameKey buckets by the authenticated username, falling back to the
// client address when the gate has not attached claims.
func ClaimsUsernameKey(c *gin.Context) string {
	claims, err := auth.GetClaimsFromContext(c)
	if err != nil {
		return ClientIPKey(c)
	}
	return fmt.Sprintf("rate_limiter:user:%s", claims.Username)
}

// RateLimiterMiddleware implements Token Bucket algorithm using Redis + Lua script
func RateLimiterMiddleware(redisClient *redis.Client, config *RateLimiterConfig, keyFn KeyFunc) gin.HandlerFunc {
	// Load Lua script into Redis (SHA hash will be cached)
	ctx := context.Background()
	scriptSHA, err := redisClient.ScriptLoad(ctx, luaScript).Result()
	if err != nil {
		logrus.WithError(err).Fatal("Failed to load Lua script for rate limiter")
	}

	return func(c *gin.Context) {
		key := keyFn(c)
		now := time.Now().Unix()

		result, err := redisClient.EvalSha(ctx, scriptSHA, []string{key},
			config.Capacity,
			config.RefillRate,
			now,
		).Result()

		if err != nil {
			logrus.WithError(err).Error("Failed to execute rate limiter Lua script")
			// Fail open: allow request if Redis fails
			c.Next()
			return
		}

		allowed := result.(int64)
		if allowed == 0 {
			c.JSON(http.StatusTooManyRequests, gin.H{
				"success":     false,
				"message":     fmt.Sprintf("Rate limit exceeded. Maximum %d requests per second allowed", int(config.RefillRate)),
				"retry_after": fmt.Sprintf("%.1f seconds", 1.0/config.RefillRate),
			})
			c.Abort()
			return
		}

		c.Next()
	}
}
