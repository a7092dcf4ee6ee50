package middleware

import (
	"crypto/subtle"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"nutri-lens/cmd/api/auth"
	"nutri-lens/config"
)

var errCronSecretMismatch = errors.New("invalid_cron_secret")

// CronAuthMiddleware requires the bearer token to equal CRON_SECRET.
// With no secret configured every request is refused.
func CronAuthMiddleware(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if secret == "" {
			config.Logger.Warnf("cron request rejected: CRON_SECRET is not configured")
			c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{"error": "cron_not_configured"})
			return
		}

		token, err := auth.ExtractBearerToken(c)
		if err != nil {
			auth.AbortWithUnauthorized(c, err)
			return
		}
		if subtle.ConstantTimeCompare([]byte(token), []byte(secret)) != 1 {
			auth.AbortWithUnauthorized(c, errCronSecretMismatch)
			return
		}

		c.Next()
	}
}

// UserMiddleware validates X-User-Id and stores it as user_id.
func UserMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := auth.ExtractUserID(c)
		if err != nil {
			auth.AbortWithUnauthorized(c, err)
			return
		}
		c.Set("user_id", id)
		c.Next()
	}
}
