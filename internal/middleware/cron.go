package middleware

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"giveflow/config"
	"giveflow/internal/auth"

	"github.com/gin-gonic/gin"
)

// CronGate guards a scheduler-triggered job. The disabled switch is checked
// before anything else, so a killed job short-circuits every caller with zero
// side effects. In production the caller must present either the shared cron
// secret as a bearer token or the scheduler signature header; outside
// production auth is bypassed to simplify local runs.
func CronGate(cfg *config.Config, job string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !cfg.Cron.Enabled(job) {
			c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{"error": "job disabled", "job": job})
			return
		}
		if cfg.Server.Env == "production" && !cronAuthorized(c, cfg.Cron.Secret) {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}
		c.Next()
	}
}

func cronAuthorized(c *gin.Context, secret string) bool {
	if secret == "" {
		return false
	}
	if header := c.GetHeader("Authorization"); header != "" {
		parts := strings.SplitN(header, " ", 2)
		if len(parts) == 2 && parts[0] == "Bearer" && secureEqual(parts[1], secret) {
			return true
		}
	}
	if sig := c.GetHeader("X-Cron-Signature"); sig != "" && secureEqual(sig, secret) {
		return true
	}
	return false
}

func secureEqual(a, b string) bool {
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}

// CronOrAuth resolves the caller identity for routes reachable by both the
// scheduler and a logged-in admin. A bearer token matching the cron secret
// marks the request as a cron caller; otherwise the token is parsed as a JWT.
// Neither case aborts — the handler decides what the operation requires.
func CronOrAuth(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		parts := strings.SplitN(header, " ", 2)
		if len(parts) == 2 && parts[0] == "Bearer" {
			if cfg.Cron.Secret != "" && secureEqual(parts[1], cfg.Cron.Secret) {
				c.Set("cron_caller", true)
				c.Next()
				return
			}
			if claims, err := auth.ParseAccessToken(&cfg.JWT, parts[1]); err == nil {
				c.Set("user_id", claims.UserID)
				c.Set("email", claims.Email)
				c.Set("role", claims.Role)
			}
		}
		c.Next()
	}
}

// IsCronCaller reports whether CronOrAuth matched the shared cron secret.
func IsCronCaller(c *gin.Context) bool {
	v, _ := c.Get("cron_caller")
	b, _ := v.(bool)
	return b
}
