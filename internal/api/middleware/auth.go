package middleware

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/Marga-Ghale/sanchari-backend/internal/session"
	"github.com/Marga-Ghale/sanchari-backend/internal/types"
)

const sessionKey = "session"

// SessionResolver turns a bearer token into its live session.
type SessionResolver interface {
	Resolve(ctx context.Context, token string) (*session.Session, error)
}

// SessionMiddleware resolves the bearer token and sets the session in the
// gin context.
func SessionMiddleware(sessions SessionResolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			log.Warn().Msgf("❌ [Auth] Missing Authorization header - Path: %s", c.Request.URL.Path)
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authorization header required"})
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			log.Warn().Msgf("❌ [Auth] Invalid header format - Path: %s", c.Request.URL.Path)
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid authorization header format"})
			return
		}

		sess, err := sessions.Resolve(c.Request.Context(), parts[1])
		if err != nil {
			log.Warn().Err(err).Msgf("❌ [Auth] Invalid session - Path: %s", c.Request.URL.Path)
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired session"})
			return
		}

		c.Set(sessionKey, sess)
		c.Next()
	}
}

// RequireAuthorized lets through sessions whose current view is unlocked:
// a signed-in member, or an admin who entered the admin secret.
func RequireAuthorized() gin.HandlerFunc {
	return func(c *gin.Context) {
		sess := GetSession(c)
		if sess == nil || !sess.IsAuthorized() {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Sign in to continue"})
			return
		}
		c.Next()
	}
}

// RequireAdmin lets through sessions in the ADMIN role with the admin secret
// entered.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		sess := GetSession(c)
		if sess == nil || sess.Role() != types.RoleAdmin || !sess.AdminUnlocked() {
			log.Warn().Msgf("🚫 [Auth] Admin access denied - Path: %s", c.Request.URL.Path)
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Admin access required"})
			return
		}
		c.Next()
	}
}

// RequestLogger logs every request with status and duration.
func RequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		evt := log.Info()
		statusEmoji := "✅"
		switch {
		case status >= 500:
			evt = log.Error()
			statusEmoji = "❌"
		case status >= 400:
			evt = log.Warn()
			statusEmoji = "⚠️"
		}
		evt.Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", status).
			Dur("duration", time.Since(start)).
			Msgf("%s [HTTP] %s %s", statusEmoji, c.Request.Method, c.Request.URL.Path)

		for _, e := range c.Errors {
			log.Error().Err(e.Err).Msgf("❌ [Error] %s %s", c.Request.Method, c.Request.URL.Path)
		}
	}
}

// GetSession returns the session set by SessionMiddleware, or nil.
func GetSession(c *gin.Context) *session.Session {
	v, ok := c.Get(sessionKey)
	if !ok {
		return nil
	}
	sess, _ := v.(*session.Session)
	return sess
}
