package api

import (
	"net/http"
	"strings"
	"time"

	"pdfquiz/internal/api/handlers"
	"pdfquiz/internal/logger"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// CORSMiddleware adds CORS headers to allow cross-origin requests from
// frontendURL.
func CORSMiddleware(frontendURL string) gin.HandlerFunc {
	if frontendURL == "" {
		frontendURL = "http://localhost:5173"
	}
	origin := strings.TrimSuffix(frontendURL, "/")
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

// SessionID assigns every browser a study session ID, kept in the session
// cookie, and exposes it to handlers through the gin context.
func SessionID(log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		s := sessions.Default(c)
		raw, _ := s.Get(handlers.SessionIDKey).(string)
		id, err := uuid.Parse(raw)
		if err != nil {
			id = uuid.New()
			s.Set(handlers.SessionIDKey, id.String())
			if err := s.Save(); err != nil {
				log.Error("failed to save session id", "error", err)
				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to start session"})
				return
			}
			log.Debug("new study session", "session_id", id)
		}
		c.Set(handlers.ContextSessionID, id)
		c.Next()
	}
}

// AuthRequired is middleware to ensure the user is authenticated. API
// requests get a 401, page requests are sent to the login flow.
func AuthRequired(log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		s := sessions.Default(c)
		profile, ok := s.Get(handlers.ProfileSessionKey).(handlers.UserProfile)
		if !ok || profile.GoogleID == "" {
			log.Warn("authentication required", "path", c.Request.URL.Path)
			if strings.HasPrefix(c.Request.URL.Path, "/api/") || strings.Contains(c.GetHeader("Accept"), "application/json") {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authentication required or session invalid"})
				return
			}
			c.Redirect(http.StatusSeeOther, "/login")
			c.Abort()
			return
		}
		c.Set(handlers.ContextUserProfile, profile)
		c.Next()
	}
}

// RequestLogger logs one line per request.
func RequestLogger(log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		kv := []interface{}{
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", status,
			"duration", time.Since(start),
			"client_ip", c.ClientIP(),
		}
		if id, ok := c.Get(handlers.ContextSessionID); ok {
			kv = append(kv, "session_id", id)
		}
		if len(c.Errors) > 0 {
			kv = append(kv, "errors", c.Errors.String())
		}
		switch {
		case status >= http.StatusInternalServerError:
			log.Error("request", kv...)
		case status >= http.StatusBadRequest:
			log.Warn("request", kv...)
		default:
			log.Info("request", kv...)
		}
	}
}
