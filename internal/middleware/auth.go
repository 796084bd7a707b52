package middleware

import (
	"net/http"
	"strings"
	"time"

	"grouporder/internal/domain"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

const (
	ContextUserID = "userID"
	ContextToken  = "rawToken"
)

type failure struct {
	Status  string `json:"Status"`
	Message string `json:"Message"`
}

func abort(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, failure{Status: "Fail", Message: message})
}

// AuthMiddleware resolves the bearer token to the current user id and stores
// both on the gin context.
func AuthMiddleware(auth domain.AuthUseCase, log *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			log.Warn("Middleware: Authorization header is missing")
			abort(c, "Authorization header required")
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
			log.Warnf("Middleware: Invalid Authorization header format: %s", authHeader)
			abort(c, "Invalid Authorization header format")
			return
		}

		rawToken := parts[1]
		if rawToken == "" {
			log.Warn("Middleware: Bearer token is empty")
			abort(c, "Invalid token")
			return
		}

		userID, err := auth.Authenticate(c.Request.Context(), rawToken)
		if err != nil {
			log.Warnf("Middleware: Token rejected: %v", err)
			abort(c, "Invalid or expired token")
			return
		}

		log.Debugf("Middleware: Authenticated user %s with token %s...", userID, rawToken[:min(8, len(rawToken))])

		c.Set(ContextToken, rawToken)
		c.Set(ContextUserID, userID)
		c.Next()
	}
}

// UserID returns the authenticated user id, or "" outside AuthMiddleware.
func UserID(c *gin.Context) string {
	return c.GetString(ContextUserID)
}

func Token(c *gin.Context) string {
	return c.GetString(ContextToken)
}

func RequestLogger(logger *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		startTime := time.Now()

		entry := logger.WithFields(logrus.Fields{
			"method":     c.Request.Method,
			"path":       c.Request.URL.Path,
			"remote_ip":  c.ClientIP(),
			"user_agent": c.Request.UserAgent(),
		})
		if reqID := c.GetHeader("X-Request-ID"); reqID != "" {
			entry = entry.WithField("request_id", reqID)
		}
		entry.Info("Incoming request")

		c.Next()

		latency := time.Since(startTime)
		statusCode := c.Writer.Status()

		completedEntry := logger.WithFields(logrus.Fields{
			"status_code": statusCode,
			"method":      c.Request.Method,
			"path":        c.Request.URL.Path,
			"remote_ip":   c.ClientIP(),
			"latency_ms":  latency.Milliseconds(),
		})
		if userID := UserID(c); userID != "" {
			completedEntry = completedEntry.WithField("user_id", userID)
		}

		if len(c.Errors) > 0 {
			completedEntry.Error(c.Errors.ByType(gin.ErrorTypePrivate).String())
		} else if statusCode >= 500 {
			completedEntry.Error("Request completed with server error")
		} else if statusCode >= 400 {
			completedEntry.Warn("Request completed with client error")
		} else {
			completedEntry.Info("Request completed successfully")
		}
	}
}
