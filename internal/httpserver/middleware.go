package httpserver

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"ecommerce-backend/internal/domain"
	"ecommerce-backend/internal/logging"
	"ecommerce-backend/internal/metrics"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	userCtxKey      = "currentUser"
	requestIDHeader = "X-Request-ID"
)

// requestLogger attaches a request-scoped logger to the context and emits one
// http_request entry per request.
func requestLogger(logger *zap.Logger, m *metrics.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		reqID := c.GetHeader(requestIDHeader)
		if reqID == "" {
			reqID = uuid.NewString()
		}
		c.Header(requestIDHeader, reqID)

		reqLogger := logger.With(zap.String("request_id", reqID))
		c.Request = c.Request.WithContext(logging.ContextWithLogger(c.Request.Context(), reqLogger))

		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		status := c.Writer.Status()
		elapsed := time.Since(start)
		m.HTTPRequest(c.Request.Method, route, strconv.Itoa(status), elapsed.Seconds())

		fields := []zap.Field{
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.String("route", route),
			zap.Int("status", status),
			zap.Duration("latency", elapsed),
			zap.String("client_ip", c.ClientIP()),
		}
		if len(c.Errors) > 0 {
			fields = append(fields, zap.String("errors", c.Errors.String()))
		}
		if status >= http.StatusInternalServerError {
			reqLogger.Error("http_request", fields...)
			return
		}
		reqLogger.Info("http_request", fields...)
	}
}

func recoveryMiddleware(logger *zap.Logger) gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered any) {
		logging.FromContext(c.Request.Context(), logger).Error("panic recovered",
			zap.Any("panic", recovered),
			zap.String("path", c.Request.URL.Path),
		)
		writeError(c, http.StatusInternalServerError, "internal server error")
	})
}

// authRequired resolves the bearer token to a user and stores it on the gin context.
func authRequired(users UserService) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c.GetHeader("Authorization"))
		if token == "" {
			writeError(c, http.StatusUnauthorized, "missing bearer token")
			return
		}
		u, err := users.LookupByToken(c.Request.Context(), token)
		if err != nil {
			writeError(c, http.StatusUnauthorized, "invalid or expired token")
			return
		}
		c.Set(userCtxKey, u)
		ctx := c.Request.Context()
		c.Request = c.Request.WithContext(logging.ContextWithLogger(ctx,
			logging.FromContext(ctx, nil).With(zap.String("user_id", u.ID))))
		c.Next()
	}
}

func adminOnly() gin.HandlerFunc {
	return func(c *gin.Context) {
		u := currentUser(c)
		if u == nil || !u.IsAdmin() {
			writeError(c, http.StatusForbidden, "admin role required")
			return
		}
		c.Next()
	}
}

// cartAccess lets a user act on their own cart; admins may act on any cart.
func cartAccess() gin.HandlerFunc {
	return func(c *gin.Context) {
		u := currentUser(c)
		if u == nil {
			writeError(c, http.StatusUnauthorized, "authentication required")
			return
		}
		if !u.IsAdmin() && u.CartID != c.Param("cid") {
			writeError(c, http.StatusForbidden, "cart does not belong to the current user")
			return
		}
		c.Next()
	}
}

// selfOrAdmin lets a user act on their own account through the :uid
// parameter; admins may act on any account.
func selfOrAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		u := currentUser(c)
		if u == nil {
			writeError(c, http.StatusUnauthorized, "authentication required")
			return
		}
		if !u.IsAdmin() && u.ID != c.Param("uid") {
			writeError(c, http.StatusForbidden, "account does not belong to the current user")
			return
		}
		c.Next()
	}
}

func currentUser(c *gin.Context) *domain.User {
	v, ok := c.Get(userCtxKey)
	if !ok {
		return nil
	}
	u, _ := v.(*domain.User)
	return u
}

func bearerToken(header string) string {
	parts := strings.SplitN(strings.TrimSpace(header), " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}
