package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

const (
	operatorIDKey = "operatorId"
	corsMaxAge    = 12 * time.Hour
)

// bearerToken extracts the token from an "Authorization: Bearer <token>"
// header. The scheme is matched case-insensitively.
func bearerToken(header string) (string, bool) {
	scheme, token, ok := strings.Cut(strings.TrimSpace(header), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

// requireOperator rejects requests without a valid bearer token and stores
// the operator ID for later handlers.
func (h *Handler) requireOperator(c *gin.Context) {
	header := c.GetHeader("Authorization")
	if header == "" {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing Authorization header"})
		return
	}
	token, ok := bearerToken(header)
	if !ok {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid Authorization header format"})
		return
	}
	id, err := h.services.ParseToken(token)
	if err != nil {
		if h.log != nil {
			h.log.Debugw("token_rejected", "path", c.FullPath(), "err", err)
		}
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid or expired token"})
		return
	}
	c.Set(operatorIDKey, id)
	c.Next()
}

// operatorID is 0 on routes outside requireOperator.
func operatorID(c *gin.Context) int {
	return c.GetInt(operatorIDKey)
}

// accessLog writes one line per request after it completes.
func (h *Handler) accessLog(c *gin.Context) {
	start := time.Now()
	c.Next()

	kv := []any{
		"method", c.Request.Method,
		"path", c.Request.URL.Path,
		"status", c.Writer.Status(),
		"latency", time.Since(start),
	}
	if id := operatorID(c); id != 0 {
		kv = append(kv, "operator", id)
	}
	if c.Writer.Status() >= http.StatusInternalServerError {
		h.log.Warnw("http_request", kv...)
		return
	}
	h.log.Debugw("http_request", kv...)
}

// corsMiddleware lets the browser dashboard call the API from its own origin.
// A "*" entry allows any origin without credentials.
func (h *Handler) corsMiddleware() gin.HandlerFunc {
	cfg := cors.Config{
		AllowOrigins:     h.allowOrigins,
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		AllowCredentials: true,
		MaxAge:           corsMaxAge,
	}
	for _, o := range h.allowOrigins {
		if o == "*" {
			cfg.AllowOrigins = nil
			cfg.AllowAllOrigins = true
			cfg.AllowCredentials = false
			break
		}
	}
	return cors.New(cfg)
}
