package api

import (
	"crypto/subtle"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
)

const (
	UserIDHeader      = "X-User-ID"
	ProxySecretHeader = "X-Proxy-Secret"
	userIDContext     = "userID"
)

// identify reads the user set by the fronting auth proxy. No user header
// means a guest session. When proxySecret is set, requests that do not carry
// it are rejected before any user id is read.
func identify(proxySecret string) gin.HandlerFunc {
	if proxySecret == "" {
		slog.Warn("[API] No proxy secret configured, trusting " + UserIDHeader + " as sent")
	}
	return func(c *gin.Context) {
		if proxySecret != "" &&
			subtle.ConstantTimeCompare([]byte(c.GetHeader(ProxySecretHeader)), []byte(proxySecret)) != 1 {
			fail(c, http.StatusUnauthorized, "unauthorized")
			return
		}
		c.Set(userIDContext, strings.TrimSpace(c.GetHeader(UserIDHeader)))
		c.Next()
	}
}

func userID(c *gin.Context) string {
	return c.GetString(userIDContext)
}

func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		attrs := []any{
			slog.String("method", c.Request.Method),
			slog.String("path", c.FullPath()),
			slog.Int("status", c.Writer.Status()),
			slog.Duration("latency", time.Since(start)),
		}
		if len(c.Errors) > 0 {
			attrs = append(attrs, slog.String("error", c.Errors.String()))
			slog.Error("[API] Request failed", attrs...)
			return
		}
		slog.Info("[API] Request handled", attrs...)
	}
}
