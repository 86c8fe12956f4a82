package httpapi

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const ctxTokenSource = "tokenSource"

// requireWebhookAuth 驗證 Bearer token 或 X-API-Key，token 內的 source 會存入 context。
func (s *Server) requireWebhookAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !s.verifier.Enabled() {
			c.Next()
			return
		}
		source, err := s.verifier.Verify(c.GetHeader("Authorization"), c.GetHeader("X-API-Key"))
		if err != nil {
			s.logger.Warn("webhook rejected",
				zap.String("path", c.Request.URL.Path),
				zap.String("client_ip", c.ClientIP()),
				zap.Error(err),
			)
			writeError(c, http.StatusUnauthorized, errCodeUnauthorized, "unauthorized")
			return
		}
		if source != "" {
			c.Set(ctxTokenSource, source)
		}
		c.Next()
	}
}

func (s *Server) rateLimit() gin.HandlerFunc {
	return func(c *gin.Context) {
		if s.limiter != nil && !s.limiter.Allow() {
			writeError(c, http.StatusTooManyRequests, errCodeRateLimited, "too many requests")
			return
		}
		c.Next()
	}
}

func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		raw := c.Request.URL.RawQuery

		c.Next()

		if raw != "" {
			path = path + "?" + raw
		}
		s.logger.Info("http request",
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
			zap.String("method", c.Request.Method),
			zap.String("path", path),
			zap.String("client_ip", c.ClientIP()),
		)
	}
}
