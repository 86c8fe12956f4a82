package httpapi

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

func (s *Server) handleHealthz(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

func (s *Server) handlePing(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"success":   true,
		"message":   "pong",
		"timestamp": s.now().Unix(),
		"status":    "alive",
	})
}

func (s *Server) handleHealth(c *gin.Context) {
	platform := ""
	if s.svc != nil {
		platform = s.svc.Platform()
	}
	c.JSON(http.StatusOK, gin.H{
		"success":  true,
		"health":   "ok",
		"platform": platform,
		"time":     s.now().Format(time.RFC3339),
	})
}
