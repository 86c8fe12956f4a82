package httpapi

import (
	"net/http"
	"time"

	"alphaflow-alerts/internal/application/alert"
	authinfra "alphaflow-alerts/internal/infrastructure/auth"
	"alphaflow-alerts/internal/infrastructure/config"
	"alphaflow-alerts/internal/infrastructure/metrics"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// Server 封裝 HTTP 路由與依賴。
type Server struct {
	engine   *gin.Engine
	svc      *alert.Service
	verifier *authinfra.WebhookVerifier
	limiter  *rate.Limiter
	logger   *zap.Logger
	now      func() time.Time
}

// NewServer 建立 API 伺服器。verifier 為 nil 時不驗證來源，rate_limit 為 0 時不限流。
func NewServer(cfg config.Config, svc *alert.Service, verifier *authinfra.WebhookVerifier, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	var limiter *rate.Limiter
	if cfg.HTTP.RateLimit > 0 {
		burst := cfg.HTTP.RateBurst
		if burst <= 0 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(cfg.HTTP.RateLimit), burst)
	}

	s := &Server{
		engine:   gin.New(),
		svc:      svc,
		verifier: verifier,
		limiter:  limiter,
		logger:   logger,
		now:      time.Now,
	}
	s.registerRoutes()
	return s
}

// Handler 回傳路由處理器，供 HTTP server 掛載。
func (s *Server) Handler() http.Handler {
	return s.engine
}

func (s *Server) registerRoutes() {
	s.engine.Use(gin.Recovery(), s.requestLogger())

	s.engine.GET("/healthz", s.handleHealthz)
	s.engine.GET("/api/ping", s.handlePing)
	s.engine.GET("/api/health", s.handleHealth)
	s.engine.GET("/metrics", gin.WrapH(metrics.Handler()))

	alerts := s.engine.Group("/", s.rateLimit(), s.requireWebhookAuth())
	alerts.POST("/send", s.handleSend)
	alerts.POST("/preview", s.handlePreview)
}
