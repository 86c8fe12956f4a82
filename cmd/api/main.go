package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"alphaflow-alerts/internal/application/alert"
	"alphaflow-alerts/internal/application/render"
	authinfra "alphaflow-alerts/internal/infrastructure/auth"
	"alphaflow-alerts/internal/infrastructure/config"
	"alphaflow-alerts/internal/infrastructure/logging"
	"alphaflow-alerts/internal/infrastructure/notify"
	httpapi "alphaflow-alerts/internal/interface/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfgPath := flag.String("config", "config.yaml", "path to config file")
	flag.Parse()

	cfg, err := config.LoadFromFile(*cfgPath)
	if err != nil {
		log.Fatalf("CRITICAL: load config failed: %v", err)
	}

	logger := logging.New(cfg.LogOptions())
	defer func() { _ = logger.Sync() }()

	if err := run(cfg, logger); err != nil {
		logger.Fatal("server stopped", zap.Error(err))
	}
}

// buildServer 依設定組出通知後端、警報服務與 HTTP server。
func buildServer(cfg config.Config, logger *zap.Logger) (*httpapi.Server, error) {
	dispatcher, err := notify.New(cfg.Notifier)
	if err != nil {
		return nil, err
	}
	free, pro := cfg.Channels()
	if free == "" && pro == "" {
		logger.Warn("no channel configured; /send will answer NO_CHANNEL", zap.String("platform", cfg.Notifier.Platform))
	}

	svc := alert.NewService(
		cfg.LevelConfig(),
		render.NewRenderer(cfg.RenderConfig()),
		alert.Router{Free: free, Pro: pro},
		dispatcher,
		logger.Named("alert"),
	)
	verifier := authinfra.NewWebhookVerifier(cfg.Auth.WebhookSecret, cfg.Auth.APIKeyHash)
	if !verifier.Enabled() {
		logger.Warn("webhook auth disabled: neither WEBHOOK_SECRET nor API_KEY_HASH is set")
	}
	return httpapi.NewServer(cfg, svc, verifier, logger.Named("http")), nil
}

func run(cfg config.Config, logger *zap.Logger) error {
	if logger.Core().Enabled(zap.DebugLevel) {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	apiServer, err := buildServer(cfg, logger)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:              cfg.HTTP.Addr,
		Handler:           apiServer.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logger.Info("starting HTTP server",
			zap.String("addr", cfg.HTTP.Addr),
			zap.String("platform", cfg.Notifier.Platform),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down HTTP server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
