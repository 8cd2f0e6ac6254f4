package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"pricelist-service/internal/config"
	serverhttp "pricelist-service/server/http"
)

func main() {
	cfg := config.Load()
	logger := config.SetupLogger(cfg)

	deps := serverhttp.NewDeps(cfg, logger)
	if !deps.AIEnabled {
		logger.Warn().Msg("AI_API_KEY not set: PDF/DOCX/TXT uploads will be rejected with 503")
	}
	r := serverhttp.NewRouter(cfg, logger, deps)

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}
	logger.Info().
		Str("addr", cfg.Addr()).
		Int("max_upload_mb", cfg.MaxUploadMB).
		Bool("ai", deps.AIEnabled).
		Bool("webhook", cfg.SendWebhookURL != "").
		Msg("server starting")

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("listen")
		}
	}()

	// graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit
	logger.Info().Msg("server shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Shutdown(ctx)
	logger.Info().Msg("bye")
}
