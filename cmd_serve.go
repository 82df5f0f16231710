package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/Mr-Alvaro/Crediticio-System/config"
	httpLayer "github.com/Mr-Alvaro/Crediticio-System/http"
	"github.com/Mr-Alvaro/Crediticio-System/metrics"
	"github.com/Mr-Alvaro/Crediticio-System/service"
)

func newServeCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Inicia la API HTTP",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(*configPath)
			if err != nil {
				return err
			}
			return serve(cmd.Context(), cfg)
		},
	}
}

func serve(ctx context.Context, cfg *config.Config) error {
	logger := newLogger(cfg.Log, os.Stderr)

	in, err := openInfra(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := in.Close(); err != nil {
			logger.Error().Err(err).Msg("Error cerrando conexiones")
		}
	}()

	m := metrics.New()
	recorder := service.NewAsyncRecorder(logger, m, cfg.Recorder.Timeout, in.sinks()...)
	assessments := service.NewAssessmentService(newPredictor(cfg.Classifier, logger), recorder, m, logger)

	rateLimiter := httpLayer.NewRateLimiter(cfg.RateLimit.RequestsPerSecond, cfg.RateLimit.Burst)
	defer rateLimiter.Stop()

	router := httpLayer.NewRouter(httpLayer.RouterDeps{
		Logger:      logger,
		Assessments: httpLayer.NewAssessmentHandler(assessments),
		History:     httpLayer.NewHistoryHandler(in.history, in.documents),
		Health:      httpLayer.NewHealthHandler(in.checks),
		Metrics:     m.Handler(),
		RateLimiter: rateLimiter,
	})

	server := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.Info().Str("addr", cfg.Server.Addr).Msg("API corriendo")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	select {
	case err := <-serverErr:
		logger.Error().Err(err).Msg("Error iniciando el servidor")
		return err
	case <-quit:
		logger.Info().Msg("Apagando el servidor...")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("Error durante el apagado")
	}
	if err := recorder.Close(shutdownCtx); err != nil {
		logger.Warn().Err(err).Msg("Escrituras pendientes sin completar")
	}

	logger.Info().Msg("Servidor detenido")
	return nil
}
