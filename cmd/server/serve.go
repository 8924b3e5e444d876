package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/samber/oops"
	"github.com/spf13/cobra"

	"github.com/AnshRaj112/devcode-backend/internal/handlers"
	"github.com/AnshRaj112/devcode-backend/internal/logging"
	"github.com/AnshRaj112/devcode-backend/internal/mailer"
	"github.com/AnshRaj112/devcode-backend/internal/metrics"
	"github.com/AnshRaj112/devcode-backend/internal/routes"
	"github.com/AnshRaj112/devcode-backend/internal/services"
	"github.com/AnshRaj112/devcode-backend/pkg/utils"
)

const shutdownTimeout = 15 * time.Second

// NewServeCmd creates the serve subcommand.
func NewServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API",
		Long:  `Start the HTTP API and serve until SIGINT or SIGTERM.`,
		RunE:  runServe,
	}
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		cmd.PrintErrln("Error:", err)
		return err
	}

	logger := logging.Setup("devcode", version, cfg.LogFormat, nil)

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	users, release, err := openUserStore(ctx, cfg, logger)
	if err != nil {
		logging.LogError(ctx, logger, "failed to open user store", err)
		return err
	}
	defer release()

	issuer, err := services.NewTokenIssuer(cfg.JWTSecret)
	if err != nil {
		return oops.Code("CONFIG_INVALID").Wrap(err)
	}

	m := metrics.New()
	dispatcher := mailer.NewDispatcher(newMailSink(cfg, logger), logger, m)

	svc := services.NewService(services.Deps{
		Users:           users,
		Hasher:          utils.NewHasher(),
		Tokens:          issuer,
		Notifier:        dispatcher,
		Metrics:         m,
		Logger:          logger,
		FrontendBaseURL: cfg.FrontendURL,
	})

	router := routes.NewRouter(routes.Options{
		Handler:        handlers.New(svc, users, logger, cfg.IsProduction()),
		Auth:           svc,
		Metrics:        m,
		Logger:         logger,
		AllowedOrigins: cfg.AllowedOrigins,
		AllowedHost:    cfg.AllowedHost,
		Production:     cfg.IsProduction(),
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("DevCode backend running", "port", cfg.Port, "env", cfg.Environment)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			logging.LogError(ctx, logger, "server failed", err)
			return oops.With("addr", srv.Addr).Wrap(err)
		}
	case <-ctx.Done():
		logger.Info("shutting down")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logging.LogError(shutdownCtx, logger, "graceful shutdown failed", err)
	}
	if err := dispatcher.Wait(shutdownCtx); err != nil {
		logging.LogError(shutdownCtx, logger, "pending emails not delivered", err)
	}

	logger.Info("server stopped")
	return nil
}
