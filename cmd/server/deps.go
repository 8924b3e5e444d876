package main

import (
	"context"
	"log/slog"

	"github.com/samber/oops"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/AnshRaj112/devcode-backend/internal/config"
	"github.com/AnshRaj112/devcode-backend/internal/database"
	"github.com/AnshRaj112/devcode-backend/internal/mailer"
)

// loadConfig reads the env file and the environment and validates the result.
func loadConfig() (*config.Config, error) {
	if err := config.LoadEnvFile(envFile); err != nil {
		return nil, oops.Code("CONFIG_INVALID").With("operation", "load env file").Wrap(err)
	}
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		return nil, oops.Code("CONFIG_INVALID").Wrap(err)
	}
	return cfg, nil
}

// openUserStore returns the configured store and a function releasing it.
func openUserStore(ctx context.Context, cfg *config.Config, logger *slog.Logger) (database.UserStore, func(), error) {
	if cfg.UsesMemoryStore() {
		logger.Warn("using in-memory user store, data is lost on restart")
		return database.NewMemoryUserStore(), func() {}, nil
	}

	logger.Info("MongoDB URI", "uri", database.MaskURI(cfg.MongoURI))
	client, err := database.Connect(ctx, cfg.MongoURI, logger)
	if err != nil {
		return nil, nil, oops.Code("DB_CONNECT_FAILED").With("operation", "connect to database").Wrap(err)
	}

	db := client.Database(cfg.MongoDatabase)
	if err := database.EnsureUserIndexes(ctx, db); err != nil {
		logger.Warn("failed to ensure MongoDB user indexes", "error", err)
	} else {
		logger.Info("MongoDB user indexes ensured")
	}

	release := func() {
		if err := database.Disconnect(client); err != nil {
			logger.Error("disconnect MongoDB", "error", err)
		}
	}
	return database.NewMongoUserStore(db), release, nil
}

// connectMongo is used by commands that need the raw database.
func connectMongo(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*mongo.Client, error) {
	client, err := database.Connect(ctx, cfg.MongoURI, logger)
	if err != nil {
		return nil, oops.Code("DB_CONNECT_FAILED").With("operation", "connect to database").Wrap(err)
	}
	return client, nil
}

// newMailSink picks SMTP when credentials are configured, else logs mail.
func newMailSink(cfg *config.Config, logger *slog.Logger) mailer.Sink {
	if !cfg.SMTPConfigured() {
		logger.Warn("DEVCODE_EMAIL or DEVCODE_EMAIL_PASSWORD not set, emails will only be logged")
		return mailer.NewLogSink(logger)
	}
	return mailer.NewSMTPSink(mailer.SMTPConfig{
		Host:     cfg.SMTPHost,
		Port:     cfg.SMTPPort,
		Email:    cfg.SMTPEmail,
		Password: cfg.SMTPPassword,
		FromName: "DevCode",
	})
}
