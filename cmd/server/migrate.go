package main

import (
	"context"
	"time"

	"github.com/samber/oops"
	"github.com/spf13/cobra"

	"github.com/AnshRaj112/devcode-backend/internal/database"
	"github.com/AnshRaj112/devcode-backend/internal/logging"
)

// NewMigrateCmd creates the migrate subcommand.
func NewMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Ensure MongoDB indexes",
		Long:  `Create the indexes the users collection relies on, including the unique e-mail index.`,
		RunE:  runMigrate,
	}
}

func runMigrate(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if cfg.UsesMemoryStore() {
		return oops.Code("CONFIG_INVALID").Errorf("migrate needs MONGODB_URI pointing at MongoDB, got %s", cfg.MongoURI)
	}

	logger := logging.Setup("devcode", version, cfg.LogFormat, cmd.ErrOrStderr())

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	cmd.Println("Connecting to database...")
	client, err := connectMongo(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer func() { _ = database.Disconnect(client) }()

	cmd.Println("Ensuring indexes...")
	if err := database.EnsureUserIndexes(ctx, client.Database(cfg.MongoDatabase)); err != nil {
		return oops.Code("MIGRATION_FAILED").With("operation", "ensure user indexes").Wrap(err)
	}

	cmd.Println("Migrations completed successfully")
	return nil
}
