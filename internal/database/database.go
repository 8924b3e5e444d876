package database

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Connect opens a MongoDB client and verifies it with a ping.
func Connect(ctx context.Context, mongoURI string, logger *slog.Logger) (*mongo.Client, error) {
	// Use longer timeout for Atlas connections
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	clientOptions := options.Client().ApplyURI(mongoURI)
	clientOptions.SetServerSelectionTimeout(10 * time.Second)

	logger.Info("connecting to MongoDB")
	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return nil, err
	}

	pingCtx, pingCancel := context.WithTimeout(ctx, 10*time.Second)
	defer pingCancel()

	if err := client.Ping(pingCtx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, err
	}

	logger.Info("connected to MongoDB")
	return client, nil
}

// Disconnect closes the client with a bounded timeout.
func Disconnect(client *mongo.Client) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return client.Disconnect(ctx)
}

// MaskURI hides the password of a connection string for logging.
func MaskURI(mongoURI string) string {
	schemeEnd := strings.Index(mongoURI, "://")
	at := strings.LastIndex(mongoURI, "@")
	if schemeEnd == -1 || at == -1 || at < schemeEnd {
		return mongoURI
	}
	creds := mongoURI[schemeEnd+3 : at]
	if idx := strings.Index(creds, ":"); idx != -1 {
		return mongoURI[:schemeEnd+3] + creds[:idx] + ":***" + mongoURI[at:]
	}
	return mongoURI
}
