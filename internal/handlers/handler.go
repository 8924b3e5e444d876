package handlers

import (
	"context"
	"log/slog"

	"github.com/AnshRaj112/devcode-backend/internal/services"
)

// Pinger checks the backing store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Handler serves the DevCode HTTP API.
type Handler struct {
	svc    *services.Service
	store  Pinger
	logger *slog.Logger

	// secureCookies marks the session cookie Secure; on in production.
	secureCookies bool
}

func New(svc *services.Service, store Pinger, logger *slog.Logger, secureCookies bool) *Handler {
	return &Handler{
		svc:           svc,
		store:         store,
		logger:        logger,
		secureCookies: secureCookies,
	}
}
