// Package services holds the account, session, reset and project operations.
// Handlers call into a Service; the Service owns every rule about who may
// change what.
package services

import (
	"context"
	"log/slog"
	"strings"

	"github.com/AnshRaj112/devcode-backend/internal/database"
	"github.com/AnshRaj112/devcode-backend/internal/mailer"
	"github.com/AnshRaj112/devcode-backend/internal/metrics"
)

// PasswordHasher hashes and checks passwords.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Verify(password, hash string) bool
}

// Notifier sends e-mail either in the background or while the caller waits.
type Notifier interface {
	Fire(kind string, msg mailer.Message)
	Deliver(ctx context.Context, kind string, msg mailer.Message) error
}

// Deps are the collaborators of a Service.
type Deps struct {
	Users    database.UserStore
	Hasher   PasswordHasher
	Tokens   *TokenIssuer
	Notifier Notifier
	Metrics  *metrics.Metrics
	Logger   *slog.Logger

	// FrontendBaseURL prefixes reset links, e.g. http://localhost:3000.
	FrontendBaseURL string
}

type Service struct {
	users       database.UserStore
	hasher      PasswordHasher
	tokens      *TokenIssuer
	notifier    Notifier
	metrics     *metrics.Metrics
	logger      *slog.Logger
	frontendURL string
}

func NewService(d Deps) *Service {
	logger := d.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		users:       d.Users,
		hasher:      d.Hasher,
		tokens:      d.Tokens,
		notifier:    d.Notifier,
		metrics:     d.Metrics,
		logger:      logger,
		frontendURL: strings.TrimRight(d.FrontendBaseURL, "/"),
	}
}
