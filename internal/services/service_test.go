package services

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/AnshRaj112/devcode-backend/internal/database"
	"github.com/AnshRaj112/devcode-backend/internal/mailer"
	"github.com/AnshRaj112/devcode-backend/internal/metrics"
	"github.com/AnshRaj112/devcode-backend/internal/models"
	"github.com/AnshRaj112/devcode-backend/pkg/utils"
)

// recordingNotifier captures messages instead of sending them.
type recordingNotifier struct {
	mu         sync.Mutex
	fired      []mailer.Message
	delivered  []mailer.Message
	deliverErr error
}

func (n *recordingNotifier) Fire(_ string, msg mailer.Message) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.fired = append(n.fired, msg)
}

func (n *recordingNotifier) Deliver(_ context.Context, _ string, msg mailer.Message) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.deliverErr != nil {
		return n.deliverErr
	}
	n.delivered = append(n.delivered, msg)
	return nil
}

func (n *recordingNotifier) lastDelivered() mailer.Message {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.delivered[len(n.delivered)-1]
}

type testEnv struct {
	svc      *Service
	store    *database.MemoryUserStore
	clock    *fakeClock
	issuer   *TokenIssuer
	notifier *recordingNotifier
	metrics  *metrics.Metrics
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	clock := newFakeClock()
	env := &testEnv{
		store:    database.NewMemoryUserStore(),
		clock:    clock,
		issuer:   newTestIssuer(t, clock),
		notifier: &recordingNotifier{},
		metrics:  metrics.New(),
	}
	env.svc = NewService(Deps{
		Users:           env.store,
		Hasher:          utils.Hasher{Cost: bcrypt.MinCost},
		Tokens:          env.issuer,
		Notifier:        env.notifier,
		Metrics:         env.metrics,
		Logger:          slog.New(slog.NewTextHandler(io.Discard, nil)),
		FrontendBaseURL: "http://localhost:3000/",
	})
	return env
}

// registerAndLogin creates ann@x.com and returns the user and a session token.
func (e *testEnv) registerAndLogin(t *testing.T) (*models.User, string) {
	t.Helper()
	ctx := context.Background()

	_, err := e.svc.Register(ctx, "ann", "ann@x.com", "secret1")
	require.NoError(t, err)

	res, err := e.svc.Login(ctx, "ann@x.com", "secret1")
	require.NoError(t, err)
	return res.User, res.Token
}
