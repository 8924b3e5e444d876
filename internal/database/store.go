package database

import (
	"context"
	"errors"
	"time"

	"github.com/sethvargo/go-retry"

	"github.com/AnshRaj112/devcode-backend/internal/models"
)

// UserStore persists User documents. Every write touches exactly one document
// and is atomic with respect to that document.
type UserStore interface {
	// Create inserts a new user. Returns a CONFLICT error when the email is taken.
	Create(ctx context.Context, user *models.User) (*models.User, error)

	// GetByID returns the user or a NOT_FOUND error.
	GetByID(ctx context.Context, id string) (*models.User, error)

	// GetByEmail returns the user owning the (already lower-cased) email or NOT_FOUND.
	GetByEmail(ctx context.Context, email string) (*models.User, error)

	// Update applies mutate to a fresh copy of the user and stores the result
	// only if no other write landed in between; lost races are retried with a
	// re-read. An error returned by mutate aborts the update and is passed through.
	Update(ctx context.Context, id string, mutate func(u *models.User) error) (*models.User, error)

	// Ping checks the backing store is reachable.
	Ping(ctx context.Context) error
}

// Compare-and-swap retry policy for Update. Jitter spreads writers that lost
// the same race so they do not collide again on the next attempt.
const (
	maxUpdateRetries    = 10
	updateBaseDelay     = 5 * time.Millisecond
	updateMaxDelay      = 200 * time.Millisecond
	updateJitterPercent = 50
)

var errVersionConflict = errors.New("user document changed concurrently")

func updateBackoff() retry.Backoff {
	b := retry.NewExponential(updateBaseDelay)
	b = retry.WithJitterPercent(updateJitterPercent, b)
	b = retry.WithCappedDuration(updateMaxDelay, b)
	return retry.WithMaxRetries(maxUpdateRetries, b)
}

// prepareNew fills in the fields owned by the store.
func prepareNew(user *models.User, now time.Time) *models.User {
	u := user.Clone()
	u.CreatedAt = now
	u.UpdatedAt = now
	u.Version = 1
	if u.Tokens == nil {
		u.Tokens = []string{}
	}
	if u.Projects == nil {
		u.Projects = []models.Project{}
	}
	return u
}
