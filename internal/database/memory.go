package database

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/sethvargo/go-retry"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/AnshRaj112/devcode-backend/internal/apperr"
	"github.com/AnshRaj112/devcode-backend/internal/models"
)

// MemoryUserStore keeps users in process memory. It follows the same
// compare-and-swap contract as MongoUserStore and is used for local runs
// and tests.
type MemoryUserStore struct {
	mu      sync.RWMutex
	byID    map[primitive.ObjectID]*models.User
	byEmail map[string]primitive.ObjectID
	now     func() time.Time

	// beforeSwap runs between read and swap inside Update. Tests use it to
	// force a lost race.
	beforeSwap func(id primitive.ObjectID)
}

// NewMemoryUserStore returns an empty store.
func NewMemoryUserStore() *MemoryUserStore {
	return &MemoryUserStore{
		byID:    make(map[primitive.ObjectID]*models.User),
		byEmail: make(map[string]primitive.ObjectID),
		now:     func() time.Time { return time.Now().UTC() },
	}
}

func (s *MemoryUserStore) Create(_ context.Context, user *models.User) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, taken := s.byEmail[user.Email]; taken {
		return nil, apperr.New(apperr.CodeConflict, "User already exists !")
	}

	u := prepareNew(user, s.now())
	if u.ID.IsZero() {
		u.ID = primitive.NewObjectID()
	}
	s.byID[u.ID] = u
	s.byEmail[u.Email] = u.ID
	return u.Clone(), nil
}

func (s *MemoryUserStore) GetByID(_ context.Context, id string) (*models.User, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, apperr.New(apperr.CodeNotFound, "User does not exist !")
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.byID[oid]
	if !ok {
		return nil, apperr.New(apperr.CodeNotFound, "User does not exist !")
	}
	return u.Clone(), nil
}

func (s *MemoryUserStore) GetByEmail(_ context.Context, email string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.byEmail[email]
	if !ok {
		return nil, apperr.New(apperr.CodeNotFound, "User does not exist !")
	}
	return s.byID[id].Clone(), nil
}

func (s *MemoryUserStore) Update(ctx context.Context, id string, mutate func(u *models.User) error) (*models.User, error) {
	var result *models.User

	err := retry.Do(ctx, updateBackoff(), func(ctx context.Context) error {
		current, err := s.GetByID(ctx, id)
		if err != nil {
			return err
		}

		next := current.Clone()
		if err := mutate(next); err != nil {
			return err
		}

		if s.beforeSwap != nil {
			s.beforeSwap(current.ID)
		}

		s.mu.Lock()
		defer s.mu.Unlock()

		stored, ok := s.byID[current.ID]
		if !ok {
			return apperr.New(apperr.CodeNotFound, "User does not exist !")
		}
		if stored.Version != current.Version {
			return retry.RetryableError(errVersionConflict)
		}
		if next.Email != stored.Email {
			if owner, taken := s.byEmail[next.Email]; taken && owner != stored.ID {
				return apperr.New(apperr.CodeConflict, "User already exists !")
			}
			delete(s.byEmail, stored.Email)
			s.byEmail[next.Email] = stored.ID
		}

		next.ID = stored.ID
		next.Version = stored.Version + 1
		next.UpdatedAt = s.now()
		s.byID[stored.ID] = next
		result = next.Clone()
		return nil
	})
	if err != nil {
		if errors.Is(err, errVersionConflict) {
			return nil, apperr.Storage("update_user", err)
		}
		return nil, err
	}
	return result, nil
}

func (s *MemoryUserStore) Ping(context.Context) error {
	return nil
}

// Len returns the number of stored users.
func (s *MemoryUserStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.byID)
}
