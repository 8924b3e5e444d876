package database

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AnshRaj112/devcode-backend/internal/apperr"
	"github.com/AnshRaj112/devcode-backend/internal/models"
)

// runUserStoreContract exercises the behaviour every UserStore must share.
func runUserStoreContract(t *testing.T, newStore func(t *testing.T) UserStore) {
	t.Helper()

	t.Run("create assigns id and version", func(t *testing.T) {
		store := newStore(t)
		ctx := context.Background()

		u, err := store.Create(ctx, &models.User{UserName: "Ann", Email: "ann@x.com", PasswordHash: "h"})
		require.NoError(t, err)
		assert.False(t, u.ID.IsZero())
		assert.Equal(t, int64(1), u.Version)
		assert.Empty(t, u.Tokens)
		assert.Empty(t, u.Projects)

		got, err := store.GetByID(ctx, u.ID.Hex())
		require.NoError(t, err)
		assert.Equal(t, "ann@x.com", got.Email)
		assert.Equal(t, "h", got.PasswordHash)
	})

	t.Run("duplicate email is a conflict", func(t *testing.T) {
		store := newStore(t)
		ctx := context.Background()

		_, err := store.Create(ctx, &models.User{UserName: "Ann", Email: "ann@x.com"})
		require.NoError(t, err)

		_, err = store.Create(ctx, &models.User{UserName: "Other", Email: "ann@x.com"})
		require.Error(t, err)
		assert.True(t, apperr.Is(err, apperr.CodeConflict), "got %v", err)
	})

	t.Run("missing users are not found", func(t *testing.T) {
		store := newStore(t)
		ctx := context.Background()

		_, err := store.GetByEmail(ctx, "nobody@x.com")
		assert.True(t, apperr.Is(err, apperr.CodeNotFound))

		_, err = store.GetByID(ctx, "not-an-object-id")
		assert.True(t, apperr.Is(err, apperr.CodeNotFound))

		_, err = store.GetByID(ctx, "65f1a2b3c4d5e6f708091a2b")
		assert.True(t, apperr.Is(err, apperr.CodeNotFound))
	})

	t.Run("update bumps version and persists", func(t *testing.T) {
		store := newStore(t)
		ctx := context.Background()

		u, err := store.Create(ctx, &models.User{UserName: "Ann", Email: "ann@x.com"})
		require.NoError(t, err)

		updated, err := store.Update(ctx, u.ID.Hex(), func(u *models.User) error {
			u.Tokens = append(u.Tokens, "tok-1")
			return nil
		})
		require.NoError(t, err)
		assert.Equal(t, int64(2), updated.Version)

		got, err := store.GetByID(ctx, u.ID.Hex())
		require.NoError(t, err)
		assert.Equal(t, []string{"tok-1"}, got.Tokens)
	})

	t.Run("mutate error aborts the write", func(t *testing.T) {
		store := newStore(t)
		ctx := context.Background()

		u, err := store.Create(ctx, &models.User{UserName: "Ann", Email: "ann@x.com"})
		require.NoError(t, err)

		_, err = store.Update(ctx, u.ID.Hex(), func(u *models.User) error {
			u.UserName = "changed"
			return apperr.New(apperr.CodeForbidden, "nope")
		})
		assert.True(t, apperr.Is(err, apperr.CodeForbidden))

		got, err := store.GetByID(ctx, u.ID.Hex())
		require.NoError(t, err)
		assert.Equal(t, "Ann", got.UserName)
		assert.Equal(t, int64(1), got.Version)
	})

	t.Run("update to a taken email is a conflict", func(t *testing.T) {
		store := newStore(t)
		ctx := context.Background()

		_, err := store.Create(ctx, &models.User{UserName: "Ann", Email: "ann@x.com"})
		require.NoError(t, err)
		bob, err := store.Create(ctx, &models.User{UserName: "Bob", Email: "bob@x.com"})
		require.NoError(t, err)

		_, err = store.Update(ctx, bob.ID.Hex(), func(u *models.User) error {
			u.Email = "ann@x.com"
			return nil
		})
		assert.True(t, apperr.Is(err, apperr.CodeConflict), "got %v", err)
	})

	t.Run("concurrent appends are all kept", func(t *testing.T) {
		store := newStore(t)
		ctx := context.Background()

		u, err := store.Create(ctx, &models.User{UserName: "Ann", Email: "ann@x.com"})
		require.NoError(t, err)

		const writers = 4
		var wg sync.WaitGroup
		errs := make(chan error, writers)
		for i := 0; i < writers; i++ {
			wg.Add(1)
			go func(n int) {
				defer wg.Done()
				_, err := store.Update(ctx, u.ID.Hex(), func(u *models.User) error {
					u.Tokens = append(u.Tokens, string(rune('a'+n)))
					return nil
				})
				errs <- err
			}(i)
		}
		wg.Wait()
		close(errs)

		var succeeded int
		for err := range errs {
			if err == nil {
				succeeded++
			}
		}

		got, err := store.GetByID(ctx, u.ID.Hex())
		require.NoError(t, err)
		assert.Len(t, got.Tokens, succeeded)
		assert.Equal(t, int64(1+succeeded), got.Version)
	})
}
