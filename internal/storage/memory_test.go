package storage

import (
	"context"
	"testing"
	"time"

	"github.com/InQaaaaGit/usersvc.git/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func testUser(id, email string) models.User {
	return models.User{
		ID:        id,
		Name:      "User " + id,
		Email:     email,
		CreatedAt: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

func TestMemoryStorage_SaveAndGet(t *testing.T) {
	storage := NewMemoryStorage(zap.NewNop())
	ctx := context.Background()

	u := testUser("1", "one@example.com")
	require.NoError(t, storage.Save(ctx, u))

	got, err := storage.Get(ctx, "1")
	require.NoError(t, err)
	assert.Equal(t, u, got)

	got, err = storage.GetByEmail(ctx, "one@example.com")
	require.NoError(t, err)
	assert.Equal(t, u, got)
}

func TestMemoryStorage_NotFound(t *testing.T) {
	storage := NewMemoryStorage(zap.NewNop())
	ctx := context.Background()

	_, err := storage.Get(ctx, "missing")
	assert.ErrorIs(t, err, ErrUserNotFound)

	_, err = storage.GetByEmail(ctx, "missing@example.com")
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestMemoryStorage_EmailConflict(t *testing.T) {
	storage := NewMemoryStorage(zap.NewNop())
	ctx := context.Background()

	require.NoError(t, storage.Save(ctx, testUser("1", "same@example.com")))
	err := storage.Save(ctx, testUser("2", "same@example.com"))
	assert.ErrorIs(t, err, ErrEmailConflict)

	// повторное сохранение того же пользователя не конфликт
	assert.NoError(t, storage.Save(ctx, testUser("1", "same@example.com")))
}

func TestMemoryStorage_UpdateEmailReleasesOld(t *testing.T) {
	storage := NewMemoryStorage(zap.NewNop())
	ctx := context.Background()

	require.NoError(t, storage.Save(ctx, testUser("1", "old@example.com")))
	require.NoError(t, storage.Save(ctx, testUser("1", "new@example.com")))

	_, err := storage.GetByEmail(ctx, "old@example.com")
	assert.ErrorIs(t, err, ErrUserNotFound)
	assert.NoError(t, storage.Save(ctx, testUser("2", "old@example.com")))
}

func TestMemoryStorage_ListKeepsOrder(t *testing.T) {
	storage := NewMemoryStorage(zap.NewNop())
	ctx := context.Background()

	users, err := storage.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, users)

	for _, id := range []string{"c", "a", "b"} {
		require.NoError(t, storage.Save(ctx, testUser(id, id+"@example.com")))
	}

	users, err = storage.List(ctx)
	require.NoError(t, err)
	require.Len(t, users, 3)
	assert.Equal(t, "c", users[0].ID)
	assert.Equal(t, "a", users[1].ID)
	assert.Equal(t, "b", users[2].ID)
}

func TestMemoryStorage_CheckConnection(t *testing.T) {
	storage := NewMemoryStorage(zap.NewNop())
	assert.NoError(t, storage.CheckConnection(context.Background()))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, storage.CheckConnection(ctx), context.Canceled)
	assert.NoError(t, storage.Close())
}
