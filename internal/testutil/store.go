// Package testutil общие помощники для тестов поверх SQLite хранилища.
package testutil

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/rajivgeraev/flippy-swaps/internal/db/sqlite"
	"github.com/rajivgeraev/flippy-swaps/internal/models"
)

// OpenStore открывает хранилище во временном каталоге теста
func OpenStore(t *testing.T) *sqlite.Store {
	t.Helper()

	store, err := sqlite.Open(filepath.Join(t.TempDir(), "flippy.db"))
	require.NoError(t, err, "open sqlite store")
	t.Cleanup(func() {
		_ = store.Close()
	})
	return store
}

// UserStore минимальный контракт для создания пользователей
type UserStore interface {
	EnsureUser(ctx context.Context, identity models.Identity) (*models.User, error)
}

// ItemStore минимальный контракт для создания вещей
type ItemStore interface {
	CreateItem(ctx context.Context, item *models.Item) error
}

// SeedUser создает пользователя с указанным ID
func SeedUser(t *testing.T, store UserStore, id string) *models.User {
	t.Helper()

	user, err := store.EnsureUser(context.Background(), models.Identity{
		ID:        id,
		Email:     id + "@example.com",
		FirstName: id,
	})
	require.NoError(t, err, "seed user %s", id)
	return user
}

// SeedItem создает доступную вещь владельца
func SeedItem(t *testing.T, store ItemStore, ownerID, title string) *models.Item {
	t.Helper()

	item := &models.Item{
		ID:          uuid.NewString(),
		UserID:      ownerID,
		Title:       title,
		Description: title + " description",
		Condition:   models.ConditionGood,
		Category:    "Clothing",
		Tags:        []string{},
		Images:      []string{},
		IsAvailable: true,
		CreatedAt:   time.Now().UTC(),
	}
	require.NoError(t, store.CreateItem(context.Background(), item), "seed item %s", title)
	return item
}
