package prefs_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skycast/skycast/internal/prefs"
)

func newSQLiteRepo(t *testing.T) *prefs.SQLiteRepository {
	t.Helper()
	repo, err := prefs.NewSQLiteRepository(filepath.Join(t.TempDir(), "prefs.db"))
	require.NoError(t, err)
	t.Cleanup(func() { repo.Close() })
	return repo
}

func TestSQLiteRepository_GetMissingKey(t *testing.T) {
	repo := newSQLiteRepo(t)

	_, ok, err := repo.Get(context.Background(), "absent")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestSQLiteRepository_SetAndGet(t *testing.T) {
	repo := newSQLiteRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.Set(ctx, "k", []byte(`{"a":1}`)))

	value, ok, err := repo.Get(ctx, "k")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, []byte(`{"a":1}`), value)
}

func TestSQLiteRepository_SetOverwrites(t *testing.T) {
	repo := newSQLiteRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.Set(ctx, "k", []byte("old")))
	require.NoError(t, repo.Set(ctx, "k", []byte("new")))

	value, ok, err := repo.Get(ctx, "k")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, []byte("new"), value)
}

func TestSQLiteRepository_Delete(t *testing.T) {
	repo := newSQLiteRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.Set(ctx, "k", []byte("v")))
	require.NoError(t, repo.Delete(ctx, "k"))

	_, ok, err := repo.Get(ctx, "k")
	require.NoError(t, err)
	assert.False(t, ok)

	// Deleting an absent key is not an error.
	assert.NoError(t, repo.Delete(ctx, "k"))
}

func TestSQLiteRepository_PersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prefs.db")
	ctx := context.Background()

	repo, err := prefs.NewSQLiteRepository(path)
	require.NoError(t, err)
	require.NoError(t, repo.Set(ctx, "k", []byte("v")))
	require.NoError(t, repo.Close())

	reopened, err := prefs.NewSQLiteRepository(path)
	require.NoError(t, err)
	defer reopened.Close()

	value, ok, err := reopened.Get(ctx, "k")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, []byte("v"), value)
}

func TestSQLiteRepository_BacksPrefsService(t *testing.T) {
	repo := newSQLiteRepo(t)
	service := prefs.NewService(prefs.ServiceConfig{
		Repository: repo,
		Logger:     zerolog.Nop(),
	})
	ctx := context.Background()

	require.NoError(t, service.AddFavorite(ctx, loc(1)))

	favorites, err := service.Favorites(ctx)
	require.NoError(t, err)
	require.Len(t, favorites, 1)
	assert.Equal(t, loc(1).ID, favorites[0].ID)
}
