package commands

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fivetwenty-io/directus/internal/auth"
	"github.com/fivetwenty-io/directus/internal/constants"
	"github.com/fivetwenty-io/directus/pkg/directus"
	"github.com/fivetwenty-io/directus/pkg/store"
)

var _ store.Store = (*FileStore)(nil)

func TestFileStore(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	path := filepath.Join(t.TempDir(), constants.CLISessionFile)
	fileStore := NewFileStore(path)

	value, ok, err := fileStore.Get(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Empty(t, value)

	require.NoError(t, fileStore.Set(ctx, "cli_directus_access", "A", 0))

	value, ok, err = fileStore.Get(ctx, "cli_directus_access")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "A", value)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(constants.ConfigFilePerm), info.Mode().Perm())

	reopened := NewFileStore(path)

	value, ok, err = reopened.Get(ctx, "cli_directus_access")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "A", value)

	require.NoError(t, reopened.Unset(ctx, "cli_directus_access"))
	require.NoError(t, reopened.Unset(ctx, "cli_directus_access"))

	_, ok, err = fileStore.Get(ctx, "cli_directus_access")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestFileStore_Expiry(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)

	fileStore := NewFileStore(filepath.Join(t.TempDir(), "session.yml"))
	fileStore.now = func() time.Time { return now }

	require.NoError(t, fileStore.Set(ctx, "key", "value", time.Minute))

	_, ok, err := fileStore.Get(ctx, "key")
	require.NoError(t, err)
	assert.True(t, ok)

	now = now.Add(time.Minute)

	_, ok, err = fileStore.Get(ctx, "key")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestFileStore_Errors(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "session.yml")
	fileStore := NewFileStore(path)

	require.ErrorIs(t, fileStore.Set(ctx, "", "value", 0), store.ErrEmptyKey)

	require.NoError(t, os.WriteFile(path, []byte("not: [valid"), constants.ConfigFilePerm))

	_, _, err := fileStore.Get(ctx, "key")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parsing session file")
}

func TestFileStore_HoldsSession(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "session.yml")
	expiresAt := time.Now().Add(time.Hour).Truncate(time.Second)

	writer := auth.NewSessionTokenManager(NewFileStore(path), "cli_", nil)
	require.NoError(t, writer.StoreToken(ctx, &auth.Token{AccessToken: "A", RefreshToken: "R", ExpiresAt: expiresAt}))

	reader := auth.NewSessionTokenManager(NewFileStore(path), "cli_", nil)

	session, err := reader.Session(ctx)
	require.NoError(t, err)
	require.NotNil(t, session)
	assert.Equal(t, "A", session.AccessToken)
	assert.Equal(t, "R", session.RefreshToken)
	assert.True(t, expiresAt.Equal(session.ExpiresAt))

	state, err := reader.State(ctx)
	require.NoError(t, err)
	assert.Equal(t, directus.StateAuthenticated, state)

	require.NoError(t, reader.Clear(ctx))

	state, err = writer.State(ctx)
	require.NoError(t, err)
	assert.Equal(t, directus.StateUnauthenticated, state)
}
