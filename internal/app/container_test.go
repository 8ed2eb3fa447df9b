package app

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/runoshun/habit/internal/domain"
	"github.com/runoshun/habit/internal/infra/gitstore"
	"github.com/runoshun/habit/internal/infra/jsonstore"
	"github.com/runoshun/habit/internal/infra/locker"
	"github.com/runoshun/habit/internal/infra/sqlitestore"
)

func TestResolveDataDir(t *testing.T) {
	t.Run("flag wins", func(t *testing.T) {
		t.Setenv(EnvHome, "/env/habit")
		dir, err := ResolveDataDir("/flag/habit")
		require.NoError(t, err)
		assert.Equal(t, "/flag/habit", dir)
	})

	t.Run("HABIT_HOME", func(t *testing.T) {
		t.Setenv(EnvHome, "/env/habit")
		dir, err := ResolveDataDir("")
		require.NoError(t, err)
		assert.Equal(t, "/env/habit", dir)
	})

	t.Run("XDG_DATA_HOME", func(t *testing.T) {
		t.Setenv(EnvHome, "")
		t.Setenv("XDG_DATA_HOME", "/xdg")
		dir, err := ResolveDataDir("")
		require.NoError(t, err)
		assert.Equal(t, filepath.Join("/xdg", "habit"), dir)
	})
}

func TestOpenStore(t *testing.T) {
	dataDir := t.TempDir()

	jsonStore, err := OpenStore(domain.StoreJSON, dataDir, "")
	require.NoError(t, err)
	assert.IsType(t, &jsonstore.Store{}, jsonStore)

	sqlStore, err := OpenStore(domain.StoreSQLite, dataDir, "")
	require.NoError(t, err)
	assert.IsType(t, &sqlitestore.Store{}, sqlStore)
	require.NoError(t, sqlStore.(*sqlitestore.Store).Close())

	gitStore, err := OpenStore(domain.StoreGit, dataDir, "habit")
	require.NoError(t, err)
	assert.IsType(t, &gitstore.Store{}, gitStore)

	_, err = OpenStore("redis", dataDir, "")
	assert.ErrorIs(t, err, domain.ErrInvalidStore)
}

func TestNewLocker(t *testing.T) {
	assert.IsType(t, &locker.FileLocker{}, NewLocker(domain.StoreJSON, t.TempDir()))
	assert.IsType(t, &locker.KeyedMutex{}, NewLocker(domain.StoreSQLite, t.TempDir()))
	assert.IsType(t, &locker.KeyedMutex{}, NewLocker(domain.StoreGit, t.TempDir()))
}

func TestNew_UsesDataDirConfig(t *testing.T) {
	// Setup
	dataDir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	content := "[rollover]\nstrategy = \"reset\"\ntimezone = \"UTC\"\n\n[store]\nbackend = \"sqlite\"\n"
	require.NoError(t, os.WriteFile(domain.RepoConfigPath(dataDir), []byte(content), 0o600))

	// Execute
	c, err := New(dataDir)

	// Assert
	require.NoError(t, err)
	defer func() { _ = c.Close() }()
	assert.Equal(t, domain.StrategyReset, c.Strategy())
	assert.Equal(t, "UTC", c.Location.String())
	assert.IsType(t, &sqlitestore.Store{}, c.Store)
	assert.IsType(t, &locker.KeyedMutex{}, c.Locker)
}

func TestNew_InvalidConfig(t *testing.T) {
	dataDir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	require.NoError(t, os.WriteFile(domain.RepoConfigPath(dataDir), []byte("[log]\nlevel = \"loud\"\n"), 0o600))

	_, err := New(dataDir)

	assert.Error(t, err)
}
