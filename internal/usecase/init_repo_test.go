package usecase_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/runoshun/habit/internal/testutil"
	"github.com/runoshun/habit/internal/usecase"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitRepo_Execute(t *testing.T) {
	t.Run("creates directories and initializes store", func(t *testing.T) {
		dataDir := filepath.Join(t.TempDir(), "habit")
		storeInit := &testutil.MockStoreInitializer{}
		uc := usecase.NewInitRepo(storeInit)

		out, err := uc.Execute(context.Background(), usecase.InitRepoInput{DataDir: dataDir})

		require.NoError(t, err)
		assert.Equal(t, dataDir, out.DataDir)
		assert.False(t, out.AlreadyInitialized)
		assert.True(t, storeInit.InitCalled)
		assert.DirExists(t, filepath.Join(dataDir, "logs"))
		assert.DirExists(t, filepath.Join(dataDir, "locks"))
	})

	t.Run("reports already initialized", func(t *testing.T) {
		storeInit := &testutil.MockStoreInitializer{Initialized: true}
		uc := usecase.NewInitRepo(storeInit)

		out, err := uc.Execute(context.Background(), usecase.InitRepoInput{DataDir: t.TempDir()})

		require.NoError(t, err)
		assert.True(t, out.AlreadyInitialized)
	})

	t.Run("store error", func(t *testing.T) {
		storeInit := &testutil.MockStoreInitializer{InitErr: errors.New("permission denied")}
		uc := usecase.NewInitRepo(storeInit)

		_, err := uc.Execute(context.Background(), usecase.InitRepoInput{DataDir: t.TempDir()})

		require.Error(t, err)
		assert.Contains(t, err.Error(), "initialize task store")
	})
}
