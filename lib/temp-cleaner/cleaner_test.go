package tempcleaner

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestClean(t *testing.T) {
	t.Run(`only stale candidate workspaces are removed`, func(t *testing.T) {
		dir := t.TempDir()
		old := time.Now().Add(-2 * time.Hour)
		for _, name := range []string{"candidate-1", "candidate-2", "other"} {
			require.Nil(t, os.MkdirAll(filepath.Join(dir, name), 0o755))
		}
		require.Nil(t, os.Chtimes(filepath.Join(dir, "candidate-1"), old, old))
		require.Nil(t, os.Chtimes(filepath.Join(dir, "other"), old, old))

		removed, err := Clean(context.Background(), dir, time.Hour, time.Now())
		require.Nil(t, err)
		require.Equal(t, 1, removed)
		require.NoDirExists(t, filepath.Join(dir, "candidate-1"))
		require.DirExists(t, filepath.Join(dir, "candidate-2"))
		require.DirExists(t, filepath.Join(dir, "other"))
	})
	t.Run(`missing directory is not an error`, func(t *testing.T) {
		removed, err := Clean(context.Background(), filepath.Join(t.TempDir(), "absent"), time.Hour, time.Now())
		require.Nil(t, err)
		require.Equal(t, 0, removed)
	})
}
