package discovery

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/assert"
)

func TestDiscoverFiltersAndSorts(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"zeta.py", "alpha.py", "readme.txt", "mid.py"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("#"), 0644))
	}
	require.NoError(t, os.Mkdir(filepath.Join(dir, "subdir.py"), 0755))

	apps, err := Discover(dir, ".py")
	require.NoError(t, err)

	names := make([]string, len(apps))
	for i, a := range apps {
		names[i] = a.Name
	}
	assert.Equal(t, []string{"alpha.py", "mid.py", "zeta.py"}, names)
}

func TestDiscoverPathsJoinDir(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "one.py"), []byte("#"), 0644))

	apps, err := Discover(dir, ".py")
	require.NoError(t, err)
	require.Len(t, apps, 1)
	assert.Equal(t, filepath.Join(dir, "one.py"), apps[0].Path)
}

func TestDiscoverMissingDir(t *testing.T) {
	_, err := Discover(filepath.Join(t.TempDir(), "does-not-exist"), ".py")
	assert.Error(t, err)
}

func TestDiscoverNoMatches(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0644))

	apps, err := Discover(dir, ".py")
	require.NoError(t, err)
	assert.Empty(t, apps)
}
