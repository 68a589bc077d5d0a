package core

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPaths(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	ResetPaths()
	t.Cleanup(ResetPaths)

	assert.Equal(t, home, HomeDir())
	assert.Equal(t, filepath.Join(home, ".seek"), DataDir())
	assert.Equal(t, filepath.Join(home, ".seek", "seek.log"), LogFile())
	assert.Equal(t, filepath.Join(home, ".seek", "history.db"), HistoryFile())
	assert.Equal(t, filepath.Join(home, ".seek", "token"), TokenFile())
	assert.Equal(t, filepath.Join(home, ".seek", "latest_version.txt"), LatestVersionFile())
	assert.Equal(t, filepath.Join(home, ".seek", "version_marker"), VersionMarkerFile())

	// The data directory is created on first access.
	info, err := os.Stat(DataDir())
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}
