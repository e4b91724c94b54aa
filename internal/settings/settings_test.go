package settings

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadEmptyPathReturnsDefaults(t *testing.T) {
	s, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Defaults(), s)
}

func TestLoadOverlaysFileOntoDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "chatserver.conf")
	contents := "read-chunk-bytes = 4096\nidle-write-deadline = 30s\nlog-level = debug\n"
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o600))

	s, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 4096, s.ReadChunkBytes)
	assert.Equal(t, 30*time.Second, s.IdleWriteDeadline)
	assert.Equal(t, "debug", s.LogLevel)
}

func TestLoadRejectsInvalidReadChunkBytes(t *testing.T) {
	path := filepath.Join(t.TempDir(), "chatserver.conf")
	require.NoError(t, os.WriteFile(path, []byte("read-chunk-bytes = not-a-number\n"), 0o600))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestLoadRejectsInvalidIdleWriteDeadline(t *testing.T) {
	path := filepath.Join(t.TempDir(), "chatserver.conf")
	require.NoError(t, os.WriteFile(path, []byte("idle-write-deadline = not-a-duration\n"), 0o600))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestLoadMissingFileErrors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "does-not-exist.conf"))
	assert.Error(t, err)
}
