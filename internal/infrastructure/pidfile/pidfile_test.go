package pidfile

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAcquire_WritesCurrentPID(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run", "imperium.pid")
	p := New(path)

	require.NoError(t, p.Acquire())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, fmt.Sprintf("%d\n", os.Getpid()), string(data))

	require.NoError(t, p.Release())
	assert.NoFileExists(t, path)
}

func TestAcquire_LiveProcessBlocks(t *testing.T) {
	path := filepath.Join(t.TempDir(), "imperium.pid")
	// The test process itself is certainly alive
	require.NoError(t, os.WriteFile(path, []byte(fmt.Sprintf("%d\n", os.Getpid())), 0644))

	err := New(path).Acquire()

	var running *AlreadyRunningError
	require.ErrorAs(t, err, &running)
	assert.Equal(t, os.Getpid(), running.PID)
}

func TestAcquire_ReplacesGarbageFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "imperium.pid")
	require.NoError(t, os.WriteFile(path, []byte("not-a-pid"), 0644))

	require.NoError(t, New(path).Acquire())
}

func TestRelease_LeavesForeignFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "imperium.pid")
	require.NoError(t, os.WriteFile(path, []byte("1\n"), 0644))

	require.NoError(t, New(path).Release())
	assert.FileExists(t, path)
}
