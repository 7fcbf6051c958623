package daemon_test

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcpmux/mcpmux/internal/daemon"
)

// withIsolatedRuntimeDir points XDG_RUNTIME_DIR at a scratch directory so
// these tests never collide with a real daemon's lock file on the
// machine running them.
func withIsolatedRuntimeDir(t *testing.T) {
	t.Helper()
	dir := t.TempDir()
	old, had := os.LookupEnv("XDG_RUNTIME_DIR")
	os.Setenv("XDG_RUNTIME_DIR", dir)
	t.Cleanup(func() {
		if had {
			os.Setenv("XDG_RUNTIME_DIR", old)
		} else {
			os.Unsetenv("XDG_RUNTIME_DIR")
		}
	})
}

const testConfigPath = "/tmp/lifecycle-test-mcp-servers.toml"

func TestAcquireSingleton_SecondAcquireFails(t *testing.T) {
	withIsolatedRuntimeDir(t)

	lock, err := daemon.AcquireSingleton("fp-a", testConfigPath)
	require.NoError(t, err)
	defer lock.Release()

	_, err = daemon.AcquireSingleton("fp-b", testConfigPath)
	assert.Error(t, err)
}

func TestAcquireSingleton_ReleaseAllowsReacquire(t *testing.T) {
	withIsolatedRuntimeDir(t)

	lock, err := daemon.AcquireSingleton("fp-a", testConfigPath)
	require.NoError(t, err)
	require.NoError(t, lock.Release())

	lock2, err := daemon.AcquireSingleton("fp-b", testConfigPath)
	require.NoError(t, err)
	require.NoError(t, lock2.Release())
}

func TestAcquireSingleton_DifferentConfigsDoNotCollide(t *testing.T) {
	withIsolatedRuntimeDir(t)

	lockA, err := daemon.AcquireSingleton("fp-a", "/tmp/config-a.toml")
	require.NoError(t, err)
	defer lockA.Release()

	lockB, err := daemon.AcquireSingleton("fp-b", "/tmp/config-b.toml")
	require.NoError(t, err)
	defer lockB.Release()
}

func TestRunningFingerprint_ReflectsHeldLock(t *testing.T) {
	withIsolatedRuntimeDir(t)

	_, ok, err := daemon.RunningFingerprint(testConfigPath)
	require.NoError(t, err)
	assert.False(t, ok, "no daemon running yet")

	lock, err := daemon.AcquireSingleton("fp-current", testConfigPath)
	require.NoError(t, err)
	defer lock.Release()

	fp, ok, err := daemon.RunningFingerprint(testConfigPath)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "fp-current", fp)
}
