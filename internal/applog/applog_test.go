package applog_test

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcpmux/mcpmux/internal/applog"
)

func TestNew_RingCapturesEntries(t *testing.T) {
	logger, err := applog.New(applog.Options{Level: "debug"})
	require.NoError(t, err)
	t.Cleanup(func() { logger.Close() })

	logger.Info("pool handshake complete", "server", "echoserver")
	logger.Warn("slow tool call", "server", "echoserver", "tool", "echo")

	entries := logger.Entries()
	require.Len(t, entries, 2)
	assert.Equal(t, "pool handshake complete", entries[0].Message)
	assert.Equal(t, "echoserver", entries[0].Attrs["server"])
	assert.Equal(t, "echo", entries[1].Attrs["tool"])
}

func TestNew_RingEvictsOldestBeyondCapacity(t *testing.T) {
	logger, err := applog.New(applog.Options{RingCapacity: 3})
	require.NoError(t, err)
	t.Cleanup(func() { logger.Close() })

	for i := 0; i < 5; i++ {
		logger.Info("entry", "n", i)
	}

	entries := logger.Entries()
	require.Len(t, entries, 3)
	assert.Equal(t, "2", entries[0].Attrs["n"])
	assert.Equal(t, "4", entries[2].Attrs["n"])
}

func TestNew_RedactsSecretsInMessageAndAttrs(t *testing.T) {
	logger, err := applog.New(applog.Options{})
	require.NoError(t, err)
	t.Cleanup(func() { logger.Close() })

	logger.Info("auth header was sk-abcdef1234567890", "token", "sk-abcdef1234567890")

	entries := logger.Entries()
	require.Len(t, entries, 1)
	assert.Contains(t, entries[0].Message, "sk-REDACTED")
	assert.NotContains(t, entries[0].Message, "abcdef1234567890")
	assert.Equal(t, "sk-REDACTED", entries[0].Attrs["token"])
}

func TestNew_LevelFiltersBelowThreshold(t *testing.T) {
	logger, err := applog.New(applog.Options{Level: "warn"})
	require.NoError(t, err)
	t.Cleanup(func() { logger.Close() })

	logger.Info("ignored")
	logger.Warn("kept")

	entries := logger.Entries()
	require.Len(t, entries, 1)
	assert.Equal(t, "kept", entries[0].Message)
}

func TestNew_SubscribeReceivesLiveEntries(t *testing.T) {
	logger, err := applog.New(applog.Options{})
	require.NoError(t, err)
	t.Cleanup(func() { logger.Close() })

	ch := logger.Subscribe()
	defer logger.Unsubscribe(ch)

	logger.Info("daemon listening", "servers", "2")

	select {
	case e := <-ch:
		assert.Equal(t, "daemon listening", e.Message)
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for subscriber delivery")
	}
}

func TestNew_FileSinkWritesJSONLines(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "mcpmux.log")

	logger, err := applog.New(applog.Options{FilePath: path})
	require.NoError(t, err)

	logger.Info("tool executed", "server", "echoserver", "tool", "echo")
	require.NoError(t, logger.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.NotEmpty(t, data)

	var rec map[string]any
	line := data
	if i := indexByte(data, '\n'); i >= 0 {
		line = data[:i]
	}
	require.NoError(t, json.Unmarshal(line, &rec))
	assert.Equal(t, "tool executed", rec["message"])
}

func TestNew_FileSinkRotatesPastMaxSize(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "mcpmux.log")

	logger, err := applog.New(applog.Options{FilePath: path, MaxFileBytes: 200})
	require.NoError(t, err)

	for i := 0; i < 50; i++ {
		logger.Info("padding out the log file to force a rotation pass", "n", i)
	}
	require.NoError(t, logger.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Less(t, int64(len(data)), int64(5000), "rotation should have truncated the file at least once")
}

func indexByte(b []byte, c byte) int {
	for i, v := range b {
		if v == c {
			return i
		}
	}
	return -1
}
