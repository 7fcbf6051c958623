package pool_test

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcpmux/mcpmux/internal/config"
	"github.com/mcpmux/mcpmux/internal/mcperrors"
	"github.com/mcpmux/mcpmux/internal/pool"
	"github.com/mcpmux/mcpmux/tests/fixtures"
)

func stdioConfig(t *testing.T, name string) *config.Config {
	t.Helper()
	bin := fixtures.BuildStdioServer(t)
	return &config.Config{
		Servers: []config.Server{
			{Name: name, Stdio: &config.StdioTransport{Command: bin}},
		},
	}
}

func TestPool_ListToolsPerformsHandshakeOnce(t *testing.T) {
	cfg := stdioConfig(t, "echoserver")
	p := pool.New(cfg, 5*time.Second)
	t.Cleanup(func() { p.Shutdown() })

	ctx := context.Background()
	tools, err := p.ListTools(ctx, "echoserver")
	require.NoError(t, err)
	require.Len(t, tools, 2)
	assert.Equal(t, "echo", tools[0].Name)

	// A second call against the same connection must not re-handshake; the
	// mock server would still answer correctly either way, so what this
	// guards against is a hang or duplicate-initialize protocol violation
	// rather than an observably different result.
	tools2, err := p.ListTools(ctx, "echoserver")
	require.NoError(t, err)
	assert.Equal(t, tools, tools2)
}

func TestPool_ExecuteToolReturnsContent(t *testing.T) {
	cfg := stdioConfig(t, "echoserver")
	p := pool.New(cfg, 5*time.Second)
	t.Cleanup(func() { p.Shutdown() })

	args, err := json.Marshal(map[string]string{"text": "hi there"})
	require.NoError(t, err)

	result, err := p.ExecuteTool(context.Background(), "echoserver", "echo", args)
	require.NoError(t, err)
	require.Len(t, result.Content, 1)
	assert.Equal(t, "hi there", result.Content[0].Text)
}

func TestPool_UnknownServerIsServerNotFound(t *testing.T) {
	cfg := &config.Config{}
	p := pool.New(cfg, time.Second)

	_, err := p.ListTools(context.Background(), "nope")
	require.Error(t, err)
	classified, ok := mcperrors.As(err)
	require.True(t, ok)
	assert.Equal(t, mcperrors.KindServerNotFound, classified.Kind)
}

func TestPool_UnknownToolIsInvalidArguments(t *testing.T) {
	cfg := stdioConfig(t, "echoserver")
	p := pool.New(cfg, 5*time.Second)
	t.Cleanup(func() { p.Shutdown() })

	_, err := p.ExecuteTool(context.Background(), "echoserver", "does-not-exist", nil)
	require.Error(t, err)
	classified, ok := mcperrors.As(err)
	require.True(t, ok)
	assert.Equal(t, mcperrors.KindInvalidArguments, classified.Kind)
}

func TestPool_ConcurrentCallsAreSerializedPerConnection(t *testing.T) {
	cfg := stdioConfig(t, "echoserver")
	p := pool.New(cfg, 5*time.Second)
	t.Cleanup(func() { p.Shutdown() })

	const n = 10
	var wg sync.WaitGroup
	errs := make([]error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			args, _ := json.Marshal(map[string]string{"text": "concurrent"})
			_, err := p.ExecuteTool(context.Background(), "echoserver", "echo", args)
			errs[i] = err
		}(i)
	}
	wg.Wait()

	for _, err := range errs {
		assert.NoError(t, err)
	}
}

func TestPool_ListServersReadsConfigOnly(t *testing.T) {
	cfg := &config.Config{Servers: []config.Server{
		{Name: "a", Stdio: &config.StdioTransport{Command: "unused"}},
		{Name: "b", Stdio: &config.StdioTransport{Command: "unused"}},
	}}
	p := pool.New(cfg, time.Second)
	assert.Equal(t, []string{"a", "b"}, p.ListServers())
}

func TestPool_ExecuteToolDeadlineIsClassifiedAsTimeout(t *testing.T) {
	cfg := stdioConfig(t, "echoserver")
	p := pool.New(cfg, 50*time.Millisecond)
	t.Cleanup(func() { p.Shutdown() })

	args, err := json.Marshal(map[string]int{"ms": 2000})
	require.NoError(t, err)

	_, err = p.ExecuteTool(context.Background(), "echoserver", "sleep", args)
	require.Error(t, err)
	classified, ok := mcperrors.As(err)
	require.True(t, ok)
	assert.Equal(t, mcperrors.KindTimeout, classified.Kind)

	// The connection itself is still usable; a per-call timeout is not a
	// fatal transport error and must not have evicted it.
	tools, err := p.ListTools(context.Background(), "echoserver")
	require.NoError(t, err)
	assert.Len(t, tools, 2)
}

func TestPool_UnstartableServerIsConnectionError(t *testing.T) {
	cfg := &config.Config{Servers: []config.Server{
		{Name: "broken", Stdio: &config.StdioTransport{Command: "/nonexistent/binary/for-mcpmux-tests"}},
	}}
	p := pool.New(cfg, time.Second)
	t.Cleanup(func() { p.Shutdown() })

	_, err := p.ListTools(context.Background(), "broken")
	require.Error(t, err)
	classified, ok := mcperrors.As(err)
	require.True(t, ok)
	assert.Equal(t, mcperrors.KindConnection, classified.Kind)
}
