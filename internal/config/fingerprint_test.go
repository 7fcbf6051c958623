package config_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mcpmux/mcpmux/internal/config"
)

func baseConfig() *config.Config {
	return &config.Config{
		ConcurrencyLimit:  5,
		DaemonIdleTTLSecs: 60,
		Servers: []config.Server{
			{
				Name:  "echo",
				Stdio: &config.StdioTransport{Command: "cat", Args: []string{"-"}},
			},
		},
	}
}

func TestFingerprint_StableAcrossServerOrder(t *testing.T) {
	a := baseConfig()
	a.Servers = append(a.Servers, config.Server{
		Name: "weather",
		HTTP: &config.HTTPTransport{URL: "https://example.com"},
	})

	b := baseConfig()
	b.Servers = []config.Server{
		{Name: "weather", HTTP: &config.HTTPTransport{URL: "https://example.com"}},
		{Name: "echo", Stdio: &config.StdioTransport{Command: "cat", Args: []string{"-"}}},
	}

	assert.Equal(t, a.Fingerprint(), b.Fingerprint())
}

func TestFingerprint_ChangesWhenCommandChanges(t *testing.T) {
	a := baseConfig()
	b := baseConfig()
	b.Servers[0].Stdio.Command = "dog"

	assert.NotEqual(t, a.Fingerprint(), b.Fingerprint())
}

func TestFingerprint_ChangesWhenConcurrencyLimitChanges(t *testing.T) {
	a := baseConfig()
	b := baseConfig()
	b.ConcurrencyLimit = 10

	assert.NotEqual(t, a.Fingerprint(), b.Fingerprint())
}

func TestFingerprint_UnaffectedByRetryOrTimeoutOrFilters(t *testing.T) {
	a := baseConfig()
	b := baseConfig()
	b.RetryMax = 99
	b.RetryDelayMS = 99999
	b.ToolTimeoutSecs = 1
	b.Servers[0].Allow = []string{"only_*"}
	b.Servers[0].Deny = []string{"never_*"}

	assert.Equal(t, a.Fingerprint(), b.Fingerprint(), "retry/timeout/filter fields must not participate in the fingerprint")
}

func TestFingerprint_ChangesWhenTTLChanges(t *testing.T) {
	a := baseConfig()
	b := baseConfig()
	b.DaemonIdleTTLSecs = 120

	assert.NotEqual(t, a.Fingerprint(), b.Fingerprint())
}
