// Package config loads and validates the mcpmux Configuration record: the
// ordered list of MCP servers and the daemon/bridge tuning knobs that
// govern concurrency, retries, timeouts, and idle shutdown.
//
// Loading goes through afero.Fs rather than bare os calls (grounded on
// dhamidi-smolcode and the autotidy example's use of spf13/afero) so
// lifecycle tests can exercise discovery and staleness logic against an
// in-memory filesystem.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/afero"
)

// TransportKind discriminates a server entry's transport variant.
type TransportKind string

const (
	TransportStdio TransportKind = "stdio"
	TransportHTTP  TransportKind = "http"
)

// StdioTransport configures a child-process MCP server.
type StdioTransport struct {
	Command string            `toml:"command"`
	Args    []string          `toml:"args,omitempty"`
	Env     map[string]string `toml:"env,omitempty"`
	Cwd     string            `toml:"cwd,omitempty"`
}

// HTTPTransport configures an HTTP MCP server.
type HTTPTransport struct {
	URL     string            `toml:"url"`
	Headers map[string]string `toml:"headers,omitempty"`
}

// Server is one entry in the Configuration record's server list.
type Server struct {
	Name  string          `toml:"name"`
	Stdio *StdioTransport `toml:"stdio,omitempty"`
	HTTP  *HTTPTransport  `toml:"http,omitempty"`
	Allow []string        `toml:"allow,omitempty"`
	Deny  []string        `toml:"deny,omitempty"`
}

// Kind reports which transport variant this server uses.
func (s Server) Kind() (TransportKind, error) {
	switch {
	case s.Stdio != nil && s.HTTP != nil:
		return "", fmt.Errorf("server %q: specify exactly one of [servers.stdio] or [servers.http], not both", s.Name)
	case s.Stdio != nil:
		return TransportStdio, nil
	case s.HTTP != nil:
		return TransportHTTP, nil
	default:
		return "", fmt.Errorf("server %q: missing [servers.stdio] or [servers.http]", s.Name)
	}
}

// Config is the immutable, load-once Configuration record of spec.md §3.
type Config struct {
	Servers           []Server `toml:"servers"`
	ConcurrencyLimit  int      `toml:"concurrency_limit"`
	RetryMax          int      `toml:"retry_max"`
	RetryDelayMS      int      `toml:"retry_delay_ms"`
	ToolTimeoutSecs   int      `toml:"tool_timeout_secs"`
	DaemonIdleTTLSecs int      `toml:"daemon_idle_ttl_secs"`

	// Path is the resolved location this config was loaded from. Not part
	// of the TOML document; set by Load for diagnostics and re-exec.
	Path string `toml:"-"`
}

// Defaults per spec.md §3.
const (
	DefaultConcurrencyLimit  = 5
	DefaultRetryMax          = 3
	DefaultRetryDelayMS      = 1000
	DefaultToolTimeoutSecs   = 1800
	DefaultDaemonIdleTTLSecs = 60
)

func applyDefaults(c *Config) {
	if c.ConcurrencyLimit <= 0 {
		c.ConcurrencyLimit = DefaultConcurrencyLimit
	}
	if c.RetryMax <= 0 {
		c.RetryMax = DefaultRetryMax
	}
	if c.RetryDelayMS <= 0 {
		c.RetryDelayMS = DefaultRetryDelayMS
	}
	if c.ToolTimeoutSecs <= 0 {
		c.ToolTimeoutSecs = DefaultToolTimeoutSecs
	}
	// DaemonIdleTTLSecs is not defaulted here: an explicit 0 ("no idle
	// shutdown") is a valid user choice, so Load seeds the field with
	// DefaultDaemonIdleTTLSecs before decoding and the default applies only
	// when the key is absent from the document. The --ttl flag and
	// MCP_DAEMON_TTL overrides are applied in internal/cliapp/commands.
}

// Validate enforces the Configuration record invariants of spec.md §3:
// unique server names, non-empty Stdio command, non-empty HTTP URL.
func (c *Config) Validate() error {
	seen := make(map[string]bool, len(c.Servers))
	for _, s := range c.Servers {
		if s.Name == "" {
			return fmt.Errorf("server entry missing required field: name")
		}
		if seen[s.Name] {
			return fmt.Errorf("duplicate server name: %q", s.Name)
		}
		seen[s.Name] = true

		kind, err := s.Kind()
		if err != nil {
			return err
		}
		switch kind {
		case TransportStdio:
			if s.Stdio.Command == "" {
				return fmt.Errorf("server %q: stdio transport requires a non-empty command", s.Name)
			}
		case TransportHTTP:
			if s.HTTP.URL == "" {
				return fmt.Errorf("server %q: http transport requires a non-empty url", s.Name)
			}
		}
	}
	return nil
}

// ServerByName looks up a server entry, returning mcperrors-style context
// via the ok bool; callers construct the actionable error themselves so
// they can list available names.
func (c *Config) ServerByName(name string) (Server, bool) {
	for _, s := range c.Servers {
		if s.Name == name {
			return s, true
		}
	}
	return Server{}, false
}

// ServerNames returns configured server names in declaration order.
func (c *Config) ServerNames() []string {
	names := make([]string, len(c.Servers))
	for i, s := range c.Servers {
		names[i] = s.Name
	}
	return names
}

// DiscoverPath resolves a config file path per spec.md §6 discovery order:
// explicit path argument -> ./mcp_servers.toml -> $HOME/mcp_servers.toml ->
// user config dir.
func DiscoverPath(fs afero.Fs, explicit string) (string, error) {
	if explicit != "" {
		return explicit, nil
	}

	candidates := []string{"mcp_servers.toml"}
	if home, err := os.UserHomeDir(); err == nil {
		candidates = append(candidates, filepath.Join(home, "mcp_servers.toml"))
	}
	if cfgDir, err := os.UserConfigDir(); err == nil {
		candidates = append(candidates, filepath.Join(cfgDir, "mcpmux", "mcp_servers.toml"))
	}

	for _, c := range candidates {
		if exists, _ := afero.Exists(fs, c); exists {
			return c, nil
		}
	}
	return "", fmt.Errorf("no mcp_servers.toml found in %v", candidates)
}

// Load reads and parses the TOML document at path, applies defaults, and
// validates it. Unknown keys are ignored, matching go-toml/v2's default
// decode-into-struct behavior (spec.md §6).
func Load(fs afero.Fs, path string) (*Config, error) {
	data, err := afero.ReadFile(fs, path)
	if err != nil {
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}

	c := Config{DaemonIdleTTLSecs: DefaultDaemonIdleTTLSecs}
	if err := toml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}
	c.Path = path
	applyDefaults(&c)

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return &c, nil
}

// LoadOS is a convenience wrapper over Load using the real OS filesystem.
func LoadOS(path string) (*Config, error) {
	return Load(afero.NewOsFs(), path)
}
