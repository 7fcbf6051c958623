package config

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
	"strings"
)

// Fingerprint derives a stable hash of the transport-affecting subset of the
// configuration, per spec.md §3 and SPEC_FULL.md's field-participation
// decision: each server's name, transport variant, command+args+env+cwd
// (Stdio) or url+headers (HTTP), plus the global concurrency limit and TTL.
//
// Retry knobs, the per-call timeout, and allow/deny filters deliberately do
// not participate — see SPEC_FULL.md §3 for the rationale.
func (c *Config) Fingerprint() string {
	servers := make([]Server, len(c.Servers))
	copy(servers, c.Servers)
	sort.Slice(servers, func(i, j int) bool { return servers[i].Name < servers[j].Name })

	var b strings.Builder
	for _, s := range servers {
		kind, _ := s.Kind()
		b.WriteString(s.Name)
		b.WriteByte('\t')
		b.WriteString(string(kind))
		b.WriteByte('\t')
		switch kind {
		case TransportStdio:
			b.WriteString(s.Stdio.Command)
			b.WriteByte('\t')
			b.WriteString(strings.Join(s.Stdio.Args, " "))
			b.WriteByte('\t')
			b.WriteString(canonicalMap(s.Stdio.Env))
			b.WriteByte('\t')
			b.WriteString(s.Stdio.Cwd)
		case TransportHTTP:
			b.WriteString(s.HTTP.URL)
			b.WriteByte('\t')
			b.WriteString(canonicalMap(s.HTTP.Headers))
		}
		b.WriteByte('\n')
	}
	fmt.Fprintf(&b, "concurrency_limit=%d\n", c.ConcurrencyLimit)
	fmt.Fprintf(&b, "daemon_idle_ttl_secs=%d\n", c.DaemonIdleTTLSecs)

	sum := sha256.Sum256([]byte(b.String()))
	return hex.EncodeToString(sum[:])
}

func canonicalMap(m map[string]string) string {
	if len(m) == 0 {
		return ""
	}
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	var b strings.Builder
	for i, k := range keys {
		if i > 0 {
			b.WriteByte(';')
		}
		b.WriteString(k)
		b.WriteByte('=')
		b.WriteString(m[k])
	}
	return b.String()
}
