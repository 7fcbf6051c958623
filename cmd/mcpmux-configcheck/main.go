// Command mcpmux-configcheck validates an mcp_servers.toml file against the
// Configuration record invariants (spec.md §3) without starting a daemon or
// touching any MCP server.
//
// Usage:
//
//	mcpmux-configcheck [options] [path...]
//
// If no paths are given, the default discovery order (spec.md §6) is used.
//
// Options:
//
//	-strict     Treat warnings as errors
//	-json       Output results as JSON
//	-quiet      Only output errors
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/exec"

	"github.com/spf13/afero"

	"github.com/mcpmux/mcpmux/internal/config"
)

var (
	strict = false
	asJSON = false
	quiet  = false
)

func main() {
	fs := flag.NewFlagSet("mcpmux-configcheck", flag.ExitOnError)
	fs.BoolVar(&strict, "strict", false, "treat warnings as errors")
	fs.BoolVar(&asJSON, "json", false, "output results as JSON")
	fs.BoolVar(&quiet, "quiet", false, "only output errors")

	if err := fs.Parse(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "error parsing flags: %v\n", err)
		os.Exit(1)
	}

	os.Exit(run(fs.Args(), strict, asJSON, quiet))
}

// result mirrors a single file's validation outcome: fatal errors (the
// config failed to load or violated a record invariant) and warnings
// (loaded fine but something looks off, e.g. a stdio command not on PATH).
type result struct {
	Path     string   `json:"path"`
	Valid    bool     `json:"valid"`
	Errors   []string `json:"errors,omitempty"`
	Warnings []string `json:"warnings,omitempty"`
}

func run(paths []string, strict, asJSON, quiet bool) int {
	osFs := afero.NewOsFs()

	if len(paths) == 0 {
		path, err := config.DiscoverPath(osFs, "")
		if err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			return 1
		}
		paths = []string{path}
	}

	results := make([]result, 0, len(paths))
	for _, path := range paths {
		results = append(results, checkPath(osFs, path))
	}

	if asJSON {
		outputJSON(results)
	} else {
		outputText(results, quiet, strict)
	}

	exitCode := 0
	for _, r := range results {
		if !r.Valid {
			exitCode = 1
		}
		if strict && len(r.Warnings) > 0 {
			exitCode = 1
		}
	}
	return exitCode
}

func checkPath(fs afero.Fs, path string) result {
	r := result{Path: path}

	cfg, err := config.Load(fs, path)
	if err != nil {
		r.Errors = append(r.Errors, err.Error())
		return r
	}
	r.Valid = true
	r.Warnings = warnings(cfg)
	return r
}

// warnings flags things that load and validate cleanly but are likely
// misconfigurations: an empty server list, and a stdio command that isn't
// resolvable on PATH right now (it may still be valid on the machine the
// daemon eventually runs on, hence a warning and not an error).
func warnings(cfg *config.Config) []string {
	var warns []string
	if len(cfg.Servers) == 0 {
		warns = append(warns, "no servers configured")
	}
	for _, s := range cfg.Servers {
		kind, err := s.Kind()
		if err != nil || kind != config.TransportStdio {
			continue
		}
		if _, err := exec.LookPath(s.Stdio.Command); err != nil {
			warns = append(warns, fmt.Sprintf("server %q: command %q not found on PATH", s.Name, s.Stdio.Command))
		}
	}
	return warns
}

func outputJSON(results []result) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	enc.Encode(results)
}

func outputText(results []result, quiet, strict bool) {
	validCount, invalidCount := 0, 0
	for _, r := range results {
		if r.Valid {
			validCount++
			if quiet && len(r.Warnings) == 0 {
				continue
			}
			fmt.Printf("✓ %s\n", r.Path)
		} else {
			invalidCount++
			fmt.Printf("✗ %s\n", r.Path)
		}
		for _, e := range r.Errors {
			fmt.Printf("  ERROR: %s\n", e)
		}
		if !quiet || strict {
			for _, w := range r.Warnings {
				fmt.Printf("  WARN:  %s\n", w)
			}
		}
	}
	if !quiet {
		fmt.Println()
		fmt.Printf("summary: %d valid, %d invalid\n", validCount, invalidCount)
	}
}
