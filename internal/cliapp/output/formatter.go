// Package output renders command results for a human terminal or as
// stable JSON, generalized from the teacher's internal/cli/output package
// (Formatter/CallResult split, github.com/fatih/color for human-readable
// coloring, github.com/olekukonko/tablewriter for tabular listings) from
// that package's registry-catalog shapes to mcpmux's live MCP Tool and
// CallToolResult shapes.
package output

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"

	"github.com/mcpmux/mcpmux/internal/mcperrors"
	"github.com/mcpmux/mcpmux/internal/protocol"
)

// Format selects how a Formatter renders results.
type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
)

// Formatter renders command output in one of Format's two modes.
type Formatter struct {
	format Format
}

// New builds a Formatter. jsonOutput selects FormatJSON over FormatText.
func New(jsonOutput bool) *Formatter {
	f := FormatText
	if jsonOutput {
		f = FormatJSON
	}
	return &Formatter{format: f}
}

// JSON reports whether this Formatter emits JSON.
func (f *Formatter) JSON() bool { return f.format == FormatJSON }

// Error renders a classified mcperrors.Error with an actionable hint in
// text mode, or a structured document in JSON mode.
func (f *Formatter) Error(err error) string {
	classified, ok := mcperrors.As(err)
	if !ok {
		classified = mcperrors.New(mcperrors.KindProtocol, err.Error())
	}

	if f.format == FormatJSON {
		doc := map[string]string{"kind": string(classified.Kind), "message": classified.Message}
		if classified.Server != "" {
			doc["server"] = classified.Server
		}
		if classified.Tool != "" {
			doc["tool"] = classified.Tool
		}
		if classified.Hint != "" {
			doc["hint"] = classified.Hint
		}
		data, _ := json.MarshalIndent(doc, "", "  ")
		return string(data)
	}

	msg := color.RedString("Error [%s]: %s", classified.Kind, classified.Error())
	if classified.Hint != "" {
		msg += "\n" + color.YellowString("Hint: %s", classified.Hint)
	}
	return msg
}

// ServerEntry is one row of a `list` response: a configured server name
// plus the tools it currently advertises (after allow/deny filtering).
type ServerEntry struct {
	Name  string
	Tools []protocol.Tool
}

// ServerFailure is one server that could not be reached during `list`'s
// bounded fan-out (spec.md §4.6's partial-failure fan-out: the caller
// observes successes and failures together rather than aborting on the
// first one).
type ServerFailure struct {
	Server string
	Err    error
}

// ServerList renders the `list` command's output. When describe is true,
// text mode also prints each tool's description. Servers that failed
// during the fan-out are rendered under a "Connection Issues" section
// rather than aborting the whole command.
func (f *Formatter) ServerList(entries []ServerEntry, failures []ServerFailure, startedAt time.Time, hasStarted bool, describe, verbose bool) string {
	if f.format == FormatJSON {
		type toolDoc struct {
			Name        string `json:"name"`
			Description string `json:"description,omitempty"`
		}
		type serverDoc struct {
			Name  string    `json:"name"`
			Tools []toolDoc `json:"tools"`
		}
		type failureDoc struct {
			Server string `json:"server"`
			Error  string `json:"error"`
		}
		doc := struct {
			Servers          []serverDoc  `json:"servers"`
			ConnectionIssues []failureDoc `json:"connection_issues,omitempty"`
			DaemonStarted    string       `json:"daemon_started,omitempty"`
		}{}
		if hasStarted {
			doc.DaemonStarted = startedAt.UTC().Format(time.RFC3339)
		}
		for _, e := range entries {
			sd := serverDoc{Name: e.Name}
			for _, t := range e.Tools {
				sd.Tools = append(sd.Tools, toolDoc{Name: t.Name, Description: t.Description})
			}
			doc.Servers = append(doc.Servers, sd)
		}
		for _, fail := range failures {
			doc.ConnectionIssues = append(doc.ConnectionIssues, failureDoc{Server: fail.Server, Error: fail.Err.Error()})
		}
		data, _ := json.MarshalIndent(doc, "", "  ")
		return string(data)
	}

	var sb strings.Builder
	if verbose && hasStarted {
		fmt.Fprintf(&sb, "daemon started %s\n\n", humanize.Time(startedAt))
	}
	for _, e := range entries {
		fmt.Fprintf(&sb, "%s (%d tools)\n", color.CyanString(e.Name), len(e.Tools))
		for _, t := range e.Tools {
			if describe && t.Description != "" {
				fmt.Fprintf(&sb, "  %s - %s\n", t.Name, t.Description)
			} else {
				fmt.Fprintf(&sb, "  %s\n", t.Name)
			}
		}
	}
	if len(failures) > 0 {
		fmt.Fprintf(&sb, "\n%s\n", color.YellowString("Connection Issues"))
		for _, fail := range failures {
			fmt.Fprintf(&sb, "  %s: %s\n", fail.Server, fail.Err)
		}
	}
	return strings.TrimRight(sb.String(), "\n")
}

// ToolSchema renders the `tool` command's output: the tool's name,
// description, and input schema.
func (f *Formatter) ToolSchema(server string, t protocol.Tool) string {
	if f.format == FormatJSON {
		doc := struct {
			Server      string          `json:"server"`
			Name        string          `json:"name"`
			Description string          `json:"description,omitempty"`
			InputSchema json.RawMessage `json:"inputSchema,omitempty"`
		}{Server: server, Name: t.Name, Description: t.Description, InputSchema: t.InputSchema}
		data, _ := json.MarshalIndent(doc, "", "  ")
		return string(data)
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "%s/%s\n", server, t.Name)
	if t.Description != "" {
		fmt.Fprintln(&sb, t.Description)
	}
	if len(t.InputSchema) > 0 {
		var pretty bytes.Buffer
		if json.Indent(&pretty, t.InputSchema, "", "  ") == nil {
			sb.WriteString(pretty.String())
		} else {
			sb.Write(t.InputSchema)
		}
		sb.WriteByte('\n')
	}
	return strings.TrimRight(sb.String(), "\n")
}

// CallResult renders the `call` command's output: the tool's content
// blocks joined as text in text mode, or the raw result structure in
// JSON mode.
func (f *Formatter) CallResult(result *protocol.CallToolResult) string {
	if f.format == FormatJSON {
		data, _ := json.MarshalIndent(result, "", "  ")
		return string(data)
	}

	var parts []string
	for _, c := range result.Content {
		if c.Type == "text" {
			parts = append(parts, c.Text)
		}
	}
	text := strings.Join(parts, "\n")
	if result.IsError {
		return color.RedString("tool error: ") + text
	}
	return text
}

// SearchMatch is one `search <glob>` hit.
type SearchMatch struct {
	Server      string
	Tool        string
	Description string
}

// SearchResults renders `search` output as a table in text mode.
func (f *Formatter) SearchResults(matches []SearchMatch) string {
	if f.format == FormatJSON {
		data, _ := json.MarshalIndent(matches, "", "  ")
		return string(data)
	}
	if len(matches) == 0 {
		return "no matching tools"
	}

	table := tablewriter.NewTable(os.Stdout, tablewriter.WithHeader([]string{"Server", "Tool", "Description"}))
	for _, m := range matches {
		table.Append([]string{m.Server, m.Tool, m.Description})
	}
	table.Render()
	return ""
}
