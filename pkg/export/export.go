// Package export renders a TokenReport for people and tools: pretty JSON,
// a CSS custom-property block, and text lists with usage bars.
package export

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/gnana997/uitokens/pkg/tokens"
)

// Format names an output representation.
type Format string

const (
	FormatJSON    Format = "json"
	FormatCSS     Format = "css"
	FormatSummary Format = "summary"
)

// ParseFormat resolves a format name, defaulting to JSON for "".
func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(s)) {
	case "", FormatJSON:
		return FormatJSON, nil
	case FormatCSS:
		return FormatCSS, nil
	case FormatSummary, "text":
		return FormatSummary, nil
	}
	return "", fmt.Errorf("unknown format %q (want json, css or summary)", s)
}

// Ext returns the file extension used for the format.
func (f Format) Ext() string {
	switch f {
	case FormatCSS:
		return "css"
	case FormatSummary:
		return "txt"
	}
	return "json"
}

// Render produces the report in the given format.
func Render(report *tokens.TokenReport, f Format) ([]byte, error) {
	switch f {
	case FormatCSS:
		return []byte(CSS(report)), nil
	case FormatSummary:
		var b strings.Builder
		if err := WriteReport(&b, report, ListOptions{}); err != nil {
			return nil, err
		}
		return []byte(b.String()), nil
	}
	return JSON(report)
}

// JSON serializes the full report, pretty-printed with two-space indent.
func JSON(report *tokens.TokenReport) ([]byte, error) {
	out, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("export: marshal report: %w", err)
	}
	return out, nil
}

// ParseJSON reads a report produced by JSON.
func ParseJSON(data []byte) (*tokens.TokenReport, error) {
	var report tokens.TokenReport
	if err := json.Unmarshal(data, &report); err != nil {
		return nil, fmt.Errorf("export: parse report: %w", err)
	}
	return &report, nil
}

// cssGroups are the lists exported as custom properties, in output order.
var cssGroups = []struct {
	prefix   string
	category tokens.Category
}{
	{"color", tokens.AllColors},
	{"spacing", tokens.Margin},
	{"font-size", tokens.FontSize},
	{"radius", tokens.BorderRadius},
}

// CSS emits a single :root block declaring --color-N, --spacing-N,
// --font-size-N and --radius-N, numbered from 1 in ranked order.
func CSS(report *tokens.TokenReport) string {
	var b strings.Builder
	b.WriteString(":root {\n")
	for _, g := range cssGroups {
		list, _ := report.Tokens(g.category)
		for i, tok := range list {
			fmt.Fprintf(&b, "  --%s-%d: %s;\n", g.prefix, i+1, tok.Value)
		}
	}
	b.WriteString("}\n")
	return b.String()
}

// Filename returns the default export file name for a report written at t,
// e.g. "design-tokens-1760000000000.json".
func Filename(f Format, t time.Time) string {
	return fmt.Sprintf("design-tokens-%d.%s", t.UnixMilli(), f.Ext())
}
