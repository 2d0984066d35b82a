package mcp

import (
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/gnana997/uitokens/pkg/export"
	"github.com/gnana997/uitokens/pkg/tokens"
)

const targetDescription = "Page to analyze: an http(s) URL, a local HTML file, or a JSON document snapshot"

// Tools returns the MCP tool definitions in registration order.
func Tools() []mcp.Tool {
	return []mcp.Tool{
		extractTokensTool(),
		getTokensTool(),
		listCategoriesTool(),
	}
}

func extractTokensTool() mcp.Tool {
	return mcp.NewTool("extract_tokens",
		mcp.WithDescription("Extract the design tokens of a page: colors, typography, spacing, borders, shadows, transitions and root custom properties, ranked by usage."),
		mcp.WithString("target", mcp.Required(), mcp.Description(targetDescription)),
		mcp.WithString("format",
			mcp.Description("Output format. json is the full report, css a :root block of the top tokens, summary a readable ranked listing."),
			mcp.Enum(string(export.FormatJSON), string(export.FormatCSS), string(export.FormatSummary)),
		),
		mcp.WithBoolean("refresh", mcp.Description("Ignore any cached report and extract again")),
	)
}

func getTokensTool() mcp.Tool {
	names := make([]string, 0, len(tokens.Categories()))
	for _, c := range tokens.Categories() {
		names = append(names, string(c))
	}
	return mcp.NewTool("get_tokens",
		mcp.WithDescription("Return one ranked token category of a page with usage counts and ratios. Categories: "+strings.Join(names, ", ")+"."),
		mcp.WithString("target", mcp.Required(), mcp.Description(targetDescription)),
		mcp.WithString("category", mcp.Required(), mcp.Description("Token category"), mcp.Enum(names...)),
		mcp.WithNumber("limit", mcp.Description("Maximum number of tokens to return (0 = all)")),
	)
}

func listCategoriesTool() mcp.Tool {
	return mcp.NewTool("list_categories",
		mcp.WithDescription("List the token categories in report order with their display titles."),
	)
}
