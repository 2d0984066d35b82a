package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/gnana997/uitokens/pkg/export"
	"github.com/gnana997/uitokens/pkg/tokens"
)

// categoryInfo is one entry of list_categories.
type categoryInfo struct {
	Name  string `json:"name"`
	Title string `json:"title"`
	Color bool   `json:"color"`
}

// tokenUsage is one ranked token with its ratio to the most used value.
type tokenUsage struct {
	Value string  `json:"value"`
	Count int     `json:"count"`
	Ratio float64 `json:"ratio"`
}

// tokensResult is the get_tokens response.
type tokensResult struct {
	Target   string       `json:"target"`
	Category string       `json:"category"`
	Title    string       `json:"title"`
	Returned int          `json:"returned"`
	Tokens   []tokenUsage `json:"tokens"`
}

func (s *Server) handleExtractTokens(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	target, err := req.RequireString("target")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	format, err := export.ParseFormat(req.GetString("format", string(export.FormatJSON)))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	report, err := s.svc.Extract(ctx, target, req.GetBool("refresh", false))
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("extract %s: %v", target, err)), nil
	}

	out, err := export.Render(report, format)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) handleGetTokens(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	target, err := req.RequireString("target")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	name, err := req.RequireString("category")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	category, err := tokens.ParseCategory(name)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	limit := req.GetInt("limit", 0)
	if limit < 0 {
		return mcp.NewToolResultError("limit must not be negative"), nil
	}

	list, err := s.svc.Tokens(ctx, target, category, limit)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("get tokens %s: %v", target, err)), nil
	}

	usages := export.Usages(list)
	res := tokensResult{
		Target:   target,
		Category: string(category),
		Title:    export.Title(category),
		Returned: len(list),
		Tokens:   make([]tokenUsage, len(usages)),
	}
	for i, u := range usages {
		res.Tokens[i] = tokenUsage{Value: u.Value, Count: u.Count, Ratio: u.Ratio}
	}
	return jsonResult(res)
}

func (s *Server) handleListCategories(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	cats := tokens.Categories()
	out := make([]categoryInfo, len(cats))
	for i, c := range cats {
		out[i] = categoryInfo{Name: string(c), Title: export.Title(c), Color: c.IsColor()}
	}
	return jsonResult(out)
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("encode result: %v", err)), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}
