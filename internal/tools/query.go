// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package tools

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/warnerco/schematica/internal/pipeline"
)

// NewQueryTool creates the warn_query tool definition
func NewQueryTool() mcp.Tool {
	return mcp.NewTool("warn_query",
		mcp.WithDescription("Answer a natural-language question about the schematic catalog. Combines knowledge-graph relationships with similarity search and returns ranked results plus reasoning. Use this as the primary entry point for questions."),
		mcp.WithString("query",
			mcp.Required(),
			mcp.Description("Natural language question. Examples: 'what depends on the power system', 'how many deprecated sensors', 'WRN-00042'"),
		),
		mcp.WithString("category",
			mcp.Description("Limit results to one category, e.g. 'sensors'"),
		),
		mcp.WithString("model",
			mcp.Description("Limit results to one robot model, e.g. 'WC-100'"),
		),
		mcp.WithString("status",
			mcp.Description("Limit results to one status: active, deprecated or draft"),
		),
		mcp.WithNumber("top_k",
			mcp.Description("Max candidates to retrieve. Default: 10"),
		),
	)
}

// QueryHandler handles the warn_query tool
func QueryHandler(ctx *ToolContext) func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return func(c context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		query := request.GetString("query", "")
		if query == "" {
			return mcp.NewToolResultError("'query' is required"), nil
		}

		filters := make(map[string]string)
		for _, key := range []string{"category", "model", "status"} {
			if v := request.GetString(key, ""); v != "" {
				filters[key] = v
			}
		}
		if len(filters) == 0 {
			filters = nil
		}

		resp, err := ctx.Pipeline.Query(c, pipeline.Request{
			Query:   query,
			Filters: filters,
			TopK:    int(request.GetFloat("top_k", 0)),
		})
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("query failed: %v", err)), nil
		}

		return jsonResult(resp)
	}
}

// NewSemanticSearchTool creates the warn_semantic_search tool definition
func NewSemanticSearchTool() mcp.Tool {
	return mcp.NewTool("warn_semantic_search",
		mcp.WithDescription("Raw similarity search over the schematic catalog without graph enrichment or reasoning. Returns scored record ids. Use warn_query for full answers."),
		mcp.WithString("query",
			mcp.Required(),
			mcp.Description("Search text"),
		),
		mcp.WithString("category",
			mcp.Description("Limit results to one category"),
		),
		mcp.WithNumber("top_k",
			mcp.Description("Max results. Default: 10"),
		),
	)
}

// SemanticSearchHandler handles the warn_semantic_search tool
func SemanticSearchHandler(ctx *ToolContext) func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return func(c context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		query := request.GetString("query", "")
		if query == "" {
			return mcp.NewToolResultError("'query' is required"), nil
		}

		var filters map[string]string
		if category := request.GetString("category", ""); category != "" {
			filters = map[string]string{"category": category}
		}

		results, err := ctx.Backend.Search(c, query, filters, int(request.GetFloat("top_k", 10)))
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("search failed: %v", err)), nil
		}

		return jsonResult(results)
	}
}

// NewGetSchematicTool creates the warn_get_schematic tool definition
func NewGetSchematicTool() mcp.Tool {
	return mcp.NewTool("warn_get_schematic",
		mcp.WithDescription("Fetch the full catalog entry for one schematic by id."),
		mcp.WithString("id",
			mcp.Required(),
			mcp.Description("Schematic id, e.g. 'WRN-00042'"),
		),
	)
}

// GetSchematicHandler handles the warn_get_schematic tool
func GetSchematicHandler(ctx *ToolContext) func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return func(c context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		id := request.GetString("id", "")
		if id == "" {
			return mcp.NewToolResultError("'id' is required"), nil
		}

		s, ok := ctx.Directory.Describe(id)
		if !ok {
			return mcp.NewToolResultError(fmt.Sprintf("no schematic with id %s", id)), nil
		}
		return jsonResult(s)
	}
}

// jsonResult marshals a value as indented JSON text content
func jsonResult(v interface{}) (*mcp.CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to marshal result: %v", err)), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}
