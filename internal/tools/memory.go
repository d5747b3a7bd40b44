// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package tools

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/warnerco/schematica/internal/catalog"
)

// NewMemoryStatsTool creates the warn_memory_stats tool definition
func NewMemoryStatsTool() mcp.Tool {
	return mcp.NewTool("warn_memory_stats",
		mcp.WithDescription("Report memory backend statistics and recent retrieval telemetry."),
		mcp.WithNumber("recent_hits",
			mcp.Description("How many recent retrievals to include. Default: 10"),
		),
	)
}

// MemoryStatsHandler handles the warn_memory_stats tool
func MemoryStatsHandler(ctx *ToolContext) func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return func(c context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		stats, err := ctx.Backend.Stats(c)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("stats failed: %v", err)), nil
		}

		limit := int(request.GetFloat("recent_hits", 10))
		return jsonResult(map[string]interface{}{
			"backend":          stats.BackendName,
			"indexed_count":    stats.IndexedCount,
			"total_schematics": ctx.Directory.Len(),
			"recent_hits":      ctx.Backend.RecentHits(limit),
		})
	}
}

// NewIndexSchematicTool creates the warn_index_schematic tool definition
func NewIndexSchematicTool() mcp.Tool {
	return mcp.NewTool("warn_index_schematic",
		mcp.WithDescription("Index a single schematic: stores it in the memory backend, adds it to the catalog directory, and extracts graph entities and relationships. Re-indexing an existing id overwrites it."),
		mcp.WithString("schematic",
			mcp.Required(),
			mcp.Description("JSON object with id, model, name, component, version, summary, category and optional status, tags, specifications"),
		),
	)
}

// IndexSchematicHandler handles the warn_index_schematic tool
func IndexSchematicHandler(ctx *ToolContext) func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return func(c context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		raw := request.GetString("schematic", "")
		if raw == "" {
			return mcp.NewToolResultError("'schematic' is required"), nil
		}

		var s catalog.Schematic
		if err := json.Unmarshal([]byte(raw), &s); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("invalid schematic JSON: %v", err)), nil
		}
		if s.ID == "" {
			return mcp.NewToolResultError("schematic must have an id"), nil
		}

		result, err := ctx.Ingestor.IngestOne(c, &s)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to index schematic: %v", err)), nil
		}
		ctx.Directory.Put(s)

		return jsonResult(result)
	}
}
