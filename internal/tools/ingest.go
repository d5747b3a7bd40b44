// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package tools

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/warnerco/schematica/internal/catalog"
)

// NewIngestCatalogTool creates the warn_ingest_catalog tool definition
func NewIngestCatalogTool() mcp.Tool {
	return mcp.NewTool("warn_ingest_catalog",
		mcp.WithDescription("Load a catalog file (YAML or JSON) and ingest every schematic in it: memory backend indexing plus graph extraction. Already-indexed schematics are overwritten."),
		mcp.WithString("path",
			mcp.Required(),
			mcp.Description("Path to the catalog file"),
		),
	)
}

// IngestCatalogHandler handles the warn_ingest_catalog tool
func IngestCatalogHandler(ctx *ToolContext) func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return func(c context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		path := request.GetString("path", "")
		if path == "" {
			return mcp.NewToolResultError("'path' is required"), nil
		}

		schematics, err := catalog.Load(path)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to load catalog: %v", err)), nil
		}

		result, err := ctx.Ingestor.IngestAll(c, schematics)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("ingestion failed: %v", err)), nil
		}
		for _, s := range schematics {
			ctx.Directory.Put(s)
		}

		return jsonResult(result)
	}
}
