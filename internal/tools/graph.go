// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package tools

import (
	"context"
	"errors"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/warnerco/schematica/internal/graph"
)

// NewAddRelationshipTool creates the warn_add_relationship tool definition
func NewAddRelationshipTool() mcp.Tool {
	return mcp.NewTool("warn_add_relationship",
		mcp.WithDescription("Author a relationship between two existing graph entities. Predicates are free-form strings; both endpoints must already exist. Adding the same triplet twice is a no-op."),
		mcp.WithString("subject",
			mcp.Required(),
			mcp.Description("Subject entity id, e.g. 'WRN-00042'"),
		),
		mcp.WithString("predicate",
			mcp.Required(),
			mcp.Description("Relationship label, e.g. 'depends_on', 'compatible_with'"),
		),
		mcp.WithString("object",
			mcp.Required(),
			mcp.Description("Object entity id, e.g. 'component:power_system'"),
		),
	)
}

// AddRelationshipHandler handles the warn_add_relationship tool
func AddRelationshipHandler(ctx *ToolContext) func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return func(c context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		subject := request.GetString("subject", "")
		predicate := request.GetString("predicate", "")
		object := request.GetString("object", "")
		if subject == "" || predicate == "" || object == "" {
			return mcp.NewToolResultError("'subject', 'predicate' and 'object' are required"), nil
		}

		id, created, err := ctx.Store.AddRelationship(subject, predicate, object, nil)
		if err != nil {
			if errors.Is(err, graph.ErrInvalidReference) {
				return mcp.NewToolResultError(fmt.Sprintf("invalid reference: %v", err)), nil
			}
			return mcp.NewToolResultError(fmt.Sprintf("failed to add relationship: %v", err)), nil
		}

		return jsonResult(map[string]interface{}{
			"relationship_id": id,
			"created":         created,
			"subject":         subject,
			"predicate":       predicate,
			"object":          object,
		})
	}
}

// NewGraphNeighborsTool creates the warn_graph_neighbors tool definition
func NewGraphNeighborsTool() mcp.Tool {
	return mcp.NewTool("warn_graph_neighbors",
		mcp.WithDescription("List the relationships touching one entity."),
		mcp.WithString("entity",
			mcp.Required(),
			mcp.Description("Entity id"),
		),
		mcp.WithString("direction",
			mcp.Description("'in', 'out' or 'both'. Default: both"),
		),
	)
}

// GraphNeighborsHandler handles the warn_graph_neighbors tool
func GraphNeighborsHandler(ctx *ToolContext) func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return func(c context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		entity := request.GetString("entity", "")
		if entity == "" {
			return mcp.NewToolResultError("'entity' is required"), nil
		}

		direction := graph.Direction(request.GetString("direction", string(graph.DirectionBoth)))
		switch direction {
		case graph.DirectionIn, graph.DirectionOut, graph.DirectionBoth:
		default:
			return mcp.NewToolResultError(fmt.Sprintf("invalid direction %q", direction)), nil
		}

		return jsonResult(ctx.Store.GetNeighbors(entity, direction))
	}
}

// NewGraphPathTool creates the warn_graph_path tool definition
func NewGraphPathTool() mcp.Tool {
	return mcp.NewTool("warn_graph_path",
		mcp.WithDescription("Find the shortest chain of relationships connecting two entities, treating edges as undirected. Returns an empty path when the entities are not connected within the hop limit."),
		mcp.WithString("source",
			mcp.Required(),
			mcp.Description("Source entity id"),
		),
		mcp.WithString("target",
			mcp.Required(),
			mcp.Description("Target entity id"),
		),
		mcp.WithNumber("max_hops",
			mcp.Description("Hop limit. Default: 2"),
		),
	)
}

// GraphPathHandler handles the warn_graph_path tool
func GraphPathHandler(ctx *ToolContext) func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return func(c context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		source := request.GetString("source", "")
		target := request.GetString("target", "")
		if source == "" || target == "" {
			return mcp.NewToolResultError("'source' and 'target' are required"), nil
		}

		maxHops := int(request.GetFloat("max_hops", 2))
		path, err := ctx.Store.GetPath(source, target, maxHops)
		if err != nil {
			if errors.Is(err, graph.ErrNotFound) {
				// Disconnection is a valid outcome, not a tool failure
				return jsonResult(map[string]interface{}{
					"connected": false,
					"path":      []graph.Relationship{},
				})
			}
			return mcp.NewToolResultError(fmt.Sprintf("path query failed: %v", err)), nil
		}

		return jsonResult(map[string]interface{}{
			"connected": true,
			"path":      path,
		})
	}
}

// NewGraphStatsTool creates the warn_graph_stats tool definition
func NewGraphStatsTool() mcp.Tool {
	return mcp.NewTool("warn_graph_stats",
		mcp.WithDescription("Report knowledge graph statistics: node and edge counts, density, weakly-connected components, and per-type breakdowns."),
	)
}

// GraphStatsHandler handles the warn_graph_stats tool
func GraphStatsHandler(ctx *ToolContext) func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return func(c context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return jsonResult(ctx.Store.Stats())
	}
}
