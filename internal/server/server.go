// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package server wraps the mcp-go server and registers the tool surface.
package server

import (
	"fmt"
	"net/http"

	"github.com/mark3labs/mcp-go/server"
	"github.com/sirupsen/logrus"

	"github.com/warnerco/schematica/internal/config"
	"github.com/warnerco/schematica/internal/tools"
)

// MCPServer wraps the mcp-go server with our configuration
type MCPServer struct {
	mcpServer *server.MCPServer
	config    *config.Config
	log       *logrus.Logger
}

// NewMCPServer creates the MCP server and registers all tools
func NewMCPServer(cfg *config.Config, toolCtx *tools.ToolContext, log *logrus.Logger) *MCPServer {
	mcpServer := server.NewMCPServer(
		"Schematica",
		"1.0.0",
		server.WithToolCapabilities(true),
	)

	// warn_query: the main entry point, runs the full retrieval pipeline
	mcpServer.AddTool(tools.NewQueryTool(), tools.QueryHandler(toolCtx))

	// warn_semantic_search: raw backend search without graph or reasoning
	mcpServer.AddTool(tools.NewSemanticSearchTool(), tools.SemanticSearchHandler(toolCtx))

	// warn_get_schematic: full catalog entry by id
	mcpServer.AddTool(tools.NewGetSchematicTool(), tools.GetSchematicHandler(toolCtx))

	// warn_memory_stats: backend stats and retrieval telemetry
	mcpServer.AddTool(tools.NewMemoryStatsTool(), tools.MemoryStatsHandler(toolCtx))

	// warn_index_schematic / warn_ingest_catalog: indexing surface
	mcpServer.AddTool(tools.NewIndexSchematicTool(), tools.IndexSchematicHandler(toolCtx))
	mcpServer.AddTool(tools.NewIngestCatalogTool(), tools.IngestCatalogHandler(toolCtx))

	// Graph authoring and inspection surface
	mcpServer.AddTool(tools.NewAddRelationshipTool(), tools.AddRelationshipHandler(toolCtx))
	mcpServer.AddTool(tools.NewGraphNeighborsTool(), tools.GraphNeighborsHandler(toolCtx))
	mcpServer.AddTool(tools.NewGraphPathTool(), tools.GraphPathHandler(toolCtx))
	mcpServer.AddTool(tools.NewGraphStatsTool(), tools.GraphStatsHandler(toolCtx))

	return &MCPServer{
		mcpServer: mcpServer,
		config:    cfg,
		log:       log,
	}
}

// ServeStdio serves MCP over stdin/stdout. Nothing but JSON-RPC may touch
// stdout in this mode.
func (s *MCPServer) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

// ServeHTTP serves MCP over streamable HTTP on the configured address
func (s *MCPServer) ServeHTTP() error {
	addr := fmt.Sprintf("%s:%d", s.config.Server.Host, s.config.Server.Port)
	httpServer := server.NewStreamableHTTPServer(s.mcpServer)

	mux := http.NewServeMux()
	mux.Handle("/mcp", httpServer)
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		fmt.Fprintln(w, "ok")
	})

	s.log.WithField("addr", addr).Info("serving MCP over HTTP")
	return http.ListenAndServe(addr, mux)
}

// GetMCPServer returns the underlying MCP server
func (s *MCPServer) GetMCPServer() *server.MCPServer {
	return s.mcpServer
}
