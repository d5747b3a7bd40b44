// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package tools defines the MCP tool surface: the query pipeline, the
// graph authoring operations and the backend administrative operations.
package tools

import (
	"github.com/sirupsen/logrus"

	"github.com/warnerco/schematica/internal/catalog"
	"github.com/warnerco/schematica/internal/graph"
	"github.com/warnerco/schematica/internal/memstore"
	"github.com/warnerco/schematica/internal/pipeline"
)

// ToolContext carries the shared dependencies for tool handlers
type ToolContext struct {
	Pipeline  *pipeline.Pipeline
	Store     *graph.Store
	Backend   memstore.Backend
	Directory *catalog.Directory
	Ingestor  *catalog.Ingestor
	Log       *logrus.Logger
}

// NewToolContext creates a tool context
func NewToolContext(p *pipeline.Pipeline, store *graph.Store, backend memstore.Backend, directory *catalog.Directory, ingestor *catalog.Ingestor, log *logrus.Logger) *ToolContext {
	return &ToolContext{
		Pipeline:  p,
		Store:     store,
		Backend:   backend,
		Directory: directory,
		Ingestor:  ingestor,
		Log:       log,
	}
}
