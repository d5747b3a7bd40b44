// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package pipeline

import (
	"fmt"
	"time"

	"github.com/warnerco/schematica/internal/memstore"
)

// Stage names in execution order
const (
	StageParseIntent = "parse_intent"
	StageQueryGraph  = "query_graph"
	StageRetrieve    = "retrieve"
	StageCompress    = "compress"
	StageReason      = "reason"
	StageRespond     = "respond"
)

// Request is one query into the pipeline
type Request struct {
	Query   string            `json:"query"`
	Filters map[string]string `json:"filters,omitempty"`
	TopK    int               `json:"top_k,omitempty"`
}

// State is threaded through the stages. Each stage appends its own fields
// and never rewrites another stage's contribution. A State lives for one
// query and is discarded after the response is built.
type State struct {
	Query   string
	Filters map[string]string
	TopK    int

	Intent            Intent
	Mentions          []string
	GraphContext      GraphContext
	Candidates        []memstore.SearchResult
	CompressedContext string
	Reasoning         string
	ReasoningDegraded bool

	Start   time.Time
	Timings map[string]time.Duration
}

// recordTiming stores how long a stage took
func (s *State) recordTiming(stage string, since time.Time) {
	s.Timings[stage] = time.Since(since)
}

// StageError reports which stage aborted the pipeline
type StageError struct {
	Stage string
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("pipeline stage %s failed: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}

// ResultItem is one candidate in the response, enriched with catalog fields
type ResultItem struct {
	ID        string  `json:"id"`
	Model     string  `json:"model,omitempty"`
	Name      string  `json:"name,omitempty"`
	Component string  `json:"component,omitempty"`
	Category  string  `json:"category,omitempty"`
	Summary   string  `json:"summary,omitempty"`
	Status    string  `json:"status,omitempty"`
	Score     float64 `json:"score"`
	Source    string  `json:"source"`
}

// GraphEnrichment summarizes what the graph contributed to a response
type GraphEnrichment struct {
	EntitiesFound     int `json:"entities_found"`
	RelationshipsUsed int `json:"relationships_used"`
}

// Response is the structured answer to a query. Success is the single
// source of truth: a false value means the results are not complete.
type Response struct {
	Success           bool             `json:"success"`
	Intent            Intent           `json:"intent"`
	Results           []ResultItem     `json:"results"`
	GraphEnrichment   GraphEnrichment  `json:"graph_enrichment"`
	ContextSummary    string           `json:"context_summary"`
	Reasoning         string           `json:"reasoning"`
	ReasoningDegraded bool             `json:"reasoning_degraded"`
	QueryTimeMs       int64            `json:"query_time_ms"`
	Timings           map[string]int64 `json:"timings_ms"`
}
