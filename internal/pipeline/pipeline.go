// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package pipeline

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/warnerco/schematica/internal/catalog"
	"github.com/warnerco/schematica/internal/config"
	"github.com/warnerco/schematica/internal/graph"
	"github.com/warnerco/schematica/internal/memstore"
)

// Pipeline wires the stage sequence over a graph store, a memory backend
// and a reasoner. It is safe for concurrent queries: stages only read the
// shared stores and all per-query data lives on the State.
type Pipeline struct {
	resolver   *Resolver
	retriever  *Retriever
	compressor *Compressor
	reasoner   Reasoner
	stub       StubReasoner
	directory  *catalog.Directory
	log        *logrus.Logger
}

// New builds a pipeline from configuration. A nil reasoner selects the
// deterministic stub.
func New(store *graph.Store, backend memstore.Backend, directory *catalog.Directory, reasoner Reasoner, cfg *config.Config, log *logrus.Logger) *Pipeline {
	if reasoner == nil {
		reasoner = StubReasoner{}
	}
	return &Pipeline{
		resolver:   NewResolver(store, cfg.Graph.MaxHops, cfg.Graph.ContextCap, log),
		retriever:  NewRetriever(backend, cfg.Pipeline.TopK, cfg.Pipeline.BoostFactor),
		compressor: NewCompressor(directory, cfg.Pipeline.TokenBudget),
		reasoner:   reasoner,
		directory:  directory,
		log:        log,
	}
}

// Query runs a request through parse_intent, query_graph, retrieve,
// compress, reason and respond. Any stage error other than reason aborts
// with a StageError; reason failures degrade to the stub output.
func (p *Pipeline) Query(ctx context.Context, req Request) (*Response, error) {
	state := &State{
		Query:   req.Query,
		Filters: req.Filters,
		TopK:    req.TopK,
		Start:   time.Now(),
		Timings: make(map[string]time.Duration),
	}

	p.parseIntent(state)
	p.queryGraph(state)

	if err := p.retrieve(ctx, state); err != nil {
		return nil, &StageError{Stage: StageRetrieve, Err: err}
	}

	p.compress(state)
	p.reason(ctx, state)

	return p.respond(state), nil
}

func (p *Pipeline) parseIntent(state *State) {
	started := time.Now()
	state.Intent = ClassifyIntent(state.Query)
	state.Mentions = ExtractMentions(state.Query)
	state.recordTiming(StageParseIntent, started)
}

// queryGraph resolves graph context when the activation rule applies. A
// skipped stage still records a timing entry so traces stay uniform.
func (p *Pipeline) queryGraph(state *State) {
	started := time.Now()
	if ShouldResolve(state.Intent, state.Mentions, state.Query) {
		state.GraphContext = p.resolver.Resolve(state.Mentions, state.Query)
	} else {
		state.Timings[StageQueryGraph] = 0
		return
	}
	state.recordTiming(StageQueryGraph, started)
}

func (p *Pipeline) retrieve(ctx context.Context, state *State) error {
	started := time.Now()
	defer state.recordTiming(StageRetrieve, started)

	candidates, err := p.retriever.Retrieve(ctx, state.Query, state.Filters, state.TopK, state.Intent, &state.GraphContext)
	if err != nil {
		return err
	}
	state.Candidates = candidates
	return nil
}

func (p *Pipeline) compress(state *State) {
	started := time.Now()
	state.CompressedContext = p.compressor.Compress(state.Candidates, &state.GraphContext)
	state.recordTiming(StageCompress, started)
}

// reason never fails the pipeline: a reasoner error falls back to the stub
// and marks the response degraded
func (p *Pipeline) reason(ctx context.Context, state *State) {
	started := time.Now()
	defer state.recordTiming(StageReason, started)

	prompt := Prompt{
		Query:   state.Query,
		Intent:  state.Intent,
		Context: state.CompressedContext,
		Matches: len(state.Candidates),
	}

	text, err := p.reasoner.Reason(ctx, prompt)
	if err != nil {
		p.log.WithError(err).Warn("reasoner failed, degrading to stub output")
		text, _ = p.stub.Reason(ctx, prompt)
		state.ReasoningDegraded = true
	}
	state.Reasoning = text
}

func (p *Pipeline) respond(state *State) *Response {
	started := time.Now()

	results := make([]ResultItem, 0, len(state.Candidates))
	for _, cand := range state.Candidates {
		item := ResultItem{
			ID:     cand.RecordID,
			Score:  cand.Score,
			Source: cand.Source,
		}
		if s, ok := p.directory.Describe(cand.RecordID); ok {
			item.Model = s.Model
			item.Name = s.Name
			item.Component = s.Component
			item.Category = s.Category
			item.Summary = s.Summary
			item.Status = s.Status
		}
		results = append(results, item)
	}

	state.recordTiming(StageRespond, started)

	timings := make(map[string]int64, len(state.Timings))
	for stage, d := range state.Timings {
		timings[stage] = d.Milliseconds()
	}

	return &Response{
		Success: true,
		Intent:  state.Intent,
		Results: results,
		GraphEnrichment: GraphEnrichment{
			EntitiesFound:     state.GraphContext.EntitiesFound,
			RelationshipsUsed: len(state.GraphContext.Entries),
		},
		ContextSummary:    state.CompressedContext,
		Reasoning:         state.Reasoning,
		ReasoningDegraded: state.ReasoningDegraded,
		QueryTimeMs:       time.Since(state.Start).Milliseconds(),
		Timings:           timings,
	}
}
