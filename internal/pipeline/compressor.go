// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package pipeline

import (
	"fmt"
	"strings"

	"github.com/warnerco/schematica/internal/catalog"
	"github.com/warnerco/schematica/internal/memstore"
)

// Compressor renders candidates and graph context into a single bounded
// string for the reasoner.
type Compressor struct {
	directory *catalog.Directory
	budget    int
}

// NewCompressor creates a compressor with the given approximate token
// budget (default 2000).
func NewCompressor(directory *catalog.Directory, tokenBudget int) *Compressor {
	if tokenBudget <= 0 {
		tokenBudget = 2000
	}
	return &Compressor{directory: directory, budget: tokenBudget}
}

// Compress emits one line per candidate (id, summary, category) plus a
// rendering of the graph relationships. Candidates are dropped lowest-score
// first until the output fits the token budget; the graph summary is never
// dropped.
func (c *Compressor) Compress(candidates []memstore.SearchResult, graphCtx *GraphContext) string {
	graphSection := c.renderGraph(graphCtx)

	for keep := len(candidates); keep >= 0; keep-- {
		text := c.render(candidates[:keep], graphSection)
		if approxTokens(text) <= c.budget {
			return text
		}
	}
	// Even the bare graph summary overflows; it still wins over candidates
	return c.render(nil, graphSection)
}

func (c *Compressor) render(candidates []memstore.SearchResult, graphSection string) string {
	var parts []string

	if graphSection != "" {
		parts = append(parts, "=== Knowledge Graph Context ===", graphSection, "")
	}

	if len(candidates) == 0 {
		parts = append(parts, "No matching schematics found.")
		return strings.Join(parts, "\n")
	}

	parts = append(parts, "=== Search Results ===")
	for _, cand := range candidates {
		parts = append(parts, c.candidateLine(cand))
	}
	return strings.Join(parts, "\n")
}

// candidateLine renders one candidate with only the fields the reasoner
// needs: id, model/name, component, category and a trimmed summary
func (c *Compressor) candidateLine(cand memstore.SearchResult) string {
	s, ok := c.directory.Describe(cand.RecordID)
	if !ok {
		return fmt.Sprintf("[%s] (no catalog entry)", cand.RecordID)
	}

	summary := s.Summary
	if runes := []rune(summary); len(runes) > 100 {
		summary = string(runes[:100]) + "..."
	}
	return fmt.Sprintf("[%s] %s/%s: %s (%s) - %s",
		s.ID, s.Model, s.Name, s.Component, s.Category, summary)
}

// renderGraph draws each context entry as "A -predicate-> B"
func (c *Compressor) renderGraph(graphCtx *GraphContext) string {
	if graphCtx == nil || len(graphCtx.Entries) == 0 {
		return ""
	}
	lines := make([]string, 0, len(graphCtx.Entries))
	for _, e := range graphCtx.Entries {
		lines = append(lines, fmt.Sprintf("%s -%s-> %s", e.EntityID, e.Predicate, e.RelatedID))
	}
	return strings.Join(lines, "\n")
}

// approxTokens estimates token count as whitespace words times 1.3
func approxTokens(text string) int {
	return int(float64(len(strings.Fields(text))) * 1.3)
}
