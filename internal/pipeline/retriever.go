// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package pipeline

import (
	"context"
	"fmt"
	"sort"

	"github.com/warnerco/schematica/internal/memstore"
)

// Retriever fetches candidates from the memory backend and applies the
// graph boost.
type Retriever struct {
	backend memstore.Backend
	topK    int
	boost   float64
}

// NewRetriever creates a retriever; topK and boost fall back to defaults
// when unset.
func NewRetriever(backend memstore.Backend, topK int, boost float64) *Retriever {
	if topK <= 0 {
		topK = 10
	}
	if boost < 1.0 {
		boost = 1.2
	}
	return &Retriever{backend: backend, topK: topK, boost: boost}
}

// Retrieve searches the backend and boosts candidates that appear in the
// graph context. Analytics queries widen the candidate set for better
// aggregates. The re-sort is stable so equal scores keep backend rank.
func (r *Retriever) Retrieve(ctx context.Context, query string, filters map[string]string, topK int, intent Intent, graphCtx *GraphContext) ([]memstore.SearchResult, error) {
	if topK <= 0 {
		topK = r.topK
	}
	if intent == IntentAnalytics {
		widened := topK * 2
		if widened > 20 {
			widened = 20
		}
		if widened > topK {
			topK = widened
		}
	}

	results, err := r.backend.Search(ctx, query, filters, topK)
	if err != nil {
		return nil, fmt.Errorf("backend search failed: %w", err)
	}

	if graphCtx == nil || len(graphCtx.Entries) == 0 {
		return results, nil
	}

	related := graphCtx.RelatedIDs()
	boosted := false
	for i := range results {
		if related[results[i].RecordID] {
			results[i].Score *= r.boost
			results[i].Source = memstore.SourceGraphBoosted
			boosted = true
		}
	}
	if boosted {
		sort.SliceStable(results, func(i, j int) bool {
			return results[i].Score > results[j].Score
		})
	}
	return results, nil
}
