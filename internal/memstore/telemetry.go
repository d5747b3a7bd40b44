// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package memstore

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// retrievalHistorySize bounds the telemetry ring
const retrievalHistorySize = 100

// RetrievalHit records one search call for observability
type RetrievalHit struct {
	ID         string    `json:"id"`
	Timestamp  time.Time `json:"timestamp"`
	Query      string    `json:"query"`
	RecordIDs  []string  `json:"record_ids"`
	Scores     []float64 `json:"scores"`
	DurationMs float64   `json:"duration_ms"`
	Backend    string    `json:"backend"`
}

// hitRing is a fixed-size ring of recent retrieval hits, shared by all tiers
type hitRing struct {
	mu   sync.Mutex
	hits []RetrievalHit
}

// record appends a hit built from the given search outcome
func (r *hitRing) record(backend, query string, results []SearchResult, started time.Time) {
	hit := RetrievalHit{
		ID:         uuid.NewString(),
		Timestamp:  time.Now().UTC(),
		Query:      query,
		DurationMs: float64(time.Since(started).Microseconds()) / 1000.0,
		Backend:    backend,
	}
	for _, res := range results {
		hit.RecordIDs = append(hit.RecordIDs, res.RecordID)
		hit.Scores = append(hit.Scores, res.Score)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.hits = append(r.hits, hit)
	if len(r.hits) > retrievalHistorySize {
		r.hits = r.hits[len(r.hits)-retrievalHistorySize:]
	}
}

// recent returns up to limit hits, newest first
func (r *hitRing) recent(limit int) []RetrievalHit {
	if limit <= 0 {
		limit = 20
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	start := len(r.hits) - limit
	if start < 0 {
		start = 0
	}

	out := make([]RetrievalHit, 0, len(r.hits)-start)
	for i := len(r.hits) - 1; i >= start; i-- {
		out = append(out, r.hits[i])
	}
	return out
}
