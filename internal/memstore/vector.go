// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package memstore

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/warnerco/schematica/internal/embeddings"
)

// VectorBackend embeds record text at index time and ranks by cosine
// similarity at query time. Records that were never indexed are invisible
// to search. The vector table is not natively concurrent-safe, so Index
// serializes against Search via the RWMutex.
type VectorBackend struct {
	client embeddings.Client

	mu      sync.RWMutex
	records map[string]MemoryRecord
	vectors map[string][]float32
	order   []string
	hits    hitRing
}

// NewVectorBackend creates a vector backend over the given embedding client
func NewVectorBackend(client embeddings.Client) *VectorBackend {
	return &VectorBackend{
		client:  client,
		records: make(map[string]MemoryRecord),
		vectors: make(map[string][]float32),
	}
}

// Index embeds the record text and stores both; re-indexing an ID replaces
// its previous vector
func (b *VectorBackend) Index(ctx context.Context, record MemoryRecord) error {
	vector, err := b.client.Embed(ctx, record.Text)
	if err != nil {
		return fmt.Errorf("failed to embed record %s: %w", record.ID, err)
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if _, exists := b.records[record.ID]; !exists {
		b.order = append(b.order, record.ID)
	}
	b.records[record.ID] = record
	b.vectors[record.ID] = vector
	return nil
}

// Search embeds the query and ranks indexed records by cosine similarity
func (b *VectorBackend) Search(ctx context.Context, query string, filters map[string]string, topK int) ([]SearchResult, error) {
	started := time.Now()
	if topK <= 0 {
		topK = 10
	}

	queryVector, err := b.client.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to embed query: %w", err)
	}

	b.mu.RLock()
	var results []SearchResult
	for _, id := range b.order {
		record := b.records[id]
		if !matchesFilters(record, filters) {
			continue
		}
		similarity := embeddings.CosineSimilarity(queryVector, b.vectors[id])
		results = append(results, SearchResult{
			RecordID: id,
			Score:    similarity,
			Source:   SourceVector,
		})
	}
	b.mu.RUnlock()

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})
	if len(results) > topK {
		results = results[:topK]
	}

	b.hits.record(SourceVector, query, results, started)
	return results, nil
}

// Stats returns the indexed record count
func (b *VectorBackend) Stats(ctx context.Context) (Stats, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	return Stats{
		IndexedCount: len(b.records),
		BackendName:  SourceVector,
	}, nil
}

// RecentHits returns recent retrieval telemetry, newest first
func (b *VectorBackend) RecentHits(limit int) []RetrievalHit {
	return b.hits.recent(limit)
}
