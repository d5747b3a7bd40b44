// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package memstore

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"
)

// KeywordBackend is the zero-setup tier: token matching over stored text.
// Score is the fraction of query tokens present in the record, with a small
// bonus for an exact phrase match.
type KeywordBackend struct {
	mu      sync.RWMutex
	records map[string]MemoryRecord
	order   []string // indexing order, the tie-break for equal scores
	hits    hitRing
}

// NewKeywordBackend creates an empty keyword backend
func NewKeywordBackend() *KeywordBackend {
	return &KeywordBackend{
		records: make(map[string]MemoryRecord),
	}
}

// Index stores or overwrites a record
func (b *KeywordBackend) Index(ctx context.Context, record MemoryRecord) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if _, exists := b.records[record.ID]; !exists {
		b.order = append(b.order, record.ID)
	}
	b.records[record.ID] = record
	return nil
}

// Search ranks records by keyword score, descending
func (b *KeywordBackend) Search(ctx context.Context, query string, filters map[string]string, topK int) ([]SearchResult, error) {
	started := time.Now()
	if topK <= 0 {
		topK = 10
	}

	b.mu.RLock()
	var results []SearchResult
	for _, id := range b.order {
		record := b.records[id]
		if !matchesFilters(record, filters) {
			continue
		}
		score := keywordScore(record.Text, query)
		if score <= 0 {
			continue
		}
		results = append(results, SearchResult{
			RecordID: record.ID,
			Score:    score,
			Source:   SourceKeyword,
		})
	}
	b.mu.RUnlock()

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})
	if len(results) > topK {
		results = results[:topK]
	}

	b.hits.record(SourceKeyword, query, results, started)
	return results, nil
}

// Stats returns the indexed record count
func (b *KeywordBackend) Stats(ctx context.Context) (Stats, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	return Stats{
		IndexedCount: len(b.records),
		BackendName:  SourceKeyword,
	}, nil
}

// RecentHits returns recent retrieval telemetry, newest first
func (b *KeywordBackend) RecentHits(limit int) []RetrievalHit {
	return b.hits.recent(limit)
}

// keywordScore is the fraction of query tokens present in the text, plus a
// 0.2 bonus for an exact phrase match, capped at 1.0
func keywordScore(text, query string) float64 {
	queryLower := strings.ToLower(query)
	textLower := strings.ToLower(text)

	tokens := strings.Fields(queryLower)
	if len(tokens) == 0 {
		return 0
	}

	matches := 0
	for _, token := range tokens {
		if strings.Contains(textLower, token) {
			matches++
		}
	}

	score := float64(matches) / float64(len(tokens))
	if strings.Contains(textLower, queryLower) {
		score += 0.2
	}
	if score > 1.0 {
		score = 1.0
	}
	return score
}
