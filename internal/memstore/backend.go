// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package memstore

import (
	"context"
	"errors"
	"fmt"

	"github.com/warnerco/schematica/internal/config"
	"github.com/warnerco/schematica/internal/embeddings"
)

// Search result source labels. The pipeline relabels graph-boosted
// candidates after retrieval.
const (
	SourceKeyword      = "keyword"
	SourceVector       = "vector"
	SourceRemote       = "remote"
	SourceGraphBoosted = "graph-boosted"
)

// ErrBackendUnavailable is returned when the remote tier stays unreachable
// after its single retry. Callers must not mistake it for an empty result.
var ErrBackendUnavailable = errors.New("memory backend unavailable")

// MemoryRecord is the searchable unit indexed by a backend. Indexing the
// same ID again overwrites the previous content.
type MemoryRecord struct {
	ID       string            `json:"id"`
	Text     string            `json:"text"`
	Metadata map[string]string `json:"metadata,omitempty"`
}

// SearchResult is a similarity-ranked hit. Scores are backend-defined but
// monotonically comparable within one tier.
type SearchResult struct {
	RecordID string  `json:"record_id"`
	Score    float64 `json:"score"`
	Source   string  `json:"source"`
}

// Stats describes the state of a backend
type Stats struct {
	IndexedCount int    `json:"indexed_count"`
	BackendName  string `json:"backend_name"`
}

// Backend is the common interface over the three memory tiers. Exactly one
// tier is active per deployment; callers never know which tier answered.
type Backend interface {
	Index(ctx context.Context, record MemoryRecord) error
	Search(ctx context.Context, query string, filters map[string]string, topK int) ([]SearchResult, error)
	Stats(ctx context.Context) (Stats, error)
	RecentHits(limit int) []RetrievalHit
}

// New creates the backend tier selected by the configuration. Tier selection
// is a startup-time decision; switching requires re-indexing all records.
func New(cfg *config.MemoryConfig) (Backend, error) {
	switch cfg.Backend {
	case "keyword":
		return NewKeywordBackend(), nil

	case "vector":
		client := embeddings.NewOpenAIClient(
			cfg.EmbeddingURL,
			cfg.EmbeddingKey,
			cfg.EmbeddingModel,
			cfg.EmbeddingDimensions,
		)
		return NewVectorBackend(client), nil

	case "remote":
		return NewRemoteBackend(RemoteConfig{
			Endpoint:       cfg.RemoteEndpoint,
			APIKey:         cfg.RemoteKey,
			Index:          cfg.RemoteIndex,
			TimeoutSeconds: cfg.RemoteTimeoutSeconds,
		}), nil

	default:
		return nil, fmt.Errorf("unknown memory backend: %s", cfg.Backend)
	}
}

// matchesFilters checks record metadata against equality filters
func matchesFilters(record MemoryRecord, filters map[string]string) bool {
	for key, want := range filters {
		if record.Metadata[key] != want {
			return false
		}
	}
	return true
}
