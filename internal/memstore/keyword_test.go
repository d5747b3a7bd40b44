// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package memstore

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warnerco/schematica/internal/config"
)

func TestKeywordBackend_IndexIdempotent(t *testing.T) {
	b := NewKeywordBackend()
	ctx := context.Background()

	require.NoError(t, b.Index(ctx, MemoryRecord{ID: "WRN-00001", Text: "hydraulic actuator assembly"}))
	require.NoError(t, b.Index(ctx, MemoryRecord{ID: "WRN-00001", Text: "thermal regulator assembly"}))

	stats, err := b.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.IndexedCount)

	// The latest content wins
	results, err := b.Search(ctx, "thermal", nil, 10)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "WRN-00001", results[0].RecordID)

	results, err = b.Search(ctx, "hydraulic", nil, 10)
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestKeywordBackend_ScoreIsTokenFraction(t *testing.T) {
	b := NewKeywordBackend()
	ctx := context.Background()

	require.NoError(t, b.Index(ctx, MemoryRecord{ID: "full", Text: "lidar navigation sensor"}))
	require.NoError(t, b.Index(ctx, MemoryRecord{ID: "partial", Text: "lidar rangefinder"}))

	results, err := b.Search(ctx, "lidar sensor", nil, 10)
	require.NoError(t, err)
	require.Len(t, results, 2)

	assert.Equal(t, "full", results[0].RecordID)
	assert.Equal(t, "partial", results[1].RecordID)
	assert.InDelta(t, 0.5, results[1].Score, 0.0001)
	assert.Greater(t, results[0].Score, results[1].Score)
	assert.Equal(t, SourceKeyword, results[0].Source)
}

func TestKeywordBackend_PhraseBonus(t *testing.T) {
	b := NewKeywordBackend()
	ctx := context.Background()

	require.NoError(t, b.Index(ctx, MemoryRecord{ID: "phrase", Text: "main power system failure"}))
	require.NoError(t, b.Index(ctx, MemoryRecord{ID: "scattered", Text: "power relay triggers system reset"}))

	results, err := b.Search(ctx, "power system", nil, 10)
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "phrase", results[0].RecordID)
	assert.InDelta(t, 1.0, results[0].Score, 0.0001) // capped at 1.0
}

func TestKeywordBackend_Filters(t *testing.T) {
	b := NewKeywordBackend()
	ctx := context.Background()

	require.NoError(t, b.Index(ctx, MemoryRecord{
		ID: "a", Text: "pressure sensor", Metadata: map[string]string{"category": "sensors"},
	}))
	require.NoError(t, b.Index(ctx, MemoryRecord{
		ID: "b", Text: "pressure valve", Metadata: map[string]string{"category": "hydraulics"},
	}))

	results, err := b.Search(ctx, "pressure", map[string]string{"category": "sensors"}, 10)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "a", results[0].RecordID)
}

func TestKeywordBackend_TopK(t *testing.T) {
	b := NewKeywordBackend()
	ctx := context.Background()

	for _, id := range []string{"r1", "r2", "r3", "r4"} {
		require.NoError(t, b.Index(ctx, MemoryRecord{ID: id, Text: "gripper servo"}))
	}

	results, err := b.Search(ctx, "gripper", nil, 2)
	require.NoError(t, err)
	assert.Len(t, results, 2)
	// Equal scores keep indexing order (stable sort)
	assert.Equal(t, "r1", results[0].RecordID)
	assert.Equal(t, "r2", results[1].RecordID)
}

func TestKeywordBackend_Telemetry(t *testing.T) {
	b := NewKeywordBackend()
	ctx := context.Background()

	require.NoError(t, b.Index(ctx, MemoryRecord{ID: "a", Text: "camera module"}))

	_, err := b.Search(ctx, "camera", nil, 10)
	require.NoError(t, err)
	_, err = b.Search(ctx, "module", nil, 10)
	require.NoError(t, err)

	hits := b.RecentHits(10)
	require.Len(t, hits, 2)
	assert.Equal(t, "module", hits[0].Query) // newest first
	assert.Equal(t, "camera", hits[1].Query)
	assert.NotEmpty(t, hits[0].ID)
	assert.Equal(t, SourceKeyword, hits[0].Backend)
}

func TestNew_SelectsTier(t *testing.T) {
	backend, err := New(&config.MemoryConfig{Backend: "keyword"})
	require.NoError(t, err)
	_, ok := backend.(*KeywordBackend)
	assert.True(t, ok)

	backend, err = New(&config.MemoryConfig{
		Backend:      "vector",
		EmbeddingURL: "http://localhost:11434/v1",
	})
	require.NoError(t, err)
	_, ok = backend.(*VectorBackend)
	assert.True(t, ok)

	_, err = New(&config.MemoryConfig{Backend: "unknown"})
	assert.Error(t, err)
}
