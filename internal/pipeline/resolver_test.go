// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package pipeline

import (
	"io"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warnerco/schematica/internal/database"
	"github.com/warnerco/schematica/internal/graph"
)

func testLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func setupGraph(t *testing.T) *graph.Store {
	t.Helper()
	db, err := database.Connect(&database.Config{Type: "sqlite", SQLitePath: ":memory:"})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	store, err := graph.NewStore(db)
	require.NoError(t, err)
	return store
}

func addEntity(t *testing.T, store *graph.Store, id, entityType, name string) {
	t.Helper()
	require.NoError(t, store.AddEntity(graph.Entity{ID: id, EntityType: entityType, Name: name}))
}

func addEdge(t *testing.T, store *graph.Store, subject, predicate, object string) {
	t.Helper()
	_, _, err := store.AddRelationship(subject, predicate, object, nil)
	require.NoError(t, err)
}

func TestShouldResolve(t *testing.T) {
	assert.False(t, ShouldResolve(IntentLookup, []string{"WRN-00001"}, "get WRN-00001"))
	assert.True(t, ShouldResolve(IntentDiagnostic, nil, "what is failing"))
	assert.True(t, ShouldResolve(IntentAnalytics, nil, "how many sensors"))
	assert.True(t, ShouldResolve(IntentSearch, nil, "what is part of the arm"))
	assert.True(t, ShouldResolve(IntentSearch, []string{"model:WC-100"}, "wc100 parts"))
	assert.False(t, ShouldResolve(IntentSearch, nil, "interesting schematics"))
}

func TestResolve_ExactMention(t *testing.T) {
	store := setupGraph(t)
	addEntity(t, store, "WRN-00001", database.EntityTypeCatalogItem, "WC-100 - Atlas Prime: Pump")
	addEntity(t, store, "category:hydraulics", database.EntityTypeCategory, "Hydraulics")
	addEdge(t, store, "WRN-00001", "has_category", "category:hydraulics")

	r := NewResolver(store, 2, 20, testLogger())
	ctx := r.Resolve([]string{"WRN-00001"}, "anything")

	assert.Equal(t, 1, ctx.EntitiesFound)
	require.Len(t, ctx.Entries, 1)
	assert.Equal(t, ContextEntry{"WRN-00001", "has_category", "category:hydraulics"}, ctx.Entries[0])
}

func TestResolve_FuzzyMention(t *testing.T) {
	store := setupGraph(t)
	addEntity(t, store, "PWR", database.EntityTypeSystem, "Power System")
	addEntity(t, store, "R1", database.EntityTypeCatalogItem, "Robot Arm")
	addEdge(t, store, "R1", "depends_on", "PWR")

	r := NewResolver(store, 2, 20, testLogger())
	ctx := r.Resolve([]string{"component:power_system"}, "what depends on the power system")

	assert.Equal(t, 1, ctx.EntitiesFound)
	assert.Contains(t, ctx.Entries, ContextEntry{"R1", "depends_on", "PWR"})
	assert.True(t, ctx.RelatedIDs()["R1"])
}

func TestResolve_FallbackQuerySearch(t *testing.T) {
	store := setupGraph(t)
	addEntity(t, store, "WELD", database.EntityTypeComponent, "Welding System")
	addEntity(t, store, "WRN-00003", database.EntityTypeCatalogItem, "Titan Forge Arm")
	addEdge(t, store, "WRN-00003", "contains", "WELD")

	r := NewResolver(store, 2, 20, testLogger())
	// No mention resolves, so the query terms drive an entity search
	ctx := r.Resolve(nil, "what contains the welding system")

	assert.NotEmpty(t, ctx.Entries)
	assert.True(t, ctx.RelatedIDs()["WRN-00003"])
}

func TestResolve_TwoHops(t *testing.T) {
	store := setupGraph(t)
	addEntity(t, store, "A", database.EntityTypeCatalogItem, "A")
	addEntity(t, store, "B", database.EntityTypeComponent, "B")
	addEntity(t, store, "C", database.EntityTypeSystem, "C")
	addEdge(t, store, "A", "contains", "B")
	addEdge(t, store, "B", "belongs_to_model", "C")

	r := NewResolver(store, 2, 20, testLogger())
	ctx := r.Resolve([]string{"A"}, "")

	assert.Contains(t, ctx.Entries, ContextEntry{"A", "contains", "B"})
	assert.Contains(t, ctx.Entries, ContextEntry{"B", "belongs_to_model", "C"})

	// One hop stops at the direct neighborhood
	r1 := NewResolver(store, 1, 20, testLogger())
	ctx1 := r1.Resolve([]string{"A"}, "")
	assert.Contains(t, ctx1.Entries, ContextEntry{"A", "contains", "B"})
	assert.NotContains(t, ctx1.Entries, ContextEntry{"B", "belongs_to_model", "C"})
}

func TestResolve_DedupeAndCap(t *testing.T) {
	store := setupGraph(t)
	addEntity(t, store, "HUB", database.EntityTypeSystem, "Hub")
	for i := 0; i < 30; i++ {
		id := string(rune('A'+i%26)) + string(rune('0'+i/26))
		addEntity(t, store, id, database.EntityTypeCatalogItem, "Node "+id)
		addEdge(t, store, id, "connected_to", "HUB")
	}

	r := NewResolver(store, 2, 20, testLogger())
	ctx := r.Resolve([]string{"HUB"}, "")
	assert.Len(t, ctx.Entries, 20)

	// Resolving the hub and one spoke dedupes the shared edge
	ctx2 := NewResolver(store, 1, 100, testLogger()).Resolve([]string{"HUB", "A0"}, "")
	seen := make(map[ContextEntry]int)
	for _, e := range ctx2.Entries {
		seen[e]++
	}
	for entry, count := range seen {
		assert.Equal(t, 1, count, "duplicate entry %v", entry)
	}
}

func TestResolve_UnresolvableMentionIsNonFatal(t *testing.T) {
	store := setupGraph(t)
	r := NewResolver(store, 2, 20, testLogger())

	ctx := r.Resolve([]string{"status:imaginary"}, "nothing here either")
	assert.Zero(t, ctx.EntitiesFound)
	assert.Empty(t, ctx.Entries)
}
