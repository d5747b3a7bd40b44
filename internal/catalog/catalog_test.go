// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package catalog

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/warnerco/schematica/internal/database"
	"github.com/warnerco/schematica/internal/graph"
	"github.com/warnerco/schematica/internal/memstore"
)

func testSchematics() []Schematic {
	return []Schematic{
		{
			ID:        "WRN-00001",
			Model:     "WC-100",
			Name:      "Atlas Prime",
			Component: "Hydraulic Pump",
			Version:   "2.1",
			Summary:   "Primary hydraulic pump assembly for heavy lifting.",
			Category:  "hydraulics",
			Status:    "active",
			Tags:      []string{"industrial"},
		},
		{
			ID:        "WRN-00002",
			Model:     "WC-100",
			Name:      "Atlas Prime",
			Component: "Thermal Camera",
			Version:   "1.0",
			Summary:   "Thermal camera module for overheating detection.",
			Category:  "sensors",
		},
		{
			ID:        "WRN-00003",
			Model:     "WC-200",
			Name:      "Titan Forge",
			Component: "Welding Arm",
			Version:   "3.2",
			Summary:   "Articulated welding arm with safety interlock.",
			Category:  "manipulation",
			Status:    "deprecated",
		},
	}
}

func setupIngestor(t *testing.T) (*Ingestor, *graph.Store, *memstore.KeywordBackend, *gorm.DB) {
	t.Helper()

	db, err := database.Connect(&database.Config{Type: "sqlite", SQLitePath: ":memory:"})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))

	store, err := graph.NewStore(db)
	require.NoError(t, err)

	backend := memstore.NewKeywordBackend()
	log := logrus.New()
	log.SetOutput(io.Discard)

	return NewIngestor(backend, store, db, log), store, backend, db
}

func TestEmbedText(t *testing.T) {
	s := Schematic{
		ID:             "WRN-00001",
		Model:          "WC-100",
		Name:           "Atlas Prime",
		Component:      "Hydraulic Pump",
		Version:        "2.1",
		Summary:        "Primary hydraulic pump.",
		Category:       "hydraulics",
		Tags:           []string{"industrial", "precision"},
		Specifications: map[string]string{"capacity": "400L/min", "accuracy": "0.1mm"},
	}

	text := s.EmbedText()
	assert.Contains(t, text, "Model: WC-100 (Atlas Prime)")
	assert.Contains(t, text, "Component: Hydraulic Pump")
	assert.Contains(t, text, "Tags: industrial, precision")
	// Specification keys render sorted so the hash is stable
	assert.Contains(t, text, "Specifications: accuracy: 0.1mm, capacity: 400L/min")
	assert.Equal(t, text, s.EmbedText())
}

func TestContentHash_TracksContent(t *testing.T) {
	s := testSchematics()[0]
	first := s.ContentHash()
	assert.Equal(t, first, s.ContentHash())

	s.Summary = "Revised pump assembly."
	assert.NotEqual(t, first, s.ContentHash())
}

func TestLoad_YAMLAndJSON(t *testing.T) {
	dir := t.TempDir()

	yamlPath := filepath.Join(dir, "catalog.yaml")
	require.NoError(t, os.WriteFile(yamlPath, []byte(`
- id: WRN-00001
  model: WC-100
  name: Atlas Prime
  component: Hydraulic Pump
  version: "2.1"
  summary: Primary hydraulic pump.
  category: hydraulics
  tags: [industrial]
`), 0o644))

	jsonPath := filepath.Join(dir, "catalog.json")
	require.NoError(t, os.WriteFile(jsonPath, []byte(`[
  {"id": "WRN-00002", "model": "WC-200", "name": "Titan Forge",
   "component": "Welding Arm", "version": "3.2",
   "summary": "Welding arm.", "category": "manipulation"}
]`), 0o644))

	fromYAML, err := Load(yamlPath)
	require.NoError(t, err)
	require.Len(t, fromYAML, 1)
	assert.Equal(t, "WRN-00001", fromYAML[0].ID)
	assert.Equal(t, []string{"industrial"}, fromYAML[0].Tags)

	fromJSON, err := Load(jsonPath)
	require.NoError(t, err)
	require.Len(t, fromJSON, 1)
	assert.Equal(t, "WRN-00002", fromJSON[0].ID)
}

func TestLoad_MissingID(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.yaml")
	require.NoError(t, os.WriteFile(path, []byte("- model: WC-100\n  name: Atlas\n"), 0o644))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestIngestAll_IndexesAndExtracts(t *testing.T) {
	ing, store, backend, _ := setupIngestor(t)
	ctx := context.Background()

	result, err := ing.IngestAll(ctx, testSchematics())
	require.NoError(t, err)
	assert.Equal(t, 3, result.Indexed)

	stats, err := backend.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, stats.IndexedCount)

	// Schematic entities carry model and component properties
	e := store.GetEntity("WRN-00001")
	require.NotNil(t, e)
	assert.Equal(t, database.EntityTypeCatalogItem, e.EntityType)
	assert.Equal(t, "WC-100", e.Properties["model"])

	// Status, category and model entities
	require.NotNil(t, store.GetEntity("status:active"))
	require.NotNil(t, store.GetEntity("status:deprecated"))
	require.NotNil(t, store.GetEntity("category:sensors"))
	require.NotNil(t, store.GetEntity("model:WC-100"))

	// Component inference from summary vocabulary
	require.NotNil(t, store.GetEntity("component:hydraulic_system"))
	require.NotNil(t, store.GetEntity("component:thermal_system"))
	require.NotNil(t, store.GetEntity("component:welding_system"))
	require.NotNil(t, store.GetEntity("component:safety_system"))

	hasEdge := func(subject, predicate, object string) bool {
		for _, rel := range store.GetNeighbors(subject, graph.DirectionOut) {
			if rel.Predicate == predicate && rel.Object == object {
				return true
			}
		}
		return false
	}

	assert.True(t, hasEdge("WRN-00001", "has_status", "status:active"))
	assert.True(t, hasEdge("WRN-00001", "has_category", "category:hydraulics"))
	assert.True(t, hasEdge("WRN-00001", "belongs_to_model", "model:WC-100"))
	assert.True(t, hasEdge("WRN-00001", "contains", "component:hydraulic_system"))
	assert.True(t, hasEdge("WRN-00001", "has_tag", "tag:industrial"))

	// Same-model schematics are compatible in both directions
	assert.True(t, hasEdge("WRN-00001", "compatible_with", "WRN-00002"))
	assert.True(t, hasEdge("WRN-00002", "compatible_with", "WRN-00001"))
	assert.False(t, hasEdge("WRN-00001", "compatible_with", "WRN-00003"))
}

func TestIngestAll_Idempotent(t *testing.T) {
	ing, store, _, _ := setupIngestor(t)
	ctx := context.Background()

	first, err := ing.IngestAll(ctx, testSchematics())
	require.NoError(t, err)
	assert.Positive(t, first.EntitiesAdded)
	assert.Positive(t, first.RelationshipsAdded)

	edgesAfterFirst := store.Stats().EdgeCount

	second, err := ing.IngestAll(ctx, testSchematics())
	require.NoError(t, err)
	assert.Equal(t, 3, second.Indexed)
	assert.Zero(t, second.EntitiesAdded)
	assert.Zero(t, second.RelationshipsAdded)
	assert.Equal(t, edgesAfterFirst, store.Stats().EdgeCount)
}

func TestIngestOne_CompatibilityWithExistingPeers(t *testing.T) {
	ing, store, _, _ := setupIngestor(t)
	ctx := context.Background()

	_, err := ing.IngestAll(ctx, testSchematics())
	require.NoError(t, err)

	added := Schematic{
		ID:        "WRN-00004",
		Model:     "WC-100",
		Name:      "Atlas Prime",
		Component: "Battery Pack",
		Version:   "1.4",
		Summary:   "High-capacity battery pack.",
		Category:  "power",
	}
	_, err = ing.IngestOne(ctx, &added)
	require.NoError(t, err)

	out := store.GetNeighbors("WRN-00004", graph.DirectionOut)
	var compat []string
	for _, rel := range out {
		if rel.Predicate == "compatible_with" {
			compat = append(compat, rel.Object)
		}
	}
	assert.ElementsMatch(t, []string{"WRN-00001", "WRN-00002"}, compat)
}

func TestStaleSchematics(t *testing.T) {
	ing, _, _, _ := setupIngestor(t)
	ctx := context.Background()

	schematics := testSchematics()
	_, err := ing.IngestAll(ctx, schematics)
	require.NoError(t, err)

	stale, err := ing.StaleSchematics(schematics)
	require.NoError(t, err)
	assert.Empty(t, stale)

	schematics[1].Summary = "Upgraded thermal camera module."
	schematics = append(schematics, Schematic{
		ID: "WRN-00005", Model: "WC-300", Name: "Nova", Component: "Lidar Unit",
		Version: "1.0", Summary: "Lidar ranging unit.", Category: "sensors",
	})

	stale, err = ing.StaleSchematics(schematics)
	require.NoError(t, err)
	require.Len(t, stale, 2)
	assert.Equal(t, "WRN-00002", stale[0].ID)
	assert.Equal(t, "WRN-00005", stale[1].ID)
}
