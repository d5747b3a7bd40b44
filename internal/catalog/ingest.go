// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package catalog

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/warnerco/schematica/internal/database"
	"github.com/warnerco/schematica/internal/graph"
	"github.com/warnerco/schematica/internal/memstore"
)

// componentKeywords maps summary/component vocabulary to the subsystem
// entity each keyword implies
var componentKeywords = map[string]string{
	"hydraulic":  "hydraulic_system",
	"sensor":     "sensor_array",
	"motor":      "motor_system",
	"battery":    "power_system",
	"thermal":    "thermal_system",
	"lidar":      "lidar_system",
	"camera":     "vision_system",
	"wireless":   "communication_system",
	"safety":     "safety_system",
	"gripper":    "manipulation_system",
	"welding":    "welding_system",
	"navigation": "navigation_system",
}

// Result reports what one ingestion pass changed
type Result struct {
	Indexed            int `json:"indexed"`
	EntitiesAdded      int `json:"entities_added"`
	RelationshipsAdded int `json:"relationships_added"`
}

// Ingestor indexes schematics into the memory backend and extracts graph
// entities and relationships from them.
type Ingestor struct {
	backend memstore.Backend
	store   *graph.Store
	db      *gorm.DB
	log     *logrus.Logger
}

// NewIngestor creates an ingestor over the given backend and graph store
func NewIngestor(backend memstore.Backend, store *graph.Store, db *gorm.DB, log *logrus.Logger) *Ingestor {
	return &Ingestor{backend: backend, store: store, db: db, log: log}
}

// IngestAll indexes every schematic and wires the derived graph, then adds
// compatible_with edges between schematics of the same model in a second
// pass.
func (ing *Ingestor) IngestAll(ctx context.Context, schematics []Schematic) (Result, error) {
	var result Result

	for i := range schematics {
		r, err := ing.ingestOne(ctx, &schematics[i])
		if err != nil {
			return result, fmt.Errorf("failed to ingest %s: %w", schematics[i].ID, err)
		}
		result.Indexed += r.Indexed
		result.EntitiesAdded += r.EntitiesAdded
		result.RelationshipsAdded += r.RelationshipsAdded
	}

	// Compatibility edges need the full model grouping, so they run after
	// every schematic entity exists
	byModel := make(map[string][]string)
	for i := range schematics {
		if m := schematics[i].Model; m != "" {
			byModel[m] = append(byModel[m], schematics[i].ID)
		}
	}
	for _, ids := range byModel {
		for i, first := range ids {
			for _, second := range ids[i+1:] {
				result.RelationshipsAdded += ing.addEdge(first, "compatible_with", second, nil)
				result.RelationshipsAdded += ing.addEdge(second, "compatible_with", first, nil)
			}
		}
	}

	ing.log.WithFields(logrus.Fields{
		"indexed":       result.Indexed,
		"entities":      result.EntitiesAdded,
		"relationships": result.RelationshipsAdded,
	}).Info("catalog ingestion complete")
	return result, nil
}

// IngestOne indexes a single schematic, including compatibility edges
// against already-known schematics of the same model.
func (ing *Ingestor) IngestOne(ctx context.Context, s *Schematic) (Result, error) {
	result, err := ing.ingestOne(ctx, s)
	if err != nil {
		return result, err
	}

	if s.Model != "" {
		for _, peer := range ing.store.EntitiesByType(database.EntityTypeCatalogItem) {
			if peer.ID == s.ID || peer.Properties["model"] != s.Model {
				continue
			}
			result.RelationshipsAdded += ing.addEdge(s.ID, "compatible_with", peer.ID, nil)
			result.RelationshipsAdded += ing.addEdge(peer.ID, "compatible_with", s.ID, nil)
		}
	}
	return result, nil
}

func (ing *Ingestor) ingestOne(ctx context.Context, s *Schematic) (Result, error) {
	var result Result

	if err := ing.backend.Index(ctx, memstore.MemoryRecord{
		ID:   s.ID,
		Text: s.EmbedText(),
		Metadata: map[string]string{
			"model":    s.Model,
			"category": s.Category,
			"status":   s.normalizedStatus(),
		},
	}); err != nil {
		return result, fmt.Errorf("backend index failed: %w", err)
	}
	result.Indexed = 1

	result.EntitiesAdded += ing.addEntity(graph.Entity{
		ID:         s.ID,
		EntityType: database.EntityTypeCatalogItem,
		Name:       fmt.Sprintf("%s - %s: %s", s.Model, s.Name, s.Component),
		Properties: map[string]string{
			"model":     s.Model,
			"name":      s.Name,
			"component": s.Component,
			"version":   s.Version,
		},
	})

	status := s.normalizedStatus()
	statusID := "status:" + status
	result.EntitiesAdded += ing.addEntity(graph.Entity{
		ID:         statusID,
		EntityType: database.EntityTypeSystem,
		Name:       titleCase(status),
	})
	result.RelationshipsAdded += ing.addEdge(s.ID, "has_status", statusID, nil)

	category := s.Category
	if category == "" {
		category = "unknown"
	}
	categoryID := "category:" + category
	result.EntitiesAdded += ing.addEntity(graph.Entity{
		ID:         categoryID,
		EntityType: database.EntityTypeCategory,
		Name:       titleCase(strings.ReplaceAll(category, "_", " ")),
	})
	result.RelationshipsAdded += ing.addEdge(s.ID, "has_category", categoryID, nil)

	if s.Model != "" {
		modelID := "model:" + s.Model
		result.EntitiesAdded += ing.addEntity(graph.Entity{
			ID:         modelID,
			EntityType: database.EntityTypeSystem,
			Name:       s.Model,
		})
		result.RelationshipsAdded += ing.addEdge(s.ID, "belongs_to_model", modelID, nil)
	}

	haystack := strings.ToLower(s.Summary) + " " + strings.ToLower(s.Component)
	for keyword, componentName := range componentKeywords {
		if !strings.Contains(haystack, keyword) {
			continue
		}
		componentID := "component:" + componentName
		result.EntitiesAdded += ing.addEntity(graph.Entity{
			ID:         componentID,
			EntityType: database.EntityTypeComponent,
			Name:       titleCase(strings.ReplaceAll(componentName, "_", " ")),
		})
		result.RelationshipsAdded += ing.addEdge(s.ID, "contains", componentID, nil)
	}

	for _, tag := range s.Tags {
		tagID := "tag:" + tag
		result.EntitiesAdded += ing.addEntity(graph.Entity{
			ID:         tagID,
			EntityType: database.EntityTypeCategory,
			Name:       titleCase(strings.ReplaceAll(tag, "-", " ")),
		})
		result.RelationshipsAdded += ing.addEdge(s.ID, "has_tag", tagID, nil)
	}

	if err := ing.recordIndexed(s); err != nil {
		return result, err
	}
	return result, nil
}

// addEntity upserts the entity and returns 1 if it was previously unknown
func (ing *Ingestor) addEntity(e graph.Entity) int {
	existed := ing.store.GetEntity(e.ID) != nil
	if err := ing.store.AddEntity(e); err != nil {
		ing.log.WithError(err).WithField("entity", e.ID).Warn("failed to add graph entity")
		return 0
	}
	if existed {
		return 0
	}
	return 1
}

// addEdge adds the triplet and returns 1 if it was new
func (ing *Ingestor) addEdge(subject, predicate, object string, metadata map[string]string) int {
	_, created, err := ing.store.AddRelationship(subject, predicate, object, metadata)
	if err != nil {
		ing.log.WithError(err).WithFields(logrus.Fields{
			"subject":   subject,
			"predicate": predicate,
			"object":    object,
		}).Warn("failed to add graph relationship")
		return 0
	}
	if !created {
		return 0
	}
	return 1
}

// recordIndexed upserts the catalog record's content hash so the scheduler
// can tell stale entries apart
func (ing *Ingestor) recordIndexed(s *Schematic) error {
	record := database.CatalogRecord{
		ID:          s.ID,
		ContentHash: s.ContentHash(),
		IndexedAt:   time.Now().UTC(),
	}
	err := ing.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"content_hash", "indexed_at"}),
	}).Create(&record).Error
	if err != nil {
		return fmt.Errorf("failed to record catalog index state: %w", err)
	}
	return nil
}

// StaleSchematics returns the schematics whose current content hash differs
// from the hash they were last indexed with, plus any never indexed.
func (ing *Ingestor) StaleSchematics(schematics []Schematic) ([]Schematic, error) {
	var records []database.CatalogRecord
	if err := ing.db.Find(&records).Error; err != nil {
		return nil, fmt.Errorf("failed to load catalog records: %w", err)
	}

	indexed := make(map[string]string, len(records))
	for _, r := range records {
		indexed[r.ID] = r.ContentHash
	}

	var stale []Schematic
	for i := range schematics {
		if hash, ok := indexed[schematics[i].ID]; !ok || hash != schematics[i].ContentHash() {
			stale = append(stale, schematics[i])
		}
	}
	return stale, nil
}

func titleCase(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}
