// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package graph

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/warnerco/schematica/internal/database"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Store is the entity/relationship store. The database is the ground truth;
// an in-memory adjacency index rebuilt from it at load time serves traversal
// queries. Every mutation durably writes the row before touching the index,
// both under the same write lock, so readers never observe an edge in one
// structure but not the other.
type Store struct {
	db *gorm.DB

	mu       sync.RWMutex
	entities map[string]*Entity
	outgoing map[string][]*Relationship
	incoming map[string][]*Relationship
	edgeKeys map[tripletKey]uint // (s,p,o) -> triplet ID, for duplicate detection
	edges    []*Relationship     // insertion order
}

type tripletKey struct {
	subject   string
	predicate string
	object    string
}

// NewStore creates a store and rebuilds the in-memory index from the
// database. The index is never trusted incrementally across restarts.
func NewStore(db *gorm.DB) (*Store, error) {
	s := &Store{db: db}
	if err := s.Rebuild(); err != nil {
		return nil, err
	}
	return s, nil
}

// Rebuild drops the in-memory index and reloads it from the database
func (s *Store) Rebuild() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entities = make(map[string]*Entity)
	s.outgoing = make(map[string][]*Relationship)
	s.incoming = make(map[string][]*Relationship)
	s.edgeKeys = make(map[tripletKey]uint)
	s.edges = nil

	var rows []database.GraphEntity
	if err := s.db.Order("id").Find(&rows).Error; err != nil {
		return fmt.Errorf("failed to load entities: %w", err)
	}
	for _, row := range rows {
		s.entities[row.ID] = entityFromRow(&row)
	}

	var triplets []database.GraphTriplet
	if err := s.db.Order("id").Find(&triplets).Error; err != nil {
		return fmt.Errorf("failed to load triplets: %w", err)
	}
	for _, row := range triplets {
		s.indexEdge(relationshipFromRow(&row))
	}

	return nil
}

// AddEntity creates or updates an entity. Entity identity is the ID; only
// name and properties change on re-add.
func (s *Store) AddEntity(e Entity) error {
	if e.ID == "" {
		return fmt.Errorf("entity id is required")
	}
	if !validEntityType(e.EntityType) {
		return fmt.Errorf("invalid entity type: %s", e.EntityType)
	}

	props, err := encodeStringMap(e.Properties)
	if err != nil {
		return fmt.Errorf("failed to encode entity properties: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	row := database.GraphEntity{
		ID:         e.ID,
		EntityType: e.EntityType,
		Name:       e.Name,
		Properties: props,
	}
	err = s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"name", "properties", "updated_at"}),
	}).Create(&row).Error
	if err != nil {
		return fmt.Errorf("failed to persist entity: %w", err)
	}

	stored := e
	s.entities[e.ID] = &stored
	return nil
}

// AddRelationship persists a triplet and updates the adjacency index. Both
// endpoints must already exist, otherwise ErrInvalidReference. A duplicate
// (subject, predicate, object) is a no-op returning the existing triplet ID
// with created false.
func (s *Store) AddRelationship(subject, predicate, object string, metadata map[string]string) (uint, bool, error) {
	if subject == "" || predicate == "" || object == "" {
		return 0, false, fmt.Errorf("subject, predicate and object are required")
	}

	meta, err := encodeStringMap(metadata)
	if err != nil {
		return 0, false, fmt.Errorf("failed to encode relationship metadata: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.entities[subject]; !ok {
		return 0, false, fmt.Errorf("subject %q: %w", subject, ErrInvalidReference)
	}
	if _, ok := s.entities[object]; !ok {
		return 0, false, fmt.Errorf("object %q: %w", object, ErrInvalidReference)
	}

	key := tripletKey{subject, predicate, object}
	if id, ok := s.edgeKeys[key]; ok {
		return id, false, nil
	}

	row := database.GraphTriplet{
		Subject:   subject,
		Predicate: predicate,
		Object:    object,
		Metadata:  meta,
	}
	if err := s.db.Create(&row).Error; err != nil {
		return 0, false, fmt.Errorf("failed to persist triplet: %w", err)
	}

	rel := &Relationship{
		ID:        row.ID,
		Subject:   subject,
		Predicate: predicate,
		Object:    object,
		Metadata:  metadata,
	}
	s.indexEdge(rel)

	return row.ID, true, nil
}

// GetEntity returns an entity by ID, or nil if absent
func (s *Store) GetEntity(id string) *Entity {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.entities[id]
	if !ok {
		return nil
	}
	copied := *e
	return &copied
}

// SearchEntities matches entities whose ID or name contains the query,
// case-insensitively. Used for resolving query mentions to graph nodes.
func (s *Store) SearchEntities(query string, limit int) []Entity {
	if limit <= 0 {
		limit = 10
	}

	var rows []database.GraphEntity
	pattern := "%" + query + "%"
	err := s.db.Where("id LIKE ? OR name LIKE ?", pattern, pattern).
		Order("id").Limit(limit).Find(&rows).Error
	if err != nil {
		return nil
	}

	entities := make([]Entity, 0, len(rows))
	for _, row := range rows {
		entities = append(entities, *entityFromRow(&row))
	}
	return entities
}

// EntitiesByType returns all entities of the given type
func (s *Store) EntitiesByType(entityType string) []Entity {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []Entity
	for _, e := range s.entities {
		if e.EntityType == entityType {
			out = append(out, *e)
		}
	}
	return out
}

// indexEdge appends a relationship to the adjacency structures.
// Caller must hold the write lock.
func (s *Store) indexEdge(rel *Relationship) {
	s.edges = append(s.edges, rel)
	s.outgoing[rel.Subject] = append(s.outgoing[rel.Subject], rel)
	s.incoming[rel.Object] = append(s.incoming[rel.Object], rel)
	s.edgeKeys[tripletKey{rel.Subject, rel.Predicate, rel.Object}] = rel.ID
}

func validEntityType(t string) bool {
	switch t {
	case database.EntityTypeCatalogItem, database.EntityTypeComponent,
		database.EntityTypeCategory, database.EntityTypeSystem:
		return true
	}
	return false
}

func encodeStringMap(m map[string]string) (string, error) {
	if len(m) == 0 {
		return "", nil
	}
	data, err := json.Marshal(m)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func decodeStringMap(s string) map[string]string {
	if s == "" {
		return nil
	}
	var m map[string]string
	if err := json.Unmarshal([]byte(s), &m); err != nil {
		return nil
	}
	return m
}

func entityFromRow(row *database.GraphEntity) *Entity {
	return &Entity{
		ID:         row.ID,
		EntityType: row.EntityType,
		Name:       row.Name,
		Properties: decodeStringMap(row.Properties),
	}
}

func relationshipFromRow(row *database.GraphTriplet) *Relationship {
	return &Relationship{
		ID:        row.ID,
		Subject:   row.Subject,
		Predicate: row.Predicate,
		Object:    row.Object,
		Metadata:  decodeStringMap(row.Metadata),
	}
}
