// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package database

import (
	"time"
)

// Entity type values stored in GraphEntity.EntityType
const (
	EntityTypeCatalogItem = "catalog-item"
	EntityTypeComponent   = "component"
	EntityTypeCategory    = "category"
	EntityTypeSystem      = "system"
)

// GraphEntity represents a node in the knowledge graph
type GraphEntity struct {
	ID         string    `gorm:"primaryKey" json:"id"`
	EntityType string    `gorm:"index;not null" json:"entity_type"`
	Name       string    `gorm:"not null" json:"name"`
	Properties string    `gorm:"type:text" json:"properties"` // JSON map of string -> string
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// TableName specifies the table name for GraphEntity
func (GraphEntity) TableName() string {
	return "schematica_entities"
}

// GraphTriplet represents a directed, predicate-labeled edge between two
// entities. The predicate is an open string; only referential integrity of
// the endpoints is validated at write time.
type GraphTriplet struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Subject   string    `gorm:"index:idx_triplet_subject;uniqueIndex:idx_triplet_spo;not null" json:"subject"`
	Predicate string    `gorm:"index:idx_triplet_predicate;uniqueIndex:idx_triplet_spo;not null" json:"predicate"`
	Object    string    `gorm:"index:idx_triplet_object;uniqueIndex:idx_triplet_spo;not null" json:"object"`
	Metadata  string    `gorm:"type:text" json:"metadata"` // JSON metadata
	CreatedAt time.Time `json:"created_at"`

	// Foreign key relationships
	SubjectEntity GraphEntity `gorm:"foreignKey:Subject;constraint:OnDelete:CASCADE" json:"-"`
	ObjectEntity  GraphEntity `gorm:"foreignKey:Object;constraint:OnDelete:CASCADE" json:"-"`
}

// TableName specifies the table name for GraphTriplet
func (GraphTriplet) TableName() string {
	return "schematica_triplets"
}

// CatalogRecord tracks an indexed catalog item and the content hash it was
// last indexed with, so the scheduler can re-index only stale records.
type CatalogRecord struct {
	ID          string    `gorm:"primaryKey" json:"id"`
	ContentHash string    `gorm:"not null" json:"content_hash"`
	IndexedAt   time.Time `json:"indexed_at"`
}

// TableName specifies the table name for CatalogRecord
func (CatalogRecord) TableName() string {
	return "schematica_catalog_records"
}
