// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package graph

import "errors"

// Direction selects which edges GetNeighbors considers
type Direction string

const (
	DirectionIn   Direction = "in"
	DirectionOut  Direction = "out"
	DirectionBoth Direction = "both"
)

// ErrInvalidReference is returned when a relationship references an entity
// that does not exist at write time.
var ErrInvalidReference = errors.New("relationship references a missing entity")

// ErrNotFound is returned by GetPath when no path connects the two entities
// within the hop bound. Disconnection is a valid outcome, not a failure.
var ErrNotFound = errors.New("no path found")

// Entity is a typed, identified node in the knowledge graph
type Entity struct {
	ID         string            `json:"id"`
	EntityType string            `json:"entity_type"`
	Name       string            `json:"name"`
	Properties map[string]string `json:"properties,omitempty"`
}

// Relationship is a directed subject-predicate-object triplet. Predicates are
// open-vocabulary strings; bidirectional semantics require two triplets.
type Relationship struct {
	ID        uint              `json:"id"`
	Subject   string            `json:"subject"`
	Predicate string            `json:"predicate"`
	Object    string            `json:"object"`
	Metadata  map[string]string `json:"metadata,omitempty"`
}

// Stats summarizes the shape of the graph
type Stats struct {
	NodeCount      int            `json:"node_count"`
	EdgeCount      int            `json:"edge_count"`
	Density        float64        `json:"density"`
	ComponentCount int            `json:"component_count"`
	EntityTypes    map[string]int `json:"entity_types"`
	PredicateCount map[string]int `json:"predicate_counts"`
}
