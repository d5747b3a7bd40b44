// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package graph

// GetNeighbors returns all relationships touching the entity in the
// requested direction, in edge insertion order. Served entirely from the
// in-memory index.
func (s *Store) GetNeighbors(entityID string, direction Direction) []Relationship {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []Relationship

	if direction == DirectionOut || direction == DirectionBoth {
		for _, rel := range s.outgoing[entityID] {
			out = append(out, *rel)
		}
	}
	if direction == DirectionIn || direction == DirectionBoth {
		for _, rel := range s.incoming[entityID] {
			out = append(out, *rel)
		}
	}

	return out
}

// GetPath performs a breadth-first search from source to target over the
// undirected view of the graph, bounded by maxHops. Among multiple shortest
// paths the first-created edges win, because neighbors are expanded in edge
// insertion order. Returns ErrNotFound when the entities are disconnected
// within the bound.
func (s *Store) GetPath(sourceID, targetID string, maxHops int) ([]Relationship, error) {
	if maxHops <= 0 {
		maxHops = 2
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if _, ok := s.entities[sourceID]; !ok {
		return nil, ErrNotFound
	}
	if _, ok := s.entities[targetID]; !ok {
		return nil, ErrNotFound
	}
	if sourceID == targetID {
		return []Relationship{}, nil
	}

	type visit struct {
		entity string
		depth  int
	}

	// parent edge used to reach each discovered entity
	parent := make(map[string]*Relationship)
	visited := map[string]bool{sourceID: true}
	queue := []visit{{sourceID, 0}}

	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]

		if current.depth >= maxHops {
			continue
		}

		for _, rel := range s.undirectedEdges(current.entity) {
			neighbor := rel.Object
			if neighbor == current.entity {
				neighbor = rel.Subject
			}
			if visited[neighbor] {
				continue
			}
			visited[neighbor] = true
			parent[neighbor] = rel

			if neighbor == targetID {
				return s.assemblePath(sourceID, targetID, parent), nil
			}
			queue = append(queue, visit{neighbor, current.depth + 1})
		}
	}

	return nil, ErrNotFound
}

// undirectedEdges returns the entity's outgoing and incoming edges merged by
// ascending triplet ID, so traversal sees edges in insertion order regardless
// of direction. Both lists are already ID-ordered. Caller must hold at least
// the read lock.
func (s *Store) undirectedEdges(entityID string) []*Relationship {
	out := s.outgoing[entityID]
	in := s.incoming[entityID]
	edges := make([]*Relationship, 0, len(out)+len(in))

	i, j := 0, 0
	for i < len(out) && j < len(in) {
		if out[i].ID <= in[j].ID {
			edges = append(edges, out[i])
			i++
		} else {
			edges = append(edges, in[j])
			j++
		}
	}
	edges = append(edges, out[i:]...)
	edges = append(edges, in[j:]...)
	return edges
}

// assemblePath walks parent edges back from target to source and reverses
func (s *Store) assemblePath(sourceID, targetID string, parent map[string]*Relationship) []Relationship {
	var reversed []Relationship
	current := targetID
	for current != sourceID {
		rel := parent[current]
		reversed = append(reversed, *rel)
		if rel.Subject == current {
			current = rel.Object
		} else {
			current = rel.Subject
		}
	}

	path := make([]Relationship, 0, len(reversed))
	for i := len(reversed) - 1; i >= 0; i-- {
		path = append(path, reversed[i])
	}
	return path
}
