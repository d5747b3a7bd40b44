// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package graph

// Stats computes size, density and connectivity metrics over the in-memory
// index. Density is edges / (nodes * (nodes - 1)) for a directed graph;
// components are counted over the undirected view (weak connectivity).
func (s *Store) Stats() Stats {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := Stats{
		NodeCount:      len(s.entities),
		EdgeCount:      len(s.edges),
		EntityTypes:    make(map[string]int),
		PredicateCount: make(map[string]int),
	}

	for _, e := range s.entities {
		stats.EntityTypes[e.EntityType]++
	}
	for _, rel := range s.edges {
		stats.PredicateCount[rel.Predicate]++
	}

	n := stats.NodeCount
	if n > 1 {
		stats.Density = float64(stats.EdgeCount) / float64(n*(n-1))
	}

	stats.ComponentCount = s.countComponents()
	return stats
}

// countComponents runs BFS over the undirected view from every unvisited
// entity. Caller must hold at least the read lock.
func (s *Store) countComponents() int {
	visited := make(map[string]bool, len(s.entities))
	components := 0

	for id := range s.entities {
		if visited[id] {
			continue
		}
		components++

		queue := []string{id}
		visited[id] = true
		for len(queue) > 0 {
			current := queue[0]
			queue = queue[1:]

			for _, rel := range s.undirectedEdges(current) {
				neighbor := rel.Object
				if neighbor == current {
					neighbor = rel.Subject
				}
				if !visited[neighbor] {
					visited[neighbor] = true
					queue = append(queue, neighbor)
				}
			}
		}
	}

	return components
}
