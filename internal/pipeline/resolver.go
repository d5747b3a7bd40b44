// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package pipeline

import (
	"strings"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"github.com/sirupsen/logrus"

	"github.com/warnerco/schematica/internal/graph"
)

// relationshipVocabulary forces graph resolution regardless of intent
var relationshipVocabulary = []string{"depends on", "connected to", "part of"}

// ContextEntry is one graph relationship seen from a resolved entity
type ContextEntry struct {
	EntityID  string `json:"entity_id"`
	Predicate string `json:"predicate"`
	RelatedID string `json:"related_id"`
}

// GraphContext is what the resolver contributes to the pipeline state
type GraphContext struct {
	Entries       []ContextEntry
	EntitiesFound int
}

// RelatedIDs returns every entity id touched by the context entries.
// Entries keep the stored subject/object orientation, so a candidate may sit
// on either side of a triplet.
func (g *GraphContext) RelatedIDs() map[string]bool {
	ids := make(map[string]bool, len(g.Entries)*2)
	for _, e := range g.Entries {
		ids[e.EntityID] = true
		ids[e.RelatedID] = true
	}
	return ids
}

// Resolver turns entity mentions into graph relationship context. Mention
// resolution results are cached with a short TTL since queries in one
// session tend to repeat the same entities.
type Resolver struct {
	store    *graph.Store
	mentions *gocache.Cache
	maxHops  int
	cap      int
	log      *logrus.Logger
}

// NewResolver creates a resolver with the given traversal bounds
func NewResolver(store *graph.Store, maxHops, contextCap int, log *logrus.Logger) *Resolver {
	if maxHops <= 0 {
		maxHops = 2
	}
	if contextCap <= 0 {
		contextCap = 20
	}
	return &Resolver{
		store:    store,
		mentions: gocache.New(5*time.Minute, 10*time.Minute),
		maxHops:  maxHops,
		cap:      contextCap,
		log:      log,
	}
}

// ShouldResolve reports whether graph resolution applies to this query.
// Diagnostic and analytics intents always resolve; relationship vocabulary
// forces it; plain search resolves only when mentions were extracted;
// lookup never resolves.
func ShouldResolve(intent Intent, mentions []string, query string) bool {
	if intent == IntentLookup {
		return false
	}
	if intent == IntentDiagnostic || intent == IntentAnalytics {
		return true
	}
	lower := strings.ToLower(query)
	for _, v := range relationshipVocabulary {
		if strings.Contains(lower, v) {
			return true
		}
	}
	return len(mentions) > 0
}

// Resolve maps mentions to entities and collects their neighborhood out to
// maxHops in both directions. Entries are deduplicated by (entity,
// predicate, related) and truncated to the configured cap. Failures are
// non-fatal; an unresolvable mention just contributes nothing.
func (r *Resolver) Resolve(mentions []string, query string) GraphContext {
	entityIDs := r.resolveEntities(mentions, query)

	ctx := GraphContext{EntitiesFound: len(entityIDs)}
	seen := make(map[ContextEntry]bool)

	for _, id := range entityIDs {
		frontier := []string{id}
		visited := map[string]bool{id: true}

		for hop := 0; hop < r.maxHops && len(frontier) > 0; hop++ {
			var next []string
			for _, current := range frontier {
				for _, rel := range r.store.GetNeighbors(current, graph.DirectionBoth) {
					entry := ContextEntry{
						EntityID:  rel.Subject,
						Predicate: rel.Predicate,
						RelatedID: rel.Object,
					}
					if !seen[entry] {
						seen[entry] = true
						ctx.Entries = append(ctx.Entries, entry)
						if len(ctx.Entries) >= r.cap {
							return ctx
						}
					}

					other := rel.Object
					if other == current {
						other = rel.Subject
					}
					if !visited[other] {
						visited[other] = true
						next = append(next, other)
					}
				}
			}
			frontier = next
		}
	}
	return ctx
}

// resolveEntities maps each mention to a known entity id, falling back to a
// name search over the query when no mention resolves
func (r *Resolver) resolveEntities(mentions []string, query string) []string {
	var ids []string
	seen := make(map[string]bool)

	for _, mention := range mentions {
		id, ok := r.resolveMention(mention)
		if !ok {
			continue
		}
		if !seen[id] {
			seen[id] = true
			ids = append(ids, id)
		}
	}

	if len(ids) == 0 {
		for _, term := range significantTerms(query) {
			for _, e := range r.store.SearchEntities(term, 3) {
				if !seen[e.ID] {
					seen[e.ID] = true
					ids = append(ids, e.ID)
				}
			}
			if len(ids) >= 3 {
				break
			}
		}
	}
	return ids
}

// resolveMention finds the entity a mention refers to: exact id first, then
// a fuzzy name search. Results, including misses, are cached.
func (r *Resolver) resolveMention(mention string) (string, bool) {
	if cached, ok := r.mentions.Get(mention); ok {
		id := cached.(string)
		return id, id != ""
	}

	var resolved string
	if e := r.store.GetEntity(mention); e != nil {
		resolved = e.ID
	} else {
		// "component:power_system" searches as "power system"
		term := mention
		if i := strings.Index(term, ":"); i >= 0 {
			term = term[i+1:]
		}
		term = strings.ReplaceAll(term, "_", " ")
		if matches := r.store.SearchEntities(term, 1); len(matches) > 0 {
			resolved = matches[0].ID
		}
	}

	r.mentions.Set(mention, resolved, gocache.DefaultExpiration)
	return resolved, resolved != ""
}

// significantTerms strips filler words so the fallback entity search has
// something to match on
func significantTerms(query string) []string {
	var kept []string
	for _, w := range strings.Fields(strings.ToLower(query)) {
		switch w {
		case "what", "which", "who", "how", "is", "are", "the", "a", "an",
			"of", "on", "in", "to", "for", "with", "and", "or", "do", "does":
			continue
		}
		kept = append(kept, w)
	}
	return kept
}
