package filter

import (
	"sort"

	"github.com/dd0wney/vkb-viewer/pkg/model"
)

// Result is the visible subgraph for one (snapshot, config) pair.
// Entities are sorted by name so identical inputs produce identical
// output regardless of map iteration order. Relations still carry
// endpoints that may be outside the entity set; assembly drops those
// (Rule D).
type Result struct {
	Entities  []*model.Entity
	Relations []model.Relation
}

// Apply runs the full filter pipeline: team -> source -> search (with
// Rule A or B) -> entityType -> relationType (with Rule C). It is a
// pure function of (snap, cfg, opts): re-entrant, no shared scratch
// state, and safe to call repeatedly with different configs against the
// same snapshot.
func Apply(snap *model.Snapshot, cfg Config, opts Options) Result {
	if snap == nil {
		return Result{Entities: []*model.Entity{}, Relations: []model.Relation{}}
	}

	relations := snap.Relations()

	entities := ByTeam(snap.Entities(), cfg.SelectedTeams)
	entities = BySource(entities, cfg.DataSource)

	if cfg.SearchTerm != "" {
		// Rule B runs inside BySearch; the broad hub rule is suppressed
		// while searching.
		entities = BySearch(entities, cfg.SearchTerm, relations)
		entities = ByEntityType(entities, cfg.EntityType)
	} else {
		// Rule A runs against the fully entity-filtered set so hubs
		// survive even when they fail the team or type filter.
		entities = ByEntityType(entities, cfg.EntityType)
		entities = ExpandHubs(entities, snap, opts)
	}

	if !cfg.RelationType.IsAll() {
		filtered := ByRelationType(relations, cfg.RelationType)
		if len(filtered) < len(relations) {
			entities = PruneIsolated(entities, filtered)
		}
		relations = filtered
	}

	sort.Slice(entities, func(i, j int) bool {
		return entities[i].Name < entities[j].Name
	})

	return Result{Entities: entities, Relations: relations}
}
