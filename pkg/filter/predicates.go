package filter

import (
	"strings"

	"github.com/dd0wney/vkb-viewer/pkg/model"
)

// Filter predicates are pure, total functions: any input, including
// empty sets and unknown team or type names, yields a result instead of
// an error. They compose in the fixed order team -> source -> search ->
// entityType, with relation filtering last (see pipeline.go).

// ByTeam keeps entities owned by one of the selected teams. System
// entities are team-agnostic hubs and are kept regardless of team. An
// empty selection shows nothing, including System entities; it is never
// treated as "all teams".
func ByTeam(entities []*model.Entity, selectedTeams []string) []*model.Entity {
	if len(selectedTeams) == 0 {
		return []*model.Entity{}
	}

	selected := make(map[string]bool, len(selectedTeams))
	for _, t := range selectedTeams {
		selected[t] = true
	}

	out := make([]*model.Entity, 0, len(entities))
	for _, e := range entities {
		if e.IsSystem() || selected[e.Provenance.Team] {
			out = append(out, e)
		}
	}
	return out
}

// BySource keeps entities from one provenance partition. SourceCombined
// is the identity.
func BySource(entities []*model.Entity, source Source) []*model.Entity {
	if source == SourceCombined || source == "" {
		return entities
	}

	out := make([]*model.Entity, 0, len(entities))
	for _, e := range entities {
		if string(e.Provenance.SourceKind) == string(source) {
			out = append(out, e)
		}
	}
	return out
}

// BySearch keeps entities matching a case-insensitive substring search
// over name, type and observation text. System entities are always
// retained. Project entities are never matched by text; they survive
// only when a relation connects them to a retained non-System entity
// (the narrow closure of Rule B, see connectivity.go).
func BySearch(entities []*model.Entity, term string, relations []model.Relation) []*model.Entity {
	if term == "" {
		return entities
	}

	needle := strings.ToLower(term)

	retained := make([]*model.Entity, 0, len(entities))
	matched := make(map[string]bool) // non-System text matches, referrers for Project retention
	projects := make([]*model.Entity, 0)

	for _, e := range entities {
		switch {
		case e.IsSystem():
			retained = append(retained, e)
		case e.IsProject():
			projects = append(projects, e)
		case matchesTerm(e, needle):
			retained = append(retained, e)
			matched[e.Name] = true
		}
	}

	// Projects survive only one hop from a matched non-System entity
	for _, p := range projects {
		if referencedBy(p.Name, matched, relations) {
			retained = append(retained, p)
		}
	}

	return retained
}

func matchesTerm(e *model.Entity, needle string) bool {
	if strings.Contains(strings.ToLower(e.Name), needle) {
		return true
	}
	if strings.Contains(strings.ToLower(e.EntityType), needle) {
		return true
	}
	for _, o := range e.Observations {
		if strings.Contains(strings.ToLower(o.Content), needle) {
			return true
		}
	}
	return false
}

func referencedBy(name string, referrers map[string]bool, relations []model.Relation) bool {
	for _, r := range relations {
		if other := r.Other(name); other != "" && referrers[other] {
			return true
		}
	}
	return false
}

// ByEntityType keeps entities whose type passes the filter
func ByEntityType(entities []*model.Entity, entityType TypeFilter) []*model.Entity {
	if entityType.IsAll() {
		return entities
	}

	out := make([]*model.Entity, 0, len(entities))
	for _, e := range entities {
		if entityType.Matches(e.EntityType) {
			out = append(out, e)
		}
	}
	return out
}

// ByRelationType keeps relations whose type passes the filter
func ByRelationType(relations []model.Relation, relationType TypeFilter) []model.Relation {
	if relationType.IsAll() {
		return relations
	}

	out := make([]model.Relation, 0, len(relations))
	for _, r := range relations {
		if relationType.Matches(r.RelationType) {
			out = append(out, r)
		}
	}
	return out
}
