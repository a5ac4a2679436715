package filter

import (
	"github.com/dd0wney/vkb-viewer/pkg/model"
)

// Connectivity preservation adjusts a naively filtered entity set so the
// rendered graph does not strand structurally important nodes.
//
// Rule A (hub retention, no search active): one-hop closure over the
// full relation set, then pull in any excluded entity whose total degree
// reaches the hub threshold and which touches the current set. This
// trades filter precision for visual coherence.
//
// Rule B (parent retention, search active): handled inside BySearch —
// only Project entities one hop from a surviving non-System entity are
// pulled in; the broad hub rule is suppressed to keep results focused.
//
// Rule C (post relation-type pruning): once a specific relation type is
// selected and has removed relations, entities left without any incident
// relation are dropped rather than drawn floating.

// ExpandHubs applies Rule A. The snapshot supplies both the full
// relation set and the degree counts; only names present in the
// snapshot are ever added.
func ExpandHubs(entities []*model.Entity, snap *model.Snapshot, opts Options) []*model.Entity {
	if len(entities) == 0 {
		return entities
	}

	included := make(map[string]bool, len(entities))
	out := make([]*model.Entity, 0, len(entities))
	for _, e := range entities {
		if !included[e.Name] {
			included[e.Name] = true
			out = append(out, e)
		}
	}

	// Pass 1: one-hop closure. Membership is tested against the base
	// set so the walk stays a single hop regardless of relation order.
	base := make(map[string]bool, len(included))
	for name := range included {
		base[name] = true
	}
	for _, r := range snap.Relations() {
		var missing string
		switch {
		case base[r.From] && !included[r.To]:
			missing = r.To
		case base[r.To] && !included[r.From]:
			missing = r.From
		default:
			continue
		}
		if e, ok := snap.Lookup(missing); ok {
			included[missing] = true
			out = append(out, e)
		}
	}

	// Pass 2: high-degree hubs that touch the set
	threshold := opts.hubDegree()
	for _, e := range snap.Entities() {
		if included[e.Name] {
			continue
		}
		if snap.Degree(e.Name) < threshold {
			continue
		}
		if touchesSet(e.Name, included, snap) {
			included[e.Name] = true
			out = append(out, e)
		}
	}

	return out
}

func touchesSet(name string, included map[string]bool, snap *model.Snapshot) bool {
	for _, r := range snap.Relations() {
		if other := r.Other(name); other != "" && included[other] {
			return true
		}
	}
	return false
}

// PruneIsolated applies Rule C: drop entities that are not an endpoint
// of any remaining relation. Callers invoke this only when a specific
// relation type actually removed relations; under "All" relation types,
// unconnected entities stay visible.
func PruneIsolated(entities []*model.Entity, remaining []model.Relation) []*model.Entity {
	connected := make(map[string]bool, len(remaining)*2)
	for _, r := range remaining {
		connected[r.From] = true
		connected[r.To] = true
	}

	out := make([]*model.Entity, 0, len(entities))
	for _, e := range entities {
		if connected[e.Name] {
			out = append(out, e)
		}
	}
	return out
}
