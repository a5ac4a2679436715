package model

// Snapshot is one immutable (entities, relations) pair loaded from a
// file upload or a remote query. Filtering never mutates a snapshot;
// a fresh load replaces it wholesale.
//
// Entity names are unique within a snapshot. When the input carries the
// same name twice the later record wins, matching reload semantics.
type Snapshot struct {
	entities  []*Entity
	relations []Relation
	byName    map[string]*Entity
	degree    map[string]int
}

// NewSnapshot builds a snapshot with an O(1) name index and precomputed
// relation degrees over the full relation set
func NewSnapshot(entities []*Entity, relations []Relation) *Snapshot {
	s := &Snapshot{
		byName: make(map[string]*Entity, len(entities)),
		degree: make(map[string]int),
	}

	for _, e := range entities {
		if e == nil || e.Name == "" {
			continue
		}
		if _, seen := s.byName[e.Name]; seen {
			// Later record replaces the earlier one in place
			for i, existing := range s.entities {
				if existing.Name == e.Name {
					s.entities[i] = e
					break
				}
			}
			s.byName[e.Name] = e
			continue
		}
		s.byName[e.Name] = e
		s.entities = append(s.entities, e)
	}

	s.relations = make([]Relation, len(relations))
	copy(s.relations, relations)

	for _, r := range s.relations {
		s.degree[r.From]++
		s.degree[r.To]++
	}

	return s
}

// Entities returns the entity list. Callers must treat the entities as
// read-only; Clone before handing them to anything that mutates.
func (s *Snapshot) Entities() []*Entity {
	out := make([]*Entity, len(s.entities))
	copy(out, s.entities)
	return out
}

// Relations returns a copy of the relation list
func (s *Snapshot) Relations() []Relation {
	out := make([]Relation, len(s.relations))
	copy(out, s.relations)
	return out
}

// Lookup finds an entity by name in O(1)
func (s *Snapshot) Lookup(name string) (*Entity, bool) {
	e, ok := s.byName[name]
	return e, ok
}

// Degree returns the total relation count (as from or to) for a name
// across the full unfiltered relation set
func (s *Snapshot) Degree(name string) int {
	return s.degree[name]
}

// EntityCount returns the number of entities in the snapshot
func (s *Snapshot) EntityCount() int {
	return len(s.entities)
}

// RelationCount returns the number of relations in the snapshot
func (s *Snapshot) RelationCount() int {
	return len(s.relations)
}

// Teams returns the distinct team names present in the snapshot,
// excluding the empty team of team-agnostic entities
func (s *Snapshot) Teams() []string {
	seen := make(map[string]bool)
	teams := make([]string, 0)
	for _, e := range s.entities {
		team := e.Provenance.Team
		if team == "" || seen[team] {
			continue
		}
		seen[team] = true
		teams = append(teams, team)
	}
	return teams
}

// EntityTypes returns the distinct entity types present in the snapshot
func (s *Snapshot) EntityTypes() []string {
	seen := make(map[string]bool)
	types := make([]string, 0)
	for _, e := range s.entities {
		if e.EntityType == "" || seen[e.EntityType] {
			continue
		}
		seen[e.EntityType] = true
		types = append(types, e.EntityType)
	}
	return types
}

// RelationTypes returns the distinct relation types present in the snapshot
func (s *Snapshot) RelationTypes() []string {
	seen := make(map[string]bool)
	types := make([]string, 0)
	for _, r := range s.relations {
		if r.RelationType == "" || seen[r.RelationType] {
			continue
		}
		seen[r.RelationType] = true
		types = append(types, r.RelationType)
	}
	return types
}
