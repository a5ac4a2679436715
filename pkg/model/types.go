package model

import (
	"encoding/json"
	"fmt"
	"time"
)

// Entity types with special structural meaning in the graph.
// System entities are universal hubs visible to every team; Project
// entities are secondary hubs shown only when something references them.
const (
	TypeSystem  = "System"
	TypeProject = "Project"
)

// SourceKind partitions entities by provenance: batch data is manually
// curated (file exports), online data comes from the live query service.
type SourceKind string

const (
	SourceBatch  SourceKind = "batch"
	SourceOnline SourceKind = "online"
)

// ParseSourceKind converts a string to a SourceKind
func ParseSourceKind(s string) (SourceKind, error) {
	switch s {
	case "batch":
		return SourceBatch, nil
	case "online":
		return SourceOnline, nil
	default:
		return "", fmt.Errorf("unknown source kind: %q", s)
	}
}

// Observation is one atomic fact attached to an entity. The input format
// allows either a plain string or a structured record with metadata.
type Observation struct {
	Content string `json:"content"`
	Type    string `json:"type,omitempty"`
	Date    string `json:"date,omitempty"`
}

// UnmarshalJSON accepts both the plain-string and the structured form
func (o *Observation) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		o.Content = s
		o.Type = ""
		o.Date = ""
		return nil
	}

	type observation Observation // avoid recursion
	var obj observation
	if err := json.Unmarshal(data, &obj); err != nil {
		return err
	}
	*o = Observation(obj)
	return nil
}

// MarshalJSON always emits the structured form
func (o Observation) MarshalJSON() ([]byte, error) {
	type observation Observation
	return json.Marshal(observation(o))
}

// Provenance records where an entity came from
type Provenance struct {
	SourceKind   SourceKind `json:"sourceKind"`
	Team         string     `json:"team"`
	Confidence   float64    `json:"confidence,omitempty"`
	LastModified time.Time  `json:"lastModified,omitempty"`
}

// Entity represents a node in the knowledge graph. Name is the primary
// key within one loaded graph; no surrogate IDs are used.
type Entity struct {
	Name         string        `json:"name"`
	EntityType   string        `json:"entityType"`
	Observations []Observation `json:"observations,omitempty"`
	Provenance   Provenance    `json:"provenance"`
}

// IsSystem returns true for universal hub entities
func (e *Entity) IsSystem() bool {
	return e.EntityType == TypeSystem
}

// IsProject returns true for secondary hub entities
func (e *Entity) IsProject() bool {
	return e.EntityType == TypeProject
}

// Clone creates a deep copy of an entity
func (e *Entity) Clone() *Entity {
	clone := &Entity{
		Name:       e.Name,
		EntityType: e.EntityType,
		Provenance: e.Provenance,
	}
	if e.Observations != nil {
		clone.Observations = make([]Observation, len(e.Observations))
		copy(clone.Observations, e.Observations)
	}
	return clone
}

// Relation represents a directed, typed edge between two entities by
// name. Referential integrity is not guaranteed by the input: either
// endpoint may be absent from the current entity set.
type Relation struct {
	From         string `json:"from"`
	To           string `json:"to"`
	RelationType string `json:"relationType"`
}

// Touches returns true if the relation has the named entity as an endpoint
func (r Relation) Touches(name string) bool {
	return r.From == name || r.To == name
}

// Other returns the opposite endpoint of the relation, or "" if the
// given name is not an endpoint
func (r Relation) Other(name string) string {
	switch name {
	case r.From:
		return r.To
	case r.To:
		return r.From
	default:
		return ""
	}
}
