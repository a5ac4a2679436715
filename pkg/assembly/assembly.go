package assembly

import (
	"fmt"

	"github.com/dd0wney/vkb-viewer/pkg/model"
)

// Node is one renderable entity. ID equals the entity name so external
// selection-by-name and layout-engine bookkeeping reconcile across
// re-renders. Every Build produces fresh node structs: the layout engine
// may mutate them freely without the changes leaking back into the
// canonical filtered data.
type Node struct {
	ID           string              `json:"id"`
	EntityType   string              `json:"entityType"`
	Observations []model.Observation `json:"observations,omitempty"`
	Team         string              `json:"team,omitempty"`
	Source       model.SourceKind    `json:"source,omitempty"`
}

// Edge is one renderable relation. Count carries the multiplicity of
// duplicate (from, to, type) triples in the source data; the duplicate
// records collapse to a single edge but the information is not lost.
type Edge struct {
	From  string `json:"from"`
	To    string `json:"to"`
	Type  string `json:"type"`
	Count int    `json:"count"`

	// Resolved endpoints for the layout engine; not serialized.
	FromNode *Node `json:"-"`
	ToNode   *Node `json:"-"`
}

// Graph is the assembled node/edge set handed to the layout engine.
// Skipped counts malformed records dropped during assembly; Dangling
// counts relations dropped because an endpoint was missing (Rule D,
// expected rather than an error). Both are surfaced for diagnostics.
type Graph struct {
	Nodes    []*Node `json:"nodes"`
	Edges    []*Edge `json:"edges"`
	Skipped  int     `json:"skipped,omitempty"`
	Dangling int     `json:"dangling,omitempty"`

	byID map[string]*Node
}

// Node resolves a node by its stable identifier
func (g *Graph) Node(id string) (*Node, bool) {
	n, ok := g.byID[id]
	return n, ok
}

// Build joins a filtered entity set with a filtered relation set into a
// renderable graph. A malformed record is skipped and counted, never
// fatal; a relation survives iff both endpoints are present.
func Build(entities []*model.Entity, relations []model.Relation) *Graph {
	g := &Graph{
		Nodes: make([]*Node, 0, len(entities)),
		Edges: make([]*Edge, 0, len(relations)),
		byID:  make(map[string]*Node, len(entities)),
	}

	for _, e := range entities {
		if e == nil || e.Name == "" {
			g.Skipped++
			continue
		}
		if _, dup := g.byID[e.Name]; dup {
			continue
		}

		clone := e.Clone() // fresh copy per render, see Node doc
		node := &Node{
			ID:           clone.Name,
			EntityType:   clone.EntityType,
			Observations: clone.Observations,
			Team:         clone.Provenance.Team,
			Source:       clone.Provenance.SourceKind,
		}
		g.byID[node.ID] = node
		g.Nodes = append(g.Nodes, node)
	}

	edgeIndex := make(map[string]*Edge, len(relations))
	for _, r := range relations {
		if r.From == "" || r.To == "" || r.RelationType == "" {
			g.Skipped++
			continue
		}

		from, okFrom := g.byID[r.From]
		to, okTo := g.byID[r.To]
		if !okFrom || !okTo {
			g.Dangling++
			continue
		}

		key := edgeKey(r)
		if existing, ok := edgeIndex[key]; ok {
			existing.Count++
			continue
		}

		edge := &Edge{
			From:     r.From,
			To:       r.To,
			Type:     r.RelationType,
			Count:    1,
			FromNode: from,
			ToNode:   to,
		}
		edgeIndex[key] = edge
		g.Edges = append(g.Edges, edge)
	}

	return g
}

func edgeKey(r model.Relation) string {
	return fmt.Sprintf("%s\x00%s\x00%s", r.From, r.To, r.RelationType)
}
