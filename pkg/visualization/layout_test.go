package visualization

import (
	"math"
	"testing"

	"github.com/dd0wney/vkb-viewer/pkg/assembly"
	"github.com/dd0wney/vkb-viewer/pkg/model"
)

func layoutGraph() *assembly.Graph {
	entities := []*model.Entity{
		{Name: "A"}, {Name: "B"}, {Name: "C"}, {Name: "D"},
	}
	relations := []model.Relation{
		{From: "A", To: "B", RelationType: "r"},
		{From: "B", To: "C", RelationType: "r"},
	}
	return assembly.Build(entities, relations)
}

func TestForceDirectedLayoutBounds(t *testing.T) {
	config := &LayoutConfig{Width: 800, Height: 600, Iterations: 30, Padding: 40}
	layout := NewForceDirectedLayout(config)

	positions := layout.ComputeLayout(layoutGraph())

	if len(positions) != 4 {
		t.Fatalf("positions = %d, want 4", len(positions))
	}
	for id, pos := range positions {
		if pos.X < config.Padding-0.01 || pos.X > config.Width-config.Padding+0.01 {
			t.Errorf("%s X=%f outside [%f, %f]", id, pos.X, config.Padding, config.Width-config.Padding)
		}
		if pos.Y < config.Padding-0.01 || pos.Y > config.Height-config.Padding+0.01 {
			t.Errorf("%s Y=%f outside [%f, %f]", id, pos.Y, config.Padding, config.Height-config.Padding)
		}
	}
}

func TestForceDirectedLayoutDeterministic(t *testing.T) {
	g := layoutGraph()

	first := NewForceDirectedLayout(&LayoutConfig{Width: 800, Height: 600, Seed: 42}).ComputeLayout(g)
	second := NewForceDirectedLayout(&LayoutConfig{Width: 800, Height: 600, Seed: 42}).ComputeLayout(g)

	for id, pos := range first {
		other, ok := second[id]
		if !ok {
			t.Fatalf("second run missing %s", id)
		}
		if math.Abs(pos.X-other.X) > 1e-9 || math.Abs(pos.Y-other.Y) > 1e-9 {
			t.Errorf("%s positions differ between seeded runs: %v vs %v", id, pos, other)
		}
	}
}

func TestForceDirectedLayoutDegenerate(t *testing.T) {
	empty := NewForceDirectedLayout(&LayoutConfig{Width: 800, Height: 600}).ComputeLayout(assembly.Build(nil, nil))
	if len(empty) != 0 {
		t.Errorf("empty graph produced %d positions", len(empty))
	}

	single := assembly.Build([]*model.Entity{{Name: "only"}}, nil)
	positions := NewForceDirectedLayout(&LayoutConfig{Width: 800, Height: 600}).ComputeLayout(single)
	if pos, ok := positions["only"]; !ok || pos.X != 400 || pos.Y != 300 {
		t.Errorf("single node should sit at center, got %v", positions)
	}
}

func TestCircularLayout(t *testing.T) {
	config := &LayoutConfig{Width: 800, Height: 600, Padding: 50}
	layout := NewCircularLayout(config)

	g := layoutGraph()
	positions := layout.ComputeLayout(g)

	if len(positions) != 4 {
		t.Fatalf("positions = %d, want 4", len(positions))
	}

	centerX, centerY := 400.0, 300.0
	radius := 250.0
	for id, pos := range positions {
		dx, dy := pos.X-centerX, pos.Y-centerY
		dist := math.Sqrt(dx*dx + dy*dy)
		if math.Abs(dist-radius) > 1e-9 {
			t.Errorf("%s at distance %f from center, want %f", id, dist, radius)
		}
	}
}

func TestCircularLayoutEmpty(t *testing.T) {
	layout := NewCircularLayout(&LayoutConfig{Width: 800, Height: 600})
	if got := layout.ComputeLayout(assembly.Build(nil, nil)); len(got) != 0 {
		t.Errorf("empty graph produced %d positions", len(got))
	}
}
