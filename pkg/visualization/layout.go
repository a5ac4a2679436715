package visualization

import (
	"math"
	"math/rand"

	"github.com/dd0wney/vkb-viewer/pkg/assembly"
)

// Position represents a 2D coordinate
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// LayoutConfig configures layout parameters
type LayoutConfig struct {
	Width      float64 // Canvas width
	Height     float64 // Canvas height
	Iterations int     // Number of iterations for iterative algorithms
	Padding    float64 // Padding from edges
	Seed       int64   // Seed for initial placement; 0 means a fixed default
}

// Layout is a black-box layout engine: it consumes an assembled graph
// and emits positions keyed by node ID. Engines may keep per-node
// scratch state on the graph's nodes; assembly guarantees those are
// private per-render copies.
type Layout interface {
	ComputeLayout(g *assembly.Graph) map[string]Position
}

// ForceDirectedLayout implements force-directed graph layout
type ForceDirectedLayout struct {
	config *LayoutConfig
}

// NewForceDirectedLayout creates a new force-directed layout
func NewForceDirectedLayout(config *LayoutConfig) *ForceDirectedLayout {
	if config.Iterations == 0 {
		config.Iterations = 50
	}
	if config.Padding == 0 {
		config.Padding = 50
	}
	if config.Seed == 0 {
		config.Seed = 1
	}
	return &ForceDirectedLayout{config: config}
}

// ComputeLayout computes positions using a force-directed algorithm
func (fdl *ForceDirectedLayout) ComputeLayout(g *assembly.Graph) map[string]Position {
	ids := make([]string, 0, len(g.Nodes))
	for _, n := range g.Nodes {
		ids = append(ids, n.ID)
	}

	if len(ids) == 0 {
		return make(map[string]Position)
	}
	if len(ids) == 1 {
		return map[string]Position{
			ids[0]: {X: fdl.config.Width / 2, Y: fdl.config.Height / 2},
		}
	}

	rng := rand.New(rand.NewSource(fdl.config.Seed))

	positions := make(map[string]Position, len(ids))
	for _, id := range ids {
		positions[id] = Position{
			X: rng.Float64()*(fdl.config.Width-2*fdl.config.Padding) + fdl.config.Padding,
			Y: rng.Float64()*(fdl.config.Height-2*fdl.config.Padding) + fdl.config.Padding,
		}
	}

	// Adjacency for attraction
	neighbors := make(map[string]map[string]bool, len(ids))
	for _, id := range ids {
		neighbors[id] = make(map[string]bool)
	}
	for _, e := range g.Edges {
		neighbors[e.From][e.To] = true
		neighbors[e.To][e.From] = true
	}

	k := math.Sqrt((fdl.config.Width * fdl.config.Height) / float64(len(ids))) // Optimal distance
	temperature := fdl.config.Width / 10.0

	for iter := 0; iter < fdl.config.Iterations; iter++ {
		forces := make(map[string]Position, len(ids))
		for _, id := range ids {
			forces[id] = Position{}
		}

		// Repulsion between all pairs
		for i, a := range ids {
			for j := i + 1; j < len(ids); j++ {
				b := ids[j]
				dx := positions[a].X - positions[b].X
				dy := positions[a].Y - positions[b].Y
				dist := math.Sqrt(dx*dx + dy*dy)
				if dist < 0.01 {
					dist = 0.01
				}

				force := (k * k) / dist
				fx := (dx / dist) * force
				fy := (dy / dist) * force

				forces[a] = Position{X: forces[a].X + fx, Y: forces[a].Y + fy}
				forces[b] = Position{X: forces[b].X - fx, Y: forces[b].Y - fy}
			}
		}

		// Attraction between connected nodes
		for _, a := range ids {
			for b := range neighbors[a] {
				dx := positions[a].X - positions[b].X
				dy := positions[a].Y - positions[b].Y
				dist := math.Sqrt(dx*dx + dy*dy)
				if dist < 0.01 {
					continue
				}

				force := (dist * dist) / k
				forces[a] = Position{
					X: forces[a].X - (dx/dist)*force,
					Y: forces[a].Y - (dy/dist)*force,
				}
			}
		}

		// Apply forces with cooling
		cool := 1.0 - float64(iter)/float64(fdl.config.Iterations)
		for _, id := range ids {
			fx := forces[id].X
			fy := forces[id].Y
			force := math.Sqrt(fx*fx + fy*fy)
			if force > 0 {
				positions[id] = Position{
					X: positions[id].X + (fx/force)*math.Min(force, temperature)*cool,
					Y: positions[id].Y + (fy/force)*math.Min(force, temperature)*cool,
				}
			}
		}

		temperature *= 0.95
	}

	return normalizePositions(positions, fdl.config.Width, fdl.config.Height, fdl.config.Padding)
}

// CircularLayout arranges nodes in a circle
type CircularLayout struct {
	config *LayoutConfig
}

// NewCircularLayout creates a new circular layout
func NewCircularLayout(config *LayoutConfig) *CircularLayout {
	if config.Padding == 0 {
		config.Padding = 50
	}
	return &CircularLayout{config: config}
}

// ComputeLayout arranges nodes in a circle in node order
func (cl *CircularLayout) ComputeLayout(g *assembly.Graph) map[string]Position {
	positions := make(map[string]Position, len(g.Nodes))
	if len(g.Nodes) == 0 {
		return positions
	}

	centerX := cl.config.Width / 2
	centerY := cl.config.Height / 2
	radius := math.Min(centerX, centerY) - cl.config.Padding

	angleStep := 2 * math.Pi / float64(len(g.Nodes))
	for i, n := range g.Nodes {
		angle := float64(i) * angleStep
		positions[n.ID] = Position{
			X: centerX + radius*math.Cos(angle),
			Y: centerY + radius*math.Sin(angle),
		}
	}

	return positions
}

// normalizePositions scales positions to fit within bounds
func normalizePositions(positions map[string]Position, width, height, padding float64) map[string]Position {
	if len(positions) == 0 {
		return positions
	}

	minX, maxX := math.MaxFloat64, -math.MaxFloat64
	minY, maxY := math.MaxFloat64, -math.MaxFloat64
	for _, pos := range positions {
		minX = math.Min(minX, pos.X)
		maxX = math.Max(maxX, pos.X)
		minY = math.Min(minY, pos.Y)
		maxY = math.Max(maxY, pos.Y)
	}

	rangeX := maxX - minX
	rangeY := maxY - minY
	if rangeX < 0.01 {
		rangeX = 1
	}
	if rangeY < 0.01 {
		rangeY = 1
	}

	targetWidth := width - 2*padding
	targetHeight := height - 2*padding

	normalized := make(map[string]Position, len(positions))
	for id, pos := range positions {
		normalized[id] = Position{
			X: padding + ((pos.X-minX)/rangeX)*targetWidth,
			Y: padding + ((pos.Y-minY)/rangeY)*targetHeight,
		}
	}
	return normalized
}
