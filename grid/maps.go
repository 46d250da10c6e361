package grid

import (
	"encoding/json"
	"fmt"
	"math/rand"
	"os"
)

// MapExt is the conventional extension for saved map files.
const MapExt = ".robonavmap"

// Map is the on-disk layout format. Obstacles are stored sparsely; overlay
// cells are never persisted.
type Map struct {
	Name      string     `json:"name,omitempty"`
	Width     int        `json:"width"`
	Height    int        `json:"height"`
	Start     Position   `json:"start"`
	Goal      Position   `json:"goal"`
	Obstacles []Position `json:"obstacles"`
}

// ToGrid builds a grid from the map, placing obstacles and the start/goal
// markers.
func (m Map) ToGrid() (*Grid, error) {
	if m.Width <= 0 || m.Height <= 0 {
		return nil, fmt.Errorf("map %q has invalid size %dx%d", m.Name, m.Width, m.Height)
	}
	g := New(m.Width, m.Height)
	for _, o := range m.Obstacles {
		if !g.InBounds(o) {
			return nil, fmt.Errorf("map %q: obstacle %v out of bounds", m.Name, o)
		}
		g.SetCell(o, Obstacle)
	}
	if !g.IsWalkable(m.Start) || !g.IsWalkable(m.Goal) {
		return nil, fmt.Errorf("map %q: start %v or goal %v not walkable", m.Name, m.Start, m.Goal)
	}
	g.SetCell(m.Start, Start)
	g.SetCell(m.Goal, Goal)
	return g, nil
}

// Snapshot captures a grid back into the persistable map format.
func Snapshot(g *Grid, name string, start, goal Position) Map {
	m := Map{Name: name, Width: g.Width(), Height: g.Height(), Start: start, Goal: goal}
	for y := 0; y < g.Height(); y++ {
		for x := 0; x < g.Width(); x++ {
			pos := Position{X: x, Y: y}
			if g.Cell(pos) == Obstacle {
				m.Obstacles = append(m.Obstacles, pos)
			}
		}
	}
	return m
}

// LoadMap reads a map file from path.
func LoadMap(path string) (Map, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return Map{}, fmt.Errorf("read map: %w", err)
	}
	var m Map
	if err := json.Unmarshal(b, &m); err != nil {
		return Map{}, fmt.Errorf("parse map %s: %w", path, err)
	}
	return m, nil
}

// SaveMap writes a map file to path.
func SaveMap(path string, m Map) error {
	b, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, append(b, '\n'), 0o644); err != nil {
		return fmt.Errorf("write map: %w", err)
	}
	return nil
}

// GenerateWalls scatters clustered obstacles onto g using random walks, and
// guarantees start and goal stay walkable. Density is the chance a visited
// cell becomes a wall.
func GenerateWalls(g *Grid, r *rand.Rand, clusters, steps int, density float64, start, goal Position) {
	for c := 0; c < clusters; c++ {
		p := Position{X: r.Intn(g.Width()), Y: r.Intn(g.Height())}
		for s := 0; s < steps; s++ {
			if r.Float64() < density && p != start && p != goal {
				g.SetCell(p, Obstacle)
			}
			next := p.Neighbors()[r.Intn(4)]
			if g.InBounds(next) {
				p = next
			}
		}
	}
}
