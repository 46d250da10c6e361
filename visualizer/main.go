// Package main implements the interactive terminal visualizer. It owns the
// step loop: a fresh search.State per run, advanced either by keypress or
// on a timer, with the board and the step inspector rendered in between.
package main

import (
	"flag"
	"fmt"
	"log"
	"math/rand"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/robonav/robonav/grid"
	"github.com/robonav/robonav/search"
)

func main() {
	mapPath := flag.String("map", "", "Path to a .robonavmap file (overrides -width/-height/-seed)")
	width := flag.Int("width", 24, "Grid width for generated maps")
	height := flag.Int("height", 16, "Grid height for generated maps")
	seed := flag.Int64("seed", time.Now().UnixNano(), "Seed for generated obstacles")
	density := flag.Float64("density", 0.35, "Obstacle density for generated maps")
	algoName := flag.String("algo", "astar", "Starting algorithm: bfs, dfs, or astar")
	delay := flag.Duration("delay", 80*time.Millisecond, "Delay between steps during autoplay")
	flag.Parse()

	algo, err := search.ParseAlgorithm(*algoName)
	if err != nil {
		log.Fatal(err)
	}

	var (
		g           *grid.Grid
		start, goal grid.Position
		mapName     string
	)
	if *mapPath != "" {
		m, err := grid.LoadMap(*mapPath)
		if err != nil {
			log.Fatalf("Failed to load map: %v", err)
		}
		g, err = m.ToGrid()
		if err != nil {
			log.Fatalf("Bad map: %v", err)
		}
		start, goal, mapName = m.Start, m.Goal, m.Name
	} else {
		start = grid.Position{X: 0, Y: 0}
		goal = grid.Position{X: *width - 1, Y: *height - 1}
		g = grid.New(*width, *height)
		r := rand.New(rand.NewSource(*seed))
		grid.GenerateWalls(g, r, 4, *width**height/2, *density, start, goal)
		g.SetCell(start, grid.Start)
		g.SetCell(goal, grid.Goal)
		mapName = fmt.Sprintf("random-%d", *seed)
	}

	m := newModel(g, mapName, start, goal, algo, *delay)
	if _, err := tea.NewProgram(m, tea.WithAltScreen()).Run(); err != nil {
		fmt.Fprintf(os.Stderr, "visualizer error: %v\n", err)
		os.Exit(1)
	}
}

type tickMsg time.Time

func tickCmd(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(t time.Time) tea.Msg { return tickMsg(t) })
}

type model struct {
	g       *grid.Grid
	mapName string
	start   grid.Position
	goal    grid.Position

	algo    search.Algorithm
	state   *search.State
	outcome *search.StepResult

	playing bool
	delay   time.Duration
}

func newModel(g *grid.Grid, mapName string, start, goal grid.Position, algo search.Algorithm, delay time.Duration) model {
	m := model{
		g:       g,
		mapName: mapName,
		start:   start,
		goal:    goal,
		algo:    algo,
		delay:   delay,
	}
	m.resetRun()
	return m
}

func (m *model) resetRun() {
	m.g.ClearSearchCells()
	m.state = search.New()
	m.state.Initialize(m.algo, m.start, m.goal)
	m.outcome = nil
	m.playing = false
}

func (m *model) advance() {
	if m.outcome != nil {
		return
	}
	res := m.state.Step(m.algo, m.goal, m.g)
	switch res.Outcome {
	case search.PathFound:
		m.g.MarkPath(res.Path)
		m.outcome = &res
		m.playing = false
	case search.NoPath:
		m.outcome = &res
		m.playing = false
	}
}

func (m model) Init() tea.Cmd {
	return tickCmd(m.delay)
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case " ":
			m.playing = false
			m.advance()
		case "p":
			if m.outcome == nil {
				m.playing = !m.playing
			}
		case "1":
			m.algo = search.BFS
			m.resetRun()
		case "2":
			m.algo = search.DFS
			m.resetRun()
		case "3":
			m.algo = search.AStar
			m.resetRun()
		case "r":
			m.resetRun()
		case "+", "=":
			if m.delay > 10*time.Millisecond {
				m.delay /= 2
			}
		case "-":
			if m.delay < 2*time.Second {
				m.delay *= 2
			}
		}
	case tickMsg:
		if m.playing {
			m.advance()
		}
		return m, tickCmd(m.delay)
	}
	return m, nil
}
