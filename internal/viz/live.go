package viz

import (
	"fmt"
	"sort"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"

	"github.com/san-kum/mhdsim/internal/mhd"
	"github.com/san-kum/mhdsim/internal/particles"
	"github.com/san-kum/mhdsim/internal/sim"
)

const (
	width           = 64
	height          = 24
	historyCapacity = 600
)

type TickMsg time.Time

// Model steps a simulator once per tick and draws one field of it.
type Model struct {
	sim *sim.Simulator

	width, height int
	running       bool
	showHelp      bool
	err           error

	fields   []string
	selected int

	dtHistory []float64
	last      sim.StepRecord
}

// NewModel wraps a simulator. Initialize must have succeeded.
func NewModel(s *sim.Simulator) Model {
	m := Model{
		sim:       s,
		width:     width,
		height:    height,
		running:   true,
		dtHistory: make([]float64, 0, historyCapacity),
	}
	m.fields = displayFields(s.Simulation())
	m.last = s.Observe(0)
	return m
}

// displayFields lists what the model can draw: the density, a few derived
// quantities and every passive scalar.
func displayFields(s *mhd.Simulation) []string {
	fields := []string{mhd.Density, "pressure", mhd.Energy, "soundspeed"}
	if s.CC() == nil {
		return fields
	}
	names := s.CC().Names()
	if v := s.Vars(); v.HasAux() {
		fields = append(fields, names[v.IRhoX:]...)
	}
	return fields
}

func (m Model) Init() tea.Cmd {
	return tick()
}

func tick() tea.Cmd {
	return tea.Tick(time.Second/30, func(t time.Time) tea.Msg { return TickMsg(t) })
}

// Update handles input events and steps the simulation.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case " ":
			m.running = !m.running
		case "s":
			if !m.running {
				m.step()
			}
		case "f":
			m.selected = (m.selected + 1) % len(m.fields)
		case "t":
			SetTheme(nextTheme())
		case "r":
			m.reset()
		case "?":
			m.showHelp = !m.showHelp
		}
	case tea.WindowSizeMsg:
		m.width = clampInt(msg.Width-statsStyle.GetWidth()-8, 16, 160)
		m.height = clampInt(msg.Height-6, 8, 80)
	case TickMsg:
		if m.running {
			m.step()
		}
		return m, tick()
	}
	return m, nil
}

// step advances the simulation once, unless it is finished or failed.
func (m *Model) step() {
	if m.err != nil || m.sim.Done() {
		m.running = false
		return
	}
	if err := m.sim.Step(); err != nil {
		m.err = err
		m.running = false
		return
	}
	m.last = m.sim.Observe(m.sim.LastDt())
	m.dtHistory = append(m.dtHistory, m.last.Dt)
	if len(m.dtHistory) > historyCapacity {
		m.dtHistory = m.dtHistory[1:]
	}
}

func (m *Model) reset() {
	if err := m.sim.Initialize(); err != nil {
		m.err = err
		m.running = false
		return
	}
	m.sim.ResetMetrics()
	m.err = nil
	m.dtHistory = m.dtHistory[:0]
	m.last = m.sim.Observe(0)
}

// Field is the name of the quantity on screen.
func (m Model) Field() string { return m.fields[m.selected] }

func (m Model) Running() bool { return m.running }

func (m Model) Err() error { return m.err }

func (m Model) status() string {
	switch {
	case m.err != nil:
		return errorStyle.Render("FAILED")
	case m.sim.Done():
		return StatusDone.Render("DONE")
	case !m.running:
		return StatusPaused.Render("PAUSED")
	}
	return StatusRunning.Render("RUNNING")
}

func (m Model) View() string {
	s := m.sim.Simulation()
	cfg := s.Config()

	var field strings.Builder
	planes, err := s.CC().Derived(m.Field())
	if err != nil {
		field.WriteString(errorStyle.Render(err.Error()))
	} else {
		h := Heatmap{Cols: m.width, Rows: m.height / 2, Theme: CurrentTheme}
		var tracers []particles.Particle
		if ps := s.Particles(); ps != nil {
			tracers = ps.Positions()
		}
		field.WriteString(h.Render(s.Grid(), planes[0], tracers) + "\n\n")
		lo, hi := Range(s.Grid(), planes[0])
		field.WriteString(h.Legend(lo, hi))
	}
	canvasView := canvasStyle.Render(field.String())

	var b strings.Builder
	b.WriteString(headerStyle.Render(strings.ToUpper(cfg.Problem)) + "\n")
	b.WriteString(m.status() + "\n\n")

	row := func(label, value string) {
		b.WriteString(labelStyle.Render(label) + valueStyle.Render(value) + "\n")
	}
	row("Field", m.Field())
	row("Time", fmt.Sprintf("%.4f / %g", s.T(), cfg.Driver.TMax))
	row("Step", fmt.Sprintf("%d", s.N()))
	row("dt", fmt.Sprintf("%.4e", m.last.Dt))
	row("Method", cfg.MHD.TemporalMethod)
	row("Grid", fmt.Sprintf("%d x %d", cfg.Mesh.Nx, cfg.Mesh.Ny))
	if ps := s.Particles(); ps != nil {
		row("Particles", fmt.Sprintf("%d", ps.Len()))
	}
	if cfg.Driver.TMax > 0 {
		b.WriteString(ProgressBar(s.T()/cfg.Driver.TMax, 30) + "\n")
	}

	if len(m.last.Metrics) > 0 {
		b.WriteString("\nMETRICS\n")
		names := make([]string, 0, len(m.last.Metrics))
		for k := range m.last.Metrics {
			names = append(names, k)
		}
		sort.Strings(names)
		for _, k := range names {
			row(k, fmt.Sprintf("%.6g", m.last.Metrics[k]))
		}
	}

	if len(m.dtHistory) > 1 {
		chart := asciigraph.Plot(m.dtHistory, asciigraph.Height(4), asciigraph.Width(30), asciigraph.Caption("dt"))
		b.WriteString(graphStyle.Render(chart) + "\n")
	}
	if m.err != nil {
		b.WriteString(errorStyle.Render(m.err.Error()) + "\n")
	}

	b.WriteString(helpStyle.Render("─────────────────────\nSP:Pause S:Step F:Field\nT:Theme  R:Reset  Q:Quit  ?:Help"))
	statsView := statsStyle.Render(b.String())
	mainView := lipgloss.JoinHorizontal(lipgloss.Top, canvasView, statsView)
	if m.showHelp {
		return `
╔══════════════════════════════════════╗
║           KEYBOARD SHORTCUTS          ║
╠══════════════════════════════════════╣
║  Space    - Pause/Resume simulation  ║
║  S        - Single step when paused  ║
║  F        - Cycle displayed field    ║
║  T        - Cycle colormaps          ║
║  R        - Restart the run          ║
║  Q        - Quit                     ║
║  ?        - Toggle this help         ║
╚══════════════════════════════════════╝
` + "\n\n" + mainView
	}
	return mainView
}
