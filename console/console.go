// Package console is the headless operator console: a terminal dashboard
// that drives the engine at a fixed tick, shows its state, and exposes the
// operator controls (rearm, photo upload, formation toggles). It renders no
// particles, only telemetry; the installation screen is the frontend
// package's job. With a replay script the console doubles as a deterministic
// harness for recorded gesture sessions.
package console

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"

	"github.com/phanxgames/arbor"
)

var (
	titleStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("86")).Bold(true)
	labelStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("242"))
	valueStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("255"))
	goldStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("220"))
	activeStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("213"))
	helpStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("238"))
)

// Options configures the console loop.
type Options struct {
	// TicksPerSecond is the engine tick rate. Defaults to 30.
	TicksPerSecond float64
	// History is how many convergence samples the graph keeps. Defaults
	// to 120.
	History int
	// Replay, when non-nil, feeds the engine recorded hand landmarks
	// through the camera input path.
	Replay *arbor.ReplayProvider
}

type tickMsg time.Time

// Model is the bubbletea model around one engine.
type Model struct {
	engine  *arbor.Engine
	dt      float64
	history []float64
	maxHist int
	replay  *arbor.ReplayProvider
	elapsed float64
	photoN  int
	width   int
}

// New builds the console model. When opts.Replay is set, the engine is
// switched to camera input backed by the script, with the async vision
// bootstrap completed synchronously since there is no real model to load.
func New(engine *arbor.Engine, opts Options) (Model, error) {
	tps := opts.TicksPerSecond
	if tps <= 0 {
		tps = 30
	}
	hist := opts.History
	if hist <= 0 {
		hist = 120
	}

	if opts.Replay != nil {
		if err := engine.SetInputMode(arbor.InputCamera, opts.Replay); err != nil {
			return Model{}, err
		}
		// Replay has no real model, permission prompt, or stream, so the
		// async setup completes immediately.
		sess := engine.Session()
		sess.ModelLoaded(nil)
		sess.PermissionResult(nil)
		sess.StreamStarted(nil, false)
	}

	return Model{
		engine:  engine,
		dt:      1 / tps,
		history: make([]float64, 0, hist),
		maxHist: hist,
		replay:  opts.Replay,
		width:   80,
	}, nil
}

func (m Model) Init() tea.Cmd { return m.tick() }

func (m Model) tick() tea.Cmd {
	return tea.Tick(time.Duration(float64(time.Second)*m.dt), func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			m.engine.Close()
			return m, tea.Quit
		case "t":
			m.engine.Signal(arbor.Signal{Kind: arbor.SignalToggleFormation})
		case "e":
			m.engine.Signal(arbor.Signal{Kind: arbor.SignalEpicTrigger})
		case "r":
			m.engine.RearmEpic()
		case "g":
			m.engine.Signal(arbor.Signal{Kind: arbor.SignalGoldMode})
		case "p":
			m.photoN++
			m.engine.AddPhoto(fmt.Sprintf("photo-%03d", m.photoN))
		case "s":
			m.engine.Signal(arbor.Signal{Kind: arbor.SignalSelectAt, X: -1, Y: -1})
		case "c":
			m.engine.CloseFocus()
		}
		return m, nil

	case tickMsg:
		m.engine.Tick(m.dt)
		m.elapsed += m.dt
		m.history = append(m.history, m.engine.Convergence())
		if len(m.history) > m.maxHist {
			m.history = m.history[1:]
		}
		return m, m.tick()
	}
	return m, nil
}

func (m Model) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("arbor operator console"))
	b.WriteString("\n\n")

	row := func(label, value string) {
		b.WriteString(labelStyle.Render(fmt.Sprintf("%-12s", label)))
		b.WriteString(valueStyle.Render(value))
		b.WriteString("\n")
	}

	row("mode", m.engine.Mode().String())
	row("input", m.engine.InputMode().String())
	row("gesture", m.engine.Gesture().String())
	row("photos", fmt.Sprintf("%d", m.engine.Deck().Count()))
	b.WriteString(labelStyle.Render(fmt.Sprintf("%-12s", "blessings")))
	b.WriteString(goldStyle.Render(fmt.Sprintf("%d", m.engine.Blessings())))
	b.WriteString("\n")
	if m.engine.EpicActive() {
		b.WriteString(activeStyle.Render("epic sequence running"))
		b.WriteString("\n")
	}
	if m.replay != nil && m.replay.Finished(m.elapsed) {
		b.WriteString(labelStyle.Render("replay script finished"))
		b.WriteString("\n")
	}
	if hp := m.engine.HoldProgress(); hp > 0 {
		filled := int(hp * 20)
		bar := strings.Repeat("█", filled) + strings.Repeat("░", 20-filled)
		b.WriteString(labelStyle.Render(fmt.Sprintf("%-12s", "hold")))
		b.WriteString(goldStyle.Render(bar))
		b.WriteString("\n")
	}
	row("status", m.engine.Status())

	if len(m.history) >= 2 {
		b.WriteString("\n")
		width := m.width - 10
		if width > m.maxHist {
			width = m.maxHist
		}
		if width < 20 {
			width = 20
		}
		b.WriteString(asciigraph.Plot(m.history,
			asciigraph.Height(6),
			asciigraph.Width(width),
			asciigraph.Caption("convergence (mean distance to target)")))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(helpStyle.Render("t toggle · s select · c close · p photo · e epic · r rearm · g gold · q quit"))
	b.WriteString("\n")
	return b.String()
}

// Run starts the console and blocks until the operator quits. The engine is
// closed on exit.
func Run(engine *arbor.Engine, opts Options) error {
	m, err := New(engine, opts)
	if err != nil {
		return err
	}
	defer engine.Close()
	if _, err := tea.NewProgram(m).Run(); err != nil {
		return fmt.Errorf("arbor: console: %w", err)
	}
	return nil
}
