package viz

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/san-kum/mppinav/internal/dynamo"
	"github.com/san-kum/mppinav/internal/mppi"
	"github.com/san-kum/mppinav/internal/sim"
)

const (
	canvasWidth     = 60
	canvasHeight    = 22
	historyCapacity = 600
)

type TickMsg time.Time

// Live steps a controller against a plant once per frame and draws the
// robot, its path and the goals.
type Live struct {
	ctrl     *mppi.Controller
	plant    sim.Plant
	state    dynamo.State
	u        dynamo.Control
	t, dt    float64
	maxTicks int
	ticks    int

	goals    []dynamo.State
	path     []dynamo.State
	distance []float64
	lastErr  error

	canvas   *Canvas
	view     Viewport
	theme    int
	fps      int
	running  bool
	finished bool
	showHelp bool
}

func NewLive(ctrl *mppi.Controller, plant sim.Plant, x0 dynamo.State, goals []dynamo.State, maxTicks, fps int) Live {
	if fps <= 0 {
		fps = 30
	}
	canvas := NewCanvas(canvasWidth, canvasHeight)
	pts := [][]float64{x0}
	for _, g := range goals {
		pts = append(pts, g)
	}

	return Live{
		ctrl:     ctrl,
		plant:    plant,
		state:    x0.Clone(),
		u:        make(dynamo.Control, dynamo.ControlDim),
		dt:       ctrl.Config().Dt,
		maxTicks: maxTicks,
		goals:    goals,
		path:     []dynamo.State{x0.Clone()},
		distance: make([]float64, 0, historyCapacity),
		canvas:   canvas,
		view:     FitViewport(canvas, pts),
		fps:      fps,
		running:  true,
	}
}

func (m Live) tick() tea.Cmd {
	return tea.Tick(time.Second/time.Duration(m.fps), func(t time.Time) tea.Msg { return TickMsg(t) })
}

func (m Live) Init() tea.Cmd {
	return m.tick()
}

func (m Live) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case " ":
			m.running = !m.running
		case "+", "=":
			m.view.Scale *= 1.25
		case "-", "_":
			m.view.Scale /= 1.25
		case "t":
			m.theme = (m.theme + 1) % len(Themes)
		case "?":
			m.showHelp = !m.showHelp
		}
	case TickMsg:
		if m.running && !m.finished {
			m.step()
		}
		return m, m.tick()
	}
	return m, nil
}

func (m *Live) step() {
	u, err := m.ctrl.Tick(m.state)
	m.u = u
	if err != nil {
		m.lastErr = err
	}

	m.state = m.plant.Step(m.state, u, m.dt)
	m.t += m.dt
	m.ticks++

	m.path = append(m.path, m.state.Clone())
	m.distance = append(m.distance, m.state.Distance(m.ctrl.Goal()))
	if len(m.distance) > historyCapacity {
		m.distance = m.distance[1:]
	}

	if m.ctrl.Done() || m.ticks >= m.maxTicks || !m.state.IsValid() {
		m.finished = true
	}
}

func (m Live) draw() string {
	m.canvas.Clear()
	for _, g := range m.goals {
		gx, gy := m.view.ToDots(g[dynamo.X], g[dynamo.Y])
		m.canvas.DrawCross(gx, gy)
	}
	for i := 1; i < len(m.path); i++ {
		x0, y0 := m.view.ToDots(m.path[i-1][dynamo.X], m.path[i-1][dynamo.Y])
		x1, y1 := m.view.ToDots(m.path[i][dynamo.X], m.path[i][dynamo.Y])
		m.canvas.DrawLine(x0, y0, x1, y1)
	}
	return m.canvas.String()
}

func (m Live) View() string {
	theme := Themes[m.theme]
	header := lipgloss.NewStyle().Foreground(theme.Header).Bold(true)
	label := lipgloss.NewStyle().Foreground(theme.Muted).Width(10)
	value := lipgloss.NewStyle().Foreground(theme.Text)

	canvas := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(theme.Muted).
		Foreground(theme.Path).
		Render(m.draw())

	status := "running"
	statusColor := theme.Success
	switch {
	case m.finished:
		status = "finished"
	case !m.running:
		status = "paused"
		statusColor = theme.Warning
	}

	row := func(k, v string) string { return label.Render(k) + value.Render(v) + "\n" }
	var stats strings.Builder
	stats.WriteString(header.Render("mppinav live") + "\n\n")
	stats.WriteString(row("status", lipgloss.NewStyle().Foreground(statusColor).Render(status)))
	stats.WriteString(row("phase", m.ctrl.Phase().String()))
	stats.WriteString(row("time", fmt.Sprintf("%.2fs", m.t)))
	stats.WriteString(row("pose", fmt.Sprintf("%.3f %.3f %.3f", m.state[0], m.state[1], m.state[2])))
	stats.WriteString(row("command", fmt.Sprintf("%.2f %.2f", m.u[0], m.u[1])))
	goal := m.ctrl.Goal()
	stats.WriteString(row("goal", fmt.Sprintf("%.2f %.2f %.2f", goal[0], goal[1], goal[2])))
	stats.WriteString(row("reached", fmt.Sprintf("%d/%d", m.ctrl.GoalsReached(), len(m.goals))))
	if m.lastErr != nil {
		stats.WriteString(lipgloss.NewStyle().Foreground(theme.Warning).Render(m.lastErr.Error()) + "\n")
	}
	stats.WriteString("\n" + PlotSeries(m.distance, "goal distance (m)", 6) + "\n")

	help := lipgloss.NewStyle().Foreground(theme.Muted).Render("space pause  +/- zoom  t theme  ? help  q quit")
	if m.showHelp {
		help = lipgloss.NewStyle().Foreground(theme.Text).Render(
			"space  pause or resume the loop\n+/-    zoom the map\nt      cycle themes (" +
				strings.Join(ThemeNames(), ", ") + ")\nq      quit")
	}

	body := lipgloss.JoinHorizontal(lipgloss.Top, canvas, lipgloss.NewStyle().Padding(0, 2).Render(stats.String()))
	return lipgloss.JoinVertical(lipgloss.Left, body, help)
}

// Finished reports whether the loop has stopped stepping.
func (m Live) Finished() bool { return m.finished }

// State returns the current plant state.
func (m Live) State() dynamo.State { return m.state.Clone() }

// RunLive takes over the terminal until the user quits.
func RunLive(m Live) error {
	p := tea.NewProgram(m, tea.WithAltScreen())
	_, err := p.Run()
	return err
}
