package viz

import (
	"fmt"
	"math"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"

	"github.com/san-kum/magsat/internal/adcs"
	"github.com/san-kum/magsat/internal/sim"
)

const historyCapacity = 600

var (
	headerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("86")).Bold(true).MarginBottom(1)
	statsStyle  = lipgloss.NewStyle().Border(lipgloss.NormalBorder(), false, false, false, true).BorderForeground(lipgloss.Color("240")).Padding(0, 2)
	labelStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Width(14)
	valueStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	faultStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("203")).Bold(true)
	graphStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("49")).Padding(1, 0)
	helpStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("240")).MarginTop(1)
)

type TickMsg time.Time

// Model steps the closed loop once per frame and renders the attitude
// deviation, commanded dipole, and a pointing-error history graph.
type Model struct {
	dyn        sim.System
	integrator sim.Integrator
	controller sim.Controller
	field      sim.FieldModel

	state adcs.State
	u     adcs.Dipole
	t, dt float64

	running   bool
	lastFault error
	faults    int
	steps     int
	history   []float64
}

func NewModel(dyn sim.System, integ sim.Integrator, ctrl sim.Controller, field sim.FieldModel, x0 adcs.State, dt float64) Model {
	return Model{
		dyn:        dyn,
		integrator: integ,
		controller: ctrl,
		field:      field,
		state:      x0.Clone(),
		dt:         dt,
		running:    true,
		history:    make([]float64, 0, historyCapacity),
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Tick(time.Second/30, func(t time.Time) tea.Msg { return TickMsg(t) })
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case " ":
			m.running = !m.running
		}
	case TickMsg:
		if m.running {
			m.step()
		}
		return m, tea.Tick(time.Second/30, func(t time.Time) tea.Msg { return TickMsg(t) })
	}
	return m, nil
}

func (m *Model) step() {
	b := m.field.At(m.t)

	u, err := m.controller.Command(m.state, b, m.t)
	m.u = u
	m.lastFault = err
	if err != nil {
		m.faults++
	}

	m.state = m.integrator.Step(m.dyn, m.state, u, b, m.t, m.dt)
	m.t += m.dt
	m.steps++

	pointing := math.Sqrt(m.state[0]*m.state[0] + m.state[1]*m.state[1] + m.state[2]*m.state[2])
	m.history = append(m.history, pointing)
	if len(m.history) > historyCapacity {
		m.history = m.history[1:]
	}
}

func (m Model) View() string {
	var sb strings.Builder

	sb.WriteString(headerStyle.Render("magsat — magnetorquer LQR"))
	sb.WriteString("\n")

	var stats strings.Builder
	row := func(label, value string) {
		stats.WriteString(labelStyle.Render(label))
		stats.WriteString(valueStyle.Render(value))
		stats.WriteString("\n")
	}
	row("time", fmt.Sprintf("%.0f s", m.t))
	row("angles", fmt.Sprintf("% .5f % .5f % .5f rad", m.state[0], m.state[1], m.state[2]))
	row("rates", fmt.Sprintf("% .6f % .6f % .6f rad/s", m.state[3], m.state[4], m.state[5]))
	row("dipole", fmt.Sprintf("% .4f % .4f % .4f A*m^2", m.u[0], m.u[1], m.u[2]))
	row("faults", fmt.Sprintf("%d / %d cycles", m.faults, m.steps))
	if m.lastFault != nil {
		stats.WriteString(faultStyle.Render("fault: " + m.lastFault.Error()))
		stats.WriteString("\n")
	}
	sb.WriteString(statsStyle.Render(stats.String()))
	sb.WriteString("\n")

	if len(m.history) > 1 {
		graph := asciigraph.Plot(m.history,
			asciigraph.Height(10),
			asciigraph.Width(70),
			asciigraph.Caption("pointing error [rad]"),
		)
		sb.WriteString(graphStyle.Render(graph))
		sb.WriteString("\n")
	}

	sb.WriteString(helpStyle.Render("space pause · q quit"))
	return sb.String()
}

// Run starts the live view and blocks until quit.
func Run(dyn sim.System, integ sim.Integrator, ctrl sim.Controller, field sim.FieldModel, x0 adcs.State, dt float64) error {
	p := tea.NewProgram(NewModel(dyn, integ, ctrl, field, x0, dt))
	_, err := p.Run()
	return err
}
