package viz

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"

	"github.com/san-kum/etmsim/internal/engine"
)

const historyCapacity = 600

type TickMsg time.Time

// Model steps a tick engine under terminal control and renders the echo
// field slice by slice.
type Model struct {
	eng     *engine.TickEngine
	initial *engine.TickEngine
	name    string

	slice    SliceSpec
	palIdx   int
	running  bool
	stepOnce bool
	showHelp bool

	ticksPerSec   int
	maxTicks      int
	energyHistory []float64
	echoHistory   []float64
}

// NewModel wraps an engine for interactive ticking. maxTicks of zero runs
// until quit.
func NewModel(eng *engine.TickEngine, name string, maxTicks int) Model {
	_, _, nz := eng.Lattice().Dims()
	m := Model{
		eng:           eng,
		initial:       eng.Clone(),
		name:          name,
		slice:         SliceSpec{Axis: 2, Index: nz / 2},
		running:       true,
		ticksPerSec:   8,
		maxTicks:      maxTicks,
		energyHistory: make([]float64, 0, historyCapacity),
		echoHistory:   make([]float64, 0, historyCapacity),
	}
	m.recordEnergy()
	return m
}

func (m Model) tickCmd() tea.Cmd {
	return tea.Tick(time.Second/time.Duration(m.ticksPerSec), func(t time.Time) tea.Msg { return TickMsg(t) })
}

func (m Model) Init() tea.Cmd { return m.tickCmd() }

// Update handles input events and steps the engine.
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
				m.stepOnce = true
			}
		case "r":
			m.reset()
		case "[":
			m.slice.Index--
			m.slice = m.slice.Clamp(m.eng.Lattice())
		case "]":
			m.slice.Index++
			m.slice = m.slice.Clamp(m.eng.Lattice())
		case "a":
			m.slice.Axis = (m.slice.Axis + 1) % 3
			m.slice = m.slice.Clamp(m.eng.Lattice())
		case "t":
			m.palIdx = (m.palIdx + 1) % len(Palettes)
		case "+", "=":
			if m.ticksPerSec < 60 {
				m.ticksPerSec++
			}
		case "-", "_":
			if m.ticksPerSec > 1 {
				m.ticksPerSec--
			}
		case "?":
			m.showHelp = !m.showHelp
		}
	case TickMsg:
		if m.running || m.stepOnce {
			m.step()
			m.stepOnce = false
		}
		return m, m.tickCmd()
	}
	return m, nil
}

func (m *Model) step() {
	if m.maxTicks > 0 && m.eng.Tick() >= m.maxTicks {
		m.running = false
		return
	}
	m.eng.Advance()
	m.recordEnergy()
}

func (m *Model) recordEnergy() {
	m.energyHistory = append(m.energyHistory, m.eng.TotalEnergy())
	m.echoHistory = append(m.echoHistory, m.eng.TotalEcho())
	if len(m.energyHistory) > historyCapacity {
		m.energyHistory = m.energyHistory[1:]
	}
	if len(m.echoHistory) > historyCapacity {
		m.echoHistory = m.echoHistory[1:]
	}
}

// reset restores the engine to its initial placement.
func (m *Model) reset() {
	m.eng = m.initial.Clone()
	m.energyHistory = m.energyHistory[:0]
	m.echoHistory = m.echoHistory[:0]
	m.recordEnergy()
	m.running = true
}

// View renders the TUI interface.
func (m Model) View() string {
	heat := canvasStyle.Render(SliceHeader(m.slice, m.eng.Lattice()) + "\n\n" + RenderSlice(m.eng, m.slice, Palettes[m.palIdx]))

	var s strings.Builder
	s.WriteString(headerStyle.Render(strings.ToUpper(m.name)) + "\n")
	if m.running {
		s.WriteString(StatusRunning.Render("RUNNING") + "\n\n")
	} else {
		s.WriteString(StatusPaused.Render("PAUSED") + "\n\n")
	}

	if len(m.energyHistory) > 1 {
		chart := asciigraph.Plot(m.energyHistory, asciigraph.Height(4), asciigraph.Width(30), asciigraph.Caption("Energy"))
		s.WriteString(graphStyle.Render(chart) + "\n\n")
	}

	s.WriteString(labelStyle.Render("Tick") + valueStyle.Render(fmt.Sprintf("%d", m.eng.Tick())) + "\n")
	s.WriteString(labelStyle.Render("Energy") + valueStyle.Render(fmt.Sprintf("%.3f", m.eng.TotalEnergy())) + "\n")
	s.WriteString(labelStyle.Render("Echo") + valueStyle.Render(fmt.Sprintf("%.1f", m.eng.TotalEcho())) + "\n")
	if len(m.echoHistory) > 1 {
		s.WriteString(labelStyle.Render("") + SparklineChart(m.echoHistory, 24) + "\n")
	}
	s.WriteString(labelStyle.Render("Speed") + valueStyle.Render(fmt.Sprintf("%d tick/s", m.ticksPerSec)) + "\n")
	if m.maxTicks > 0 {
		s.WriteString(labelStyle.Render("Progress") + ProgressBar(float64(m.eng.Tick())/float64(m.maxTicks), 24) + "\n")
	}

	s.WriteString("\nPATTERNS\n")
	patterns := m.eng.Patterns()
	if len(patterns) == 0 {
		s.WriteString(labelStyle.Render("  (none)") + "\n")
	}
	for _, p := range patterns {
		a := p.Anchor()
		line := fmt.Sprintf("%s %s  (%d,%d,%d) phase %d", speciesGlyphs[p.Species()], p.ID(), a.X, a.Y, a.Z, p.Phase())
		s.WriteString("  " + valueStyle.Render(line) + "\n")
	}

	if events := m.eng.Events(); len(events) > 0 {
		s.WriteString("\nEVENTS\n")
		start := len(events) - 3
		if start < 0 {
			start = 0
		}
		for _, ev := range events[start:] {
			line := fmt.Sprintf("t%d %s at (%d,%d,%d)", ev.Tick, ev.Type, ev.At.X, ev.At.Y, ev.At.Z)
			s.WriteString("  " + eventStyle.Render(line) + "\n")
		}
	}

	s.WriteString(helpStyle.Render("\n─────────────────────\nSP:Pause S:Step R:Reset Q:Quit\n[ ]:Slice A:Axis T:Palette\n+/-:Speed ?:Help"))

	stats := statsStyle.Render(s.String())
	mainView := lipgloss.JoinHorizontal(lipgloss.Top, heat, stats)
	if m.showHelp {
		return `
╔══════════════════════════════════════╗
║          KEYBOARD SHORTCUTS          ║
╠══════════════════════════════════════╣
║  Space    - Pause/Resume ticking     ║
║  S        - Advance one tick         ║
║  R        - Reset to placement       ║
║  Q        - Quit                     ║
║  [        - Previous slice plane     ║
║  ]        - Next slice plane         ║
║  A        - Cycle slice axis         ║
║  T        - Cycle palettes           ║
║  +/-      - Tick rate                ║
║  ?        - Toggle this help         ║
╚══════════════════════════════════════╝
` + "\n\n" + mainView
	}
	return mainView
}

// Run starts the live view and blocks until quit.
func Run(eng *engine.TickEngine, name string, maxTicks int) error {
	_, err := tea.NewProgram(NewModel(eng, name, maxTicks), tea.WithAltScreen()).Run()
	return err
}
