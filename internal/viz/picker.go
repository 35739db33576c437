package viz

import (
	"fmt"
	"sort"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/san-kum/etmsim/internal/config"
	"github.com/san-kum/etmsim/internal/engine"
	"github.com/san-kum/etmsim/internal/trial"
)

var presetInfo = map[string]string{
	"photon/flat":          "uniform echo, no drift",
	"photon/gradient":      "ramp-driven straight run",
	"photon/deflection":    "transverse ramp bends a launch",
	"charge/repulsion":     "like charges back away",
	"charge/attraction":    "electron falls toward a proton",
	"charge/annihilation":  "pair collapse into a photon",
	"hydrogen/ground":      "proton with a bound electron",
	"hydrogen/absorption":  "photon capture by an electron",
	"neutrino/oscillation": "flavor cycling over long runs",
	"stability/scales":     "identity hold at scales 1-3",
}

const (
	stateMenu = iota
	stateSim
)

type picker struct {
	state   int
	cursor  int
	entries []string
	live    Model
}

// NewPicker lists every preset and launches the live view on selection.
func NewPicker() *picker {
	var entries []string
	for family := range config.Presets {
		for _, name := range config.ListPresets(family) {
			entries = append(entries, family+"/"+name)
		}
	}
	sort.Strings(entries)
	return &picker{state: stateMenu, entries: entries}
}

func (p picker) Init() tea.Cmd { return nil }

func (p picker) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if p.state == stateSim {
		if key, ok := msg.(tea.KeyMsg); ok && key.String() == "esc" {
			p.state = stateMenu
			return p, nil
		}
		next, cmd := p.live.Update(msg)
		p.live = next.(Model)
		return p, cmd
	}

	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.String() {
		case "q", "ctrl+c":
			return p, tea.Quit
		case "up", "k":
			if p.cursor > 0 {
				p.cursor--
			}
		case "down", "j":
			if p.cursor < len(p.entries)-1 {
				p.cursor++
			}
		case "enter", " ":
			return p.start()
		}
	}
	return p, nil
}

func (p picker) start() (tea.Model, tea.Cmd) {
	parts := strings.SplitN(p.entries[p.cursor], "/", 2)
	cfg := config.GetPreset(parts[0], parts[1])
	if cfg == nil {
		return p, nil
	}
	setup, err := trial.BuildSetup(cfg)
	if err != nil {
		return p, nil
	}
	eng, err := engine.New(setup)
	if err != nil {
		return p, nil
	}
	p.live = NewModel(eng, cfg.Name, 0)
	p.state = stateSim
	return p, p.live.Init()
}

func (p picker) View() string {
	if p.state == stateSim {
		return p.live.View()
	}

	var b strings.Builder
	h := lipgloss.NewStyle().Foreground(lipgloss.Color("#00cccc")).Bold(true)
	sub := lipgloss.NewStyle().Foreground(lipgloss.Color("#666688"))
	sel := lipgloss.NewStyle().Foreground(lipgloss.Color("#00ffff")).Bold(true)
	selName := lipgloss.NewStyle().Foreground(lipgloss.Color("#ffffff")).Bold(true)
	selDesc := lipgloss.NewStyle().Foreground(lipgloss.Color("#ff88ff")).Render
	dimName := lipgloss.NewStyle().Foreground(lipgloss.Color("#555566"))
	dimDesc := lipgloss.NewStyle().Foreground(lipgloss.Color("#444455"))

	b.WriteString("\n\n    " + h.Render("ETMSIM") + "\n    " + sub.Render("lattice timing trials") + "\n    " + Separator(25) + "\n\n")
	for i, entry := range p.entries {
		desc := presetInfo[entry]
		if i == p.cursor {
			b.WriteString(fmt.Sprintf("    %s %s  %s\n", sel.Render("▸"), selName.Render(fmt.Sprintf("%-22s", entry)), selDesc(desc)))
		} else {
			b.WriteString(fmt.Sprintf("    %s  %s\n", dimName.Render(fmt.Sprintf("  %-22s", entry)), dimDesc.Render(desc)))
		}
	}
	key := lipgloss.NewStyle().Foreground(lipgloss.Color("#00aaaa")).Bold(true)
	b.WriteString("\n    " + key.Render("j/k") + sub.Render(" navigate  ") + key.Render("enter") + sub.Render(" select  ") + key.Render("esc") + sub.Render(" back  ") + key.Render("q") + sub.Render(" quit") + "\n")
	return b.String()
}

// RunPicker starts the preset browser and blocks until quit.
func RunPicker() error {
	_, err := tea.NewProgram(NewPicker(), tea.WithAltScreen()).Run()
	return err
}
