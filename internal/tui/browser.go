package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/charlesvestal/move-anything-nam/internal/catalog"
	"github.com/charlesvestal/move-anything-nam/internal/fx"
)

var (
	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFFDF5")).
			Background(lipgloss.Color("#25A065")).
			Padding(0, 1).
			Bold(true)

	infoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFFDF5"))

	highlightStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#25A065")).
			Bold(true)
)

// Tab selects which catalog the browser shows.
type Tab int

const (
	ModelsTab Tab = iota
	CabsTab
)

type keyMap struct {
	Up     key.Binding
	Down   key.Binding
	Select key.Binding
	Tab    key.Binding
	Bypass key.Binding
	Quit   key.Binding
}

var keys = keyMap{
	Up:     key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
	Down:   key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
	Select: key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "select")),
	Tab:    key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "models/cabs")),
	Bypass: key.NewBinding(key.WithKeys("b"), key.WithHelp("b", "cab bypass")),
	Quit:   key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
}

// BrowserModel is the Bubble Tea model for browsing and selecting amp
// models and cabinets on a running instance.
type BrowserModel struct {
	inst      *fx.Instance
	modelsDir string
	cabsDir   string

	tab     Tab
	cursor  int
	entries []catalog.Entry
}

// NewBrowser builds the browser around a running instance.
func NewBrowser(inst *fx.Instance, modelsDir, cabsDir string) BrowserModel {
	m := BrowserModel{
		inst:      inst,
		modelsDir: modelsDir,
		cabsDir:   cabsDir,
		tab:       ModelsTab,
	}
	m.rescan()
	return m
}

// rescan refreshes the visible catalog, mirroring the host UI's
// scan-on-every-query behavior.
func (m *BrowserModel) rescan() {
	if m.tab == ModelsTab {
		m.entries = catalog.ScanModels(m.modelsDir)
	} else {
		m.entries = catalog.ScanCabs(m.cabsDir)
	}
	if m.cursor >= len(m.entries) {
		m.cursor = 0
	}
}

func (m BrowserModel) Init() tea.Cmd {
	return nil
}

func (m BrowserModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, keys.Up):
			if m.cursor > 0 {
				m.cursor--
			}
		case key.Matches(msg, keys.Down):
			if m.cursor < len(m.entries)-1 {
				m.cursor++
			}
		case key.Matches(msg, keys.Tab):
			if m.tab == ModelsTab {
				m.tab = CabsTab
			} else {
				m.tab = ModelsTab
			}
			m.cursor = 0
			m.rescan()
		case key.Matches(msg, keys.Bypass):
			if cur, _ := m.inst.GetParam("cab_bypass"); cur == "1" {
				m.inst.SetParam("cab_bypass", "0")
			} else {
				m.inst.SetParam("cab_bypass", "1")
			}
		case key.Matches(msg, keys.Select):
			if m.cursor < len(m.entries) {
				if m.tab == ModelsTab {
					m.inst.SetParam("model_index", fmt.Sprintf("%d", m.cursor))
				} else {
					m.inst.SetParam("cab_index", fmt.Sprintf("%d", m.cursor))
				}
			}
		}
	}
	return m, nil
}

func (m BrowserModel) View() string {
	var b strings.Builder

	title := "Models"
	if m.tab == CabsTab {
		title = "Cabinets"
	}
	b.WriteString(titleStyle.Render("NAM — "+title) + "\n\n")

	if len(m.entries) == 0 {
		b.WriteString(infoStyle.Render("  (no files found)") + "\n")
	}
	for i, e := range m.entries {
		line := "  " + e.Name
		if i == m.cursor {
			line = highlightStyle.Render("> " + e.Name)
		}
		b.WriteString(line + "\n")
	}

	modelName, _ := m.inst.GetParam("model_name")
	cabName, _ := m.inst.GetParam("cab_name")
	bypass, _ := m.inst.GetParam("cab_bypass")
	loading, _ := m.inst.GetParam("loading")

	b.WriteString("\n")
	b.WriteString(infoStyle.Render(fmt.Sprintf("model: %s  cab: %s  bypass: %s", modelName, cabName, bypass)))
	if loading == "1" {
		b.WriteString("  " + highlightStyle.Render("loading…"))
	}
	b.WriteString("\n\n")
	b.WriteString(infoStyle.Render("↑/↓ move · enter select · tab models/cabs · b bypass · q quit"))
	b.WriteString("\n")

	return b.String()
}
