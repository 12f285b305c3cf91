package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/wippyai/classload/classpath"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	nameStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#98FB98"))

	excludedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#87CEEB"))

	selectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4"))

	headingStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#90EE90"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666"))
)

// pageSize is the number of components listed at once.
const pageSize = 20

type interactiveModel struct {
	err      error
	src      source
	index    *classpath.Index
	detail   *detailInfo
	title    string
	filter   textinput.Model
	visible  []string
	cfg      Config
	selected int
	state    modelState
}

type detailInfo struct {
	err        error
	path       string
	deps       []string
	dependents []string
	order      []string
}

type modelState int

const (
	stateBrowse modelState = iota
	stateDetail
)

func newInteractiveModel(title string, src source, cfg Config) *interactiveModel {
	ti := textinput.New()
	ti.Placeholder = "filter"
	ti.Prompt = "/ "
	ti.Width = 40
	ti.Focus()
	return &interactiveModel{
		src:    src,
		cfg:    cfg,
		title:  title,
		filter: ti,
		state:  stateBrowse,
	}
}

type indexedMsg struct {
	err   error
	index *classpath.Index
}

type detailMsg struct {
	detail *detailInfo
}

func (m *interactiveModel) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.buildIndex)
}

func (m *interactiveModel) buildIndex() tea.Msg {
	paths, err := selectPaths(m.src, "")
	if err != nil {
		return indexedMsg{err: err}
	}
	idx, err := classpath.BuildIndex(context.Background(), m.src, paths, m.cfg.Workers)
	return indexedMsg{index: idx, err: err}
}

func (m *interactiveModel) loadDetail(path string) tea.Cmd {
	return func() tea.Msg {
		d := &detailInfo{path: path}
		d.deps, _ = m.index.Dependencies(path)
		d.dependents = m.index.Dependents(classpath.PathToName(path))
		d.order, d.err = loadOrder(context.Background(), m.src, m.cfg, []string{path})
		return detailMsg{detail: d}
	}
}

func (m *interactiveModel) applyFilter() {
	if m.index == nil {
		return
	}
	q := strings.ToLower(m.filter.Value())
	m.visible = m.visible[:0]
	for _, p := range m.index.Paths() {
		if q == "" || strings.Contains(strings.ToLower(classpath.PathToName(p)), q) {
			m.visible = append(m.visible, p)
		}
	}
	if m.selected >= len(m.visible) {
		m.selected = max(len(m.visible)-1, 0)
	}
}

func (m *interactiveModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			return m, tea.Quit

		case "q":
			if m.state == stateDetail || m.err != nil {
				return m, tea.Quit
			}

		case "up":
			if m.state == stateBrowse && m.selected > 0 {
				m.selected--
			}
			return m, nil

		case "down":
			if m.state == stateBrowse && m.selected < len(m.visible)-1 {
				m.selected++
			}
			return m, nil

		case "enter":
			switch m.state {
			case stateBrowse:
				if len(m.visible) > 0 {
					m.state = stateDetail
					m.detail = nil
					return m, m.loadDetail(m.visible[m.selected])
				}
			case stateDetail:
				m.state = stateBrowse
			}
			return m, nil

		case "esc":
			if m.state == stateDetail {
				m.state = stateBrowse
				return m, nil
			}
		}

	case indexedMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.index = msg.index
		m.applyFilter()
		return m, nil

	case detailMsg:
		m.detail = msg.detail
		return m, nil
	}

	if m.state == stateBrowse {
		var cmd tea.Cmd
		m.filter, cmd = m.filter.Update(msg)
		m.applyFilter()
		return m, cmd
	}
	return m, nil
}

func (m *interactiveModel) View() string {
	if m.err != nil {
		return errorStyle.Render(fmt.Sprintf("Error: %v\n\nPress q to quit.", m.err))
	}
	if m.index == nil {
		return "Scanning class path..."
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render("Class Dependencies"))
	b.WriteString(" ")
	b.WriteString(m.title)
	b.WriteString("\n\n")

	switch m.state {
	case stateBrowse:
		b.WriteString(m.filter.View())
		fmt.Fprintf(&b, "  %d/%d\n\n", len(m.visible), m.index.Len())

		start := 0
		if m.selected >= pageSize {
			start = m.selected - pageSize + 1
		}
		end := min(start+pageSize, len(m.visible))
		for i := start; i < end; i++ {
			line := classpath.PathToName(m.visible[i])
			if i == m.selected {
				b.WriteString(selectedStyle.Render("> " + line))
			} else {
				b.WriteString("  " + nameStyle.Render(line))
			}
			b.WriteString("\n")
		}
		b.WriteString("\n")
		b.WriteString(helpStyle.Render("type to filter • ↑/↓ select • enter details • ctrl+c quit"))

	case stateDetail:
		if m.detail == nil {
			b.WriteString("Loading...")
			break
		}
		d := m.detail
		b.WriteString(nameStyle.Render(classpath.PathToName(d.path)))
		b.WriteString("\n\n")
		m.writeList(&b, "Dependencies", d.deps)
		m.writeList(&b, "Dependents", d.dependents)
		m.writeList(&b, "Load order", d.order)
		if d.err != nil {
			b.WriteString(errorStyle.Render(fmt.Sprintf("Load failed: %v", d.err)))
			b.WriteString("\n\n")
		}
		b.WriteString(helpStyle.Render("enter/esc back • q quit"))
	}

	return b.String()
}

func (m *interactiveModel) writeList(b *strings.Builder, heading string, names []string) {
	fmt.Fprintf(b, "%s (%d)\n", headingStyle.Render(heading), len(names))
	for _, n := range names {
		if m.cfg.excluded(n) {
			b.WriteString("  " + excludedStyle.Render(n) + "\n")
		} else {
			b.WriteString("  " + n + "\n")
		}
	}
	b.WriteString("\n")
}

func runInteractive(title string, src source, cfg Config) error {
	p := tea.NewProgram(newInteractiveModel(title, src, cfg), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
