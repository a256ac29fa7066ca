// Package tui implements the interactive country browser.
//
// The model filters the directory on every keystroke and resolves the
// neighbours of the selected country in the background.
package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/leapstack-labs/atlas/internal/borders"
	"github.com/leapstack-labs/atlas/internal/directory"
	"github.com/leapstack-labs/atlas/internal/ui/components"
	"github.com/leapstack-labs/atlas/pkg/core"
)

const (
	defaultHeight = 20
	// chrome is the number of lines around the table: input, count and help.
	chrome = 6
)

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	mutedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	errorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	labelStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("8")).Width(14)
)

type view int

const (
	listView view = iota
	detailView
)

// bordersMsg carries the outcome of a neighbour resolution.
type bordersMsg struct {
	code       core.Code
	neighbours []core.Country
	err        error
}

// Model is the bubbletea model of the browser.
type Model struct {
	ctx      context.Context
	dir      *directory.Directory
	resolver *borders.Resolver

	input    textinput.Model
	table    table.Model
	filtered []core.Country

	view       view
	selected   core.Country
	neighbours []core.Country
	loading    bool
	err        error
}

// New creates a browser over dir. Neighbours are resolved through resolver.
func New(ctx context.Context, dir *directory.Directory, resolver *borders.Resolver) Model {
	ti := textinput.New()
	ti.Placeholder = components.SearchPlaceholder
	ti.Prompt = "/ "
	ti.CharLimit = 64
	ti.Focus()

	t := table.New(
		table.WithColumns([]table.Column{
			{Title: "Code", Width: 5},
			{Title: "Name", Width: 32},
			{Title: "Region", Width: 12},
			{Title: "Population", Width: 14},
			{Title: "Area (km²)", Width: 12},
			{Title: "Gini", Width: 8},
		}),
		table.WithFocused(true),
		table.WithHeight(defaultHeight-chrome),
	)

	m := Model{
		ctx:      ctx,
		dir:      dir,
		resolver: resolver,
		input:    ti,
		table:    t,
	}
	m.applyFilter()
	return m
}

// Keyword returns the current filter keyword.
func (m Model) Keyword() string {
	return m.input.Value()
}

// Filtered returns the countries matching the current keyword.
func (m Model) Filtered() []core.Country {
	return m.filtered
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.table.SetHeight(max(msg.Height-chrome, 3))
		return m, nil

	case bordersMsg:
		if msg.code != m.selected.Alpha3Code {
			return m, nil
		}
		m.loading = false
		m.neighbours, m.err = msg.neighbours, msg.err
		return m, nil

	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			return m, tea.Quit
		}
		if m.view == detailView {
			return m.updateDetail(msg)
		}
		return m.updateList(msg)
	}
	return m, nil
}

func (m Model) updateList(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		return m, tea.Quit
	case tea.KeyUp:
		m.table.MoveUp(1)
		return m, nil
	case tea.KeyDown:
		m.table.MoveDown(1)
		return m, nil
	case tea.KeyPgUp:
		m.table.MoveUp(m.table.Height())
		return m, nil
	case tea.KeyPgDown:
		m.table.MoveDown(m.table.Height())
		return m, nil
	case tea.KeyEnter:
		return m.openDetail()
	}

	var cmd tea.Cmd
	before := m.input.Value()
	m.input, cmd = m.input.Update(msg)
	if m.input.Value() != before {
		m.applyFilter()
	}
	return m, cmd
}

func (m Model) updateDetail(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc, tea.KeyBackspace, tea.KeyLeft:
		m.view = listView
		return m, nil
	}
	if msg.String() == "q" {
		return m, tea.Quit
	}
	return m, nil
}

// applyFilter re-runs the filter for the current keyword.
func (m *Model) applyFilter() {
	m.filtered = m.dir.Search(m.input.Value())
	rows := make([]table.Row, len(m.filtered))
	for i, c := range m.filtered {
		rows[i] = table.Row{
			string(c.Alpha3Code),
			c.Name,
			c.Region,
			components.FormatInt(c.Population),
			components.FormatArea(c.Area),
			components.FormatGini(c.Gini),
		}
	}
	m.table.SetRows(rows)
	m.table.SetCursor(0)
}

func (m Model) openDetail() (tea.Model, tea.Cmd) {
	i := m.table.Cursor()
	if i < 0 || i >= len(m.filtered) {
		return m, nil
	}
	m.selected = m.filtered[i]
	m.view = detailView
	m.neighbours = nil
	m.err = nil
	m.loading = len(m.selected.Borders) > 0
	if !m.loading {
		return m, nil
	}
	return m, m.resolveBorders(m.selected)
}

func (m Model) resolveBorders(c core.Country) tea.Cmd {
	ctx, resolver := m.ctx, m.resolver
	return func() tea.Msg {
		neighbours, err := resolver.Resolve(ctx, c.Borders)
		return bordersMsg{code: c.Alpha3Code, neighbours: neighbours, err: err}
	}
}

// View implements tea.Model.
func (m Model) View() string {
	if m.view == detailView {
		return m.detailView()
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render(fmt.Sprintf("Found %d countries", m.dir.Len())))
	b.WriteString("\n")
	b.WriteString(m.input.View())
	b.WriteString("\n\n")
	if len(m.filtered) == 0 {
		b.WriteString(mutedStyle.Render(fmt.Sprintf("No countries match %q", m.input.Value())))
		b.WriteString("\n")
	} else {
		b.WriteString(m.table.View())
		b.WriteString("\n")
	}
	b.WriteString(mutedStyle.Render(fmt.Sprintf("%d matching · ↑/↓ move · enter details · esc quit", len(m.filtered))))
	return b.String()
}

func (m Model) detailView() string {
	c := m.selected
	var b strings.Builder

	b.WriteString(titleStyle.Render(fmt.Sprintf("%s (%s)", c.Name, c.Alpha3Code)))
	b.WriteString("\n")
	b.WriteString(mutedStyle.Render(c.Region))
	b.WriteString("\n\n")

	rows := [][2]string{
		{"Population", components.FormatInt(c.Population)},
		{"Area", components.FormatArea(c.Area)},
		{"Capital", c.Capital},
		{"Subregion", c.Subregion},
		{"Languages", components.JoinNames(c.LanguageNames())},
		{"Currencies", components.JoinNames(c.CurrencyNames())},
		{"Native name", c.NativeName},
		{"Gini", components.FormatGini(c.Gini)},
	}
	for _, row := range rows {
		b.WriteString(labelStyle.Render(row[0]))
		b.WriteString(row[1])
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(titleStyle.Render("Neighbouring Countries"))
	b.WriteString("\n")
	switch {
	case m.loading:
		b.WriteString(mutedStyle.Render("resolving…"))
	case m.err != nil:
		b.WriteString(errorStyle.Render(m.err.Error()))
	case len(c.Borders) == 0:
		b.WriteString(mutedStyle.Render("none"))
	default:
		names := make([]string, len(m.neighbours))
		for i, n := range m.neighbours {
			names[i] = fmt.Sprintf("%s %s", n.Alpha3Code, n.Name)
		}
		b.WriteString(strings.Join(names, "\n"))
	}
	b.WriteString("\n\n")
	b.WriteString(mutedStyle.Render("esc back · q quit"))
	return b.String()
}

// Run starts the browser on the terminal and blocks until it exits.
func Run(ctx context.Context, dir *directory.Directory, resolver *borders.Resolver, opts ...tea.ProgramOption) error {
	opts = append([]tea.ProgramOption{tea.WithAltScreen(), tea.WithContext(ctx)}, opts...)
	p := tea.NewProgram(New(ctx, dir, resolver), opts...)
	_, err := p.Run()
	return err
}
