// Package tui provides the interactive candidate picker used when a search
// returns several plausible matches for an import.
package tui

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/medialibre/mediatheque/internal/canonical"
)

const (
	defaultListWidth  = 72
	defaultListHeight = 20
)

var runProgram = func(m tea.Model) (tea.Model, error) {
	return tea.NewProgram(m).Run()
}

// SelectionAction represents the user's action in the selection UI.
type SelectionAction int

const (
	// ActionNone indicates no action was taken.
	ActionNone SelectionAction = iota
	// ActionSelected indicates the user selected a candidate.
	ActionSelected
	// ActionSkipped indicates the user skipped the selection.
	ActionSkipped
	// ActionStopped indicates the user stopped entirely.
	ActionStopped
)

// SelectionResult holds the outcome of a picker run.
type SelectionResult struct {
	Action    SelectionAction
	Selection *canonical.Record
}

type recordItem struct {
	canonical.Record
}

func (i recordItem) Title() string {
	return fmt.Sprintf("%s (%s)", i.Record.Title, recordYear(i.Record))
}

func (i recordItem) FilterValue() string {
	return i.Record.Title
}

func (i recordItem) Description() string {
	return i.Synopsis
}

func recordYear(rec canonical.Record) string {
	if len(rec.ReleaseDate) >= 4 {
		return rec.ReleaseDate[:4]
	}
	return "?"
}

type itemStyles struct {
	normal        lipgloss.Style
	selected      lipgloss.Style
	sourceStyle   lipgloss.Style
	titleStyle    lipgloss.Style
	libraryStyle  lipgloss.Style
	metadataStyle lipgloss.Style
	synopsisStyle lipgloss.Style
}

func newItemStyles() itemStyles {
	asciiBorder := lipgloss.Border{
		Top:         "-",
		Bottom:      "-",
		Left:        "|",
		Right:       "|",
		TopLeft:     "+",
		TopRight:    "+",
		BottomLeft:  "+",
		BottomRight: "+",
	}

	container := lipgloss.NewStyle().
		Border(asciiBorder).
		BorderForeground(lipgloss.Color("62")).
		Padding(0, 1).
		Foreground(lipgloss.Color("252"))

	selected := container.Copy().
		BorderForeground(lipgloss.Color("214")).
		Foreground(lipgloss.Color("230")).
		Background(lipgloss.Color("237"))

	return itemStyles{
		normal:   container,
		selected: selected,
		sourceStyle: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("110")),
		titleStyle: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("254")),
		libraryStyle: lipgloss.NewStyle().
			Foreground(lipgloss.Color("78")).
			Bold(true),
		metadataStyle: lipgloss.NewStyle().
			Foreground(lipgloss.Color("247")).
			Faint(true),
		synopsisStyle: lipgloss.NewStyle().
			Foreground(lipgloss.Color("248")),
	}
}

type recordDelegate struct {
	styles itemStyles
}

func newDelegate() recordDelegate {
	return recordDelegate{styles: newItemStyles()}
}

func (d recordDelegate) Height() int                         { return 5 }
func (d recordDelegate) Spacing() int                        { return 1 }
func (d recordDelegate) Update(tea.Msg, *list.Model) tea.Cmd { return nil }

func (d recordDelegate) Render(w io.Writer, m list.Model, idx int, item list.Item) {
	candidate, ok := item.(recordItem)
	if !ok {
		return
	}
	rec := candidate.Record

	sourceLine := d.styles.sourceStyle.Render(fmt.Sprintf("[%s]", strings.ToUpper(string(rec.SourceName))))
	if rec.InLibrary {
		sourceLine = lipgloss.JoinHorizontal(lipgloss.Left, sourceLine, " ",
			d.styles.libraryStyle.Render("IN LIBRARY"))
	}
	titleLine := d.styles.titleStyle.Render(fmt.Sprintf("%s (%s)", rec.Title, recordYear(rec)))
	metadataLine := d.styles.metadataStyle.Render(formatMetadata(rec, m.Width()-4))
	synopsisLine := d.styles.synopsisStyle.Render(truncate(rec.Synopsis, m.Width()-4))

	content := lipgloss.JoinVertical(lipgloss.Left, sourceLine, titleLine, metadataLine, synopsisLine)

	container := d.styles.normal
	if idx == m.Index() {
		container = d.styles.selected
	}
	_, _ = fmt.Fprint(w, container.Render(content))
}

type model struct {
	list        list.Model
	searchTitle string
	result      SelectionResult
}

func newModel(title string, items []recordItem) *model {
	listItems := make([]list.Item, len(items))
	for i, item := range items {
		listItems[i] = item
	}

	delegate := newDelegate()
	l := list.New(listItems, delegate, defaultListWidth, defaultListHeight)
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(false)
	l.SetShowHelp(false)
	l.SetShowTitle(false)
	l.SetShowPagination(false)
	l.DisableQuitKeybindings()
	l.Styles.NoItems = lipgloss.NewStyle()

	return &model{
		list:        l,
		searchTitle: title,
		result:      SelectionResult{Action: ActionNone},
	}
}

func (m *model) Init() tea.Cmd { return nil }

func (m *model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "enter":
			if selected, ok := m.list.SelectedItem().(recordItem); ok {
				rec := selected.Record
				m.result = SelectionResult{Action: ActionSelected, Selection: &rec}
				return m, tea.Quit
			}
		case "s", "esc":
			m.result = SelectionResult{Action: ActionSkipped}
			return m, tea.Quit
		case "ctrl+c", "q":
			m.result = SelectionResult{Action: ActionStopped}
			return m, tea.Quit
		}
	case tea.WindowSizeMsg:
		width := clamp(defaultListWidth, msg.Width-4, 40)
		height := clamp(defaultListHeight, msg.Height-6, 5)
		m.list.SetSize(width, height)
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m *model) View() string {
	header := headerStyle.Render(fmt.Sprintf("Multiple candidates found for: %s", m.searchTitle))
	listView := m.list.View()
	help := helpStyle.Render("Up/Down navigate | Enter select | s skip | q stop")
	return lipgloss.JoinVertical(lipgloss.Left, header, listView, help)
}

var (
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("214")).
			MarginBottom(1)

	helpStyle = lipgloss.NewStyle().
			MarginTop(1).
			Foreground(lipgloss.Color("244"))
)

// Select presents the candidate picker and blocks until a choice is made.
func Select(title string, candidates []canonical.Record) (SelectionResult, error) {
	if len(candidates) == 0 {
		return SelectionResult{Action: ActionSkipped}, nil
	}

	items := make([]recordItem, len(candidates))
	for i, rec := range candidates {
		items[i] = recordItem{Record: rec}
	}
	m := newModel(title, items)
	finalModel, err := runProgram(m)
	if err != nil {
		return SelectionResult{}, err
	}

	if typed, ok := finalModel.(*model); ok {
		return typed.result, nil
	}
	return SelectionResult{}, fmt.Errorf("unexpected program result")
}

func truncate(value string, width int) string {
	value = strings.Join(strings.Fields(value), " ")
	if width <= 0 || len(value) <= width {
		return value
	}
	if width <= 3 {
		return value[:width]
	}
	return value[:width-3] + "..."
}

// formatMetadata builds the one-line summary under the title: authors or
// publisher, ISBN and community score, whichever the record carries.
func formatMetadata(rec canonical.Record, availableWidth int) string {
	var parts []string
	if len(rec.Authors) > 0 {
		parts = append(parts, strings.Join(rec.Authors, ", "))
	} else if rec.Publisher != "" {
		parts = append(parts, rec.Publisher)
	}
	if isbn := rec.BestISBN(); isbn != "" {
		parts = append(parts, "ISBN "+isbn)
	}
	if rec.CommunityScore > 0 {
		parts = append(parts, fmt.Sprintf("%.1f/10", rec.CommunityScore))
	}
	return truncate(strings.Join(parts, " | "), availableWidth)
}

func clamp(preferred, max, min int) int {
	if max < min {
		return min
	}
	if preferred > max {
		return max
	}
	if preferred < min {
		return min
	}
	return preferred
}
