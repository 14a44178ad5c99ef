package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/gerunddev/keepbridge/internal/diff"
	"github.com/gerunddev/keepbridge/internal/export"
	"github.com/gerunddev/keepbridge/internal/styles"
)

var statusIcons = map[string]string{
	export.StatusNew:       "+",
	export.StatusChanged:   "~",
	export.StatusUnchanged: "✓",
	export.StatusSkipped:   "-",
	export.StatusMalformed: "✗",
	export.StatusFailed:    "✗",
}

// BrowseModel lists what a conversion would do to each note and shows the
// pending diff of the selected one
type BrowseModel struct {
	table       table.Model
	viewport    viewport.Model
	notes       []export.NoteReport
	showingDiff bool
	selected    *export.NoteReport
}

// NewBrowseModel creates a browser over the given note reports
func NewBrowseModel(notes []export.NoteReport) BrowseModel {
	columns := []table.Column{
		{Title: "Note", Width: 50},
		{Title: "Status", Width: 14},
		{Title: "Source", Width: 40},
	}

	t := table.New(
		table.WithColumns(columns),
		table.WithRows(Rows(notes)),
		table.WithFocused(true),
		table.WithHeight(20),
	)

	ts := table.DefaultStyles()
	ts.Header = ts.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color(styles.Border)).
		BorderBottom(true).
		Bold(false)
	ts.Selected = ts.Selected.
		Foreground(lipgloss.Color("229")).
		Background(lipgloss.Color("57")).
		Bold(false)
	t.SetStyles(ts)

	vp := viewport.New(100, 20)
	vp.Style = styles.BoxStyle

	return BrowseModel{
		table:    t,
		viewport: vp,
		notes:    notes,
	}
}

// Rows builds one table row per note report
func Rows(notes []export.NoteReport) []table.Row {
	rows := make([]table.Row, 0, len(notes))
	for _, n := range notes {
		name := n.Path
		if name == "" {
			name = "(" + n.Reason + ")"
		}
		rows = append(rows, table.Row{
			name,
			fmt.Sprintf("%s %s", statusIcons[n.Status], n.Status),
			n.SourceID,
		})
	}
	return rows
}

func (m BrowseModel) Init() tea.Cmd {
	return nil
}

func (m BrowseModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.table.SetHeight(max(msg.Height-10, 3))
		m.viewport.Width = msg.Width - 4
		m.viewport.Height = max(msg.Height-6, 3)

	case tea.KeyMsg:
		if m.showingDiff {
			switch msg.String() {
			case "ctrl+c":
				return m, tea.Quit
			case "q", "esc":
				m.showingDiff = false
				return m, nil
			default:
				m.viewport, cmd = m.viewport.Update(msg)
				return m, cmd
			}
		}

		switch msg.String() {
		case "ctrl+c", "q":
			return m, tea.Quit
		case "enter", "d":
			idx := m.table.Cursor()
			if idx >= 0 && idx < len(m.notes) {
				m.selected = &m.notes[idx]
				m.showingDiff = true
				m.viewport.SetContent(detail(*m.selected))
				m.viewport.GotoTop()
			}
			return m, nil
		default:
			m.table, cmd = m.table.Update(msg)
			return m, cmd
		}
	}

	return m, nil
}

// detail is the viewport content for one note
func detail(n export.NoteReport) string {
	switch {
	case n.Diff != "":
		return diff.Render(n.Diff)
	case n.Reason != "":
		return styles.WarningStyle.Render(n.Reason)
	case n.Status == export.StatusUnchanged:
		return styles.DimStyle.Render("No changes")
	}
	return styles.DimStyle.Render("Nothing to show")
}

func (m BrowseModel) View() string {
	var b strings.Builder

	b.WriteString(styles.TitleStyle.Render("keepbridge status"))
	b.WriteString("\n\n")

	if m.showingDiff && m.selected != nil {
		b.WriteString(styles.HelpStyle.Render(fmt.Sprintf("Pending changes: %s", m.selected.Path)))
		b.WriteString("\n\n")
		b.WriteString(m.viewport.View())
		b.WriteString("\n\n")
		b.WriteString(styles.HelpStyle.Render("↑/k up • ↓/j down • esc/q back"))
		b.WriteString("\n")
		return b.String()
	}

	b.WriteString(styles.HelpStyle.Render(Counts(m.notes)))
	b.WriteString("\n\n")
	b.WriteString(m.table.View())
	b.WriteString("\n\n")
	b.WriteString(styles.HelpStyle.Render("↑/k up • ↓/j down • enter/d diff • q quit"))
	b.WriteString("\n")

	return b.String()
}

// Counts summarizes note reports by status, e.g. "2 new, 1 unchanged"
func Counts(notes []export.NoteReport) string {
	order := []string{
		export.StatusNew,
		export.StatusChanged,
		export.StatusUnchanged,
		export.StatusSkipped,
		export.StatusMalformed,
		export.StatusFailed,
	}
	counts := make(map[string]int)
	for _, n := range notes {
		counts[n.Status]++
	}

	var parts []string
	for _, status := range order {
		if c := counts[status]; c > 0 {
			parts = append(parts, fmt.Sprintf("%d %s", c, status))
		}
	}
	if len(parts) == 0 {
		return "No notes found"
	}
	return strings.Join(parts, ", ")
}
