package results

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/missionpulse/missionpulse/internal/tui/theme"
	"github.com/spf13/afero"
)

// Table is a rendered report ready for display and export.
type Table struct {
	Name    string // short name used in export filenames
	Title   string
	Columns []string
	Rows    [][]string
	Nulls   [][]bool // optional; true where the source value was NULL
	Count   *int64   // total matching rows, when known
}

// IsNull reports whether cell (row, col) held no value. Cells past the end of
// a short row count as null.
func (t *Table) IsNull(row, col int) bool {
	if row < 0 || row >= len(t.Rows) || col >= len(t.Rows[row]) {
		return true
	}
	if row < len(t.Nulls) && col < len(t.Nulls[row]) {
		return t.Nulls[row][col]
	}
	return false
}

// Model is the report results component.
type Model struct {
	table     *Table
	err       error
	width     int
	height    int
	focused   bool
	scrollY   int
	cursorY   int
	cursorX   int
	loading   bool
	colWidths []int

	fs        afero.Fs
	exportDir string
	now       func() time.Time
}

// New creates a new results model exporting into dir on fs.
func New(fs afero.Fs, dir string) Model {
	return Model{fs: fs, exportDir: dir, now: time.Now}
}

// SetSize updates the component dimensions.
func (m *Model) SetSize(w, h int) {
	m.width = w
	m.height = h
}

// SetFocused sets the focus state.
func (m *Model) SetFocused(f bool) {
	m.focused = f
}

// Focused returns whether the results pane has focus.
func (m Model) Focused() bool {
	return m.focused
}

// SetLoading sets the loading state.
func (m *Model) SetLoading(l bool) {
	m.loading = l
}

// SetTable sets the report to display.
func (m *Model) SetTable(t *Table) {
	m.table = t
	m.err = nil
	m.scrollY = 0
	m.cursorY = 0
	m.cursorX = 0
	m.loading = false
	m.calculateColumnWidths()
}

// Table returns the report on display, if any.
func (m Model) Table() *Table {
	return m.table
}

// SetError sets an error to display.
func (m *Model) SetError(err error) {
	m.err = err
	m.table = nil
	m.scrollY = 0
	m.loading = false
}

// Cursor returns the selected row index.
func (m Model) Cursor() int {
	return m.cursorY
}

func (m *Model) calculateColumnWidths() {
	if m.table == nil || len(m.table.Columns) == 0 {
		m.colWidths = nil
		return
	}

	m.colWidths = make([]int, len(m.table.Columns))

	// Use display width (not byte length) for accurate measurement
	for i, col := range m.table.Columns {
		m.colWidths[i] = lipgloss.Width(col)
	}

	for _, row := range m.table.Rows {
		for i, cell := range row {
			w := lipgloss.Width(cell)
			if i < len(m.colWidths) && w > m.colWidths[i] {
				m.colWidths[i] = w
			}
		}
	}

	// Enforce minimum of 1 and cap at 40
	for i := range m.colWidths {
		if m.colWidths[i] < 1 {
			m.colWidths[i] = 1
		}
		if m.colWidths[i] > 40 {
			m.colWidths[i] = 40
		}
	}
}

// Init returns the initial command (none).
func (m Model) Init() tea.Cmd {
	return nil
}

// Update handles messages for the results pane.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if !m.focused {
		return m, nil
	}

	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	rows := m.rowCount()
	switch key.String() {
	case "up", "k":
		if m.cursorY > 0 {
			m.cursorY--
		}
	case "down", "j":
		if m.cursorY < rows-1 {
			m.cursorY++
		}
	case "left", "h":
		if m.cursorX > 0 {
			m.cursorX--
		}
	case "right", "l":
		if m.table != nil && m.cursorX < len(m.table.Columns)-1 {
			m.cursorX++
		}
	case "pgup":
		m.cursorY -= m.pageSize()
		if m.cursorY < 0 {
			m.cursorY = 0
		}
	case "pgdown":
		m.cursorY += m.pageSize()
		if m.cursorY > rows-1 {
			m.cursorY = rows - 1
		}
		if m.cursorY < 0 {
			m.cursorY = 0
		}
	case "enter":
		if m.table != nil && rows > 0 {
			name, row := m.table.Name, m.cursorY
			return m, func() tea.Msg { return RowSelectedMsg{Table: name, Row: row} }
		}
	case "y":
		return m, m.copyCellCmd()
	case "Y":
		return m, m.copyRowCSVCmd()
	case "J":
		return m, m.copyRowJSONCmd()
	case "T":
		return m, m.copyRowTextCmd()
	case "e":
		return m, m.exportCSVCmd()
	case "E":
		return m, m.exportJSONCmd()
	}

	m.keepCursorVisible()
	return m, nil
}

func (m Model) rowCount() int {
	if m.table == nil {
		return 0
	}
	return len(m.table.Rows)
}

func (m Model) pageSize() int {
	n := m.visibleRows() / 2
	if n < 1 {
		n = 1
	}
	return n
}

func (m Model) visibleRows() int {
	n := m.height - 4
	if n < 1 {
		n = 1
	}
	return n
}

func (m *Model) keepCursorVisible() {
	if m.cursorY < m.scrollY {
		m.scrollY = m.cursorY
	}
	if v := m.visibleRows(); m.cursorY >= m.scrollY+v {
		m.scrollY = m.cursorY - v + 1
	}
}

// View renders the results pane.
func (m Model) View() string {
	titleStyle := lipgloss.NewStyle().
		Foreground(theme.ColorPrimary).
		Bold(true).
		Padding(0, 1)

	title := "Report"
	if m.table != nil && m.table.Title != "" {
		title = m.table.Title
	}

	if m.loading {
		return titleStyle.Render(title) + "\n" + theme.StyleMuted.Render("  Loading...")
	}

	if m.err != nil {
		return titleStyle.Render(title) + "\n" +
			theme.StyleError.Render("  Error: "+m.err.Error())
	}

	if m.table == nil {
		return titleStyle.Render(title) + "\n" +
			theme.StyleMuted.Render("  Select a report to see results")
	}

	stats := fmt.Sprintf("%d row(s)", len(m.table.Rows))
	if m.table.Count != nil && *m.table.Count != int64(len(m.table.Rows)) {
		stats = fmt.Sprintf("%d of %d row(s)", len(m.table.Rows), *m.table.Count)
	}
	header := titleStyle.Render(title) + "  " + theme.StyleMuted.Render(stats)

	if len(m.table.Columns) == 0 {
		return header
	}

	var b strings.Builder
	b.WriteString(header)
	b.WriteString("\n")
	b.WriteString(m.renderRow(m.table.Columns, -1))
	b.WriteString("\n")
	b.WriteString(m.renderSeparator())

	if len(m.table.Rows) == 0 {
		b.WriteString("\n")
		b.WriteString(theme.StyleMuted.Render("  No rows"))
		return b.String()
	}

	end := m.scrollY + m.visibleRows()
	for i := m.scrollY; i < len(m.table.Rows) && i < end; i++ {
		b.WriteString("\n")
		b.WriteString(m.renderRow(m.table.Rows[i], i))
	}

	return b.String()
}

// renderRow renders one line; row -1 is the header.
func (m Model) renderRow(cells []string, row int) string {
	parts := make([]string, len(cells))
	for i, cell := range cells {
		width := 10
		if i < len(m.colWidths) {
			width = m.colWidths[i]
		}
		if width < 1 {
			width = 1
		}

		display := cell
		displayWidth := lipgloss.Width(display)

		// Truncate if display is wider than column
		if displayWidth > width {
			runes := []rune(display)
			if width > 1 && len(runes) > 0 {
				trimmed := runes
				for lipgloss.Width(string(trimmed)) >= width && len(trimmed) > 0 {
					trimmed = trimmed[:len(trimmed)-1]
				}
				display = string(trimmed) + "…"
			} else {
				display = "…"
			}
			displayWidth = lipgloss.Width(display)
		}

		// Pad to column width; guard against negative (never panic)
		if pad := width - displayWidth; pad > 0 {
			display += strings.Repeat(" ", pad)
		}

		switch {
		case row < 0:
			parts[i] = lipgloss.NewStyle().Bold(true).Foreground(theme.ColorPrimary).Render(display)
		case m.focused && row == m.cursorY && i == m.cursorX:
			parts[i] = lipgloss.NewStyle().Reverse(true).Render(display)
		case m.focused && row == m.cursorY:
			parts[i] = theme.StyleSelected.Render(display)
		case m.table != nil && i < len(m.table.Columns) && m.table.Columns[i] == "Stage":
			parts[i] = lipgloss.NewStyle().Foreground(theme.StageColor(strings.TrimSpace(display))).Render(display)
		default:
			parts[i] = display
		}
	}
	return "  " + strings.Join(parts, " │ ")
}

func (m Model) renderSeparator() string {
	parts := make([]string, len(m.colWidths))
	for i, w := range m.colWidths {
		if w < 1 {
			w = 1
		}
		parts[i] = strings.Repeat("─", w)
	}
	return "  " + lipgloss.NewStyle().Foreground(theme.ColorBorder).Render(strings.Join(parts, "─┼─"))
}
