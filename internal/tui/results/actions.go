package results

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/atotto/clipboard"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/missionpulse/missionpulse/internal/export"
	"github.com/spf13/afero"
)

// writeClipboard is swapped out in tests.
var writeClipboard = clipboard.WriteAll

func notify(msg string) tea.Cmd {
	return func() tea.Msg { return StatusNotifyMsg{Message: msg} }
}

func (m Model) currentRow() ([]string, bool) {
	if m.table == nil || m.cursorY < 0 || m.cursorY >= len(m.table.Rows) {
		return nil, false
	}
	return m.table.Rows[m.cursorY], true
}

func (m Model) getCellValue() string {
	row, ok := m.currentRow()
	if !ok || m.cursorX < 0 || m.cursorX >= len(row) {
		return ""
	}
	return row[m.cursorX]
}

// --- Copy ---

func (m Model) copyCellCmd() tea.Cmd {
	val := m.getCellValue()
	if val == "" {
		return notify("Nothing to copy")
	}
	if err := writeClipboard(val); err != nil {
		return notify("Copy failed: " + err.Error())
	}
	return notify("Copied: " + truncateStatus(val, 40))
}

func (m Model) copyRowCSVCmd() tea.Cmd {
	row, ok := m.currentRow()
	if !ok {
		return notify("No row to copy")
	}
	text := export.Text([][]string{row}, export.StringColumns(m.table.Columns))
	if err := writeClipboard(text); err != nil {
		return notify("Copy failed: " + err.Error())
	}
	return notify("Copied row as CSV")
}

func (m Model) copyRowJSONCmd() tea.Cmd {
	if _, ok := m.currentRow(); !ok {
		return notify("No row to copy")
	}
	if err := writeClipboard(rowToJSON(m.table, m.cursorY)); err != nil {
		return notify("Copy failed: " + err.Error())
	}
	return notify("Copied row as JSON")
}

func (m Model) copyRowTextCmd() tea.Cmd {
	row, ok := m.currentRow()
	if !ok {
		return notify("No row to copy")
	}
	if err := writeClipboard(strings.Join(row, "\t")); err != nil {
		return notify("Copy failed: " + err.Error())
	}
	return notify("Copied row as text")
}

// --- Export ---

func (m Model) exportFilename(ext string) string {
	name := "report"
	if m.table != nil && m.table.Name != "" {
		name = m.table.Name
	}
	ts := m.now().Format("20060102_150405")
	return filepath.Join(m.exportDir, fmt.Sprintf("missionpulse_%s_%s.%s", name, ts, ext))
}

func (m Model) exportCSVCmd() tea.Cmd {
	table := m.table
	if table == nil {
		return nil
	}
	fs, filename := m.fs, m.exportFilename("csv")
	return func() tea.Msg {
		if err := export.Save(fs, filename, table.Rows, export.StringColumns(table.Columns)); err != nil {
			return StatusNotifyMsg{Message: "Export failed: " + err.Error()}
		}
		return StatusNotifyMsg{Message: fmt.Sprintf("Exported %d rows to %s", len(table.Rows), filename)}
	}
}

func (m Model) exportJSONCmd() tea.Cmd {
	table := m.table
	if table == nil {
		return nil
	}
	fs, filename := m.fs, m.exportFilename("json")
	return func() tea.Msg {
		var b strings.Builder
		b.WriteString("[\n")
		for ri := range table.Rows {
			if ri > 0 {
				b.WriteString(",\n")
			}
			b.WriteString("  ")
			b.WriteString(rowToJSON(table, ri))
		}
		b.WriteString("\n]")

		if err := fs.MkdirAll(filepath.Dir(filename), 0o755); err != nil {
			return StatusNotifyMsg{Message: "Export failed: " + err.Error()}
		}
		if err := afero.WriteFile(fs, filename, []byte(b.String()), 0o644); err != nil {
			return StatusNotifyMsg{Message: "Export failed: " + err.Error()}
		}
		return StatusNotifyMsg{Message: fmt.Sprintf("Exported %d rows to %s", len(table.Rows), filename)}
	}
}

// --- Helpers ---

// rowToJSON preserves column order unlike map marshaling. NULL cells become
// null; empty strings stay "".
func rowToJSON(t *Table, ri int) string {
	row := t.Rows[ri]
	var b strings.Builder
	b.WriteString("{")
	for i, col := range t.Columns {
		if i > 0 {
			b.WriteString(", ")
		}
		key, _ := json.Marshal(col)
		b.Write(key)
		b.WriteString(": ")
		if !t.IsNull(ri, i) {
			val, _ := json.Marshal(row[i])
			b.Write(val)
		} else {
			b.WriteString("null")
		}
	}
	b.WriteString("}")
	return b.String()
}

func truncateStatus(s string, maxLen int) string {
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	return string(r[:maxLen-3]) + "..."
}
