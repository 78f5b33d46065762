package results

import (
	"errors"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pipelineTable() *Table {
	return &Table{
		Name:    "pipeline",
		Title:   "Pipeline",
		Columns: []string{"Title", "Agency", "Stage"},
		Rows: [][]string{
			{"EAGLE II, FC1", "DHS", "capture"},
			{`T4NG "Recompete"`, "VA", "proposal"},
			{"Help Desk", "", "won"},
		},
		Nulls: [][]bool{
			{false, false, false},
			{false, false, false},
			{false, true, false},
		},
	}
}

func newModel(t *testing.T) (Model, afero.Fs) {
	t.Helper()
	fs := afero.NewMemMapFs()
	m := New(fs, "/exports")
	m.now = func() time.Time { return time.Date(2026, 10, 16, 9, 30, 0, 0, time.UTC) }
	m.SetSize(80, 20)
	m.SetFocused(true)
	m.SetTable(pipelineTable())
	return m, fs
}

func key(s string) tea.KeyMsg {
	switch s {
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	case "right":
		return tea.KeyMsg{Type: tea.KeyRight}
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func stubClipboard(t *testing.T, err error) *string {
	t.Helper()
	var got string
	orig := writeClipboard
	writeClipboard = func(s string) error {
		got = s
		return err
	}
	t.Cleanup(func() { writeClipboard = orig })
	return &got
}

func status(t *testing.T, cmd tea.Cmd) string {
	t.Helper()
	require.NotNil(t, cmd)
	msg, ok := cmd().(StatusNotifyMsg)
	require.True(t, ok)
	return msg.Message
}

func TestCursorMovement(t *testing.T) {
	m, _ := newModel(t)

	m, _ = m.Update(key("down"))
	m, _ = m.Update(key("down"))
	m, _ = m.Update(key("down"))
	assert.Equal(t, 2, m.Cursor())

	m, cmd := m.Update(key("enter"))
	require.NotNil(t, cmd)
	assert.Equal(t, RowSelectedMsg{Table: "pipeline", Row: 2}, cmd())
}

func TestCopyCell(t *testing.T) {
	m, _ := newModel(t)
	got := stubClipboard(t, nil)

	m, _ = m.Update(key("right"))
	_, cmd := m.Update(key("y"))
	assert.Equal(t, "Copied: DHS", status(t, cmd))
	assert.Equal(t, "DHS", *got)
}

func TestCopyRowCSV(t *testing.T) {
	m, _ := newModel(t)
	got := stubClipboard(t, nil)

	m, _ = m.Update(key("down"))
	_, cmd := m.Update(key("Y"))
	assert.Equal(t, "Copied row as CSV", status(t, cmd))
	assert.Equal(t, "\"Title\",\"Agency\",\"Stage\"\n\"T4NG \"\"Recompete\"\"\",\"VA\",\"proposal\"", *got)
}

func TestCopyRowJSON(t *testing.T) {
	m, _ := newModel(t)
	m.cursorY = 2
	got := stubClipboard(t, nil)

	_, cmd := m.Update(key("J"))
	assert.Equal(t, "Copied row as JSON", status(t, cmd))
	assert.Equal(t, `{"Title": "Help Desk", "Agency": null, "Stage": "won"}`, *got)
}

func TestCopyRowJSON_EmptyStringIsNotNull(t *testing.T) {
	m, _ := newModel(t)
	m.SetTable(&Table{
		Columns: []string{"Reference", "Owner", "Notes"},
		Rows:    [][]string{{"L.4.1", "", ""}},
		Nulls:   [][]bool{{false, false, true}},
	})
	got := stubClipboard(t, nil)

	_, cmd := m.Update(key("J"))
	assert.Equal(t, "Copied row as JSON", status(t, cmd))
	assert.Equal(t, `{"Reference": "L.4.1", "Owner": "", "Notes": null}`, *got)
}

func TestTable_IsNull(t *testing.T) {
	tbl := &Table{
		Columns: []string{"a", "b", "c"},
		Rows:    [][]string{{"x", ""}},
	}

	assert.False(t, tbl.IsNull(0, 0))
	assert.False(t, tbl.IsNull(0, 1), "empty string without a mask is a value")
	assert.True(t, tbl.IsNull(0, 2), "short row")
	assert.True(t, tbl.IsNull(1, 0), "row out of range")
}

func TestCopyFailure(t *testing.T) {
	m, _ := newModel(t)
	stubClipboard(t, errors.New("no clipboard utility"))

	_, cmd := m.Update(key("T"))
	assert.Equal(t, "Copy failed: no clipboard utility", status(t, cmd))
}

func TestCopyEmptyCell(t *testing.T) {
	m, _ := newModel(t)
	m.cursorY, m.cursorX = 2, 1
	stubClipboard(t, nil)

	_, cmd := m.Update(key("y"))
	assert.Equal(t, "Nothing to copy", status(t, cmd))
}

func TestExportCSV(t *testing.T) {
	m, fs := newModel(t)

	_, cmd := m.Update(key("e"))
	assert.Equal(t, "Exported 3 rows to /exports/missionpulse_pipeline_20261016_093000.csv", status(t, cmd))

	data, err := afero.ReadFile(fs, "/exports/missionpulse_pipeline_20261016_093000.csv")
	require.NoError(t, err)
	lines := strings.Split(string(data), "\n")
	require.Len(t, lines, 4)
	assert.Equal(t, `"Title","Agency","Stage"`, lines[0])
	assert.Equal(t, `"EAGLE II, FC1","DHS","capture"`, lines[1])
	assert.Equal(t, `"Help Desk","","won"`, lines[3])
}

func TestExportJSON(t *testing.T) {
	m, fs := newModel(t)

	_, cmd := m.Update(key("E"))
	assert.Contains(t, status(t, cmd), "Exported 3 rows")

	data, err := afero.ReadFile(fs, "/exports/missionpulse_pipeline_20261016_093000.json")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "[\n  {\"Title\": \"EAGLE II, FC1\""))
}

func TestExportWithoutTable(t *testing.T) {
	m := New(afero.NewMemMapFs(), "/exports")
	m.SetFocused(true)

	_, cmd := m.Update(key("e"))
	assert.Nil(t, cmd)
}

func TestView(t *testing.T) {
	m, _ := newModel(t)
	n := int64(40)
	tbl := pipelineTable()
	tbl.Count = &n
	m.SetTable(tbl)

	out := m.View()
	assert.Contains(t, out, "Pipeline")
	assert.Contains(t, out, "3 of 40 row(s)")
	assert.Contains(t, out, "EAGLE II, FC1")

	m.SetError(errors.New("statement timeout"))
	assert.Contains(t, m.View(), "Error: statement timeout")

	m.SetTable(&Table{Title: "Stages", Columns: []string{"Stage"}})
	assert.Contains(t, m.View(), "No rows")
}

func TestScrollKeepsCursorVisible(t *testing.T) {
	m, _ := newModel(t)
	m.SetSize(80, 6) // two visible rows

	m, _ = m.Update(key("down"))
	m, _ = m.Update(key("down"))
	assert.Equal(t, 1, m.scrollY)
	assert.Contains(t, m.View(), "Help Desk")
	assert.NotContains(t, m.View(), "EAGLE")
}

func TestTruncateStatus(t *testing.T) {
	assert.Equal(t, "short", truncateStatus("short", 10))
	assert.Equal(t, "abcdefg...", truncateStatus("abcdefghijklmnop", 10))
}
