package export

import (
	"math"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type note struct {
	name string
	note string
}

var noteColumns = []Column[note]{
	{Header: "Name", Accessor: func(r note) any { return r.name }},
	{Header: "Note", Accessor: func(r note) any { return r.note }},
}

func TestText_QuotesAndEscapes(t *testing.T) {
	rows := []note{{name: "A,B", note: `He said "hi"`}}

	got := Text(rows, noteColumns)
	assert.Equal(t, "\"Name\",\"Note\"\n\"A,B\",\"He said \"\"hi\"\"\"", got)
}

func TestText_NoRowsIsHeaderOnly(t *testing.T) {
	assert.Equal(t, `"Name","Note"`, Text(nil, noteColumns))
	assert.Equal(t, "", Text[note](nil, nil))
}

func TestText_HeadersNotEscaped(t *testing.T) {
	cols := []Column[note]{{Header: `Say "x"`, Accessor: func(r note) any { return r.name }}}
	assert.Equal(t, "\"Say \"x\"\"\n\"v\"", Text([]note{{name: "v"}}, cols))
}

func TestText_Primitives(t *testing.T) {
	var nilPtr *int
	due := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	var nilTime *time.Time
	n := 7

	cols := []Column[int]{
		{Header: "nil", Accessor: func(int) any { return nil }},
		{Header: "int", Accessor: func(int) any { return 42 }},
		{Header: "float", Accessor: func(int) any { return 1250000.5 }},
		{Header: "bool", Accessor: func(int) any { return true }},
		{Header: "nilptr", Accessor: func(int) any { return nilPtr }},
		{Header: "ptr", Accessor: func(int) any { return &n }},
		{Header: "stringer", Accessor: func(int) any { return due }},
		{Header: "nilstringer", Accessor: func(int) any { return nilTime }},
	}

	got := Text([]int{0}, cols)
	want := `"nil","int","float","bool","nilptr","ptr","stringer","nilstringer"` + "\n" +
		`"","42","1250000.5","true","","7","2026-03-01 00:00:00 +0000 UTC",""`
	assert.Equal(t, want, got)
}

func TestField_Floats(t *testing.T) {
	tests := []struct {
		in   any
		want string
	}{
		{1250000.5, "1250000.5"},
		{0.0, "0"},
		{-2.25, "-2.25"},
		{float32(0.1), "0.1"},
		{1e21, "1e+21"},
		{-1.5e22, "-1.5e+22"},
		{1e20, "100000000000000000000"},
		{1.5e-7, "1.5e-7"},
		{0.000001, "0.000001"},
		{math.Inf(1), "Infinity"},
		{math.Inf(-1), "-Infinity"},
		{math.NaN(), "NaN"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, field(tt.in), "%v", tt.in)
	}
}

func TestText_EmbeddedNewlines(t *testing.T) {
	rows := []note{{name: "line1\nline2", note: ""}}
	assert.Equal(t, "\"Name\",\"Note\"\n\"line1\nline2\",\"\"", Text(rows, noteColumns))
}

func TestText_Deterministic(t *testing.T) {
	rows := []note{{"a", "b"}, {"c", `"d"`}}
	assert.Equal(t, Text(rows, noteColumns), Text(rows, noteColumns))
}

func TestText_AccessorPanicPropagates(t *testing.T) {
	cols := []Column[note]{{Header: "x", Accessor: func(note) any { panic("bad accessor") }}}
	assert.PanicsWithValue(t, "bad accessor", func() { Text([]note{{}}, cols) })
}

func TestSave(t *testing.T) {
	fs := afero.NewMemMapFs()
	rows := []note{{name: "A,B", note: `He said "hi"`}}

	require.NoError(t, Save(fs, "/exports/pipeline.csv", rows, noteColumns))

	data, err := afero.ReadFile(fs, "/exports/pipeline.csv")
	require.NoError(t, err)
	assert.Equal(t, Text(rows, noteColumns), string(data))

	entries, err := afero.ReadDir(fs, "/exports")
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temp file must be renamed away")
}

func TestSave_AccessorPanicLeavesNoFile(t *testing.T) {
	fs := afero.NewMemMapFs()
	cols := []Column[note]{{Header: "x", Accessor: func(note) any { panic("bad") }}}

	assert.Panics(t, func() { _ = Save(fs, "/exports/bad.csv", []note{{}}, cols) })

	exists, err := afero.Exists(fs, "/exports/bad.csv")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestSave_ReadOnlyFs(t *testing.T) {
	fs := afero.NewReadOnlyFs(afero.NewMemMapFs())
	err := Save(fs, "/exports/pipeline.csv", []note{{}}, noteColumns)
	assert.Error(t, err)
}

func TestServe(t *testing.T) {
	rec := httptest.NewRecorder()
	rows := []note{{name: "A", note: "B"}}

	Serve(rec, "pipeline report.csv", rows, noteColumns)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, ContentType, rec.Header().Get("Content-Type"))
	assert.Equal(t, `attachment; filename="pipeline report.csv"`, rec.Header().Get("Content-Disposition"))
	assert.Equal(t, "\"Name\",\"Note\"\n\"A\",\"B\"", rec.Body.String())
}
