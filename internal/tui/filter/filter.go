package filter

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/missionpulse/missionpulse/internal/database"
	"github.com/missionpulse/missionpulse/internal/tui/theme"
)

// ApplyFilterMsg is sent when the user submits a filter.
type ApplyFilterMsg struct {
	Filter database.OpportunityFilter
}

// Model is the pipeline filter bar.
type Model struct {
	input   textinput.Model
	width   int
	focused bool
	err     error
}

// New creates a new filter model.
func New() Model {
	ti := textinput.New()
	ti.Placeholder = "stage:capture agency:DHS limit:50 free text..."
	ti.Prompt = "/ "
	ti.CharLimit = 200
	return Model{input: ti}
}

// SetWidth updates the component width.
func (m *Model) SetWidth(w int) {
	m.width = w
	m.input.Width = w - 4
}

// SetFocused sets the focus state.
func (m *Model) SetFocused(f bool) {
	m.focused = f
	if f {
		m.input.Focus()
	} else {
		m.input.Blur()
	}
}

// Focused returns whether the filter bar has focus.
func (m Model) Focused() bool {
	return m.focused
}

// Value returns the raw filter text.
func (m Model) Value() string {
	return m.input.Value()
}

// SetValue replaces the filter text.
func (m *Model) SetValue(s string) {
	m.input.SetValue(s)
}

// Init returns the initial command (none).
func (m Model) Init() tea.Cmd {
	return nil
}

// Update handles key input while focused.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if !m.focused {
		return m, nil
	}

	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.String() {
		case "enter":
			f, err := Parse(m.input.Value())
			if err != nil {
				m.err = err
				return m, nil
			}
			m.err = nil
			return m, func() tea.Msg { return ApplyFilterMsg{Filter: f} }
		case "ctrl+k":
			m.input.SetValue("")
			m.err = nil
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// View renders the filter bar.
func (m Model) View() string {
	v := m.input.View()
	if m.err != nil {
		v += "  " + theme.StyleError.Render(m.err.Error())
	}
	return v
}

// Parse turns filter text into an OpportunityFilter. Recognized keys are
// stage, agency and limit; every other word becomes part of the search text.
func Parse(s string) (database.OpportunityFilter, error) {
	var (
		f      database.OpportunityFilter
		search []string
	)
	for _, tok := range strings.Fields(s) {
		key, val, ok := strings.Cut(tok, ":")
		if !ok || val == "" {
			search = append(search, tok)
			continue
		}
		switch strings.ToLower(key) {
		case "stage":
			stage := strings.ToLower(val)
			if !validStage(stage) {
				return f, fmt.Errorf("unknown stage %q", val)
			}
			f.Stage = stage
		case "agency":
			f.Agency = val
		case "limit":
			n, err := strconv.Atoi(val)
			if err != nil || n < 0 {
				return f, fmt.Errorf("invalid limit %q", val)
			}
			f.Limit = n
		default:
			search = append(search, tok)
		}
	}
	f.Search = strings.Join(search, " ")
	return f, nil
}

func validStage(s string) bool {
	for _, stage := range database.Stages {
		if s == stage {
			return true
		}
	}
	return false
}
