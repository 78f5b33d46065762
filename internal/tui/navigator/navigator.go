package navigator

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/missionpulse/missionpulse/internal/app"
	"github.com/missionpulse/missionpulse/internal/tui/theme"
)

// View identifies a report shown in the results pane.
type View int

const (
	ViewPipeline View = iota
	ViewStages
	ViewCompliance
	ViewSections
)

func (v View) String() string {
	switch v {
	case ViewPipeline:
		return "Pipeline"
	case ViewStages:
		return "Stages"
	case ViewCompliance:
		return "Compliance Matrix"
	case ViewSections:
		return "Proposal Sections"
	default:
		return "unknown"
	}
}

// SelectViewMsg is sent when the user opens a report.
type SelectViewMsg struct {
	View View
}

type item struct {
	view    View
	count   string
	failed  bool
	enabled bool
}

// Model is the navigator (report list) component.
type Model struct {
	items       []item
	cursor      int
	active      View
	opportunity string
	database    string
	healthy     bool
	width       int
	height      int
	focused     bool
	loading     bool
}

// New creates a new navigator model.
func New() Model {
	return Model{
		items: []item{
			{view: ViewPipeline, enabled: true},
			{view: ViewStages, enabled: true},
			{view: ViewCompliance},
			{view: ViewSections},
		},
	}
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

// Focused returns whether the navigator has focus.
func (m Model) Focused() bool {
	return m.focused
}

// SetLoading sets the loading state.
func (m *Model) SetLoading(l bool) {
	m.loading = l
}

// SetActive marks the report currently shown.
func (m *Model) SetActive(v View) {
	m.active = v
	for i, it := range m.items {
		if it.view == v {
			m.cursor = i
		}
	}
}

// Active returns the report currently shown.
func (m Model) Active() View {
	return m.active
}

// SetDashboard updates counts from a freshly loaded dashboard.
func (m *Model) SetDashboard(d *app.Dashboard) {
	m.loading = false
	m.database = d.Database
	m.healthy = d.Health.OK()

	pipeline := m.item(ViewPipeline)
	pipeline.failed = !d.Pipeline.OK()
	pipeline.count = ""
	if d.Total.OK() && d.Total.Data != nil {
		pipeline.count = fmt.Sprint(*d.Total.Data)
	}

	stages := m.item(ViewStages)
	stages.failed = !d.Stages.OK()
	stages.count = ""
	if d.Stages.Data != nil {
		stages.count = fmt.Sprint(len(*d.Stages.Data))
	}
}

// SetOpportunity enables the per-opportunity reports for d.
func (m *Model) SetOpportunity(d *app.OpportunityDetail) {
	m.opportunity = ""
	if d.Opportunity.Data != nil {
		m.opportunity = d.Opportunity.Data.Title
	}

	compliance := m.item(ViewCompliance)
	compliance.enabled = true
	compliance.failed = !d.Compliance.OK()
	compliance.count = countString(d.Compliance.Count)

	sections := m.item(ViewSections)
	sections.enabled = true
	sections.failed = !d.Sections.OK()
	sections.count = countString(d.Sections.Count)
}

// Enabled reports whether v can be opened.
func (m Model) Enabled(v View) bool {
	for _, it := range m.items {
		if it.view == v {
			return it.enabled
		}
	}
	return false
}

func (m *Model) item(v View) *item {
	for i := range m.items {
		if m.items[i].view == v {
			return &m.items[i]
		}
	}
	return nil
}

func countString(n *int64) string {
	if n == nil {
		return ""
	}
	return fmt.Sprint(*n)
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

	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch key.String() {
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(m.items)-1 {
			m.cursor++
		}
	case "enter", "right", "l":
		it := m.items[m.cursor]
		if !it.enabled {
			return m, nil
		}
		m.active = it.view
		return m, func() tea.Msg { return SelectViewMsg{View: it.view} }
	}
	return m, nil
}

// View renders the navigator.
func (m Model) View() string {
	var b strings.Builder

	title := m.database
	if title == "" {
		title = "MissionPulse"
	}
	b.WriteString(theme.StyleTitle.Render(" " + title))
	b.WriteString("\n")

	if m.loading {
		b.WriteString(theme.StyleMuted.Render("  Loading dashboard..."))
		return b.String()
	}

	for i, it := range m.items {
		if it.view == ViewCompliance {
			b.WriteString("\n")
			label := "no opportunity selected"
			if m.opportunity != "" {
				label = truncate(m.opportunity, m.width-4)
			}
			b.WriteString(theme.StyleMuted.Render("  " + label))
			b.WriteString("\n")
		}

		line := it.view.String()
		if it.count != "" {
			line += " (" + it.count + ")"
		}
		if it.failed {
			line += " !"
		}

		prefix := "  "
		style := lipgloss.NewStyle()
		switch {
		case !it.enabled:
			style = theme.StyleMuted
		case it.failed:
			style = theme.StyleError
		case it.view == m.active:
			style = theme.StyleSuccess
		}
		if i == m.cursor && m.focused {
			prefix = "> "
			style = theme.StyleSelected
		}
		b.WriteString(style.Render(prefix + line))
		b.WriteString("\n")
	}

	if !m.healthy {
		b.WriteString("\n")
		b.WriteString(theme.StyleError.Render("  database unreachable"))
	}

	return strings.TrimRight(b.String(), "\n")
}

func truncate(s string, n int) string {
	r := []rune(s)
	if n < 2 || len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
