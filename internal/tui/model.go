// Package tui is an interactive terminal month view with month navigation.
package tui

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/truncate"

	"monthcal/internal/agenda"
	"monthcal/internal/calendar"
	"monthcal/internal/view"
)

const minCellWidth = 10

// Source supplies the current index and can reload it.
type Source interface {
	Index() *agenda.Index
	Reload(ctx context.Context) error
}

type reloadedMsg struct{ err error }

type Styles struct {
	Header   lipgloss.Style
	Weekday  lipgloss.Style
	Number   lipgloss.Style
	Muted    lipgloss.Style
	Today    lipgloss.Style
	Event    lipgloss.Style
	Conflict lipgloss.Style
	More     lipgloss.Style
	Help     lipgloss.Style
	Message  lipgloss.Style
}

func DefaultStyles() Styles {
	return Styles{
		Header:   lipgloss.NewStyle().Bold(true),
		Weekday:  lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("245")),
		Number:   lipgloss.NewStyle().Bold(true),
		Muted:    lipgloss.NewStyle().Faint(true),
		Today:    lipgloss.NewStyle().Bold(true).Reverse(true).Foreground(lipgloss.Color("214")),
		Event:    lipgloss.NewStyle().Foreground(lipgloss.Color("75")),
		Conflict: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("196")),
		More:     lipgloss.NewStyle().Italic(true).Foreground(lipgloss.Color("245")),
		Help:     lipgloss.NewStyle().Foreground(lipgloss.Color("241")),
		Message:  lipgloss.NewStyle().Foreground(lipgloss.Color("214")),
	}
}

// Model is the bubbletea model. The navigator's reference date is the only
// state that changes on navigation; the grid is rebuilt on every View.
type Model struct {
	nav        *calendar.Navigator
	src        Source
	maxVisible int
	today      func() calendar.Date

	width   int
	styles  Styles
	message string
}

// New creates a model starting at ref (today when zero).
func New(src Source, ref calendar.Date, maxVisible int) *Model {
	return &Model{
		nav:        calendar.NewNavigator(ref),
		src:        src,
		maxVisible: maxVisible,
		today:      calendar.Today,
		width:      80,
		styles:     DefaultStyles(),
	}
}

// Ref returns the month currently on display.
func (m *Model) Ref() calendar.Date { return m.nav.Ref() }

func (m *Model) Init() tea.Cmd { return nil }

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width

	case reloadedMsg:
		if msg.err != nil {
			m.message = "reload: " + msg.err.Error()
		} else {
			m.message = fmt.Sprintf("reloaded %d events", m.src.Index().Len())
		}

	case tea.KeyMsg:
		m.message = ""
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "left", "h", "p", "<":
			m.nav.Prev()
		case "right", "l", "n", ">":
			m.nav.Next()
		case "t":
			m.nav.Set(m.today())
		case "r":
			return m, m.reload
		}
	}
	return m, nil
}

func (m *Model) reload() tea.Msg {
	return reloadedMsg{err: m.src.Reload(context.Background())}
}

func (m *Model) cellWidth() int {
	return max(minCellWidth, (m.width-7)/7)
}

func (m *Model) View() string {
	month := view.BuildMonth(m.nav.Ref(), m.today(), m.src.Index(), m.maxVisible)
	cw := m.cellWidth()
	gridWidth := cw*7 + 6

	var sections []string
	sections = append(sections,
		lipgloss.PlaceHorizontal(gridWidth, lipgloss.Center, m.styles.Header.Render(month.Label)),
		"",
	)

	headers := make([]string, 0, 7)
	for _, wd := range month.Weekdays {
		headers = append(headers, m.styles.Weekday.Width(cw).Render(wd))
	}
	sections = append(sections, lipgloss.JoinHorizontal(lipgloss.Top, spaced(headers)...))

	for _, week := range month.Weeks {
		cells := make([]string, 0, len(week))
		for _, d := range week {
			cells = append(cells, m.renderDay(d, cw))
		}
		sections = append(sections, lipgloss.JoinHorizontal(lipgloss.Top, spaced(cells)...), "")
	}

	help := "←/h prev  →/l next  t today  r reload  q quit"
	if m.message != "" {
		help = m.styles.Message.Render(m.message)
	} else {
		help = m.styles.Help.Render(help)
	}
	sections = append(sections, help)

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

// renderDay draws one cell: the day number, up to maxVisible entries and the
// overflow line. Every cell has the same height so rows line up.
func (m *Model) renderDay(d view.Day, cw int) string {
	lines := make([]string, 0, m.maxVisible+2)

	num := fmt.Sprintf("%2d", d.Number)
	switch {
	case d.IsToday:
		num = m.styles.Today.Render(num)
	case !d.InMonth:
		num = m.styles.Muted.Render(num)
	default:
		num = m.styles.Number.Render(num)
	}
	lines = append(lines, num)

	for _, e := range d.Events {
		text := e.Title
		if e.Time != "" {
			text = e.Time + " " + text
		}
		text = truncate.StringWithTail(text, uint(cw), "…")

		style := m.styles.Event
		if e.Conflict {
			style = m.styles.Conflict
		}
		if !d.InMonth {
			style = style.Faint(true)
		}
		lines = append(lines, style.Render(text))
	}
	if d.More > 0 {
		lines = append(lines, m.styles.More.Render(fmt.Sprintf("+%d more", d.More)))
	}

	for len(lines) < m.maxVisible+2 {
		lines = append(lines, "")
	}
	return lipgloss.NewStyle().Width(cw).Render(strings.Join(lines, "\n"))
}

func spaced(cells []string) []string {
	out := make([]string, 0, len(cells)*2)
	for i, c := range cells {
		if i > 0 {
			out = append(out, " ")
		}
		out = append(out, c)
	}
	return out
}

// Run starts the full-screen program.
func Run(src Source, ref calendar.Date, maxVisible int) error {
	p := tea.NewProgram(New(src, ref, maxVisible), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
