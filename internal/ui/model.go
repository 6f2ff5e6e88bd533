package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"github.com/username/attendance-tracker/internal/attendance"
	"github.com/username/attendance-tracker/internal/calendar"
	"github.com/username/attendance-tracker/internal/ledger"
	"github.com/username/attendance-tracker/internal/options"
	"github.com/username/attendance-tracker/pkg/dateutil"
)

// Model is the Bubble Tea month view over the attendance ledger
type Model struct {
	ledger   *ledger.Ledger
	calendar calendar.Calendar
	options  *options.Manager
	logger   *zap.Logger
	now      func() time.Time

	manager *attendance.Manager
	info    *calendar.MonthInfo
	cursor  int // day of month

	confirmClear bool
	statusLine   string
	errorLine    string

	keys   keyMap
	help   help.Model
	styles styles
}

// NewModel opens the month containing now()
func NewModel(l *ledger.Ledger, cal calendar.Calendar, opts *options.Manager, now func() time.Time, logger *zap.Logger) Model {
	if now == nil {
		now = time.Now
	}

	m := Model{
		ledger:   l,
		calendar: cal,
		options:  opts,
		logger:   logger,
		now:      now,
		keys:     defaultKeyMap(),
		help:     help.New(),
		styles:   newStyles(opts.Options()),
	}

	today := now()
	m.load(today.Year(), calendar.MonthOf(today))
	m.cursor = today.Day()

	return m
}

func (m *Model) load(year int, month calendar.CalendarMonth) {
	m.manager = attendance.NewManager(year, month, m.ledger, m.calendar, m.logger)
	if err := m.manager.SetGoalPercent(m.options.Options().AttendanceGoal); err != nil {
		m.errorLine = err.Error()
	}
	m.info = m.calendar.GetMonthInfo(year, month)
	m.cursor = 1
	m.confirmClear = false
}

func (m *Model) shiftMonth(delta int) {
	first := time.Date(m.manager.Year(), m.manager.Month().Time(), 1, 0, 0, 0, 0, time.Local).AddDate(0, delta, 0)
	m.load(first.Year(), calendar.MonthOf(first))
}

func (m *Model) moveCursor(delta int) {
	last := len(m.info.Days)
	m.cursor += delta
	if m.cursor < 1 {
		m.cursor = 1
	}
	if m.cursor > last {
		m.cursor = last
	}
}

// Manager exposes the month currently shown
func (m Model) Manager() *attendance.Manager {
	return m.manager
}

// Cursor returns the selected day of month
func (m Model) Cursor() int {
	return m.cursor
}

// Init implements tea.Model
func (m Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)
	case tea.WindowSizeMsg:
		m.help.Width = msg.Width
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.confirmClear {
		m.confirmClear = false
		if msg.String() == "y" {
			m.manager.Clear()
			m.statusLine = fmt.Sprintf("Cleared %s", m.manager.Key())
		} else {
			m.statusLine = "Clear cancelled"
		}
		return m, nil
	}

	m.errorLine = ""
	m.statusLine = ""

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Left):
		m.moveCursor(-1)
	case key.Matches(msg, m.keys.Right):
		m.moveCursor(1)
	case key.Matches(msg, m.keys.Up):
		m.moveCursor(-7)
	case key.Matches(msg, m.keys.Down):
		m.moveCursor(7)
	case key.Matches(msg, m.keys.PrevMonth):
		m.shiftMonth(-1)
	case key.Matches(msg, m.keys.NextMonth):
		m.shiftMonth(1)
	case key.Matches(msg, m.keys.Today):
		today := m.now()
		m.load(today.Year(), calendar.MonthOf(today))
		m.cursor = today.Day()
	case key.Matches(msg, m.keys.Toggle):
		if err := m.manager.Toggle(m.cursor); err != nil {
			m.errorLine = err.Error()
		}
	case key.Matches(msg, m.keys.Clear):
		m.confirmClear = true
		m.statusLine = fmt.Sprintf("Clear all marks in %s? (y/N)", m.manager.Key())
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
	}

	return m, nil
}

// View implements tea.Model
func (m Model) View() string {
	var b strings.Builder

	title := time.Date(m.manager.Year(), m.manager.Month().Time(), 1, 0, 0, 0, 0, time.Local).Format("January 2006")
	b.WriteString(m.styles.title.Render(title))
	b.WriteString("\n\n")
	b.WriteString(m.renderGrid())
	b.WriteString("\n")

	p := m.manager.Progress()
	b.WriteString(m.styles.text.Render(p.GoalLine()))
	b.WriteString("\n")
	b.WriteString(m.renderBar(p))
	b.WriteString(fmt.Sprintf(" %d/%d\n", p.Count, p.Required))
	b.WriteString(m.styles.text.Render(p.Message()))
	b.WriteString("\n")

	if m.statusLine != "" {
		b.WriteString(m.styles.status.Render(m.statusLine))
		b.WriteString("\n")
	}
	if m.errorLine != "" {
		b.WriteString(m.styles.err.Render(m.errorLine))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(m.help.View(m.keys))
	return b.String()
}

func (m Model) renderGrid() string {
	var b strings.Builder
	for _, name := range []string{"Su", "Mo", "Tu", "We", "Th", "Fr", "Sa"} {
		b.WriteString(m.styles.header.Render(name))
	}
	b.WriteString("\n")

	if len(m.info.Days) == 0 {
		return b.String()
	}

	offset := int(m.info.Days[0].Date.Weekday())
	b.WriteString(strings.Repeat(m.styles.cell.Render(""), offset))

	for _, day := range m.info.Days {
		d := day.Date.Day()
		label := fmt.Sprintf("%2d", d)

		style := m.styles.cell
		switch day.Type {
		case calendar.DayTypeHoliday:
			style = m.styles.holiday
		case calendar.DayTypeWeekend:
			style = m.styles.weekend
		}
		if m.manager.HasMark(d) {
			style = m.styles.marked
		}
		if dateutil.IsSameDay(day.Date, m.now()) {
			style = style.Underline(true)
		}
		if d == m.cursor {
			style = style.Reverse(true)
		}

		b.WriteString(style.Render(label))
		if day.Date.Weekday() == time.Saturday {
			b.WriteString("\n")
		}
	}
	b.WriteString("\n")

	return b.String()
}

const barWidth = 30

func (m Model) renderBar(p attendance.Progress) string {
	filled := barWidth
	if p.Required > 0 && p.Count < p.Required {
		filled = p.Count * barWidth / p.Required
	}
	return m.styles.barFill.Render(strings.Repeat("█", filled)) +
		m.styles.barTrack.Render(strings.Repeat("░", barWidth-filled))
}

type styles struct {
	title    lipgloss.Style
	text     lipgloss.Style
	header   lipgloss.Style
	cell     lipgloss.Style
	weekend  lipgloss.Style
	holiday  lipgloss.Style
	marked   lipgloss.Style
	barFill  lipgloss.Style
	barTrack lipgloss.Style
	status   lipgloss.Style
	err      lipgloss.Style
}

func newStyles(o options.Options) styles {
	fg := lipgloss.Color(o.Foreground)
	accent := lipgloss.Color(o.Accent)
	cell := lipgloss.NewStyle().Width(4).Align(lipgloss.Right).Foreground(fg)

	return styles{
		title:    lipgloss.NewStyle().Bold(true).Foreground(accent),
		text:     lipgloss.NewStyle().Foreground(fg),
		header:   cell.Bold(true),
		cell:     cell,
		weekend:  cell.Faint(true),
		holiday:  cell.Faint(true).Strikethrough(true),
		marked:   cell.Bold(true).Foreground(accent),
		barFill:  lipgloss.NewStyle().Foreground(accent),
		barTrack: lipgloss.NewStyle().Foreground(lipgloss.Color(o.ProgressBackground())),
		status:   lipgloss.NewStyle().Italic(true).Foreground(fg),
		err:      lipgloss.NewStyle().Foreground(lipgloss.Color("#f44336")),
	}
}
