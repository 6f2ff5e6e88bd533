package attendance

import (
	"errors"
	"fmt"
	"math"
	"time"

	"go.uber.org/zap"

	"github.com/username/attendance-tracker/internal/calendar"
	"github.com/username/attendance-tracker/internal/ledger"
	"github.com/username/attendance-tracker/pkg/dateutil"
)

// DefaultGoalPercent is the attendance goal a new Manager starts with
const DefaultGoalPercent = 55

const (
	minYear = 1900
	maxYear = 2100
)

var (
	// ErrInvalidDate is returned when year, month and day do not form a real date
	ErrInvalidDate = errors.New("invalid date")
	// ErrInvalidGoal is returned for goal percentages outside 0..100
	ErrInvalidGoal = errors.New("attendance goal must be between 0 and 100")
	// ErrWrongMonth is returned when a date lies outside the manager's month
	ErrWrongMonth = errors.New("date is outside the tracked month")
)

// Manager tracks attendance for one month on top of a shared ledger
type Manager struct {
	year          int
	month         calendar.CalendarMonth
	storageMonth  calendar.StorageMonth
	ledger        *ledger.Ledger
	entries       []ledger.Entry
	businessDays  int
	requiredCount int
	logger        *zap.Logger
}

// NewManager creates a manager for (year, month). Entries are loaded eagerly
// and the goal starts at DefaultGoalPercent.
func NewManager(
	year int,
	month calendar.CalendarMonth,
	l *ledger.Ledger,
	cal calendar.Calendar,
	logger *zap.Logger,
) *Manager {
	m := &Manager{
		year:         year,
		month:        month,
		storageMonth: month.Storage(),
		ledger:       l,
		businessDays: cal.BusinessDaysInMonth(year, month),
		logger:       logger,
	}
	m.entries = l.GetMonth(year, m.storageMonth)
	m.requiredCount = requiredFor(m.businessDays, DefaultGoalPercent)

	return m
}

func requiredFor(businessDays, pct int) int {
	return businessDays * pct / 100
}

// Year returns the tracked year
func (m *Manager) Year() int { return m.year }

// Month returns the tracked month, 0-indexed
func (m *Manager) Month() calendar.CalendarMonth { return m.month }

// StorageMonth returns the tracked month, 1-indexed
func (m *Manager) StorageMonth() calendar.StorageMonth { return m.storageMonth }

// Key returns the ledger bucket key of the tracked month
func (m *Manager) Key() string { return ledger.MonthKey(m.year, m.storageMonth) }

func (m *Manager) indexOf(day int) int {
	for i, e := range m.entries {
		if e.Day == day {
			return i
		}
	}
	return -1
}

func (m *Manager) save() {
	m.ledger.SetMonth(m.year, m.storageMonth, m.entries)
}

// HasMark reports whether day is marked
func (m *Manager) HasMark(day int) bool {
	return m.indexOf(day) >= 0
}

func (m *Manager) validate(day int) error {
	if m.year < minYear || m.year > maxYear || !m.month.Valid() ||
		!dateutil.IsValidDate(m.year, m.month.Time(), day) {
		return fmt.Errorf("%w: %d-%02d-%02d", ErrInvalidDate, m.year, int(m.storageMonth), day)
	}
	return nil
}

// Mark records attendance on day. Marking an already marked day does nothing.
func (m *Manager) Mark(day int) error {
	if err := m.validate(day); err != nil {
		return err
	}
	if m.HasMark(day) {
		return nil
	}

	m.entries = append(m.entries, ledger.Entry{Day: day, Month: m.storageMonth, Year: m.year})
	m.save()

	m.logger.Debug("Attendance marked",
		zap.String("month", m.Key()),
		zap.Int("day", day))

	return nil
}

// MarkDate marks the day of date, which must lie in the tracked month
func (m *Manager) MarkDate(date time.Time) error {
	if date.Year() != m.year || calendar.MonthOf(date) != m.month {
		return fmt.Errorf("%w: %s not in %s", ErrWrongMonth, date.Format("2006-01-02"), m.Key())
	}
	return m.Mark(date.Day())
}

// Unmark removes the first entry for day, if any
func (m *Manager) Unmark(day int) {
	idx := m.indexOf(day)
	if idx < 0 {
		return
	}

	entries := make([]ledger.Entry, 0, len(m.entries)-1)
	entries = append(entries, m.entries[:idx]...)
	entries = append(entries, m.entries[idx+1:]...)
	m.entries = entries
	m.save()

	m.logger.Debug("Attendance unmarked",
		zap.String("month", m.Key()),
		zap.Int("day", day))
}

// Toggle unmarks day if marked, otherwise marks it
func (m *Manager) Toggle(day int) error {
	if m.HasMark(day) {
		m.Unmark(day)
		return nil
	}
	return m.Mark(day)
}

// Clear removes every entry of the month and drops its ledger bucket
func (m *Manager) Clear() {
	m.entries = []ledger.Entry{}
	m.ledger.ClearMonth(m.year, m.storageMonth)

	m.logger.Info("Month cleared", zap.String("month", m.Key()))
}

// Count returns the number of marked days
func (m *Manager) Count() int {
	return len(m.entries)
}

// Entries returns a copy of the month's entries in insertion order
func (m *Manager) Entries() []ledger.Entry {
	return append([]ledger.Entry{}, m.entries...)
}

// BusinessDays returns the number of business days in the month
func (m *Manager) BusinessDays() int {
	return m.businessDays
}

// RequiredCount returns the number of days needed to reach the goal
func (m *Manager) RequiredCount() int {
	return m.requiredCount
}

// SetGoalPercent sets the goal and recomputes the required count
func (m *Manager) SetGoalPercent(pct int) error {
	if pct < 0 || pct > 100 {
		return fmt.Errorf("%w: got %d", ErrInvalidGoal, pct)
	}
	m.requiredCount = requiredFor(m.businessDays, pct)
	return nil
}

// GoalPercent derives the goal back from the required count, so it may
// differ slightly from the value passed to SetGoalPercent.
func (m *Manager) GoalPercent() int {
	if m.businessDays == 0 {
		return 0
	}
	return int(math.Floor(float64(m.requiredCount)/float64(m.businessDays)*100 + 0.5))
}
