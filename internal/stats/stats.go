package stats

import (
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/username/attendance-tracker/internal/attendance"
	"github.com/username/attendance-tracker/internal/calendar"
	"github.com/username/attendance-tracker/internal/ledger"
)

// Weekdays lists weekdays in report order, Sunday first
var Weekdays = []time.Weekday{
	time.Sunday, time.Monday, time.Tuesday, time.Wednesday,
	time.Thursday, time.Friday, time.Saturday,
}

// ByWeekday counts entries per weekday across the whole ledger.
// All seven weekdays are present in the result.
func ByWeekday(l *ledger.Ledger) map[time.Weekday]int {
	totals := make(map[time.Weekday]int, len(Weekdays))
	for _, wd := range Weekdays {
		totals[wd] = 0
	}

	l.GetAll().Each(func(_ string, entries []ledger.Entry) {
		for _, e := range entries {
			date := time.Date(e.Year, e.Month.Time(), e.Day, 0, 0, 0, 0, time.Local)
			totals[date.Weekday()]++
		}
	})

	return totals
}

// MonthSummary is one month of the attendance log
type MonthSummary struct {
	Key          string                `json:"key"`
	Year         int                   `json:"year"`
	Month        calendar.StorageMonth `json:"month"`
	Count        int                   `json:"count"`
	BusinessDays int                   `json:"businessDays"`
	Required     int                   `json:"required"`
	Reached      bool                  `json:"reached"`
}

// Monthly summarizes every ledger bucket against goalPercent, newest month first
func Monthly(l *ledger.Ledger, cal calendar.Calendar, goalPercent int) []MonthSummary {
	history := l.GetAll()
	keys := history.Keys()
	sort.Sort(sort.Reverse(sort.StringSlice(keys)))

	summaries := make([]MonthSummary, 0, len(keys))
	for _, key := range keys {
		year, month, ok := parseKey(key)
		if !ok {
			continue
		}

		m := attendance.NewManager(year, month.Calendar(), l, cal, zap.NewNop())
		if err := m.SetGoalPercent(goalPercent); err != nil {
			m.SetGoalPercent(attendance.DefaultGoalPercent)
		}

		p := m.Progress()
		summaries = append(summaries, MonthSummary{
			Key:          key,
			Year:         year,
			Month:        month,
			Count:        p.Count,
			BusinessDays: p.BusinessDays,
			Required:     p.Required,
			Reached:      p.Reached,
		})
	}

	return summaries
}

func parseKey(key string) (int, calendar.StorageMonth, bool) {
	t, err := time.Parse("2006-01", key)
	if err != nil {
		return 0, 0, false
	}
	return t.Year(), calendar.StorageMonth(t.Month()), true
}
