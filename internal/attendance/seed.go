package attendance

import (
	"go.uber.org/zap"

	"github.com/username/attendance-tracker/internal/calendar"
	"github.com/username/attendance-tracker/internal/ledger"
	"github.com/username/attendance-tracker/pkg/dateutil"
	"github.com/username/attendance-tracker/pkg/random"
)

// DemoDaysPerMonth is how many random days Seed marks in each month
const DemoDaysPerMonth = 10

// Seed marks perMonth random days in every month of year. Days already marked
// stay as they are. Returns the number of newly marked days.
func Seed(l *ledger.Ledger, cal calendar.Calendar, year, perMonth int, rng random.Source, logger *zap.Logger) int {
	added := 0
	for month := calendar.CalendarMonth(0); month < 12; month++ {
		m := NewManager(year, month, l, cal, logger)
		before := m.Count()

		days := random.SelectRandomDaysOfMonth(rng, dateutil.DaysInMonth(year, month.Time()), perMonth)
		for _, day := range days {
			if err := m.Mark(day); err != nil {
				logger.Warn("Failed to seed day", zap.Int("day", day), zap.Error(err))
			}
		}

		added += m.Count() - before
	}

	logger.Info("Demo attendance seeded",
		zap.Int("year", year),
		zap.Int("days_added", added))

	return added
}
