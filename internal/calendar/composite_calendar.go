package calendar

import (
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"
)

// CompositeCalendar layers an overlay calendar over a base calendar.
// A day is a workday only if both agree; holidays are the union of both.
type CompositeCalendar struct {
	base    Calendar
	overlay Calendar
	logger  *zap.Logger
}

// NewCompositeCalendar creates a new CompositeCalendar
func NewCompositeCalendar(base, overlay Calendar, logger *zap.Logger) *CompositeCalendar {
	return &CompositeCalendar{
		base:    base,
		overlay: overlay,
		logger:  logger,
	}
}

// IsWorkday checks if the given date is a working day in both calendars
func (cc *CompositeCalendar) IsWorkday(date time.Time) bool {
	return cc.base.IsWorkday(date) && cc.overlay.IsWorkday(date)
}

// Holidays returns the union of both calendars' holidays, sorted by date.
// When both name the same date the base calendar's name wins.
func (cc *CompositeCalendar) Holidays(year int) []Holiday {
	seen := make(map[string]bool)
	var holidays []Holiday

	for _, source := range []Calendar{cc.base, cc.overlay} {
		for _, h := range source.Holidays(year) {
			key := dateKey(h.Date)
			if seen[key] {
				continue
			}
			seen[key] = true
			holidays = append(holidays, h)
		}
	}

	sort.SliceStable(holidays, func(i, j int) bool {
		return holidays[i].Date.Before(holidays[j].Date)
	})
	return holidays
}

// HolidaysFor returns the holiday dates of year
func (cc *CompositeCalendar) HolidaysFor(year int) []time.Time {
	return holidayDates(cc.Holidays(year))
}

// BusinessDaysInMonth counts business days in the month
func (cc *CompositeCalendar) BusinessDaysInMonth(year int, month CalendarMonth) int {
	return countBusinessDays(year, month, cc.IsWorkday)
}

// GetMonthInfo returns calendar info for the entire month
func (cc *CompositeCalendar) GetMonthInfo(year int, month CalendarMonth) *MonthInfo {
	return buildMonthInfo(year, month, cc.IsWorkday, cc.Holidays(year))
}

// LoadOverlay loads the overlay calendar (if FileCalendar)
func (cc *CompositeCalendar) LoadOverlay() error {
	if fc, ok := cc.overlay.(*FileCalendar); ok {
		if err := fc.Load(); err != nil {
			return fmt.Errorf("failed to load overlay calendar: %w", err)
		}
		cc.logger.Info("Overlay calendar loaded successfully")
	}
	return nil
}
