package calendar

import (
	"time"

	"github.com/username/attendance-tracker/pkg/dateutil"
)

type fixedHoliday struct {
	month time.Month
	day   int
	name  string
}

// nationalHolidays is the paid holiday table. Landing of the 33 uses a fixed
// moved date rather than its weekday rule.
var nationalHolidays = []fixedHoliday{
	{time.January, 1, "New Year's Day"},
	{time.May, 1, "Labour Day"},
	{time.December, 25, "Christmas Day"},
	{time.January, 6, "Reyes"},
	{time.March, 3, "Carnival"},
	{time.March, 4, "Carnival"},
	{time.April, 18, "Landing of the 33"},
	{time.June, 19, "Artigas"},
	{time.July, 18, "Constitution Day"},
	{time.August, 25, "Independence Day"},
}

// BusinessCalendar counts Monday-Friday days that are not national holidays.
// It holds no state.
type BusinessCalendar struct{}

// NewBusinessCalendar creates a new BusinessCalendar
func NewBusinessCalendar() *BusinessCalendar {
	return &BusinessCalendar{}
}

// Holidays returns the named holidays of year, in table order
func (bc *BusinessCalendar) Holidays(year int) []Holiday {
	holidays := make([]Holiday, 0, len(nationalHolidays))
	for _, h := range nationalHolidays {
		holidays = append(holidays, Holiday{
			Date: time.Date(year, h.month, h.day, 0, 0, 0, 0, time.Local),
			Name: h.name,
		})
	}
	return holidays
}

// HolidaysFor returns the holiday dates of year
func (bc *BusinessCalendar) HolidaysFor(year int) []time.Time {
	return holidayDates(bc.Holidays(year))
}

// IsWorkday checks if the given date is a business day
func (bc *BusinessCalendar) IsWorkday(date time.Time) bool {
	if !dateutil.IsWeekday(date) {
		return false
	}
	for _, h := range nationalHolidays {
		if date.Month() == h.month && date.Day() == h.day {
			return false
		}
	}
	return true
}

// BusinessDaysInMonth counts business days in the month. Holidays are always
// taken from the same year as the month.
func (bc *BusinessCalendar) BusinessDaysInMonth(year int, month CalendarMonth) int {
	return countBusinessDays(year, month, bc.IsWorkday)
}

// GetMonthInfo returns calendar info for the entire month
func (bc *BusinessCalendar) GetMonthInfo(year int, month CalendarMonth) *MonthInfo {
	return buildMonthInfo(year, month, bc.IsWorkday, bc.Holidays(year))
}
