package calendar

import (
	"fmt"
	"time"
)

// DayType represents the type of day
type DayType int

const (
	DayTypeWorkday DayType = iota + 1
	DayTypeWeekend
	DayTypeHoliday
)

// String returns the name used in calendar files and API output
func (t DayType) String() string {
	switch t {
	case DayTypeWorkday:
		return "workday"
	case DayTypeWeekend:
		return "weekend"
	case DayTypeHoliday:
		return "holiday"
	default:
		return "unknown"
	}
}

// CalendarMonth is a 0-indexed month (0 = January), used for date arithmetic.
type CalendarMonth int

// StorageMonth is a 1-indexed month (1 = January), used for ledger buckets and entries.
type StorageMonth int

// Valid reports whether m is in 0..11
func (m CalendarMonth) Valid() bool { return m >= 0 && m <= 11 }

// Storage converts to the 1-indexed representation
func (m CalendarMonth) Storage() StorageMonth { return StorageMonth(m + 1) }

// Time converts to time.Month
func (m CalendarMonth) Time() time.Month { return time.Month(m + 1) }

// Valid reports whether m is in 1..12
func (m StorageMonth) Valid() bool { return m >= 1 && m <= 12 }

// Calendar converts to the 0-indexed representation
func (m StorageMonth) Calendar() CalendarMonth { return CalendarMonth(m - 1) }

// Time converts to time.Month
func (m StorageMonth) Time() time.Month { return time.Month(m) }

// MonthOf returns the 0-indexed month of t
func MonthOf(t time.Time) CalendarMonth {
	return CalendarMonth(t.Month() - 1)
}

// Holiday is a named non-working date
type Holiday struct {
	Date time.Time
	Name string
}

// DayInfo represents information about a specific day
type DayInfo struct {
	Date      time.Time
	Type      DayType
	IsWorkday bool
	Note      string
}

// MonthInfo represents calendar information for a month
type MonthInfo struct {
	Year     int
	Month    CalendarMonth
	WorkDays int
	Weekends int
	Holidays int
	Days     []DayInfo
}

// Calendar answers business-day questions for the attendance tracker
type Calendar interface {
	// IsWorkday checks if the given date is a business day
	IsWorkday(date time.Time) bool

	// Holidays returns the named holidays of a year
	Holidays(year int) []Holiday

	// HolidaysFor returns the holiday dates of a year
	HolidaysFor(year int) []time.Time

	// BusinessDaysInMonth counts business days in the month
	BusinessDaysInMonth(year int, month CalendarMonth) int

	// GetMonthInfo returns calendar info for the entire month
	GetMonthInfo(year int, month CalendarMonth) *MonthInfo
}

func dayKey(year int, month time.Month, day int) string {
	return fmt.Sprintf("%04d-%02d-%02d", year, month, day)
}

func dateKey(t time.Time) string {
	return dayKey(t.Year(), t.Month(), t.Day())
}

func holidayDates(holidays []Holiday) []time.Time {
	dates := make([]time.Time, len(holidays))
	for i, h := range holidays {
		dates[i] = h.Date
	}
	return dates
}

// countBusinessDays walks every day of the month and counts the ones isWorkday accepts.
func countBusinessDays(year int, month CalendarMonth, isWorkday func(time.Time) bool) int {
	if !month.Valid() {
		return 0
	}

	count := 0
	date := time.Date(year, month.Time(), 1, 0, 0, 0, 0, time.Local)
	for date.Month() == month.Time() {
		if isWorkday(date) {
			count++
		}
		date = date.AddDate(0, 0, 1)
	}
	return count
}

// buildMonthInfo classifies every day of a month. Non-working days that are
// listed in holidays are reported as holidays, the rest as weekends.
func buildMonthInfo(year int, month CalendarMonth, isWorkday func(time.Time) bool, holidays []Holiday) *MonthInfo {
	info := &MonthInfo{Year: year, Month: month, Days: []DayInfo{}}
	if !month.Valid() {
		return info
	}

	names := make(map[string]string, len(holidays))
	for _, h := range holidays {
		names[dateKey(h.Date)] = h.Name
	}

	date := time.Date(year, month.Time(), 1, 0, 0, 0, 0, time.Local)
	for date.Month() == month.Time() {
		day := DayInfo{Date: date, IsWorkday: isWorkday(date)}
		name, isHoliday := names[dateKey(date)]

		switch {
		case day.IsWorkday:
			day.Type = DayTypeWorkday
			info.WorkDays++
		case isHoliday:
			day.Type = DayTypeHoliday
			day.Note = name
			info.Holidays++
		default:
			day.Type = DayTypeWeekend
			info.Weekends++
		}

		info.Days = append(info.Days, day)
		date = date.AddDate(0, 0, 1)
	}

	return info
}
