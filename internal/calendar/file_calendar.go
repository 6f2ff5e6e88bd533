package calendar

import (
	"bufio"
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/username/attendance-tracker/pkg/dateutil"
)

// FileCalendar implements Calendar using a local text file of company days.
// Days not listed in the file follow the plain Monday-Friday rule.
type FileCalendar struct {
	filePath string
	logger   *zap.Logger
	days     map[string]DayInfo // key: "YYYY-MM-DD"
}

// NewFileCalendar creates a new FileCalendar instance
func NewFileCalendar(filePath string, logger *zap.Logger) *FileCalendar {
	return &FileCalendar{
		filePath: filePath,
		logger:   logger,
		days:     make(map[string]DayInfo),
	}
}

// Load loads calendar data from file
func (fc *FileCalendar) Load() error {
	file, err := os.Open(fc.filePath)
	if err != nil {
		return fmt.Errorf("failed to open calendar file: %w", err)
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		// Format: YYYY-MM-DD type [note]
		// Example: 2025-12-24 holiday Company shutdown
		parts := strings.SplitN(line, " ", 3)
		if len(parts) < 2 {
			fc.logger.Warn("Invalid line format", zap.String("line", line))
			continue
		}

		date, err := time.ParseInLocation("2006-01-02", parts[0], time.Local)
		if err != nil {
			fc.logger.Warn("Failed to parse date", zap.String("date", parts[0]), zap.Error(err))
			continue
		}

		day := DayInfo{Date: date}
		switch parts[1] {
		case "workday":
			day.Type = DayTypeWorkday
			day.IsWorkday = true
		case "weekend":
			day.Type = DayTypeWeekend
		case "holiday":
			day.Type = DayTypeHoliday
		default:
			fc.logger.Warn("Unknown day type", zap.String("type", parts[1]))
			continue
		}
		if len(parts) == 3 {
			day.Note = strings.TrimSpace(parts[2])
		}

		fc.days[dateKey(date)] = day
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("error reading calendar file: %w", err)
	}

	fc.logger.Info("Calendar file loaded",
		zap.String("file", fc.filePath),
		zap.Int("days", len(fc.days)))

	return nil
}

// IsWorkday checks if the given date is a working day
func (fc *FileCalendar) IsWorkday(date time.Time) bool {
	if day, ok := fc.days[dateKey(date)]; ok {
		return day.IsWorkday
	}
	return dateutil.IsWeekday(date)
}

// Holidays returns the file's holidays in year, sorted by date
func (fc *FileCalendar) Holidays(year int) []Holiday {
	var holidays []Holiday
	for _, day := range fc.days {
		if day.Type == DayTypeHoliday && day.Date.Year() == year {
			holidays = append(holidays, Holiday{Date: day.Date, Name: day.Note})
		}
	}
	sort.Slice(holidays, func(i, j int) bool {
		return holidays[i].Date.Before(holidays[j].Date)
	})
	return holidays
}

// HolidaysFor returns the holiday dates of year
func (fc *FileCalendar) HolidaysFor(year int) []time.Time {
	return holidayDates(fc.Holidays(year))
}

// BusinessDaysInMonth counts business days in the month
func (fc *FileCalendar) BusinessDaysInMonth(year int, month CalendarMonth) int {
	return countBusinessDays(year, month, fc.IsWorkday)
}

// GetMonthInfo returns calendar info for the entire month
func (fc *FileCalendar) GetMonthInfo(year int, month CalendarMonth) *MonthInfo {
	return buildMonthInfo(year, month, fc.IsWorkday, fc.Holidays(year))
}
