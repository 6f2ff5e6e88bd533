package transfer

import (
	"fmt"
	"io"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/username/attendance-tracker/internal/ledger"
	"github.com/username/attendance-tracker/internal/stats"
)

const (
	attendanceSheet = "Attendance"
	weekdaySheet    = "Weekdays"
)

// ExportXLSX writes the ledger as a workbook: one row per entry on the
// Attendance sheet and weekday totals on the Weekdays sheet.
func ExportXLSX(l *ledger.Ledger, w io.Writer) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", attendanceSheet); err != nil {
		return fmt.Errorf("failed to rename sheet: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#E2E8F0"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	if err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}

	if err := writeRow(f, attendanceSheet, 1, []interface{}{"year", "month", "day", "weekday"}); err != nil {
		return err
	}
	f.SetRowStyle(attendanceSheet, 1, 1, headerStyle)

	row := 2
	var writeErr error
	l.GetAll().Each(func(_ string, entries []ledger.Entry) {
		for _, e := range entries {
			if writeErr != nil {
				return
			}
			weekday := time.Date(e.Year, e.Month.Time(), e.Day, 0, 0, 0, 0, time.Local).Weekday()
			writeErr = writeRow(f, attendanceSheet, row, []interface{}{e.Year, int(e.Month), e.Day, weekday.String()})
			row++
		}
	})
	if writeErr != nil {
		return writeErr
	}

	if _, err := f.NewSheet(weekdaySheet); err != nil {
		return fmt.Errorf("failed to create sheet: %w", err)
	}
	if err := writeRow(f, weekdaySheet, 1, []interface{}{"weekday", "count"}); err != nil {
		return err
	}
	f.SetRowStyle(weekdaySheet, 1, 1, headerStyle)

	totals := stats.ByWeekday(l)
	for i, wd := range stats.Weekdays {
		if err := writeRow(f, weekdaySheet, i+2, []interface{}{wd.String(), totals[wd]}); err != nil {
			return err
		}
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

func writeRow(f *excelize.File, sheet string, row int, values []interface{}) error {
	for i, v := range values {
		cell, err := excelize.CoordinatesToCellName(i+1, row)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(sheet, cell, v); err != nil {
			return fmt.Errorf("failed to set %s!%s: %w", sheet, cell, err)
		}
	}
	return nil
}
