package transfer

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/username/attendance-tracker/internal/calendar"
	"github.com/username/attendance-tracker/internal/ledger"
)

// Header is the first line of every attendance CSV
const Header = "year,month,day"

var (
	// ErrEmptyImport is returned when the text has no data rows
	ErrEmptyImport = errors.New("CSV file is empty or missing data")
	// ErrInvalidHeader is returned when the first line is not the expected header
	ErrInvalidHeader = errors.New("invalid CSV header, expected 'year,month,day'")
)

// ImportResult counts how each data row was handled
type ImportResult struct {
	Imported   int `json:"imported"`
	Duplicates int `json:"duplicates"`
	Errors     int `json:"errors"`
}

// Message summarizes the import for the user
func (r ImportResult) Message() string {
	msg := fmt.Sprintf("Import complete. %d entries imported.", r.Imported)
	if r.Duplicates > 0 {
		suffix := "ies"
		if r.Duplicates == 1 {
			suffix = "y"
		}
		msg += fmt.Sprintf(" %d duplicate entr%s were skipped.", r.Duplicates, suffix)
	}
	if r.Errors > 0 {
		suffix := "s"
		if r.Errors == 1 {
			suffix = ""
		}
		msg += fmt.Sprintf(" %d row%s had errors and were skipped.", r.Errors, suffix)
	}
	return msg
}

// ExportCSV writes every ledger entry, in ledger order, as CSV text
func ExportCSV(l *ledger.Ledger) string {
	var b strings.Builder
	b.WriteString(Header)
	b.WriteByte('\n')

	l.GetAll().Each(func(_ string, entries []ledger.Entry) {
		for _, e := range entries {
			fmt.Fprintf(&b, "%d,%d,%d\n", e.Year, int(e.Month), e.Day)
		}
	})

	return b.String()
}

// ImportCSV merges CSV text into the ledger. Structural problems abort the
// import with no changes; bad rows are counted and skipped. Day values are
// only checked against 1..31, not against the month's length.
func ImportCSV(l *ledger.Ledger, text string) (ImportResult, error) {
	var result ImportResult

	lines := strings.Split(strings.TrimSpace(text), "\n")
	if len(lines) < 2 {
		return result, ErrEmptyImport
	}
	if strings.ToLower(strings.TrimSpace(lines[0])) != Header {
		return result, ErrInvalidHeader
	}

	history := l.GetAll()
	for _, raw := range lines[1:] {
		line := strings.TrimSpace(raw)
		if line == "" {
			continue
		}

		entry, ok := parseRow(line)
		if !ok {
			result.Errors++
			continue
		}

		key := ledger.MonthKey(entry.Year, entry.Month)
		bucket, _ := history.Get(key)
		if containsEntry(bucket, entry) {
			result.Duplicates++
			continue
		}

		history.Set(key, append(bucket, entry))
		result.Imported++
	}

	l.SetAll(history)
	return result, nil
}

func parseRow(line string) (ledger.Entry, bool) {
	parts := strings.Split(line, ",")
	if len(parts) != 3 {
		return ledger.Entry{}, false
	}

	var values [3]int
	for i, part := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil {
			return ledger.Entry{}, false
		}
		values[i] = n
	}

	year, month, day := values[0], calendar.StorageMonth(values[1]), values[2]
	if !month.Valid() || day < 1 || day > 31 {
		return ledger.Entry{}, false
	}

	return ledger.Entry{Day: day, Month: month, Year: year}, true
}

func containsEntry(entries []ledger.Entry, entry ledger.Entry) bool {
	for _, e := range entries {
		if e == entry {
			return true
		}
	}
	return false
}
