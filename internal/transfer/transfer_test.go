package transfer

import (
	"bytes"
	"errors"
	"reflect"
	"sort"
	"testing"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/username/attendance-tracker/internal/ledger"
	"github.com/username/attendance-tracker/internal/storage"
)

func newLedger() (*ledger.Ledger, *storage.MemoryStore) {
	store := storage.NewMemoryStore()
	return ledger.New(store, zap.NewNop()), store
}

func TestImportCSV_Counts(t *testing.T) {
	l, _ := newLedger()

	result, err := ImportCSV(l, "year,month,day\n2024,1,15\n2024,1,15\n2024,13,1\n")
	if err != nil {
		t.Fatalf("ImportCSV() error = %v", err)
	}

	want := ImportResult{Imported: 1, Duplicates: 1, Errors: 1}
	if result != want {
		t.Errorf("ImportCSV() = %+v, want %+v", result, want)
	}
	if got := l.GetMonth(2024, 1); len(got) != 1 || got[0] != (ledger.Entry{Day: 15, Month: 1, Year: 2024}) {
		t.Errorf("bucket 2024-01 = %v", got)
	}
}

func TestImportCSV_RowErrors(t *testing.T) {
	tests := []struct {
		name string
		row  string
		want ImportResult
	}{
		{"Too few fields", "2024,1", ImportResult{Errors: 1}},
		{"Too many fields", "2024,1,2,3", ImportResult{Errors: 1}},
		{"Non numeric", "2024,jan,2", ImportResult{Errors: 1}},
		{"Month zero", "2024,0,2", ImportResult{Errors: 1}},
		{"Day zero", "2024,1,0", ImportResult{Errors: 1}},
		{"Day 32", "2024,1,32", ImportResult{Errors: 1}},
		{"Feb 30 passes coarse check", "2024,2,30", ImportResult{Imported: 1}},
		{"Whitespace and CRLF", " 2024, 3 ,4 \r", ImportResult{Imported: 1}},
		{"Blank line skipped", "   ", ImportResult{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l, _ := newLedger()
			result, err := ImportCSV(l, "year,month,day\n2024,5,1\n"+tt.row+"\n")
			if err != nil {
				t.Fatalf("ImportCSV() error = %v", err)
			}
			tt.want.Imported++ // the 2024,5,1 row
			if result != tt.want {
				t.Errorf("ImportCSV() = %+v, want %+v", result, tt.want)
			}
		})
	}
}

func TestImportCSV_StructuralErrors(t *testing.T) {
	tests := []struct {
		name string
		text string
		want error
	}{
		{"Empty", "", ErrEmptyImport},
		{"Header only", "year,month,day\n", ErrEmptyImport},
		{"Whitespace", "  \n\n ", ErrEmptyImport},
		{"Wrong header", "day,month,year\n1,1,2024", ErrInvalidHeader},
		{"Missing header", "2024,1,1\n2024,1,2", ErrInvalidHeader},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l, store := newLedger()
			result, err := ImportCSV(l, tt.text)
			if !errors.Is(err, tt.want) {
				t.Fatalf("ImportCSV() error = %v, want %v", err, tt.want)
			}
			if result != (ImportResult{}) {
				t.Errorf("ImportCSV() result = %+v, want zero", result)
			}
			if _, err := store.Get(storage.KeyAttendanceHistory); !errors.Is(err, storage.ErrNotFound) {
				t.Error("failed import wrote to storage")
			}
		})
	}
}

func TestImportCSV_HeaderIsCaseInsensitive(t *testing.T) {
	l, _ := newLedger()
	result, err := ImportCSV(l, "  YEAR,Month,DAY  \n2024,6,3")
	if err != nil {
		t.Fatalf("ImportCSV() error = %v", err)
	}
	if result.Imported != 1 {
		t.Errorf("Imported = %d, want 1", result.Imported)
	}
}

func TestImportCSV_MergesWithExisting(t *testing.T) {
	l, _ := newLedger()
	l.SetMonth(2024, 1, []ledger.Entry{{Day: 3, Month: 1, Year: 2024}})

	result, err := ImportCSV(l, "year,month,day\n2024,1,3\n2024,1,4\n2023,12,29\n")
	if err != nil {
		t.Fatalf("ImportCSV() error = %v", err)
	}
	if result != (ImportResult{Imported: 2, Duplicates: 1}) {
		t.Errorf("ImportCSV() = %+v", result)
	}
	if keys := l.Keys(); !reflect.DeepEqual(keys, []string{"2024-01", "2023-12"}) {
		t.Errorf("Keys() = %v", keys)
	}
}

func TestExportCSV(t *testing.T) {
	l, _ := newLedger()
	l.SetMonth(2024, 2, []ledger.Entry{{Day: 9, Month: 2, Year: 2024}, {Day: 1, Month: 2, Year: 2024}})
	l.SetMonth(2024, 1, []ledger.Entry{{Day: 31, Month: 1, Year: 2024}})

	want := "year,month,day\n2024,2,9\n2024,2,1\n2024,1,31\n"
	if got := ExportCSV(l); got != want {
		t.Errorf("ExportCSV() = %q, want %q", got, want)
	}

	empty, _ := newLedger()
	if got := ExportCSV(empty); got != "year,month,day\n" {
		t.Errorf("ExportCSV(empty) = %q", got)
	}
}

func TestExportImportRoundTrip(t *testing.T) {
	src, _ := newLedger()
	src.SetMonth(2023, 11, []ledger.Entry{{Day: 30, Month: 11, Year: 2023}})
	src.SetMonth(2024, 1, []ledger.Entry{{Day: 2, Month: 1, Year: 2024}, {Day: 15, Month: 1, Year: 2024}})
	src.SetMonth(2024, 7, []ledger.Entry{{Day: 18, Month: 7, Year: 2024}})

	dst, _ := newLedger()
	result, err := ImportCSV(dst, ExportCSV(src))
	if err != nil {
		t.Fatalf("ImportCSV() error = %v", err)
	}
	if result != (ImportResult{Imported: 4}) {
		t.Errorf("ImportCSV() = %+v, want 4 imported", result)
	}

	if !reflect.DeepEqual(entrySet(dst), entrySet(src)) {
		t.Errorf("round trip entries = %v, want %v", entrySet(dst), entrySet(src))
	}
	if !reflect.DeepEqual(dst.Keys(), src.Keys()) {
		t.Errorf("round trip keys = %v, want %v", dst.Keys(), src.Keys())
	}
}

func entrySet(l *ledger.Ledger) []ledger.Entry {
	var all []ledger.Entry
	l.GetAll().Each(func(_ string, entries []ledger.Entry) {
		all = append(all, entries...)
	})
	sort.Slice(all, func(i, j int) bool {
		a, b := all[i], all[j]
		if a.Year != b.Year {
			return a.Year < b.Year
		}
		if a.Month != b.Month {
			return a.Month < b.Month
		}
		return a.Day < b.Day
	})
	return all
}

func TestImportResult_Message(t *testing.T) {
	tests := []struct {
		result ImportResult
		want   string
	}{
		{ImportResult{Imported: 3}, "Import complete. 3 entries imported."},
		{ImportResult{Imported: 1, Duplicates: 1, Errors: 1},
			"Import complete. 1 entries imported. 1 duplicate entry were skipped. 1 row had errors and were skipped."},
		{ImportResult{Duplicates: 2, Errors: 4},
			"Import complete. 0 entries imported. 2 duplicate entries were skipped. 4 rows had errors and were skipped."},
	}

	for _, tt := range tests {
		if got := tt.result.Message(); got != tt.want {
			t.Errorf("Message() = %q, want %q", got, tt.want)
		}
	}
}

func TestExportXLSX(t *testing.T) {
	l, _ := newLedger()
	l.SetMonth(2024, 1, []ledger.Entry{{Day: 15, Month: 1, Year: 2024}, {Day: 16, Month: 1, Year: 2024}})

	var buf bytes.Buffer
	if err := ExportXLSX(l, &buf); err != nil {
		t.Fatalf("ExportXLSX() error = %v", err)
	}

	f, err := excelize.OpenReader(&buf)
	if err != nil {
		t.Fatalf("OpenReader() error = %v", err)
	}
	defer f.Close()

	rows, err := f.GetRows(attendanceSheet)
	if err != nil {
		t.Fatalf("GetRows() error = %v", err)
	}
	want := [][]string{
		{"year", "month", "day", "weekday"},
		{"2024", "1", "15", "Monday"},
		{"2024", "1", "16", "Tuesday"},
	}
	if !reflect.DeepEqual(rows, want) {
		t.Errorf("Attendance rows = %v, want %v", rows, want)
	}

	monday, err := f.GetCellValue(weekdaySheet, "B3")
	if err != nil {
		t.Fatalf("GetCellValue() error = %v", err)
	}
	if monday != "1" {
		t.Errorf("Weekdays!B3 (Monday) = %s, want 1", monday)
	}
}
