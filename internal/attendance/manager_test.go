package attendance

import (
	"errors"
	"math/rand"
	"reflect"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/username/attendance-tracker/internal/calendar"
	"github.com/username/attendance-tracker/internal/ledger"
	"github.com/username/attendance-tracker/internal/storage"
)

func newTestLedger(t *testing.T) (*ledger.Ledger, *storage.MemoryStore) {
	t.Helper()
	store := storage.NewMemoryStore()
	return ledger.New(store, zap.NewNop()), store
}

func newTestManager(t *testing.T, l *ledger.Ledger, year int, month calendar.CalendarMonth) *Manager {
	t.Helper()
	return NewManager(year, month, l, calendar.NewBusinessCalendar(), zap.NewNop())
}

func TestNewManager_Defaults(t *testing.T) {
	l, _ := newTestLedger(t)
	m := newTestManager(t, l, 2024, 0)

	if m.BusinessDays() != 22 {
		t.Errorf("BusinessDays() = %d, want 22", m.BusinessDays())
	}
	if m.RequiredCount() != 12 {
		t.Errorf("RequiredCount() = %d, want 12 (floor(22*0.55))", m.RequiredCount())
	}
	if m.Count() != 0 {
		t.Errorf("Count() = %d, want 0", m.Count())
	}
	if m.StorageMonth() != 1 || m.Month() != 0 {
		t.Errorf("month representations = (%d, %d), want (0, 1)", m.Month(), m.StorageMonth())
	}
	if m.Key() != "2024-01" {
		t.Errorf("Key() = %s, want 2024-01", m.Key())
	}
}

func TestManager_MarkWritesStorageMonth(t *testing.T) {
	l, _ := newTestLedger(t)
	m := newTestManager(t, l, 2024, 0)

	if err := m.Mark(15); err != nil {
		t.Fatalf("Mark() error = %v", err)
	}

	// January is calendar month 0 but bucket 1
	got := l.GetMonth(2024, 1)
	want := []ledger.Entry{{Day: 15, Month: 1, Year: 2024}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("ledger bucket 2024-01 = %v, want %v", got, want)
	}
	if len(l.GetMonth(2024, 0)) != 0 {
		t.Error("entry written to bucket 2024-00")
	}
	if keys := l.Keys(); !reflect.DeepEqual(keys, []string{"2024-01"}) {
		t.Errorf("Keys() = %v", keys)
	}
}

func TestManager_MarkIsIdempotent(t *testing.T) {
	l, _ := newTestLedger(t)
	m := newTestManager(t, l, 2024, 2)

	for day := 1; day <= 31; day++ {
		before := m.Count()
		if err := m.Mark(day); err != nil {
			t.Fatalf("Mark(%d) error = %v", day, err)
		}
		if !m.HasMark(day) {
			t.Errorf("HasMark(%d) = false after Mark", day)
		}
		if m.Count() != before+1 {
			t.Errorf("Count() = %d after marking %d, want %d", m.Count(), day, before+1)
		}

		if err := m.Mark(day); err != nil {
			t.Fatalf("second Mark(%d) error = %v", day, err)
		}
		if m.Count() != before+1 {
			t.Errorf("Count() changed on repeated Mark(%d)", day)
		}
	}
}

func TestManager_MarkRejectsInvalidDates(t *testing.T) {
	tests := []struct {
		name  string
		year  int
		month calendar.CalendarMonth
		day   int
	}{
		{"Day zero", 2024, 0, 0},
		{"Day 32", 2024, 0, 32},
		{"April 31", 2024, 3, 31},
		{"Feb 30 leap year", 2024, 1, 30},
		{"Feb 29 common year", 2023, 1, 29},
		{"Year too early", 1899, 0, 1},
		{"Year too late", 2101, 0, 1},
		{"Month 12", 2024, 12, 1},
		{"Month -1", 2024, -1, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l, store := newTestLedger(t)
			m := newTestManager(t, l, tt.year, tt.month)

			err := m.Mark(tt.day)
			if !errors.Is(err, ErrInvalidDate) {
				t.Fatalf("Mark(%d) error = %v, want ErrInvalidDate", tt.day, err)
			}
			if m.Count() != 0 {
				t.Errorf("Count() = %d after rejected Mark", m.Count())
			}
			if _, err := store.Get(storage.KeyAttendanceHistory); !errors.Is(err, storage.ErrNotFound) {
				t.Error("rejected Mark persisted state")
			}
		})
	}

	l, _ := newTestLedger(t)
	if err := newTestManager(t, l, 2024, 1).Mark(29); err != nil {
		t.Errorf("Mark(29) in February 2024 error = %v", err)
	}
}

func TestManager_MarkUnmarkRoundTrip(t *testing.T) {
	l, _ := newTestLedger(t)
	m := newTestManager(t, l, 2024, 4)

	m.Mark(3)
	m.Mark(9)
	before := l.GetMonth(2024, 5)

	if err := m.Mark(20); err != nil {
		t.Fatalf("Mark() error = %v", err)
	}
	m.Unmark(20)

	if after := l.GetMonth(2024, 5); !reflect.DeepEqual(after, before) {
		t.Errorf("bucket after mark/unmark = %v, want %v", after, before)
	}

	// Unmarking an absent day is a no-op
	m.Unmark(25)
	if m.Count() != 2 {
		t.Errorf("Count() = %d, want 2", m.Count())
	}
}

func TestManager_Toggle(t *testing.T) {
	l, _ := newTestLedger(t)
	m := newTestManager(t, l, 2024, 0)

	if err := m.Toggle(10); err != nil {
		t.Fatalf("Toggle() error = %v", err)
	}
	if !m.HasMark(10) {
		t.Error("Toggle() did not mark")
	}
	if err := m.Toggle(10); err != nil {
		t.Fatalf("Toggle() error = %v", err)
	}
	if m.HasMark(10) {
		t.Error("Toggle() did not unmark")
	}
	if err := m.Toggle(40); !errors.Is(err, ErrInvalidDate) {
		t.Errorf("Toggle(40) error = %v, want ErrInvalidDate", err)
	}
}

func TestManager_ClearDeletesBucket(t *testing.T) {
	l, _ := newTestLedger(t)
	jan := newTestManager(t, l, 2024, 0)
	feb := newTestManager(t, l, 2024, 1)

	jan.Mark(2)
	feb.Mark(5)
	jan.Clear()

	if jan.Count() != 0 {
		t.Errorf("Count() after Clear = %d", jan.Count())
	}
	if keys := l.Keys(); !reflect.DeepEqual(keys, []string{"2024-02"}) {
		t.Errorf("Keys() after Clear = %v, want [2024-02]", keys)
	}
}

func TestManager_MonthIsolation(t *testing.T) {
	l, _ := newTestLedger(t)
	jan := newTestManager(t, l, 2024, 0)
	feb := newTestManager(t, l, 2024, 1)

	if err := jan.Mark(15); err != nil {
		t.Fatalf("Mark() error = %v", err)
	}

	if feb.HasMark(15) {
		t.Error("February tracker sees January's mark")
	}
	if newTestManager(t, l, 2024, 1).HasMark(15) {
		t.Error("fresh February tracker sees January's mark")
	}
	if !newTestManager(t, l, 2024, 0).HasMark(15) {
		t.Error("fresh January tracker lost the mark")
	}
	if newTestManager(t, l, 2025, 0).HasMark(15) {
		t.Error("January 2025 tracker sees January 2024's mark")
	}
}

func TestManager_SetGoalPercent(t *testing.T) {
	l, _ := newTestLedger(t)
	m := newTestManager(t, l, 2024, 0)

	for pct := 0; pct <= 100; pct++ {
		if err := m.SetGoalPercent(pct); err != nil {
			t.Fatalf("SetGoalPercent(%d) error = %v", pct, err)
		}
		if want := m.BusinessDays() * pct / 100; m.RequiredCount() != want {
			t.Errorf("SetGoalPercent(%d): RequiredCount() = %d, want %d", pct, m.RequiredCount(), want)
		}
	}

	m.SetGoalPercent(50)
	for _, pct := range []int{-1, 101, 1000} {
		if err := m.SetGoalPercent(pct); !errors.Is(err, ErrInvalidGoal) {
			t.Errorf("SetGoalPercent(%d) error = %v, want ErrInvalidGoal", pct, err)
		}
	}
	if m.RequiredCount() != 11 {
		t.Errorf("rejected goal changed RequiredCount() to %d", m.RequiredCount())
	}
}

func TestManager_GoalPercentIsDerived(t *testing.T) {
	l, _ := newTestLedger(t)
	m := newTestManager(t, l, 2024, 0)

	tests := []struct {
		set  int
		want int
	}{
		{55, 55}, // 12/22 = 54.5 -> 55
		{60, 59}, // 13/22 = 59.09 -> 59
		{0, 0},
		{100, 100},
		{33, 32}, // 7/22 = 31.8 -> 32
	}

	for _, tt := range tests {
		m.SetGoalPercent(tt.set)
		if got := m.GoalPercent(); got != tt.want {
			t.Errorf("SetGoalPercent(%d): GoalPercent() = %d, want %d", tt.set, got, tt.want)
		}
	}
}

func TestManager_MarkDate(t *testing.T) {
	l, _ := newTestLedger(t)
	m := newTestManager(t, l, 2024, 6)

	if err := m.MarkDate(time.Date(2024, time.July, 18, 9, 30, 0, 0, time.Local)); err != nil {
		t.Fatalf("MarkDate() error = %v", err)
	}
	if !m.HasMark(18) {
		t.Error("MarkDate() did not mark day 18")
	}

	err := m.MarkDate(time.Date(2024, time.August, 1, 0, 0, 0, 0, time.Local))
	if !errors.Is(err, ErrWrongMonth) {
		t.Errorf("MarkDate(August) error = %v, want ErrWrongMonth", err)
	}
}

func TestManager_Progress(t *testing.T) {
	l, _ := newTestLedger(t)
	m := newTestManager(t, l, 2024, 0)

	for day := 2; day <= 12; day++ {
		m.Mark(day)
	}

	p := m.Progress()
	if p.Reached || p.Remaining != 1 || p.Count != 11 || p.Required != 12 {
		t.Fatalf("Progress() = %+v", p)
	}
	if msg := p.Message(); msg != "Keep going! You need 1 more day to reach your goal." {
		t.Errorf("Message() = %q", msg)
	}
	if line := p.GoalLine(); line != "Attendance Goal (55%): 12 days" {
		t.Errorf("GoalLine() = %q", line)
	}

	m.Mark(15)
	if p := m.Progress(); !p.Reached || p.Remaining != 0 {
		t.Errorf("Progress() after reaching goal = %+v", p)
	}
}

func TestSeed(t *testing.T) {
	l, _ := newTestLedger(t)
	rng := rand.New(rand.NewSource(1))

	added := Seed(l, calendar.NewBusinessCalendar(), 2024, DemoDaysPerMonth, rng, zap.NewNop())
	if added != 12*DemoDaysPerMonth {
		t.Errorf("Seed() added %d, want %d", added, 12*DemoDaysPerMonth)
	}

	for month := calendar.StorageMonth(1); month <= 12; month++ {
		entries := l.GetMonth(2024, month)
		if len(entries) != DemoDaysPerMonth {
			t.Errorf("month %d has %d entries", month, len(entries))
		}
		for _, e := range entries {
			if e.Month != month || e.Year != 2024 {
				t.Errorf("entry %+v stored in bucket %d", e, month)
			}
		}
	}
}
