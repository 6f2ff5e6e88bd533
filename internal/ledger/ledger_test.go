package ledger

import (
	"encoding/json"
	"errors"
	"reflect"
	"testing"

	"go.uber.org/zap"

	"github.com/username/attendance-tracker/internal/calendar"
	"github.com/username/attendance-tracker/internal/storage"
)

type failingStore struct {
	*storage.MemoryStore
	failWrites bool
	failReads  bool
}

func (f *failingStore) Get(key string) ([]byte, error) {
	if f.failReads {
		return nil, errors.New("disk unavailable")
	}
	return f.MemoryStore.Get(key)
}

func (f *failingStore) Set(key string, value []byte) error {
	if f.failWrites {
		return errors.New("quota exceeded")
	}
	return f.MemoryStore.Set(key, value)
}

func TestMonthKey(t *testing.T) {
	tests := []struct {
		year  int
		month int
		want  string
	}{
		{2024, 1, "2024-01"},
		{2024, 9, "2024-09"},
		{2024, 10, "2024-10"},
		{1999, 12, "1999-12"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			if got := MonthKey(tt.year, calendar.StorageMonth(tt.month)); got != tt.want {
				t.Errorf("MonthKey(%d, %d) = %s, want %s", tt.year, tt.month, got, tt.want)
			}
		})
	}
}

func TestLedger_SetAndGetMonth(t *testing.T) {
	store := storage.NewMemoryStore()
	l := New(store, zap.NewNop())

	if got := l.GetMonth(2024, 1); got == nil || len(got) != 0 {
		t.Fatalf("GetMonth() on empty ledger = %#v, want empty non-nil slice", got)
	}

	entries := []Entry{{Day: 15, Month: 1, Year: 2024}, {Day: 3, Month: 1, Year: 2024}}
	l.SetMonth(2024, 1, entries)

	got := l.GetMonth(2024, 1)
	if !reflect.DeepEqual(got, entries) {
		t.Fatalf("GetMonth() = %v, want %v", got, entries)
	}

	// Returned slices must not alias ledger state
	got[0].Day = 99
	entries[1].Day = 98
	if l.GetMonth(2024, 1)[0].Day != 15 || l.GetMonth(2024, 1)[1].Day != 3 {
		t.Error("ledger state changed through a returned or passed slice")
	}

	reloaded := New(store, zap.NewNop())
	if got := reloaded.GetMonth(2024, 1); len(got) != 2 || got[0].Day != 15 {
		t.Errorf("reloaded GetMonth() = %v", got)
	}
}

func TestLedger_ClearMonth(t *testing.T) {
	store := storage.NewMemoryStore()
	l := New(store, zap.NewNop())

	l.SetMonth(2024, 1, []Entry{{Day: 2, Month: 1, Year: 2024}})
	l.SetMonth(2024, 2, []Entry{{Day: 5, Month: 2, Year: 2024}})

	l.ClearMonth(2024, 1)
	if keys := l.Keys(); !reflect.DeepEqual(keys, []string{"2024-02"}) {
		t.Errorf("Keys() after ClearMonth = %v, want [2024-02]", keys)
	}

	// Absent key is a no-op
	l.ClearMonth(2030, 6)
	if l.GetAll().Len() != 1 {
		t.Errorf("GetAll().Len() = %d, want 1", l.GetAll().Len())
	}

	raw, _ := store.Get(storage.KeyAttendanceHistory)
	if string(raw) != `{"2024-02":[{"day":5,"month":2,"year":2024}]}` {
		t.Errorf("persisted = %s", raw)
	}
}

func TestLedger_SetAllAndClearAll(t *testing.T) {
	store := storage.NewMemoryStore()
	l := New(store, zap.NewNop())

	h := NewHistory()
	h.Set("2023-12", []Entry{{Day: 1, Month: 12, Year: 2023}})
	h.Set("2024-01", []Entry{{Day: 2, Month: 1, Year: 2024}})
	l.SetAll(h)

	// Mutating the argument afterwards does not leak in
	h.Delete("2023-12")
	if l.GetAll().Len() != 2 {
		t.Fatalf("SetAll() kept a reference to its argument")
	}

	l.ClearAll()
	if l.GetAll().Len() != 0 {
		t.Errorf("ClearAll() left %d buckets", l.GetAll().Len())
	}
	raw, _ := store.Get(storage.KeyAttendanceHistory)
	if string(raw) != `{}` {
		t.Errorf("persisted after ClearAll = %s, want {}", raw)
	}
}

func TestLedger_CorruptOrUnreadableStorage(t *testing.T) {
	tests := []struct {
		name  string
		store storage.Store
	}{
		{"corrupt JSON", func() storage.Store {
			s := storage.NewMemoryStore()
			s.Set(storage.KeyAttendanceHistory, []byte(`{"2024-01": [`))
			return s
		}()},
		{"wrong shape", func() storage.Store {
			s := storage.NewMemoryStore()
			s.Set(storage.KeyAttendanceHistory, []byte(`[1,2,3]`))
			return s
		}()},
		{"read failure", &failingStore{MemoryStore: storage.NewMemoryStore(), failReads: true}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := New(tt.store, zap.NewNop())
			if l.GetAll().Len() != 0 {
				t.Errorf("expected empty ledger, got %d buckets", l.GetAll().Len())
			}
		})
	}
}

func TestLedger_WriteFailureKeepsMemoryState(t *testing.T) {
	store := &failingStore{MemoryStore: storage.NewMemoryStore(), failWrites: true}
	l := New(store, zap.NewNop())

	l.SetMonth(2024, 3, []Entry{{Day: 4, Month: 3, Year: 2024}})

	if got := l.GetMonth(2024, 3); len(got) != 1 {
		t.Errorf("in-memory state lost after write failure: %v", got)
	}
	if _, err := store.MemoryStore.Get(storage.KeyAttendanceHistory); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("store should be untouched, got err = %v", err)
	}
}

func TestHistory_JSONKeepsKeyOrder(t *testing.T) {
	input := `{"2024-03":[{"day":1,"month":3,"year":2024}],"2023-11":[],"2024-01":[{"day":9,"month":1,"year":2024}]}`

	h := NewHistory()
	if err := json.Unmarshal([]byte(input), h); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}

	want := []string{"2024-03", "2023-11", "2024-01"}
	if keys := h.Keys(); !reflect.DeepEqual(keys, want) {
		t.Fatalf("Keys() = %v, want %v", keys, want)
	}

	out, err := json.Marshal(h)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	if string(out) != input {
		t.Errorf("Marshal() = %s, want %s", out, input)
	}
}

func TestHistory_SetKeepsPosition(t *testing.T) {
	h := NewHistory()
	h.Set("a", nil)
	h.Set("b", nil)
	h.Set("a", []Entry{{Day: 1}})
	h.Set("c", nil)

	if keys := h.Keys(); !reflect.DeepEqual(keys, []string{"a", "b", "c"}) {
		t.Errorf("Keys() = %v, want [a b c]", keys)
	}

	h.Delete("b")
	h.Delete("missing")
	if keys := h.Keys(); !reflect.DeepEqual(keys, []string{"a", "c"}) {
		t.Errorf("Keys() after Delete = %v, want [a c]", keys)
	}

	var visited []string
	h.Each(func(key string, _ []Entry) { visited = append(visited, key) })
	if !reflect.DeepEqual(visited, []string{"a", "c"}) {
		t.Errorf("Each visited %v", visited)
	}
}
