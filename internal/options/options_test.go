package options

import (
	"errors"
	"testing"

	"go.uber.org/zap"

	"github.com/username/attendance-tracker/internal/storage"
)

type brokenStore struct {
	*storage.MemoryStore
}

func (brokenStore) Set(string, []byte) error {
	return errors.New("quota exceeded")
}

func TestNewManager_Defaults(t *testing.T) {
	m := NewManager(storage.NewMemoryStore(), zap.NewNop())

	if got := m.Options(); got != Defaults() {
		t.Errorf("Options() = %+v, want defaults", got)
	}
	if m.Options().AttendanceGoal != 55 {
		t.Errorf("AttendanceGoal = %d, want 55", m.Options().AttendanceGoal)
	}
}

func TestNewManager_MergesSavedFields(t *testing.T) {
	tests := []struct {
		name  string
		saved string
		want  Options
	}{
		{
			"Only goal saved",
			`{"attendanceGoal":70}`,
			Options{Background: "#fffbf7", Foreground: "#45372b", Accent: "#df7020", AttendanceGoal: 70},
		},
		{
			"Colors saved",
			`{"background":"#000","accent":"#123456"}`,
			Options{Background: "#000", Foreground: "#45372b", Accent: "#123456", AttendanceGoal: 55},
		},
		{
			"Invalid saved values ignored",
			`{"background":"red","attendanceGoal":150}`,
			Defaults(),
		},
		{
			"Unknown fields ignored",
			`{"theme":"matrix","attendanceGoal":0}`,
			Options{Background: "#fffbf7", Foreground: "#45372b", Accent: "#df7020", AttendanceGoal: 0},
		},
		{
			"Corrupt JSON",
			`{"attendanceGoal":`,
			Defaults(),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := storage.NewMemoryStore()
			store.Set(storage.KeyCustomOptions, []byte(tt.saved))

			m := NewManager(store, zap.NewNop())
			if got := m.Options(); got != tt.want {
				t.Errorf("Options() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestManager_UpdatePersists(t *testing.T) {
	store := storage.NewMemoryStore()
	m := NewManager(store, zap.NewNop())

	if err := m.Update(func(o *Options) { o.Accent = "#abc" }); err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	if err := m.SetGoal(80); err != nil {
		t.Fatalf("SetGoal() error = %v", err)
	}

	reloaded := NewManager(store, zap.NewNop())
	if got := reloaded.Options(); got.Accent != "#abc" || got.AttendanceGoal != 80 {
		t.Errorf("reloaded Options() = %+v", got)
	}
}

func TestManager_UpdateValidation(t *testing.T) {
	tests := []struct {
		name string
		fn   func(*Options)
		want error
	}{
		{"Bad background", func(o *Options) { o.Background = "white" }, ErrInvalidColor},
		{"Four hex digits", func(o *Options) { o.Foreground = "#abcd" }, ErrInvalidColor},
		{"Missing hash", func(o *Options) { o.Accent = "abcdef" }, ErrInvalidColor},
		{"Goal too high", func(o *Options) { o.AttendanceGoal = 101 }, ErrInvalidGoal},
		{"Goal negative", func(o *Options) { o.AttendanceGoal = -5 }, ErrInvalidGoal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := NewManager(storage.NewMemoryStore(), zap.NewNop())
			if err := m.Update(tt.fn); !errors.Is(err, tt.want) {
				t.Fatalf("Update() error = %v, want %v", err, tt.want)
			}
			if m.Options() != Defaults() {
				t.Errorf("rejected update changed options to %+v", m.Options())
			}
		})
	}
}

func TestManager_ApplyTheme(t *testing.T) {
	m := NewManager(storage.NewMemoryStore(), zap.NewNop())
	m.SetGoal(65)

	if err := m.ApplyTheme("dracula"); err != nil {
		t.Fatalf("ApplyTheme() error = %v", err)
	}
	want := Options{Background: "#282a36", Foreground: "#f8f8f2", Accent: "#f44336", AttendanceGoal: 65}
	if got := m.Options(); got != want {
		t.Errorf("Options() = %+v, want %+v", got, want)
	}

	if err := m.ApplyTheme("solarized"); !errors.Is(err, ErrUnknownTheme) {
		t.Errorf("ApplyTheme(solarized) error = %v, want ErrUnknownTheme", err)
	}
}

func TestThemesAreValid(t *testing.T) {
	if len(Themes) != 10 {
		t.Errorf("len(Themes) = %d, want 10", len(Themes))
	}
	for _, theme := range Themes {
		o := Options{Background: theme.Background, Foreground: theme.Foreground, Accent: theme.Accent}
		if err := o.Validate(); err != nil {
			t.Errorf("theme %s invalid: %v", theme.Name, err)
		}
	}
}

func TestManager_Reset(t *testing.T) {
	store := storage.NewMemoryStore()
	m := NewManager(store, zap.NewNop())
	m.ApplyTheme("matrix")
	m.Reset()

	if m.Options() != Defaults() {
		t.Errorf("Options() after Reset = %+v", m.Options())
	}
	if NewManager(store, zap.NewNop()).Options() != Defaults() {
		t.Error("Reset was not persisted")
	}
}

func TestManager_WriteFailureKeepsMemoryState(t *testing.T) {
	m := NewManager(brokenStore{storage.NewMemoryStore()}, zap.NewNop())

	if err := m.SetGoal(90); err != nil {
		t.Fatalf("SetGoal() error = %v, storage errors must not surface", err)
	}
	if m.Options().AttendanceGoal != 90 {
		t.Errorf("AttendanceGoal = %d, want 90", m.Options().AttendanceGoal)
	}
}

func TestProgressBackground(t *testing.T) {
	tests := []struct {
		background string
		want       string
	}{
		{"#fffbf7", "#ececec"},
		{"#000", "#000000"},
		{"#ffffff", "#ecf0f4"},
	}

	for _, tt := range tests {
		o := Options{Background: tt.background}
		if got := o.ProgressBackground(); got != tt.want {
			t.Errorf("ProgressBackground(%s) = %s, want %s", tt.background, got, tt.want)
		}
	}
}
