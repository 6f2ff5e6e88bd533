package ledger

import (
	"encoding/json"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/username/attendance-tracker/internal/calendar"
	"github.com/username/attendance-tracker/internal/storage"
)

// Ledger is the persistent multi-month attendance store.
// Every mutating call writes the whole history back to the store. Storage
// failures are logged and never returned; memory and disk may then diverge.
type Ledger struct {
	store   storage.Store
	logger  *zap.Logger
	history *History
}

// New loads the history from store. Missing or corrupt data yields an empty ledger.
func New(store storage.Store, logger *zap.Logger) *Ledger {
	l := &Ledger{
		store:   store,
		logger:  logger,
		history: NewHistory(),
	}
	l.load()
	return l
}

// MonthKey returns the bucket key for a month, e.g. "2024-01"
func MonthKey(year int, month calendar.StorageMonth) string {
	return fmt.Sprintf("%d-%02d", year, int(month))
}

func (l *Ledger) load() {
	data, err := l.store.Get(storage.KeyAttendanceHistory)
	if errors.Is(err, storage.ErrNotFound) {
		l.logger.Debug("No attendance history stored yet")
		return
	}
	if err != nil {
		l.logger.Warn("Failed to read attendance history, starting empty", zap.Error(err))
		return
	}

	history := NewHistory()
	if err := json.Unmarshal(data, history); err != nil {
		l.logger.Warn("Attendance history is corrupt, starting empty", zap.Error(err))
		return
	}

	l.history = history
	l.logger.Debug("Attendance history loaded", zap.Int("months", history.Len()))
}

func (l *Ledger) save() {
	data, err := json.Marshal(l.history)
	if err != nil {
		l.logger.Error("Failed to encode attendance history", zap.Error(err))
		return
	}

	if err := l.store.Set(storage.KeyAttendanceHistory, data); err != nil {
		l.logger.Error("Failed to save attendance history", zap.Error(err))
	}
}

// GetMonth returns a copy of a month's entries; empty when the bucket is absent
func (l *Ledger) GetMonth(year int, month calendar.StorageMonth) []Entry {
	entries, ok := l.history.Get(MonthKey(year, month))
	if !ok {
		return []Entry{}
	}
	return entries
}

// SetMonth replaces a month's entries and persists
func (l *Ledger) SetMonth(year int, month calendar.StorageMonth, entries []Entry) {
	l.history.Set(MonthKey(year, month), entries)
	l.save()
}

// ClearMonth removes a month's bucket and persists
func (l *Ledger) ClearMonth(year int, month calendar.StorageMonth) {
	l.history.Delete(MonthKey(year, month))
	l.save()
}

// GetAll returns a copy of the whole history
func (l *Ledger) GetAll() *History {
	return l.history.Clone()
}

// SetAll replaces the whole history and persists
func (l *Ledger) SetAll(history *History) {
	if history == nil {
		history = NewHistory()
	}
	l.history = history.Clone()
	l.save()
}

// ClearAll empties the history and persists
func (l *Ledger) ClearAll() {
	l.history = NewHistory()
	l.save()
	l.logger.Info("Attendance history cleared")
}

// Keys returns the month keys in insertion order
func (l *Ledger) Keys() []string {
	return l.history.Keys()
}
