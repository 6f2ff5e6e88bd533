package options

import (
	"encoding/json"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/username/attendance-tracker/internal/storage"
)

// Manager loads and persists Options under the customOptions key
type Manager struct {
	store   storage.Store
	options Options
	logger  *zap.Logger
}

// NewManager creates a manager and loads saved options over the defaults
func NewManager(store storage.Store, logger *zap.Logger) *Manager {
	m := &Manager{
		store:   store,
		options: Defaults(),
		logger:  logger,
	}
	m.load()
	return m
}

func (m *Manager) load() {
	data, err := m.store.Get(storage.KeyCustomOptions)
	if errors.Is(err, storage.ErrNotFound) {
		return
	}
	if err != nil {
		m.logger.Warn("Failed to read options, using defaults", zap.Error(err))
		return
	}

	var saved stored
	if err := json.Unmarshal(data, &saved); err != nil {
		m.logger.Warn("Options are corrupt, using defaults", zap.Error(err))
		return
	}

	m.options = saved.applyTo(Defaults())
	m.logger.Debug("Options loaded",
		zap.String("background", m.options.Background),
		zap.Int("attendance_goal", m.options.AttendanceGoal))
}

func (m *Manager) save() {
	data, err := json.Marshal(m.options)
	if err != nil {
		m.logger.Error("Failed to encode options", zap.Error(err))
		return
	}

	if err := m.store.Set(storage.KeyCustomOptions, data); err != nil {
		m.logger.Error("Failed to save options", zap.Error(err))
	}
}

// Options returns the current options
func (m *Manager) Options() Options {
	return m.options
}

// Update applies fn to a copy of the options and saves the result if it validates
func (m *Manager) Update(fn func(*Options)) error {
	next := m.options
	fn(&next)

	if err := next.Validate(); err != nil {
		return err
	}

	m.options = next
	m.save()
	return nil
}

// SetGoal saves a new attendance goal
func (m *Manager) SetGoal(goal int) error {
	return m.Update(func(o *Options) { o.AttendanceGoal = goal })
}

// ApplyTheme copies a preset's colors; the goal is left alone
func (m *Manager) ApplyTheme(name string) error {
	theme, ok := FindTheme(name)
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownTheme, name)
	}

	m.logger.Info("Applying theme", zap.String("theme", name))
	return m.Update(func(o *Options) {
		o.Background = theme.Background
		o.Foreground = theme.Foreground
		o.Accent = theme.Accent
	})
}

// Reset restores and saves the defaults
func (m *Manager) Reset() {
	m.options = Defaults()
	m.save()
	m.logger.Info("Options reset to defaults")
}
