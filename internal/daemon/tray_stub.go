//go:build !windows

package daemon

import (
	"errors"

	"go.uber.org/zap"
)

// TrayApp is a no-op outside Windows
type TrayApp struct {
	logger *zap.Logger
}

// NewTrayApp always fails on this platform
func NewTrayApp(daemon *Daemon, logger *zap.Logger) (*TrayApp, error) {
	return nil, errors.New("system tray is only supported on Windows")
}

// Run does nothing on non-Windows platforms
func (t *TrayApp) Run() {
}

// Stop does nothing on non-Windows platforms
func (t *TrayApp) Stop() {
}

// ShowNotification does nothing on non-Windows platforms
func (t *TrayApp) ShowNotification(title, message string) {
}
