//go:build windows

package daemon

import (
	"fmt"
	"syscall"
	"unsafe"

	"fyne.io/systray"
	"go.uber.org/zap"

	"github.com/username/attendance-tracker/internal/attendance"
)

var (
	user32      = syscall.NewLazyDLL("user32.dll")
	messageBoxW = user32.NewProc("MessageBoxW")
)

const (
	MB_OK              = 0x00000000
	MB_ICONINFORMATION = 0x00000040
)

// TrayApp represents system tray application
type TrayApp struct {
	daemon *Daemon
	logger *zap.Logger
	quit   chan struct{}
}

// NewTrayApp creates a new system tray application
func NewTrayApp(daemon *Daemon, logger *zap.Logger) (*TrayApp, error) {
	return &TrayApp{
		daemon: daemon,
		logger: logger,
		quit:   make(chan struct{}),
	}, nil
}

// Run starts the system tray application (blocks until Quit)
func (t *TrayApp) Run() {
	systray.Run(t.onReady, t.onExit)
}

func (t *TrayApp) onReady() {
	systray.SetIcon(getCalendarIcon())
	systray.SetTitle("AT")
	t.refresh(t.daemon.Status())

	mMark := systray.AddMenuItem("Mark Today", "Record attendance for today")
	if t.daemon.TodayMarked() {
		mMark.Disable()
	}
	systray.AddSeparator()
	mStatus := systray.AddMenuItem("Status", "Show this month's progress")
	systray.AddSeparator()
	mQuit := systray.AddMenuItem("Quit", "Exit the application")

	t.daemon.OnRollover(func(p attendance.Progress) {
		mMark.Enable()
		t.refresh(p)
	})

	go t.daemon.run(t.daemon.ctx)

	go func() {
		for {
			select {
			case <-mMark.ClickedCh:
				t.logger.Info("Mark Today clicked from tray")
				p, err := t.daemon.MarkToday()
				if err != nil {
					t.ShowNotification("Mark failed", err.Error())
					continue
				}
				mMark.Disable()
				t.refresh(p)
			case <-mStatus.ClickedCh:
				t.showStatus()
			case <-mQuit.ClickedCh:
				t.logger.Info("Quit clicked from tray")
				t.daemon.Stop()
				systray.Quit()
				return
			case <-t.quit:
				systray.Quit()
				return
			}
		}
	}()
}

func (t *TrayApp) onExit() {
	t.logger.Info("System tray exited")
}

// Stop stops the system tray application
func (t *TrayApp) Stop() {
	select {
	case <-t.quit:
	default:
		close(t.quit)
	}
}

// ShowNotification shows a notification
func (t *TrayApp) ShowNotification(title, message string) {
	// fyne.io/systray has no balloon support
	t.logger.Info("Notification", zap.String("title", title), zap.String("message", message))
	systray.SetTooltip(title + ": " + message)
}

func (t *TrayApp) refresh(p attendance.Progress) {
	systray.SetTooltip(fmt.Sprintf("Attendance %d/%d", p.Count, p.Required))
}

func (t *TrayApp) showStatus() {
	p := t.daemon.Status()
	t.logger.Info("Current status", zap.Any("status", p))

	message := fmt.Sprintf("%s\nMarked: %d of %d business days\n%s",
		p.GoalLine(), p.Count, p.BusinessDays, p.Message())
	showMessageBox("Attendance Status", message)
}

func showMessageBox(title, message string) {
	titlePtr, _ := syscall.UTF16PtrFromString(title)
	messagePtr, _ := syscall.UTF16PtrFromString(message)
	messageBoxW.Call(
		0,
		uintptr(unsafe.Pointer(messagePtr)),
		uintptr(unsafe.Pointer(titlePtr)),
		uintptr(MB_OK|MB_ICONINFORMATION),
	)
}
