package daemon

import (
	"context"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/username/attendance-tracker/internal/attendance"
	"github.com/username/attendance-tracker/internal/calendar"
	"github.com/username/attendance-tracker/internal/ledger"
	"github.com/username/attendance-tracker/internal/options"
)

// Config holds daemon settings
type Config struct {
	CheckInterval time.Duration
	SystemTray    bool             // Show system tray icon (Windows only)
	Now           func() time.Time // Clock, time.Now when nil
}

// Daemon watches the clock for month rollover and owns the tray, if any.
// All calls into the ledger go through mu.
type Daemon struct {
	ledger        *ledger.Ledger
	calendar      calendar.Calendar
	options       *options.Manager
	checkInterval time.Duration
	systemTray    bool
	now           func() time.Time
	logger        *zap.Logger
	ctx           context.Context
	cancel        context.CancelFunc
	trayApp       *TrayApp

	mu           sync.Mutex
	currentMonth string
	onRollover   []func(attendance.Progress)
}

// NewDaemon creates a new daemon instance
func NewDaemon(l *ledger.Ledger, cal calendar.Calendar, opts *options.Manager, cfg Config, logger *zap.Logger) *Daemon {
	ctx, cancel := context.WithCancel(context.Background())

	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	interval := cfg.CheckInterval
	if interval <= 0 {
		interval = time.Minute
	}

	return &Daemon{
		ledger:        l,
		calendar:      cal,
		options:       opts,
		checkInterval: interval,
		systemTray:    cfg.SystemTray,
		now:           now,
		logger:        logger,
		ctx:           ctx,
		cancel:        cancel,
	}
}

// OnRollover registers fn to run with the new month's progress whenever the month changes
func (d *Daemon) OnRollover(fn func(attendance.Progress)) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.onRollover = append(d.onRollover, fn)
}

// Start runs the daemon until Stop or a termination signal
func (d *Daemon) Start() error {
	if d.systemTray {
		d.logger.Info("Initializing system tray")
		trayApp, err := NewTrayApp(d, d.logger)
		if err != nil {
			d.logger.Warn("Failed to initialize system tray", zap.Error(err))
			return d.startWithoutTray()
		}
		d.trayApp = trayApp
		// Blocks until Quit
		d.trayApp.Run()
		return nil
	}

	d.logger.Info("Running without system tray")
	return d.startWithoutTray()
}

func (d *Daemon) startWithoutTray() error {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	go func() {
		select {
		case sig := <-sigChan:
			d.logger.Info("Received signal, shutting down",
				zap.String("signal", sig.String()))
			d.Stop()
		case <-d.ctx.Done():
		}
	}()

	d.run(d.ctx)
	return nil
}

// run checks immediately and then every checkInterval until ctx is done
func (d *Daemon) run(ctx context.Context) {
	d.logger.Info("Daemon started",
		zap.Duration("check_interval", d.checkInterval))

	d.Check()

	ticker := time.NewTicker(d.checkInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			d.logger.Info("Daemon stopped")
			if d.trayApp != nil {
				d.trayApp.Stop()
			}
			return
		case <-ticker.C:
			d.Check()
		}
	}
}

// RunWithTimeout runs the watch loop for at most timeout
func (d *Daemon) RunWithTimeout(timeout time.Duration) {
	ctx, cancel := context.WithTimeout(d.ctx, timeout)
	defer cancel()
	d.run(ctx)
}

// Stop stops the daemon
func (d *Daemon) Stop() {
	d.cancel()
}

// Check compares the current month with the last one seen and fires the
// rollover callbacks when it changed. The first check only records the month.
func (d *Daemon) Check() bool {
	d.mu.Lock()

	today := d.now()
	key := ledger.MonthKey(today.Year(), calendar.MonthOf(today).Storage())
	if key == d.currentMonth {
		d.mu.Unlock()
		return false
	}

	previous := d.currentMonth
	d.currentMonth = key
	if previous == "" {
		d.mu.Unlock()
		d.logger.Debug("Watching month", zap.String("month", key))
		return false
	}

	progress := d.managerFor(today).Progress()
	callbacks := append([]func(attendance.Progress){}, d.onRollover...)
	d.mu.Unlock()

	d.logger.Info("Month changed",
		zap.String("from", previous),
		zap.String("to", key),
		zap.Int("required", progress.Required))

	for _, fn := range callbacks {
		fn(progress)
	}
	if d.trayApp != nil {
		d.trayApp.ShowNotification("New month", progress.GoalLine())
	}

	return true
}

// CurrentMonth returns the month key seen by the last Check
func (d *Daemon) CurrentMonth() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.currentMonth
}

// managerFor must be called with mu held
func (d *Daemon) managerFor(date time.Time) *attendance.Manager {
	m := attendance.NewManager(date.Year(), calendar.MonthOf(date), d.ledger, d.calendar, d.logger)
	if err := m.SetGoalPercent(d.options.Options().AttendanceGoal); err != nil {
		d.logger.Warn("Saved goal rejected, using default", zap.Error(err))
	}
	return m
}

// Status returns the progress of the current month
func (d *Daemon) Status() attendance.Progress {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.managerFor(d.now()).Progress()
}

// MarkToday records attendance for today and returns the updated progress
func (d *Daemon) MarkToday() (attendance.Progress, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	today := d.now()
	m := d.managerFor(today)
	if err := m.MarkDate(today); err != nil {
		return attendance.Progress{}, err
	}

	d.logger.Info("Marked today", zap.String("date", today.Format("2006-01-02")))
	return m.Progress(), nil
}

// TodayMarked reports whether today already carries a mark
func (d *Daemon) TodayMarked() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	today := d.now()
	return d.managerFor(today).HasMark(today.Day())
}
