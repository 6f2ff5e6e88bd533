package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/username/attendance-tracker/internal/attendance"
	"github.com/username/attendance-tracker/internal/calendar"
	"github.com/username/attendance-tracker/internal/config"
	"github.com/username/attendance-tracker/internal/ledger"
	"github.com/username/attendance-tracker/internal/options"
	"github.com/username/attendance-tracker/internal/storage"
	"github.com/username/attendance-tracker/pkg/dateutil"
)

var (
	configPath string
	monthFlag  string
	logger     *zap.Logger = zap.NewNop()
	now                    = time.Now
)

// app holds the components every command works with
type app struct {
	cfg      *config.Config
	store    storage.Store
	closer   io.Closer
	calendar calendar.Calendar
	ledger   *ledger.Ledger
	options  *options.Manager
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	a := &app{}

	rootCmd := &cobra.Command{
		Use:   "attendance-tracker",
		Short: "Office attendance tracker",
		Long:  "Mark the days you attended the office and track them against a monthly goal of business days",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}

			if cfg.Log.File != "" {
				logger, err = initFileLogger(cfg.Log.File, cfg.Log.Level)
				if err != nil {
					initLogger(cfg.Log.Level) // Fallback to console
				}
			} else {
				initLogger(cfg.Log.Level)
			}

			return a.open(cfg)
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			a.close()
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Config file path")
	rootCmd.PersistentFlags().StringVarP(&monthFlag, "month", "m", "", "Month to work on (YYYY-MM, default current month)")

	rootCmd.AddCommand(
		statusCmd(a),
		markCmd(a),
		unmarkCmd(a),
		toggleCmd(a),
		clearCmd(a),
		goalCmd(a),
		calendarCmd(a),
		holidaysCmd(a),
		exportCmd(a),
		importCmd(a),
		statsCmd(a),
		logCmd(a),
		optionsCmd(a),
		seedCmd(a),
		wipeCmd(a),
		serveCmd(a),
		tuiCmd(a),
		trayCmd(a),
	)

	return rootCmd
}

// open builds storage, calendar, ledger and options from cfg
func (a *app) open(cfg *config.Config) error {
	a.cfg = cfg

	switch cfg.Storage.Backend {
	case "sqlite":
		path, err := cfg.Storage.GetSQLitePath()
		if err != nil {
			return err
		}
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return fmt.Errorf("failed to create data directory: %w", err)
		}
		store, err := storage.NewSQLiteStore(path)
		if err != nil {
			return fmt.Errorf("failed to open sqlite store: %w", err)
		}
		a.store = store
		a.closer = store
	default:
		dir, err := cfg.Storage.GetDir()
		if err != nil {
			return err
		}
		store, err := storage.NewFileStore(dir)
		if err != nil {
			return fmt.Errorf("failed to open file store: %w", err)
		}
		a.store = store
	}

	cal, err := initializeCalendar(cfg)
	if err != nil {
		return err
	}
	a.calendar = cal

	a.ledger = ledger.New(a.store, logger)
	a.options = options.NewManager(a.store, logger)

	logger.Debug("Components initialized",
		zap.String("backend", cfg.Storage.Backend),
		zap.Int("months", len(a.ledger.Keys())))

	return nil
}

func (a *app) close() {
	if a.closer != nil {
		if err := a.closer.Close(); err != nil {
			logger.Warn("Failed to close store", zap.Error(err))
		}
		a.closer = nil
	}
	_ = logger.Sync()
}

func initializeCalendar(cfg *config.Config) (calendar.Calendar, error) {
	base := calendar.NewBusinessCalendar()

	holidaysFile, err := cfg.Calendar.GetHolidaysFile()
	if err != nil {
		return nil, err
	}
	if holidaysFile == "" {
		return base, nil
	}

	overlay := calendar.NewFileCalendar(holidaysFile, logger)
	composite := calendar.NewCompositeCalendar(base, overlay, logger)
	if err := composite.LoadOverlay(); err != nil {
		return nil, fmt.Errorf("failed to load holidays file: %w", err)
	}
	return composite, nil
}

// selectedMonth returns the first day of --month, or of the current month
func selectedMonth() (time.Time, error) {
	if monthFlag == "" {
		return dateutil.StartOfMonth(now()), nil
	}
	month, err := dateutil.ParseMonth(monthFlag)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid --month %q, expected YYYY-MM", monthFlag)
	}
	return month, nil
}

// manager opens the selected month with the saved goal applied
func (a *app) manager() (*attendance.Manager, error) {
	month, err := selectedMonth()
	if err != nil {
		return nil, err
	}

	m := attendance.NewManager(month.Year(), calendar.MonthOf(month), a.ledger, a.calendar, logger)
	if err := m.SetGoalPercent(a.options.Options().AttendanceGoal); err != nil {
		logger.Warn("Saved goal rejected, using default", zap.Error(err))
	}
	return m, nil
}

var errNotConfirmed = errors.New("refusing to continue without --yes")

func initLogger(level string) {
	config := zap.NewProductionConfig()
	config.EncoderConfig.TimeKey = "timestamp"
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	var zapLevel zapcore.Level
	if err := zapLevel.UnmarshalText([]byte(level)); err == nil {
		config.Level = zap.NewAtomicLevelAt(zapLevel)
	}

	var err error
	logger, err = config.Build()
	if err != nil {
		panic(fmt.Sprintf("failed to initialize logger: %v", err))
	}
}

func initFileLogger(logFile string, level string) (*zap.Logger, error) {
	logWriter := &lumberjack.Logger{
		Filename:   logFile,
		MaxSize:    10, // MB
		MaxBackups: 3,
		MaxAge:     28, // days
		Compress:   true,
	}

	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.TimeKey = "timestamp"
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	var zapLevel zapcore.Level
	if err := zapLevel.UnmarshalText([]byte(level)); err != nil {
		zapLevel = zapcore.InfoLevel
	}

	core := zapcore.NewCore(
		zapcore.NewJSONEncoder(encoderConfig),
		zapcore.AddSync(logWriter),
		zapLevel,
	)

	return zap.New(core), nil
}
