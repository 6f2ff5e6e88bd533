package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/username/attendance-tracker/internal/daemon"
	"github.com/username/attendance-tracker/internal/server"
	"github.com/username/attendance-tracker/internal/ui"
)

func serveCmd(a *app) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the JSON API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if addr == "" {
				addr = a.cfg.Server.Addr
			}

			srv := server.New(a.ledger, a.calendar, a.options, server.Config{
				ReadTimeout: a.cfg.Server.GetReadTimeout(),
			}, logger)

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			errCh := make(chan error, 1)
			go func() {
				errCh <- srv.Listen(addr)
			}()

			fmt.Fprintf(cmd.OutOrStdout(), "🌐 Listening on http://%s\n", addr)

			select {
			case err := <-errCh:
				if err != nil {
					return fmt.Errorf("server failed: %w", err)
				}
				return nil
			case <-ctx.Done():
				logger.Info("Shutting down HTTP API")
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				return srv.Shutdown(shutdownCtx)
			}
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (default from config)")

	return cmd
}

func tuiCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "tui",
		Short: "Open the interactive month view",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			clock := now
			if monthFlag != "" {
				month, err := selectedMonth()
				if err != nil {
					return err
				}
				clock = func() time.Time { return month }
			}

			m := ui.NewModel(a.ledger, a.calendar, a.options, clock, logger)
			if _, err := tea.NewProgram(m, tea.WithAltScreen()).Run(); err != nil {
				return fmt.Errorf("run TUI: %w", err)
			}
			return nil
		},
	}
}

func trayCmd(a *app) *cobra.Command {
	var noTray bool

	cmd := &cobra.Command{
		Use:   "tray",
		Short: "Run in the background, watching for a new month (system tray on Windows)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			d := daemon.NewDaemon(a.ledger, a.calendar, a.options, daemon.Config{
				CheckInterval: a.cfg.Daemon.GetCheckInterval(),
				SystemTray:    a.cfg.Daemon.SystemTray && !noTray,
				Now:           now,
			}, logger)

			logger.Info("Starting tray daemon",
				zap.Duration("check_interval", a.cfg.Daemon.GetCheckInterval()),
				zap.Bool("system_tray", a.cfg.Daemon.SystemTray && !noTray))

			return d.Start()
		},
	}

	cmd.Flags().BoolVar(&noTray, "no-tray", false, "Run in console mode even when the system tray is enabled")

	return cmd
}
