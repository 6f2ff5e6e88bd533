package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/username/attendance-tracker/internal/attendance"
	"github.com/username/attendance-tracker/internal/ledger"
	"github.com/username/attendance-tracker/internal/stats"
	"github.com/username/attendance-tracker/internal/transfer"
	"github.com/username/attendance-tracker/pkg/random"
)

func exportCmd(a *app) *cobra.Command {
	var format string
	var output string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export the attendance log as CSV or XLSX",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			switch format {
			case "csv":
				text := transfer.ExportCSV(a.ledger)
				if output == "" {
					_, err := io.WriteString(cmd.OutOrStdout(), text)
					return err
				}
				if err := writeFile(output, []byte(text)); err != nil {
					return err
				}
			case "xlsx":
				if output == "" {
					return fmt.Errorf("--output is required for xlsx export")
				}
				f, err := createFile(output)
				if err != nil {
					return err
				}
				if err := transfer.ExportXLSX(a.ledger, f); err != nil {
					f.Close()
					return fmt.Errorf("failed to export xlsx: %w", err)
				}
				if err := f.Close(); err != nil {
					return fmt.Errorf("failed to write %s: %w", output, err)
				}
			default:
				return fmt.Errorf("unknown format %q, expected csv or xlsx", format)
			}

			logger.Info("Attendance exported",
				zap.String("format", format),
				zap.String("output", output))
			fmt.Fprintf(cmd.OutOrStdout(), "📦 Exported to %s\n", output)
			return nil
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "csv", "Export format: csv or xlsx")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output file (csv defaults to stdout)")

	return cmd
}

func importCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "import <file>",
		Short: "Import attendance from a year,month,day CSV file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("failed to read %s: %w", args[0], err)
			}

			result, err := transfer.ImportCSV(a.ledger, string(data))
			if err != nil {
				return err
			}

			logger.Info("Attendance imported",
				zap.String("file", args[0]),
				zap.Int("imported", result.Imported),
				zap.Int("duplicates", result.Duplicates),
				zap.Int("errors", result.Errors))
			fmt.Fprintln(cmd.OutOrStdout(), result.Message())
			return nil
		},
	}
}

func statsCmd(a *app) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show attendance totals per weekday",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			totals := stats.ByWeekday(a.ledger)
			out := cmd.OutOrStdout()

			if asJSON {
				named := make(map[string]int, len(totals))
				for wd, n := range totals {
					named[wd.String()] = n
				}
				return writeJSON(out, named)
			}

			rows := make([][]string, 0, len(stats.Weekdays))
			for _, wd := range stats.Weekdays {
				rows = append(rows, []string{wd.String(), strconv.Itoa(totals[wd])})
			}
			fmt.Fprintln(out, renderTable([]string{"Weekday", "Days"}, rows))
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Print totals as JSON")

	return cmd
}

func logCmd(a *app) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "log",
		Short: "List every month with marked days, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			summaries := stats.Monthly(a.ledger, a.calendar, a.options.Options().AttendanceGoal)
			out := cmd.OutOrStdout()

			if asJSON {
				return writeJSON(out, summaries)
			}
			if len(summaries) == 0 {
				fmt.Fprintln(out, "No attendance recorded yet")
				return nil
			}

			history := a.ledger.GetAll()
			rows := make([][]string, 0, len(summaries))
			for _, s := range summaries {
				entries, _ := history.Get(s.Key)
				goal := "-"
				if s.Reached {
					goal = "✓"
				}
				rows = append(rows, []string{
					s.Key,
					fmt.Sprintf("%d/%d", s.Count, s.Required),
					goal,
					joinDays(entries),
				})
			}
			fmt.Fprintln(out, renderTable([]string{"Month", "Marked", "Goal", "Days"}, rows))
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Print summaries as JSON")

	return cmd
}

func seedCmd(a *app) *cobra.Command {
	var year int
	var perMonth int

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Fill a year with random demo attendance",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if year == 0 {
				year = now().Year()
			}
			added := attendance.Seed(a.ledger, a.calendar, year, perMonth, random.NewSource(), logger)
			fmt.Fprintf(cmd.OutOrStdout(), "🌱 Seeded %d %s in %d\n", added, plural(added, "day"), year)
			return nil
		},
	}

	cmd.Flags().IntVar(&year, "year", 0, "Year to seed (default current year)")
	cmd.Flags().IntVar(&perMonth, "per-month", attendance.DemoDaysPerMonth, "Random days to mark per month")

	return cmd
}

func wipeCmd(a *app) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "wipe",
		Short: "Delete the whole attendance log",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !yes {
				return errNotConfirmed
			}
			months := len(a.ledger.Keys())
			a.ledger.ClearAll()

			fmt.Fprintf(cmd.OutOrStdout(), "🗑️  Removed %d %s\n", months, plural(months, "month"))
			return nil
		},
	}

	cmd.Flags().BoolVar(&yes, "yes", false, "Confirm deletion")

	return cmd
}

func renderTable(headers []string, rows [][]string) string {
	headerStyle := lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle := lipgloss.NewStyle().Padding(0, 1)

	return table.New().
		Border(lipgloss.NormalBorder()).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		}).
		String()
}

func joinDays(entries []ledger.Entry) string {
	days := make([]string, len(entries))
	for i, e := range entries {
		days[i] = strconv.Itoa(e.Day)
	}
	return strings.Join(days, " ")
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func createFile(path string) (*os.File, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create output directory: %w", err)
		}
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return nil, fmt.Errorf("failed to open output file: %w", err)
	}
	return f, nil
}

func writeFile(path string, data []byte) error {
	f, err := createFile(path)
	if err != nil {
		return err
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return f.Close()
}
