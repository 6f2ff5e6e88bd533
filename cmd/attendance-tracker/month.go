package main

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/username/attendance-tracker/internal/attendance"
	"github.com/username/attendance-tracker/internal/calendar"
	"github.com/username/attendance-tracker/pkg/dateutil"
)

func statusCmd(a *app) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show progress towards this month's attendance goal",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := a.manager()
			if err != nil {
				return err
			}
			p := m.Progress()
			out := cmd.OutOrStdout()

			if asJSON {
				return writeJSON(out, p)
			}

			fmt.Fprintf(out, "📅 %s\n", monthTitle(m))
			fmt.Fprintf(out, "  Business days:  %d\n", p.BusinessDays)
			fmt.Fprintf(out, "  %s\n", p.GoalLine())
			fmt.Fprintf(out, "  Marked:         %d\n", p.Count)
			fmt.Fprintf(out, "%s %s\n", progressIcon(p), p.Message())
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Print progress as JSON")

	return cmd
}

func markCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "mark [day]",
		Short: "Mark a day as attended (today when no day is given)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := a.manager()
			if err != nil {
				return err
			}

			var day int
			if len(args) == 0 {
				today := now()
				if err := m.MarkDate(today); err != nil {
					return err
				}
				day = today.Day()
			} else {
				day, err = parseDay(args[0])
				if err != nil {
					return err
				}
				if err := m.Mark(day); err != nil {
					return err
				}
			}

			fmt.Fprintf(cmd.OutOrStdout(), "✅ Marked %s\n", dayLabel(m, day))
			fmt.Fprintln(cmd.OutOrStdout(), m.Progress().Message())
			return nil
		},
	}
}

func unmarkCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "unmark <day>",
		Short: "Remove the mark from a day",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := a.manager()
			if err != nil {
				return err
			}
			day, err := parseDay(args[0])
			if err != nil {
				return err
			}

			if !m.HasMark(day) {
				fmt.Fprintf(cmd.OutOrStdout(), "%s was not marked\n", dayLabel(m, day))
				return nil
			}
			m.Unmark(day)

			fmt.Fprintf(cmd.OutOrStdout(), "Unmarked %s\n", dayLabel(m, day))
			return nil
		},
	}
}

func toggleCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "toggle <day>",
		Short: "Mark an unmarked day or unmark a marked one",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := a.manager()
			if err != nil {
				return err
			}
			day, err := parseDay(args[0])
			if err != nil {
				return err
			}
			if err := m.Toggle(day); err != nil {
				return err
			}

			state := "Unmarked"
			if m.HasMark(day) {
				state = "Marked"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", state, dayLabel(m, day))
			return nil
		},
	}
}

func clearCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Remove every mark in the month",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := a.manager()
			if err != nil {
				return err
			}
			removed := m.Count()
			m.Clear()

			fmt.Fprintf(cmd.OutOrStdout(), "🧹 Cleared %d %s from %s\n", removed, plural(removed, "mark"), m.Key())
			return nil
		},
	}
}

func goalCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "goal [percent]",
		Short: "Show or set the attendance goal (percent of business days)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				pct, err := strconv.Atoi(strings.TrimSuffix(args[0], "%"))
				if err != nil {
					return fmt.Errorf("invalid goal %q: %w", args[0], err)
				}
				if err := a.options.SetGoal(pct); err != nil {
					return err
				}
			}

			m, err := a.manager()
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), m.Progress().GoalLine())
			return nil
		},
	}
}

func calendarCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "calendar",
		Short: "Print the month grid with marked days",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := a.manager()
			if err != nil {
				return err
			}
			info := a.calendar.GetMonthInfo(m.Year(), m.Month())
			fmt.Fprint(cmd.OutOrStdout(), renderMonth(m, info))
			return nil
		},
	}
}

func holidaysCmd(a *app) *cobra.Command {
	var year int

	cmd := &cobra.Command{
		Use:   "holidays",
		Short: "List the holidays of a year",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if year == 0 {
				month, err := selectedMonth()
				if err != nil {
					return err
				}
				year = month.Year()
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Holidays %d\n", year)
			for _, h := range a.calendar.Holidays(year) {
				note := ""
				if dateutil.IsWeekend(h.Date) {
					note = " (weekend)"
				}
				fmt.Fprintf(out, "  %s %s  %s%s\n", h.Date.Format("2006-01-02"), h.Date.Format("Mon"), h.Name, note)
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&year, "year", 0, "Year to list (default: year of --month)")

	return cmd
}

func parseDay(arg string) (int, error) {
	day, err := strconv.Atoi(arg)
	if err != nil {
		return 0, fmt.Errorf("invalid day %q", arg)
	}
	return day, nil
}

func monthTitle(m *attendance.Manager) string {
	return time.Date(m.Year(), m.Month().Time(), 1, 0, 0, 0, 0, time.Local).Format("January 2006")
}

func dayLabel(m *attendance.Manager, day int) string {
	return fmt.Sprintf("%s-%02d", m.Key(), day)
}

func progressIcon(p attendance.Progress) string {
	if p.Reached {
		return "🎉"
	}
	return "⏳"
}

func plural(n int, word string) string {
	if n == 1 {
		return word
	}
	return word + "s"
}

// renderMonth draws a Sunday-first grid; marked days carry '*', holidays 'h', weekends '.'
func renderMonth(m *attendance.Manager, info *calendar.MonthInfo) string {
	var b strings.Builder

	fmt.Fprintf(&b, "%s\n", monthTitle(m))
	b.WriteString("  Su  Mo  Tu  We  Th  Fr  Sa\n")

	if len(info.Days) > 0 {
		b.WriteString(strings.Repeat("    ", int(info.Days[0].Date.Weekday())))
	}
	for _, d := range info.Days {
		marker := " "
		switch {
		case m.HasMark(d.Date.Day()):
			marker = "*"
		case d.Type == calendar.DayTypeHoliday:
			marker = "h"
		case d.Type == calendar.DayTypeWeekend:
			marker = "."
		}
		fmt.Fprintf(&b, " %2d%s", d.Date.Day(), marker)
		if d.Date.Weekday() == time.Saturday {
			b.WriteString("\n")
		}
	}
	if len(info.Days) > 0 && info.Days[len(info.Days)-1].Date.Weekday() != time.Saturday {
		b.WriteString("\n")
	}

	p := m.Progress()
	fmt.Fprintf(&b, "\n* marked  h holiday  . weekend\n%s | marked %d\n", p.GoalLine(), p.Count)

	return b.String()
}
