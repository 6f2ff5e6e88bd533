package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/username/attendance-tracker/internal/options"
)

func optionsCmd(a *app) *cobra.Command {
	var (
		theme      string
		background string
		foreground string
		accent     string
		goal       int
		reset      bool
		listThemes bool
	)

	cmd := &cobra.Command{
		Use:   "options",
		Short: "Show or change colors and the attendance goal",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()

			if listThemes {
				for _, t := range options.Themes {
					fmt.Fprintf(out, "  %-14s %s %s %s\n", t.Name, t.Background, t.Foreground, t.Accent)
				}
				return nil
			}

			if reset {
				a.options.Reset()
			}
			if theme != "" {
				if err := a.options.ApplyTheme(theme); err != nil {
					return err
				}
			}

			flags := cmd.Flags()
			if flags.Changed("background") || flags.Changed("foreground") ||
				flags.Changed("accent") || flags.Changed("goal") {
				err := a.options.Update(func(o *options.Options) {
					if flags.Changed("background") {
						o.Background = background
					}
					if flags.Changed("foreground") {
						o.Foreground = foreground
					}
					if flags.Changed("accent") {
						o.Accent = accent
					}
					if flags.Changed("goal") {
						o.AttendanceGoal = goal
					}
				})
				if err != nil {
					return err
				}
			}

			o := a.options.Options()
			fmt.Fprintf(out, "Background:       %s\n", o.Background)
			fmt.Fprintf(out, "Foreground:       %s\n", o.Foreground)
			fmt.Fprintf(out, "Accent:           %s\n", o.Accent)
			fmt.Fprintf(out, "Progress track:   %s\n", o.ProgressBackground())
			fmt.Fprintf(out, "Attendance goal:  %d%%\n", o.AttendanceGoal)
			return nil
		},
	}

	cmd.Flags().StringVar(&theme, "theme", "", "Apply a preset theme")
	cmd.Flags().StringVar(&background, "background", "", "Background color (#rgb or #rrggbb)")
	cmd.Flags().StringVar(&foreground, "foreground", "", "Foreground color")
	cmd.Flags().StringVar(&accent, "accent", "", "Accent color")
	cmd.Flags().IntVar(&goal, "goal", options.DefaultGoal, "Attendance goal in percent")
	cmd.Flags().BoolVar(&reset, "reset", false, "Restore default options")
	cmd.Flags().BoolVar(&listThemes, "themes", false, "List preset themes")

	return cmd
}
