package options

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// DefaultGoal is the attendance goal used when none is saved
const DefaultGoal = 55

var (
	// ErrInvalidColor is returned for colors that are not #rgb or #rrggbb
	ErrInvalidColor = errors.New("color must be #rgb or #rrggbb")
	// ErrInvalidGoal is returned for goals outside 0..100
	ErrInvalidGoal = errors.New("attendance goal must be between 0 and 100")
	// ErrUnknownTheme is returned by ApplyTheme for names not in Themes
	ErrUnknownTheme = errors.New("unknown theme")
)

var colorPattern = regexp.MustCompile(`^#([A-Fa-f0-9]{6}|[A-Fa-f0-9]{3})$`)

// Theme is a named color preset
type Theme struct {
	Name       string `json:"name"`
	Background string `json:"background"`
	Foreground string `json:"foreground"`
	Accent     string `json:"accent"`
}

// Themes lists the presets in display order
var Themes = []Theme{
	{"default", "#fffbf7", "#45372b", "#df7020"},
	{"bsod", "#153489", "#eceae5", "#5ea5ee"},
	{"dracula", "#282a36", "#f8f8f2", "#f44336"},
	{"ultra-violet", "#440184", "#BF00FF", "#E78FFF"},
	{"hello-kitty", "#FFF0F5", "#4a4a4a", "#ff1493"},
	{"matrix", "#2b2b2b", "#4eee85", "#4eee85"},
	{"dark-mode", "#303030", "#e0e0e0", "#9e9e9e"},
	{"windows-98", "#c0c0c0", "#000000", "#008080"},
	{"mint", "#e5ffe5", "#2e8b57", "#32cd3f"},
	{"terminal", "#1a170f", "#eceae5", "#eec35e"},
}

// FindTheme looks a preset up by name
func FindTheme(name string) (Theme, bool) {
	for _, theme := range Themes {
		if theme.Name == name {
			return theme, true
		}
	}
	return Theme{}, false
}

// Options are the user's display and goal settings
type Options struct {
	Background     string `json:"background" validate:"required"`
	Foreground     string `json:"foreground" validate:"required"`
	Accent         string `json:"accent" validate:"required"`
	AttendanceGoal int    `json:"attendanceGoal" validate:"gte=0,lte=100"`
}

// Defaults returns the default theme with the default goal
func Defaults() Options {
	theme := Themes[0]
	return Options{
		Background:     theme.Background,
		Foreground:     theme.Foreground,
		Accent:         theme.Accent,
		AttendanceGoal: DefaultGoal,
	}
}

// Validate checks colors and goal
func (o Options) Validate() error {
	colors := map[string]string{
		"background": o.Background,
		"foreground": o.Foreground,
		"accent":     o.Accent,
	}
	for _, field := range []string{"background", "foreground", "accent"} {
		if !ValidColor(colors[field]) {
			return fmt.Errorf("%s %q: %w", field, colors[field], ErrInvalidColor)
		}
	}

	if o.AttendanceGoal < 0 || o.AttendanceGoal > 100 {
		return fmt.Errorf("%w: got %d", ErrInvalidGoal, o.AttendanceGoal)
	}

	return nil
}

// ValidColor reports whether color is #rgb or #rrggbb
func ValidColor(color string) bool {
	return colorPattern.MatchString(color)
}

// ProgressBackground derives the progress bar track color by darkening the background
func (o Options) ProgressBackground() string {
	r, g, b, ok := parseHex(o.Background)
	if !ok {
		return o.Background
	}
	return fmt.Sprintf("#%02x%02x%02x", clamp(r-19), clamp(g-15), clamp(b-11))
}

func parseHex(color string) (int, int, int, bool) {
	if !ValidColor(color) {
		return 0, 0, 0, false
	}
	hex := strings.TrimPrefix(color, "#")
	if len(hex) == 3 {
		hex = string([]byte{hex[0], hex[0], hex[1], hex[1], hex[2], hex[2]})
	}
	value, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return 0, 0, 0, false
	}
	return int(value >> 16 & 0xff), int(value >> 8 & 0xff), int(value & 0xff), true
}

func clamp(v int) int {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return v
}

// stored is the persisted form. Missing fields keep their defaults.
type stored struct {
	Background     *string `json:"background,omitempty"`
	Foreground     *string `json:"foreground,omitempty"`
	Accent         *string `json:"accent,omitempty"`
	AttendanceGoal *int    `json:"attendanceGoal,omitempty"`
}

// applyTo overrides defaults field by field, skipping invalid saved values
func (s stored) applyTo(o Options) Options {
	if s.Background != nil && ValidColor(*s.Background) {
		o.Background = *s.Background
	}
	if s.Foreground != nil && ValidColor(*s.Foreground) {
		o.Foreground = *s.Foreground
	}
	if s.Accent != nil && ValidColor(*s.Accent) {
		o.Accent = *s.Accent
	}
	if s.AttendanceGoal != nil && *s.AttendanceGoal >= 0 && *s.AttendanceGoal <= 100 {
		o.AttendanceGoal = *s.AttendanceGoal
	}
	return o
}
