package attendance

import (
	"fmt"

	"github.com/username/attendance-tracker/internal/calendar"
)

// Progress summarizes a month against its goal
type Progress struct {
	Year         int                   `json:"year"`
	Month        calendar.StorageMonth `json:"month"`
	BusinessDays int                   `json:"businessDays"`
	GoalPercent  int                   `json:"goalPercent"`
	Required     int                   `json:"required"`
	Count        int                   `json:"count"`
	Remaining    int                   `json:"remaining"`
	Reached      bool                  `json:"reached"`
}

// Progress returns the month's current progress
func (m *Manager) Progress() Progress {
	p := Progress{
		Year:         m.year,
		Month:        m.storageMonth,
		BusinessDays: m.businessDays,
		GoalPercent:  m.GoalPercent(),
		Required:     m.requiredCount,
		Count:        m.Count(),
	}
	p.Reached = p.Count >= p.Required
	if !p.Reached {
		p.Remaining = p.Required - p.Count
	}
	return p
}

// Message is the user-facing status line
func (p Progress) Message() string {
	if p.Reached {
		return "You have reached your attendance goal for this month."
	}
	return fmt.Sprintf("Keep going! You need %d more %s to reach your goal.", p.Remaining, plural(p.Remaining, "day"))
}

// GoalLine describes the goal, e.g. "Attendance Goal (55%): 12 days"
func (p Progress) GoalLine() string {
	return fmt.Sprintf("Attendance Goal (%d%%): %d %s", p.GoalPercent, p.Required, plural(p.Required, "day"))
}

func plural(n int, word string) string {
	if n == 1 {
		return word
	}
	return word + "s"
}
