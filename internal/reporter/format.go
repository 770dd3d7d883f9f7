// Package reporter renders the task list, stats and weekly progress for
// the terminal.
package reporter

import (
	"fmt"
	"math"
	"time"

	"github.com/yarlson/go-planner/internal/validate"
)

// FormatDuration formats minutes compactly: "45 min", "2h" or "1h 30m".
func FormatDuration(minutes int) string {
	if minutes < 60 {
		return fmt.Sprintf("%d min", minutes)
	}
	hours := minutes / 60
	mins := minutes % 60
	if mins > 0 {
		return fmt.Sprintf("%dh %dm", hours, mins)
	}
	return fmt.Sprintf("%dh", hours)
}

// FormatMinutes formats minutes for prose: "45 min", "1 hour", "3 hours"
// or "1h 30m".
func FormatMinutes(minutes int) string {
	if minutes < 60 {
		return fmt.Sprintf("%d min", minutes)
	}
	hours := minutes / 60
	mins := minutes % 60
	if mins > 0 {
		return fmt.Sprintf("%dh %dm", hours, mins)
	}
	if hours == 1 {
		return "1 hour"
	}
	return fmt.Sprintf("%d hours", hours)
}

// ToHours converts minutes to hours rounded to one decimal place.
func ToHours(minutes int) float64 {
	return roundTenth(float64(minutes) / 60)
}

func roundTenth(v float64) float64 {
	return math.Round(v*10) / 10
}

// FormatDate renders a YYYY-MM-DD date as "Mar 5, 2026". Other values are
// returned unchanged.
func FormatDate(dueDate string) string {
	d, err := time.Parse(validate.DateLayout, dueDate)
	if err != nil {
		return dueDate
	}
	return d.Format("Jan 2, 2006")
}

// FormatDateTime renders a timestamp in local time as "Mar 5, 2026 09:30".
func FormatDateTime(t time.Time) string {
	return t.Local().Format("Jan 2, 2006 15:04")
}

// DaysUntil counts calendar days from now's local date to dueDate.
// Negative values mean the date has passed.
func DaysUntil(dueDate string, now time.Time) (int, error) {
	due, err := time.ParseInLocation(validate.DateLayout, dueDate, now.Location())
	if err != nil {
		return 0, fmt.Errorf("failed to parse due date: %w", err)
	}
	y, m, d := now.Date()
	today := time.Date(y, m, d, 0, 0, 0, 0, now.Location())

	// Round to absorb daylight saving shifts.
	return int(math.Round(due.Sub(today).Hours() / 24)), nil
}

// DueLabel describes how far away a due date is.
func DueLabel(days int) string {
	switch {
	case days == 0:
		return "due today"
	case days == 1:
		return "due tomorrow"
	case days > 1:
		return fmt.Sprintf("due in %d days", days)
	case days == -1:
		return "overdue by 1 day"
	default:
		return fmt.Sprintf("overdue by %d days", -days)
	}
}
