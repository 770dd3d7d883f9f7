package reporter

import (
	"fmt"
	"math"
	"strconv"
)

// Level grades total planned time against the weekly target.
type Level string

// Progress levels.
const (
	LevelUnder Level = "under"
	LevelNear  Level = "near"
	LevelOver  Level = "over"
)

// nearThreshold is the percentage from which the target counts as close.
const nearThreshold = 80.0

// Progress is the weekly target feedback.
type Progress struct {
	// Percent of the target used, capped at 100.
	Percent float64

	// TotalHours is the planned time, rounded to one decimal place.
	TotalHours float64

	TargetHours float64
	Level       Level

	// Message is the sentence shown to the user.
	Message string
}

// ComputeProgress compares totalMinutes with a target in hours. A target
// that is not positive is treated as the default of 20 hours.
func ComputeProgress(totalMinutes int, targetHours float64) Progress {
	if targetHours <= 0 {
		targetHours = 20
	}
	targetMinutes := targetHours * 60

	p := Progress{
		Percent:     math.Min(float64(totalMinutes)/targetMinutes*100, 100),
		TotalHours:  ToHours(totalMinutes),
		TargetHours: targetHours,
	}

	switch {
	case float64(totalMinutes) > targetMinutes:
		over := roundTenth((float64(totalMinutes) - targetMinutes) / 60)
		p.Level = LevelOver
		p.Message = fmt.Sprintf("Warning: You've exceeded your weekly target by %s hours", formatHours(over))
	case p.Percent >= nearThreshold:
		p.Level = LevelNear
		p.Message = "You are reaching your weekly target"
	default:
		remaining := roundTenth(targetHours - p.TotalHours)
		p.Level = LevelUnder
		p.Message = fmt.Sprintf("You have %s hours remaining in your weekly target", formatHours(remaining))
	}

	return p
}

// Summary renders "12.5/20 hours".
func (p Progress) Summary() string {
	return fmt.Sprintf("%s/%s hours", formatHours(p.TotalHours), formatHours(p.TargetHours))
}

// formatHours prints hours without a trailing ".0".
func formatHours(h float64) string {
	return strconv.FormatFloat(h, 'f', -1, 64)
}
