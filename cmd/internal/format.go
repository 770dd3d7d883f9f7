package internal

import (
	"strings"
)

// ProgressBar draws how much of the weekly target is planned. The width is
// the inner width, excluding brackets. Percentages are clamped to 0-100.
//
// Example: ProgressBar(50, 10) returns "[#####.....]"
func ProgressBar(percent, width int) string {
	if width < 0 {
		width = 0
	}
	percent = max(0, min(percent, 100))
	filled := (percent * width) / 100

	var sb strings.Builder
	sb.WriteString("[")
	sb.WriteString(strings.Repeat("#", filled))
	sb.WriteString(strings.Repeat(".", width-filled))
	sb.WriteString("]")

	return sb.String()
}
