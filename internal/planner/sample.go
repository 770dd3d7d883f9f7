package planner

import (
	"time"

	"github.com/yarlson/go-planner/internal/taskstore"
	"github.com/yarlson/go-planner/internal/validate"
)

// SampleTasks returns the starter tasks shown on a first run. Due dates are
// relative to now so they are never in the past.
func SampleTasks(now time.Time, newID func() string) []taskstore.Task {
	stamp := now.UTC().Truncate(time.Millisecond)
	local := now.Local()

	return []taskstore.Task{
		{
			ID:        newID(),
			Title:     "Study for Math Final",
			DueDate:   local.AddDate(0, 0, 7).Format(validate.DateLayout),
			Duration:  120,
			Tag:       "Academic",
			CreatedAt: stamp,
			UpdatedAt: stamp,
		},
		{
			ID:        newID(),
			Title:     "Group Project Meeting",
			DueDate:   local.AddDate(0, 0, 14).Format(validate.DateLayout),
			Duration:  60,
			Tag:       "Academic",
			CreatedAt: stamp,
			UpdatedAt: stamp,
		},
	}
}
