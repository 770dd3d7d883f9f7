package taskstore

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func tagged(tags ...string) []Task {
	tasks := make([]Task, len(tags))
	for i, tag := range tags {
		tasks[i] = Task{ID: tag, Title: "Task", Duration: 10 * (i + 1), Tag: tag}
	}
	return tasks
}

func TestComputeStats(t *testing.T) {
	tests := []struct {
		name     string
		tasks    []Task
		expected Stats
	}{
		{
			name:     "empty collection",
			tasks:    nil,
			expected: Stats{TopTag: NoTag},
		},
		{
			name:     "single tag",
			tasks:    tagged("Study"),
			expected: Stats{TotalTasks: 1, TotalDuration: 10, TopTag: "Study"},
		},
		{
			name:     "clear winner",
			tasks:    tagged("Lab", "Study", "Study"),
			expected: Stats{TotalTasks: 3, TotalDuration: 60, TopTag: "Study"},
		},
		{
			name:     "tie goes to tag first seen later",
			tasks:    tagged("A", "B", "A", "B"),
			expected: Stats{TotalTasks: 4, TotalDuration: 100, TopTag: "B"},
		},
		{
			name:     "tie ignores which tag reached the count last",
			tasks:    tagged("B", "A", "A", "B"),
			expected: Stats{TotalTasks: 4, TotalDuration: 100, TopTag: "A"},
		},
		{
			name:     "tags are case sensitive",
			tasks:    tagged("study", "Study", "Study"),
			expected: Stats{TotalTasks: 3, TotalDuration: 60, TopTag: "Study"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ComputeStats(tt.tasks))
		})
	}
}

func TestSuggest(t *testing.T) {
	t.Run("empty collection", func(t *testing.T) {
		s := Suggest(nil)
		assert.Equal(t, []string{}, s.Tags)
		assert.Equal(t, []string{}, s.CommonWords)
	})

	t.Run("distinct tags in first-seen order", func(t *testing.T) {
		tasks := []Task{
			{Title: "Chemistry homework", Tag: "Study"},
			{Title: "Chemistry lab", Tag: "Lab"},
			{Title: "Physics homework", Tag: "Study"},
		}

		s := Suggest(tasks)
		assert.Equal(t, []string{"Study", "Lab"}, s.Tags)
		assert.Equal(t, []string{"chemistry", "homework", "physics"}, s.CommonWords)
	})
}
