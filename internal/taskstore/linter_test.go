package taskstore

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func lintTask(id string) Task {
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	return Task{
		ID:        id,
		Title:     "Read chapter 4",
		DueDate:   "2020-01-10",
		Duration:  60,
		Tag:       "Study",
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func TestLintTaskSet_Valid(t *testing.T) {
	result := LintTaskSet([]Task{lintTask("a"), lintTask("b")})

	assert.True(t, result.Valid)
	assert.Empty(t, result.Errors)
	assert.Empty(t, result.Warnings, "past due dates are not reported")
	assert.NoError(t, result.Error())
}

func TestLintTaskSet_Empty(t *testing.T) {
	result := LintTaskSet(nil)

	assert.True(t, result.Valid)
	assert.NoError(t, result.Error())
}

func TestLintTaskSet_MissingID(t *testing.T) {
	result := LintTaskSet([]Task{lintTask("a"), lintTask("  ")})

	assert.False(t, result.Valid)
	require.Len(t, result.Errors, 1)
	assert.Equal(t, "#1", result.Errors[0].TaskID)
	assert.Contains(t, result.Errors[0].Error, "id is required")
}

func TestLintTaskSet_DuplicateID(t *testing.T) {
	result := LintTaskSet([]Task{lintTask("a"), lintTask("b"), lintTask("a")})

	assert.False(t, result.Valid)
	require.Len(t, result.Errors, 1)
	assert.Equal(t, "a", result.Errors[0].TaskID)
	assert.Contains(t, result.Errors[0].Error, "#0")

	err := result.Error()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "1 validation errors")
}

func TestLintTaskSet_FieldWarnings(t *testing.T) {
	bad := lintTask("a")
	bad.Title = " padded"
	bad.Duration = 2000
	bad.Tag = "x"
	bad.DueDate = "next week"
	bad.UpdatedAt = bad.CreatedAt.Add(-time.Hour)

	result := LintTaskSet([]Task{bad})

	assert.True(t, result.Valid, "field problems are warnings only")
	assert.Len(t, result.Warnings, 5)
	for _, w := range result.Warnings {
		assert.Equal(t, "a", w.TaskID)
	}
	assert.Equal(t, "a: updatedAt is earlier than createdAt", result.Warnings[4].String())
}
