// Package taskstore owns the planner's task collection and the filtered,
// sorted view derived from it.
package taskstore

import (
	"fmt"
	"strings"
	"time"
)

// Task is a planned piece of work. It is the only persisted entity.
type Task struct {
	// ID is the unique identifier for the task. It never changes.
	ID string `json:"id" yaml:"id" toml:"id"`

	// Title is the short summary of the task.
	Title string `json:"title" yaml:"title" toml:"title"`

	// DueDate is the calendar day the task is due, formatted YYYY-MM-DD.
	DueDate string `json:"dueDate" yaml:"dueDate" toml:"dueDate"`

	// Duration is the planned effort in minutes.
	Duration int `json:"duration" yaml:"duration" toml:"duration"`

	// Tag is the free-text category used for grouping and stats.
	Tag string `json:"tag" yaml:"tag" toml:"tag"`

	// CreatedAt is when the task was created.
	CreatedAt time.Time `json:"createdAt" yaml:"createdAt" toml:"createdAt"`

	// UpdatedAt is when the task was last modified.
	UpdatedAt time.Time `json:"updatedAt" yaml:"updatedAt" toml:"updatedAt"`
}

// Edited reports whether the task changed after it was created.
func (t Task) Edited() bool {
	return t.UpdatedAt.After(t.CreatedAt)
}

// Draft holds the caller-supplied fields of a new task.
type Draft struct {
	Title    string
	DueDate  string
	Duration int
	Tag      string
}

// Patch holds a partial update. Nil fields are left unchanged.
type Patch struct {
	Title    *string
	DueDate  *string
	Duration *int
	Tag      *string
}

// IsEmpty reports whether the patch changes nothing.
func (p Patch) IsEmpty() bool {
	return p.Title == nil && p.DueDate == nil && p.Duration == nil && p.Tag == nil
}

func (p Patch) apply(t *Task) {
	if p.Title != nil {
		t.Title = *p.Title
	}
	if p.DueDate != nil {
		t.DueDate = *p.DueDate
	}
	if p.Duration != nil {
		t.Duration = *p.Duration
	}
	if p.Tag != nil {
		t.Tag = *p.Tag
	}
}

// SortField names the task attribute the view is ordered by.
type SortField string

// Sortable fields.
const (
	SortByTitle     SortField = "title"
	SortByDueDate   SortField = "dueDate"
	SortByDuration  SortField = "duration"
	SortByTag       SortField = "tag"
	SortByCreatedAt SortField = "createdAt"
	SortByUpdatedAt SortField = "updatedAt"
)

var sortFields = map[SortField]bool{
	SortByTitle:     true,
	SortByDueDate:   true,
	SortByDuration:  true,
	SortByTag:       true,
	SortByCreatedAt: true,
	SortByUpdatedAt: true,
}

// IsValid returns true if the field is sortable.
func (f SortField) IsValid() bool {
	return sortFields[f]
}

// Direction is the sort direction.
type Direction string

// Sort directions.
const (
	Asc  Direction = "asc"
	Desc Direction = "desc"
)

// IsValid returns true for Asc and Desc.
func (d Direction) IsValid() bool {
	return d == Asc || d == Desc
}

// Toggle returns the opposite direction.
func (d Direction) Toggle() Direction {
	if d == Desc {
		return Asc
	}
	return Desc
}

// ParseSort parses a field and direction as typed by a user. Field names
// are matched case-insensitively; an empty direction means ascending.
func ParseSort(field, dir string) (SortField, Direction, error) {
	var sf SortField
	for f := range sortFields {
		if strings.EqualFold(string(f), field) {
			sf = f
			break
		}
	}
	if sf == "" {
		return "", "", fmt.Errorf("%w: %q", ErrInvalidSort, field)
	}

	d := Direction(strings.ToLower(dir))
	if d == "" {
		d = Asc
	}
	if !d.IsValid() {
		return "", "", fmt.Errorf("%w: direction %q", ErrInvalidSort, dir)
	}
	return sf, d, nil
}

// Stats summarises the whole collection.
type Stats struct {
	TotalTasks    int    `json:"totalTasks"`
	TotalDuration int    `json:"totalDuration"`
	TopTag        string `json:"topTag"`
}

// NoTag is reported as the top tag of an empty collection.
const NoTag = "None"
