package taskstore

import (
	"cmp"
	"slices"
	"strings"
	"time"

	"github.com/yarlson/go-planner/internal/search"
)

// SearchField names a task attribute the search term is tested against.
type SearchField string

// Searchable fields.
const (
	SearchTitle SearchField = "title"
	SearchTag   SearchField = "tag"
)

// DefaultSearchFields are tested when no other fields are configured.
var DefaultSearchFields = []SearchField{SearchTitle, SearchTag}

func (f SearchField) value(t Task) (string, bool) {
	switch f {
	case SearchTitle:
		return t.Title, true
	case SearchTag:
		return t.Tag, true
	default:
		return "", false
	}
}

// View is the filter and sort state. It only shapes the derived view and
// never the canonical collection. Transitions return a new value.
type View struct {
	Search    string
	Field     SortField
	Direction Direction
}

// DefaultView orders by due date, soonest first, with no search term.
func DefaultView() View {
	return View{Field: SortByDueDate, Direction: Asc}
}

// WithSearch returns v with the search term replaced.
func (v View) WithSearch(term string) View {
	v.Search = term
	return v
}

// WithSort returns v with the sort field and direction replaced.
func (v View) WithSort(field SortField, dir Direction) View {
	v.Field = field
	v.Direction = dir
	return v
}

// Matcher compiles the view's search term.
func (v View) Matcher() search.Matcher {
	return search.Compile(v.Search)
}

// Derive filters tasks by the view's search term over fields and stably
// sorts the result. The input slice is not modified.
func Derive(tasks []Task, v View, fields []SearchField) []Task {
	if len(fields) == 0 {
		fields = DefaultSearchFields
	}

	accessors := make([]func(Task) string, 0, len(fields))
	for _, f := range fields {
		f := f
		if _, ok := f.value(Task{}); !ok {
			continue
		}
		accessors = append(accessors, func(t Task) string {
			s, _ := f.value(t)
			return s
		})
	}

	out := search.Filter(tasks, v.Matcher(), accessors...)
	sortTasks(out, v.Field, v.Direction)
	return out
}

func sortTasks(tasks []Task, field SortField, dir Direction) {
	compare := comparator(field)
	if compare == nil {
		return
	}
	if dir == Desc {
		asc := compare
		compare = func(a, b Task) int { return asc(b, a) }
	}
	slices.SortStableFunc(tasks, compare)
}

func comparator(field SortField) func(a, b Task) int {
	switch field {
	case SortByTitle:
		return func(a, b Task) int { return strings.Compare(a.Title, b.Title) }
	case SortByTag:
		return func(a, b Task) int { return strings.Compare(a.Tag, b.Tag) }
	case SortByDuration:
		return func(a, b Task) int { return cmp.Compare(a.Duration, b.Duration) }
	case SortByCreatedAt:
		return func(a, b Task) int { return a.CreatedAt.Compare(b.CreatedAt) }
	case SortByUpdatedAt:
		return func(a, b Task) int { return a.UpdatedAt.Compare(b.UpdatedAt) }
	case SortByDueDate:
		return compareDueDates
	default:
		return nil
	}
}

// compareDueDates orders by calendar day. Dates that do not parse come after
// every valid date and are ordered by their text.
func compareDueDates(a, b Task) int {
	da, errA := time.Parse(time.DateOnly, a.DueDate)
	db, errB := time.Parse(time.DateOnly, b.DueDate)
	switch {
	case errA == nil && errB == nil:
		return da.Compare(db)
	case errA == nil:
		return -1
	case errB == nil:
		return 1
	default:
		return strings.Compare(a.DueDate, b.DueDate)
	}
}
