package taskstore

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/yarlson/go-planner/internal/validate"
)

// LintError represents a problem that makes a task set unusable.
type LintError struct {
	TaskID string
	Error  string
}

// String returns a formatted string representation of the lint error.
func (e LintError) String() string {
	return fmt.Sprintf("%s: %s", e.TaskID, e.Error)
}

// LintWarning represents a non-fatal issue with a specific task.
type LintWarning struct {
	TaskID  string
	Warning string
}

// String returns a formatted string representation of the lint warning.
func (w LintWarning) String() string {
	return fmt.Sprintf("%s: %s", w.TaskID, w.Warning)
}

// LintResult contains the results of linting a task set.
type LintResult struct {
	Valid    bool
	Errors   []LintError
	Warnings []LintWarning
}

// Error returns an error if the lint result is invalid, or nil if valid.
func (r *LintResult) Error() error {
	if r.Valid || len(r.Errors) == 0 {
		return nil
	}

	var errMsgs []string
	for _, lintErr := range r.Errors {
		errMsgs = append(errMsgs, lintErr.String())
	}

	return fmt.Errorf("%d validation errors:\n%s", len(r.Errors), strings.Join(errMsgs, "\n"))
}

// LintTaskSet checks a collection that bypassed the field rules, such as an
// import. It checks for:
// - Missing IDs
// - Duplicate IDs
// - Field values the add form would reject (warning only)
// - UpdatedAt earlier than CreatedAt (warning only)
//
// Past due dates are expected in imports and are not reported.
func LintTaskSet(tasks []Task) *LintResult {
	result := &LintResult{
		Valid:    true,
		Errors:   []LintError{},
		Warnings: []LintWarning{},
	}

	seen := make(map[string]int, len(tasks))
	for i, task := range tasks {
		if strings.TrimSpace(task.ID) == "" {
			result.Valid = false
			result.Errors = append(result.Errors, LintError{
				TaskID: fmt.Sprintf("#%d", i),
				Error:  "task id is required",
			})
			continue
		}

		if first, dup := seen[task.ID]; dup {
			result.Valid = false
			result.Errors = append(result.Errors, LintError{
				TaskID: task.ID,
				Error:  fmt.Sprintf("duplicate id (also at #%d)", first),
			})
			continue
		}
		seen[task.ID] = i
	}

	for _, task := range tasks {
		for _, w := range lintFields(task) {
			result.Warnings = append(result.Warnings, LintWarning{TaskID: task.ID, Warning: w})
		}
	}

	return result
}

func lintFields(task Task) []string {
	var warnings []string

	if err := validate.Title(task.Title); err != nil {
		warnings = append(warnings, err.Message)
	}
	if err := validate.Duration(strconv.Itoa(task.Duration)); err != nil {
		warnings = append(warnings, err.Message)
	}
	if err := validate.Tag(task.Tag); err != nil {
		warnings = append(warnings, err.Message)
	}
	if err := validate.DueDate(task.DueDate); err != nil && err.Rule != validate.RuleInPast {
		warnings = append(warnings, err.Message)
	}
	if task.UpdatedAt.Before(task.CreatedAt) {
		warnings = append(warnings, "updatedAt is earlier than createdAt")
	}

	return warnings
}
