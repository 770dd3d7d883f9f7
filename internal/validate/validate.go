// Package validate provides the field rules applied to task input before it
// reaches the task store.
package validate

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"
)

// Field names a validated task field.
type Field string

// Validated fields.
const (
	FieldTitle    Field = "title"
	FieldDueDate  Field = "dueDate"
	FieldDuration Field = "duration"
	FieldTag      Field = "tag"
	FieldSearch   Field = "search"
)

// Rule identifies which check a value failed.
type Rule string

// Validation rules, grouped by the field that applies them.
const (
	RuleRequired              Rule = "required"
	RuleTooShort              Rule = "too_short"
	RuleTooLong               Rule = "too_long"
	RuleSurroundingWhitespace Rule = "surrounding_whitespace"
	RuleDoubleSpaces          Rule = "double_spaces"
	RuleDuplicateWord         Rule = "duplicate_word"
	RuleNotANumber            Rule = "not_a_number"
	RuleNotPositiveInteger    Rule = "not_positive_integer"
	RuleExceedsMaximum        Rule = "exceeds_maximum"
	RuleBadFormat             Rule = "bad_format"
	RuleInvalidDate           Rule = "invalid_date"
	RuleInPast                Rule = "in_past"
	RuleInvalidCharacters     Rule = "invalid_characters"
	RuleInvalidPattern        Rule = "invalid_pattern"
)

// Limits applied by the field rules.
const (
	MinTitleLength = 2
	MinTagLength   = 2
	MaxTagLength   = 20
	MaxDuration    = 1440
	DateLayout     = "2006-01-02"
)

// ErrInvalid is the sentinel every FieldError unwraps to.
var ErrInvalid = errors.New("invalid field")

// FieldError describes the first rule a field value failed.
type FieldError struct {
	Field   Field
	Rule    Rule
	Message string
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func (e *FieldError) Unwrap() error {
	return ErrInvalid
}

func fail(field Field, rule Rule, msg string) *FieldError {
	return &FieldError{Field: field, Rule: rule, Message: msg}
}

var (
	multiSpaceRe  = regexp.MustCompile(`\s{2,}`)
	positiveIntRe = regexp.MustCompile(`^(0|[1-9]\d*)$`)
	dueDateRe     = regexp.MustCompile(`^\d{4}-(0[1-9]|1[0-2])-(0[1-9]|[12]\d|3[01])$`)
	tagRe         = regexp.MustCompile(`^[A-Za-z]+(?:[ -][A-Za-z]+)*$`)
	leadingIntRe  = regexp.MustCompile(`^\s*[+-]?\d+`)
)

// Title checks a task title.
func Title(value string) *FieldError {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return fail(FieldTitle, RuleRequired, "Title is required")
	}

	if utf8.RuneCountInString(trimmed) < MinTitleLength {
		return fail(FieldTitle, RuleTooShort, "Title must be at least 2 characters long")
	}

	if value != trimmed {
		return fail(FieldTitle, RuleSurroundingWhitespace, "Title can't have leading or trailing spaces")
	}

	if multiSpaceRe.MatchString(value) {
		return fail(FieldTitle, RuleDoubleSpaces, "Title can't have multiple consecutive spaces")
	}

	if hasDuplicateWord(value) {
		return fail(FieldTitle, RuleDuplicateWord, "Title contains duplicate words")
	}

	return nil
}

// hasDuplicateWord reports whether an ASCII word is immediately followed,
// across whitespace only, by the same word ignoring case.
func hasDuplicateWord(s string) bool {
	type span struct{ start, end int }

	var words []span
	start := -1
	for i := 0; i < len(s); i++ {
		if isWordByte(s[i]) {
			if start < 0 {
				start = i
			}
			continue
		}
		if start >= 0 {
			words = append(words, span{start, i})
			start = -1
		}
	}
	if start >= 0 {
		words = append(words, span{start, len(s)})
	}

	for i := 1; i < len(words); i++ {
		prev, cur := words[i-1], words[i]
		gap := s[prev.end:cur.start]
		if strings.TrimFunc(gap, unicode.IsSpace) != "" {
			continue
		}
		if strings.EqualFold(s[prev.start:prev.end], s[cur.start:cur.end]) {
			return true
		}
	}
	return false
}

func isWordByte(c byte) bool {
	return c == '_' ||
		(c >= '0' && c <= '9') ||
		(c >= 'a' && c <= 'z') ||
		(c >= 'A' && c <= 'Z')
}

// Duration checks a duration in minutes given as raw text.
func Duration(value string) *FieldError {
	if value == "" {
		return fail(FieldDuration, RuleRequired, "Duration is required")
	}

	if !leadingIntRe.MatchString(value) {
		return fail(FieldDuration, RuleNotANumber, "Duration must be a number")
	}

	if !positiveIntRe.MatchString(value) {
		return fail(FieldDuration, RuleNotPositiveInteger, "Duration must be a positive whole number")
	}

	n, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		// Only a range error is possible here: the value is all digits.
		return fail(FieldDuration, RuleExceedsMaximum, "Duration can't exceed 24 hours (1440 minutes)")
	}
	if n <= 0 {
		return fail(FieldDuration, RuleNotPositiveInteger, "Duration must be a positive whole number")
	}
	if n > MaxDuration {
		return fail(FieldDuration, RuleExceedsMaximum, "Duration can't exceed 24 hours (1440 minutes)")
	}

	return nil
}

// DueDate checks a due date against the current local day.
func DueDate(value string) *FieldError {
	return DueDateAt(value, time.Now())
}

// DueDateAt checks a due date against the local day that contains now.
func DueDateAt(value string, now time.Time) *FieldError {
	if value == "" {
		return fail(FieldDueDate, RuleRequired, "Due date is required")
	}

	if !dueDateRe.MatchString(value) {
		return fail(FieldDueDate, RuleBadFormat, "Date must be in YYYY-MM-DD format")
	}

	date, err := time.ParseInLocation(DateLayout, value, now.Location())
	if err != nil {
		return fail(FieldDueDate, RuleInvalidDate, "Invalid date")
	}

	y, m, d := now.Date()
	today := time.Date(y, m, d, 0, 0, 0, 0, now.Location())
	if date.Before(today) {
		return fail(FieldDueDate, RuleInPast, "Due date can't be in the past")
	}

	return nil
}

// Tag checks a category tag.
func Tag(value string) *FieldError {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return fail(FieldTag, RuleRequired, "Tag is required")
	}

	n := utf8.RuneCountInString(trimmed)
	if n < MinTagLength {
		return fail(FieldTag, RuleTooShort, "Tag must be at least 2 characters long")
	}
	if n > MaxTagLength {
		return fail(FieldTag, RuleTooLong, "Tag can't exceed 20 characters")
	}

	if !tagRe.MatchString(trimmed) {
		return fail(FieldTag, RuleInvalidCharacters, "Tag can only contain letters, spaces, and hyphens")
	}

	return nil
}

// SearchPattern reports whether a search term compiles as a regular
// expression. A blank pattern is valid.
func SearchPattern(pattern string) *FieldError {
	if strings.TrimSpace(pattern) == "" {
		return nil
	}
	if _, err := regexp.Compile(pattern); err != nil {
		return fail(FieldSearch, RuleInvalidPattern, "Invalid regex pattern")
	}
	return nil
}
