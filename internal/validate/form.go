package validate

import (
	"sort"
	"strings"
	"time"
)

// Func validates one raw field value.
type Func func(value string) *FieldError

// Errors maps each failing field to its message. Fields absent from the map
// are valid.
type Errors map[Field]string

// Has reports whether the field failed.
func (e Errors) Has(field Field) bool {
	_, ok := e[field]
	return ok
}

// Error joins the messages in field order so the output is stable.
func (e Errors) Error() string {
	fields := make([]string, 0, len(e))
	for f := range e {
		fields = append(fields, string(f))
	}
	sort.Strings(fields)

	msgs := make([]string, 0, len(fields))
	for _, f := range fields {
		msgs = append(msgs, f+": "+e[Field(f)])
	}
	return strings.Join(msgs, "; ")
}

// Err returns nil when there are no failures, otherwise the Errors value.
func (e Errors) Err() error {
	if len(e) == 0 {
		return nil
	}
	return e
}

// Lookup returns the validator for a field, using now for date checks.
func Lookup(field Field, now time.Time) (Func, bool) {
	switch field {
	case FieldTitle:
		return Title, true
	case FieldDuration:
		return Duration, true
	case FieldTag:
		return Tag, true
	case FieldDueDate:
		return func(v string) *FieldError { return DueDateAt(v, now) }, true
	case FieldSearch:
		return SearchPattern, true
	default:
		return nil, false
	}
}

// Form validates every present field of a full or partial record.
func Form(values map[Field]string) Errors {
	return FormAt(values, time.Now())
}

// FormAt is Form with an explicit reference time for the due date rule.
// Unknown fields are ignored.
func FormAt(values map[Field]string, now time.Time) Errors {
	errs := Errors{}
	for field, value := range values {
		fn, ok := Lookup(field, now)
		if !ok {
			continue
		}
		if ferr := fn(value); ferr != nil {
			errs[field] = ferr.Message
		}
	}
	return errs
}
