// Package search compiles user-supplied search terms into matchers.
//
// A term is tried as a regular expression first. Terms that fail to compile
// are not an error: the matcher falls back to a case-insensitive substring
// check so a half-typed pattern such as "[abc" still narrows the list.
package search

import (
	"fmt"
	"regexp"
	"strings"
)

// Kind tags the outcome of compiling a search term.
type Kind int

// Compilation outcomes.
const (
	// KindEmpty means the term was blank and everything matches.
	KindEmpty Kind = iota
	// KindCompiled means the term is a valid regular expression.
	KindCompiled
	// KindInvalid means the term did not compile and substring search is used.
	KindInvalid
)

// String returns the string representation of the Kind.
func (k Kind) String() string {
	switch k {
	case KindEmpty:
		return "empty"
	case KindCompiled:
		return "compiled"
	case KindInvalid:
		return "invalid"
	default:
		return "unknown"
	}
}

// DefaultFlags makes searches case-insensitive.
const DefaultFlags = "i"

// Matcher is a compiled search term. The zero value matches everything.
type Matcher struct {
	kind    Kind
	pattern string
	lower   string
	re      *regexp.Regexp
	err     error
}

// Compile compiles pattern with DefaultFlags.
func Compile(pattern string) Matcher {
	return CompileFlags(pattern, DefaultFlags)
}

// CompileFlags compiles pattern with a flag set. Supported flags are
// i (case-insensitive), m (multi-line), s (dot matches newline) and g, which
// is accepted and ignored because matching never carries state between calls.
func CompileFlags(pattern, flags string) Matcher {
	if strings.TrimSpace(pattern) == "" {
		return Matcher{kind: KindEmpty, pattern: pattern}
	}

	fallback := Matcher{
		kind:    KindInvalid,
		pattern: pattern,
		lower:   strings.ToLower(pattern),
	}

	prefix, err := flagPrefix(flags)
	if err != nil {
		fallback.err = err
		return fallback
	}

	re, err := regexp.Compile(prefix + pattern)
	if err != nil {
		fallback.err = err
		return fallback
	}

	return Matcher{kind: KindCompiled, pattern: pattern, re: re}
}

func flagPrefix(flags string) (string, error) {
	var b strings.Builder
	for _, f := range flags {
		switch f {
		case 'i', 'm', 's':
			if !strings.ContainsRune(b.String(), f) {
				b.WriteRune(f)
			}
		case 'g':
		default:
			return "", fmt.Errorf("unsupported search flag %q", f)
		}
	}
	if b.Len() == 0 {
		return "", nil
	}
	return "(?" + b.String() + ")", nil
}

// Kind reports how the term compiled.
func (m Matcher) Kind() Kind {
	return m.kind
}

// Pattern returns the raw term.
func (m Matcher) Pattern() string {
	return m.pattern
}

// Err returns the compile error for a KindInvalid matcher.
func (m Matcher) Err() error {
	return m.err
}

// Regexp returns the compiled expression, or nil unless Kind is KindCompiled.
func (m Matcher) Regexp() *regexp.Regexp {
	return m.re
}

// MatchString reports whether s matches. Each call is independent of any
// previous call on the same matcher.
func (m Matcher) MatchString(s string) bool {
	switch m.kind {
	case KindCompiled:
		return m.re.MatchString(s)
	case KindInvalid:
		return strings.Contains(strings.ToLower(s), m.lower)
	default:
		return true
	}
}

// MatchAny reports whether any of the values matches.
func (m Matcher) MatchAny(values ...string) bool {
	if m.kind == KindEmpty {
		return true
	}
	for _, v := range values {
		if m.MatchString(v) {
			return true
		}
	}
	return false
}

// Filter returns the items for which any of the field accessors matches.
// The input slice is not modified.
func Filter[T any](items []T, m Matcher, fields ...func(T) string) []T {
	out := make([]T, 0, len(items))
	values := make([]string, len(fields))
	for _, item := range items {
		for i, field := range fields {
			values[i] = field(item)
		}
		if m.MatchAny(values...) {
			out = append(out, item)
		}
	}
	return out
}
