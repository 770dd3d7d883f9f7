package search

import (
	"regexp"
	"sort"
	"strings"
	"unicode/utf8"
)

// Highlight wraps every match of m in text with mark. Blank terms and
// empty matches leave the text unchanged.
func Highlight(text string, m Matcher, mark func(string) string) string {
	if text == "" || mark == nil {
		return text
	}

	var spans [][]int
	switch m.kind {
	case KindCompiled:
		spans = m.re.FindAllStringIndex(text, -1)
	case KindInvalid:
		spans = substringSpans(text, m.lower)
	default:
		return text
	}

	var b strings.Builder
	last := 0
	for _, s := range spans {
		if s[0] == s[1] {
			continue
		}
		b.WriteString(text[last:s[0]])
		b.WriteString(mark(text[s[0]:s[1]]))
		last = s[1]
	}
	b.WriteString(text[last:])
	return b.String()
}

// substringSpans finds case-insensitive occurrences of needle. The
// expression is built from the quoted needle so byte offsets refer to text
// even when lower-casing would change lengths.
func substringSpans(text, needle string) [][]int {
	if needle == "" {
		return nil
	}
	re, err := regexp.Compile("(?i)" + regexp.QuoteMeta(needle))
	if err != nil {
		return nil
	}
	return re.FindAllStringIndex(text, -1)
}

// CommonWords returns the most frequent words longer than three characters,
// lower-cased, most frequent first. Ties keep first-seen order. A limit of
// zero or less returns every word.
func CommonWords(texts []string, limit int) []string {
	counts := make(map[string]int)
	var order []string

	for _, text := range texts {
		for _, w := range strings.Fields(strings.ToLower(text)) {
			if utf8.RuneCountInString(w) <= 3 {
				continue
			}
			if _, seen := counts[w]; !seen {
				order = append(order, w)
			}
			counts[w]++
		}
	}

	sort.SliceStable(order, func(i, j int) bool {
		return counts[order[i]] > counts[order[j]]
	})

	if limit > 0 && len(order) > limit {
		order = order[:limit]
	}
	return order
}

// ExactTag builds a term that matches tag as a whole value or a whole word.
func ExactTag(tag string) string {
	q := regexp.QuoteMeta(tag)
	return `^` + q + `$|\b` + q + `\b`
}

// TimeMentions builds a term that finds clock times or durations written in
// a title, such as "10 AM" or "2 hours".
func TimeMentions() string {
	return `\b\d{2}\s*(?:AM|PM)?\b|\b\d{1,2}\s*(?:hours?|hrs?|minutes?|mins?)\b`
}
