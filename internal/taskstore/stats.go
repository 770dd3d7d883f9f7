package taskstore

import (
	"github.com/yarlson/go-planner/internal/search"
)

// ComputeStats counts tasks, sums their durations and finds the most used
// tag. When tags tie, the one whose first appearance comes later wins.
func ComputeStats(tasks []Task) Stats {
	stats := Stats{TopTag: NoTag}

	counts := make(map[string]int)
	var order []string
	for _, t := range tasks {
		stats.TotalTasks++
		stats.TotalDuration += t.Duration
		if _, seen := counts[t.Tag]; !seen {
			order = append(order, t.Tag)
		}
		counts[t.Tag]++
	}

	best := 0
	for _, tag := range order {
		if counts[tag] >= best {
			best = counts[tag]
			stats.TopTag = tag
		}
	}

	return stats
}

// Suggestions are search hints built from the collection.
type Suggestions struct {
	Tags        []string `json:"tags"`
	CommonWords []string `json:"commonWords"`
}

// maxSuggestedWords caps Suggestions.CommonWords.
const maxSuggestedWords = 10

// Suggest lists distinct tags in first-seen order and the most common
// words in task titles.
func Suggest(tasks []Task) Suggestions {
	seen := make(map[string]bool)
	tags := []string{}
	titles := make([]string, 0, len(tasks))
	for _, t := range tasks {
		if !seen[t.Tag] {
			seen[t.Tag] = true
			tags = append(tags, t.Tag)
		}
		titles = append(titles, t.Title)
	}

	words := search.CommonWords(titles, maxSuggestedWords)
	if words == nil {
		words = []string{}
	}

	return Suggestions{Tags: tags, CommonWords: words}
}
