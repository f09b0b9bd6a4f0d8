// Package search filters tasks by free text and splits text around matches.
package search

import (
	"regexp"
	"strings"

	"tasklanes/internal/task"
)

// Segment is a run of text that either matches the query or does not.
type Segment struct {
	Text  string
	Match bool
}

// Filter keeps the tasks whose title or description contains query,
// ignoring case. Order is preserved; a blank query returns tasks as is.
func Filter(tasks []task.Task, query string) []task.Task {
	q := normalize(query)
	if q == "" {
		return tasks
	}
	out := make([]task.Task, 0, len(tasks))
	for _, t := range tasks {
		if Matches(t, q) {
			out = append(out, t)
		}
	}
	return out
}

// Matches reports whether t matches query.
func Matches(t task.Task, query string) bool {
	q := normalize(query)
	if q == "" {
		return true
	}
	return strings.Contains(strings.ToLower(t.Title), q) ||
		strings.Contains(strings.ToLower(t.Description), q)
}

// Highlight splits text on every case-insensitive occurrence of query.
// Joining the segment texts gives back text unchanged.
func Highlight(text, query string) []Segment {
	if text == "" {
		return nil
	}
	q := strings.TrimSpace(query)
	if q == "" {
		return []Segment{{Text: text}}
	}

	re := regexp.MustCompile("(?i)" + regexp.QuoteMeta(q))
	locs := re.FindAllStringIndex(text, -1)
	if len(locs) == 0 {
		return []Segment{{Text: text}}
	}

	segs := make([]Segment, 0, len(locs)*2+1)
	prev := 0
	for _, loc := range locs {
		if loc[0] > prev {
			segs = append(segs, Segment{Text: text[prev:loc[0]]})
		}
		segs = append(segs, Segment{Text: text[loc[0]:loc[1]], Match: true})
		prev = loc[1]
	}
	if prev < len(text) {
		segs = append(segs, Segment{Text: text[prev:]})
	}
	return segs
}

func normalize(query string) string {
	return strings.ToLower(strings.TrimSpace(query))
}
