package task

import (
	"fmt"
	"slices"
	"strings"

	"golang.org/x/text/cases"
)

// Filter selects a subset of tasks.
type Filter string

const (
	FilterAll       Filter = "all"
	FilterCompleted Filter = "completed"
	FilterPending   Filter = "pending"
	FilterHigh      Filter = "high"
	FilterMedium    Filter = "medium"
	FilterLow       Filter = "low"
)

// SortKey orders a view.
type SortKey string

const (
	SortDate         SortKey = "date"
	SortPriority     SortKey = "priority"
	SortAlphabetical SortKey = "alphabetical"
)

// ParseFilter parses a filter name. Empty means FilterAll.
func ParseFilter(s string) (Filter, error) {
	switch f := Filter(strings.ToLower(strings.TrimSpace(s))); f {
	case "":
		return FilterAll, nil
	case FilterAll, FilterCompleted, FilterPending, FilterHigh, FilterMedium, FilterLow:
		return f, nil
	}
	return "", fmt.Errorf("invalid filter: %s", s)
}

// ParseSortKey parses a sort key name. Empty means SortDate.
func ParseSortKey(s string) (SortKey, error) {
	switch k := SortKey(strings.ToLower(strings.TrimSpace(s))); k {
	case "":
		return SortDate, nil
	case SortDate, SortPriority, SortAlphabetical:
		return k, nil
	}
	return "", fmt.Errorf("invalid sort key: %s", s)
}

// Match reports whether t passes the filter.
func (f Filter) Match(t Task) bool {
	switch f {
	case FilterAll:
		return true
	case FilterCompleted:
		return t.Status == StatusCompleted
	case FilterPending:
		return t.Status == StatusPending
	case FilterHigh:
		return t.Priority == PriorityHigh
	case FilterMedium:
		return t.Priority == PriorityMedium
	case FilterLow:
		return t.Priority == PriorityLow
	}
	return false
}

// View returns a new slice holding the tasks that pass f, ordered by k.
// The source slice is not modified. Sorting is stable.
func View(tasks []Task, f Filter, k SortKey) []Task {
	out := make([]Task, 0, len(tasks))
	for _, t := range tasks {
		if f.Match(t) {
			out = append(out, t)
		}
	}

	switch k {
	case SortDate:
		slices.SortStableFunc(out, func(a, b Task) int {
			return b.CreatedAt.Compare(a.CreatedAt)
		})
	case SortPriority:
		slices.SortStableFunc(out, func(a, b Task) int {
			return b.Priority.Rank() - a.Priority.Rank()
		})
	case SortAlphabetical:
		fold := cases.Fold()
		keyed := make([]titleKey, len(out))
		for i, t := range out {
			keyed[i] = titleKey{key: fold.String(t.Title), task: t}
		}
		slices.SortStableFunc(keyed, func(a, b titleKey) int {
			return strings.Compare(a.key, b.key)
		})
		for i := range keyed {
			out[i] = keyed[i].task
		}
	}
	return out
}

type titleKey struct {
	key  string
	task Task
}
