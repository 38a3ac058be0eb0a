package commands

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"taskflow/internal/task"
)

// minPrefixLen is the shortest id prefix accepted as a task reference.
const minPrefixLen = 4

// ErrTaskRefRequired indicates no task reference was provided.
var ErrTaskRefRequired = errors.New("task reference required")

// ResolveTaskRef resolves a task reference against the local tasks.
//
// Resolution rules:
//  1. All digits: 1-based position in the default view (filter all, sort date)
//  2. Exact task id
//  3. Unique id prefix of at least minPrefixLen characters
//
// Anything else is reported as not found.
func ResolveTaskRef(tasks []task.Task, args []string) (task.Task, error) {
	if len(args) == 0 || strings.TrimSpace(args[0]) == "" {
		return task.Task{}, ErrTaskRefRequired
	}
	ref := strings.TrimSpace(args[0])

	if isAllDigits(ref) {
		num, err := strconv.Atoi(ref)
		if err != nil {
			return task.Task{}, fmt.Errorf("invalid task reference: %s", ref)
		}
		view := task.View(tasks, task.FilterAll, task.SortDate)
		if num < 1 || num > len(view) {
			return task.Task{}, fmt.Errorf("task number out of range: %d", num)
		}
		return view[num-1], nil
	}

	var match *task.Task
	for i := range tasks {
		t := &tasks[i]
		if t.ID == ref {
			return *t, nil
		}
		if len(ref) >= minPrefixLen && strings.HasPrefix(t.ID, ref) {
			if match != nil {
				return task.Task{}, fmt.Errorf("ambiguous task id: %s", ref)
			}
			match = t
		}
	}
	if match == nil {
		return task.Task{}, fmt.Errorf("task not found: %s", ref)
	}
	return *match, nil
}

// isAllDigits returns true if s consists only of ASCII digits and is non-empty.
func isAllDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r > unicode.MaxASCII || !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}
