// Package output provides formatters for CLI output.
package output

import (
	"fmt"
	"io"
	"strings"

	"taskflow/internal/service"
	"taskflow/internal/task"
)

const (
	// Separator is the separator line around section headers.
	Separator = "------------"
)

// FormatTask formats a local task line.
// Format: "{N:>4}  [x] {TITLE} ({PRIORITY})\n" where the mark is blank for
// pending tasks.
func FormatTask(w io.Writer, num int, t task.Task) {
	mark := " "
	if t.Completed() {
		mark = "x"
	}
	fmt.Fprintf(w, "%4d  [%s] %s (%s)\n", num, mark, normalizeTitle(t.Title), t.Priority)
}

// FormatTaskDetail formats a single local task with all its fields.
func FormatTaskDetail(w io.Writer, t task.Task) {
	fmt.Fprintf(w, "id:          %s\n", t.ID)
	fmt.Fprintf(w, "title:       %s\n", normalizeTitle(t.Title))
	if t.Description != "" {
		fmt.Fprintf(w, "description: %s\n", flatten(t.Description))
	}
	fmt.Fprintf(w, "priority:    %s\n", t.Priority)
	fmt.Fprintf(w, "status:      %s\n", t.Status)
}

// FormatCounts formats the task header statistics.
func FormatCounts(w io.Writer, c task.Counts) {
	fmt.Fprintf(w, "total:     %d\n", c.Total)
	fmt.Fprintf(w, "completed: %d\n", c.Completed)
	fmt.Fprintf(w, "pending:   %d\n", c.Pending)
}

// FormatHeader formats a section header.
func FormatHeader(w io.Writer, title string) {
	fmt.Fprintln(w, Separator)
	fmt.Fprintln(w, normalizeTitle(title))
	fmt.Fprintln(w, Separator)
}

// FormatRemoteTask formats a remote task line.
// Format: "{ID:>6}  {STATUS:<11}  {PRIORITY:<6}  {TITLE}\n"
func FormatRemoteTask(w io.Writer, t service.Task) {
	title := t.Title
	if title == "" {
		title = t.Name
	}
	fmt.Fprintf(w, "%6s  %-11s  %-6s  %s\n", t.ID, t.Status, t.Priority, normalizeTitle(title))
}

// FormatProject formats a project line. Selected projects are marked with "*".
// Format: "{ID:>6}{MARK} {STATUS:<11}  {NAME}\n"
func FormatProject(w io.Writer, p service.Project, selected bool) {
	mark := " "
	if selected {
		mark = "*"
	}
	fmt.Fprintf(w, "%6s%s %-11s  %s\n", p.ID, mark, p.Status, normalizeTitle(p.Name))
}

// FormatMember formats a team member line.
func FormatMember(w io.Writer, m service.Member) {
	line := fmt.Sprintf("%6s  %s", m.ID, normalizeTitle(m.Name))
	if m.Role != "" {
		line += " (" + m.Role + ")"
	}
	if m.Email != "" {
		line += " <" + m.Email + ">"
	}
	fmt.Fprintln(w, line)
}

// FormatUser formats the signed-in user's profile.
func FormatUser(w io.Writer, u service.User) {
	fmt.Fprintf(w, "id:    %s\n", u.ID)
	fmt.Fprintf(w, "name:  %s\n", normalizeTitle(u.Name))
	if u.Email != "" {
		fmt.Fprintf(w, "email: %s\n", u.Email)
	}
}

// FormatPageFooter formats the paging summary of a remote listing.
// Nothing is written when everything fits on one page.
func FormatPageFooter(w io.Writer, shown, offset, total int) {
	if shown == 0 || (offset == 0 && shown >= total) {
		return
	}
	fmt.Fprintf(w, "(%d-%d of %d)\n", offset+1, offset+shown, total)
}

// normalizeTitle normalizes a title for display.
// - Empty or whitespace-only titles become "(untitled)"
// - Newlines are replaced with spaces
func normalizeTitle(title string) string {
	title = flatten(title)
	if strings.TrimSpace(title) == "" {
		return "(untitled)"
	}
	return title
}

func flatten(s string) string {
	s = strings.ReplaceAll(s, "\r", " ")
	return strings.ReplaceAll(s, "\n", " ")
}
