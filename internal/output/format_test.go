package output

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"taskflow/internal/service"
	"taskflow/internal/task"
)

func TestFormatTask(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	tests := []struct {
		name string
		num  int
		task task.Task
		want string
	}{
		{
			name: "pending",
			num:  1,
			task: task.Task{Title: "Buy milk", Priority: task.PriorityHigh, Status: task.StatusPending},
			want: "   1  [ ] Buy milk (high)\n",
		},
		{
			name: "completed",
			num:  12,
			task: task.Task{Title: "Ship", Priority: task.PriorityLow, Status: task.StatusCompleted, CompletedAt: &now},
			want: "  12  [x] Ship (low)\n",
		},
		{
			name: "multiline title",
			num:  3,
			task: task.Task{Title: "a\nb", Priority: task.PriorityMedium, Status: task.StatusPending},
			want: "   3  [ ] a b (medium)\n",
		},
		{
			name: "blank title",
			num:  4,
			task: task.Task{Title: "  ", Priority: task.PriorityMedium, Status: task.StatusPending},
			want: "   4  [ ] (untitled) (medium)\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			FormatTask(&buf, tt.num, tt.task)
			if buf.String() != tt.want {
				t.Errorf("expected %q, got %q", tt.want, buf.String())
			}
		})
	}
}

func TestFormatCounts(t *testing.T) {
	var buf bytes.Buffer
	FormatCounts(&buf, task.Counts{Total: 3, Completed: 1, Pending: 2})
	want := "total:     3\ncompleted: 1\npending:   2\n"
	if buf.String() != want {
		t.Errorf("expected %q, got %q", want, buf.String())
	}
}

func TestFormatRemoteTask(t *testing.T) {
	var buf bytes.Buffer
	FormatRemoteTask(&buf, service.Task{ID: "7", Name: "Docs", Status: service.TaskInProgress, Priority: service.PriorityHigh})
	want := "     7  In Progress  High    Docs\n"
	if buf.String() != want {
		t.Errorf("expected %q, got %q", want, buf.String())
	}
}

func TestFormatProject(t *testing.T) {
	var buf bytes.Buffer
	FormatProject(&buf, service.Project{ID: "2", Name: "Launch", Status: service.ProjectNotStarted}, true)
	want := "     2* Not Started  Launch\n"
	if buf.String() != want {
		t.Errorf("expected %q, got %q", want, buf.String())
	}
}

func TestFormatMember(t *testing.T) {
	var buf bytes.Buffer
	FormatMember(&buf, service.Member{ID: "5", Name: "Ada", Role: "Engineer", Email: "ada@example.com"})
	want := "     5  Ada (Engineer) <ada@example.com>\n"
	if buf.String() != want {
		t.Errorf("expected %q, got %q", want, buf.String())
	}
}

func TestFormatPageFooter(t *testing.T) {
	tests := []struct {
		shown, offset, total int
		want                 string
	}{
		{3, 0, 3, ""},
		{0, 0, 0, ""},
		{20, 0, 45, "(1-20 of 45)\n"},
		{5, 40, 45, "(41-45 of 45)\n"},
	}
	for _, tt := range tests {
		var buf bytes.Buffer
		FormatPageFooter(&buf, tt.shown, tt.offset, tt.total)
		if buf.String() != tt.want {
			t.Errorf("FormatPageFooter(%d, %d, %d) = %q, want %q", tt.shown, tt.offset, tt.total, buf.String(), tt.want)
		}
	}
}

func TestRenderAndDecode(t *testing.T) {
	created := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	tasks := []task.Task{{
		ID:        "a",
		Title:     "Buy milk",
		Priority:  task.PriorityHigh,
		Status:    task.StatusPending,
		CreatedAt: created,
	}}

	for _, format := range []string{FormatJSON, FormatYAML} {
		t.Run(format, func(t *testing.T) {
			var buf bytes.Buffer
			if err := Render(&buf, format, tasks); err != nil {
				t.Fatalf("Render: %v", err)
			}
			if !strings.Contains(buf.String(), "createdAt") {
				t.Errorf("expected createdAt field, got %s", buf.String())
			}

			var got []task.Task
			if err := Decode(buf.Bytes(), &got); err != nil {
				t.Fatalf("Decode: %v", err)
			}
			if len(got) != 1 || got[0].ID != "a" || !got[0].CreatedAt.Equal(created) || got[0].CompletedAt != nil {
				t.Errorf("unexpected decoded tasks %+v", got)
			}
		})
	}
}

func TestParseFormat(t *testing.T) {
	if f, err := ParseFormat(""); err != nil || f != FormatText {
		t.Errorf("expected text default, got %q %v", f, err)
	}
	if _, err := ParseFormat("xml"); err == nil {
		t.Error("expected error for xml")
	}
}
