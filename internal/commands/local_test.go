package commands_test

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"taskflow/internal/commands"
	"taskflow/internal/exitcode"
	"taskflow/internal/storage"
	"taskflow/internal/task"
	"taskflow/internal/testutil"
)

func TestVersionCommand(t *testing.T) {
	env := newTestEnv(t)

	code, out, _ := run(t, &commands.VersionCmd{}, env)

	if code != exitcode.Success {
		t.Errorf("expected exit code %d, got %d", exitcode.Success, code)
	}
	if out != "taskflow 0.1.0\n" {
		t.Errorf("unexpected output %q", out)
	}
}

func TestHelpCommand(t *testing.T) {
	env := newTestEnv(t)

	code, out, errOut := run(t, &commands.HelpCmd{}, env)

	if code != exitcode.Success {
		t.Errorf("expected exit code %d, got %d", exitcode.Success, code)
	}
	if errOut != "" {
		t.Errorf("expected no stderr, got %q", errOut)
	}
	testutil.GoldenString(t, "help", out)
}

func TestRegistry_AllCommandsRegistered(t *testing.T) {
	for _, name := range []string{
		"list", "add", "toggle", "done", "rm", "stats", "export", "import", "theme",
		"remote-tasks", "remote-add", "remote-update", "remote-rm",
		"projects", "project-add", "project-update", "project-rm", "members",
		"login", "logout", "whoami", "profile", "serve", "help", "version",
	} {
		if _, ok := commands.DefaultRegistry.Find(name); !ok {
			t.Errorf("command %q not registered", name)
		}
	}
}

func TestRegistry_AliasesAndClashes(t *testing.T) {
	r := commands.NewRegistry()
	if err := r.Register(&commands.ToggleCmd{}); err != nil {
		t.Fatalf("register toggle: %v", err)
	}
	if err := r.Register(&commands.AddCmd{}); err != nil {
		t.Fatalf("register add: %v", err)
	}

	cmd, ok := r.Find("done")
	if !ok || cmd.Name() != "toggle" {
		t.Errorf("alias done resolved to %v, %v", cmd, ok)
	}
	if err := r.Register(&commands.ToggleCmd{}); err == nil {
		t.Error("expected duplicate registration to fail")
	}

	var names []string
	for _, c := range r.All() {
		names = append(names, c.Name())
	}
	if strings.Join(names, ",") != "add,toggle" {
		t.Errorf("All() = %v", names)
	}
}

func TestListCommand_Empty(t *testing.T) {
	env := newTestEnv(t)

	code, out, _ := run(t, &commands.ListCmd{}, env)

	if code != exitcode.Success {
		t.Errorf("expected exit code %d, got %d", exitcode.Success, code)
	}
	if out != "no tasks\n" {
		t.Errorf("expected 'no tasks', got %q", out)
	}
}

func TestListCommand_EmptyQuiet(t *testing.T) {
	env := newTestEnv(t)
	env.Config.Quiet = true

	_, out, _ := run(t, &commands.ListCmd{}, env)

	if out != "" {
		t.Errorf("expected no output, got %q", out)
	}
}

func TestListCommand_DefaultViewNewestFirst(t *testing.T) {
	env := newTestEnv(t)
	addTasks(t, env, "first", "second", "third")

	code, out, _ := run(t, &commands.ListCmd{}, env)

	if code != exitcode.Success {
		t.Fatalf("expected exit code %d, got %d", exitcode.Success, code)
	}
	testutil.GoldenString(t, "list_default", out)
}

func TestListCommand_FilterKeepsDefaultNumbers(t *testing.T) {
	env := newTestEnv(t)
	created := addTasks(t, env, "first", "second", "third")
	if _, err := env.Tasks.ToggleStatus(context.Background(), created[0].ID); err != nil {
		t.Fatal(err)
	}

	_, out, _ := run(t, &commands.ListCmd{}, env, "--filter", "completed")

	if out != "   3  [x] first (medium)\n" {
		t.Errorf("unexpected output %q", out)
	}
}

func TestListCommand_SortAlphabetical(t *testing.T) {
	env := newTestEnv(t)
	addTasks(t, env, "banana", "Apple", "cherry")

	_, out, _ := run(t, &commands.ListCmd{}, env, "--sort", "alphabetical")

	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected 3 lines, got %q", out)
	}
	for i, want := range []string{"Apple", "banana", "cherry"} {
		if !strings.Contains(lines[i], want) {
			t.Errorf("line %d: expected %q, got %q", i, want, lines[i])
		}
	}
}

func TestListCommand_InvalidFilter(t *testing.T) {
	env := newTestEnv(t)

	code, _, errOut := run(t, &commands.ListCmd{}, env, "--filter", "urgent")

	if code != exitcode.UserError {
		t.Errorf("expected exit code %d, got %d", exitcode.UserError, code)
	}
	if errOut != "error: invalid filter: urgent\n" {
		t.Errorf("unexpected stderr %q", errOut)
	}
}

func TestListCommand_JSON(t *testing.T) {
	env := newTestEnv(t)
	addTasks(t, env, "one", "two")

	code, out, _ := run(t, &commands.ListCmd{}, env, "--format", "json")

	if code != exitcode.Success {
		t.Fatalf("expected exit code %d, got %d", exitcode.Success, code)
	}
	var got []task.Task
	if err := json.Unmarshal([]byte(out), &got); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if len(got) != 2 || got[0].Title != "two" {
		t.Errorf("unexpected tasks %+v", got)
	}
}

func TestAddCommand_Success(t *testing.T) {
	env := newTestEnv(t)

	code, out, _ := run(t, &commands.AddCmd{}, env, "--priority", "High", "-d", "by friday", "Write", "report")

	if code != exitcode.Success {
		t.Fatalf("expected exit code %d, got %d", exitcode.Success, code)
	}
	if out != "ok\n" {
		t.Errorf("expected 'ok', got %q", out)
	}
	tasks := env.Tasks.Tasks()
	if len(tasks) != 1 {
		t.Fatalf("expected 1 task, got %d", len(tasks))
	}
	got := tasks[0]
	if got.Title != "Write report" || got.Priority != task.PriorityHigh || got.Description != "by friday" {
		t.Errorf("unexpected task %+v", got)
	}
	if got.Status != task.StatusPending {
		t.Errorf("expected pending, got %s", got.Status)
	}
}

func TestAddCommand_Quiet(t *testing.T) {
	env := newTestEnv(t)
	env.Config.Quiet = true

	code, out, _ := run(t, &commands.AddCmd{}, env, "task")

	if code != exitcode.Success {
		t.Errorf("expected exit code %d, got %d", exitcode.Success, code)
	}
	if out != "" {
		t.Errorf("expected no output, got %q", out)
	}
}

func TestAddCommand_NoTitle(t *testing.T) {
	env := newTestEnv(t)

	code, _, errOut := run(t, &commands.AddCmd{}, env, "  ")

	if code != exitcode.UserError {
		t.Errorf("expected exit code %d, got %d", exitcode.UserError, code)
	}
	if errOut != "error: title required\n" {
		t.Errorf("unexpected stderr %q", errOut)
	}
}

func TestAddCommand_InvalidPriority(t *testing.T) {
	env := newTestEnv(t)

	code, _, errOut := run(t, &commands.AddCmd{}, env, "--priority", "urgent", "x")

	if code != exitcode.UserError {
		t.Errorf("expected exit code %d, got %d", exitcode.UserError, code)
	}
	if errOut != "error: invalid priority: urgent\n" {
		t.Errorf("unexpected stderr %q", errOut)
	}
}

func TestAddCommand_StorageFailure(t *testing.T) {
	env := newTestEnv(t)
	env.kv.SetErr = os.ErrPermission

	code, _, errOut := run(t, &commands.AddCmd{}, env, "x")

	if code != exitcode.LocalError {
		t.Errorf("expected exit code %d, got %d", exitcode.LocalError, code)
	}
	if !strings.HasPrefix(errOut, "error: local storage error: ") {
		t.Errorf("unexpected stderr %q", errOut)
	}
	if len(env.Tasks.Tasks()) != 0 {
		t.Error("failed write must not change the collection")
	}
}

func TestToggleCommand_ByNumberRoundTrip(t *testing.T) {
	env := newTestEnv(t)
	created := addTasks(t, env, "older", "newer")

	code, out, _ := run(t, &commands.ToggleCmd{}, env, "2")
	if code != exitcode.Success || out != "completed\n" {
		t.Fatalf("toggle: code %d, out %q", code, out)
	}
	got, _ := env.Tasks.Get(created[0].ID)
	if !got.Completed() || got.CompletedAt == nil {
		t.Fatalf("expected older task completed, got %+v", got)
	}

	code, out, _ = run(t, &commands.ToggleCmd{}, env, "2")
	if code != exitcode.Success || out != "pending\n" {
		t.Fatalf("toggle back: code %d, out %q", code, out)
	}
	got, _ = env.Tasks.Get(created[0].ID)
	if got.Completed() || got.CompletedAt != nil {
		t.Errorf("expected pending with no completedAt, got %+v", got)
	}
}

func TestToggleCommand_ByIDPrefix(t *testing.T) {
	env := newTestEnv(t)
	created := addTasks(t, env, "only")

	code, _, errOut := run(t, &commands.ToggleCmd{}, env, created[0].ID[:8])

	if code != exitcode.Success {
		t.Fatalf("expected exit code %d, got %d (%s)", exitcode.Success, code, errOut)
	}
}

func TestToggleCommand_NoRef(t *testing.T) {
	env := newTestEnv(t)

	code, _, errOut := run(t, &commands.ToggleCmd{}, env)

	if code != exitcode.UserError {
		t.Errorf("expected exit code %d, got %d", exitcode.UserError, code)
	}
	if errOut != "error: task reference required\n" {
		t.Errorf("unexpected stderr %q", errOut)
	}
}

func TestToggleCommand_OutOfRange(t *testing.T) {
	env := newTestEnv(t)
	addTasks(t, env, "only")

	code, _, errOut := run(t, &commands.ToggleCmd{}, env, "5")

	if code != exitcode.UserError {
		t.Errorf("expected exit code %d, got %d", exitcode.UserError, code)
	}
	if errOut != "error: task number out of range: 5\n" {
		t.Errorf("unexpected stderr %q", errOut)
	}
}

func TestRmCommand_Success(t *testing.T) {
	env := newTestEnv(t)
	created := addTasks(t, env, "keep", "drop")

	code, out, _ := run(t, &commands.RmCmd{}, env, "1")

	if code != exitcode.Success || out != "ok\n" {
		t.Fatalf("rm: code %d, out %q", code, out)
	}
	tasks := env.Tasks.Tasks()
	if len(tasks) != 1 || tasks[0].ID != created[0].ID {
		t.Errorf("expected only %q left, got %+v", created[0].Title, tasks)
	}
}

func TestRmCommand_UnknownID(t *testing.T) {
	env := newTestEnv(t)
	addTasks(t, env, "keep")

	code, _, errOut := run(t, &commands.RmCmd{}, env, "no-such-id")

	if code != exitcode.UserError {
		t.Errorf("expected exit code %d, got %d", exitcode.UserError, code)
	}
	if errOut != "error: task not found: no-such-id\n" {
		t.Errorf("unexpected stderr %q", errOut)
	}
	if len(env.Tasks.Tasks()) != 1 {
		t.Error("collection changed")
	}
}

func TestStatsCommand(t *testing.T) {
	env := newTestEnv(t)
	created := addTasks(t, env, "a", "b", "c")
	if _, err := env.Tasks.ToggleStatus(context.Background(), created[1].ID); err != nil {
		t.Fatal(err)
	}

	_, out, _ := run(t, &commands.StatsCmd{}, env)

	expected := "total:     3\ncompleted: 1\npending:   2\n"
	if out != expected {
		t.Errorf("expected %q, got %q", expected, out)
	}
}

func TestExportImport_RoundTrip(t *testing.T) {
	for _, format := range []string{"json", "yaml"} {
		t.Run(format, func(t *testing.T) {
			src := newTestEnv(t)
			created := addTasks(t, src, "one", "two")
			if _, err := src.Tasks.ToggleStatus(context.Background(), created[0].ID); err != nil {
				t.Fatal(err)
			}

			code, out, _ := run(t, &commands.ExportCmd{}, src, "--format", format)
			if code != exitcode.Success {
				t.Fatalf("export failed: %d", code)
			}
			path := filepath.Join(t.TempDir(), "tasks."+format)
			if err := os.WriteFile(path, []byte(out), 0600); err != nil {
				t.Fatal(err)
			}

			dst := newTestEnv(t)
			code, out, errOut := run(t, &commands.ImportCmd{}, dst, path)
			if code != exitcode.Success {
				t.Fatalf("import failed: %d %s", code, errOut)
			}
			if out != "imported 2, skipped 0\n" {
				t.Errorf("unexpected output %q", out)
			}

			got := dst.Tasks.Tasks()
			want := src.Tasks.Tasks()
			if len(got) != len(want) {
				t.Fatalf("expected %d tasks, got %d", len(want), len(got))
			}
			for i := range want {
				if got[i].ID != want[i].ID || got[i].Status != want[i].Status ||
					!got[i].CreatedAt.Equal(want[i].CreatedAt) {
					t.Errorf("task %d: want %+v, got %+v", i, want[i], got[i])
				}
			}
			if got[0].CompletedAt == nil || !got[0].CompletedAt.Equal(*want[0].CompletedAt) {
				t.Errorf("completedAt not preserved: %v", got[0].CompletedAt)
			}

			_, out, _ = run(t, &commands.ImportCmd{}, dst, path)
			if out != "imported 0, skipped 2\n" {
				t.Errorf("expected duplicates skipped, got %q", out)
			}
		})
	}
}

func TestImportCommand_RejectsBrokenInvariant(t *testing.T) {
	env := newTestEnv(t)
	path := filepath.Join(t.TempDir(), "bad.json")
	data := `[{"id":"x1","title":"t","priority":"medium","status":"completed","createdAt":"2024-01-01T00:00:00Z","completedAt":null}]`
	if err := os.WriteFile(path, []byte(data), 0600); err != nil {
		t.Fatal(err)
	}

	code, _, _ := run(t, &commands.ImportCmd{}, env, path)

	if code != exitcode.UserError {
		t.Errorf("expected exit code %d, got %d", exitcode.UserError, code)
	}
	if len(env.Tasks.Tasks()) != 0 {
		t.Error("invalid task imported")
	}
}

func TestExportCommand_TextRejected(t *testing.T) {
	env := newTestEnv(t)

	code, _, _ := run(t, &commands.ExportCmd{}, env, "--format", "text")

	if code != exitcode.UserError {
		t.Errorf("expected exit code %d, got %d", exitcode.UserError, code)
	}
}

func TestThemeCommand(t *testing.T) {
	env := newTestEnv(t)

	steps := []struct {
		args []string
		want string
	}{
		{nil, "light\n"},
		{[]string{"dark"}, "dark\n"},
		{[]string{"toggle"}, "light\n"},
		{[]string{"toggle"}, "dark\n"},
		{nil, "dark\n"},
	}
	for _, step := range steps {
		code, out, _ := run(t, &commands.ThemeCmd{}, env, step.args...)
		if code != exitcode.Success || out != step.want {
			t.Errorf("theme %v: code %d, out %q, want %q", step.args, code, out, step.want)
		}
	}

	dark, err := storage.DarkMode(context.Background(), env.KV)
	if err != nil || !dark {
		t.Errorf("expected dark mode stored, got %v %v", dark, err)
	}

	code, _, _ := run(t, &commands.ThemeCmd{}, env, "sepia")
	if code != exitcode.UserError {
		t.Errorf("expected exit code %d, got %d", exitcode.UserError, code)
	}
}
