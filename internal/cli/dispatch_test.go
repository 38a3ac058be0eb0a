package cli_test

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"taskflow/internal/cli"
	"taskflow/internal/commands"
	"taskflow/internal/config"
	"taskflow/internal/exitcode"
	"taskflow/internal/service"
	"taskflow/internal/storage"
	"taskflow/internal/testutil"
)

// testFactory creates a service factory that returns the given FakeService.
func testFactory(svc *testutil.FakeService) cli.ServiceFactory {
	return func(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (service.Service, error) {
		return svc, nil
	}
}

// memoryOpener shares one in-memory store across dispatches.
func memoryOpener(kv storage.KV) cli.StorageOpener {
	return func(cfg *config.Config) (storage.KV, error) {
		return kv, nil
	}
}

type harness struct {
	t          *testing.T
	dispatcher *cli.Dispatcher
	dir        string
}

func newHarness(t *testing.T, svc *testutil.FakeService) *harness {
	t.Helper()
	return &harness{
		t:          t,
		dispatcher: cli.NewDispatcher(commands.DefaultRegistry, testFactory(svc), memoryOpener(storage.NewMemory())),
		dir:        t.TempDir(),
	}
}

func (h *harness) run(args ...string) (int, string, string) {
	h.t.Helper()
	if len(args) > 0 && !strings.HasPrefix(args[0], "-") {
		args = append([]string{args[0], "--config", h.dir}, args[1:]...)
	}
	var stdout, stderr bytes.Buffer
	code := h.dispatcher.Run(context.Background(), args, &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

func TestDispatcher_UnknownCommand(t *testing.T) {
	h := newHarness(t, testutil.NewFakeService())

	code, _, stderr := h.run("unknowncmd")

	if code != exitcode.UserError {
		t.Errorf("expected exit code %d, got %d", exitcode.UserError, code)
	}
	expected := "error: unknown command: unknowncmd\n"
	if stderr != expected {
		t.Errorf("expected %q, got %q", expected, stderr)
	}
}

func TestDispatcher_FlagBeforeCommand(t *testing.T) {
	h := newHarness(t, testutil.NewFakeService())

	code, _, stderr := h.run("--quiet")

	if code != exitcode.UserError {
		t.Errorf("expected exit code %d, got %d", exitcode.UserError, code)
	}
	expected := "error: unknown command: --quiet\n"
	if stderr != expected {
		t.Errorf("expected %q, got %q", expected, stderr)
	}
}

func TestDispatcher_HelpCommand(t *testing.T) {
	h := newHarness(t, testutil.NewFakeService())

	code, stdout, stderr := h.run("help")

	if code != exitcode.Success {
		t.Errorf("expected exit code %d, got %d", exitcode.Success, code)
	}
	if stderr != "" {
		t.Errorf("expected no stderr, got %q", stderr)
	}
	if !strings.Contains(stdout, "Usage:") {
		t.Error("expected help output to contain 'Usage:'")
	}
}

func TestDispatcher_VersionCommand(t *testing.T) {
	h := newHarness(t, testutil.NewFakeService())

	code, stdout, stderr := h.run("version")

	if code != exitcode.Success {
		t.Errorf("expected exit code %d, got %d", exitcode.Success, code)
	}
	if stderr != "" {
		t.Errorf("expected no stderr, got %q", stderr)
	}
	if stdout != "taskflow 0.1.0\n" {
		t.Errorf("expected 'taskflow 0.1.0\\n', got %q", stdout)
	}
}

func TestDispatcher_UnknownFlag(t *testing.T) {
	h := newHarness(t, testutil.NewFakeService())

	code, _, stderr := h.run("help", "--unknown")

	if code != exitcode.UserError {
		t.Errorf("expected exit code %d, got %d", exitcode.UserError, code)
	}
	expected := "error: unknown flag: -unknown\n"
	if stderr != expected {
		t.Errorf("expected %q, got %q", expected, stderr)
	}
}

func TestDispatcher_FlagNeedsArgument(t *testing.T) {
	h := newHarness(t, testutil.NewFakeService())

	code, _, stderr := h.run("list", "--filter")

	if code != exitcode.UserError {
		t.Errorf("expected exit code %d, got %d", exitcode.UserError, code)
	}
	expected := "error: flag needs an argument: -filter\n"
	if stderr != expected {
		t.Errorf("expected %q, got %q", expected, stderr)
	}
}

func TestDispatcher_NoArgsListsLocalTasks(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	h := newHarness(t, testutil.NewFakeService())

	var stdout, stderr bytes.Buffer
	code := h.dispatcher.Run(context.Background(), nil, &stdout, &stderr)

	if code != exitcode.Success {
		t.Fatalf("expected exit code %d, got %d (stderr %q)", exitcode.Success, code, stderr.String())
	}
	if stdout.String() != "no tasks\n" {
		t.Errorf("expected 'no tasks', got %q", stdout.String())
	}
}

func TestDispatcher_LocalRoundTrip(t *testing.T) {
	h := newHarness(t, testutil.NewFakeService())

	if code, _, stderr := h.run("add", "--priority", "high", "Write", "report"); code != exitcode.Success {
		t.Fatalf("add failed: %d %q", code, stderr)
	}
	if code, _, stderr := h.run("add", "Buy milk"); code != exitcode.Success {
		t.Fatalf("add failed: %d %q", code, stderr)
	}

	code, stdout, _ := h.run("list", "--filter", "high")
	if code != exitcode.Success {
		t.Fatalf("list failed: %d", code)
	}
	if !strings.HasSuffix(stdout, "  [ ] Write report (high)\n") || strings.Count(stdout, "\n") != 1 {
		t.Fatalf("unexpected list output %q", stdout)
	}
	num := strings.Fields(stdout)[0]

	if code, stdout, _ := h.run("toggle", num); code != exitcode.Success || stdout != "completed\n" {
		t.Fatalf("toggle: code %d, stdout %q", code, stdout)
	}

	_, stdout, _ = h.run("stats")
	expected := "total:     2\ncompleted: 1\npending:   1\n"
	if stdout != expected {
		t.Errorf("expected %q, got %q", expected, stdout)
	}
}

func TestDispatcher_LocalStorageFailure(t *testing.T) {
	opener := func(cfg *config.Config) (storage.KV, error) {
		return nil, errors.New("disk on fire")
	}
	d := cli.NewDispatcher(commands.DefaultRegistry, nil, opener)

	var stdout, stderr bytes.Buffer
	code := d.Run(context.Background(), []string{"list", "--config", t.TempDir()}, &stdout, &stderr)

	if code != exitcode.LocalError {
		t.Errorf("expected exit code %d, got %d", exitcode.LocalError, code)
	}
	if stderr.String() != "error: local storage error: disk on fire\n" {
		t.Errorf("unexpected stderr %q", stderr.String())
	}
}

func TestDispatcher_RemoteCommandUsesFactory(t *testing.T) {
	svc := testutil.NewFakeService()
	svc.AddTask("remote one", service.TaskTodo, service.PriorityHigh)
	h := newHarness(t, svc)

	code, stdout, stderr := h.run("remote-tasks")

	if code != exitcode.Success {
		t.Fatalf("expected exit code %d, got %d (stderr %q)", exitcode.Success, code, stderr)
	}
	if !strings.Contains(stdout, "remote one") {
		t.Errorf("expected remote task in output, got %q", stdout)
	}
}

func TestDispatcher_FactoryAuthError(t *testing.T) {
	factory := func(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (service.Service, error) {
		return nil, errors.New("token expired or revoked")
	}
	d := cli.NewDispatcher(commands.DefaultRegistry, factory, memoryOpener(storage.NewMemory()))

	var stdout, stderr bytes.Buffer
	code := d.Run(context.Background(), []string{"projects", "--config", t.TempDir()}, &stdout, &stderr)

	if code != exitcode.AuthError {
		t.Errorf("expected exit code %d, got %d", exitcode.AuthError, code)
	}
	if stderr.String() != "error: auth error: token expired or revoked\n" {
		t.Errorf("unexpected stderr %q", stderr.String())
	}
}

func TestDispatcher_FactoryBackendError(t *testing.T) {
	factory := func(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (service.Service, error) {
		return nil, errors.New("connection refused")
	}
	d := cli.NewDispatcher(commands.DefaultRegistry, factory, memoryOpener(storage.NewMemory()))

	var stdout, stderr bytes.Buffer
	code := d.Run(context.Background(), []string{"members", "--config", t.TempDir()}, &stdout, &stderr)

	if code != exitcode.BackendError {
		t.Errorf("expected exit code %d, got %d", exitcode.BackendError, code)
	}
}
