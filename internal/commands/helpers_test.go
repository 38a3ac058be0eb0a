package commands_test

import (
	"bytes"
	"context"
	"flag"
	"io"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"taskflow/internal/commands"
	"taskflow/internal/config"
	"taskflow/internal/service"
	"taskflow/internal/storage"
	"taskflow/internal/task"
	"taskflow/internal/testutil"
)

type testEnv struct {
	*commands.Env
	kv  *storage.Memory
	svc *testutil.FakeService
}

// newTestEnv builds an environment over in-memory storage and a fake remote.
// The task clock advances one minute per call so creation order is stable.
func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	kv := storage.NewMemory()
	clock := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	store, err := task.Open(context.Background(), kv,
		task.WithClock(func() time.Time {
			clock = clock.Add(time.Minute)
			return clock
		}),
		task.WithLogger(zerolog.Nop()),
	)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}

	svc := testutil.NewFakeService()
	cfg := &config.Config{
		Dir:      t.TempDir(),
		Settings: config.Settings{Backend: config.BackendApper},
	}
	return &testEnv{
		Env: &commands.Env{
			Config: cfg,
			Logger: zerolog.Nop(),
			KV:     kv,
			Tasks:  store,
			Remote: svc,
			Connect: func(ctx context.Context) (service.Service, error) {
				return svc, nil
			},
		},
		kv:  kv,
		svc: svc,
	}
}

// run parses args against the command's flags and runs it.
func run(t *testing.T, cmd commands.Command, env *testEnv, args ...string) (int, string, string) {
	t.Helper()

	fs := flag.NewFlagSet(cmd.Name(), flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	cmd.RegisterFlags(fs)
	if err := fs.Parse(args); err != nil {
		t.Fatalf("parse flags: %v", err)
	}

	var out, errOut bytes.Buffer
	code := cmd.Run(context.Background(), env.Env, fs.Args(), &out, &errOut)
	return code, out.String(), errOut.String()
}

// addTasks creates local tasks in order; the last one is newest.
func addTasks(t *testing.T, env *testEnv, titles ...string) []task.Task {
	t.Helper()
	var created []task.Task
	for _, title := range titles {
		tk, err := env.Tasks.Create(context.Background(), task.Draft{Title: title})
		if err != nil {
			t.Fatalf("create %q: %v", title, err)
		}
		created = append(created, tk)
	}
	return created
}
