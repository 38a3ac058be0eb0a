package task_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"taskflow/internal/storage"
	"taskflow/internal/task"
)

type fakeClock struct{ t time.Time }

func (c *fakeClock) now() time.Time {
	c.t = c.t.Add(time.Minute)
	return c.t
}

func openStore(t *testing.T, kv storage.KV) (*task.Store, *fakeClock) {
	t.Helper()
	clock := &fakeClock{t: t0}
	s, err := task.Open(context.Background(), kv, task.WithClock(clock.now))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	return s, clock
}

func TestStore_OpenEmpty(t *testing.T) {
	s, _ := openStore(t, storage.NewMemory())
	if n := len(s.Tasks()); n != 0 {
		t.Errorf("expected empty store, got %d tasks", n)
	}
}

func TestStore_AddAppends(t *testing.T) {
	ctx := context.Background()
	s, _ := openStore(t, storage.NewMemory())

	for _, title := range []string{"first", "second", "third"} {
		if _, err := s.Create(ctx, task.Draft{Title: title}); err != nil {
			t.Fatalf("Create %s: %v", title, err)
		}
	}

	tasks := s.Tasks()
	if len(tasks) != 3 {
		t.Fatalf("expected 3 tasks, got %d", len(tasks))
	}
	for i, want := range []string{"first", "second", "third"} {
		if tasks[i].Title != want {
			t.Errorf("position %d: expected %q, got %q", i, want, tasks[i].Title)
		}
	}
}

func TestStore_AddRejectsDuplicateID(t *testing.T) {
	ctx := context.Background()
	s, _ := openStore(t, storage.NewMemory())

	tk, err := s.Create(ctx, task.Draft{Title: "a"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := s.Add(ctx, tk); !errors.Is(err, task.ErrInvalid) {
		t.Errorf("expected ErrInvalid for duplicate id, got %v", err)
	}
}

func TestStore_ToggleCompletedBackToPendingClearsCompletedAt(t *testing.T) {
	ctx := context.Background()
	s, _ := openStore(t, storage.NewMemory())

	tk, _ := s.Create(ctx, task.Draft{Title: "a"})

	done, err := s.ToggleStatus(ctx, tk.ID)
	if err != nil {
		t.Fatalf("ToggleStatus: %v", err)
	}
	if done.Status != task.StatusCompleted || done.CompletedAt == nil {
		t.Fatalf("expected completed with timestamp, got %+v", done)
	}

	back, err := s.ToggleStatus(ctx, tk.ID)
	if err != nil {
		t.Fatalf("ToggleStatus: %v", err)
	}
	if back.Status != task.StatusPending {
		t.Errorf("expected pending, got %q", back.Status)
	}
	if back.CompletedAt != nil {
		t.Errorf("expected CompletedAt cleared, got %v", back.CompletedAt)
	}

	stored, _ := s.Get(tk.ID)
	if stored.CompletedAt != nil {
		t.Error("stored task still has CompletedAt")
	}
}

func TestStore_ToggleUnknown(t *testing.T) {
	s, _ := openStore(t, storage.NewMemory())
	_, err := s.ToggleStatus(context.Background(), "missing")
	if !errors.Is(err, task.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestStore_DeleteNonExistentIsNoop(t *testing.T) {
	ctx := context.Background()
	kv := storage.NewMemory()
	s, _ := openStore(t, kv)

	s.Create(ctx, task.Draft{Title: "keep"})
	before, _ := kv.Get(ctx, storage.KeyTasks)

	removed, err := s.Delete(ctx, "missing")
	if err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if removed {
		t.Error("expected removed=false")
	}
	if len(s.Tasks()) != 1 {
		t.Errorf("expected 1 task, got %d", len(s.Tasks()))
	}
	after, _ := kv.Get(ctx, storage.KeyTasks)
	if string(before) != string(after) {
		t.Error("expected storage untouched")
	}
}

func TestStore_Delete(t *testing.T) {
	ctx := context.Background()
	s, _ := openStore(t, storage.NewMemory())

	a, _ := s.Create(ctx, task.Draft{Title: "a"})
	b, _ := s.Create(ctx, task.Draft{Title: "b"})

	removed, err := s.Delete(ctx, a.ID)
	if err != nil || !removed {
		t.Fatalf("expected removal, got %v, %v", removed, err)
	}
	tasks := s.Tasks()
	if len(tasks) != 1 || tasks[0].ID != b.ID {
		t.Errorf("expected only b left, got %+v", tasks)
	}
}

func TestStore_PersistRoundTrip(t *testing.T) {
	ctx := context.Background()
	kv := storage.NewMemory()
	s, _ := openStore(t, kv)

	s.Create(ctx, task.Draft{Title: "a", Description: "desc", Priority: task.PriorityHigh})
	b, _ := s.Create(ctx, task.Draft{Title: "b", Priority: task.PriorityLow})
	s.ToggleStatus(ctx, b.ID)

	want := s.Tasks()

	reopened, _ := openStore(t, kv)
	got := reopened.Tasks()

	if len(got) != len(want) {
		t.Fatalf("expected %d tasks, got %d", len(want), len(got))
	}
	for i := range want {
		assertSameTask(t, want[i], got[i])
	}
}

func TestStore_FailedWriteLeavesCollectionUnchanged(t *testing.T) {
	ctx := context.Background()
	kv := storage.NewMemory()
	s, _ := openStore(t, kv)

	a, _ := s.Create(ctx, task.Draft{Title: "a"})

	kv.SetErr = errors.New("disk full")

	if _, err := s.Create(ctx, task.Draft{Title: "b"}); err == nil {
		t.Error("expected Create to fail")
	}
	if _, err := s.ToggleStatus(ctx, a.ID); err == nil {
		t.Error("expected ToggleStatus to fail")
	}
	if _, err := s.Delete(ctx, a.ID); err == nil {
		t.Error("expected Delete to fail")
	}

	tasks := s.Tasks()
	if len(tasks) != 1 || tasks[0].Status != task.StatusPending {
		t.Errorf("expected collection unchanged, got %+v", tasks)
	}
}

func TestStore_OpenRejectsBrokenInvariant(t *testing.T) {
	ctx := context.Background()
	kv := storage.NewMemory()
	kv.Set(ctx, storage.KeyTasks, []byte(`[{"id":"1","title":"a","description":"","priority":"low","status":"completed","createdAt":"2024-03-01T09:00:00Z","completedAt":null}]`))

	_, err := task.Open(ctx, kv)
	if !errors.Is(err, task.ErrInvalid) {
		t.Errorf("expected ErrInvalid, got %v", err)
	}
}

func TestStore_OpenReadsStoredFormat(t *testing.T) {
	ctx := context.Background()
	kv := storage.NewMemory()
	kv.Set(ctx, storage.KeyTasks, []byte(`[
		{"id":"1712345678901","title":"Write report","description":"Q1","priority":"high","status":"completed","createdAt":"2024-04-05T10:00:00.000Z","completedAt":"2024-04-06T12:30:00.000Z"},
		{"id":"1712345678902","title":"Call Bob","description":"","priority":"low","status":"pending","createdAt":"2024-04-05T11:00:00.000Z","completedAt":null}
	]`))

	s, err := task.Open(ctx, kv)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	tasks := s.Tasks()
	if len(tasks) != 2 {
		t.Fatalf("expected 2 tasks, got %d", len(tasks))
	}
	if tasks[0].CompletedAt == nil || tasks[0].CompletedAt.Day() != 6 {
		t.Errorf("unexpected completedAt: %v", tasks[0].CompletedAt)
	}
	if tasks[1].CompletedAt != nil {
		t.Errorf("expected nil completedAt, got %v", tasks[1].CompletedAt)
	}
}

func TestStore_Counts(t *testing.T) {
	ctx := context.Background()
	s, _ := openStore(t, storage.NewMemory())

	a, _ := s.Create(ctx, task.Draft{Title: "a"})
	s.Create(ctx, task.Draft{Title: "b"})
	s.Create(ctx, task.Draft{Title: "c"})
	s.ToggleStatus(ctx, a.ID)

	c := s.Counts()
	if c.Total != 3 || c.Completed != 1 || c.Pending != 2 {
		t.Errorf("unexpected counts %+v", c)
	}
}

func assertSameTask(t *testing.T, want, got task.Task) {
	t.Helper()
	if want.ID != got.ID || want.Title != got.Title || want.Description != got.Description ||
		want.Priority != got.Priority || want.Status != got.Status {
		t.Errorf("expected %+v, got %+v", want, got)
	}
	if !want.CreatedAt.Equal(got.CreatedAt) {
		t.Errorf("%s: CreatedAt %v != %v", want.ID, want.CreatedAt, got.CreatedAt)
	}
	switch {
	case want.CompletedAt == nil && got.CompletedAt == nil:
	case want.CompletedAt == nil || got.CompletedAt == nil:
		t.Errorf("%s: CompletedAt %v != %v", want.ID, want.CompletedAt, got.CompletedAt)
	case !want.CompletedAt.Equal(*got.CompletedAt):
		t.Errorf("%s: CompletedAt %v != %v", want.ID, *want.CompletedAt, *got.CompletedAt)
	}
}
