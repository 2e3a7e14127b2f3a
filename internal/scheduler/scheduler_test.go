package scheduler

import (
	"context"
	"errors"
	"testing"
	"time"

	"agentq/internal/domain"
	"agentq/internal/storetest"
)

func newScheduler(store *storetest.Fake, now time.Time, entries ...Entry) *Scheduler {
	return &Scheduler{
		Store:    store,
		Entries:  entries,
		Projects: []string{"acme"},
		Location: time.UTC,
		Now:      func() time.Time { return now },
	}
}

func systemTasks(store *storetest.Fake, taskType string) []domain.Task {
	var out []domain.Task
	for _, t := range store.All() {
		if t.Type == taskType && t.RequestedBy == domain.RequestedBySystem {
			out = append(out, t)
		}
	}
	return out
}

func TestRunTwiceInSamePeriodCreatesOneTask(t *testing.T) {
	now := time.Date(2025, time.March, 10, 9, 0, 0, 0, time.UTC)
	store := storetest.New()
	store.Clock = func() time.Time { return now }
	sched := newScheduler(store, now, Entry{Type: "posts_create", Frequency: "daily"})

	for i := 0; i < 2; i++ {
		if _, err := sched.Run(context.Background()); err != nil {
			t.Fatalf("run %d: %v", i+1, err)
		}
	}

	if got := systemTasks(store, "posts_create"); len(got) != 1 {
		t.Fatalf("got %d system tasks, want exactly 1", len(got))
	}

	res, err := sched.Run(context.Background())
	if err != nil {
		t.Fatalf("third run: %v", err)
	}
	if res.Created != 0 || res.Skipped != 1 {
		t.Errorf("third run: created=%d skipped=%d, want 0/1", res.Created, res.Skipped)
	}
}

func TestCreatedTaskShape(t *testing.T) {
	now := time.Date(2025, time.March, 10, 9, 0, 0, 0, time.UTC)
	store := storetest.New()
	sched := newScheduler(store, now, Entry{Type: "email_check", Frequency: "daily"})

	if _, err := sched.Run(context.Background()); err != nil {
		t.Fatal(err)
	}

	tasks := store.All()
	if len(tasks) != 1 {
		t.Fatalf("got %d tasks, want 1", len(tasks))
	}
	task := tasks[0]
	if task.Status != domain.StatusQueued {
		t.Errorf("status = %q, want queued", task.Status)
	}
	if task.RequestedBy != domain.RequestedBySystem {
		t.Errorf("requested_by = %q, want system", task.RequestedBy)
	}
	if task.Name != "email_check acme" {
		t.Errorf("name = %q", task.Name)
	}
}

func TestManualTasksNeverSuppressScheduler(t *testing.T) {
	now := time.Date(2025, time.March, 10, 9, 0, 0, 0, time.UTC)
	store := storetest.New(domain.Task{
		ID:          "manual-1",
		Type:        "posts_create",
		Project:     "acme",
		Status:      domain.StatusQueued,
		RequestedBy: domain.RequestedByManual,
		CreatedAt:   now.Add(-time.Hour),
	})
	sched := newScheduler(store, now, Entry{Type: "posts_create", Frequency: "daily"})

	res, err := sched.Run(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if res.Created != 1 {
		t.Fatalf("created = %d, want 1 despite existing manual task", res.Created)
	}
}

func TestYesterdaysTaskNeverBlocksToday(t *testing.T) {
	now := time.Date(2025, time.March, 10, 9, 0, 0, 0, time.UTC)
	store := storetest.New(domain.Task{
		ID:          "old-1",
		Type:        "email_check",
		Project:     "acme",
		Status:      domain.StatusDone,
		RequestedBy: domain.RequestedBySystem,
		CreatedAt:   now.AddDate(0, 0, -1),
	})
	sched := newScheduler(store, now, Entry{Type: "email_check", Frequency: "daily"})

	res, err := sched.Run(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if res.Created != 1 {
		t.Fatalf("created = %d, want 1", res.Created)
	}
}

func TestUnknownFrequencySkipped(t *testing.T) {
	now := time.Date(2025, time.March, 10, 9, 0, 0, 0, time.UTC)
	store := storetest.New()
	sched := newScheduler(store, now,
		Entry{Type: "posts_create", Frequency: "hourly"},
		Entry{Type: "", Frequency: "daily"},
	)

	res, err := sched.Run(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if res.Created != 0 || len(store.All()) != 0 {
		t.Errorf("unknown frequency produced tasks: %+v", store.All())
	}
}

func TestStoreErrorAbortsInvocation(t *testing.T) {
	now := time.Date(2025, time.March, 10, 9, 0, 0, 0, time.UTC)
	store := storetest.New()
	store.ListErr = errors.New("connection refused")
	sched := newScheduler(store, now, Entry{Type: "posts_create", Frequency: "daily"})

	_, err := sched.Run(context.Background())
	var storeErr *domain.StoreError
	if !errors.As(err, &storeErr) {
		t.Fatalf("err = %v, want StoreError", err)
	}
}
