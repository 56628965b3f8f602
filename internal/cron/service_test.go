package cron

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"
)

func newTestService(t *testing.T, run RunFunc) (*Service, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "schedule", "state.json")
	return NewService(path, run), path
}

func TestAddJob_RejectsInvalid(t *testing.T) {
	s, _ := newTestService(t, nil)
	cases := []Job{
		{Spec: "@daily", Query: "q"},
		{Name: "noquery", Spec: "@daily"},
		{Name: "badspec", Spec: "every tuesday", Query: "q"},
	}
	for _, j := range cases {
		if err := s.AddJob(j); err == nil {
			t.Errorf("expected error for %+v", j)
		}
	}
	if err := s.AddJob(Job{Name: "a", Spec: "0 9 * * *", Query: "q"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := s.AddJob(Job{Name: "a", Spec: "@hourly", Query: "q"}); err == nil {
		t.Error("expected duplicate name to be rejected")
	}
}

func TestAddJob_SecondsFieldOptional(t *testing.T) {
	s, _ := newTestService(t, nil)
	for i, spec := range []string{"*/30 * * * * *", "0 9 * * 1-5", "@every 90s"} {
		if err := s.AddJob(Job{Name: string(rune('a' + i)), Spec: spec, Query: "q"}); err != nil {
			t.Errorf("spec %q: %v", spec, err)
		}
	}
}

func TestJobs_OrderedByNextRun(t *testing.T) {
	s, _ := newTestService(t, nil)
	_ = s.AddJob(Job{Name: "yearly", Spec: "@yearly", Query: "q"})
	_ = s.AddJob(Job{Name: "often", Spec: "@every 1m", Query: "q"})

	jobs := s.Jobs()
	if len(jobs) != 2 {
		t.Fatalf("expected 2 jobs, got %d", len(jobs))
	}
	if jobs[0].Name != "often" {
		t.Errorf("expected often first, got %s", jobs[0].Name)
	}
	if !jobs[0].NextRun.After(time.Now()) {
		t.Errorf("expected next run in the future, got %v", jobs[0].NextRun)
	}
}

func TestRunJob_PersistsState(t *testing.T) {
	var calls atomic.Int32
	s, path := newTestService(t, func(_ context.Context, job Job) (string, error) {
		calls.Add(1)
		if job.Mode != "teleonomic" {
			t.Errorf("expected mode teleonomic, got %q", job.Mode)
		}
		return "sess-1", nil
	})
	_ = s.AddJob(Job{Name: "finches", Spec: "@daily", Query: "Why do finch beaks differ?", Mode: "teleonomic"})

	if err := s.RunJob(context.Background(), "finches"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if calls.Load() != 1 {
		t.Fatalf("expected 1 run, got %d", calls.Load())
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("expected state file: %v", err)
	}

	reloaded := NewService(path, nil)
	_ = reloaded.AddJob(Job{Name: "finches", Spec: "@daily", Query: "q"})
	st := reloaded.Jobs()[0].State
	if st.LastStatus != StatusOK || st.LastSession != "sess-1" || st.Runs != 1 || st.LastRunAt == nil {
		t.Errorf("unexpected persisted state %+v", st)
	}
}

func TestRunJob_RecordsFailure(t *testing.T) {
	boom := errors.New("model unavailable")
	s, _ := newTestService(t, func(context.Context, Job) (string, error) { return "sess-2", boom })
	_ = s.AddJob(Job{Name: "j", Spec: "@daily", Query: "q"})

	if err := s.RunJob(context.Background(), "j"); !errors.Is(err, boom) {
		t.Fatalf("expected run error, got %v", err)
	}
	st := s.Jobs()[0].State
	if st.LastStatus != StatusError || st.LastError != boom.Error() {
		t.Errorf("unexpected state %+v", st)
	}
}

func TestRunJob_Unknown(t *testing.T) {
	s, _ := newTestService(t, nil)
	if err := s.RunJob(context.Background(), "missing"); !errors.Is(err, ErrUnknownJob) {
		t.Fatalf("expected ErrUnknownJob, got %v", err)
	}
}

func TestStart_FiresScheduledJob(t *testing.T) {
	fired := make(chan string, 1)
	s, _ := newTestService(t, func(_ context.Context, job Job) (string, error) {
		select {
		case fired <- job.Name:
		default:
		}
		return "", nil
	})
	_ = s.AddJob(Job{Name: "tick", Spec: "@every 1s", Query: "q"})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Start(ctx) }()

	select {
	case name := <-fired:
		if name != "tick" {
			t.Errorf("expected tick, got %s", name)
		}
	case <-time.After(3 * time.Second):
		t.Fatal("job did not fire")
	}
	cancel()
	if err := <-done; !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}
