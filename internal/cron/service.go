// Package cron re-runs configured queries on cron schedules.
//
// Run state is persisted next to the transcripts as JSON:
//
//	{ "version": 1, "jobs": { "<name>": { "lastRunAt": "…", "lastStatus": "ok",
//	    "lastError": "", "lastSession": "…", "runs": 3 } } }
package cron

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	jsoniter "github.com/json-iterator/go"
	robfigcron "github.com/robfig/cron/v3"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Job statuses.
const (
	StatusOK    = "ok"
	StatusError = "error"
)

// ErrUnknownJob is returned by RunJob for names that were never added.
var ErrUnknownJob = errors.New("unknown scheduled job")

// parser accepts standard five-field expressions, an optional leading
// seconds field and descriptors such as "@every 1h" or "@daily".
var parser = robfigcron.NewParser(
	robfigcron.SecondOptional | robfigcron.Minute | robfigcron.Hour |
		robfigcron.Dom | robfigcron.Month | robfigcron.Dow | robfigcron.Descriptor,
)

// Job is one recurring query.
type Job struct {
	Name  string
	Spec  string
	Query string
	Mode  string // empty: classify the query on every run
}

// JobState records the outcome of a job's most recent run.
type JobState struct {
	LastRunAt   *time.Time `json:"lastRunAt,omitempty"`
	LastStatus  string     `json:"lastStatus,omitempty"`
	LastError   string     `json:"lastError,omitempty"`
	LastSession string     `json:"lastSession,omitempty"`
	Runs        int        `json:"runs"`
}

// JobInfo is a job together with its state and next activation.
type JobInfo struct {
	Job
	State   JobState
	NextRun time.Time
}

type stateFile struct {
	Version int                 `json:"version"`
	Jobs    map[string]JobState `json:"jobs"`
}

// RunFunc executes a job's query and returns the id of the stored session.
type RunFunc func(ctx context.Context, job Job) (string, error)

// Service schedules jobs on a robfig cron runner.
type Service struct {
	statePath string
	run       RunFunc

	mu      sync.Mutex
	jobs    map[string]Job
	entries map[string]robfigcron.EntryID
	sched   map[string]robfigcron.Schedule
	state   stateFile
	loaded  bool
	ctx     context.Context
	robfig  *robfigcron.Cron
}

// NewService creates a scheduler persisting run state at statePath.
func NewService(statePath string, run RunFunc) *Service {
	return &Service{
		statePath: statePath,
		run:       run,
		jobs:      make(map[string]Job),
		entries:   make(map[string]robfigcron.EntryID),
		sched:     make(map[string]robfigcron.Schedule),
		state:     stateFile{Version: 1, Jobs: map[string]JobState{}},
		ctx:       context.Background(),
		robfig:    robfigcron.New(robfigcron.WithParser(parser)),
	}
}

// AddJob validates and registers job. Jobs may be added before or after Start.
func (s *Service) AddJob(job Job) error {
	if job.Name == "" {
		return errors.New("scheduled job needs a name")
	}
	if job.Query == "" {
		return fmt.Errorf("scheduled job %q has no query", job.Name)
	}
	sched, err := parser.Parse(job.Spec)
	if err != nil {
		return fmt.Errorf("scheduled job %q: invalid spec %q: %w", job.Name, job.Spec, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, dup := s.jobs[job.Name]; dup {
		return fmt.Errorf("scheduled job %q defined twice", job.Name)
	}
	s.jobs[job.Name] = job
	s.sched[job.Name] = sched
	name := job.Name
	s.entries[name] = s.robfig.Schedule(sched, robfigcron.FuncJob(func() {
		s.mu.Lock()
		ctx := s.ctx
		s.mu.Unlock()
		s.execute(ctx, name)
	}))
	slog.Info("cron: added job", "name", job.Name, "spec", job.Spec, "mode", job.Mode)
	return nil
}

// Start runs the scheduler until ctx is cancelled, then waits for running
// jobs to finish.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	if err := s.loadLocked(); err != nil {
		slog.Warn("cron: load state failed, starting empty", "err", err)
	}
	s.ctx = ctx
	n := len(s.jobs)
	s.mu.Unlock()

	s.robfig.Start()
	slog.Info("cron: started", "jobs", n)

	<-ctx.Done()
	<-s.robfig.Stop().Done()
	return ctx.Err()
}

// RunJob executes the named job immediately, outside its schedule.
func (s *Service) RunJob(ctx context.Context, name string) error {
	s.mu.Lock()
	_, ok := s.jobs[name]
	if err := s.loadLocked(); err != nil {
		slog.Warn("cron: load state failed", "err", err)
	}
	s.mu.Unlock()
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownJob, name)
	}
	return s.execute(ctx, name)
}

// Jobs lists every registered job ordered by next activation.
func (s *Service) Jobs() []JobInfo {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.loadLocked(); err != nil {
		slog.Warn("cron: load state failed", "err", err)
	}
	now := time.Now()
	out := make([]JobInfo, 0, len(s.jobs))
	for name, job := range s.jobs {
		out = append(out, JobInfo{Job: job, State: s.state.Jobs[name], NextRun: s.sched[name].Next(now)})
	}
	sort.Slice(out, func(i, k int) bool {
		if !out[i].NextRun.Equal(out[k].NextRun) {
			return out[i].NextRun.Before(out[k].NextRun)
		}
		return out[i].Name < out[k].Name
	})
	return out
}

func (s *Service) execute(ctx context.Context, name string) error {
	s.mu.Lock()
	job := s.jobs[name]
	s.mu.Unlock()

	start := time.Now()
	slog.Info("cron: executing job", "name", name)

	var (
		sessionID string
		err       error
	)
	if s.run != nil {
		sessionID, err = s.run(ctx, job)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	st := s.state.Jobs[name]
	st.LastRunAt = &start
	st.LastSession = sessionID
	st.Runs++
	st.LastStatus, st.LastError = StatusOK, ""
	if err != nil {
		st.LastStatus, st.LastError = StatusError, err.Error()
		slog.Error("cron: job failed", "name", name, "err", err)
	}
	s.state.Jobs[name] = st
	s.saveLocked()
	return err
}

func (s *Service) loadLocked() error {
	if s.loaded {
		return nil
	}
	s.loaded = true
	data, err := os.ReadFile(s.statePath)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return err
	}
	var st stateFile
	if err := json.Unmarshal(data, &st); err != nil {
		return err
	}
	if st.Version == 0 {
		st.Version = 1
	}
	if st.Jobs == nil {
		st.Jobs = map[string]JobState{}
	}
	s.state = st
	return nil
}

func (s *Service) saveLocked() {
	if err := os.MkdirAll(filepath.Dir(s.statePath), 0o755); err != nil {
		slog.Warn("cron: mkdir failed", "err", err)
		return
	}
	data, err := json.MarshalIndent(s.state, "", "  ")
	if err != nil {
		slog.Warn("cron: marshal failed", "err", err)
		return
	}
	if err := os.WriteFile(s.statePath, data, 0o644); err != nil {
		slog.Warn("cron: write failed", "err", err)
	}
}
