// Package cron runs cue's periodic background jobs, such as refreshing the
// model list while the web UI is up.
package cron

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"

	"github.com/kayz/cue/internal/logger"
)

// DefaultJobTimeout bounds a single run.
const DefaultJobTimeout = 5 * time.Minute

// Scheduler manages scheduled jobs
type Scheduler struct {
	cron    *cron.Cron
	jobs    map[string]*Job
	timeout time.Duration
	mu      sync.RWMutex
}

// NewScheduler creates a new scheduler
func NewScheduler() *Scheduler {
	return &Scheduler{
		cron:    cron.New(cron.WithSeconds()),
		jobs:    make(map[string]*Job),
		timeout: DefaultJobTimeout,
	}
}

var parser = cron.NewParser(cron.Second | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)

// normalizeCron prepends "0 " to standard 5-field cron expressions
// so they work with the 6-field (with seconds) parser.
func normalizeCron(schedule string) string {
	schedule = strings.TrimSpace(schedule)
	if len(strings.Fields(schedule)) == 5 {
		return "0 " + schedule
	}
	return schedule
}

// ValidateSchedule reports whether schedule parses. Five-field, six-field and
// descriptor forms such as "@every 30m" are accepted.
func ValidateSchedule(schedule string) error {
	if _, err := parser.Parse(normalizeCron(schedule)); err != nil {
		return fmt.Errorf("invalid cron expression %q: %w", schedule, err)
	}
	return nil
}

// Start starts the scheduler
func (s *Scheduler) Start() {
	s.cron.Start()
	logger.Info("[Cron] Scheduler started with %d jobs", s.count())
}

// Stop stops the scheduler and waits for running jobs.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	logger.Info("[Cron] Scheduler stopped")
}

// AddFunc schedules run under name.
func (s *Scheduler) AddFunc(name, schedule string, run RunFunc) (*Job, error) {
	if run == nil {
		return nil, fmt.Errorf("job %s: nil run func", name)
	}
	schedule = normalizeCron(schedule)
	if err := ValidateSchedule(schedule); err != nil {
		return nil, err
	}

	job := &Job{
		ID:        uuid.New().String(),
		Name:      name,
		Schedule:  schedule,
		Enabled:   true,
		CreatedAt: time.Now(),
		run:       run,
	}

	entryID, err := s.cron.AddFunc(schedule, func() { s.execute(job) })
	if err != nil {
		return nil, fmt.Errorf("failed to schedule job: %w", err)
	}

	s.mu.Lock()
	job.EntryID = entryID
	s.jobs[job.ID] = job
	clone := job.Clone()
	s.mu.Unlock()

	logger.Info("[Cron] Job created: %s (%s) - schedule: %s", clone.ID, clone.Name, clone.Schedule)
	return clone, nil
}

// RunNow runs a job immediately on the calling goroutine.
func (s *Scheduler) RunNow(id string) error {
	s.mu.RLock()
	job, exists := s.jobs[id]
	s.mu.RUnlock()
	if !exists {
		return fmt.Errorf("job not found: %s", id)
	}
	return s.execute(job)
}

// ListJobs returns all jobs ordered by name.
func (s *Scheduler) ListJobs() []*Job {
	s.mu.RLock()
	defer s.mu.RUnlock()

	jobs := make([]*Job, 0, len(s.jobs))
	for _, job := range s.jobs {
		jobs = append(jobs, job.Clone())
	}
	sort.Slice(jobs, func(i, j int) bool { return jobs[i].Name < jobs[j].Name })
	return jobs
}

func (s *Scheduler) execute(job *Job) error {
	now := time.Now()
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	logger.Debug("[Cron] Running job: %s (%s)", job.ID, job.Name)
	err := job.run(ctx)

	s.mu.Lock()
	job.LastRun = &now
	job.Runs++
	if err != nil {
		job.LastError = err.Error()
	} else {
		job.LastError = ""
	}
	s.mu.Unlock()

	if err != nil {
		logger.Warn("[Cron] Job failed: %s (%s) - error: %v", job.ID, job.Name, err)
	}
	return err
}

func (s *Scheduler) count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.jobs)
}
