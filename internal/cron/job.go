package cron

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
)

// RunFunc is the work a job does on each tick.
type RunFunc func(ctx context.Context) error

// Job is a named periodic task.
type Job struct {
	ID        string     `json:"id"`
	Name      string     `json:"name"`
	Schedule  string     `json:"schedule"`
	Enabled   bool       `json:"enabled"`
	CreatedAt time.Time  `json:"created_at"`
	LastRun   *time.Time `json:"last_run,omitempty"`
	LastError string     `json:"last_error,omitempty"`
	Runs      int        `json:"runs"`

	run     RunFunc
	EntryID cron.EntryID `json:"-"`
}

// Clone copies the job's public state.
func (j *Job) Clone() *Job {
	clone := *j
	clone.run = nil
	if j.LastRun != nil {
		lastRun := *j.LastRun
		clone.LastRun = &lastRun
	}
	return &clone
}
