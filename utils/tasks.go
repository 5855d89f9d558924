package utils

import (
	"time"

	"github.com/go-co-op/gocron/v2"
	log "github.com/sirupsen/logrus"
)

// TaskScheduler runs fire-once deferred side effects (spin role
// revocation, escalation window expiry). Scheduled tasks are never
// cancelled on supersession; each task re-validates current state when it
// fires and no-ops if stale.
type TaskScheduler struct {
	sched gocron.Scheduler
}

// NewTaskScheduler creates and starts the scheduler.
func NewTaskScheduler() (*TaskScheduler, error) {
	sched, err := gocron.NewScheduler()
	if err != nil {
		return nil, err
	}
	sched.Start()
	return &TaskScheduler{sched: sched}, nil
}

// After schedules fn to run once after d.
func (ts *TaskScheduler) After(d time.Duration, fn func()) {
	_, err := ts.sched.NewJob(
		gocron.OneTimeJob(gocron.OneTimeJobStartDateTime(time.Now().Add(d))),
		gocron.NewTask(fn),
	)
	if err != nil {
		log.Errorf("failed to schedule deferred task: %v", err)
	}
}

// Shutdown stops the scheduler and drops any pending tasks.
func (ts *TaskScheduler) Shutdown() {
	if err := ts.sched.Shutdown(); err != nil {
		log.Warnf("task scheduler shutdown: %v", err)
	}
}
