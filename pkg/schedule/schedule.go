// Package schedule runs periodic maintenance tasks on fixed intervals.
// The only consumer today is the stale-cart janitor.
package schedule

import (
	"context"
	"time"

	"github.com/bloomkart/bloomkart/pkg/logger"
)

// Task is one unit of scheduled work.
type Task struct {
	Name     string
	Interval time.Duration
	Run      func(ctx context.Context) error
}

// Scheduler drives a set of tasks until its context is cancelled.
type Scheduler struct {
	tasks []Task
}

// New creates an empty scheduler.
func New() *Scheduler {
	return &Scheduler{}
}

// Every registers a task to run on the given interval. The first run
// happens one full interval after Start.
func (s *Scheduler) Every(interval time.Duration, name string, run func(ctx context.Context) error) {
	s.tasks = append(s.tasks, Task{Name: name, Interval: interval, Run: run})
}

// Start launches one goroutine per task. Tasks run until ctx is cancelled;
// a failing run is logged and retried on the next tick.
func (s *Scheduler) Start(ctx context.Context) {
	for _, task := range s.tasks {
		go func(t Task) {
			ticker := time.NewTicker(t.Interval)
			defer ticker.Stop()

			for {
				select {
				case <-ctx.Done():
					return
				case <-ticker.C:
					if err := t.Run(ctx); err != nil {
						logger.Error("schedule: task failed", "task", t.Name, "error", err)
						continue
					}
					logger.Debug("schedule: task ran", "task", t.Name)
				}
			}
		}(task)
	}

	if len(s.tasks) > 0 {
		logger.Info("schedule: started", "tasks", len(s.tasks))
	}
}
