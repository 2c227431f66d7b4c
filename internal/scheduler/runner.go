// Package scheduler runs a task periodically on a single goroutine.
package scheduler

import (
	"context"
	"log"
	"sync"
	"time"
)

// Task is one unit of periodic work.
type Task func(ctx context.Context) error

// Runner executes a Task every interval. Ticks are handled sequentially, so a
// slow run delays the next one instead of overlapping it.
type Runner struct {
	name       string
	interval   time.Duration
	task       Task
	runAtStart bool

	wg sync.WaitGroup
}

func NewRunner(name string, interval time.Duration, runAtStart bool, task Task) *Runner {
	return &Runner{name: name, interval: interval, task: task, runAtStart: runAtStart}
}

// Start launches the loop. It stops when ctx is cancelled; Wait blocks until then.
func (r *Runner) Start(ctx context.Context) {
	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		r.Run(ctx)
	}()
}

func (r *Runner) Wait() { r.wg.Wait() }

// Run blocks until ctx is done.
func (r *Runner) Run(ctx context.Context) {
	log.Printf("scheduler: task=%s interval=%s started", r.name, r.interval)
	defer log.Printf("scheduler: task=%s stopped", r.name)

	if r.runAtStart {
		r.execute(ctx)
	}

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.execute(ctx)
		}
	}
}

func (r *Runner) execute(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}
	start := time.Now()
	if err := r.task(ctx); err != nil {
		log.Printf("scheduler: task=%s error=%v", r.name, err)
		return
	}
	log.Printf("scheduler: task=%s took=%s", r.name, time.Since(start))
}
