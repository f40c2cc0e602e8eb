package batch

import (
	"context"
	"runtime/debug"
	"sync"

	"github.com/pkg/errors"

	"hr-docgen-backend/lib/metrics"
)

var ErrAlreadyRunning = errors.New("a batch is already running")

// Job does the work of a run. A returned error fails the run.
type Job func(ctx context.Context, run *Run) (Summary, error)

// Registry holds at most one running batch and remembers the latest one.
type Registry struct {
	mu     sync.Mutex
	active *Run
	latest *Run
	wg     sync.WaitGroup
}

func NewRegistry() *Registry {
	return &Registry{}
}

// Start launches job in the background and returns its run at once. While another run
// is active it returns that run with ErrAlreadyRunning.
func (r *Registry) Start(ctx context.Context, job Job) (*Run, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.active != nil {
		return r.active, ErrAlreadyRunning
	}
	run := NewRun()
	run.start()
	r.active = run
	r.latest = run
	metrics.RunsActive.Inc()

	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		summary, err := execute(ctx, run, job)

		r.mu.Lock()
		r.active = nil
		run.finish(summary, err)
		r.mu.Unlock()
		metrics.RunsActive.Dec()
		metrics.RunsFinished.WithLabelValues(string(run.State())).Inc()
	}()
	return run, nil
}

func execute(ctx context.Context, run *Run, job Job) (summary Summary, err error) {
	defer func() {
		if p := recover(); p != nil {
			run.logger().
				WithField("panic_stack", string(debug.Stack())).
				Errorf("panic: (%v)", p)
			err = errors.Errorf("unexpected failure: %v", p)
		}
	}()
	return job(ctx, run)
}

// Latest returns the most recent run, nil before the first start.
func (r *Registry) Latest() *Run {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.latest
}

// Get returns the latest run when id matches it or is empty.
func (r *Registry) Get(id string) *Run {
	latest := r.Latest()
	if latest == nil || (id != "" && latest.ID != id) {
		return nil
	}
	return latest
}

func (r *Registry) Running() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.active != nil
}

// Wait blocks until the background runs have finished.
func (r *Registry) Wait() {
	r.wg.Wait()
}
