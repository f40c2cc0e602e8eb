package batch

import (
	"sync"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

type State string

const (
	StateIdle      State = "idle"
	StateRunning   State = "running"
	StateCompleted State = "completed"
	StateFailed    State = "failed"
)

// Run is one batch execution with its own state and progress log.
type Run struct {
	ID  string
	Log *ProgressLog

	mu         sync.RWMutex
	state      State
	startedAt  time.Time
	finishedAt time.Time
	summary    Summary
	reason     string
}

// Status is a point-in-time view of a run.
type Status struct {
	ID         string     `json:"run_id"`
	State      State      `json:"state"`
	StartedAt  *time.Time `json:"started_at,omitempty"`
	FinishedAt *time.Time `json:"finished_at,omitempty"`
	Reason     string     `json:"reason,omitempty"`
	LogLines   int        `json:"log_lines"`
	Summary    Summary    `json:"summary"`
}

func NewRun() *Run {
	return &Run{
		ID:    uuid.New().String(),
		Log:   NewProgressLog(),
		state: StateIdle,
	}
}

func (r *Run) logger() *log.Entry {
	return log.WithField("run_id", r.ID)
}

// Logf appends a progress line and mirrors it to the process log.
func (r *Run) Logf(format string, args ...interface{}) {
	r.Log.Appendf(format, args...)
	r.logger().Infof(format, args...)
}

func (r *Run) State() State {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.state
}

func (r *Run) IsRunning() bool {
	return r.State() == StateRunning
}

func (r *Run) start() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.state = StateRunning
	r.startedAt = time.Now()
}

// finish moves the run to its terminal state, writes the terminal line and closes the log.
func (r *Run) finish(summary Summary, err error) {
	r.mu.Lock()
	r.summary = summary
	r.finishedAt = time.Now()
	if err != nil {
		r.state = StateFailed
		r.reason = err.Error()
	} else {
		r.state = StateCompleted
	}
	r.mu.Unlock()

	if err != nil {
		r.logger().WithError(err).Error("batch failed")
		r.Log.Appendf("Batch failed: %s", err.Error())
	} else {
		r.Logf("Batch completed: %d rows, %d processed, %d skipped, %d failed",
			summary.Total, summary.Processed, summary.Skipped, summary.Failed)
	}
	r.Log.Close()
}

func (r *Run) Status() Status {
	r.mu.RLock()
	defer r.mu.RUnlock()
	st := Status{
		ID:       r.ID,
		State:    r.state,
		Reason:   r.reason,
		LogLines: r.Log.Len(),
		Summary:  r.summary,
	}
	if !r.startedAt.IsZero() {
		started := r.startedAt
		st.StartedAt = &started
	}
	if !r.finishedAt.IsZero() {
		finished := r.finishedAt
		st.FinishedAt = &finished
	}
	return st
}

func (r *Run) Summary() Summary {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.summary
}
