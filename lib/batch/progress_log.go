package batch

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// Line is one entry of a run's progress log.
type Line struct {
	Time time.Time `json:"time"`
	Text string    `json:"text"`
}

// ProgressLog is an append-only sequence of lines. Readers address lines by offset and
// can wait for new ones while the writer keeps appending.
type ProgressLog struct {
	mu      sync.RWMutex
	lines   []Line
	closed  bool
	changed chan struct{}
}

func NewProgressLog() *ProgressLog {
	return &ProgressLog{changed: make(chan struct{})}
}

func (l *ProgressLog) Append(text string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return
	}
	l.lines = append(l.lines, Line{Time: time.Now(), Text: text})
	l.notify()
}

func (l *ProgressLog) Appendf(format string, args ...interface{}) {
	l.Append(fmt.Sprintf(format, args...))
}

// Close marks the log as complete; later appends are dropped.
func (l *ProgressLog) Close() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return
	}
	l.closed = true
	l.notify()
}

// notify wakes every waiter; callers hold the write lock.
func (l *ProgressLog) notify() {
	close(l.changed)
	l.changed = make(chan struct{})
}

func (l *ProgressLog) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.lines)
}

// ReadFrom returns a copy of the lines at offset and after, and whether the log is closed.
func (l *ProgressLog) ReadFrom(offset int) ([]Line, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.tail(offset), l.closed
}

func (l *ProgressLog) tail(offset int) []Line {
	if offset < 0 {
		offset = 0
	}
	if offset >= len(l.lines) {
		return nil
	}
	out := make([]Line, len(l.lines)-offset)
	copy(out, l.lines[offset:])
	return out
}

// Wait blocks until there are lines past offset or the log is closed. A closed log with
// nothing left returns (nil, true, nil): the reader is done.
func (l *ProgressLog) Wait(ctx context.Context, offset int) ([]Line, bool, error) {
	for {
		l.mu.RLock()
		lines, closed, changed := l.tail(offset), l.closed, l.changed
		l.mu.RUnlock()
		if len(lines) > 0 || closed {
			return lines, closed, nil
		}
		select {
		case <-ctx.Done():
			return nil, false, ctx.Err()
		case <-changed:
		}
	}
}

func (l *ProgressLog) Texts() []string {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]string, 0, len(l.lines))
	for _, line := range l.lines {
		out = append(out, line.Text)
	}
	return out
}
