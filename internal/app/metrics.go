package app

import (
	"sync"
	"time"
)

// Metrics tracks command counts and timings of a session.
type Metrics struct {
	mu       sync.Mutex
	commands map[string]*CommandStats
}

// CommandStats aggregates the runs of one command.
type CommandStats struct {
	Runs     int
	Edits    int
	Notices  int
	Failures int
	Total    time.Duration
	Max      time.Duration
}

// Avg returns the mean run duration.
func (c CommandStats) Avg() time.Duration {
	if c.Runs == 0 {
		return 0
	}
	return c.Total / time.Duration(c.Runs)
}

// NewMetrics creates a new metrics tracker.
func NewMetrics() *Metrics {
	return &Metrics{commands: make(map[string]*CommandStats)}
}

// Outcome classifies a command run.
type Outcome int

const (
	// OutcomeNoop is a run that left the document as it was.
	OutcomeNoop Outcome = iota
	// OutcomeEdit is a run that changed the document.
	OutcomeEdit
	// OutcomeNotice is a run that ended with a notice.
	OutcomeNotice
	// OutcomeFailure is a run that failed.
	OutcomeFailure
)

// Record adds one run of op.
func (m *Metrics) Record(op string, d time.Duration, o Outcome) {
	m.mu.Lock()
	defer m.mu.Unlock()

	c, ok := m.commands[op]
	if !ok {
		c = &CommandStats{}
		m.commands[op] = c
	}
	c.Runs++
	c.Total += d
	if d > c.Max {
		c.Max = d
	}
	switch o {
	case OutcomeEdit:
		c.Edits++
	case OutcomeNotice:
		c.Notices++
	case OutcomeFailure:
		c.Failures++
	}
}

// Snapshot returns a copy of the statistics by command.
func (m *Metrics) Snapshot() map[string]CommandStats {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make(map[string]CommandStats, len(m.commands))
	for k, v := range m.commands {
		out[k] = *v
	}
	return out
}

// Timer measures elapsed time.
type Timer struct {
	start time.Time
}

// StartTimer starts a new timer.
func StartTimer() *Timer {
	return &Timer{start: time.Now()}
}

// Elapsed returns the elapsed time since the timer started.
func (t *Timer) Elapsed() time.Duration {
	return time.Since(t.start)
}
