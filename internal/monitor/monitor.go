// Package monitor implements the inactivity decision loop.
//
// A Monitor polls the shared activity clock on a fixed cadence and,
// once the configured quiescence threshold is reached, invokes its
// pluggable action exactly once and terminates. The loop never
// restarts itself; whether the whole process gets re-run is the
// supervisor's policy, not the monitor's.
package monitor

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/driftworks/idlereap/internal/activity"
)

// State of the monitor loop.
type State int32

const (
	StateWatching State = iota
	StateActing
	StateStopping
	StateTerminated
)

func (s State) String() string {
	switch s {
	case StateWatching:
		return "watching"
	case StateActing:
		return "acting"
	case StateStopping:
		return "stopping"
	case StateTerminated:
		return "terminated"
	default:
		return fmt.Sprintf("state(%d)", int32(s))
	}
}

// OutcomeKind classifies the result of the triggered action.
type OutcomeKind int

const (
	// OutcomeNone means no action ran (no action configured, or the
	// loop was stopped externally).
	OutcomeNone OutcomeKind = iota

	// OutcomeDestroyed means the destroy request was accepted.
	OutcomeDestroyed

	// OutcomeAborted means the action short-circuited before the
	// destroy call (missing credential, unresolved identity).
	OutcomeAborted

	// OutcomeFailed means the destroy call itself failed.
	OutcomeFailed
)

func (k OutcomeKind) String() string {
	switch k {
	case OutcomeNone:
		return "none"
	case OutcomeDestroyed:
		return "destroyed"
	case OutcomeAborted:
		return "aborted"
	case OutcomeFailed:
		return "failed"
	default:
		return fmt.Sprintf("outcome(%d)", int(k))
	}
}

// Outcome is the result of the triggered action. It feeds logging and
// the journal, not control flow: apart from the missing-credential
// case the process exits 0 regardless.
type Outcome struct {
	Kind   OutcomeKind
	Reason string
	Err    error
}

// Action is the pluggable operation invoked once the inactivity
// threshold is reached. It runs synchronously on the monitor's own
// goroutine; the loop has already decided to terminate when it runs.
type Action func(ctx context.Context) Outcome

// Monitor polls an activity clock and fires its action at most once
// per process lifetime.
type Monitor struct {
	clock    *activity.Clock
	action   Action // nil is a valid no-op action
	timeout  time.Duration
	interval time.Duration
	logger   *slog.Logger

	now func() time.Time

	state    atomic.Int32
	stopCh   chan struct{}
	stopOnce sync.Once
}

// New creates a Monitor. A nil action means the loop still terminates
// on timeout but performs no side effect.
func New(clock *activity.Clock, action Action, timeout, interval time.Duration, logger *slog.Logger) (*Monitor, error) {
	if clock == nil {
		return nil, fmt.Errorf("clock cannot be nil")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger cannot be nil")
	}
	if timeout <= 0 {
		return nil, fmt.Errorf("timeout must be positive, got %v", timeout)
	}
	if interval <= 0 {
		return nil, fmt.Errorf("poll interval must be positive, got %v", interval)
	}
	return &Monitor{
		clock:    clock,
		action:   action,
		timeout:  timeout,
		interval: interval,
		logger:   logger,
		now:      time.Now,
		stopCh:   make(chan struct{}),
	}, nil
}

// Run executes the polling loop until the threshold fires or Stop is
// called. It returns the action outcome and whether the action path
// was taken; fired is false when the loop was stopped externally.
// Run must be called at most once.
func (m *Monitor) Run() (outcome Outcome, fired bool) {
	defer m.state.Store(int32(StateTerminated))

	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			now := m.now()
			idle := m.clock.IdleSince(now)
			if idle < m.timeout {
				m.logger.Info("still active",
					"idle", idle.Round(time.Second),
					"remaining", (m.timeout - idle).Round(time.Second))
				continue
			}

			// Single transition into ACTING guards against a delayed
			// second tick or a racing Stop.
			if !m.state.CompareAndSwap(int32(StateWatching), int32(StateActing)) {
				return Outcome{Kind: OutcomeNone}, false
			}

			m.logger.Info("inactivity threshold reached",
				"idle", idle.Round(time.Second),
				"timeout", m.timeout)

			if m.action == nil {
				return Outcome{Kind: OutcomeNone}, true
			}
			return m.action(context.Background()), true

		case <-m.stopCh:
			return Outcome{Kind: OutcomeNone}, false
		}
	}
}

// Stop interrupts the loop without invoking the action. An action
// already in flight is not cancelled.
func (m *Monitor) Stop() {
	m.stopOnce.Do(func() {
		m.state.CompareAndSwap(int32(StateWatching), int32(StateStopping))
		close(m.stopCh)
	})
}

// State returns the loop's current state.
func (m *Monitor) State() State {
	return State(m.state.Load())
}
