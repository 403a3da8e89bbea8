package watcher

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/driftworks/idlereap/internal/activity"
	"github.com/driftworks/idlereap/internal/store"
)

const defaultFlushInterval = 30 * time.Second

// Observer consumes a Source's event stream, advancing the activity
// clock on every qualifying event and journaling events in batches.
type Observer struct {
	source  Source
	clock   *activity.Clock
	journal *store.Store // optional; nil disables journaling
	logger  *slog.Logger

	target    string
	recursive bool

	flushInterval time.Duration

	mu    sync.Mutex
	queue []store.ActivityEvent

	stopCh   chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
}

// NewObserver creates an Observer for the given watch target. The
// journal store may be nil.
func NewObserver(source Source, clock *activity.Clock, journal *store.Store, logger *slog.Logger, target string, recursive bool) (*Observer, error) {
	if source == nil {
		return nil, fmt.Errorf("source cannot be nil")
	}
	if clock == nil {
		return nil, fmt.Errorf("clock cannot be nil")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger cannot be nil")
	}
	if target == "" {
		return nil, fmt.Errorf("watch target cannot be empty")
	}
	return &Observer{
		source:        source,
		clock:         clock,
		journal:       journal,
		logger:        logger,
		target:        target,
		recursive:     recursive,
		flushInterval: defaultFlushInterval,
		stopCh:        make(chan struct{}),
	}, nil
}

// Start subscribes to the source and begins consuming events. A
// failure to establish the watch is a setup error and is returned
// before any goroutine runs.
func (o *Observer) Start() error {
	events, errs, err := o.source.Start(o.target, o.recursive)
	if err != nil {
		return fmt.Errorf("start notification source: %w", err)
	}

	o.logger.Info("watching for changes", "path", o.target, "recursive", o.recursive)

	o.wg.Add(1)
	go o.run(events, errs)
	return nil
}

// run is the event loop. It only ever does a timestamp write, a log
// line, and a queue append per event, so notification delivery is
// never held up.
func (o *Observer) run(events <-chan Event, errs <-chan error) {
	defer o.wg.Done()

	ticker := time.NewTicker(o.flushInterval)
	defer ticker.Stop()

	for {
		select {
		case ev, ok := <-events:
			if !ok {
				o.flush()
				return
			}
			o.handle(ev)
		case err, ok := <-errs:
			if ok && err != nil {
				o.logger.Warn("watch error", "error", err)
			}
		case <-ticker.C:
			o.flush()
		case <-o.stopCh:
			o.flush()
			return
		}
	}
}

func (o *Observer) handle(ev Event) {
	if ev.IsDir {
		// Directory metadata churn must not reset the clock.
		return
	}

	o.clock.Touch(ev.Time)
	o.logger.Info("activity detected", "path", ev.Path, "op", ev.Op)

	if o.journal == nil {
		return
	}
	o.mu.Lock()
	o.queue = append(o.queue, store.ActivityEvent{
		Path:       ev.Path,
		Op:         ev.Op,
		ObservedAt: ev.Time,
	})
	o.mu.Unlock()
}

// flush drains the queued events into the journal.
func (o *Observer) flush() {
	if o.journal == nil {
		return
	}

	o.mu.Lock()
	batch := o.queue
	o.queue = nil
	o.mu.Unlock()

	if len(batch) == 0 {
		return
	}
	if err := o.journal.InsertActivityEvents(batch); err != nil {
		o.logger.Warn("journal flush failed", "error", err, "events", len(batch))
	}
}

// Stop unsubscribes from the source, waits for the event loop to
// drain, and performs a final journal flush.
func (o *Observer) Stop() error {
	var err error
	o.stopOnce.Do(func() {
		close(o.stopCh)
		o.wg.Wait()
		err = o.source.Stop()
	})
	return err
}
