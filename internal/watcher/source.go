package watcher

import "time"

// Event is a single filesystem change notification.
type Event struct {
	Path string
	Op   string // "CREATE", "WRITE", "REMOVE", "RENAME"
	Time time.Time

	// IsDir marks events whose target is a directory. Such events do
	// not qualify as activity.
	IsDir bool
}

// Source abstracts the notification backend so that platform watchers
// and synthetic test sources are interchangeable.
type Source interface {
	// Start begins delivering events for path. With recursive set, the
	// whole tree under path is covered, including directories created
	// later. The returned channels are closed after Stop.
	Start(path string, recursive bool) (<-chan Event, <-chan error, error)

	// Stop ends delivery and releases the underlying watches. It waits
	// for the delivery goroutine to finish.
	Stop() error
}
