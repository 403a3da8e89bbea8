// Package watcher observes a directory tree for filesystem activity.
//
// The Observer subscribes to a Source of change notifications and, for
// every qualifying event (anything whose target is not a directory),
// advances the shared activity clock, logs the event, and queues a
// journal record. Directory events are deliberately ignored so that
// metadata churn such as log rotation or editor temp-file housekeeping
// never resets the inactivity countdown.
//
// Key features:
//   - Pluggable notification backend (fsnotify in production, a
//     synthetic source in tests)
//   - Recursive watches with automatic registration of new
//     subdirectories
//   - Batched SQLite journal inserts (single transaction per tick)
//   - Daemon mode support with PID file management
//   - Graceful shutdown with SIGTERM/SIGINT handling
//
// Example usage:
//
//	clock := activity.NewClock(time.Now())
//	obs, err := watcher.NewObserver(watcher.NewFSNotifySource(), clock,
//		journal, logger, "/data/models", true)
//	if err != nil {
//		log.Fatal(err)
//	}
//	if err := obs.Start(); err != nil {
//		log.Fatal(err)
//	}
//	defer obs.Stop()
package watcher
