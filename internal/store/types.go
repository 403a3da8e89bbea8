package store

import "time"

// ActivityEvent records one qualifying filesystem change.
type ActivityEvent struct {
	ID         int64
	Path       string
	Op         string // "CREATE", "WRITE", "REMOVE", "RENAME"
	ObservedAt time.Time
}

// ActionRecord records the outcome of a triggered self-destruct
// attempt.
type ActionRecord struct {
	ID         int64
	Outcome    string
	Detail     string
	DropletID  string
	OccurredAt time.Time
}
