package store

import (
	"testing"
	"time"
)

func setupTestStore(t *testing.T) *Store {
	t.Helper()

	st, err := New(":memory:")
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	t.Cleanup(func() { st.Close() })

	if err := st.CreateSchema(); err != nil {
		t.Fatalf("failed to create schema: %v", err)
	}
	return st
}

func TestInsertActivityEvents_Empty(t *testing.T) {
	st := setupTestStore(t)

	if err := st.InsertActivityEvents(nil); err != nil {
		t.Errorf("InsertActivityEvents(nil) error = %v, want nil", err)
	}
}

func TestInsertAndRecentEvents(t *testing.T) {
	st := setupTestStore(t)

	base := time.Date(2026, 8, 24, 12, 0, 0, 0, time.UTC)
	events := []ActivityEvent{
		{Path: "/data/models/a.bin", Op: "CREATE", ObservedAt: base},
		{Path: "/data/models/a.bin", Op: "WRITE", ObservedAt: base.Add(time.Minute)},
		{Path: "/data/models/b.bin", Op: "REMOVE", ObservedAt: base.Add(2 * time.Minute)},
	}
	if err := st.InsertActivityEvents(events); err != nil {
		t.Fatalf("InsertActivityEvents() error = %v, want nil", err)
	}

	got, err := st.RecentEvents(10)
	if err != nil {
		t.Fatalf("RecentEvents() error = %v, want nil", err)
	}
	if len(got) != 3 {
		t.Fatalf("RecentEvents() returned %d events, want 3", len(got))
	}
	if got[0].Path != "/data/models/b.bin" || got[0].Op != "REMOVE" {
		t.Errorf("RecentEvents()[0] = %+v, want newest event first", got[0])
	}
	if !got[0].ObservedAt.Equal(base.Add(2 * time.Minute)) {
		t.Errorf("ObservedAt = %v, want %v", got[0].ObservedAt, base.Add(2*time.Minute))
	}
}

func TestRecentEvents_Limit(t *testing.T) {
	st := setupTestStore(t)

	base := time.Now().UTC().Truncate(time.Second)
	var events []ActivityEvent
	for i := 0; i < 5; i++ {
		events = append(events, ActivityEvent{
			Path:       "/data/f",
			Op:         "WRITE",
			ObservedAt: base.Add(time.Duration(i) * time.Second),
		})
	}
	if err := st.InsertActivityEvents(events); err != nil {
		t.Fatalf("InsertActivityEvents() error = %v", err)
	}

	got, err := st.RecentEvents(2)
	if err != nil {
		t.Fatalf("RecentEvents() error = %v", err)
	}
	if len(got) != 2 {
		t.Errorf("RecentEvents(2) returned %d events, want 2", len(got))
	}
}

func TestLatestActivity(t *testing.T) {
	st := setupTestStore(t)

	if _, ok, err := st.LatestActivity(); err != nil || ok {
		t.Errorf("LatestActivity() on empty journal = ok=%v err=%v, want ok=false err=nil", ok, err)
	}

	newest := time.Date(2026, 8, 24, 15, 30, 0, 0, time.UTC)
	events := []ActivityEvent{
		{Path: "/data/x", Op: "WRITE", ObservedAt: newest.Add(-time.Hour)},
		{Path: "/data/y", Op: "WRITE", ObservedAt: newest},
	}
	if err := st.InsertActivityEvents(events); err != nil {
		t.Fatalf("InsertActivityEvents() error = %v", err)
	}

	ts, ok, err := st.LatestActivity()
	if err != nil {
		t.Fatalf("LatestActivity() error = %v, want nil", err)
	}
	if !ok {
		t.Fatal("LatestActivity() ok = false, want true")
	}
	if !ts.Equal(newest) {
		t.Errorf("LatestActivity() = %v, want %v", ts, newest)
	}
}

func TestRecordAndLastAction(t *testing.T) {
	st := setupTestStore(t)

	last, err := st.LastAction()
	if err != nil {
		t.Fatalf("LastAction() error = %v, want nil", err)
	}
	if last != nil {
		t.Fatalf("LastAction() on empty journal = %+v, want nil", last)
	}

	when := time.Date(2026, 8, 24, 20, 0, 0, 0, time.UTC)
	if err := st.RecordAction(ActionRecord{
		Outcome:    "destroyed",
		Detail:     "",
		DropletID:  "346721834",
		OccurredAt: when,
	}); err != nil {
		t.Fatalf("RecordAction() error = %v, want nil", err)
	}
	if err := st.RecordAction(ActionRecord{
		Outcome:    "failed",
		Detail:     "API returned 429",
		DropletID:  "346721834",
		OccurredAt: when.Add(time.Minute),
	}); err != nil {
		t.Fatalf("RecordAction() error = %v, want nil", err)
	}

	last, err = st.LastAction()
	if err != nil {
		t.Fatalf("LastAction() error = %v, want nil", err)
	}
	if last == nil {
		t.Fatal("LastAction() = nil, want record")
	}
	if last.Outcome != "failed" || last.Detail != "API returned 429" {
		t.Errorf("LastAction() = %+v, want the newest record", last)
	}
	if !last.OccurredAt.Equal(when.Add(time.Minute)) {
		t.Errorf("OccurredAt = %v, want %v", last.OccurredAt, when.Add(time.Minute))
	}
}
