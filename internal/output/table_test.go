package output

import (
	"strings"
	"testing"
	"time"

	"github.com/driftworks/idlereap/internal/store"
)

func TestRenderEventTable_Empty(t *testing.T) {
	got := RenderEventTable(nil)
	if !strings.Contains(got, "No activity recorded") {
		t.Errorf("RenderEventTable(nil) = %q, want empty-state message", got)
	}
}

func TestRenderEventTable_Rows(t *testing.T) {
	events := []store.ActivityEvent{
		{Path: "/data/models/llama.gguf", Op: "WRITE", ObservedAt: time.Now()},
		{Path: "/data/models/tmp", Op: "REMOVE", ObservedAt: time.Now().Add(-time.Minute)},
	}

	got := RenderEventTable(events)
	if !strings.Contains(got, "Observed") || !strings.Contains(got, "Path") {
		t.Errorf("table missing header:\n%s", got)
	}
	if !strings.Contains(got, "WRITE") || !strings.Contains(got, "llama.gguf") {
		t.Errorf("table missing event row:\n%s", got)
	}
	if !strings.Contains(got, "REMOVE") {
		t.Errorf("table missing second row:\n%s", got)
	}
}

func TestRenderActionSummary(t *testing.T) {
	if got := RenderActionSummary(nil); !strings.Contains(got, "No self-destruct attempt") {
		t.Errorf("RenderActionSummary(nil) = %q, want empty-state message", got)
	}

	rec := &store.ActionRecord{
		Outcome:    "failed",
		Detail:     "API returned 429",
		DropletID:  "346721834",
		OccurredAt: time.Date(2026, 8, 24, 12, 0, 0, 0, time.Local),
	}
	got := RenderActionSummary(rec)
	for _, want := range []string{"failed", "346721834", "API returned 429"} {
		if !strings.Contains(got, want) {
			t.Errorf("RenderActionSummary() = %q, missing %q", got, want)
		}
	}
}

func TestFormatRelativeTime(t *testing.T) {
	tests := []struct {
		name string
		t    time.Time
		want string
	}{
		{"zero", time.Time{}, "never"},
		{"seconds", time.Now().Add(-10 * time.Second), "just now"},
		{"minutes", time.Now().Add(-5 * time.Minute), "5m ago"},
		{"hours", time.Now().Add(-3 * time.Hour), "3h ago"},
		{"days", time.Now().Add(-49 * time.Hour), "2d ago"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FormatRelativeTime(tt.t); got != tt.want {
				t.Errorf("FormatRelativeTime() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestTruncate(t *testing.T) {
	if got := truncate("short", 10); got != "short" {
		t.Errorf("truncate() = %q, want unchanged", got)
	}
	got := truncate("/a/very/long/path/that/keeps/going", 10)
	if len(got) > 12 { // 9 bytes + multi-byte ellipsis
		t.Errorf("truncate() = %q, too long", got)
	}
	if !strings.HasSuffix(got, "…") {
		t.Errorf("truncate() = %q, want ellipsis suffix", got)
	}
}
