package logging

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"
	"time"
)

var linePattern = regexp.MustCompile(`^\d{4}-\d{2}-\d{2} \d{2}:\d{2}:\d{2} - `)

func newTestLogger(buf *bytes.Buffer) *slog.Logger {
	lvl := new(slog.LevelVar)
	lvl.Set(slog.LevelDebug)
	return slog.New(newLineHandler(buf, lvl))
}

func TestLineHandler_Format(t *testing.T) {
	var buf bytes.Buffer
	logger := newTestLogger(&buf)

	logger.Info("monitor started", "path", "/data/models", "timeout", 28800)

	line := buf.String()
	if !linePattern.MatchString(line) {
		t.Errorf("line %q does not start with a timestamp", line)
	}
	if !strings.Contains(line, "monitor started") {
		t.Errorf("line %q missing message", line)
	}
	if !strings.Contains(line, "path=/data/models") {
		t.Errorf("line %q missing path attribute", line)
	}
	if !strings.Contains(line, "timeout=28800") {
		t.Errorf("line %q missing timeout attribute", line)
	}
	if !strings.HasSuffix(line, "\n") {
		t.Errorf("line %q missing trailing newline", line)
	}
}

func TestLineHandler_LevelPrefix(t *testing.T) {
	var buf bytes.Buffer
	logger := newTestLogger(&buf)

	logger.Info("plain")
	logger.Warn("careful")
	logger.Error("broken")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 3 {
		t.Fatalf("got %d lines, want 3", len(lines))
	}
	if strings.Contains(lines[0], "info:") {
		t.Errorf("info line %q should not carry a level prefix", lines[0])
	}
	if !strings.Contains(lines[1], "warn: careful") {
		t.Errorf("warn line %q missing prefix", lines[1])
	}
	if !strings.Contains(lines[2], "error: broken") {
		t.Errorf("error line %q missing prefix", lines[2])
	}
}

func TestLineHandler_WithAttrsAndGroups(t *testing.T) {
	var buf bytes.Buffer
	logger := newTestLogger(&buf).With("component", "observer")

	logger.WithGroup("event").Info("activity", "path", "/data/x.bin")

	line := buf.String()
	if !strings.Contains(line, "component=observer") {
		t.Errorf("line %q missing inherited attribute", line)
	}
	if !strings.Contains(line, "event.path=/data/x.bin") {
		t.Errorf("line %q missing grouped attribute", line)
	}
}

func TestLineHandler_QuotesValuesWithSpaces(t *testing.T) {
	var buf bytes.Buffer
	logger := newTestLogger(&buf)

	logger.Info("activity", "path", "/data/my model.bin")

	if !strings.Contains(buf.String(), `path="/data/my model.bin"`) {
		t.Errorf("line %q missing quoted value", buf.String())
	}
}

func TestLineHandler_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	lvl := new(slog.LevelVar)
	lvl.Set(slog.LevelWarn)
	h := newLineHandler(&buf, lvl)

	if h.Enabled(context.Background(), slog.LevelInfo) {
		t.Error("Enabled(info) = true with warn minimum")
	}
	if !h.Enabled(context.Background(), slog.LevelError) {
		t.Error("Enabled(error) = false with warn minimum")
	}
}

func TestNew_WritesLogFile(t *testing.T) {
	tmpDir := t.TempDir()
	logFile := filepath.Join(tmpDir, "logs", "idlereap.log")

	logger, err := New(Options{LogFile: logFile})
	if err != nil {
		t.Fatalf("New() error = %v, want nil", err)
	}
	logger.Info("hello from test")
	if err := logger.Close(); err != nil {
		t.Fatalf("Close() error = %v, want nil", err)
	}

	data, err := os.ReadFile(logFile)
	if err != nil {
		t.Fatalf("failed to read log file: %v", err)
	}
	if !strings.Contains(string(data), "hello from test") {
		t.Errorf("log file %q missing message", string(data))
	}
}

func TestFanoutHandler_DuplicatesRecords(t *testing.T) {
	var a, b bytes.Buffer
	lvl := new(slog.LevelVar)
	h := newFanoutHandler(newLineHandler(&a, lvl), newLineHandler(&b, lvl))
	logger := slog.New(h)

	logger.Info("both sides")

	for name, buf := range map[string]*bytes.Buffer{"first": &a, "second": &b} {
		if !strings.Contains(buf.String(), "both sides") {
			t.Errorf("%s handler missing record: %q", name, buf.String())
		}
	}
}

func TestNewNop_Discards(t *testing.T) {
	logger := NewNop()
	logger.Info("into the void", "at", time.Now())
	if err := logger.Close(); err != nil {
		t.Errorf("Close() error = %v, want nil", err)
	}
}
