package testutil

import (
	"log/slog"
	"strings"
	"testing"
)

// AssertLogContains fails t unless a record at level contains message
func AssertLogContains(t testing.TB, h *LogCapture, level slog.Level, message string) {
	t.Helper()
	records := h.RecordsAt(level)
	for _, r := range records {
		if strings.Contains(r.Message, message) {
			return
		}
	}
	t.Errorf("no %s log containing %q; captured %d record(s) at that level", level, message, len(records))
	for _, r := range records {
		t.Logf("  - %s", r.Message)
	}
}

// AssertLogAttr fails t unless some record carries key with value
func AssertLogAttr(t testing.TB, h *LogCapture, key string, value any) {
	t.Helper()
	if h.ContainsAttr(key, value) {
		return
	}
	t.Errorf("no log attribute %s=%v (%T)", key, value, value)
	for _, r := range h.Records() {
		t.Logf("  - %s: %v", r.Message, r.Attrs)
	}
}

// AssertNoErrors fails t if anything was logged at error level
func AssertNoErrors(t testing.TB, h *LogCapture) {
	t.Helper()
	for _, r := range h.RecordsAt(slog.LevelError) {
		t.Errorf("unexpected error log: %s %v", r.Message, r.Attrs)
	}
}
