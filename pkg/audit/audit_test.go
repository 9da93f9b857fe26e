package audit

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func newTestLogger(t *testing.T) (*FileLogger, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "audit.jsonl")
	logger, err := NewFileLogger(path)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { logger.Close() })
	return logger, path
}

func TestLogAndQuery(t *testing.T) {
	logger, _ := newTestLogger(t)

	for _, spec := range []struct {
		device, op string
		success    bool
	}{
		{"leaf1", "apply", true},
		{"leaf2", "apply", false},
		{"leaf1", "plan", true},
	} {
		e := NewEvent("dc1", spec.device, spec.op)
		e.Success = spec.success
		e.Changes = []string{"apply vlan/1154"}
		if err := logger.Log(e); err != nil {
			t.Fatal(err)
		}
	}

	all, err := logger.Query(Filter{})
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 3 {
		t.Fatalf("got %d events, want 3", len(all))
	}
	if all[0].Fabric != "dc1" || all[0].User == "" || all[0].ID == "" {
		t.Errorf("event not stamped: %+v", all[0])
	}

	leaf1, err := logger.Query(Filter{Device: "leaf1"})
	if err != nil {
		t.Fatal(err)
	}
	if len(leaf1) != 2 {
		t.Errorf("device filter: got %d events, want 2", len(leaf1))
	}

	applies, err := logger.Query(Filter{Operation: "apply"})
	if err != nil {
		t.Fatal(err)
	}
	if len(applies) != 2 {
		t.Errorf("operation filter: got %d events, want 2", len(applies))
	}

	// Limit keeps the newest events.
	last, err := logger.Query(Filter{Limit: 1})
	if err != nil {
		t.Fatal(err)
	}
	if len(last) != 1 || last[0].Operation != "plan" {
		t.Errorf("limit should keep the newest event, got %+v", last)
	}
}

func TestQuerySince(t *testing.T) {
	logger, _ := newTestLogger(t)

	old := NewEvent("dc1", "leaf1", "apply")
	old.Timestamp = time.Now().Add(-48 * time.Hour)
	if err := logger.Log(old); err != nil {
		t.Fatal(err)
	}
	if err := logger.Log(NewEvent("dc1", "leaf1", "apply")); err != nil {
		t.Fatal(err)
	}

	recent, err := logger.Query(Filter{Since: time.Now().Add(-time.Hour)})
	if err != nil {
		t.Fatal(err)
	}
	if len(recent) != 1 {
		t.Errorf("got %d events, want 1 newer than cutoff", len(recent))
	}
}

// Malformed lines are skipped, not fatal: the log must stay readable
// after a partial write.
func TestQuerySkipsMalformedLines(t *testing.T) {
	logger, path := newTestLogger(t)
	if err := logger.Log(NewEvent("dc1", "leaf1", "apply")); err != nil {
		t.Fatal(err)
	}

	f, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		t.Fatal(err)
	}
	f.WriteString("{truncated\n")
	f.Close()

	if err := logger.Log(NewEvent("dc1", "leaf2", "apply")); err != nil {
		t.Fatal(err)
	}

	events, err := logger.Query(Filter{})
	if err != nil {
		t.Fatal(err)
	}
	if len(events) != 2 {
		t.Errorf("got %d events, want 2 (malformed line skipped)", len(events))
	}
}

func TestQueryMissingFile(t *testing.T) {
	logger, path := newTestLogger(t)
	logger.Close()
	os.Remove(path)

	events, err := logger.Query(Filter{})
	if err != nil {
		t.Fatal(err)
	}
	if len(events) != 0 {
		t.Errorf("missing log should yield no events, got %d", len(events))
	}
}
