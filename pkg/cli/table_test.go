package cli

import (
	"bytes"
	"strings"
	"testing"
)

func TestTableOutput(t *testing.T) {
	var buf bytes.Buffer
	table := NewTableTo(&buf, "DEVICE", "STATUS")
	table.Row("leaf1", "in sync")
	table.Row("leaf2", "changes pending")
	table.Flush()

	out := buf.String()
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	if len(lines) != 4 {
		t.Fatalf("got %d lines, want 4 (headers, divider, two rows):\n%s", len(lines), out)
	}
	if !strings.Contains(lines[0], "DEVICE") || !strings.Contains(lines[0], "STATUS") {
		t.Errorf("header line = %q", lines[0])
	}
	if !strings.Contains(lines[1], "------") {
		t.Errorf("divider line = %q", lines[1])
	}
	if !strings.Contains(lines[2], "leaf1") {
		t.Errorf("first row = %q", lines[2])
	}
}

// Tables with no rows stay silent, headers included.
func TestTableEmpty(t *testing.T) {
	var buf bytes.Buffer
	table := NewTableTo(&buf, "A", "B")
	table.Flush()
	if buf.Len() != 0 {
		t.Errorf("empty table produced output: %q", buf.String())
	}
}

func TestDash(t *testing.T) {
	if Dash("") != "-" {
		t.Error(`Dash("") should be "-"`)
	}
	if Dash("x") != "x" {
		t.Error(`Dash("x") should be "x"`)
	}
}
