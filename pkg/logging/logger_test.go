package logging

import (
	"bytes"
	"strings"
	"testing"
)

func TestNewPrefixesLines(t *testing.T) {
	var buf bytes.Buffer
	New(&buf).Printf("router: dispatch %s\n", "plan-this")
	out := buf.String()
	if !strings.Contains(out, "momentum: ") || !strings.HasSuffix(out, "router: dispatch plan-this\n") {
		t.Fatalf("unexpected log line %q", out)
	}
}

func TestOrNop(t *testing.T) {
	if OrNop(nil) != Nop {
		t.Fatalf("expected nop logger for nil")
	}
	var buf bytes.Buffer
	l := New(&buf)
	if OrNop(l) != l {
		t.Fatalf("expected logger to pass through")
	}
}
