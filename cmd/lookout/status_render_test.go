package main

import (
	"fmt"
	"io"
	"strings"
	"testing"
)

func TestRenderStatusLineNoColor(t *testing.T) {
	got := renderStatusLine("Running", statusWarn, "no", false)
	want := fmt.Sprintf("%s%-*s %s", statusIndent, statusLabelWidth, "Running:", "[WARN] no")
	if got != want {
		t.Fatalf("renderStatusLine mismatch\n got: %q\nwant: %q", got, want)
	}
}

func TestRenderStatusLineWithColor(t *testing.T) {
	got := renderStatusLine("Running", statusOK, "yes", true)
	if !strings.HasPrefix(got, ansiGreen) {
		t.Fatalf("expected green prefix, got %q", got)
	}
	if !strings.HasSuffix(got, ansiReset) {
		t.Fatalf("expected reset suffix, got %q", got)
	}
}

func TestRenderSectionHeader(t *testing.T) {
	lines := renderSectionHeader("Daemon", false)
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d", len(lines))
	}
	if lines[0] != "== Daemon ==" {
		t.Fatalf("unexpected header line: %q", lines[0])
	}
	if lines[1] != strings.Repeat("-", len(lines[0])) {
		t.Fatalf("unexpected rule line: %q", lines[1])
	}
}

func TestBoolStatusKind(t *testing.T) {
	if boolStatusKind(true) != statusOK {
		t.Fatal("expected statusOK for true")
	}
	if boolStatusKind(false) != statusWarn {
		t.Fatal("expected statusWarn for false")
	}
}

func TestShouldColorizeNonFile(t *testing.T) {
	if shouldColorize(io.Discard) {
		t.Fatalf("expected non-file writer to disable color")
	}
}
