package logbook

import (
	"path/filepath"
	"strings"
	"testing"
)

func TestTailReturnsMostRecentEntries(t *testing.T) {
	dir := t.TempDir()
	book, err := New(filepath.Join(dir, "logs", "run.log"))
	if err != nil {
		t.Fatalf("new logbook: %v", err)
	}
	for i := 0; i < 5; i++ {
		book.Info("entry-%d", i)
	}
	lines := book.Tail(3)
	if len(lines) != 3 {
		t.Fatalf("len(lines) = %d, want 3", len(lines))
	}
	for idx, want := range []string{"entry-2", "entry-3", "entry-4"} {
		if !strings.Contains(lines[idx], want) {
			t.Fatalf("line %d = %q, missing %s", idx, lines[idx], want)
		}
	}
}

func TestForRunNamesFileByRunID(t *testing.T) {
	dir := t.TempDir()
	book, err := ForRun(dir, "abc123")
	if err != nil {
		t.Fatalf("for run: %v", err)
	}
	if !strings.HasSuffix(book.Path(), "review-abc123.log") {
		t.Fatalf("path = %q", book.Path())
	}
	book.Warn("tool lookup failed")
	lines := book.Tail(1)
	if len(lines) != 1 || !strings.Contains(lines[0], "WARN") {
		t.Fatalf("lines = %v", lines)
	}
}

func TestNilLogbookIsSilent(t *testing.T) {
	var book *Logbook
	book.Info("ignored")
	if lines := book.Tail(5); lines != nil {
		t.Fatalf("nil tail = %v", lines)
	}
}
