//go:build linux
// +build linux

package main

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func newWatchedSource(t *testing.T) (string, chan string, *SourceWatcher) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "prog.bas")
	if err := os.WriteFile(path, []byte("DIM x AS BYTE\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	changed := make(chan string, 4)
	sw, err := NewSourceWatcher(path, func(p string) { changed <- p })
	if err != nil {
		t.Fatalf("NewSourceWatcher: %v", err)
	}
	t.Cleanup(func() { sw.Close() })
	go sw.Watch()
	time.Sleep(50 * time.Millisecond)
	return path, changed, sw
}

func waitForChange(t *testing.T, changed chan string, what string) string {
	t.Helper()
	select {
	case p := <-changed:
		return p
	case <-time.After(3 * time.Second):
		t.Fatalf("watcher never fired after %s", what)
		return ""
	}
}

func TestSourceWatcherFiresAfterWrite(t *testing.T) {
	path, changed, _ := newWatchedSource(t)
	if err := os.WriteFile(path, []byte("DIM x AS WORD\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	p := waitForChange(t, changed, "an in-place write")
	if filepath.Base(p) != "prog.bas" {
		t.Fatalf("unexpected path %s", p)
	}
}

func TestSourceWatcherSurvivesSaveByRename(t *testing.T) {
	path, changed, _ := newWatchedSource(t)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, []byte("DIM y AS WORD\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.Rename(tmp, path); err != nil {
		t.Fatal(err)
	}
	waitForChange(t, changed, "a save-by-rename")

	// the re-armed watch must still see plain writes
	if err := os.WriteFile(path, []byte("DIM z AS WORD\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	waitForChange(t, changed, "a write following the rename")
}
