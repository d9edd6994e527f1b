package watch

import (
	"testing"

	"github.com/fsnotify/fsnotify"
)

func TestMatchesTrackedFileAndOp(t *testing.T) {
	w := New(func() {}, "/data/feeds.xlsx", "/data/roster.yaml")

	if !w.Matches(fsnotify.Event{Name: "/data/feeds.xlsx", Op: fsnotify.Write}) {
		t.Fatalf("write to tracked file should match")
	}
	if !w.Matches(fsnotify.Event{Name: "/data/roster.yaml", Op: fsnotify.Create}) {
		t.Fatalf("create of tracked file should match")
	}
	if w.Matches(fsnotify.Event{Name: "/data/other.xlsx", Op: fsnotify.Write}) {
		t.Fatalf("untracked file must not match")
	}
	if w.Matches(fsnotify.Event{Name: "/data/feeds.xlsx", Op: fsnotify.Chmod}) {
		t.Fatalf("chmod must not trigger a reload")
	}
}
