package build

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/basicc-lang/basicc/internal/vfs"
)

func TestWatchRebuildsChangedFiles(t *testing.T) {
	m := vfs.NewMem()
	writeSources(t, m, map[string]string{
		"a.bas": "PRINT 1\n",
		"b.bas": "PRINT 2\n",
	})

	w := vfs.NewSimpleWatcher(m)
	defer w.Close()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := w.StartPolling(ctx, 5*time.Millisecond); err != nil {
		t.Fatal(err)
	}

	b := &Builder{FS: m, Debounce: 10 * time.Millisecond}
	results := make(chan Result, 16)
	done := make(chan error, 1)
	go func() {
		done <- b.Watch(ctx, w, []string{"a.bas", "b.bas"}, func(r Result) { results <- r })
	}()

	next := func() Result {
		t.Helper()
		select {
		case r := <-results:
			return r
		case <-time.After(2 * time.Second):
			t.Fatal("timeout waiting for build result")
			return Result{}
		}
	}

	// initial build
	seen := map[string]bool{next().Input: true, next().Input: true}
	if !seen["a.bas"] || !seen["b.bas"] {
		t.Fatalf("initial build reported %v", seen)
	}

	writeSources(t, m, map[string]string{"b.bas": "PRINT \"changed\"\n"})
	r := next()
	if r.Input != "b.bas" || r.Err != nil {
		t.Fatalf("rebuild result = %+v", r)
	}
	if out := readOutput(t, m, "b.c"); !strings.Contains(out, `"changed"`) {
		t.Errorf("b.c not rebuilt: %q", out)
	}

	writeSources(t, m, map[string]string{"a.bas": "PRINT y\n"})
	if r := next(); r.Input != "a.bas" || r.Err == nil {
		t.Errorf("broken source should report an error, got %+v", r)
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Watch() error = %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Watch did not stop on cancel")
	}
}

func TestWatchReturnsBuildErrors(t *testing.T) {
	m := vfs.NewMem()
	writeSources(t, m, map[string]string{"a.bas": "PRINT 1\n"})
	w := vfs.NewSimpleWatcher(m)
	defer w.Close()

	b := &Builder{}
	err := b.Watch(context.Background(), w, []string{"a.bas"}, func(Result) {})
	if err == nil || !strings.Contains(err.Error(), "nil file system") {
		t.Errorf("Watch() error = %v, want nil file system", err)
	}
}

func TestWatchCancelledBeforeStart(t *testing.T) {
	m := vfs.NewMem()
	writeSources(t, m, map[string]string{"a.bas": "PRINT 1\n"})
	w := vfs.NewSimpleWatcher(m)
	defer w.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	b := &Builder{FS: m}
	if err := b.Watch(ctx, w, []string{"a.bas"}, func(Result) {}); err != nil {
		t.Errorf("Watch() error = %v, want nil on cancellation", err)
	}
}

func TestWatchStopsWhenWatcherCloses(t *testing.T) {
	m := vfs.NewMem()
	writeSources(t, m, map[string]string{"a.bas": "PRINT 1\n"})
	w := vfs.NewSimpleWatcher(m)

	b := &Builder{FS: m}
	done := make(chan error, 1)
	started := make(chan struct{})
	go func() {
		done <- b.Watch(context.Background(), w, []string{"a.bas"}, func(Result) { close(started) })
	}()

	<-started
	_ = w.Close()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Watch() error = %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Watch did not stop after Close")
	}
}
