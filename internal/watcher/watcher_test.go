package watcher

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func waitFor(t *testing.T, ch <-chan string, want string) {
	t.Helper()
	deadline := time.After(5 * time.Second)
	for {
		select {
		case got := <-ch:
			if filepath.Clean(got) == filepath.Clean(want) {
				return
			}
		case <-deadline:
			t.Fatalf("timed out waiting for event on %s", want)
		}
	}
}

func TestWatcher_IngestOnWrite(t *testing.T) {
	dir := t.TempDir()
	ingested := make(chan string, 16)
	w := New([]string{dir}, []string{".jsonl"}, true,
		func(path string) { ingested <- path }, nil,
		WithDebounce(50*time.Millisecond))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := w.Start(ctx); err != nil {
		t.Fatal(err)
	}
	defer w.Stop()

	target := filepath.Join(dir, "batch.jsonl")
	if err := os.WriteFile(target, []byte(`{"source_id":"a","raw_content":"x"}`+"\n"), 0644); err != nil {
		t.Fatal(err)
	}
	waitFor(t, ingested, target)
}

func TestWatcher_ExtensionFilter(t *testing.T) {
	dir := t.TempDir()
	ingested := make(chan string, 16)
	w := New([]string{dir}, []string{".jsonl"}, true,
		func(path string) { ingested <- path }, nil,
		WithDebounce(50*time.Millisecond))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := w.Start(ctx); err != nil {
		t.Fatal(err)
	}
	defer w.Stop()

	if err := os.WriteFile(filepath.Join(dir, "notes.tmp"), []byte("ignored"), 0644); err != nil {
		t.Fatal(err)
	}
	select {
	case path := <-ingested:
		t.Fatalf("unexpected ingest for %s", path)
	case <-time.After(300 * time.Millisecond):
	}
}

func TestWatcher_SyncExistingFiles(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "existing.jsonl")
	if err := os.WriteFile(target, []byte("{}\n"), 0644); err != nil {
		t.Fatal(err)
	}

	ingested := make(chan string, 16)
	w := New([]string{dir}, []string{".jsonl"}, true,
		func(path string) { ingested <- path }, nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := w.Start(ctx); err != nil {
		t.Fatal(err)
	}
	defer w.Stop()

	w.SyncExistingFiles()
	waitFor(t, ingested, target)
}

func TestWatcher_RemoveCallback(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "gone.jsonl")
	if err := os.WriteFile(target, []byte("{}\n"), 0644); err != nil {
		t.Fatal(err)
	}

	removed := make(chan string, 16)
	w := New([]string{dir}, []string{".jsonl"}, true,
		nil, func(path string) { removed <- path },
		WithDebounce(50*time.Millisecond))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := w.Start(ctx); err != nil {
		t.Fatal(err)
	}
	defer w.Stop()

	if err := os.Remove(target); err != nil {
		t.Fatal(err)
	}
	waitFor(t, removed, target)
}
