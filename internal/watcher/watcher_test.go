package watcher

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/conneroisu/ope/internal/logging"
)

func newWatcher(t *testing.T, delay time.Duration) *FileWatcher {
	t.Helper()
	fw, err := NewFileWatcher(delay, logging.Discard())
	require.NoError(t, err)
	t.Cleanup(func() { _ = fw.Stop() })
	return fw
}

func TestEventTypeString(t *testing.T) {
	testCases := []struct {
		eventType EventType
		expected  string
	}{
		{EventTypeCreated, "created"},
		{EventTypeModified, "modified"},
		{EventTypeDeleted, "deleted"},
		{EventTypeRenamed, "renamed"},
		{EventType(99), "unknown"},
	}

	for _, tc := range testCases {
		t.Run(tc.expected, func(t *testing.T) {
			assert.Equal(t, tc.expected, tc.eventType.String())
		})
	}
}

func TestFilters(t *testing.T) {
	testCases := []struct {
		path     string
		markdown bool
		notTemp  bool
	}{
		{"content/songs.md", true, true},
		{"content/ALBUMS.MD", true, true},
		{"content/songs.md~", false, false},
		{"content/.#songs.md", true, false},
		{"content/.songs.md.swp", false, false},
		{"content/index.html", false, true},
	}

	for _, tc := range testCases {
		t.Run(tc.path, func(t *testing.T) {
			assert.Equal(t, tc.markdown, MarkdownFilter(tc.path))
			assert.Equal(t, tc.notTemp, NoEditorTempFilter(tc.path))
		})
	}
}

func TestDebouncer(t *testing.T) {
	fw := newWatcher(t, 30*time.Millisecond)
	d := fw.debouncer

	now := time.Now()
	d.addEvent(ChangeEvent{Type: EventTypeCreated, Path: "b.md", ModTime: now})
	d.addEvent(ChangeEvent{Type: EventTypeModified, Path: "a.md", ModTime: now})
	d.addEvent(ChangeEvent{Type: EventTypeModified, Path: "b.md", ModTime: now})

	select {
	case events := <-d.output:
		require.Len(t, events, 2, "events are deduplicated by path")
		assert.Equal(t, "a.md", events[0].Path)
		assert.Equal(t, "b.md", events[1].Path)
		assert.Equal(t, EventTypeModified, events[1].Type, "latest event wins")
	case <-time.After(time.Second):
		t.Fatal("debouncer did not flush")
	}
}

func TestDebouncerStopDropsPending(t *testing.T) {
	fw := newWatcher(t, 20*time.Millisecond)
	fw.debouncer.addEvent(ChangeEvent{Path: "a.md"})
	fw.debouncer.stop()
	fw.debouncer.addEvent(ChangeEvent{Path: "b.md"})

	select {
	case <-fw.debouncer.output:
		t.Fatal("stopped debouncer flushed")
	case <-time.After(80 * time.Millisecond):
	}
}

func TestWatchMarkdownChanges(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	dir := t.TempDir()
	fw, err := NewFileWatcher(50*time.Millisecond, logging.Discard())
	require.NoError(t, err)
	fw.AddFilter(MarkdownFilter)
	fw.AddFilter(NoEditorTempFilter)

	var mu sync.Mutex
	var batches [][]ChangeEvent
	fw.AddHandler(func(_ context.Context, events []ChangeEvent) error {
		mu.Lock()
		defer mu.Unlock()
		batches = append(batches, events)
		return nil
	})

	require.NoError(t, fw.AddRecursive(dir))
	require.NoError(t, fw.Start(context.Background()))

	path := filepath.Join(dir, "songs.md")
	for i := 0; i < 5; i++ {
		require.NoError(t, os.WriteFile(path, []byte("# Songs\n"), 0o644))
	}
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644))

	assert.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(batches) > 0
	}, 2*time.Second, 10*time.Millisecond)

	require.NoError(t, fw.Stop())

	mu.Lock()
	defer mu.Unlock()
	for _, batch := range batches {
		for _, e := range batch {
			assert.Equal(t, path, e.Path, "only markdown files pass the filters")
		}
	}
}

func TestStopWithoutStart(t *testing.T) {
	fw, err := NewFileWatcher(DefaultDebounce, logging.Discard())
	require.NoError(t, err)
	assert.NoError(t, fw.Stop())
	assert.NoError(t, fw.Stop(), "Stop is idempotent")
}

func TestAddRecursiveSkipsHiddenDirs(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "drafts"), 0o755))
	require.NoError(t, os.MkdirAll(filepath.Join(dir, ".git", "objects"), 0o755))

	fw := newWatcher(t, DefaultDebounce)
	require.NoError(t, fw.AddRecursive(dir))

	watched := fw.watcher.WatchList()
	assert.Contains(t, watched, dir)
	assert.Contains(t, watched, filepath.Join(dir, "drafts"))
	assert.NotContains(t, watched, filepath.Join(dir, ".git"))
}

func TestAddRecursiveMissingRoot(t *testing.T) {
	fw := newWatcher(t, DefaultDebounce)
	assert.Error(t, fw.AddRecursive(filepath.Join(t.TempDir(), "missing")))
}
