package watch

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kushwahaPrashant24/blocktube/internal/filter"
)

// ---------------------------------------------------------------------------
// Debouncer
// ---------------------------------------------------------------------------

func TestDebouncer_SingleEvent(t *testing.T) {
	var callCount atomic.Int32
	var got atomic.Value

	d := NewDebouncer(50*time.Millisecond, func(paths []string) {
		callCount.Add(1)
		got.Store(paths)
	})
	defer d.Stop()

	d.Trigger("a.json")

	time.Sleep(150 * time.Millisecond)
	assert.Equal(t, int32(1), callCount.Load())
	assert.Equal(t, []string{"a.json"}, got.Load())
}

func TestDebouncer_MultipleEventsCoalesced(t *testing.T) {
	var callCount atomic.Int32

	d := NewDebouncer(100*time.Millisecond, func(_ []string) {
		callCount.Add(1)
	})
	defer d.Stop()

	for i := 0; i < 10; i++ {
		d.Trigger("page.json")
		time.Sleep(5 * time.Millisecond)
	}

	time.Sleep(250 * time.Millisecond)
	assert.Equal(t, int32(1), callCount.Load())
}

func TestDebouncer_CollectsDistinctPaths(t *testing.T) {
	var got atomic.Value

	d := NewDebouncer(50*time.Millisecond, func(paths []string) {
		got.Store(paths)
	})
	defer d.Stop()

	d.Trigger("filters.yaml")
	time.Sleep(10 * time.Millisecond)
	d.Trigger("b.json")
	time.Sleep(10 * time.Millisecond)
	d.Trigger("filters.yaml")

	time.Sleep(150 * time.Millisecond)
	assert.Equal(t, []string{"b.json", "filters.yaml"}, got.Load())
}

func TestDebouncer_Stop(t *testing.T) {
	var callCount atomic.Int32

	d := NewDebouncer(50*time.Millisecond, func(_ []string) {
		callCount.Add(1)
	})

	d.Trigger("a.json")
	d.Stop()

	time.Sleep(100 * time.Millisecond)
	assert.Equal(t, int32(0), callCount.Load())
}

// ---------------------------------------------------------------------------
// Delta
// ---------------------------------------------------------------------------

func TestDelta(t *testing.T) {
	prev := &RunResult{Documents: 2, Stats: filter.Stats{Removed: 3, Collapsed: 1}}

	tests := []struct {
		name string
		cur  *RunResult
		want string
	}{
		{"unchanged", &RunResult{Documents: 2, Stats: filter.Stats{Removed: 3, Collapsed: 1}}, ""},
		{"more removed", &RunResult{Documents: 2, Stats: filter.Stats{Removed: 5, Collapsed: 1}}, "removed +2"},
		{
			"several counters",
			&RunResult{Documents: 2, Discarded: 1, Stats: filter.Stats{Removed: 3}},
			"discarded +1, collapsed -1",
		},
		{"nil", nil, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Delta(prev, tt.cur))
		})
	}
}

// ---------------------------------------------------------------------------
// isRelevant
// ---------------------------------------------------------------------------

func TestIsRelevant(t *testing.T) {
	tests := []struct {
		name string
		path string
		op   fsnotify.Op
		want bool
	}{
		{"json write", "page.json", fsnotify.Write, true},
		{"create event", "filters.yaml", fsnotify.Create, true},
		{"remove event", "old.json", fsnotify.Remove, true},
		{"rename event", "renamed.json", fsnotify.Rename, true},
		{"hidden file", ".hidden", fsnotify.Write, false},
		{"swap file", "page.json.swp", fsnotify.Write, false},
		{"backup tilde", "page.json~", fsnotify.Write, false},
		{"emacs hash", "#page.json#", fsnotify.Write, false},
		{"zero op", "page.json", 0, false},
		{"chmod only", "page.json", fsnotify.Chmod, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			event := fsnotify.Event{Name: tt.path, Op: tt.op}
			assert.Equal(t, tt.want, isRelevant(event))
		})
	}
}

// ---------------------------------------------------------------------------
// Options
// ---------------------------------------------------------------------------

func TestDefaultOptions(t *testing.T) {
	opts := DefaultOptions()
	assert.Equal(t, 300*time.Millisecond, opts.Debounce)
	assert.NotNil(t, opts.Logger)
	assert.NotNil(t, opts.Out)
}

func TestOptions_Files(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a.json")

	opts := Options{SettingsFile: a, Documents: []string{a, "-", filepath.Join(dir, "b.json")}}

	files, err := opts.Files()
	require.NoError(t, err)
	assert.Equal(t, []string{a, filepath.Join(dir, "b.json")}, files)
}

// ---------------------------------------------------------------------------
// addFiles
// ---------------------------------------------------------------------------

func TestAddFiles_WatchesParentDirsOnce(t *testing.T) {
	dir := t.TempDir()
	a := writeFile(t, dir, "a.json", "{}")
	b := writeFile(t, dir, "b.json", "{}")

	watcher, err := fsnotify.NewWatcher()
	require.NoError(t, err)
	defer watcher.Close()

	watched, err := addFiles(watcher, []string{a, b})
	require.NoError(t, err)

	assert.Len(t, watched, 2)
	assert.Equal(t, []string{dir}, watcher.WatchList())
}

func TestAddFiles_Errors(t *testing.T) {
	watcher, err := fsnotify.NewWatcher()
	require.NoError(t, err)
	defer watcher.Close()

	_, err = addFiles(watcher, []string{"/nonexistent/dir/12345/page.json"})
	assert.ErrorContains(t, err, "watching file")

	_, err = addFiles(watcher, []string{t.TempDir()})
	assert.ErrorContains(t, err, "is a directory")
}

// ---------------------------------------------------------------------------
// Run (integration)
// ---------------------------------------------------------------------------

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()

	p := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(p, []byte(content), 0o644))

	return p
}

func TestRun_NothingToWatch(t *testing.T) {
	opts := DefaultOptions()
	opts.Out = io.Discard

	err := Run(context.Background(), opts, func(context.Context, []string) (*RunResult, error) {
		return &RunResult{}, nil
	})
	assert.ErrorContains(t, err, "nothing to watch")
}

func TestRun_MissingFile(t *testing.T) {
	opts := DefaultOptions()
	opts.Documents = []string{"/nonexistent/dir/12345/page.json"}
	opts.Out = io.Discard

	err := Run(context.Background(), opts, func(context.Context, []string) (*RunResult, error) {
		return &RunResult{}, nil
	})
	assert.ErrorContains(t, err, "watching file")
}

func TestRun_GracefulShutdown(t *testing.T) {
	dir := t.TempDir()
	doc := writeFile(t, dir, "page.json", "{}")

	ctx, cancel := context.WithCancel(context.Background())

	var runCount atomic.Int32

	opts := DefaultOptions()
	opts.Documents = []string{doc}
	opts.Debounce = 50 * time.Millisecond
	opts.Out = io.Discard

	done := make(chan error, 1)
	go func() {
		done <- Run(ctx, opts, func(_ context.Context, changed []string) (*RunResult, error) {
			runCount.Add(1)
			assert.Nil(t, changed)
			return &RunResult{Documents: 1}, nil
		})
	}()

	time.Sleep(200 * time.Millisecond)
	assert.Equal(t, int32(1), runCount.Load())

	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("watcher did not shut down in time")
	}
}

func TestRun_FileChangeTriggersRun(t *testing.T) {
	dir := t.TempDir()
	settings := writeFile(t, dir, "filters.yaml", "filterData: {}\n")
	doc := writeFile(t, dir, "page.json", "{}")
	writeFile(t, dir, "unrelated.json", "{}")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var (
		mu      sync.Mutex
		changes [][]string
	)

	opts := DefaultOptions()
	opts.SettingsFile = settings
	opts.Documents = []string{doc}
	opts.Debounce = 50 * time.Millisecond
	opts.Out = io.Discard

	done := make(chan error, 1)
	go func() {
		done <- Run(ctx, opts, func(_ context.Context, changed []string) (*RunResult, error) {
			mu.Lock()
			changes = append(changes, changed)
			mu.Unlock()

			return &RunResult{Documents: 1}, nil
		})
	}()

	time.Sleep(200 * time.Millisecond)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "unrelated.json"), []byte("[]"), 0o644))
	require.NoError(t, os.WriteFile(settings, []byte("filterData: {title: [x]}\n"), 0o644))

	time.Sleep(400 * time.Millisecond)

	cancel()
	<-done

	mu.Lock()
	defer mu.Unlock()

	require.GreaterOrEqual(t, len(changes), 2, "file change should trigger a run")
	assert.Nil(t, changes[0])

	for _, c := range changes[1:] {
		assert.Equal(t, []string{settings}, c)
	}
}

func TestRun_RunFuncErrorKeepsWatching(t *testing.T) {
	dir := t.TempDir()
	doc := writeFile(t, dir, "page.json", "{}")

	ctx, cancel := context.WithCancel(context.Background())

	var out bytes.Buffer
	var mu sync.Mutex

	opts := DefaultOptions()
	opts.Documents = []string{doc}
	opts.Debounce = 50 * time.Millisecond
	opts.Out = &lockedWriter{w: &out, mu: &mu}

	done := make(chan error, 1)
	go func() {
		done <- Run(ctx, opts, func(context.Context, []string) (*RunResult, error) {
			return nil, fmt.Errorf("malformed document")
		})
	}()

	time.Sleep(200 * time.Millisecond)
	cancel()

	require.NoError(t, <-done)

	mu.Lock()
	defer mu.Unlock()
	assert.Contains(t, out.String(), "(initial) → ERROR: malformed document")
}

func TestRunner_ReportsChanges(t *testing.T) {
	var out bytes.Buffer

	results := []*RunResult{
		{Documents: 1, Stats: filter.Stats{Removed: 1}},
		{Documents: 1, Stats: filter.Stats{Removed: 4}},
	}

	r := &runner{
		opts: Options{Out: &out},
		runFn: func(context.Context, []string) (*RunResult, error) {
			res := results[0]
			results = results[1:]

			return res, nil
		},
	}

	r.run(context.Background(), nil)
	r.run(context.Background(), []string{"/tmp/filters.yaml"})

	assert.Contains(t, out.String(), "(initial) → OK (1 documents, 0 discarded, 1 removed, 0 collapsed)")
	assert.Contains(t, out.String(), "filters.yaml → OK (1 documents, 0 discarded, 4 removed, 0 collapsed)")
	assert.Contains(t, out.String(), "changes: removed +3")
}

type lockedWriter struct {
	w  io.Writer
	mu *sync.Mutex
}

func (l *lockedWriter) Write(p []byte) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	return l.w.Write(p)
}
