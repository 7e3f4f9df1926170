package watch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"slices"
	"strings"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/kushwahaPrashant24/blocktube/internal/filter"
)

// RunFunc is called for the initial run and after every debounced burst of
// changes. changed is nil for the initial run.
type RunFunc func(ctx context.Context, changed []string) (*RunResult, error)

// RunResult summarizes one filter run over all watched documents.
type RunResult struct {
	Documents int
	Discarded int
	Stats     filter.Stats
}

// Options configures the watch behaviour.
type Options struct {
	// SettingsFile is the filter settings file. Optional.
	SettingsFile string

	// Documents are the input documents to re-filter.
	Documents []string

	// Debounce is the quiet period before triggering a run.
	Debounce time.Duration

	// Logger is used for structured logging.
	Logger *slog.Logger

	// Out receives the user-facing status lines.
	Out io.Writer
}

// DefaultOptions returns default watch options.
func DefaultOptions() Options {
	return Options{
		Debounce: 300 * time.Millisecond,
		Logger:   slog.Default(),
		Out:      os.Stderr,
	}
}

// Files returns the absolute paths of all watched files, sorted and
// deduplicated.
func (o Options) Files() ([]string, error) {
	files := make([]string, 0, len(o.Documents)+1)
	if o.SettingsFile != "" {
		files = append(files, o.SettingsFile)
	}

	files = append(files, o.Documents...)

	abs := make([]string, 0, len(files))
	for _, f := range files {
		if f == "-" {
			continue
		}

		p, err := filepath.Abs(f)
		if err != nil {
			return nil, fmt.Errorf("resolving %q: %w", f, err)
		}

		abs = append(abs, p)
	}

	slices.Sort(abs)

	return slices.Compact(abs), nil
}

// Run starts the file watcher and blocks until the context is cancelled
// or a SIGINT/SIGTERM signal is received.
func Run(ctx context.Context, opts Options, runFn RunFunc) error {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	if opts.Out == nil {
		opts.Out = io.Discard
	}

	files, err := opts.Files()
	if err != nil {
		return err
	}

	if len(files) == 0 {
		return errors.New("nothing to watch: no settings file or documents given")
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}
	defer watcher.Close()

	watched, err := addFiles(watcher, files)
	if err != nil {
		return err
	}

	sigCtx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	fmt.Fprintf(opts.Out, "watching %d file(s) (debounce=%s)\n", len(files), opts.Debounce)

	r := &runner{opts: opts, runFn: runFn}
	r.run(sigCtx, nil)

	debouncer := NewDebouncer(opts.Debounce, func(paths []string) {
		r.run(sigCtx, paths)
	})
	defer debouncer.Stop()

	for {
		select {
		case <-sigCtx.Done():
			fmt.Fprintln(opts.Out, "\nshutting down watcher")
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}

			if !isRelevant(event) {
				continue
			}

			if _, ok := watched[filepath.Clean(event.Name)]; !ok {
				continue
			}

			opts.Logger.Debug("file changed",
				slog.String("path", event.Name),
				slog.String("op", event.Op.String()))

			debouncer.Trigger(event.Name)

		case watchErr, ok := <-watcher.Errors:
			if !ok {
				return nil
			}

			opts.Logger.Error("watcher error", slog.String("error", watchErr.Error()))
		}
	}
}

// addFiles watches the parent directory of every file, so that editors
// replacing a file by rename are still observed. It returns the set of
// watched file paths.
func addFiles(watcher *fsnotify.Watcher, files []string) (map[string]struct{}, error) {
	watched := make(map[string]struct{}, len(files))
	dirs := make(map[string]struct{})

	for _, f := range files {
		info, err := os.Stat(f)
		if err != nil {
			return nil, fmt.Errorf("watching file %q: %w", f, err)
		}

		if info.IsDir() {
			return nil, fmt.Errorf("watching file %q: is a directory", f)
		}

		watched[f] = struct{}{}

		dir := filepath.Dir(f)
		if _, ok := dirs[dir]; ok {
			continue
		}

		if err := watcher.Add(dir); err != nil {
			return nil, fmt.Errorf("watching directory %q: %w", dir, err)
		}

		dirs[dir] = struct{}{}
	}

	return watched, nil
}

type runner struct {
	opts  Options
	runFn RunFunc
	last  *RunResult
}

// run executes a single filter run and prints the status line.
func (r *runner) run(ctx context.Context, changed []string) {
	now := time.Now().Format("15:04:05")
	trigger := describeTrigger(changed)

	result, err := r.runFn(ctx, changed)
	if err != nil {
		fmt.Fprintf(r.opts.Out, "[%s] %s → ERROR: %v\n", now, trigger, err)
		return
	}

	fmt.Fprintf(r.opts.Out, "[%s] %s → OK (%d documents, %d discarded, %d removed, %d collapsed)\n",
		now, trigger, result.Documents, result.Discarded,
		result.Stats.Deleted+result.Stats.Removed, result.Stats.Collapsed)

	if r.last != nil {
		if summary := Delta(r.last, result); summary != "" {
			fmt.Fprintf(r.opts.Out, "  changes: %s\n", summary)
		}
	}

	r.last = result
}

func describeTrigger(changed []string) string {
	if len(changed) == 0 {
		return "(initial)"
	}

	names := make([]string, len(changed))
	for i, p := range changed {
		names[i] = filepath.Base(p)
	}

	return strings.Join(names, ", ")
}

// isRelevant filters out events that cannot change file content, and
// editor temporary files.
func isRelevant(event fsnotify.Event) bool {
	if event.Op == 0 {
		return false
	}

	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) &&
		!event.Has(fsnotify.Remove) && !event.Has(fsnotify.Rename) {
		return false
	}

	name := filepath.Base(event.Name)

	if strings.HasPrefix(name, ".") || strings.HasSuffix(name, "~") ||
		strings.HasSuffix(name, ".swp") || strings.HasPrefix(name, "#") {
		return false
	}

	return true
}
