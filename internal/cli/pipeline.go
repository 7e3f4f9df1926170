package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"os"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/kushwahaPrashant24/blocktube/internal/config"
	"github.com/kushwahaPrashant24/blocktube/internal/filter"
	"github.com/kushwahaPrashant24/blocktube/internal/logging"
	"github.com/kushwahaPrashant24/blocktube/internal/maputil"
	"github.com/kushwahaPrashant24/blocktube/internal/output"
	"github.com/kushwahaPrashant24/blocktube/internal/profile"
	"github.com/kushwahaPrashant24/blocktube/internal/tree"
)

const stdinName = "-"

// pipeline filters documents with one loaded settings file. Every document
// gets its own Profile so that page state never leaks between documents;
// the compiled criteria are shared.
type pipeline struct {
	cfg          profile.Config
	endpoint     string
	settingsPath string
	logger       *slog.Logger
}

// document is one filtered input.
type document struct {
	Path     string
	Original interface{}
	Result   profile.Result
}

// loadPipeline resolves and loads the filter settings. Without a settings
// file every document passes through unchanged.
func loadPipeline(ctx context.Context, endpoint string) (*pipeline, error) {
	if err := checkEndpoint(endpoint); err != nil {
		return nil, &ExitError{Code: ExitUsage, Err: err}
	}

	cfg := config.FromContext(ctx)
	logger := logging.FromContext(ctx)

	settings := &config.Settings{}

	path := cfg.SettingsPath()
	if path == "" {
		logger.Warn("no filter settings file found, documents pass through unchanged")
	} else {
		loaded, err := config.LoadSettings(path)
		if err != nil {
			return nil, &ExitError{Code: ExitUsage, Err: err}
		}

		settings = loaded
		logger.Debug("loaded filter settings", slog.String("path", path))
	}

	pcfg, _ := settings.ProfileConfig(logger)

	// Strip paths only fail to compile here; catch that once up front.
	if _, err := profile.New(pcfg); err != nil {
		return nil, &ExitError{Code: ExitUsage, Err: err}
	}

	return &pipeline{
		cfg:          pcfg,
		endpoint:     endpoint,
		settingsPath: path,
		logger:       logger,
	}, nil
}

// checkEndpoint accepts a page document name or an absolute request path.
func checkEndpoint(endpoint string) error {
	for _, name := range profile.Globals() {
		if endpoint == name {
			return nil
		}
	}

	u, err := url.Parse(endpoint)
	if err != nil {
		return fmt.Errorf("invalid endpoint %q: %w", endpoint, err)
	}

	if !strings.HasPrefix(u.Path, "/") {
		return fmt.Errorf("invalid endpoint %q: want one of %s or a path starting with /",
			endpoint, strings.Join(profile.Globals(), ", "))
	}

	return nil
}

// filterFile reads and filters one document with a Profile of its own.
// keepOriginal retains a deep copy of the input for diffing.
func (p *pipeline) filterFile(ctx context.Context, path string, stdin io.Reader, keepOriginal bool) (*document, error) {
	prof, err := profile.New(p.cfg)
	if err != nil {
		return nil, err
	}

	return p.filterWith(ctx, prof, p.endpoint, path, stdin, keepOriginal)
}

func (p *pipeline) filterWith(ctx context.Context, prof *profile.Profile, endpoint, path string, stdin io.Reader, keepOriginal bool) (*document, error) {
	doc, err := readDocument(path, stdin)
	if err != nil {
		return nil, err
	}

	d := &document{Path: path}
	if keepOriginal {
		d.Original = maputil.DeepCopy(doc)
	}

	res, err := prof.Filter(ctx, endpoint, doc)
	if err != nil {
		return nil, fmt.Errorf("filtering %s: %w", displayName(path), err)
	}

	d.Result = res

	p.logger.Debug("filtered document",
		slog.String("path", displayName(path)),
		slog.String("endpoint", endpoint),
		slog.Bool("discarded", res.Discarded),
		slog.Int("deleted", res.Stats.Deleted),
		slog.Int("removed", res.Stats.Removed),
		slog.Int("collapsed", res.Stats.Collapsed),
	)

	return d, nil
}

// pageEntry pairs a document path with the page document name or request
// path it is filtered as.
type pageEntry struct {
	endpoint string
	path     string
}

// parsePageEntries parses ENDPOINT=FILE values. The last "=" separates the
// file, so request paths may carry query parameters.
func parsePageEntries(values []string) ([]pageEntry, error) {
	entries := make([]pageEntry, 0, len(values))

	for _, v := range values {
		i := strings.LastIndex(v, "=")
		if i <= 0 || i == len(v)-1 {
			return nil, fmt.Errorf("invalid page document %q: want ENDPOINT=FILE", v)
		}

		endpoint, path := v[:i], v[i+1:]

		if err := checkEndpoint(endpoint); err != nil {
			return nil, err
		}

		entries = append(entries, pageEntry{endpoint: endpoint, path: path})
	}

	return entries, nil
}

// filterPage filters the documents of one page view in order with a single
// Profile, so a blocked player configuration empties the initial data that
// follows it.
func (p *pipeline) filterPage(ctx context.Context, entries []pageEntry, stdin io.Reader) ([]*document, error) {
	paths := make([]string, len(entries))
	for i, e := range entries {
		paths[i] = e.path
	}

	if n := countStdin(paths); n > 1 {
		return nil, &ExitError{Code: ExitUsage, Err: errors.New("standard input can only be read once")}
	}

	prof, err := profile.New(p.cfg)
	if err != nil {
		return nil, &ExitError{Code: ExitGeneral, Err: err}
	}

	docs := make([]*document, 0, len(entries))

	for _, e := range entries {
		d, err := p.filterWith(ctx, prof, e.endpoint, e.path, stdin, false)
		if err != nil {
			return nil, &ExitError{Code: ExitGeneral, Err: err}
		}

		docs = append(docs, d)
	}

	return docs, nil
}

// filterFiles filters paths with at most concurrency documents in flight.
// Results keep the order of paths.
func (p *pipeline) filterFiles(ctx context.Context, paths []string, stdin io.Reader, concurrency int) ([]*document, error) {
	if n := countStdin(paths); n > 1 {
		return nil, &ExitError{Code: ExitUsage, Err: errors.New("standard input can only be read once")}
	}

	if concurrency < 1 {
		concurrency = 1
	}

	docs := make([]*document, len(paths))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)

	for i, path := range paths {
		g.Go(func() error {
			d, err := p.filterFile(gctx, path, stdin, false)
			if err != nil {
				return err
			}

			docs[i] = d

			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, &ExitError{Code: ExitGeneral, Err: err}
	}

	return docs, nil
}

func countStdin(paths []string) int {
	n := 0

	for _, p := range paths {
		if p == stdinName {
			n++
		}
	}

	return n
}

func readDocument(path string, stdin io.Reader) (interface{}, error) {
	if path == stdinName {
		doc, err := tree.Decode(stdin)
		if err != nil {
			return nil, fmt.Errorf("reading standard input: %w", err)
		}

		return doc, nil
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("reading document: %w", err)
	}
	defer f.Close()

	doc, err := tree.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	return doc, nil
}

func displayName(path string) string {
	if path == stdinName {
		return "<stdin>"
	}

	return path
}

// summary totals a batch of filtered documents.
type summary struct {
	Documents int
	Discarded int
	Stats     filter.Stats
}

// writeDocuments encodes every surviving document to its destination and
// reports discarded ones on errOut.
func writeDocuments(docs []*document, opts *outputOptions, out, errOut io.Writer, logger *slog.Logger) (summary, error) {
	registry := output.DefaultRegistry()

	enc, err := registry.Encoder(opts.format)
	if err != nil {
		return summary{}, &ExitError{Code: ExitUsage, Err: err}
	}

	toDir := len(docs) > 1 && opts.output != ""
	if !toDir && opts.output != "" {
		if info, statErr := os.Stat(opts.output); statErr == nil && info.IsDir() {
			toDir = true
		}
	}

	var sum summary

	for _, d := range docs {
		sum.Documents++
		sum.Stats = sum.Stats.Add(d.Result.Stats)

		report(errOut, d)

		if d.Result.Discarded {
			sum.Discarded++
			continue
		}

		data, err := enc(d.Result.Document)
		if err != nil {
			return sum, &ExitError{Code: ExitGeneral, Err: fmt.Errorf("encoding %s: %w", displayName(d.Path), err)}
		}

		target := opts.output
		if toDir {
			input := d.Path
			if input == stdinName {
				input = "stdin"
			}

			target = registry.TargetPath(opts.output, input, opts.format)
		}

		w := output.NewWriter(target, out, output.WithLogger(logger))
		if err := w.Write(data); err != nil {
			return sum, &ExitError{Code: ExitGeneral, Err: err}
		}
	}

	return sum, nil
}

// report prints what happened to the viewer's page for d.
func report(w io.Writer, d *document) {
	name := displayName(d.Path)
	res := d.Result

	switch {
	case res.Discarded:
		_, _ = fmt.Fprintf(w, "%s: discarded (%s)\n", name, res.Reason)
	case res.Redirect != "":
		_, _ = fmt.Fprintf(w, "%s: redirect to %s\n", name, res.Redirect)
	}

	if res.TitleCensored {
		_, _ = fmt.Fprintf(w, "%s: page title censored\n", name)
	}
}

func discardError(sum summary) error {
	return &ExitError{
		Code: ExitDiscarded,
		Err:  fmt.Errorf("%d of %d document(s) discarded", sum.Discarded, sum.Documents),
	}
}
