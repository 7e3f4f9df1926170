// Package blocktube provides a public Go API for filtering blocked content
// out of video platform page data.
//
// This package exposes the blocktube filter pipeline as a library, allowing
// programmatic use without the CLI.
//
// Basic usage:
//
//	result, err := blocktube.FilterJSON(ctx, data,
//	    blocktube.WithSettingsFile("blocktube-filters.yaml"),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if !result.Discarded {
//	    fmt.Println(string(result.JSON))
//	}
//
// Filtering the documents of one page view together, so that a blocked
// player configuration empties the watch page that follows it:
//
//	results, err := blocktube.FilterPage(ctx, []blocktube.PageDocument{
//	    {Endpoint: "ytplayer.config", Document: playerConfig},
//	    {Endpoint: "ytInitialData", Document: initialData},
//	}, blocktube.WithSettingsFile("blocktube-filters.yaml"))
//
// Filtering an ajax response instead of the initial page data:
//
//	result, err := blocktube.Filter(ctx, doc,
//	    blocktube.WithSettings(settingsYAML),
//	    blocktube.WithEndpoint("/browse_ajax?ctoken=abc"),
//	)
package blocktube

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/kushwahaPrashant24/blocktube/internal/config"
	"github.com/kushwahaPrashant24/blocktube/internal/logging"
	"github.com/kushwahaPrashant24/blocktube/internal/maputil"
	"github.com/kushwahaPrashant24/blocktube/internal/output"
	"github.com/kushwahaPrashant24/blocktube/internal/profile"
	"github.com/kushwahaPrashant24/blocktube/internal/tree"
)

// DefaultEndpoint is the page document filtered when no endpoint is set.
const DefaultEndpoint = profile.GlobalInitialData

// Option configures filtering.
// Use the With* functions to create Options.
type Option func(*options)

type options struct {
	settingsFile string
	settingsData []byte
	endpoint     string
	logger       *slog.Logger
	copy         bool
	strict       bool
	concurrency  int
}

// WithSettingsFile loads the filter settings from a YAML or JSON file.
func WithSettingsFile(path string) Option { return func(o *options) { o.settingsFile = path } }

// WithSettings uses filter settings given as YAML or JSON bytes.
func WithSettings(data []byte) Option { return func(o *options) { o.settingsData = data } }

// WithEndpoint selects the rules: a page document name such as
// "ytInitialPlayerResponse", or the request path of an ajax response.
func WithEndpoint(endpoint string) Option { return func(o *options) { o.endpoint = endpoint } }

// WithLogger sets the logger. Without it nothing is logged.
func WithLogger(logger *slog.Logger) Option { return func(o *options) { o.logger = logger } }

// WithCopy filters a deep copy, leaving the caller's document untouched.
func WithCopy() Option { return func(o *options) { o.copy = true } }

// WithStrict fails when a settings pattern does not compile instead of
// skipping it.
func WithStrict() Option { return func(o *options) { o.strict = true } }

// WithConcurrency bounds the documents FilterAll filters in parallel
// (default: 4).
func WithConcurrency(n int) Option { return func(o *options) { o.concurrency = n } }

// Result holds the outcome of filtering one document.
type Result struct {
	// Document is the filtered document; nil when Discarded.
	Document interface{}

	// JSON is the filtered document encoded with sorted keys. Set by
	// FilterJSON only.
	JSON []byte

	// Skipped is set when the endpoint is not filtered at all.
	Skipped bool

	// Discarded is set when the whole document was dropped; Reason says why.
	Discarded bool
	Reason    string

	// Redirect is where a viewer of the page would be sent instead.
	Redirect string

	// TitleCensored is set when the page title must be hidden.
	TitleCensored bool

	// Counters of the filter passes.
	Matched   int
	Deleted   int
	Removed   int
	Collapsed int
}

// Changed reports whether anything was removed from the document.
func (r *Result) Changed() bool {
	return r.Discarded || r.Deleted+r.Removed+r.Collapsed > 0
}

// filterer holds the compiled settings shared by every document.
type filterer struct {
	cfg      profile.Config
	endpoint string
	copy     bool
}

func newFilterer(opts ...Option) (*filterer, *options, error) {
	o := &options{
		endpoint:    DefaultEndpoint,
		concurrency: 4,
	}

	for _, opt := range opts {
		opt(o)
	}

	if o.logger == nil {
		o.logger = logging.Discard()
	}

	settings, err := loadSettings(o)
	if err != nil {
		return nil, nil, err
	}

	cfg, patternErrs := settings.ProfileConfig(o.logger)
	if o.strict && len(patternErrs) > 0 {
		errs := make([]error, len(patternErrs))
		for i, e := range patternErrs {
			errs[i] = e
		}

		return nil, nil, fmt.Errorf("compiling patterns: %w", errors.Join(errs...))
	}

	if _, err := profile.New(cfg); err != nil {
		return nil, nil, err
	}

	return &filterer{cfg: cfg, endpoint: o.endpoint, copy: o.copy}, o, nil
}

func loadSettings(o *options) (*config.Settings, error) {
	switch {
	case o.settingsFile != "" && o.settingsData != nil:
		return nil, errors.New("settings file and settings data are mutually exclusive")
	case o.settingsFile != "":
		return config.LoadSettings(o.settingsFile)
	case o.settingsData != nil:
		return config.ParseSettings(o.settingsData)
	default:
		return &config.Settings{}, nil
	}
}

func (f *filterer) filter(ctx context.Context, doc interface{}) (*Result, error) {
	if f.copy {
		doc = maputil.DeepCopy(doc)
	}

	p, err := profile.New(f.cfg)
	if err != nil {
		return nil, err
	}

	res, err := p.Filter(ctx, f.endpoint, doc)
	if err != nil {
		return nil, err
	}

	return newResult(res), nil
}

func newResult(res profile.Result) *Result {
	return &Result{
		Document:      res.Document,
		Skipped:       res.Skipped,
		Discarded:     res.Discarded,
		Reason:        res.Reason,
		Redirect:      res.Redirect,
		TitleCensored: res.TitleCensored,
		Matched:       res.Stats.Matched,
		Deleted:       res.Stats.Deleted,
		Removed:       res.Stats.Removed,
		Collapsed:     res.Stats.Collapsed,
	}
}

// Filter filters a decoded JSON document: maps, slices and scalars as
// produced by encoding/json or ojg. The document is modified in place
// unless WithCopy is given; always use Result.Document afterwards.
func Filter(ctx context.Context, doc interface{}, opts ...Option) (*Result, error) {
	f, _, err := newFilterer(opts...)
	if err != nil {
		return nil, err
	}

	return f.filter(ctx, doc)
}

// FilterJSON decodes data, filters it and encodes the surviving document
// into Result.JSON.
func FilterJSON(ctx context.Context, data []byte, opts ...Option) (*Result, error) {
	doc, err := tree.DecodeBytes(data)
	if err != nil {
		return nil, err
	}

	res, err := Filter(ctx, doc, opts...)
	if err != nil {
		return nil, err
	}

	if res.Discarded {
		return res, nil
	}

	res.JSON, err = output.EncodeJSON(res.Document)
	if err != nil {
		return nil, fmt.Errorf("encoding filtered document: %w", err)
	}

	return res, nil
}

// FilterAll filters independent documents concurrently with one set of
// compiled settings. Results keep the order of docs; the first error
// cancels the remaining work.
func FilterAll(ctx context.Context, docs []interface{}, opts ...Option) ([]*Result, error) {
	f, o, err := newFilterer(opts...)
	if err != nil {
		return nil, err
	}

	results := make([]*Result, len(docs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(o.concurrency, 1))

	for i, doc := range docs {
		g.Go(func() error {
			res, err := f.filter(gctx, doc)
			if err != nil {
				return fmt.Errorf("document %d: %w", i, err)
			}

			results[i] = res

			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return results, nil
}

// PageDocument is one document of a page view. Endpoint names it like
// WithEndpoint does; empty means DefaultEndpoint.
type PageDocument struct {
	Endpoint string
	Document interface{}
}

// FilterPage filters the documents of one page view in order, sharing the
// page state between them: a player document that blocks the video empties
// the watch page of a later ytInitialData. WithEndpoint and WithConcurrency
// are ignored.
func FilterPage(ctx context.Context, docs []PageDocument, opts ...Option) ([]*Result, error) {
	f, _, err := newFilterer(opts...)
	if err != nil {
		return nil, err
	}

	p, err := profile.New(f.cfg)
	if err != nil {
		return nil, err
	}

	page := make([]profile.PageDocument, len(docs))
	for i, d := range docs {
		target := d.Endpoint
		if target == "" {
			target = DefaultEndpoint
		}

		doc := d.Document
		if f.copy {
			doc = maputil.DeepCopy(doc)
		}

		page[i] = profile.PageDocument{Target: target, Document: doc}
	}

	res, err := p.FilterPage(ctx, page)
	if err != nil {
		return nil, err
	}

	results := make([]*Result, len(res))
	for i, r := range res {
		results[i] = newResult(r)
	}

	return results, nil
}
