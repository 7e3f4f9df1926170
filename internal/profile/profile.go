// Package profile binds the generic tree filter to the video host's
// documents. It owns the rule tables for each response kind, the cascade
// allow-list, the side effects and post actions that rewrite blocked pages,
// and the routing from an endpoint to the rules that apply to it.
package profile

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/kushwahaPrashant24/blocktube/internal/criteria"
	"github.com/kushwahaPrashant24/blocktube/internal/filter"
)

// ErrUnknownKind is returned for a rule table kind that does not exist.
var ErrUnknownKind = errors.New("unknown rule table kind")

// Config collects everything a Profile is built from.
type Config struct {
	// Criteria are the compiled user criteria shared by every engine.
	Criteria *criteria.Criteria
	// Options shape the host side effects.
	Options Options
	// Cascade extends CascadeAllowList.
	Cascade []string
	// Custom rules are overlaid on every rule table.
	Custom filter.RuleSet
	// Strip lists JSONPath expressions deleted from every surviving document.
	Strip []string
	// Logger receives pass diagnostics. Nil discards.
	Logger *slog.Logger
}

// Profile is one page view: a Host plus an engine per rule table kind.
type Profile struct {
	host    *Host
	engines map[Kind]*filter.Engine
	strip   filter.PostAction
	logger  *slog.Logger
}

// New builds a Profile from cfg.
func New(cfg Config) (*Profile, error) {
	if cfg.Criteria == nil {
		return nil, filter.ErrNilCriteria
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	p := &Profile{
		host:    NewHost(cfg.Options),
		engines: make(map[Kind]*filter.Engine, len(Kinds)),
		logger:  logger,
	}

	if len(cfg.Strip) > 0 {
		strip, err := StripPaths(cfg.Strip...)
		if err != nil {
			return nil, fmt.Errorf("compiling strip paths: %w", err)
		}

		p.strip = strip
	}

	cascade := make([]string, 0, len(CascadeAllowList)+len(cfg.Cascade))
	cascade = append(cascade, CascadeAllowList...)
	cascade = append(cascade, cfg.Cascade...)

	for _, kind := range Kinds {
		rules, _ := p.host.Rules(kind)
		if len(cfg.Custom) > 0 {
			rules = rules.Merge(cfg.Custom)
		}

		p.engines[kind] = filter.NewEngine(rules, cfg.Criteria,
			filter.WithCascade(cascade...),
			filter.WithLogger(logger.With(slog.String("rules", string(kind)))),
		)
	}

	return p, nil
}

// Host returns the page state of the profile.
func (p *Profile) Host() *Host { return p.host }

// Engine returns the engine for kind.
func (p *Profile) Engine(kind Kind) (*filter.Engine, bool) {
	e, ok := p.engines[kind]
	return e, ok
}

// Run filters doc with the rule table of kind followed by post and the
// configured strip paths.
func (p *Profile) Run(ctx context.Context, kind Kind, doc interface{}, post ...filter.PostAction) (*filter.Session, error) {
	e, ok := p.engines[kind]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownKind, kind)
	}

	if p.strip != nil {
		post = append(post[:len(post):len(post)], p.strip)
	}

	return e.Run(ctx, doc, post...)
}
