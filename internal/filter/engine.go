package filter

import (
	"context"
	"errors"
	"io"
	"log/slog"

	"github.com/google/uuid"

	"github.com/kushwahaPrashant24/blocktube/internal/criteria"
)

// ErrNilCriteria is returned by Run when the engine was built without criteria.
var ErrNilCriteria = errors.New("filter: engine has no criteria")

// Engine holds the read-only inputs of a filtering pass: the rule set, the
// compiled criteria and the cascade allow-list. An Engine is safe for
// concurrent use as long as every Run operates on its own document.
type Engine struct {
	rules    RuleSet
	tags     []string
	criteria *criteria.Criteria
	cascade  map[string]struct{}
	logger   *slog.Logger
}

// Option configures an Engine.
type Option func(*Engine)

// WithCascade adds container attribute names that are deleted from their
// parent when something below them was filtered.
func WithCascade(names ...string) Option {
	return func(e *Engine) {
		for _, n := range names {
			e.cascade[n] = struct{}{}
		}
	}
}

// WithLogger sets the logger used for pass diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// NewEngine creates an engine for rules and c.
func NewEngine(rules RuleSet, c *criteria.Criteria, opts ...Option) *Engine {
	e := &Engine{
		rules:    rules,
		tags:     rules.Tags(),
		criteria: c,
		cascade:  make(map[string]struct{}),
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
	}

	for _, opt := range opts {
		opt(e)
	}

	return e
}

// Rules returns the engine's rule set.
func (e *Engine) Rules() RuleSet { return e.rules }

// Cascades reports whether name is on the cascade allow-list.
func (e *Engine) Cascades(name string) bool {
	_, ok := e.cascade[name]
	return ok
}

// Run filters doc in place and then runs post in order. When the criteria
// constrain nothing the document is returned untouched without traversal.
// The returned session exposes the filtered document, or reports it as
// discarded when a side effect or post action aborted the pass. The only
// errors are ErrNilCriteria and the context's error on cancellation.
func (e *Engine) Run(ctx context.Context, doc interface{}, post ...PostAction) (*Session, error) {
	if e.criteria == nil {
		return nil, ErrNilCriteria
	}

	s := &Session{
		id:     uuid.NewString(),
		ctx:    ctx,
		engine: e,
		root:   doc,
	}
	s.logger = e.logger.With(slog.String("session", s.id))

	if e.criteria.IsEmpty() || doc == nil {
		s.logger.Debug("no active criteria, pass skipped")
		return s, nil
	}

	root, _ := s.filter(doc)
	if s.err != nil {
		return nil, s.err
	}

	if s.aborted {
		s.logger.Info("pass aborted, document discarded", slog.String("reason", s.reason))
		return s, nil
	}

	s.root = root

	for _, action := range post {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		action(s)

		if s.aborted {
			s.logger.Info("post action aborted pass, document discarded", slog.String("reason", s.reason))
			return s, nil
		}
	}

	s.logger.Debug("pass complete",
		slog.Int("matched", s.stats.Matched),
		slog.Int("deleted", s.stats.Deleted),
		slog.Int("removed", s.stats.Removed),
		slog.Int("collapsed", s.stats.Collapsed),
	)

	return s, nil
}
