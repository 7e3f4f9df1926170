package filter

import (
	"context"
	"log/slog"
)

// Stats counts what a pass changed.
type Stats struct {
	// Matched counts rule matches, whether or not they led to a deletion.
	Matched int
	// Deleted counts tagged attributes deleted on match.
	Deleted int
	// Removed counts sequence elements dropped because their subtree was filtered.
	Removed int
	// Collapsed counts allow-listed containers deleted by cascade.
	Collapsed int
}

// Changed reports whether the pass modified the document through deletion.
func (s Stats) Changed() bool {
	return s.Deleted+s.Removed+s.Collapsed > 0
}

// Add returns the sum of s and o.
func (s Stats) Add(o Stats) Stats {
	return Stats{
		Matched:   s.Matched + o.Matched,
		Deleted:   s.Deleted + o.Deleted,
		Removed:   s.Removed + o.Removed,
		Collapsed: s.Collapsed + o.Collapsed,
	}
}

// Session is the state of one filtering pass. It is created by Engine.Run,
// consumed once, and handed to side effects and post actions.
type Session struct {
	id      string
	ctx     context.Context
	engine  *Engine
	root    interface{}
	depth   int
	aborted bool
	reason  string
	err     error
	stats   Stats
	logger  *slog.Logger
}

// ID returns the session's unique identifier.
func (s *Session) ID() string { return s.id }

// Context returns the context the pass runs under.
func (s *Session) Context() context.Context { return s.ctx }

// Logger returns the session-scoped logger.
func (s *Session) Logger() *slog.Logger { return s.logger }

// Stats returns the pass counters.
func (s *Session) Stats() Stats { return s.stats }

// Document returns the current document, or nil once the pass was aborted.
// A sequence root reflects the elements removed so far.
func (s *Session) Document() interface{} {
	if s.aborted {
		return nil
	}

	return s.root
}

// Abort cancels the pass. Traversal unwinds immediately, remaining post
// actions are skipped and the document is discarded. Abort is a control
// signal, not an error; it does not affect other sessions.
func (s *Session) Abort(reason string) {
	if s.aborted {
		return
	}

	s.aborted = true
	s.reason = reason
	s.root = nil
}

// Discarded reports whether the pass was aborted.
func (s *Session) Discarded() bool { return s.aborted }

// Reason returns the reason given to Abort.
func (s *Session) Reason() string { return s.reason }
