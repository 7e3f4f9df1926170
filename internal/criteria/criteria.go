// Package criteria holds compiled filter criteria and evaluates them against
// candidate sub-objects of a document.
//
// Text attributes (video and channel identifiers, channel names, titles,
// comments) carry compiled patterns; the duration attribute carries a lower
// and an upper bound in seconds. A candidate matches when any single
// attribute matches.
package criteria

import (
	"github.com/kushwahaPrashant24/blocktube/internal/tree"
)

// Attribute names understood by the rule tables.
const (
	VideoID     = "videoId"
	ChannelID   = "channelId"
	ChannelName = "channelName"
	Title       = "title"
	Comment     = "comment"
	Duration    = "vidLength"
)

// TextAttributes lists the attributes matched with patterns.
var TextAttributes = []string{VideoID, ChannelID, ChannelName, Title, Comment}

// Bounds is the two-slot duration bound. A nil slot is unset.
type Bounds struct {
	Min *int
	Max *int
}

// IsSet reports whether at least one slot is set.
func (b Bounds) IsSet() bool {
	return b.Min != nil || b.Max != nil
}

// Excludes reports whether a parsed duration falls outside the bounds.
// Non-positive durations are never comparable.
func (b Bounds) Excludes(seconds int) bool {
	if seconds <= 0 {
		return false
	}

	return (b.Min != nil && seconds < *b.Min) || (b.Max != nil && seconds > *b.Max)
}

// Criteria is an immutable set of compiled criteria. It is safe to share
// between concurrent passes; configuration updates build a new value.
type Criteria struct {
	// Patterns maps a text attribute to its compiled patterns.
	Patterns map[string][]*Pattern

	// Duration bounds the vidLength attribute.
	Duration Bounds
}

// IsEmpty reports whether c constrains nothing. A nil Criteria is empty.
func (c *Criteria) IsEmpty() bool {
	if c == nil {
		return true
	}

	if c.Duration.IsSet() {
		return false
	}

	for _, patterns := range c.Patterns {
		if len(patterns) > 0 {
			return false
		}
	}

	return true
}

// Active reports whether attr has a non-empty entry.
func (c *Criteria) Active(attr string) bool {
	if c == nil {
		return false
	}

	if attr == Duration {
		return c.Duration.IsSet()
	}

	return len(c.Patterns[attr]) > 0
}

// Match evaluates a rule's property map against candidate. Each property
// names an attribute and the path to its value inside candidate. Attributes
// without criteria and values that do not resolve are skipped.
func (c *Criteria) Match(props map[string]tree.PathSpec, candidate interface{}) bool {
	for attr, spec := range props {
		if c.matchAttribute(attr, spec, candidate) {
			return true
		}
	}

	return false
}

func (c *Criteria) matchAttribute(attr string, spec tree.PathSpec, candidate interface{}) bool {
	if len(spec) == 0 || !c.Active(attr) {
		return false
	}

	raw, ok := tree.Resolve(candidate, spec)
	if !ok || raw == nil {
		return false
	}

	value := tree.Normalize(raw)

	if attr == Duration {
		return c.Duration.Excludes(ParseDuration(value))
	}

	text, ok := tree.String(value)
	if !ok {
		return false
	}

	for _, p := range c.Patterns[attr] {
		if p.MatchString(text) {
			return true
		}
	}

	return false
}
