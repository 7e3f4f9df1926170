package criteria

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"sort"
	"strings"
)

// TrendingPattern is appended to the channel id patterns when the trending
// feed is blocked.
const TrendingPattern = "^FEtrending$"

// Source is a raw pattern as stored in settings: an expression plus
// JavaScript-style flag letters.
type Source struct {
	Pattern string
	Flags   string
}

// UnmarshalJSON accepts a bare pattern string or a [pattern, flags] pair.
func (s *Source) UnmarshalJSON(data []byte) error {
	var pattern string
	if err := json.Unmarshal(data, &pattern); err == nil {
		*s = Source{Pattern: pattern}
		return nil
	}

	var pair []string
	if err := json.Unmarshal(data, &pair); err != nil {
		return fmt.Errorf("pattern must be a string or a [pattern, flags] pair: %w", err)
	}

	switch len(pair) {
	case 1:
		*s = Source{Pattern: pair[0]}
	case 2:
		*s = Source{Pattern: pair[0], Flags: pair[1]}
	default:
		return fmt.Errorf("pattern pair must have one or two elements, got %d", len(pair))
	}

	return nil
}

// MarshalJSON writes the [pattern, flags] pair form.
func (s Source) MarshalJSON() ([]byte, error) {
	return json.Marshal([]string{s.Pattern, s.Flags})
}

// String renders the source as /pattern/flags.
func (s Source) String() string {
	return "/" + s.Pattern + "/" + s.Flags
}

// Spec is the raw, uncompiled form of a Criteria.
type Spec struct {
	// Patterns maps a text attribute to its pattern sources.
	Patterns map[string][]Source

	// MinDuration and MaxDuration bound the duration attribute in seconds.
	MinDuration *int
	MaxDuration *int

	// BlockTrending adds TrendingPattern to the channel id patterns.
	BlockTrending bool
}

// PatternError describes a pattern source that failed to compile.
type PatternError struct {
	Attribute string
	Index     int
	Source    Source
	Err       error
}

func (e *PatternError) Error() string {
	return fmt.Sprintf("%s[%d] %s: %v", e.Attribute, e.Index, e.Source, e.Err)
}

func (e *PatternError) Unwrap() error { return e.Err }

// Compile builds a Criteria from spec. Blank patterns are skipped. A pattern
// that fails to compile is logged, reported in the returned slice, and
// omitted; it never aborts compilation of the rest.
func Compile(spec Spec, logger *slog.Logger) (*Criteria, []*PatternError) {
	if logger == nil {
		logger = slog.Default()
	}

	c := &Criteria{
		Patterns: make(map[string][]*Pattern, len(spec.Patterns)),
		Duration: Bounds{Min: spec.MinDuration, Max: spec.MaxDuration},
	}

	var errs []*PatternError

	attrs := make([]string, 0, len(spec.Patterns))
	for attr := range spec.Patterns {
		attrs = append(attrs, attr)
	}

	sort.Strings(attrs)

	for _, attr := range attrs {
		if attr == Duration {
			logger.Warn("ignoring patterns for duration attribute", slog.String("attribute", attr))
			continue
		}

		for i, src := range spec.Patterns[attr] {
			if strings.TrimSpace(src.Pattern) == "" {
				continue
			}

			re, err := CompilePattern(src)
			if err != nil {
				logger.Warn("pattern compile failed",
					slog.String("attribute", attr),
					slog.String("pattern", src.String()),
					slog.String("error", err.Error()),
				)

				errs = append(errs, &PatternError{Attribute: attr, Index: i, Source: src, Err: err})

				continue
			}

			c.Patterns[attr] = append(c.Patterns[attr], re)
		}
	}

	if spec.BlockTrending {
		c.Patterns[ChannelID] = append(c.Patterns[ChannelID], MustCompile(TrendingPattern))
	}

	return c, errs
}
