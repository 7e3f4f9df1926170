package criteria

import (
	"fmt"
	"strings"
	"time"

	"github.com/dlclark/regexp2"
)

// MatchTimeout bounds a single pattern evaluation. A pattern that runs out of
// time does not match.
const MatchTimeout = 250 * time.Millisecond

// Pattern is a compiled pattern source with JavaScript RegExp semantics,
// including lookaround and backreferences.
type Pattern struct {
	re     *regexp2.Regexp
	sticky bool
	source Source
}

// CompilePattern compiles one source in ECMAScript mode. The flags i, m and s
// map to the equivalent options. A sticky (y) pattern only matches at the
// start of the text, as a fresh RegExp does. g, u and d do not affect a
// single test and are accepted as no-ops.
func CompilePattern(src Source) (*Pattern, error) {
	var opts regexp2.RegexOptions = regexp2.ECMAScript
	sticky := false

	for _, f := range src.Flags {
		switch f {
		case 'i':
			opts |= regexp2.IgnoreCase
		case 'm':
			opts |= regexp2.Multiline
		case 's':
			opts |= regexp2.Singleline
		case 'y':
			sticky = true
		case 'g', 'u', 'd':
		default:
			return nil, fmt.Errorf("unsupported flag %q", f)
		}

		if strings.Count(src.Flags, string(f)) > 1 {
			return nil, fmt.Errorf("duplicate flag %q", f)
		}
	}

	re, err := regexp2.Compile(src.Pattern, opts)
	if err != nil {
		return nil, fmt.Errorf("compiling pattern: %w", err)
	}

	re.MatchTimeout = MatchTimeout

	return &Pattern{re: re, sticky: sticky, source: src}, nil
}

// MustCompile compiles a flagless pattern and panics on error.
func MustCompile(expr string) *Pattern {
	p, err := CompilePattern(Source{Pattern: expr})
	if err != nil {
		panic(err)
	}

	return p
}

// MatchString reports whether text contains a match. Evaluation errors,
// such as a timeout, count as no match.
func (p *Pattern) MatchString(text string) bool {
	if p.sticky {
		// The leftmost match starts at 0 whenever any match there exists.
		m, err := p.re.FindStringMatch(text)
		return err == nil && m != nil && m.Index == 0
	}

	ok, err := p.re.MatchString(text)

	return err == nil && ok
}

// Source returns the source p was compiled from.
func (p *Pattern) Source() Source { return p.source }

func (p *Pattern) String() string { return p.source.String() }
