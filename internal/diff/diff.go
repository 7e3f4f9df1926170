// Package diff renders the difference between a document before and after
// filtering as a unified diff over its serialized form.
package diff

import (
	"fmt"
	"io"
	"strings"

	"github.com/pmezard/go-difflib/difflib"

	"github.com/kushwahaPrashant24/blocktube/internal/output"
)

// Result holds a unified diff.
type Result struct {
	Unified        string
	HasDifferences bool
	Hunks          []string
	Added          int
	Removed        int
	OldLabel       string
	NewLabel       string
}

// Options configures diff computation.
type Options struct {
	OldLabel string
	NewLabel string
	Context  int
}

// DefaultOptions labels the sides original and filtered with three lines of
// context.
func DefaultOptions() Options {
	return Options{
		OldLabel: "original",
		NewLabel: "filtered",
		Context:  3,
	}
}

// Documents serializes before and after with encode and diffs the output.
func Documents(before, after interface{}, encode output.Encoder, opts Options) (*Result, error) {
	oldDoc, err := encode(before)
	if err != nil {
		return nil, fmt.Errorf("serializing original: %w", err)
	}

	newDoc, err := encode(after)
	if err != nil {
		return nil, fmt.Errorf("serializing filtered: %w", err)
	}

	return Compute(string(oldDoc), string(newDoc), opts)
}

// Compute returns the unified diff between two texts.
func Compute(oldDoc, newDoc string, opts Options) (*Result, error) {
	unified, err := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        splitLines(oldDoc),
		B:        splitLines(newDoc),
		FromFile: opts.OldLabel,
		ToFile:   opts.NewLabel,
		Context:  opts.Context,
	})
	if err != nil {
		return nil, fmt.Errorf("computing diff: %w", err)
	}

	res := &Result{
		Unified:        unified,
		HasDifferences: unified != "",
		OldLabel:       opts.OldLabel,
		NewLabel:       opts.NewLabel,
	}

	if res.HasDifferences {
		res.Hunks = extractHunks(unified)
		res.Added, res.Removed = countChanges(unified)
	}

	return res, nil
}

func extractHunks(unified string) []string {
	var (
		hunks   []string
		current strings.Builder
	)

	for _, line := range strings.Split(unified, "\n") {
		if strings.HasPrefix(line, "@@") && current.Len() > 0 {
			hunks = append(hunks, current.String())
			current.Reset()
		}

		current.WriteString(line)
		current.WriteString("\n")
	}

	if current.Len() > 0 {
		hunks = append(hunks, current.String())
	}

	return hunks
}

func countChanges(unified string) (added, removed int) {
	for _, line := range strings.Split(unified, "\n") {
		switch {
		case strings.HasPrefix(line, "+++"), strings.HasPrefix(line, "---"):
		case strings.HasPrefix(line, "+"):
			added++
		case strings.HasPrefix(line, "-"):
			removed++
		}
	}

	return added, removed
}

// Write prints the diff, with ANSI colors when color is set.
func Write(w io.Writer, res *Result, color bool) {
	if !res.HasDifferences {
		_, _ = fmt.Fprintln(w, "Nothing filtered.")
		return
	}

	for _, line := range strings.Split(strings.TrimSuffix(res.Unified, "\n"), "\n") {
		if color {
			writeColorLine(w, line)
		} else {
			_, _ = fmt.Fprintln(w, line)
		}
	}

	_, _ = fmt.Fprintf(w, "%d line(s) removed, %d line(s) added\n", res.Removed, res.Added)
}

func writeColorLine(w io.Writer, line string) {
	const (
		red   = "\033[31m"
		green = "\033[32m"
		cyan  = "\033[36m"
		bold  = "\033[1m"
		reset = "\033[0m"
	)

	switch {
	case strings.HasPrefix(line, "---"), strings.HasPrefix(line, "+++"):
		_, _ = fmt.Fprintf(w, "%s%s%s\n", bold, line, reset)
	case strings.HasPrefix(line, "@@"):
		_, _ = fmt.Fprintf(w, "%s%s%s\n", cyan, line, reset)
	case strings.HasPrefix(line, "-"):
		_, _ = fmt.Fprintf(w, "%s%s%s\n", red, line, reset)
	case strings.HasPrefix(line, "+"):
		_, _ = fmt.Fprintf(w, "%s%s%s\n", green, line, reset)
	default:
		_, _ = fmt.Fprintln(w, line)
	}
}

// splitLines keeps the trailing newline on each line as difflib expects.
func splitLines(s string) []string {
	if s == "" {
		return []string{""}
	}

	return strings.SplitAfter(s, "\n")
}
