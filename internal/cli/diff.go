package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kushwahaPrashant24/blocktube/internal/config"
	"github.com/kushwahaPrashant24/blocktube/internal/diff"
	"github.com/kushwahaPrashant24/blocktube/internal/output"
)

type diffOptions struct {
	endpoint string
	format   string
	context  int
}

func newDiffCommand() *cobra.Command {
	opts := &diffOptions{}

	cmd := &cobra.Command{
		Use:   "diff <document>",
		Short: "Show what filtering removes from a document",
		Long: `Diff filters a document and prints a unified diff between the
original and the filtered form, followed by a summary of the changed lines.

Both sides are serialized with sorted keys so the diff only shows what the
filter changed.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDiff(cmd.Context(), cmd, args[0], opts)
		},
	}

	registerEndpointFlag(cmd, &opts.endpoint)

	f := cmd.Flags()
	f.StringVar(&opts.format, "format", output.FormatYAML, "serialization to diff: "+output.DefaultRegistry().AvailableFormats())
	f.IntVar(&opts.context, "context", 3, "lines of context around each change")

	return cmd
}

func runDiff(ctx context.Context, cmd *cobra.Command, path string, opts *diffOptions) error {
	enc, err := output.DefaultRegistry().Encoder(opts.format)
	if err != nil {
		return &ExitError{Code: ExitUsage, Err: err}
	}

	p, err := loadPipeline(ctx, opts.endpoint)
	if err != nil {
		return err
	}

	d, err := p.filterFile(ctx, path, cmd.InOrStdin(), true)
	if err != nil {
		return &ExitError{Code: ExitGeneral, Err: err}
	}

	w := cmd.OutOrStdout()

	if d.Result.Discarded {
		_, _ = fmt.Fprintf(w, "Document discarded (%s).\n", d.Result.Reason)
		return nil
	}

	diffOpts := diff.DefaultOptions()
	diffOpts.OldLabel = displayName(path)
	diffOpts.Context = opts.context

	res, err := diff.Documents(d.Original, d.Result.Document, enc, diffOpts)
	if err != nil {
		return &ExitError{Code: ExitGeneral, Err: fmt.Errorf("computing diff: %w", err)}
	}

	diff.Write(w, res, !config.FromContext(ctx).NoColor)

	report(cmd.ErrOrStderr(), d)

	return nil
}
