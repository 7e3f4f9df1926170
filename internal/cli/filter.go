package cli

import (
	"context"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/kushwahaPrashant24/blocktube/internal/logging"
)

func newFilterCommand() *cobra.Command {
	opts := &outputOptions{}

	var page []string

	cmd := &cobra.Command{
		Use:   "filter <document>...",
		Short: "Filter page data documents",
		Long: `Filter removes blocked content from one or more JSON documents.

--endpoint names what the documents are: a page document such as
ytInitialData (the default) or ytInitialPlayerResponse, or the request path
of an ajax response such as /youtubei/v1/next?list=PL1. Use "-" to read a
document from standard input.

--page ENDPOINT=FILE filters the documents of one page view together, in
the order given, instead of positional documents. A player configuration
that blocks the video then empties the watch page of a later ytInitialData:

  blocktube filter --page ytplayer.config=player.json --page ytInitialData=watch.json

A single document is written to stdout or the --output file. Several
documents are written into the --output directory, one file per input.

Exit codes:
  0  Success
  1  Error
  2  Invalid arguments or settings
  3  A document was discarded (with --fail-on-discard)`,
		Args: func(cmd *cobra.Command, args []string) error {
			if len(page) > 0 {
				return cobra.NoArgs(cmd, args)
			}

			return cobra.MinimumNArgs(1)(cmd, args)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(page) > 0 {
				return runFilterPage(cmd.Context(), cmd, page, opts)
			}

			return runFilter(cmd.Context(), cmd, args, opts)
		},
	}

	registerOutputFlags(cmd, opts)
	cmd.Flags().StringArrayVar(&page, "page", nil, "ENDPOINT=FILE document of one page view, repeatable and filtered in order")
	cmd.MarkFlagsMutuallyExclusive("page", "endpoint")

	return cmd
}

func runFilter(ctx context.Context, cmd *cobra.Command, paths []string, opts *outputOptions) error {
	logger := logging.FromContext(ctx)

	p, err := loadPipeline(ctx, opts.endpoint)
	if err != nil {
		return err
	}

	docs, err := p.filterFiles(ctx, paths, cmd.InOrStdin(), opts.concurrency)
	if err != nil {
		return err
	}

	return finishFilter(docs, cmd, opts, logger)
}

func runFilterPage(ctx context.Context, cmd *cobra.Command, values []string, opts *outputOptions) error {
	entries, err := parsePageEntries(values)
	if err != nil {
		return &ExitError{Code: ExitUsage, Err: err}
	}

	p, err := loadPipeline(ctx, opts.endpoint)
	if err != nil {
		return err
	}

	docs, err := p.filterPage(ctx, entries, cmd.InOrStdin())
	if err != nil {
		return err
	}

	return finishFilter(docs, cmd, opts, logging.FromContext(ctx))
}

func finishFilter(docs []*document, cmd *cobra.Command, opts *outputOptions, logger *slog.Logger) error {
	sum, err := writeDocuments(docs, opts, cmd.OutOrStdout(), cmd.ErrOrStderr(), logger)
	if err != nil {
		return err
	}

	logger.Info("filtering complete",
		slog.Int("documents", sum.Documents),
		slog.Int("discarded", sum.Discarded),
		slog.Int("deleted", sum.Stats.Deleted),
		slog.Int("removed", sum.Stats.Removed),
		slog.Int("collapsed", sum.Stats.Collapsed),
	)

	if opts.failOnDiscard && sum.Discarded > 0 {
		return discardError(sum)
	}

	return nil
}
