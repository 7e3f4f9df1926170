package cli

import (
	"context"
	"errors"
	"time"

	"github.com/spf13/cobra"

	"github.com/kushwahaPrashant24/blocktube/internal/config"
	"github.com/kushwahaPrashant24/blocktube/internal/logging"
	"github.com/kushwahaPrashant24/blocktube/internal/watch"
)

type watchOptions struct {
	outputOptions

	debounce time.Duration
}

func newWatchCommand() *cobra.Command {
	opts := &watchOptions{}

	cmd := &cobra.Command{
		Use:   "watch <document>...",
		Short: "Re-filter documents whenever they or the settings change",
		Long: `Watch filters the given documents, then keeps watching them and the
filter settings file. Every change re-loads the settings and re-filters all
documents. Bursts of changes are debounced into one run.

Each run prints a status line with the document, discard and removal counts
and how they changed since the previous run.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWatch(cmd.Context(), cmd, args, opts)
		},
	}

	registerOutputFlags(cmd, &opts.outputOptions)
	cmd.Flags().DurationVar(&opts.debounce, "debounce", 300*time.Millisecond, "quiet period before re-filtering")

	return cmd
}

func runWatch(ctx context.Context, cmd *cobra.Command, paths []string, opts *watchOptions) error {
	if countStdin(paths) > 0 {
		return &ExitError{Code: ExitUsage, Err: errors.New("watch cannot read standard input")}
	}

	if err := checkEndpoint(opts.endpoint); err != nil {
		return &ExitError{Code: ExitUsage, Err: err}
	}

	logger := logging.FromContext(ctx)

	runFn := func(runCtx context.Context, _ []string) (*watch.RunResult, error) {
		p, err := loadPipeline(runCtx, opts.endpoint)
		if err != nil {
			return nil, err
		}

		docs, err := p.filterFiles(runCtx, paths, nil, opts.concurrency)
		if err != nil {
			return nil, err
		}

		sum, err := writeDocuments(docs, &opts.outputOptions, cmd.OutOrStdout(), cmd.ErrOrStderr(), logger)
		if err != nil {
			return nil, err
		}

		return &watch.RunResult{
			Documents: sum.Documents,
			Discarded: sum.Discarded,
			Stats:     sum.Stats,
		}, nil
	}

	watchOpts := watch.Options{
		SettingsFile: config.FromContext(ctx).SettingsPath(),
		Documents:    paths,
		Debounce:     opts.debounce,
		Logger:       logger,
		Out:          cmd.ErrOrStderr(),
	}

	if err := watch.Run(ctx, watchOpts, runFn); err != nil {
		return &ExitError{Code: ExitGeneral, Err: err}
	}

	return nil
}
