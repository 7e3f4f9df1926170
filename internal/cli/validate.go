package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"slices"

	"github.com/spf13/cobra"

	"github.com/kushwahaPrashant24/blocktube/internal/config"
	"github.com/kushwahaPrashant24/blocktube/internal/criteria"
	"github.com/kushwahaPrashant24/blocktube/internal/logging"
	"github.com/kushwahaPrashant24/blocktube/internal/profile"
)

type validateOptions struct {
	strict bool
}

func newValidateCommand() *cobra.Command {
	opts := &validateOptions{}

	cmd := &cobra.Command{
		Use:   "validate [settings-file]",
		Short: "Validate a filter settings file",
		Long: `Validate checks a filter settings file: its version, duration bounds,
custom rules and strip paths, and compiles every pattern.

Patterns that fail to compile are skipped when filtering, so they are
reported as warnings. With --strict any warning fails validation.

Without an argument the configured settings file is validated.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := ""
			if len(args) == 1 {
				path = args[0]
			}

			return runValidate(cmd.Context(), cmd, path, opts)
		},
	}

	cmd.Flags().BoolVar(&opts.strict, "strict", false, "fail on warnings in addition to errors")

	return cmd
}

func runValidate(ctx context.Context, cmd *cobra.Command, path string, opts *validateOptions) error {
	if path == "" {
		path = config.FromContext(ctx).SettingsPath()
	}

	if path == "" {
		return &ExitError{Code: ExitUsage, Err: errors.New("no settings file given and none configured")}
	}

	settings, err := config.LoadSettings(path)
	if err != nil {
		return &ExitError{Code: ExitUsage, Err: err}
	}

	// Pattern failures are collected below; keep them out of the log.
	pcfg, patternErrs := settings.ProfileConfig(logging.Discard())

	if _, err := profile.New(pcfg); err != nil {
		return &ExitError{Code: ExitUsage, Err: err}
	}

	warnings := settingsWarnings(settings, pcfg.Criteria, patternErrs)
	printWarnings(cmd.ErrOrStderr(), warnings)

	if opts.strict && len(warnings) > 0 {
		return &ExitError{
			Code: ExitUsage,
			Err:  fmt.Errorf("validation failed with %d warning(s) (strict mode)", len(warnings)),
		}
	}

	_, _ = fmt.Fprintln(cmd.OutOrStdout(), "Settings valid.")

	return nil
}

func settingsWarnings(s *config.Settings, c *criteria.Criteria, patternErrs []*criteria.PatternError) []string {
	var warnings []string

	for _, e := range patternErrs {
		warnings = append(warnings, fmt.Sprintf("filterData.%s: pattern skipped", e.Error()))
	}

	host := profile.NewHost(profile.Options{})

	tags := make([]string, 0, len(s.Rules))
	for tag := range s.Rules {
		tags = append(tags, tag)
	}

	slices.Sort(tags)

	for _, tag := range tags {
		for _, kind := range profile.Kinds {
			rules, _ := host.Rules(kind)
			if _, ok := rules[tag]; ok {
				warnings = append(warnings, fmt.Sprintf("rules.%s: overrides the built-in %s rule", tag, kind))
			}
		}
	}

	if c.IsEmpty() {
		warnings = append(warnings, "no patterns or duration bounds: documents pass through unchanged")
	}

	return warnings
}

func printWarnings(w io.Writer, warnings []string) {
	for _, msg := range warnings {
		_, _ = fmt.Fprintf(w, "warning: %s\n", msg)
	}
}
