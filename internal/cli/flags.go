package cli

import (
	"runtime"
	"strings"

	"github.com/spf13/cobra"

	"github.com/kushwahaPrashant24/blocktube/internal/output"
	"github.com/kushwahaPrashant24/blocktube/internal/profile"
)

// outputOptions are shared by the commands that write filtered documents.
type outputOptions struct {
	endpoint      string
	output        string
	format        string
	concurrency   int
	failOnDiscard bool
}

// registerEndpointFlag adds --endpoint, which selects the rules a document
// is filtered with.
func registerEndpointFlag(cmd *cobra.Command, endpoint *string) {
	cmd.Flags().StringVar(endpoint, "endpoint", profile.GlobalInitialData,
		"page document name ("+strings.Join(profile.Globals(), ", ")+") or request path such as /youtubei/v1/next")
}

// registerOutputFlags adds the flags controlling where and how filtered
// documents are written.
func registerOutputFlags(cmd *cobra.Command, opts *outputOptions) {
	registerEndpointFlag(cmd, &opts.endpoint)

	f := cmd.Flags()
	f.StringVarP(&opts.output, "output", "o", "", "output file, or directory for several documents (default: stdout)")
	f.StringVar(&opts.format, "format", output.FormatJSON, "output format: "+output.DefaultRegistry().AvailableFormats())
	f.IntVar(&opts.concurrency, "concurrency", runtime.NumCPU(), "documents filtered in parallel")
	f.BoolVar(&opts.failOnDiscard, "fail-on-discard", false, "exit with code 3 when a document is discarded")
}
